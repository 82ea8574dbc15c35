package models

import "time"

// Assignment is an educator-assigned piece of work for a student,
// surfaced by the assignments view.
type Assignment struct {
	ID          int64      `json:"id"`
	EducatorID  int64      `json:"educatorId"`
	StudentID   int64      `json:"studentId"`
	SubjectID   string     `json:"subjectId"`
	TopicID     string     `json:"topicId"`
	Note        string     `json:"note"`
	DueAt       *time.Time `json:"dueAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// SubjectPerformance aggregates a student's results for one subject,
// backing the overall-performance view.
type SubjectPerformance struct {
	SubjectID    string  `json:"subjectId"`
	SubjectName  string  `json:"subjectName"`
	GamesPlayed  int     `json:"gamesPlayed"`
	AverageScore float64 `json:"averageScore"`
}
