package models

import "time"

// GameHistoryEntry is one completed game. Entries are append-only; they are
// never mutated or deleted, and the dashboard shows only the most recent few.
type GameHistoryEntry struct {
	ID        int64     `json:"id"`
	StudentID int64     `json:"studentId"`
	GameID    string    `json:"gameId"`
	SubjectID string    `json:"subjectId"`
	Score     float64   `json:"score"` // normalized percentage 0-100
	CreatedAt time.Time `json:"createdAt"`
}

// RecentHistoryLimit is how many history entries the dashboard displays.
const RecentHistoryLimit = 5
