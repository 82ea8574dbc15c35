package repository

import (
	"database/sql"
	"time"

	"stemquest/internal/database"
	"stemquest/internal/models"
)

// AssignmentRepository handles assignment database operations
type AssignmentRepository struct {
	db *database.DB
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(db *database.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create inserts a new assignment
func (r *AssignmentRepository) Create(educatorID, studentID int64, subjectID, topicID, note string, dueAt *time.Time) (*models.Assignment, error) {
	query := `
		INSERT INTO assignments (educator_id, student_id, subject_id, topic_id, note, due_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	id, err := r.db.ExecReturningID(query, educatorID, studentID, subjectID, topicID, note, dueAt)
	if err != nil {
		return nil, err
	}

	return &models.Assignment{
		ID:         id,
		EducatorID: educatorID,
		StudentID:  studentID,
		SubjectID:  subjectID,
		TopicID:    topicID,
		Note:       note,
		DueAt:      dueAt,
		CreatedAt:  time.Now(),
	}, nil
}

// ListForStudent retrieves a student's assignments, pending first
func (r *AssignmentRepository) ListForStudent(studentID int64) ([]models.Assignment, error) {
	query := `
		SELECT id, educator_id, student_id, subject_id, topic_id, note,
		       due_at, completed_at, created_at
		FROM assignments
		WHERE student_id = ?
		ORDER BY completed_at IS NOT NULL, created_at DESC
	`
	return r.list(query, studentID)
}

// ListForEducator retrieves all assignments created by an educator
func (r *AssignmentRepository) ListForEducator(educatorID int64) ([]models.Assignment, error) {
	query := `
		SELECT id, educator_id, student_id, subject_id, topic_id, note,
		       due_at, completed_at, created_at
		FROM assignments
		WHERE educator_id = ?
		ORDER BY created_at DESC
	`
	return r.list(query, educatorID)
}

// MarkCompletedByTopic marks any pending assignments on a topic as done.
// Called when a student completes a game on that topic.
func (r *AssignmentRepository) MarkCompletedByTopic(studentID int64, topicID string) error {
	query := `
		UPDATE assignments
		SET completed_at = ?
		WHERE student_id = ? AND topic_id = ? AND completed_at IS NULL
	`
	_, err := r.db.Exec(query, time.Now(), studentID, topicID)
	return err
}

// Delete removes an assignment
func (r *AssignmentRepository) Delete(id int64) error {
	_, err := r.db.Exec("DELETE FROM assignments WHERE id = ?", id)
	return err
}

func (r *AssignmentRepository) list(query string, arg interface{}) ([]models.Assignment, error) {
	rows, err := r.db.Query(query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []models.Assignment
	for rows.Next() {
		var a models.Assignment
		var dueAt, completedAt sql.NullTime

		err := rows.Scan(
			&a.ID, &a.EducatorID, &a.StudentID, &a.SubjectID, &a.TopicID,
			&a.Note, &dueAt, &completedAt, &a.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if dueAt.Valid {
			a.DueAt = &dueAt.Time
		}
		if completedAt.Valid {
			a.CompletedAt = &completedAt.Time
		}

		assignments = append(assignments, a)
	}

	return assignments, rows.Err()
}
