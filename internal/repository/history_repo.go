package repository

import (
	"time"

	"stemquest/internal/database"
	"stemquest/internal/models"
)

// HistoryRepository handles game history database operations.
// History is append-only: entries are never updated or deleted.
type HistoryRepository struct {
	db *database.DB
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *database.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Append records a completed game
func (r *HistoryRepository) Append(studentID int64, gameID, subjectID string, score float64) (*models.GameHistoryEntry, error) {
	query := `
		INSERT INTO game_history (student_id, game_id, subject_id, score)
		VALUES (?, ?, ?, ?)
	`

	id, err := r.db.ExecReturningID(query, studentID, gameID, subjectID, score)
	if err != nil {
		return nil, err
	}

	return &models.GameHistoryEntry{
		ID:        id,
		StudentID: studentID,
		GameID:    gameID,
		SubjectID: subjectID,
		Score:     score,
		CreatedAt: time.Now(),
	}, nil
}

// RecentForStudent retrieves the most recent history entries, newest first
func (r *HistoryRepository) RecentForStudent(studentID int64, limit int) ([]models.GameHistoryEntry, error) {
	query := `
		SELECT id, student_id, game_id, subject_id, score, created_at
		FROM game_history
		WHERE student_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, studentID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.GameHistoryEntry
	for rows.Next() {
		var entry models.GameHistoryEntry
		err := rows.Scan(
			&entry.ID,
			&entry.StudentID,
			&entry.GameID,
			&entry.SubjectID,
			&entry.Score,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// SubjectPerformance aggregates per-subject games played and average score
// for one student, backing the overall-performance view.
func (r *HistoryRepository) SubjectPerformance(studentID int64) ([]models.SubjectPerformance, error) {
	query := `
		SELECT h.subject_id, COALESCE(s.name, h.subject_id),
		       COUNT(*), COALESCE(AVG(h.score), 0)
		FROM game_history h
		LEFT JOIN subjects s ON s.id = h.subject_id
		WHERE h.student_id = ?
		GROUP BY h.subject_id, s.name
		ORDER BY COUNT(*) DESC
	`

	rows, err := r.db.Query(query, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []models.SubjectPerformance
	for rows.Next() {
		var perf models.SubjectPerformance
		err := rows.Scan(
			&perf.SubjectID,
			&perf.SubjectName,
			&perf.GamesPlayed,
			&perf.AverageScore,
		)
		if err != nil {
			return nil, err
		}
		results = append(results, perf)
	}

	return results, rows.Err()
}

// CountSince counts completed games for a student since a cutoff time,
// used by the weekly progress report.
func (r *HistoryRepository) CountSince(studentID int64, since time.Time) (int, float64, error) {
	query := `
		SELECT COUNT(*), COALESCE(AVG(score), 0)
		FROM game_history
		WHERE student_id = ? AND created_at >= ?
	`

	var count int
	var avg float64
	err := r.db.QueryRow(query, studentID, since).Scan(&count, &avg)
	return count, avg, err
}
