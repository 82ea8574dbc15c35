package repository

import (
	"database/sql"
	"fmt"
	"time"

	"stemquest/internal/database"
	"stemquest/internal/models"
)

// StudentRepository handles student database operations
type StudentRepository struct {
	db *database.DB
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db *database.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// CreateStudent inserts a new student profile
func (r *StudentRepository) CreateStudent(educatorID int64, username string, grade int, avatarColor, passwordHash string) (*models.Student, error) {
	query := `
		INSERT INTO students (educator_id, username, grade, avatar_color, password_hash)
		VALUES (?, ?, ?, ?, ?)
	`

	id, err := r.db.ExecReturningID(query, educatorID, username, grade, avatarColor, passwordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	return r.GetStudent(id)
}

// GetStudent retrieves a student by ID; returns nil, nil when not found
func (r *StudentRepository) GetStudent(id int64) (*models.Student, error) {
	query := `
		SELECT id, educator_id, username, grade, avatar_color, password_hash,
		       current_score, games_played, daily_streak, last_played_date,
		       total_time_minutes, created_at, updated_at
		FROM students
		WHERE id = ?
	`
	return r.scanStudent(r.db.QueryRow(query, id))
}

// GetStudentByUsername retrieves a student by username; returns nil, nil when not found
func (r *StudentRepository) GetStudentByUsername(username string) (*models.Student, error) {
	query := `
		SELECT id, educator_id, username, grade, avatar_color, password_hash,
		       current_score, games_played, daily_streak, last_played_date,
		       total_time_minutes, created_at, updated_at
		FROM students
		WHERE username = ?
	`
	return r.scanStudent(r.db.QueryRow(query, username))
}

// ListStudentsByEducator retrieves all students managed by an educator
func (r *StudentRepository) ListStudentsByEducator(educatorID int64) ([]models.Student, error) {
	query := `
		SELECT id, educator_id, username, grade, avatar_color, password_hash,
		       current_score, games_played, daily_streak, last_played_date,
		       total_time_minutes, created_at, updated_at
		FROM students
		WHERE educator_id = ?
		ORDER BY username ASC
	`

	rows, err := r.db.Query(query, educatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []models.Student
	for rows.Next() {
		student, err := scanStudentRow(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, *student)
	}

	return students, rows.Err()
}

// ReadScoreAndCount reads the authoritative score and games-played counters
func (r *StudentRepository) ReadScoreAndCount(studentID int64) (int, int, error) {
	query := "SELECT current_score, games_played FROM students WHERE id = ?"

	var score, gamesPlayed int
	err := r.db.QueryRow(query, studentID).Scan(&score, &gamesPlayed)
	if err != nil {
		return 0, 0, err
	}
	return score, gamesPlayed, nil
}

// WriteScoreAndCount unconditionally overwrites the score and games-played
// counters (last-writer-wins; no concurrency check)
func (r *StudentRepository) WriteScoreAndCount(studentID int64, score, gamesPlayed int) error {
	query := `
		UPDATE students
		SET current_score = ?, games_played = ?, updated_at = ?
		WHERE id = ?
	`
	_, err := r.db.Exec(query, score, gamesPlayed, time.Now(), studentID)
	return err
}

// AccrueDailyActivity additively increments the time counter and, when
// playedToday is set, folds today into the daily streak. The minutes
// increment is applied server-side (total_time_minutes + delta) so that
// concurrent sessions never clobber each other's accruals.
func (r *StudentRepository) AccrueDailyActivity(studentID int64, minutesDelta int, playedToday bool) error {
	if !playedToday {
		if minutesDelta == 0 {
			return nil
		}
		query := `
			UPDATE students
			SET total_time_minutes = total_time_minutes + ?, updated_at = ?
			WHERE id = ?
		`
		_, err := r.db.Exec(query, minutesDelta, time.Now(), studentID)
		return err
	}

	// Streak update needs the previous played date, so read-compute-write
	// inside one transaction.
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var lastPlayed sql.NullTime
	var streak int
	query := "SELECT last_played_date, daily_streak FROM students WHERE id = ?"
	if err := tx.QueryRow(query, studentID).Scan(&lastPlayed, &streak); err != nil {
		return err
	}

	now := time.Now()
	streak = nextStreak(streak, lastPlayed, now)

	update := `
		UPDATE students
		SET total_time_minutes = total_time_minutes + ?,
		    daily_streak = ?, last_played_date = ?, updated_at = ?
		WHERE id = ?
	`
	if _, err := tx.Exec(update, minutesDelta, streak, now, now, studentID); err != nil {
		return err
	}

	return tx.Commit()
}

// nextStreak computes the consecutive-day play counter: same day leaves it
// unchanged, a play on the following day extends it, any gap resets it to 1.
func nextStreak(current int, lastPlayed sql.NullTime, now time.Time) int {
	if !lastPlayed.Valid {
		return 1
	}

	last := dateOnly(lastPlayed.Time)
	today := dateOnly(now)

	switch {
	case last.Equal(today):
		if current < 1 {
			return 1
		}
		return current
	case last.AddDate(0, 0, 1).Equal(today):
		return current + 1
	default:
		return 1
	}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// UpdateStudent updates the mutable profile fields
func (r *StudentRepository) UpdateStudent(id int64, username string, grade int, avatarColor string) error {
	query := `
		UPDATE students
		SET username = ?, grade = ?, avatar_color = ?, updated_at = ?
		WHERE id = ?
	`
	_, err := r.db.Exec(query, username, grade, avatarColor, time.Now(), id)
	return err
}

// UpdateStudentPassword replaces a student's password hash
func (r *StudentRepository) UpdateStudentPassword(id int64, passwordHash string) error {
	query := "UPDATE students SET password_hash = ?, updated_at = ? WHERE id = ?"
	_, err := r.db.Exec(query, passwordHash, time.Now(), id)
	return err
}

// DeleteStudent removes a student and cascades to history and assignments
func (r *StudentRepository) DeleteStudent(id int64) error {
	_, err := r.db.Exec("DELETE FROM students WHERE id = ?", id)
	return err
}

func (r *StudentRepository) scanStudent(row *sql.Row) (*models.Student, error) {
	student := &models.Student{}
	var lastPlayed sql.NullTime

	err := row.Scan(
		&student.ID,
		&student.EducatorID,
		&student.Username,
		&student.Grade,
		&student.AvatarColor,
		&student.PasswordHash,
		&student.CurrentScore,
		&student.GamesPlayed,
		&student.DailyStreak,
		&lastPlayed,
		&student.TotalTimeMinutes,
		&student.CreatedAt,
		&student.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if lastPlayed.Valid {
		student.LastPlayedDate = &lastPlayed.Time
	}
	return student, nil
}

func scanStudentRow(rows *sql.Rows) (*models.Student, error) {
	student := &models.Student{}
	var lastPlayed sql.NullTime

	err := rows.Scan(
		&student.ID,
		&student.EducatorID,
		&student.Username,
		&student.Grade,
		&student.AvatarColor,
		&student.PasswordHash,
		&student.CurrentScore,
		&student.GamesPlayed,
		&student.DailyStreak,
		&lastPlayed,
		&student.TotalTimeMinutes,
		&student.CreatedAt,
		&student.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastPlayed.Valid {
		student.LastPlayedDate = &lastPlayed.Time
	}
	return student, nil
}
