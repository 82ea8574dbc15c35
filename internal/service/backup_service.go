package service

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"stemquest/internal/database"
)

// BackupData is the complete portable dump of the user-generated data:
// educators, students, game history and assignments. The subject/topic
// catalog is seeded from config and deliberately left out.
type BackupData struct {
	Version     string             `json:"version"`
	ExportedAt  time.Time          `json:"exported_at"`
	Educators   []EducatorBackup   `json:"educators"`
	Students    []StudentBackup    `json:"students"`
	History     []HistoryBackup    `json:"history"`
	Assignments []AssignmentBackup `json:"assignments"`
}

// EducatorBackup is an educator record for backup
type EducatorBackup struct {
	ID            int64     `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"password_hash"`
	Name          string    `json:"name"`
	OAuthProvider string    `json:"oauth_provider"`
	OAuthSubject  string    `json:"oauth_subject"`
	IsAdmin       bool      `json:"is_admin"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// StudentBackup is a student record for backup
type StudentBackup struct {
	ID               int64      `json:"id"`
	EducatorID       int64      `json:"educator_id"`
	Username         string     `json:"username"`
	Grade            int        `json:"grade"`
	AvatarColor      string     `json:"avatar_color"`
	PasswordHash     string     `json:"password_hash"`
	CurrentScore     int        `json:"current_score"`
	GamesPlayed      int        `json:"games_played"`
	DailyStreak      int        `json:"daily_streak"`
	LastPlayedDate   *time.Time `json:"last_played_date"`
	TotalTimeMinutes int        `json:"total_time_minutes"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// HistoryBackup is a game history entry for backup
type HistoryBackup struct {
	ID        int64     `json:"id"`
	StudentID int64     `json:"student_id"`
	GameID    string    `json:"game_id"`
	SubjectID string    `json:"subject_id"`
	Score     float64   `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// AssignmentBackup is an assignment record for backup
type AssignmentBackup struct {
	ID          int64      `json:"id"`
	EducatorID  int64      `json:"educator_id"`
	StudentID   int64      `json:"student_id"`
	SubjectID   string     `json:"subject_id"`
	TopicID     string     `json:"topic_id"`
	Note        string     `json:"note"`
	DueAt       *time.Time `json:"due_at"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// BackupService handles database backup and restore operations
type BackupService struct {
	db *database.DB
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB) *BackupService {
	return &BackupService{db: db}
}

// Export creates a complete backup of the database to a file
func (s *BackupService) Export(outputPath string) error {
	log.Println("Starting database export...")

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportToWriter(file); err != nil {
		return err
	}

	log.Printf("Database exported successfully to %s", outputPath)
	return nil
}

// ExportToWriter exports the database as indented JSON to a writer
// (also used for HTTP download responses)
func (s *BackupService) ExportToWriter(w io.Writer) error {
	backup := &BackupData{
		Version:    "1.0",
		ExportedAt: time.Now(),
	}

	if err := s.exportEducators(backup); err != nil {
		return fmt.Errorf("failed to export educators: %w", err)
	}
	if err := s.exportStudents(backup); err != nil {
		return fmt.Errorf("failed to export students: %w", err)
	}
	if err := s.exportHistory(backup); err != nil {
		return fmt.Errorf("failed to export history: %w", err)
	}
	if err := s.exportAssignments(backup); err != nil {
		return fmt.Errorf("failed to export assignments: %w", err)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	log.Printf("Exported: %d educators, %d students, %d history entries, %d assignments",
		len(backup.Educators), len(backup.Students), len(backup.History), len(backup.Assignments))
	return nil
}

// Import restores a database from a backup file
func (s *BackupService) Import(inputPath string) error {
	log.Printf("Starting database import from %s...", inputPath)

	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	return s.ImportFromReader(file)
}

// ImportFromReader restores a database from a backup reader
func (s *BackupService) ImportFromReader(reader io.Reader) error {
	var backup BackupData
	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(&backup); err != nil {
		return fmt.Errorf("failed to decode backup: %w", err)
	}

	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	// Import in dependency order
	if err := s.importEducators(backup.Educators); err != nil {
		return fmt.Errorf("failed to import educators: %w", err)
	}
	if err := s.importStudents(backup.Students); err != nil {
		return fmt.Errorf("failed to import students: %w", err)
	}
	if err := s.importHistory(backup.History); err != nil {
		return fmt.Errorf("failed to import history: %w", err)
	}
	if err := s.importAssignments(backup.Assignments); err != nil {
		return fmt.Errorf("failed to import assignments: %w", err)
	}

	log.Println("Database import completed successfully")
	return nil
}

func (s *BackupService) exportEducators(backup *BackupData) error {
	query := "SELECT id, email, password_hash, name, COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''), is_admin, created_at, updated_at FROM educators ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var e EducatorBackup
		if err := rows.Scan(&e.ID, &e.Email, &e.PasswordHash, &e.Name, &e.OAuthProvider, &e.OAuthSubject, &e.IsAdmin, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return err
		}
		backup.Educators = append(backup.Educators, e)
	}
	return rows.Err()
}

func (s *BackupService) exportStudents(backup *BackupData) error {
	query := "SELECT id, educator_id, username, grade, COALESCE(avatar_color, '#4A90E2'), password_hash, current_score, games_played, daily_streak, last_played_date, total_time_minutes, created_at, updated_at FROM students ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var st StudentBackup
		var lastPlayed sql.NullTime
		if err := rows.Scan(&st.ID, &st.EducatorID, &st.Username, &st.Grade, &st.AvatarColor, &st.PasswordHash, &st.CurrentScore, &st.GamesPlayed, &st.DailyStreak, &lastPlayed, &st.TotalTimeMinutes, &st.CreatedAt, &st.UpdatedAt); err != nil {
			return err
		}
		if lastPlayed.Valid {
			st.LastPlayedDate = &lastPlayed.Time
		}
		backup.Students = append(backup.Students, st)
	}
	return rows.Err()
}

func (s *BackupService) exportHistory(backup *BackupData) error {
	query := "SELECT id, student_id, game_id, subject_id, score, created_at FROM game_history ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var h HistoryBackup
		if err := rows.Scan(&h.ID, &h.StudentID, &h.GameID, &h.SubjectID, &h.Score, &h.CreatedAt); err != nil {
			return err
		}
		backup.History = append(backup.History, h)
	}
	return rows.Err()
}

func (s *BackupService) exportAssignments(backup *BackupData) error {
	query := "SELECT id, educator_id, student_id, subject_id, topic_id, COALESCE(note, ''), due_at, completed_at, created_at FROM assignments ORDER BY id"
	rows, err := s.db.Query(query)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var a AssignmentBackup
		var dueAt, completedAt sql.NullTime
		if err := rows.Scan(&a.ID, &a.EducatorID, &a.StudentID, &a.SubjectID, &a.TopicID, &a.Note, &dueAt, &completedAt, &a.CreatedAt); err != nil {
			return err
		}
		if dueAt.Valid {
			a.DueAt = &dueAt.Time
		}
		if completedAt.Valid {
			a.CompletedAt = &completedAt.Time
		}
		backup.Assignments = append(backup.Assignments, a)
	}
	return rows.Err()
}

func (s *BackupService) importEducators(educators []EducatorBackup) error {
	log.Printf("Importing %d educators...", len(educators))
	for _, e := range educators {
		query := "INSERT INTO educators (id, email, password_hash, name, oauth_provider, oauth_subject, is_admin, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, e.ID, e.Email, e.PasswordHash, e.Name, nullIfEmpty(e.OAuthProvider), nullIfEmpty(e.OAuthSubject), e.IsAdmin, e.CreatedAt, e.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import educator %d: %w", e.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importStudents(students []StudentBackup) error {
	log.Printf("Importing %d students...", len(students))
	for _, st := range students {
		var lastPlayed interface{}
		if st.LastPlayedDate != nil {
			lastPlayed = *st.LastPlayedDate
		}
		query := "INSERT INTO students (id, educator_id, username, grade, avatar_color, password_hash, current_score, games_played, daily_streak, last_played_date, total_time_minutes, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, st.ID, st.EducatorID, st.Username, st.Grade, st.AvatarColor, st.PasswordHash, st.CurrentScore, st.GamesPlayed, st.DailyStreak, lastPlayed, st.TotalTimeMinutes, st.CreatedAt, st.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to import student %d: %w", st.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importHistory(entries []HistoryBackup) error {
	log.Printf("Importing %d history entries...", len(entries))
	for _, h := range entries {
		query := "INSERT INTO game_history (id, student_id, game_id, subject_id, score, created_at) VALUES (?, ?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, h.ID, h.StudentID, h.GameID, h.SubjectID, h.Score, h.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to import history entry %d: %w", h.ID, err)
		}
	}
	return nil
}

func (s *BackupService) importAssignments(assignments []AssignmentBackup) error {
	log.Printf("Importing %d assignments...", len(assignments))
	for _, a := range assignments {
		var dueAt, completedAt interface{}
		if a.DueAt != nil {
			dueAt = *a.DueAt
		}
		if a.CompletedAt != nil {
			completedAt = *a.CompletedAt
		}
		query := "INSERT INTO assignments (id, educator_id, student_id, subject_id, topic_id, note, due_at, completed_at, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"
		_, err := s.db.Exec(query, a.ID, a.EducatorID, a.StudentID, a.SubjectID, a.TopicID, a.Note, dueAt, completedAt, a.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to import assignment %d: %w", a.ID, err)
		}
	}
	return nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
