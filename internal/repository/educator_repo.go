package repository

import (
	"database/sql"
	"fmt"
	"time"

	"stemquest/internal/database"
	"stemquest/internal/models"
)

// EducatorRepository handles educator account and session database operations
type EducatorRepository struct {
	db *database.DB
}

// NewEducatorRepository creates a new educator repository
func NewEducatorRepository(db *database.DB) *EducatorRepository {
	return &EducatorRepository{db: db}
}

// CreateEducator inserts a new educator account. The first account created
// becomes the admin.
func (r *EducatorRepository) CreateEducator(email, passwordHash, name string) (*models.Educator, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM educators").Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to count educators: %w", err)
	}
	isAdmin := count == 0

	query := `
		INSERT INTO educators (email, password_hash, name, is_admin)
		VALUES (?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, email, passwordHash, name, isAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to create educator: %w", err)
	}

	return &models.Educator{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		Name:         name,
		IsAdmin:      isAdmin,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}, nil
}

// GetEducatorByEmail retrieves an educator by email; returns nil, nil when not found
func (r *EducatorRepository) GetEducatorByEmail(email string) (*models.Educator, error) {
	query := `
		SELECT id, email, password_hash, name,
		       COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''),
		       is_admin, created_at, updated_at
		FROM educators
		WHERE email = ?
	`
	return r.scanEducator(r.db.QueryRow(query, email))
}

// GetEducatorByID retrieves an educator by ID; returns nil, nil when not found
func (r *EducatorRepository) GetEducatorByID(id int64) (*models.Educator, error) {
	query := `
		SELECT id, email, password_hash, name,
		       COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''),
		       is_admin, created_at, updated_at
		FROM educators
		WHERE id = ?
	`
	return r.scanEducator(r.db.QueryRow(query, id))
}

// GetEducatorByOAuth retrieves an educator by OAuth identity; returns nil, nil when not found
func (r *EducatorRepository) GetEducatorByOAuth(provider, subject string) (*models.Educator, error) {
	query := `
		SELECT id, email, password_hash, name,
		       COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''),
		       is_admin, created_at, updated_at
		FROM educators
		WHERE oauth_provider = ? AND oauth_subject = ?
	`
	return r.scanEducator(r.db.QueryRow(query, provider, subject))
}

// LinkOAuth attaches an OAuth identity to an existing educator account
func (r *EducatorRepository) LinkOAuth(educatorID int64, provider, subject string) error {
	query := `
		UPDATE educators
		SET oauth_provider = ?, oauth_subject = ?, updated_at = ?
		WHERE id = ?
	`
	_, err := r.db.Exec(query, provider, subject, time.Now(), educatorID)
	return err
}

// ListEducators retrieves all educator accounts
func (r *EducatorRepository) ListEducators() ([]models.Educator, error) {
	query := `
		SELECT id, email, password_hash, name,
		       COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''),
		       is_admin, created_at, updated_at
		FROM educators
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var educators []models.Educator
	for rows.Next() {
		var e models.Educator
		err := rows.Scan(
			&e.ID, &e.Email, &e.PasswordHash, &e.Name,
			&e.OAuthProvider, &e.OAuthSubject,
			&e.IsAdmin, &e.CreatedAt, &e.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		educators = append(educators, e)
	}

	return educators, rows.Err()
}

// CreateSession stores a new educator session
func (r *EducatorRepository) CreateSession(sessionID string, educatorID int64, expiresAt time.Time) (*models.Session, error) {
	query := "INSERT INTO educator_sessions (id, educator_id, expires_at) VALUES (?, ?, ?)"
	if _, err := r.db.Exec(query, sessionID, educatorID, expiresAt); err != nil {
		return nil, err
	}

	return &models.Session{
		ID:         sessionID,
		EducatorID: educatorID,
		CreatedAt:  time.Now(),
		ExpiresAt:  expiresAt,
	}, nil
}

// GetSession retrieves a session by ID; returns nil, nil when not found
func (r *EducatorRepository) GetSession(sessionID string) (*models.Session, error) {
	query := "SELECT id, educator_id, created_at, expires_at FROM educator_sessions WHERE id = ?"

	session := &models.Session{}
	err := r.db.QueryRow(query, sessionID).Scan(
		&session.ID, &session.EducatorID, &session.CreatedAt, &session.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// DeleteSession removes a session
func (r *EducatorRepository) DeleteSession(sessionID string) error {
	_, err := r.db.Exec("DELETE FROM educator_sessions WHERE id = ?", sessionID)
	return err
}

// DeleteExpiredSessions removes all sessions past their expiry
func (r *EducatorRepository) DeleteExpiredSessions() error {
	_, err := r.db.Exec("DELETE FROM educator_sessions WHERE expires_at < ?", time.Now())
	return err
}

func (r *EducatorRepository) scanEducator(row *sql.Row) (*models.Educator, error) {
	e := &models.Educator{}
	err := row.Scan(
		&e.ID, &e.Email, &e.PasswordHash, &e.Name,
		&e.OAuthProvider, &e.OAuthSubject,
		&e.IsAdmin, &e.CreatedAt, &e.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}
