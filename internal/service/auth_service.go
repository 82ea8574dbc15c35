package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"stemquest/internal/models"
	"stemquest/internal/repository"
	"stemquest/internal/security"
	"stemquest/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
)

// AuthService handles educator authentication business logic
type AuthService struct {
	educatorRepo    *repository.EducatorRepository
	sessionDuration time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(educatorRepo *repository.EducatorRepository, sessionDuration time.Duration) *AuthService {
	return &AuthService{
		educatorRepo:    educatorRepo,
		sessionDuration: sessionDuration,
	}
}

// Register creates a new educator account
func (s *AuthService) Register(email, password, name string) (*models.Educator, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}

	existing, err := s.educatorRepo.GetEducatorByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing educator: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	educator, err := s.educatorRepo.CreateEducator(email, passwordHash, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create educator: %w", err)
	}

	return educator, nil
}

// Login authenticates an educator and creates a session
func (s *AuthService) Login(email, password string) (*models.Session, *models.Educator, error) {
	educator, err := s.educatorRepo.GetEducatorByEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get educator: %w", err)
	}
	if educator == nil {
		return nil, nil, ErrInvalidCredentials
	}

	if !security.CheckPassword(educator.PasswordHash, password) {
		return nil, nil, ErrInvalidCredentials
	}

	return s.createSession(educator)
}

// ValidateSession checks a session and returns the associated educator
func (s *AuthService) ValidateSession(sessionID string) (*models.Educator, error) {
	session, err := s.educatorRepo.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}

	if session.IsExpired() {
		_ = s.educatorRepo.DeleteSession(sessionID)
		return nil, ErrSessionExpired
	}

	educator, err := s.educatorRepo.GetEducatorByID(session.EducatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get educator: %w", err)
	}
	if educator == nil {
		return nil, ErrSessionNotFound
	}

	return educator, nil
}

// Logout invalidates a session
func (s *AuthService) Logout(sessionID string) error {
	if err := s.educatorRepo.DeleteSession(sessionID); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes expired sessions from the database
func (s *AuthService) CleanupExpiredSessions() error {
	if err := s.educatorRepo.DeleteExpiredSessions(); err != nil {
		return fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	return nil
}

// OAuthLogin authenticates or creates an educator from an OAuth identity.
// An existing account with the same email gets the provider linked; a new
// email gets a fresh account with an unguessable placeholder password.
func (s *AuthService) OAuthLogin(provider, subject, email, name string) (*models.Session, *models.Educator, error) {
	if provider == "" || subject == "" {
		return nil, nil, errors.New("missing oauth provider information")
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, nil, err
	}

	educator, err := s.educatorRepo.GetEducatorByOAuth(provider, subject)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to lookup oauth educator: %w", err)
	}

	if educator == nil {
		existing, err := s.educatorRepo.GetEducatorByEmail(email)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to check existing educator: %w", err)
		}
		if existing != nil {
			if existing.OAuthProvider != "" && existing.OAuthProvider != provider {
				return nil, nil, ErrEmailTaken
			}
			if err := s.educatorRepo.LinkOAuth(existing.ID, provider, subject); err != nil {
				return nil, nil, fmt.Errorf("failed to link oauth provider: %w", err)
			}
			educator = existing
		} else {
			if name == "" {
				name = strings.Split(email, "@")[0]
			}
			placeholderHash, err := security.HashPassword(security.GenerateSessionID())
			if err != nil {
				return nil, nil, fmt.Errorf("failed to generate oauth password hash: %w", err)
			}
			created, err := s.educatorRepo.CreateEducator(email, placeholderHash, name)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create oauth educator: %w", err)
			}
			if err := s.educatorRepo.LinkOAuth(created.ID, provider, subject); err != nil {
				return nil, nil, fmt.Errorf("failed to link oauth provider: %w", err)
			}
			educator = created
		}
	}

	return s.createSession(educator)
}

func (s *AuthService) createSession(educator *models.Educator) (*models.Session, *models.Educator, error) {
	sessionID := security.GenerateSessionID()
	expiresAt := time.Now().Add(s.sessionDuration)

	session, err := s.educatorRepo.CreateSession(sessionID, educator.ID, expiresAt)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, educator, nil
}
