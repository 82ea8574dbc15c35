package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"stemquest/internal/models"
	"stemquest/internal/security"
	"stemquest/internal/service"
	"stemquest/internal/validation"
)

// AuthHandler handles educator authentication endpoints
type AuthHandler struct {
	authService  *service.AuthService
	emailService *service.EmailService
	csrf         *security.CSRFGenerator
	google       *googleOAuth
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, emailService *service.EmailService, csrf *security.CSRFGenerator, google *googleOAuth) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		emailService: emailService,
		csrf:         csrf,
		google:       google,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Educator  *models.Educator `json:"educator"`
	CSRFToken string           `json:"csrfToken"`
}

// Register creates a new educator account and logs it in
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}

	educator, err := h.authService.Register(req.Email, req.Password, req.Name)
	if err != nil {
		var vErr *validation.ValidationError
		switch {
		case errors.As(err, &vErr):
			respondWithError(w, http.StatusBadRequest, vErr.Error(), "", nil)
		case errors.Is(err, service.ErrEmailTaken):
			respondWithError(w, http.StatusConflict, "An account with that email already exists", "", nil)
		default:
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "registration failed", err)
		}
		return
	}

	session, _, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "post-registration login failed", err)
		return
	}

	// Best-effort; registration succeeds even if the email does not.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := h.emailService.SendWelcomeEmail(ctx, educator.Email, educator.Name); err != nil {
			log.Printf("failed to send welcome email to %s: %v", educator.Email, err)
		}
	}()

	h.writeSession(w, r, session, educator, http.StatusCreated)
}

// Login authenticates an educator and sets the session cookie
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidRequestBody, "", err)
		return
	}

	session, educator, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondWithError(w, http.StatusUnauthorized, "Invalid email or password", "", nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "login failed", err)
		return
	}

	h.writeSession(w, r, session, educator, http.StatusOK)
}

// Logout invalidates the session and clears the cookie
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if err := h.authService.Logout(cookie.Value); err != nil {
			respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "logout failed", err)
			return
		}
	}
	http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
	respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Me returns the signed-in educator and a fresh CSRF token
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	educator := GetEducatorFromContext(r.Context())
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	token, err := h.csrf.GenerateToken(cookie.Value)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to generate csrf token", err)
		return
	}

	respondJSON(w, http.StatusOK, sessionResponse{Educator: educator, CSRFToken: token})
}

func (h *AuthHandler) writeSession(w http.ResponseWriter, r *http.Request, session *models.Session, educator *models.Educator, status int) {
	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, session.ID, session.ExpiresAt))

	token, err := h.csrf.GenerateToken(session.ID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "failed to generate csrf token", err)
		return
	}

	respondJSON(w, status, sessionResponse{Educator: educator, CSRFToken: token})
}
