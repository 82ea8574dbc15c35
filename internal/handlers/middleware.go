package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"stemquest/internal/models"
	"stemquest/internal/security"
	"stemquest/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	EducatorContextKey ContextKey = "educator"
	StudentContextKey  ContextKey = "student"
)

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService    *service.AuthService
	studentService *service.StudentService
	limiter        *security.RateLimiter
	csrf           *security.CSRFGenerator
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService, studentService *service.StudentService, limiter *security.RateLimiter, csrf *security.CSRFGenerator) *Middleware {
	return &Middleware{
		authService:    authService,
		studentService: studentService,
		limiter:        limiter,
		csrf:           csrf,
	}
}

// RequireEducatorAuth requires a valid educator session cookie
func (m *Middleware) RequireEducatorAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}

		educator, err := m.authService.ValidateSession(cookie.Value)
		if err != nil {
			http.SetCookie(w, security.CreateDeleteCookie(r, SessionCookieName))
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}

		ctx := context.WithValue(r.Context(), EducatorContextKey, educator)
		next(w, r.WithContext(ctx))
	}
}

// RequireAdmin requires an educator session with the admin flag
func (m *Middleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireEducatorAuth(func(w http.ResponseWriter, r *http.Request) {
		educator := GetEducatorFromContext(r.Context())
		if educator == nil || !educator.IsAdmin {
			respondWithError(w, http.StatusForbidden, "Admin access required", "", nil)
			return
		}
		next(w, r)
	})
}

// RequireStudentAuth requires a valid play token in the Authorization header
func (m *Middleware) RequireStudentAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}

		student, err := m.studentService.VerifyToken(token)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}

		ctx := context.WithValue(r.Context(), StudentContextKey, student)
		next(w, r.WithContext(ctx))
	}
}

// RateLimit rejects clients that exceed the per-IP request budget
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip := security.GetClientIP(r)
		if !m.limiter.Allow(ip) {
			respondWithError(w, http.StatusTooManyRequests, "Too many requests, please try again later", "", nil)
			return
		}
		next(w, r)
	}
}

// CSRFProtect validates the X-CSRF-Token header against the educator
// session for cookie-authenticated mutating requests
func (m *Middleware) CSRFProtect(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
			return
		}

		token := r.Header.Get("X-CSRF-Token")
		if token == "" || !m.csrf.ValidateToken(cookie.Value, token) {
			respondWithError(w, http.StatusForbidden, "Invalid CSRF token", "", nil)
			return
		}
		next(w, r)
	}
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// GetEducatorFromContext retrieves the educator from the request context
func GetEducatorFromContext(ctx context.Context) *models.Educator {
	educator, ok := ctx.Value(EducatorContextKey).(*models.Educator)
	if !ok {
		return nil
	}
	return educator
}

// GetStudentFromContext retrieves the student from the request context
func GetStudentFromContext(ctx context.Context) *models.Student {
	student, ok := ctx.Value(StudentContextKey).(*models.Student)
	if !ok {
		return nil
	}
	return student
}
