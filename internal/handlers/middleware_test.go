package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"stemquest/internal/models"
	"stemquest/internal/security"
)

func TestRequireEducatorAuthMissingCookie(t *testing.T) {
	m := NewMiddleware(nil, nil, nil, nil)

	called := false
	handler := m.RequireEducatorAuth(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/api/educator/students", nil))

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", w.Code)
	}
	if called {
		t.Error("handler should not be called without a session cookie")
	}
}

func TestRequireStudentAuthMissingToken(t *testing.T) {
	m := NewMiddleware(nil, nil, nil, nil)

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"wrong scheme", "Basic abc123"},
		{"bare token", "sometoken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := m.RequireStudentAuth(func(w http.ResponseWriter, r *http.Request) {
				called = true
			})

			req := httptest.NewRequest(http.MethodGet, "/api/student/dashboard", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			handler(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected status 401, got %d", w.Code)
			}
			if called {
				t.Error("handler should not be called without a bearer token")
			}
		})
	}
}

func TestRateLimit(t *testing.T) {
	limiter := security.NewRateLimiter(2, time.Minute)
	m := NewMiddleware(nil, nil, limiter, nil)

	handler := m.RateLimit(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		handler(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("request %d: expected status 200, got %d", i+1, w.Code)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	handler(w, req)

	if w.Code != http.StatusTooManyRequests {
		t.Errorf("expected status 429 after limit, got %d", w.Code)
	}

	// A different client is unaffected
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	handler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200 for a different IP, got %d", w.Code)
	}
}

func TestCSRFProtect(t *testing.T) {
	csrf := security.NewCSRFGenerator("test-secret")
	m := NewMiddleware(nil, nil, nil, csrf)

	handler := m.CSRFProtect(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	const sessionID = "session-abc"
	token, err := csrf.GenerateToken(sessionID)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	tests := []struct {
		name       string
		cookie     string
		token      string
		wantStatus int
	}{
		{"valid token", sessionID, token, http.StatusOK},
		{"missing token", sessionID, "", http.StatusForbidden},
		{"wrong token", sessionID, "bogus", http.StatusForbidden},
		{"token for another session", "other-session", token, http.StatusForbidden},
		{"no session cookie", "", token, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/educator/students", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: tt.cookie})
			}
			if tt.token != "" {
				req.Header.Set("X-CSRF-Token", tt.token)
			}

			w := httptest.NewRecorder()
			handler(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
		})
	}
}

func TestGetEducatorFromContext(t *testing.T) {
	if got := GetEducatorFromContext(context.Background()); got != nil {
		t.Errorf("expected nil educator from empty context, got %+v", got)
	}

	educator := &models.Educator{ID: 7, Email: "teach@example.com"}
	ctx := context.WithValue(context.Background(), EducatorContextKey, educator)
	if got := GetEducatorFromContext(ctx); got == nil || got.ID != 7 {
		t.Errorf("expected educator 7, got %+v", got)
	}
}

func TestGetStudentFromContext(t *testing.T) {
	if got := GetStudentFromContext(context.Background()); got != nil {
		t.Errorf("expected nil student from empty context, got %+v", got)
	}

	student := &models.Student{ID: 3, Username: "brave-otter42"}
	ctx := context.WithValue(context.Background(), StudentContextKey, student)
	if got := GetStudentFromContext(ctx); got == nil || got.ID != 3 {
		t.Errorf("expected student 3, got %+v", got)
	}
}
