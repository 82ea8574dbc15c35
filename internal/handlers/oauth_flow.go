package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"stemquest/internal/security"
)

const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// googleOAuth holds the Google sign-in configuration for educators
type googleOAuth struct {
	config          *oauth2.Config
	redirectBaseURL string
	appBaseURL      string
}

// NewGoogleOAuth builds the Google OAuth flow. Returns nil when no
// client credentials are configured, which disables the endpoints.
func NewGoogleOAuth(clientID, clientSecret, redirectBaseURL, appBaseURL string) *googleOAuth {
	if clientID == "" || clientSecret == "" {
		return nil
	}
	return &googleOAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		redirectBaseURL: redirectBaseURL,
		appBaseURL:      appBaseURL,
	}
}

type googleUserInfo struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

// StartOAuth begins the Google sign-in flow
func (h *AuthHandler) StartOAuth(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		respondWithError(w, http.StatusBadRequest, "Google sign-in is not configured", "", nil)
		return
	}

	state := security.GenerateSessionID()
	h.setTempCookie(w, r, "oauth_state", state, 10*time.Minute)

	config := *h.google.config
	config.RedirectURL = h.google.redirectBaseURL + "/auth/google/callback"

	authURL := config.AuthCodeURL(state, oauth2.AccessTypeOnline)
	http.Redirect(w, r, authURL, http.StatusSeeOther)
}

// OAuthCallback completes the Google sign-in flow
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		respondWithError(w, http.StatusBadRequest, "Google sign-in is not configured", "", nil)
		return
	}

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		respondWithError(w, http.StatusBadRequest, "Invalid OAuth state", "", err)
		return
	}
	http.SetCookie(w, security.CreateDeleteCookie(r, "oauth_state"))

	code := r.URL.Query().Get("code")
	if code == "" {
		respondWithError(w, http.StatusBadRequest, "Missing authorization code", "", nil)
		return
	}

	config := *h.google.config
	config.RedirectURL = h.google.redirectBaseURL + "/auth/google/callback"

	token, err := config.Exchange(r.Context(), code)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "OAuth exchange failed", "google oauth exchange failed", err)
		return
	}

	info, err := fetchGoogleUserInfo(r, &config, token)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "Failed to fetch user info", "google userinfo fetch failed", err)
		return
	}

	session, _, err := h.authService.OAuthLogin("google", info.Subject, info.Email, info.Name)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, ErrInternalServerError, "oauth login failed", err)
		return
	}

	http.SetCookie(w, security.CreateSessionCookie(r, SessionCookieName, session.ID, session.ExpiresAt))
	http.Redirect(w, r, h.google.appBaseURL+"/educator", http.StatusSeeOther)
}

func fetchGoogleUserInfo(r *http.Request, config *oauth2.Config, token *oauth2.Token) (*googleUserInfo, error) {
	client := config.Client(r.Context(), token)
	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("userinfo returned %d: %s", resp.StatusCode, body)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	if info.Subject == "" || info.Email == "" {
		return nil, fmt.Errorf("userinfo response missing subject or email")
	}
	return &info, nil
}

func (h *AuthHandler) setTempCookie(w http.ResponseWriter, r *http.Request, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   security.IsSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	})
}
