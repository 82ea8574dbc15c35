package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"stemquest/internal/models"
	"stemquest/internal/nav"
	"stemquest/internal/service"
)

func TestRespondNavPlayingWithoutGameShowsPlaceholder(t *testing.T) {
	// Landing in the playing view with nothing resolved must come back
	// as a neutral holding payload, not an error.
	h := &PlayHandler{playService: service.NewPlayService(nil, nil, nil, nil, nil, nil, nil)}

	rec := httptest.NewRecorder()
	h.respondNav(rec, &models.Student{ID: 1}, nav.State{View: nav.ViewPlaying}, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp navResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Placeholder != "preparing" {
		t.Errorf("expected preparing placeholder, got %q", resp.Placeholder)
	}
	if resp.Resolution != nil {
		t.Errorf("expected no resolution, got %+v", resp.Resolution)
	}
}
