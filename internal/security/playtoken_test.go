package security

import (
	"testing"
	"time"
)

func TestPlayTokenRoundTrip(t *testing.T) {
	issuer := NewPlayTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Issue(42, "brave-dragon")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	studentID, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if studentID != 42 {
		t.Errorf("expected student 42, got %d", studentID)
	}
}

func TestPlayTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewPlayTokenIssuer("secret-one", time.Hour)
	other := NewPlayTokenIssuer("secret-two", time.Hour)

	token, err := issuer.Issue(42, "brave-dragon")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := other.Verify(token); err != ErrInvalidPlayToken {
		t.Errorf("expected ErrInvalidPlayToken, got %v", err)
	}
}

func TestPlayTokenRejectsExpired(t *testing.T) {
	issuer := NewPlayTokenIssuer("test-secret", -time.Minute)

	token, err := issuer.Issue(42, "brave-dragon")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if _, err := issuer.Verify(token); err != ErrInvalidPlayToken {
		t.Errorf("expected ErrInvalidPlayToken for expired token, got %v", err)
	}
}

func TestPlayTokenRejectsGarbage(t *testing.T) {
	issuer := NewPlayTokenIssuer("test-secret", time.Hour)

	if _, err := issuer.Verify("not-a-token"); err != ErrInvalidPlayToken {
		t.Errorf("expected ErrInvalidPlayToken, got %v", err)
	}
}
