package security

import "testing"

func TestCSRFTokenRoundTrip(t *testing.T) {
	g := NewCSRFGenerator("test-secret")

	token, err := g.GenerateToken("session-123")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	if !g.ValidateToken("session-123", token) {
		t.Error("ValidateToken() = false for matching session")
	}
	if g.ValidateToken("session-456", token) {
		t.Error("ValidateToken() = true for different session")
	}
	if g.ValidateToken("session-123", "bogus") {
		t.Error("ValidateToken() = true for bogus token")
	}
}

func TestCSRFTokenDeterministic(t *testing.T) {
	g := NewCSRFGenerator("test-secret")

	first, _ := g.GenerateToken("session-123")
	second, _ := g.GenerateToken("session-123")
	if first != second {
		t.Error("tokens for the same session should match")
	}

	other := NewCSRFGenerator("other-secret")
	third, _ := other.GenerateToken("session-123")
	if first == third {
		t.Error("tokens from different secrets should differ")
	}
}

func TestCSRFEmptySessionRejected(t *testing.T) {
	g := NewCSRFGenerator("test-secret")

	if _, err := g.GenerateToken(""); err == nil {
		t.Error("GenerateToken(\"\") expected error")
	}
	if g.ValidateToken("", "token") {
		t.Error("ValidateToken with empty session should fail")
	}
}
