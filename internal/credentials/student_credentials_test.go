package credentials

import (
	"strings"
	"testing"
)

func TestGenerateStudentPassword(t *testing.T) {
	passwords := make(map[string]bool)
	for i := 0; i < 50; i++ {
		password, err := GenerateStudentPassword()
		if err != nil {
			t.Fatalf("GenerateStudentPassword() error = %v", err)
		}
		if len(password) != 4 {
			t.Errorf("password length = %d, want 4", len(password))
		}
		passwords[password] = true
	}

	// With 62^4 possibilities, 50 draws should essentially never all collide
	if len(passwords) < 2 {
		t.Error("expected some variety in generated passwords")
	}
}

func TestGenerateStudentUsername(t *testing.T) {
	for i := 0; i < 20; i++ {
		username, err := GenerateStudentUsername()
		if err != nil {
			t.Fatalf("GenerateStudentUsername() error = %v", err)
		}

		parts := strings.Split(username, "-")
		if len(parts) != 2 {
			t.Fatalf("username %q not in adjective-noun format", username)
		}
		if parts[0] == "" || parts[1] == "" {
			t.Errorf("username %q has empty component", username)
		}
	}
}
