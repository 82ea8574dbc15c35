package validation

import "testing"

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{name: "valid email", email: "test@example.com", wantErr: false},
		{name: "valid email with subdomain", email: "user@mail.example.com", wantErr: false},
		{name: "valid email with plus", email: "user+tag@example.com", wantErr: false},
		{name: "missing @", email: "testexample.com", wantErr: true},
		{name: "missing domain", email: "test@", wantErr: true},
		{name: "missing local part", email: "@example.com", wantErr: true},
		{name: "empty string", email: "", wantErr: true},
		{name: "spaces in email", email: "test @example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "valid password", password: "longenough", wantErr: false},
		{name: "too short", password: "short", wantErr: true},
		{name: "empty", password: "", wantErr: true},
		{name: "exactly 8 characters", password: "12345678", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword(%q) error = %v, wantErr %v", tt.password, err, tt.wantErr)
			}
		})
	}
}

func TestValidateStudentUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{name: "adjective-noun style", username: "brave-dragon", wantErr: false},
		{name: "with digits", username: "explorer42", wantErr: false},
		{name: "too short", username: "ab", wantErr: true},
		{name: "uppercase rejected", username: "Brave-Dragon", wantErr: true},
		{name: "leading hyphen rejected", username: "-dragon", wantErr: true},
		{name: "empty", username: "", wantErr: true},
		{name: "spaces rejected", username: "brave dragon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStudentUsername(tt.username)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateStudentUsername(%q) error = %v, wantErr %v", tt.username, err, tt.wantErr)
			}
		})
	}
}

func TestValidateGrade(t *testing.T) {
	tests := []struct {
		name    string
		grade   int
		wantErr bool
	}{
		{name: "lowest supported", grade: 6, wantErr: false},
		{name: "highest supported", grade: 12, wantErr: false},
		{name: "middle", grade: 9, wantErr: false},
		{name: "below range", grade: 5, wantErr: true},
		{name: "above range", grade: 13, wantErr: true},
		{name: "zero", grade: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGrade(tt.grade)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateGrade(%d) error = %v, wantErr %v", tt.grade, err, tt.wantErr)
			}
		})
	}
}
