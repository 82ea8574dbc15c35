package security

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "correct horse battery" {
		t.Fatal("hash equals plaintext")
	}

	if !CheckPassword(hash, "correct horse battery") {
		t.Error("CheckPassword() = false for correct password")
	}
	if CheckPassword(hash, "wrong password") {
		t.Error("CheckPassword() = true for wrong password")
	}
	if CheckPassword("not-a-hash", "anything") {
		t.Error("CheckPassword() = true for invalid hash")
	}
}

func TestHashPasswordProducesUniqueHashes(t *testing.T) {
	first, err := HashPassword("same input")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	second, err := HashPassword("same input")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if first == second {
		t.Error("expected salted hashes to differ")
	}
}
