package crypto

import (
	"strings"
	"testing"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22!")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if hash == "hunter22!" {
		t.Fatalf("expected hash, got the plaintext back")
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Fatalf("expected a bcrypt hash, got %q", hash)
	}
	if err := CheckPassword(hash, "hunter22!"); err != nil {
		t.Fatalf("expected password to match: %v", err)
	}
	if err := CheckPassword(hash, "hunter23!"); err == nil {
		t.Fatalf("expected mismatch for the wrong password")
	}
}

func TestPasswordHashesAreSalted(t *testing.T) {
	first, err := HashPassword("hunter22!")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	second, err := HashPassword("hunter22!")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct hashes for the same password")
	}
}
