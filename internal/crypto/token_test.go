package crypto

import (
	"encoding/hex"
	"testing"
)

func TestNewToken(t *testing.T) {
	first, err := NewToken()
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	raw, err := hex.DecodeString(first)
	if err != nil {
		t.Fatalf("expected hex encoding: %v", err)
	}
	if len(raw) != 32 {
		t.Fatalf("expected 32 random bytes, got %d", len(raw))
	}

	second, err := NewToken()
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct tokens")
	}
}
