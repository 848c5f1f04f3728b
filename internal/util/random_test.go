package util

import (
	"strings"
	"testing"
)

func TestGenerateRandomHex(t *testing.T) {
	got := GenerateRandomHex(16)
	if len(got) != 16 {
		t.Fatalf("expected 16 characters, got %d", len(got))
	}
	for _, r := range got {
		if !strings.ContainsRune("0123456789abcdef", r) {
			t.Errorf("non-hex character %q in %q", r, got)
		}
	}
	if GenerateRandomHex(0) != "" || GenerateRandomHex(-3) != "" {
		t.Error("non-positive length should return an empty string")
	}
}

func TestGenerateSessionID(t *testing.T) {
	id := GenerateSessionID()
	if !strings.HasPrefix(id, "s_") {
		t.Errorf("expected s_ prefix, got %q", id)
	}
	if len(id) != 34 {
		t.Errorf("expected 34 characters, got %d", len(id))
	}
	if id == GenerateSessionID() {
		t.Error("expected distinct session IDs")
	}
}
