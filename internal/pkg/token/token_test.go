package token

import (
	"strings"
	"testing"
)

func TestGenerateSecureToken_InvalidLength(t *testing.T) {
	t.Parallel()

	if _, err := GenerateSecureToken(0); err == nil {
		t.Fatalf("expected error for invalid length")
	}
}

func TestGenerateSecureToken_LengthAndAlphabet(t *testing.T) {
	t.Parallel()

	tok, err := GenerateSecureToken(24)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tok) != 24 {
		t.Fatalf("expected token length 24, got %d", len(tok))
	}

	for i := 0; i < len(tok); i++ {
		if strings.IndexByte(alphabet, tok[i]) == -1 {
			t.Fatalf("token contains invalid character %q", tok[i])
		}
	}
}

func TestGenerateSecureToken_UniqueWithinSmallBatch(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})

	for i := 0; i < 100; i++ {
		tok, err := GenerateSecureToken(24)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, exists := seen[tok]; exists {
			t.Fatalf("duplicate token generated in small batch: %s", tok)
		}
		seen[tok] = struct{}{}
	}
}
