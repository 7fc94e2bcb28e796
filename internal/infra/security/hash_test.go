package security

import (
	"strings"
	"testing"
)

func TestHashPassword_VerifyRoundTrip(t *testing.T) {
	encoded, err := HashPassword("swordfish-42")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	if !strings.Contains(encoded, ":") {
		t.Fatalf("expected salt:hash encoding, got %q", encoded)
	}

	ok, err := VerifyPassword("swordfish-42", encoded)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if !ok {
		t.Fatalf("expected password to verify against its own hash")
	}

	ok, err = VerifyPassword("not-the-password", encoded)
	if err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if ok {
		t.Fatalf("expected wrong password to fail verification")
	}
}

func TestHashPassword_SaltsDiffer(t *testing.T) {
	first, err := HashPassword("swordfish-42")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	second, err := HashPassword("swordfish-42")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if first == second {
		t.Fatalf("expected distinct salts to produce distinct encodings")
	}
}

func TestVerifyPassword_MalformedEncoding(t *testing.T) {
	if _, err := VerifyPassword("pw", "not-a-valid-encoding"); err == nil {
		t.Fatalf("expected error for malformed hash encoding")
	}

	ok, err := VerifyPassword("", "")
	if err != nil {
		t.Fatalf("VerifyPassword empty: %v", err)
	}
	if ok {
		t.Fatalf("empty password must never verify")
	}
}

func TestHashToken_Deterministic(t *testing.T) {
	if HashToken("key") != HashToken("key") {
		t.Fatalf("expected stable hash for equal inputs")
	}
	if HashToken("key") == HashToken("other") {
		t.Fatalf("expected distinct hashes for distinct inputs")
	}
}

func TestGenerateSecureToken(t *testing.T) {
	token, err := GenerateSecureToken(32)
	if err != nil {
		t.Fatalf("GenerateSecureToken: %v", err)
	}
	if len(token) == 0 {
		t.Fatalf("expected non-empty token")
	}
	if strings.ContainsAny(token, "+/=") {
		t.Fatalf("expected URL-safe token, got %q", token)
	}

	if _, err := GenerateSecureToken(0); err == nil {
		t.Fatalf("expected error for non-positive length")
	}
}
