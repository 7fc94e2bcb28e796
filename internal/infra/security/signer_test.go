package security

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const activationWindow = 7 * 24 * time.Hour

func TestActivationSigner_RoundTrip(t *testing.T) {
	signer := NewActivationSigner([]byte("s3cret"), "registration")

	for _, identifier := range []string{"alice", "user.withchars", "żółć", "a"} {
		token := signer.Issue(identifier)

		got, err := signer.Verify(token, activationWindow)
		if err != nil {
			t.Fatalf("Verify(%q token) returned error: %v", identifier, err)
		}
		if got != identifier {
			t.Fatalf("expected identifier %q, got %q", identifier, got)
		}
	}
}

func TestActivationSigner_TokenIsURLSafe(t *testing.T) {
	signer := NewActivationSigner([]byte("s3cret"), "registration")

	token := signer.Issue("alice/../?&#")
	if strings.ContainsAny(token, "/?&# ") {
		t.Fatalf("token %q is not embeddable in a URL path segment", token)
	}
}

func TestActivationSigner_WrongSecretRejected(t *testing.T) {
	issuer := NewActivationSigner([]byte("key-one"), "registration")
	verifier := NewActivationSigner([]byte("key-two"), "registration")

	token := issuer.Issue("alice")

	if _, err := verifier.Verify(token, activationWindow); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature from mismatched secret, got %v", err)
	}
}

func TestActivationSigner_SaltSeparatesDomains(t *testing.T) {
	issuer := NewActivationSigner([]byte("shared"), "registration")
	verifier := NewActivationSigner([]byte("shared"), "password-reset")

	token := issuer.Issue("alice")

	if _, err := verifier.Verify(token, activationWindow); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature across salts, got %v", err)
	}
}

func TestActivationSigner_TamperedTokenRejected(t *testing.T) {
	signer := NewActivationSigner([]byte("s3cret"), "registration")

	token := signer.Issue("alice")
	tampered := strings.Replace(token, token[:1], "x", 1)
	if tampered == token {
		tampered = "y" + token[1:]
	}

	if _, err := signer.Verify(tampered, activationWindow); !errors.Is(err, ErrBadSignature) {
		t.Fatalf("expected ErrBadSignature for tampered token, got %v", err)
	}
}

func TestActivationSigner_MalformedTokenReportsBadSignature(t *testing.T) {
	signer := NewActivationSigner([]byte("s3cret"), "registration")

	// Malformed inputs must be indistinguishable from forgeries.
	for _, token := range []string{"", "noseparator", "a.b", "%%%.1.%%%", "YWxpY2U.notbase36!.c2ln"} {
		if _, err := signer.Verify(token, activationWindow); !errors.Is(err, ErrBadSignature) {
			t.Fatalf("Verify(%q): expected ErrBadSignature, got %v", token, err)
		}
	}
}

func TestActivationSigner_ExpiredTokenRejected(t *testing.T) {
	issued := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	clock := issued

	signer := NewActivationSigner([]byte("s3cret"), "registration").
		WithClock(func() time.Time { return clock })

	token := signer.Issue("alice")

	clock = issued.Add(activationWindow - time.Second)
	if _, err := signer.Verify(token, activationWindow); err != nil {
		t.Fatalf("token inside window rejected: %v", err)
	}

	clock = issued.Add(activationWindow + time.Second)
	if _, err := signer.Verify(token, activationWindow); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired past the window, got %v", err)
	}
}
