package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("super-secret"))
	expiresAt := time.Now().Add(3 * 24 * time.Hour)

	tok, err := codec.Issue("42", "josh", expiresAt)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claims, err := codec.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.Subject != "42" {
		t.Fatalf("subject mismatch: got %q want %q", claims.Subject, "42")
	}
	if claims.Username != "josh" {
		t.Fatalf("username mismatch: got %q want %q", claims.Username, "josh")
	}
	if got := claims.ExpiresAt.Time.Unix(); got != expiresAt.Unix() {
		t.Fatalf("expiry mismatch: got %d want %d", got, expiresAt.Unix())
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("secret"))

	tok, err := codec.Issue("1", "u1", time.Now().Add(-time.Second))
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = codec.Verify(tok)
	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewCodec([]byte("right-secret")).Issue("2", "u2", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	_, err = NewCodec([]byte("wrong-secret")).Verify(tok)
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestVerify_TamperedSignature(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("secret"))
	tok, err := codec.Issue("3", "u3", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	// Swap the last character of the signature segment for a different
	// base64url character.
	last := tok[len(tok)-1]
	replacement := byte('A')
	if last == replacement {
		replacement = 'B'
	}
	tampered := tok[:len(tok)-1] + string(replacement)

	_, err = codec.Verify(tampered)
	if !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected ErrSignatureInvalid, got %v", err)
	}
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("k"))

	for _, tok := range []string{"", "not-a-jwt", "a.b", strings.Repeat("x", 64)} {
		if _, err := codec.Verify(tok); !errors.Is(err, ErrMalformedToken) {
			t.Fatalf("token %q: expected ErrMalformedToken, got %v", tok, err)
		}
	}
}

func TestIssue_EmptySecret(t *testing.T) {
	t.Parallel()

	if _, err := NewCodec(nil).Issue("1", "u", time.Now().Add(time.Hour)); err == nil {
		t.Fatal("expected error for empty secret, got nil")
	}
}

func TestIssue_Deterministic(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("secret"))
	expiresAt := time.Now().Add(time.Hour)

	a, err := codec.Issue("7", "u7", expiresAt)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	claimsA, err := codec.Verify(a)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}

	b, err := codec.Issue("7", "u7", expiresAt)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	claimsB, err := codec.Verify(b)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}

	if claimsA.Subject != claimsB.Subject || claimsA.Username != claimsB.Username || !claimsA.ExpiresAt.Equal(claimsB.ExpiresAt.Time) {
		t.Fatal("identical inputs verified to different claims")
	}
}
