package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("test-secret", time.Hour)

	token, err := issuer.Issue("01HUSER")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if token == "" {
		t.Fatal("Issue returned empty token")
	}

	userID, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if userID != "01HUSER" {
		t.Errorf("Verify user = %q, want 01HUSER", userID)
	}
}

func TestTokenIssuer_ExpiresAfterWindow(t *testing.T) {
	t.Parallel()

	issued := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer("test-secret", 7*24*time.Hour)
	issuer.now = func() time.Time { return issued }

	token, err := issuer.Issue("u1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	issuer.now = func() time.Time { return issued.Add(6 * 24 * time.Hour) }
	if _, err := issuer.Verify(token); err != nil {
		t.Errorf("token should be valid after 6 days: %v", err)
	}

	issuer.now = func() time.Time { return issued.Add(8 * 24 * time.Hour) }
	if _, err := issuer.Verify(token); err != ErrInvalidToken {
		t.Errorf("token after 8 days error = %v, want ErrInvalidToken", err)
	}
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	t.Parallel()

	token, err := NewTokenIssuer("secret-a", time.Hour).Issue("u1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := NewTokenIssuer("secret-b", time.Hour).Verify(token); err != ErrInvalidToken {
		t.Errorf("Verify with wrong secret error = %v, want ErrInvalidToken", err)
	}
}

func TestTokenIssuer_RejectsMalformedAndTampered(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer("test-secret", time.Hour)
	token, err := issuer.Issue("u1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	for _, tok := range []string{"", "not-a-token", "a.b.c", tampered} {
		if _, err := issuer.Verify(tok); err != ErrInvalidToken {
			t.Errorf("Verify(%q) error = %v, want ErrInvalidToken", tok, err)
		}
	}
}

func TestTokenIssuer_RejectsNoneAlgorithm(t *testing.T) {
	t.Parallel()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           "u1",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	if _, err := NewTokenIssuer("test-secret", time.Hour).Verify(token); err != ErrInvalidToken {
		t.Errorf("none-alg token error = %v, want ErrInvalidToken", err)
	}
}

func TestTokenIssuer_RejectsMissingUserID(t *testing.T) {
	t.Parallel()

	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := NewTokenIssuer("test-secret", time.Hour).Verify(token); err != ErrInvalidToken {
		t.Errorf("token without user id error = %v, want ErrInvalidToken", err)
	}
}
