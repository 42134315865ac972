package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"reviewdash/internal/adapters/auth"
)

func TestVerifier_SignAndParse(t *testing.T) {
	v := auth.Verifier{Secret: []byte("test-secret"), Issuer: "hosted-auth"}
	tok, err := v.Sign("user-1", time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	c, err := v.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.UserID() != "user-1" {
		t.Fatalf("unexpected subject %q", c.UserID())
	}

	ctx := auth.WithClaims(context.Background(), c)
	got, ok := auth.ClaimsFrom(ctx)
	if !ok || got.UserID() != "user-1" {
		t.Fatalf("claims not carried in context")
	}
}

func TestVerifier_Rejects(t *testing.T) {
	v := auth.Verifier{Secret: []byte("test-secret"), Issuer: "hosted-auth"}

	other := auth.Verifier{Secret: []byte("other-secret"), Issuer: "hosted-auth"}
	wrongKey, _ := other.Sign("user-1", time.Minute)

	wrongIss, _ := auth.Verifier{Secret: []byte("test-secret"), Issuer: "elsewhere"}.Sign("user-1", time.Minute)

	expired, _ := v.Sign("user-1", -time.Hour)

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer: "hosted-auth", Subject: "user-1",
	}).SignedString([]byte("test-secret"))

	for name, tok := range map[string]string{
		"wrong key":    wrongKey,
		"wrong issuer": wrongIss,
		"expired":      expired,
		"no exp":       noExp,
		"garbage":      "not-a-jwt",
	} {
		if _, err := v.Parse(tok); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}
