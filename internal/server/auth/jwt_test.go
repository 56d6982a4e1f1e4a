package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/userkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("super-secret")

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTokenService(t *testing.T) (*TokenService, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	s, err := newTokenService(TokenConfig{Secret: testSecret, Algorithm: "HS256", TTL: 10 * time.Minute}, clock.now)
	if err != nil {
		t.Fatalf("newTokenService error: %v", err)
	}
	return s, clock
}

func TestIssueAndValidate_RoundTrip(t *testing.T) {
	t.Parallel()

	s, clock := newTestTokenService(t)

	tok, exp, err := s.Issue("4b8a2b5e-7c1e-4e55-9f53-0b2c6f0e1a11")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}
	if want := clock.t.Add(10 * time.Minute); !exp.Equal(want) {
		t.Fatalf("expiry mismatch: got %v want %v", exp, want)
	}

	sub, err := s.Validate(tok)
	if err != nil {
		t.Fatalf("Validate error: %v", err)
	}
	if sub != "4b8a2b5e-7c1e-4e55-9f53-0b2c6f0e1a11" {
		t.Fatalf("subject mismatch: got %q", sub)
	}
}

func TestIssue_EmptySubject(t *testing.T) {
	t.Parallel()

	s, _ := newTestTokenService(t)
	if _, _, err := s.Issue(""); err == nil {
		t.Fatal("expected error for empty subject")
	}
}

func TestValidate_ExpiredLooksLikeGarbage(t *testing.T) {
	t.Parallel()

	s, clock := newTestTokenService(t)

	tok, _, err := s.Issue("u1")
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	clock.advance(9 * time.Minute)
	if _, err := s.Validate(tok); err != nil {
		t.Fatalf("token should still be valid: %v", err)
	}

	clock.advance(2 * time.Minute)
	_, expiredErr := s.Validate(tok)
	_, garbageErr := s.Validate("not-a-jwt")

	if !errors.Is(expiredErr, common.ErrInvalidToken) || !errors.Is(garbageErr, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for both, got %v and %v", expiredErr, garbageErr)
	}
	if expiredErr.Error() != garbageErr.Error() {
		t.Fatalf("expired and garbage errors differ: %q vs %q", expiredErr, garbageErr)
	}
}

func signWith(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func TestValidate_Rejections(t *testing.T) {
	t.Parallel()

	s, clock := newTestTokenService(t)
	exp := jwt.NewNumericDate(clock.t.Add(time.Minute))

	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "wrong secret",
			token: signWith(t, jwt.SigningMethodHS256, []byte("other-secret"), jwt.RegisteredClaims{Subject: "u", ExpiresAt: exp}),
		},
		{
			name:  "algorithm mismatch",
			token: signWith(t, jwt.SigningMethodHS512, testSecret, jwt.RegisteredClaims{Subject: "u", ExpiresAt: exp}),
		},
		{
			name:  "alg none",
			token: signWith(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.RegisteredClaims{Subject: "u", ExpiresAt: exp}),
		},
		{
			name:  "missing subject",
			token: signWith(t, jwt.SigningMethodHS256, testSecret, jwt.RegisteredClaims{ExpiresAt: exp}),
		},
		{
			name:  "missing expiry",
			token: signWith(t, jwt.SigningMethodHS256, testSecret, jwt.RegisteredClaims{Subject: "u"}),
		},
		{
			name:  "malformed payload",
			token: "eyJhbGciOiJIUzI1NiJ9.bm90LWpzb24.c2ln",
		},
		{
			name:  "empty",
			token: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Validate(tt.token)
			if !errors.Is(err, common.ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestNewTokenService_Config(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     TokenConfig
		wantErr bool
	}{
		{name: "hs384", cfg: TokenConfig{Secret: testSecret, Algorithm: "HS384", TTL: time.Minute}},
		{name: "no secret", cfg: TokenConfig{Algorithm: "HS256", TTL: time.Minute}, wantErr: true},
		{name: "zero ttl", cfg: TokenConfig{Secret: testSecret, Algorithm: "HS256"}, wantErr: true},
		{name: "asymmetric", cfg: TokenConfig{Secret: testSecret, Algorithm: "RS256", TTL: time.Minute}, wantErr: true},
		{name: "unknown", cfg: TokenConfig{Secret: testSecret, Algorithm: "XX1", TTL: time.Minute}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewTokenService(tt.cfg)
			if tt.wantErr != (err != nil) {
				t.Fatalf("wantErr=%v, got %v", tt.wantErr, err)
			}
			if err == nil && s.TTL() != tt.cfg.TTL {
				t.Fatalf("ttl mismatch: %v", s.TTL())
			}
		})
	}
}
