package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

func newAdminAuth(t *testing.T) *AdminAuthService {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return NewAdminAuthService(AdminAuthConfig{
		Username:     "admin",
		PasswordHash: string(hash),
		Secret:       []byte("signing-key"),
		Issuer:       "activityweather",
	})
}

func TestAdminAuth_LoginRoundTrip(t *testing.T) {
	svc := newAdminAuth(t)

	token, err := svc.Login("admin", "s3cret")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	subject, err := svc.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("expected token to authenticate, got %v", err)
	}
	if subject != "admin" {
		t.Errorf("expected subject admin, got %q", subject)
	}
}

func TestAdminAuth_LoginRejectsBadCredentials(t *testing.T) {
	svc := newAdminAuth(t)
	for _, tc := range []struct{ user, pass string }{
		{"admin", "wrong"},
		{"root", "s3cret"},
		{"", ""},
	} {
		if _, err := svc.Login(tc.user, tc.pass); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login(%q, %q): expected ErrInvalidCredentials, got %v", tc.user, tc.pass, err)
		}
	}
}

func TestAdminAuth_LoginDisabledWithoutHash(t *testing.T) {
	svc := NewAdminAuthService(AdminAuthConfig{Username: "admin", Secret: []byte("k")})
	if _, err := svc.Login("admin", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAdminAuth_ExpiredToken(t *testing.T) {
	svc := newAdminAuth(t)
	token, err := svc.Login("admin", "s3cret")
	if err != nil {
		t.Fatal(err)
	}
	svc.now = func() time.Time { return time.Now().Add(2 * AdminTokenTTL) }

	if _, err := svc.Authenticate(context.Background(), token); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestAdminAuth_ForeignSignature(t *testing.T) {
	svc := newAdminAuth(t)
	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin",
		Issuer:    "activityweather",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("other-key"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Authenticate(context.Background(), forged); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), ""); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized for empty token, got %v", err)
	}
}

type stubVerifier struct {
	token *oidc.IDToken
	err   error
}

func (v stubVerifier) Verify(ctx context.Context, raw string) (*oidc.IDToken, error) {
	return v.token, v.err
}

func TestAdminAuth_OIDCFallback(t *testing.T) {
	svc := newAdminAuth(t)
	svc.cfg.Verifier = stubVerifier{err: errors.New("bad token")}
	if _, err := svc.Authenticate(context.Background(), "opaque"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}
