package app

import (
	"context"
	"errors"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials indicates that the provided username or password was incorrect.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUnauthorized indicates a missing, expired, or forged bearer token.
	ErrUnauthorized = errors.New("unauthorized")
)

// AdminTokenTTL is the lifetime of an issued admin token.
const AdminTokenTTL = time.Hour

// IDTokenVerifier verifies OIDC ID tokens; *oidc.IDTokenVerifier satisfies it.
type IDTokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*oidc.IDToken, error)
}

// AdminAuthConfig configures AdminAuthService.
type AdminAuthConfig struct {
	Username     string
	PasswordHash string
	Secret       []byte
	Issuer       string
	// Verifier is optional; when set, OIDC ID tokens are accepted as bearers.
	Verifier IDTokenVerifier
}

// AdminAuthService guards the admin endpoints.
type AdminAuthService struct {
	cfg AdminAuthConfig
	now func() time.Time
}

// NewAdminAuthService creates a new admin auth service.
func NewAdminAuthService(cfg AdminAuthConfig) *AdminAuthService {
	return &AdminAuthService{cfg: cfg, now: time.Now}
}

// Login checks the admin credentials and issues a signed token.
func (s *AdminAuthService) Login(username, password string) (string, error) {
	if s.cfg.PasswordHash == "" || len(s.cfg.Secret) == 0 {
		return "", ErrInvalidCredentials
	}
	if !ConstantTimeCompare(username, s.cfg.Username) {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   username,
		Issuer:    s.cfg.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(AdminTokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
}

// Authenticate validates a bearer token and returns its subject.
func (s *AdminAuthService) Authenticate(ctx context.Context, raw string) (string, error) {
	if raw == "" {
		return "", ErrUnauthorized
	}

	if len(s.cfg.Secret) > 0 {
		claims := &jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
			return s.cfg.Secret, nil
		},
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(s.cfg.Issuer),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(s.now),
		)
		if err == nil {
			return claims.Subject, nil
		}
	}

	if s.cfg.Verifier != nil {
		idToken, err := s.cfg.Verifier.Verify(ctx, raw)
		if err == nil {
			var claims struct {
				Email string `json:"email"`
			}
			if err := idToken.Claims(&claims); err == nil && claims.Email != "" {
				return claims.Email, nil
			}
			return idToken.Subject, nil
		}
	}

	return "", ErrUnauthorized
}
