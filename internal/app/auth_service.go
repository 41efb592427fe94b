// Package app holds the application services and business logic.
package app

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"activityweather/internal/domain"
)

// ErrAthleteNotAllowed indicates the athlete is not on the allow-list.
var ErrAthleteNotAllowed = errors.New("athlete not allowed")

// OAuthClient performs the platform authorization-code flow.
type OAuthClient interface {
	AuthCodeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*domain.TokenGrant, error)
}

// AuthService connects athletes to the application through OAuth.
type AuthService struct {
	oauth     OAuthClient
	tokens    domain.AthleteTokenRepository
	allowlist domain.AllowlistRepository
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(oauth OAuthClient, tokens domain.AthleteTokenRepository, allowlist domain.AllowlistRepository, logger *zap.Logger) *AuthService {
	return &AuthService{
		oauth:     oauth,
		tokens:    tokens,
		allowlist: allowlist,
		logger:    logger,
		now:       time.Now,
	}
}

// BeginAuthorization returns a fresh state value and the authorization URL
// carrying it.
func (s *AuthService) BeginAuthorization() (state, redirectURL string, err error) {
	state, err = generateState()
	if err != nil {
		return "", "", err
	}
	return state, s.oauth.AuthCodeURL(state), nil
}

// CompleteAuthorization exchanges code for tokens and stores them when the
// athlete is allowed.
func (s *AuthService) CompleteAuthorization(ctx context.Context, code string) (*domain.AthleteProfile, error) {
	grant, err := s.oauth.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}
	athlete := grant.Athlete
	if athlete.ID == 0 {
		return nil, errors.New("token response without athlete")
	}

	allowed, err := s.allowlist.IsAthleteAllowed(ctx, athlete.ID)
	if err != nil {
		return nil, fmt.Errorf("check allow-list: %w", err)
	}
	if !allowed {
		s.logger.Warn("authorization denied", zap.Int64("athlete_id", athlete.ID))
		return &athlete, ErrAthleteNotAllowed
	}

	now := s.now().UTC()
	err = s.tokens.UpsertAthleteToken(ctx, domain.AthleteToken{
		AthleteID:    athlete.ID,
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		ExpiresAt:    grant.ExpiresAt.UTC(),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}

	s.logger.Info("athlete authorized",
		zap.Int64("athlete_id", athlete.ID),
		zap.String("username", athlete.Username))
	return &athlete, nil
}

// AllowAthlete adds athleteID to the allow-list.
func (s *AuthService) AllowAthlete(ctx context.Context, athleteID int64) error {
	if athleteID <= 0 {
		return fmt.Errorf("invalid athlete id %d", athleteID)
	}
	return s.allowlist.AllowAthlete(ctx, athleteID)
}

func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ConstantTimeCompare performs a constant-time comparison of two strings.
func ConstantTimeCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
