package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"activityweather/internal/domain"
	"activityweather/internal/observability"
)

// TokenFreshnessMargin is how long before expiry a stored access token is
// already treated as expired.
const TokenFreshnessMargin = 5 * time.Minute

var (
	// ErrTokenNotFound indicates the athlete never authorized the application.
	ErrTokenNotFound = errors.New("athlete token not found")
	// ErrTokenRefresh indicates the refresh-token grant failed.
	ErrTokenRefresh = errors.New("token refresh failed")
)

// TokenRefresher performs the OAuth refresh-token grant.
type TokenRefresher interface {
	RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenGrant, error)
}

// TokenService hands out valid access tokens, refreshing them when needed.
type TokenService struct {
	tokens    domain.AthleteTokenRepository
	refresher TokenRefresher
	logger    *zap.Logger
	now       func() time.Time
	group     singleflight.Group
}

// NewTokenService creates a new token service.
func NewTokenService(tokens domain.AthleteTokenRepository, refresher TokenRefresher, logger *zap.Logger) *TokenService {
	return &TokenService{
		tokens:    tokens,
		refresher: refresher,
		logger:    logger,
		now:       time.Now,
	}
}

// GetValidAccessToken returns an access token for athleteID that stays valid
// for at least TokenFreshnessMargin. Refreshes for the same athlete are
// collapsed into one grant.
func (s *TokenService) GetValidAccessToken(ctx context.Context, athleteID int64) (string, error) {
	token, err := s.tokens.GetAthleteToken(ctx, athleteID)
	if err != nil {
		return "", fmt.Errorf("load token for athlete %d: %w", athleteID, err)
	}
	if token == nil {
		return "", ErrTokenNotFound
	}

	if token.ExpiresAt.After(s.now().Add(TokenFreshnessMargin)) {
		return token.AccessToken, nil
	}

	v, err, shared := s.group.Do(strconv.FormatInt(athleteID, 10), func() (any, error) {
		return s.refresh(ctx, *token)
	})
	if err != nil {
		return "", err
	}
	if shared {
		s.logger.Debug("joined in-flight token refresh", zap.Int64("athlete_id", athleteID))
	}
	return v.(string), nil
}

func (s *TokenService) refresh(ctx context.Context, token domain.AthleteToken) (string, error) {
	log := s.logger.With(zap.Int64("athlete_id", token.AthleteID))

	grant, err := s.refresher.RefreshToken(ctx, token.RefreshToken)
	if err != nil {
		observability.RecordTokenRefresh("failure")
		log.Warn("token refresh failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrTokenRefresh, err)
	}

	token.AccessToken = grant.AccessToken
	if grant.RefreshToken != "" {
		token.RefreshToken = grant.RefreshToken
	}
	token.ExpiresAt = grant.ExpiresAt.UTC()
	token.UpdatedAt = s.now().UTC()

	found, err := s.tokens.UpdateAthleteToken(ctx, token)
	if err != nil {
		observability.RecordTokenRefresh("failure")
		log.Error("storing refreshed token failed", zap.Error(err))
		return "", fmt.Errorf("%w: store: %v", ErrTokenRefresh, err)
	}
	if !found {
		observability.RecordTokenRefresh("failure")
		log.Warn("token record disappeared during refresh")
		return "", fmt.Errorf("%w: record missing", ErrTokenRefresh)
	}

	observability.RecordTokenRefresh("success")
	log.Info("access token refreshed", zap.Time("expires_at", token.ExpiresAt))
	return token.AccessToken, nil
}
