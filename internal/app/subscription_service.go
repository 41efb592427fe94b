package app

import (
	"context"

	"go.uber.org/zap"

	"activityweather/internal/domain"
)

// SubscriptionClient manages push subscriptions on the platform.
type SubscriptionClient interface {
	CreateSubscription(ctx context.Context, callbackURL, verifyToken string) (*domain.Subscription, error)
	ListSubscriptions(ctx context.Context) ([]domain.Subscription, error)
	DeleteSubscription(ctx context.Context, id int64) error
}

// SubscriptionService registers this deployment's webhook endpoint.
type SubscriptionService struct {
	client      SubscriptionClient
	callbackURL string
	verifyToken string
	logger      *zap.Logger
}

// NewSubscriptionService creates a new subscription service.
func NewSubscriptionService(client SubscriptionClient, callbackURL, verifyToken string, logger *zap.Logger) *SubscriptionService {
	return &SubscriptionService{
		client:      client,
		callbackURL: callbackURL,
		verifyToken: verifyToken,
		logger:      logger,
	}
}

// Subscribe creates a subscription pointing at the configured callback URL.
func (s *SubscriptionService) Subscribe(ctx context.Context) (*domain.Subscription, error) {
	sub, err := s.client.CreateSubscription(ctx, s.callbackURL, s.verifyToken)
	if err != nil {
		return nil, err
	}
	s.logger.Info("push subscription created", zap.Int64("subscription_id", sub.ID))
	return sub, nil
}

// List returns the existing subscriptions.
func (s *SubscriptionService) List(ctx context.Context) ([]domain.Subscription, error) {
	return s.client.ListSubscriptions(ctx)
}

// Unsubscribe deletes subscription id.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, id int64) error {
	if err := s.client.DeleteSubscription(ctx, id); err != nil {
		return err
	}
	s.logger.Info("push subscription deleted", zap.Int64("subscription_id", id))
	return nil
}

// VerifyChallenge reports whether a subscription validation request carries
// the expected mode and verify token.
func (s *SubscriptionService) VerifyChallenge(mode, token string) bool {
	return mode == "subscribe" && s.verifyToken != "" && ConstantTimeCompare(token, s.verifyToken)
}
