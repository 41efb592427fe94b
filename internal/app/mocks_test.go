package app

import (
	"context"
	"time"

	"activityweather/internal/domain"
)

type mockTokenRepo struct {
	getFn    func(ctx context.Context, athleteID int64) (*domain.AthleteToken, error)
	upsertFn func(ctx context.Context, token domain.AthleteToken) error
	updateFn func(ctx context.Context, token domain.AthleteToken) (bool, error)
}

func (m *mockTokenRepo) GetAthleteToken(ctx context.Context, athleteID int64) (*domain.AthleteToken, error) {
	if m.getFn != nil {
		return m.getFn(ctx, athleteID)
	}
	return nil, nil
}

func (m *mockTokenRepo) UpsertAthleteToken(ctx context.Context, token domain.AthleteToken) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, token)
	}
	return nil
}

func (m *mockTokenRepo) UpdateAthleteToken(ctx context.Context, token domain.AthleteToken) (bool, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, token)
	}
	return true, nil
}

type mockProcessedRepo struct {
	isProcessedFn func(ctx context.Context, activityID int64) (bool, error)
	recordFn      func(ctx context.Context, p domain.ProcessedActivity) (bool, error)
	listFn        func(ctx context.Context, athleteID int64, limit int) ([]domain.ProcessedActivity, error)
}

func (m *mockProcessedRepo) IsActivityProcessed(ctx context.Context, activityID int64) (bool, error) {
	if m.isProcessedFn != nil {
		return m.isProcessedFn(ctx, activityID)
	}
	return false, nil
}

func (m *mockProcessedRepo) RecordProcessedActivity(ctx context.Context, p domain.ProcessedActivity) (bool, error) {
	if m.recordFn != nil {
		return m.recordFn(ctx, p)
	}
	return true, nil
}

func (m *mockProcessedRepo) ListRecentProcessedActivities(ctx context.Context, athleteID int64, limit int) ([]domain.ProcessedActivity, error) {
	if m.listFn != nil {
		return m.listFn(ctx, athleteID, limit)
	}
	return nil, nil
}

type mockAllowlistRepo struct {
	allowedFn func(ctx context.Context, athleteID int64) (bool, error)
	allowFn   func(ctx context.Context, athleteID int64) error
}

func (m *mockAllowlistRepo) IsAthleteAllowed(ctx context.Context, athleteID int64) (bool, error) {
	if m.allowedFn != nil {
		return m.allowedFn(ctx, athleteID)
	}
	return false, nil
}

func (m *mockAllowlistRepo) AllowAthlete(ctx context.Context, athleteID int64) error {
	if m.allowFn != nil {
		return m.allowFn(ctx, athleteID)
	}
	return nil
}

type mockRefresher struct {
	refreshFn func(ctx context.Context, refreshToken string) (*domain.TokenGrant, error)
}

func (m *mockRefresher) RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenGrant, error) {
	return m.refreshFn(ctx, refreshToken)
}

type mockAccessTokens struct {
	getFn func(ctx context.Context, athleteID int64) (string, error)
}

func (m *mockAccessTokens) GetValidAccessToken(ctx context.Context, athleteID int64) (string, error) {
	if m.getFn != nil {
		return m.getFn(ctx, athleteID)
	}
	return "access", nil
}

type mockActivityClient struct {
	getFn    func(ctx context.Context, accessToken string, activityID int64) (*domain.Activity, error)
	updateFn func(ctx context.Context, accessToken string, activityID int64, name, description string) error
}

func (m *mockActivityClient) GetActivity(ctx context.Context, accessToken string, activityID int64) (*domain.Activity, error) {
	return m.getFn(ctx, accessToken, activityID)
}

func (m *mockActivityClient) UpdateActivity(ctx context.Context, accessToken string, activityID int64, name, description string) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, accessToken, activityID, name, description)
	}
	return nil
}

type mockWeatherClient struct {
	currentFn func(ctx context.Context, lat, lon float64, at time.Time) (*domain.WeatherSnapshot, error)
}

func (m *mockWeatherClient) CurrentWeather(ctx context.Context, lat, lon float64, at time.Time) (*domain.WeatherSnapshot, error) {
	return m.currentFn(ctx, lat, lon, at)
}

type mockOAuthClient struct {
	authURLFn  func(state string) string
	exchangeFn func(ctx context.Context, code string) (*domain.TokenGrant, error)
}

func (m *mockOAuthClient) AuthCodeURL(state string) string {
	if m.authURLFn != nil {
		return m.authURLFn(state)
	}
	return "https://platform.example/oauth/authorize?state=" + state
}

func (m *mockOAuthClient) ExchangeCode(ctx context.Context, code string) (*domain.TokenGrant, error) {
	return m.exchangeFn(ctx, code)
}

type mockSubscriptionClient struct {
	createFn func(ctx context.Context, callbackURL, verifyToken string) (*domain.Subscription, error)
	listFn   func(ctx context.Context) ([]domain.Subscription, error)
	deleteFn func(ctx context.Context, id int64) error
}

func (m *mockSubscriptionClient) CreateSubscription(ctx context.Context, callbackURL, verifyToken string) (*domain.Subscription, error) {
	return m.createFn(ctx, callbackURL, verifyToken)
}

func (m *mockSubscriptionClient) ListSubscriptions(ctx context.Context) ([]domain.Subscription, error) {
	return m.listFn(ctx)
}

func (m *mockSubscriptionClient) DeleteSubscription(ctx context.Context, id int64) error {
	return m.deleteFn(ctx, id)
}
