package app

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"activityweather/internal/domain"
)

var fixedNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func storedToken(expiresIn time.Duration) *domain.AthleteToken {
	return &domain.AthleteToken{
		AthleteID:    42,
		AccessToken:  "stored-access",
		RefreshToken: "stored-refresh",
		ExpiresAt:    fixedNow.Add(expiresIn),
	}
}

func newTokenService(repo domain.AthleteTokenRepository, refresher TokenRefresher) *TokenService {
	svc := NewTokenService(repo, refresher, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestTokenService_FreshTokenSkipsRefresh(t *testing.T) {
	repo := &mockTokenRepo{
		getFn: func(ctx context.Context, id int64) (*domain.AthleteToken, error) {
			return storedToken(6 * time.Minute), nil
		},
	}
	refresher := &mockRefresher{
		refreshFn: func(ctx context.Context, rt string) (*domain.TokenGrant, error) {
			t.Fatal("refresh endpoint must not be called for a fresh token")
			return nil, nil
		},
	}

	got, err := newTokenService(repo, refresher).GetValidAccessToken(context.Background(), 42)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "stored-access" {
		t.Errorf("expected stored token, got %q", got)
	}
}

func TestTokenService_NearExpiryRefreshes(t *testing.T) {
	newExpiry := fixedNow.Add(6 * time.Hour)
	var updated domain.AthleteToken
	repo := &mockTokenRepo{
		getFn: func(ctx context.Context, id int64) (*domain.AthleteToken, error) {
			return storedToken(4 * time.Minute), nil
		},
		updateFn: func(ctx context.Context, tok domain.AthleteToken) (bool, error) {
			updated = tok
			return true, nil
		},
	}
	var calls int
	refresher := &mockRefresher{
		refreshFn: func(ctx context.Context, rt string) (*domain.TokenGrant, error) {
			calls++
			if rt != "stored-refresh" {
				t.Errorf("expected stored refresh token, got %q", rt)
			}
			return &domain.TokenGrant{AccessToken: "new-access", RefreshToken: "new-refresh", ExpiresAt: newExpiry}, nil
		},
	}

	got, err := newTokenService(repo, refresher).GetValidAccessToken(context.Background(), 42)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one refresh, got %d", calls)
	}
	if got != "new-access" {
		t.Errorf("expected new-access, got %q", got)
	}
	if updated.RefreshToken != "new-refresh" || !updated.ExpiresAt.Equal(newExpiry) {
		t.Errorf("unexpected stored token %+v", updated)
	}
	if !updated.UpdatedAt.Equal(fixedNow) {
		t.Errorf("expected updatedAt %v, got %v", fixedNow, updated.UpdatedAt)
	}
}

func TestTokenService_NotFound(t *testing.T) {
	svc := newTokenService(&mockTokenRepo{}, &mockRefresher{})
	_, err := svc.GetValidAccessToken(context.Background(), 42)
	if !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("expected ErrTokenNotFound, got %v", err)
	}
}

func TestTokenService_RefreshFailureLeavesStoreUntouched(t *testing.T) {
	repo := &mockTokenRepo{
		getFn: func(ctx context.Context, id int64) (*domain.AthleteToken, error) {
			return storedToken(-time.Hour), nil
		},
		updateFn: func(ctx context.Context, tok domain.AthleteToken) (bool, error) {
			t.Error("store must not be written when the refresh fails")
			return true, nil
		},
	}
	refresher := &mockRefresher{
		refreshFn: func(ctx context.Context, rt string) (*domain.TokenGrant, error) {
			return nil, errors.New("400 bad request")
		},
	}

	_, err := newTokenService(repo, refresher).GetValidAccessToken(context.Background(), 42)
	if !errors.Is(err, ErrTokenRefresh) {
		t.Errorf("expected ErrTokenRefresh, got %v", err)
	}
}

func TestTokenService_MissingRecordOnUpdate(t *testing.T) {
	repo := &mockTokenRepo{
		getFn: func(ctx context.Context, id int64) (*domain.AthleteToken, error) {
			return storedToken(-time.Hour), nil
		},
		updateFn: func(ctx context.Context, tok domain.AthleteToken) (bool, error) {
			return false, nil
		},
	}
	refresher := &mockRefresher{
		refreshFn: func(ctx context.Context, rt string) (*domain.TokenGrant, error) {
			return &domain.TokenGrant{AccessToken: "a", RefreshToken: "r", ExpiresAt: fixedNow.Add(time.Hour)}, nil
		},
	}

	_, err := newTokenService(repo, refresher).GetValidAccessToken(context.Background(), 42)
	if !errors.Is(err, ErrTokenRefresh) {
		t.Errorf("expected ErrTokenRefresh, got %v", err)
	}
}

func TestTokenService_ConcurrentRefreshesCollapse(t *testing.T) {
	repo := &mockTokenRepo{
		getFn: func(ctx context.Context, id int64) (*domain.AthleteToken, error) {
			return storedToken(time.Minute), nil
		},
	}
	started := make(chan struct{})
	release := make(chan struct{})
	var calls int32
	refresher := &mockRefresher{
		refreshFn: func(ctx context.Context, rt string) (*domain.TokenGrant, error) {
			if atomic.AddInt32(&calls, 1) == 1 {
				close(started)
			}
			<-release
			return &domain.TokenGrant{AccessToken: "new-access", RefreshToken: "r", ExpiresAt: fixedNow.Add(time.Hour)}, nil
		},
	}
	svc := newTokenService(repo, refresher)

	var wg sync.WaitGroup
	results := make([]string, 5)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = svc.GetValidAccessToken(context.Background(), 42)
	}()
	<-started
	for i := 1; i < len(results); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = svc.GetValidAccessToken(context.Background(), 42)
		}(i)
	}
	// Give the followers time to join the in-flight call.
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("expected a single refresh, got %d", n)
	}
	for i, r := range results {
		if r != "new-access" {
			t.Errorf("caller %d got %q", i, r)
		}
	}
}
