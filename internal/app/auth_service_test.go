package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"activityweather/internal/domain"
)

func grantFor(athleteID int64) *domain.TokenGrant {
	return &domain.TokenGrant{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Date(2026, 6, 1, 18, 0, 0, 0, time.FixedZone("CEST", 2*3600)),
		Athlete:      domain.AthleteProfile{ID: athleteID, Username: "jdoe"},
	}
}

func TestAuthService_BeginAuthorization(t *testing.T) {
	svc := NewAuthService(&mockOAuthClient{}, &mockTokenRepo{}, &mockAllowlistRepo{}, zap.NewNop())

	state, redirect, err := svc.BeginAuthorization()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if state == "" {
		t.Fatal("state should not be empty")
	}
	if !strings.HasSuffix(redirect, "state="+state) {
		t.Errorf("redirect %q does not carry state %q", redirect, state)
	}

	other, _, _ := svc.BeginAuthorization()
	if other == state {
		t.Error("state values should differ between calls")
	}
}

func TestAuthService_CompleteAuthorization_Success(t *testing.T) {
	ctx := context.Background()
	var stored domain.AthleteToken
	tokens := &mockTokenRepo{
		upsertFn: func(ctx context.Context, tok domain.AthleteToken) error {
			stored = tok
			return nil
		},
	}
	allow := &mockAllowlistRepo{
		allowedFn: func(ctx context.Context, id int64) (bool, error) { return id == 42, nil },
	}
	oauth := &mockOAuthClient{
		exchangeFn: func(ctx context.Context, code string) (*domain.TokenGrant, error) {
			if code != "the-code" {
				t.Errorf("expected code the-code, got %q", code)
			}
			return grantFor(42), nil
		},
	}

	athlete, err := NewAuthService(oauth, tokens, allow, zap.NewNop()).CompleteAuthorization(ctx, "the-code")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if athlete.ID != 42 {
		t.Errorf("expected athlete 42, got %d", athlete.ID)
	}
	if stored.AthleteID != 42 || stored.AccessToken != "access" || stored.RefreshToken != "refresh" {
		t.Errorf("unexpected stored token %+v", stored)
	}
	if stored.ExpiresAt.Location() != time.UTC {
		t.Errorf("expiry should be stored in UTC, got %v", stored.ExpiresAt.Location())
	}
}

func TestAuthService_CompleteAuthorization_NotAllowed(t *testing.T) {
	tokens := &mockTokenRepo{
		upsertFn: func(ctx context.Context, tok domain.AthleteToken) error {
			t.Error("token must not be stored for a denied athlete")
			return nil
		},
	}
	oauth := &mockOAuthClient{
		exchangeFn: func(ctx context.Context, code string) (*domain.TokenGrant, error) {
			return grantFor(7), nil
		},
	}

	athlete, err := NewAuthService(oauth, tokens, &mockAllowlistRepo{}, zap.NewNop()).
		CompleteAuthorization(context.Background(), "code")
	if !errors.Is(err, ErrAthleteNotAllowed) {
		t.Fatalf("expected ErrAthleteNotAllowed, got %v", err)
	}
	if athlete == nil || athlete.ID != 7 {
		t.Errorf("denied athlete should still be reported, got %+v", athlete)
	}
}

func TestAuthService_CompleteAuthorization_ExchangeFails(t *testing.T) {
	oauth := &mockOAuthClient{
		exchangeFn: func(ctx context.Context, code string) (*domain.TokenGrant, error) {
			return nil, errors.New("invalid code")
		},
	}
	_, err := NewAuthService(oauth, &mockTokenRepo{}, &mockAllowlistRepo{}, zap.NewNop()).
		CompleteAuthorization(context.Background(), "bad")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestAuthService_AllowAthlete(t *testing.T) {
	var got int64
	allow := &mockAllowlistRepo{
		allowFn: func(ctx context.Context, id int64) error {
			got = id
			return nil
		},
	}
	svc := NewAuthService(&mockOAuthClient{}, &mockTokenRepo{}, allow, zap.NewNop())

	if err := svc.AllowAthlete(context.Background(), 42); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
	if err := svc.AllowAthlete(context.Background(), 0); err == nil {
		t.Error("expected error for athlete id 0")
	}
}

func TestConstantTimeCompare(t *testing.T) {
	if !ConstantTimeCompare("abc", "abc") {
		t.Error("expected equal strings to match")
	}
	if ConstantTimeCompare("abc", "abd") {
		t.Error("expected different strings not to match")
	}
}
