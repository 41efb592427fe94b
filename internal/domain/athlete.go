// Package domain contains the core business entities, ports, and the pure
// enrichment composer.
package domain

import (
	"context"
	"time"
)

// AthleteToken holds the OAuth credentials of one athlete.
type AthleteToken struct {
	AthleteID    int64     `json:"athleteId"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"expiresAt"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// AthleteProfile is the identity embedded in an OAuth token response.
type AthleteProfile struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
}

// TokenGrant is the result of an authorization-code or refresh-token grant.
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	Athlete      AthleteProfile
}

// AthleteTokenRepository defines the port for credential persistence.
type AthleteTokenRepository interface {
	// GetAthleteToken returns nil, nil when no token is stored.
	GetAthleteToken(ctx context.Context, athleteID int64) (*AthleteToken, error)
	UpsertAthleteToken(ctx context.Context, token AthleteToken) error
	// UpdateAthleteToken overwrites the credentials of an existing record and
	// reports whether a record was found.
	UpdateAthleteToken(ctx context.Context, token AthleteToken) (bool, error)
}

// AllowlistRepository defines the port for the authorized-athlete list.
type AllowlistRepository interface {
	IsAthleteAllowed(ctx context.Context, athleteID int64) (bool, error)
	AllowAthlete(ctx context.Context, athleteID int64) error
}
