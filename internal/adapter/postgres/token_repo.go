package postgres

import (
	"context"
	"database/sql"
	"errors"

	"activityweather/internal/domain"
)

// GetAthleteToken retrieves the stored credentials of an athlete.
func (d *DB) GetAthleteToken(ctx context.Context, athleteID int64) (*domain.AthleteToken, error) {
	var t domain.AthleteToken
	err := d.sql.QueryRowContext(ctx,
		"SELECT athlete_id, access_token, refresh_token, expires_at, created_at, updated_at FROM athlete_tokens WHERE athlete_id = $1",
		athleteID,
	).Scan(&t.AthleteID, &t.AccessToken, &t.RefreshToken, &t.ExpiresAt, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t.ExpiresAt = t.ExpiresAt.UTC()
	return &t, nil
}

// UpsertAthleteToken creates or overwrites an athlete's credentials. The
// original created_at is kept on overwrite.
func (d *DB) UpsertAthleteToken(ctx context.Context, t domain.AthleteToken) error {
	_, err := d.sql.ExecContext(ctx,
		`INSERT INTO athlete_tokens (athlete_id, access_token, refresh_token, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (athlete_id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at = EXCLUDED.expires_at,
			updated_at = EXCLUDED.updated_at`,
		t.AthleteID, t.AccessToken, t.RefreshToken, t.ExpiresAt.UTC(), t.CreatedAt.UTC(), t.UpdatedAt.UTC(),
	)
	return err
}

// UpdateAthleteToken overwrites the credentials of an existing record.
func (d *DB) UpdateAthleteToken(ctx context.Context, t domain.AthleteToken) (bool, error) {
	res, err := d.sql.ExecContext(ctx,
		"UPDATE athlete_tokens SET access_token = $2, refresh_token = $3, expires_at = $4, updated_at = $5 WHERE athlete_id = $1",
		t.AthleteID, t.AccessToken, t.RefreshToken, t.ExpiresAt.UTC(), t.UpdatedAt.UTC(),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
