package postgres

import (
	"context"
	"time"
)

// IsAthleteAllowed reports whether athleteID may authorize the application.
func (d *DB) IsAthleteAllowed(ctx context.Context, athleteID int64) (bool, error) {
	var exists bool
	err := d.sql.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM athlete_allowlist WHERE athlete_id = $1)",
		athleteID,
	).Scan(&exists)
	return exists, err
}

// AllowAthlete adds athleteID to the allow-list. Adding twice is a no-op.
func (d *DB) AllowAthlete(ctx context.Context, athleteID int64) error {
	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO athlete_allowlist (athlete_id, created_at) VALUES ($1, $2) ON CONFLICT (athlete_id) DO NOTHING",
		athleteID, time.Now().UTC(),
	)
	return err
}
