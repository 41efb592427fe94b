package postgres

import (
	"context"

	"activityweather/internal/domain"
)

// IsActivityProcessed reports whether an idempotency record exists.
func (d *DB) IsActivityProcessed(ctx context.Context, activityID int64) (bool, error) {
	var exists bool
	err := d.sql.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM processed_activities WHERE id = $1)",
		activityID,
	).Scan(&exists)
	return exists, err
}

// RecordProcessedActivity inserts the record, leaving an existing row as is.
func (d *DB) RecordProcessedActivity(ctx context.Context, p domain.ProcessedActivity) (bool, error) {
	res, err := d.sql.ExecContext(ctx,
		`INSERT INTO processed_activities (id, athlete_id, processed_at, weather_description, temperature)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING`,
		p.ID, p.AthleteID, p.ProcessedAt.UTC(), p.WeatherDescription, p.Temperature,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ListRecentProcessedActivities returns an athlete's records, newest first.
func (d *DB) ListRecentProcessedActivities(ctx context.Context, athleteID int64, limit int) ([]domain.ProcessedActivity, error) {
	rows, err := d.sql.QueryContext(ctx,
		`SELECT id, athlete_id, processed_at, weather_description, temperature
		FROM processed_activities WHERE athlete_id = $1
		ORDER BY processed_at DESC LIMIT $2`,
		athleteID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	out := make([]domain.ProcessedActivity, 0, limit)
	for rows.Next() {
		var p domain.ProcessedActivity
		if err := rows.Scan(&p.ID, &p.AthleteID, &p.ProcessedAt, &p.WeatherDescription, &p.Temperature); err != nil {
			return nil, err
		}
		p.ProcessedAt = p.ProcessedAt.UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}
