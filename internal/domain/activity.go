package domain

import (
	"context"
	"time"
)

// Webhook object and aspect types.
const (
	ObjectTypeActivity = "activity"
	AspectTypeCreate   = "create"
	AspectTypeUpdate   = "update"
	AspectTypeDelete   = "delete"
)

// WebhookEvent is a push notification from the tracking platform.
type WebhookEvent struct {
	ObjectType     string            `json:"object_type"`
	AspectType     string            `json:"aspect_type"`
	ObjectID       int64             `json:"object_id"`
	OwnerID        int64             `json:"owner_id"`
	SubscriptionID int64             `json:"subscription_id"`
	EventTime      int64             `json:"event_time"`
	Updates        map[string]string `json:"updates,omitempty"`
}

// Activity is the subset of a platform activity the enrichment needs.
type Activity struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Type           string    `json:"type"`
	SportType      string    `json:"sport_type"`
	Description    string    `json:"description"`
	StartDate      time.Time `json:"start_date"`
	StartDateLocal time.Time `json:"start_date_local"`
	StartLatLng    []float64 `json:"start_latlng"`
	Distance       float64   `json:"distance"`
	MovingTime     int       `json:"moving_time"`
	ElapsedTime    int       `json:"elapsed_time"`
}

// HasStartCoordinates reports whether the activity carries a lat/lng pair.
func (a *Activity) HasStartCoordinates() bool {
	return len(a.StartLatLng) == 2
}

// LocalStart returns the wall-clock start time, falling back to the UTC start.
func (a *Activity) LocalStart() time.Time {
	if !a.StartDateLocal.IsZero() {
		return a.StartDateLocal
	}
	return a.StartDate
}

// ProcessedActivity marks an activity as already enriched.
type ProcessedActivity struct {
	ID                 int64     `json:"id"`
	AthleteID          int64     `json:"athleteId"`
	ProcessedAt        time.Time `json:"processedAt"`
	WeatherDescription string    `json:"weatherDescription,omitempty"`
	Temperature        float64   `json:"temperature,omitempty"`
}

// ProcessedActivityRepository is the port for the idempotency store.
type ProcessedActivityRepository interface {
	IsActivityProcessed(ctx context.Context, activityID int64) (bool, error)
	// RecordProcessedActivity inserts the record unless one already exists and
	// reports whether a row was written.
	RecordProcessedActivity(ctx context.Context, p ProcessedActivity) (bool, error)
	ListRecentProcessedActivities(ctx context.Context, athleteID int64, limit int) ([]ProcessedActivity, error)
}

// Subscription is a push subscription registered with the platform.
type Subscription struct {
	ID            int64     `json:"id"`
	ApplicationID int64     `json:"application_id,omitempty"`
	CallbackURL   string    `json:"callback_url"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
