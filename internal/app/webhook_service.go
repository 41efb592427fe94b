package app

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"activityweather/internal/domain"
	"activityweather/internal/observability"
)

// Outcome is where a pipeline run stopped.
type Outcome int

const (
	OutcomeIgnoredObjectType Outcome = iota
	OutcomeIgnoredAspectType
	OutcomeAlreadyProcessed
	OutcomeLookupFailed
	OutcomeNoCredentials
	OutcomeTokenUnavailable
	OutcomeActivityUnavailable
	OutcomeNothingToUpdate
	OutcomeUpdateFailed
	OutcomePersistFailed
	OutcomeEnriched
)

var outcomeNames = map[Outcome]string{
	OutcomeIgnoredObjectType:   "ignored_object_type",
	OutcomeIgnoredAspectType:   "ignored_aspect_type",
	OutcomeAlreadyProcessed:    "already_processed",
	OutcomeLookupFailed:        "lookup_failed",
	OutcomeNoCredentials:       "no_credentials",
	OutcomeTokenUnavailable:    "token_unavailable",
	OutcomeActivityUnavailable: "activity_unavailable",
	OutcomeNothingToUpdate:     "nothing_to_update",
	OutcomeUpdateFailed:        "update_failed",
	OutcomePersistFailed:       "persist_failed",
	OutcomeEnriched:            "enriched",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return "unknown"
}

// ActivityClient reads and rewrites activities on the tracking platform.
type ActivityClient interface {
	GetActivity(ctx context.Context, accessToken string, activityID int64) (*domain.Activity, error)
	UpdateActivity(ctx context.Context, accessToken string, activityID int64, name, description string) error
}

// WeatherClient fetches conditions at a point.
type WeatherClient interface {
	CurrentWeather(ctx context.Context, lat, lon float64, at time.Time) (*domain.WeatherSnapshot, error)
}

// AccessTokenProvider yields a currently valid access token for an athlete.
type AccessTokenProvider interface {
	GetValidAccessToken(ctx context.Context, athleteID int64) (string, error)
}

// WebhookService runs the enrichment pipeline for webhook events.
type WebhookService struct {
	tokens     domain.AthleteTokenRepository
	processed  domain.ProcessedActivityRepository
	accessor   AccessTokenProvider
	activities ActivityClient
	weather    WeatherClient
	devMode    bool
	logger     *zap.Logger
	now        func() time.Time
}

// NewWebhookService creates a new webhook service. With devMode set the
// weather line is marked as coming from a development deployment.
func NewWebhookService(
	tokens domain.AthleteTokenRepository,
	processed domain.ProcessedActivityRepository,
	accessor AccessTokenProvider,
	activities ActivityClient,
	weather WeatherClient,
	devMode bool,
	logger *zap.Logger,
) *WebhookService {
	return &WebhookService{
		tokens:     tokens,
		processed:  processed,
		accessor:   accessor,
		activities: activities,
		weather:    weather,
		devMode:    devMode,
		logger:     logger,
		now:        time.Now,
	}
}

// ProcessActivityEvent enriches the activity named by ev with weather and
// sport emoji. Every failure is logged and absorbed; the returned Outcome
// reports where the run stopped.
func (s *WebhookService) ProcessActivityEvent(ctx context.Context, ev domain.WebhookEvent) Outcome {
	outcome := s.process(ctx, ev)
	observability.RecordPipelineOutcome(outcome.String())
	return outcome
}

func (s *WebhookService) process(ctx context.Context, ev domain.WebhookEvent) Outcome {
	log := s.logger.With(
		zap.Int64("activity_id", ev.ObjectID),
		zap.Int64("athlete_id", ev.OwnerID),
		zap.String("aspect_type", ev.AspectType),
	)

	if ev.ObjectType != domain.ObjectTypeActivity {
		log.Debug("ignoring non-activity event", zap.String("object_type", ev.ObjectType))
		return OutcomeIgnoredObjectType
	}
	if ev.AspectType != domain.AspectTypeCreate && ev.AspectType != domain.AspectTypeUpdate {
		log.Debug("ignoring event aspect")
		return OutcomeIgnoredAspectType
	}

	// Check-then-act: a create racing an update for the same activity can
	// pass this check twice before either commits.
	done, err := s.processed.IsActivityProcessed(ctx, ev.ObjectID)
	if err != nil {
		log.Error("idempotency lookup failed", zap.Error(err))
		return OutcomeLookupFailed
	}
	if done && ev.AspectType == domain.AspectTypeUpdate {
		log.Debug("activity already processed, skipping update")
		return OutcomeAlreadyProcessed
	}

	token, err := s.tokens.GetAthleteToken(ctx, ev.OwnerID)
	if err != nil {
		log.Error("credential lookup failed", zap.Error(err))
		return OutcomeNoCredentials
	}
	if token == nil {
		log.Warn("no stored credentials for athlete")
		return OutcomeNoCredentials
	}

	accessToken, err := s.accessor.GetValidAccessToken(ctx, ev.OwnerID)
	if err != nil {
		log.Warn("no valid access token", zap.Error(err))
		return OutcomeTokenUnavailable
	}

	activity, err := s.activities.GetActivity(ctx, accessToken, ev.ObjectID)
	if err != nil || activity == nil {
		log.Warn("activity fetch failed", zap.Error(err))
		return OutcomeActivityUnavailable
	}

	title, updated := domain.SportEmojiTitle(activity.Name, activity.SportType)
	description := activity.Description

	var snapshot *domain.WeatherSnapshot
	if activity.HasStartCoordinates() {
		lat, lon := activity.StartLatLng[0], activity.StartLatLng[1]
		snapshot, err = s.weather.CurrentWeather(ctx, lat, lon, activity.StartDate)
		if err != nil || snapshot == nil {
			log.Warn("weather fetch failed, continuing without weather", zap.Error(err))
			snapshot = nil
		} else {
			title = domain.TitleWithWeather(title, *snapshot, domain.IsDaytime(activity.LocalStart()))
			description = domain.DescriptionWithWeather(description, *snapshot, s.devMode)
			updated = true
		}
	}

	if !updated {
		log.Info("nothing to update", zap.String("sport_type", activity.SportType))
		return OutcomeNothingToUpdate
	}

	if err := s.activities.UpdateActivity(ctx, accessToken, activity.ID, title, description); err != nil {
		log.Error("activity update failed", zap.Error(err))
		return OutcomeUpdateFailed
	}

	record := domain.ProcessedActivity{
		ID:          ev.ObjectID,
		AthleteID:   ev.OwnerID,
		ProcessedAt: s.now().UTC(),
	}
	if snapshot != nil {
		record.WeatherDescription = snapshot.Description
		record.Temperature = snapshot.Temperature
	}
	inserted, err := s.processed.RecordProcessedActivity(ctx, record)
	if err != nil {
		log.Error("recording processed activity failed", zap.Error(err))
		observability.CaptureError(err, map[string]string{
			"activity_id": strconv.FormatInt(ev.ObjectID, 10),
			"stage":       "commit",
		})
		return OutcomePersistFailed
	}
	if !inserted {
		log.Info("processed activity already recorded")
	}

	log.Info("activity enriched",
		zap.String("title", title),
		zap.Bool("weather", snapshot != nil))
	return OutcomeEnriched
}

// RecentActivities lists the latest enriched activities of athleteID.
func (s *WebhookService) RecentActivities(ctx context.Context, athleteID int64, limit int) ([]domain.ProcessedActivity, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.processed.ListRecentProcessedActivities(ctx, athleteID, limit)
}
