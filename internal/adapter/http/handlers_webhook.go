package adapthttp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"activityweather/internal/domain"
	"activityweather/internal/observability"
)

const maxWebhookBody = 1 << 20

func (s *Server) handleWebhookValidation(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	challenge := q.Get("hub.challenge")

	if s.subscriptions == nil || !s.subscriptions.VerifyChallenge(mode, q.Get("hub.verify_token")) {
		s.logger.Warn("webhook validation rejected", zap.String("mode", mode))
		writeError(w, http.StatusUnauthorized, errors.New("unauthorized"))
		return
	}

	s.logger.Info("webhook validation accepted")
	writeJSON(w, http.StatusOK, map[string]string{"hub.challenge": challenge})
}

// handleWebhookEvent acknowledges every delivery with 200 and an empty body.
// Enrichment runs on the dispatcher, never on the request goroutine.
func (s *Server) handleWebhookEvent(w http.ResponseWriter, r *http.Request) {
	if ev, ok := s.readWebhookEvent(r); ok {
		s.dispatchWebhookEvent(r.Context(), ev)
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) readWebhookEvent(r *http.Request) (domain.WebhookEvent, bool) {
	var ev domain.WebhookEvent
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		s.logger.Warn("reading webhook body failed", zap.Error(err))
		return ev, false
	}
	if len(body) == 0 {
		s.logger.Warn("empty webhook body")
		return ev, false
	}
	if err := json.Unmarshal(body, &ev); err != nil {
		s.logger.Warn("malformed webhook body", zap.Error(err))
		return ev, false
	}

	observability.RecordWebhookDelivery(ev.ObjectType, ev.AspectType)
	s.logger.Info("webhook event received",
		zap.String("object_type", ev.ObjectType),
		zap.String("aspect_type", ev.AspectType),
		zap.Int64("object_id", ev.ObjectID),
		zap.Int64("owner_id", ev.OwnerID),
		zap.String("request_id", requestID(r.Context())),
	)
	return ev, true
}

func (s *Server) dispatchWebhookEvent(ctx context.Context, ev domain.WebhookEvent) {
	if s.pipeline == nil || s.dispatcher == nil {
		return
	}
	pipeline := s.pipeline
	err := s.dispatcher.Submit(func(ctx context.Context) {
		pipeline.ProcessActivityEvent(ctx, ev)
	})
	if err != nil {
		s.logger.Error("dispatching webhook event failed",
			zap.Error(err),
			zap.Int64("object_id", ev.ObjectID),
			zap.String("request_id", requestID(ctx)))
	}
}
