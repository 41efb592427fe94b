package adapthttp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

func subject(ctx context.Context) string {
	s, _ := ctx.Value(subjectContextKey).(string)
	return s
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	sub, err := s.subscriptions.Subscribe(r.Context())
	if err != nil {
		s.logger.Error("creating subscription failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.subscriptions.List(r.Context())
	if err != nil {
		s.logger.Error("listing subscriptions failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"subscriptions": subs})
}

func (s *Server) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.subscriptions.Unsubscribe(r.Context(), id); err != nil {
		s.logger.Error("deleting subscription failed", zap.Error(err), zap.Int64("subscription_id", id))
		writeError(w, http.StatusBadGateway, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAllowAthlete(w http.ResponseWriter, r *http.Request) {
	athleteID, err := idParam(r, "athleteID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.authSvc.AllowAthlete(r.Context(), athleteID); err != nil {
		s.logger.Error("allow-listing athlete failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	s.logger.Info("athlete allow-listed",
		zap.Int64("athlete_id", athleteID),
		zap.String("by", subject(r.Context())))
	writeJSON(w, http.StatusOK, map[string]any{"athleteId": athleteID, "allowed": true})
}

func (s *Server) handleRecentActivities(w http.ResponseWriter, r *http.Request) {
	athleteID, err := idParam(r, "athleteID")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	list, err := s.pipeline.RecentActivities(r.Context(), athleteID, intQuery(r, "limit", 20))
	if err != nil {
		s.logger.Error("listing processed activities failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"athleteId": athleteID, "activities": list})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health.Ping(ctx); err != nil {
			s.logger.Warn("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"ok":      false,
				"version": s.version.Version,
				"error":   "database unavailable",
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "version": s.version.Version})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.version)
}
