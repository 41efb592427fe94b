package adapthttp

import (
	"errors"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"activityweather/internal/app"
)

const stateCookie = "oauth_state"

var resultPage = template.Must(template.New("result").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}}</title></head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Message}}</p>
</body>
</html>
`))

func (s *Server) renderResult(w http.ResponseWriter, status int, title, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := resultPage.Execute(w, map[string]string{"Title": title, "Message": message}); err != nil {
		s.logger.Error("rendering result page failed", zap.Error(err))
	}
}

func (s *Server) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	state, redirect, err := s.authSvc.BeginAuthorization()
	if err != nil {
		s.logger.Error("starting authorization failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth",
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteLaxMode, // Lax required for cross-site redirect returns
		MaxAge:   300,
	})
	http.Redirect(w, r, redirect, http.StatusFound)
}

func (s *Server) handleAuthCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		s.logger.Info("authorization declined", zap.String("error", e))
		s.renderResult(w, http.StatusBadRequest, "Authorization cancelled", "No access was granted.")
		return
	}

	state, err := r.Cookie(stateCookie)
	if err != nil || !app.ConstantTimeCompare(q.Get("state"), state.Value) {
		http.Error(w, "invalid state", http.StatusBadRequest)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, MaxAge: -1, Path: "/auth"})

	code := q.Get("code")
	if code == "" {
		http.Error(w, "missing code", http.StatusBadRequest)
		return
	}

	athlete, err := s.authSvc.CompleteAuthorization(r.Context(), code)
	if errors.Is(err, app.ErrAthleteNotAllowed) {
		s.renderResult(w, http.StatusForbidden, "Authorization denied",
			"This account is not allowed to use this application.")
		return
	}
	if err != nil {
		s.logger.Error("completing authorization failed", zap.Error(err))
		s.renderResult(w, http.StatusInternalServerError, "Authorization failed",
			"The authorization could not be completed. Please try again.")
		return
	}

	name := athlete.FirstName
	if name == "" {
		name = athlete.Username
	}
	s.renderResult(w, http.StatusOK, "Connected",
		"Thanks "+name+", new activities will now be enriched with the weather.")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if s.adminSvc == nil {
		writeError(w, http.StatusUnauthorized, app.ErrInvalidCredentials)
		return
	}

	token, err := s.adminSvc.Login(req.Username, req.Password)
	if errors.Is(err, app.ErrInvalidCredentials) {
		s.logger.Warn("admin login failed", zap.String("username", req.Username))
		writeError(w, http.StatusUnauthorized, err)
		return
	}
	if err != nil {
		s.logger.Error("issuing admin token failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, errors.New("internal error"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":     token,
		"tokenType": "Bearer",
		"expiresIn": int(app.AdminTokenTTL.Seconds()),
	})
}
