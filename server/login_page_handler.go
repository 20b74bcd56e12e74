package server

import (
	"net/http"

	"github.com/jrsteele09/go-admin-auth/auth"
	"github.com/jrsteele09/go-admin-auth/csrf"
	apperrors "github.com/jrsteele09/go-admin-auth/internal/errors"
	"github.com/jrsteele09/go-admin-auth/sessions"
	"github.com/rs/zerolog/log"
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	AppName      string
	CSRFField    string
	CSRFToken    string
	Flashes      map[string][]string
	Login        string // Preserve login on error
	IsBlocked    bool
	BlockedUntil int64 // unix seconds, drives the countdown
}

// LoginPageHandler displays the login page (GET /login)
func (s *Server) LoginPageHandler() http.HandlerFunc {
	loginTmpl := MustParseTemplate("login.html")

	return func(w http.ResponseWriter, r *http.Request) {
		session := currentSession(r)
		if s.sessions.Check(session) {
			redirectSuccess(w, r, RouteAdminDashboard)
			return
		}

		token, err := s.csrf.Generate(session)
		if err != nil {
			log.Err(err).Msg("Failed to generate CSRF token")
			http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
			return
		}

		data := LoginPageData{
			AppName:   s.config.GetAppName(),
			CSRFField: csrf.FormField,
			CSRFToken: token,
			Flashes:   flashMap(session.PopFlashes()),
			Login:     session.LastLoginAttempt(),
		}

		until, err := s.limiter.BlockedUntil(r.Context(), s.clientIP(r))
		if err != nil {
			log.Err(err).Msg("Failed to read rate limit state")
		} else if until != nil {
			data.IsBlocked = true
			data.BlockedUntil = until.Unix()
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		if err := loginTmpl.Execute(w, data); err != nil {
			log.Err(err).Msg("Failed to render login template")
		}
	}
}

// LoginSubmissionHandler processes the login form submission (POST /login).
// The CSRF guard has already run.
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		session := currentSession(r)
		address := s.clientIP(r)

		login := s.validator.NormalizeLogin(r.PostFormValue("login"))
		password := r.PostFormValue("password")
		session.SetLastLoginAttempt(login)

		if err := s.validator.ValidateCredentials(login, password); err != nil {
			msg := msgInvalidCredentials
			if apperrors.Is(err, auth.ErrCredentialsRequired) {
				msg = msgCredentialsRequired
			}
			session.AddFlash(sessions.FlashError, msg)
			redirectSuccess(w, r, RouteLogin)
			return
		}

		until, err := s.limiter.BlockedUntil(ctx, address)
		if err != nil {
			s.internalError(w, err, "Failed to read rate limit state")
			return
		}
		if until != nil {
			s.metrics.LoginAttempt(auth.ReasonRateLimited)
			session.AddFlash(sessions.FlashRateLimit, rateLimitMessage(until, s.nowTime()))
			redirectSuccess(w, r, RouteLogin)
			return
		}

		result, err := s.auth.Attempt(ctx, session, address, login, password)
		if err != nil {
			s.internalError(w, err, "Login attempt failed")
			return
		}
		s.metrics.LoginAttempt(result.Reason)

		if result.Succeeded() {
			session.AddFlash(sessions.FlashSuccess, msgLoggedIn)
			redirectSuccess(w, r, RouteAdminDashboard)
			return
		}

		if result.Reason != auth.ReasonRateLimited {
			if err := s.limiter.LogAttempt(ctx, address, login); err != nil {
				s.internalError(w, err, "Failed to record login attempt")
				return
			}
		}

		// the failure just recorded may have been the one that tripped the block
		until, err = s.limiter.BlockedUntil(ctx, address)
		if err != nil {
			s.internalError(w, err, "Failed to read rate limit state")
			return
		}
		if until != nil {
			session.AddFlash(sessions.FlashRateLimit, rateLimitMessage(until, s.nowTime()))
		} else {
			session.AddFlash(sessions.FlashError, failureMessage(result.Reason))
		}
		redirectSuccess(w, r, RouteLogin)
	}
}

// LogoutHandler ends the session (POST /logout)
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := currentSession(r)
		if err := s.auth.Logout(r.Context(), session); err != nil {
			s.internalError(w, err, "Logout failed")
			return
		}
		session.AddFlash(sessions.FlashSuccess, msgLoggedOut)
		redirectSuccess(w, r, RouteLogin)
	}
}

func (s *Server) internalError(w http.ResponseWriter, err error, msg string) {
	log.Err(err).Msg(msg)
	http.Error(w, msgInternalError, http.StatusInternalServerError)
}

func flashMap(flashes map[sessions.FlashKind][]string) map[string][]string {
	out := make(map[string][]string, len(flashes))
	for kind, msgs := range flashes {
		out[string(kind)] = msgs
	}
	return out
}
