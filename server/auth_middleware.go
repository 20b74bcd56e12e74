package server

import (
	"net/http"

	"github.com/jrsteele09/go-admin-auth/csrf"
	"github.com/jrsteele09/go-admin-auth/sessions"
	"github.com/rs/zerolog/log"
)

// GuardKind identifies a pre-handler check
type GuardKind int

const (
	GuardAuth GuardKind = iota
	GuardPermission
	GuardCSRF
)

func (k GuardKind) String() string {
	switch k {
	case GuardAuth:
		return "auth"
	case GuardPermission:
		return "permission"
	case GuardCSRF:
		return "csrf"
	default:
		return "unknown"
	}
}

// Guard is one check a route requires before its handler runs
type Guard struct {
	Kind       GuardKind
	Permission string // set for GuardPermission
}

// RequireAuth sends anonymous or idle sessions to the login page
func RequireAuth() Guard {
	return Guard{Kind: GuardAuth}
}

// RequirePermission answers 403 unless the account holds name
func RequirePermission(name string) Guard {
	return Guard{Kind: GuardPermission, Permission: name}
}

// RequireCSRF rejects state changing requests without the session's token
func RequireCSRF() Guard {
	return Guard{Kind: GuardCSRF}
}

// Guards evaluates guards in order; the first failing guard ends the request.
// It must run behind SessionMiddleware.
func (s *Server) Guards(guards ...Guard) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			session := currentSession(r)
			for _, g := range guards {
				if !s.checkGuard(w, r, session, g) {
					return
				}
			}
			next(w, r)
		}
	}
}

// checkGuard writes the refusal itself and returns false when g fails
func (s *Server) checkGuard(w http.ResponseWriter, r *http.Request, session *sessions.Session, g Guard) bool {
	switch g.Kind {
	case GuardAuth:
		if s.sessions.Check(session) {
			return true
		}
		redirectSuccess(w, r, RouteLogin)
		return false

	case GuardPermission:
		can, err := s.authorizer.Can(r.Context(), session, g.Permission)
		if err != nil {
			log.Err(err).Str("permission", g.Permission).Msg("Failed to evaluate permission")
			http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
			return false
		}
		if can {
			return true
		}
		s.metrics.AuthorizationDenied(g.Permission)
		s.renderForbidden(w, g.Permission)
		return false

	case GuardCSRF:
		if s.csrf.Validate(session, suppliedCSRFToken(r)) {
			return true
		}
		s.metrics.CSRFRejected()
		log.Warn().Str("security", "csrf_rejected").Str("path", r.URL.Path).
			Str("address", s.clientIP(r)).Msg("request with missing or invalid CSRF token")
		session.AddFlash(sessions.FlashErrorPersistent, msgInvalidCSRF)
		redirectSuccess(w, r, RouteLogin)
		return false

	default:
		log.Error().Int("kind", int(g.Kind)).Msg("unknown guard")
		http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
		return false
	}
}

// suppliedCSRFToken reads the token from the form, falling back to the header
func suppliedCSRFToken(r *http.Request) string {
	if token := r.PostFormValue(csrf.FormField); token != "" {
		return token
	}
	return r.Header.Get(csrf.HeaderName)
}

func (s *Server) renderForbidden(w http.ResponseWriter, permission string) {
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(http.StatusForbidden)
	data := map[string]interface{}{
		"AppName":    s.config.GetAppName(),
		"Permission": permission,
	}
	if err := s.forbidden.Execute(w, data); err != nil {
		log.Err(err).Msg("Failed to render forbidden template")
	}
}
