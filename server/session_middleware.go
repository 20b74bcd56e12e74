package server

import (
	"net/http"

	"github.com/jrsteele09/go-admin-auth/ratelimit"
	"github.com/jrsteele09/go-admin-auth/sessions"
	"github.com/rs/zerolog/log"
)

// committingWriter saves the session and sets its cookie just before the response header goes out
type committingWriter struct {
	http.ResponseWriter
	commit    func()
	committed bool
}

func (cw *committingWriter) flush() {
	if cw.committed {
		return
	}
	cw.committed = true
	cw.commit()
}

func (cw *committingWriter) WriteHeader(code int) {
	cw.flush()
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *committingWriter) Write(b []byte) (int, error) {
	cw.flush()
	return cw.ResponseWriter.Write(b)
}

func (cw *committingWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}

// SessionMiddleware loads the session for the request, installs it and a per-request
// attempt guard in the context, and commits the session with the response.
func (s *Server) SessionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := s.sessions.Load(r.Context(), r)
		if err != nil {
			log.Err(err).Msg("Failed to load session")
			http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
			return
		}

		ctx := ratelimit.WithAttemptGuard(r.Context())
		ctx = sessions.NewContext(ctx, session)

		cw := &committingWriter{ResponseWriter: w}
		cw.commit = func() {
			if err := s.sessions.Commit(ctx, w, session); err != nil {
				log.Err(err).Msg("Failed to save session")
			}
		}

		next(cw, r.WithContext(ctx))
		cw.flush()
	}
}

// currentSession returns the session installed by SessionMiddleware
func currentSession(r *http.Request) *sessions.Session {
	session, ok := sessions.FromContext(r.Context())
	if !ok {
		// every HTML route runs behind SessionMiddleware
		panic("server: no session in request context")
	}
	return session
}
