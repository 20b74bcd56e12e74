package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-admin-auth/accounts"
	"github.com/jrsteele09/go-admin-auth/auth"
	"github.com/jrsteele09/go-admin-auth/csrf"
	"github.com/jrsteele09/go-admin-auth/internal/config"
	"github.com/jrsteele09/go-admin-auth/ratelimit"
	"github.com/jrsteele09/go-admin-auth/sessions"
	"github.com/rs/zerolog/log"
)

// Repos holds the storage the server is built on
type Repos struct {
	Accounts accounts.Repo                   // credential store
	Attempts ratelimit.Repo                  // failed login counters
	Sessions sessions.Store                  // server side session data
	Health   func(ctx context.Context) error // optional readiness check, usually a database ping
}

type Server struct {
	env        string // Environment (e.g., "DEV", "PROD")
	mux        *http.ServeMux
	routes     []string
	config     config.Config
	repos      Repos
	sessions   *sessions.Manager
	limiter    *ratelimit.Limiter
	auth       *auth.Service
	authorizer *auth.Authorizer
	csrf       *csrf.Guard
	validator  *auth.Validator
	metrics    *Metrics
	throttle   *LoginThrottle
	forbidden  *template.Template
	nowTime    func() time.Time
}

// ServerOption defines a function type to modify the Server instance.
type ServerOption func(*Server)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServerOption {
	return func(s *Server) {
		s.nowTime = nowFunc
	}
}

func New(cfg config.Config, repos Repos, options ...ServerOption) (*Server, error) {
	if repos.Accounts == nil {
		return nil, fmt.Errorf("[Server New] accounts repo is required")
	}
	if repos.Attempts == nil {
		return nil, fmt.Errorf("[Server New] attempts repo is required")
	}
	if repos.Sessions == nil {
		return nil, fmt.Errorf("[Server New] session store is required")
	}

	s := &Server{
		env:       cfg.GetEnv(),
		mux:       http.NewServeMux(),
		config:    cfg,
		repos:     repos,
		csrf:      csrf.NewGuard(),
		validator: auth.NewValidator(),
		metrics:   NewMetrics(),
		throttle:  NewLoginThrottle(cfg.GetLoginThrottlePerSecond(), cfg.GetLoginThrottleBurst()),
		nowTime:   time.Now,
	}
	for _, opt := range options {
		opt(s)
	}

	var err error
	s.limiter, err = ratelimit.NewLimiter(repos.Attempts,
		ratelimit.WithMaxAttempts(cfg.GetRateLimitAttempts()),
		ratelimit.WithBlockDuration(cfg.GetRateLimitBlockDuration()),
		ratelimit.WithNowTime(s.nowTime),
	)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create rate limiter: %w", err)
	}

	s.sessions, err = sessions.NewManager(repos.Sessions, repos.Accounts,
		sessions.WithLifetime(cfg.GetSessionLifetime()),
		sessions.WithStrictMode(cfg.GetSessionStrictMode()),
		sessions.WithCookie(sessions.CookieConfig{
			Name:     cfg.GetSessionCookieName(),
			Path:     "/",
			Secure:   cfg.GetSessionCookieSecure(),
			HTTPOnly: cfg.GetSessionCookieHTTPOnly(),
			SameSite: cfg.GetSessionCookieSameSite(),
		}),
		sessions.WithNowTime(s.nowTime),
	)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create session manager: %w", err)
	}

	policy, err := auth.NewCIDRPolicy(cfg.GetSuperadminAllowedIPs())
	if err != nil {
		return nil, fmt.Errorf("[Server New] invalid superadmin allow list: %w", err)
	}
	s.auth, err = auth.NewService(repos.Accounts, s.limiter, s.sessions, auth.WithIPPolicy(policy))
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create authentication service: %w", err)
	}

	s.authorizer, err = auth.NewAuthorizer(s.sessions, repos.Accounts)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create authorizer: %w", err)
	}

	s.forbidden, err = ParseTemplate("forbidden.html")
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse forbidden template: %w", err)
	}

	// Bootstrap: ensure a super admin exists
	if err := s.InitialiseSystem(context.Background()); err != nil {
		return nil, fmt.Errorf("[Server New] Failed to initialise the system: %w", err)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	log.Info().Msgf("[%-19s] %s", colouredMethod(method), path)
}

func colouredMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}
