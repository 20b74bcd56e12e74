package server

import (
	"net/http"

	"github.com/jrsteele09/go-admin-auth/auth"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the security counters exposed on /metrics. Each server owns its
// registry so several servers can live in one process.
type Metrics struct {
	registry *prometheus.Registry

	loginAttempts       *prometheus.CounterVec
	csrfRejections      prometheus.Counter
	authorizationDenied *prometheus.CounterVec
	throttled           prometheus.Counter
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		loginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "admin_auth_login_attempts_total",
				Help: "Login attempts by outcome",
			},
			[]string{"outcome"},
		),
		csrfRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "admin_auth_csrf_rejections_total",
			Help: "Requests refused for a missing or invalid CSRF token",
		}),
		authorizationDenied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "admin_auth_authorization_denied_total",
				Help: "Requests refused for a missing permission",
			},
			[]string{"permission"},
		),
		throttled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "admin_auth_login_throttled_total",
			Help: "Login submissions refused by the request throttle",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.loginAttempts,
		m.csrfRejections,
		m.authorizationDenied,
		m.throttled,
	)
	return m
}

// LoginAttempt counts one login submission that reached the authentication pipeline
func (m *Metrics) LoginAttempt(reason auth.FailureReason) {
	outcome := "success"
	if reason != auth.ReasonNone {
		outcome = reason.String()
	}
	m.loginAttempts.WithLabelValues(outcome).Inc()
}

func (m *Metrics) CSRFRejected() {
	m.csrfRejections.Inc()
}

func (m *Metrics) AuthorizationDenied(permission string) {
	m.authorizationDenied.WithLabelValues(permission).Inc()
}

func (m *Metrics) Throttled() {
	m.throttled.Inc()
}

// Registry exposes the underlying registry (tests gather from it)
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
