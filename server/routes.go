package server

import (
	"net/http"
	"strings"
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteIndex+"{$}", ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare()...))

	// LOGIN
	s.RegisterRouteFunc("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("POST "+RouteLogin, ChainMiddleware(s.LoginSubmissionHandler(),
		s.HTMLMiddleWare(s.LoginThrottleMiddleware, s.Guards(RequireCSRF()))...))
	s.RegisterRouteFunc("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(),
		s.HTMLMiddleWare(s.Guards(RequireAuth(), RequireCSRF()))...))

	// Admin routes
	s.RegisterRouteFunc("GET "+RouteAdminDashboard, ChainMiddleware(s.AdminDashboardHandler(),
		s.HTMLMiddleWare(s.Guards(RequireAuth()))...))
	s.RegisterRouteFunc("GET "+RouteAdminPermissions, ChainMiddleware(s.AdminPermissionsHandler(),
		s.HTMLMiddleWare(s.Guards(RequireAuth(), RequirePermission(PermissionView)))...))

	s.RegisterRouteHandler("GET "+RouteMetrics, s.metrics.Handler())
	s.RegisterRouteFunc("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.RecoverMiddleware))

	s.RegisterRouteFunc("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
}

func (s *Server) serveFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := strings.TrimPrefix(r.URL.Path, "/")
		if filePath == "" {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		if err := StreamFile(w, r, filePath); err != nil {
			logError(r.Method, filePath, err.Error())
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
	}
}
