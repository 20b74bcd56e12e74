package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	RouteIndex = "/"

	// Auth Routes - Login & Logout
	RouteLogin  = "/login"
	RouteLogout = "/logout"

	// Admin Routes
	RouteAdminDashboard   = "/admin"
	RouteAdminPermissions = "/admin/permissions/mine"

	// Operational Routes
	RouteMetrics = "/metrics"
	RouteHealth  = "/healthz"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
)
