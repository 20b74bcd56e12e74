package server

import (
	"net/http"

	"github.com/jrsteele09/go-admin-auth/csrf"
	"github.com/rs/zerolog/log"
)

// AdminDashboardHandler renders the dashboard with one tile per section the account may view
func (s *Server) AdminDashboardHandler() http.HandlerFunc {
	tmpl := MustParseTemplate("admin_dashboard.html")

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		session := currentSession(r)

		account, err := s.sessions.CurrentUser(ctx, session)
		if err != nil {
			s.internalError(w, err, "Failed to load current account")
			return
		}
		if account == nil {
			// deleted while logged in
			redirectSuccess(w, r, RouteLogin)
			return
		}

		tiles := dashboardTiles()
		names := make([]string, 0, len(tiles))
		for _, t := range tiles {
			names = append(names, t.Permission)
		}
		granted, err := s.authorizer.Permissions(ctx, session, names...)
		if err != nil {
			s.internalError(w, err, "Failed to evaluate dashboard permissions")
			return
		}
		for i := range tiles {
			tiles[i].Allowed = granted[tiles[i].Permission]
		}

		token, err := s.csrf.Generate(session)
		if err != nil {
			s.internalError(w, err, "Failed to generate CSRF token")
			return
		}

		data := map[string]interface{}{
			"AppName":   s.config.GetAppName(),
			"Account":   account,
			"Tiles":     tiles,
			"Flashes":   flashMap(session.PopFlashes()),
			"CSRFField": csrf.FormField,
			"CSRFToken": token,
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		if err := tmpl.Execute(w, data); err != nil {
			log.Err(err).Msg("Failed to render admin dashboard template")
		}
	}
}

// AdminPermissionsHandler lists the permissions held by the logged in account
func (s *Server) AdminPermissionsHandler() http.HandlerFunc {
	tmpl := MustParseTemplate("admin_permissions.html")

	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		session := currentSession(r)

		all, names, err := s.authorizer.Granted(ctx, session)
		if err != nil {
			s.internalError(w, err, "Failed to list permissions")
			return
		}

		data := map[string]interface{}{
			"AppName":     s.config.GetAppName(),
			"DisplayName": session.DisplayName(),
			"All":         all,
			"Permissions": names,
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		if err := tmpl.Execute(w, data); err != nil {
			log.Err(err).Msg("Failed to render admin permissions template")
		}
	}
}
