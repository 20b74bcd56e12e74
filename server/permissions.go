package server

// Permission names consulted by the back-office pages
const (
	PermissionRoleView     = "role_view"
	PermissionView         = "permission_view"
	PermissionEmployeeView = "employee_view"
	PermissionUserView     = "user_view"
	PermissionTabView      = "tab_view"
	PermissionFieldView    = "field_view"
	PermissionCalendarView = "calendar_view"
	PermissionLibraryView  = "library_view"
	PermissionSystemView   = "system_view"
)

type dashboardTile struct {
	Permission string
	Title      string
	Allowed    bool
}

// dashboardTiles lists the sections shown on the dashboard, in display order
func dashboardTiles() []dashboardTile {
	return []dashboardTile{
		{Permission: PermissionEmployeeView, Title: "Employees"},
		{Permission: PermissionUserView, Title: "Users"},
		{Permission: PermissionRoleView, Title: "Roles"},
		{Permission: PermissionView, Title: "Permissions"},
		{Permission: PermissionTabView, Title: "Tabs"},
		{Permission: PermissionFieldView, Title: "Fields"},
		{Permission: PermissionCalendarView, Title: "Calendar"},
		{Permission: PermissionLibraryView, Title: "Library"},
		{Permission: PermissionSystemView, Title: "System"},
	}
}
