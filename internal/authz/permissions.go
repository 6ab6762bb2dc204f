// internal/authz/permissions.go
package authz

import "strings"

// capabilityPrefix is the backend app label; "add_tache" and "api.add_tache"
// name the same capability.
const capabilityPrefix = "api."

const (
	// Tasks
	TasksCreate  = "api.add_tache"
	TasksUpdate  = "api.change_tache"
	TasksDelete  = "api.delete_tache"
	TasksViewAll = "api.view_tache"

	// Projects
	ProjectsCreate  = "api.add_projet"
	ProjectsUpdate  = "api.change_projet"
	ProjectsDelete  = "api.delete_projet"
	ProjectsViewAll = "api.view_projet"

	// Users
	UsersCreate = "api.add_utilisateur"
	UsersUpdate = "api.change_utilisateur"
	UsersDelete = "api.delete_utilisateur"

	// Services
	ServicesCreate = "api.add_service"
	ServicesUpdate = "api.change_service"
	ServicesDelete = "api.delete_service"

	// Notifications
	NotificationsCreate = "api.add_notification"
	NotificationsUpdate = "api.change_notification"
	NotificationsDelete = "api.delete_notification"

	// Settings
	SettingsCreate = "api.add_settings"
	SettingsUpdate = "api.change_settings"

	AnalyticsView = "api.view_analytics"
)

// Normalize maps a bare codename onto its app-prefixed form.
func Normalize(capability string) string {
	c := strings.TrimSpace(capability)
	if c == "" || strings.Contains(c, ".") {
		return c
	}
	return capabilityPrefix + c
}
