package authz

import (
	"taskflow-gateway/internal/entities"
)

// roleDefaults are granted by role alone. ADMIN is handled separately: it
// holds every capability.
var roleDefaults = map[entities.Role][]string{
	entities.RoleManager: {
		TasksCreate,
		TasksUpdate,
		ProjectsCreate,
		AnalyticsView,
	},
	entities.RoleDirector: {
		AnalyticsView,
	},
	entities.RoleEmployee: {
		TasksCreate,
	},
}

// Principal is a user with its effective capability set resolved once.
type Principal struct {
	user     *entities.User
	explicit map[string]bool
	defaults map[string]bool
}

// For resolves the capabilities of u. A nil user yields a principal that
// can do nothing and sees nothing.
func For(u *entities.User) *Principal {
	p := &Principal{
		user:     u,
		explicit: make(map[string]bool),
		defaults: make(map[string]bool),
	}
	if u == nil {
		return p
	}
	for _, perm := range u.Permissions {
		if c := Normalize(perm); c != "" {
			p.explicit[c] = true
		}
	}
	for _, c := range roleDefaults[u.Role] {
		p.defaults[c] = true
	}
	return p
}

func (p *Principal) User() *entities.User { return p.user }

func (p *Principal) Authenticated() bool { return p.user != nil }

func (p *Principal) IsAdmin() bool {
	return p.user != nil && p.user.Role == entities.RoleAdmin
}

func (p *Principal) hasRole(r entities.Role) bool {
	return p.user != nil && p.user.Role == r
}

func (p *Principal) userID() string {
	if p.user == nil {
		return ""
	}
	return p.user.ID
}

// Can is isAdmin OR role default OR explicit permission.
func (p *Principal) Can(capability string) bool {
	if p.user == nil {
		return false
	}
	c := Normalize(capability)
	return p.IsAdmin() || p.defaults[c] || p.explicit[c]
}

// HasExplicit ignores role defaults.
func (p *Principal) HasExplicit(capability string) bool {
	return p.explicit[Normalize(capability)]
}

func (p *Principal) canAny(capabilities ...string) bool {
	for _, c := range capabilities {
		if p.Can(c) {
			return true
		}
	}
	return false
}

// CanEditTask: creator and assignees always; otherwise the change capability
// held by an ADMIN or MANAGER.
func (p *Principal) CanEditTask(t *entities.Task) bool {
	if p.user == nil || t == nil {
		return false
	}
	if t.CreatorID == p.user.ID || t.IsAssignedTo(p.user.ID) {
		return true
	}
	return p.Can(TasksUpdate) && (p.IsAdmin() || p.hasRole(entities.RoleManager))
}

func (p *Principal) CanDeleteTask(t *entities.Task) bool {
	if p.user == nil || t == nil {
		return false
	}
	return p.Can(TasksDelete) || t.CreatorID == p.user.ID
}

// CanEditProject: the change capability, the creator, or a MANAGER on the team.
func (p *Principal) CanEditProject(pr *entities.Project) bool {
	if p.user == nil || pr == nil {
		return false
	}
	if p.Can(ProjectsUpdate) || pr.CreatorID == p.user.ID {
		return true
	}
	return p.hasRole(entities.RoleManager) && pr.HasMember(p.user.ID)
}

func (p *Principal) CanDeleteProject(pr *entities.Project) bool {
	if p.user == nil || pr == nil {
		return false
	}
	return p.Can(ProjectsDelete) || p.IsAdmin()
}

func (p *Principal) CanViewAnalytics() bool {
	return p.Can(AnalyticsView) || p.HasExplicit(TasksViewAll) || p.HasExplicit(ProjectsViewAll)
}

func (p *Principal) CanManageUsers() bool {
	return p.canAny(UsersCreate, UsersUpdate, UsersDelete)
}

func (p *Principal) CanManageServices() bool {
	return p.canAny(ServicesCreate, ServicesUpdate, ServicesDelete)
}

func (p *Principal) CanManageNotifications() bool {
	return p.canAny(NotificationsCreate, NotificationsUpdate, NotificationsDelete)
}

func (p *Principal) CanAccessSettings() bool {
	return p.canAny(SettingsCreate, SettingsUpdate)
}

// UserPermissions is the capability summary the UI uses to show or hide
// actions.
type UserPermissions struct {
	CanCreateProjects      bool `json:"canCreateProjects"`
	CanEditProjects        bool `json:"canEditProjects"`
	CanDeleteProjects      bool `json:"canDeleteProjects"`
	CanCreateTasks         bool `json:"canCreateTasks"`
	CanEditTasks           bool `json:"canEditTasks"`
	CanDeleteTasks         bool `json:"canDeleteTasks"`
	CanManageUsers         bool `json:"canManageUsers"`
	CanManageServices      bool `json:"canManageServices"`
	CanViewAnalytics       bool `json:"canViewAnalytics"`
	CanViewAllProjects     bool `json:"canViewAllProjects"`
	CanViewAllTasks        bool `json:"canViewAllTasks"`
	CanManageNotifications bool `json:"canManageNotifications"`
	CanAccessSettings      bool `json:"canAccessSettings"`
}

func (p *Principal) Summary() UserPermissions {
	return UserPermissions{
		CanCreateProjects:      p.Can(ProjectsCreate),
		CanEditProjects:        p.Can(ProjectsUpdate),
		CanDeleteProjects:      p.Can(ProjectsDelete),
		CanCreateTasks:         p.Can(TasksCreate),
		CanEditTasks:           p.Can(TasksUpdate),
		CanDeleteTasks:         p.Can(TasksDelete),
		CanManageUsers:         p.CanManageUsers(),
		CanManageServices:      p.CanManageServices(),
		CanViewAnalytics:       p.CanViewAnalytics(),
		CanViewAllProjects:     p.IsAdmin() || p.HasExplicit(ProjectsViewAll),
		CanViewAllTasks:        p.IsAdmin() || p.HasExplicit(TasksViewAll),
		CanManageNotifications: p.CanManageNotifications(),
		CanAccessSettings:      p.CanAccessSettings(),
	}
}
