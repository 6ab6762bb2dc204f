package authz

import (
	"taskflow-gateway/internal/entities"
)

// CanDo checks a capability against an optional target. Without a target
// (creation) the capability alone decides; with a task or project the
// ownership rules apply.
func CanDo(p *Principal, capability string, target interface{}) bool {
	if p == nil || !p.Authenticated() {
		return false
	}
	capability = Normalize(capability)

	switch t := target.(type) {
	case nil:
		return p.Can(capability)
	case *entities.Task:
		switch capability {
		case TasksUpdate:
			return p.CanEditTask(t)
		case TasksDelete:
			return p.CanDeleteTask(t)
		}
	case *entities.Project:
		switch capability {
		case ProjectsUpdate:
			return p.CanEditProject(t)
		case ProjectsDelete:
			return p.CanDeleteProject(t)
		}
	case *entities.User:
		// everyone manages their own profile
		if t.ID == p.userID() && capability == UsersUpdate {
			return true
		}
	}
	return p.Can(capability)
}
