package authz

import (
	"strings"

	"taskflow-gateway/internal/entities"
)

// ProjectIndex resolves a task's project by id.
type ProjectIndex map[string]*entities.Project

func IndexProjects(projects []entities.Project) ProjectIndex {
	idx := make(ProjectIndex, len(projects))
	for i := range projects {
		idx[projects[i].ID] = &projects[i]
	}
	return idx
}

// TaskVisible is the one definition of task visibility. ADMIN and explicit
// api.view_tache see everything; everyone else sees tasks they created or
// are assigned to, tasks of their service, and tasks of projects they are
// on or that belong to their service.
func (p *Principal) TaskVisible(t *entities.Task, projects ProjectIndex) bool {
	if p.user == nil || t == nil {
		return false
	}
	if p.IsAdmin() || p.HasExplicit(TasksViewAll) {
		return true
	}
	uid := p.user.ID
	if t.IsAssignedTo(uid) || (t.CreatorID != "" && t.CreatorID == uid) {
		return true
	}
	service := p.user.ServiceID()
	if service != "" && t.ServiceID == service {
		return true
	}
	if t.ProjectID == "" {
		return false
	}
	pr, ok := projects[t.ProjectID]
	if !ok {
		return false
	}
	return pr.HasMember(uid) || pr.InService(service)
}

// ProjectVisible: ADMIN and explicit api.view_projet see everything;
// otherwise creator, chef, member, or a service match.
func (p *Principal) ProjectVisible(pr *entities.Project) bool {
	if p.user == nil || pr == nil {
		return false
	}
	if p.IsAdmin() || p.HasExplicit(ProjectsViewAll) {
		return true
	}
	uid := p.user.ID
	if pr.CreatorID == uid || pr.HasMember(uid) {
		return true
	}
	return pr.InService(p.user.ServiceID())
}

// VisibleTasks returns the subset of tasks u may see, in input order.
func VisibleTasks(tasks []entities.Task, u *entities.User, projects []entities.Project) []entities.Task {
	return For(u).VisibleTasks(tasks, IndexProjects(projects))
}

func (p *Principal) VisibleTasks(tasks []entities.Task, projects ProjectIndex) []entities.Task {
	out := make([]entities.Task, 0, len(tasks))
	for i := range tasks {
		if p.TaskVisible(&tasks[i], projects) {
			out = append(out, tasks[i])
		}
	}
	return out
}

func VisibleProjects(projects []entities.Project, u *entities.User) []entities.Project {
	return For(u).VisibleProjects(projects)
}

func (p *Principal) VisibleProjects(projects []entities.Project) []entities.Project {
	out := make([]entities.Project, 0, len(projects))
	for i := range projects {
		if p.ProjectVisible(&projects[i]) {
			out = append(out, projects[i])
		}
	}
	return out
}

// TaskFilter narrows a visible task list the way the board does. Empty and
// "all" values match everything.
type TaskFilter struct {
	Type          string
	Priority      string
	Status        string
	Assignee      string // a user id, or "me"
	ServiceID     string
	ProjectID     string
	Search        string
	HideCompleted bool
}

func (f TaskFilter) Match(t *entities.Task, me string) bool {
	if !matchValue(f.Type, string(t.Type)) ||
		!matchValue(f.Priority, string(t.Priority)) ||
		!matchValue(f.Status, string(t.Status)) ||
		!matchValue(f.ServiceID, t.ServiceID) ||
		!matchValue(f.ProjectID, t.ProjectID) {
		return false
	}
	if f.HideCompleted && t.IsCompleted() {
		return false
	}
	switch f.Assignee {
	case "", "all":
	case "me":
		if !t.IsAssignedTo(me) {
			return false
		}
	default:
		if !t.IsAssignedTo(f.Assignee) {
			return false
		}
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		return strings.Contains(strings.ToLower(t.Title), q) ||
			strings.Contains(strings.ToLower(t.Description), q)
	}
	return true
}

func matchValue(want, got string) bool {
	return want == "" || want == "all" || want == got
}

// BoardTasks is VisibleTasks followed by the board filter.
func (p *Principal) BoardTasks(tasks []entities.Task, projects ProjectIndex, f TaskFilter) []entities.Task {
	visible := p.VisibleTasks(tasks, projects)
	out := visible[:0]
	for i := range visible {
		if f.Match(&visible[i], p.userID()) {
			out = append(out, visible[i])
		}
	}
	return out
}
