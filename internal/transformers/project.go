package transformers

import (
	"taskflow-gateway/internal/entities"
)

var (
	projectName        = Keys{"name", "nom"}
	projectStatus      = Keys{"status", "statut"}
	projectStart       = Keys{"startDate", "date_debut"}
	projectEnd         = Keys{"endDate", "date_fin"}
	projectRisk        = Keys{"riskLevel", "risk_level"}
	projectColor       = Keys{"color", "couleur"}
	projectProgress    = Keys{"progress", "progres"}
	projectCreator     = Keys{"creatorId", "createur"}
	projectChef        = Keys{"chefId", "chef"}
	projectMembers     = Keys{"memberIds", "membres", "teamMembers"}
	projectServiceList = Keys{"serviceIds", "services"}
	projectService     = Keys{"serviceId", "service"}
)

const defaultProjectColor = "#10B981"

func Project(r Record) entities.Project {
	serviceIDs, ok := r.StringSlice(projectServiceList)
	if !ok {
		serviceIDs = []string{}
		if s := r.String(Keys{"service"}, ""); s != "" {
			serviceIDs = []string{s}
		}
	}
	p := entities.Project{
		ID:                 r.String(Keys{"id"}, ""),
		Name:               r.String(projectName, ""),
		Description:        r.String(Keys{"description"}, ""),
		Status:             entities.ProjectStatus(r.String(projectStatus, string(entities.ProjectPlanning))),
		Progress:           r.Int(projectProgress, 0),
		Color:              r.String(projectColor, defaultProjectColor),
		StartDate:          r.NullTime(projectStart),
		EndDate:            r.NullTime(projectEnd),
		RiskLevel:          r.String(projectRisk, ""),
		CreatorID:          r.String(projectCreator, ""),
		ChefID:             r.String(projectChef, ""),
		MemberIDs:          r.StringsOr(projectMembers),
		ServiceID:          r.String(projectService, ""),
		ServiceIDs:         serviceIDs,
		TaskIDs:            r.StringsOr(Keys{"tasks"}),
		TaskCount:          r.Int(Keys{"taskCount"}, 0),
		CompletedTaskCount: r.Int(Keys{"completedTaskCount"}, 0),
		Attachments:        Attachments(r.List(Keys{"attachments"})),
	}
	if p.Attachments == nil {
		p.Attachments = []entities.Attachment{}
	}
	return p
}

func Projects(records []Record) []entities.Project {
	out := make([]entities.Project, 0, len(records))
	for _, r := range records {
		out = append(out, Project(r))
	}
	return out
}

// ProjectToBackend uses the backend's French field names. Empty optional
// fields are omitted.
func ProjectToBackend(p entities.Project) map[string]any {
	payload := map[string]any{
		"name":        p.Name,
		"description": p.Description,
	}
	if p.Status != "" {
		payload["statut"] = string(p.Status)
	}
	if p.StartDate.Valid {
		payload["date_debut"] = formatDate(p.StartDate.Time)
	}
	if p.EndDate.Valid {
		payload["date_fin"] = formatDate(p.EndDate.Time)
	}
	if p.ChefID != "" {
		payload["chef"] = p.ChefID
	}
	if p.MemberIDs != nil {
		payload["membres"] = p.MemberIDs
	}
	if len(p.ServiceIDs) > 0 {
		payload["services"] = p.ServiceIDs
	} else if p.ServiceID != "" {
		payload["services"] = []string{p.ServiceID}
	}
	if p.RiskLevel != "" {
		payload["risk_level"] = p.RiskLevel
	}
	return payload
}
