package transformers

import (
	"taskflow-gateway/internal/entities"
)

const (
	defaultServiceColor    = "#3B82F6"
	defaultServiceCapacity = 100
)

func Service(r Record) entities.Service {
	return entities.Service{
		ID:               r.String(Keys{"id"}, ""),
		Name:             r.String(Keys{"name", "nom"}, ""),
		Description:      r.String(Keys{"description"}, ""),
		HeadID:           r.String(Keys{"headId", "chef"}, ""),
		MemberIDs:        r.StringsOr(Keys{"memberIds", "membres"}),
		Color:            r.String(Keys{"color", "couleur"}, defaultServiceColor),
		WorkloadCapacity: r.Int(Keys{"workloadCapacity", "capacite_charge"}, defaultServiceCapacity),
	}
}

func Services(records []Record) []entities.Service {
	out := make([]entities.Service, 0, len(records))
	for _, r := range records {
		out = append(out, Service(r))
	}
	return out
}

func ServiceToBackend(s entities.Service) map[string]any {
	payload := map[string]any{
		"name":        s.Name,
		"nom":         s.Name,
		"description": s.Description,
		"color":       s.Color,
	}
	if s.HeadID != "" {
		payload["headId"] = s.HeadID
	}
	if s.WorkloadCapacity > 0 {
		payload["workloadCapacity"] = s.WorkloadCapacity
	}
	return payload
}

func User(r Record) entities.User {
	u := entities.User{
		ID:           r.String(Keys{"id"}, ""),
		Username:     r.String(Keys{"username"}, ""),
		Email:        r.String(Keys{"email"}, ""),
		FirstName:    r.String(Keys{"firstName", "first_name"}, ""),
		LastName:     r.String(Keys{"lastName", "last_name"}, ""),
		FullName:     r.String(Keys{"fullName", "full_name"}, ""),
		Role:         entities.Role(r.String(Keys{"role"}, string(entities.RoleEmployee))),
		Service:      r.NullString(Keys{"service", "serviceId", "service_id"}),
		Permissions:  r.StringsOr(Keys{"permissions"}),
		ProfilePhoto: r.String(Keys{"profilePhoto", "photo_profil"}, ""),
		Phone:        r.String(Keys{"phone", "telephone"}, ""),
		Bio:          r.String(Keys{"bio"}, ""),
		LastLogin:    r.NullTime(Keys{"lastLogin", "last_login"}),
		IsOnline:     r.Bool(Keys{"isOnline"}, false),
	}
	if !u.Role.Valid() {
		u.Role = entities.RoleEmployee
	}
	return u
}

func Users(records []Record) []entities.User {
	out := make([]entities.User, 0, len(records))
	for _, r := range records {
		out = append(out, User(r))
	}
	return out
}

// NewUser is the registration payload; Password and AdminCode never reach
// the cache.
type NewUser struct {
	entities.User
	Password  string
	AdminCode string
}

func UserToBackend(u NewUser) map[string]any {
	payload := map[string]any{
		"username":   u.Username,
		"email":      u.Email,
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"role":       string(u.Role),
	}
	if u.Password != "" {
		payload["password"] = u.Password
	}
	if sid := u.ServiceID(); sid != "" {
		payload["service_id"] = sid
	}
	if u.AdminCode != "" {
		payload["admin_code"] = u.AdminCode
	}
	if u.Phone != "" {
		payload["phone"] = u.Phone
	}
	if u.Bio != "" {
		payload["bio"] = u.Bio
	}
	return payload
}

func EmployeeLoan(r Record) entities.EmployeeLoan {
	start, _ := r.TimeOrNow(Keys{"startDate", "date_debut"})
	end, _ := r.TimeOrNow(Keys{"endDate", "date_fin"})
	l := entities.EmployeeLoan{
		ID:             r.String(Keys{"id"}, ""),
		EmployeeID:     r.String(Keys{"employeeId", "employe"}, ""),
		FromServiceID:  r.String(Keys{"fromServiceId", "service_source"}, ""),
		ToServiceID:    r.String(Keys{"toServiceId", "service_destination"}, ""),
		StartDate:      start,
		EndDate:        end,
		Reason:         r.String(Keys{"reason", "raison"}, ""),
		Status:         entities.LoanStatus(r.String(Keys{"status", "statut"}, string(entities.LoanPending))),
		ApprovedBy:     r.String(Keys{"approvedBy", "approuve_par"}, ""),
		WorkloadImpact: r.Int(Keys{"workloadImpact", "impact_charge"}, 0),
	}
	if cost, ok := r.Float(Keys{"cost", "cout"}); ok {
		l.Cost.SetValid(cost)
	}
	return l
}

func EmployeeLoans(records []Record) []entities.EmployeeLoan {
	out := make([]entities.EmployeeLoan, 0, len(records))
	for _, r := range records {
		out = append(out, EmployeeLoan(r))
	}
	return out
}

func EmployeeLoanToBackend(l entities.EmployeeLoan) map[string]any {
	payload := map[string]any{
		"employe":             l.EmployeeID,
		"service_source":      l.FromServiceID,
		"service_destination": l.ToServiceID,
		"raison":              l.Reason,
		"impact_charge":       l.WorkloadImpact,
	}
	if !l.StartDate.IsZero() {
		payload["date_debut"] = formatDate(l.StartDate)
	}
	if !l.EndDate.IsZero() {
		payload["date_fin"] = formatDate(l.EndDate)
	}
	if l.Status != "" {
		payload["statut"] = string(l.Status)
	}
	if l.Cost.Valid {
		payload["cout"] = l.Cost.Float64
	}
	return payload
}

func UrgencyMode(r Record) entities.UrgencyMode {
	start, _ := r.TimeOrNow(Keys{"startDate", "date_debut"})
	return entities.UrgencyMode{
		ID:                 r.String(Keys{"id"}, ""),
		ServiceID:          r.String(Keys{"serviceId", "service"}, ""),
		Title:              r.String(Keys{"title", "titre"}, ""),
		Description:        r.String(Keys{"description"}, ""),
		IsActive:           r.AnyTrue(Keys{"isActive", "est_actif"}),
		StartDate:          start,
		EndDate:            r.NullTime(Keys{"endDate", "date_fin"}),
		ActivatedBy:        r.String(Keys{"activatedBy", "active_par"}, ""),
		Severity:           entities.Severity(r.String(Keys{"severity", "severite"}, string(entities.SeverityMedium))),
		AffectedProjects:   r.StringsOr(Keys{"affectedProjects", "projets_affectes"}),
		ResourcesAllocated: r.Int(Keys{"resourcesAllocated", "ressources_allouees"}, 0),
	}
}

func UrgencyModes(records []Record) []entities.UrgencyMode {
	out := make([]entities.UrgencyMode, 0, len(records))
	for _, r := range records {
		out = append(out, UrgencyMode(r))
	}
	return out
}

func UrgencyModeToBackend(m entities.UrgencyMode) map[string]any {
	payload := map[string]any{
		"titre":               m.Title,
		"description":         m.Description,
		"est_actif":           m.IsActive,
		"severite":            string(m.Severity),
		"ressources_allouees": m.ResourcesAllocated,
	}
	if m.ServiceID != "" {
		payload["service"] = m.ServiceID
	}
	if m.ActivatedBy != "" {
		payload["active_par"] = m.ActivatedBy
	}
	if !m.StartDate.IsZero() {
		payload["date_debut"] = formatTime(m.StartDate)
	}
	if m.EndDate.Valid {
		payload["date_fin"] = formatTime(m.EndDate.Time)
	}
	if len(m.AffectedProjects) > 0 {
		payload["projets_affectes"] = m.AffectedProjects
	}
	return payload
}
