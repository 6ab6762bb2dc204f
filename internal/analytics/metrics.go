// Package analytics computes dashboard metrics over the tasks and projects a
// user can see.
package analytics

import (
	"math"
	"time"

	"taskflow-gateway/internal/entities"
)

type Period string

const (
	PeriodAll     Period = ""
	PeriodWeek    Period = "week"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
)

func (p Period) Valid() bool {
	switch p {
	case PeriodAll, PeriodWeek, PeriodMonth, PeriodQuarter, PeriodYear:
		return true
	}
	return false
}

// Since is the lower bound on task creation for the period.
func (p Period) Since(now time.Time) (time.Time, bool) {
	switch p {
	case PeriodWeek:
		return now.AddDate(0, 0, -7), true
	case PeriodMonth:
		return now.AddDate(0, -1, 0), true
	case PeriodQuarter:
		return now.AddDate(0, -3, 0), true
	case PeriodYear:
		return now.AddDate(-1, 0, 0), true
	}
	return time.Time{}, false
}

const defaultCapacity = 100

type Filter struct {
	Period    Period
	ServiceID string
	Now       time.Time
}

// Input is the caller's visible universe; callers filter it through authz
// before computing.
type Input struct {
	Tasks    []entities.Task
	Projects []entities.Project
	Users    []entities.User
	Services []entities.Service
}

type MainMetrics struct {
	TotalTasks       int `json:"totalTasks"`
	CompletedTasks   int `json:"completedTasks"`
	UrgentTasks      int `json:"urgentTasks"`
	OverdueTasks     int `json:"overdueTasks"`
	CompletionRate   int `json:"completionRate"`
	ActiveProjects   int `json:"activeProjects"`
	PlanningProjects int `json:"planningProjects"`
	GlobalEfficiency int `json:"globalEfficiency"`
}

type ServicePerformance struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	UserCount      int    `json:"userCount"`
	TotalTasks     int    `json:"totalTasks"`
	ActiveTasks    int    `json:"activeTasks"`
	CompletedTasks int    `json:"completedTasks"`
	TotalWorkload  int    `json:"totalWorkload"`
	CompletionRate int    `json:"completionRate"`
	Efficiency     int    `json:"efficiency"`
}

type Workload struct {
	UserID      string `json:"userId"`
	Name        string `json:"name"`
	ServiceID   string `json:"serviceId,omitempty"`
	OpenTasks   int    `json:"openTasks"`
	OpenPoints  int    `json:"openPoints"`
	Capacity    int    `json:"capacity"`
	LoadPercent int    `json:"loadPercent"`
}

type Report struct {
	Period             Period               `json:"period"`
	ServiceID          string               `json:"serviceId,omitempty"`
	MainMetrics        MainMetrics          `json:"mainMetrics"`
	ServicePerformance []ServicePerformance `json:"servicePerformance"`
	Workload           []Workload           `json:"workload"`
	GeneratedAt        time.Time            `json:"generatedAt"`
}

// Compute builds the report for the tasks matching f.
func Compute(in Input, f Filter) Report {
	if f.Now.IsZero() {
		f.Now = time.Now()
	}
	tasks := filterTasks(in.Tasks, f)
	projects := in.Projects
	if f.ServiceID != "" {
		projects = nil
		for _, p := range in.Projects {
			if p.InService(f.ServiceID) {
				projects = append(projects, p)
			}
		}
	}
	services := in.Services
	if f.ServiceID != "" {
		services = nil
		for _, s := range in.Services {
			if s.ID == f.ServiceID {
				services = append(services, s)
			}
		}
	}

	return Report{
		Period:             f.Period,
		ServiceID:          f.ServiceID,
		MainMetrics:        mainMetrics(tasks, projects, f.Now),
		ServicePerformance: servicePerformance(tasks, in.Users, services),
		Workload:           workloads(tasks, in.Users, in.Services),
		GeneratedAt:        f.Now.UTC(),
	}
}

func filterTasks(tasks []entities.Task, f Filter) []entities.Task {
	since, bounded := f.Period.Since(f.Now)
	out := make([]entities.Task, 0, len(tasks))
	for _, t := range tasks {
		if bounded && t.CreatedAt.Before(since) {
			continue
		}
		if f.ServiceID != "" && t.ServiceID != f.ServiceID {
			continue
		}
		out = append(out, t)
	}
	return out
}

func mainMetrics(tasks []entities.Task, projects []entities.Project, now time.Time) MainMetrics {
	var m MainMetrics
	var totalPoints, donePoints int
	for i := range tasks {
		t := &tasks[i]
		m.TotalTasks++
		totalPoints += t.WorkloadPoints
		if t.IsCompleted() {
			m.CompletedTasks++
			donePoints += t.WorkloadPoints
		}
		if t.Priority == entities.PriorityUrgent && !t.IsCompleted() {
			m.UrgentTasks++
		}
		if t.IsOverdue(now) {
			m.OverdueTasks++
		}
	}
	for _, p := range projects {
		switch p.Status {
		case entities.ProjectActive:
			m.ActiveProjects++
		case entities.ProjectPlanning:
			m.PlanningProjects++
		}
	}
	m.CompletionRate = percent(m.CompletedTasks, m.TotalTasks)
	m.GlobalEfficiency = percent(donePoints, totalPoints)
	return m
}

func servicePerformance(tasks []entities.Task, users []entities.User, services []entities.Service) []ServicePerformance {
	out := make([]ServicePerformance, 0, len(services))
	for _, s := range services {
		sp := ServicePerformance{ID: s.ID, Name: s.Name}
		for i := range users {
			if users[i].ServiceID() == s.ID {
				sp.UserCount++
			}
		}
		var ratioSum float64
		for i := range tasks {
			t := &tasks[i]
			if t.ServiceID != s.ID {
				continue
			}
			sp.TotalTasks++
			sp.TotalWorkload += t.WorkloadPoints
			if !t.IsCompleted() {
				sp.ActiveTasks++
				continue
			}
			sp.CompletedTasks++
			ratioSum += timeEfficiency(t)
		}
		sp.CompletionRate = percent(sp.CompletedTasks, sp.TotalTasks)
		sp.Efficiency = 100
		if sp.CompletedTasks > 0 {
			sp.Efficiency = int(math.Round(ratioSum / float64(sp.CompletedTasks)))
		}
		out = append(out, sp)
	}
	return out
}

// timeEfficiency is estimated over tracked time in percent. Missing values
// count as on estimate.
func timeEfficiency(t *entities.Task) float64 {
	estimated := t.EstimatedTime
	if estimated <= 0 {
		estimated = 1
	}
	actual := t.TimeTracked
	if actual <= 0 {
		actual = estimated
	}
	return float64(estimated) / float64(actual) * 100
}

func workloads(tasks []entities.Task, users []entities.User, services []entities.Service) []Workload {
	capacity := make(map[string]int, len(services))
	for _, s := range services {
		capacity[s.ID] = s.WorkloadCapacity
	}

	out := make([]Workload, 0, len(users))
	for i := range users {
		u := &users[i]
		w := Workload{UserID: u.ID, Name: u.DisplayName(), ServiceID: u.ServiceID(), Capacity: capacity[u.ServiceID()]}
		if w.Capacity <= 0 {
			w.Capacity = defaultCapacity
		}
		for j := range tasks {
			t := &tasks[j]
			if t.IsCompleted() || !t.IsAssignedTo(u.ID) {
				continue
			}
			w.OpenTasks++
			w.OpenPoints += t.WorkloadPoints
		}
		w.LoadPercent = percent(w.OpenPoints, w.Capacity)
		out = append(out, w)
	}
	return out
}

func percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(total)))
}
