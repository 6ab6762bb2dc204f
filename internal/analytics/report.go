package analytics

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"taskflow-gateway/internal/entities"
)

const (
	tasksSheet    = "Tâches"
	servicesSheet = "Services"
	dateLayout    = "02.01.2006"
	stampLayout   = "02.01.2006 15:04"
)

var taskHeaders = []string{
	"ID", "Titre", "Type", "Service", "Statut", "Priorité", "Échéance",
	"Assignés", "Points de charge", "Temps estimé (h)", "Temps passé (h)", "Créée le", "Terminée le",
}

var serviceHeaders = []string{
	"Service", "Utilisateurs", "Tâches", "Actives", "Terminées", "Charge totale", "Taux de complétion (%)", "Efficacité (%)",
}

func taskRow(t entities.Task, names map[string]string, serviceNames map[string]string) []interface{} {
	assignees := make([]string, 0, len(t.AssignedTo))
	for _, id := range t.AssignedTo {
		if n, ok := names[id]; ok {
			assignees = append(assignees, n)
		} else {
			assignees = append(assignees, id)
		}
	}
	var completedAt string
	if t.CompletedAt.Valid {
		completedAt = t.CompletedAt.Time.Format(stampLayout)
	}
	deadline := t.Deadline.Format(stampLayout)
	if t.DeadlineDefaulted {
		deadline = "-"
	}
	return []interface{}{
		t.ID, t.Title, string(t.Type), serviceNames[t.ServiceID], string(t.Status), string(t.Priority), deadline,
		strings.Join(assignees, ", "), t.WorkloadPoints, t.EstimatedTime, t.TimeTracked,
		t.CreatedAt.Format(dateLayout), completedAt,
	}
}

// ExportTasksXLSX writes a workbook with one row per task and a per-service
// summary sheet.
func ExportTasksXLSX(w io.Writer, tasks []entities.Task, users []entities.User, services []entities.Service) error {
	names := make(map[string]string, len(users))
	for i := range users {
		names[users[i].ID] = users[i].DisplayName()
	}
	serviceNames := make(map[string]string, len(services))
	for _, s := range services {
		serviceNames[s.ID] = s.Name
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", tasksSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := writeSheet(f, tasksSheet, taskHeaders, len(tasks), func(i int) []interface{} {
		return taskRow(tasks[i], names, serviceNames)
	}); err != nil {
		return err
	}
	_ = f.SetColWidth(tasksSheet, "B", "B", 40)
	_ = f.SetColWidth(tasksSheet, "D", "D", 25)
	_ = f.SetColWidth(tasksSheet, "G", "H", 25)

	if _, err := f.NewSheet(servicesSheet); err != nil {
		return fmt.Errorf("failed to add sheet %s: %w", servicesSheet, err)
	}
	perf := servicePerformance(tasks, users, services)
	if err := writeSheet(f, servicesSheet, serviceHeaders, len(perf), func(i int) []interface{} {
		sp := perf[i]
		return []interface{}{sp.Name, sp.UserCount, sp.TotalTasks, sp.ActiveTasks, sp.CompletedTasks, sp.TotalWorkload, sp.CompletionRate, sp.Efficiency}
	}); err != nil {
		return err
	}
	_ = f.SetColWidth(servicesSheet, "A", "A", 30)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows int, row func(i int) []interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write %s headers: %w", sheet, err)
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(sheet, "A1", last, style)
	}
	for i := 0; i < rows; i++ {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := row(i)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// ReportFileName is the attachment name for a report generated at now.
func ReportFileName(now time.Time) string {
	return fmt.Sprintf("taches_%s.xlsx", now.Format("2006-01-02"))
}
