package entities

import "time"

// TaskPreferences is the per-user board configuration.
type TaskPreferences struct {
	UserID         string    `json:"userId"`
	DefaultView    string    `json:"defaultView"`
	FilterPriority string    `json:"filterPriority"`
	FilterAssignee string    `json:"filterAssignee"`
	FilterTaskType string    `json:"filterTaskType"`
	ShowCompleted  bool      `json:"showCompleted"`
	Columns        []string  `json:"columns"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func DefaultTaskPreferences(userID string) TaskPreferences {
	columns := make([]string, 0, len(TaskStatuses))
	for _, s := range TaskStatuses {
		columns = append(columns, string(s))
	}
	return TaskPreferences{
		UserID:         userID,
		DefaultView:    "board",
		FilterPriority: "all",
		FilterAssignee: "all",
		FilterTaskType: "all",
		ShowCompleted:  true,
		Columns:        columns,
	}
}
