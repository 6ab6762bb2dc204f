package entities

// Service is a department: it groups users, tasks and projects.
type Service struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	HeadID           string   `json:"headId"`
	MemberIDs        []string `json:"memberIds"`
	Color            string   `json:"color"`
	WorkloadCapacity int      `json:"workloadCapacity"`
}
