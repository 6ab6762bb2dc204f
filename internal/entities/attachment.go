package entities

import "github.com/aarondl/null/v8"

// OwnerKind is the entity type an attachment hangs off.
type OwnerKind string

const (
	OwnerTask    OwnerKind = "task"
	OwnerProject OwnerKind = "project"
	OwnerUser    OwnerKind = "user"
)

// AttachmentOwner is the (kind, id) pair of an attachment's parent.
// Build it with TaskOwner/ProjectOwner/UserOwner or ParseOwner.
type AttachmentOwner struct {
	Kind OwnerKind `json:"relatedTo"`
	ID   string    `json:"relatedId"`
}

func TaskOwner(id string) AttachmentOwner    { return AttachmentOwner{Kind: OwnerTask, ID: id} }
func ProjectOwner(id string) AttachmentOwner { return AttachmentOwner{Kind: OwnerProject, ID: id} }
func UserOwner(id string) AttachmentOwner    { return AttachmentOwner{Kind: OwnerUser, ID: id} }

// ParseOwner returns false for an unknown kind or an empty id.
func ParseOwner(kind, id string) (AttachmentOwner, bool) {
	var owner AttachmentOwner
	switch OwnerKind(kind) {
	case OwnerTask:
		owner = TaskOwner(id)
	case OwnerProject:
		owner = ProjectOwner(id)
	case OwnerUser:
		owner = UserOwner(id)
	default:
		return AttachmentOwner{}, false
	}
	return owner, owner.Valid()
}

func (o AttachmentOwner) Valid() bool {
	switch o.Kind {
	case OwnerTask, OwnerProject, OwnerUser:
		return o.ID != ""
	}
	return false
}

type Attachment struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Size        int64           `json:"size"`
	Type        string          `json:"type"`
	URL         string          `json:"url"`
	UploadedBy  string          `json:"uploadedBy,omitempty"`
	UploadedAt  null.Time       `json:"uploadedAt"`
	IsEncrypted bool            `json:"isEncrypted"`
	Owner       AttachmentOwner `json:"owner"`
}
