package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"taskflow-gateway/internal/entities"
	"taskflow-gateway/internal/transformers"
	apperrors "taskflow-gateway/pkg/errors"
)

// Upload is one file to attach to an owner.
type Upload struct {
	Owner    entities.AttachmentOwner
	Filename string
	Name     string // optional display name
	Content  io.Reader
}

// UploadAttachment posts the file as multipart form data with the owner's
// related_to/related_id fields.
func (c *Client) UploadAttachment(ctx context.Context, up Upload) (entities.Attachment, error) {
	if !up.Owner.Valid() {
		return entities.Attachment{}, apperrors.NewInvalidInputError("invalid attachment owner %q/%q", up.Owner.Kind, up.Owner.ID)
	}
	if err := ValidateID(up.Owner.ID, string(up.Owner.Kind)); err != nil {
		return entities.Attachment{}, err
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", up.Filename)
	if err != nil {
		return entities.Attachment{}, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, up.Content); err != nil {
		return entities.Attachment{}, fmt.Errorf("failed to copy upload: %w", err)
	}
	fields := map[string]string{
		"related_to": string(up.Owner.Kind),
		"related_id": up.Owner.ID,
	}
	if up.Name != "" {
		fields["name"] = up.Name
	}
	for k, v := range fields {
		if err := form.WriteField(k, v); err != nil {
			return entities.Attachment{}, fmt.Errorf("failed to write field %s: %w", k, err)
		}
	}
	if err := form.Close(); err != nil {
		return entities.Attachment{}, fmt.Errorf("failed to close multipart body: %w", err)
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return entities.Attachment{}, fmt.Errorf("no backend token for session: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/attachments/upload/", &body)
	if err != nil {
		return entities.Attachment{}, fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	var raw map[string]any
	if err := c.send(req, &raw); err != nil {
		return entities.Attachment{}, err
	}
	a := transformers.Attachment(raw)
	// the upload response does not always echo the owner
	if !a.Owner.Valid() {
		a.Owner = up.Owner
	}
	return a, nil
}
