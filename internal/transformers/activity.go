package transformers

import (
	"regexp"
	"strings"

	"taskflow-gateway/internal/entities"
)

func Notification(r Record) entities.Notification {
	createdAt, _ := r.TimeOrNow(Keys{"createdAt", "date_creation"})
	return entities.Notification{
		ID:        r.String(Keys{"id"}, ""),
		UserID:    r.String(Keys{"userId", "utilisateur", "user"}, ""),
		Type:      entities.NotificationType(r.String(Keys{"type"}, string(entities.NotificationTaskAssigned))),
		Title:     r.String(Keys{"title", "titre"}, ""),
		Message:   r.String(Keys{"message"}, ""),
		IsRead:    r.Bool(Keys{"isRead", "est_lue"}, false),
		CreatedAt: createdAt,
		RelatedID: r.String(Keys{"relatedId", "related_id"}, ""),
		Priority:  entities.NotificationPriority(r.String(Keys{"priority", "priorite"}, string(entities.NotificationMedium))),
		ExpiresAt: r.NullTime(Keys{"expiresAt", "date_expiration"}),
	}
}

func Notifications(records []Record) []entities.Notification {
	out := make([]entities.Notification, 0, len(records))
	for _, r := range records {
		out = append(out, Notification(r))
	}
	return out
}

func NotificationToBackend(n entities.Notification) map[string]any {
	payload := map[string]any{
		"type":     string(n.Type),
		"titre":    n.Title,
		"title":    n.Title,
		"message":  n.Message,
		"priorite": string(n.Priority),
	}
	if n.UserID != "" {
		payload["utilisateur"] = n.UserID
		payload["userId"] = n.UserID
	}
	if n.RelatedID != "" {
		payload["related_id"] = n.RelatedID
	}
	return payload
}

// Comment maps a backend comment. When users is given the author's display
// name is filled in.
func Comment(r Record, users []entities.User) entities.Comment {
	createdAt, _ := r.TimeOrNow(Keys{"createdAt", "date_creation"})
	c := entities.Comment{
		ID:        r.String(Keys{"id"}, ""),
		TaskID:    r.String(Keys{"taskId", "tache", "task"}, ""),
		Content:   r.String(Keys{"content", "contenu"}, ""),
		AuthorID:  r.String(Keys{"authorId", "auteur"}, ""),
		CreatedAt: createdAt,
		Mentions:  r.StringsOr(Keys{"mentions"}),
		ParentID:  r.String(Keys{"parentId", "parent"}, ""),
		Replies:   Comments(r.List(Keys{"replies"}), users),
		IsEdited:  r.AnyTrue(Keys{"isEdited", "est_modifie"}),
		EditedAt:  r.NullTime(Keys{"editedAt", "date_modification"}),
	}
	if c.Replies == nil {
		c.Replies = []entities.Comment{}
	}
	for i := range users {
		if c.AuthorID != "" && users[i].ID == c.AuthorID {
			c.AuthorFullName = users[i].DisplayName()
			break
		}
	}
	return c
}

func Comments(records []Record, users []entities.User) []entities.Comment {
	if records == nil {
		return nil
	}
	out := make([]entities.Comment, 0, len(records))
	for _, r := range records {
		out = append(out, Comment(r, users))
	}
	return out
}

func CommentToBackend(c entities.Comment) map[string]any {
	payload := map[string]any{
		"content":  c.Content,
		"mentions": nonNil(c.Mentions),
	}
	if c.ParentID != "" {
		payload["parentId"] = c.ParentID
	}
	return payload
}

// an @ preceded by a word character is an e-mail address, not a mention
var mentionRe = regexp.MustCompile(`(?:^|[^\p{L}\p{N}_@])@([\p{L}\p{N}_][\p{L}\p{N}_.\-]*)`)

// ExtractMentions returns the unique @username tokens of content in order
// of first appearance, without the @.
func ExtractMentions(content string) []string {
	out := []string{}
	seen := map[string]struct{}{}
	for _, m := range mentionRe.FindAllStringSubmatch(content, -1) {
		name := strings.TrimRight(m[1], ".-")
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func Attachment(r Record) entities.Attachment {
	a := entities.Attachment{
		ID:          r.String(Keys{"id"}, ""),
		Name:        r.String(Keys{"name", "nom"}, ""),
		Type:        r.String(Keys{"type", "type_mime"}, ""),
		URL:         r.String(Keys{"url", "fichier"}, ""),
		UploadedBy:  r.String(Keys{"uploadedBy", "telecharge_par", "uploadedById"}, ""),
		UploadedAt:  r.NullTime(Keys{"uploadedAt", "date_creation"}),
		IsEncrypted: r.AnyTrue(Keys{"isEncrypted", "est_chiffre"}),
	}
	if size, ok := r.Float(Keys{"size", "taille"}); ok {
		a.Size = int64(size)
	}
	// an unknown kind leaves the owner invalid
	if owner, ok := entities.ParseOwner(
		r.String(Keys{"relatedTo", "related_to"}, ""),
		r.String(Keys{"relatedId", "related_id"}, ""),
	); ok {
		a.Owner = owner
	}
	return a
}

func Attachments(records []Record) []entities.Attachment {
	if records == nil {
		return nil
	}
	out := make([]entities.Attachment, 0, len(records))
	for _, r := range records {
		out = append(out, Attachment(r))
	}
	return out
}

func Conversation(r Record) entities.Conversation {
	return entities.Conversation{
		ID:              r.String(Keys{"id"}, ""),
		Name:            r.String(Keys{"name", "nom"}, ""),
		ParticipantIDs:  r.StringsOr(Keys{"participantIds", "participants"}),
		LastMessage:     r.String(Keys{"lastMessage", "dernier_message"}, ""),
		LastMessageTime: r.NullTime(Keys{"lastMessageTime", "date_dernier_message"}),
		UnreadCount:     r.Int(Keys{"unreadCount", "non_lus"}, 0),
	}
}

func Conversations(records []Record) []entities.Conversation {
	out := make([]entities.Conversation, 0, len(records))
	for _, r := range records {
		out = append(out, Conversation(r))
	}
	return out
}

func Message(r Record) entities.Message {
	ts, _ := r.TimeOrNow(Keys{"timestamp", "createdAt", "date_envoi"})
	return entities.Message{
		ID:             r.String(Keys{"id"}, ""),
		ConversationID: r.String(Keys{"conversation", "conversationId"}, ""),
		Content:        r.String(Keys{"content", "contenu"}, ""),
		AuthorID:       r.String(Keys{"authorId", "author", "auteur"}, ""),
		Timestamp:      ts,
	}
}

func Messages(records []Record) []entities.Message {
	out := make([]entities.Message, 0, len(records))
	for _, r := range records {
		out = append(out, Message(r))
	}
	return out
}
