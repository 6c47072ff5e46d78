package dto

import (
	"time"

	"field-match/internal/domain/notification"

	"github.com/google/uuid"
)

type CreateNotificationRequest struct {
	RecipientID     uuid.UUID  `json:"recipient_id"`
	Type            string     `json:"type"`
	Priority        string     `json:"priority"`
	Title           string     `json:"title"`
	Body            string     `json:"body"`
	RelatedEntityID *uuid.UUID `json:"related_entity_id"`
}

type MarkAllReadRequest struct {
	RecipientID uuid.UUID `json:"recipient_id"`
}

type NotificationResponse struct {
	NotificationID  uuid.UUID  `json:"notification_id"`
	RecipientID     uuid.UUID  `json:"recipient_id"`
	Type            string     `json:"type"`
	Priority        string     `json:"priority"`
	Title           string     `json:"title"`
	Body            string     `json:"body,omitempty"`
	IsRead          bool       `json:"is_read"`
	CreatedAt       time.Time  `json:"created_at"`
	RelatedEntityID *uuid.UUID `json:"related_entity_id,omitempty"`
}

func NewNotificationResponse(n notification.Notification) NotificationResponse {
	return NotificationResponse{
		NotificationID:  n.ID,
		RecipientID:     n.RecipientID,
		Type:            string(n.Type),
		Priority:        string(n.Priority),
		Title:           n.Title,
		Body:            n.Body,
		IsRead:          n.IsRead,
		CreatedAt:       n.CreatedAt,
		RelatedEntityID: n.RelatedEntityID,
	}
}

type NotificationListResponse struct {
	RecipientID   uuid.UUID              `json:"recipient_id"`
	Notifications []NotificationResponse `json:"notifications"`
}

type MarkAllReadResponse struct {
	RecipientID uuid.UUID `json:"recipient_id"`
	Changed     int       `json:"changed"`
}

type UnreadCountResponse struct {
	RecipientID uuid.UUID `json:"recipient_id"`
	UnreadCount int       `json:"unread_count"`
}
