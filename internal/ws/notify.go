package ws

import (
	"encoding/json"
	"time"

	"field-match/internal/domain/notification"

	"github.com/google/uuid"
)

type notificationEvent struct {
	Type            string     `json:"type"`
	NotificationID  uuid.UUID  `json:"notification_id"`
	Kind            string     `json:"kind"`
	Priority        string     `json:"priority"`
	Title           string     `json:"title"`
	Body            string     `json:"body,omitempty"`
	RelatedEntityID *uuid.UUID `json:"related_entity_id,omitempty"`
	CreatedAt       string     `json:"created_at"`
}

// Notifier adapts the hub to the engine's push side effect.
type Notifier struct {
	hub *Hub
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

// NotificationCreated implements engine.Notifier.
func (n *Notifier) NotificationCreated(note notification.Notification) {
	if n == nil || n.hub == nil {
		return
	}

	evt := notificationEvent{
		Type:            "notification_created",
		NotificationID:  note.ID,
		Kind:            string(note.Type),
		Priority:        string(note.Priority),
		Title:           note.Title,
		Body:            note.Body,
		RelatedEntityID: note.RelatedEntityID,
		CreatedAt:       note.CreatedAt.UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}

	n.hub.Push(note.RecipientID, b)
}
