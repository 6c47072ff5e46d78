package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"field-match/internal/domain/notification"

	"github.com/google/uuid"
)

type CreateNotificationInput struct {
	RecipientID     uuid.UUID
	Type            notification.Type
	Priority        notification.Priority
	Title           string
	Body            string
	RelatedEntityID *uuid.UUID
}

// CreateNotification creates an unread notification for a registered
// recipient. Unknown recipients are rejected before anything is stored.
func (e *Engine) CreateNotification(ctx context.Context, in CreateNotificationInput) (notification.Notification, error) {
	_ = ctx

	if !e.store.UserExists(in.RecipientID) {
		return notification.Notification{}, fmt.Errorf("%w: user %s", ErrInvalidRecipient, in.RecipientID)
	}
	if !in.Type.Valid() {
		return notification.Notification{}, fmt.Errorf("%w: unknown notification type %q", ErrValidation, in.Type)
	}
	if in.Priority == "" {
		in.Priority = notification.PriorityMedium
	}
	if !in.Priority.Valid() {
		return notification.Notification{}, fmt.Errorf("%w: unknown priority %q", ErrValidation, in.Priority)
	}
	if strings.TrimSpace(in.Title) == "" {
		return notification.Notification{}, fmt.Errorf("%w: empty title", ErrValidation)
	}

	n := notification.Notification{
		ID:              uuid.New(),
		RecipientID:     in.RecipientID,
		Type:            in.Type,
		Priority:        in.Priority,
		Title:           in.Title,
		Body:            in.Body,
		CreatedAt:       e.now(),
		RelatedEntityID: in.RelatedEntityID,
	}
	stored, ok := e.store.PutNotification(n)
	if !ok {
		return notification.Notification{}, fmt.Errorf("%w: notification id collision", ErrValidation)
	}

	e.invalidateNotifications(stored.RecipientID)
	if e.notifier != nil {
		e.notifier.NotificationCreated(stored)
	}
	return stored, nil
}

// MarkNotificationRead is idempotent: marking an already-read notification
// returns it unchanged.
func (e *Engine) MarkNotificationRead(ctx context.Context, id uuid.UUID) (notification.Notification, error) {
	return e.setRead(ctx, id, true)
}

// MarkNotificationUnread reverts isRead. The model allows it; hiding the
// action is presentation policy.
func (e *Engine) MarkNotificationUnread(ctx context.Context, id uuid.UUID) (notification.Notification, error) {
	return e.setRead(ctx, id, false)
}

func (e *Engine) setRead(ctx context.Context, id uuid.UUID, read bool) (notification.Notification, error) {
	_ = ctx

	changed := false
	n, found, err := e.store.UpdateNotification(id, func(n *notification.Notification) error {
		if n.IsRead == read {
			return nil
		}
		n.IsRead = read
		changed = true
		return nil
	})
	if !found {
		return notification.Notification{}, fmt.Errorf("%w: notification %s", ErrNotFound, id)
	}
	if err != nil {
		return notification.Notification{}, err
	}

	if changed {
		e.invalidateNotifications(n.RecipientID)
	}
	return n, nil
}

// MarkAllNotificationsRead flips every unread notification of the recipient
// atomically with respect to concurrent creates for the same recipient.
func (e *Engine) MarkAllNotificationsRead(ctx context.Context, recipientID uuid.UUID) (int, error) {
	_ = ctx

	if !e.store.UserExists(recipientID) {
		return 0, fmt.Errorf("%w: user %s", ErrInvalidRecipient, recipientID)
	}

	changed := e.store.MarkAllNotificationsRead(recipientID)
	if changed > 0 {
		e.invalidateNotifications(recipientID)
	}
	return changed, nil
}

// DeleteNotification removes the notification permanently.
func (e *Engine) DeleteNotification(ctx context.Context, id uuid.UUID) error {
	_ = ctx

	n, ok := e.store.DeleteNotification(id)
	if !ok {
		return fmt.Errorf("%w: notification %s", ErrNotFound, id)
	}
	e.invalidateNotifications(n.RecipientID)
	return nil
}

// ListFilter narrows a notification listing.
type ListFilter struct {
	Unread bool              // only unread
	Type   notification.Type // only this type when non-empty
	// DisplaySort applies the presentation order (unread first, then
	// priority, then recency) on top of the canonical order.
	DisplaySort bool
}

// ListNotifications returns the recipient's notifications, canonically
// ordered by (createdAt, seq) ascending unless DisplaySort is requested.
func (e *Engine) ListNotifications(ctx context.Context, recipientID uuid.UUID, filter ListFilter) ([]notification.Notification, error) {
	_ = ctx

	if !e.store.UserExists(recipientID) {
		return nil, fmt.Errorf("%w: user %s", ErrInvalidRecipient, recipientID)
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown notification type %q", ErrValidation, filter.Type)
	}

	all := e.store.NotificationsFor(recipientID)
	out := make([]notification.Notification, 0, len(all))
	for _, n := range all {
		if filter.Unread && n.IsRead {
			continue
		}
		if filter.Type != "" && n.Type != filter.Type {
			continue
		}
		out = append(out, n)
	}

	if filter.DisplaySort {
		sort.SliceStable(out, func(i, j int) bool {
			a, b := out[i], out[j]
			if a.IsRead != b.IsRead {
				return !a.IsRead
			}
			if a.Priority.Rank() != b.Priority.Rank() {
				return a.Priority.Rank() > b.Priority.Rank()
			}
			return b.Before(a)
		})
	}
	return out, nil
}
