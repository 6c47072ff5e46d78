package handler

import (
	"field-match/internal/delivery/http/dto"
	"field-match/internal/delivery/http/middleware"
	"field-match/internal/domain/notification"
	"field-match/internal/engine"
	"field-match/internal/pkg/response"
	"field-match/internal/views"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type NotificationHandler struct {
	engine *engine.Engine
	views  *views.Views
}

func NewNotificationHandler(eng *engine.Engine, v *views.Views) *NotificationHandler {
	return &NotificationHandler{engine: eng, views: v}
}

func (h *NotificationHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	grp := r.Group("/notifications")
	grp.Post("/", h.Create)
	grp.Get("/", h.List)
	grp.Get("/unread-count", h.UnreadCount)
	grp.Post("/read-all", h.MarkAllRead)
	grp.Patch("/:notification_id/read", h.MarkRead)
	grp.Patch("/:notification_id/unread", h.MarkUnread)
	grp.Delete("/:notification_id", h.Delete)
}

func (h *NotificationHandler) Create(c fiber.Ctx) error {
	var req dto.CreateNotificationRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	n, err := h.engine.CreateNotification(c.Context(), engine.CreateNotificationInput{
		RecipientID:     req.RecipientID,
		Type:            notification.Type(req.Type),
		Priority:        notification.Priority(req.Priority),
		Title:           req.Title,
		Body:            req.Body,
		RelatedEntityID: req.RelatedEntityID,
	})
	if err != nil {
		return mapEngineError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, dto.NewNotificationResponse(n))
}

// List returns notifications in canonical (createdAt, seq) order. Query
// params: recipient_id (required), filter=all|unread|<type>, sort=display.
func (h *NotificationHandler) List(c fiber.Ctx) error {
	recipientID, err := uuid.Parse(c.Query("recipient_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	filter := engine.ListFilter{DisplaySort: c.Query("sort") == "display"}
	switch f := c.Query("filter", "all"); f {
	case "all":
	case "unread":
		filter.Unread = true
	default:
		filter.Type = notification.Type(f)
	}

	items, err := h.engine.ListNotifications(c.Context(), recipientID, filter)
	if err != nil {
		return mapEngineError(err)
	}

	out := dto.NotificationListResponse{
		RecipientID:   recipientID,
		Notifications: make([]dto.NotificationResponse, 0, len(items)),
	}
	for _, n := range items {
		out.Notifications = append(out.Notifications, dto.NewNotificationResponse(n))
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *NotificationHandler) UnreadCount(c fiber.Ctx) error {
	recipientID, err := uuid.Parse(c.Query("recipient_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	count := h.views.UnreadCount(c.Context(), recipientID)
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.UnreadCountResponse{
		RecipientID: recipientID,
		UnreadCount: count,
	})
}

func (h *NotificationHandler) MarkAllRead(c fiber.Ctx) error {
	var req dto.MarkAllReadRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	changed, err := h.engine.MarkAllNotificationsRead(c.Context(), req.RecipientID)
	if err != nil {
		return mapEngineError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.MarkAllReadResponse{
		RecipientID: req.RecipientID,
		Changed:     changed,
	})
}

func (h *NotificationHandler) MarkRead(c fiber.Ctx) error {
	return h.setRead(c, true)
}

func (h *NotificationHandler) MarkUnread(c fiber.Ctx) error {
	return h.setRead(c, false)
}

func (h *NotificationHandler) setRead(c fiber.Ctx, read bool) error {
	id, err := uuid.Parse(c.Params("notification_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	var n notification.Notification
	if read {
		n, err = h.engine.MarkNotificationRead(c.Context(), id)
	} else {
		n, err = h.engine.MarkNotificationUnread(c.Context(), id)
	}
	if err != nil {
		return mapEngineError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewNotificationResponse(n))
}

func (h *NotificationHandler) Delete(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("notification_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	if err := h.engine.DeleteNotification(c.Context(), id); err != nil {
		return mapEngineError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, nil)
}
