package routes

import (
	"field-match/internal/delivery/http/handler"
	"field-match/internal/engine"
	"field-match/internal/views"
	"field-match/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type Registry struct {
	health        *handler.HealthHandler
	users         *handler.UserHandler
	matches       *handler.MatchHandler
	notifications *handler.NotificationHandler
	ratings       *handler.RatingHandler
	wsHandler     *ws.Handler
}

func NewRegistry(eng *engine.Engine, v *views.Views, wsHandler *ws.Handler) *Registry {
	return &Registry{
		health:        handler.NewHealthHandler(),
		users:         handler.NewUserHandler(eng),
		matches:       handler.NewMatchHandler(eng, v),
		notifications: handler.NewNotificationHandler(eng, v),
		ratings:       handler.NewRatingHandler(eng, v),
		wsHandler:     wsHandler,
	}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.health.RegisterRoutes(app)

	api := app.Group("/api")
	v1 := api.Group("/v1")
	r.users.RegisterRoutes(v1)
	r.matches.RegisterRoutes(v1)
	r.notifications.RegisterRoutes(v1)
	r.ratings.RegisterRoutes(v1)

	if r.wsHandler != nil {
		app.Get("/ws/notifications", r.wsHandler.HandleNotificationsWS)
	}
}
