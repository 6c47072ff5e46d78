package handler

import (
	"field-match/internal/delivery/http/dto"
	"field-match/internal/delivery/http/middleware"
	"field-match/internal/domain/user"
	"field-match/internal/engine"
	"field-match/internal/pkg/response"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type UserHandler struct {
	engine *engine.Engine
}

func NewUserHandler(eng *engine.Engine) *UserHandler {
	return &UserHandler{engine: eng}
}

func (h *UserHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}
	grp := r.Group("/users")
	grp.Post("/", h.Register)
	grp.Get("/:user_id", h.Get)
}

func (h *UserHandler) Register(c fiber.Ctx) error {
	var req dto.RegisterUserRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	u, err := h.engine.RegisterUser(c.Context(), engine.RegisterUserInput{
		Role:        user.Role(req.Role),
		DisplayName: req.DisplayName,
	})
	if err != nil {
		return mapEngineError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, dto.NewUserResponse(u))
}

func (h *UserHandler) Get(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	u, err := h.engine.GetUser(c.Context(), id)
	if err != nil {
		return mapEngineError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewUserResponse(u))
}
