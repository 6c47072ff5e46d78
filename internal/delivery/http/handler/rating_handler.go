package handler

import (
	"field-match/internal/delivery/http/dto"
	"field-match/internal/delivery/http/middleware"
	"field-match/internal/domain/rating"
	"field-match/internal/engine"
	"field-match/internal/pkg/response"
	"field-match/internal/views"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type RatingHandler struct {
	engine *engine.Engine
	views  *views.Views
}

func NewRatingHandler(eng *engine.Engine, v *views.Views) *RatingHandler {
	return &RatingHandler{engine: eng, views: v}
}

func (h *RatingHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	ratings := r.Group("/ratings")
	ratings.Post("/", h.Create)
	ratings.Get("/:rating_id", h.Get)
	ratings.Post("/:rating_id/helpful", h.IncrementHelpful)
	ratings.Post("/:rating_id/response", h.AttachResponse)

	users := r.Group("/users")
	users.Get("/:user_id/rating-stats", h.Stats)
}

func (h *RatingHandler) Create(c fiber.Ctx) error {
	var req dto.CreateRatingRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	cats := make(map[rating.Category]int, len(req.CategoryRatings))
	for k, v := range req.CategoryRatings {
		cats[rating.Category(k)] = v
	}

	r, err := h.engine.CreateRating(c.Context(), engine.CreateRatingInput{
		JobID:           req.JobID,
		FromUserID:      req.FromUserID,
		ToUserID:        req.ToUserID,
		OverallRating:   req.OverallRating,
		CategoryRatings: cats,
		IsAnonymous:     req.IsAnonymous,
	})
	if err != nil {
		return mapEngineError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, dto.NewRatingResponse(r))
}

func (h *RatingHandler) Get(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("rating_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	r, err := h.engine.GetRating(c.Context(), id)
	if err != nil {
		return mapEngineError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewRatingResponse(r))
}

func (h *RatingHandler) IncrementHelpful(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("rating_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	r, err := h.engine.IncrementHelpful(c.Context(), id)
	if err != nil {
		return mapEngineError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewRatingResponse(r))
}

func (h *RatingHandler) AttachResponse(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("rating_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	var req dto.RatingResponseRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	r, err := h.engine.AttachResponse(c.Context(), id, req.AuthorID, req.Body)
	if err != nil {
		return mapEngineError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewRatingResponse(r))
}

func (h *RatingHandler) Stats(c fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	stats := h.views.RatingStatsFor(c.Context(), userID)
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewRatingStatsResponse(userID, stats))
}
