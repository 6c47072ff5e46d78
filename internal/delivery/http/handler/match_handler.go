package handler

import (
	"field-match/internal/delivery/http/dto"
	"field-match/internal/delivery/http/middleware"
	"field-match/internal/engine"
	"field-match/internal/pkg/response"
	"field-match/internal/views"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
)

type MatchHandler struct {
	engine *engine.Engine
	views  *views.Views
}

func NewMatchHandler(eng *engine.Engine, v *views.Views) *MatchHandler {
	return &MatchHandler{engine: eng, views: v}
}

func (h *MatchHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	matches := r.Group("/matches")
	matches.Post("/", h.Create)
	matches.Get("/:match_id", h.Get)
	matches.Post("/:match_id/respond", h.Respond)
	matches.Post("/:match_id/interest", h.Interest)

	jobs := r.Group("/jobs")
	jobs.Get("/:job_id/matches", h.ListForJob)
	jobs.Post("/:job_id/close", h.CloseJob)
}

func (h *MatchHandler) Create(c fiber.Ctx) error {
	var req dto.CreateMatchRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	m, err := h.engine.CreateMatch(c.Context(), engine.CreateMatchInput{
		JobID:             req.JobID,
		EngineerID:        req.EngineerID,
		ClientID:          req.ClientID,
		MatchScore:        req.MatchScore,
		EstimatedPrice:    req.EstimatedPrice,
		ProposedStartDate: req.ProposedStartDate,
		ExpiresAt:         req.ExpiresAt,
	})
	if err != nil {
		return mapEngineError(err)
	}
	return response.Success(c, fiber.StatusCreated, response.MessageCreated, dto.NewMatchResponse(m))
}

func (h *MatchHandler) Get(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("match_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	m, err := h.engine.GetMatch(c.Context(), id)
	if err != nil {
		return mapEngineError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewMatchResponse(m))
}

func (h *MatchHandler) Respond(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("match_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	var req dto.RespondToMatchRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	m, err := h.engine.Respond(c.Context(), id, engine.Action(req.Action))
	if err != nil {
		return mapEngineError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewMatchResponse(m))
}

func (h *MatchHandler) Interest(c fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("match_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	var req dto.MatchInterestRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	m, err := h.engine.MarkInterested(c.Context(), id, req.Message)
	if err != nil {
		return mapEngineError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.NewMatchResponse(m))
}

// ListForJob serves the job's ranking view: non-expired, non-declined
// matches by score descending.
func (h *MatchHandler) ListForJob(c fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("job_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	ranking := h.views.JobRanking(c.Context(), jobID)
	out := dto.JobMatchesResponse{
		JobID:   jobID,
		Matches: make([]dto.MatchResponse, 0, len(ranking)),
	}
	for _, m := range ranking {
		out.Matches = append(out.Matches, dto.NewMatchResponse(m))
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}

func (h *MatchHandler) CloseJob(c fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("job_id"))
	if err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}

	archived, err := h.engine.CloseJob(c.Context(), jobID)
	if err != nil {
		return mapEngineError(err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.CloseJobResponse{JobID: jobID, Archived: archived})
}
