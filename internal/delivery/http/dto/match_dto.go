package dto

import (
	"time"

	"field-match/internal/domain/match"

	"github.com/google/uuid"
)

type CreateMatchRequest struct {
	JobID             uuid.UUID `json:"job_id"`
	EngineerID        uuid.UUID `json:"engineer_id"`
	ClientID          uuid.UUID `json:"client_id"`
	MatchScore        int       `json:"match_score"`
	EstimatedPrice    int64     `json:"estimated_price"`
	ProposedStartDate time.Time `json:"proposed_start_date"`
	ExpiresAt         time.Time `json:"expires_at"`
}

type RespondToMatchRequest struct {
	Action string `json:"action"`
}

type MatchInterestRequest struct {
	Message string `json:"message"`
}

type MatchResponse struct {
	MatchID           uuid.UUID  `json:"match_id"`
	JobID             uuid.UUID  `json:"job_id"`
	EngineerID        uuid.UUID  `json:"engineer_id"`
	ClientID          uuid.UUID  `json:"client_id"`
	MatchScore        int        `json:"match_score"`
	EstimatedPrice    int64      `json:"estimated_price"`
	ProposedStartDate time.Time  `json:"proposed_start_date"`
	Message           string     `json:"message,omitempty"`
	State             string     `json:"state"`
	CreatedAt         time.Time  `json:"created_at"`
	ViewedAt          *time.Time `json:"viewed_at,omitempty"`
	RespondedAt       *time.Time `json:"responded_at,omitempty"`
	ExpiresAt         time.Time  `json:"expires_at"`
}

func NewMatchResponse(m match.Match) MatchResponse {
	return MatchResponse{
		MatchID:           m.ID,
		JobID:             m.JobID,
		EngineerID:        m.EngineerID,
		ClientID:          m.ClientID,
		MatchScore:        m.MatchScore,
		EstimatedPrice:    m.EstimatedPrice,
		ProposedStartDate: m.ProposedStartDate,
		Message:           m.Message,
		State:             string(m.State),
		CreatedAt:         m.CreatedAt,
		ViewedAt:          m.ViewedAt,
		RespondedAt:       m.RespondedAt,
		ExpiresAt:         m.ExpiresAt,
	}
}

type JobMatchesResponse struct {
	JobID   uuid.UUID       `json:"job_id"`
	Matches []MatchResponse `json:"matches"`
}

type CloseJobResponse struct {
	JobID    uuid.UUID `json:"job_id"`
	Archived int       `json:"archived"`
}
