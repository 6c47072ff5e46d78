package dto

import (
	"time"

	"field-match/internal/domain/rating"
	"field-match/internal/views"

	"github.com/google/uuid"
)

type CreateRatingRequest struct {
	JobID           uuid.UUID      `json:"job_id"`
	FromUserID      uuid.UUID      `json:"from_user_id"`
	ToUserID        uuid.UUID      `json:"to_user_id"`
	OverallRating   int            `json:"overall_rating"`
	CategoryRatings map[string]int `json:"category_ratings"`
	IsAnonymous     bool           `json:"is_anonymous"`
}

type RatingResponseRequest struct {
	AuthorID uuid.UUID `json:"author_id"`
	Body     string    `json:"body"`
}

type RatingReplyResponse struct {
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type RatingResponse struct {
	RatingID        uuid.UUID            `json:"rating_id"`
	JobID           uuid.UUID            `json:"job_id"`
	FromUserID      *uuid.UUID           `json:"from_user_id,omitempty"`
	ToUserID        uuid.UUID            `json:"to_user_id"`
	OverallRating   int                  `json:"overall_rating"`
	CategoryRatings map[string]int       `json:"category_ratings"`
	IsAnonymous     bool                 `json:"is_anonymous"`
	CreatedAt       time.Time            `json:"created_at"`
	HelpfulCount    int                  `json:"helpful_count"`
	Response        *RatingReplyResponse `json:"response,omitempty"`
}

// NewRatingResponse hides the author of an anonymous rating.
func NewRatingResponse(r rating.Rating) RatingResponse {
	cats := make(map[string]int, len(r.CategoryRatings))
	for k, v := range r.CategoryRatings {
		cats[string(k)] = v
	}

	out := RatingResponse{
		RatingID:        r.ID,
		JobID:           r.JobID,
		ToUserID:        r.ToUserID,
		OverallRating:   r.OverallRating,
		CategoryRatings: cats,
		IsAnonymous:     r.IsAnonymous,
		CreatedAt:       r.CreatedAt,
		HelpfulCount:    r.HelpfulCount,
	}
	if !r.IsAnonymous {
		from := r.FromUserID
		out.FromUserID = &from
	}
	if r.Response != nil {
		out.Response = &RatingReplyResponse{Body: r.Response.Body, CreatedAt: r.Response.CreatedAt}
	}
	return out
}

type RatingStatsResponse struct {
	UserID    uuid.UUID `json:"user_id"`
	Average   float64   `json:"average"`
	Count     int       `json:"count"`
	Histogram [5]int    `json:"histogram"`
}

func NewRatingStatsResponse(userID uuid.UUID, stats views.RatingStats) RatingStatsResponse {
	return RatingStatsResponse{
		UserID:    userID,
		Average:   stats.Average,
		Count:     stats.Count,
		Histogram: stats.Histogram,
	}
}
