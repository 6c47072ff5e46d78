package engine

import (
	"context"
	"fmt"
	"strings"

	"field-match/internal/domain/notification"
	"field-match/internal/domain/rating"

	"github.com/google/uuid"
)

type CreateRatingInput struct {
	JobID           uuid.UUID
	FromUserID      uuid.UUID
	ToUserID        uuid.UUID
	OverallRating   int
	CategoryRatings map[rating.Category]int
	IsAnonymous     bool
}

// CreateRating validates and stores a feedback record. At most one rating
// exists per (job, from, to) triple; rejected ratings leave no entity behind.
func (e *Engine) CreateRating(ctx context.Context, in CreateRatingInput) (rating.Rating, error) {
	if in.JobID == uuid.Nil {
		return rating.Rating{}, fmt.Errorf("%w: missing job id", ErrValidation)
	}
	if in.FromUserID == in.ToUserID {
		return rating.Rating{}, fmt.Errorf("%w: self rating", ErrValidation)
	}
	if !e.store.UserExists(in.FromUserID) {
		return rating.Rating{}, fmt.Errorf("%w: user %s", ErrNotFound, in.FromUserID)
	}
	if !e.store.UserExists(in.ToUserID) {
		return rating.Rating{}, fmt.Errorf("%w: user %s", ErrNotFound, in.ToUserID)
	}
	if !rating.ValidScore(in.OverallRating) {
		return rating.Rating{}, fmt.Errorf("%w: overall rating %d out of range [1,5]", ErrValidation, in.OverallRating)
	}
	if len(in.CategoryRatings) != len(rating.Categories) {
		return rating.Rating{}, fmt.Errorf("%w: expected %d category ratings, got %d", ErrValidation, len(rating.Categories), len(in.CategoryRatings))
	}
	for _, cat := range rating.Categories {
		v, ok := in.CategoryRatings[cat]
		if !ok {
			return rating.Rating{}, fmt.Errorf("%w: missing category %q", ErrValidation, cat)
		}
		if !rating.ValidScore(v) {
			return rating.Rating{}, fmt.Errorf("%w: category %q rating %d out of range [1,5]", ErrValidation, cat, v)
		}
	}

	r := rating.Rating{
		ID:              uuid.New(),
		JobID:           in.JobID,
		FromUserID:      in.FromUserID,
		ToUserID:        in.ToUserID,
		OverallRating:   in.OverallRating,
		CategoryRatings: rating.CloneCategories(in.CategoryRatings),
		IsAnonymous:     in.IsAnonymous,
		CreatedAt:       e.now(),
	}
	if !e.store.PutRating(r) {
		return rating.Rating{}, fmt.Errorf("%w: job %s from %s to %s", ErrDuplicateRating, in.JobID, in.FromUserID, in.ToUserID)
	}

	e.invalidateRatings(r.ToUserID)

	related := r.ID
	if _, err := e.CreateNotification(ctx, CreateNotificationInput{
		RecipientID:     r.ToUserID,
		Type:            notification.TypeProject,
		Priority:        notification.PriorityLow,
		Title:           "You received a new rating",
		RelatedEntityID: &related,
	}); err != nil {
		e.logger.Printf("Engine | rating notification failed | rating_id=%s error=%v", r.ID, err)
	}
	return r, nil
}

func (e *Engine) GetRating(ctx context.Context, id uuid.UUID) (rating.Rating, error) {
	_ = ctx

	r, ok := e.store.GetRating(id)
	if !ok {
		return rating.Rating{}, fmt.Errorf("%w: rating %s", ErrNotFound, id)
	}
	return r, nil
}

// IncrementHelpful bumps the monotonic helpful counter. Rating statistics
// are unaffected, so no view invalidation fires.
func (e *Engine) IncrementHelpful(ctx context.Context, id uuid.UUID) (rating.Rating, error) {
	_ = ctx

	r, found, err := e.store.UpdateRating(id, func(r *rating.Rating) error {
		r.HelpfulCount++
		return nil
	})
	if !found {
		return rating.Rating{}, fmt.Errorf("%w: rating %s", ErrNotFound, id)
	}
	if err != nil {
		return rating.Rating{}, err
	}
	return r, nil
}

// AttachResponse records the rated party's single reply. A second attempt
// is an invalid transition; the rating is otherwise immutable.
func (e *Engine) AttachResponse(ctx context.Context, id uuid.UUID, authorID uuid.UUID, body string) (rating.Rating, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return rating.Rating{}, fmt.Errorf("%w: empty response body", ErrValidation)
	}

	now := e.now()
	r, found, err := e.store.UpdateRating(id, func(r *rating.Rating) error {
		if authorID != r.ToUserID {
			return fmt.Errorf("%w: only the rated party may respond", ErrValidation)
		}
		if r.Response != nil {
			return fmt.Errorf("%w: response already attached", ErrInvalidTransition)
		}
		r.Response = &rating.Response{Body: body, CreatedAt: now}
		return nil
	})
	if !found {
		return rating.Rating{}, fmt.Errorf("%w: rating %s", ErrNotFound, id)
	}
	if err != nil {
		return rating.Rating{}, err
	}

	related := r.ID
	if _, nerr := e.CreateNotification(ctx, CreateNotificationInput{
		RecipientID:     r.FromUserID,
		Type:            notification.TypeMessage,
		Priority:        notification.PriorityLow,
		Title:           "Your rating received a response",
		RelatedEntityID: &related,
	}); nerr != nil {
		e.logger.Printf("Engine | response notification failed | rating_id=%s error=%v", r.ID, nerr)
	}
	return r, nil
}
