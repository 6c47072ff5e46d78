package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"field-match/internal/domain/match"
	"field-match/internal/domain/notification"
	"field-match/internal/domain/user"

	"github.com/google/uuid"
)

// Action is a client response to a match.
type Action string

const (
	ActionAccept  Action = "accept"
	ActionDecline Action = "decline"
)

func (a Action) target() (match.State, bool) {
	switch a {
	case ActionAccept:
		return match.StateAccepted, true
	case ActionDecline:
		return match.StateDeclined, true
	}
	return "", false
}

type CreateMatchInput struct {
	JobID             uuid.UUID
	EngineerID        uuid.UUID
	ClientID          uuid.UUID
	MatchScore        int
	EstimatedPrice    int64
	ProposedStartDate time.Time
	ExpiresAt         time.Time
}

// CreateMatch broadcasts a job posting to an eligible engineer. The match
// starts in viewing with ViewedAt set; creation emits no notification.
func (e *Engine) CreateMatch(ctx context.Context, in CreateMatchInput) (match.Match, error) {
	_ = ctx

	if in.JobID == uuid.Nil {
		return match.Match{}, fmt.Errorf("%w: missing job id", ErrValidation)
	}
	if in.MatchScore < 0 || in.MatchScore > 100 {
		return match.Match{}, fmt.Errorf("%w: match score %d out of range [0,100]", ErrValidation, in.MatchScore)
	}
	if err := e.requireParty(in.EngineerID, user.RoleEngineer); err != nil {
		return match.Match{}, err
	}
	if err := e.requireParty(in.ClientID, user.RoleClient); err != nil {
		return match.Match{}, err
	}

	now := e.now()
	if !in.ExpiresAt.After(now) {
		return match.Match{}, fmt.Errorf("%w: expiry %s not in the future", ErrValidation, in.ExpiresAt)
	}

	viewed := now
	m := match.Match{
		ID:                uuid.New(),
		JobID:             in.JobID,
		EngineerID:        in.EngineerID,
		ClientID:          in.ClientID,
		MatchScore:        in.MatchScore,
		EstimatedPrice:    in.EstimatedPrice,
		ProposedStartDate: in.ProposedStartDate,
		State:             match.StateViewing,
		CreatedAt:         now,
		ViewedAt:          &viewed,
		ExpiresAt:         in.ExpiresAt,
	}
	if !e.store.PutMatch(m) {
		return match.Match{}, fmt.Errorf("%w: match id collision", ErrValidation)
	}

	e.invalidateMatches(m.JobID)
	return m, nil
}

func (e *Engine) requireParty(id uuid.UUID, role user.Role) error {
	u, ok := e.store.GetUser(id)
	if !ok {
		return fmt.Errorf("%w: user %s", ErrNotFound, id)
	}
	if u.Role != role {
		return fmt.Errorf("%w: user %s is not a %s", ErrValidation, id, role)
	}
	return nil
}

func (e *Engine) GetMatch(ctx context.Context, id uuid.UUID) (match.Match, error) {
	_ = ctx

	m, ok := e.store.GetMatch(id)
	if !ok {
		return match.Match{}, fmt.Errorf("%w: match %s", ErrNotFound, id)
	}
	return m, nil
}

// MarkInterested records engineer interest: viewing -> interested, with an
// optional message. Re-submitting interest on an already-interested match is
// a no-op (duplicate push deliveries are expected from the event source).
func (e *Engine) MarkInterested(ctx context.Context, matchID uuid.UUID, message string) (match.Match, error) {
	_ = ctx

	now := e.now()
	m, found, err := e.store.UpdateMatch(matchID, func(m *match.Match) error {
		if m.State == match.StateInterested {
			return errAlreadyApplied
		}
		if !m.State.CanTransition(match.StateInterested) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.State, match.StateInterested)
		}
		m.State = match.StateInterested
		m.RespondedAt = &now
		if message != "" {
			m.Message = message
		}
		return nil
	})
	if !found {
		return match.Match{}, fmt.Errorf("%w: match %s", ErrNotFound, matchID)
	}
	if err != nil {
		if errors.Is(err, errAlreadyApplied) {
			return m, nil
		}
		return match.Match{}, err
	}

	e.emitMatchNotification(ctx, m, match.StateInterested)
	e.invalidateMatches(m.JobID)
	return m, nil
}

// Respond applies a client accept/decline. Legal from viewing or interested.
// Re-requesting the current terminal state is a no-op returning the entity
// with no further side effects; any other request against a terminal match
// is an invalid transition.
func (e *Engine) Respond(ctx context.Context, matchID uuid.UUID, action Action) (match.Match, error) {
	_ = ctx

	target, ok := action.target()
	if !ok {
		return match.Match{}, fmt.Errorf("%w: unknown action %q", ErrValidation, action)
	}

	now := e.now()
	m, found, err := e.store.UpdateMatch(matchID, func(m *match.Match) error {
		if m.State == target {
			return errAlreadyApplied
		}
		if !m.State.CanTransition(target) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.State, target)
		}
		m.State = target
		if m.RespondedAt == nil || target == match.StateDeclined {
			m.RespondedAt = &now
		}
		return nil
	})
	if !found {
		return match.Match{}, fmt.Errorf("%w: match %s", ErrNotFound, matchID)
	}
	if err != nil {
		if errors.Is(err, errAlreadyApplied) {
			return m, nil
		}
		return match.Match{}, err
	}

	e.emitMatchNotification(ctx, m, target)
	e.invalidateMatches(m.JobID)
	return m, nil
}

// ExpireMatch is the Expiry Scheduler's entry point. It applies expired only
// when the match is non-terminal and past its expiry; terminal or not-yet-due
// matches are skipped without error, which makes the sweep re-entrant.
func (e *Engine) ExpireMatch(ctx context.Context, matchID uuid.UUID, now time.Time) (match.Match, bool, error) {
	m, found, err := e.store.UpdateMatch(matchID, func(m *match.Match) error {
		if !m.DueForExpiry(now) {
			return errAlreadyApplied
		}
		m.State = match.StateExpired
		return nil
	})
	if !found {
		return match.Match{}, false, fmt.Errorf("%w: match %s", ErrNotFound, matchID)
	}
	if err != nil {
		if errors.Is(err, errAlreadyApplied) {
			return m, false, nil
		}
		return match.Match{}, false, err
	}

	e.emitMatchNotification(ctx, m, match.StateExpired)
	e.invalidateMatches(m.JobID)
	return m, true, nil
}

// CloseJob archives and removes every live match of a job. With no archiver
// configured the matches are dropped from the live store only.
func (e *Engine) CloseJob(ctx context.Context, jobID uuid.UUID) (int, error) {
	matches := e.store.MatchesForJob(jobID)
	if len(matches) == 0 {
		return 0, nil
	}

	if e.archiver != nil {
		if err := e.archiver.ArchiveMatches(ctx, matches); err != nil {
			return 0, fmt.Errorf("archive job %s: %w", jobID, err)
		}
	}
	removed := 0
	for _, m := range matches {
		if _, ok := e.store.RemoveMatch(m.ID); ok {
			removed++
		}
	}

	e.invalidateMatches(jobID)
	e.logger.Printf("Engine | job closed | job_id=%s archived=%d", jobID, removed)
	return removed, nil
}

// ArchiveRetired moves terminal matches past the retention window into the
// archive. Failures leave the matches in the store for the next sweep.
func (e *Engine) ArchiveRetired(ctx context.Context, now time.Time, retention time.Duration) (int, error) {
	ids := e.store.RetiredMatches(now, retention)
	if len(ids) == 0 {
		return 0, nil
	}

	archived := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return archived, err
		}
		m, ok := e.store.GetMatch(id)
		if !ok {
			continue
		}
		if e.archiver != nil {
			if err := e.archiver.ArchiveMatches(ctx, []match.Match{m}); err != nil {
				e.logger.Printf("Engine | archive failed | match_id=%s error=%v", id, err)
				continue
			}
		}
		if _, ok := e.store.RemoveMatch(id); ok {
			archived++
			e.invalidateMatches(m.JobID)
		}
	}
	return archived, nil
}

// emitMatchNotification delivers the transition's notification side effect:
// one to the counterpart of the acting party, or one to each party on expiry.
func (e *Engine) emitMatchNotification(ctx context.Context, m match.Match, applied match.State) {
	related := m.ID

	send := func(recipientID uuid.UUID, typ notification.Type, prio notification.Priority, title string) {
		_, err := e.CreateNotification(ctx, CreateNotificationInput{
			RecipientID:     recipientID,
			Type:            typ,
			Priority:        prio,
			Title:           title,
			RelatedEntityID: &related,
		})
		if err != nil {
			e.logger.Printf("Engine | notification emit failed | match_id=%s recipient=%s error=%v", m.ID, recipientID, err)
		}
	}

	switch applied {
	case match.StateInterested:
		send(m.ClientID, notification.TypeJob, notification.PriorityMedium, "An engineer is interested in your job")
	case match.StateAccepted:
		send(m.EngineerID, notification.TypeJob, notification.PriorityHigh, "Your match was accepted")
	case match.StateDeclined:
		send(m.EngineerID, notification.TypeJob, notification.PriorityMedium, "Your match was declined")
	case match.StateExpired:
		send(m.EngineerID, notification.TypeJob, notification.PriorityLow, "A match expired")
		send(m.ClientID, notification.TypeJob, notification.PriorityLow, "A match expired")
	}
}
