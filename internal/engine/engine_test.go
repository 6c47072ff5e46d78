package engine

import (
	"context"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"field-match/internal/domain/match"
	"field-match/internal/domain/notification"
	"field-match/internal/domain/user"
	"field-match/internal/store"

	"github.com/google/uuid"
)

type recordingNotifier struct {
	mu     sync.Mutex
	pushed []notification.Notification
}

func (r *recordingNotifier) NotificationCreated(n notification.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pushed = append(r.pushed, n)
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pushed)
}

type recordingInvalidator struct {
	mu            sync.Mutex
	matches       []uuid.UUID
	notifications []uuid.UUID
	ratings       []uuid.UUID
}

func (r *recordingInvalidator) MatchesChanged(jobID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matches = append(r.matches, jobID)
}

func (r *recordingInvalidator) NotificationsChanged(recipientID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notifications = append(r.notifications, recipientID)
}

func (r *recordingInvalidator) RatingsChanged(userID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ratings = append(r.ratings, userID)
}

type stubArchiver struct {
	mu       sync.Mutex
	archived []match.Match
	err      error
}

func (a *stubArchiver) ArchiveMatches(ctx context.Context, matches []match.Match) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.archived = append(a.archived, matches...)
	return nil
}

func (a *stubArchiver) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.archived)
}

type testEnv struct {
	engine      *Engine
	store       *store.Store
	notifier    *recordingNotifier
	invalidator *recordingInvalidator
	archiver    *stubArchiver
	now         time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		store:       store.New(4),
		notifier:    &recordingNotifier{},
		invalidator: &recordingInvalidator{},
		archiver:    &stubArchiver{},
		now:         time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}
	logger := log.New(io.Discard, "", 0)
	env.engine = New(env.store, env.notifier, env.invalidator, env.archiver, logger)
	env.engine.SetClock(func() time.Time { return env.now })
	return env
}

// advance moves the engine clock forward.
func (env *testEnv) advance(d time.Duration) {
	env.now = env.now.Add(d)
}

func (env *testEnv) registerUser(t *testing.T, role user.Role) uuid.UUID {
	t.Helper()
	u, err := env.engine.RegisterUser(context.Background(), RegisterUserInput{
		Role:        role,
		DisplayName: "Test " + string(role),
	})
	if err != nil {
		t.Fatalf("register %s: %v", role, err)
	}
	return u.ID
}

func (env *testEnv) createMatch(t *testing.T, ttl time.Duration) match.Match {
	t.Helper()
	eng := env.registerUser(t, user.RoleEngineer)
	cli := env.registerUser(t, user.RoleClient)
	m, err := env.engine.CreateMatch(context.Background(), CreateMatchInput{
		JobID:             uuid.New(),
		EngineerID:        eng,
		ClientID:          cli,
		MatchScore:        85,
		EstimatedPrice:    120000,
		ProposedStartDate: env.now.Add(72 * time.Hour),
		ExpiresAt:         env.now.Add(ttl),
	})
	if err != nil {
		t.Fatalf("create match: %v", err)
	}
	return m
}

func (env *testEnv) unreadFor(t *testing.T, recipientID uuid.UUID) int {
	t.Helper()
	return env.store.UnreadCountFor(recipientID)
}
