package simulation

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"field-match/internal/dispatch"
	"field-match/internal/domain/user"
	"field-match/internal/engine"

	"github.com/google/uuid"
)

// Simulator generates randomized marketplace activity in development: new
// matches, engineer interest, and client responses, delivered through the
// dispatcher exactly as a production push channel would deliver them.
type Simulator struct {
	engine     *engine.Engine
	dispatcher *dispatch.Dispatcher
	logger     *log.Logger
	interval   time.Duration

	mu        sync.Mutex
	rng       *rand.Rand
	engineers []uuid.UUID
	clients   []uuid.UUID
	jobs      []uuid.UUID
	matches   []uuid.UUID
}

func New(eng *engine.Engine, d *dispatch.Dispatcher, logger *log.Logger, interval time.Duration) *Simulator {
	if logger == nil {
		logger = log.Default()
	}
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &Simulator{
		engine:     eng,
		dispatcher: d,
		logger:     logger,
		interval:   interval,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run seeds a small population and then generates one event per tick until
// ctx is cancelled.
func (s *Simulator) Run(ctx context.Context) {
	if err := s.seed(ctx); err != nil {
		s.logger.Printf("Simulation | seed failed | error=%v", err)
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.step(ctx)
		}
	}
}

func (s *Simulator) seed(ctx context.Context) error {
	for i := 0; i < 4; i++ {
		u, err := s.engine.RegisterUser(ctx, engine.RegisterUserInput{
			Role:        user.RoleEngineer,
			DisplayName: fmt.Sprintf("Sim Engineer %d", i+1),
		})
		if err != nil {
			return err
		}
		s.engineers = append(s.engineers, u.ID)
	}
	for i := 0; i < 2; i++ {
		u, err := s.engine.RegisterUser(ctx, engine.RegisterUserInput{
			Role:        user.RoleClient,
			DisplayName: fmt.Sprintf("Sim Client %d", i+1),
		})
		if err != nil {
			return err
		}
		s.clients = append(s.clients, u.ID)
	}
	for i := 0; i < 3; i++ {
		s.jobs = append(s.jobs, uuid.New())
	}

	s.logger.Printf("Simulation | seeded | engineers=%d clients=%d jobs=%d",
		len(s.engineers), len(s.clients), len(s.jobs))
	return nil
}

func (s *Simulator) step(ctx context.Context) {
	s.mu.Lock()
	roll := s.rng.Intn(100)
	s.mu.Unlock()

	switch {
	case roll < 40 || s.liveMatchCount() == 0:
		s.createMatch(ctx)
	case roll < 70:
		s.dispatcher.Submit(dispatch.MatchInterestEvent{
			MatchID: s.pickMatch(),
			Message: "Available to start right away.",
		})
	default:
		action := engine.ActionAccept
		if s.roll(2) == 0 {
			action = engine.ActionDecline
		}
		s.dispatcher.Submit(dispatch.MatchResponseEvent{MatchID: s.pickMatch(), Action: action})
	}
}

func (s *Simulator) createMatch(ctx context.Context) {
	s.mu.Lock()
	job := s.jobs[s.rng.Intn(len(s.jobs))]
	eng := s.engineers[s.rng.Intn(len(s.engineers))]
	cli := s.clients[s.rng.Intn(len(s.clients))]
	score := 40 + s.rng.Intn(60)
	price := int64(5000 + s.rng.Intn(95000))
	ttl := time.Duration(30+s.rng.Intn(90)) * time.Second
	s.mu.Unlock()

	m, err := s.engine.CreateMatch(ctx, engine.CreateMatchInput{
		JobID:             job,
		EngineerID:        eng,
		ClientID:          cli,
		MatchScore:        score,
		EstimatedPrice:    price,
		ProposedStartDate: time.Now().UTC().Add(48 * time.Hour),
		ExpiresAt:         time.Now().UTC().Add(ttl),
	})
	if err != nil {
		s.logger.Printf("Simulation | create match failed | error=%v", err)
		return
	}

	s.mu.Lock()
	s.matches = append(s.matches, m.ID)
	s.mu.Unlock()
}

func (s *Simulator) liveMatchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.matches)
}

func (s *Simulator) pickMatch() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.matches[s.rng.Intn(len(s.matches))]
}

func (s *Simulator) roll(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}
