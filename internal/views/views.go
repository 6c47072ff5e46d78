package views

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"field-match/internal/domain/match"
	"field-match/internal/store"

	"github.com/google/uuid"
)

// RatingStats is the derived feedback summary for one user.
type RatingStats struct {
	Average   float64 `json:"average"`
	Count     int     `json:"count"`
	Histogram [5]int  `json:"histogram"` // bucket i counts overall rating i+1
}

type statsCache interface {
	GetJSON(ctx context.Context, key string, out any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

const statsCacheTTL = 5 * time.Minute

type warmKind int

const (
	warmUnread warmKind = iota
	warmStats
	warmRanking
)

type warmTask struct {
	kind warmKind
	id   uuid.UUID
}

// Views holds derived read-only projections over the store: unread counts,
// rating statistics, and per-job match rankings. Projections are memoized;
// a write invalidates its key inline (so readers fall through to the store
// and never see a projection older than the write) and a background worker
// re-warms the value. Generation counters stop a slow warm from overwriting
// a newer invalidation.
type Views struct {
	store  *store.Store
	cache  statsCache
	logger *log.Logger

	mu          sync.RWMutex
	unread      map[uuid.UUID]int
	unreadGen   map[uuid.UUID]uint64
	stats       map[uuid.UUID]RatingStats
	statsGen    map[uuid.UUID]uint64
	rankings    map[uuid.UUID][]match.Match
	rankingsGen map[uuid.UUID]uint64

	warm   chan warmTask
	closeC chan struct{}
	once   sync.Once
}

func New(st *store.Store, cache statsCache, logger *log.Logger) *Views {
	if logger == nil {
		logger = log.Default()
	}
	return &Views{
		store:       st,
		cache:       cache,
		logger:      logger,
		unread:      make(map[uuid.UUID]int),
		unreadGen:   make(map[uuid.UUID]uint64),
		stats:       make(map[uuid.UUID]RatingStats),
		statsGen:    make(map[uuid.UUID]uint64),
		rankings:    make(map[uuid.UUID][]match.Match),
		rankingsGen: make(map[uuid.UUID]uint64),
		warm:        make(chan warmTask, 1024),
		closeC:      make(chan struct{}),
	}
}

// Run consumes warm tasks until ctx is cancelled or Close is called.
func (v *Views) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-v.closeC:
			return
		case t := <-v.warm:
			v.handleWarm(ctx, t)
		}
	}
}

func (v *Views) Close() {
	v.once.Do(func() { close(v.closeC) })
}

func (v *Views) enqueueWarm(t warmTask) {
	select {
	case v.warm <- t:
	default:
		// Warming is best-effort; the read path recomputes on miss anyway.
		v.logger.Printf("Views | warm dropped | kind=%d id=%s", t.kind, t.id)
	}
}

func (v *Views) handleWarm(ctx context.Context, t warmTask) {
	switch t.kind {
	case warmUnread:
		gen := v.generation(v.unreadGen, t.id)
		count := v.store.UnreadCountFor(t.id)
		v.memoizeUnread(t.id, gen, count)
	case warmStats:
		gen := v.generation(v.statsGen, t.id)
		stats := computeStats(v.store.RatingsForUser(t.id))
		if v.memoizeStats(t.id, gen, stats) && v.cache != nil {
			if err := v.cache.SetJSON(ctx, statsKey(t.id), stats, statsCacheTTL); err != nil {
				v.logger.Printf("Views | stats cache write failed | user_id=%s error=%v", t.id, err)
			}
		}
	case warmRanking:
		gen := v.generation(v.rankingsGen, t.id)
		ranking := computeRanking(v.store.MatchesForJob(t.id))
		v.memoizeRanking(t.id, gen, ranking)
	}
}

func (v *Views) generation(gens map[uuid.UUID]uint64, id uuid.UUID) uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return gens[id]
}

// MatchesChanged implements engine.Invalidator.
func (v *Views) MatchesChanged(jobID uuid.UUID) {
	v.mu.Lock()
	v.rankingsGen[jobID]++
	delete(v.rankings, jobID)
	v.mu.Unlock()
	v.enqueueWarm(warmTask{kind: warmRanking, id: jobID})
}

// NotificationsChanged implements engine.Invalidator.
func (v *Views) NotificationsChanged(recipientID uuid.UUID) {
	v.mu.Lock()
	v.unreadGen[recipientID]++
	delete(v.unread, recipientID)
	v.mu.Unlock()
	v.enqueueWarm(warmTask{kind: warmUnread, id: recipientID})
}

// RatingsChanged implements engine.Invalidator.
func (v *Views) RatingsChanged(userID uuid.UUID) {
	v.mu.Lock()
	v.statsGen[userID]++
	delete(v.stats, userID)
	v.mu.Unlock()
	v.enqueueWarm(warmTask{kind: warmStats, id: userID})
}

// UnreadCount returns the recipient's unread notification count. A memo miss
// recomputes from the store, so the result always reflects every applied
// write at call time.
func (v *Views) UnreadCount(ctx context.Context, recipientID uuid.UUID) int {
	_ = ctx

	v.mu.RLock()
	if count, ok := v.unread[recipientID]; ok {
		v.mu.RUnlock()
		return count
	}
	gen := v.unreadGen[recipientID]
	v.mu.RUnlock()

	count := v.store.UnreadCountFor(recipientID)
	v.memoizeUnread(recipientID, gen, count)
	return count
}

func (v *Views) memoizeUnread(id uuid.UUID, gen uint64, count int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.unreadGen[id] != gen {
		return
	}
	v.unread[id] = count
}

// RatingStatsFor returns the user's average overall rating and histogram,
// zero-valued when the user has no ratings.
func (v *Views) RatingStatsFor(ctx context.Context, userID uuid.UUID) RatingStats {
	v.mu.RLock()
	if stats, ok := v.stats[userID]; ok {
		v.mu.RUnlock()
		return stats
	}
	gen := v.statsGen[userID]
	v.mu.RUnlock()

	if v.cache != nil {
		var cached RatingStats
		if ok, err := v.cache.GetJSON(ctx, statsKey(userID), &cached); err == nil && ok {
			v.memoizeStats(userID, gen, cached)
			return cached
		}
	}

	stats := computeStats(v.store.RatingsForUser(userID))
	if v.memoizeStats(userID, gen, stats) && v.cache != nil {
		if err := v.cache.SetJSON(ctx, statsKey(userID), stats, statsCacheTTL); err != nil {
			v.logger.Printf("Views | stats cache write failed | user_id=%s error=%v", userID, err)
		}
	}
	return stats
}

func (v *Views) memoizeStats(id uuid.UUID, gen uint64, stats RatingStats) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.statsGen[id] != gen {
		return false
	}
	v.stats[id] = stats
	return true
}

// JobRanking returns the job's live, non-expired, non-declined matches by
// score descending; ties break on creation time ascending, then match ID, so
// recomputation over unchanged inputs is stable.
func (v *Views) JobRanking(ctx context.Context, jobID uuid.UUID) []match.Match {
	_ = ctx

	v.mu.RLock()
	if ranking, ok := v.rankings[jobID]; ok {
		v.mu.RUnlock()
		return cloneRanking(ranking)
	}
	gen := v.rankingsGen[jobID]
	v.mu.RUnlock()

	ranking := computeRanking(v.store.MatchesForJob(jobID))
	v.memoizeRanking(jobID, gen, ranking)
	return cloneRanking(ranking)
}

func (v *Views) memoizeRanking(id uuid.UUID, gen uint64, ranking []match.Match) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.rankingsGen[id] != gen {
		return
	}
	v.rankings[id] = ranking
}

func cloneRanking(in []match.Match) []match.Match {
	out := make([]match.Match, len(in))
	copy(out, in)
	return out
}

func computeRanking(matches []match.Match) []match.Match {
	out := make([]match.Match, 0, len(matches))
	for _, m := range matches {
		if m.State == match.StateExpired || m.State == match.StateDeclined {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.MatchScore != b.MatchScore {
			return a.MatchScore > b.MatchScore
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
	return out
}

func statsKey(userID uuid.UUID) string {
	return "views:rating-stats:" + userID.String()
}
