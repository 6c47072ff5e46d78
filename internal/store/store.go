package store

import (
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"field-match/internal/domain/match"
	"field-match/internal/domain/notification"
	"field-match/internal/domain/rating"
	"field-match/internal/domain/user"

	"github.com/google/uuid"
)

const DefaultShardCount = 32

// Store owns the live Match, Notification, Rating and User collections.
// Each collection is sharded by entity key with one RWMutex per shard, so
// writers to different keys proceed in parallel while all operations on one
// key serialize. Notifications shard by recipient ID, which makes
// MarkAllRead atomic against a concurrent Put for the same recipient.
//
// All accessors return copies; callers never hold a reference into the maps.
type Store struct {
	matchShards  []*matchShard
	noteShards   []*noteShard
	ratingShards []*ratingShard

	noteIndexMu sync.RWMutex
	noteIndex   map[uuid.UUID]uuid.UUID // notification ID -> recipient ID

	tripleMu sync.Mutex
	triples  map[ratingTriple]uuid.UUID

	usersMu sync.RWMutex
	users   map[uuid.UUID]user.User

	seq atomic.Uint64
}

type matchShard struct {
	mu    sync.RWMutex
	items map[uuid.UUID]match.Match
}

type noteShard struct {
	mu          sync.RWMutex
	byRecipient map[uuid.UUID]map[uuid.UUID]notification.Notification
}

type ratingShard struct {
	mu    sync.RWMutex
	items map[uuid.UUID]rating.Rating
}

type ratingTriple struct {
	JobID      uuid.UUID
	FromUserID uuid.UUID
	ToUserID   uuid.UUID
}

func New(shards int) *Store {
	if shards <= 0 {
		shards = DefaultShardCount
	}

	s := &Store{
		matchShards:  make([]*matchShard, shards),
		noteShards:   make([]*noteShard, shards),
		ratingShards: make([]*ratingShard, shards),
		noteIndex:    make(map[uuid.UUID]uuid.UUID),
		triples:      make(map[ratingTriple]uuid.UUID),
		users:        make(map[uuid.UUID]user.User),
	}
	for i := range s.matchShards {
		s.matchShards[i] = &matchShard{items: make(map[uuid.UUID]match.Match)}
		s.noteShards[i] = &noteShard{byRecipient: make(map[uuid.UUID]map[uuid.UUID]notification.Notification)}
		s.ratingShards[i] = &ratingShard{items: make(map[uuid.UUID]rating.Rating)}
	}
	return s
}

func shardIndex(id uuid.UUID, n int) int {
	h := fnv.New32a()
	_, _ = h.Write(id[:])
	return int(h.Sum32() % uint32(n))
}

func (s *Store) matchShardFor(id uuid.UUID) *matchShard {
	return s.matchShards[shardIndex(id, len(s.matchShards))]
}

func (s *Store) noteShardFor(recipientID uuid.UUID) *noteShard {
	return s.noteShards[shardIndex(recipientID, len(s.noteShards))]
}

func (s *Store) ratingShardFor(id uuid.UUID) *ratingShard {
	return s.ratingShards[shardIndex(id, len(s.ratingShards))]
}

// NextSeq returns the next process-wide insertion sequence number.
func (s *Store) NextSeq() uint64 {
	return s.seq.Add(1)
}

func cloneMatch(m match.Match) match.Match {
	if m.ViewedAt != nil {
		v := *m.ViewedAt
		m.ViewedAt = &v
	}
	if m.RespondedAt != nil {
		v := *m.RespondedAt
		m.RespondedAt = &v
	}
	return m
}

// PutMatch inserts a new match. It reports false when the ID is taken.
func (s *Store) PutMatch(m match.Match) bool {
	sh := s.matchShardFor(m.ID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if _, ok := sh.items[m.ID]; ok {
		return false
	}
	sh.items[m.ID] = cloneMatch(m)
	return true
}

func (s *Store) GetMatch(id uuid.UUID) (match.Match, bool) {
	sh := s.matchShardFor(id)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	m, ok := sh.items[id]
	if !ok {
		return match.Match{}, false
	}
	return cloneMatch(m), true
}

// UpdateMatch applies fn to the stored match under the shard write lock.
// The write is kept only when fn returns nil; a non-nil error leaves the
// entity unchanged. The second return is false when the ID is unknown.
func (s *Store) UpdateMatch(id uuid.UUID, fn func(m *match.Match) error) (match.Match, bool, error) {
	sh := s.matchShardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	cur, ok := sh.items[id]
	if !ok {
		return match.Match{}, false, nil
	}

	next := cloneMatch(cur)
	if err := fn(&next); err != nil {
		return cloneMatch(cur), true, err
	}
	sh.items[id] = next
	return cloneMatch(next), true, nil
}

func (s *Store) RemoveMatch(id uuid.UUID) (match.Match, bool) {
	sh := s.matchShardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	m, ok := sh.items[id]
	if !ok {
		return match.Match{}, false
	}
	delete(sh.items, id)
	return cloneMatch(m), true
}

// MatchesForJob returns copies of every live match for jobID.
func (s *Store) MatchesForJob(jobID uuid.UUID) []match.Match {
	var out []match.Match
	for _, sh := range s.matchShards {
		sh.mu.RLock()
		for _, m := range sh.items {
			if m.JobID == jobID {
				out = append(out, cloneMatch(m))
			}
		}
		sh.mu.RUnlock()
	}
	return out
}

// DueMatches returns the IDs of non-terminal matches whose expiry has passed.
func (s *Store) DueMatches(now time.Time) []uuid.UUID {
	var out []uuid.UUID
	for _, sh := range s.matchShards {
		sh.mu.RLock()
		for id, m := range sh.items {
			if m.DueForExpiry(now) {
				out = append(out, id)
			}
		}
		sh.mu.RUnlock()
	}
	return out
}

// RetiredMatches returns the IDs of terminal matches past the retention
// window, eligible for archival.
func (s *Store) RetiredMatches(now time.Time, retention time.Duration) []uuid.UUID {
	var out []uuid.UUID
	for _, sh := range s.matchShards {
		sh.mu.RLock()
		for id, m := range sh.items {
			if m.RetiredBy(now, retention) {
				out = append(out, id)
			}
		}
		sh.mu.RUnlock()
	}
	return out
}
