package views

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"sort"
	"testing"
	"time"

	"field-match/internal/domain/match"
	"field-match/internal/domain/notification"
	"field-match/internal/domain/rating"
	"field-match/internal/store"

	"github.com/google/uuid"
)

type fakeCache struct {
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) GetJSON(ctx context.Context, key string, out any) (bool, error) {
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, out)
}

func (c *fakeCache) SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func newViews(t *testing.T, cache statsCache) (*Views, *store.Store) {
	t.Helper()
	st := store.New(4)
	return New(st, cache, log.New(io.Discard, "", 0)), st
}

func putRating(t *testing.T, st *store.Store, userID uuid.UUID, overall int) {
	t.Helper()
	ok := st.PutRating(rating.Rating{
		ID:            uuid.New(),
		JobID:         uuid.New(),
		FromUserID:    uuid.New(),
		ToUserID:      userID,
		OverallRating: overall,
		CreatedAt:     time.Now().UTC(),
	})
	if !ok {
		t.Fatalf("put rating failed")
	}
}

func TestComputeStats(t *testing.T) {
	if got := computeStats(nil); got.Count != 0 || got.Average != 0 {
		t.Fatalf("empty stats not zero-valued: %+v", got)
	}

	rs := []rating.Rating{
		{OverallRating: 5},
		{OverallRating: 5},
		{OverallRating: 3},
		{OverallRating: 1},
	}
	got := computeStats(rs)
	if got.Count != 4 {
		t.Fatalf("count = %d, want 4", got.Count)
	}
	if got.Average != 3.5 {
		t.Fatalf("average = %v, want 3.5", got.Average)
	}
	if got.Histogram != [5]int{1, 0, 1, 0, 2} {
		t.Fatalf("histogram = %v", got.Histogram)
	}
}

func TestRatingStats_InvalidationAfterWrite(t *testing.T) {
	v, st := newViews(t, nil)
	userID := uuid.New()

	putRating(t, st, userID, 4)
	first := v.RatingStatsFor(context.Background(), userID)
	if first.Count != 1 || first.Average != 4 {
		t.Fatalf("initial stats: %+v", first)
	}

	// A second rating plus invalidation must be visible on the next read,
	// without the warm worker running.
	putRating(t, st, userID, 2)
	v.RatingsChanged(userID)

	second := v.RatingStatsFor(context.Background(), userID)
	if second.Count != 2 || second.Average != 3 {
		t.Fatalf("post-invalidation stats: %+v", second)
	}
}

func TestRatingStats_CacheReadThrough(t *testing.T) {
	cache := newFakeCache()
	v, st := newViews(t, cache)
	userID := uuid.New()
	putRating(t, st, userID, 5)

	// First read computes, memoizes and writes through to the cache.
	got := v.RatingStatsFor(context.Background(), userID)
	if got.Count != 1 {
		t.Fatalf("stats: %+v", got)
	}
	if _, ok := cache.data[statsKey(userID)]; !ok {
		t.Fatalf("stats not written to cache")
	}

	// A fresh Views over an empty store serves the cached value.
	v2, _ := newViews(t, cache)
	cached := v2.RatingStatsFor(context.Background(), userID)
	if cached.Count != 1 || cached.Average != 5 {
		t.Fatalf("cache read-through: %+v", cached)
	}
}

func TestUnreadCount_TracksStore(t *testing.T) {
	v, st := newViews(t, nil)
	recipient := uuid.New()

	if got := v.UnreadCount(context.Background(), recipient); got != 0 {
		t.Fatalf("empty recipient count = %d", got)
	}

	for i := 0; i < 3; i++ {
		st.PutNotification(notification.Notification{
			ID:          uuid.New(),
			RecipientID: recipient,
			Type:        notification.TypeSystem,
			Priority:    notification.PriorityLow,
			Title:       "t",
			CreatedAt:   time.Now().UTC(),
		})
		v.NotificationsChanged(recipient)
	}
	if got := v.UnreadCount(context.Background(), recipient); got != 3 {
		t.Fatalf("count = %d, want 3", got)
	}

	st.MarkAllNotificationsRead(recipient)
	v.NotificationsChanged(recipient)
	if got := v.UnreadCount(context.Background(), recipient); got != 0 {
		t.Fatalf("count after mark-all = %d, want 0", got)
	}
}

func TestJobRanking_OrderAndExclusions(t *testing.T) {
	v, st := newViews(t, nil)
	jobID := uuid.New()
	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	put := func(score int, createdAt time.Time, state match.State) uuid.UUID {
		m := match.Match{
			ID:         uuid.New(),
			JobID:      jobID,
			EngineerID: uuid.New(),
			ClientID:   uuid.New(),
			MatchScore: score,
			State:      state,
			CreatedAt:  createdAt,
			ExpiresAt:  createdAt.Add(time.Hour),
		}
		if !st.PutMatch(m) {
			t.Fatalf("put match failed")
		}
		return m.ID
	}

	top := put(90, base, match.StateViewing)
	olderMid := put(70, base, match.StateInterested)
	newerMid := put(70, base.Add(time.Minute), match.StateAccepted)
	put(95, base, match.StateDeclined)
	put(99, base, match.StateExpired)

	got := v.JobRanking(context.Background(), jobID)
	if len(got) != 3 {
		t.Fatalf("ranking has %d entries, want 3 (declined/expired excluded)", len(got))
	}
	if got[0].ID != top {
		t.Fatalf("top entry wrong")
	}
	// Equal scores: older creation wins.
	if got[1].ID != olderMid || got[2].ID != newerMid {
		t.Fatalf("tiebreak order wrong: %s then %s", got[1].ID, got[2].ID)
	}

	// Repeat reads over unchanged inputs return the same order.
	again := v.JobRanking(context.Background(), jobID)
	for i := range got {
		if got[i].ID != again[i].ID {
			t.Fatalf("ranking not stable at %d", i)
		}
	}

	// Callers get a copy, not the memoized slice.
	again[0].MatchScore = 0
	third := v.JobRanking(context.Background(), jobID)
	if third[0].MatchScore != 90 {
		t.Fatalf("memoized ranking mutated through returned slice")
	}
}

func TestJobRanking_EqualScoreAndTime_IDTiebreak(t *testing.T) {
	v, st := newViews(t, nil)
	jobID := uuid.New()
	at := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	var want []string
	for i := 0; i < 4; i++ {
		m := match.Match{
			ID:         uuid.New(),
			JobID:      jobID,
			EngineerID: uuid.New(),
			ClientID:   uuid.New(),
			MatchScore: 50,
			State:      match.StateViewing,
			CreatedAt:  at,
			ExpiresAt:  at.Add(time.Hour),
		}
		st.PutMatch(m)
		want = append(want, m.ID.String())
	}
	sort.Strings(want)

	got := v.JobRanking(context.Background(), jobID)
	if len(got) != 4 {
		t.Fatalf("ranking has %d entries", len(got))
	}
	for i, m := range got {
		if m.ID.String() != want[i] {
			t.Fatalf("id tiebreak broken at %d", i)
		}
	}
}
