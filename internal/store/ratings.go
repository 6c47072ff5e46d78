package store

import (
	"field-match/internal/domain/rating"

	"github.com/google/uuid"
)

func cloneRating(r rating.Rating) rating.Rating {
	r.CategoryRatings = rating.CloneCategories(r.CategoryRatings)
	if r.Response != nil {
		v := *r.Response
		r.Response = &v
	}
	return r
}

// PutRating inserts r, enforcing at most one rating per
// (JobID, FromUserID, ToUserID) triple. It reports false on a duplicate.
func (s *Store) PutRating(r rating.Rating) bool {
	key := ratingTriple{JobID: r.JobID, FromUserID: r.FromUserID, ToUserID: r.ToUserID}

	s.tripleMu.Lock()
	if _, ok := s.triples[key]; ok {
		s.tripleMu.Unlock()
		return false
	}
	s.triples[key] = r.ID
	s.tripleMu.Unlock()

	sh := s.ratingShardFor(r.ID)
	sh.mu.Lock()
	sh.items[r.ID] = cloneRating(r)
	sh.mu.Unlock()
	return true
}

func (s *Store) GetRating(id uuid.UUID) (rating.Rating, bool) {
	sh := s.ratingShardFor(id)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	r, ok := sh.items[id]
	if !ok {
		return rating.Rating{}, false
	}
	return cloneRating(r), true
}

// UpdateRating applies fn under the rating's shard write lock. The write is
// kept only when fn returns nil.
func (s *Store) UpdateRating(id uuid.UUID, fn func(r *rating.Rating) error) (rating.Rating, bool, error) {
	sh := s.ratingShardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	cur, ok := sh.items[id]
	if !ok {
		return rating.Rating{}, false, nil
	}

	next := cloneRating(cur)
	if err := fn(&next); err != nil {
		return cloneRating(cur), true, err
	}
	sh.items[id] = next
	return cloneRating(next), true, nil
}

// RatingsForUser returns copies of every rating received by toUserID.
func (s *Store) RatingsForUser(toUserID uuid.UUID) []rating.Rating {
	var out []rating.Rating
	for _, sh := range s.ratingShards {
		sh.mu.RLock()
		for _, r := range sh.items {
			if r.ToUserID == toUserID {
				out = append(out, cloneRating(r))
			}
		}
		sh.mu.RUnlock()
	}
	return out
}
