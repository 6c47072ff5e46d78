package rating

import (
	"time"

	"github.com/google/uuid"
)

type Category string

const (
	CategoryQuality         Category = "quality"
	CategoryCommunication   Category = "communication"
	CategoryTimeliness      Category = "timeliness"
	CategoryProfessionalism Category = "professionalism"
)

// Categories is the fixed set every rating must score.
var Categories = []Category{
	CategoryQuality,
	CategoryCommunication,
	CategoryTimeliness,
	CategoryProfessionalism,
}

// Response is the single optional reply from the rated party.
type Response struct {
	Body      string
	CreatedAt time.Time
}

// Rating is a completed job's feedback record, at most one per
// (JobID, FromUserID, ToUserID) triple. Immutable after creation except
// HelpfulCount (monotonic increment) and the one-shot Response.
type Rating struct {
	ID              uuid.UUID
	JobID           uuid.UUID
	FromUserID      uuid.UUID
	ToUserID        uuid.UUID
	OverallRating   int
	CategoryRatings map[Category]int
	IsAnonymous     bool
	CreatedAt       time.Time
	HelpfulCount    int
	Response        *Response
}

// ValidScore reports whether v is inside the 1-5 rating scale.
func ValidScore(v int) bool {
	return v >= 1 && v <= 5
}

// CloneCategories copies the category map so stored ratings never share a
// mutable map with callers.
func CloneCategories(in map[Category]int) map[Category]int {
	out := make(map[Category]int, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
