package views

import "field-match/internal/domain/rating"

func computeStats(ratings []rating.Rating) RatingStats {
	var stats RatingStats
	if len(ratings) == 0 {
		return stats
	}

	sum := 0
	for _, r := range ratings {
		if !rating.ValidScore(r.OverallRating) {
			continue
		}
		stats.Histogram[r.OverallRating-1]++
		sum += r.OverallRating
		stats.Count++
	}
	if stats.Count > 0 {
		stats.Average = float64(sum) / float64(stats.Count)
	}
	return stats
}
