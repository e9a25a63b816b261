package policy

import (
	"math"
	"time"

	"github.com/footyheroes/platform/internal/domain"
)

const (
	minRatingWeight = 0.1
	maxRatingWeight = 2.0

	// Raters below this reputation get every rating flagged for review.
	lowReputationThreshold = 2.0

	// An extreme overall rating this far off the category mean is suspicious.
	suspiciousGap = 1.5
)

// ComputeRatingWeight derives a rating's weight from the rater's current
// reputation. Neutral reputation (3.0) maps to weight 1.0; each point of
// reputation shifts the weight by 0.2, clamped to [0.1, 2.0].
func ComputeRatingWeight(raterReputation float64) float64 {
	w := 1.0 + (raterReputation-domain.DefaultReputation)*0.2
	return math.Max(minRatingWeight, math.Min(maxRatingWeight, w))
}

// IsSuspicious flags ratings that look fake or biased: an extreme overall
// score (1 or 5) that disagrees with the category mean by more than 1.5.
func IsSuspicious(overall int, categories domain.CategoryScores) bool {
	if overall != 1 && overall != 5 {
		return false
	}
	return math.Abs(float64(overall)-categories.Average()) > suspiciousGap
}

// ReputationSummary is the aggregate view of a player's received ratings.
type ReputationSummary struct {
	OverallScore     float64            `json:"overall_score"`
	TotalRatings     int                `json:"total_ratings"`
	CategoryAverages map[string]float64 `json:"category_averages"`
	RecentTrend      float64            `json:"recent_trend"`
}

// ComputeReputation aggregates a player's rating set into the weighted
// overall score, unweighted category means, and the 30-day trend (recent
// unweighted mean minus the all-time weighted score). With no ratings the
// neutral default applies.
func ComputeReputation(ratings []domain.Rating, now time.Time) ReputationSummary {
	if len(ratings) == 0 {
		return ReputationSummary{
			OverallScore: domain.DefaultReputation,
			CategoryAverages: map[string]float64{
				"skill":         domain.DefaultReputation,
				"teamwork":      domain.DefaultReputation,
				"attitude":      domain.DefaultReputation,
				"punctuality":   domain.DefaultReputation,
				"communication": domain.DefaultReputation,
			},
		}
	}

	var weightedSum, totalWeight float64
	var skill, teamwork, attitude, punctuality, communication int
	var recentSum float64
	recentCount := 0
	cutoff := now.AddDate(0, 0, -30)

	for _, r := range ratings {
		weightedSum += r.WeightedOverall()
		totalWeight += r.RatingWeight
		skill += r.Categories.Skill
		teamwork += r.Categories.Teamwork
		attitude += r.Categories.Attitude
		punctuality += r.Categories.Punctuality
		communication += r.Categories.Communication
		if !r.CreatedAt.Before(cutoff) {
			recentSum += float64(r.OverallRating)
			recentCount++
		}
	}

	score := domain.DefaultReputation
	if totalWeight > 0 {
		score = weightedSum / totalWeight
	}

	n := float64(len(ratings))
	summary := ReputationSummary{
		OverallScore: score,
		TotalRatings: len(ratings),
		CategoryAverages: map[string]float64{
			"skill":         float64(skill) / n,
			"teamwork":      float64(teamwork) / n,
			"attitude":      float64(attitude) / n,
			"punctuality":   float64(punctuality) / n,
			"communication": float64(communication) / n,
		},
	}
	if recentCount > 0 {
		summary.RecentTrend = recentSum/float64(recentCount) - score
	}
	return summary
}
