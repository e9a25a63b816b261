package domain

import (
	"time"

	"github.com/google/uuid"
)

// CategoryScores holds the five per-category ratings, each 1-5.
type CategoryScores struct {
	Skill         int `json:"skill"`
	Teamwork      int `json:"teamwork"`
	Attitude      int `json:"attitude"`
	Punctuality   int `json:"punctuality"`
	Communication int `json:"communication"`
}

// Average returns the unweighted mean of the five category scores.
func (c CategoryScores) Average() float64 {
	return float64(c.Skill+c.Teamwork+c.Attitude+c.Punctuality+c.Communication) / 5.0
}

// Valid reports whether every category is within 1-5.
func (c CategoryScores) Valid() bool {
	for _, v := range []int{c.Skill, c.Teamwork, c.Attitude, c.Punctuality, c.Communication} {
		if v < 1 || v > 5 {
			return false
		}
	}
	return true
}

// Rating is one player's post-match assessment of another. Unique per
// (rated_player, rated_by, match), enforced by the store.
type Rating struct {
	ID            uuid.UUID      `json:"id"`
	RatedPlayer   uuid.UUID      `json:"rated_player"`
	RatedBy       uuid.UUID      `json:"rated_by"`
	MatchID       uuid.UUID      `json:"match_id"`
	OverallRating int            `json:"overall_rating"`
	Categories    CategoryScores `json:"categories"`
	Feedback      string         `json:"feedback,omitempty"`
	RatingWeight  float64        `json:"rating_weight"`
	Flagged       bool           `json:"flagged"`
	FlagReason    string         `json:"flag_reason,omitempty"`
	IsMutual      bool           `json:"is_mutual"`
	CreatedAt     time.Time      `json:"created_at"`
}

// WeightedOverall returns the overall rating scaled by its weight.
func (r *Rating) WeightedOverall() float64 {
	return float64(r.OverallRating) * r.RatingWeight
}
