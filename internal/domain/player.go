package domain

import (
	"time"

	"github.com/google/uuid"
)

// Player represents a players row. Reputation and suspension fields are
// owned by the reputation and sanction services; everything else is profile.
type Player struct {
	ID              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Username        string     `json:"username"`
	SkillLevel      SkillLevel `json:"skill_level"`
	Position        string     `json:"position,omitempty"`
	Latitude        float64    `json:"latitude"`
	Longitude       float64    `json:"longitude"`
	ReputationScore float64    `json:"reputation_score"`
	IsActive        bool       `json:"is_active"`
	IsSuspended     bool       `json:"is_suspended"`
	IsBanned        bool       `json:"is_banned"`
	SuspensionReason    string     `json:"suspension_reason,omitempty"`
	SuspensionExpiresAt *time.Time `json:"suspension_expires_at,omitempty"`
	MatchesPlayed   int       `json:"matches_played"`
	Goals           int       `json:"goals"`
	Assists         int       `json:"assists"`
	YellowCards     int       `json:"yellow_cards"`
	RedCards        int       `json:"red_cards"`
	MVPAwards       int       `json:"mvp_awards"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// DefaultReputation is the neutral score assigned before any ratings exist.
const DefaultReputation = 3.0

// SuspensionActive reports whether the player is suspended as of now.
// A suspension with a past expiry no longer gates anything even if the
// sweep has not lifted the flag yet.
func (p *Player) SuspensionActive(now time.Time) bool {
	if !p.IsSuspended {
		return false
	}
	if p.SuspensionExpiresAt != nil && now.After(*p.SuspensionExpiresAt) {
		return false
	}
	return true
}

// Warning is an append-only disciplinary note against a player.
type Warning struct {
	ID       uuid.UUID  `json:"id"`
	PlayerID uuid.UUID  `json:"player_id"`
	Reason   string     `json:"reason"`
	ReportID *uuid.UUID `json:"report_id,omitempty"`
	IssuedAt time.Time  `json:"issued_at"`
}

// AuthUser holds credentials from auth_users.
type AuthUser struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
