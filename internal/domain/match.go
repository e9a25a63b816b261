package domain

import (
	"time"

	"github.com/google/uuid"
)

// MatchStatus is the match lifecycle state.
type MatchStatus string

const (
	MatchOpen      MatchStatus = "open"
	MatchFull      MatchStatus = "full"
	MatchOngoing   MatchStatus = "ongoing"
	MatchCompleted MatchStatus = "completed"
	MatchCancelled MatchStatus = "cancelled"
)

// Format is the match format, which fixes team capacity.
type Format string

const (
	Format5v5   Format = "5v5"
	Format7v7   Format = "7v7"
	Format11v11 Format = "11v11"
)

// MaxPlayersPerTeam returns the roster capacity for one side.
func (f Format) MaxPlayersPerTeam() int {
	switch f {
	case Format5v5:
		return 5
	case Format7v7:
		return 7
	case Format11v11:
		return 11
	}
	return 0
}

// MinPlayersToStart returns the per-team minimum to start a match.
func (f Format) MinPlayersToStart() int {
	switch f {
	case Format5v5:
		return 2
	case Format7v7:
		return 3
	case Format11v11:
		return 4
	}
	return 0
}

// Team identifies one of a match's two rosters.
type Team string

const (
	TeamA Team = "teamA"
	TeamB Team = "teamB"
)

// RosterEntry is one player's slot on a team roster.
type RosterEntry struct {
	PlayerID uuid.UUID `json:"player_id"`
	Position string    `json:"position,omitempty"`
	JoinedAt time.Time `json:"joined_at"`
}

// Match is a scheduled game with two rosters. Status transitions between
// open and full are derived from capacity via SyncStatus; ongoing, completed
// and cancelled are set only by explicit service operations.
type Match struct {
	ID                 uuid.UUID   `json:"id"`
	Title              string      `json:"title"`
	OrganizerID        uuid.UUID   `json:"organizer_id"`
	RefereeID          *uuid.UUID  `json:"referee_id,omitempty"`
	Format             Format      `json:"format"`
	SkillLevelRequired SkillLevel  `json:"skill_level_required"`
	Latitude           float64     `json:"latitude"`
	Longitude          float64     `json:"longitude"`
	Address            string      `json:"address"`
	DateTime           time.Time   `json:"date_time"`
	LateJoinDeadlineMin int        `json:"late_join_deadline_min"`
	Status             MatchStatus `json:"status"`
	TeamARoster        []RosterEntry `json:"team_a"`
	TeamBRoster        []RosterEntry `json:"team_b"`
	StartedAt          *time.Time  `json:"started_at,omitempty"`
	EndedAt            *time.Time  `json:"ended_at,omitempty"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
	Version            int64       `json:"-"`
}

// MaxPlayersPerTeam returns the per-side capacity for this match's format.
func (m *Match) MaxPlayersPerTeam() int { return m.Format.MaxPlayersPerTeam() }

// TotalPlayers returns the combined roster size.
func (m *Match) TotalPlayers() int { return len(m.TeamARoster) + len(m.TeamBRoster) }

// AvailableSlots returns open capacity across both rosters.
func (m *Match) AvailableSlots() int {
	return m.MaxPlayersPerTeam()*2 - m.TotalPlayers()
}

// RosterOf returns which team holds the player. TeamA is searched first,
// which also makes removal well-defined if a corrupt document ever held a
// player on both sides.
func (m *Match) RosterOf(playerID uuid.UUID) (Team, bool) {
	for _, e := range m.TeamARoster {
		if e.PlayerID == playerID {
			return TeamA, true
		}
	}
	for _, e := range m.TeamBRoster {
		if e.PlayerID == playerID {
			return TeamB, true
		}
	}
	return "", false
}

// HasPlayer reports whether the player is on either roster.
func (m *Match) HasPlayer(playerID uuid.UUID) bool {
	_, ok := m.RosterOf(playerID)
	return ok
}

// Participants returns every rostered player id (both teams).
func (m *Match) Participants() []uuid.UUID {
	ids := make([]uuid.UUID, 0, m.TotalPlayers())
	for _, e := range m.TeamARoster {
		ids = append(ids, e.PlayerID)
	}
	for _, e := range m.TeamBRoster {
		ids = append(ids, e.PlayerID)
	}
	return ids
}

// ManagedBy reports whether the caller may run lifecycle transitions:
// the organizer or the assigned referee.
func (m *Match) ManagedBy(callerID uuid.UUID) bool {
	if m.OrganizerID == callerID {
		return true
	}
	return m.RefereeID != nil && *m.RefereeID == callerID
}

// JoinDeadline returns the latest instant a player may still join.
func (m *Match) JoinDeadline() time.Time {
	return m.DateTime.Add(-time.Duration(m.LateJoinDeadlineMin) * time.Minute)
}

// CanJoin checks the state-only join preconditions. Returns nil if the
// player may join. Skill and suspension checks need the player document and
// live in the roster service.
func (m *Match) CanJoin(playerID uuid.UUID, now time.Time) *AppError {
	if m.Status != MatchOpen || m.AvailableSlots() == 0 {
		return ErrMatchNotOpen()
	}
	if m.HasPlayer(playerID) {
		return ErrAlreadyRostered()
	}
	if playerID == m.OrganizerID {
		return ErrIsOrganizer()
	}
	if now.After(m.JoinDeadline()) {
		return ErrDeadlinePassed()
	}
	return nil
}

// AddPlayer appends the player to the smaller roster (ties go to teamA) and
// re-syncs the derived status. Caller must have validated CanJoin.
func (m *Match) AddPlayer(playerID uuid.UUID, position string, now time.Time) Team {
	entry := RosterEntry{PlayerID: playerID, Position: position, JoinedAt: now}

	team := TeamA
	if len(m.TeamBRoster) < len(m.TeamARoster) {
		team = TeamB
	}
	if team == TeamA {
		m.TeamARoster = append(m.TeamARoster, entry)
	} else {
		m.TeamBRoster = append(m.TeamBRoster, entry)
	}

	m.SyncStatus()
	return team
}

// RemovePlayer deletes the player's roster entry and re-syncs status.
// TeamA is searched first; the first entry found wins.
func (m *Match) RemovePlayer(playerID uuid.UUID) (Team, bool) {
	for i, e := range m.TeamARoster {
		if e.PlayerID == playerID {
			m.TeamARoster = append(m.TeamARoster[:i], m.TeamARoster[i+1:]...)
			m.SyncStatus()
			return TeamA, true
		}
	}
	for i, e := range m.TeamBRoster {
		if e.PlayerID == playerID {
			m.TeamBRoster = append(m.TeamBRoster[:i], m.TeamBRoster[i+1:]...)
			m.SyncStatus()
			return TeamB, true
		}
	}
	return "", false
}

// SyncStatus flips open<->full as capacity crosses zero. Never touches
// ongoing, completed or cancelled.
func (m *Match) SyncStatus() {
	switch {
	case m.Status == MatchOpen && m.AvailableSlots() == 0:
		m.Status = MatchFull
	case m.Status == MatchFull && m.AvailableSlots() > 0:
		m.Status = MatchOpen
	}
}
