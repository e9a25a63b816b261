package domain

import (
	"time"

	"github.com/google/uuid"
)

// RequestStatus is the player request lifecycle state. Fulfilled, expired
// and cancelled are terminal.
type RequestStatus string

const (
	RequestActive    RequestStatus = "active"
	RequestFulfilled RequestStatus = "fulfilled"
	RequestExpired   RequestStatus = "expired"
	RequestCancelled RequestStatus = "cancelled"
)

// ContactResponse is a contacted player's reply state.
type ContactResponse string

const (
	ResponsePending    ContactResponse = "pending"
	ResponseInterested ContactResponse = "interested"
	ResponseDeclined   ContactResponse = "declined"
	ResponseJoined     ContactResponse = "joined"
)

// ContactedPlayer tracks one broadcast recipient and their response.
type ContactedPlayer struct {
	PlayerID    uuid.UUID       `json:"player_id"`
	Response    ContactResponse `json:"response"`
	ContactedAt time.Time       `json:"contacted_at"`
	ResponseAt  *time.Time      `json:"response_at,omitempty"`
}

// JoinedPlayer records a fulfillment against the request.
type JoinedPlayer struct {
	PlayerID uuid.UUID `json:"player_id"`
	JoinedAt time.Time `json:"joined_at"`
}

// MatchRequest is a "need players" broadcast against an open match.
type MatchRequest struct {
	ID               uuid.UUID     `json:"id"`
	MatchID          uuid.UUID     `json:"match_id"`
	RequestedBy      uuid.UUID     `json:"requested_by"`
	PositionNeeded   string        `json:"position_needed"`
	SlotsAvailable   int           `json:"slots_available"`
	TargetSkillLevel SkillLevel    `json:"target_skill_level"`
	MaxDistanceM     int           `json:"max_distance_m"`
	Message          string        `json:"message,omitempty"`
	Status           RequestStatus `json:"status"`
	AutoFulfill      bool          `json:"auto_fulfill"`
	ExpiresAt        time.Time     `json:"expires_at"`
	PlayersContacted []ContactedPlayer `json:"players_contacted"`
	PlayersJoined    []JoinedPlayer    `json:"players_joined"`
	TotalContacted   int           `json:"total_contacted"`
	TotalInterested  int           `json:"total_interested"`
	TotalJoined      int           `json:"total_joined"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// RemainingSlots returns how many joins the request still needs.
func (r *MatchRequest) RemainingSlots() int {
	remaining := r.SlotsAvailable - r.TotalJoined
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ContactOf returns the contact entry for a player, if present.
func (r *MatchRequest) ContactOf(playerID uuid.UUID) *ContactedPlayer {
	for i := range r.PlayersContacted {
		if r.PlayersContacted[i].PlayerID == playerID {
			return &r.PlayersContacted[i]
		}
	}
	return nil
}

// AddContact records that a player was contacted, or updates their response
// if already present. Idempotent per player id: TotalContacted counts
// distinct players only.
func (r *MatchRequest) AddContact(playerID uuid.UUID, response ContactResponse, now time.Time) {
	if existing := r.ContactOf(playerID); existing != nil {
		existing.Response = response
		t := now
		existing.ResponseAt = &t
	} else {
		entry := ContactedPlayer{PlayerID: playerID, Response: response, ContactedAt: now}
		if response != ResponsePending {
			t := now
			entry.ResponseAt = &t
		}
		r.PlayersContacted = append(r.PlayersContacted, entry)
		r.TotalContacted++
	}
	r.syncCounters()
}

// RecordJoin marks a player as joined, idempotently. The matching contact
// entry (if any) flips to joined; uncontacted joiners are still counted.
// Transitions to fulfilled once no slots remain and auto-fulfill is on.
func (r *MatchRequest) RecordJoin(playerID uuid.UUID, now time.Time) {
	for _, j := range r.PlayersJoined {
		if j.PlayerID == playerID {
			return
		}
	}
	r.PlayersJoined = append(r.PlayersJoined, JoinedPlayer{PlayerID: playerID, JoinedAt: now})

	if contact := r.ContactOf(playerID); contact != nil {
		contact.Response = ResponseJoined
		t := now
		contact.ResponseAt = &t
	}

	r.syncCounters()

	if r.AutoFulfill && r.RemainingSlots() == 0 && r.Status == RequestActive {
		r.Status = RequestFulfilled
	}
}

// syncCounters recomputes the derived totals from the tracked lists.
func (r *MatchRequest) syncCounters() {
	interested := 0
	for _, c := range r.PlayersContacted {
		if c.Response == ResponseInterested || c.Response == ResponseJoined {
			interested++
		}
	}
	r.TotalInterested = interested
	r.TotalJoined = len(r.PlayersJoined)
}

// ExpireIfDue lazily flips an active request past its expiry to expired.
// Returns true if the transition happened.
func (r *MatchRequest) ExpireIfDue(now time.Time) bool {
	if r.Status == RequestActive && now.After(r.ExpiresAt) {
		r.Status = RequestExpired
		return true
	}
	return false
}

// ResponseRate returns the interested share of contacted players, 0-100.
func (r *MatchRequest) ResponseRate() float64 {
	if r.TotalContacted == 0 {
		return 0
	}
	return float64(r.TotalInterested) / float64(r.TotalContacted) * 100
}

// SuccessRate returns the joined share of contacted players, 0-100.
func (r *MatchRequest) SuccessRate() float64 {
	if r.TotalContacted == 0 {
		return 0
	}
	return float64(r.TotalJoined) / float64(r.TotalContacted) * 100
}
