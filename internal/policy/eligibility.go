package policy

import (
	"sort"
	"time"

	"github.com/footyheroes/platform/internal/domain"
	"github.com/google/uuid"
)

// MaxCandidates caps how many players one broadcast may contact.
const MaxCandidates = 50

// EligibilitySpec holds the exclusion set and skill floor for a candidate
// search. The distance filter is applied upstream by the geo query.
type EligibilitySpec struct {
	RequesterID uuid.UUID
	OrganizerID uuid.UUID
	// Players already rostered in the match.
	RosteredIDs []uuid.UUID
	// Players already contacted for this request.
	ContactedIDs []uuid.UUID
	TargetSkillLevel domain.SkillLevel
	// Instant the suspension check runs against.
	Now time.Time
}

// FilterEligible reduces a geo-query candidate set to eligible players:
// active, not suspended, not the requester/organizer, not rostered, not
// already contacted, and at or above the target skill level. The result is
// ordered by descending reputation (id ascending on ties, so ordering is
// deterministic) and capped at MaxCandidates.
func FilterEligible(candidates []domain.Player, spec EligibilitySpec) []domain.Player {
	excluded := make(map[uuid.UUID]struct{}, len(spec.RosteredIDs)+len(spec.ContactedIDs)+2)
	excluded[spec.RequesterID] = struct{}{}
	excluded[spec.OrganizerID] = struct{}{}
	for _, id := range spec.RosteredIDs {
		excluded[id] = struct{}{}
	}
	for _, id := range spec.ContactedIDs {
		excluded[id] = struct{}{}
	}

	eligible := make([]domain.Player, 0, len(candidates))
	for _, p := range candidates {
		// SuspensionActive, not the raw flag: a lapsed suspension the
		// sweep has not lifted yet must not hide the player.
		if !p.IsActive || p.SuspensionActive(spec.Now) {
			continue
		}
		if _, skip := excluded[p.ID]; skip {
			continue
		}
		if !p.SkillLevel.Meets(spec.TargetSkillLevel) {
			continue
		}
		eligible = append(eligible, p)
	}

	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].ReputationScore != eligible[j].ReputationScore {
			return eligible[i].ReputationScore > eligible[j].ReputationScore
		}
		return eligible[i].ID.String() < eligible[j].ID.String()
	})

	if len(eligible) > MaxCandidates {
		eligible = eligible[:MaxCandidates]
	}
	return eligible
}
