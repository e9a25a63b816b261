package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReportCategory enumerates misconduct kinds.
type ReportCategory string

const (
	ReportUnsportsmanlike    ReportCategory = "unsportsmanlike_conduct"
	ReportAbusiveLanguage    ReportCategory = "abusive_language"
	ReportPhysicalAggression ReportCategory = "physical_aggression"
	ReportNoShow             ReportCategory = "no_show"
	ReportLateArrival        ReportCategory = "late_arrival"
	ReportCheating           ReportCategory = "cheating"
	ReportHarassment         ReportCategory = "harassment"
	ReportDiscrimination     ReportCategory = "discrimination"
	ReportOther              ReportCategory = "other"
)

// IsCritical reports whether the category belongs to the set that escalates
// priority and can trigger an immediate suspension.
func (c ReportCategory) IsCritical() bool {
	switch c {
	case ReportPhysicalAggression, ReportHarassment, ReportDiscrimination:
		return true
	}
	return false
}

// Valid reports whether c is a known category.
func (c ReportCategory) Valid() bool {
	switch c {
	case ReportUnsportsmanlike, ReportAbusiveLanguage, ReportPhysicalAggression,
		ReportNoShow, ReportLateArrival, ReportCheating, ReportHarassment,
		ReportDiscrimination, ReportOther:
		return true
	}
	return false
}

// Severity is the reporter-supplied seriousness of the incident.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// ReportStatus is the report lifecycle state. Reports are never deleted,
// only status-transitioned.
type ReportStatus string

const (
	ReportPending     ReportStatus = "pending"
	ReportUnderReview ReportStatus = "under_review"
	ReportResolved    ReportStatus = "resolved"
	ReportDismissed   ReportStatus = "dismissed"
	ReportEscalated   ReportStatus = "escalated"
)

// ResolutionAction enumerates the outcomes a resolved report can carry.
type ResolutionAction string

const (
	ActionNoAction          ResolutionAction = "no_action"
	ActionWarning           ResolutionAction = "warning"
	ActionTempSuspension    ResolutionAction = "temporary_suspension"
	ActionPermanentBan      ResolutionAction = "permanent_ban"
	ActionReputationPenalty ResolutionAction = "reputation_penalty"
	ActionMatchBan          ResolutionAction = "match_ban"
	ActionCommunityService  ResolutionAction = "community_service"
)

// Resolution records how a report was closed. Set exactly once, on the
// transition to resolved.
type Resolution struct {
	Action       ResolutionAction `json:"action"`
	DurationDays int              `json:"duration_days,omitempty"`
	Reason       string           `json:"reason,omitempty"`
	ResolvedBy   *uuid.UUID       `json:"resolved_by,omitempty"`
	ResolvedAt   time.Time        `json:"resolved_at"`
}

// Report is a misconduct complaint by one participant against another.
type Report struct {
	ID             uuid.UUID      `json:"id"`
	ReportedPlayer uuid.UUID      `json:"reported_player"`
	ReportedBy     uuid.UUID      `json:"reported_by"`
	MatchID        uuid.UUID      `json:"match_id"`
	Category       ReportCategory `json:"category"`
	Severity       Severity       `json:"severity"`
	Description    string         `json:"description"`
	Status         ReportStatus   `json:"status"`
	Priority       int            `json:"priority"`
	Resolution     *Resolution    `json:"resolution,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// ReportStats summarizes the reports filed against one player.
type ReportStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Resolved  int `json:"resolved"`
	Dismissed int `json:"dismissed"`
	Critical  int `json:"critical"`
}

// DerivePriority computes the 1-5 triage priority from severity, bumped by
// one (capped at 5) for critical categories.
func DerivePriority(severity Severity, category ReportCategory) int {
	var base int
	switch severity {
	case SeverityLow:
		base = 1
	case SeverityMedium:
		base = 2
	case SeverityHigh:
		base = 4
	case SeverityCritical:
		base = 5
	default:
		base = 3
	}
	if category.IsCritical() {
		base++
	}
	if base > 5 {
		base = 5
	}
	return base
}

// Escalate bumps the report to escalated status and raises priority one
// step, capped at 5.
func (r *Report) Escalate() {
	r.Status = ReportEscalated
	if r.Priority < 5 {
		r.Priority++
	}
}

// Resolve closes the report with the given resolution. Returns false if the
// report already carries one; resolution is write-once.
func (r *Report) Resolve(res Resolution) bool {
	if r.Resolution != nil {
		return false
	}
	r.Status = ReportResolved
	r.Resolution = &res
	return true
}
