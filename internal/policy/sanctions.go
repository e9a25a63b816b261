package policy

import (
	"fmt"

	"github.com/footyheroes/platform/internal/domain"
)

// Sanction thresholds, tuned alongside the report priority scale.
const (
	CriticalSuspensionDays = 7
	MaxSuspensionDays      = 14

	warningMinReports    = 3
	suspensionMinReports = 5
	banMinCriticals      = 3
)

// SanctionKind classifies a sanction decision.
type SanctionKind string

const (
	SanctionWarning      SanctionKind = "warning"
	SanctionSuspension   SanctionKind = "suspension"
	SanctionPermanentBan SanctionKind = "permanent_ban"
)

// SanctionDecision is one action the engine decided to take. DurationDays
// is set for suspensions only.
type SanctionDecision struct {
	Kind         SanctionKind `json:"kind"`
	DurationDays int          `json:"duration_days,omitempty"`
	Reason       string       `json:"reason"`
}

// SanctionInputs are the report-history facts the decision runs on.
type SanctionInputs struct {
	NewReport domain.Report
	// Reports against the player in the trailing 30 days, new one included.
	RecentCount int
	// All-time critical, non-dismissed reports, new one included.
	CriticalCount int
}

// EvaluateSanctions runs the four independent checks and returns every
// decision that fired. More than one may fire for a single report; the
// caller applies them in order, and a ban supersedes any suspension.
//
//  1. Critical severity in a critical category: 7-day suspension.
//  2. 3-4 reports in the trailing 30 days: warning.
//  3. 5+ reports in the trailing 30 days: suspension, 2 days per report
//     capped at 14.
//  4. 3+ all-time undismissed critical reports: permanent ban.
func EvaluateSanctions(in SanctionInputs) []SanctionDecision {
	var decisions []SanctionDecision

	if in.NewReport.Severity == domain.SeverityCritical && in.NewReport.Category.IsCritical() {
		decisions = append(decisions, SanctionDecision{
			Kind:         SanctionSuspension,
			DurationDays: CriticalSuspensionDays,
			Reason:       fmt.Sprintf("automatic suspension due to critical violation: %s", in.NewReport.Category),
		})
	}

	switch {
	case in.RecentCount >= suspensionMinReports:
		days := in.RecentCount * 2
		if days > MaxSuspensionDays {
			days = MaxSuspensionDays
		}
		decisions = append(decisions, SanctionDecision{
			Kind:         SanctionSuspension,
			DurationDays: days,
			Reason:       "excessive reports received",
		})
	case in.RecentCount >= warningMinReports:
		decisions = append(decisions, SanctionDecision{
			Kind:   SanctionWarning,
			Reason: "multiple reports received in recent period",
		})
	}

	if in.CriticalCount >= banMinCriticals {
		decisions = append(decisions, SanctionDecision{
			Kind:   SanctionPermanentBan,
			Reason: "multiple critical violations",
		})
	}

	return decisions
}
