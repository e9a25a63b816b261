//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/footyheroes/platform/internal/auth"
	"github.com/footyheroes/platform/test/integration/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileReport registers a reporter and a reported player, seeds a completed
// match between them and files one report. Returns the report and reported
// player IDs.
func fileReport(t *testing.T, env *testutil.TestEnv, tag, category, severity string) (reportID, reportedID uuid.UUID) {
	t.Helper()
	reporterToken, reporterID := env.RegisterPlayer(
		fmt.Sprintf("reporter_%s@test.com", tag), "reporter"+tag)
	_, reportedID = env.RegisterPlayer(
		fmt.Sprintf("reported_%s@test.com", tag), "reported"+tag)
	matchID := env.SeedCompletedMatch(reporterID, []uuid.UUID{reporterID}, []uuid.UUID{reportedID})

	resp := env.AuthPOST("/reports", map[string]interface{}{
		"reported_player": reportedID,
		"match_id":        matchID,
		"category":        category,
		"severity":        severity,
		"description":     "filed for moderation testing",
	}, reporterToken)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Report struct {
			ID uuid.UUID `json:"id"`
		} `json:"report"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return result.Report.ID, reportedID
}

// ─── Review Queue ───────────────────────────────────────────────────────────

func TestReviewQueue_OrderedByPriority(t *testing.T) {
	env := testutil.NewTestEnv(t)
	lowID, _ := fileReport(t, env, "qlow", "late_arrival", "low")
	highID, _ := fileReport(t, env, "qhigh", "cheating", "critical")

	resp := env.AuthGET("/admin/reports", env.AdminToken(auth.RoleModerator))
	var result struct {
		Reports []struct {
			ID       uuid.UUID `json:"id"`
			Priority int       `json:"priority"`
		} `json:"reports"`
	}
	testutil.DecodeJSON(t, resp, &result)

	require.Len(t, result.Reports, 2)
	assert.Equal(t, highID, result.Reports[0].ID)
	assert.Equal(t, lowID, result.Reports[1].ID)
}

func TestReviewQueue_ExcludesDismissed(t *testing.T) {
	env := testutil.NewTestEnv(t)
	dismissedID, _ := fileReport(t, env, "qdismiss", "no_show", "low")
	keptID, _ := fileReport(t, env, "qkept", "no_show", "low")

	adminToken := env.AdminToken(auth.RoleModerator)
	dresp := env.AuthPOST("/admin/reports/"+dismissedID.String()+"/dismiss", nil, adminToken)
	dresp.Body.Close()
	require.Equal(t, http.StatusOK, dresp.StatusCode)

	resp := env.AuthGET("/admin/reports", adminToken)
	var result struct {
		Reports []struct {
			ID uuid.UUID `json:"id"`
		} `json:"reports"`
	}
	testutil.DecodeJSON(t, resp, &result)

	require.Len(t, result.Reports, 1)
	assert.Equal(t, keptID, result.Reports[0].ID)
}

func TestReviewQueue_MinPriorityFilter(t *testing.T) {
	env := testutil.NewTestEnv(t)
	fileReport(t, env, "flow", "late_arrival", "low")
	highID, _ := fileReport(t, env, "fhigh", "abusive_language", "high")

	resp := env.AuthGET("/admin/reports?min_priority=4", env.AdminToken(auth.RoleModerator))
	var result struct {
		Reports []struct {
			ID uuid.UUID `json:"id"`
		} `json:"reports"`
	}
	testutil.DecodeJSON(t, resp, &result)

	require.Len(t, result.Reports, 1)
	assert.Equal(t, highID, result.Reports[0].ID)
}

// ─── Dismiss and Escalate ───────────────────────────────────────────────────

func TestDismissReport_SetsStatus(t *testing.T) {
	env := testutil.NewTestEnv(t)
	reportID, _ := fileReport(t, env, "dismiss", "no_show", "low")
	adminToken := env.AdminToken(auth.RoleModerator)

	resp := env.AuthPOST("/admin/reports/"+reportID.String()+"/dismiss", nil, adminToken)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status string
	env.Pool.QueryRow(context.Background(),
		"SELECT status FROM reports WHERE id = $1", reportID).Scan(&status)
	assert.Equal(t, "dismissed", status)

	// A second dismissal conflicts.
	again := env.AuthPOST("/admin/reports/"+reportID.String()+"/dismiss", nil, adminToken)
	defer again.Body.Close()
	assert.Equal(t, http.StatusConflict, again.StatusCode)
}

func TestEscalateReport_BumpsPriority(t *testing.T) {
	env := testutil.NewTestEnv(t)
	reportID, _ := fileReport(t, env, "escalate", "no_show", "low")

	resp := env.AuthPOST("/admin/reports/"+reportID.String()+"/escalate", nil, env.AdminToken(auth.RoleModerator))
	var report struct {
		Status   string `json:"status"`
		Priority int    `json:"priority"`
	}
	testutil.DecodeJSON(t, resp, &report)

	assert.Equal(t, "escalated", report.Status)
	assert.Equal(t, 2, report.Priority)
}

func TestEscalateReport_DismissedRejected(t *testing.T) {
	env := testutil.NewTestEnv(t)
	reportID, _ := fileReport(t, env, "escdismiss", "no_show", "low")
	adminToken := env.AdminToken(auth.RoleModerator)

	dresp := env.AuthPOST("/admin/reports/"+reportID.String()+"/dismiss", nil, adminToken)
	dresp.Body.Close()

	resp := env.AuthPOST("/admin/reports/"+reportID.String()+"/escalate", nil, adminToken)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

// ─── Resolution ─────────────────────────────────────────────────────────────

func TestResolveReport_Warning(t *testing.T) {
	env := testutil.NewTestEnv(t)
	reportID, reportedID := fileReport(t, env, "reswarn", "abusive_language", "medium")

	resp := env.AuthPOST("/admin/reports/"+reportID.String()+"/resolve", map[string]interface{}{
		"action": "warning",
		"reason": "first offence",
	}, env.AdminToken(auth.RoleAdmin))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, 1, testutil.CountWarnings(t, env, reportedID))

	var status string
	env.Pool.QueryRow(context.Background(),
		"SELECT status FROM reports WHERE id = $1", reportID).Scan(&status)
	assert.Equal(t, "resolved", status)
}

func TestResolveReport_TempSuspension(t *testing.T) {
	env := testutil.NewTestEnv(t)
	reportID, reportedID := fileReport(t, env, "ressusp", "abusive_language", "high")

	resp := env.AuthPOST("/admin/reports/"+reportID.String()+"/resolve", map[string]interface{}{
		"action":        "temporary_suspension",
		"duration_days": 5,
		"reason":        "repeated abuse",
	}, env.AdminToken(auth.RoleAdmin))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	testutil.AssertSanctionState(t, env, reportedID, true, false)
}

func TestResolveReport_TempSuspensionNeedsDuration(t *testing.T) {
	env := testutil.NewTestEnv(t)
	reportID, _ := fileReport(t, env, "resnodur", "abusive_language", "high")

	resp := env.AuthPOST("/admin/reports/"+reportID.String()+"/resolve", map[string]interface{}{
		"action": "temporary_suspension",
	}, env.AdminToken(auth.RoleAdmin))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestResolveReport_PermanentBan(t *testing.T) {
	env := testutil.NewTestEnv(t)
	reportID, reportedID := fileReport(t, env, "resban", "cheating", "critical")

	resp := env.AuthPOST("/admin/reports/"+reportID.String()+"/resolve", map[string]interface{}{
		"action": "permanent_ban",
		"reason": "match fixing",
	}, env.AdminToken(auth.RoleAdmin))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	testutil.AssertSanctionState(t, env, reportedID, true, true)
}

func TestResolveReport_ReputationPenalty(t *testing.T) {
	env := testutil.NewTestEnv(t)
	reportID, reportedID := fileReport(t, env, "respen", "unsportsmanlike_conduct", "medium")

	resp := env.AuthPOST("/admin/reports/"+reportID.String()+"/resolve", map[string]interface{}{
		"action": "reputation_penalty",
	}, env.AdminToken(auth.RoleAdmin))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	testutil.AssertReputation(t, env, reportedID, 2.5)
}

func TestResolveReport_PenaltyFlooredAtOne(t *testing.T) {
	env := testutil.NewTestEnv(t)
	reportID, reportedID := fileReport(t, env, "resfloor", "unsportsmanlike_conduct", "medium")
	env.SetReputation(reportedID, 1.2)

	resp := env.AuthPOST("/admin/reports/"+reportID.String()+"/resolve", map[string]interface{}{
		"action": "reputation_penalty",
	}, env.AdminToken(auth.RoleAdmin))
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	testutil.AssertReputation(t, env, reportedID, 1.0)
}

func TestResolveReport_WriteOnce(t *testing.T) {
	env := testutil.NewTestEnv(t)
	reportID, _ := fileReport(t, env, "resonce", "no_show", "low")
	adminToken := env.AdminToken(auth.RoleAdmin)

	first := env.AuthPOST("/admin/reports/"+reportID.String()+"/resolve", map[string]interface{}{
		"action": "no_action",
	}, adminToken)
	first.Body.Close()
	require.Equal(t, http.StatusOK, first.StatusCode)

	second := env.AuthPOST("/admin/reports/"+reportID.String()+"/resolve", map[string]interface{}{
		"action": "warning",
	}, adminToken)
	defer second.Body.Close()
	assert.Equal(t, http.StatusConflict, second.StatusCode)
}

func TestResolveReport_ModeratorForbidden(t *testing.T) {
	env := testutil.NewTestEnv(t)
	reportID, _ := fileReport(t, env, "resmod", "no_show", "low")

	resp := env.AuthPOST("/admin/reports/"+reportID.String()+"/resolve", map[string]interface{}{
		"action": "warning",
	}, env.AdminToken(auth.RoleModerator))
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
