//go:build integration

package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
)

// DecodeJSON reads and decodes a JSON response body into dst.
func DecodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
}

// AssertStatus checks that the response has the expected HTTP status code.
func AssertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// AssertErrorCode checks that the response body contains the expected error code.
func AssertErrorCode(t *testing.T, resp *http.Response, expectedCode string) {
	t.Helper()
	var errResp struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	DecodeJSON(t, resp, &errResp)
	if errResp.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, errResp.Code, errResp.Message)
	}
}

// AssertReputation queries the players table and asserts the score to two
// decimal places.
func AssertReputation(t *testing.T, env *TestEnv, playerID uuid.UUID, expected float64) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var score float64
	err := env.Pool.QueryRow(ctx,
		"SELECT reputation_score FROM players WHERE id = $1", playerID).Scan(&score)
	if err != nil {
		t.Fatalf("AssertReputation: query: %v", err)
	}
	if diff := score - expected; diff > 0.005 || diff < -0.005 {
		t.Errorf("reputation: expected %.2f, got %.2f", expected, score)
	}
}

// AssertSanctionState asserts the suspended/banned flags on a player row.
func AssertSanctionState(t *testing.T, env *TestEnv, playerID uuid.UUID, suspended, banned bool) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var gotSuspended, gotBanned bool
	err := env.Pool.QueryRow(ctx,
		"SELECT is_suspended, is_banned FROM players WHERE id = $1", playerID).
		Scan(&gotSuspended, &gotBanned)
	if err != nil {
		t.Fatalf("AssertSanctionState: query: %v", err)
	}
	if gotSuspended != suspended {
		t.Errorf("is_suspended: expected %v, got %v", suspended, gotSuspended)
	}
	if gotBanned != banned {
		t.Errorf("is_banned: expected %v, got %v", banned, gotBanned)
	}
}

// CountWarnings returns the number of warnings on a player's record.
func CountWarnings(t *testing.T, env *TestEnv, playerID uuid.UUID) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var count int
	err := env.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM player_warnings WHERE player_id = $1", playerID).Scan(&count)
	if err != nil {
		t.Fatalf("CountWarnings: %v", err)
	}
	return count
}

// CountOutboxEvents returns the number of staged outbox events of a type.
// An empty eventType counts everything.
func CountOutboxEvents(t *testing.T, env *TestEnv, eventType string) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := "SELECT COUNT(*) FROM event_outbox"
	args := []interface{}{}
	if eventType != "" {
		query += " WHERE event_type = $1"
		args = append(args, eventType)
	}

	var count int
	if err := env.Pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		t.Fatalf("CountOutboxEvents: %v", err)
	}
	return count
}
