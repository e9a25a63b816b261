//go:build integration

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/footyheroes/platform/internal/auth"
	"github.com/footyheroes/platform/internal/domain"
	"github.com/google/uuid"
)

// TestPassword is the password used for every player created by helpers.
const TestPassword = "password123"

// RegisterPlayer creates a new player at the origin and returns the auth
// token and player ID.
func (env *TestEnv) RegisterPlayer(email, username string) (token string, playerID uuid.UUID) {
	env.t.Helper()
	return env.RegisterPlayerAt(email, username, "Intermediate", 0, 0)
}

// RegisterPlayerAt creates a new player with an explicit skill level and
// location, returning the auth token and player ID.
func (env *TestEnv) RegisterPlayerAt(email, username, skill string, lat, lng float64) (token string, playerID uuid.UUID) {
	env.t.Helper()
	body := map[string]interface{}{
		"email":       email,
		"password":    TestPassword,
		"name":        username,
		"username":    username,
		"skill_level": skill,
		"latitude":    lat,
		"longitude":   lng,
	}

	resp := env.POST("/auth/register", body, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		env.t.Fatalf("RegisterPlayer: expected 201, got %d", resp.StatusCode)
	}

	var result struct {
		Token    string    `json:"token"`
		PlayerID uuid.UUID `json:"player_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		env.t.Fatalf("RegisterPlayer: decode: %v", err)
	}
	return result.Token, result.PlayerID
}

// LoginPlayer authenticates an existing player and returns the auth token.
func (env *TestEnv) LoginPlayer(email, password string) string {
	env.t.Helper()
	resp := env.POST("/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		env.t.Fatalf("LoginPlayer: expected 200, got %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		env.t.Fatalf("LoginPlayer: decode: %v", err)
	}
	return result.Token
}

// GET performs an unauthenticated GET request.
func (env *TestEnv) GET(path string) *http.Response {
	env.t.Helper()
	resp, err := http.Get(env.Server.URL + path)
	if err != nil {
		env.t.Fatalf("GET %s: %v", path, err)
	}
	return resp
}

// POST performs a POST request with optional auth token.
func (env *TestEnv) POST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("POST %s: encode: %v", path, err)
		}
	}
	req, err := http.NewRequest("POST", env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("POST %s: new request: %v", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

// POSTWithHeaders performs an authenticated POST request with extra headers.
func (env *TestEnv) POSTWithHeaders(path string, body interface{}, token string, headers map[string]string) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("POSTWithHeaders %s: encode: %v", path, err)
		}
	}
	req, err := http.NewRequest("POST", env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("POSTWithHeaders %s: new request: %v", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("POSTWithHeaders %s: %v", path, err)
	}
	return resp
}

// AuthGET performs an authenticated GET request.
func (env *TestEnv) AuthGET(path, token string) *http.Response {
	env.t.Helper()
	req, err := http.NewRequest("GET", env.Server.URL+path, nil)
	if err != nil {
		env.t.Fatalf("AuthGET %s: new request: %v", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("AuthGET %s: %v", path, err)
	}
	return resp
}

// AuthPOST performs an authenticated POST request.
func (env *TestEnv) AuthPOST(path string, body interface{}, token string) *http.Response {
	env.t.Helper()
	return env.POST(path, body, token)
}

// OPTIONS performs an OPTIONS request.
func (env *TestEnv) OPTIONS(path string) *http.Response {
	env.t.Helper()
	req, err := http.NewRequest("OPTIONS", env.Server.URL+path, nil)
	if err != nil {
		env.t.Fatalf("OPTIONS %s: new request: %v", path, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("OPTIONS %s: %v", path, err)
	}
	return resp
}

// AdminToken generates a JWT for an admin user with the given role.
func (env *TestEnv) AdminToken(role string) string {
	env.t.Helper()
	token, err := env.JWTMgr.GenerateTokenWithRole(auth.RealmAdmin, uuid.New(), "admin@test.com", role)
	if err != nil {
		env.t.Fatalf("AdminToken: %v", err)
	}
	return token
}

// CreateOpenMatch creates a 5v5 match a day out through the API and
// returns its ID. The token's player becomes the organizer.
func (env *TestEnv) CreateOpenMatch(token, skill string, lat, lng float64) uuid.UUID {
	env.t.Helper()
	resp := env.AuthPOST("/matches", map[string]interface{}{
		"title":                "Friendly Kickabout",
		"format":               "5v5",
		"skill_level_required": skill,
		"latitude":             lat,
		"longitude":            lng,
		"date_time":            time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339),
	}, token)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		env.t.Fatalf("CreateOpenMatch: expected 201, got %d", resp.StatusCode)
	}

	var match struct {
		ID uuid.UUID `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&match); err != nil {
		env.t.Fatalf("CreateOpenMatch: decode: %v", err)
	}
	return match.ID
}

// SeedCompletedMatch inserts a completed match with the given rosters,
// bypassing the lifecycle endpoints. Useful for rating and report tests
// that only need a finished match both players took part in.
func (env *TestEnv) SeedCompletedMatch(organizerID uuid.UUID, teamA, teamB []uuid.UUID) uuid.UUID {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	matchID := uuid.New()

	rosterJSON := func(ids []uuid.UUID) []byte {
		entries := make([]domain.RosterEntry, 0, len(ids))
		for _, id := range ids {
			entries = append(entries, domain.RosterEntry{PlayerID: id, JoinedAt: now.Add(-2 * time.Hour)})
		}
		data, err := json.Marshal(entries)
		if err != nil {
			env.t.Fatalf("SeedCompletedMatch: marshal roster: %v", err)
		}
		return data
	}

	_, err := env.Pool.Exec(ctx, `
		INSERT INTO matches (id, title, organizer_id, format, skill_level_required,
			latitude, longitude, address, date_time, late_join_deadline_min,
			status, team_a, team_b, started_at, ended_at, created_at, updated_at, version)
		VALUES ($1, 'Seeded Match', $2, '5v5', 'Any', 0, 0, '', $3, 0,
			'completed', $4, $5, $6, $7, $8, $8, 0)`,
		matchID, organizerID, now.Add(-90*time.Minute),
		rosterJSON(teamA), rosterJSON(teamB),
		now.Add(-90*time.Minute), now.Add(-10*time.Minute), now.Add(-3*time.Hour))
	if err != nil {
		env.t.Fatalf("SeedCompletedMatch: insert: %v", err)
	}
	return matchID
}

// SetReputation overwrites a player's reputation score directly.
func (env *TestEnv) SetReputation(playerID uuid.UUID, score float64) {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tag, err := env.Pool.Exec(ctx,
		"UPDATE players SET reputation_score = $2, updated_at = now() WHERE id = $1",
		playerID, score)
	if err != nil {
		env.t.Fatalf("SetReputation: %v", err)
	}
	if tag.RowsAffected() != 1 {
		env.t.Fatalf("SetReputation: player %s not found", playerID)
	}
}

// ExpireSuspension backdates a player's suspension so the sweep picks it up.
func (env *TestEnv) ExpireSuspension(playerID uuid.UUID) {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := env.Pool.Exec(ctx,
		"UPDATE players SET suspension_expires_at = $2 WHERE id = $1",
		playerID, time.Now().Add(-time.Hour))
	if err != nil {
		env.t.Fatalf("ExpireSuspension: %v", err)
	}
}

// ExpireRequest backdates a request's expiry so lazy expiry triggers.
func (env *TestEnv) ExpireRequest(requestID uuid.UUID) {
	env.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := env.Pool.Exec(ctx,
		"UPDATE match_requests SET expires_at = $2 WHERE id = $1",
		requestID, time.Now().Add(-time.Minute))
	if err != nil {
		env.t.Fatalf("ExpireRequest: %v", err)
	}
}

// FakeUUID returns a random UUID string for test placeholders.
func FakeUUID() string {
	return uuid.New().String()
}
