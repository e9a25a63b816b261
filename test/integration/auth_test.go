//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/footyheroes/platform/internal/auth"
	"github.com/footyheroes/platform/test/integration/testutil"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─── Registration Tests ─────────────────────────────────────────────────────

func TestRegister_Success(t *testing.T) {
	env := testutil.NewTestEnv(t)
	resp := env.POST("/auth/register", map[string]interface{}{
		"email":       "newplayer@test.com",
		"password":    "securepass123",
		"name":        "New Player",
		"username":    "newplayer",
		"skill_level": "Intermediate",
	}, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Token    string    `json:"token"`
		PlayerID uuid.UUID `json:"player_id"`
		Email    string    `json:"email"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.NotEmpty(t, result.Token)
	assert.NotEqual(t, uuid.Nil, result.PlayerID)
	assert.Equal(t, "newplayer@test.com", result.Email)
}

func TestRegister_CreatesBothRows(t *testing.T) {
	env := testutil.NewTestEnv(t)
	_, playerID := env.RegisterPlayer("tworows@test.com", "tworows")

	var authCount, playerCount int
	env.Pool.QueryRow(context.Background(), "SELECT COUNT(*) FROM auth_users WHERE id = $1", playerID).Scan(&authCount)
	env.Pool.QueryRow(context.Background(), "SELECT COUNT(*) FROM players WHERE id = $1", playerID).Scan(&playerCount)

	assert.Equal(t, 1, authCount)
	assert.Equal(t, 1, playerCount)
}

func TestRegister_DefaultReputation(t *testing.T) {
	env := testutil.NewTestEnv(t)
	_, playerID := env.RegisterPlayer("defrep@test.com", "defrep")

	testutil.AssertReputation(t, env, playerID, 3.0)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.RegisterPlayer("dup@test.com", "dupone")

	resp := env.POST("/auth/register", map[string]interface{}{
		"email": "dup@test.com", "password": "securepass123",
		"name": "Dup Two", "username": "duptwo",
	}, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRegister_CaseInsensitiveEmail(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.RegisterPlayer("casetest@test.com", "caseone")

	resp := env.POST("/auth/register", map[string]interface{}{
		"email": "CASETEST@TEST.COM", "password": "securepass123",
		"name": "Case Two", "username": "casetwo",
	}, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRegister_InvalidEmail(t *testing.T) {
	env := testutil.NewTestEnv(t)
	resp := env.POST("/auth/register", map[string]interface{}{
		"email": "not-an-email", "password": "securepass123",
		"name": "No Email", "username": "noemail",
	}, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegister_ShortPassword(t *testing.T) {
	env := testutil.NewTestEnv(t)
	resp := env.POST("/auth/register", map[string]interface{}{
		"email": "shortpw@test.com", "password": "1234567",
		"name": "Short PW", "username": "shortpw",
	}, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegister_MissingUsername(t *testing.T) {
	env := testutil.NewTestEnv(t)
	resp := env.POST("/auth/register", map[string]interface{}{
		"email": "nouser@test.com", "password": "securepass123", "name": "No User",
	}, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegister_UnknownSkillLevel(t *testing.T) {
	env := testutil.NewTestEnv(t)
	resp := env.POST("/auth/register", map[string]interface{}{
		"email": "skill@test.com", "password": "securepass123",
		"name": "Skill", "username": "skilltest", "skill_level": "Legendary",
	}, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegister_AnySkillLevelRejected(t *testing.T) {
	env := testutil.NewTestEnv(t)
	// "Any" is a match requirement wildcard, not a player skill.
	resp := env.POST("/auth/register", map[string]interface{}{
		"email": "anyskill@test.com", "password": "securepass123",
		"name": "Any", "username": "anyskill", "skill_level": "Any",
	}, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegister_EmptyBody(t *testing.T) {
	env := testutil.NewTestEnv(t)
	resp := env.POST("/auth/register", nil, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ─── Login Tests ────────────────────────────────────────────────────────────

func TestLogin_Success(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.RegisterPlayer("logintest@test.com", "logintest")

	resp := env.POST("/auth/login", map[string]string{
		"email": "logintest@test.com", "password": testutil.TestPassword,
	}, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Token string `json:"token"`
		Email string `json:"email"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "logintest@test.com", result.Email)
}

func TestLogin_WrongPassword(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.RegisterPlayer("wrongpw@test.com", "wrongpw")

	resp := env.POST("/auth/login", map[string]string{
		"email": "wrongpw@test.com", "password": "wrongpassword",
	}, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogin_NonexistentEmail(t *testing.T) {
	env := testutil.NewTestEnv(t)
	resp := env.POST("/auth/login", map[string]string{
		"email": "noexist@test.com", "password": testutil.TestPassword,
	}, "")
	defer resp.Body.Close()

	// Should return same error as wrong password (no info leak)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogin_BannedAccountRejected(t *testing.T) {
	env := testutil.NewTestEnv(t)
	_, playerID := env.RegisterPlayer("banned@test.com", "bannedlogin")

	_, err := env.Pool.Exec(context.Background(),
		"UPDATE players SET is_banned = true, is_active = false WHERE id = $1", playerID)
	require.NoError(t, err)

	resp := env.POST("/auth/login", map[string]string{
		"email": "banned@test.com", "password": testutil.TestPassword,
	}, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogin_SuspendedAccountAllowed(t *testing.T) {
	env := testutil.NewTestEnv(t)
	_, playerID := env.RegisterPlayer("susplogin@test.com", "susplogin")

	_, err := env.Pool.Exec(context.Background(),
		"UPDATE players SET is_suspended = true, suspension_expires_at = now() + interval '7 days' WHERE id = $1",
		playerID)
	require.NoError(t, err)

	// Suspended players can still log in to see their standing.
	token := env.LoginPlayer("susplogin@test.com", testutil.TestPassword)
	assert.NotEmpty(t, token)
}

func TestLogin_ValidJWT(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, playerID := env.RegisterPlayer("jwttest@test.com", "jwttest")

	// Parse the JWT to check claims
	parsed, err := jwt.ParseWithClaims(token, &auth.Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(testutil.TestJWTSecret), nil
	})
	require.NoError(t, err)

	claims := parsed.Claims.(*auth.Claims)
	assert.Equal(t, auth.RealmPlayer, claims.Realm)
	assert.Equal(t, playerID.String(), claims.Subject)
}

// ─── Login Lockout Tests ────────────────────────────────────────────────────

func TestLogin_LockoutAfterRepeatedFailures(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.RegisterPlayer("lockout@test.com", "lockout")

	for i := 0; i < 5; i++ {
		resp := env.POST("/auth/login", map[string]string{
			"email": "lockout@test.com", "password": "wrongpassword",
		}, "")
		resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	// Even the correct password is refused while the lockout holds.
	resp := env.POST("/auth/login", map[string]string{
		"email": "lockout@test.com", "password": testutil.TestPassword,
	}, "")
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	testutil.AssertErrorCode(t, resp, "ACCOUNT_LOCKED")
}

func TestLogin_FailuresOnOtherAccountsDoNotLock(t *testing.T) {
	env := testutil.NewTestEnv(t)
	env.RegisterPlayer("victim@test.com", "victim")

	for i := 0; i < 5; i++ {
		resp := env.POST("/auth/login", map[string]string{
			"email": "other@test.com", "password": "wrongpassword",
		}, "")
		resp.Body.Close()
	}

	token := env.LoginPlayer("victim@test.com", testutil.TestPassword)
	assert.NotEmpty(t, token)
}

func TestAuthRoutes_RateLimited(t *testing.T) {
	env := testutil.NewTestEnv(t)

	var last int
	for i := 0; i < 31; i++ {
		resp := env.POST("/auth/login", map[string]string{
			"email": "burst@test.com", "password": "nope",
		}, "")
		last = resp.StatusCode
		resp.Body.Close()
	}

	assert.Equal(t, http.StatusTooManyRequests, last)
}

// ─── JWT Middleware Tests ───────────────────────────────────────────────────

func TestPlayerRoute_NoToken(t *testing.T) {
	env := testutil.NewTestEnv(t)
	resp := env.GET("/matches/nearby?lat=0&lng=0")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPlayerRoute_MalformedToken(t *testing.T) {
	env := testutil.NewTestEnv(t)
	resp := env.AuthGET("/matches/nearby?lat=0&lng=0", "not.a.valid.jwt")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPlayerRoute_WrongRealmToken(t *testing.T) {
	env := testutil.NewTestEnv(t)
	// Admin token on player route
	adminToken := env.AdminToken(auth.RoleAdmin)
	resp := env.AuthGET("/matches/nearby?lat=0&lng=0", adminToken)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminRoute_PlayerTokenRejected(t *testing.T) {
	env := testutil.NewTestEnv(t)
	token, _ := env.RegisterPlayer("notadmin@test.com", "notadmin")

	resp := env.AuthGET("/admin/reports", token)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminRoute_ValidAdminToken(t *testing.T) {
	env := testutil.NewTestEnv(t)
	adminToken := env.AdminToken(auth.RoleModerator)

	resp := env.AuthGET("/admin/reports", adminToken)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealth_NoAuthRequired(t *testing.T) {
	env := testutil.NewTestEnv(t)
	resp := env.GET("/health")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "healthy", result["status"])
}

func TestCORS_OptionsRequest(t *testing.T) {
	env := testutil.NewTestEnv(t)
	resp := env.OPTIONS("/health")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.True(t, strings.Contains(resp.Header.Get("Access-Control-Allow-Methods"), "GET"))
}
