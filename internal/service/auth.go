package service

import (
	"context"
	"strings"
	"time"

	"github.com/footyheroes/platform/internal/auth"
	"github.com/footyheroes/platform/internal/domain"
	"github.com/footyheroes/platform/internal/guard"
	"github.com/footyheroes/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles player registration and login.
type AuthService struct {
	pool    *pgxpool.Pool
	users   repository.AuthUserRepository
	players repository.PlayerRepository
	jwtMgr  *auth.JWTManager
	lockout *guard.LoginGuard
	now     func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	pool *pgxpool.Pool,
	users repository.AuthUserRepository,
	players repository.PlayerRepository,
	jwtMgr *auth.JWTManager,
) *AuthService {
	return &AuthService{
		pool:    pool,
		users:   users,
		players: players,
		jwtMgr:  jwtMgr,
		now:     time.Now,
	}
}

// WithLoginGuard enables failed-login lockout tracking.
func (s *AuthService) WithLoginGuard(g *guard.LoginGuard) *AuthService {
	s.lockout = g
	return s
}

// RegisterInput holds the registration request fields.
type RegisterInput struct {
	Email      string            `json:"email"`
	Password   string            `json:"password"`
	Name       string            `json:"name"`
	Username   string            `json:"username"`
	SkillLevel domain.SkillLevel `json:"skill_level"`
	Position   string            `json:"position"`
	Latitude   float64           `json:"latitude"`
	Longitude  float64           `json:"longitude"`
}

// AuthResult is returned on successful registration or login.
type AuthResult struct {
	Token    string    `json:"token"`
	PlayerID uuid.UUID `json:"player_id"`
	Email    string    `json:"email"`
}

// Register creates an auth user and player profile in one transaction.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := domain.ValidateEmail(input.Email); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if err := domain.ValidateCoordinates(input.Latitude, input.Longitude); err != nil {
		return nil, domain.ErrValidation(err.Error())
	}
	if len(input.Password) < 8 {
		return nil, domain.ErrValidation("password must be at least 8 characters")
	}
	if input.Name == "" {
		return nil, domain.ErrValidation("name is required")
	}
	if input.Username == "" {
		return nil, domain.ErrValidation("username is required")
	}
	if input.SkillLevel == "" {
		input.SkillLevel = domain.SkillBeginner
	}
	if !input.SkillLevel.Valid() || input.SkillLevel == domain.SkillAny {
		return nil, domain.ErrValidation("unknown skill level")
	}

	existing, err := s.users.FindByEmail(ctx, s.pool, input.Email)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if existing != nil {
		return nil, domain.ErrConflict("email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.ErrInternal("hash password", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	now := s.now()
	playerID := uuid.New()

	authUser := &domain.AuthUser{
		ID:           playerID,
		Email:        input.Email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, tx, authUser); err != nil {
		return nil, domain.ErrInternal("create auth user", err)
	}

	player := &domain.Player{
		ID:              playerID,
		Name:            input.Name,
		Username:        input.Username,
		SkillLevel:      input.SkillLevel,
		Position:        input.Position,
		Latitude:        input.Latitude,
		Longitude:       input.Longitude,
		ReputationScore: domain.DefaultReputation,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.players.Create(ctx, tx, player); err != nil {
		return nil, domain.ErrInternal("create player", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	token, err := s.jwtMgr.GenerateToken(auth.RealmPlayer, playerID, input.Email)
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}

	return &AuthResult{Token: token, PlayerID: playerID, Email: input.Email}, nil
}

func (s *AuthService) recordAttempt(ctx context.Context, email string, success bool) {
	if s.lockout != nil {
		s.lockout.RecordAttempt(ctx, email, success)
	}
}

// LoginInput holds the login request fields.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a player and returns a JWT. Banned accounts cannot
// log in; suspended accounts can, so players can see their standing.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if s.lockout != nil {
		if err := s.lockout.CheckLocked(ctx, email); err != nil {
			return nil, err
		}
	}

	user, err := s.users.FindByEmail(ctx, s.pool, email)
	if err != nil {
		return nil, domain.ErrInternal("find user", err)
	}
	if user == nil {
		s.recordAttempt(ctx, email, false)
		return nil, domain.ErrUnauthorized("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.recordAttempt(ctx, email, false)
		return nil, domain.ErrUnauthorized("invalid credentials")
	}

	player, err := s.players.FindByID(ctx, s.pool, user.ID)
	if err != nil {
		return nil, domain.ErrInternal("find player", err)
	}
	if player == nil || player.IsBanned {
		return nil, domain.ErrUnauthorized("account is not available")
	}
	s.recordAttempt(ctx, email, true)

	token, err := s.jwtMgr.GenerateToken(auth.RealmPlayer, user.ID, user.Email)
	if err != nil {
		return nil, domain.ErrInternal("generate token", err)
	}

	return &AuthResult{Token: token, PlayerID: user.ID, Email: user.Email}, nil
}
