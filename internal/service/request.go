package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/footyheroes/platform/internal/domain"
	"github.com/footyheroes/platform/internal/notify"
	"github.com/footyheroes/platform/internal/policy"
	"github.com/footyheroes/platform/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	defaultRequestTTL      = time.Hour
	defaultBroadcastRadius = 10000
)

// RequestService brokers "need players" broadcasts: finding eligible
// players near a match, tracking who was contacted, and recording joins
// until the request fulfills or expires.
type RequestService struct {
	pool       *pgxpool.Pool
	requests   repository.RequestRepository
	matches    repository.MatchRepository
	players    repository.PlayerRepository
	outbox     repository.OutboxRepository
	dispatcher notify.Dispatcher
	logger     *slog.Logger
	now        func() time.Time
}

// NewRequestService creates a RequestService.
func NewRequestService(
	pool *pgxpool.Pool,
	requests repository.RequestRepository,
	matches repository.MatchRepository,
	players repository.PlayerRepository,
	outbox repository.OutboxRepository,
	dispatcher notify.Dispatcher,
	logger *slog.Logger,
) *RequestService {
	return &RequestService{
		pool:       pool,
		requests:   requests,
		matches:    matches,
		players:    players,
		outbox:     outbox,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock overrides the service clock. Test hook.
func (s *RequestService) WithClock(now func() time.Time) *RequestService {
	s.now = now
	return s
}

// CreateRequestInput holds a broadcast creation request.
type CreateRequestInput struct {
	MatchID          uuid.UUID         `json:"match_id"`
	PositionNeeded   string            `json:"position_needed"`
	SlotsAvailable   int               `json:"slots_available"`
	TargetSkillLevel domain.SkillLevel `json:"target_skill_level"`
	MaxDistanceM     int               `json:"max_distance_m"`
	Message          string            `json:"message"`
	AutoFulfill      *bool             `json:"auto_fulfill"`
	TTLHours         int               `json:"ttl_hours"`
}

// CreateRequest opens a broadcast against a joinable match. Only the
// organizer or a rostered player may ask for more players, and the slot
// count cannot exceed what the match can still take.
func (s *RequestService) CreateRequest(ctx context.Context, requesterID uuid.UUID, input CreateRequestInput) (*domain.MatchRequest, error) {
	if input.SlotsAvailable <= 0 {
		return nil, domain.ErrValidation("slots available must be positive")
	}
	if input.TargetSkillLevel != "" && !input.TargetSkillLevel.Valid() {
		return nil, domain.ErrValidation("unknown skill level")
	}

	match, err := s.matches.FindByID(ctx, s.pool, input.MatchID)
	if err != nil {
		return nil, domain.ErrInternal("find match", err)
	}
	if match == nil {
		return nil, domain.ErrNotFound("match", input.MatchID.String())
	}
	if match.Status != domain.MatchOpen {
		return nil, domain.ErrMatchNotOpen()
	}
	if match.OrganizerID != requesterID && !match.HasPlayer(requesterID) {
		return nil, domain.ErrNotAuthorized("only the organizer or a rostered player can request players")
	}
	if input.SlotsAvailable > match.AvailableSlots() {
		return nil, domain.ErrValidation(
			fmt.Sprintf("match has only %d open slots", match.AvailableSlots()))
	}

	now := s.now()
	ttl := defaultRequestTTL
	if input.TTLHours > 0 {
		ttl = time.Duration(input.TTLHours) * time.Hour
	}
	expiresAt := now.Add(ttl)
	// A broadcast past the join deadline would invite players who cannot join.
	if deadline := match.JoinDeadline(); expiresAt.After(deadline) {
		expiresAt = deadline
	}
	if !expiresAt.After(now) {
		return nil, domain.ErrDeadlinePassed()
	}

	autoFulfill := true
	if input.AutoFulfill != nil {
		autoFulfill = *input.AutoFulfill
	}
	maxDistance := input.MaxDistanceM
	if maxDistance <= 0 {
		maxDistance = defaultBroadcastRadius
	}
	targetSkill := input.TargetSkillLevel
	if targetSkill == "" {
		targetSkill = match.SkillLevelRequired
	}

	req := &domain.MatchRequest{
		ID:               uuid.New(),
		MatchID:          input.MatchID,
		RequestedBy:      requesterID,
		PositionNeeded:   input.PositionNeeded,
		SlotsAvailable:   input.SlotsAvailable,
		TargetSkillLevel: targetSkill,
		MaxDistanceM:     maxDistance,
		Message:          input.Message,
		Status:           domain.RequestActive,
		AutoFulfill:      autoFulfill,
		ExpiresAt:        expiresAt,
		PlayersContacted: []domain.ContactedPlayer{},
		PlayersJoined:    []domain.JoinedPlayer{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	if err := s.requests.Insert(ctx, tx, req); err != nil {
		return nil, domain.ErrInternal("insert request", err)
	}
	err = stageEvent(ctx, tx, s.outbox, "match_request", req.ID.String(), domain.EventRequestCreated,
		map[string]interface{}{
			"request_id": req.ID,
			"match_id":   req.MatchID,
			"slots":      req.SlotsAvailable,
		}, now)
	if err != nil {
		return nil, domain.ErrInternal("stage event", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("player request created",
		"request_id", req.ID, "match_id", req.MatchID, "slots", req.SlotsAvailable)
	return req, nil
}

// Broadcast finds eligible players around the match and records them as
// contacted. Returns the players contacted by this call. Notification
// delivery is best effort and never fails the broadcast.
func (s *RequestService) Broadcast(ctx context.Context, requestID, callerID uuid.UUID) ([]domain.Player, error) {
	now := s.now()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	req, err := s.requests.LockForUpdate(ctx, tx, requestID)
	if err != nil {
		return nil, domain.ErrInternal("lock request", err)
	}
	if req == nil {
		return nil, domain.ErrNotFound("request", requestID.String())
	}
	if req.RequestedBy != callerID {
		return nil, domain.ErrNotAuthorized("only the requester can broadcast")
	}
	if req.ExpireIfDue(now) {
		if err := s.requests.Update(ctx, tx, req); err != nil {
			return nil, domain.ErrInternal("persist expiry", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, domain.ErrInternal("commit tx", err)
		}
		return nil, domain.ErrRequestNotActive()
	}
	if req.Status != domain.RequestActive {
		return nil, domain.ErrRequestNotActive()
	}

	match, err := s.matches.FindByID(ctx, tx, req.MatchID)
	if err != nil {
		return nil, domain.ErrInternal("find match", err)
	}
	if match == nil {
		return nil, domain.ErrNotFound("match", req.MatchID.String())
	}

	candidates, err := s.players.FindWithinRadius(ctx, tx, match.Latitude, match.Longitude, req.MaxDistanceM)
	if err != nil {
		return nil, domain.ErrInternal("find candidates", err)
	}

	contactedIDs := make([]uuid.UUID, 0, len(req.PlayersContacted))
	for _, c := range req.PlayersContacted {
		contactedIDs = append(contactedIDs, c.PlayerID)
	}
	eligible := policy.FilterEligible(candidates, policy.EligibilitySpec{
		RequesterID:      req.RequestedBy,
		OrganizerID:      match.OrganizerID,
		RosteredIDs:      match.Participants(),
		ContactedIDs:     contactedIDs,
		TargetSkillLevel: req.TargetSkillLevel,
		Now:              now,
	})

	for _, p := range eligible {
		req.AddContact(p.ID, domain.ResponsePending, now)
	}
	if err := s.requests.Update(ctx, tx, req); err != nil {
		return nil, domain.ErrInternal("update request", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	for _, p := range eligible {
		payload, _ := json.Marshal(map[string]interface{}{
			"request_id": req.ID,
			"match_id":   req.MatchID,
			"position":   req.PositionNeeded,
			"message":    req.Message,
		})
		err := s.dispatcher.Dispatch(ctx, notify.Notification{
			PlayerID: p.ID,
			Kind:     notify.KindMatchInvite,
			Payload:  payload,
			SentAt:   now,
		})
		if err != nil {
			s.logger.Warn("invite dispatch failed", "player_id", p.ID, "error", err)
		}
	}

	s.logger.Info("request broadcast",
		"request_id", req.ID, "contacted", len(eligible), "total_contacted", req.TotalContacted)
	return eligible, nil
}

// Respond records a contacted player's interest or decline.
func (s *RequestService) Respond(ctx context.Context, requestID, playerID uuid.UUID, response domain.ContactResponse) error {
	if response != domain.ResponseInterested && response != domain.ResponseDeclined {
		return domain.ErrValidation("response must be interested or declined")
	}
	now := s.now()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	req, err := s.requests.LockForUpdate(ctx, tx, requestID)
	if err != nil {
		return domain.ErrInternal("lock request", err)
	}
	if req == nil {
		return domain.ErrNotFound("request", requestID.String())
	}
	if req.ExpireIfDue(now) {
		if err := s.requests.Update(ctx, tx, req); err != nil {
			return domain.ErrInternal("persist expiry", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return domain.ErrInternal("commit tx", err)
		}
		return domain.ErrRequestNotActive()
	}
	if req.Status != domain.RequestActive {
		return domain.ErrRequestNotActive()
	}
	if req.ContactOf(playerID) == nil {
		return domain.ErrNotContacted()
	}

	req.AddContact(playerID, response, now)
	if err := s.requests.Update(ctx, tx, req); err != nil {
		return domain.ErrInternal("update request", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit tx", err)
	}
	return nil
}

// Join puts the player on the match roster and records the fulfillment
// against the request, in one transaction. Uncontacted players may join
// too; the broadcast is an invitation, not a gate.
func (s *RequestService) Join(ctx context.Context, requestID, playerID uuid.UUID, position string) (*domain.MatchRequest, error) {
	now := s.now()

	player, err := s.players.FindByID(ctx, s.pool, playerID)
	if err != nil {
		return nil, domain.ErrInternal("find player", err)
	}
	if player == nil {
		return nil, domain.ErrNotFound("player", playerID.String())
	}
	if !player.IsActive || player.IsBanned {
		return nil, domain.ErrNotAuthorized("account is not active")
	}
	if player.SuspensionActive(now) {
		return nil, domain.ErrPlayerSuspended()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	req, err := s.requests.LockForUpdate(ctx, tx, requestID)
	if err != nil {
		return nil, domain.ErrInternal("lock request", err)
	}
	if req == nil {
		return nil, domain.ErrNotFound("request", requestID.String())
	}
	if req.ExpireIfDue(now) {
		if err := s.requests.Update(ctx, tx, req); err != nil {
			return nil, domain.ErrInternal("persist expiry", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, domain.ErrInternal("commit tx", err)
		}
		return nil, domain.ErrRequestNotActive()
	}
	if req.Status != domain.RequestActive {
		return nil, domain.ErrRequestNotActive()
	}

	match, err := s.matches.LockForUpdate(ctx, tx, req.MatchID)
	if err != nil {
		return nil, domain.ErrInternal("lock match", err)
	}
	if match == nil {
		return nil, domain.ErrNotFound("match", req.MatchID.String())
	}
	if appErr := match.CanJoin(playerID, now); appErr != nil {
		return nil, appErr
	}
	if !player.SkillLevel.Meets(match.SkillLevelRequired) {
		return nil, domain.ErrSkillLevelTooLow(match.SkillLevelRequired)
	}

	match.AddPlayer(playerID, position, now)
	if err := s.matches.Update(ctx, tx, match); err != nil {
		return nil, err
	}

	req.RecordJoin(playerID, now)
	if err := s.requests.Update(ctx, tx, req); err != nil {
		return nil, domain.ErrInternal("update request", err)
	}

	if req.Status == domain.RequestFulfilled {
		err = stageEvent(ctx, tx, s.outbox, "match_request", req.ID.String(), domain.EventRequestFulfilled,
			map[string]interface{}{
				"request_id": req.ID,
				"match_id":   req.MatchID,
				"joined":     req.TotalJoined,
			}, now)
		if err != nil {
			return nil, domain.ErrInternal("stage event", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.ErrInternal("commit tx", err)
	}

	if req.Status == domain.RequestFulfilled {
		payload, _ := json.Marshal(map[string]interface{}{"request_id": req.ID, "match_id": req.MatchID})
		err := s.dispatcher.Dispatch(ctx, notify.Notification{
			PlayerID: req.RequestedBy,
			Kind:     notify.KindRequestFulfilled,
			Payload:  payload,
			SentAt:   now,
		})
		if err != nil {
			s.logger.Warn("fulfillment dispatch failed", "request_id", req.ID, "error", err)
		}
	}

	s.logger.Info("player joined via request",
		"request_id", req.ID, "player_id", playerID, "status", req.Status)
	return req, nil
}

// Cancel withdraws an active request. Requester only.
func (s *RequestService) Cancel(ctx context.Context, requestID, callerID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.ErrInternal("begin tx", err)
	}
	defer tx.Rollback(ctx)

	req, err := s.requests.LockForUpdate(ctx, tx, requestID)
	if err != nil {
		return domain.ErrInternal("lock request", err)
	}
	if req == nil {
		return domain.ErrNotFound("request", requestID.String())
	}
	if req.RequestedBy != callerID {
		return domain.ErrNotAuthorized("only the requester can cancel")
	}
	if req.Status != domain.RequestActive {
		return domain.ErrRequestNotActive()
	}

	req.Status = domain.RequestCancelled
	if err := s.requests.Update(ctx, tx, req); err != nil {
		return domain.ErrInternal("update request", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.ErrInternal("commit tx", err)
	}

	s.logger.Info("request cancelled", "request_id", requestID)
	return nil
}

// Get returns one request, lazily persisting expiry on read.
func (s *RequestService) Get(ctx context.Context, requestID uuid.UUID) (*domain.MatchRequest, error) {
	req, err := s.requests.FindByID(ctx, s.pool, requestID)
	if err != nil {
		return nil, domain.ErrInternal("find request", err)
	}
	if req == nil {
		return nil, domain.ErrNotFound("request", requestID.String())
	}
	if req.ExpireIfDue(s.now()) {
		if err := s.requests.Update(ctx, s.pool, req); err != nil {
			return nil, domain.ErrInternal("persist expiry", err)
		}
	}
	return req, nil
}

// RequestAnalytics summarizes a broadcast's effectiveness.
type RequestAnalytics struct {
	RequestID       uuid.UUID `json:"request_id"`
	TotalContacted  int       `json:"total_contacted"`
	TotalInterested int       `json:"total_interested"`
	TotalJoined     int       `json:"total_joined"`
	RemainingSlots  int       `json:"remaining_slots"`
	ResponseRate    float64   `json:"response_rate"`
	SuccessRate     float64   `json:"success_rate"`
}

// Analytics returns contact and conversion figures for one request.
func (s *RequestService) Analytics(ctx context.Context, requestID uuid.UUID) (*RequestAnalytics, error) {
	req, err := s.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return &RequestAnalytics{
		RequestID:       req.ID,
		TotalContacted:  req.TotalContacted,
		TotalInterested: req.TotalInterested,
		TotalJoined:     req.TotalJoined,
		RemainingSlots:  req.RemainingSlots(),
		ResponseRate:    req.ResponseRate(),
		SuccessRate:     req.SuccessRate(),
	}, nil
}

// SweepExpired bulk-expires overdue requests. Run periodically by the
// sweeper binary; the lazy per-read expiry covers the gap between runs.
func (s *RequestService) SweepExpired(ctx context.Context) (int, error) {
	expired, err := s.requests.ExpireDue(ctx, s.pool, s.now())
	if err != nil {
		return 0, domain.ErrInternal("sweep expired requests", err)
	}
	if expired > 0 {
		s.logger.Info("requests expired", "count", expired)
	}
	return expired, nil
}
