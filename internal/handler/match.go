package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/footyheroes/platform/internal/domain"
	"github.com/footyheroes/platform/internal/service"
	"github.com/google/uuid"
)

// MatchHandler handles match lifecycle and roster endpoints.
type MatchHandler struct {
	rosterSvc *service.RosterService
}

// NewMatchHandler creates a new MatchHandler.
func NewMatchHandler(rosterSvc *service.RosterService) *MatchHandler {
	return &MatchHandler{rosterSvc: rosterSvc}
}

// Create handles POST /matches.
func (h *MatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	callerID, err := CallerID(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var input service.CreateMatchInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, errInvalidBody())
		return
	}

	match, err := h.rosterSvc.CreateMatch(r.Context(), callerID, input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, match)
}

// Get handles GET /matches/{matchID}.
func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	matchID, err := URLParamUUID(r, "matchID")
	if err != nil {
		RespondError(w, err)
		return
	}
	match, err := h.rosterSvc.GetMatch(r.Context(), matchID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, match)
}

// Nearby handles GET /matches/nearby?lat=..&lng=..&radius=..
func (h *MatchHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	lat, err1 := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, err2 := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err1 != nil || err2 != nil {
		RespondJSON(w, http.StatusBadRequest, map[string]string{
			"code":    "VALIDATION_ERROR",
			"message": "lat and lng query parameters are required",
		})
		return
	}
	radius, _ := strconv.Atoi(r.URL.Query().Get("radius"))

	matches, err := h.rosterSvc.FindNearby(r.Context(), lat, lng, radius)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"matches": matches})
}

// Join handles POST /matches/{matchID}/join.
func (h *MatchHandler) Join(w http.ResponseWriter, r *http.Request) {
	callerID, err := CallerID(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	matchID, err := URLParamUUID(r, "matchID")
	if err != nil {
		RespondError(w, err)
		return
	}

	var input struct {
		Position string `json:"position"`
	}
	DecodeJSON(r, &input) // body optional

	team, err := h.rosterSvc.Join(r.Context(), matchID, callerID, input.Position)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"team": team})
}

// Leave handles POST /matches/{matchID}/leave.
func (h *MatchHandler) Leave(w http.ResponseWriter, r *http.Request) {
	callerID, err := CallerID(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	matchID, err := URLParamUUID(r, "matchID")
	if err != nil {
		RespondError(w, err)
		return
	}
	if err := h.rosterSvc.Leave(r.Context(), matchID, callerID); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"status": "left"})
}

// Start handles POST /matches/{matchID}/start.
func (h *MatchHandler) Start(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.rosterSvc.Start, "started")
}

// Complete handles POST /matches/{matchID}/complete.
func (h *MatchHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.rosterSvc.Complete, "completed")
}

// Cancel handles POST /matches/{matchID}/cancel.
func (h *MatchHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.rosterSvc.Cancel, "cancelled")
}

func (h *MatchHandler) transition(w http.ResponseWriter, r *http.Request,
	op func(context.Context, uuid.UUID, uuid.UUID) error, status string) {

	callerID, err := CallerID(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	matchID, err := URLParamUUID(r, "matchID")
	if err != nil {
		RespondError(w, err)
		return
	}
	if err := op(r.Context(), matchID, callerID); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"status": status})
}

func errInvalidBody() error {
	return domain.ErrValidation("invalid request body")
}
