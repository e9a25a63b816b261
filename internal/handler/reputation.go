package handler

import (
	"net/http"

	"github.com/footyheroes/platform/internal/service"
)

// ReputationHandler handles rating submission, report filing and
// reputation profiles.
type ReputationHandler struct {
	repSvc      *service.ReputationService
	sanctionSvc *service.SanctionService
}

// NewReputationHandler creates a new ReputationHandler.
func NewReputationHandler(repSvc *service.ReputationService, sanctionSvc *service.SanctionService) *ReputationHandler {
	return &ReputationHandler{repSvc: repSvc, sanctionSvc: sanctionSvc}
}

// SubmitRating handles POST /ratings.
func (h *ReputationHandler) SubmitRating(w http.ResponseWriter, r *http.Request) {
	callerID, err := CallerID(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var input service.SubmitRatingInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, errInvalidBody())
		return
	}

	rating, err := h.repSvc.SubmitRating(r.Context(), callerID, input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, rating)
}

// SubmitReport handles POST /reports.
func (h *ReputationHandler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	callerID, err := CallerID(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var input service.SubmitReportInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, errInvalidBody())
		return
	}

	result, err := h.sanctionSvc.SubmitReport(r.Context(), callerID, input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, result)
}

// Profile handles GET /players/{playerID}/reputation.
func (h *ReputationHandler) Profile(w http.ResponseWriter, r *http.Request) {
	playerID, err := URLParamUUID(r, "playerID")
	if err != nil {
		RespondError(w, err)
		return
	}
	profile, err := h.repSvc.GetProfile(r.Context(), playerID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, profile)
}
