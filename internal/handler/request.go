package handler

import (
	"net/http"

	"github.com/footyheroes/platform/internal/domain"
	"github.com/footyheroes/platform/internal/service"
)

// RequestHandler handles player request broadcast endpoints.
type RequestHandler struct {
	reqSvc *service.RequestService
}

// NewRequestHandler creates a new RequestHandler.
func NewRequestHandler(reqSvc *service.RequestService) *RequestHandler {
	return &RequestHandler{reqSvc: reqSvc}
}

// Create handles POST /requests.
func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	callerID, err := CallerID(r)
	if err != nil {
		RespondError(w, err)
		return
	}

	var input service.CreateRequestInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, errInvalidBody())
		return
	}

	req, err := h.reqSvc.CreateRequest(r.Context(), callerID, input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, req)
}

// Get handles GET /requests/{requestID}.
func (h *RequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	requestID, err := URLParamUUID(r, "requestID")
	if err != nil {
		RespondError(w, err)
		return
	}
	req, err := h.reqSvc.Get(r.Context(), requestID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, req)
}

// Broadcast handles POST /requests/{requestID}/broadcast.
func (h *RequestHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	callerID, err := CallerID(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	requestID, err := URLParamUUID(r, "requestID")
	if err != nil {
		RespondError(w, err)
		return
	}

	contacted, err := h.reqSvc.Broadcast(r.Context(), requestID, callerID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"contacted": len(contacted),
		"players":   contacted,
	})
}

// Respond handles POST /requests/{requestID}/respond.
func (h *RequestHandler) Respond(w http.ResponseWriter, r *http.Request) {
	callerID, err := CallerID(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	requestID, err := URLParamUUID(r, "requestID")
	if err != nil {
		RespondError(w, err)
		return
	}

	var input struct {
		Response domain.ContactResponse `json:"response"`
	}
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, errInvalidBody())
		return
	}

	if err := h.reqSvc.Respond(r.Context(), requestID, callerID, input.Response); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

// Join handles POST /requests/{requestID}/join.
func (h *RequestHandler) Join(w http.ResponseWriter, r *http.Request) {
	callerID, err := CallerID(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	requestID, err := URLParamUUID(r, "requestID")
	if err != nil {
		RespondError(w, err)
		return
	}

	var input struct {
		Position string `json:"position"`
	}
	DecodeJSON(r, &input) // body optional

	req, err := h.reqSvc.Join(r.Context(), requestID, callerID, input.Position)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, req)
}

// Cancel handles POST /requests/{requestID}/cancel.
func (h *RequestHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	callerID, err := CallerID(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	requestID, err := URLParamUUID(r, "requestID")
	if err != nil {
		RespondError(w, err)
		return
	}
	if err := h.reqSvc.Cancel(r.Context(), requestID, callerID); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

// Analytics handles GET /requests/{requestID}/analytics.
func (h *RequestHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	requestID, err := URLParamUUID(r, "requestID")
	if err != nil {
		RespondError(w, err)
		return
	}
	analytics, err := h.reqSvc.Analytics(r.Context(), requestID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, analytics)
}
