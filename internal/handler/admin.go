package handler

import (
	"net/http"
	"strconv"

	"github.com/footyheroes/platform/internal/domain"
	"github.com/footyheroes/platform/internal/repository"
	"github.com/footyheroes/platform/internal/service"
)

// AdminHandler handles the moderation review queue.
type AdminHandler struct {
	sanctionSvc *service.SanctionService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(sanctionSvc *service.SanctionService) *AdminHandler {
	return &AdminHandler{sanctionSvc: sanctionSvc}
}

// ReviewQueue handles GET /admin/reports.
// Filters: status (repeatable), severity, category, min_priority, limit.
func (h *AdminHandler) ReviewQueue(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := repository.ReviewFilter{
		Severity: domain.Severity(q.Get("severity")),
		Category: domain.ReportCategory(q.Get("category")),
	}
	for _, s := range q["status"] {
		filter.Statuses = append(filter.Statuses, domain.ReportStatus(s))
	}
	filter.MinPriority, _ = strconv.Atoi(q.Get("min_priority"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))

	reports, err := h.sanctionSvc.ReviewQueue(r.Context(), filter)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"reports": reports})
}

// Resolve handles POST /admin/reports/{reportID}/resolve.
func (h *AdminHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	adminID, err := CallerID(r)
	if err != nil {
		RespondError(w, err)
		return
	}
	reportID, err := URLParamUUID(r, "reportID")
	if err != nil {
		RespondError(w, err)
		return
	}

	var input service.ResolveInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondError(w, errInvalidBody())
		return
	}

	if err := h.sanctionSvc.ResolveReport(r.Context(), adminID, reportID, input); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"status": "resolved"})
}

// Dismiss handles POST /admin/reports/{reportID}/dismiss.
func (h *AdminHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	reportID, err := URLParamUUID(r, "reportID")
	if err != nil {
		RespondError(w, err)
		return
	}
	if err := h.sanctionSvc.DismissReport(r.Context(), reportID); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]string{"status": "dismissed"})
}

// Escalate handles POST /admin/reports/{reportID}/escalate.
func (h *AdminHandler) Escalate(w http.ResponseWriter, r *http.Request) {
	reportID, err := URLParamUUID(r, "reportID")
	if err != nil {
		RespondError(w, err)
		return
	}
	report, err := h.sanctionSvc.EscalateReport(r.Context(), reportID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, report)
}
