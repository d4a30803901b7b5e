package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/example/workplace-booking/internal/application"
	"github.com/example/workplace-booking/internal/availability"
	"github.com/example/workplace-booking/internal/persistence"
	"github.com/example/workplace-booking/internal/timeutil"
)

type availabilityService interface {
	ResourceAvailable(ctx context.Context, resourceID string, date time.Time, slot *persistence.TimeSlot) (bool, error)
	ResourceStatus(ctx context.Context, resourceID string, date time.Time) (availability.Status, error)
	CanUserBookDesk(ctx context.Context, userID string, isAdmin bool, date time.Time) (bool, error)
}

// AvailabilityHandler serves the read-only availability queries backing
// booking forms.
type AvailabilityHandler struct {
	service   availabilityService
	responder responder
	logger    *slog.Logger
}

func NewAvailabilityHandler(service availabilityService, logger *slog.Logger) *AvailabilityHandler {
	base := defaultLogger(logger)
	return &AvailabilityHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AvailabilityHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AvailabilityHandler", operation, attrs...)
}

// Get answers whether a resource can be booked on a date, optionally at a
// time slot, and reports its display status.
func (h *AvailabilityHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resourceID := strings.TrimSpace(mux.Vars(r)["id"])
	if resourceID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	query := r.URL.Query()
	date, err := timeutil.ParseDate(strings.TrimSpace(query.Get("date")))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDateParam)
		return
	}

	start := strings.TrimSpace(query.Get("start"))
	end := strings.TrimSpace(query.Get("end"))
	if (start == "") != (end == "") {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingSlotParams)
		return
	}
	var slot *persistence.TimeSlot
	if start != "" {
		slot = &persistence.TimeSlot{Start: start, End: end}
	}

	logger := h.log(r.Context(), "Get", "resource_id", resourceID, "date", query.Get("date"))

	free, err := h.service.ResourceAvailable(r.Context(), resourceID, date, slot)
	if err != nil {
		logger.ErrorContext(r.Context(), "availability query failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	status, err := h.service.ResourceStatus(r.Context(), resourceID, date)
	if err != nil && !isNotFound(err) {
		logger.ErrorContext(r.Context(), "status query failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, availabilityResponse{
		ResourceID: resourceID,
		Date:       timeutil.DateKey(date),
		Available:  free,
		Status:     string(status),
	})
}

// CanBookDesk answers whether the principal may take another desk on a date.
func (h *AvailabilityHandler) CanBookDesk(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	date, err := timeutil.ParseDate(strings.TrimSpace(r.URL.Query().Get("date")))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDateParam)
		return
	}

	logger := h.log(r.Context(), "CanBookDesk", "principal_id", principal.UserID)

	can, err := h.service.CanUserBookDesk(r.Context(), principal.UserID, principal.IsAdmin, date)
	if err != nil {
		logger.ErrorContext(r.Context(), "desk eligibility query failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, deskEligibilityResponse{
		Date:    timeutil.DateKey(date),
		CanBook: can,
	})
}

// A missing resource is reported as unavailable with no status rather than
// as a 404, matching the booking service's availability contract.
func isNotFound(err error) bool {
	return errors.Is(err, application.ErrNotFound)
}

type availabilityResponse struct {
	ResourceID string `json:"resource_id"`
	Date       string `json:"date"`
	Available  bool   `json:"available"`
	Status     string `json:"status,omitempty"`
}

type deskEligibilityResponse struct {
	Date    string `json:"date"`
	CanBook bool   `json:"can_book"`
}
