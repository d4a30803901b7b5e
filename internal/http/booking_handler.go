package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/example/workplace-booking/internal/application"
	"github.com/example/workplace-booking/internal/persistence"
)

type bookingService interface {
	Create(ctx context.Context, params application.CreateBookingParams) (persistence.Booking, error)
	Cancel(ctx context.Context, principal application.Principal, bookingID string) error
	List(ctx context.Context, params application.ListBookingsParams) ([]persistence.Booking, error)
}

type BookingHandler struct {
	service   bookingService
	responder responder
	logger    *slog.Logger
}

func NewBookingHandler(service bookingService, logger *slog.Logger) *BookingHandler {
	base := defaultLogger(logger)
	return &BookingHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *BookingHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BookingHandler", operation, attrs...)
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode booking request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create",
		"principal_id", principal.UserID,
		"resource_id", req.ResourceID,
		"date", req.Date,
	)

	booking, err := h.service.Create(r.Context(), application.CreateBookingParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "booking creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("booking_id", booking.ID).InfoContext(r.Context(), "booking created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, bookingResponse{Booking: toBookingDTO(booking)})
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bookingID := strings.TrimSpace(mux.Vars(r)["id"])
	if bookingID == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing booking id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBookingID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "booking_id", bookingID)

	if err := h.service.Cancel(r.Context(), principal, bookingID); err != nil {
		logger.ErrorContext(r.Context(), "booking cancellation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "booking cancelled")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	query := r.URL.Query()
	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)

	bookings, err := h.service.List(r.Context(), application.ListBookingsParams{
		Principal:  principal,
		ResourceID: strings.TrimSpace(query.Get("resource_id")),
		UserID:     strings.TrimSpace(query.Get("user_id")),
		Date:       strings.TrimSpace(query.Get("date")),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "booking list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(bookings)).InfoContext(r.Context(), "bookings listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listBookingsResponse{Bookings: toBookingDTOs(bookings)})
}

type timeSlotDTO struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type bookingRequest struct {
	ResourceID    string       `json:"resource_id"`
	UserID        string       `json:"user_id,omitempty"`
	Date          string       `json:"date"`
	Recurring     bool         `json:"recurring,omitempty"`
	RecurringDays []string     `json:"recurring_days,omitempty"`
	Slot          *timeSlotDTO `json:"slot,omitempty"`
}

func (r bookingRequest) toInput() application.BookingInput {
	input := application.BookingInput{
		ResourceID:    strings.TrimSpace(r.ResourceID),
		UserID:        strings.TrimSpace(r.UserID),
		Date:          strings.TrimSpace(r.Date),
		Recurring:     r.Recurring,
		RecurringDays: r.RecurringDays,
	}
	if r.Slot != nil {
		input.Slot = &persistence.TimeSlot{
			Start: strings.TrimSpace(r.Slot.Start),
			End:   strings.TrimSpace(r.Slot.End),
		}
	}
	return input
}

type bookingResponse struct {
	Booking bookingDTO `json:"booking"`
}

type listBookingsResponse struct {
	Bookings []bookingDTO `json:"bookings"`
}

type bookingDTO struct {
	ID            string       `json:"id"`
	ResourceID    string       `json:"resource_id"`
	UserID        string       `json:"user_id"`
	Date          string       `json:"date"`
	Recurring     bool         `json:"recurring,omitempty"`
	RecurringDays []string     `json:"recurring_days,omitempty"`
	Slot          *timeSlotDTO `json:"slot,omitempty"`
	CreatedAt     string       `json:"created_at"`
}

func toBookingDTO(booking persistence.Booking) bookingDTO {
	dto := bookingDTO{
		ID:            booking.ID,
		ResourceID:    booking.ResourceID,
		UserID:        booking.UserID,
		Date:          booking.Date,
		Recurring:     booking.Recurring,
		RecurringDays: booking.RecurringDays,
		CreatedAt:     booking.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if booking.Slot != nil {
		dto.Slot = &timeSlotDTO{Start: booking.Slot.Start, End: booking.Slot.End}
	}
	return dto
}

func toBookingDTOs(bookings []persistence.Booking) []bookingDTO {
	if len(bookings) == 0 {
		return nil
	}
	out := make([]bookingDTO, 0, len(bookings))
	for _, booking := range bookings {
		out = append(out, toBookingDTO(booking))
	}
	return out
}
