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

type floorMapService interface {
	CreateFloorMap(ctx context.Context, params application.CreateFloorMapParams) (persistence.FloorMap, error)
	UpdateFloorMap(ctx context.Context, params application.UpdateFloorMapParams) (persistence.FloorMap, error)
	DeleteFloorMap(ctx context.Context, principal application.Principal, mapID string) error
	ListFloorMaps(ctx context.Context, principal application.Principal) ([]persistence.FloorMap, error)
}

type FloorMapHandler struct {
	service   floorMapService
	responder responder
	logger    *slog.Logger
}

func NewFloorMapHandler(service floorMapService, logger *slog.Logger) *FloorMapHandler {
	base := defaultLogger(logger)
	return &FloorMapHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *FloorMapHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "FloorMapHandler", operation, attrs...)
}

func (h *FloorMapHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req floorMapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode floor map request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	floorMap, err := h.service.CreateFloorMap(r.Context(), application.CreateFloorMapParams{
		Principal: principal,
		Input:     application.FloorMapInput{Name: strings.TrimSpace(req.Name)},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "floor map creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("map_id", floorMap.ID).InfoContext(r.Context(), "floor map created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, floorMapResponse{FloorMap: toFloorMapDTO(floorMap)})
}

func (h *FloorMapHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	mapID := strings.TrimSpace(mux.Vars(r)["id"])
	if mapID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMapID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req floorMapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "map_id", mapID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode floor map update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "map_id", mapID)

	floorMap, err := h.service.UpdateFloorMap(r.Context(), application.UpdateFloorMapParams{
		Principal: principal,
		MapID:     mapID,
		Input:     application.FloorMapInput{Name: strings.TrimSpace(req.Name)},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "floor map update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "floor map updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, floorMapResponse{FloorMap: toFloorMapDTO(floorMap)})
}

func (h *FloorMapHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	mapID := strings.TrimSpace(mux.Vars(r)["id"])
	if mapID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidMapID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "map_id", mapID)

	if err := h.service.DeleteFloorMap(r.Context(), principal, mapID); err != nil {
		logger.ErrorContext(r.Context(), "floor map delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "floor map deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *FloorMapHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)

	floorMaps, err := h.service.ListFloorMaps(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "floor map list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(floorMaps)).InfoContext(r.Context(), "floor maps listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listFloorMapsResponse{FloorMaps: toFloorMapDTOs(floorMaps)})
}

type floorMapRequest struct {
	Name string `json:"name"`
}

type floorMapResponse struct {
	FloorMap floorMapDTO `json:"map"`
}

type listFloorMapsResponse struct {
	FloorMaps []floorMapDTO `json:"maps"`
}

type floorMapDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toFloorMapDTO(floorMap persistence.FloorMap) floorMapDTO {
	return floorMapDTO{
		ID:        floorMap.ID,
		Name:      floorMap.Name,
		CreatedAt: floorMap.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: floorMap.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toFloorMapDTOs(floorMaps []persistence.FloorMap) []floorMapDTO {
	if len(floorMaps) == 0 {
		return nil
	}
	out := make([]floorMapDTO, 0, len(floorMaps))
	for _, floorMap := range floorMaps {
		out = append(out, toFloorMapDTO(floorMap))
	}
	return out
}
