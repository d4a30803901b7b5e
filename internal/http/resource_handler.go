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
	"github.com/example/workplace-booking/internal/timeutil"
)

type resourceService interface {
	CreateResource(ctx context.Context, params application.CreateResourceParams) (persistence.Resource, error)
	UpdateResource(ctx context.Context, params application.UpdateResourceParams) (persistence.Resource, error)
	DeleteResource(ctx context.Context, principal application.Principal, resourceID string) error
	ListResources(ctx context.Context, principal application.Principal, mapID string) ([]persistence.Resource, error)
	ListResourceStatuses(ctx context.Context, principal application.Principal, mapID string, date time.Time) ([]application.ResourceStatusView, error)
}

type ResourceHandler struct {
	service   resourceService
	responder responder
	logger    *slog.Logger
}

func NewResourceHandler(service resourceService, logger *slog.Logger) *ResourceHandler {
	base := defaultLogger(logger)
	return &ResourceHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ResourceHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ResourceHandler", operation, attrs...)
}

func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req resourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode resource request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID, "map_id", req.MapID)

	resource, err := h.service.CreateResource(r.Context(), application.CreateResourceParams{
		Principal: principal,
		Input:     req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "resource creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("resource_id", resource.ID).InfoContext(r.Context(), "resource created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, resourceResponse{Resource: toResourceDTO(resource)})
}

func (h *ResourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resourceID := strings.TrimSpace(mux.Vars(r)["id"])
	if resourceID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req resourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "resource_id", resourceID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode resource update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "resource_id", resourceID)

	resource, err := h.service.UpdateResource(r.Context(), application.UpdateResourceParams{
		Principal:  principal,
		ResourceID: resourceID,
		Input:      req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "resource update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "resource updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, resourceResponse{Resource: toResourceDTO(resource)})
}

func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resourceID := strings.TrimSpace(mux.Vars(r)["id"])
	if resourceID == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "resource_id", resourceID)

	if err := h.service.DeleteResource(r.Context(), principal, resourceID); err != nil {
		logger.ErrorContext(r.Context(), "resource delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "resource deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// ListForMap returns the resources on a floor map. With a date query
// parameter each resource carries its display status for that date.
func (h *ResourceHandler) ListForMap(w http.ResponseWriter, r *http.Request) {
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
	logger := h.log(r.Context(), "ListForMap", "principal_id", principal.UserID, "map_id", mapID)

	dateValue := strings.TrimSpace(r.URL.Query().Get("date"))
	if dateValue == "" {
		resources, err := h.service.ListResources(r.Context(), principal, mapID)
		if err != nil {
			logger.ErrorContext(r.Context(), "resource list failed", "error", err, "error_kind", application.ErrorKind(err))
			h.responder.handleServiceError(r.Context(), w, err)
			return
		}
		logger.With("result_count", len(resources)).InfoContext(r.Context(), "resources listed")
		h.responder.writeJSON(r.Context(), w, http.StatusOK, listResourcesResponse{Resources: toResourceDTOs(resources)})
		return
	}

	date, err := timeutil.ParseDate(dateValue)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDateParam)
		return
	}

	views, err := h.service.ListResourceStatuses(r.Context(), principal, mapID, date)
	if err != nil {
		logger.ErrorContext(r.Context(), "resource status list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(views)).InfoContext(r.Context(), "resource statuses listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listResourceStatusesResponse{
		Date:      timeutil.DateKey(date),
		Resources: toResourceStatusDTOs(views),
	})
}

type resourceRequest struct {
	MapID    string `json:"map_id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Status   string `json:"status,omitempty"`
	Capacity int    `json:"capacity,omitempty"`
}

func (r resourceRequest) toInput() application.ResourceInput {
	return application.ResourceInput{
		MapID:    strings.TrimSpace(r.MapID),
		Name:     strings.TrimSpace(r.Name),
		Type:     persistence.ResourceType(strings.TrimSpace(r.Type)),
		Status:   persistence.ResourceStatus(strings.TrimSpace(r.Status)),
		Capacity: r.Capacity,
	}
}

type resourceResponse struct {
	Resource resourceDTO `json:"resource"`
}

type listResourcesResponse struct {
	Resources []resourceDTO `json:"resources"`
}

type listResourceStatusesResponse struct {
	Date      string              `json:"date"`
	Resources []resourceStatusDTO `json:"resources"`
}

type resourceDTO struct {
	ID        string `json:"id"`
	MapID     string `json:"map_id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	Capacity  int    `json:"capacity,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type resourceStatusDTO struct {
	resourceDTO
	DisplayStatus string `json:"display_status"`
}

func toResourceDTO(resource persistence.Resource) resourceDTO {
	return resourceDTO{
		ID:        resource.ID,
		MapID:     resource.MapID,
		Name:      resource.Name,
		Type:      string(resource.Type),
		Status:    string(resource.Status),
		Capacity:  resource.Capacity,
		CreatedAt: resource.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: resource.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toResourceDTOs(resources []persistence.Resource) []resourceDTO {
	if len(resources) == 0 {
		return nil
	}
	out := make([]resourceDTO, 0, len(resources))
	for _, resource := range resources {
		out = append(out, toResourceDTO(resource))
	}
	return out
}

func toResourceStatusDTOs(views []application.ResourceStatusView) []resourceStatusDTO {
	if len(views) == 0 {
		return nil
	}
	out := make([]resourceStatusDTO, 0, len(views))
	for _, view := range views {
		out = append(out, resourceStatusDTO{
			resourceDTO:   toResourceDTO(view.Resource),
			DisplayStatus: view.Status,
		})
	}
	return out
}
