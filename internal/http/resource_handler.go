package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/campus-coordinator/internal/application"
)

type resourceService interface {
	CreateResource(ctx context.Context, params application.CreateResourceParams) (application.Resource, error)
	UpdateResource(ctx context.Context, params application.UpdateResourceParams) (application.Resource, error)
	GetResource(ctx context.Context, id string) (application.Resource, error)
	ListResources(ctx context.Context, actor application.Actor) ([]application.Resource, error)
	GetResourceUsage(ctx context.Context, actor application.Actor, resourceID string) (application.ResourceUsage, error)
	CheckResourceCapacity(ctx context.Context, actor application.Actor, resourceID string, count int) error
}

// ResourceHandler exposes the resource catalog and usage rollups over HTTP.
type ResourceHandler struct {
	service   resourceService
	responder responder
	logger    *slog.Logger
}

// NewResourceHandler constructs a resource handler.
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

// Create handles POST /resources.
func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	actor, _ := ActorFromContext(r.Context())

	var req resourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "actor_id", actor.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode resource request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "actor_id", actor.UserID)

	resource, err := h.service.CreateResource(r.Context(), application.CreateResourceParams{
		Actor: actor,
		Input: req.toInput(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "resource creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("resource_id", resource.ID).InfoContext(r.Context(), "resource created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, resourceResponse{Resource: toResourceDTO(resource)})
}

// Update handles PUT /resources/{resourceID}.
func (h *ResourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resourceID := chi.URLParam(r, "resourceID")
	if strings.TrimSpace(resourceID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	actor, _ := ActorFromContext(r.Context())

	var req resourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "actor_id", actor.UserID, "resource_id", resourceID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode resource update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "actor_id", actor.UserID, "resource_id", resourceID)

	resource, err := h.service.UpdateResource(r.Context(), application.UpdateResourceParams{
		Actor:      actor,
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

// List handles GET /resources.
func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	actor, _ := ActorFromContext(r.Context())
	logger := h.log(r.Context(), "List", "actor_id", actor.UserID)

	resources, err := h.service.ListResources(r.Context(), actor)
	if err != nil {
		logger.ErrorContext(r.Context(), "resource list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(resources)).InfoContext(r.Context(), "resources listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listResourcesResponse{Resources: toResourceDTOs(resources)})
}

// Get handles GET /resources/{resourceID}.
func (h *ResourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resourceID := chi.URLParam(r, "resourceID")
	if strings.TrimSpace(resourceID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	resource, err := h.service.GetResource(r.Context(), resourceID)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, resourceResponse{Resource: toResourceDTO(resource)})
}

// Usage handles GET /resources/{resourceID}/usage.
func (h *ResourceHandler) Usage(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resourceID := chi.URLParam(r, "resourceID")
	if strings.TrimSpace(resourceID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	actor, _ := ActorFromContext(r.Context())
	logger := h.log(r.Context(), "Usage", "actor_id", actor.UserID, "resource_id", resourceID)

	usage, err := h.service.GetResourceUsage(r.Context(), actor, resourceID)
	if err != nil {
		logger.ErrorContext(r.Context(), "resource usage failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("used", usage.Used, "total", usage.Total).InfoContext(r.Context(), "resource usage computed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, usageResponse{Usage: toUsageDTO(usage)})
}

// Capacity handles GET /resources/{resourceID}/capacity?count=N.
func (h *ResourceHandler) Capacity(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resourceID := chi.URLParam(r, "resourceID")
	if strings.TrimSpace(resourceID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResourceID)
		return
	}

	count, err := strconv.Atoi(r.URL.Query().Get("count"))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidCount)
		return
	}

	actor, _ := ActorFromContext(r.Context())
	logger := h.log(r.Context(), "Capacity", "actor_id", actor.UserID, "resource_id", resourceID, "count", count)

	if err := h.service.CheckResourceCapacity(r.Context(), actor, resourceID, count); err != nil {
		logger.ErrorContext(r.Context(), "resource capacity check failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "resource capacity check passed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, capacityResponse{
		ResourceID: resourceID,
		Requested:  count,
		Fits:       true,
	})
}

type resourceRequest struct {
	Name              string  `json:"name"`
	Type              string  `json:"type"`
	TotalCapacity     int     `json:"total_capacity"`
	Description       *string `json:"description"`
	MaintenanceStatus string  `json:"maintenance_status"`
}

func (r resourceRequest) toInput() application.ResourceInput {
	return application.ResourceInput{
		Name:              strings.TrimSpace(r.Name),
		Type:              strings.TrimSpace(r.Type),
		TotalCapacity:     r.TotalCapacity,
		Description:       r.Description,
		MaintenanceStatus: strings.TrimSpace(r.MaintenanceStatus),
	}
}

type resourceResponse struct {
	Resource resourceDTO `json:"resource"`
}

type listResourcesResponse struct {
	Resources []resourceDTO `json:"resources"`
}

type usageResponse struct {
	Usage usageDTO `json:"usage"`
}

type capacityResponse struct {
	ResourceID string `json:"resource_id"`
	Requested  int    `json:"requested"`
	Fits       bool   `json:"fits"`
}

type resourceDTO struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Type              string  `json:"type"`
	TotalCapacity     int     `json:"total_capacity"`
	Description       *string `json:"description,omitempty"`
	MaintenanceStatus string  `json:"maintenance_status"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}

type usageDTO struct {
	ResourceID string `json:"resource_id"`
	Used       int    `json:"used"`
	Total      int    `json:"total"`
	Percent    int    `json:"percent"`
	Remaining  int    `json:"remaining"`
	Critical   bool   `json:"critical"`
}

func toResourceDTO(resource application.Resource) resourceDTO {
	return resourceDTO{
		ID:                resource.ID,
		Name:              resource.Name,
		Type:              resource.Type,
		TotalCapacity:     resource.TotalCapacity,
		Description:       resource.Description,
		MaintenanceStatus: resource.MaintenanceStatus,
		CreatedAt:         formatTimestamp(resource.CreatedAt),
		UpdatedAt:         formatTimestamp(resource.UpdatedAt),
	}
}

func toResourceDTOs(resources []application.Resource) []resourceDTO {
	if len(resources) == 0 {
		return nil
	}
	out := make([]resourceDTO, 0, len(resources))
	for _, resource := range resources {
		out = append(out, toResourceDTO(resource))
	}
	return out
}

func toUsageDTO(usage application.ResourceUsage) usageDTO {
	return usageDTO{
		ResourceID: usage.ResourceID,
		Used:       usage.Used,
		Total:      usage.Total,
		Percent:    usage.Percent,
		Remaining:  usage.Remaining,
		Critical:   usage.Critical,
	}
}
