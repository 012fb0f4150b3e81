package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/campus-coordinator/internal/booking"
	"github.com/example/campus-coordinator/internal/workflow"
)

// ResourceRepository captures the persistence operations needed by the service.
type ResourceRepository interface {
	CreateResource(ctx context.Context, resource Resource) error
	GetResource(ctx context.Context, id string) (Resource, error)
	UpdateResource(ctx context.Context, resource Resource) error
	ListResources(ctx context.Context) ([]Resource, error)
}

// ResourceService orchestrates validation, authorization, and usage rollups
// for the resource catalog.
type ResourceService struct {
	resources   ResourceRepository
	events      EventRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewResourceService constructs a resource service with the provided dependencies.
func NewResourceService(resources ResourceRepository, events EventRepository, idGenerator func() string, now func() time.Time) *ResourceService {
	return NewResourceServiceWithLogger(resources, events, idGenerator, now, nil)
}

// NewResourceServiceWithLogger constructs a resource service with a specified logger.
func NewResourceServiceWithLogger(resources ResourceRepository, events EventRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ResourceService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ResourceService{resources: resources, events: events, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *ResourceService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ResourceService", operation, attrs...)
}

// CreateResource validates input and persists a new resource for administrators.
func (s *ResourceService) CreateResource(ctx context.Context, params CreateResourceParams) (resource Resource, err error) {
	if s == nil {
		err = fmt.Errorf("ResourceService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateResource",
		"actor_id", params.Actor.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create resource", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("resource_id", resource.ID).InfoContext(ctx, "resource created")
	}()

	if !CanManageCatalog(params.Actor) {
		err = ErrUnauthorized
		return
	}

	vErr := validateResourceInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	status := params.Input.MaintenanceStatus
	if status == "" {
		status = ResourceAvailable
	}

	resource = Resource{
		ID:                s.idGenerator(),
		Name:              strings.TrimSpace(params.Input.Name),
		Type:              strings.TrimSpace(params.Input.Type),
		TotalCapacity:     params.Input.TotalCapacity,
		Description:       normalizeOptionalString(params.Input.Description),
		MaintenanceStatus: status,
		CreatedAt:         s.now(),
	}
	resource.UpdatedAt = resource.CreatedAt

	if s.resources == nil {
		return
	}

	if err = s.resources.CreateResource(ctx, resource); err != nil {
		err = mapEventRepoError(err)
		resource = Resource{}
		return
	}

	return
}

// UpdateResource validates input and updates an existing resource for administrators.
func (s *ResourceService) UpdateResource(ctx context.Context, params UpdateResourceParams) (resource Resource, err error) {
	if s == nil {
		err = fmt.Errorf("ResourceService is nil")
		return
	}
	if s.resources == nil {
		err = fmt.Errorf("resource repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateResource",
		"actor_id", params.Actor.UserID,
		"resource_id", params.ResourceID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update resource", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "resource updated")
	}()

	if !CanManageCatalog(params.Actor) {
		err = ErrUnauthorized
		return
	}

	var existing Resource
	existing, err = s.resources.GetResource(ctx, params.ResourceID)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	vErr := validateResourceInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated := existing
	updated.Name = strings.TrimSpace(params.Input.Name)
	updated.Type = strings.TrimSpace(params.Input.Type)
	updated.TotalCapacity = params.Input.TotalCapacity
	updated.Description = normalizeOptionalString(params.Input.Description)
	if params.Input.MaintenanceStatus != "" {
		updated.MaintenanceStatus = params.Input.MaintenanceStatus
	}
	updated.UpdatedAt = s.now()

	if err = s.resources.UpdateResource(ctx, updated); err != nil {
		err = mapEventRepoError(err)
		return
	}

	resource = updated
	return
}

// GetResource retrieves one resource from the catalog.
func (s *ResourceService) GetResource(ctx context.Context, id string) (Resource, error) {
	if s == nil {
		return Resource{}, fmt.Errorf("ResourceService is nil")
	}
	if s.resources == nil {
		return Resource{}, fmt.Errorf("resource repository not configured")
	}

	resource, err := s.resources.GetResource(ctx, id)
	if err != nil {
		return Resource{}, mapEventRepoError(err)
	}
	return resource, nil
}

// ListResources returns the resource catalog for any authenticated user,
// ordered by name.
func (s *ResourceService) ListResources(ctx context.Context, actor Actor) (resources []Resource, err error) {
	if s == nil {
		err = fmt.Errorf("ResourceService is nil")
		return
	}
	if s.resources == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListResources",
		"actor_id", actor.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list resources", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(resources)).InfoContext(ctx, "resources listed")
	}()

	var raw []Resource
	raw, err = s.resources.ListResources(ctx)
	if err != nil {
		return
	}

	resources = make([]Resource, len(raw))
	copy(resources, raw)

	sort.Slice(resources, func(i, j int) bool {
		if strings.EqualFold(resources[i].Name, resources[j].Name) {
			return resources[i].ID < resources[j].ID
		}
		return strings.ToLower(resources[i].Name) < strings.ToLower(resources[j].Name)
	})

	return
}

// GetResourceUsage rolls up current demand against a resource's pool.
// Only events in execution consume resources; approved-but-unstarted
// requests hold nothing yet.
func (s *ResourceService) GetResourceUsage(ctx context.Context, actor Actor, resourceID string) (usage ResourceUsage, err error) {
	if s == nil {
		err = fmt.Errorf("ResourceService is nil")
		return
	}
	if s.resources == nil {
		err = fmt.Errorf("resource repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "GetResourceUsage",
		"actor_id", actor.UserID,
		"resource_id", resourceID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to compute resource usage", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("used", usage.Used, "total", usage.Total).InfoContext(ctx, "resource usage computed")
	}()

	var resource Resource
	resource, err = s.resources.GetResource(ctx, resourceID)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	demands, err := s.runningDemands(ctx)
	if err != nil {
		return
	}

	rolled := booking.UsageFor(demands, resourceID, resource.TotalCapacity)
	usage = ResourceUsage{
		ResourceID: resourceID,
		Used:       rolled.Used,
		Total:      rolled.Total,
		Percent:    rolled.Percent(),
		Remaining:  rolled.Remaining(),
		Critical:   rolled.Critical(),
	}
	return
}

// CheckResourceCapacity verifies that a requested count fits within the
// resource's total capacity. The check is static: current demand is
// surfaced through GetResourceUsage as an informational rollup and is
// never enforced here.
func (s *ResourceService) CheckResourceCapacity(ctx context.Context, actor Actor, resourceID string, count int) (err error) {
	if s == nil {
		return fmt.Errorf("ResourceService is nil")
	}
	if s.resources == nil {
		return fmt.Errorf("resource repository not configured")
	}

	logger := s.loggerWith(ctx, "CheckResourceCapacity",
		"actor_id", actor.UserID,
		"resource_id", resourceID,
		"count", count,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "resource capacity check failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "resource capacity check passed")
	}()

	if count < 0 {
		vErr := &ValidationError{}
		vErr.add("count", "count must not be negative")
		err = vErr
		return
	}

	resource, err := s.resources.GetResource(ctx, resourceID)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}
	if count > resource.TotalCapacity {
		err = ErrCapacityExceeded
		return
	}
	return
}

func (s *ResourceService) runningDemands(ctx context.Context) ([]booking.Demand, error) {
	if s.events == nil {
		return nil, nil
	}

	events, err := s.events.ListEvents(ctx, EventRepositoryFilter{
		Statuses: []workflow.Status{workflow.StatusRunning},
	})
	if err != nil {
		if isNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}

	var demands []booking.Demand
	for _, event := range events {
		for _, allocation := range event.MandatoryResources {
			demands = append(demands, booking.Demand{
				EventID:    event.ID,
				ResourceID: allocation.ResourceID,
				Count:      allocation.Count,
			})
		}
		for _, allocation := range event.OptionalResources {
			demands = append(demands, booking.Demand{
				EventID:    event.ID,
				ResourceID: allocation.ResourceID,
				Count:      allocation.Count,
			})
		}
	}
	return demands, nil
}

func validateResourceInput(input ResourceInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if strings.TrimSpace(input.Type) == "" {
		vErr.add("type", "type is required")
	}
	if input.TotalCapacity <= 0 {
		vErr.add("total_capacity", "total capacity must be positive")
	}
	switch input.MaintenanceStatus {
	case "", ResourceAvailable, ResourceUnderMaintenance, ResourceRetired:
	default:
		vErr.add("maintenance_status", "unknown maintenance status")
	}

	return vErr
}
