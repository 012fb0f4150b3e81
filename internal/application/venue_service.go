package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/campus-coordinator/internal/workflow"
)

// VenueRepository captures the persistence operations needed by the service.
type VenueRepository interface {
	CreateVenue(ctx context.Context, venue Venue) error
	GetVenue(ctx context.Context, id string) (Venue, error)
	UpdateVenue(ctx context.Context, venue Venue) error
	ListVenues(ctx context.Context) ([]Venue, error)
}

// VenueService orchestrates validation, authorization, and persistence for
// the venue catalog. The event repository backs coordinator-scoped listings.
type VenueService struct {
	venues      VenueRepository
	events      EventRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewVenueService constructs a venue service with the provided dependencies.
func NewVenueService(venues VenueRepository, events EventRepository, idGenerator func() string, now func() time.Time) *VenueService {
	return NewVenueServiceWithLogger(venues, events, idGenerator, now, nil)
}

// NewVenueServiceWithLogger constructs a venue service with a specified logger.
func NewVenueServiceWithLogger(venues VenueRepository, events EventRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *VenueService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &VenueService{venues: venues, events: events, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *VenueService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "VenueService", operation, attrs...)
}

// CreateVenue validates input and persists a new venue for administrators.
func (s *VenueService) CreateVenue(ctx context.Context, params CreateVenueParams) (venue Venue, err error) {
	if s == nil {
		err = fmt.Errorf("VenueService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateVenue",
		"actor_id", params.Actor.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create venue", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("venue_id", venue.ID).InfoContext(ctx, "venue created")
	}()

	if !CanManageCatalog(params.Actor) {
		err = ErrUnauthorized
		return
	}

	vErr := validateVenueInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	venue = Venue{
		ID:        s.idGenerator(),
		Name:      strings.TrimSpace(params.Input.Name),
		Type:      strings.TrimSpace(params.Input.Type),
		Capacity:  params.Input.Capacity,
		Features:  normalizeFeatures(params.Input.Features),
		Location:  normalizeOptionalString(params.Input.Location),
		CreatedAt: s.now(),
	}
	venue.UpdatedAt = venue.CreatedAt

	if s.venues == nil {
		return
	}

	if err = s.venues.CreateVenue(ctx, venue); err != nil {
		err = mapEventRepoError(err)
		venue = Venue{}
		return
	}

	return
}

// UpdateVenue validates input and updates an existing venue for administrators.
func (s *VenueService) UpdateVenue(ctx context.Context, params UpdateVenueParams) (venue Venue, err error) {
	if s == nil {
		err = fmt.Errorf("VenueService is nil")
		return
	}
	if s.venues == nil {
		err = fmt.Errorf("venue repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateVenue",
		"actor_id", params.Actor.UserID,
		"venue_id", params.VenueID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update venue", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "venue updated")
	}()

	if !CanManageCatalog(params.Actor) {
		err = ErrUnauthorized
		return
	}

	var existing Venue
	existing, err = s.venues.GetVenue(ctx, params.VenueID)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	vErr := validateVenueInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated := existing
	updated.Name = strings.TrimSpace(params.Input.Name)
	updated.Type = strings.TrimSpace(params.Input.Type)
	updated.Capacity = params.Input.Capacity
	updated.Features = normalizeFeatures(params.Input.Features)
	updated.Location = normalizeOptionalString(params.Input.Location)
	updated.UpdatedAt = s.now()

	if err = s.venues.UpdateVenue(ctx, updated); err != nil {
		err = mapEventRepoError(err)
		return
	}

	venue = updated
	return
}

// GetVenue retrieves one venue from the catalog.
func (s *VenueService) GetVenue(ctx context.Context, id string) (Venue, error) {
	if s == nil {
		return Venue{}, fmt.Errorf("VenueService is nil")
	}
	if s.venues == nil {
		return Venue{}, fmt.Errorf("venue repository not configured")
	}

	venue, err := s.venues.GetVenue(ctx, id)
	if err != nil {
		return Venue{}, mapEventRepoError(err)
	}
	return venue, nil
}

// ListVenues returns the venue catalog ordered by name. Coordinators see
// only the venues referenced by their own event requests; every other role
// sees the full catalog.
func (s *VenueService) ListVenues(ctx context.Context, actor Actor) (venues []Venue, err error) {
	if s == nil {
		err = fmt.Errorf("VenueService is nil")
		return
	}
	if s.venues == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListVenues",
		"actor_id", actor.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list venues", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(venues)).InfoContext(ctx, "venues listed")
	}()

	var raw []Venue
	raw, err = s.venues.ListVenues(ctx)
	if err != nil {
		return
	}

	if actor.Role == workflow.RoleCoordinator {
		raw, err = s.venuesReferencedBy(ctx, actor, raw)
		if err != nil {
			return
		}
	}

	venues = make([]Venue, len(raw))
	copy(venues, raw)

	sort.Slice(venues, func(i, j int) bool {
		if strings.EqualFold(venues[i].Name, venues[j].Name) {
			return venues[i].ID < venues[j].ID
		}
		return strings.ToLower(venues[i].Name) < strings.ToLower(venues[j].Name)
	})

	return
}

// venuesReferencedBy keeps the venues occupied by the coordinator's own
// event requests, bound or merely preferred. A coordinator with no requests
// sees an empty catalog.
func (s *VenueService) venuesReferencedBy(ctx context.Context, actor Actor, catalog []Venue) ([]Venue, error) {
	if s.events == nil {
		return nil, nil
	}

	events, err := s.events.ListEvents(ctx, EventRepositoryFilter{RequesterID: actor.UserID})
	if err != nil {
		if isNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}

	referenced := make(map[string]struct{}, len(events))
	for _, event := range events {
		if id := occupiedVenueID(event); id != "" {
			referenced[id] = struct{}{}
		}
	}

	scoped := make([]Venue, 0, len(referenced))
	for _, venue := range catalog {
		if _, ok := referenced[venue.ID]; ok {
			scoped = append(scoped, venue)
		}
	}
	return scoped, nil
}

func validateVenueInput(input VenueInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if strings.TrimSpace(input.Type) == "" {
		vErr.add("type", "type is required")
	}
	if input.Capacity <= 0 {
		vErr.add("capacity", "capacity must be positive")
	}

	return vErr
}

func normalizeFeatures(features []string) []string {
	out := make([]string, 0, len(features))
	seen := make(map[string]struct{}, len(features))
	for _, feature := range features {
		trimmed := strings.TrimSpace(feature)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

func normalizeOptionalString(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
