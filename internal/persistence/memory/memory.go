// Package memory provides an in-memory persistence implementation used by
// tests and local development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/campus-coordinator/internal/persistence"
)

// Storage holds every aggregate behind a single lock. Reads return clones so
// callers can never mutate stored state in place.
type Storage struct {
	mu        sync.RWMutex
	events    map[string]persistence.Event
	venues    map[string]persistence.Venue
	resources map[string]persistence.Resource
}

// Open returns an empty Storage.
func Open() *Storage {
	return &Storage{
		events:    make(map[string]persistence.Event),
		venues:    make(map[string]persistence.Venue),
		resources: make(map[string]persistence.Resource),
	}
}

// Close releases resources held by the storage. No-op for the in-memory
// implementation.
func (s *Storage) Close() error {
	return nil
}

// Migrate initialises the storage. No-op for the in-memory implementation.
func (s *Storage) Migrate(context.Context) error {
	return nil
}

// --- EventRepository implementation ---

// CreateEvent stores a new event aggregate at version 1.
func (s *Storage) CreateEvent(ctx context.Context, event persistence.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[event.ID]; ok {
		return persistence.ErrDuplicate
	}

	event.Version = 1
	s.events[event.ID] = cloneEvent(event)
	return nil
}

// UpdateEvent replaces an event aggregate when the caller's version matches
// the stored one, incrementing the version on success.
func (s *Storage) UpdateEvent(ctx context.Context, event persistence.Event) (persistence.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.events[event.ID]
	if !ok {
		return persistence.Event{}, persistence.ErrNotFound
	}
	if existing.Version != event.Version {
		return persistence.Event{}, persistence.ErrStaleVersion
	}

	event.CreatedAt = existing.CreatedAt
	event.Version = existing.Version + 1
	s.events[event.ID] = cloneEvent(event)
	return cloneEvent(event), nil
}

// GetEvent retrieves an event by ID.
func (s *Storage) GetEvent(ctx context.Context, id string) (persistence.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, ok := s.events[id]
	if !ok {
		return persistence.Event{}, persistence.ErrNotFound
	}
	return cloneEvent(event), nil
}

// ListEvents returns events matching the filter ordered by CreatedAt
// ascending, ties broken by ID.
func (s *Storage) ListEvents(ctx context.Context, filter persistence.EventFilter) ([]persistence.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]persistence.Event, 0, len(s.events))
	for _, event := range s.events {
		if !matchesEventFilter(event, filter) {
			continue
		}
		events = append(events, cloneEvent(event))
	}

	sort.Slice(events, func(i, j int) bool {
		if events[i].CreatedAt.Equal(events[j].CreatedAt) {
			return events[i].ID < events[j].ID
		}
		return events[i].CreatedAt.Before(events[j].CreatedAt)
	})

	return events, nil
}

// --- VenueRepository implementation ---

// CreateVenue stores a new venue.
func (s *Storage) CreateVenue(ctx context.Context, venue persistence.Venue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.venues[venue.ID]; ok {
		return persistence.ErrDuplicate
	}
	if venue.Capacity <= 0 {
		return persistence.ErrConstraintViolation
	}

	s.venues[venue.ID] = cloneVenue(venue)
	return nil
}

// UpdateVenue updates an existing venue.
func (s *Storage) UpdateVenue(ctx context.Context, venue persistence.Venue) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.venues[venue.ID]
	if !ok {
		return persistence.ErrNotFound
	}
	if venue.Capacity <= 0 {
		return persistence.ErrConstraintViolation
	}

	venue.CreatedAt = existing.CreatedAt
	s.venues[venue.ID] = cloneVenue(venue)
	return nil
}

// GetVenue retrieves a venue by ID.
func (s *Storage) GetVenue(ctx context.Context, id string) (persistence.Venue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	venue, ok := s.venues[id]
	if !ok {
		return persistence.Venue{}, persistence.ErrNotFound
	}
	return cloneVenue(venue), nil
}

// ListVenues returns all venues ordered by name then ID.
func (s *Storage) ListVenues(ctx context.Context) ([]persistence.Venue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	venues := make([]persistence.Venue, 0, len(s.venues))
	for _, venue := range s.venues {
		venues = append(venues, cloneVenue(venue))
	}

	sort.Slice(venues, func(i, j int) bool {
		if venues[i].Name == venues[j].Name {
			return venues[i].ID < venues[j].ID
		}
		return venues[i].Name < venues[j].Name
	})

	return venues, nil
}

// --- ResourceRepository implementation ---

// CreateResource stores a new resource.
func (s *Storage) CreateResource(ctx context.Context, resource persistence.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.resources[resource.ID]; ok {
		return persistence.ErrDuplicate
	}
	if resource.TotalCapacity <= 0 {
		return persistence.ErrConstraintViolation
	}

	s.resources[resource.ID] = cloneResource(resource)
	return nil
}

// UpdateResource updates an existing resource.
func (s *Storage) UpdateResource(ctx context.Context, resource persistence.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.resources[resource.ID]
	if !ok {
		return persistence.ErrNotFound
	}
	if resource.TotalCapacity <= 0 {
		return persistence.ErrConstraintViolation
	}

	resource.CreatedAt = existing.CreatedAt
	s.resources[resource.ID] = cloneResource(resource)
	return nil
}

// GetResource retrieves a resource by ID.
func (s *Storage) GetResource(ctx context.Context, id string) (persistence.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resource, ok := s.resources[id]
	if !ok {
		return persistence.Resource{}, persistence.ErrNotFound
	}
	return cloneResource(resource), nil
}

// ListResources returns all resources ordered by name then ID.
func (s *Storage) ListResources(ctx context.Context) ([]persistence.Resource, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resources := make([]persistence.Resource, 0, len(s.resources))
	for _, resource := range s.resources {
		resources = append(resources, cloneResource(resource))
	}

	sort.Slice(resources, func(i, j int) bool {
		if resources[i].Name == resources[j].Name {
			return resources[i].ID < resources[j].ID
		}
		return resources[i].Name < resources[j].Name
	})

	return resources, nil
}

// --- Helpers ---

func matchesEventFilter(event persistence.Event, filter persistence.EventFilter) bool {
	if filter.VenueID != "" {
		occupied := event.VenuePreference.VenueID
		if event.VenueID != nil {
			occupied = *event.VenueID
		}
		if occupied != filter.VenueID {
			return false
		}
	}
	if filter.RequesterID != "" && event.RequesterID != filter.RequesterID {
		return false
	}
	if filter.Department != "" && event.Department != filter.Department {
		return false
	}
	if filter.School != "" && event.School != filter.School {
		return false
	}
	if len(filter.Statuses) > 0 && !containsString(filter.Statuses, event.Status) {
		return false
	}
	return true
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

func cloneEvent(event persistence.Event) persistence.Event {
	out := event
	out.Description = cloneString(event.Description)
	out.VenueID = cloneString(event.VenueID)
	out.RejectionReason = cloneString(event.RejectionReason)
	out.PostEventSummary = cloneString(event.PostEventSummary)
	out.ActualParticipants = cloneInt(event.ActualParticipants)
	out.MarkedStartAt = cloneTime(event.MarkedStartAt)
	out.MarkedCompleteAt = cloneTime(event.MarkedCompleteAt)
	out.VenueReleasedAt = cloneTime(event.VenueReleasedAt)
	out.ResourcesReleasedAt = cloneTime(event.ResourcesReleasedAt)
	out.VenuePreference.PreferredFeatures = append([]string(nil), event.VenuePreference.PreferredFeatures...)
	out.MandatoryResources = append([]persistence.Allocation(nil), event.MandatoryResources...)
	out.OptionalResources = append([]persistence.Allocation(nil), event.OptionalResources...)
	out.ApprovalChain = append([]persistence.ChainEntry(nil), event.ApprovalChain...)
	out.ModificationRequests = append([]persistence.ModificationRequest(nil), event.ModificationRequests...)
	return out
}

func cloneVenue(venue persistence.Venue) persistence.Venue {
	out := venue
	out.Features = append([]string(nil), venue.Features...)
	out.Location = cloneString(venue.Location)
	return out
}

func cloneResource(resource persistence.Resource) persistence.Resource {
	out := resource
	out.Description = cloneString(resource.Description)
	return out
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
