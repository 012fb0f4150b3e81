package persistence

import "context"

// EventFilter narrows event queries.
type EventFilter struct {
	VenueID     string
	RequesterID string
	Department  string
	School      string
	Statuses    []string
}

// EventRepository stores event request aggregates. UpdateEvent enforces
// optimistic concurrency: the stored version must match the incoming
// aggregate's Version, otherwise ErrStaleVersion is returned; on success the
// stored version is incremented.
type EventRepository interface {
	CreateEvent(ctx context.Context, event Event) error
	UpdateEvent(ctx context.Context, event Event) (Event, error)
	GetEvent(ctx context.Context, id string) (Event, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]Event, error)
}

// VenueRepository exposes CRUD operations for venues.
type VenueRepository interface {
	CreateVenue(ctx context.Context, venue Venue) error
	UpdateVenue(ctx context.Context, venue Venue) error
	GetVenue(ctx context.Context, id string) (Venue, error)
	ListVenues(ctx context.Context) ([]Venue, error)
}

// ResourceRepository exposes CRUD operations for shared resources.
type ResourceRepository interface {
	CreateResource(ctx context.Context, resource Resource) error
	UpdateResource(ctx context.Context, resource Resource) error
	GetResource(ctx context.Context, id string) (Resource, error)
	ListResources(ctx context.Context) ([]Resource, error)
}
