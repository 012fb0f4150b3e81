package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/campus-coordinator/internal/application"
	"github.com/example/campus-coordinator/internal/persistence"
	"github.com/example/campus-coordinator/internal/workflow"
)

var (
	eventCounter    uint64
	venueCounter    uint64
	resourceCounter uint64
)

var referenceTime = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Actor fixtures ----------------------------

// CoordinatorActor returns a coordinator in the CSE department of the
// Engineering school.
func CoordinatorActor() application.Actor {
	return application.Actor{
		Role:       workflow.RoleCoordinator,
		UserID:     "user-coordinator",
		Department: "CSE",
		School:     "Engineering",
	}
}

// HODActor returns the department head matching CoordinatorActor's department.
func HODActor() application.Actor {
	return application.Actor{
		Role:       workflow.RoleHOD,
		UserID:     "user-hod",
		Department: "CSE",
		School:     "Engineering",
	}
}

// DeanActor returns the dean matching CoordinatorActor's school.
func DeanActor() application.Actor {
	return application.Actor{
		Role:       workflow.RoleDean,
		UserID:     "user-dean",
		Department: "Administration",
		School:     "Engineering",
	}
}

// HeadActor returns the institution head.
func HeadActor() application.Actor {
	return application.Actor{
		Role:       workflow.RoleHead,
		UserID:     "user-head",
		Department: "Administration",
		School:     "Administration",
	}
}

// AdminActor returns a system administrator.
func AdminActor() application.Actor {
	return application.Actor{
		Role:       workflow.RoleAdmin,
		UserID:     "user-admin",
		Department: "IT",
		School:     "Administration",
	}
}

// ----------------------------- Venue fixtures ----------------------------

// VenueFixture represents a deterministic venue record.
type VenueFixture struct {
	ID        string
	Name      string
	Type      string
	Capacity  int
	Features  []string
	Location  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// VenueOption configures the generated venue fixture.
type VenueOption func(*VenueFixture)

// NewVenueFixture returns a deterministic venue fixture with optional
// overrides.
func NewVenueFixture(opts ...VenueOption) VenueFixture {
	idx := atomic.AddUint64(&venueCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := VenueFixture{
		ID:        fmt.Sprintf("venue-%03d", idx),
		Name:      fmt.Sprintf("Venue %03d", idx),
		Type:      "Auditorium",
		Capacity:  200,
		Features:  []string{"projector"},
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithVenueID overrides the generated venue ID.
func WithVenueID(id string) VenueOption {
	return func(f *VenueFixture) {
		f.ID = id
	}
}

// WithVenueCapacity overrides the venue capacity.
func WithVenueCapacity(capacity int) VenueOption {
	return func(f *VenueFixture) {
		f.Capacity = capacity
	}
}

// WithVenueType overrides the venue type.
func WithVenueType(venueType string) VenueOption {
	return func(f *VenueFixture) {
		f.Type = venueType
	}
}

// WithVenueFeatures overrides the venue feature list.
func WithVenueFeatures(features ...string) VenueOption {
	return func(f *VenueFixture) {
		f.Features = features
	}
}

// Application returns the fixture as an application.Venue value.
func (f VenueFixture) Application() application.Venue {
	return application.Venue{
		ID:        f.ID,
		Name:      f.Name,
		Type:      f.Type,
		Capacity:  f.Capacity,
		Features:  f.Features,
		Location:  f.Location,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Venue value.
func (f VenueFixture) Persistence() persistence.Venue {
	return persistence.Venue{
		ID:        f.ID,
		Name:      f.Name,
		Type:      f.Type,
		Capacity:  f.Capacity,
		Features:  f.Features,
		Location:  f.Location,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// --------------------------- Resource fixtures ---------------------------

// ResourceFixture represents a deterministic resource record.
type ResourceFixture struct {
	ID                string
	Name              string
	Type              string
	TotalCapacity     int
	Description       *string
	MaintenanceStatus string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ResourceOption configures the generated resource fixture.
type ResourceOption func(*ResourceFixture)

// NewResourceFixture returns a deterministic resource fixture with optional
// overrides.
func NewResourceFixture(opts ...ResourceOption) ResourceFixture {
	idx := atomic.AddUint64(&resourceCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := ResourceFixture{
		ID:                fmt.Sprintf("resource-%03d", idx),
		Name:              fmt.Sprintf("Resource %03d", idx),
		Type:              "Equipment",
		TotalCapacity:     10,
		MaintenanceStatus: application.ResourceAvailable,
		CreatedAt:         created,
		UpdatedAt:         created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithResourceID overrides the generated resource ID.
func WithResourceID(id string) ResourceOption {
	return func(f *ResourceFixture) {
		f.ID = id
	}
}

// WithResourceCapacity overrides the total pool size.
func WithResourceCapacity(capacity int) ResourceOption {
	return func(f *ResourceFixture) {
		f.TotalCapacity = capacity
	}
}

// WithMaintenanceStatus overrides the maintenance status.
func WithMaintenanceStatus(status string) ResourceOption {
	return func(f *ResourceFixture) {
		f.MaintenanceStatus = status
	}
}

// Application returns the fixture as an application.Resource value.
func (f ResourceFixture) Application() application.Resource {
	return application.Resource{
		ID:                f.ID,
		Name:              f.Name,
		Type:              f.Type,
		TotalCapacity:     f.TotalCapacity,
		Description:       f.Description,
		MaintenanceStatus: f.MaintenanceStatus,
		CreatedAt:         f.CreatedAt,
		UpdatedAt:         f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Resource value.
func (f ResourceFixture) Persistence() persistence.Resource {
	return persistence.Resource{
		ID:                f.ID,
		Name:              f.Name,
		Type:              f.Type,
		TotalCapacity:     f.TotalCapacity,
		Description:       f.Description,
		MaintenanceStatus: f.MaintenanceStatus,
		CreatedAt:         f.CreatedAt,
		UpdatedAt:         f.UpdatedAt,
	}
}

// ----------------------------- Event fixtures ----------------------------

// EventFixture represents a deterministic event request aggregate.
type EventFixture struct {
	ID                   string
	Title                string
	Type                 string
	Start                time.Time
	End                  time.Time
	VenueID              *string
	VenuePreference      application.VenuePreference
	ParticipantCount     int
	MandatoryResources   []application.Allocation
	OptionalResources    []application.Allocation
	Status               workflow.Status
	ExecutionState       workflow.ExecutionState
	RequesterRole        workflow.Role
	RequesterID          string
	Department           string
	School               string
	ApprovalChain        []application.ChainEntry
	IsModifiable         bool
	ConflictAcknowledged bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
	Version              int64
}

// EventOption configures the generated event fixture.
type EventOption func(*EventFixture)

// NewEventFixture returns a deterministic event fixture with optional
// overrides. Defaults model a freshly submitted request awaiting department
// head review.
func NewEventFixture(opts ...EventOption) EventFixture {
	idx := atomic.AddUint64(&eventCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	start := referenceTime.Add(24 * time.Hour)
	requester := CoordinatorActor()
	fixture := EventFixture{
		ID:               fmt.Sprintf("event-%03d", idx),
		Title:            fmt.Sprintf("Event %03d", idx),
		Type:             "Workshop",
		Start:            start,
		End:              start.Add(2 * time.Hour),
		VenuePreference:  application.VenuePreference{VenueID: "venue-001", MinCapacity: 50},
		ParticipantCount: 50,
		Status:           workflow.StatusPendingHOD,
		ExecutionState:   workflow.ExecutionNotStarted,
		RequesterRole:    requester.Role,
		RequesterID:      requester.UserID,
		Department:       requester.Department,
		School:           requester.School,
		ApprovalChain: []application.ChainEntry{
			{Role: workflow.RoleHOD, Action: workflow.ActionPending, Timestamp: created},
		},
		IsModifiable: true,
		CreatedAt:    created,
		UpdatedAt:    created,
		Version:      1,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithEventID overrides the generated event ID.
func WithEventID(id string) EventOption {
	return func(f *EventFixture) {
		f.ID = id
	}
}

// WithEventStatus sets the workflow status.
func WithEventStatus(status workflow.Status) EventOption {
	return func(f *EventFixture) {
		f.Status = status
	}
}

// WithEventWindow sets the requested start and end instants.
func WithEventWindow(start, end time.Time) EventOption {
	return func(f *EventFixture) {
		f.Start = start
		f.End = end
	}
}

// WithEventVenue binds the event to a concrete venue.
func WithEventVenue(venueID string) EventOption {
	return func(f *EventFixture) {
		f.VenueID = &venueID
		f.VenuePreference.VenueID = venueID
	}
}

// WithEventRequester sets requester identity fields from an actor.
func WithEventRequester(actor application.Actor) EventOption {
	return func(f *EventFixture) {
		f.RequesterRole = actor.Role
		f.RequesterID = actor.UserID
		f.Department = actor.Department
		f.School = actor.School
	}
}

// WithMandatoryResources sets the mandatory allocation list.
func WithMandatoryResources(allocations ...application.Allocation) EventOption {
	return func(f *EventFixture) {
		f.MandatoryResources = allocations
	}
}

// Application returns the fixture as an application.Event value.
func (f EventFixture) Application() application.Event {
	return application.Event{
		ID:                   f.ID,
		Title:                f.Title,
		Type:                 f.Type,
		Start:                f.Start,
		End:                  f.End,
		VenueID:              f.VenueID,
		VenuePreference:      f.VenuePreference,
		ParticipantCount:     f.ParticipantCount,
		MandatoryResources:   f.MandatoryResources,
		OptionalResources:    f.OptionalResources,
		Status:               f.Status,
		ExecutionState:       f.ExecutionState,
		RequesterRole:        f.RequesterRole,
		RequesterID:          f.RequesterID,
		Department:           f.Department,
		School:               f.School,
		ApprovalChain:        f.ApprovalChain,
		IsModifiable:         f.IsModifiable,
		ConflictAcknowledged: f.ConflictAcknowledged,
		CreatedAt:            f.CreatedAt,
		UpdatedAt:            f.UpdatedAt,
		Version:              f.Version,
	}
}

// Persistence returns the fixture as a persistence.Event value.
func (f EventFixture) Persistence() persistence.Event {
	event := persistence.Event{
		ID:    f.ID,
		Title: f.Title,
		Type:  f.Type,
		Start: f.Start,
		End:   f.End,
		VenuePreference: persistence.VenuePreference{
			VenueID:           f.VenuePreference.VenueID,
			Type:              f.VenuePreference.Type,
			MinCapacity:       f.VenuePreference.MinCapacity,
			PreferredFeatures: f.VenuePreference.PreferredFeatures,
		},
		VenueID:              f.VenueID,
		ParticipantCount:     f.ParticipantCount,
		Status:               string(f.Status),
		ExecutionState:       string(f.ExecutionState),
		RequesterRole:        string(f.RequesterRole),
		RequesterID:          f.RequesterID,
		Department:           f.Department,
		School:               f.School,
		IsModifiable:         f.IsModifiable,
		ConflictAcknowledged: f.ConflictAcknowledged,
		CreatedAt:            f.CreatedAt,
		UpdatedAt:            f.UpdatedAt,
		Version:              f.Version,
	}
	for _, allocation := range f.MandatoryResources {
		event.MandatoryResources = append(event.MandatoryResources, persistence.Allocation{
			ResourceID: allocation.ResourceID,
			Name:       allocation.Name,
			Count:      allocation.Count,
			Priority:   allocation.Priority,
		})
	}
	for _, allocation := range f.OptionalResources {
		event.OptionalResources = append(event.OptionalResources, persistence.Allocation{
			ResourceID: allocation.ResourceID,
			Name:       allocation.Name,
			Count:      allocation.Count,
			Priority:   allocation.Priority,
		})
	}
	for _, entry := range f.ApprovalChain {
		event.ApprovalChain = append(event.ApprovalChain, persistence.ChainEntry{
			Role:      string(entry.Role),
			Action:    string(entry.Action),
			ActorID:   entry.ActorID,
			Override:  entry.Override,
			Notes:     entry.Notes,
			Timestamp: entry.Timestamp,
		})
	}
	return event
}
