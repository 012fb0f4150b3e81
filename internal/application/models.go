package application

import (
	"time"

	"github.com/example/campus-coordinator/internal/workflow"
)

// Actor identifies the authenticated user performing an operation, as
// asserted by the gateway in front of this service.
type Actor struct {
	Role       workflow.Role
	UserID     string
	Department string
	School     string
}

// Venue represents a bookable campus location.
type Venue struct {
	ID        string
	Name      string
	Type      string
	Capacity  int
	Features  []string
	Location  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Resource represents a shared pool of equipment or services.
type Resource struct {
	ID                string
	Name              string
	Type              string
	TotalCapacity     int
	Description       *string
	MaintenanceStatus string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Maintenance status values for resources.
const (
	ResourceAvailable        = "Available"
	ResourceUnderMaintenance = "UnderMaintenance"
	ResourceRetired          = "Retired"
)

// Allocation is a requested quantity of one resource.
type Allocation struct {
	ResourceID string
	Name       string
	Count      int
	Priority   string
}

// Allocation priorities.
const (
	PriorityMandatory = "Mandatory"
	PriorityOptional  = "Optional"
)

// VenuePreference carries the requester's chosen venue together with the
// criteria it was chosen by. The event's VenueID stays unset until final
// approval binds the booking.
type VenuePreference struct {
	VenueID           string
	Type              string
	MinCapacity       int
	PreferredFeatures []string
}

// ChainEntry is one step of an event's approval trail.
type ChainEntry struct {
	Role      workflow.Role
	Action    workflow.Action
	ActorID   string
	Override  bool
	Notes     string
	Timestamp time.Time
}

// ModificationRequest records a reviewer asking the requester for changes.
type ModificationRequest struct {
	RequestedBy workflow.Role
	ActorID     string
	Notes       string
	Timestamp   time.Time
}

// Event is the full event request aggregate.
type Event struct {
	ID                   string
	Title                string
	Type                 string
	Description          *string
	Start                time.Time
	End                  time.Time
	VenueID              *string
	VenuePreference      VenuePreference
	ParticipantCount     int
	MandatoryResources   []Allocation
	OptionalResources    []Allocation
	Status               workflow.Status
	ExecutionState       workflow.ExecutionState
	RequesterRole        workflow.Role
	RequesterID          string
	Department           string
	School               string
	RejectionReason      *string
	ApprovalChain        []ChainEntry
	ModificationRequests []ModificationRequest
	IsModifiable         bool
	ConflictAcknowledged bool
	MarkedStartAt        *time.Time
	MarkedCompleteAt     *time.Time
	VenueReleasedAt      *time.Time
	ResourcesReleasedAt  *time.Time
	PostEventSummary     *string
	ActualParticipants   *int
	CreatedAt            time.Time
	UpdatedAt            time.Time
	Version              int64
}

// ConflictWarning surfaces a venue double booking detected during screening.
// Warnings never block submission; the requester acknowledges and proceeds.
type ConflictWarning struct {
	EventID string
	VenueID string
	Start   time.Time
	End     time.Time
}

// ResourceUsage summarizes demand against a resource's pool across events
// currently running.
type ResourceUsage struct {
	ResourceID string
	Used       int
	Total      int
	Percent    int
	Remaining  int
	Critical   bool
}

// EventDraft is the requester-supplied content of a new event request.
type EventDraft struct {
	Title                string
	Type                 string
	Description          *string
	Start                time.Time
	End                  time.Time
	VenuePreference      VenuePreference
	ParticipantCount     int
	MandatoryResources   []Allocation
	OptionalResources    []Allocation
	ConflictAcknowledged bool
}

// SubmitEventParams bundles the acting user with the event draft.
type SubmitEventParams struct {
	Actor Actor
	Draft EventDraft
}

// ApproveEventParams identifies the event a reviewer approves.
// ExpectedVersion, when set, must match the stored event's version; mutations
// against a version the caller has not seen fail with ErrStaleEvent.
type ApproveEventParams struct {
	Actor           Actor
	EventID         string
	Notes           string
	ExpectedVersion *int64
}

// RejectEventParams identifies the event a reviewer rejects, with reason.
type RejectEventParams struct {
	Actor           Actor
	EventID         string
	Reason          string
	ExpectedVersion *int64
}

// RequestModificationParams asks the requester to revise the event.
type RequestModificationParams struct {
	Actor           Actor
	EventID         string
	Notes           string
	ExpectedVersion *int64
}

// OverrideApproveParams lets an administrator force the pending stage forward.
type OverrideApproveParams struct {
	Actor           Actor
	EventID         string
	Notes           string
	ExpectedVersion *int64
}

// MarkStartedParams transitions an approved event into execution.
type MarkStartedParams struct {
	Actor           Actor
	EventID         string
	ExpectedVersion *int64
}

// MarkCompletedParams closes out a running event.
type MarkCompletedParams struct {
	Actor              Actor
	EventID            string
	Summary            string
	ActualParticipants *int
	ExpectedVersion    *int64
}

// ListEventsParams narrows the event listing.
type ListEventsParams struct {
	Actor    Actor
	Statuses []workflow.Status
	VenueID  string
}

// VenueConflictQuery asks whether a window on a venue collides with
// existing requests.
type VenueConflictQuery struct {
	Actor          Actor
	VenueID        string
	Start          time.Time
	End            time.Time
	ExcludeEventID string
}

// VenueInput is the administrator-supplied content of a venue record.
type VenueInput struct {
	Name     string
	Type     string
	Capacity int
	Features []string
	Location *string
}

// CreateVenueParams bundles the acting user with a new venue.
type CreateVenueParams struct {
	Actor Actor
	Input VenueInput
}

// UpdateVenueParams bundles the acting user with venue changes.
type UpdateVenueParams struct {
	Actor   Actor
	VenueID string
	Input   VenueInput
}

// ResourceInput is the administrator-supplied content of a resource record.
type ResourceInput struct {
	Name              string
	Type              string
	TotalCapacity     int
	Description       *string
	MaintenanceStatus string
}

// CreateResourceParams bundles the acting user with a new resource.
type CreateResourceParams struct {
	Actor Actor
	Input ResourceInput
}

// UpdateResourceParams bundles the acting user with resource changes.
type UpdateResourceParams struct {
	Actor      Actor
	ResourceID string
	Input      ResourceInput
}
