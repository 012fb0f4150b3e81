package persistence

import "time"

// Venue represents a bookable physical space in the campus inventory.
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

// Resource represents a shared allocatable asset with finite capacity.
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

// Allocation is one requested resource count embedded in an event.
type Allocation struct {
	ResourceID string
	Name       string
	Count      int
	Priority   string
}

// VenuePreference captures the coordinator's requested venue characteristics.
type VenuePreference struct {
	VenueID           string
	Type              string
	MinCapacity       int
	PreferredFeatures []string
}

// ChainEntry is one append-only approval chain record.
type ChainEntry struct {
	Role      string
	Action    string
	ActorID   string
	Override  bool
	Notes     string
	Timestamp time.Time
}

// ModificationRequest records a reviewer asking the coordinator for changes.
type ModificationRequest struct {
	RequestedBy string
	ActorID     string
	Notes       string
	Timestamp   time.Time
}

// Event is the persisted event request aggregate.
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
	Status               string
	ExecutionState       string
	RequesterRole        string
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
