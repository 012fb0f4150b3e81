package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/campus-coordinator/internal/booking"
	"github.com/example/campus-coordinator/internal/persistence"
	"github.com/example/campus-coordinator/internal/workflow"
)

// EventRepository captures the persistence interactions needed by the service.
type EventRepository interface {
	CreateEvent(ctx context.Context, event Event) error
	GetEvent(ctx context.Context, id string) (Event, error)
	UpdateEvent(ctx context.Context, event Event) (Event, error)
	ListEvents(ctx context.Context, filter EventRepositoryFilter) ([]Event, error)
}

// EventRepositoryFilter narrows queries issued to the event repository.
type EventRepositoryFilter struct {
	VenueID     string
	RequesterID string
	Department  string
	School      string
	Statuses    []workflow.Status
}

// VenueCatalog exposes venue lookup operations.
type VenueCatalog interface {
	GetVenue(ctx context.Context, id string) (Venue, error)
}

// ResourceCatalog exposes resource lookup operations.
type ResourceCatalog interface {
	GetResource(ctx context.Context, id string) (Resource, error)
}

// Notifier publishes event lifecycle changes to interested consumers.
type Notifier interface {
	NotifyEventChange(ctx context.Context, kind string, event Event) error
}

// Notification kinds published on event lifecycle changes.
const (
	NotifySubmitted             = "submitted"
	NotifyApproved              = "approved"
	NotifyRejected              = "rejected"
	NotifyModificationRequested = "modification_requested"
	NotifyStarted               = "started"
	NotifyCompleted             = "completed"
)

// EventService orchestrates the approval workflow, conflict screening, and
// persistence for event requests.
type EventService struct {
	events      EventRepository
	venues      VenueCatalog
	resources   ResourceCatalog
	notifier    Notifier
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewEventService wires dependencies for event request operations.
func NewEventService(events EventRepository, venues VenueCatalog, resources ResourceCatalog, notifier Notifier, idGenerator func() string, now func() time.Time) *EventService {
	return NewEventServiceWithLogger(events, venues, resources, notifier, idGenerator, now, nil)
}

// NewEventServiceWithLogger constructs an event service with a specified logger.
func NewEventServiceWithLogger(events EventRepository, venues VenueCatalog, resources ResourceCatalog, notifier Notifier, idGenerator func() string, now func() time.Time, logger *slog.Logger) *EventService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &EventService{
		events:      events,
		venues:      venues,
		resources:   resources,
		notifier:    notifier,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *EventService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "EventService", operation, attrs...)
}

// SubmitEventRequest validates a draft, screens the preferred venue for
// collisions, and admits the request into the approval pipeline. Conflicts
// are returned as warnings and never block submission.
func (s *EventService) SubmitEventRequest(ctx context.Context, params SubmitEventParams) (event Event, warnings []ConflictWarning, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if s.events == nil {
		err = fmt.Errorf("event repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "SubmitEventRequest",
		"actor_id", params.Actor.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to submit event request", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("event_id", event.ID, "conflict_count", len(warnings)).InfoContext(ctx, "event request submitted")
	}()

	if !CanCreateEvent(params.Actor) {
		err = ErrUnauthorized
		return
	}

	draft := params.Draft
	vErr := validateEventDraft(draft)
	if err2 := s.validateVenueChoice(ctx, draft, vErr); err2 != nil {
		err = err2
		return
	}
	if err2 := s.validateAllocations(ctx, draft.MandatoryResources, "mandatory_resources", vErr); err2 != nil {
		err = err2
		return
	}
	if err2 := s.validateAllocations(ctx, draft.OptionalResources, "optional_resources", vErr); err2 != nil {
		err = err2
		return
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	warnings, err = s.screenVenue(ctx, draft.VenuePreference.VenueID, draft.Start, draft.End, "")
	if err != nil {
		return
	}

	status, err := workflow.Admit(workflow.StatusSubmitted)
	if err != nil {
		return
	}

	createdAt := s.now()
	event = Event{
		ID:                   s.idGenerator(),
		Title:                strings.TrimSpace(draft.Title),
		Type:                 strings.TrimSpace(draft.Type),
		Description:          draft.Description,
		Start:                draft.Start,
		End:                  draft.End,
		VenuePreference:      draft.VenuePreference,
		ParticipantCount:     draft.ParticipantCount,
		MandatoryResources:   cloneAllocations(draft.MandatoryResources),
		OptionalResources:    cloneAllocations(draft.OptionalResources),
		Status:               status,
		ExecutionState:       workflow.ExecutionNotStarted,
		RequesterRole:        params.Actor.Role,
		RequesterID:          params.Actor.UserID,
		Department:           params.Actor.Department,
		School:               params.Actor.School,
		ApprovalChain: []ChainEntry{
			{Role: workflow.RoleHOD, Action: workflow.ActionPending, Timestamp: createdAt},
		},
		IsModifiable:         true,
		ConflictAcknowledged: draft.ConflictAcknowledged || len(warnings) > 0,
		CreatedAt:            createdAt,
		UpdatedAt:            createdAt,
	}

	if err = s.events.CreateEvent(ctx, event); err != nil {
		err = mapEventRepoError(err)
		event = Event{}
		return
	}

	event, err = s.events.GetEvent(ctx, event.ID)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	s.notify(ctx, logger, NotifySubmitted, event)
	return
}

// ApproveEvent advances the event one approval stage when the acting
// reviewer matches the pending stage and scope. Final approval binds the
// preferred venue and freezes the request.
func (s *EventService) ApproveEvent(ctx context.Context, params ApproveEventParams) (event Event, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if s.events == nil {
		err = fmt.Errorf("event repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "ApproveEvent",
		"actor_id", params.Actor.UserID,
		"event_id", params.EventID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to approve event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("status", string(event.Status)).InfoContext(ctx, "event approved")
	}()

	existing, err := s.events.GetEvent(ctx, params.EventID)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	if !CanApproveEvent(params.Actor, existing) {
		err = ErrUnauthorized
		return
	}
	if err = checkExpectedVersion(existing, params.ExpectedVersion); err != nil {
		return
	}

	event, err = s.advanceStage(ctx, existing, params.Actor, false, params.Notes)
	if err != nil {
		return
	}

	s.notify(ctx, logger, NotifyApproved, event)
	return
}

// OverrideApprove lets an administrator force the pending stage forward on
// behalf of an unavailable reviewer. The chain records the override.
func (s *EventService) OverrideApprove(ctx context.Context, params OverrideApproveParams) (event Event, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if s.events == nil {
		err = fmt.Errorf("event repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "OverrideApprove",
		"actor_id", params.Actor.UserID,
		"event_id", params.EventID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to override approve event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("status", string(event.Status)).InfoContext(ctx, "event approval overridden")
	}()

	if params.Actor.Role != workflow.RoleAdmin {
		err = ErrUnauthorized
		return
	}

	existing, err := s.events.GetEvent(ctx, params.EventID)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	if err = checkExpectedVersion(existing, params.ExpectedVersion); err != nil {
		return
	}

	event, err = s.advanceStage(ctx, existing, params.Actor, true, params.Notes)
	if err != nil {
		return
	}

	s.notify(ctx, logger, NotifyApproved, event)
	return
}

func (s *EventService) advanceStage(ctx context.Context, existing Event, actor Actor, override bool, notes string) (Event, error) {
	reviewer, ok := workflow.ReviewerFor(existing.Status)
	if !ok {
		return Event{}, workflow.ErrInvalidTransition
	}

	next, err := workflow.Approve(existing.Status, actor.Role)
	if err != nil {
		return Event{}, err
	}

	now := s.now()
	updated := existing
	updated.Status = next
	updated.IsModifiable = false
	updated.ApprovalChain = append(cloneChain(existing.ApprovalChain), ChainEntry{
		Role:      reviewer,
		Action:    workflow.ActionApproved,
		ActorID:   actor.UserID,
		Override:  override,
		Notes:     strings.TrimSpace(notes),
		Timestamp: now,
	})
	updated.UpdatedAt = now

	if next == workflow.StatusApproved {
		venueID := existing.VenuePreference.VenueID
		updated.VenueID = &venueID
	}

	persisted, err := s.events.UpdateEvent(ctx, updated)
	if err != nil {
		return Event{}, mapEventRepoError(err)
	}
	return persisted, nil
}

// RejectEvent terminates the workflow with a mandatory reason. Rejection is
// final; rejected requests release their tentative holds.
func (s *EventService) RejectEvent(ctx context.Context, params RejectEventParams) (event Event, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if s.events == nil {
		err = fmt.Errorf("event repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "RejectEvent",
		"actor_id", params.Actor.UserID,
		"event_id", params.EventID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to reject event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "event rejected")
	}()

	reason := strings.TrimSpace(params.Reason)
	if reason == "" {
		err = ErrMissingReason
		return
	}

	existing, err := s.events.GetEvent(ctx, params.EventID)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	if !CanApproveEvent(params.Actor, existing) && params.Actor.Role != workflow.RoleAdmin {
		err = ErrUnauthorized
		return
	}
	if err = checkExpectedVersion(existing, params.ExpectedVersion); err != nil {
		return
	}

	reviewer, ok := workflow.ReviewerFor(existing.Status)
	if !ok {
		err = workflow.ErrInvalidTransition
		return
	}

	next, err := workflow.Reject(existing.Status, params.Actor.Role)
	if err != nil {
		return
	}

	now := s.now()
	updated := existing
	updated.Status = next
	updated.RejectionReason = &reason
	updated.IsModifiable = false
	updated.ApprovalChain = append(cloneChain(existing.ApprovalChain), ChainEntry{
		Role:      reviewer,
		Action:    workflow.ActionRejected,
		ActorID:   params.Actor.UserID,
		Override:  params.Actor.Role == workflow.RoleAdmin,
		Notes:     reason,
		Timestamp: now,
	})
	updated.UpdatedAt = now

	event, err = s.events.UpdateEvent(ctx, updated)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	s.notify(ctx, logger, NotifyRejected, event)
	return
}

// RequestModification asks the requester to revise the event without moving
// it through the pipeline. The request stays at its current stage and
// becomes editable again.
func (s *EventService) RequestModification(ctx context.Context, params RequestModificationParams) (event Event, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if s.events == nil {
		err = fmt.Errorf("event repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "RequestModification",
		"actor_id", params.Actor.UserID,
		"event_id", params.EventID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to request modification", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "modification requested")
	}()

	notes := strings.TrimSpace(params.Notes)
	if notes == "" {
		err = ErrMissingReason
		return
	}

	existing, err := s.events.GetEvent(ctx, params.EventID)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	if !CanApproveEvent(params.Actor, existing) && params.Actor.Role != workflow.RoleAdmin {
		err = ErrUnauthorized
		return
	}
	if err = checkExpectedVersion(existing, params.ExpectedVersion); err != nil {
		return
	}
	if !workflow.IsPendingStage(existing.Status) {
		err = workflow.ErrInvalidTransition
		return
	}

	now := s.now()
	updated := existing
	updated.IsModifiable = true
	updated.ModificationRequests = append(cloneModifications(existing.ModificationRequests), ModificationRequest{
		RequestedBy: params.Actor.Role,
		ActorID:     params.Actor.UserID,
		Notes:       notes,
		Timestamp:   now,
	})
	updated.UpdatedAt = now

	event, err = s.events.UpdateEvent(ctx, updated)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	s.notify(ctx, logger, NotifyModificationRequested, event)
	return
}

// MarkEventStarted moves an approved event into execution.
func (s *EventService) MarkEventStarted(ctx context.Context, params MarkStartedParams) (event Event, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if s.events == nil {
		err = fmt.Errorf("event repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "MarkEventStarted",
		"actor_id", params.Actor.UserID,
		"event_id", params.EventID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to mark event started", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "event started")
	}()

	existing, err := s.events.GetEvent(ctx, params.EventID)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	if existing.RequesterID != params.Actor.UserID && params.Actor.Role != workflow.RoleAdmin {
		err = ErrUnauthorized
		return
	}
	if err = checkExpectedVersion(existing, params.ExpectedVersion); err != nil {
		return
	}

	next, err := workflow.Start(existing.Status)
	if err != nil {
		return
	}

	now := s.now()
	updated := existing
	updated.Status = next
	updated.ExecutionState = workflow.ExecutionInProgress
	updated.MarkedStartAt = &now
	updated.UpdatedAt = now

	event, err = s.events.UpdateEvent(ctx, updated)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	s.notify(ctx, logger, NotifyStarted, event)
	return
}

// MarkEventCompleted closes out a running event, records the post-event
// summary, and releases its venue and resources.
func (s *EventService) MarkEventCompleted(ctx context.Context, params MarkCompletedParams) (event Event, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if s.events == nil {
		err = fmt.Errorf("event repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "MarkEventCompleted",
		"actor_id", params.Actor.UserID,
		"event_id", params.EventID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to mark event completed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "event completed")
	}()

	summary := strings.TrimSpace(params.Summary)
	vErr := &ValidationError{}
	if summary == "" {
		vErr.add("summary", "post-event summary is required")
	}
	if params.ActualParticipants != nil && *params.ActualParticipants < 0 {
		vErr.add("actual_participants", "must not be negative")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	existing, err := s.events.GetEvent(ctx, params.EventID)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	if existing.RequesterID != params.Actor.UserID && params.Actor.Role != workflow.RoleAdmin {
		err = ErrUnauthorized
		return
	}
	if err = checkExpectedVersion(existing, params.ExpectedVersion); err != nil {
		return
	}

	next, err := workflow.Complete(existing.Status)
	if err != nil {
		return
	}

	now := s.now()
	updated := existing
	updated.Status = next
	updated.ExecutionState = workflow.ExecutionCompleted
	updated.MarkedCompleteAt = &now
	updated.VenueReleasedAt = &now
	updated.ResourcesReleasedAt = &now
	updated.PostEventSummary = &summary
	updated.ActualParticipants = params.ActualParticipants
	updated.UpdatedAt = now

	event, err = s.events.UpdateEvent(ctx, updated)
	if err != nil {
		err = mapEventRepoError(err)
		return
	}

	s.notify(ctx, logger, NotifyCompleted, event)
	return
}

// ListVisibleEvents enumerates events within the actor's scope, ordered by
// creation time.
func (s *EventService) ListVisibleEvents(ctx context.Context, params ListEventsParams) (events []Event, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if s.events == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListVisibleEvents",
		"actor_id", params.Actor.UserID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list events", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(events)).InfoContext(ctx, "events listed")
	}()

	filter := EventRepositoryFilter{
		VenueID:  params.VenueID,
		Statuses: params.Statuses,
	}
	switch params.Actor.Role {
	case workflow.RoleCoordinator:
		filter.RequesterID = params.Actor.UserID
	case workflow.RoleHOD:
		filter.Department = params.Actor.Department
	case workflow.RoleDean:
		filter.School = params.Actor.School
	case workflow.RoleHead, workflow.RoleAdmin:
	default:
		err = ErrUnauthorized
		return
	}

	raw, err := s.events.ListEvents(ctx, filter)
	if err != nil {
		if isNotFoundError(err) {
			err = nil
			return nil, nil
		}
		return
	}

	ordered := VisibleEvents(params.Actor, raw)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	events = ordered
	return
}

// PendingApprovals lists the events waiting on the actor's review.
func (s *EventService) PendingApprovals(ctx context.Context, actor Actor) ([]Event, error) {
	events, err := s.ListVisibleEvents(ctx, ListEventsParams{
		Actor: actor,
		Statuses: []workflow.Status{
			workflow.StatusPendingHOD,
			workflow.StatusPendingDean,
			workflow.StatusPendingHead,
		},
	})
	if err != nil {
		return nil, err
	}
	return PendingApprovalEvents(actor, events), nil
}

// GetEvent retrieves a single event within the actor's scope. Events outside
// the scope are reported as not found rather than forbidden.
func (s *EventService) GetEvent(ctx context.Context, actor Actor, eventID string) (Event, error) {
	if s == nil {
		return Event{}, fmt.Errorf("EventService is nil")
	}
	if s.events == nil {
		return Event{}, fmt.Errorf("event repository not configured")
	}

	event, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return Event{}, mapEventRepoError(err)
	}
	if !EventVisibleTo(actor, event) {
		return Event{}, ErrNotFound
	}
	return event, nil
}

// CheckVenueConflict reports the collisions a window on a venue would have
// with requests currently holding it.
func (s *EventService) CheckVenueConflict(ctx context.Context, query VenueConflictQuery) (warnings []ConflictWarning, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if s.events == nil {
		err = fmt.Errorf("event repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "CheckVenueConflict",
		"actor_id", query.Actor.UserID,
		"venue_id", query.VenueID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to check venue conflicts", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("conflict_count", len(warnings)).InfoContext(ctx, "venue conflicts checked")
	}()

	vErr := &ValidationError{}
	if query.VenueID == "" {
		vErr.add("venue_id", "venue is required")
	}
	if query.Start.IsZero() || query.End.IsZero() || !query.Start.Before(query.End) {
		vErr.add("time", "start must be before end")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	if s.venues != nil {
		if _, err = s.venues.GetVenue(ctx, query.VenueID); err != nil {
			err = mapEventRepoError(err)
			return
		}
	}

	warnings, err = s.screenVenue(ctx, query.VenueID, query.Start, query.End, query.ExcludeEventID)
	return
}

// screenVenue screens a window on a venue against every request still
// holding it. Rejected and completed requests no longer consume the venue.
func (s *EventService) screenVenue(ctx context.Context, venueID string, start, end time.Time, excludeEventID string) ([]ConflictWarning, error) {
	if venueID == "" {
		return nil, nil
	}

	existing, err := s.events.ListEvents(ctx, EventRepositoryFilter{VenueID: venueID})
	if err != nil {
		if isNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}

	bookings := make([]booking.Booking, 0, len(existing))
	for _, event := range existing {
		bookings = append(bookings, booking.Booking{
			EventID: event.ID,
			VenueID: occupiedVenueID(event),
			Start:   event.Start,
			End:     event.End,
			Active:  workflow.Consuming(event.Status),
		})
	}

	conflicts := booking.VenueConflicts(bookings, venueID, start, end, excludeEventID)
	if len(conflicts) == 0 {
		return nil, nil
	}

	warnings := make([]ConflictWarning, 0, len(conflicts))
	for _, conflict := range conflicts {
		warnings = append(warnings, ConflictWarning{
			EventID: conflict.WithEventID,
			VenueID: conflict.VenueID,
			Start:   conflict.Start,
			End:     conflict.End,
		})
	}
	return warnings, nil
}

func (s *EventService) validateVenueChoice(ctx context.Context, draft EventDraft, vErr *ValidationError) error {
	if draft.VenuePreference.VenueID == "" {
		vErr.add("venue_preference", "a preferred venue is required")
		return nil
	}
	if s.venues == nil {
		return nil
	}

	venue, err := s.venues.GetVenue(ctx, draft.VenuePreference.VenueID)
	if err != nil {
		if isNotFoundError(err) {
			vErr.add("venue_preference", "venue does not exist")
			return nil
		}
		return err
	}

	if draft.ParticipantCount > venue.Capacity {
		vErr.add("participant_count", fmt.Sprintf("exceeds venue capacity of %d", venue.Capacity))
	}
	if draft.VenuePreference.MinCapacity > venue.Capacity {
		vErr.add("venue_preference", fmt.Sprintf("venue capacity %d is below the requested minimum", venue.Capacity))
	}
	return nil
}

func (s *EventService) validateAllocations(ctx context.Context, allocations []Allocation, field string, vErr *ValidationError) error {
	seen := make(map[string]struct{}, len(allocations))
	for _, allocation := range allocations {
		if allocation.ResourceID == "" {
			vErr.add(field, "resource id is required")
			continue
		}
		if _, ok := seen[allocation.ResourceID]; ok {
			vErr.add(field, fmt.Sprintf("resource %s is listed more than once", allocation.ResourceID))
			continue
		}
		seen[allocation.ResourceID] = struct{}{}

		if allocation.Count < 0 {
			vErr.add(field, fmt.Sprintf("resource %s count must not be negative", allocation.ResourceID))
			continue
		}
		if s.resources == nil {
			continue
		}

		resource, err := s.resources.GetResource(ctx, allocation.ResourceID)
		if err != nil {
			if isNotFoundError(err) {
				vErr.add(field, fmt.Sprintf("resource %s does not exist", allocation.ResourceID))
				continue
			}
			return err
		}
		if resource.MaintenanceStatus == ResourceRetired {
			vErr.add(field, fmt.Sprintf("resource %s has been retired", allocation.ResourceID))
			continue
		}
		if allocation.Count > resource.TotalCapacity {
			vErr.add(field, fmt.Sprintf("resource %s count exceeds total capacity of %d", allocation.ResourceID, resource.TotalCapacity))
		}
	}
	return nil
}

func (s *EventService) notify(ctx context.Context, logger *slog.Logger, kind string, event Event) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyEventChange(ctx, kind, event); err != nil {
		logger.WarnContext(ctx, "failed to publish event change", "kind", kind, "error", err)
	}
}

func validateEventDraft(draft EventDraft) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(draft.Title) == "" {
		vErr.add("title", "title is required")
	}
	if strings.TrimSpace(draft.Type) == "" {
		vErr.add("type", "type is required")
	}
	if draft.Start.IsZero() {
		vErr.add("start", "start is required")
	}
	if draft.End.IsZero() {
		vErr.add("end", "end is required")
	}
	if !draft.Start.IsZero() && !draft.End.IsZero() && !draft.Start.Before(draft.End) {
		vErr.add("time", "start must be before end")
	}
	if draft.ParticipantCount <= 0 {
		vErr.add("participant_count", "participant count must be positive")
	}
	if draft.VenuePreference.MinCapacity < 0 {
		vErr.add("venue_preference", "minimum capacity must not be negative")
	}

	return vErr
}

// checkExpectedVersion rejects a mutation when the caller supplied the
// version it last read and the stored event has moved past it.
func checkExpectedVersion(existing Event, expected *int64) error {
	if expected != nil && *expected != existing.Version {
		return ErrStaleEvent
	}
	return nil
}

func occupiedVenueID(event Event) string {
	if event.VenueID != nil {
		return *event.VenueID
	}
	return event.VenuePreference.VenueID
}

func cloneAllocations(allocations []Allocation) []Allocation {
	if allocations == nil {
		return nil
	}
	out := make([]Allocation, len(allocations))
	copy(out, allocations)
	return out
}

func cloneChain(chain []ChainEntry) []ChainEntry {
	out := make([]ChainEntry, len(chain))
	copy(out, chain)
	return out
}

func cloneModifications(requests []ModificationRequest) []ModificationRequest {
	out := make([]ModificationRequest, len(requests))
	copy(out, requests)
	return out
}

func mapEventRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrStaleVersion) {
		return ErrStaleEvent
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("event", "event violates storage constraints")
		return vErr
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("venue_id", "related records are missing")
		return vErr
	}
	return err
}

func isNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound)
}
