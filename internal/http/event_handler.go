package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/campus-coordinator/internal/application"
	"github.com/example/campus-coordinator/internal/workflow"
)

type eventService interface {
	SubmitEventRequest(ctx context.Context, params application.SubmitEventParams) (application.Event, []application.ConflictWarning, error)
	ApproveEvent(ctx context.Context, params application.ApproveEventParams) (application.Event, error)
	RejectEvent(ctx context.Context, params application.RejectEventParams) (application.Event, error)
	RequestModification(ctx context.Context, params application.RequestModificationParams) (application.Event, error)
	OverrideApprove(ctx context.Context, params application.OverrideApproveParams) (application.Event, error)
	MarkEventStarted(ctx context.Context, params application.MarkStartedParams) (application.Event, error)
	MarkEventCompleted(ctx context.Context, params application.MarkCompletedParams) (application.Event, error)
	ListVisibleEvents(ctx context.Context, params application.ListEventsParams) ([]application.Event, error)
	PendingApprovals(ctx context.Context, actor application.Actor) ([]application.Event, error)
	GetEvent(ctx context.Context, actor application.Actor, eventID string) (application.Event, error)
}

// EventHandler exposes the event request workflow over HTTP.
type EventHandler struct {
	service   eventService
	responder responder
	logger    *slog.Logger
}

// NewEventHandler constructs an event handler.
func NewEventHandler(service eventService, logger *slog.Logger) *EventHandler {
	base := defaultLogger(logger)
	return &EventHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *EventHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "EventHandler", operation, attrs...)
}

// Submit handles POST /events.
func (h *EventHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	actor, _ := ActorFromContext(r.Context())

	var req eventDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Submit", "actor_id", actor.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode event draft", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Submit", "actor_id", actor.UserID)

	event, warnings, err := h.service.SubmitEventRequest(r.Context(), application.SubmitEventParams{
		Actor: actor,
		Draft: req.toDraft(),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "event submission failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("event_id", event.ID).InfoContext(r.Context(), "event submitted")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, eventResponse{
		Event:    toEventDTO(event),
		Warnings: toWarningDTOs(warnings),
	})
}

// List handles GET /events.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	actor, _ := ActorFromContext(r.Context())
	logger := h.log(r.Context(), "List", "actor_id", actor.UserID)

	params := application.ListEventsParams{
		Actor:   actor,
		VenueID: strings.TrimSpace(r.URL.Query().Get("venue_id")),
	}
	for _, raw := range r.URL.Query()["status"] {
		status, err := workflow.ParseStatus(strings.TrimSpace(raw))
		if err != nil {
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
			return
		}
		params.Statuses = append(params.Statuses, status)
	}

	events, err := h.service.ListVisibleEvents(r.Context(), params)
	if err != nil {
		logger.ErrorContext(r.Context(), "event list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(events)).InfoContext(r.Context(), "events listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listEventsResponse{Events: toEventDTOs(events)})
}

// PendingApprovals handles GET /events/pending-approvals.
func (h *EventHandler) PendingApprovals(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	actor, _ := ActorFromContext(r.Context())
	logger := h.log(r.Context(), "PendingApprovals", "actor_id", actor.UserID)

	events, err := h.service.PendingApprovals(r.Context(), actor)
	if err != nil {
		logger.ErrorContext(r.Context(), "pending approvals failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(events)).InfoContext(r.Context(), "pending approvals listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listEventsResponse{Events: toEventDTOs(events)})
}

// Get handles GET /events/{eventID}.
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID := chi.URLParam(r, "eventID")
	if strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	actor, _ := ActorFromContext(r.Context())
	logger := h.log(r.Context(), "Get", "actor_id", actor.UserID, "event_id", eventID)

	event, err := h.service.GetEvent(r.Context(), actor, eventID)
	if err != nil {
		logger.ErrorContext(r.Context(), "event fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventResponse{Event: toEventDTO(event)})
}

// Approve handles POST /events/{eventID}/approve.
func (h *EventHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.reviewAction(w, r, "Approve", func(ctx context.Context, actor application.Actor, eventID string, body reviewRequest) (application.Event, error) {
		return h.service.ApproveEvent(ctx, application.ApproveEventParams{
			Actor:           actor,
			EventID:         eventID,
			Notes:           body.Notes,
			ExpectedVersion: body.ExpectedVersion,
		})
	})
}

// Reject handles POST /events/{eventID}/reject.
func (h *EventHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.reviewAction(w, r, "Reject", func(ctx context.Context, actor application.Actor, eventID string, body reviewRequest) (application.Event, error) {
		return h.service.RejectEvent(ctx, application.RejectEventParams{
			Actor:           actor,
			EventID:         eventID,
			Reason:          body.Reason,
			ExpectedVersion: body.ExpectedVersion,
		})
	})
}

// RequestModification handles POST /events/{eventID}/request-modification.
func (h *EventHandler) RequestModification(w http.ResponseWriter, r *http.Request) {
	h.reviewAction(w, r, "RequestModification", func(ctx context.Context, actor application.Actor, eventID string, body reviewRequest) (application.Event, error) {
		return h.service.RequestModification(ctx, application.RequestModificationParams{
			Actor:           actor,
			EventID:         eventID,
			Notes:           body.Notes,
			ExpectedVersion: body.ExpectedVersion,
		})
	})
}

// OverrideApprove handles POST /events/{eventID}/override-approve.
func (h *EventHandler) OverrideApprove(w http.ResponseWriter, r *http.Request) {
	h.reviewAction(w, r, "OverrideApprove", func(ctx context.Context, actor application.Actor, eventID string, body reviewRequest) (application.Event, error) {
		return h.service.OverrideApprove(ctx, application.OverrideApproveParams{
			Actor:           actor,
			EventID:         eventID,
			Notes:           body.Notes,
			ExpectedVersion: body.ExpectedVersion,
		})
	})
}

// Start handles POST /events/{eventID}/start.
func (h *EventHandler) Start(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID := chi.URLParam(r, "eventID")
	if strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	actor, _ := ActorFromContext(r.Context())

	var req startRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.log(r.Context(), "Start", "actor_id", actor.UserID, "event_id", eventID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode start request", "error", err)
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}
	}

	logger := h.log(r.Context(), "Start", "actor_id", actor.UserID, "event_id", eventID)

	event, err := h.service.MarkEventStarted(r.Context(), application.MarkStartedParams{
		Actor:           actor,
		EventID:         eventID,
		ExpectedVersion: req.ExpectedVersion,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "event start failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "event started")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventResponse{Event: toEventDTO(event)})
}

// Complete handles POST /events/{eventID}/complete.
func (h *EventHandler) Complete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID := chi.URLParam(r, "eventID")
	if strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	actor, _ := ActorFromContext(r.Context())

	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Complete", "actor_id", actor.UserID, "event_id", eventID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode completion request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Complete", "actor_id", actor.UserID, "event_id", eventID)

	event, err := h.service.MarkEventCompleted(r.Context(), application.MarkCompletedParams{
		Actor:              actor,
		EventID:            eventID,
		Summary:            req.Summary,
		ActualParticipants: req.ActualParticipants,
		ExpectedVersion:    req.ExpectedVersion,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "event completion failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "event completed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventResponse{Event: toEventDTO(event)})
}

func (h *EventHandler) reviewAction(w http.ResponseWriter, r *http.Request, operation string, action func(context.Context, application.Actor, string, reviewRequest) (application.Event, error)) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID := chi.URLParam(r, "eventID")
	if strings.TrimSpace(eventID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	actor, _ := ActorFromContext(r.Context())

	var req reviewRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.log(r.Context(), operation, "actor_id", actor.UserID, "event_id", eventID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode review request", "error", err)
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
			return
		}
	}

	logger := h.log(r.Context(), operation, "actor_id", actor.UserID, "event_id", eventID)

	event, err := action(r.Context(), actor, eventID, req)
	if err != nil {
		logger.ErrorContext(r.Context(), "review action failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("status", string(event.Status)).InfoContext(r.Context(), "review action applied")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventResponse{Event: toEventDTO(event)})
}

type venuePreferenceDTO struct {
	VenueID           string   `json:"venue_id"`
	Type              string   `json:"type,omitempty"`
	MinCapacity       int      `json:"min_capacity,omitempty"`
	PreferredFeatures []string `json:"preferred_features,omitempty"`
}

type allocationDTO struct {
	ResourceID string `json:"resource_id"`
	Name       string `json:"name,omitempty"`
	Count      int    `json:"count"`
}

type eventDraftRequest struct {
	Title                string             `json:"title"`
	Type                 string             `json:"type"`
	Description          *string            `json:"description"`
	Start                time.Time          `json:"start"`
	End                  time.Time          `json:"end"`
	VenuePreference      venuePreferenceDTO `json:"venue_preference"`
	ParticipantCount     int                `json:"participant_count"`
	MandatoryResources   []allocationDTO    `json:"mandatory_resources"`
	OptionalResources    []allocationDTO    `json:"optional_resources"`
	ConflictAcknowledged bool               `json:"conflict_acknowledged"`
}

func (r eventDraftRequest) toDraft() application.EventDraft {
	return application.EventDraft{
		Title:       strings.TrimSpace(r.Title),
		Type:        strings.TrimSpace(r.Type),
		Description: r.Description,
		Start:       r.Start,
		End:         r.End,
		VenuePreference: application.VenuePreference{
			VenueID:           strings.TrimSpace(r.VenuePreference.VenueID),
			Type:              strings.TrimSpace(r.VenuePreference.Type),
			MinCapacity:       r.VenuePreference.MinCapacity,
			PreferredFeatures: r.VenuePreference.PreferredFeatures,
		},
		ParticipantCount:     r.ParticipantCount,
		MandatoryResources:   toAllocations(r.MandatoryResources, application.PriorityMandatory),
		OptionalResources:    toAllocations(r.OptionalResources, application.PriorityOptional),
		ConflictAcknowledged: r.ConflictAcknowledged,
	}
}

func toAllocations(dtos []allocationDTO, priority string) []application.Allocation {
	if len(dtos) == 0 {
		return nil
	}
	out := make([]application.Allocation, 0, len(dtos))
	for _, dto := range dtos {
		out = append(out, application.Allocation{
			ResourceID: strings.TrimSpace(dto.ResourceID),
			Name:       strings.TrimSpace(dto.Name),
			Count:      dto.Count,
			Priority:   priority,
		})
	}
	return out
}

type reviewRequest struct {
	Notes           string `json:"notes"`
	Reason          string `json:"reason"`
	ExpectedVersion *int64 `json:"expected_version"`
}

type startRequest struct {
	ExpectedVersion *int64 `json:"expected_version"`
}

type completeRequest struct {
	Summary            string `json:"summary"`
	ActualParticipants *int   `json:"actual_participants"`
	ExpectedVersion    *int64 `json:"expected_version"`
}

type chainEntryDTO struct {
	Role      string `json:"role"`
	Action    string `json:"action"`
	ActorID   string `json:"actor_id,omitempty"`
	Override  bool   `json:"override,omitempty"`
	Notes     string `json:"notes,omitempty"`
	Timestamp string `json:"timestamp"`
}

type modificationRequestDTO struct {
	RequestedBy string `json:"requested_by"`
	ActorID     string `json:"actor_id"`
	Notes       string `json:"notes"`
	Timestamp   string `json:"timestamp"`
}

type eventDTO struct {
	ID                   string                   `json:"id"`
	Title                string                   `json:"title"`
	Type                 string                   `json:"type"`
	Description          *string                  `json:"description,omitempty"`
	Start                string                   `json:"start"`
	End                  string                   `json:"end"`
	VenueID              *string                  `json:"venue_id,omitempty"`
	VenuePreference      venuePreferenceDTO       `json:"venue_preference"`
	ParticipantCount     int                      `json:"participant_count"`
	MandatoryResources   []allocationDTO          `json:"mandatory_resources,omitempty"`
	OptionalResources    []allocationDTO          `json:"optional_resources,omitempty"`
	Status               string                   `json:"status"`
	ExecutionState       string                   `json:"execution_state"`
	RequesterID          string                   `json:"requester_id"`
	Department           string                   `json:"department,omitempty"`
	School               string                   `json:"school,omitempty"`
	RejectionReason      *string                  `json:"rejection_reason,omitempty"`
	ApprovalChain        []chainEntryDTO          `json:"approval_chain"`
	ModificationRequests []modificationRequestDTO `json:"modification_requests,omitempty"`
	IsModifiable         bool                     `json:"is_modifiable"`
	ConflictAcknowledged bool                     `json:"conflict_acknowledged"`
	PostEventSummary     *string                  `json:"post_event_summary,omitempty"`
	ActualParticipants   *int                     `json:"actual_participants,omitempty"`
	CreatedAt            string                   `json:"created_at"`
	UpdatedAt            string                   `json:"updated_at"`
	Version              int64                    `json:"version"`
}

type eventResponse struct {
	Event    eventDTO     `json:"event"`
	Warnings []warningDTO `json:"warnings,omitempty"`
}

type listEventsResponse struct {
	Events []eventDTO `json:"events"`
}

type warningDTO struct {
	EventID string `json:"event_id"`
	VenueID string `json:"venue_id"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

func toEventDTO(event application.Event) eventDTO {
	dto := eventDTO{
		ID:          event.ID,
		Title:       event.Title,
		Type:        event.Type,
		Description: event.Description,
		Start:       formatTimestamp(event.Start),
		End:         formatTimestamp(event.End),
		VenueID:     event.VenueID,
		VenuePreference: venuePreferenceDTO{
			VenueID:           event.VenuePreference.VenueID,
			Type:              event.VenuePreference.Type,
			MinCapacity:       event.VenuePreference.MinCapacity,
			PreferredFeatures: event.VenuePreference.PreferredFeatures,
		},
		ParticipantCount:     event.ParticipantCount,
		Status:               string(event.Status),
		ExecutionState:       string(event.ExecutionState),
		RequesterID:          event.RequesterID,
		Department:           event.Department,
		School:               event.School,
		RejectionReason:      event.RejectionReason,
		IsModifiable:         event.IsModifiable,
		ConflictAcknowledged: event.ConflictAcknowledged,
		PostEventSummary:     event.PostEventSummary,
		ActualParticipants:   event.ActualParticipants,
		CreatedAt:            formatTimestamp(event.CreatedAt),
		UpdatedAt:            formatTimestamp(event.UpdatedAt),
		Version:              event.Version,
	}

	for _, allocation := range event.MandatoryResources {
		dto.MandatoryResources = append(dto.MandatoryResources, allocationDTO{
			ResourceID: allocation.ResourceID,
			Name:       allocation.Name,
			Count:      allocation.Count,
		})
	}
	for _, allocation := range event.OptionalResources {
		dto.OptionalResources = append(dto.OptionalResources, allocationDTO{
			ResourceID: allocation.ResourceID,
			Name:       allocation.Name,
			Count:      allocation.Count,
		})
	}
	for _, entry := range event.ApprovalChain {
		dto.ApprovalChain = append(dto.ApprovalChain, chainEntryDTO{
			Role:      string(entry.Role),
			Action:    string(entry.Action),
			ActorID:   entry.ActorID,
			Override:  entry.Override,
			Notes:     entry.Notes,
			Timestamp: formatTimestamp(entry.Timestamp),
		})
	}
	for _, request := range event.ModificationRequests {
		dto.ModificationRequests = append(dto.ModificationRequests, modificationRequestDTO{
			RequestedBy: string(request.RequestedBy),
			ActorID:     request.ActorID,
			Notes:       request.Notes,
			Timestamp:   formatTimestamp(request.Timestamp),
		})
	}

	return dto
}

func toEventDTOs(events []application.Event) []eventDTO {
	if len(events) == 0 {
		return nil
	}
	out := make([]eventDTO, 0, len(events))
	for _, event := range events {
		out = append(out, toEventDTO(event))
	}
	return out
}

func toWarningDTOs(warnings []application.ConflictWarning) []warningDTO {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]warningDTO, 0, len(warnings))
	for _, warning := range warnings {
		out = append(out, warningDTO{
			EventID: warning.EventID,
			VenueID: warning.VenueID,
			Start:   formatTimestamp(warning.Start),
			End:     formatTimestamp(warning.End),
		})
	}
	return out
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
