package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/campus-coordinator/internal/application"
	"github.com/example/campus-coordinator/internal/workflow"
)

type eventServiceStub struct {
	event    application.Event
	events   []application.Event
	warnings []application.ConflictWarning
	err      error

	submitted application.SubmitEventParams
	approved  application.ApproveEventParams
	rejected  application.RejectEventParams
}

func (s *eventServiceStub) SubmitEventRequest(ctx context.Context, params application.SubmitEventParams) (application.Event, []application.ConflictWarning, error) {
	s.submitted = params
	if s.err != nil {
		return application.Event{}, nil, s.err
	}
	return s.event, s.warnings, nil
}

func (s *eventServiceStub) ApproveEvent(ctx context.Context, params application.ApproveEventParams) (application.Event, error) {
	s.approved = params
	if s.err != nil {
		return application.Event{}, s.err
	}
	return s.event, nil
}

func (s *eventServiceStub) RejectEvent(ctx context.Context, params application.RejectEventParams) (application.Event, error) {
	s.rejected = params
	if s.err != nil {
		return application.Event{}, s.err
	}
	return s.event, nil
}

func (s *eventServiceStub) RequestModification(ctx context.Context, params application.RequestModificationParams) (application.Event, error) {
	if s.err != nil {
		return application.Event{}, s.err
	}
	return s.event, nil
}

func (s *eventServiceStub) OverrideApprove(ctx context.Context, params application.OverrideApproveParams) (application.Event, error) {
	if s.err != nil {
		return application.Event{}, s.err
	}
	return s.event, nil
}

func (s *eventServiceStub) MarkEventStarted(ctx context.Context, params application.MarkStartedParams) (application.Event, error) {
	if s.err != nil {
		return application.Event{}, s.err
	}
	return s.event, nil
}

func (s *eventServiceStub) MarkEventCompleted(ctx context.Context, params application.MarkCompletedParams) (application.Event, error) {
	if s.err != nil {
		return application.Event{}, s.err
	}
	return s.event, nil
}

func (s *eventServiceStub) ListVisibleEvents(ctx context.Context, params application.ListEventsParams) ([]application.Event, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.events, nil
}

func (s *eventServiceStub) PendingApprovals(ctx context.Context, actor application.Actor) ([]application.Event, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.events, nil
}

func (s *eventServiceStub) GetEvent(ctx context.Context, actor application.Actor, eventID string) (application.Event, error) {
	if s.err != nil {
		return application.Event{}, s.err
	}
	return s.event, nil
}

func (s *eventServiceStub) CheckVenueConflict(ctx context.Context, query application.VenueConflictQuery) ([]application.ConflictWarning, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.warnings, nil
}

type venueServiceStub struct {
	venue  application.Venue
	venues []application.Venue
	err    error
}

func (s *venueServiceStub) CreateVenue(ctx context.Context, params application.CreateVenueParams) (application.Venue, error) {
	if s.err != nil {
		return application.Venue{}, s.err
	}
	return s.venue, nil
}

func (s *venueServiceStub) UpdateVenue(ctx context.Context, params application.UpdateVenueParams) (application.Venue, error) {
	if s.err != nil {
		return application.Venue{}, s.err
	}
	return s.venue, nil
}

func (s *venueServiceStub) GetVenue(ctx context.Context, id string) (application.Venue, error) {
	if s.err != nil {
		return application.Venue{}, s.err
	}
	return s.venue, nil
}

func (s *venueServiceStub) ListVenues(ctx context.Context, actor application.Actor) ([]application.Venue, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.venues, nil
}

type resourceServiceStub struct {
	resource     application.Resource
	resources    []application.Resource
	usage        application.ResourceUsage
	checkedCount int
	err          error
}

func (s *resourceServiceStub) CreateResource(ctx context.Context, params application.CreateResourceParams) (application.Resource, error) {
	if s.err != nil {
		return application.Resource{}, s.err
	}
	return s.resource, nil
}

func (s *resourceServiceStub) UpdateResource(ctx context.Context, params application.UpdateResourceParams) (application.Resource, error) {
	if s.err != nil {
		return application.Resource{}, s.err
	}
	return s.resource, nil
}

func (s *resourceServiceStub) GetResource(ctx context.Context, id string) (application.Resource, error) {
	if s.err != nil {
		return application.Resource{}, s.err
	}
	return s.resource, nil
}

func (s *resourceServiceStub) ListResources(ctx context.Context, actor application.Actor) ([]application.Resource, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.resources, nil
}

func (s *resourceServiceStub) GetResourceUsage(ctx context.Context, actor application.Actor, resourceID string) (application.ResourceUsage, error) {
	if s.err != nil {
		return application.ResourceUsage{}, s.err
	}
	return s.usage, nil
}

func (s *resourceServiceStub) CheckResourceCapacity(ctx context.Context, actor application.Actor, resourceID string, count int) error {
	s.checkedCount = count
	return s.err
}

func sampleEvent() application.Event {
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	return application.Event{
		ID:               "event1",
		Title:            "Robotics Workshop",
		Type:             "Workshop",
		Start:            now,
		End:              now.Add(2 * time.Hour),
		VenuePreference:  application.VenuePreference{VenueID: "venue1"},
		ParticipantCount: 50,
		Status:           workflow.StatusPendingHOD,
		ExecutionState:   workflow.ExecutionNotStarted,
		RequesterID:      "user1",
		Department:       "CSE",
		School:           "Engineering",
		IsModifiable:     true,
		CreatedAt:        now,
		UpdatedAt:        now,
		Version:          1,
	}
}

func newTestRouter(events *eventServiceStub, venues *venueServiceStub, resources *resourceServiceStub) http.Handler {
	cfg := RouterConfig{
		Events:     NewEventHandler(events, nil),
		Venues:     NewVenueHandler(venues, events, nil),
		Middleware: []func(http.Handler) http.Handler{RequireActor(nil)},
	}
	if resources != nil {
		cfg.Resources = NewResourceHandler(resources, nil)
	}
	return NewRouter(cfg)
}

func withActorHeaders(req *http.Request, role string) *http.Request {
	req.Header.Set(HeaderActorRole, role)
	req.Header.Set(HeaderActorID, "user1")
	req.Header.Set(HeaderActorDepartment, "CSE")
	req.Header.Set(HeaderActorSchool, "Engineering")
	return req
}

func TestEventHandler_Submit(t *testing.T) {
	t.Run("returns created event with warnings", func(t *testing.T) {
		stub := &eventServiceStub{
			event: sampleEvent(),
			warnings: []application.ConflictWarning{
				{EventID: "event9", VenueID: "venue1"},
			},
		}
		router := newTestRouter(stub, &venueServiceStub{}, nil)

		body := `{
			"title": "Robotics Workshop",
			"type": "Workshop",
			"start": "2026-04-10T09:00:00Z",
			"end": "2026-04-10T11:00:00Z",
			"venue_preference": {"venue_id": "venue1"},
			"participant_count": 50,
			"mandatory_resources": [{"resource_id": "res1", "count": 2}]
		}`
		req := withActorHeaders(httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body)), "Coordinator")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var resp struct {
			Event    eventDTO     `json:"event"`
			Warnings []warningDTO `json:"warnings"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Event.ID != "event1" {
			t.Errorf("expected event1, got %s", resp.Event.ID)
		}
		if len(resp.Warnings) != 1 || resp.Warnings[0].EventID != "event9" {
			t.Errorf("expected one warning about event9, got %+v", resp.Warnings)
		}

		if stub.submitted.Actor.Role != workflow.RoleCoordinator {
			t.Errorf("expected coordinator actor, got %s", stub.submitted.Actor.Role)
		}
		if len(stub.submitted.Draft.MandatoryResources) != 1 || stub.submitted.Draft.MandatoryResources[0].Priority != application.PriorityMandatory {
			t.Errorf("expected mandatory allocation priority, got %+v", stub.submitted.Draft.MandatoryResources)
		}
	})

	t.Run("rejects malformed bodies", func(t *testing.T) {
		router := newTestRouter(&eventServiceStub{}, &venueServiceStub{}, nil)

		req := withActorHeaders(httptest.NewRequest(http.MethodPost, "/events", strings.NewReader("{not json")), "Coordinator")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("requires actor identity headers", func(t *testing.T) {
		router := newTestRouter(&eventServiceStub{}, &venueServiceStub{}, nil)

		req := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader("{}"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("rejects unknown roles", func(t *testing.T) {
		router := newTestRouter(&eventServiceStub{}, &venueServiceStub{}, nil)

		req := withActorHeaders(httptest.NewRequest(http.MethodPost, "/events", strings.NewReader("{}")), "Janitor")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestEventHandler_ReviewActions(t *testing.T) {
	t.Run("approve forwards notes", func(t *testing.T) {
		stub := &eventServiceStub{event: sampleEvent()}
		router := newTestRouter(stub, &venueServiceStub{}, nil)

		req := withActorHeaders(httptest.NewRequest(http.MethodPost, "/events/event1/approve", strings.NewReader(`{"notes":"looks good"}`)), "HOD")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.approved.EventID != "event1" || stub.approved.Notes != "looks good" {
			t.Errorf("unexpected approve params: %+v", stub.approved)
		}
	})

	t.Run("reject forwards the reason", func(t *testing.T) {
		stub := &eventServiceStub{event: sampleEvent()}
		router := newTestRouter(stub, &venueServiceStub{}, nil)

		req := withActorHeaders(httptest.NewRequest(http.MethodPost, "/events/event1/reject", strings.NewReader(`{"reason":"venue closed"}`)), "HOD")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if stub.rejected.Reason != "venue closed" {
			t.Errorf("expected reason to be forwarded, got %+v", stub.rejected)
		}
	})

	t.Run("missing reason maps to 422", func(t *testing.T) {
		stub := &eventServiceStub{err: application.ErrMissingReason}
		router := newTestRouter(stub, &venueServiceStub{}, nil)

		req := withActorHeaders(httptest.NewRequest(http.MethodPost, "/events/event1/reject", strings.NewReader(`{}`)), "HOD")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
	})

	t.Run("unauthorized maps to 403", func(t *testing.T) {
		stub := &eventServiceStub{err: application.ErrUnauthorized}
		router := newTestRouter(stub, &venueServiceStub{}, nil)

		req := withActorHeaders(httptest.NewRequest(http.MethodPost, "/events/event1/approve", nil), "Dean")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("stale event maps to 409", func(t *testing.T) {
		stub := &eventServiceStub{err: application.ErrStaleEvent}
		router := newTestRouter(stub, &venueServiceStub{}, nil)

		req := withActorHeaders(httptest.NewRequest(http.MethodPost, "/events/event1/approve", nil), "HOD")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})

	t.Run("unknown events map to 404", func(t *testing.T) {
		stub := &eventServiceStub{err: application.ErrNotFound}
		router := newTestRouter(stub, &venueServiceStub{}, nil)

		req := withActorHeaders(httptest.NewRequest(http.MethodGet, "/events/missing", nil), "Coordinator")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestEventHandler_List(t *testing.T) {
	t.Run("rejects unknown status filters", func(t *testing.T) {
		router := newTestRouter(&eventServiceStub{}, &venueServiceStub{}, nil)

		req := withActorHeaders(httptest.NewRequest(http.MethodGet, "/events?status=Bogus", nil), "Coordinator")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns events", func(t *testing.T) {
		stub := &eventServiceStub{events: []application.Event{sampleEvent()}}
		router := newTestRouter(stub, &venueServiceStub{}, nil)

		req := withActorHeaders(httptest.NewRequest(http.MethodGet, "/events?status=PendingHOD", nil), "Coordinator")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var resp listEventsResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(resp.Events) != 1 || resp.Events[0].ID != "event1" {
			t.Errorf("expected event1, got %+v", resp.Events)
		}
	})
}

func TestVenueHandler_Conflicts(t *testing.T) {
	stub := &eventServiceStub{
		warnings: []application.ConflictWarning{{EventID: "event1", VenueID: "venue1"}},
	}
	router := newTestRouter(stub, &venueServiceStub{}, nil)

	req := withActorHeaders(httptest.NewRequest(http.MethodGet, "/venues/venue1/conflict?start=2026-04-10T09:00:00Z&end=2026-04-10T11:00:00Z", nil), "Coordinator")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp conflictResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.HasConflict || len(resp.Warnings) != 1 {
		t.Errorf("expected a conflict, got %+v", resp)
	}
}

func TestVenueHandler_Create(t *testing.T) {
	t.Run("forbidden for non-administrators", func(t *testing.T) {
		venues := &venueServiceStub{err: application.ErrUnauthorized}
		router := newTestRouter(&eventServiceStub{}, venues, nil)

		req := withActorHeaders(httptest.NewRequest(http.MethodPost, "/venues", strings.NewReader(`{"name":"Hall","type":"Hall","capacity":50}`)), "Coordinator")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("returns the created venue", func(t *testing.T) {
		venues := &venueServiceStub{venue: application.Venue{ID: "venue1", Name: "Hall", Type: "Hall", Capacity: 50}}
		router := newTestRouter(&eventServiceStub{}, venues, nil)

		req := withActorHeaders(httptest.NewRequest(http.MethodPost, "/venues", strings.NewReader(`{"name":"Hall","type":"Hall","capacity":50}`)), "Admin")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
	})
}

func TestResourceHandler_Usage(t *testing.T) {
	resources := &resourceServiceStub{
		usage: application.ResourceUsage{ResourceID: "res1", Used: 9, Total: 10, Percent: 90, Remaining: 1, Critical: true},
	}
	router := newTestRouter(&eventServiceStub{}, &venueServiceStub{}, resources)

	req := withActorHeaders(httptest.NewRequest(http.MethodGet, "/resources/res1/usage", nil), "Admin")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp usageResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Usage.Percent != 90 || !resp.Usage.Critical {
		t.Errorf("expected critical 90%% usage, got %+v", resp.Usage)
	}
}

func TestResourceHandler_Capacity(t *testing.T) {
	t.Run("confirms counts within total capacity", func(t *testing.T) {
		resources := &resourceServiceStub{}
		router := newTestRouter(&eventServiceStub{}, &venueServiceStub{}, resources)

		req := withActorHeaders(httptest.NewRequest(http.MethodGet, "/resources/res1/capacity?count=4", nil), "Coordinator")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if resources.checkedCount != 4 {
			t.Errorf("expected count 4 to be forwarded, got %d", resources.checkedCount)
		}

		var resp capacityResponse
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.ResourceID != "res1" || resp.Requested != 4 || !resp.Fits {
			t.Errorf("unexpected capacity response: %+v", resp)
		}
	})

	t.Run("maps capacity exhaustion to 422", func(t *testing.T) {
		resources := &resourceServiceStub{err: application.ErrCapacityExceeded}
		router := newTestRouter(&eventServiceStub{}, &venueServiceStub{}, resources)

		req := withActorHeaders(httptest.NewRequest(http.MethodGet, "/resources/res1/capacity?count=99", nil), "Coordinator")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
	})

	t.Run("rejects non-numeric counts", func(t *testing.T) {
		router := newTestRouter(&eventServiceStub{}, &venueServiceStub{}, &resourceServiceStub{})

		req := withActorHeaders(httptest.NewRequest(http.MethodGet, "/resources/res1/capacity?count=lots", nil), "Coordinator")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestResourceHandler_ValidationMapsTo422(t *testing.T) {
	resources := &resourceServiceStub{err: &application.ValidationError{
		FieldErrors: map[string]string{"name": "name is required"},
	}}
	router := newTestRouter(&eventServiceStub{}, &venueServiceStub{}, resources)

	req := withActorHeaders(httptest.NewRequest(http.MethodPost, "/resources", strings.NewReader(`{}`)), "Admin")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}

	var resp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Errors["name"] != "name is required" {
		t.Errorf("expected field errors to be surfaced, got %+v", resp)
	}
}
