package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/campus-coordinator/internal/persistence"
)

func newEvent(id string, createdAt time.Time) persistence.Event {
	return persistence.Event{
		ID:             id,
		Title:          "Orientation",
		Type:           "Seminar",
		Start:          createdAt.Add(24 * time.Hour),
		End:            createdAt.Add(26 * time.Hour),
		Status:         "PendingHOD",
		ExecutionState: "NotStarted",
		RequesterRole:  "Coordinator",
		RequesterID:    "coord-1",
		Department:     "CSE",
		School:         "Engineering",
		VenuePreference: persistence.VenuePreference{
			VenueID:     "venue-1",
			Type:        "SeminarHall",
			MinCapacity: 80,
		},
		IsModifiable: true,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

func TestEventLifecycle(t *testing.T) {
	ctx := context.Background()
	store := Open()
	base := time.Date(2025, time.September, 1, 9, 0, 0, 0, time.UTC)

	t.Run("create assigns version one", func(t *testing.T) {
		if err := store.CreateEvent(ctx, newEvent("evt-1", base)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		stored, err := store.GetEvent(ctx, "evt-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stored.Version != 1 {
			t.Fatalf("expected version 1, got %d", stored.Version)
		}
	})

	t.Run("duplicate create is rejected", func(t *testing.T) {
		if err := store.CreateEvent(ctx, newEvent("evt-1", base)); !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("update increments the version", func(t *testing.T) {
		stored, err := store.GetEvent(ctx, "evt-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		stored.Status = "PendingDean"
		updated, err := store.UpdateEvent(ctx, stored)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.Version != 2 {
			t.Fatalf("expected version 2, got %d", updated.Version)
		}
	})

	t.Run("stale version is rejected", func(t *testing.T) {
		stale, err := store.GetEvent(ctx, "evt-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		stale.Version = 1
		if _, err := store.UpdateEvent(ctx, stale); !errors.Is(err, persistence.ErrStaleVersion) {
			t.Fatalf("expected ErrStaleVersion, got %v", err)
		}
	})

	t.Run("missing event maps to not found", func(t *testing.T) {
		if _, err := store.GetEvent(ctx, "evt-9"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if _, err := store.UpdateEvent(ctx, newEvent("evt-9", base)); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("stored aggregates are isolated from caller mutation", func(t *testing.T) {
		stored, err := store.GetEvent(ctx, "evt-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		stored.ApprovalChain = append(stored.ApprovalChain, persistence.ChainEntry{Role: "HOD", Action: "Approved"})
		again, err := store.GetEvent(ctx, "evt-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(again.ApprovalChain) != 0 {
			t.Fatalf("expected stored chain to be untouched, got %d entries", len(again.ApprovalChain))
		}
	})
}

func TestListEvents(t *testing.T) {
	ctx := context.Background()
	store := Open()
	base := time.Date(2025, time.September, 1, 9, 0, 0, 0, time.UTC)

	second := newEvent("evt-b", base.Add(time.Hour))
	second.Department = "ECE"
	second.RequesterID = "coord-2"
	first := newEvent("evt-a", base)

	if err := store.CreateEvent(ctx, second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.CreateEvent(ctx, first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("orders by created time ascending", func(t *testing.T) {
		events, err := store.ListEvents(ctx, persistence.EventFilter{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(events) != 2 || events[0].ID != "evt-a" || events[1].ID != "evt-b" {
			t.Fatalf("unexpected ordering: %+v", events)
		}
	})

	t.Run("filters by requester", func(t *testing.T) {
		events, err := store.ListEvents(ctx, persistence.EventFilter{RequesterID: "coord-2"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(events) != 1 || events[0].ID != "evt-b" {
			t.Fatalf("unexpected filter result: %+v", events)
		}
	})

	t.Run("filters by department", func(t *testing.T) {
		events, err := store.ListEvents(ctx, persistence.EventFilter{Department: "CSE"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(events) != 1 || events[0].ID != "evt-a" {
			t.Fatalf("unexpected filter result: %+v", events)
		}
	})

	t.Run("filters by occupied venue", func(t *testing.T) {
		bound := newEvent("evt-c", base.Add(2*time.Hour))
		venueID := "venue-2"
		bound.VenueID = &venueID
		if err := store.CreateEvent(ctx, bound); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		events, err := store.ListEvents(ctx, persistence.EventFilter{VenueID: "venue-2"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(events) != 1 || events[0].ID != "evt-c" {
			t.Fatalf("unexpected filter result: %+v", events)
		}
	})
}

func TestVenueRepository(t *testing.T) {
	ctx := context.Background()
	store := Open()

	venue := persistence.Venue{ID: "venue-1", Name: "Main Auditorium", Type: "Auditorium", Capacity: 400}
	if err := store.CreateVenue(ctx, venue); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := store.CreateVenue(ctx, venue); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	invalid := persistence.Venue{ID: "venue-2", Name: "Broken", Type: "Lab", Capacity: 0}
	if err := store.CreateVenue(ctx, invalid); !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}

	venue.Capacity = 420
	if err := store.UpdateVenue(ctx, venue); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, err := store.GetVenue(ctx, "venue-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Capacity != 420 {
		t.Fatalf("expected capacity 420, got %d", stored.Capacity)
	}

	if err := store.UpdateVenue(ctx, persistence.Venue{ID: "venue-9", Capacity: 5}); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResourceRepository(t *testing.T) {
	ctx := context.Background()
	store := Open()

	res := persistence.Resource{ID: "res-1", Name: "Projector", Type: "Equipment", TotalCapacity: 10, MaintenanceStatus: "Available"}
	if err := store.CreateResource(ctx, res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := store.CreateResource(ctx, res); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	res.MaintenanceStatus = "UnderMaintenance"
	if err := store.UpdateResource(ctx, res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, err := store.GetResource(ctx, "res-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.MaintenanceStatus != "UnderMaintenance" {
		t.Fatalf("unexpected maintenance status: %s", stored.MaintenanceStatus)
	}

	list, err := store.ListResources(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one resource, got %d", len(list))
	}
}
