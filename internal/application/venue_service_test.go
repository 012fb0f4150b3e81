package application

import (
	"context"
	"errors"
	"testing"

	"github.com/example/campus-coordinator/internal/persistence"
	"github.com/example/campus-coordinator/internal/workflow"
)

type venueRepoStub struct {
	venues    map[string]Venue
	createErr error
	updateErr error
	listErr   error
}

func newVenueRepoStub() *venueRepoStub {
	return &venueRepoStub{venues: make(map[string]Venue)}
}

func (r *venueRepoStub) CreateVenue(ctx context.Context, venue Venue) error {
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.venues[venue.ID]; ok {
		return persistence.ErrDuplicate
	}
	r.venues[venue.ID] = venue
	return nil
}

func (r *venueRepoStub) GetVenue(ctx context.Context, id string) (Venue, error) {
	venue, ok := r.venues[id]
	if !ok {
		return Venue{}, persistence.ErrNotFound
	}
	return venue, nil
}

func (r *venueRepoStub) UpdateVenue(ctx context.Context, venue Venue) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.venues[venue.ID]; !ok {
		return persistence.ErrNotFound
	}
	r.venues[venue.ID] = venue
	return nil
}

func (r *venueRepoStub) ListVenues(ctx context.Context) ([]Venue, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]Venue, 0, len(r.venues))
	for _, venue := range r.venues {
		out = append(out, venue)
	}
	return out, nil
}

func adminActor() Actor {
	return Actor{Role: workflow.RoleAdmin, UserID: "admin1"}
}

func TestVenueService_CreateVenue(t *testing.T) {
	t.Run("requires an administrator", func(t *testing.T) {
		svc := NewVenueService(nil, nil, nil, nil)

		_, err := svc.CreateVenue(context.Background(), CreateVenueParams{
			Actor: coordinator(),
			Input: VenueInput{Name: "Main Auditorium", Type: "Auditorium", Capacity: 300},
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("validates required attributes", func(t *testing.T) {
		svc := NewVenueService(nil, nil, nil, nil)

		_, err := svc.CreateVenue(context.Background(), CreateVenueParams{
			Actor: adminActor(),
			Input: VenueInput{Name: " ", Type: "", Capacity: 0},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"name", "type", "capacity"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Errorf("expected %s validation error, got %v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("persists a normalized venue", func(t *testing.T) {
		repo := newVenueRepoStub()
		svc := NewVenueService(repo, nil, sequentialIDs("venue"), fixedClock())

		location := "  Block A  "
		venue, err := svc.CreateVenue(context.Background(), CreateVenueParams{
			Actor: adminActor(),
			Input: VenueInput{
				Name:     "  Main Auditorium  ",
				Type:     "Auditorium",
				Capacity: 300,
				Features: []string{" Projector ", "Projector", ""},
				Location: &location,
			},
		})
		if err != nil {
			t.Fatalf("CreateVenue failed: %v", err)
		}
		if venue.Name != "Main Auditorium" {
			t.Errorf("expected trimmed name, got '%s'", venue.Name)
		}
		if len(venue.Features) != 1 || venue.Features[0] != "Projector" {
			t.Errorf("expected deduplicated features, got %v", venue.Features)
		}
		if venue.Location == nil || *venue.Location != "Block A" {
			t.Errorf("expected trimmed location, got %v", venue.Location)
		}
		if _, ok := repo.venues[venue.ID]; !ok {
			t.Error("expected venue to be persisted")
		}
	})
}

func TestVenueService_UpdateVenue(t *testing.T) {
	t.Run("requires an administrator", func(t *testing.T) {
		repo := newVenueRepoStub()
		svc := NewVenueService(repo, nil, sequentialIDs("venue"), fixedClock())

		_, err := svc.UpdateVenue(context.Background(), UpdateVenueParams{
			Actor:   coordinator(),
			VenueID: "venue1",
			Input:   VenueInput{Name: "Hall", Type: "Hall", Capacity: 50},
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("reports unknown venues", func(t *testing.T) {
		repo := newVenueRepoStub()
		svc := NewVenueService(repo, nil, sequentialIDs("venue"), fixedClock())

		_, err := svc.UpdateVenue(context.Background(), UpdateVenueParams{
			Actor:   adminActor(),
			VenueID: "missing",
			Input:   VenueInput{Name: "Hall", Type: "Hall", Capacity: 50},
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("applies changes to an existing venue", func(t *testing.T) {
		repo := newVenueRepoStub()
		svc := NewVenueService(repo, nil, sequentialIDs("venue"), fixedClock())

		created, err := svc.CreateVenue(context.Background(), CreateVenueParams{
			Actor: adminActor(),
			Input: VenueInput{Name: "Seminar Hall", Type: "Hall", Capacity: 80},
		})
		if err != nil {
			t.Fatalf("CreateVenue failed: %v", err)
		}

		updated, err := svc.UpdateVenue(context.Background(), UpdateVenueParams{
			Actor:   adminActor(),
			VenueID: created.ID,
			Input:   VenueInput{Name: "Seminar Hall", Type: "Hall", Capacity: 100},
		})
		if err != nil {
			t.Fatalf("UpdateVenue failed: %v", err)
		}
		if updated.Capacity != 100 {
			t.Errorf("expected capacity 100, got %d", updated.Capacity)
		}
	})
}

func TestVenueService_ListVenues(t *testing.T) {
	newCatalog := func(t *testing.T, events EventRepository) *VenueService {
		t.Helper()
		repo := newVenueRepoStub()
		svc := NewVenueService(repo, events, sequentialIDs("venue"), fixedClock())
		for _, name := range []string{"Seminar Hall", "Main Auditorium"} {
			if _, err := svc.CreateVenue(context.Background(), CreateVenueParams{
				Actor: adminActor(),
				Input: VenueInput{Name: name, Type: "Hall", Capacity: 50},
			}); err != nil {
				t.Fatalf("CreateVenue failed: %v", err)
			}
		}
		return svc
	}

	t.Run("administrators see the ordered catalog", func(t *testing.T) {
		svc := newCatalog(t, newEventRepoStub())

		venues, err := svc.ListVenues(context.Background(), adminActor())
		if err != nil {
			t.Fatalf("ListVenues failed: %v", err)
		}
		if len(venues) != 2 {
			t.Fatalf("expected 2 venues, got %d", len(venues))
		}
		if venues[0].Name != "Main Auditorium" || venues[1].Name != "Seminar Hall" {
			t.Errorf("expected name ordering, got %s, %s", venues[0].Name, venues[1].Name)
		}
	})

	t.Run("coordinators see only venues their requests reference", func(t *testing.T) {
		events := newEventRepoStub()
		events.events["event1"] = Event{
			ID:              "event1",
			RequesterID:     coordinator().UserID,
			Status:          workflow.StatusPendingHOD,
			VenuePreference: VenuePreference{VenueID: "venue2"},
			Version:         1,
		}
		events.events["event2"] = Event{
			ID:              "event2",
			RequesterID:     "someone-else",
			Status:          workflow.StatusPendingHOD,
			VenuePreference: VenuePreference{VenueID: "venue1"},
			Version:         1,
		}
		svc := newCatalog(t, events)

		venues, err := svc.ListVenues(context.Background(), coordinator())
		if err != nil {
			t.Fatalf("ListVenues failed: %v", err)
		}
		if len(venues) != 1 || venues[0].ID != "venue2" {
			t.Fatalf("expected only venue2 for the coordinator, got %+v", venues)
		}
	})

	t.Run("coordinators with no requests see nothing", func(t *testing.T) {
		svc := newCatalog(t, newEventRepoStub())

		venues, err := svc.ListVenues(context.Background(), coordinator())
		if err != nil {
			t.Fatalf("ListVenues failed: %v", err)
		}
		if len(venues) != 0 {
			t.Fatalf("expected an empty catalog, got %+v", venues)
		}
	})
}
