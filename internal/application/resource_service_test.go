package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/campus-coordinator/internal/persistence"
	"github.com/example/campus-coordinator/internal/workflow"
)

type resourceRepoStub struct {
	resources map[string]Resource
	createErr error
	updateErr error
	listErr   error
}

func newResourceRepoStub() *resourceRepoStub {
	return &resourceRepoStub{resources: make(map[string]Resource)}
}

func (r *resourceRepoStub) CreateResource(ctx context.Context, resource Resource) error {
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.resources[resource.ID]; ok {
		return persistence.ErrDuplicate
	}
	r.resources[resource.ID] = resource
	return nil
}

func (r *resourceRepoStub) GetResource(ctx context.Context, id string) (Resource, error) {
	resource, ok := r.resources[id]
	if !ok {
		return Resource{}, persistence.ErrNotFound
	}
	return resource, nil
}

func (r *resourceRepoStub) UpdateResource(ctx context.Context, resource Resource) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.resources[resource.ID]; !ok {
		return persistence.ErrNotFound
	}
	r.resources[resource.ID] = resource
	return nil
}

func (r *resourceRepoStub) ListResources(ctx context.Context) ([]Resource, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]Resource, 0, len(r.resources))
	for _, resource := range r.resources {
		out = append(out, resource)
	}
	return out, nil
}

func runningEvent(id string, allocations []Allocation) Event {
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	return Event{
		ID:                 id,
		Title:              "Running Event",
		Type:               "Workshop",
		Start:              now,
		End:                now.Add(2 * time.Hour),
		Status:             workflow.StatusRunning,
		ExecutionState:     workflow.ExecutionInProgress,
		RequesterID:        "user1",
		Department:         "CSE",
		School:             "Engineering",
		MandatoryResources: allocations,
		CreatedAt:          now,
		UpdatedAt:          now,
		Version:            1,
	}
}

func TestResourceService_CreateResource(t *testing.T) {
	t.Run("requires an administrator", func(t *testing.T) {
		svc := NewResourceService(nil, nil, nil, nil)

		_, err := svc.CreateResource(context.Background(), CreateResourceParams{
			Actor: coordinator(),
			Input: ResourceInput{Name: "Projector", Type: "Equipment", TotalCapacity: 10},
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("validates required attributes", func(t *testing.T) {
		svc := NewResourceService(nil, nil, nil, nil)

		_, err := svc.CreateResource(context.Background(), CreateResourceParams{
			Actor: adminActor(),
			Input: ResourceInput{Name: "", Type: "", TotalCapacity: 0, MaintenanceStatus: "Broken"},
		})

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"name", "type", "total_capacity", "maintenance_status"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Errorf("expected %s validation error, got %v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("defaults maintenance status to available", func(t *testing.T) {
		repo := newResourceRepoStub()
		svc := NewResourceService(repo, nil, sequentialIDs("res"), fixedClock())

		resource, err := svc.CreateResource(context.Background(), CreateResourceParams{
			Actor: adminActor(),
			Input: ResourceInput{Name: "Projector", Type: "Equipment", TotalCapacity: 10},
		})
		if err != nil {
			t.Fatalf("CreateResource failed: %v", err)
		}
		if resource.MaintenanceStatus != ResourceAvailable {
			t.Errorf("expected Available, got %s", resource.MaintenanceStatus)
		}
	})
}

func TestResourceService_UpdateResource(t *testing.T) {
	repo := newResourceRepoStub()
	svc := NewResourceService(repo, nil, sequentialIDs("res"), fixedClock())

	created, err := svc.CreateResource(context.Background(), CreateResourceParams{
		Actor: adminActor(),
		Input: ResourceInput{Name: "PA System", Type: "Equipment", TotalCapacity: 4},
	})
	if err != nil {
		t.Fatalf("CreateResource failed: %v", err)
	}

	t.Run("applies maintenance status changes", func(t *testing.T) {
		updated, err := svc.UpdateResource(context.Background(), UpdateResourceParams{
			Actor:      adminActor(),
			ResourceID: created.ID,
			Input: ResourceInput{
				Name:              "PA System",
				Type:              "Equipment",
				TotalCapacity:     4,
				MaintenanceStatus: ResourceUnderMaintenance,
			},
		})
		if err != nil {
			t.Fatalf("UpdateResource failed: %v", err)
		}
		if updated.MaintenanceStatus != ResourceUnderMaintenance {
			t.Errorf("expected UnderMaintenance, got %s", updated.MaintenanceStatus)
		}
	})

	t.Run("reports unknown resources", func(t *testing.T) {
		_, err := svc.UpdateResource(context.Background(), UpdateResourceParams{
			Actor:      adminActor(),
			ResourceID: "missing",
			Input:      ResourceInput{Name: "Ghost", Type: "Equipment", TotalCapacity: 1},
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestResourceService_GetResourceUsage(t *testing.T) {
	resources := newResourceRepoStub()
	resources.resources["res1"] = Resource{
		ID: "res1", Name: "Projector", Type: "Equipment",
		TotalCapacity: 10, MaintenanceStatus: ResourceAvailable,
	}

	events := newEventRepoStub()
	events.events["event1"] = runningEvent("event1", []Allocation{
		{ResourceID: "res1", Count: 4, Priority: PriorityMandatory},
	})
	events.events["event2"] = runningEvent("event2", []Allocation{
		{ResourceID: "res1", Count: 5, Priority: PriorityMandatory},
	})

	pending := runningEvent("event3", []Allocation{
		{ResourceID: "res1", Count: 3, Priority: PriorityMandatory},
	})
	pending.Status = workflow.StatusPendingHOD
	events.events["event3"] = pending

	svc := NewResourceService(resources, events, nil, fixedClock())

	usage, err := svc.GetResourceUsage(context.Background(), adminActor(), "res1")
	if err != nil {
		t.Fatalf("GetResourceUsage failed: %v", err)
	}

	if usage.Used != 9 {
		t.Errorf("expected 9 used (pending requests hold nothing), got %d", usage.Used)
	}
	if usage.Total != 10 {
		t.Errorf("expected total 10, got %d", usage.Total)
	}
	if usage.Percent != 90 {
		t.Errorf("expected 90 percent, got %d", usage.Percent)
	}
	if usage.Remaining != 1 {
		t.Errorf("expected 1 remaining, got %d", usage.Remaining)
	}
	if !usage.Critical {
		t.Error("expected usage at 90 percent to be critical")
	}
}

func TestResourceService_CheckResourceCapacity(t *testing.T) {
	resources := newResourceRepoStub()
	resources.resources["res1"] = Resource{
		ID: "res1", Name: "Projector", Type: "Equipment",
		TotalCapacity: 10, MaintenanceStatus: ResourceAvailable,
	}

	events := newEventRepoStub()
	events.events["event1"] = runningEvent("event1", []Allocation{
		{ResourceID: "res1", Count: 8, Priority: PriorityMandatory},
	})

	svc := NewResourceService(resources, events, nil, fixedClock())

	t.Run("checks against total capacity, not current demand", func(t *testing.T) {
		if err := svc.CheckResourceCapacity(context.Background(), adminActor(), "res1", 10); err != nil {
			t.Errorf("expected 10 units to fit the total of 10, got %v", err)
		}
	})

	t.Run("rejects requests above total capacity", func(t *testing.T) {
		err := svc.CheckResourceCapacity(context.Background(), adminActor(), "res1", 11)
		if !errors.Is(err, ErrCapacityExceeded) {
			t.Errorf("expected ErrCapacityExceeded, got %v", err)
		}
	})

	t.Run("accepts a zero count", func(t *testing.T) {
		if err := svc.CheckResourceCapacity(context.Background(), adminActor(), "res1", 0); err != nil {
			t.Errorf("expected zero to be allowed, got %v", err)
		}
	})

	t.Run("rejects negative counts", func(t *testing.T) {
		err := svc.CheckResourceCapacity(context.Background(), adminActor(), "res1", -1)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("expected ValidationError for a negative count, got %v", err)
		}
	})

	t.Run("reports unknown resources", func(t *testing.T) {
		err := svc.CheckResourceCapacity(context.Background(), adminActor(), "missing", 1)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
