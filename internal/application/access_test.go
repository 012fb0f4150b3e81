package application

import (
	"testing"

	"github.com/example/campus-coordinator/internal/workflow"
)

func TestEventVisibleTo(t *testing.T) {
	event := Event{
		ID:          "event1",
		RequesterID: "user1",
		Department:  "CSE",
		School:      "Engineering",
		Status:      workflow.StatusPendingHOD,
	}

	cases := []struct {
		name    string
		actor   Actor
		visible bool
	}{
		{"requester sees own event", Actor{Role: workflow.RoleCoordinator, UserID: "user1"}, true},
		{"other coordinator does not", Actor{Role: workflow.RoleCoordinator, UserID: "user2"}, false},
		{"department head sees department", Actor{Role: workflow.RoleHOD, UserID: "hod1", Department: "CSE"}, true},
		{"other department head does not", Actor{Role: workflow.RoleHOD, UserID: "hod2", Department: "ECE"}, false},
		{"dean sees school", Actor{Role: workflow.RoleDean, UserID: "dean1", School: "Engineering"}, true},
		{"other dean does not", Actor{Role: workflow.RoleDean, UserID: "dean2", School: "Management"}, false},
		{"institution head sees all", Actor{Role: workflow.RoleHead, UserID: "head1"}, true},
		{"administrator sees all", Actor{Role: workflow.RoleAdmin, UserID: "admin1"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := EventVisibleTo(tc.actor, event); got != tc.visible {
				t.Errorf("expected visible=%v, got %v", tc.visible, got)
			}
		})
	}
}

func TestCanApproveEvent(t *testing.T) {
	base := Event{
		ID:          "event1",
		RequesterID: "user1",
		Department:  "CSE",
		School:      "Engineering",
	}

	t.Run("matching reviewer at the pending stage", func(t *testing.T) {
		event := base
		event.Status = workflow.StatusPendingHOD
		hod := Actor{Role: workflow.RoleHOD, UserID: "hod1", Department: "CSE"}
		if !CanApproveEvent(hod, event) {
			t.Error("expected HOD to be able to approve")
		}
	})

	t.Run("scope mismatch denies approval", func(t *testing.T) {
		event := base
		event.Status = workflow.StatusPendingDean
		dean := Actor{Role: workflow.RoleDean, UserID: "dean1", School: "Management"}
		if CanApproveEvent(dean, event) {
			t.Error("expected dean of another school to be denied")
		}
	})

	t.Run("stage mismatch denies approval", func(t *testing.T) {
		event := base
		event.Status = workflow.StatusPendingHead
		hod := Actor{Role: workflow.RoleHOD, UserID: "hod1", Department: "CSE"}
		if CanApproveEvent(hod, event) {
			t.Error("expected HOD to be denied at the head stage")
		}
	})

	t.Run("administrators never approve as reviewers", func(t *testing.T) {
		event := base
		event.Status = workflow.StatusPendingHOD
		admin := Actor{Role: workflow.RoleAdmin, UserID: "admin1"}
		if CanApproveEvent(admin, event) {
			t.Error("expected administrator to be denied the reviewer path")
		}
	})

	t.Run("terminal statuses have no reviewer", func(t *testing.T) {
		event := base
		event.Status = workflow.StatusRejected
		head := Actor{Role: workflow.RoleHead, UserID: "head1"}
		if CanApproveEvent(head, event) {
			t.Error("expected no reviewer for a rejected event")
		}
	})
}

func TestCanCreateEvent(t *testing.T) {
	cases := []struct {
		role    workflow.Role
		allowed bool
	}{
		{workflow.RoleCoordinator, true},
		{workflow.RoleHOD, false},
		{workflow.RoleDean, false},
		{workflow.RoleHead, false},
		{workflow.RoleAdmin, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.role), func(t *testing.T) {
			if got := CanCreateEvent(Actor{Role: tc.role, UserID: "user1"}); got != tc.allowed {
				t.Errorf("expected allowed=%v for %s, got %v", tc.allowed, tc.role, got)
			}
		})
	}
}

func TestCanEditEvent(t *testing.T) {
	event := Event{ID: "event1", RequesterID: "user1", IsModifiable: true}

	if !CanEditEvent(Actor{Role: workflow.RoleCoordinator, UserID: "user1"}, event) {
		t.Error("expected requester to edit a modifiable event")
	}
	if CanEditEvent(Actor{Role: workflow.RoleCoordinator, UserID: "user2"}, event) {
		t.Error("expected other users to be denied")
	}
	if CanEditEvent(Actor{Role: workflow.RoleAdmin, UserID: "admin1"}, event) {
		t.Error("expected administrators to be denied the edit path")
	}

	frozen := event
	frozen.IsModifiable = false
	if CanEditEvent(Actor{Role: workflow.RoleCoordinator, UserID: "user1"}, frozen) {
		t.Error("expected frozen events to be uneditable by the requester")
	}
	if CanEditEvent(Actor{Role: workflow.RoleAdmin, UserID: "admin1"}, frozen) {
		t.Error("expected administrators to be denied on frozen events too")
	}
}

func TestPendingApprovalEvents(t *testing.T) {
	events := []Event{
		{ID: "event1", Department: "CSE", School: "Engineering", Status: workflow.StatusPendingHOD},
		{ID: "event2", Department: "ECE", School: "Engineering", Status: workflow.StatusPendingHOD},
		{ID: "event3", Department: "CSE", School: "Engineering", Status: workflow.StatusPendingDean},
	}

	hod := Actor{Role: workflow.RoleHOD, UserID: "hod1", Department: "CSE"}
	pending := PendingApprovalEvents(hod, events)
	if len(pending) != 1 || pending[0].ID != "event1" {
		t.Errorf("expected only event1 pending for CSE HOD, got %+v", pending)
	}

	dean := Actor{Role: workflow.RoleDean, UserID: "dean1", School: "Engineering"}
	pending = PendingApprovalEvents(dean, events)
	if len(pending) != 1 || pending[0].ID != "event3" {
		t.Errorf("expected only event3 pending for the dean, got %+v", pending)
	}
}
