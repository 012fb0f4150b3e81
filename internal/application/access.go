package application

import "github.com/example/campus-coordinator/internal/workflow"

// EventVisibleTo reports whether the actor's role scope covers the event.
// Coordinators see their own requests, heads of department see their
// department, deans see their school, and the institution head and
// administrators see everything.
func EventVisibleTo(actor Actor, event Event) bool {
	switch actor.Role {
	case workflow.RoleCoordinator:
		return event.RequesterID == actor.UserID
	case workflow.RoleHOD:
		return event.Department == actor.Department
	case workflow.RoleDean:
		return event.School == actor.School
	case workflow.RoleHead, workflow.RoleAdmin:
		return true
	default:
		return false
	}
}

// VisibleEvents filters a listing down to the actor's scope, preserving order.
func VisibleEvents(actor Actor, events []Event) []Event {
	visible := make([]Event, 0, len(events))
	for _, event := range events {
		if EventVisibleTo(actor, event) {
			visible = append(visible, event)
		}
	}
	return visible
}

// CanCreateEvent reports whether the actor may submit event requests.
// Only coordinators raise requests; administrators act on existing
// events through the override path.
func CanCreateEvent(actor Actor) bool {
	return actor.Role == workflow.RoleCoordinator
}

// CanEditEvent reports whether the actor may revise the event draft.
// Only the coordinator who raised the request may edit it, and only
// while the event is still modifiable.
func CanEditEvent(actor Actor, event Event) bool {
	return actor.Role == workflow.RoleCoordinator &&
		event.RequesterID == actor.UserID &&
		event.IsModifiable
}

// CanApproveEvent reports whether the actor is the reviewer the event is
// currently waiting on, within the actor's scope. Administrators are not
// reviewers; they act through the override path instead.
func CanApproveEvent(actor Actor, event Event) bool {
	reviewer, ok := workflow.ReviewerFor(event.Status)
	if !ok || actor.Role != reviewer {
		return false
	}
	switch actor.Role {
	case workflow.RoleHOD:
		return event.Department == actor.Department
	case workflow.RoleDean:
		return event.School == actor.School
	case workflow.RoleHead:
		return true
	default:
		return false
	}
}

// CanManageCatalog reports whether the actor may create or update venues
// and resources.
func CanManageCatalog(actor Actor) bool {
	return actor.Role == workflow.RoleAdmin
}

// PendingApprovalEvents returns the events awaiting the actor's review,
// preserving order.
func PendingApprovalEvents(actor Actor, events []Event) []Event {
	pending := make([]Event, 0, len(events))
	for _, event := range events {
		if CanApproveEvent(actor, event) {
			pending = append(pending, event)
		}
	}
	return pending
}
