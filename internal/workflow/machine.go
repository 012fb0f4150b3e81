// Package workflow implements the approval lifecycle for event requests as a
// table-driven state machine. It is pure: it knows nothing about storage,
// actors' scoping attributes, or transports.
package workflow

import (
	"errors"
	"fmt"
)

// Status identifies where an event request sits in its approval lifecycle.
type Status string

const (
	StatusSubmitted   Status = "Submitted"
	StatusPendingHOD  Status = "PendingHOD"
	StatusPendingDean Status = "PendingDean"
	StatusPendingHead Status = "PendingHead"
	StatusApproved    Status = "Approved"
	StatusRejected    Status = "Rejected"
	StatusRunning     Status = "Running"
	StatusCompleted   Status = "Completed"
)

// ExecutionState tracks real-world execution independently of the approval
// status.
type ExecutionState string

const (
	ExecutionNotStarted ExecutionState = "NotStarted"
	ExecutionInProgress ExecutionState = "InProgress"
	ExecutionCompleted  ExecutionState = "Completed"
	ExecutionCancelled  ExecutionState = "Cancelled"
)

// Role identifies an acting party in the approval chain.
type Role string

const (
	RoleCoordinator Role = "Coordinator"
	RoleHOD         Role = "HOD"
	RoleDean        Role = "Dean"
	RoleHead        Role = "Head"
	RoleAdmin       Role = "Admin"
)

// Action records a reviewer decision in the approval chain.
type Action string

const (
	ActionPending  Action = "Pending"
	ActionApproved Action = "Approved"
	ActionRejected Action = "Rejected"
)

var (
	// ErrUnauthorizedTransition is returned when the acting role does not own
	// the event's current stage.
	ErrUnauthorizedTransition = errors.New("workflow: role does not own the current stage")
	// ErrInvalidTransition is returned when the requested transition does not
	// exist from the current status.
	ErrInvalidTransition = errors.New("workflow: transition not permitted from current status")
)

// ParseStatus validates a raw status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusSubmitted, StatusPendingHOD, StatusPendingDean, StatusPendingHead,
		StatusApproved, StatusRejected, StatusRunning, StatusCompleted:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown status: %s", s)
	}
}

// ParseRole validates a raw role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCoordinator, RoleHOD, RoleDean, RoleHead, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role: %s", s)
	}
}

// stage describes one pending step of the approval chain: the role that owns
// it and the status an approval advances to. Adding a stage is a data change.
type stage struct {
	Reviewer Role
	Next     Status
}

var approvalStages = map[Status]stage{
	StatusPendingHOD:  {Reviewer: RoleHOD, Next: StatusPendingDean},
	StatusPendingDean: {Reviewer: RoleDean, Next: StatusPendingHead},
	StatusPendingHead: {Reviewer: RoleHead, Next: StatusApproved},
}

// forward lists the non-approval transitions keyed by current status.
var forward = map[Status]Status{
	StatusSubmitted: StatusPendingHOD,
	StatusApproved:  StatusRunning,
	StatusRunning:   StatusCompleted,
}

// ReviewerFor returns the role whose decision the given status is waiting on.
// The second result is false when the status is not a pending stage.
func ReviewerFor(status Status) (Role, bool) {
	st, ok := approvalStages[status]
	return st.Reviewer, ok
}

// IsPendingStage reports whether the status awaits a reviewer decision.
func IsPendingStage(status Status) bool {
	_, ok := approvalStages[status]
	return ok
}

// IsTerminal reports whether no further approval transition exists.
func IsTerminal(status Status) bool {
	return status == StatusRejected || status == StatusCompleted
}

// Consuming reports whether an event in this status still holds its venue
// booking. Rejected and Completed events release the slot.
func Consuming(status Status) bool {
	return status != StatusRejected && status != StatusCompleted
}

// Admit moves a freshly submitted event into the first pending stage.
func Admit(current Status) (Status, error) {
	if current != StatusSubmitted {
		return current, ErrInvalidTransition
	}
	return forward[StatusSubmitted], nil
}

// Approve advances a pending event one stage. Admin may approve at any stage;
// every other role must own the stage. Scope matching (department, school) is
// the caller's concern.
func Approve(current Status, actor Role) (Status, error) {
	st, ok := approvalStages[current]
	if !ok {
		return current, ErrInvalidTransition
	}
	if actor != st.Reviewer && actor != RoleAdmin {
		return current, ErrUnauthorizedTransition
	}
	return st.Next, nil
}

// Reject terminates the workflow from any pending stage.
func Reject(current Status, actor Role) (Status, error) {
	st, ok := approvalStages[current]
	if !ok {
		return current, ErrInvalidTransition
	}
	if actor != st.Reviewer && actor != RoleAdmin {
		return current, ErrUnauthorizedTransition
	}
	return StatusRejected, nil
}

// Start marks an approved event as running.
func Start(current Status) (Status, error) {
	if current != StatusApproved {
		return current, ErrInvalidTransition
	}
	return forward[StatusApproved], nil
}

// Complete finishes a running event.
func Complete(current Status) (Status, error) {
	if current != StatusRunning {
		return current, ErrInvalidTransition
	}
	return forward[StatusRunning], nil
}

// ChainEntry is the minimal view of an approval chain record needed to replay
// the workflow.
type ChainEntry struct {
	Role   Role
	Action Action
}

// Replay reconstructs the status an event reaches after applying the chain in
// order, starting from Submitted. Pending entries admit the event at the
// stage owned by the entry's role; Approved entries advance past that stage;
// a Rejected entry is terminal.
func Replay(chain []ChainEntry) Status {
	status := StatusSubmitted
	for _, entry := range chain {
		switch entry.Action {
		case ActionPending:
			for pending, st := range approvalStages {
				if st.Reviewer == entry.Role {
					status = pending
					break
				}
			}
		case ActionApproved:
			for pending, st := range approvalStages {
				if st.Reviewer == entry.Role && pending == status {
					status = st.Next
					break
				}
			}
		case ActionRejected:
			return StatusRejected
		}
	}
	return status
}
