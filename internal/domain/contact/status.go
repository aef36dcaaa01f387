package contact

import (
	"fmt"

	ondot_errors "ondot-chat/pkg/errors"
)

// Status is the lifecycle state of a relationship row.
type Status string

const (
	StatusRequested Status = "REQUESTED"
	StatusAllowed   Status = "ALLOWED"
	StatusRejected  Status = "REJECTED"
	StatusClosed    Status = "CLOSED"
)

func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusRequested, StatusAllowed, StatusRejected, StatusClosed:
		return st, nil
	}
	return "", fmt.Errorf("unknown relationship status %q: %w", s, ondot_errors.ErrInvalidInput)
}

// Transition is the single authority on legal status changes. It returns
// the next status and whether anything changed.
//
//	REQUESTED -> ALLOWED | REJECTED   responder only
//	any       -> CLOSED               either party, CLOSED -> CLOSED is a no-op
func (s Status) Transition(target Status, actor Role) (Status, bool, error) {
	if actor == RoleNone {
		return s, false, ondot_errors.ErrForbidden
	}

	switch target {
	case StatusClosed:
		if s == StatusClosed {
			return s, false, nil
		}
		return StatusClosed, true, nil
	case StatusAllowed, StatusRejected:
		if s != StatusRequested {
			return s, false, fmt.Errorf("%s -> %s: %w", s, target, ondot_errors.ErrInvalidTransition)
		}
		if actor != RoleResponder {
			return s, false, fmt.Errorf("only the responder may %s: %w", target, ondot_errors.ErrForbidden)
		}
		return target, true, nil
	default:
		return s, false, fmt.Errorf("target %q: %w", target, ondot_errors.ErrInvalidTransition)
	}
}

// Label is the human facing status shown to one side of a relationship.
type Label string

const (
	LabelPending          Label = "PENDING"
	LabelAwaitingDecision Label = "AWAITING_MY_DECISION"
	LabelConnected        Label = "CONNECTED"
	LabelDeclined         Label = "DECLINED"
	LabelRejected         Label = "REJECTED"
	LabelClosed           Label = "CLOSED"
	LabelUnknown          Label = "UNKNOWN"
)

func (s Status) LabelFor(role Role) Label {
	switch s {
	case StatusRequested:
		if role == RoleResponder {
			return LabelAwaitingDecision
		}
		return LabelPending
	case StatusAllowed:
		return LabelConnected
	case StatusRejected:
		if role == RoleResponder {
			return LabelRejected
		}
		return LabelDeclined
	case StatusClosed:
		return LabelClosed
	}
	return LabelUnknown
}

// CounterpartLabel is the label persisted for the responder's side.
func (s Status) CounterpartLabel() Label {
	return s.LabelFor(RoleResponder)
}
