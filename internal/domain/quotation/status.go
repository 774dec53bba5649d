package quotation

import (
	"quotero/internal/core/apperror"
	"quotero/internal/core/security"
)

// Status represents the lifecycle state of a quotation.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
)

// allowedTransitions is the regular lifecycle graph. Accepted, rejected
// and expired are terminal for non-admin users.
var allowedTransitions = map[Status][]Status{
	StatusDraft: {StatusSent},
	StatusSent:  {StatusAccepted, StatusRejected, StatusExpired},
}

// IsValid reports whether s is a known status value.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusAccepted, StatusRejected, StatusExpired:
		return true
	}
	return false
}

// IsTerminal reports whether the status has no regular outgoing transitions.
func (s Status) IsTerminal() bool {
	return len(allowedTransitions[s]) == 0 && s.IsValid()
}

// CanTransition reports whether the regular lifecycle allows from -> to.
func CanTransition(from, to Status) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckTransition validates a status change for the given actor.
// Admins may force any transition between valid statuses, regular users
// are bound to the lifecycle graph. Every override still has to target a
// known status.
func CheckTransition(from, to Status, actor security.Actor) error {
	if !to.IsValid() {
		return apperror.NewValidation("unknown status").
			WithDetail("status", string(to))
	}
	if from == to {
		return apperror.NewInvalidTransition(string(from), string(to)).
			WithDetail("reason", "status unchanged")
	}
	if CanTransition(from, to) {
		return nil
	}
	if actor.HasRole(security.RoleAdmin) {
		return nil
	}
	return apperror.NewInvalidTransition(string(from), string(to))
}
