package invoice

import (
	"quotero/internal/core/apperror"
	"quotero/internal/core/security"
)

// Status represents the payment state of an invoice.
type Status string

const (
	StatusUnpaid        Status = "unpaid"
	StatusPartiallyPaid Status = "partially_paid"
	StatusPaid          Status = "paid"
	StatusCancelled     Status = "cancelled"
)

var allowedTransitions = map[Status][]Status{
	StatusUnpaid:        {StatusPartiallyPaid, StatusPaid, StatusCancelled},
	StatusPartiallyPaid: {StatusPaid, StatusCancelled},
}

// IsValid reports whether s is a known status value.
func (s Status) IsValid() bool {
	switch s {
	case StatusUnpaid, StatusPartiallyPaid, StatusPaid, StatusCancelled:
		return true
	}
	return false
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

// CheckTransition validates a payment status change for the given actor.
// Paid and cancelled are terminal for regular users, admins may force any
// transition between valid statuses.
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
