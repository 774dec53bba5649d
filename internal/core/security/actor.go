package security

import (
	"context"

	appctx "quotero/internal/core/context"
)

// Role identifies what an actor is allowed to do with documents.
type Role string

const (
	// RoleStaff may create and edit draft documents.
	RoleStaff Role = "staff"

	// RoleManager may additionally walk documents through the normal
	// lifecycle (send, accept, reject, expire) and derive invoices.
	RoleManager Role = "manager"

	// RoleAdmin may additionally override document status outside the
	// normal lifecycle (the free status dropdown of the legacy UI).
	RoleAdmin Role = "admin"
)

// Actor is the explicit caller identity passed into state transitions and
// invoice derivation. Domain logic never reads the authenticated user from
// ambient globals; handlers build an Actor from the request context and
// pass it down.
type Actor struct {
	UserID string
	Roles  []Role
}

// ActorFromContext builds an Actor from the authenticated request context.
// Returns a zero Actor when the request is unauthenticated.
func ActorFromContext(ctx context.Context) Actor {
	u := appctx.GetUser(ctx)
	if u == nil {
		return Actor{}
	}
	roles := make([]Role, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, Role(r))
	}
	if u.IsAdmin {
		roles = append(roles, RoleAdmin)
	}
	return Actor{UserID: u.UserID, Roles: roles}
}

// HasRole reports whether the actor carries the given role.
// RoleAdmin implies RoleManager, RoleManager implies RoleStaff.
func (a Actor) HasRole(role Role) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
		if r == RoleAdmin && (role == RoleManager || role == RoleStaff) {
			return true
		}
		if r == RoleManager && role == RoleStaff {
			return true
		}
	}
	return false
}

// IsAuthenticated reports whether the actor has a user identity.
func (a Actor) IsAuthenticated() bool {
	return a.UserID != ""
}
