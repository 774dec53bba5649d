package quotation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"quotero/internal/core/apperror"
	"quotero/internal/core/security"
)

var (
	staff = security.Actor{UserID: "u-staff", Roles: []security.Role{security.RoleStaff}}
	admin = security.Actor{UserID: "u-admin", Roles: []security.Role{security.RoleAdmin}}
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusDraft, StatusSent, true},
		{StatusSent, StatusAccepted, true},
		{StatusSent, StatusRejected, true},
		{StatusSent, StatusExpired, true},

		{StatusDraft, StatusAccepted, false},
		{StatusDraft, StatusRejected, false},
		{StatusDraft, StatusExpired, false},
		{StatusSent, StatusDraft, false},
		{StatusAccepted, StatusRejected, false},
		{StatusRejected, StatusAccepted, false},
		{StatusExpired, StatusSent, false},
		{StatusAccepted, StatusDraft, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestCheckTransition_RegularUser(t *testing.T) {
	assert.NoError(t, CheckTransition(StatusDraft, StatusSent, staff))
	assert.NoError(t, CheckTransition(StatusSent, StatusAccepted, staff))

	err := CheckTransition(StatusAccepted, StatusRejected, staff)
	assert.Error(t, err)
	assert.True(t, apperror.IsStateError(err))

	appErr, ok := apperror.AsAppError(err)
	assert.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidTransition, appErr.Code)
	assert.Equal(t, "accepted", appErr.Details["from"])
	assert.Equal(t, "rejected", appErr.Details["to"])
}

func TestCheckTransition_AdminOverride(t *testing.T) {
	// Admin can reopen terminal states and skip steps
	assert.NoError(t, CheckTransition(StatusAccepted, StatusRejected, admin))
	assert.NoError(t, CheckTransition(StatusExpired, StatusSent, admin))
	assert.NoError(t, CheckTransition(StatusDraft, StatusAccepted, admin))
}

func TestCheckTransition_UnknownStatus(t *testing.T) {
	err := CheckTransition(StatusDraft, Status("archived"), admin)
	assert.Error(t, err)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestCheckTransition_SameStatus(t *testing.T) {
	err := CheckTransition(StatusSent, StatusSent, admin)
	assert.Error(t, err)
	assert.True(t, apperror.IsStateError(err))
}

func TestStatusIsTerminal(t *testing.T) {
	assert.False(t, StatusDraft.IsTerminal())
	assert.False(t, StatusSent.IsTerminal())
	assert.True(t, StatusAccepted.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.True(t, StatusExpired.IsTerminal())
}
