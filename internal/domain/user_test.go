package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUserID(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateUserID("alice"))
	assert.ErrorIs(t, ValidateUserID(""), ErrUsernameEmpty)
	assert.ErrorIs(t, ValidateUserID(UserID(strings.Repeat("x", MaxUsernameLen+1))), ErrUsernameTooLong)
}

func TestAdmissionString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "pending", AdmissionPending.String())
	assert.Equal(t, "active", AdmissionActive.String())
	assert.Equal(t, "rejected", AdmissionRejected.String())
	assert.Equal(t, "removed", AdmissionRemoved.String())
	assert.Equal(t, "manager", RoleManager.String())
	assert.Equal(t, "regular", RoleRegular.String())
}
