package authorization

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUserRole(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  UserRole
	}{
		{name: "admin", input: "admin", want: RoleAdmin},
		{name: "manager", input: "manager", want: RoleManager},
		{name: "user", input: "user", want: RoleUser},
		{name: "unknown falls back to user", input: "owner", want: RoleUser},
		{name: "empty falls back to user", input: "", want: RoleUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseUserRole(tt.input))
		})
	}
}

func TestUserRole_IsStaff(t *testing.T) {
	assert.True(t, RoleAdmin.IsStaff())
	assert.True(t, RoleManager.IsStaff())
	assert.False(t, RoleUser.IsStaff())
	assert.True(t, RoleAdmin.IsAdmin())
	assert.False(t, RoleManager.IsAdmin())
}
