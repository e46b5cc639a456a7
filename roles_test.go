package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	auth "github.com/opinioncollector/go-auth"
)

func TestIsValidRole(t *testing.T) {
	assert.True(t, auth.IsValidRole(auth.RoleUser))
	assert.True(t, auth.IsValidRole(auth.RoleAdmin))
	assert.False(t, auth.IsValidRole("superuser"))
	assert.False(t, auth.IsValidRole(""))
}

func TestParseRole(t *testing.T) {
	role, ok := auth.ParseRole("admin")
	assert.True(t, ok)
	assert.Equal(t, auth.RoleAdmin, role)

	_, ok = auth.ParseRole("root")
	assert.False(t, ok)
}

func TestIsAtLeast(t *testing.T) {
	tests := []struct {
		name    string
		role    auth.UserRole
		minRole auth.UserRole
		want    bool
	}{
		{"admin meets user", auth.RoleAdmin, auth.RoleUser, true},
		{"admin meets admin", auth.RoleAdmin, auth.RoleAdmin, true},
		{"user meets user", auth.RoleUser, auth.RoleUser, true},
		{"user does not meet admin", auth.RoleUser, auth.RoleAdmin, false},
		{"unknown role never meets", "root", auth.RoleUser, false},
		{"unknown minimum never met", auth.RoleAdmin, "root", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, auth.IsAtLeast(tt.role, tt.minRole))
		})
	}
}

func TestIsValidTokenType(t *testing.T) {
	assert.True(t, auth.IsValidTokenType(auth.TokenVerification))
	assert.True(t, auth.IsValidTokenType(auth.TokenRefresh))
	assert.True(t, auth.IsValidTokenType(auth.TokenDeletion))
	assert.False(t, auth.IsValidTokenType("session"))
}
