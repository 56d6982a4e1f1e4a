package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoles_AlwaysIncludesUser(t *testing.T) {
	rs, err := NewRoles(RoleSuperadmin, RoleSuperadmin)
	require.NoError(t, err)
	assert.Equal(t, Roles{RoleUser, RoleSuperadmin}, rs)

	rs, err = NewRoles()
	require.NoError(t, err)
	assert.Equal(t, Roles{RoleUser}, rs)

	_, err = NewRoles("ROLE_ROOT")
	assert.Error(t, err)
}

func TestParseRoles(t *testing.T) {
	tests := []struct {
		in      string
		want    Roles
		wantErr bool
	}{
		{in: "ROLE_USER", want: Roles{RoleUser}},
		{in: "ROLE_USER,ROLE_ADMIN", want: Roles{RoleUser, RoleAdmin}},
		{in: "ROLE_USER, ROLE_ADMIN,ROLE_ADMIN", want: Roles{RoleUser, RoleAdmin}},
		{in: "", wantErr: true},
		{in: "ROLE_USER,ROLE_GOD", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRoles(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoles_StringRoundTrip(t *testing.T) {
	rs := Roles{RoleUser, RoleAdmin}
	assert.Equal(t, "ROLE_USER,ROLE_ADMIN", rs.String())

	back, err := ParseRoles(rs.String())
	require.NoError(t, err)
	assert.Equal(t, rs, back)
}

func TestUser_RoleHelpers(t *testing.T) {
	u := &User{Roles: Roles{RoleUser, RoleAdmin}}
	assert.True(t, u.IsAdmin())
	assert.False(t, u.IsSuperadmin())
	assert.True(t, u.Roles.HasAny(RoleSuperadmin, RoleAdmin))
	assert.False(t, u.Roles.HasAny(RoleSuperadmin))
}

func TestUserPatch_IsEmpty(t *testing.T) {
	assert.True(t, UserPatch{}.IsEmpty())
	name := "Ada"
	assert.False(t, UserPatch{Name: &name}.IsEmpty())
}
