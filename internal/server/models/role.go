package models

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Role is a role tag stored on a user.
type Role string

const (
	RoleUser       Role = "ROLE_USER"
	RoleAdmin      Role = "ROLE_ADMIN"
	RoleSuperadmin Role = "ROLE_SUPERADMIN"
)

var ErrEmptyRoles = errors.New("user must have at least one role")

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperadmin:
		return true
	}
	return false
}

// Roles is a set of roles kept in a stable order with no duplicates.
type Roles []Role

// NewRoles validates and normalises roles. RoleUser is always included.
func NewRoles(roles ...Role) (Roles, error) {
	out := Roles{RoleUser}
	for _, r := range roles {
		if !r.Valid() {
			return nil, fmt.Errorf("unknown role %q", r)
		}
		if !out.Has(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// ParseRoles reads the comma separated form produced by String.
func ParseRoles(s string) (Roles, error) {
	if strings.TrimSpace(s) == "" {
		return nil, ErrEmptyRoles
	}
	var out Roles
	for _, part := range strings.Split(s, ",") {
		r := Role(strings.TrimSpace(part))
		if !r.Valid() {
			return nil, fmt.Errorf("unknown role %q", r)
		}
		if !out.Has(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (rs Roles) Has(r Role) bool {
	return slices.Contains(rs, r)
}

func (rs Roles) HasAny(roles ...Role) bool {
	for _, r := range roles {
		if rs.Has(r) {
			return true
		}
	}
	return false
}

func (rs Roles) String() string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = string(r)
	}
	return strings.Join(parts, ",")
}

// Strings is the form used in API responses.
func (rs Roles) Strings() []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = string(r)
	}
	return out
}
