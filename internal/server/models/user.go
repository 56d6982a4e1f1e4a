package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account record as stored in the users table.
type User struct {
	ID           uuid.UUID
	Username     string
	Name         string
	Surname      string
	Email        string
	PasswordHash string
	Roles        Roles
	IsActive     bool
	AvatarKey    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) IsAdmin() bool      { return u.Roles.Has(RoleAdmin) }
func (u *User) IsSuperadmin() bool { return u.Roles.Has(RoleSuperadmin) }

// UserPatch carries a partial profile update. Nil fields are left unchanged.
type UserPatch struct {
	Name    *string
	Surname *string
	Email   *string
}

func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Surname == nil && p.Email == nil
}
