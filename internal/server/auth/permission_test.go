package auth

import (
	"testing"

	"github.com/dmitrijs2005/userkeeper/internal/server/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	idA = uuid.MustParse("aaaaaaaa-0000-4000-8000-000000000001")
	idB = uuid.MustParse("bbbbbbbb-0000-4000-8000-000000000002")
)

func user(id uuid.UUID, roles ...models.Role) *models.User {
	rs, err := models.NewRoles(roles...)
	if err != nil {
		panic(err)
	}
	return &models.User{ID: id, Roles: rs}
}

func TestEvaluator_Matrix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		actor, target *models.User
		literal       bool
		protectTarget bool
		rule          string
	}{
		{name: "user on self", actor: user(idA), target: user(idA), literal: true, protectTarget: true, rule: "self"},
		{name: "user on other user", actor: user(idA), target: user(idB), literal: false, protectTarget: false, rule: "not-admin"},
		{name: "admin on user", actor: user(idA, models.RoleAdmin), target: user(idB), literal: true, protectTarget: true, rule: "admin"},
		{name: "admin on admin", actor: user(idA, models.RoleAdmin), target: user(idB, models.RoleAdmin), literal: false, protectTarget: false, rule: "admin-on-admin"},
		{name: "admin on self", actor: user(idA, models.RoleAdmin), target: user(idA, models.RoleAdmin), literal: true, protectTarget: true, rule: "self"},
		{name: "admin on superadmin", actor: user(idA, models.RoleAdmin), target: user(idB, models.RoleSuperadmin), literal: false, protectTarget: false},
		{name: "user on superadmin", actor: user(idA), target: user(idB, models.RoleSuperadmin), literal: false, protectTarget: false},
		{name: "superadmin on user", actor: user(idA, models.RoleSuperadmin), target: user(idB), literal: false, protectTarget: true},
		{name: "superadmin on admin", actor: user(idA, models.RoleSuperadmin), target: user(idB, models.RoleAdmin), literal: false, protectTarget: true},
		{name: "superadmin on self", actor: user(idA, models.RoleSuperadmin), target: user(idA, models.RoleSuperadmin), literal: false, protectTarget: true},
		{name: "superadmin on superadmin", actor: user(idA, models.RoleSuperadmin), target: user(idB, models.RoleSuperadmin), literal: false, protectTarget: false},
	}

	literal := NewEvaluator(PolicyLiteral)
	protect := NewEvaluator(PolicyProtectTarget)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.literal, literal.CanModify(tt.actor, tt.target), "literal policy")
			assert.Equal(t, tt.protectTarget, protect.CanModify(tt.actor, tt.target), "protect-target policy")
			if tt.rule != "" {
				assert.Equal(t, tt.rule, literal.Decide(tt.actor, tt.target).Rule)
			}
		})
	}
}

func TestEvaluator_LiteralSuperadminRuleFiresFirst(t *testing.T) {
	t.Parallel()

	d := NewEvaluator(PolicyLiteral).Decide(user(idA, models.RoleSuperadmin), user(idA, models.RoleSuperadmin))
	assert.False(t, d.Allowed)
	assert.Equal(t, "superadmin-actor", d.Rule)
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	p, err := ParsePolicy("literal")
	require.NoError(t, err)
	assert.Equal(t, PolicyLiteral, p)

	p, err = ParsePolicy("protect-target")
	require.NoError(t, err)
	assert.Equal(t, PolicyProtectTarget, p)

	p, err = ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyLiteral, p)

	_, err = ParsePolicy("open")
	assert.Error(t, err)
}
