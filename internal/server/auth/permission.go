package auth

import (
	"fmt"

	"github.com/dmitrijs2005/userkeeper/internal/server/config"
	"github.com/dmitrijs2005/userkeeper/internal/server/models"
)

// Policy selects how superadmins are treated by the first permission rule.
type Policy int

const (
	// PolicyLiteral denies every mutation attempted by a superadmin actor,
	// whatever the target.
	PolicyLiteral Policy = iota
	// PolicyProtectTarget denies mutations of a superadmin by anyone else and
	// lets superadmins act like admins.
	PolicyProtectTarget
)

// ParsePolicy maps the config value to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", config.PolicyLiteral:
		return PolicyLiteral, nil
	case config.PolicyProtectTarget:
		return PolicyProtectTarget, nil
	}
	return PolicyLiteral, fmt.Errorf("unknown superadmin policy %q", s)
}

// Decision is the outcome of a permission check. Rule names the rule that
// decided, for logs.
type Decision struct {
	Allowed bool
	Rule    string
}

func allow(rule string) Decision { return Decision{Allowed: true, Rule: rule} }
func deny(rule string) Decision  { return Decision{Allowed: false, Rule: rule} }

// Evaluator decides whether actor may deactivate, update or delete target.
type Evaluator struct {
	policy Policy
}

func NewEvaluator(policy Policy) *Evaluator {
	return &Evaluator{policy: policy}
}

// Decide applies the rules in order; the first one that matches wins.
func (e *Evaluator) Decide(actor, target *models.User) Decision {
	self := actor.ID == target.ID

	switch e.policy {
	case PolicyProtectTarget:
		if target.IsSuperadmin() && !self {
			return deny("superadmin-target")
		}
	default:
		if actor.IsSuperadmin() {
			return deny("superadmin-actor")
		}
	}

	if self {
		return allow("self")
	}

	if !actor.Roles.HasAny(models.RoleAdmin, models.RoleSuperadmin) {
		return deny("not-admin")
	}

	actorIsPlainAdmin := actor.IsAdmin() && !actor.IsSuperadmin()

	if target.IsSuperadmin() && actorIsPlainAdmin {
		return deny("admin-on-superadmin")
	}

	if target.IsAdmin() && actorIsPlainAdmin {
		return deny("admin-on-admin")
	}

	return allow("admin")
}

func (e *Evaluator) CanModify(actor, target *models.User) bool {
	return e.Decide(actor, target).Allowed
}
