// Package authz decides role-based access with casbin. Ownership rules
// (only the author may edit an article) stay in the engine.
package authz

import (
	"fmt"

	"inkwell/internal/models"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"

	ObjectReport = "report"

	ActionList    = "list"
	ActionRead    = "read"
	ActionResolve = "resolve"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && (r.act == p.act || p.act == "*")
`

// Enforcer wraps a casbin SyncedEnforcer loaded with the built-in policy.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer() (*Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load casbin model: %w", err)
	}
	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}

	// Moderators work the report queue; admins inherit everything moderators can do.
	if _, err := e.AddPolicy(RoleModerator, ObjectReport, "*"); err != nil {
		return nil, fmt.Errorf("failed to add moderator policy: %w", err)
	}
	if _, err := e.AddGroupingPolicy(RoleAdmin, RoleModerator); err != nil {
		return nil, fmt.Errorf("failed to add admin role: %w", err)
	}
	return &Enforcer{enforcer: e}, nil
}

// Roles maps the user's flags onto policy subjects.
func Roles(u *models.User) []string {
	roles := []string{RoleUser}
	if u.IsModerator {
		roles = append(roles, RoleModerator)
	}
	if u.IsAdmin {
		roles = append(roles, RoleAdmin)
	}
	return roles
}

// Can reports whether any of the user's roles allows act on obj.
func (e *Enforcer) Can(u *models.User, obj, act string) (bool, error) {
	for _, role := range Roles(u) {
		ok, err := e.enforcer.Enforce(role, obj, act)
		if err != nil {
			return false, fmt.Errorf("casbin enforce: %w", err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
