package authz

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/iota-uz/fieldops/pkg/tenancy"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

// Each role inherits every grant of the role before it.
var roleChain = []tenancy.Role{
	tenancy.RoleEmployee,
	tenancy.RoleManager,
	tenancy.RoleAdmin,
	tenancy.RoleSuperadmin,
}

var grants = map[tenancy.Role][][2]string{
	tenancy.RoleEmployee: {
		{ObjectJobs, ActionRead},
		{ObjectAssignments, ActionRead},
		{ObjectLabour, ActionRead},
		{ObjectActivities, ActionRead},
		{ObjectEmployees, ActionRead},
	},
	tenancy.RoleManager: {
		{ObjectJobs, ActionWrite},
		{ObjectAssignments, ActionWrite},
		{ObjectAssignments, ActionDelete},
		{ObjectLabour, ActionWrite},
		{ObjectLabour, ActionDelete},
	},
	tenancy.RoleAdmin: {
		{ObjectEmployees, ActionWrite},
		{ObjectJobs, ActionDelete},
	},
	tenancy.RoleSuperadmin: {
		{"*", "*"},
	},
}

func newEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("authz: failed to parse model: %w", err)
	}
	enf, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("authz: failed to initialize enforcer: %w", err)
	}
	for i, r := range roleChain {
		sub := SubjectForRole(string(r))
		for _, g := range grants[r] {
			if _, err := enf.AddPolicy(sub, g[0], g[1]); err != nil {
				return nil, fmt.Errorf("authz: add policy %s %s %s: %w", sub, g[0], g[1], err)
			}
		}
		if i > 0 {
			parent := SubjectForRole(string(roleChain[i-1]))
			if _, err := enf.AddGroupingPolicy(sub, parent); err != nil {
				return nil, fmt.Errorf("authz: add role %s -> %s: %w", sub, parent, err)
			}
		}
	}
	return enf, nil
}
