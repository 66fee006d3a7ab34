package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/fieldops/pkg/tenancy"
)

func newTestService(t *testing.T, mode Mode) *Service {
	t.Helper()
	svc, err := NewService(Config{FlagProvider: StaticMode(mode)})
	require.NoError(t, err)
	return svc
}

func TestServiceMatrix(t *testing.T) {
	svc := newTestService(t, ModeEnforce)

	cases := []struct {
		role    tenancy.Role
		object  string
		action  string
		allowed bool
	}{
		{tenancy.RoleEmployee, ObjectJobs, ActionRead, true},
		{tenancy.RoleEmployee, ObjectJobs, ActionWrite, false},
		{tenancy.RoleEmployee, ObjectAssignments, ActionWrite, false},
		{tenancy.RoleEmployee, ObjectActivities, ActionRead, true},
		{tenancy.RoleManager, ObjectJobs, ActionRead, true},
		{tenancy.RoleManager, ObjectJobs, ActionWrite, true},
		{tenancy.RoleManager, ObjectAssignments, ActionDelete, true},
		{tenancy.RoleManager, ObjectLabour, ActionWrite, true},
		{tenancy.RoleManager, ObjectJobs, ActionDelete, false},
		{tenancy.RoleManager, ObjectEmployees, ActionWrite, false},
		{tenancy.RoleAdmin, ObjectEmployees, ActionWrite, true},
		{tenancy.RoleAdmin, ObjectJobs, ActionDelete, true},
		{tenancy.RoleAdmin, ObjectLabour, ActionRead, true},
		{tenancy.RoleSuperadmin, ObjectEmployees, ActionDelete, true},
		{tenancy.RoleSuperadmin, "anything", "whatever", true},
	}
	for _, tc := range cases {
		t.Run(string(tc.role)+"/"+tc.object+"/"+tc.action, func(t *testing.T) {
			err := svc.Authorize(context.Background(), RequestForRole(tc.role, tc.object, tc.action))
			if tc.allowed {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrForbidden)
		})
	}
}

func TestServiceUnknownSubjectDenied(t *testing.T) {
	svc := newTestService(t, ModeEnforce)
	allowed, err := svc.Check(context.Background(), NewRequest("role:guest", ObjectJobs, ActionRead))
	require.NoError(t, err)
	require.False(t, allowed)
}

func TestServiceAuthorizeShadowMode(t *testing.T) {
	svc := newTestService(t, ModeShadow)
	req := RequestForRole(tenancy.RoleEmployee, ObjectJobs, ActionDelete)
	require.NoError(t, svc.Authorize(context.Background(), req))
}

func TestServiceMode(t *testing.T) {
	svc := newTestService(t, ModeDisabled)
	require.Equal(t, ModeDisabled, svc.Mode())
	require.NoError(t, svc.Authorize(context.Background(), NewRequest("role:guest", ObjectJobs, ActionDelete)))
}

func TestSanitizeMode(t *testing.T) {
	require.Equal(t, ModeShadow, sanitizeMode("SHADOW"))
	require.Equal(t, ModeDisabled, sanitizeMode("disabled"))
	require.Equal(t, ModeEnforce, sanitizeMode(""))
	require.Equal(t, ModeEnforce, sanitizeMode("bogus"))
}

func TestSubjectForRole(t *testing.T) {
	require.Equal(t, "role:admin", SubjectForRole("Admin"))
	require.Equal(t, "role:admin", SubjectForRole("role:admin"))
	require.Equal(t, "role:unnamed", SubjectForRole("  "))
	require.Equal(t, "*", NormalizeAction(""))
}
