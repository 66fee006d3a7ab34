package tenancy

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Session-scoped configuration keys read by row_visible() and the RLS policies.
const (
	SettingRole       = "app.role"
	SettingTenantID   = "app.current_tenant_id"
	SettingGodMode    = "app.god_mode"
	SettingEmployeeID = "app.current_employee_id"
)

// Session is the tenant context stamped onto one transaction.
type Session struct {
	Role          Role
	TenantID      uuid.UUID
	GodMode       bool
	Impersonating bool
	EmployeeID    *int64
}

// ResolveSession derives the session for identity. actAsTenant is the caller-supplied
// impersonation selector; it is honoured for superadmins only.
func ResolveSession(identity *Identity, actAsTenant string) (Session, error) {
	if identity == nil {
		return Session{}, ErrUnauthenticated
	}
	if !identity.Role.Valid() {
		return Session{}, fmt.Errorf("%w: %q", ErrUnknownRole, identity.Role)
	}

	s := Session{
		Role:       identity.Role,
		EmployeeID: identity.EmployeeID,
	}

	if identity.Role == RoleSuperadmin {
		selector := strings.TrimSpace(actAsTenant)
		if selector == "" {
			s.GodMode = true
			return s, nil
		}
		tenantID, err := uuid.Parse(selector)
		if err != nil || tenantID == uuid.Nil {
			return Session{}, fmt.Errorf("%w: %q", ErrInvalidTenantSelector, selector)
		}
		s.TenantID = tenantID
		s.Impersonating = true
		return s, nil
	}

	if identity.TenantID == nil || *identity.TenantID == uuid.Nil {
		return Session{}, ErrTenantRequired
	}
	s.TenantID = *identity.TenantID
	return s, nil
}

// TenantSetting is the value stored under app.current_tenant_id; empty in god mode.
func (s Session) TenantSetting() string {
	if s.GodMode || s.TenantID == uuid.Nil {
		return ""
	}
	return s.TenantID.String()
}

func (s Session) EmployeeSetting() string {
	if s.EmployeeID == nil {
		return ""
	}
	return strconv.FormatInt(*s.EmployeeID, 10)
}

// HasTenant reports whether rows created in this session have an implied owner.
func (s Session) HasTenant() bool {
	return !s.GodMode && s.TenantID != uuid.Nil
}

type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

const applySessionSQL = `SELECT
	set_config('app.role', $1, true),
	set_config('app.current_tenant_id', $2, true),
	set_config('app.god_mode', $3, true),
	set_config('app.current_employee_id', $4, true)`

// Apply stamps s onto the open transaction tx. The settings are transaction-local and
// vanish on commit or rollback.
func Apply(ctx context.Context, tx Execer, s Session) error {
	if s.GodMode && s.Role != RoleSuperadmin {
		return fmt.Errorf("%w: god mode requires %s", ErrUnknownRole, RoleSuperadmin)
	}
	if _, err := tx.Exec(ctx, applySessionSQL,
		string(s.Role),
		s.TenantSetting(),
		strconv.FormatBool(s.GodMode),
		s.EmployeeSetting(),
	); err != nil {
		return fmt.Errorf("failed to set tenant session context: %w", err)
	}
	return nil
}
