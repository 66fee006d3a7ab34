package tenancy

import (
	"github.com/google/uuid"
)

type Role string

const (
	RoleEmployee   Role = "employee"
	RoleManager    Role = "manager"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleAdmin, RoleSuperadmin:
		return true
	}
	return false
}

// Identity is the verified principal handed over by the authentication layer.
type Identity struct {
	ID         string
	Role       Role
	TenantID   *uuid.UUID
	EmployeeID *int64
}
