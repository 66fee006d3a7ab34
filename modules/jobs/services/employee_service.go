package services

import (
	"context"

	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/employee"
)

type EmployeeService struct {
	repo employee.Repository
}

func NewEmployeeService(repo employee.Repository) *EmployeeService {
	return &EmployeeService{repo: repo}
}

func (s *EmployeeService) List(ctx context.Context) ([]*employee.Employee, error) {
	return s.repo.List(ctx)
}

func (s *EmployeeService) GetByID(ctx context.Context, id int64) (*employee.Employee, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *EmployeeService) Create(ctx context.Context, e *employee.Employee) error {
	tenantID, err := ownerTenant(ctx, e.TenantID, employee.ErrTenantRequired)
	if err != nil {
		return err
	}
	e.TenantID = tenantID
	if err := e.Validate(); err != nil {
		return err
	}
	return s.repo.Create(ctx, e)
}
