package dtos

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/employee"
)

type CreateEmployeeDTO struct {
	FirstName  string           `json:"first_name" validate:"required,max=100"`
	LastName   string           `json:"last_name" validate:"max=100"`
	HourlyRate *decimal.Decimal `json:"hourly_rate"`
	TenantID   string           `json:"tenant_id" validate:"omitempty,uuid"`
}

func (d *CreateEmployeeDTO) Ok() (map[string]string, bool) {
	errs, _ := validate(d)
	if d.HourlyRate != nil && d.HourlyRate.IsNegative() {
		errs["hourly_rate"] = "gte"
	}
	return errs, len(errs) == 0
}

func (d *CreateEmployeeDTO) ToEntity() *employee.Employee {
	e := &employee.Employee{
		FirstName:  d.FirstName,
		LastName:   d.LastName,
		HourlyRate: d.HourlyRate,
	}
	if id, err := uuid.Parse(d.TenantID); err == nil {
		e.TenantID = id
	}
	return e
}
