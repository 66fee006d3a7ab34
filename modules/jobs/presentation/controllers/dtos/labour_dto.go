package dtos

import (
	"github.com/shopspring/decimal"

	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/labour"
)

// CreateLabourDTO has no total: it is always computed from hours and rate.
type CreateLabourDTO struct {
	JobID        int64           `json:"job_id" validate:"required,gt=0"`
	AssignmentID *int64          `json:"assignment_id" validate:"omitempty,gt=0"`
	EmployeeID   int64           `json:"employee_id" validate:"required,gt=0"`
	Hours        decimal.Decimal `json:"hours"`
	Rate         decimal.Decimal `json:"rate"`
}

func (d *CreateLabourDTO) Ok() (map[string]string, bool) {
	errs, _ := validate(d)
	if !d.Hours.IsPositive() {
		errs["hours"] = "gt"
	}
	if d.Rate.IsNegative() {
		errs["rate"] = "gte"
	}
	return errs, len(errs) == 0
}

func (d *CreateLabourDTO) ToEntity() *labour.Entry {
	return &labour.Entry{
		JobID:        d.JobID,
		AssignmentID: d.AssignmentID,
		EmployeeID:   d.EmployeeID,
		Hours:        d.Hours,
		Rate:         d.Rate,
	}
}
