package dtos

import (
	"time"

	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/assignment"
	"github.com/iota-uz/fieldops/modules/jobs/services"
)

type CreateAssignmentDTO struct {
	JobID      int64     `json:"job_id" validate:"required,gt=0"`
	EmployeeID int64     `json:"employee_id" validate:"required,gt=0"`
	StartTime  time.Time `json:"start_time" validate:"required"`
	EndTime    time.Time `json:"end_time" validate:"required"`
	Completed  bool      `json:"completed"`
}

func (d *CreateAssignmentDTO) Ok() (map[string]string, bool) {
	return validate(d)
}

func (d *CreateAssignmentDTO) ToEntity() *assignment.Assignment {
	return &assignment.Assignment{
		JobID:      d.JobID,
		EmployeeID: d.EmployeeID,
		StartTime:  d.StartTime,
		EndTime:    d.EndTime,
		Completed:  d.Completed,
	}
}

type UpdateAssignmentDTO struct {
	EmployeeID *int64     `json:"employee_id" validate:"omitempty,gt=0"`
	StartTime  *time.Time `json:"start_time"`
	EndTime    *time.Time `json:"end_time"`
	Completed  *bool      `json:"completed"`
}

func (d *UpdateAssignmentDTO) Ok() (map[string]string, bool) {
	return validate(d)
}

func (d *UpdateAssignmentDTO) ToPatch() services.AssignmentPatch {
	return services.AssignmentPatch{
		EmployeeID: d.EmployeeID,
		StartTime:  d.StartTime,
		EndTime:    d.EndTime,
		Completed:  d.Completed,
	}
}

type BulkAssignmentsDTO struct {
	IDs []int64 `json:"ids" validate:"required,min=1,max=500,dive,gt=0"`
}

func (d *BulkAssignmentsDTO) Ok() (map[string]string, bool) {
	return validate(d)
}
