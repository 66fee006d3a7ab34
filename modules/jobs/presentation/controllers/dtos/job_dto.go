package dtos

import (
	"strings"

	"github.com/google/uuid"

	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/job"
	"github.com/iota-uz/fieldops/modules/jobs/services"
)

type CreateJobDTO struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=4000"`
	Status      string `json:"status" validate:"omitempty,max=32"`
	// TenantID is only honoured in god mode.
	TenantID string `json:"tenant_id" validate:"omitempty,uuid"`
}

func (d *CreateJobDTO) Ok() (map[string]string, bool) {
	return validate(d)
}

func (d *CreateJobDTO) ToEntity() *job.Job {
	j := &job.Job{
		Title:       strings.TrimSpace(d.Title),
		Description: d.Description,
		Status:      job.Status(d.Status),
	}
	if id, err := uuid.Parse(d.TenantID); err == nil {
		j.TenantID = id
	}
	return j
}

type UpdateJobDTO struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=4000"`
	Status      *string `json:"status" validate:"omitempty,min=1,max=32"`
}

func (d *UpdateJobDTO) Ok() (map[string]string, bool) {
	return validate(d)
}

func (d *UpdateJobDTO) ToPatch() services.JobPatch {
	patch := services.JobPatch{Title: d.Title, Description: d.Description}
	if d.Status != nil {
		s := job.Status(strings.TrimSpace(*d.Status))
		patch.Status = &s
	}
	return patch
}
