package job

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("job not found")
	ErrTitleRequired = errors.New("job title is required")

	// ErrTenantRequired is returned when a god-mode caller creates a job without naming
	// the owning tenant.
	ErrTenantRequired = errors.New("tenant_id is required when not acting as a tenant")
)

// Status is free-form; Active and Completed are the values the reconciler derives.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

type Job struct {
	ID          int64
	TenantID    uuid.UUID
	Title       string
	Description string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (j *Job) Validate() error {
	j.Title = strings.TrimSpace(j.Title)
	if j.Title == "" {
		return ErrTitleRequired
	}
	if j.Status == "" {
		j.Status = StatusActive
	}
	return nil
}

type FindParams struct {
	Status Status
	Q      string
	Limit  int
	Offset int
}

type Repository interface {
	List(ctx context.Context, params *FindParams) ([]*Job, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
	GetByID(ctx context.Context, id int64) (*Job, error)
	Create(ctx context.Context, j *Job) error
	Update(ctx context.Context, j *Job) error
	// UpdateStatus writes status and reports whether a visible row was changed.
	UpdateStatus(ctx context.Context, id int64, status Status) (bool, error)
	Delete(ctx context.Context, id int64) error
}
