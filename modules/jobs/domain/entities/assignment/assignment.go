package assignment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("assignment not found")
	ErrInvalidWindow = errors.New("assignment start and end are required")
)

type Assignment struct {
	ID         int64
	TenantID   uuid.UUID
	JobID      int64
	EmployeeID int64
	StartTime  time.Time
	EndTime    time.Time
	Completed  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (a *Assignment) Validate() error {
	if a.StartTime.IsZero() || a.EndTime.IsZero() {
		return ErrInvalidWindow
	}
	return nil
}

// ShiftChanged reports whether the billed shift differs from other's.
func (a *Assignment) ShiftChanged(other *Assignment) bool {
	return a.EmployeeID != other.EmployeeID ||
		!a.StartTime.Equal(other.StartTime) ||
		!a.EndTime.Equal(other.EndTime)
}

// Transition is one row touched by a bulk completion change.
type Transition struct {
	ID           int64
	TenantID     uuid.UUID
	JobID        int64
	WasCompleted bool
}

// Changed reports whether the row actually flipped to completed.
func (t Transition) Changed(completed bool) bool {
	return t.WasCompleted != completed
}

type Repository interface {
	ListByJob(ctx context.Context, jobID int64) ([]*Assignment, error)
	GetByID(ctx context.Context, id int64) (*Assignment, error)
	// GetByIDForUpdate reads the row under a row lock held until the transaction ends.
	GetByIDForUpdate(ctx context.Context, id int64) (*Assignment, error)
	// Create derives the tenant from the job row; job.ErrNotFound when the job or the
	// employee is not visible under the same tenant.
	Create(ctx context.Context, a *Assignment) error
	Update(ctx context.Context, a *Assignment) error
	// SetCompleted updates every visible id and returns one transition per updated row,
	// ordered by id.
	SetCompleted(ctx context.Context, ids []int64, completed bool) ([]Transition, error)
	CountIncomplete(ctx context.Context, jobID int64) (int64, error)
	Delete(ctx context.Context, id int64) error
	DeleteByJob(ctx context.Context, jobID int64) (int64, error)
}
