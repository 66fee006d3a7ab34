package labour

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound      = errors.New("labour entry not found")
	ErrInvalidHours  = errors.New("hours must be positive")
	ErrNegativeRate  = errors.New("rate must not be negative")
	ErrAutoImmutable = errors.New("generated labour entries are removed by reopening the assignment")
)

// Source tags how an entry came to exist. Only Auto entries are ever removed by the
// reconciler.
type Source string

const (
	SourceManual Source = "manual"
	SourceAuto   Source = "auto"
)

type Entry struct {
	ID           int64
	TenantID     uuid.UUID
	JobID        int64
	AssignmentID *int64
	EmployeeID   int64
	Hours        decimal.Decimal
	Rate         decimal.Decimal
	Total        decimal.Decimal
	Source       Source
	CreatedAt    time.Time
}

func (e *Entry) Validate() error {
	if !e.Hours.IsPositive() {
		return ErrInvalidHours
	}
	if e.Rate.IsNegative() {
		return ErrNegativeRate
	}
	return nil
}

// Shift is what automatic generation needs to price one completed assignment.
type Shift struct {
	AssignmentID int64
	JobID        int64
	EmployeeID   int64
	StartTime    time.Time
	EndTime      time.Time
	// Rate is nil when the employee has no hourly rate on file.
	Rate *decimal.Decimal
}

type Repository interface {
	ListByJob(ctx context.Context, jobID int64) ([]*Entry, error)
	GetByID(ctx context.Context, id int64) (*Entry, error)
	// Create inserts a manual entry; the tenant is taken from the job row.
	Create(ctx context.Context, e *Entry) error
	ExistsForAssignment(ctx context.Context, assignmentID int64) (bool, error)
	// LoadShift returns assignment.ErrNotFound when the assignment is not visible.
	LoadShift(ctx context.Context, assignmentID int64) (*Shift, error)
	// InsertAuto reports false when an auto entry for the assignment already exists.
	InsertAuto(ctx context.Context, e *Entry) (bool, error)
	DeleteAutoForAssignments(ctx context.Context, assignmentIDs []int64) (int64, error)
	// DetachAssignment clears the assignment reference on the remaining entries.
	DetachAssignment(ctx context.Context, assignmentID int64) (int64, error)
	Delete(ctx context.Context, id int64) error
	DeleteByJob(ctx context.Context, jobID int64) (int64, error)
}
