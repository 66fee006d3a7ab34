package employee

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound       = errors.New("employee not found")
	ErrNameRequired   = errors.New("employee first name is required")
	ErrNegativeRate   = errors.New("hourly rate must not be negative")
	ErrTenantRequired = errors.New("tenant_id is required when not acting as a tenant")
)

type Employee struct {
	ID        int64
	TenantID  uuid.UUID
	FirstName string
	LastName  string
	// HourlyRate is nil when no rate is on file.
	HourlyRate *decimal.Decimal
	CreatedAt  time.Time
}

func (e *Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

func (e *Employee) Validate() error {
	e.FirstName = strings.TrimSpace(e.FirstName)
	e.LastName = strings.TrimSpace(e.LastName)
	if e.FirstName == "" {
		return ErrNameRequired
	}
	if e.HourlyRate != nil && e.HourlyRate.IsNegative() {
		return ErrNegativeRate
	}
	return nil
}

type Repository interface {
	List(ctx context.Context) ([]*Employee, error)
	GetByID(ctx context.Context, id int64) (*Employee, error)
	Create(ctx context.Context, e *Employee) error
}
