package labour

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type GeneratedEvent struct {
	TenantID     uuid.UUID
	JobID        int64
	AssignmentID int64
	Hours        decimal.Decimal
	Total        decimal.Decimal
}
