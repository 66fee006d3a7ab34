package services

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	quarters = decimal.NewFromInt(4)
	hourNs   = decimal.NewFromInt(int64(time.Hour))
)

// BillableHours returns the billed duration of a shift in hours. An end at or before the
// start means the shift crossed midnight, so one day is added. The result is rounded to
// the nearest quarter hour.
func BillableHours(start, end time.Time) decimal.Decimal {
	elapsed := end.Sub(start)
	if elapsed <= 0 {
		elapsed += 24 * time.Hour
	}
	hours := decimal.NewFromInt(int64(elapsed)).Div(hourNs)
	return hours.Mul(quarters).Round(0).Div(quarters)
}

// LabourTotal prices hours at rate, rounded to cents.
func LabourTotal(hours, rate decimal.Decimal) decimal.Decimal {
	return hours.Mul(rate).Round(2)
}
