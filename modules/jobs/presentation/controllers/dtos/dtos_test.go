package dtos

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCreateJobDTO_Ok(t *testing.T) {
	errs, ok := (&CreateJobDTO{TenantID: "nope"}).Ok()
	assert.False(t, ok)
	assert.Equal(t, "required", errs["title"])
	assert.Equal(t, "uuid", errs["tenant_id"])

	_, ok = (&CreateJobDTO{Title: "Fence"}).Ok()
	assert.True(t, ok)
}

func TestBulkAssignmentsDTO_Ok(t *testing.T) {
	_, ok := (&BulkAssignmentsDTO{}).Ok()
	assert.False(t, ok)

	errs, ok := (&BulkAssignmentsDTO{IDs: []int64{1, 0}}).Ok()
	assert.False(t, ok)
	assert.Contains(t, errs, "ids[1]")

	_, ok = (&BulkAssignmentsDTO{IDs: []int64{4, 2}}).Ok()
	assert.True(t, ok)
}

func TestCreateLabourDTO_Ok(t *testing.T) {
	errs, ok := (&CreateLabourDTO{JobID: 1, EmployeeID: 2, Rate: decimal.NewFromInt(-1)}).Ok()
	assert.False(t, ok)
	assert.Equal(t, "gt", errs["hours"])
	assert.Equal(t, "gte", errs["rate"])

	_, ok = (&CreateLabourDTO{JobID: 1, EmployeeID: 2, Hours: decimal.NewFromInt(1)}).Ok()
	assert.True(t, ok)
}
