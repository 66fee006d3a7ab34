package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/activity"
	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/assignment"
	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/job"
	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/labour"
	"github.com/iota-uz/fieldops/pkg/tenancy"
)

func TestGenerateLabour_DayShift(t *testing.T) {
	f := newFixture()
	tenantID := uuid.New()
	f.store.seedEmployee(3, tenantID, "Dana", "Ortiz", ptr(decimal.NewFromInt(50)))
	f.store.seedJob(7, tenantID, "Boiler service")
	f.store.seedAssignment(42, 7, 3, at("09:00"), at("17:00"))
	ctx, _ := tenantCtx(tenantID, tenancy.RoleManager)

	res, err := f.assignments.BulkComplete(ctx, []int64{42})
	require.NoError(t, err)
	assert.Equal(t, 1, res.LabourGenerated)

	entries := f.store.labourFor(42, labour.SourceAuto)
	require.Len(t, entries, 1)
	assert.Equal(t, "8.00", entries[0].Hours.StringFixed(2))
	assert.Equal(t, "400.00", entries[0].Total.StringFixed(2))
	assert.Equal(t, tenantID, entries[0].TenantID)

	res, err = f.assignments.BulkComplete(ctx, []int64{42, 42})
	require.NoError(t, err)
	assert.Equal(t, 0, res.LabourGenerated)
	assert.Empty(t, res.Changed)

	entries = f.store.labourFor(42, labour.SourceAuto)
	require.Len(t, entries, 1)
	assert.Equal(t, "400.00", entries[0].Total.StringFixed(2))
	assert.Len(t, f.store.activitiesOf(7, activity.AssignmentCompleted), 1)
}

func TestGenerateLabour_Overnight(t *testing.T) {
	f := newFixture()
	tenantID := uuid.New()
	f.store.seedEmployee(3, tenantID, "Sam", "Lee", ptr(decimal.RequireFromString("40")))
	f.store.seedJob(1, tenantID, "Night watch")
	f.store.seedAssignment(10, 1, 3, at("22:00"), at("02:00"))
	ctx, _ := tenantCtx(tenantID, tenancy.RoleManager)

	created, err := f.reconciler.GenerateLabourForAssignment(ctx, 10)
	require.NoError(t, err)
	require.True(t, created)

	entries := f.store.labourFor(10, labour.SourceAuto)
	require.Len(t, entries, 1)
	assert.Equal(t, "4", entries[0].Hours.String())
	assert.Equal(t, "160.00", entries[0].Total.StringFixed(2))
}

func TestGenerateLabour_Idempotent(t *testing.T) {
	f := newFixture()
	tenantID := uuid.New()
	f.store.seedEmployee(3, tenantID, "Dana", "Ortiz", ptr(decimal.NewFromInt(50)))
	f.store.seedJob(7, tenantID, "Boiler service")
	f.store.seedAssignment(42, 7, 3, at("09:00"), at("17:00"))
	ctx, _ := tenantCtx(tenantID, tenancy.RoleManager)

	first, err := f.reconciler.GenerateLabourForAssignment(ctx, 42)
	require.NoError(t, err)
	second, err := f.reconciler.GenerateLabourForAssignment(ctx, 42)
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)
	assert.Len(t, f.store.labourFor(42, labour.SourceAuto), 1)
}

func TestGenerateLabour_ExistingManualEntrySuppressesGeneration(t *testing.T) {
	f := newFixture()
	tenantID := uuid.New()
	f.store.seedEmployee(3, tenantID, "Dana", "Ortiz", ptr(decimal.NewFromInt(50)))
	f.store.seedJob(7, tenantID, "Boiler service")
	f.store.seedAssignment(42, 7, 3, at("09:00"), at("17:00"))
	ctx, _ := tenantCtx(tenantID, tenancy.RoleManager)

	require.NoError(t, f.labour.Create(ctx, &labour.Entry{
		JobID: 7, AssignmentID: ptr(int64(42)), EmployeeID: 3,
		Hours: decimal.NewFromInt(6), Rate: decimal.NewFromInt(50),
	}))

	created, err := f.reconciler.GenerateLabourForAssignment(ctx, 42)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Empty(t, f.store.labourFor(42, labour.SourceAuto))
}

func TestGenerateLabour_NullRateYieldsZeroTotal(t *testing.T) {
	f := newFixture()
	tenantID := uuid.New()
	f.store.seedEmployee(3, tenantID, "Dana", "Ortiz", nil)
	f.store.seedJob(7, tenantID, "Boiler service")
	f.store.seedAssignment(42, 7, 3, at("09:00"), at("17:00"))
	ctx, _ := tenantCtx(tenantID, tenancy.RoleManager)

	created, err := f.reconciler.GenerateLabourForAssignment(ctx, 42)
	require.NoError(t, err)
	require.True(t, created)

	entries := f.store.labourFor(42, labour.SourceAuto)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Total.IsZero())
	assert.Equal(t, "8", entries[0].Hours.String())
}

func TestGenerateLabour_OtherTenantIsNotFound(t *testing.T) {
	f := newFixture()
	owner, intruder := uuid.New(), uuid.New()
	f.store.seedEmployee(3, owner, "Dana", "Ortiz", ptr(decimal.NewFromInt(50)))
	f.store.seedJob(7, owner, "Boiler service")
	f.store.seedAssignment(42, 7, 3, at("09:00"), at("17:00"))
	ctx, _ := tenantCtx(intruder, tenancy.RoleAdmin)

	_, err := f.reconciler.GenerateLabourForAssignment(ctx, 42)
	require.ErrorIs(t, err, assignment.ErrNotFound)
	assert.Empty(t, f.store.labour)
}

func TestGenerateLabour_PublishesAfterCommitOnly(t *testing.T) {
	f := newFixture()
	tenantID := uuid.New()
	f.store.seedEmployee(3, tenantID, "Dana", "Ortiz", ptr(decimal.NewFromInt(50)))
	f.store.seedJob(7, tenantID, "Boiler service")
	f.store.seedAssignment(42, 7, 3, at("09:00"), at("17:00"))
	ctx, hooks := tenantCtx(tenantID, tenancy.RoleManager)

	var events []*labour.GeneratedEvent
	f.bus.Subscribe(func(e *labour.GeneratedEvent) { events = append(events, e) })

	_, err := f.reconciler.GenerateLabourForAssignment(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, events)

	hooks.Run()
	require.Len(t, events, 1)
	assert.Equal(t, int64(42), events[0].AssignmentID)
	assert.Equal(t, "400.00", events[0].Total.StringFixed(2))
}

func TestRecomputeJobStatus(t *testing.T) {
	f := newFixture()
	tenantID := uuid.New()
	f.store.seedEmployee(3, tenantID, "Dana", "Ortiz", ptr(decimal.NewFromInt(50)))
	f.store.seedJob(7, tenantID, "Boiler service")
	f.store.seedAssignment(1, 7, 3, at("09:00"), at("12:00"))
	f.store.seedAssignment(2, 7, 3, at("13:00"), at("17:00"))
	ctx, hooks := tenantCtx(tenantID, tenancy.RoleManager)

	var changes []job.Status
	f.bus.Subscribe(func(e *job.StatusChangedEvent) { changes = append(changes, e.To) })

	_, err := f.assignments.BulkComplete(ctx, []int64{1})
	require.NoError(t, err)
	assert.Equal(t, job.StatusActive, f.store.jobs[7].Status)

	_, err = f.assignments.BulkComplete(ctx, []int64{2})
	require.NoError(t, err)
	assert.Equal(t, job.StatusCompleted, f.store.jobs[7].Status)

	_, err = f.assignments.BulkReopen(ctx, []int64{1})
	require.NoError(t, err)
	assert.Equal(t, job.StatusActive, f.store.jobs[7].Status)

	assert.Empty(t, changes, "events wait for the commit")
	hooks.Run()
	assert.Equal(t, []job.Status{job.StatusCompleted, job.StatusActive}, changes)
	assert.Len(t, f.store.activitiesOf(7, activity.JobStatusChanged), 2)
}

func TestRecomputeJobStatus_NoAssignmentsIsCompleted(t *testing.T) {
	f := newFixture()
	tenantID := uuid.New()
	f.store.seedJob(7, tenantID, "Quote visit")
	ctx, _ := tenantCtx(tenantID, tenancy.RoleManager)

	status, err := f.reconciler.RecomputeJobStatus(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, job.StatusCompleted, status)
}

func TestRecomputeJobStatus_InvisibleJob(t *testing.T) {
	f := newFixture()
	f.store.seedJob(7, uuid.New(), "Boiler service")
	ctx, _ := tenantCtx(uuid.New(), tenancy.RoleManager)

	_, err := f.reconciler.RecomputeJobStatus(ctx, 7)
	require.ErrorIs(t, err, job.ErrNotFound)
}

func TestRemoveAutoLabour_LeavesManualEntries(t *testing.T) {
	f := newFixture()
	tenantID := uuid.New()
	f.store.seedEmployee(3, tenantID, "Dana", "Ortiz", ptr(decimal.NewFromInt(50)))
	f.store.seedJob(7, tenantID, "Boiler service")
	f.store.seedAssignment(42, 7, 3, at("09:00"), at("17:00"))
	ctx, _ := tenantCtx(tenantID, tenancy.RoleManager)

	_, err := f.assignments.BulkComplete(ctx, []int64{42})
	require.NoError(t, err)
	require.NoError(t, f.labour.Create(ctx, &labour.Entry{
		JobID: 7, AssignmentID: ptr(int64(42)), EmployeeID: 3,
		Hours: decimal.RequireFromString("1.5"), Rate: decimal.NewFromInt(50),
	}))

	res, err := f.assignments.BulkReopen(ctx, []int64{42})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.LabourRemoved)
	assert.Equal(t, []int64{42}, res.Changed)
	assert.Empty(t, f.store.labourFor(42, labour.SourceAuto))

	manual := f.store.labourFor(42, labour.SourceManual)
	require.Len(t, manual, 1)
	assert.Equal(t, "75.00", manual[0].Total.StringFixed(2))
}

func TestBulkComplete_RecomputesEachJobOnce(t *testing.T) {
	f := newFixture()
	tenantID := uuid.New()
	f.store.seedEmployee(3, tenantID, "Dana", "Ortiz", ptr(decimal.NewFromInt(50)))
	f.store.seedJob(1, tenantID, "Roof")
	f.store.seedJob(2, tenantID, "Gutter")
	for id, jobID := range map[int64]int64{11: 1, 12: 1, 13: 1, 21: 2, 22: 2} {
		f.store.seedAssignment(id, jobID, 3, at("09:00"), at("10:00"))
	}
	ctx, _ := tenantCtx(tenantID, tenancy.RoleManager)

	res, err := f.assignments.BulkComplete(ctx, []int64{22, 11, 13, 21, 12})
	require.NoError(t, err)

	assert.Equal(t, []int64{11, 12, 13, 21, 22}, res.Updated)
	assert.Equal(t, 5, res.LabourGenerated)
	assert.Equal(t, []int64{1, 2}, res.RecomputedJobIDs)
	assert.Equal(t, map[int64]int{1: 1, 2: 1}, f.store.countIncomplete)
	assert.Equal(t, job.StatusCompleted, f.store.jobs[1].Status)
	assert.Equal(t, job.StatusCompleted, f.store.jobs[2].Status)
}

func TestBulkComplete_IgnoresOtherTenants(t *testing.T) {
	f := newFixture()
	mine, theirs := uuid.New(), uuid.New()
	f.store.seedEmployee(3, mine, "Dana", "Ortiz", ptr(decimal.NewFromInt(50)))
	f.store.seedEmployee(4, theirs, "Kim", "Park", ptr(decimal.NewFromInt(60)))
	f.store.seedJob(1, mine, "Roof")
	f.store.seedJob(2, theirs, "Gutter")
	f.store.seedAssignment(11, 1, 3, at("09:00"), at("10:00"))
	f.store.seedAssignment(21, 2, 4, at("09:00"), at("10:00"))
	ctx, _ := tenantCtx(mine, tenancy.RoleManager)

	res, err := f.assignments.BulkComplete(ctx, []int64{11, 21})
	require.NoError(t, err)
	assert.Equal(t, []int64{11}, res.Updated)
	assert.False(t, f.store.assignments[21].Completed)
	assert.Empty(t, f.store.labourFor(21, labour.SourceAuto))
	assert.Equal(t, job.StatusActive, f.store.jobs[2].Status)
}

func TestBulkComplete_GenerationFailurePropagates(t *testing.T) {
	f := newFixture()
	tenantID := uuid.New()
	f.store.seedEmployee(3, tenantID, "Dana", "Ortiz", ptr(decimal.NewFromInt(50)))
	f.store.seedJob(7, tenantID, "Boiler service")
	f.store.seedAssignment(42, 7, 3, at("09:00"), at("17:00"))
	ctx, hooks := tenantCtx(tenantID, tenancy.RoleManager)

	boom := errors.New("connection reset")
	f.store.insertAutoErr = boom
	var completed int
	f.bus.Subscribe(func(e *assignment.CompletedEvent) { completed++ })

	_, err := f.assignments.BulkComplete(ctx, []int64{42})
	require.ErrorIs(t, err, boom)
	assert.Zero(t, hooks.Len(), "nothing may be scheduled for publication")
	assert.Zero(t, completed)
}
