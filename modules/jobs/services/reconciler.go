package services

import (
	"context"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/activity"
	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/assignment"
	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/job"
	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/labour"
	"github.com/iota-uz/fieldops/pkg/composables"
	"github.com/iota-uz/fieldops/pkg/eventbus"
)

// Reconciler keeps derived state in line with assignments. Every method runs on the
// caller's open tenant transaction and never commits on its own.
type Reconciler struct {
	jobs        job.Repository
	assignments assignment.Repository
	labour      labour.Repository
	activities  *ActivityService
	publisher   eventbus.EventBus
}

func NewReconciler(
	jobs job.Repository,
	assignments assignment.Repository,
	labourRepo labour.Repository,
	activities *ActivityService,
	publisher eventbus.EventBus,
) *Reconciler {
	return &Reconciler{
		jobs:        jobs,
		assignments: assignments,
		labour:      labourRepo,
		activities:  activities,
		publisher:   publisher,
	}
}

// RecomputeJobStatus sets the job to completed when none of its assignments is
// outstanding, and to active otherwise.
func (r *Reconciler) RecomputeJobStatus(ctx context.Context, jobID int64) (job.Status, error) {
	j, err := r.jobs.GetByID(ctx, jobID)
	if err != nil {
		return "", err
	}
	incomplete, err := r.assignments.CountIncomplete(ctx, jobID)
	if err != nil {
		return "", err
	}
	status := job.StatusCompleted
	if incomplete > 0 {
		status = job.StatusActive
	}
	jobStatusRecomputed.WithLabelValues(string(status)).Inc()
	if j.Status == status {
		return status, nil
	}

	changed, err := r.jobs.UpdateStatus(ctx, jobID, status)
	if err != nil {
		return "", err
	}
	if !changed {
		return status, nil
	}
	if err := r.activities.Record(ctx, jobID, activity.JobStatusChanged,
		fmt.Sprintf("Status changed from %s to %s", j.Status, status)); err != nil {
		return "", err
	}
	eventbus.PublishAfterCommit(ctx, r.publisher, &job.StatusChangedEvent{
		TenantID: j.TenantID,
		JobID:    jobID,
		From:     j.Status,
		To:       status,
	})
	return status, nil
}

// RecomputeJobs recomputes each distinct job once, in ascending id order so concurrent
// bulk requests lock jobs in the same sequence.
func (r *Reconciler) RecomputeJobs(ctx context.Context, jobIDs []int64) error {
	for _, id := range uniqueSorted(jobIDs) {
		if _, err := r.RecomputeJobStatus(ctx, id); err != nil {
			return fmt.Errorf("recompute job %d: %w", id, err)
		}
	}
	return nil
}

// GenerateLabourForAssignment inserts the automatic labour entry for a completed
// assignment. It reports false without error when any entry already references the
// assignment or a concurrent transaction won the insert.
func (r *Reconciler) GenerateLabourForAssignment(ctx context.Context, assignmentID int64) (bool, error) {
	logger := composables.UseLogger(ctx).WithField("assignment_id", assignmentID)

	exists, err := r.labour.ExistsForAssignment(ctx, assignmentID)
	if err != nil {
		return false, err
	}
	if exists {
		labourSkipped.WithLabelValues(skipExisting).Inc()
		return false, nil
	}

	shift, err := r.labour.LoadShift(ctx, assignmentID)
	if err != nil {
		return false, err
	}
	rate := decimal.Zero
	if shift.Rate != nil {
		rate = *shift.Rate
	} else {
		logger.WithField("employee_id", shift.EmployeeID).Warn("employee has no hourly rate, generating zero-value labour")
	}

	hours := BillableHours(shift.StartTime, shift.EndTime)
	entry := &labour.Entry{
		JobID:        shift.JobID,
		AssignmentID: &assignmentID,
		EmployeeID:   shift.EmployeeID,
		Hours:        hours,
		Rate:         rate,
		Total:        LabourTotal(hours, rate),
	}
	created, err := r.labour.InsertAuto(ctx, entry)
	if err != nil {
		return false, err
	}
	if !created {
		labourSkipped.WithLabelValues(skipConflict).Inc()
		logger.Debug("automatic labour already inserted by a concurrent transaction")
		return false, nil
	}

	labourGenerated.Inc()
	logger.WithFields(logrus.Fields{
		"job_id": entry.JobID,
		"hours":  entry.Hours.String(),
		"total":  entry.Total.StringFixed(2),
	}).Info("automatic labour generated")
	eventbus.PublishAfterCommit(ctx, r.publisher, &labour.GeneratedEvent{
		TenantID:     entry.TenantID,
		JobID:        entry.JobID,
		AssignmentID: assignmentID,
		Hours:        entry.Hours,
		Total:        entry.Total,
	})
	return true, nil
}

// RemoveAutoLabour deletes the generated entries of the given assignments. Manual
// entries are never touched.
func (r *Reconciler) RemoveAutoLabour(ctx context.Context, assignmentIDs []int64) (int64, error) {
	return r.labour.DeleteAutoForAssignments(ctx, uniqueSorted(assignmentIDs))
}

func uniqueSorted(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
