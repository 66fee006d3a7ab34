package services

import (
	"context"
	"fmt"
	"time"

	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/activity"
	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/assignment"
	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/employee"
	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/job"
	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/labour"
	"github.com/iota-uz/fieldops/pkg/eventbus"
)

type AssignmentPatch struct {
	EmployeeID *int64
	StartTime  *time.Time
	EndTime    *time.Time
	Completed  *bool
}

// BulkResult summarises one bulk completion change.
type BulkResult struct {
	// Updated lists every visible assignment the request touched, ascending.
	Updated []int64
	// Changed lists the assignments whose completion flag actually flipped.
	Changed          []int64
	LabourGenerated  int
	LabourRemoved    int64
	RecomputedJobIDs []int64
}

type AssignmentService struct {
	repo       assignment.Repository
	jobs       job.Repository
	employees  employee.Repository
	labour     labour.Repository
	reconciler *Reconciler
	activities *ActivityService
	publisher  eventbus.EventBus
}

func NewAssignmentService(
	repo assignment.Repository,
	jobs job.Repository,
	employees employee.Repository,
	labourRepo labour.Repository,
	reconciler *Reconciler,
	activities *ActivityService,
	publisher eventbus.EventBus,
) *AssignmentService {
	return &AssignmentService{
		repo:       repo,
		jobs:       jobs,
		employees:  employees,
		labour:     labourRepo,
		reconciler: reconciler,
		activities: activities,
		publisher:  publisher,
	}
}

func (s *AssignmentService) ListByJob(ctx context.Context, jobID int64) ([]*assignment.Assignment, error) {
	if _, err := s.jobs.GetByID(ctx, jobID); err != nil {
		return nil, err
	}
	return s.repo.ListByJob(ctx, jobID)
}

func (s *AssignmentService) GetByID(ctx context.Context, id int64) (*assignment.Assignment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *AssignmentService) Create(ctx context.Context, a *assignment.Assignment) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if _, err := s.jobs.GetByID(ctx, a.JobID); err != nil {
		return err
	}
	e, err := s.employees.GetByID(ctx, a.EmployeeID)
	if err != nil {
		return err
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return err
	}
	if err := s.activities.Record(ctx, a.JobID, activity.AssignmentCreated,
		fmt.Sprintf("Assigned %s (#%d)", e.FullName(), a.ID)); err != nil {
		return err
	}
	if a.Completed {
		if err := s.onCompleted(ctx, a); err != nil {
			return err
		}
	}
	_, err = s.reconciler.RecomputeJobStatus(ctx, a.JobID)
	return err
}

// Update locks the assignment before patching it, so concurrent completion changes on
// the same row serialise. A completed assignment whose shift or employee changed gets
// its generated labour priced again.
func (s *AssignmentService) Update(ctx context.Context, id int64, patch AssignmentPatch) (*assignment.Assignment, error) {
	a, err := s.repo.GetByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	prev := *a
	wasCompleted := a.Completed
	if patch.EmployeeID != nil {
		if _, err := s.employees.GetByID(ctx, *patch.EmployeeID); err != nil {
			return nil, err
		}
		a.EmployeeID = *patch.EmployeeID
	}
	if patch.StartTime != nil {
		a.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		a.EndTime = *patch.EndTime
	}
	if patch.Completed != nil {
		a.Completed = *patch.Completed
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	if err := s.activities.Record(ctx, a.JobID, activity.AssignmentUpdated,
		fmt.Sprintf("Assignment #%d updated", a.ID)); err != nil {
		return nil, err
	}

	switch {
	case a.Completed && !wasCompleted:
		if err := s.onCompleted(ctx, a); err != nil {
			return nil, err
		}
	case !a.Completed && wasCompleted:
		if _, err := s.reconciler.RemoveAutoLabour(ctx, []int64{a.ID}); err != nil {
			return nil, err
		}
		if err := s.onReopened(ctx, a); err != nil {
			return nil, err
		}
	case a.Completed && a.ShiftChanged(&prev):
		if err := s.regenerateLabour(ctx, a); err != nil {
			return nil, err
		}
	}
	if _, err := s.reconciler.RecomputeJobStatus(ctx, a.JobID); err != nil {
		return nil, err
	}
	return a, nil
}

// Delete removes the assignment's generated labour and detaches manual entries so they
// stay billed against the job.
func (s *AssignmentService) Delete(ctx context.Context, id int64) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.reconciler.RemoveAutoLabour(ctx, []int64{id}); err != nil {
		return err
	}
	if _, err := s.labour.DetachAssignment(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.activities.Record(ctx, a.JobID, activity.AssignmentDeleted,
		fmt.Sprintf("Assignment #%d deleted", id)); err != nil {
		return err
	}
	_, err = s.reconciler.RecomputeJobStatus(ctx, a.JobID)
	return err
}

// BulkComplete marks every visible id completed. Generation runs for each returned row,
// relying on its guard for rows that were already completed, and each affected job is
// recomputed once.
func (s *AssignmentService) BulkComplete(ctx context.Context, ids []int64) (*BulkResult, error) {
	transitions, err := s.repo.SetCompleted(ctx, uniqueSorted(ids), true)
	if err != nil {
		return nil, err
	}
	res := &BulkResult{}
	jobIDs := make([]int64, 0, len(transitions))
	for _, t := range transitions {
		res.Updated = append(res.Updated, t.ID)
		jobIDs = append(jobIDs, t.JobID)

		created, err := s.reconciler.GenerateLabourForAssignment(ctx, t.ID)
		if err != nil {
			return nil, fmt.Errorf("generate labour for assignment %d: %w", t.ID, err)
		}
		if created {
			res.LabourGenerated++
		}
		if !t.Changed(true) {
			continue
		}
		res.Changed = append(res.Changed, t.ID)
		if err := s.activities.Record(ctx, t.JobID, activity.AssignmentCompleted,
			fmt.Sprintf("Assignment #%d completed", t.ID)); err != nil {
			return nil, err
		}
		eventbus.PublishAfterCommit(ctx, s.publisher, &assignment.CompletedEvent{
			TenantID:     t.TenantID,
			AssignmentID: t.ID,
			JobID:        t.JobID,
		})
	}
	if err := s.reconciler.RecomputeJobs(ctx, jobIDs); err != nil {
		return nil, err
	}
	res.RecomputedJobIDs = uniqueSorted(jobIDs)
	return res, nil
}

// BulkReopen clears the completion flag, removes generated labour of every touched row
// and recomputes each affected job once.
func (s *AssignmentService) BulkReopen(ctx context.Context, ids []int64) (*BulkResult, error) {
	transitions, err := s.repo.SetCompleted(ctx, uniqueSorted(ids), false)
	if err != nil {
		return nil, err
	}
	res := &BulkResult{}
	jobIDs := make([]int64, 0, len(transitions))
	for _, t := range transitions {
		res.Updated = append(res.Updated, t.ID)
		jobIDs = append(jobIDs, t.JobID)
	}
	removed, err := s.reconciler.RemoveAutoLabour(ctx, res.Updated)
	if err != nil {
		return nil, err
	}
	res.LabourRemoved = removed
	for _, t := range transitions {
		if !t.Changed(false) {
			continue
		}
		res.Changed = append(res.Changed, t.ID)
		if err := s.activities.Record(ctx, t.JobID, activity.AssignmentReopened,
			fmt.Sprintf("Assignment #%d reopened", t.ID)); err != nil {
			return nil, err
		}
		eventbus.PublishAfterCommit(ctx, s.publisher, &assignment.ReopenedEvent{
			TenantID:     t.TenantID,
			AssignmentID: t.ID,
			JobID:        t.JobID,
		})
	}
	if err := s.reconciler.RecomputeJobs(ctx, jobIDs); err != nil {
		return nil, err
	}
	res.RecomputedJobIDs = uniqueSorted(jobIDs)
	return res, nil
}

func (s *AssignmentService) onCompleted(ctx context.Context, a *assignment.Assignment) error {
	if _, err := s.reconciler.GenerateLabourForAssignment(ctx, a.ID); err != nil {
		return fmt.Errorf("generate labour for assignment %d: %w", a.ID, err)
	}
	if err := s.activities.Record(ctx, a.JobID, activity.AssignmentCompleted,
		fmt.Sprintf("Assignment #%d completed", a.ID)); err != nil {
		return err
	}
	eventbus.PublishAfterCommit(ctx, s.publisher, &assignment.CompletedEvent{
		TenantID:     a.TenantID,
		AssignmentID: a.ID,
		JobID:        a.JobID,
	})
	return nil
}

func (s *AssignmentService) regenerateLabour(ctx context.Context, a *assignment.Assignment) error {
	if _, err := s.reconciler.RemoveAutoLabour(ctx, []int64{a.ID}); err != nil {
		return err
	}
	if _, err := s.reconciler.GenerateLabourForAssignment(ctx, a.ID); err != nil {
		return fmt.Errorf("regenerate labour for assignment %d: %w", a.ID, err)
	}
	return nil
}

func (s *AssignmentService) onReopened(ctx context.Context, a *assignment.Assignment) error {
	if err := s.activities.Record(ctx, a.JobID, activity.AssignmentReopened,
		fmt.Sprintf("Assignment #%d reopened", a.ID)); err != nil {
		return err
	}
	eventbus.PublishAfterCommit(ctx, s.publisher, &assignment.ReopenedEvent{
		TenantID:     a.TenantID,
		AssignmentID: a.ID,
		JobID:        a.JobID,
	})
	return nil
}
