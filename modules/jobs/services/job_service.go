package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/activity"
	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/assignment"
	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/job"
	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/labour"
	"github.com/iota-uz/fieldops/pkg/composables"
	"github.com/iota-uz/fieldops/pkg/eventbus"
)

// JobPatch carries the operator-settable fields; nil means unchanged.
type JobPatch struct {
	Title       *string
	Description *string
	Status      *job.Status
}

type JobService struct {
	repo        job.Repository
	assignments assignment.Repository
	labour      labour.Repository
	activities  *ActivityService
	publisher   eventbus.EventBus
}

func NewJobService(
	repo job.Repository,
	assignments assignment.Repository,
	labourRepo labour.Repository,
	activities *ActivityService,
	publisher eventbus.EventBus,
) *JobService {
	return &JobService{
		repo:        repo,
		assignments: assignments,
		labour:      labourRepo,
		activities:  activities,
		publisher:   publisher,
	}
}

func (s *JobService) List(ctx context.Context, params *job.FindParams) ([]*job.Job, int64, error) {
	jobs, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

func (s *JobService) GetByID(ctx context.Context, id int64) (*job.Job, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *JobService) Create(ctx context.Context, j *job.Job) error {
	tenantID, err := ownerTenant(ctx, j.TenantID, job.ErrTenantRequired)
	if err != nil {
		return err
	}
	j.TenantID = tenantID
	if err := j.Validate(); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, j); err != nil {
		return err
	}
	if err := s.activities.Record(ctx, j.ID, activity.JobCreated, "Job created: "+j.Title); err != nil {
		return err
	}
	eventbus.PublishAfterCommit(ctx, s.publisher, &job.CreatedEvent{TenantID: j.TenantID, Job: *j})
	return nil
}

func (s *JobService) Update(ctx context.Context, id int64, patch JobPatch) (*job.Job, error) {
	j, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	var changes []string
	if patch.Title != nil && *patch.Title != j.Title {
		j.Title = *patch.Title
		changes = append(changes, "title")
	}
	if patch.Description != nil && *patch.Description != j.Description {
		j.Description = *patch.Description
		changes = append(changes, "description")
	}
	from := j.Status
	if patch.Status != nil && *patch.Status != j.Status {
		j.Status = *patch.Status
		changes = append(changes, "status")
	}
	if len(changes) == 0 {
		return j, nil
	}
	if err := j.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, j); err != nil {
		return nil, err
	}
	if err := s.activities.Record(ctx, j.ID, activity.JobUpdated,
		"Job updated: "+strings.Join(changes, ", ")); err != nil {
		return nil, err
	}
	if from != j.Status {
		if err := s.activities.Record(ctx, j.ID, activity.JobStatusChanged,
			fmt.Sprintf("Status changed from %s to %s", from, j.Status)); err != nil {
			return nil, err
		}
		eventbus.PublishAfterCommit(ctx, s.publisher, &job.StatusChangedEvent{
			TenantID: j.TenantID,
			JobID:    j.ID,
			From:     from,
			To:       j.Status,
		})
	}
	return j, nil
}

// Delete removes the job's labour, then its assignments, then the job. The deletion is
// logged first because the trail insert needs the job row to resolve its tenant.
func (s *JobService) Delete(ctx context.Context, id int64) error {
	j, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.activities.Record(ctx, j.ID, activity.JobDeleted, "Job deleted: "+j.Title); err != nil {
		return err
	}
	removedLabour, err := s.labour.DeleteByJob(ctx, id)
	if err != nil {
		return err
	}
	removedAssignments, err := s.assignments.DeleteByJob(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	composables.UseLogger(ctx).WithField("job_id", id).
		Infof("job deleted with %d labour entries and %d assignments", removedLabour, removedAssignments)
	eventbus.PublishAfterCommit(ctx, s.publisher, &job.DeletedEvent{TenantID: j.TenantID, JobID: id})
	return nil
}
