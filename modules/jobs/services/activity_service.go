package services

import (
	"context"
	"fmt"

	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/activity"
	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/employee"
	"github.com/iota-uz/fieldops/pkg/composables"
	"github.com/iota-uz/fieldops/pkg/tenancy"
)

const (
	actorSuperadmin = "Superadmin"
	actorAdmin      = "Admin"
	actorSystem     = "System"
)

type ActivityService struct {
	repo      activity.Repository
	employees employee.Repository
}

func NewActivityService(repo activity.Repository, employees employee.Repository) *ActivityService {
	return &ActivityService{
		repo:      repo,
		employees: employees,
	}
}

// LogJobActivity appends one entry to the trail of jobID and returns the number of rows
// written. A job outside the session's visibility yields 0 without an error.
func (s *ActivityService) LogJobActivity(ctx context.Context, jobID int64, typ activity.Type, title, actorName string) (int64, error) {
	n, err := s.repo.Insert(ctx, jobID, typ, title, actorName)
	if err != nil {
		return 0, fmt.Errorf("log %s for job %d: %w", typ, jobID, err)
	}
	if n == 0 {
		composables.UseLogger(ctx).WithField("job_id", jobID).
			Debugf("activity %s not recorded: job not visible", typ)
	}
	return n, nil
}

// Record logs an activity attributed to the current actor.
func (s *ActivityService) Record(ctx context.Context, jobID int64, typ activity.Type, title string) error {
	_, err := s.LogJobActivity(ctx, jobID, typ, title, s.ResolveActorName(ctx))
	return err
}

// ResolveActorName prefers the linked employee's name, then falls back to a label for
// the role.
func (s *ActivityService) ResolveActorName(ctx context.Context) string {
	session, err := composables.UseSession(ctx)
	if err != nil {
		return actorSystem
	}
	if session.EmployeeID != nil && s.employees != nil {
		if e, err := s.employees.GetByID(ctx, *session.EmployeeID); err == nil {
			if name := e.FullName(); name != "" {
				return name
			}
		}
	}
	switch session.Role {
	case tenancy.RoleSuperadmin:
		return actorSuperadmin
	case tenancy.RoleAdmin:
		return actorAdmin
	}
	return actorSystem
}

func (s *ActivityService) List(ctx context.Context, jobID int64, params *activity.FindParams) ([]*activity.Activity, error) {
	return s.repo.ListByJob(ctx, jobID, params)
}
