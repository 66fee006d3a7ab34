package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/activity"
	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/assignment"
	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/employee"
	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/job"
	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/labour"
	"github.com/iota-uz/fieldops/pkg/excel"
)

var ErrAssignmentJobMismatch = errors.New("assignment belongs to a different job")

type LabourService struct {
	repo        labour.Repository
	jobs        job.Repository
	assignments assignment.Repository
	employees   employee.Repository
	activities  *ActivityService
}

func NewLabourService(
	repo labour.Repository,
	jobs job.Repository,
	assignments assignment.Repository,
	employees employee.Repository,
	activities *ActivityService,
) *LabourService {
	return &LabourService{
		repo:        repo,
		jobs:        jobs,
		assignments: assignments,
		employees:   employees,
		activities:  activities,
	}
}

func (s *LabourService) ListByJob(ctx context.Context, jobID int64) ([]*labour.Entry, error) {
	if _, err := s.jobs.GetByID(ctx, jobID); err != nil {
		return nil, err
	}
	return s.repo.ListByJob(ctx, jobID)
}

// Create records a manual timesheet line. The total is always computed here; a client
// cannot supply it.
func (s *LabourService) Create(ctx context.Context, e *labour.Entry) error {
	e.Source = labour.SourceManual
	if err := e.Validate(); err != nil {
		return err
	}
	e.Total = LabourTotal(e.Hours, e.Rate)

	if _, err := s.jobs.GetByID(ctx, e.JobID); err != nil {
		return err
	}
	emp, err := s.employees.GetByID(ctx, e.EmployeeID)
	if err != nil {
		return err
	}
	if e.AssignmentID != nil {
		a, err := s.assignments.GetByID(ctx, *e.AssignmentID)
		if err != nil {
			return err
		}
		if a.JobID != e.JobID {
			return ErrAssignmentJobMismatch
		}
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return err
	}
	return s.activities.Record(ctx, e.JobID, activity.LabourAdded,
		fmt.Sprintf("Labour added: %sh for %s", e.Hours.StringFixed(2), emp.FullName()))
}

// Delete removes a manual entry. Generated entries are owned by their assignment and
// go away when it is reopened or deleted.
func (s *LabourService) Delete(ctx context.Context, id int64) error {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if e.Source == labour.SourceAuto {
		return labour.ErrAutoImmutable
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	return s.activities.Record(ctx, e.JobID, activity.LabourRemoved,
		fmt.Sprintf("Labour removed: %sh", e.Hours.StringFixed(2)))
}

var timesheetHeaders = []string{"Entry", "Assignment", "Employee", "Hours", "Rate", "Total", "Source", "Created"}

// ExportTimesheet renders the job's labour as an xlsx workbook with a closing total row.
func (s *LabourService) ExportTimesheet(ctx context.Context, jobID int64) ([]byte, error) {
	j, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	entries, err := s.repo.ListByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	names, err := s.employeeNames(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([][]any, 0, len(entries)+1)
	hours, total := decimal.Zero, decimal.Zero
	for _, e := range entries {
		var assignmentRef any
		if e.AssignmentID != nil {
			assignmentRef = *e.AssignmentID
		}
		name := names[e.EmployeeID]
		if name == "" {
			name = fmt.Sprintf("#%d", e.EmployeeID)
		}
		rows = append(rows, []any{
			e.ID, assignmentRef, name,
			e.Hours.InexactFloat64(), e.Rate.InexactFloat64(), e.Total.InexactFloat64(),
			string(e.Source), e.CreatedAt,
		})
		hours = hours.Add(e.Hours)
		total = total.Add(e.Total)
	}
	rows = append(rows, []any{"Total", nil, nil, hours.InexactFloat64(), nil, total.InexactFloat64(), nil, nil})

	ds := excel.NewSliceDataSource(timesheetHeaders, rows).
		WithSheetName(fmt.Sprintf("Job %d %s", j.ID, j.Title))
	data, err := excel.NewExcelExporter(excel.DefaultExportOptions(), excel.DefaultStyleOptions()).Export(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("failed to export timesheet of job %d: %w", jobID, err)
	}
	return data, nil
}

func (s *LabourService) employeeNames(ctx context.Context) (map[int64]string, error) {
	employees, err := s.employees.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(employees))
	for _, e := range employees {
		names[e.ID] = e.FullName()
	}
	return names, nil
}
