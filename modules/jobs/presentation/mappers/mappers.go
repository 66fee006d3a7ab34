package mappers

import (
	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/activity"
	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/assignment"
	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/employee"
	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/job"
	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/labour"
	"github.com/iota-uz/fieldops/modules/jobs/presentation/viewmodels"
	"github.com/iota-uz/fieldops/modules/jobs/services"
)

func MapViewModels[T any, V any](items []T, fn func(T) V) []V {
	out := make([]V, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}

func JobToViewModel(j *job.Job) viewmodels.Job {
	return viewmodels.Job{
		ID:          j.ID,
		TenantID:    j.TenantID.String(),
		Title:       j.Title,
		Description: j.Description,
		Status:      string(j.Status),
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

func AssignmentToViewModel(a *assignment.Assignment) viewmodels.Assignment {
	return viewmodels.Assignment{
		ID:         a.ID,
		JobID:      a.JobID,
		EmployeeID: a.EmployeeID,
		StartTime:  a.StartTime,
		EndTime:    a.EndTime,
		Completed:  a.Completed,
		UpdatedAt:  a.UpdatedAt,
	}
}

func LabourToViewModel(e *labour.Entry) viewmodels.LabourEntry {
	return viewmodels.LabourEntry{
		ID:           e.ID,
		JobID:        e.JobID,
		AssignmentID: e.AssignmentID,
		EmployeeID:   e.EmployeeID,
		Hours:        e.Hours.StringFixed(2),
		Rate:         e.Rate.StringFixed(2),
		Total:        e.Total.StringFixed(2),
		Source:       string(e.Source),
		CreatedAt:    e.CreatedAt,
	}
}

func ActivityToViewModel(a *activity.Activity) viewmodels.Activity {
	return viewmodels.Activity{
		ID:        a.ID,
		Type:      string(a.Type),
		Title:     a.Title,
		ActorName: a.ActorName,
		CreatedAt: a.CreatedAt,
	}
}

func EmployeeToViewModel(e *employee.Employee) viewmodels.Employee {
	vm := viewmodels.Employee{
		ID:        e.ID,
		FirstName: e.FirstName,
		LastName:  e.LastName,
	}
	if e.HourlyRate != nil {
		rate := e.HourlyRate.StringFixed(2)
		vm.HourlyRate = &rate
	}
	return vm
}

func BulkResultToViewModel(r *services.BulkResult) viewmodels.BulkResult {
	vm := viewmodels.BulkResult{
		Updated:          r.Updated,
		Changed:          r.Changed,
		LabourGenerated:  r.LabourGenerated,
		LabourRemoved:    r.LabourRemoved,
		RecomputedJobIDs: r.RecomputedJobIDs,
	}
	for _, ids := range []*[]int64{&vm.Updated, &vm.Changed, &vm.RecomputedJobIDs} {
		if *ids == nil {
			*ids = []int64{}
		}
	}
	return vm
}
