package services

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/activity"
	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/assignment"
	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/employee"
	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/job"
	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/labour"
	"github.com/iota-uz/fieldops/pkg/composables"
	"github.com/iota-uz/fieldops/pkg/eventbus"
	"github.com/iota-uz/fieldops/pkg/tenancy"
)

var errNotVisible = errors.New("owner not visible")

// memStore is an in-memory stand-in for the tenant-scoped tables. Visibility follows the
// session in the context, the same way row_visible() does.
type memStore struct {
	nextID      int64
	jobs        map[int64]*job.Job
	assignments map[int64]*assignment.Assignment
	labour      map[int64]*labour.Entry
	employees   map[int64]*employee.Employee
	activities  []*activity.Activity

	insertAutoErr   error
	countIncomplete map[int64]int
	locked          []int64
}

func newMemStore() *memStore {
	return &memStore{
		nextID:          1000,
		jobs:            map[int64]*job.Job{},
		assignments:     map[int64]*assignment.Assignment{},
		labour:          map[int64]*labour.Entry{},
		employees:       map[int64]*employee.Employee{},
		countIncomplete: map[int64]int{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func visible(ctx context.Context, owner uuid.UUID) bool {
	s, err := composables.UseSession(ctx)
	if err != nil {
		return false
	}
	return s.GodMode || (owner != uuid.Nil && owner == s.TenantID)
}

func (m *memStore) seedEmployee(id int64, tenantID uuid.UUID, first, last string, rate *decimal.Decimal) *employee.Employee {
	e := &employee.Employee{ID: id, TenantID: tenantID, FirstName: first, LastName: last, HourlyRate: rate}
	m.employees[id] = e
	return e
}

func (m *memStore) seedJob(id int64, tenantID uuid.UUID, title string) *job.Job {
	j := &job.Job{ID: id, TenantID: tenantID, Title: title, Status: job.StatusActive}
	m.jobs[id] = j
	return j
}

func (m *memStore) seedAssignment(id, jobID, employeeID int64, start, end time.Time) *assignment.Assignment {
	a := &assignment.Assignment{
		ID:         id,
		TenantID:   m.jobs[jobID].TenantID,
		JobID:      jobID,
		EmployeeID: employeeID,
		StartTime:  start,
		EndTime:    end,
	}
	m.assignments[id] = a
	return a
}

func (m *memStore) labourFor(assignmentID int64, source labour.Source) []*labour.Entry {
	var out []*labour.Entry
	for _, e := range m.labour {
		if e.AssignmentID != nil && *e.AssignmentID == assignmentID && e.Source == source {
			out = append(out, e)
		}
	}
	return out
}

func (m *memStore) activitiesOf(jobID int64, typ activity.Type) []*activity.Activity {
	var out []*activity.Activity
	for _, a := range m.activities {
		if a.JobID == jobID && a.Type == typ {
			out = append(out, a)
		}
	}
	return out
}

type memJobs struct{ *memStore }

func (r memJobs) List(ctx context.Context, params *job.FindParams) ([]*job.Job, error) {
	var out []*job.Job
	for _, j := range r.jobs {
		if !visible(ctx, j.TenantID) {
			continue
		}
		if params != nil && params.Status != "" && j.Status != params.Status {
			continue
		}
		out = append(out, j)
	}
	slices.SortFunc(out, func(a, b *job.Job) int { return int(b.ID - a.ID) })
	return out, nil
}

func (r memJobs) Count(ctx context.Context, params *job.FindParams) (int64, error) {
	jobs, _ := r.List(ctx, params)
	return int64(len(jobs)), nil
}

func (r memJobs) GetByID(ctx context.Context, id int64) (*job.Job, error) {
	j, ok := r.jobs[id]
	if !ok || !visible(ctx, j.TenantID) {
		return nil, job.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (r memJobs) Create(ctx context.Context, j *job.Job) error {
	if !visible(ctx, j.TenantID) {
		return errNotVisible
	}
	j.ID = r.id()
	j.CreatedAt = time.Now()
	j.UpdatedAt = j.CreatedAt
	cp := *j
	r.jobs[j.ID] = &cp
	return nil
}

func (r memJobs) Update(ctx context.Context, j *job.Job) error {
	if _, err := r.GetByID(ctx, j.ID); err != nil {
		return err
	}
	cp := *j
	r.jobs[j.ID] = &cp
	return nil
}

func (r memJobs) UpdateStatus(ctx context.Context, id int64, status job.Status) (bool, error) {
	j, ok := r.jobs[id]
	if !ok || !visible(ctx, j.TenantID) || j.Status == status {
		return false, nil
	}
	j.Status = status
	return true, nil
}

func (r memJobs) Delete(ctx context.Context, id int64) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	delete(r.jobs, id)
	return nil
}

type memAssignments struct{ *memStore }

func (r memAssignments) ListByJob(ctx context.Context, jobID int64) ([]*assignment.Assignment, error) {
	var out []*assignment.Assignment
	for _, a := range r.assignments {
		if a.JobID == jobID && visible(ctx, a.TenantID) {
			out = append(out, a)
		}
	}
	slices.SortFunc(out, func(a, b *assignment.Assignment) int { return int(a.ID - b.ID) })
	return out, nil
}

func (r memAssignments) GetByID(ctx context.Context, id int64) (*assignment.Assignment, error) {
	a, ok := r.assignments[id]
	if !ok || !visible(ctx, a.TenantID) {
		return nil, assignment.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r memAssignments) GetByIDForUpdate(ctx context.Context, id int64) (*assignment.Assignment, error) {
	a, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.locked = append(r.locked, id)
	return a, nil
}

func (r memAssignments) Create(ctx context.Context, a *assignment.Assignment) error {
	j, ok := r.jobs[a.JobID]
	if !ok || !visible(ctx, j.TenantID) {
		return job.ErrNotFound
	}
	e, ok := r.employees[a.EmployeeID]
	if !ok || e.TenantID != j.TenantID {
		return job.ErrNotFound
	}
	a.ID = r.id()
	a.TenantID = j.TenantID
	cp := *a
	r.assignments[a.ID] = &cp
	return nil
}

func (r memAssignments) Update(ctx context.Context, a *assignment.Assignment) error {
	if _, err := r.GetByID(ctx, a.ID); err != nil {
		return err
	}
	cp := *a
	r.assignments[a.ID] = &cp
	return nil
}

func (r memAssignments) SetCompleted(ctx context.Context, ids []int64, completed bool) ([]assignment.Transition, error) {
	var out []assignment.Transition
	for _, id := range ids {
		a, ok := r.assignments[id]
		if !ok || !visible(ctx, a.TenantID) {
			continue
		}
		out = append(out, assignment.Transition{ID: a.ID, TenantID: a.TenantID, JobID: a.JobID, WasCompleted: a.Completed})
		a.Completed = completed
	}
	slices.SortFunc(out, func(a, b assignment.Transition) int { return int(a.ID - b.ID) })
	return out, nil
}

func (r memAssignments) CountIncomplete(ctx context.Context, jobID int64) (int64, error) {
	r.countIncomplete[jobID]++
	var n int64
	for _, a := range r.assignments {
		if a.JobID == jobID && !a.Completed && visible(ctx, a.TenantID) {
			n++
		}
	}
	return n, nil
}

func (r memAssignments) Delete(ctx context.Context, id int64) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	delete(r.assignments, id)
	return nil
}

func (r memAssignments) DeleteByJob(ctx context.Context, jobID int64) (int64, error) {
	var n int64
	for id, a := range r.assignments {
		if a.JobID == jobID && visible(ctx, a.TenantID) {
			delete(r.assignments, id)
			n++
		}
	}
	return n, nil
}

type memLabour struct{ *memStore }

func (r memLabour) ListByJob(ctx context.Context, jobID int64) ([]*labour.Entry, error) {
	var out []*labour.Entry
	for _, e := range r.labour {
		if e.JobID == jobID && visible(ctx, e.TenantID) {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b *labour.Entry) int { return int(a.ID - b.ID) })
	return out, nil
}

func (r memLabour) GetByID(ctx context.Context, id int64) (*labour.Entry, error) {
	e, ok := r.labour[id]
	if !ok || !visible(ctx, e.TenantID) {
		return nil, labour.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r memLabour) Create(ctx context.Context, e *labour.Entry) error {
	j, ok := r.jobs[e.JobID]
	if !ok || !visible(ctx, j.TenantID) {
		return job.ErrNotFound
	}
	e.ID = r.id()
	e.TenantID = j.TenantID
	e.Source = labour.SourceManual
	e.CreatedAt = time.Now()
	cp := *e
	r.labour[e.ID] = &cp
	return nil
}

func (r memLabour) ExistsForAssignment(ctx context.Context, assignmentID int64) (bool, error) {
	for _, e := range r.labour {
		if e.AssignmentID != nil && *e.AssignmentID == assignmentID && visible(ctx, e.TenantID) {
			return true, nil
		}
	}
	return false, nil
}

func (r memLabour) LoadShift(ctx context.Context, assignmentID int64) (*labour.Shift, error) {
	a, ok := r.assignments[assignmentID]
	if !ok || !visible(ctx, a.TenantID) {
		return nil, assignment.ErrNotFound
	}
	e := r.employees[a.EmployeeID]
	return &labour.Shift{
		AssignmentID: a.ID,
		JobID:        a.JobID,
		EmployeeID:   a.EmployeeID,
		StartTime:    a.StartTime,
		EndTime:      a.EndTime,
		Rate:         e.HourlyRate,
	}, nil
}

func (r memLabour) InsertAuto(ctx context.Context, e *labour.Entry) (bool, error) {
	if r.insertAutoErr != nil {
		return false, r.insertAutoErr
	}
	if len(r.labourFor(*e.AssignmentID, labour.SourceAuto)) > 0 {
		return false, nil
	}
	j, ok := r.jobs[e.JobID]
	if !ok || !visible(ctx, j.TenantID) {
		return false, nil
	}
	e.ID = r.id()
	e.TenantID = j.TenantID
	e.Source = labour.SourceAuto
	e.CreatedAt = time.Now()
	cp := *e
	r.labour[e.ID] = &cp
	return true, nil
}

func (r memLabour) DeleteAutoForAssignments(ctx context.Context, ids []int64) (int64, error) {
	var n int64
	for id, e := range r.labour {
		if e.Source == labour.SourceAuto && e.AssignmentID != nil &&
			slices.Contains(ids, *e.AssignmentID) && visible(ctx, e.TenantID) {
			delete(r.labour, id)
			n++
		}
	}
	return n, nil
}

func (r memLabour) DetachAssignment(ctx context.Context, assignmentID int64) (int64, error) {
	var n int64
	for _, e := range r.labour {
		if e.AssignmentID != nil && *e.AssignmentID == assignmentID && visible(ctx, e.TenantID) {
			e.AssignmentID = nil
			n++
		}
	}
	return n, nil
}

func (r memLabour) Delete(ctx context.Context, id int64) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	delete(r.labour, id)
	return nil
}

func (r memLabour) DeleteByJob(ctx context.Context, jobID int64) (int64, error) {
	var n int64
	for id, e := range r.labour {
		if e.JobID == jobID && visible(ctx, e.TenantID) {
			delete(r.labour, id)
			n++
		}
	}
	return n, nil
}

type memActivities struct{ *memStore }

func (r memActivities) Insert(ctx context.Context, jobID int64, typ activity.Type, title, actorName string) (int64, error) {
	j, ok := r.jobs[jobID]
	if !ok || !visible(ctx, j.TenantID) {
		return 0, nil
	}
	r.memStore.activities = append(r.memStore.activities, &activity.Activity{
		ID:        r.id(),
		TenantID:  j.TenantID,
		JobID:     jobID,
		Type:      typ,
		Title:     title,
		ActorName: actorName,
		CreatedAt: time.Now(),
	})
	return 1, nil
}

func (r memActivities) ListByJob(ctx context.Context, jobID int64, _ *activity.FindParams) ([]*activity.Activity, error) {
	var out []*activity.Activity
	for i := len(r.memStore.activities) - 1; i >= 0; i-- {
		a := r.memStore.activities[i]
		if a.JobID == jobID && visible(ctx, a.TenantID) {
			out = append(out, a)
		}
	}
	return out, nil
}

type memEmployees struct{ *memStore }

func (r memEmployees) List(ctx context.Context) ([]*employee.Employee, error) {
	var out []*employee.Employee
	for _, e := range r.employees {
		if visible(ctx, e.TenantID) {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b *employee.Employee) int { return int(a.ID - b.ID) })
	return out, nil
}

func (r memEmployees) GetByID(ctx context.Context, id int64) (*employee.Employee, error) {
	e, ok := r.employees[id]
	if !ok || !visible(ctx, e.TenantID) {
		return nil, employee.ErrNotFound
	}
	return e, nil
}

func (r memEmployees) Create(ctx context.Context, e *employee.Employee) error {
	if !visible(ctx, e.TenantID) {
		return errNotVisible
	}
	e.ID = r.id()
	r.employees[e.ID] = e
	return nil
}

// fixture wires every service over one memStore.
type fixture struct {
	store       *memStore
	bus         eventbus.EventBus
	activities  *ActivityService
	reconciler  *Reconciler
	jobs        *JobService
	assignments *AssignmentService
	labour      *LabourService
	employees   *EmployeeService
}

func newFixture() *fixture {
	store := newMemStore()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	bus := eventbus.NewEventPublisher(logger)

	jobs, assignments, labourRepo := memJobs{store}, memAssignments{store}, memLabour{store}
	employees := memEmployees{store}
	activities := NewActivityService(memActivities{store}, employees)
	reconciler := NewReconciler(jobs, assignments, labourRepo, activities, bus)
	return &fixture{
		store:       store,
		bus:         bus,
		activities:  activities,
		reconciler:  reconciler,
		jobs:        NewJobService(jobs, assignments, labourRepo, activities, bus),
		assignments: NewAssignmentService(assignments, jobs, employees, labourRepo, reconciler, activities, bus),
		labour:      NewLabourService(labourRepo, jobs, assignments, employees, activities),
		employees:   NewEmployeeService(employees),
	}
}

// sessionCtx returns a context that looks like the inside of a tenant transaction.
func sessionCtx(s tenancy.Session) (context.Context, *composables.CommitHooks) {
	hooks := &composables.CommitHooks{}
	ctx := composables.WithSession(context.Background(), s)
	return composables.WithCommitHooks(ctx, hooks), hooks
}

func tenantCtx(tenantID uuid.UUID, role tenancy.Role) (context.Context, *composables.CommitHooks) {
	return sessionCtx(tenancy.Session{Role: role, TenantID: tenantID})
}

func godCtx() (context.Context, *composables.CommitHooks) {
	return sessionCtx(tenancy.Session{Role: tenancy.RoleSuperadmin, GodMode: true})
}

func ptr[T any](v T) *T { return &v }

func at(hhmm string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", "2025-03-01 "+hhmm)
	if err != nil {
		panic(err)
	}
	return t
}
