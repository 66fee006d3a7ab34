package persistence

import (
	"cmp"
	"context"
	"errors"
	"slices"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/assignment"
	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/job"
	"github.com/iota-uz/fieldops/pkg/tenancy"
)

const assignmentColumns = `a.id, a.tenant_id, a.job_id, a.employee_id, a.start_time, a.end_time, a.completed, a.created_at, a.updated_at`

type AssignmentRepository struct{}

func NewAssignmentRepository() assignment.Repository {
	return &AssignmentRepository{}
}

func scanAssignment(row pgx.Row) (*assignment.Assignment, error) {
	var a assignment.Assignment
	if err := row.Scan(
		&a.ID, &a.TenantID, &a.JobID, &a.EmployeeID,
		&a.StartTime, &a.EndTime, &a.Completed, &a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AssignmentRepository) ListByJob(ctx context.Context, jobID int64) ([]*assignment.Assignment, error) {
	tx, err := useTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
		SELECT `+assignmentColumns+`
		FROM assignments a
		WHERE a.job_id = $1 AND `+tenancy.Visible("a")+`
		ORDER BY a.start_time, a.id`,
		jobID,
	)
	if err != nil {
		return nil, gerrors.Wrapf(err, "list assignments of job %d", jobID)
	}
	defer rows.Close()

	var out []*assignment.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, gerrors.Wrap(err, "scan assignment")
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, gerrors.Wrap(err, "iterate assignments")
	}
	return out, nil
}

func (r *AssignmentRepository) GetByID(ctx context.Context, id int64) (*assignment.Assignment, error) {
	return r.getByID(ctx, id, "")
}

// GetByIDForUpdate locks the row until the request transaction ends.
func (r *AssignmentRepository) GetByIDForUpdate(ctx context.Context, id int64) (*assignment.Assignment, error) {
	return r.getByID(ctx, id, " FOR UPDATE")
}

func (r *AssignmentRepository) getByID(ctx context.Context, id int64, lock string) (*assignment.Assignment, error) {
	tx, err := useTx(ctx)
	if err != nil {
		return nil, err
	}
	a, err := scanAssignment(tx.QueryRow(ctx,
		`SELECT `+assignmentColumns+` FROM assignments a WHERE a.id = $1 AND `+tenancy.Visible("a")+lock,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, assignment.ErrNotFound
		}
		return nil, gerrors.Wrapf(err, "get assignment %d", id)
	}
	return a, nil
}

// Create takes the tenant from the job row and requires the employee to belong to the
// same tenant.
func (r *AssignmentRepository) Create(ctx context.Context, a *assignment.Assignment) error {
	tx, err := useTx(ctx)
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO assignments (tenant_id, job_id, employee_id, start_time, end_time, completed)
		SELECT j.tenant_id, j.id, e.id, $3, $4, $5
		FROM jobs j
		JOIN employees e ON e.id = $2 AND e.tenant_id = j.tenant_id AND `+tenancy.Visible("e")+`
		WHERE j.id = $1 AND `+tenancy.Visible("j")+`
		RETURNING id, tenant_id, created_at, updated_at`,
		a.JobID, a.EmployeeID, a.StartTime, a.EndTime, a.Completed,
	).Scan(&a.ID, &a.TenantID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return job.ErrNotFound
		}
		return gerrors.Wrap(err, "create assignment")
	}
	return nil
}

func (r *AssignmentRepository) Update(ctx context.Context, a *assignment.Assignment) error {
	tx, err := useTx(ctx)
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, `
		UPDATE assignments a
		SET employee_id = e.id, start_time = $3, end_time = $4, completed = $5, updated_at = now()
		FROM employees e
		WHERE a.id = $1 AND `+tenancy.Visible("a")+`
		  AND e.id = $2 AND e.tenant_id = a.tenant_id AND `+tenancy.Visible("e")+`
		RETURNING a.tenant_id, a.job_id, a.updated_at`,
		a.ID, a.EmployeeID, a.StartTime, a.EndTime, a.Completed,
	).Scan(&a.TenantID, &a.JobID, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return assignment.ErrNotFound
		}
		return gerrors.Wrapf(err, "update assignment %d", a.ID)
	}
	return nil
}

func (r *AssignmentRepository) SetCompleted(ctx context.Context, ids []int64, completed bool) ([]assignment.Transition, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	tx, err := useTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
		WITH prev AS (
			SELECT a.id, a.completed AS was_completed
			FROM assignments a
			WHERE a.id = ANY($1) AND `+tenancy.Visible("a")+`
			ORDER BY a.id
			FOR UPDATE
		)
		UPDATE assignments a
		SET completed = $2, updated_at = now()
		FROM prev
		WHERE a.id = prev.id AND `+tenancy.Visible("a")+`
		RETURNING a.id, a.tenant_id, a.job_id, prev.was_completed`,
		ids, completed,
	)
	if err != nil {
		return nil, gerrors.Wrap(err, "set assignments completed")
	}
	defer rows.Close()

	var out []assignment.Transition
	for rows.Next() {
		var t assignment.Transition
		if err := rows.Scan(&t.ID, &t.TenantID, &t.JobID, &t.WasCompleted); err != nil {
			return nil, gerrors.Wrap(err, "scan assignment transition")
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, gerrors.Wrap(err, "iterate assignment transitions")
	}
	sortTransitions(out)
	return out, nil
}

func sortTransitions(ts []assignment.Transition) {
	slices.SortFunc(ts, func(a, b assignment.Transition) int {
		return cmp.Compare(a.ID, b.ID)
	})
}

func (r *AssignmentRepository) CountIncomplete(ctx context.Context, jobID int64) (int64, error) {
	tx, err := useTx(ctx)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM assignments a
		WHERE a.job_id = $1 AND a.completed = false AND `+tenancy.Visible("a"),
		jobID,
	).Scan(&n); err != nil {
		return 0, gerrors.Wrapf(err, "count incomplete assignments of job %d", jobID)
	}
	return n, nil
}

func (r *AssignmentRepository) Delete(ctx context.Context, id int64) error {
	tx, err := useTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM assignments a WHERE a.id = $1 AND `+tenancy.Visible("a"), id)
	if err != nil {
		return gerrors.Wrapf(err, "delete assignment %d", id)
	}
	if tag.RowsAffected() == 0 {
		return assignment.ErrNotFound
	}
	return nil
}

func (r *AssignmentRepository) DeleteByJob(ctx context.Context, jobID int64) (int64, error) {
	tx, err := useTx(ctx)
	if err != nil {
		return 0, err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM assignments a WHERE a.job_id = $1 AND `+tenancy.Visible("a"), jobID)
	if err != nil {
		return 0, gerrors.Wrapf(err, "delete assignments of job %d", jobID)
	}
	return tag.RowsAffected(), nil
}
