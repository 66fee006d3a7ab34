package persistence

import (
	"context"
	"errors"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/assignment"
	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/job"
	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/labour"
	"github.com/iota-uz/fieldops/pkg/tenancy"
)

const labourColumns = `l.id, l.tenant_id, l.job_id, l.assignment_id, l.employee_id, l.hours, l.rate, l.total, l.source, l.created_at`

type LabourRepository struct{}

func NewLabourRepository() labour.Repository {
	return &LabourRepository{}
}

func scanLabour(row pgx.Row) (*labour.Entry, error) {
	var (
		e      labour.Entry
		source string
	)
	if err := row.Scan(
		&e.ID, &e.TenantID, &e.JobID, &e.AssignmentID, &e.EmployeeID,
		&e.Hours, &e.Rate, &e.Total, &source, &e.CreatedAt,
	); err != nil {
		return nil, err
	}
	e.Source = labour.Source(source)
	return &e, nil
}

func (r *LabourRepository) ListByJob(ctx context.Context, jobID int64) ([]*labour.Entry, error) {
	tx, err := useTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
		SELECT `+labourColumns+`
		FROM labour_entries l
		WHERE l.job_id = $1 AND `+tenancy.Visible("l")+`
		ORDER BY l.id`,
		jobID,
	)
	if err != nil {
		return nil, gerrors.Wrapf(err, "list labour of job %d", jobID)
	}
	defer rows.Close()

	var out []*labour.Entry
	for rows.Next() {
		e, err := scanLabour(rows)
		if err != nil {
			return nil, gerrors.Wrap(err, "scan labour entry")
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, gerrors.Wrap(err, "iterate labour entries")
	}
	return out, nil
}

func (r *LabourRepository) GetByID(ctx context.Context, id int64) (*labour.Entry, error) {
	tx, err := useTx(ctx)
	if err != nil {
		return nil, err
	}
	e, err := scanLabour(tx.QueryRow(ctx,
		`SELECT `+labourColumns+` FROM labour_entries l WHERE l.id = $1 AND `+tenancy.Visible("l"),
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, labour.ErrNotFound
		}
		return nil, gerrors.Wrapf(err, "get labour entry %d", id)
	}
	return e, nil
}

func (r *LabourRepository) Create(ctx context.Context, e *labour.Entry) error {
	tx, err := useTx(ctx)
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO labour_entries (tenant_id, job_id, assignment_id, employee_id, hours, rate, total, source)
		SELECT j.tenant_id, j.id, $2, em.id, $4, $5, $6, 'manual'
		FROM jobs j
		JOIN employees em ON em.id = $3 AND em.tenant_id = j.tenant_id AND `+tenancy.Visible("em")+`
		WHERE j.id = $1 AND `+tenancy.Visible("j")+`
		RETURNING id, tenant_id, created_at`,
		e.JobID, e.AssignmentID, e.EmployeeID, e.Hours, e.Rate, e.Total,
	).Scan(&e.ID, &e.TenantID, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return job.ErrNotFound
		}
		return gerrors.Wrap(err, "create labour entry")
	}
	e.Source = labour.SourceManual
	return nil
}

func (r *LabourRepository) ExistsForAssignment(ctx context.Context, assignmentID int64) (bool, error) {
	tx, err := useTx(ctx)
	if err != nil {
		return false, err
	}
	var exists bool
	if err := tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM labour_entries l
			WHERE l.assignment_id = $1 AND `+tenancy.Visible("l")+`
		)`,
		assignmentID,
	).Scan(&exists); err != nil {
		return false, gerrors.Wrapf(err, "check labour for assignment %d", assignmentID)
	}
	return exists, nil
}

func (r *LabourRepository) LoadShift(ctx context.Context, assignmentID int64) (*labour.Shift, error) {
	tx, err := useTx(ctx)
	if err != nil {
		return nil, err
	}
	var (
		s    labour.Shift
		rate decimal.NullDecimal
	)
	err = tx.QueryRow(ctx, `
		SELECT a.id, a.job_id, a.employee_id, a.start_time, a.end_time, e.hourly_rate
		FROM assignments a
		JOIN employees e ON e.id = a.employee_id AND `+tenancy.Visible("e")+`
		WHERE a.id = $1 AND `+tenancy.Visible("a"),
		assignmentID,
	).Scan(&s.AssignmentID, &s.JobID, &s.EmployeeID, &s.StartTime, &s.EndTime, &rate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, assignment.ErrNotFound
		}
		return nil, gerrors.Wrapf(err, "load shift %d", assignmentID)
	}
	if rate.Valid {
		s.Rate = &rate.Decimal
	}
	return &s, nil
}

// InsertAuto writes the generated entry under the job's tenant. The partial unique index
// on (assignment_id) WHERE source = 'auto' makes a concurrent duplicate a no-op.
func (r *LabourRepository) InsertAuto(ctx context.Context, e *labour.Entry) (bool, error) {
	tx, err := useTx(ctx)
	if err != nil {
		return false, err
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO labour_entries (tenant_id, job_id, assignment_id, employee_id, hours, rate, total, source)
		SELECT j.tenant_id, j.id, $2, $3, $4, $5, $6, 'auto'
		FROM jobs j
		WHERE j.id = $1 AND `+tenancy.Visible("j")+`
		ON CONFLICT (assignment_id) WHERE source = 'auto' DO NOTHING
		RETURNING id, tenant_id, created_at`,
		e.JobID, e.AssignmentID, e.EmployeeID, e.Hours, e.Rate, e.Total,
	).Scan(&e.ID, &e.TenantID, &e.CreatedAt)
	switch {
	case err == nil:
		e.Source = labour.SourceAuto
		return true, nil
	case errors.Is(err, pgx.ErrNoRows):
		return false, nil
	}
	return false, gerrors.Wrap(err, "insert generated labour entry")
}

func (r *LabourRepository) DeleteAutoForAssignments(ctx context.Context, assignmentIDs []int64) (int64, error) {
	if len(assignmentIDs) == 0 {
		return 0, nil
	}
	tx, err := useTx(ctx)
	if err != nil {
		return 0, err
	}
	tag, err := tx.Exec(ctx, `
		DELETE FROM labour_entries l
		WHERE l.assignment_id = ANY($1) AND l.source = 'auto' AND `+tenancy.Visible("l"),
		assignmentIDs,
	)
	if err != nil {
		return 0, gerrors.Wrap(err, "delete generated labour")
	}
	return tag.RowsAffected(), nil
}

func (r *LabourRepository) DetachAssignment(ctx context.Context, assignmentID int64) (int64, error) {
	tx, err := useTx(ctx)
	if err != nil {
		return 0, err
	}
	tag, err := tx.Exec(ctx, `
		UPDATE labour_entries l SET assignment_id = NULL
		WHERE l.assignment_id = $1 AND `+tenancy.Visible("l"),
		assignmentID,
	)
	if err != nil {
		return 0, gerrors.Wrapf(err, "detach labour from assignment %d", assignmentID)
	}
	return tag.RowsAffected(), nil
}

func (r *LabourRepository) Delete(ctx context.Context, id int64) error {
	tx, err := useTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM labour_entries l WHERE l.id = $1 AND `+tenancy.Visible("l"), id)
	if err != nil {
		return gerrors.Wrapf(err, "delete labour entry %d", id)
	}
	if tag.RowsAffected() == 0 {
		return labour.ErrNotFound
	}
	return nil
}

func (r *LabourRepository) DeleteByJob(ctx context.Context, jobID int64) (int64, error) {
	tx, err := useTx(ctx)
	if err != nil {
		return 0, err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM labour_entries l WHERE l.job_id = $1 AND `+tenancy.Visible("l"), jobID)
	if err != nil {
		return 0, gerrors.Wrapf(err, "delete labour of job %d", jobID)
	}
	return tag.RowsAffected(), nil
}
