package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/job"
	"github.com/iota-uz/fieldops/pkg/repo"
	"github.com/iota-uz/fieldops/pkg/tenancy"
)

var ErrInsertNotVisible = errors.New("insert rejected: owner tenant is not visible to the session")

const jobColumns = `j.id, j.tenant_id, j.title, j.description, j.status, j.created_at, j.updated_at`

type JobRepository struct{}

func NewJobRepository() job.Repository {
	return &JobRepository{}
}

func scanJob(row pgx.Row) (*job.Job, error) {
	var j job.Job
	var status string
	if err := row.Scan(&j.ID, &j.TenantID, &j.Title, &j.Description, &status, &j.CreatedAt, &j.UpdatedAt); err != nil {
		return nil, err
	}
	j.Status = job.Status(status)
	return &j, nil
}

func buildJobFilters(params *job.FindParams) ([]string, []any) {
	where := []string{tenancy.Visible("j")}
	var args []any
	if params == nil {
		return where, args
	}
	if params.Status != "" {
		args = append(args, string(params.Status))
		where = append(where, fmt.Sprintf("j.status = $%d", len(args)))
	}
	if q := strings.TrimSpace(params.Q); q != "" {
		args = append(args, "%"+q+"%")
		where = append(where, fmt.Sprintf("j.title ILIKE $%d", len(args)))
	}
	return where, args
}

func (r *JobRepository) List(ctx context.Context, params *job.FindParams) ([]*job.Job, error) {
	tx, err := useTx(ctx)
	if err != nil {
		return nil, err
	}
	where, args := buildJobFilters(params)
	query := `SELECT ` + jobColumns + ` FROM jobs j WHERE ` + strings.Join(where, " AND ") + ` ORDER BY j.id DESC`
	if params != nil {
		query += " " + repo.FormatLimitOffset(params.Limit, params.Offset)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, gerrors.Wrap(err, "list jobs")
	}
	defer rows.Close()

	var out []*job.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, gerrors.Wrap(err, "scan job")
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, gerrors.Wrap(err, "iterate jobs")
	}
	return out, nil
}

func (r *JobRepository) Count(ctx context.Context, params *job.FindParams) (int64, error) {
	tx, err := useTx(ctx)
	if err != nil {
		return 0, err
	}
	where, args := buildJobFilters(params)
	var count int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM jobs j WHERE `+strings.Join(where, " AND "), args...).Scan(&count); err != nil {
		return 0, gerrors.Wrap(err, "count jobs")
	}
	return count, nil
}

func (r *JobRepository) GetByID(ctx context.Context, id int64) (*job.Job, error) {
	tx, err := useTx(ctx)
	if err != nil {
		return nil, err
	}
	j, err := scanJob(tx.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs j WHERE j.id = $1 AND `+tenancy.Visible("j"),
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, job.ErrNotFound
		}
		return nil, gerrors.Wrapf(err, "get job %d", id)
	}
	return j, nil
}

func (r *JobRepository) Create(ctx context.Context, j *job.Job) error {
	tx, err := useTx(ctx)
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO jobs (tenant_id, title, description, status)
		SELECT $1::uuid, $2, $3, $4
		WHERE `+tenancy.VisibleOwner("$1::uuid")+`
		RETURNING id, created_at, updated_at`,
		j.TenantID, j.Title, j.Description, string(j.Status),
	).Scan(&j.ID, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInsertNotVisible
		}
		return gerrors.Wrap(err, "create job")
	}
	return nil
}

func (r *JobRepository) Update(ctx context.Context, j *job.Job) error {
	tx, err := useTx(ctx)
	if err != nil {
		return err
	}
	err = tx.QueryRow(ctx, `
		UPDATE jobs j SET title = $2, description = $3, status = $4, updated_at = now()
		WHERE j.id = $1 AND `+tenancy.Visible("j")+`
		RETURNING j.updated_at`,
		j.ID, j.Title, j.Description, string(j.Status),
	).Scan(&j.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return job.ErrNotFound
		}
		return gerrors.Wrapf(err, "update job %d", j.ID)
	}
	return nil
}

func (r *JobRepository) UpdateStatus(ctx context.Context, id int64, status job.Status) (bool, error) {
	tx, err := useTx(ctx)
	if err != nil {
		return false, err
	}
	tag, err := tx.Exec(ctx, `
		UPDATE jobs j SET status = $2, updated_at = now()
		WHERE j.id = $1 AND j.status <> $2 AND `+tenancy.Visible("j"),
		id, string(status),
	)
	if err != nil {
		return false, gerrors.Wrapf(err, "update job %d status", id)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *JobRepository) Delete(ctx context.Context, id int64) error {
	tx, err := useTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM jobs j WHERE j.id = $1 AND `+tenancy.Visible("j"), id)
	if err != nil {
		return gerrors.Wrapf(err, "delete job %d", id)
	}
	if tag.RowsAffected() == 0 {
		return job.ErrNotFound
	}
	return nil
}
