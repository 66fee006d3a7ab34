package persistence

import (
	"context"

	gerrors "github.com/go-faster/errors"

	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/activity"
	"github.com/iota-uz/fieldops/pkg/repo"
	"github.com/iota-uz/fieldops/pkg/tenancy"
)

type ActivityRepository struct{}

func NewActivityRepository() activity.Repository {
	return &ActivityRepository{}
}

// Insert copies the tenant from the job row, so nothing is written for a job the
// session cannot see.
func (r *ActivityRepository) Insert(ctx context.Context, jobID int64, typ activity.Type, title, actorName string) (int64, error) {
	tx, err := useTx(ctx)
	if err != nil {
		return 0, err
	}
	tag, err := tx.Exec(ctx, `
		INSERT INTO job_activities (tenant_id, job_id, type, title, actor_name)
		SELECT j.tenant_id, j.id, $2, $3, $4
		FROM jobs j
		WHERE j.id = $1 AND `+tenancy.Visible("j"),
		jobID, string(typ), title, actorName,
	)
	if err != nil {
		return 0, gerrors.Wrapf(err, "insert %s activity for job %d", typ, jobID)
	}
	return tag.RowsAffected(), nil
}

func (r *ActivityRepository) ListByJob(ctx context.Context, jobID int64, params *activity.FindParams) ([]*activity.Activity, error) {
	tx, err := useTx(ctx)
	if err != nil {
		return nil, err
	}
	limit, offset := 0, 0
	if params != nil {
		limit, offset = params.Limit, params.Offset
	}
	rows, err := tx.Query(ctx, `
		SELECT ja.id, ja.tenant_id, ja.job_id, ja.type, ja.title, ja.actor_name, ja.created_at
		FROM job_activities ja
		WHERE ja.job_id = $1 AND `+tenancy.Visible("ja")+`
		ORDER BY ja.created_at DESC, ja.id DESC `+repo.FormatLimitOffset(limit, offset),
		jobID,
	)
	if err != nil {
		return nil, gerrors.Wrapf(err, "list activities of job %d", jobID)
	}
	defer rows.Close()

	var out []*activity.Activity
	for rows.Next() {
		var (
			a   activity.Activity
			typ string
		)
		if err := rows.Scan(&a.ID, &a.TenantID, &a.JobID, &typ, &a.Title, &a.ActorName, &a.CreatedAt); err != nil {
			return nil, gerrors.Wrap(err, "scan activity")
		}
		a.Type = activity.Type(typ)
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, gerrors.Wrap(err, "iterate activities")
	}
	return out, nil
}
