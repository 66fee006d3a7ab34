package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	JobCreated          Type = "job.created"
	JobUpdated          Type = "job.updated"
	JobStatusChanged    Type = "job.status_changed"
	JobDeleted          Type = "job.deleted"
	AssignmentCreated   Type = "assignment.created"
	AssignmentUpdated   Type = "assignment.updated"
	AssignmentCompleted Type = "assignment.completed"
	AssignmentReopened  Type = "assignment.reopened"
	AssignmentDeleted   Type = "assignment.deleted"
	LabourAdded         Type = "labour.added"
	LabourRemoved       Type = "labour.removed"
)

// Activity is an append-only audit record.
type Activity struct {
	ID        int64
	TenantID  uuid.UUID
	JobID     int64
	Type      Type
	Title     string
	ActorName string
	CreatedAt time.Time
}

type FindParams struct {
	Limit  int
	Offset int
}

// Repository has no update or delete on purpose: the trail is append-only.
type Repository interface {
	// Insert appends one row for jobID when the job is visible and returns the number
	// of rows written (0 or 1).
	Insert(ctx context.Context, jobID int64, typ Type, title, actorName string) (int64, error)
	ListByJob(ctx context.Context, jobID int64, params *FindParams) ([]*Activity, error)
}
