package job

import "github.com/google/uuid"

type CreatedEvent struct {
	TenantID uuid.UUID
	Job      Job
}

type DeletedEvent struct {
	TenantID uuid.UUID
	JobID    int64
}

// StatusChangedEvent is published after the transaction that recomputed the status commits.
type StatusChangedEvent struct {
	TenantID uuid.UUID
	JobID    int64
	From     Status
	To       Status
}
