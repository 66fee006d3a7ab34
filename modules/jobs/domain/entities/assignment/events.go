package assignment

import "github.com/google/uuid"

type CompletedEvent struct {
	TenantID     uuid.UUID
	AssignmentID int64
	JobID        int64
}

type ReopenedEvent struct {
	TenantID     uuid.UUID
	AssignmentID int64
	JobID        int64
}
