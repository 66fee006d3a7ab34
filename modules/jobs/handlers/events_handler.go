package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/assignment"
	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/job"
	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/labour"
	"github.com/iota-uz/fieldops/pkg/application"
)

// JobEventsHandler writes committed domain events to the structured log. Handlers run
// after the owning transaction committed, so they never see rolled-back work.
type JobEventsHandler struct {
	logger *logrus.Entry
}

func NewJobEventsHandler(logger *logrus.Logger) *JobEventsHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &JobEventsHandler{logger: logger.WithField("component", "jobs.events")}
}

func RegisterJobEventHandlers(app application.Application) *JobEventsHandler {
	h := NewJobEventsHandler(app.Logger())
	bus := app.EventPublisher()
	bus.Subscribe(h.onJobCreated)
	bus.Subscribe(h.onJobDeleted)
	bus.Subscribe(h.onJobStatusChanged)
	bus.Subscribe(h.onAssignmentCompleted)
	bus.Subscribe(h.onAssignmentReopened)
	bus.Subscribe(h.onLabourGenerated)
	return h
}

func (h *JobEventsHandler) onJobCreated(e *job.CreatedEvent) {
	h.logger.WithFields(logrus.Fields{
		"tenant_id": e.TenantID,
		"job_id":    e.Job.ID,
	}).Info("job created")
}

func (h *JobEventsHandler) onJobDeleted(e *job.DeletedEvent) {
	h.logger.WithFields(logrus.Fields{
		"tenant_id": e.TenantID,
		"job_id":    e.JobID,
	}).Info("job deleted")
}

func (h *JobEventsHandler) onJobStatusChanged(e *job.StatusChangedEvent) {
	h.logger.WithFields(logrus.Fields{
		"tenant_id": e.TenantID,
		"job_id":    e.JobID,
		"from":      e.From,
		"to":        e.To,
	}).Info("job status changed")
}

func (h *JobEventsHandler) onAssignmentCompleted(e *assignment.CompletedEvent) {
	h.logger.WithFields(logrus.Fields{
		"tenant_id":     e.TenantID,
		"job_id":        e.JobID,
		"assignment_id": e.AssignmentID,
	}).Debug("assignment completed")
}

func (h *JobEventsHandler) onAssignmentReopened(e *assignment.ReopenedEvent) {
	h.logger.WithFields(logrus.Fields{
		"tenant_id":     e.TenantID,
		"job_id":        e.JobID,
		"assignment_id": e.AssignmentID,
	}).Debug("assignment reopened")
}

func (h *JobEventsHandler) onLabourGenerated(e *labour.GeneratedEvent) {
	h.logger.WithFields(logrus.Fields{
		"tenant_id":     e.TenantID,
		"job_id":        e.JobID,
		"assignment_id": e.AssignmentID,
		"hours":         e.Hours.String(),
		"total":         e.Total.StringFixed(2),
	}).Info("labour generated")
}
