package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/activity"
	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/job"
	"github.com/iota-uz/fieldops/modules/jobs/presentation/controllers/dtos"
	"github.com/iota-uz/fieldops/modules/jobs/presentation/mappers"
	"github.com/iota-uz/fieldops/modules/jobs/presentation/viewmodels"
	"github.com/iota-uz/fieldops/modules/jobs/services"
	"github.com/iota-uz/fieldops/pkg/application"
	"github.com/iota-uz/fieldops/pkg/authz"
	"github.com/iota-uz/fieldops/pkg/configuration"
	"github.com/iota-uz/fieldops/pkg/httpapi"
	"github.com/iota-uz/fieldops/pkg/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type JobController struct {
	app             application.Application
	guard           *Guard
	jobService      *services.JobService
	activityService *services.ActivityService
	labourService   *services.LabourService
	basePath        string
	exportLimit     mux.MiddlewareFunc
}

func NewJobController(app application.Application, guard *Guard) application.Controller {
	return &JobController{
		app:             app,
		guard:           guard,
		jobService:      app.Service(services.JobService{}).(*services.JobService),
		activityService: app.Service(services.ActivityService{}).(*services.ActivityService),
		labourService:   app.Service(services.LabourService{}).(*services.LabourService),
		basePath:        apiPrefix + "/jobs",
		exportLimit:     exportRateLimit(configuration.Use()),
	}
}

// exportRateLimit throttles the timesheet export per client; nil when disabled.
func exportRateLimit(conf *configuration.Configuration) mux.MiddlewareFunc {
	if !conf.RateLimit.Enabled || conf.RateLimit.ExportPerMinute <= 0 {
		return nil
	}
	return middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerPeriod: conf.RateLimit.ExportPerMinute,
		Period:            time.Minute,
		KeyFunc:           middleware.EndpointKeyFunc("jobs.labour_export"),
	})
}

func (c *JobController) Key() string {
	return c.basePath
}

func (c *JobController) Register(r *mux.Router) {
	item := c.basePath + "/{id:[0-9]+}"

	r.Handle(c.basePath, c.guard.Handle(authz.ObjectJobs, authz.ActionRead, c.List)).Methods(http.MethodGet)
	r.Handle(c.basePath, c.guard.Handle(authz.ObjectJobs, authz.ActionWrite, c.Create)).Methods(http.MethodPost)
	r.Handle(item, c.guard.Handle(authz.ObjectJobs, authz.ActionRead, c.Get)).Methods(http.MethodGet)
	r.Handle(item, c.guard.Handle(authz.ObjectJobs, authz.ActionWrite, c.Update)).Methods(http.MethodPatch)
	r.Handle(item, c.guard.Handle(authz.ObjectJobs, authz.ActionDelete, c.Delete)).Methods(http.MethodDelete)
	r.Handle(item+"/activities", c.guard.Handle(authz.ObjectActivities, authz.ActionRead, c.Activities)).Methods(http.MethodGet)
	r.Handle(item+"/labour", c.guard.Handle(authz.ObjectLabour, authz.ActionRead, c.Labour)).Methods(http.MethodGet)

	export := c.guard.Handle(authz.ObjectLabour, authz.ActionRead, c.ExportLabour)
	if c.exportLimit != nil {
		export = c.exportLimit(export)
	}
	r.Handle(item+"/labour.xlsx", export).Methods(http.MethodGet)
}

func (c *JobController) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	params := &job.FindParams{
		Status: job.Status(strings.TrimSpace(r.URL.Query().Get("status"))),
		Q:      r.URL.Query().Get("q"),
		Limit:  limit,
		Offset: offset,
	}
	jobs, total, err := c.jobService.List(r.Context(), params)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, viewmodels.Page[viewmodels.Job]{
		Items:  mappers.MapViewModels(jobs, mappers.JobToViewModel),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

func (c *JobController) Create(w http.ResponseWriter, r *http.Request) {
	dto := &dtos.CreateJobDTO{}
	if !decodeBody(w, r, dto) {
		return
	}
	entity := dto.ToEntity()
	if err := c.jobService.Create(r.Context(), entity); err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, mappers.JobToViewModel(entity))
}

func (c *JobController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	entity, err := c.jobService.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.JobToViewModel(entity))
}

func (c *JobController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	dto := &dtos.UpdateJobDTO{}
	if !decodeBody(w, r, dto) {
		return
	}
	entity, err := c.jobService.Update(r.Context(), id, dto.ToPatch())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.JobToViewModel(entity))
}

func (c *JobController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := c.jobService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *JobController) Activities(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	limit, offset := pagination(r)
	items, err := c.activityService.List(r.Context(), id, &activity.FindParams{Limit: limit, Offset: offset})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.MapViewModels(items, mappers.ActivityToViewModel))
}

func (c *JobController) Labour(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	entries, err := c.labourService.ListByJob(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.MapViewModels(entries, mappers.LabourToViewModel))
}

func (c *JobController) ExportLabour(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	data, err := c.labourService.ExportTimesheet(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="job-%d-labour.xlsx"`, id))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
