package controllers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/iota-uz/fieldops/modules/jobs/presentation/controllers/dtos"
	"github.com/iota-uz/fieldops/modules/jobs/presentation/mappers"
	"github.com/iota-uz/fieldops/modules/jobs/services"
	"github.com/iota-uz/fieldops/pkg/application"
	"github.com/iota-uz/fieldops/pkg/authz"
	"github.com/iota-uz/fieldops/pkg/httpapi"
)

type AssignmentController struct {
	app               application.Application
	guard             *Guard
	assignmentService *services.AssignmentService
	basePath          string
}

func NewAssignmentController(app application.Application, guard *Guard) application.Controller {
	return &AssignmentController{
		app:               app,
		guard:             guard,
		assignmentService: app.Service(services.AssignmentService{}).(*services.AssignmentService),
		basePath:          apiPrefix + "/assignments",
	}
}

func (c *AssignmentController) Key() string {
	return c.basePath
}

func (c *AssignmentController) Register(r *mux.Router) {
	item := c.basePath + "/{id:[0-9]+}"

	r.Handle(apiPrefix+"/jobs/{id:[0-9]+}/assignments",
		c.guard.Handle(authz.ObjectAssignments, authz.ActionRead, c.ListByJob)).Methods(http.MethodGet)
	r.Handle(c.basePath, c.guard.Handle(authz.ObjectAssignments, authz.ActionWrite, c.Create)).Methods(http.MethodPost)
	r.Handle(c.basePath+"/bulk-complete",
		c.guard.Handle(authz.ObjectAssignments, authz.ActionWrite, c.BulkComplete)).Methods(http.MethodPost)
	r.Handle(c.basePath+"/bulk-reopen",
		c.guard.Handle(authz.ObjectAssignments, authz.ActionWrite, c.BulkReopen)).Methods(http.MethodPost)
	r.Handle(item, c.guard.Handle(authz.ObjectAssignments, authz.ActionRead, c.Get)).Methods(http.MethodGet)
	r.Handle(item, c.guard.Handle(authz.ObjectAssignments, authz.ActionWrite, c.Update)).Methods(http.MethodPatch)
	r.Handle(item, c.guard.Handle(authz.ObjectAssignments, authz.ActionDelete, c.Delete)).Methods(http.MethodDelete)
}

func (c *AssignmentController) ListByJob(w http.ResponseWriter, r *http.Request) {
	jobID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	items, err := c.assignmentService.ListByJob(r.Context(), jobID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.MapViewModels(items, mappers.AssignmentToViewModel))
}

func (c *AssignmentController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	entity, err := c.assignmentService.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.AssignmentToViewModel(entity))
}

func (c *AssignmentController) Create(w http.ResponseWriter, r *http.Request) {
	dto := &dtos.CreateAssignmentDTO{}
	if !decodeBody(w, r, dto) {
		return
	}
	entity := dto.ToEntity()
	if err := c.assignmentService.Create(r.Context(), entity); err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, mappers.AssignmentToViewModel(entity))
}

func (c *AssignmentController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	dto := &dtos.UpdateAssignmentDTO{}
	if !decodeBody(w, r, dto) {
		return
	}
	entity, err := c.assignmentService.Update(r.Context(), id, dto.ToPatch())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.AssignmentToViewModel(entity))
}

func (c *AssignmentController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := c.assignmentService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (c *AssignmentController) BulkComplete(w http.ResponseWriter, r *http.Request) {
	dto := &dtos.BulkAssignmentsDTO{}
	if !decodeBody(w, r, dto) {
		return
	}
	res, err := c.assignmentService.BulkComplete(r.Context(), dto.IDs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.BulkResultToViewModel(res))
}

func (c *AssignmentController) BulkReopen(w http.ResponseWriter, r *http.Request) {
	dto := &dtos.BulkAssignmentsDTO{}
	if !decodeBody(w, r, dto) {
		return
	}
	res, err := c.assignmentService.BulkReopen(r.Context(), dto.IDs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.BulkResultToViewModel(res))
}
