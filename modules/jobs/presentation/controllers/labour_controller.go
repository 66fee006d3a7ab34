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

type LabourController struct {
	app           application.Application
	guard         *Guard
	labourService *services.LabourService
	basePath      string
}

func NewLabourController(app application.Application, guard *Guard) application.Controller {
	return &LabourController{
		app:           app,
		guard:         guard,
		labourService: app.Service(services.LabourService{}).(*services.LabourService),
		basePath:      apiPrefix + "/labour",
	}
}

func (c *LabourController) Key() string {
	return c.basePath
}

func (c *LabourController) Register(r *mux.Router) {
	r.Handle(c.basePath, c.guard.Handle(authz.ObjectLabour, authz.ActionWrite, c.Create)).Methods(http.MethodPost)
	r.Handle(c.basePath+"/{id:[0-9]+}", c.guard.Handle(authz.ObjectLabour, authz.ActionDelete, c.Delete)).Methods(http.MethodDelete)
}

func (c *LabourController) Create(w http.ResponseWriter, r *http.Request) {
	dto := &dtos.CreateLabourDTO{}
	if !decodeBody(w, r, dto) {
		return
	}
	entity := dto.ToEntity()
	if err := c.labourService.Create(r.Context(), entity); err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, mappers.LabourToViewModel(entity))
}

func (c *LabourController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := c.labourService.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
