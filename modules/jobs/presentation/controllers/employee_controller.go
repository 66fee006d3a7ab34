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

type EmployeeController struct {
	app             application.Application
	guard           *Guard
	employeeService *services.EmployeeService
	basePath        string
}

func NewEmployeeController(app application.Application, guard *Guard) application.Controller {
	return &EmployeeController{
		app:             app,
		guard:           guard,
		employeeService: app.Service(services.EmployeeService{}).(*services.EmployeeService),
		basePath:        apiPrefix + "/employees",
	}
}

func (c *EmployeeController) Key() string {
	return c.basePath
}

func (c *EmployeeController) Register(r *mux.Router) {
	r.Handle(c.basePath, c.guard.Handle(authz.ObjectEmployees, authz.ActionRead, c.List)).Methods(http.MethodGet)
	r.Handle(c.basePath, c.guard.Handle(authz.ObjectEmployees, authz.ActionWrite, c.Create)).Methods(http.MethodPost)
}

func (c *EmployeeController) List(w http.ResponseWriter, r *http.Request) {
	items, err := c.employeeService.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, mappers.MapViewModels(items, mappers.EmployeeToViewModel))
}

func (c *EmployeeController) Create(w http.ResponseWriter, r *http.Request) {
	dto := &dtos.CreateEmployeeDTO{}
	if !decodeBody(w, r, dto) {
		return
	}
	entity := dto.ToEntity()
	if err := c.employeeService.Create(r.Context(), entity); err != nil {
		writeServiceError(w, r, err)
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusCreated, mappers.EmployeeToViewModel(entity))
}
