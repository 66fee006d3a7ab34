package jobs

import (
	"github.com/iota-uz/fieldops/modules/jobs/handlers"
	"github.com/iota-uz/fieldops/modules/jobs/infrastructure/persistence"
	"github.com/iota-uz/fieldops/modules/jobs/presentation/controllers"
	"github.com/iota-uz/fieldops/modules/jobs/services"
	"github.com/iota-uz/fieldops/pkg/application"
	"github.com/iota-uz/fieldops/pkg/authz"
	"github.com/iota-uz/fieldops/pkg/configuration"
	"github.com/iota-uz/fieldops/pkg/middleware"
)

type ModuleOptions struct {
	// Authorizer defaults to the process-wide casbin service.
	Authorizer middleware.Authorizer
}

func NewModule(opts *ModuleOptions) application.Module {
	if opts == nil {
		opts = &ModuleOptions{}
	}
	return &Module{options: opts}
}

type Module struct {
	options *ModuleOptions
}

func (m *Module) Register(app application.Application) error {
	jobRepo := persistence.NewJobRepository()
	assignmentRepo := persistence.NewAssignmentRepository()
	labourRepo := persistence.NewLabourRepository()
	activityRepo := persistence.NewActivityRepository()
	employeeRepo := persistence.NewEmployeeRepository()

	activityService := services.NewActivityService(activityRepo, employeeRepo)
	reconciler := services.NewReconciler(jobRepo, assignmentRepo, labourRepo, activityService, app.EventPublisher())

	app.RegisterServices(
		activityService,
		reconciler,
		services.NewEmployeeService(employeeRepo),
		services.NewJobService(jobRepo, assignmentRepo, labourRepo, activityService, app.EventPublisher()),
		services.NewAssignmentService(
			assignmentRepo, jobRepo, employeeRepo, labourRepo, reconciler, activityService, app.EventPublisher(),
		),
		services.NewLabourService(labourRepo, jobRepo, assignmentRepo, employeeRepo, activityService),
	)

	authorizer := m.options.Authorizer
	if authorizer == nil {
		authorizer = authz.Use()
	}
	guard := controllers.NewGuard(authorizer, app.Transactions(), configuration.Use().Auth.ImpersonateHeader)

	app.RegisterControllers(
		controllers.NewHealthController(app),
		controllers.NewJobController(app, guard),
		controllers.NewAssignmentController(app, guard),
		controllers.NewLabourController(app, guard),
		controllers.NewEmployeeController(app, guard),
	)
	handlers.RegisterJobEventHandlers(app)
	return nil
}

func (m *Module) Name() string {
	return "jobs"
}
