package application

import (
	"context"
	"fmt"
	"reflect"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/fieldops/pkg/eventbus"
	"github.com/iota-uz/fieldops/pkg/tenanttx"
)

type Controller interface {
	Register(r *mux.Router)
	Key() string
}

type Module interface {
	Register(app Application) error
	Name() string
}

// Pinger reports database reachability for health checks. *dbpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Application interface {
	DB() Pinger
	Transactions() tenanttx.Runner
	EventPublisher() eventbus.EventBus
	Logger() *logrus.Logger
	Controllers() []Controller
	Middleware() []mux.MiddlewareFunc
	RegisterControllers(controllers ...Controller)
	RegisterMiddleware(middleware ...mux.MiddlewareFunc)
	RegisterServices(services ...interface{})
	Service(service interface{}) interface{}
	Services() map[reflect.Type]interface{}
}

type ApplicationOptions struct {
	Pool         Pinger
	Transactions tenanttx.Runner
	EventBus     eventbus.EventBus
	Logger       *logrus.Logger
}

func New(opts *ApplicationOptions) Application {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	bus := opts.EventBus
	if bus == nil {
		bus = eventbus.NewEventPublisher(logger)
	}
	return &application{
		pool:           opts.Pool,
		transactions:   opts.Transactions,
		eventPublisher: bus,
		logger:         logger,
		controllers:    make(map[string]Controller),
		services:       make(map[reflect.Type]interface{}),
	}
}

// application with a dynamically extendable service registry
type application struct {
	pool           Pinger
	transactions   tenanttx.Runner
	eventPublisher eventbus.EventBus
	logger         *logrus.Logger
	services       map[reflect.Type]interface{}
	controllers    map[string]Controller
	controllerKeys []string
	middleware     []mux.MiddlewareFunc
}

func (app *application) DB() Pinger {
	return app.pool
}

func (app *application) Transactions() tenanttx.Runner {
	return app.transactions
}

func (app *application) EventPublisher() eventbus.EventBus {
	return app.eventPublisher
}

func (app *application) Logger() *logrus.Logger {
	return app.logger
}

func (app *application) Middleware() []mux.MiddlewareFunc {
	return app.middleware
}

// Controllers are returned in registration order so route precedence is stable.
func (app *application) Controllers() []Controller {
	controllers := make([]Controller, 0, len(app.controllerKeys))
	for _, key := range app.controllerKeys {
		controllers = append(controllers, app.controllers[key])
	}
	return controllers
}

func (app *application) RegisterControllers(controllers ...Controller) {
	for _, c := range controllers {
		if _, exists := app.controllers[c.Key()]; !exists {
			app.controllerKeys = append(app.controllerKeys, c.Key())
		}
		app.controllers[c.Key()] = c
	}
}

func (app *application) RegisterMiddleware(middleware ...mux.MiddlewareFunc) {
	app.middleware = append(app.middleware, middleware...)
}

// RegisterServices registers a new service in the application by its type
func (app *application) RegisterServices(services ...interface{}) {
	for _, service := range services {
		serviceType := reflect.TypeOf(service).Elem()
		app.services[serviceType] = service
	}
}

// Service retrieves a service by its type
func (app *application) Service(service interface{}) interface{} {
	serviceType := reflect.TypeOf(service)
	svc, exists := app.services[serviceType]
	if !exists {
		panic(fmt.Sprintf("service %s not found", serviceType.Name()))
	}
	return svc
}

func (app *application) Services() map[reflect.Type]interface{} {
	return app.services
}

// LoadModules registers each module in order and stops at the first failure.
func LoadModules(app Application, modules ...Module) error {
	for _, module := range modules {
		if err := module.Register(app); err != nil {
			return fmt.Errorf("register module %s: %w", module.Name(), err)
		}
	}
	return nil
}
