package application

import (
	"errors"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

type keyedController struct{ key string }

func (c keyedController) Register(*mux.Router) {}
func (c keyedController) Key() string          { return c.key }

type sampleService struct{ name string }

type failingModule struct{}

func (failingModule) Register(Application) error { return errors.New("nope") }
func (failingModule) Name() string               { return "failing" }

func TestControllersKeepRegistrationOrder(t *testing.T) {
	app := New(&ApplicationOptions{})
	app.RegisterControllers(keyedController{"b"}, keyedController{"a"}, keyedController{"b"})

	keys := []string{}
	for _, c := range app.Controllers() {
		keys = append(keys, c.Key())
	}
	require.Equal(t, []string{"b", "a"}, keys)
}

func TestServiceRegistry(t *testing.T) {
	app := New(&ApplicationOptions{})
	svc := &sampleService{name: "jobs"}
	app.RegisterServices(svc)

	got := app.Service(sampleService{}).(*sampleService)
	require.Same(t, svc, got)
	require.Panics(t, func() { app.Service(keyedController{}) })
}

func TestLoadModules(t *testing.T) {
	err := LoadModules(New(&ApplicationOptions{}), failingModule{})
	require.ErrorContains(t, err, "register module failing")
}

func TestDefaults(t *testing.T) {
	app := New(&ApplicationOptions{})
	require.NotNil(t, app.Logger())
	require.NotNil(t, app.EventPublisher())
}
