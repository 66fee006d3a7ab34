package jobs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/fieldops/modules/jobs/services"
	"github.com/iota-uz/fieldops/pkg/application"
	"github.com/iota-uz/fieldops/pkg/authz"
)

type allowAll struct{}

func (allowAll) Authorize(ctx context.Context, req authz.Request) error { return nil }

func TestModuleRegister(t *testing.T) {
	app := application.New(&application.ApplicationOptions{})
	require.NoError(t, application.LoadModules(app, NewModule(&ModuleOptions{Authorizer: allowAll{}})))

	for _, svc := range []interface{}{
		services.ActivityService{},
		services.Reconciler{},
		services.EmployeeService{},
		services.JobService{},
		services.AssignmentService{},
		services.LabourService{},
	} {
		require.NotNil(t, app.Service(svc))
	}

	keys := make([]string, 0, len(app.Controllers()))
	for _, c := range app.Controllers() {
		keys = append(keys, c.Key())
	}
	require.Equal(t, []string{
		"/health",
		"/api/v1/jobs",
		"/api/v1/assignments",
		"/api/v1/labour",
		"/api/v1/employees",
	}, keys)
	require.Equal(t, 6, app.EventPublisher().SubscribersCount())
}
