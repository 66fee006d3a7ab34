package metrics

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iota-uz/fieldops/pkg/application"
)

const DefaultPath = "/debug/prometheus"

// PrometheusController exposes the reconciler, pool and tenant transaction collectors.
type PrometheusController struct {
	path     string
	gatherer prometheus.Gatherer
}

// NewPrometheusController serves gatherer at path. A nil gatherer means the default
// registry, where promauto collectors land.
func NewPrometheusController(path string, gatherer prometheus.Gatherer) application.Controller {
	if path == "" {
		path = DefaultPath
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &PrometheusController{path: path, gatherer: gatherer}
}

func (c *PrometheusController) Key() string {
	return c.path
}

func (c *PrometheusController) Register(r *mux.Router) {
	r.Handle(c.path, promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
}
