package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/iota-uz/fieldops/pkg/application"
	"github.com/iota-uz/fieldops/pkg/composables"
	"github.com/iota-uz/fieldops/pkg/httpapi"
)

const healthTimeout = 2 * time.Second

type HealthController struct {
	app application.Application
}

func NewHealthController(app application.Application) application.Controller {
	return &HealthController{app: app}
}

func (c *HealthController) Key() string {
	return "/health"
}

func (c *HealthController) Register(r *mux.Router) {
	r.HandleFunc("/health", c.Get).Methods(http.MethodGet)
}

func (c *HealthController) Get(w http.ResponseWriter, r *http.Request) {
	db := c.app.DB()
	if db == nil {
		_ = httpapi.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": "not configured"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()
	if err := db.Ping(ctx); err != nil {
		composables.UseLogger(r.Context()).WithError(err).Warn("health check failed")
		_ = httpapi.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": "down"})
		return
	}
	_ = httpapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "up"})
}
