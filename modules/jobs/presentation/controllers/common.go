package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/assignment"
	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/employee"
	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/job"
	"github.com/iota-uz/fieldops/modules/jobs/domain/entities/labour"
	"github.com/iota-uz/fieldops/modules/jobs/infrastructure/persistence"
	"github.com/iota-uz/fieldops/modules/jobs/services"
	"github.com/iota-uz/fieldops/pkg/composables"
	"github.com/iota-uz/fieldops/pkg/configuration"
	"github.com/iota-uz/fieldops/pkg/httpapi"
	"github.com/iota-uz/fieldops/pkg/middleware"
	"github.com/iota-uz/fieldops/pkg/tenanttx"
)

const (
	apiPrefix    = "/api/v1"
	maxBodyBytes = 1 << 20
	pgForeignKey = "23503"
)

// Guard wraps a handler with the permission check and the tenant transaction, in that
// order, so denied requests never take a connection.
type Guard struct {
	authorizer middleware.Authorizer
	tx         mux.MiddlewareFunc
}

func NewGuard(authorizer middleware.Authorizer, runner tenanttx.Runner, impersonateHeader string) *Guard {
	return &Guard{
		authorizer: authorizer,
		tx:         middleware.WithTenantTransaction(runner, impersonateHeader),
	}
}

func (g *Guard) Handle(object, action string, h http.HandlerFunc) http.Handler {
	return middleware.RequirePermission(g.authorizer, object, action)(g.tx(h))
}

type okValidator interface {
	Ok() (map[string]string, bool)
}

// decodeBody reads a JSON body into dto and validates it. It writes the 400 response
// itself and reports false when the request cannot proceed.
func decodeBody(w http.ResponseWriter, r *http.Request, dto okValidator) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dto); err != nil {
		msg := "request body must be a JSON object"
		if !errors.Is(err, io.EOF) {
			msg = err.Error()
		}
		_ = httpapi.WriteError(w, http.StatusBadRequest, httpapi.CodeInvalidRequest, msg, nil)
		return false
	}
	if errs, ok := dto.Ok(); !ok {
		_ = httpapi.WriteError(w, http.StatusBadRequest, httpapi.CodeInvalidRequest, "validation failed", errs)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		_ = httpapi.WriteError(w, http.StatusBadRequest, httpapi.CodeInvalidRequest, fmt.Sprintf("invalid %s", name), nil)
		return 0, false
	}
	return id, true
}

// pagination reads limit/offset, clamping limit to the configured maximum.
func pagination(r *http.Request) (limit, offset int) {
	conf := configuration.Use()
	limit = conf.PageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if conf.MaxPageSize > 0 && limit > conf.MaxPageSize {
		limit = conf.MaxPageSize
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

type errorMapping struct {
	status int
	code   string
}

var domainErrors = []struct {
	err error
	errorMapping
}{
	{job.ErrNotFound, errorMapping{http.StatusNotFound, "JOB_NOT_FOUND"}},
	{assignment.ErrNotFound, errorMapping{http.StatusNotFound, "ASSIGNMENT_NOT_FOUND"}},
	{labour.ErrNotFound, errorMapping{http.StatusNotFound, "LABOUR_NOT_FOUND"}},
	{employee.ErrNotFound, errorMapping{http.StatusNotFound, "EMPLOYEE_NOT_FOUND"}},
	{persistence.ErrInsertNotVisible, errorMapping{http.StatusNotFound, "TENANT_NOT_FOUND"}},
	{job.ErrTenantRequired, errorMapping{http.StatusBadRequest, "TENANT_REQUIRED"}},
	{employee.ErrTenantRequired, errorMapping{http.StatusBadRequest, "TENANT_REQUIRED"}},
	{job.ErrTitleRequired, errorMapping{http.StatusBadRequest, httpapi.CodeInvalidRequest}},
	{assignment.ErrInvalidWindow, errorMapping{http.StatusBadRequest, httpapi.CodeInvalidRequest}},
	{labour.ErrInvalidHours, errorMapping{http.StatusBadRequest, httpapi.CodeInvalidRequest}},
	{labour.ErrNegativeRate, errorMapping{http.StatusBadRequest, httpapi.CodeInvalidRequest}},
	{employee.ErrNameRequired, errorMapping{http.StatusBadRequest, httpapi.CodeInvalidRequest}},
	{employee.ErrNegativeRate, errorMapping{http.StatusBadRequest, httpapi.CodeInvalidRequest}},
	{services.ErrAssignmentJobMismatch, errorMapping{http.StatusBadRequest, "ASSIGNMENT_JOB_MISMATCH"}},
	{labour.ErrAutoImmutable, errorMapping{http.StatusConflict, "LABOUR_AUTO_MANAGED"}},
}

// writeServiceError translates domain errors into the JSON envelope. Anything unknown is
// logged and answered with the generic 500 so internals never leak.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range domainErrors {
		if errors.Is(err, m.err) {
			_ = httpapi.WriteError(w, m.status, m.code, m.err.Error(), nil)
			return
		}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgForeignKey {
		_ = httpapi.WriteError(w, http.StatusBadRequest, "INVALID_REFERENCE", "referenced record does not exist", nil)
		return
	}
	composables.UseLogger(r.Context()).WithError(err).Error("request failed")
	_ = httpapi.WriteInternal(w, composables.UseRequestID(r.Context()), r.URL.Path)
}
