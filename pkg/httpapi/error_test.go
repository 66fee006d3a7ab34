package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteError(rec, http.StatusNotFound, "JOB_NOT_FOUND", "job not found", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, "JOB_NOT_FOUND", env.Code)
	require.Nil(t, env.Meta)
}

func TestWriteInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteInternal(rec, "req-1", "/api/v1/jobs"))

	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, CodeInternal, env.Code)
	require.Equal(t, "req-1", env.Meta["request_id"])
	require.Equal(t, "/api/v1/jobs", env.Meta["path"])
}

func TestWriteJSON_NilPayload(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteJSON(rec, http.StatusNoContent, nil))
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Empty(t, rec.Body.String())
}
