package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/awantoch/visitorcount/constants"
	"github.com/awantoch/visitorcount/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	ServerlessHandler(rec, req)
	return rec
}

func TestServerlessHandler_SQLite(t *testing.T) {
	testutil.UseSQLite(t)
	ResetServerlessHandler()
	t.Cleanup(ResetServerlessHandler)

	for want := 1; want <= 3; want++ {
		rec := serve(http.MethodGet, constants.RouteAPIVisitorCount)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var body struct {
			Count int `json:"count"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, want, body.Count)
	}

	// a cold start against the same database continues the count
	ResetServerlessHandler()
	rec := serve(http.MethodPost, constants.RouteVisitorCount)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":4}`, rec.Body.String())
}

func TestServerlessHandler_DefaultsToMemory(t *testing.T) {
	testutil.ClearStorageEnv(t)
	ResetServerlessHandler()
	t.Cleanup(ResetServerlessHandler)

	rec := serve(http.MethodGet, constants.RouteVisitorCount)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":1}`, rec.Body.String())

	rec = serve(http.MethodGet, constants.RouteHealth)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = serve(http.MethodGet, constants.RouteMetrics)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServerlessHandler_UnusableConnectionString(t *testing.T) {
	t.Setenv(constants.EnvConnectionString, "")
	t.Setenv(constants.EnvLegacyConnectionString, "DefaultEndpointsProtocol=https;AccountName=x;AccountKey=y")
	ResetServerlessHandler()
	t.Cleanup(ResetServerlessHandler)

	rec := serve(http.MethodGet, constants.RouteVisitorCount)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Internal server error", body["error"])
	assert.NotEmpty(t, body["details"])

	// preflight still answers without storage
	rec = serve(http.MethodOptions, constants.RouteVisitorCount)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
	assertFullCORS(t, rec)
}

func TestServerlessHandler_RetriesAfterFailedStart(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "data")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0o644))
	t.Setenv(constants.EnvConnectionString, "sqlite://"+filepath.Join(blocker, "counter.db"))
	ResetServerlessHandler()
	t.Cleanup(ResetServerlessHandler)

	rec := serve(http.MethodGet, constants.RouteVisitorCount)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	require.NoError(t, os.Remove(blocker))
	for want := 1; want <= 2; want++ {
		rec = serve(http.MethodGet, constants.RouteVisitorCount)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var body struct {
			Count int `json:"count"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, want, body.Count)
	}
}

func TestServerlessHandler_PreflightOnlyOnCounterRoutes(t *testing.T) {
	testutil.ClearStorageEnv(t)
	ResetServerlessHandler()
	t.Cleanup(ResetServerlessHandler)

	rec := serve(http.MethodOptions, "/getvisitorcount/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assertFullCORS(t, rec)

	rec = serve(http.MethodOptions, "/unknown")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Methods"))
}
