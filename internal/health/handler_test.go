// AngelaMos | 2026
// handler_test.go

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	err error
}

func (c *fakeChecker) Ping(_ context.Context) error {
	return c.err
}

func TestLiveness(t *testing.T) {
	t.Parallel()

	h := NewHandler(&fakeChecker{}, &fakeChecker{})

	rec := httptest.NewRecorder()
	h.Liveness(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLiveness_ShuttingDown(t *testing.T) {
	t.Parallel()

	h := NewHandler(&fakeChecker{}, &fakeChecker{})
	h.SetShutdown(true)

	rec := httptest.NewRecorder()
	h.Liveness(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestReadiness(t *testing.T) {
	t.Parallel()

	h := NewHandler(&fakeChecker{}, &fakeChecker{})

	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp ReadinessResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.Equal(t, "ok", resp.Status)
	require.Len(t, resp.Checks, 2)
	assert.Equal(t, "postgres", resp.Checks[0].Name)
	assert.Equal(t, "redis", resp.Checks[1].Name)
	assert.True(t, resp.Checks[0].Healthy)
	assert.True(t, resp.Checks[1].Healthy)
}

func TestReadiness_DependencyDown(t *testing.T) {
	t.Parallel()

	h := NewHandler(
		&fakeChecker{},
		&fakeChecker{err: errors.New("connection refused")},
	)

	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp ReadinessResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	assert.Equal(t, "degraded", resp.Status)
	require.Len(t, resp.Checks, 2)
	assert.True(t, resp.Checks[0].Healthy)
	assert.False(t, resp.Checks[1].Healthy)
}

func TestReadiness_NotReady(t *testing.T) {
	t.Parallel()

	h := NewHandler(&fakeChecker{}, &fakeChecker{})
	h.SetReady(false)

	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
