package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(ctx context.Context) error {
	return s.err
}

func TestLivenessAlwaysHealthy(t *testing.T) {
	h := NewHealthChecker(stubPinger{err: errors.New("down")})

	rec := httptest.NewRecorder()
	h.Liveness(rec, httptest.NewRequest("GET", "/healthz", nil))

	assert.Equal(t, 200, rec.Code)
}

func TestReadinessHealthy(t *testing.T) {
	h := NewHealthChecker(stubPinger{})

	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest("GET", "/readyz", nil))

	require.Equal(t, 200, rec.Code)

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, StatusHealthy, status.Status)
	assert.Equal(t, StatusHealthy, status.Dependencies["gitlab"].Status)
}

func TestReadinessUnhealthyUpstream(t *testing.T) {
	h := NewHealthChecker(stubPinger{err: errors.New("connection refused")})

	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest("GET", "/readyz", nil))

	require.Equal(t, 503, rec.Code)

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, StatusUnhealthy, status.Status)
	assert.Contains(t, status.Dependencies["gitlab"].Message, "connection refused")
}
