package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.Register(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestLiveness(t *testing.T) {
	rec := serve(New("test"), "/health/live")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadiness(t *testing.T) {
	t.Run("ready when all checks pass", func(t *testing.T) {
		h := New("test")
		h.RegisterCheck("redis", func(context.Context) error { return nil })

		rec := serve(h, "/health/ready")

		assert.Equal(t, http.StatusOK, rec.Code)
		var body ReadinessResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "up", body.Checks["redis"])
	})

	t.Run("not ready when a check fails", func(t *testing.T) {
		h := New("test")
		h.RegisterCheck("redis", func(context.Context) error { return nil })
		h.RegisterCheck("kafka", func(context.Context) error { return errors.New("no brokers") })

		rec := serve(h, "/health/ready")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var body ReadinessResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "not_ready", body.Status)
		assert.Equal(t, "down: no brokers", body.Checks["kafka"])
	})
}

func TestStatus(t *testing.T) {
	rec := serve(New("staging"), "/health")
	var body StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "staging", body.Environment)
	assert.Equal(t, Version, body.Version)
}
