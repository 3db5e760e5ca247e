package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, status *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := io.ReadAll(r.Body)
		if err != nil {
			*status = http.StatusBadRequest
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		*status = http.StatusOK
		w.WriteHeader(http.StatusOK)
	})
}

func TestBodyLimit(t *testing.T) {
	t.Run("body at the limit passes", func(t *testing.T) {
		var seen int
		h := BodyLimit(100)(readAll(t, &seen))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(strings.Repeat("x", 100))))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, http.StatusOK, seen)
	})

	t.Run("declared oversize body is rejected before the handler", func(t *testing.T) {
		var seen int
		h := BodyLimit(100)(readAll(t, &seen))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(strings.Repeat("x", 101))))

		require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Contains(t, rec.Body.String(), "request_too_large")
		assert.Zero(t, seen)
	})

	t.Run("undeclared oversize body fails while reading", func(t *testing.T) {
		var seen int
		h := BodyLimit(100)(readAll(t, &seen))

		req := httptest.NewRequest(http.MethodPatch, "/", io.NopCloser(strings.NewReader(strings.Repeat("x", 500))))
		req.ContentLength = -1
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, seen)
	})

	t.Run("requests without a body pass", func(t *testing.T) {
		var seen int
		h := BodyLimit(100)(readAll(t, &seen))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
