package middleware

import (
	"net/http"

	"signup/pkg/platform/httputil"
)

// BodyLimit rejects bodies that declare more than maxBytes with a 413 and caps
// the rest with http.MaxBytesReader so undeclared overflows fail while decoding.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				httputil.WriteJSON(w, http.StatusRequestEntityTooLarge, httputil.ErrorResponse{
					Error:            "request_too_large",
					ErrorDescription: "request body exceeds the allowed size",
				})
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
