package middleware

import "net/http"

// DefaultMaxBodySize caps request bodies at 1MB; no endpoint accepts
// payloads anywhere near that.
const DefaultMaxBodySize int64 = 1 << 20

// RequestSize wraps request bodies with http.MaxBytesReader. Reads past
// maxBytes fail, which json decoding surfaces as a 400.
func RequestSize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
