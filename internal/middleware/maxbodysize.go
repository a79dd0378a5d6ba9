package middleware

import "net/http"

// MaxBodySize limits incoming request bodies to limit bytes. Oversized
// bodies make the multipart/JSON readers in downstream handlers fail, which
// they report as a client error.
func MaxBodySize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
