package middleware

import (
	"net/http"
	"strings"
	"time"
)

// responseWriter captures the status code and body size for the access log
// and the request metrics.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	bytes      int64
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += int64(n)
	return n, err
}

// ClientIP resolves the originating client address. The service runs behind
// a reverse proxy, so X-Forwarded-For wins when present; only its first
// entry is the client, the rest are intermediate hops.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return fwd
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	return r.RemoteAddr
}

// Logger emits one access-log line per request, tagged with the request ID
// assigned upstream in the chain.
func (m *Middleware) Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := newResponseWriter(w)

		next.ServeHTTP(wrapped, r)

		log := m.log.WithRequestID(GetRequestID(r.Context()))
		log.HTTPRequest(r.Method, r.URL.Path, wrapped.statusCode, wrapped.bytes, time.Since(start), ClientIP(r))
	})
}
