package middleware

import (
	"net/http"
	"time"
)

// Logger is satisfied by *logger.Logger.
type Logger interface {
	Info(format string, args ...any)
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	bytes      int
}

// Logging writes one line per request: method, URI, status, body size and
// duration.
func Logging(log Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rr := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rr, r)

			log.Info("%s %s %d %dB %s", r.Method, r.RequestURI, rr.statusCode, rr.bytes, time.Since(start))
		})
	}
}

func (rr *responseRecorder) WriteHeader(code int) {
	rr.statusCode = code
	rr.ResponseWriter.WriteHeader(code)
}

func (rr *responseRecorder) Write(b []byte) (int, error) {
	n, err := rr.ResponseWriter.Write(b)
	rr.bytes += n
	return n, err
}
