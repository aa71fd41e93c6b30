package common

import (
	"net/http"
	"time"
)

type loggingResponseWriter struct {
	http.ResponseWriter
	status int
}

func (w *loggingResponseWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// LoggingHTTPHandler logs each request at debug level once it has
// been served.
func LoggingHTTPHandler(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		begin := time.Now()
		lw := &loggingResponseWriter{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(lw, r)
		Log.Debugf("%s %s (%d) %s", r.Method, r.URL, lw.status, time.Since(begin))
	})
}
