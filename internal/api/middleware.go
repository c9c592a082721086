package api

import (
	"log"
	"net/http"
	"parcel-dispatch-service/internal/platform/metrics"
	"parcel-dispatch-service/internal/platform/obs"
	"time"
)

// RequestIDHeader carries the correlation id in both directions.
const RequestIDHeader = "X-Request-ID"

// statusWriter captures the final HTTP status code and number of bytes written.
// This helps distinguish "handler returned 200" from "client received a response".
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Record implicit 200 responses when handlers write without calling WriteHeader.
func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// loggingMiddleware tags each request with a correlation id, then logs and
// records its duration and response size.
func loggingMiddleware(next http.Handler, collector *metrics.Collector) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ctx := obs.WithRequestID(r.Context(), r.Header.Get(RequestIDHeader))
		reqID := obs.RequestID(ctx)
		w.Header().Set(RequestIDHeader, reqID)
		r = r.WithContext(ctx)

		sw := &statusWriter{
			ResponseWriter: w,
			status:         0,
		}

		next.ServeHTTP(sw, r)

		elapsed := time.Since(start)
		if sw.status == 0 {
			sw.status = http.StatusOK
		}

		// The mux records the matched pattern on the request; unmatched paths
		// share one label.
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		collector.ObserveRequest(r.Method, route, sw.status, elapsed.Seconds())

		log.Printf(
			"req_id=%s method=%s path=%s status=%d bytes=%d dur=%dms",
			reqID, r.Method, r.URL.RequestURI(), sw.status, sw.bytes, elapsed.Milliseconds(),
		)
	})
}
