package api

import (
	"log"
	"net/http"
	"parcel-dispatch-service/internal/platform/obs"
	"time"
)

// statusWriter remembers the status code and body size sent to the client.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

func level(status int) string {
	switch {
	case status >= 500:
		return "ERROR"
	case status >= 400:
		return "WARN"
	default:
		return "INFO"
	}
}

// loggingMiddleware gives every request an id (echoed as X-Request-ID), turns
// handler panics into 500s and logs one line per request.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ctx, reqID := obs.WithRequestID(r.Context())
		r = r.WithContext(ctx)
		w.Header().Set("X-Request-ID", reqID)

		sw := &statusWriter{ResponseWriter: w}
		defer func() {
			if p := recover(); p != nil {
				log.Printf("req_id=%s level=ERROR panic=%v", reqID, p)
				if sw.status == 0 {
					http.Error(sw, `{"error":"internal server error"}`, http.StatusInternalServerError)
				}
			}

			log.Printf(
				"req_id=%s level=%s method=%s path=%s status=%d bytes=%d dur=%dms",
				reqID, level(sw.status), r.Method, r.URL.RequestURI(), sw.status, sw.bytes,
				time.Since(start).Milliseconds(),
			)
		}()

		next.ServeHTTP(sw, r)
	})
}
