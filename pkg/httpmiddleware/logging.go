package httpmiddleware

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// RequestCounter counts requests served by the process. The count starts at
// zero and is never persisted.
type RequestCounter struct {
	total   atomic.Int64
	counter metric.Int64Counter
}

// NewRequestCounter creates a RequestCounter that also reports to the
// http.server.requests counter of meter. A nil meter disables the metric.
func NewRequestCounter(meter metric.Meter) (*RequestCounter, error) {
	c := &RequestCounter{}
	if meter == nil {
		return c, nil
	}
	counter, err := meter.Int64Counter("http.server.requests",
		metric.WithDescription("Total number of HTTP requests received"),
	)
	if err != nil {
		return nil, err
	}
	c.counter = counter
	return c, nil
}

// Total returns the number of requests counted so far.
func (c *RequestCounter) Total() int64 {
	return c.total.Load()
}

func (c *RequestCounter) inc(r *http.Request) int64 {
	n := c.total.Add(1)
	if c.counter != nil {
		c.counter.Add(r.Context(), 1, metric.WithAttributes(
			attribute.String("http.method", r.Method),
		))
	}
	return n
}

// statusRecorder captures the status code written by the next handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// LogRequests counts every request with c and logs it with the running total.
func LogRequests(c *RequestCounter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			total := c.inc(r)
			lg := zctx.From(r.Context())
			lg.Info("Incoming request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
				zap.Int64("total_requests", total),
			)

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			lg.Debug("Request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
