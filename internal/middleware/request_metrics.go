package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tarofit/fitcoach/internal/telemetry/metrics"
)

func RequestMetrics(metricsManager *metrics.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(respWriter http.ResponseWriter, req *http.Request) {
			begin := time.Now()
			resp := &responseWriter{respWriter, http.StatusOK}

			// handler call
			next.ServeHTTP(resp, req)

			route := "unknown"
			if muxRoute := mux.CurrentRoute(req); muxRoute != nil {
				if name := muxRoute.GetName(); name != "" {
					route = name
				}
			}

			statusCode := strconv.Itoa(resp.statusCode)
			metricsManager.HistogramRequestDuration.With(prometheus.Labels{
				"route":       route,
				"method":      req.Method,
				"status_code": statusCode,
			}).Observe(time.Since(begin).Seconds())

			metricsManager.CounterRequests.With(prometheus.Labels{
				"method": req.Method,
				"status": statusCode,
			}).Inc()
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (r *responseWriter) WriteHeader(statusCode int) {
	r.ResponseWriter.WriteHeader(statusCode)
	r.statusCode = statusCode
}
