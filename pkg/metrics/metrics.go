package metrics

import "github.com/prometheus/client_golang/prometheus"

// HTTPMetrics instrumentos Prometheus del servidor HTTP.
type HTTPMetrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewHTTPMetrics crea y registra los instrumentos en el registry por defecto.
func NewHTTPMetrics(namespace string) *HTTPMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total de peticiones HTTP por método, ruta y código de estado.",
	}, []string{"method", "route", "status"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duración de las peticiones HTTP por método y ruta.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	prometheus.MustRegister(requests, duration)
	return &HTTPMetrics{Requests: requests, Duration: duration}
}
