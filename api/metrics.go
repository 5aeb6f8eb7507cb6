/*
metrics.go - Prometheus instrumentation

PURPOSE:
  Counts the operations the shop cares about: price ledger writes,
  template applications, motor revision bumps, and HTTP traffic. A
  custom registry keeps the scrape output to our own series plus the
  standard Go runtime collectors.

SEE ALSO:
  - server.go: /metrics route and HTTP middleware wiring
*/
package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/voltworks/estimator/motor"
)

// Metrics holds the registry and the instrument set.
type Metrics struct {
	registry *prometheus.Registry

	priceUpdates   *prometheus.CounterVec
	templateApplies prometheus.Counter
	motorRevisions *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		priceUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "estimator_price_updates_total",
			Help: "Price update requests by outcome.",
		}, []string{"result"}),
		templateApplies: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "estimator_template_applies_total",
			Help: "Standard assemblies applied to estimates.",
		}),
		motorRevisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "estimator_motor_revisions_total",
			Help: "Motor revision bumps by class.",
		}, []string{"class"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "estimator_http_requests_total",
			Help: "HTTP requests by method and status.",
		}, []string{"method", "status"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.priceUpdates,
		m.templateApplies,
		m.motorRevisions,
		m.httpRequests,
	)
	return m
}

func (m *Metrics) PriceUpdate(changed bool) {
	result := "unchanged"
	if changed {
		result = "changed"
	}
	m.priceUpdates.WithLabelValues(result).Inc()
}

func (m *Metrics) TemplateApply() {
	m.templateApplies.Inc()
}

func (m *Metrics) MotorRevision(class motor.Class) {
	m.motorRevisions.WithLabelValues(string(class)).Inc()
}

// Middleware counts every request by method and response status.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		m.httpRequests.WithLabelValues(r.Method, strconv.Itoa(ww.Status())).Inc()
	})
}

// Handler serves the scrape endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
