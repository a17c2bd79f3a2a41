package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

type Prom struct {
	registry *prometheus.Registry

	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	InFlight         *prometheus.GaugeVec
	// DB
	DbQueryDuration *prometheus.HistogramVec
	DbErrorsTotal   *prometheus.CounterVec

	// Model extraction calls

	ExtractionDuration *prometheus.HistogramVec
	ExtractionResults  *prometheus.CounterVec
}

func NewProm(reg *prometheus.Registry) *Prom {
	p := &Prom{
		registry: reg,
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cardreader",
				Name:      "http_requests_total",
				Help:      "Requests served, by method, route template and status.",
			},
			[]string{"method", "route", "status"},
		),
		RequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "cardreader",
				Name:      "http_request_duration_seconds",
				Help:      "Request latency. The extract route waits on the model, hence the wide top end.",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"method", "route", "status"},
		),
		InFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "cardreader",
				Name:      "http_in_flight_requests",
				Help:      "Requests currently being served.",
			},
			[]string{"method", "route"},
		),
		DbQueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "cardreader",
				Subsystem: "db",
				Name:      "query_duration_seconds",
				Help:      "Latency per logical repo operation.",
				// single-row statements, so the buckets stay tight
				Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"op", "status"},
		),
		DbErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cardreader",
				Subsystem: "db",
				Name:      "errors_total",
				Help:      "Repo operation failures by error class.",
			},
			[]string{"op", "class"},
		),

		ExtractionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "cardreader",
				Subsystem: "extraction",
				Name:      "duration_seconds",
				Help:      "Model extraction call duration by result",
				// the model call has no deadline, so the top buckets are wide
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
			},
			[]string{"result"}, // result=ok|parse_error|api_error
		),
		ExtractionResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cardreader",
				Subsystem: "extraction",
				Name:      "results_total",
				Help:      "Model extraction outcomes.",
			},
			[]string{"result"},
		),
	}
	reg.MustRegister(p.RequestsTotal, p.RequestsDuration, p.InFlight, p.DbQueryDuration, p.DbErrorsTotal, p.ExtractionDuration, p.ExtractionResults)

	return p
}

// Registry exposes the backing registry so the router can mount /metrics.
func (p *Prom) Registry() *prometheus.Registry {
	return p.registry
}

func (p *Prom) GinHandleMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		method := ctx.Request.Method
		route := routeLabel(ctx)

		inFlight := p.InFlight.WithLabelValues(method, route)
		inFlight.Inc()

		start := time.Now()

		// deferred so a panicking handler still gets counted
		defer func() {
			inFlight.Dec()

			status := strconv.Itoa(ctx.Writer.Status())

			p.RequestsTotal.WithLabelValues(method, route, status).Inc()
			p.RequestsDuration.WithLabelValues(method, route, status).Observe(time.Since(start).Seconds())
		}()

		ctx.Next()
	}
}

// routeLabel keeps cardinality bounded: the route template when matched,
// one shared bucket for everything that was not.
func routeLabel(ctx *gin.Context) string {
	if path := ctx.FullPath(); path != "" {
		return path
	}

	return "unmatched"
}

// ObserveExtraction records one model call with its outcome.
func (p *Prom) ObserveExtraction(result string, elapsed time.Duration) {
	p.ExtractionResults.WithLabelValues(result).Inc()
	p.ExtractionDuration.WithLabelValues(result).Observe(elapsed.Seconds())
}
