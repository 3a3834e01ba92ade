package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many as they like
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	runDuration     *prometheus.HistogramVec
	runs            *prometheus.CounterVec
	candidates      prometheus.Histogram
	blocks          *prometheus.CounterVec
	hours           prometheus.Histogram
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	runDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "proposal_run_duration_seconds",
		Help:    "Time spent computing one proposal",
		Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
	}, []string{"horizon"})

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "proposal_runs_total",
		Help: "Proposal runs by horizon and outcome",
	}, []string{"horizon", "outcome"})

	candidates := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "proposal_candidates",
		Help:    "Candidate slots generated per run",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	blocks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "proposal_blocks_total",
		Help: "Proposed blocks by workplace",
	}, []string{"workplace"})

	hours := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "proposal_hours",
		Help:    "Total proposed hours per run",
		Buckets: prometheus.LinearBuckets(0, 5, 10),
	})

	registry.MustRegister(
		requestDuration, requestTotal, runDuration, runs, candidates, blocks, hours,
		collectors.NewGoCollector(),
	)

	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		runDuration:     runDuration,
		runs:            runs,
		candidates:      candidates,
		blocks:          blocks,
		hours:           hours,
	}
}

// Handler serves the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one served request
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// Run describes one finished proposal computation
type Run struct {
	Horizon    string
	Outcome    string
	Duration   time.Duration
	Candidates int
	Hours      float64
	Workplaces []string
}

// ObserveRun records a proposal run
func (m *Metrics) ObserveRun(r Run) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(r.Horizon, r.Outcome).Inc()
	m.runDuration.WithLabelValues(r.Horizon).Observe(r.Duration.Seconds())
	m.candidates.Observe(float64(r.Candidates))
	m.hours.Observe(r.Hours)
	for _, wp := range r.Workplaces {
		m.blocks.WithLabelValues(wp).Inc()
	}
}

// GinMiddleware captures request metrics
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		m.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

// RunsCounter returns the run counter for one horizon and outcome
func (m *Metrics) RunsCounter(horizon, outcome string) prometheus.Counter {
	return m.runs.WithLabelValues(horizon, outcome)
}
