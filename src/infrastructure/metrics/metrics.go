// Package metrics exposes Prometheus metrics for the HTTP API and the
// analyst pipeline.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "csvanalyst"

type Recorder struct {
	registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	datasetsLoaded *prometheus.CounterVec
	datasetRows    prometheus.Histogram
	questions      *prometheus.CounterVec
	answerDuration *prometheus.HistogramVec
}

// NewRecorder registers all metrics on a fresh registry, together with the
// Go runtime and process collectors
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		datasetsLoaded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "datasets_loaded_total",
			Help:      "Dataset uploads by result.",
		}, []string{"result"}),
		datasetRows: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dataset_rows",
			Help:      "Row counts of loaded datasets.",
			Buckets:   prometheus.ExponentialBuckets(10, 10, 7),
		}),
		questions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "questions_total",
			Help:      "Questions asked by answer kind and result.",
		}, []string{"kind", "result"}),
		answerDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "answer_duration_seconds",
			Help:      "Time to answer a question by answer kind.",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"kind"}),
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (r *Recorder) ObserveUpload(rows int, err error) {
	r.datasetsLoaded.WithLabelValues(result(err)).Inc()
	if err == nil {
		r.datasetRows.Observe(float64(rows))
	}
}

func (r *Recorder) ObserveQuestion(kind string, d time.Duration, err error) {
	r.questions.WithLabelValues(kind, result(err)).Inc()
	r.answerDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// SessionGauge reports the value of count whenever metrics are scraped
func (r *Recorder) SessionGauge(count func() int) {
	promauto.With(r.registry).NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Sessions currently held in memory.",
	}, func() float64 { return float64(count()) })
}

// Middleware counts and times requests by their route pattern
func (r *Recorder) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		r.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		r.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
