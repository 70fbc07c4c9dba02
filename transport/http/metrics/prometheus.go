package metrics

import (
	"regexp"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/kochabx/ecckit/errors"
)

var (
	Prom = New()
)

type Prometheus struct {
	registry *prometheus.Registry

	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec

	goOnce        sync.Once
	buildInfoOnce sync.Once
}

// New creates a registry with the ecc operation collectors registered.
func New() *Prometheus {
	p := &Prometheus{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ecc_operations_total",
			Help: "Number of elliptic curve operations by outcome.",
		}, []string{"operation", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ecc_operation_duration_seconds",
			Help:    "Latency of elliptic curve operations.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"operation"}),
	}
	p.registry.MustRegister(p.operations, p.duration)

	return p
}

func (p *Prometheus) WithGoCollectorRuntimeMetrics() {
	p.goOnce.Do(func() {
		p.registry.MustRegister(collectors.NewGoCollector(
			collectors.WithGoCollectorRuntimeMetrics(collectors.GoRuntimeMetricsRule{Matcher: regexp.MustCompile("/.*")}),
		))
	})
}

func (p *Prometheus) WithBuildInfoCollector() {
	p.buildInfoOnce.Do(func() {
		p.registry.MustRegister(collectors.NewBuildInfoCollector())
	})
}

func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Operations returns the ecc_operations_total counter.
func (p *Prometheus) Operations() *prometheus.CounterVec {
	return p.operations
}

// Observe records one operation that started at start and ended with err.
func (p *Prometheus) Observe(operation string, start time.Time, err error) {
	p.ObserveResult(operation, start, ResultOf(err))
}

// ObserveResult is Observe with an explicit result label.
func (p *Prometheus) ObserveResult(operation string, start time.Time, result string) {
	p.operations.WithLabelValues(operation, result).Inc()
	p.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ResultOf maps err to a result label by error kind.
func ResultOf(err error) string {
	if err == nil {
		return ResultOK
	}
	switch errors.KindOf(err) {
	case errors.KindValidation:
		return ResultValidation
	case errors.KindCrypto:
		return ResultCrypto
	default:
		return ResultError
	}
}
