// Package prometheus provides Prometheus metrics for crawls, extractions
// and API requests.
package prometheus

import (
	"context"
	"time"

	"github.com/fwojciec/pulse"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsNamespace is the namespace for all pulse metrics.
const MetricsNamespace = "pulse"

// Extraction outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	// Crawl metrics
	CrawlsTotal          *prometheus.CounterVec
	CrawlDurationSeconds prometheus.Histogram
	CrawlURLsTotal       *prometheus.CounterVec

	// Extraction metrics
	ExtractionsTotal          *prometheus.CounterVec
	ExtractionDurationSeconds *prometheus.HistogramVec
	ExtractedModules          prometheus.Histogram

	// API metrics
	HTTPRequestsTotal          *prometheus.CounterVec
	HTTPRequestDurationSeconds *prometheus.HistogramVec
}

// NewMetrics creates and registers all metrics on reg.
// A nil reg registers on the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)
	m := &Metrics{}

	m.initCrawlMetrics(factory)
	m.initExtractionMetrics(factory)
	m.initHTTPMetrics(factory)

	return m
}

func (m *Metrics) initCrawlMetrics(factory promauto.Factory) {
	m.CrawlsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Subsystem: "crawl",
			Name:      "runs_total",
			Help:      "Total number of crawls by outcome",
		},
		[]string{"outcome"},
	)

	m.CrawlDurationSeconds = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: MetricsNamespace,
			Subsystem: "crawl",
			Name:      "duration_seconds",
			Help:      "Duration of whole crawls in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12), // 0.1s to ~3.4min
		},
	)

	m.CrawlURLsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Subsystem: "crawl",
			Name:      "urls_total",
			Help:      "Total number of visited URLs by result",
		},
		[]string{"result"},
	)
}

func (m *Metrics) initExtractionMetrics(factory promauto.Factory) {
	m.ExtractionsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Subsystem: "extract",
			Name:      "requests_total",
			Help:      "Total number of extractions by model and outcome",
		},
		[]string{"model", "outcome"},
	)

	m.ExtractionDurationSeconds = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: MetricsNamespace,
			Subsystem: "extract",
			Name:      "duration_seconds",
			Help:      "Duration of extractions in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms to ~80s
		},
		[]string{"model"},
	)

	m.ExtractedModules = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: MetricsNamespace,
			Subsystem: "extract",
			Name:      "modules",
			Help:      "Number of modules returned per successful extraction",
			Buckets:   prometheus.LinearBuckets(0, 2, 11),
		},
	)
}

func (m *Metrics) initHTTPMetrics(factory promauto.Factory) {
	m.HTTPRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	m.HTTPRequestDurationSeconds = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: MetricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of API requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route"},
	)
}

// ObserveCrawl records a finished crawl.
func (m *Metrics) ObserveCrawl(result *pulse.CrawlResult, err error, d time.Duration) {
	m.CrawlDurationSeconds.Observe(d.Seconds())
	switch {
	case err != nil:
		m.CrawlsTotal.WithLabelValues(OutcomeError).Inc()
	case result == nil || len(result.Pages) == 0:
		m.CrawlsTotal.WithLabelValues(OutcomeEmpty).Inc()
	default:
		m.CrawlsTotal.WithLabelValues(OutcomeOK).Inc()
	}
	if result == nil {
		return
	}
	skipped := result.Visited - result.Failed - len(result.Pages)
	m.CrawlURLsTotal.WithLabelValues("recorded").Add(float64(len(result.Pages)))
	m.CrawlURLsTotal.WithLabelValues("failed").Add(float64(result.Failed))
	m.CrawlURLsTotal.WithLabelValues("skipped").Add(float64(max(skipped, 0)))
}

// ObserveExtraction records a finished extraction for model.
func (m *Metrics) ObserveExtraction(model string, modules []pulse.Module, err error, d time.Duration) {
	m.ExtractionDurationSeconds.WithLabelValues(model).Observe(d.Seconds())
	switch {
	case err != nil:
		m.ExtractionsTotal.WithLabelValues(model, OutcomeError).Inc()
		return
	case len(modules) == 0:
		m.ExtractionsTotal.WithLabelValues(model, OutcomeEmpty).Inc()
	default:
		m.ExtractionsTotal.WithLabelValues(model, OutcomeOK).Inc()
	}
	m.ExtractedModules.Observe(float64(len(modules)))
}

// Ensure MetricsCrawler implements pulse.Crawler.
var _ pulse.Crawler = (*MetricsCrawler)(nil)

// MetricsCrawler wraps a Crawler and records crawl metrics.
type MetricsCrawler struct {
	next    pulse.Crawler
	metrics *Metrics
}

// NewMetricsCrawler creates a new MetricsCrawler.
func NewMetricsCrawler(next pulse.Crawler, metrics *Metrics) *MetricsCrawler {
	return &MetricsCrawler{next: next, metrics: metrics}
}

// Crawl delegates to the wrapped crawler and records the outcome.
func (c *MetricsCrawler) Crawl(ctx context.Context, req *pulse.CrawlRequest) (result *pulse.CrawlResult, err error) {
	defer func(begin time.Time) {
		c.metrics.ObserveCrawl(result, err, time.Since(begin))
	}(time.Now())
	return c.next.Crawl(ctx, req)
}

// Ensure MetricsModuleExtractor implements pulse.ModuleExtractor.
var _ pulse.ModuleExtractor = (*MetricsModuleExtractor)(nil)

// MetricsModuleExtractor wraps a ModuleExtractor and records extraction
// metrics under a model label.
type MetricsModuleExtractor struct {
	next    pulse.ModuleExtractor
	model   string
	metrics *Metrics
}

// NewMetricsModuleExtractor creates a new MetricsModuleExtractor.
func NewMetricsModuleExtractor(next pulse.ModuleExtractor, model string, metrics *Metrics) *MetricsModuleExtractor {
	return &MetricsModuleExtractor{next: next, model: model, metrics: metrics}
}

// Extract delegates to the wrapped extractor and records the outcome.
func (e *MetricsModuleExtractor) Extract(ctx context.Context, text string) (modules []pulse.Module, err error) {
	defer func(begin time.Time) {
		e.metrics.ObserveExtraction(e.model, modules, err, time.Since(begin))
	}(time.Now())
	return e.next.Extract(ctx, text)
}
