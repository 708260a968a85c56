// Package gin exposes the crawl-and-extract pipeline over HTTP using the
// Gin framework.
package gin

import (
	"io"
	"log/slog"
	"net/http"
	"slices"

	"github.com/fwojciec/pulse"
	pulseprom "github.com/fwojciec/pulse/prometheus"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Request defaults for POST /extract.
const (
	DefaultMaxDepth = 1
	DefaultMaxPages = 15
)

// NoContentDetail is the error detail returned when a crawl records no pages.
const NoContentDetail = "No content found to extract."

// Server serves the extraction API.
type Server struct {
	// Crawler runs each request's crawl.
	Crawler pulse.Crawler

	// Extractors returns the extractor for a requested model.
	Extractors func(model string) pulse.ModuleExtractor

	// DefaultModel is used when a request names no model.
	DefaultModel string

	// Models lists the models a request may name. DefaultModel is always
	// accepted. An empty list accepts any model.
	Models []string

	// Metrics, if set, records HTTP, crawl and extraction metrics.
	Metrics *pulseprom.Metrics

	// Gatherer, if set, is exposed at GET /metrics.
	Gatherer prometheus.Gatherer

	// Logger receives one line per request. Defaults to discarding output.
	Logger *slog.Logger
}

// ExtractRequest is the body of POST /extract.
type ExtractRequest struct {
	URLs     []string `json:"urls" binding:"required"`
	MaxDepth *int     `json:"max_depth"`
	MaxPages *int     `json:"max_pages"`
	Model    string   `json:"model"`
}

// ExtractResponse is the body of a successful POST /extract.
type ExtractResponse struct {
	Modules      []pulse.Module `json:"modules"`
	PagesCrawled int            `json:"pages_crawled"`
	Summary      pulse.Summary  `json:"summary"`
}

// ErrorResponse is the body of a failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Hint   string `json:"hint,omitempty"`
}

// Handler builds the Gin engine serving all routes.
func (s *Server) Handler() http.Handler {
	logger := s.logger()

	r := gin.New()
	r.Use(RecoveryMiddleware(logger))
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(logger))
	if s.Metrics != nil {
		r.Use(MetricsMiddleware(s.Metrics))
	}

	r.GET("/health", s.handleHealth)
	r.POST("/extract", s.handleExtract)
	if s.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{})))
	}
	return r
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleExtract(c *gin.Context) {
	var body ExtractRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "invalid request body: " + err.Error()})
		return
	}

	req := &pulse.CrawlRequest{
		Seeds:    body.URLs,
		MaxDepth: DefaultMaxDepth,
		MaxPages: DefaultMaxPages,
	}
	if body.MaxDepth != nil {
		req.MaxDepth = *body.MaxDepth
	}
	if body.MaxPages != nil {
		req.MaxPages = *body.MaxPages
	}
	model := body.Model
	if model == "" {
		model = s.DefaultModel
	}

	if !s.accepts(model) {
		s.writeError(c, pulse.Errorf(pulse.EINVALID, "unsupported model %q", model), model)
		return
	}

	pipeline := s.pipeline(model)
	report, err := pipeline.Run(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		s.writeError(c, err, model)
		return
	}

	c.JSON(http.StatusOK, ExtractResponse{
		Modules:      report.Modules,
		PagesCrawled: report.PagesCrawled,
		Summary:      pulse.Summarize(report.Modules),
	})
}

// accepts reports whether requests may use model.
func (s *Server) accepts(model string) bool {
	if len(s.Models) == 0 || model == s.DefaultModel {
		return true
	}
	return slices.Contains(s.Models, model)
}

// pipeline assembles a per-request pipeline bound to model.
func (s *Server) pipeline(model string) *pulse.Pipeline {
	var crawler pulse.Crawler = s.Crawler
	extractor := s.Extractors(model)
	if s.Metrics != nil {
		crawler = pulseprom.NewMetricsCrawler(crawler, s.Metrics)
		extractor = pulseprom.NewMetricsModuleExtractor(extractor, model, s.Metrics)
	}
	return &pulse.Pipeline{Crawler: crawler, Extractor: extractor}
}

// writeError maps a pipeline error onto a status code and body. Extraction
// errors keep their message verbatim.
func (s *Server) writeError(c *gin.Context, err error, model string) {
	switch pulse.ErrorCode(err) {
	case pulse.EINVALID:
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: pulse.ErrorMessage(err)})
	case pulse.ENOCONTENT:
		c.JSON(http.StatusBadRequest, ErrorResponse{Detail: NoContentDetail})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Detail: err.Error(),
			Hint:   pulse.ExtractionHint(err, model),
		})
	}
}
