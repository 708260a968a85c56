package gin_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/fwojciec/pulse"
	pulsegin "github.com/fwojciec/pulse/gin"
	"github.com/fwojciec/pulse/mock"
	pulseprom "github.com/fwojciec/pulse/prometheus"
	ginpkg "github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	ginpkg.SetMode(ginpkg.TestMode)
	os.Exit(m.Run())
}

func longText(s string) string {
	return strings.Repeat(s+" ", 30)
}

func crawlerReturning(pages ...*pulse.Page) *mock.Crawler {
	return &mock.Crawler{
		CrawlFn: func(_ context.Context, _ *pulse.CrawlRequest) (*pulse.CrawlResult, error) {
			return &pulse.CrawlResult{Pages: pages, Visited: len(pages)}, nil
		},
	}
}

func extractorsReturning(modules []pulse.Module, err error) func(string) pulse.ModuleExtractor {
	return func(string) pulse.ModuleExtractor {
		return &mock.ModuleExtractor{
			ExtractFn: func(_ context.Context, _ string) ([]pulse.Module, error) {
				return modules, err
			},
		}
	}
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/extract", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(w, req)
	return w
}

func TestServer_Health(t *testing.T) {
	t.Parallel()

	s := &pulsegin.Server{}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestServer_Extract(t *testing.T) {
	t.Parallel()

	t.Run("returns modules, page count and summary", func(t *testing.T) {
		t.Parallel()

		score := 0.8
		s := &pulsegin.Server{
			Crawler: crawlerReturning(
				&pulse.Page{URL: "https://example.com/a", Text: longText("a")},
				&pulse.Page{URL: "https://example.com/b", Text: longText("b")},
			),
			Extractors: extractorsReturning([]pulse.Module{{
				Name:        "Accounts",
				Description: "Account management.",
				Submodules:  map[string]string{"Login": "Sign in.", "Logout": "Sign out."},
				Confidence:  &score,
			}}, nil),
		}

		w := post(t, s.Handler(), `{"urls":["https://example.com/a"]}`)

		require.Equal(t, http.StatusOK, w.Code)
		var resp pulsegin.ExtractResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp.Modules, 1)
		assert.Equal(t, "Accounts", resp.Modules[0].Name)
		assert.Equal(t, 2, resp.PagesCrawled)
		assert.Equal(t, pulse.Summary{Modules: 1, Submodules: 2, AverageConfidence: 0.8}, resp.Summary)
	})

	t.Run("applies request defaults", func(t *testing.T) {
		t.Parallel()

		var gotReq *pulse.CrawlRequest
		var gotModel string
		s := &pulsegin.Server{
			Crawler: &mock.Crawler{
				CrawlFn: func(_ context.Context, req *pulse.CrawlRequest) (*pulse.CrawlResult, error) {
					gotReq = req
					return &pulse.CrawlResult{Pages: []*pulse.Page{{URL: req.Seeds[0], Text: longText("x")}}}, nil
				},
			},
			Extractors: func(model string) pulse.ModuleExtractor {
				gotModel = model
				return &mock.ModuleExtractor{
					ExtractFn: func(_ context.Context, _ string) ([]pulse.Module, error) {
						return []pulse.Module{}, nil
					},
				}
			},
			DefaultModel: "gemini-2.5-flash",
		}

		w := post(t, s.Handler(), `{"urls":["https://example.com/"]}`)

		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, gotReq)
		assert.Equal(t, pulsegin.DefaultMaxDepth, gotReq.MaxDepth)
		assert.Equal(t, pulsegin.DefaultMaxPages, gotReq.MaxPages)
		assert.Equal(t, "gemini-2.5-flash", gotModel)
	})

	t.Run("passes explicit depth, page limit and model", func(t *testing.T) {
		t.Parallel()

		var gotReq *pulse.CrawlRequest
		var gotModel string
		s := &pulsegin.Server{
			Crawler: &mock.Crawler{
				CrawlFn: func(_ context.Context, req *pulse.CrawlRequest) (*pulse.CrawlResult, error) {
					gotReq = req
					return &pulse.CrawlResult{Pages: []*pulse.Page{{URL: req.Seeds[0], Text: longText("x")}}}, nil
				},
			},
			Extractors: func(model string) pulse.ModuleExtractor {
				gotModel = model
				return &mock.ModuleExtractor{
					ExtractFn: func(_ context.Context, _ string) ([]pulse.Module, error) {
						return nil, nil
					},
				}
			},
			DefaultModel: "gemini-2.5-flash",
		}

		w := post(t, s.Handler(), `{"urls":["https://example.com/"],"max_depth":0,"max_pages":3,"model":"gemini-2.5-pro"}`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 0, gotReq.MaxDepth)
		assert.Equal(t, 3, gotReq.MaxPages)
		assert.Equal(t, "gemini-2.5-pro", gotModel)
		assert.Contains(t, w.Body.String(), `"modules":[]`)
	})

	t.Run("accepts only listed models and the default", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		var requested []string
		s := &pulsegin.Server{
			Crawler: crawlerReturning(&pulse.Page{URL: "https://example.com/", Text: longText("x")}),
			Extractors: func(model string) pulse.ModuleExtractor {
				mu.Lock()
				requested = append(requested, model)
				mu.Unlock()
				return &mock.ModuleExtractor{
					ExtractFn: func(_ context.Context, _ string) ([]pulse.Module, error) {
						return nil, nil
					},
				}
			},
			DefaultModel: "gemini-2.5-flash",
			Models:       []string{"gemini-2.5-pro"},
		}
		h := s.Handler()

		w := post(t, h, `{"urls":["https://example.com/"],"model":"made-up-model"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"detail":"unsupported model \"made-up-model\""}`, w.Body.String())

		assert.Equal(t, http.StatusOK, post(t, h, `{"urls":["https://example.com/"],"model":"gemini-2.5-pro"}`).Code)
		assert.Equal(t, http.StatusOK, post(t, h, `{"urls":["https://example.com/"]}`).Code)

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, []string{"gemini-2.5-pro", "gemini-2.5-flash"}, requested)
	})

	t.Run("returns 400 when the crawl finds no content", func(t *testing.T) {
		t.Parallel()

		called := false
		s := &pulsegin.Server{
			Crawler: crawlerReturning(),
			Extractors: func(string) pulse.ModuleExtractor {
				return &mock.ModuleExtractor{
					ExtractFn: func(_ context.Context, _ string) ([]pulse.Module, error) {
						called = true
						return nil, nil
					},
				}
			},
		}

		w := post(t, s.Handler(), `{"urls":["https://example.com/"]}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"detail":"No content found to extract."}`, w.Body.String())
		assert.False(t, called, "extractor should not run on an empty crawl")
	})

	t.Run("returns 400 for a missing urls field", func(t *testing.T) {
		t.Parallel()

		s := &pulsegin.Server{Crawler: crawlerReturning(), Extractors: extractorsReturning(nil, nil)}

		w := post(t, s.Handler(), `{"max_depth":1}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "invalid request body")
	})

	t.Run("returns 400 for an invalid crawl request", func(t *testing.T) {
		t.Parallel()

		s := &pulsegin.Server{Crawler: crawlerReturning(), Extractors: extractorsReturning(nil, nil)}

		w := post(t, s.Handler(), `{"urls":["ftp://example.com/"]}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp pulsegin.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Detail)
	})

	t.Run("returns 500 with the extraction error verbatim and a hint", func(t *testing.T) {
		t.Parallel()

		s := &pulsegin.Server{
			Crawler:      crawlerReturning(&pulse.Page{URL: "https://example.com/", Text: longText("x")}),
			Extractors:   extractorsReturning(nil, errors.New("googleapi: Error 429: quota exhausted")),
			DefaultModel: "gemini-2.5-flash",
		}

		w := post(t, s.Handler(), `{"urls":["https://example.com/"]}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		var resp pulsegin.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "googleapi: Error 429: quota exhausted", resp.Detail)
		assert.Contains(t, resp.Hint, "rate limit")
	})

	t.Run("recovers from panics", func(t *testing.T) {
		t.Parallel()

		s := &pulsegin.Server{
			Crawler: &mock.Crawler{
				CrawlFn: func(_ context.Context, _ *pulse.CrawlRequest) (*pulse.CrawlResult, error) {
					panic("boom")
				},
			},
			Extractors: extractorsReturning(nil, nil),
		}

		w := post(t, s.Handler(), `{"urls":["https://example.com/"]}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"detail":"internal server error"}`, w.Body.String())
	})
}

func TestServer_RequestID(t *testing.T) {
	t.Parallel()

	t.Run("generates an ID", func(t *testing.T) {
		t.Parallel()

		s := &pulsegin.Server{}
		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

		assert.Len(t, w.Header().Get(pulsegin.RequestIDHeader), 36)
	})

	t.Run("preserves an inbound ID", func(t *testing.T) {
		t.Parallel()

		s := &pulsegin.Server{}
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
		req.Header.Set(pulsegin.RequestIDHeader, "trace-abc123")
		s.Handler().ServeHTTP(w, req)

		assert.Equal(t, "trace-abc123", w.Header().Get(pulsegin.RequestIDHeader))
	})

	t.Run("replaces an oversized ID", func(t *testing.T) {
		t.Parallel()

		oversized := strings.Repeat("x", 200)
		s := &pulsegin.Server{}
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
		req.Header.Set(pulsegin.RequestIDHeader, oversized)
		s.Handler().ServeHTTP(w, req)

		got := w.Header().Get(pulsegin.RequestIDHeader)
		assert.NotEqual(t, oversized, got)
		assert.NotEmpty(t, got)
	})
}

func TestServer_Metrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	s := &pulsegin.Server{
		Crawler:    crawlerReturning(&pulse.Page{URL: "https://example.com/", Text: longText("x")}),
		Extractors: extractorsReturning([]pulse.Module{{Name: "A"}}, nil),
		Metrics:    pulseprom.NewMetrics(reg),
		Gatherer:   reg,
	}
	h := s.Handler()

	w := post(t, h, `{"urls":["https://example.com/"],"model":"m"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `pulse_http_requests_total{method="POST",route="/extract",status="200"} 1`)
	assert.Contains(t, body, "pulse_crawl_runs_total")
	assert.Contains(t, body, `pulse_extract_requests_total{model="m",outcome="ok"} 1`)
}
