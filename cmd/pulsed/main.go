package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/pulse"
	"github.com/fwojciec/pulse/crawl"
	"github.com/fwojciec/pulse/extract"
	"github.com/fwojciec/pulse/gemini"
	pulsegin "github.com/fwojciec/pulse/gin"
	"github.com/fwojciec/pulse/goquery"
	pulsehttp "github.com/fwojciec/pulse/http"
	pulseprom "github.com/fwojciec/pulse/prometheus"
	pulseslog "github.com/fwojciec/pulse/slog"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: failed to load .env: %v\n", err)
	}

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// DefaultModels are the models a request may name unless configured
// otherwise.
var DefaultModels = []string{"gemini-2.5-flash", "gemini-2.5-flash-lite", "gemini-2.5-pro"}

// CLI defines the server's configuration for Kong.
type CLI struct {
	Addr            string        `env:"PULSE_ADDR" default:":8000" help:"Address to listen on"`
	Model           string        `env:"PULSE_MODEL" default:"${default_model}" help:"Model used when a request names none"`
	Models          []string      `env:"PULSE_MODELS" default:"${models}" help:"Models a request may name (empty accepts any)"`
	Temperature     float32       `env:"PULSE_TEMPERATURE" default:"${default_temperature}" help:"Sampling temperature for extraction"`
	MaxInputChars   int           `name:"max-input-chars" env:"PULSE_MAX_INPUT_CHARS" default:"${max_input_chars}" help:"Characters of crawled text sent to the model"`
	Concurrency     int           `short:"c" env:"PULSE_CONCURRENCY" default:"1" help:"Concurrent fetch limit per crawl"`
	Timeout         time.Duration `short:"t" env:"PULSE_FETCH_TIMEOUT" default:"10s" help:"Fetch timeout per page"`
	ShutdownTimeout time.Duration `name:"shutdown-timeout" default:"10s" help:"Time allowed for in-flight requests on shutdown"`
	APIKey          string        `name:"api-key" env:"GEMINI_API_KEY" help:"Gemini API key (mock modules are returned when unset)"`
	Debug           bool          `help:"Log per-call timing information"`
}

// Main represents the program.
type Main struct{}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run parses args, wires the API and serves it until ctx is canceled.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("pulsed"),
		kong.Description("Serve documentation module extraction over HTTP"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Vars{
			"default_model":       gemini.DefaultModel,
			"models":              strings.Join(DefaultModels, ","),
			"default_temperature": strconv.FormatFloat(float64(gemini.DefaultTemperature), 'g', -1, 32),
			"max_input_chars":     strconv.Itoa(extract.MaxInputChars),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	if _, err := parser.Parse(args); err != nil {
		return err
	}

	level := slog.LevelInfo
	if cli.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: level}))

	gen, err := NewGenerator(ctx, cli, logger)
	if err != nil {
		return err
	}
	srv, closeFn := NewServer(cli, gen, logger)
	defer closeFn()

	gin.SetMode(gin.ReleaseMode)
	server := &http.Server{
		Addr:              cli.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", cli.Addr, "model", cli.Model, "mock", cli.APIKey == "")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down", "timeout", cli.ShutdownTimeout)
	}

	// The parent context is already canceled, so shutdown gets a fresh one.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cli.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// NewGenerator connects to Gemini with cli.APIKey. Without a key it returns
// nil, which puts every extractor in mock mode.
func NewGenerator(ctx context.Context, cli *CLI, logger *slog.Logger) (pulse.Generator, error) {
	if cli.APIKey == "" {
		logger.Warn("GEMINI_API_KEY is not set, returning mock modules")
		return nil, nil
	}
	client, err := gemini.NewClient(ctx, cli.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	var gen pulse.Generator = gemini.NewGenerator(client, gemini.WithTemperature(cli.Temperature))
	if cli.Debug {
		gen = pulseslog.NewLoggingGenerator(gen, logger)
	}
	return gen, nil
}

// NewServer wires the API's crawler, per-model extractors and metrics around
// gen. The returned function releases the fetcher's idle connections.
func NewServer(cli *CLI, gen pulse.Generator, logger *slog.Logger) (*pulsegin.Server, func()) {
	opts := []extract.Option{extract.WithLogger(logger)}
	if cli.MaxInputChars > 0 {
		opts = append(opts, extract.WithMaxInputChars(cli.MaxInputChars))
	}
	registry := extract.NewRegistry(gen, opts...)

	fetcher := pulsehttp.NewFetcher(pulsehttp.WithTimeout(cli.Timeout))
	var f pulse.Fetcher = fetcher
	var p pulse.PageParser = goquery.NewParser()
	if cli.Debug {
		f = pulseslog.NewLoggingFetcher(f, logger)
		p = pulseslog.NewLoggingPageParser(p, logger)
	}
	var crawler pulse.Crawler = &crawl.Crawler{
		Fetcher:      f,
		Parser:       p,
		Concurrency:  cli.Concurrency,
		FetchTimeout: cli.Timeout,
		Logger:       logger,
	}
	if cli.Debug {
		crawler = pulseslog.NewLoggingCrawler(crawler, logger)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv := &pulsegin.Server{
		Crawler: crawler,
		Extractors: func(model string) pulse.ModuleExtractor {
			var e pulse.ModuleExtractor = registry.Extractor(model)
			if cli.Debug {
				e = pulseslog.NewLoggingModuleExtractor(e, logger)
			}
			return e
		},
		DefaultModel: cli.Model,
		Models:       cli.Models,
		Metrics:      pulseprom.NewMetrics(reg),
		Gatherer:     reg,
		Logger:       logger,
	}
	return srv, func() { _ = fetcher.Close() }
}
