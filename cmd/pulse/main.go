package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/pulse"
	"github.com/fwojciec/pulse/crawl"
	"github.com/fwojciec/pulse/extract"
	"github.com/fwojciec/pulse/fs"
	"github.com/fwojciec/pulse/gemini"
	"github.com/fwojciec/pulse/goquery"
	pulsehttp "github.com/fwojciec/pulse/http"
	pulseslog "github.com/fwojciec/pulse/slog"
	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: failed to load .env: %v\n", err)
	}

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !Reported(err) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// reportedError marks an error the command has already printed.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// Reported reports whether err was already printed to stderr.
func Reported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}

// Main represents the program.
type Main struct {
	// Services for end-to-end testing. When nil, Run wires real ones.
	Crawler   pulse.Crawler
	Extractor pulse.ModuleExtractor
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("pulse"),
		kong.Description("Crawl documentation sites and extract a product module hierarchy"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Vars{
			"default_model":       gemini.DefaultModel,
			"default_temperature": strconv.FormatFloat(float64(gemini.DefaultTemperature), 'g', -1, 32),
			"max_input_chars":     strconv.Itoa(extract.MaxInputChars),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no arguments provided")
	}

	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	if _, err := parser.Parse(args); err != nil {
		return err
	}

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	var logger *slog.Logger
	if cli.Debug {
		logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	deps.Crawler = m.Crawler
	if deps.Crawler == nil {
		fetcher := pulsehttp.NewFetcher(pulsehttp.WithTimeout(cli.Timeout))
		defer fetcher.Close()

		var f pulse.Fetcher = fetcher
		var p pulse.PageParser = goquery.NewParser()
		if logger != nil {
			f = pulseslog.NewLoggingFetcher(f, logger)
			p = pulseslog.NewLoggingPageParser(p, logger)
		}
		deps.Crawler = &crawl.Crawler{
			Fetcher:      f,
			Parser:       p,
			Concurrency:  cli.Concurrency,
			FetchTimeout: cli.Timeout,
			Logger:       logger,
			Progress:     progressPrinter(stderr),
		}
	}

	deps.Extractor = m.Extractor
	if deps.Extractor == nil {
		var gen pulse.Generator
		if cli.APIKey == "" {
			fmt.Fprintln(stderr, "warning: GEMINI_API_KEY is not set, returning mock modules")
		} else {
			client, err := gemini.NewClient(ctx, cli.APIKey)
			if err != nil {
				return fmt.Errorf("failed to create Gemini client: %w", err)
			}
			gen = gemini.NewGenerator(client, gemini.WithTemperature(cli.Temperature))
			if logger != nil {
				gen = pulseslog.NewLoggingGenerator(gen, logger)
			}
		}
		var opts []extract.Option
		if cli.MaxInputChars > 0 {
			opts = append(opts, extract.WithMaxInputChars(cli.MaxInputChars))
		}
		if logger != nil {
			opts = append(opts, extract.WithLogger(logger))
		}
		deps.Extractor = extract.NewExtractor(cli.Model, gen, opts...)
	}

	if logger != nil {
		deps.Crawler = pulseslog.NewLoggingCrawler(deps.Crawler, logger)
		deps.Extractor = pulseslog.NewLoggingModuleExtractor(deps.Extractor, logger)
	}

	if cli.PagesDir != "" {
		dir := filepath.Clean(cli.PagesDir)
		deps.Pages = fs.NewPageStore(filepath.Dir(dir), filepath.Base(dir))
	}

	cmd := &ExtractCmd{
		URLs:     cli.URLs,
		Depth:    cli.Depth,
		MaxPages: cli.MaxPages,
		Model:    cli.Model,
		Output:   cli.Output,
	}

	return cmd.Run(deps)
}

// progressPrinter reports crawl progress on w, one line per visited URL.
func progressPrinter(w io.Writer) crawl.ProgressFunc {
	return func(ev crawl.ProgressEvent) {
		switch ev.Type {
		case crawl.ProgressRecorded:
			fmt.Fprintf(w, "[%d] %s (%s)\n", ev.Recorded, crawl.TruncateURL(ev.URL, 60), crawl.FormatChars(ev.Chars))
		case crawl.ProgressSkipped:
			fmt.Fprintf(w, "skip %s: content too short (%s)\n", crawl.TruncateURL(ev.URL, 60), crawl.FormatChars(ev.Chars))
		case crawl.ProgressFailed:
			fmt.Fprintf(w, "skip %s: %v\n", crawl.TruncateURL(ev.URL, 60), ev.Error)
		case crawl.ProgressLimited:
			fmt.Fprintf(w, "skip %s: page limit reached\n", crawl.TruncateURL(ev.URL, 60))
		case crawl.ProgressFinished:
			fmt.Fprintf(w, "Crawled %d pages (%d URLs visited)\n", ev.Recorded, ev.Visited)
		}
	}
}
