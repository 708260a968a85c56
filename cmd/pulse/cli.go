package main

import (
	"context"
	"io"
	"time"

	"github.com/fwojciec/pulse"
	"github.com/fwojciec/pulse/fs"
)

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	URLs          []string      `name:"url" short:"u" required:"" sep:"none" help:"Seed URL to crawl (repeatable)"`
	Depth         int           `short:"d" default:"1" help:"Maximum link depth to follow from the seeds"`
	MaxPages      int           `name:"max-pages" default:"0" help:"Stop after recording this many pages (0 means no limit)"`
	Model         string        `short:"m" env:"PULSE_MODEL" default:"${default_model}" help:"Model used for extraction"`
	Temperature   float32       `env:"PULSE_TEMPERATURE" default:"${default_temperature}" help:"Sampling temperature for extraction"`
	MaxInputChars int           `name:"max-input-chars" default:"${max_input_chars}" help:"Characters of crawled text sent to the model"`
	Output        string        `short:"o" default:"output.json" help:"File the extracted modules are written to"`
	Concurrency   int           `short:"c" default:"1" help:"Concurrent fetch limit (1 keeps depth-first order)"`
	Timeout       time.Duration `short:"t" default:"10s" help:"Fetch timeout per page"`
	PagesDir      string        `name:"pages-dir" help:"Also save the crawled page text under this directory"`
	APIKey        string        `name:"api-key" env:"GEMINI_API_KEY" help:"Gemini API key (mock modules are returned when unset)"`
	Debug         bool          `help:"Log timing information to stderr"`
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer

	Crawler   pulse.Crawler
	Extractor pulse.ModuleExtractor

	// Pages, if set, receives the crawled page text.
	Pages *fs.PageStore
}

// ExtractCmd crawls the seed URLs and extracts modules from the result.
type ExtractCmd struct {
	URLs     []string
	Depth    int
	MaxPages int
	Model    string
	Output   string
}
