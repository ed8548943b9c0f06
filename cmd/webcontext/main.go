package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/webcontext/internal/app"
)

func main() {
	// Logging setup: diagnostics on stderr, document content on stdout.
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		configPath string
		searxURL   string
		searxKey   string
		searxUA    string
		searchFile string
		maxResults int
		mode       string
		vlmBase    string
		vlmModel   string
		vlmKey     string
		vlmTemp    float64
		navTimeout time.Duration
		outputPath string
		pdfPath    string
		verbose    bool
	)

	flag.StringVar(&configPath, "config", "", "Path to optional YAML config file")
	flag.StringVar(&searxURL, "searx.url", os.Getenv("SEARX_URL"), "SearxNG base URL")
	flag.StringVar(&searxKey, "searx.key", os.Getenv("SEARX_KEY"), "SearxNG API key (optional)")
	flag.StringVar(&searxUA, "searx.ua", "webcontext/1.0 (+https://github.com/hyperifyio/webcontext)", "Custom User-Agent for SearxNG requests")
	flag.StringVar(&searchFile, "search.file", os.Getenv("SEARCH_FILE"), "Path to JSON file for offline file-based search provider")
	flag.IntVar(&maxResults, "max.results", 0, "Maximum number of result pages to process (default 3)")
	flag.StringVar(&mode, "mode", os.Getenv("WEBCONTEXT_MODE"), "Page processing mode: text or hybrid (default text)")
	flag.StringVar(&vlmBase, "vlm.base", os.Getenv("VLM_BASE_URL"), "OpenAI-compatible base URL for the vision model (e.g. http://localhost:11434/v1)")
	flag.StringVar(&vlmModel, "vlm.model", os.Getenv("VLM_MODEL"), "Vision model name (hybrid mode)")
	flag.StringVar(&vlmKey, "vlm.key", os.Getenv("VLM_API_KEY"), "API key for the vision endpoint (optional for local backends)")
	flag.Float64Var(&vlmTemp, "vlm.temp", 0, "Vision model sampling temperature (default 0.4)")
	flag.DurationVar(&navTimeout, "nav.timeout", 0, "Per-page navigation timeout (default 10s)")
	flag.StringVar(&outputPath, "output", "", "Path to write the merged document (default results.md)")
	flag.StringVar(&pdfPath, "pdf", "", "Optional path to also write the document as PDF")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(1)
	}
	query := strings.Join(flag.Args(), " ")

	cfg := app.Config{
		SearxURL:       searxURL,
		SearxKey:       searxKey,
		SearxUA:        searxUA,
		SearchFile:     searchFile,
		MaxResults:     maxResults,
		Mode:           mode,
		VLMBaseURL:     vlmBase,
		VLMModel:       vlmModel,
		VLMAPIKey:      vlmKey,
		VLMTemperature: float32(vlmTemp),
		NavTimeout:     navTimeout,
		OutputPath:     outputPath,
		PDFPath:        pdfPath,
		Verbose:        verbose,
	}
	if configPath != "" {
		fc, err := app.LoadFileConfig(configPath)
		if err != nil {
			log.Error().Err(err).Msg("config file")
			os.Exit(1)
		}
		fc.Apply(&cfg)
	}

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := run(cfg, query); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <search query words...>\n\nFlags:\n", os.Args[0])
	flag.PrintDefaults()
}

func run(cfg app.Config, query string) error {
	ctx := context.Background()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	doc, err := a.Run(ctx, query)
	if err != nil {
		return err
	}
	fmt.Println(doc)
	return a.WriteDocument(doc)
}
