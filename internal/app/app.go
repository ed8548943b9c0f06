package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hyperifyio/webcontext/internal/browser"
	"github.com/hyperifyio/webcontext/internal/llm"
	"github.com/hyperifyio/webcontext/internal/page"
	"github.com/hyperifyio/webcontext/internal/search"
	"github.com/hyperifyio/webcontext/internal/vision"
)

// NoResultsMessage is the defined outcome for a query with zero usable
// results. It is a valid document, not an error.
const NoResultsMessage = "No results found."

// fragmentSeparator closes each source block in the merged document.
var fragmentSeparator = strings.Repeat("-", 20)

// pageProcessor abstracts page.Processor for tests.
type pageProcessor interface {
	Process(ctx context.Context, url string) page.Result
}

// App wires the search provider, the shared browser and the page processor
// for one run.
type App struct {
	cfg       Config
	provider  search.Provider
	processor pageProcessor
	browser   *browser.Browser
}

// New builds the pipeline: search provider, one shared headless browser, and
// the page processor (with a vision describer in hybrid mode).
func New(ctx context.Context, cfg Config) (*App, error) {
	mode, err := page.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}

	var provider search.Provider
	switch {
	case strings.TrimSpace(cfg.SearchFile) != "":
		provider = &search.FileProvider{Path: cfg.SearchFile}
	case strings.TrimSpace(cfg.SearxURL) != "":
		provider = &search.SearxNG{
			BaseURL:   cfg.SearxURL,
			APIKey:    cfg.SearxKey,
			UserAgent: cfg.SearxUA,
			Timeout:   cfg.searchTimeout(),
		}
	default:
		return nil, errors.New("no search backend configured (set -searx.url or -search.file)")
	}

	opts := browser.DefaultOptions()
	if cfg.BrowserUserAgent != "" {
		opts.UserAgent = cfg.BrowserUserAgent
	}
	b, err := browser.New(ctx, opts)
	if err != nil {
		return nil, err
	}

	proc := &page.Processor{
		Renderer:   b,
		Mode:       mode,
		NavTimeout: cfg.NavTimeout,
	}
	if mode == page.ModeHybrid {
		if strings.TrimSpace(cfg.VLMModel) == "" {
			b.Close()
			return nil, errors.New("hybrid mode requires a vision model (-vlm.model)")
		}
		proc.Describer = &vision.Describer{
			Client:      llm.NewOpenAIProvider(cfg.VLMBaseURL, cfg.VLMAPIKey),
			Model:       cfg.VLMModel,
			Temperature: cfg.VLMTemperature,
		}
	}

	return &App{cfg: cfg, provider: provider, processor: proc, browser: b}, nil
}

// Close releases the shared browser.
func (a *App) Close() {
	if a.browser != nil {
		_ = a.browser.Close()
	}
}

// Run turns a query into the merged document. The search call is the only
// fatal failure; every per-page failure is logged and the page omitted.
func (a *App) Run(ctx context.Context, query string) (string, error) {
	log.Info().Str("query", query).Msg("searching")

	searchCtx, cancel := context.WithTimeout(ctx, a.cfg.searchTimeout())
	defer cancel()
	results, err := a.provider.Search(searchCtx, query, a.cfg.maxResults())
	if err != nil {
		return "", fmt.Errorf("query search backend: %w", err)
	}
	if len(results) == 0 {
		log.Info().Msg("search returned no results")
		return NoResultsMessage, nil
	}
	if len(results) > a.cfg.maxResults() {
		results = results[:a.cfg.maxResults()]
	}
	log.Info().Int("count", len(results)).Msg("processing result pages")

	// Fan-out: one processor invocation per URL, all concurrent, isolated
	// failure domains. Process never returns an error, so no sibling is
	// ever cancelled. Fan-in indexes by position to restore backend order.
	fragments := make([]page.Result, len(results))
	var g errgroup.Group
	for i, r := range results {
		g.Go(func() error {
			fragments[i] = a.processor.Process(ctx, r.URL)
			return nil
		})
	}
	_ = g.Wait()

	return mergeFragments(fragments), nil
}

// mergeFragments concatenates successful fragments in their original order,
// each prefixed with its source URL. Failed pages are omitted; if nothing
// succeeded the no-results outcome is returned.
func mergeFragments(fragments []page.Result) string {
	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if !f.OK() {
			// The processor already warned; this records the merge decision.
			log.Debug().Err(f.Err).Str("url", f.URL).Msg("page omitted from document")
			continue
		}
		parts = append(parts, fmt.Sprintf("[Source: %s]\n%s\n\n%s\n", f.URL, f.Fragment, fragmentSeparator))
	}
	if len(parts) == 0 {
		return NoResultsMessage
	}
	return strings.Join(parts, "\n")
}
