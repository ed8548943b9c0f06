// Package page turns one URL into a formatted document fragment. All
// failures are absorbed here and reported as an absence outcome; nothing
// propagates to sibling pages.
package page

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hyperifyio/webcontext/internal/browser"
	"github.com/hyperifyio/webcontext/internal/extract"
)

// Mode selects the extraction strategy for a page.
type Mode int

const (
	// ModeText extracts readable text from the rendered HTML only.
	ModeText Mode = iota
	// ModeHybrid additionally describes visual elements from a full-page
	// screenshot, running both extractions concurrently.
	ModeHybrid
)

// ParseMode maps a CLI/config string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "text":
		return ModeText, nil
	case "hybrid":
		return ModeHybrid, nil
	}
	return ModeText, fmt.Errorf("unknown mode %q (want text or hybrid)", s)
}

// Renderer abstracts the headless browser.
type Renderer interface {
	Capture(ctx context.Context, url string, timeout time.Duration, withScreenshot bool) (browser.Capture, error)
}

// VisualDescriber abstracts the vision model call.
type VisualDescriber interface {
	Describe(ctx context.Context, png []byte) (string, error)
}

// Result is the per-URL outcome. The URL is always populated; Fragment is
// empty exactly when Err is set (the absence outcome).
type Result struct {
	URL      string
	Fragment string
	Err      error
}

// OK reports whether the page produced content.
func (r Result) OK() bool { return r.Err == nil }

// ErrNoContent marks a page that rendered but yielded no readable text.
var ErrNoContent = errors.New("no readable text extracted")

const (
	textFailedPlaceholder = "[text extraction failed]"
	visualSectionHeading  = "# Visual Elements Analysis"
)

// DefaultNavTimeout bounds a single page navigation.
const DefaultNavTimeout = 10 * time.Second

// Processor renders a page and formats its content. One Processor serves all
// pages of a run; Process is safe for concurrent use.
type Processor struct {
	Renderer  Renderer
	Describer VisualDescriber
	Mode      Mode
	// NavTimeout bounds navigation per page. Zero means DefaultNavTimeout.
	NavTimeout time.Duration
}

// Process fetches and formats one URL. It never panics past its boundary:
// every failure, including delegate panics, becomes an absence outcome with
// the URL preserved for diagnostics.
func (p *Processor) Process(ctx context.Context, url string) (res Result) {
	res.URL = url
	defer func() {
		if r := recover(); r != nil {
			res.Fragment = ""
			res.Err = fmt.Errorf("page processing panic: %v", r)
			log.Warn().Str("url", url).Interface("panic", r).Msg("page processing recovered")
		}
	}()

	log.Debug().Str("url", url).Msg("parsing page")
	timeout := p.NavTimeout
	if timeout <= 0 {
		timeout = DefaultNavTimeout
	}
	capture, err := p.Renderer.Capture(ctx, url, timeout, p.Mode == ModeHybrid)
	if err != nil {
		log.Warn().Err(err).Str("url", url).Msg("page render failed")
		res.Err = err
		return res
	}

	switch p.Mode {
	case ModeHybrid:
		res.Fragment = p.hybridFragment(ctx, capture)
	default:
		md := extract.Markdown(extract.Blocks([]byte(capture.HTML)))
		if md == "" {
			log.Warn().Str("url", url).Msg("no text found on page")
			res.Err = ErrNoContent
			return res
		}
		res.Fragment = md
	}
	return res
}

// hybridFragment runs the text extractor and the vision describer
// concurrently on the same capture and joins both before formatting. Either
// sub-task failing degrades to a placeholder; the page still succeeds.
func (p *Processor) hybridFragment(ctx context.Context, capture browser.Capture) string {
	var textMD, visual string

	var g errgroup.Group
	g.Go(func() error {
		defer func() {
			if r := recover(); r != nil {
				log.Warn().Str("url", capture.URL).Interface("panic", r).Msg("text extraction failed")
				textMD = textFailedPlaceholder
			}
		}()
		textMD = extract.Markdown(extract.Blocks([]byte(capture.HTML)))
		return nil
	})
	g.Go(func() error {
		desc, err := p.describe(ctx, capture.Screenshot)
		if err != nil {
			log.Warn().Err(err).Str("url", capture.URL).Msg("vision analysis failed")
			visual = fmt.Sprintf("[vision analysis failed: %v]", err)
			return nil
		}
		visual = desc
		return nil
	})
	// Sub-task errors are already downgraded to placeholders above.
	_ = g.Wait()

	return textMD + "\n\n---\n\n" + visualSectionHeading + "\n\n" + visual
}

func (p *Processor) describe(ctx context.Context, png []byte) (string, error) {
	if p.Describer == nil {
		return "", errors.New("no vision describer configured")
	}
	return p.Describer.Describe(ctx, png)
}
