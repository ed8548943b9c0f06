// Package browser drives a shared headless Chrome instance and hands out
// isolated per-page tab contexts. Launching Chrome is expensive, so one
// process serves the whole run; pages never share a tab.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// Options configures the shared browser process.
type Options struct {
	Headless       bool
	UserAgent      string
	ViewportWidth  int
	ViewportHeight int
}

// DefaultOptions returns a headless configuration with a desktop viewport.
func DefaultOptions() Options {
	return Options{
		Headless:       true,
		ViewportWidth:  1280,
		ViewportHeight: 900,
	}
}

// Capture is the rendered outcome for one URL.
type Capture struct {
	URL        string
	HTML       string
	Screenshot []byte // full-page PNG; nil unless requested
}

// Browser owns one Chrome process. Safe for concurrent Capture calls; each
// call runs in its own tab.
type Browser struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc
}

// New launches the browser. The caller must Close it.
func New(ctx context.Context, opts Options) (*Browser, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.WindowSize(opts.ViewportWidth, opts.ViewportHeight),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx)

	// chromedp.Run with no actions starts the process eagerly so startup
	// failures surface here rather than on the first page.
	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	log.Debug().Bool("headless", opts.Headless).Msg("browser started")

	return &Browser{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		ctx:         browserCtx,
		cancel:      cancel,
	}, nil
}

// Capture navigates a fresh tab to url, waits for the page within timeout,
// and returns the rendered HTML plus, when withScreenshot is set, a
// full-page screenshot. The tab is closed on every exit path.
func (b *Browser) Capture(ctx context.Context, url string, timeout time.Duration, withScreenshot bool) (Capture, error) {
	tabCtx, cancelTab := chromedp.NewContext(b.ctx)
	defer cancelTab()
	if timeout > 0 {
		var cancel context.CancelFunc
		tabCtx, cancel = context.WithTimeout(tabCtx, timeout)
		defer cancel()
	}
	// Close the tab if the caller's context ends first.
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var htmlContent string
	actions := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.ActionFunc(func(ctx context.Context) error {
			node, err := dom.GetDocument().Do(ctx)
			if err != nil {
				return err
			}
			htmlContent, err = dom.GetOuterHTML().WithNodeID(node.NodeID).Do(ctx)
			return err
		}),
	}
	var shot []byte
	if withScreenshot {
		// Quality 100 makes chromedp emit PNG, which the describer's data
		// URL declares.
		actions = append(actions, chromedp.FullScreenshot(&shot, 100))
	}
	if err := chromedp.Run(tabCtx, actions...); err != nil {
		return Capture{}, fmt.Errorf("render %s: %w", url, err)
	}
	return Capture{URL: url, HTML: htmlContent, Screenshot: shot}, nil
}

// Close shuts down the browser process.
func (b *Browser) Close() error {
	b.cancel()
	b.allocCancel()
	return nil
}
