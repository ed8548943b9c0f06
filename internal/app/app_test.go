package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hyperifyio/webcontext/internal/page"
	"github.com/hyperifyio/webcontext/internal/search"
)

type fakeProvider struct {
	results []search.Result
	err     error
	calls   int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Search(_ context.Context, _ string, limit int) ([]search.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	// Deliberately ignore limit; the orchestrator must truncate on its own.
	return f.results, nil
}

type fakeProcessor struct {
	mu       sync.Mutex
	seen     []string
	failURLs map[string]bool
	// delay slows down specific URLs to scramble completion order.
	delay map[string]time.Duration
}

func (f *fakeProcessor) Process(_ context.Context, url string) page.Result {
	if d := f.delay[url]; d > 0 {
		time.Sleep(d)
	}
	f.mu.Lock()
	f.seen = append(f.seen, url)
	f.mu.Unlock()
	if f.failURLs[url] {
		return page.Result{URL: url, Err: errors.New("simulated navigation timeout")}
	}
	return page.Result{URL: url, Fragment: "content of " + url}
}

func results(urls ...string) []search.Result {
	out := make([]search.Result, 0, len(urls))
	for _, u := range urls {
		out = append(out, search.Result{URL: u, Title: u})
	}
	return out
}

func TestRun_NoResults(t *testing.T) {
	proc := &fakeProcessor{}
	a := &App{cfg: Config{}, provider: &fakeProvider{}, processor: proc}

	doc, err := a.Run(context.Background(), "obscure query")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if doc != NoResultsMessage {
		t.Fatalf("doc = %q, want %q", doc, NoResultsMessage)
	}
	if len(proc.seen) != 0 {
		t.Fatalf("no page fetches expected, got %d", len(proc.seen))
	}
}

func TestRun_SearchFailureIsFatal(t *testing.T) {
	a := &App{cfg: Config{}, provider: &fakeProvider{err: errors.New("connection refused")}, processor: &fakeProcessor{}}
	if _, err := a.Run(context.Background(), "q"); err == nil {
		t.Fatal("expected search failure to surface")
	}
}

func TestRun_TruncatesToMaxResults(t *testing.T) {
	proc := &fakeProcessor{}
	a := &App{
		cfg:       Config{},
		provider:  &fakeProvider{results: results("https://a.example", "https://b.example", "https://c.example", "https://d.example")},
		processor: proc,
	}
	doc, err := a.Run(context.Background(), "rust ownership model")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(proc.seen) != 3 {
		t.Fatalf("expected 3 processor invocations (default cap), got %d", len(proc.seen))
	}
	if n := strings.Count(doc, "[Source: "); n != 3 {
		t.Fatalf("expected 3 source blocks, got %d:\n%s", n, doc)
	}
	if strings.Contains(doc, "https://d.example") {
		t.Fatal("fourth result should have been truncated")
	}
}

func TestRun_OrderFollowsSearchNotCompletion(t *testing.T) {
	urls := []string{"https://a.example", "https://b.example", "https://c.example"}
	proc := &fakeProcessor{delay: map[string]time.Duration{
		// First URL finishes last.
		"https://a.example": 60 * time.Millisecond,
		"https://b.example": 30 * time.Millisecond,
	}}
	a := &App{cfg: Config{}, provider: &fakeProvider{results: results(urls...)}, processor: proc}

	doc, err := a.Run(context.Background(), "q")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var last int
	for _, u := range urls {
		idx := strings.Index(doc, "[Source: "+u+"]")
		if idx < 0 {
			t.Fatalf("fragment for %s missing:\n%s", u, doc)
		}
		if idx < last {
			t.Fatalf("fragment for %s out of order:\n%s", u, doc)
		}
		last = idx
	}
}

func TestRun_PageFailureIsIsolated(t *testing.T) {
	proc := &fakeProcessor{failURLs: map[string]bool{"https://b.example": true}}
	a := &App{
		cfg:       Config{},
		provider:  &fakeProvider{results: results("https://a.example", "https://b.example", "https://c.example")},
		processor: proc,
	}
	doc, err := a.Run(context.Background(), "q")
	if err != nil {
		t.Fatalf("a page failure must not fail the run: %v", err)
	}
	if len(proc.seen) != 3 {
		t.Fatalf("all 3 pages must still be attempted, got %d", len(proc.seen))
	}
	if strings.Contains(doc, "https://b.example") {
		t.Fatal("failed page must be omitted from the document")
	}
	for _, u := range []string{"https://a.example", "https://c.example"} {
		if !strings.Contains(doc, "content of "+u) {
			t.Fatalf("sibling page %s affected by failure:\n%s", u, doc)
		}
	}
}

func TestRun_AllPagesFailedYieldsNoResults(t *testing.T) {
	proc := &fakeProcessor{failURLs: map[string]bool{"https://a.example": true}}
	a := &App{cfg: Config{}, provider: &fakeProvider{results: results("https://a.example")}, processor: proc}

	doc, err := a.Run(context.Background(), "q")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if doc != NoResultsMessage {
		t.Fatalf("doc = %q, want %q", doc, NoResultsMessage)
	}
}

func TestMergeFragments_Format(t *testing.T) {
	doc := mergeFragments([]page.Result{
		{URL: "https://a.example", Fragment: "# Title\nBody"},
	})
	if !strings.HasPrefix(doc, "[Source: https://a.example]\n# Title\nBody\n\n") {
		t.Fatalf("unexpected fragment format:\n%s", doc)
	}
	if !strings.Contains(doc, strings.Repeat("-", 20)) {
		t.Fatalf("separator missing:\n%s", doc)
	}
}
