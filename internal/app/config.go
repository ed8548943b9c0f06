package app

import "time"

// Config holds runtime configuration for one invocation. It is passed in at
// construction; nothing here is process-global.
type Config struct {
	// Search
	SearxURL   string
	SearxKey   string
	SearxUA    string
	SearchFile string // offline file-based provider, overrides SearxNG
	// SearchTimeout bounds the search request. Zero means 10s.
	SearchTimeout time.Duration

	// MaxResults caps how many top hits are processed. Zero means 3. This is
	// a cost/latency bound, not a correctness requirement.
	MaxResults int

	// Mode selects "text" or "hybrid" page processing.
	Mode string

	// Vision model (hybrid mode)
	VLMBaseURL     string
	VLMModel       string
	VLMAPIKey      string
	VLMTemperature float32

	// NavTimeout bounds each page navigation. Zero means 10s.
	NavTimeout time.Duration

	// Browser
	BrowserUserAgent string

	// Output
	OutputPath string // markdown file, default results.md
	PDFPath    string // optional PDF export

	Verbose bool
}

// DefaultMaxResults caps fan-out when Config.MaxResults is unset.
const DefaultMaxResults = 3

// DefaultSearchTimeout bounds the search backend call when unset.
const DefaultSearchTimeout = 10 * time.Second

func (c *Config) maxResults() int {
	if c.MaxResults > 0 {
		return c.MaxResults
	}
	return DefaultMaxResults
}

func (c *Config) searchTimeout() time.Duration {
	if c.SearchTimeout > 0 {
		return c.SearchTimeout
	}
	return DefaultSearchTimeout
}
