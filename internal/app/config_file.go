package app

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the optional single-file YAML configuration schema. Values
// set here fill in anything the flags left at their zero/default value;
// flags always win.
type FileConfig struct {
	Output string `yaml:"output"`
	PDF    string `yaml:"pdf"`
	Mode   string `yaml:"mode"`

	Searx struct {
		URL string `yaml:"url"`
		Key string `yaml:"key"`
		UA  string `yaml:"ua"`
	} `yaml:"searx"`

	Search struct {
		File string `yaml:"file"`
		// Timeout is a Go duration string, e.g. "15s".
		Timeout string `yaml:"timeout"`
	} `yaml:"search"`

	Max struct {
		Results int `yaml:"results"`
	} `yaml:"max"`

	VLM struct {
		BaseURL     string  `yaml:"base"`
		Model       string  `yaml:"model"`
		Key         string  `yaml:"key"`
		Temperature float32 `yaml:"temperature"`
	} `yaml:"vlm"`

	Nav struct {
		// Timeout is a Go duration string, e.g. "10s".
		Timeout string `yaml:"timeout"`
	} `yaml:"nav"`

	Browser struct {
		UA string `yaml:"ua"`
	} `yaml:"browser"`

	Verbose bool `yaml:"verbose"`
}

// LoadFileConfig reads and parses a YAML config file.
func LoadFileConfig(path string) (*FileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &fc, nil
}

// Apply copies file values into cfg for every field cfg still has unset.
func (fc *FileConfig) Apply(cfg *Config) {
	setStr := func(dst *string, v string) {
		if *dst == "" && v != "" {
			*dst = v
		}
	}
	setStr(&cfg.OutputPath, fc.Output)
	setStr(&cfg.PDFPath, fc.PDF)
	setStr(&cfg.Mode, fc.Mode)
	setStr(&cfg.SearxURL, fc.Searx.URL)
	setStr(&cfg.SearxKey, fc.Searx.Key)
	setStr(&cfg.SearxUA, fc.Searx.UA)
	setStr(&cfg.SearchFile, fc.Search.File)
	setStr(&cfg.VLMBaseURL, fc.VLM.BaseURL)
	setStr(&cfg.VLMModel, fc.VLM.Model)
	setStr(&cfg.VLMAPIKey, fc.VLM.Key)
	setStr(&cfg.BrowserUserAgent, fc.Browser.UA)
	setDur := func(dst *time.Duration, v string) {
		if *dst != 0 || v == "" {
			return
		}
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			*dst = d
		}
	}
	setDur(&cfg.SearchTimeout, fc.Search.Timeout)
	setDur(&cfg.NavTimeout, fc.Nav.Timeout)
	if cfg.MaxResults == 0 && fc.Max.Results > 0 {
		cfg.MaxResults = fc.Max.Results
	}
	if cfg.VLMTemperature == 0 && fc.VLM.Temperature > 0 {
		cfg.VLMTemperature = fc.VLM.Temperature
	}
	if fc.Verbose {
		cfg.Verbose = true
	}
}
