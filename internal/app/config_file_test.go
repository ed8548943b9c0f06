package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFileConfig_AppliesUnderFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "webcontext.yaml")
	data := `
output: from-file.md
mode: hybrid
searx:
  url: http://searx.local:8081
max:
  results: 5
vlm:
  base: http://localhost:11434/v1
  model: qwen3-vl:4b-instruct-bf16
  temperature: 0.2
nav:
  timeout: 20s
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	fc, err := LoadFileConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	// A flag-set value must win over the file.
	cfg := Config{OutputPath: "from-flag.md"}
	fc.Apply(&cfg)

	if cfg.OutputPath != "from-flag.md" {
		t.Fatalf("flag value overridden: %q", cfg.OutputPath)
	}
	if cfg.Mode != "hybrid" {
		t.Fatalf("mode = %q", cfg.Mode)
	}
	if cfg.SearxURL != "http://searx.local:8081" {
		t.Fatalf("searx url = %q", cfg.SearxURL)
	}
	if cfg.MaxResults != 5 {
		t.Fatalf("max results = %d", cfg.MaxResults)
	}
	if cfg.VLMModel != "qwen3-vl:4b-instruct-bf16" {
		t.Fatalf("vlm model = %q", cfg.VLMModel)
	}
	if cfg.VLMTemperature != 0.2 {
		t.Fatalf("vlm temperature = %v", cfg.VLMTemperature)
	}
	if cfg.NavTimeout != 20*time.Second {
		t.Fatalf("nav timeout = %v", cfg.NavTimeout)
	}
}

func TestLoadFileConfig_Missing(t *testing.T) {
	if _, err := LoadFileConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
