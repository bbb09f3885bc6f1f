package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Brownie44l1/soil-api/internal/model"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(strings.TrimSpace(body)), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	t.Setenv("PORT", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.Server.Port)
	}
	p := cfg.Provider()
	if p.Strategy != model.StrategyRemote || p.ModelPath() != filepath.Join("models", "Model_Fix.onnx") {
		t.Fatalf("unexpected provider config: %+v", p)
	}
	if p.Metadata.ImageSize != 224 || p.Metadata.Layout != model.LayoutNHWC {
		t.Fatalf("unexpected metadata: %+v", p.Metadata)
	}
	if cfg.DownloadTimeout() != 0 {
		t.Fatalf("expected no download timeout by default")
	}
}

func TestLoadParsesYaml(t *testing.T) {
	t.Setenv("PORT", "")
	path := writeConfig(t, `
server:
  port: "9090"
model:
  strategy: local
  structure_path: assets/model.json
  weights_path: assets/weights.onnx
  layout: nchw
  download_timeout_ms: 1500
history:
  database_url: postgres://soil@localhost/soil?sslmode=disable
  capacity: 5
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("expected port 9090, got %s", cfg.Server.Port)
	}
	p := cfg.Provider()
	if p.Strategy != model.StrategyLocal || p.WeightsPath != "assets/weights.onnx" {
		t.Fatalf("unexpected provider config: %+v", p)
	}
	if p.Metadata.Layout != model.LayoutNCHW {
		t.Fatalf("expected nchw layout, got %s", p.Metadata.Layout)
	}
	if cfg.Server.MaxUploadBytes != 10<<20 {
		t.Fatalf("unset fields should keep defaults, got %d", cfg.Server.MaxUploadBytes)
	}
	if cfg.DownloadTimeout() != 1500*time.Millisecond {
		t.Fatalf("unexpected timeout %v", cfg.DownloadTimeout())
	}
	if cfg.History.Capacity != 5 || cfg.History.DatabaseURL == "" {
		t.Fatalf("unexpected history config %+v", cfg.History)
	}
}

func TestLoadPortOverride(t *testing.T) {
	t.Setenv("PORT", "7000")
	cfg, err := Load(writeConfig(t, "server:\n  port: \"9090\""))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != "7000" {
		t.Fatalf("expected PORT override, got %s", cfg.Server.Port)
	}
}

func TestLoadValidation(t *testing.T) {
	t.Setenv("PORT", "")
	cases := map[string]string{
		"strategy":   "model:\n  strategy: ftp",
		"url":        "model:\n  url: \"\"",
		"layout":     "model:\n  layout: hwc",
		"image size": "model:\n  image_size: -1",
		"local":      "model:\n  strategy: local\n  weights_path: \"\"",
		"capacity":   "history:\n  capacity: 0",
	}
	for name, body := range cases {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestLoadMalformed(t *testing.T) {
	if _, err := Load(writeConfig(t, "server: [")); err == nil {
		t.Fatalf("expected parse error")
	}
}
