package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/keirinjingle/mofu/internal/refdata"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir == "" {
		t.Error("no default data dir")
	}
	if cfg.RidersURL != refdata.DefaultRidersURL {
		t.Errorf("riders URL = %q", cfg.RidersURL)
	}
	if cfg.RacesURLTemplate != refdata.DefaultRacesURLTemplate {
		t.Errorf("races URL template = %q", cfg.RacesURLTemplate)
	}
	if cfg.Serve.Port != 8791 {
		t.Errorf("serve port = %d, want 8791", cfg.Serve.Port)
	}
	if cfg.SyncConfigured() {
		t.Error("sync configured without an OAuth client")
	}
}

func TestLoadExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
data_dir: /tmp/mofu-test
serve:
  port: 9100
  allowed_origins:
    - "https://widget.example"
google:
  client_id: abc
  client_secret: xyz
log:
  file: /tmp/mofu-test/mofu.log
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != "/tmp/mofu-test" {
		t.Errorf("data dir = %q", cfg.DataDir)
	}
	if cfg.Serve.Port != 9100 {
		t.Errorf("port = %d", cfg.Serve.Port)
	}
	if !cfg.SyncConfigured() {
		t.Error("sync not configured despite client id/secret")
	}
	if cfg.Log.File != "/tmp/mofu-test/mofu.log" {
		t.Errorf("log file = %q", cfg.Log.File)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("missing explicit config file did not error")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("data_dir: [unterminated"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("malformed config did not error")
	}
}

func TestOriginAllowed(t *testing.T) {
	var cfg Config

	// The empty allow-list allows everything.
	if !cfg.OriginAllowed("https://anything.example") {
		t.Error("empty allow-list rejected an origin")
	}

	cfg.Serve.AllowedOrigins = []string{"https://widget.example"}
	if !cfg.OriginAllowed("https://widget.example") {
		t.Error("listed origin rejected")
	}
	if cfg.OriginAllowed("https://evil.example") {
		t.Error("unlisted origin allowed")
	}
	if cfg.OriginAllowed("https://widget.example.evil") {
		t.Error("prefix-matching origin allowed; matching must be exact")
	}
}

func TestLoggerPrefix(t *testing.T) {
	var cfg Config
	logger := cfg.Logger("[test] ")
	if logger.Prefix() != "[test] " {
		t.Errorf("prefix = %q", logger.Prefix())
	}
}
