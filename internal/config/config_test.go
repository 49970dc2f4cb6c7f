package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", p, err)
	}
	return p
}

func TestLoadOverridesAndDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
server:
  port: 9443
  max_body_size: 2MiB
signing:
  concurrency: 4
logging:
  level: debug
  format: json
observability:
  metrics: false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 9443 {
		t.Errorf("Server.Port = %d, want 9443", cfg.Server.Port)
	}
	if cfg.Server.Host != DefaultHost {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, DefaultHost)
	}
	if cfg.Server.HomepageURL != DefaultHomepageURL {
		t.Errorf("Server.HomepageURL = %q, want default", cfg.Server.HomepageURL)
	}
	if cfg.Signing.Concurrency != 4 {
		t.Errorf("Signing.Concurrency = %d, want 4", cfg.Signing.Concurrency)
	}
	if cfg.Signing.Scheme != "https" {
		t.Errorf("Signing.Scheme = %q, want https", cfg.Signing.Scheme)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want debug/json", cfg.Logging)
	}
	if cfg.Observability.Metrics {
		t.Error("Observability.Metrics = true, want false")
	}
	if !cfg.Observability.HealthCheck {
		t.Error("Observability.HealthCheck = false, want default true")
	}

	n, err := cfg.Server.MaxBodyBytes()
	if err != nil {
		t.Fatalf("MaxBodyBytes() error: %v", err)
	}
	if n != 2*1024*1024 {
		t.Errorf("MaxBodyBytes() = %d, want %d", n, 2*1024*1024)
	}
}

func TestLoadFallbackToExample(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "lfsgate.example.yaml", "server:\n  port: 7000\n")

	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %d, want 7000 from fallback", cfg.Server.Port)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Load() succeeded for a missing file with no fallback")
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad yaml", "server: [unterminated"},
		{"bad scheme", "signing:\n  scheme: ftp\n"},
		{"bad size", "server:\n  max_body_size: lots\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "config.yaml", tt.content)
			if _, err := Load(path); err == nil {
				t.Fatal("Load() succeeded, want error")
			}
		})
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error: %v", err)
	}
	n, err := cfg.Server.MaxBodyBytes()
	if err != nil {
		t.Fatalf("MaxBodyBytes() error: %v", err)
	}
	if n != 1024*1024 {
		t.Errorf("MaxBodyBytes() = %d, want 1MiB", n)
	}
}
