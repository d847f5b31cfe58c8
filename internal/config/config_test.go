package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/claimshield/claimshield/internal/workflow"
)

// clearEnv unsets every variable Load reads and restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvBaseURL, EnvBaseURLLegacy, EnvTimeout, EnvLogLevel, EnvLogFormat} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Chdir(t.TempDir())
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("base url = %q", cfg.BaseURL)
	}
	if cfg.Timeout != 0 {
		t.Errorf("timeout = %v, want none", cfg.Timeout)
	}
	if cfg.Narrative != workflow.DefaultNarrative {
		t.Errorf("narrative = %q", cfg.Narrative)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "claimshield.yaml")
	if err := os.WriteFile(path, []byte("base_url: http://analysis.internal:9000/\ntimeout: 45s\nlog_format: json\nnarrative: rear-ended at a light\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BaseURL != "http://analysis.internal:9000" {
		t.Errorf("base url = %q", cfg.BaseURL)
	}
	if time.Duration(cfg.Timeout) != 45*time.Second {
		t.Errorf("timeout = %v", cfg.Timeout)
	}
	if cfg.LogFormat != "json" || cfg.Narrative != "rear-ended at a light" {
		t.Errorf("cfg = %+v", cfg)
	}

	t.Setenv(EnvBaseURL, "https://claims.example.com")
	t.Setenv(EnvTimeout, "2m")
	cfg, err = Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BaseURL != "https://claims.example.com" || time.Duration(cfg.Timeout) != 2*time.Minute {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestLoad_LegacyEnvAndDotEnv(t *testing.T) {
	clearEnv(t)
	if err := os.WriteFile(".env", []byte("API_BASE_URL=http://dotenv.local:8000\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv(EnvBaseURLLegacy) })

	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.BaseURL != "http://dotenv.local:8000" {
		t.Errorf("base url = %q", cfg.BaseURL)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		file string
		want string
	}{
		{"relative url", map[string]string{EnvBaseURL: "localhost:8000"}, "", "invalid base url"},
		{"ftp url", map[string]string{EnvBaseURL: "ftp://x"}, "", "invalid base url"},
		{"bad timeout", map[string]string{EnvTimeout: "soon"}, "", "invalid timeout"},
		{"bad format", map[string]string{EnvLogFormat: "xml"}, "", "unsupported log format"},
		{"bad yaml", nil, "base_url: [", "parse config"},
		{"bad yaml timeout", nil, "timeout: -5s", "negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = filepath.Join(t.TempDir(), "c.yaml")
				if err := os.WriteFile(path, []byte(tt.file), 0o644); err != nil {
					t.Fatal(err)
				}
			}
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), DefaultPath)
	want := Default()
	want.Timeout = Duration(10 * time.Second)
	if err := Write(path, want); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}
