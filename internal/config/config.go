package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/claimshield/claimshield/internal/workflow"
)

const (
	DefaultPath    = "claimshield.yaml"
	DefaultBaseURL = "http://localhost:8000"

	EnvBaseURL       = "CLAIMSHIELD_API_BASE_URL"
	EnvBaseURLLegacy = "API_BASE_URL"
	EnvTimeout       = "CLAIMSHIELD_TIMEOUT"
	EnvLogLevel      = "CLAIMSHIELD_LOG_LEVEL"
	EnvLogFormat     = "CLAIMSHIELD_LOG_FORMAT"
)

// Config is the process-wide client configuration.
type Config struct {
	BaseURL   string   `yaml:"base_url"`
	Timeout   Duration `yaml:"timeout"`
	Narrative string   `yaml:"narrative"`
	LogLevel  string   `yaml:"log_level"`
	LogFormat string   `yaml:"log_format"`
}

// Duration reads Go duration strings ("30s") from YAML. Zero means no
// timeout.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := parseTimeout(raw)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	if d == 0 {
		return "0s", nil
	}
	return time.Duration(d).String(), nil
}

func Default() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		Narrative: workflow.DefaultNarrative,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load layers defaults, the YAML file at path (skipped when absent), .env
// and environment variables, then validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	_ = godotenv.Load()

	if v := firstNonEmpty(os.Getenv(EnvBaseURL), os.Getenv(EnvBaseURLLegacy)); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTimeout)); v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		cfg.Timeout = Duration(d)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.LogFormat = v
	}
	if strings.TrimSpace(cfg.Narrative) == "" {
		cfg.Narrative = workflow.DefaultNarrative
	}
	return cfg, cfg.Normalize()
}

// Normalize validates the base URL and trims its trailing slash.
func (c *Config) Normalize() error {
	base := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	u, err := url.Parse(base)
	if err != nil {
		return fmt.Errorf("invalid base url %q: %w", c.BaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid base url %q: want absolute http(s) URL", c.BaseURL)
	}
	c.BaseURL = base
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unsupported log format %q (want text|json)", c.LogFormat)
	}
	return nil
}

// Write stores cfg as YAML at path.
func Write(path string, cfg Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, raw, 0o644)
}

func parseTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid timeout %q: negative", raw)
	}
	return d, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
