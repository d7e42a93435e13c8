package internal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// HarvestConfig tunes the incremental collector
type HarvestConfig struct {
	PaginationDelayMS   int `yaml:"pagination_delay_ms" toml:"pagination_delay_ms"`
	StepPX              int `yaml:"step_px" toml:"step_px"`
	MinProgressPX       int `yaml:"min_progress_px" toml:"min_progress_px"`
	MaxAttempts         int `yaml:"max_attempts" toml:"max_attempts"`
	NoProgressThreshold int `yaml:"no_progress_threshold" toml:"no_progress_threshold"`
}

// PaginationDelay returns the configured delay as a duration
func (h HarvestConfig) PaginationDelay() time.Duration {
	return time.Duration(h.PaginationDelayMS) * time.Millisecond
}

// BrowserConfig controls how the chat client is reached
type BrowserConfig struct {
	RemoteURL      string `yaml:"remote_url" toml:"remote_url"`
	ChromePath     string `yaml:"chrome_path" toml:"chrome_path"`
	Headless       bool   `yaml:"headless" toml:"headless"`
	TimeoutSeconds int    `yaml:"timeout_seconds" toml:"timeout_seconds"`
}

// Timeout returns the overall harvest timeout
func (b BrowserConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

// StoreConfig locates the thread archive
type StoreConfig struct {
	Path        string `yaml:"path" toml:"path"`
	SnapshotDir string `yaml:"snapshot_dir" toml:"snapshot_dir"`
}

// SummaryConfig selects the summarization model
type SummaryConfig struct {
	Model     string `yaml:"model" toml:"model"`
	APIKeyEnv string `yaml:"api_key_env" toml:"api_key_env"`
}

// Config is the full tool configuration
type Config struct {
	Harvest HarvestConfig `yaml:"harvest" toml:"harvest"`
	Browser BrowserConfig `yaml:"browser" toml:"browser"`
	Store   StoreConfig   `yaml:"store" toml:"store"`
	Summary SummaryConfig `yaml:"summary" toml:"summary"`
}

// DefaultHarvestConfig returns the collector defaults
func DefaultHarvestConfig() HarvestConfig {
	return HarvestConfig{
		PaginationDelayMS:   400,
		StepPX:              600,
		MinProgressPX:       100,
		MaxAttempts:         300,
		NoProgressThreshold: 12,
	}
}

// DefaultConfig returns the configuration used when no file is present
func DefaultConfig() *Config {
	dataDir, err := DataDir()
	if err != nil {
		dataDir = dataDirName
	}
	return &Config{
		Harvest: DefaultHarvestConfig(),
		Browser: BrowserConfig{
			Headless:       true,
			TimeoutSeconds: 180,
		},
		Store: StoreConfig{
			Path:        filepath.Join(dataDir, "threads.db"),
			SnapshotDir: filepath.Join(dataDir, "snapshots"),
		},
		Summary: SummaryConfig{
			Model:     "gpt-4.1-mini",
			APIKeyEnv: "OPENAI_API_KEY",
		},
	}
}

// DefaultConfigPaths lists the files LoadConfig tries when no path is given
func DefaultConfigPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	dir := filepath.Join(home, ".config", "thread-harvest")
	return []string{
		filepath.Join(dir, "config.yaml"),
		filepath.Join(dir, "config.toml"),
	}
}

// LoadConfig reads the configuration file at path. With an empty path the
// default locations are tried and a missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		for _, candidate := range DefaultConfigPaths() {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			LogDebug("No config file found, using defaults")
			return DefaultConfig(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}

	cfg, err := ParseConfig(data, filepath.Ext(path))
	if err != nil {
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			cfgErr.Path = path
			return nil, cfgErr
		}
		return nil, &ConfigError{Path: path, Err: err}
	}
	LogDebug("Loaded config from %s", path)
	return cfg, nil
}

// ParseConfig decodes data on top of the defaults, so keys absent from the
// file keep their default values. ext selects the format: ".toml" decodes
// TOML, anything else YAML.
func ParseConfig(data []byte, ext string) (*Config, error) {
	cfg := DefaultConfig()
	if strings.EqualFold(ext, ".toml") {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to decode toml: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode yaml: %w", err)
		}
	}
	cfg.Store.Path = expandHome(cfg.Store.Path)
	cfg.Store.SnapshotDir = expandHome(cfg.Store.SnapshotDir)
	cfg.Browser.ChromePath = expandHome(cfg.Browser.ChromePath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Encode writes cfg to w as TOML when format is "toml", YAML otherwise
func (c *Config) Encode(w io.Writer, format string) error {
	if strings.EqualFold(format, "toml") {
		return toml.NewEncoder(w).Encode(c)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

// Merge returns h with every non-zero field of other applied
func (h HarvestConfig) Merge(other HarvestConfig) HarvestConfig {
	if other.PaginationDelayMS != 0 {
		h.PaginationDelayMS = other.PaginationDelayMS
	}
	if other.StepPX != 0 {
		h.StepPX = other.StepPX
	}
	if other.MinProgressPX != 0 {
		h.MinProgressPX = other.MinProgressPX
	}
	if other.MaxAttempts != 0 {
		h.MaxAttempts = other.MaxAttempts
	}
	if other.NoProgressThreshold != 0 {
		h.NoProgressThreshold = other.NoProgressThreshold
	}
	return h
}

// Validate checks that every collector parameter is a positive integer
func (h HarvestConfig) Validate() error {
	fields := []struct {
		name  string
		value int
	}{
		{"harvest.pagination_delay_ms", h.PaginationDelayMS},
		{"harvest.step_px", h.StepPX},
		{"harvest.min_progress_px", h.MinProgressPX},
		{"harvest.max_attempts", h.MaxAttempts},
		{"harvest.no_progress_threshold", h.NoProgressThreshold},
	}
	for _, f := range fields {
		if f.value <= 0 {
			return &ConfigError{Field: f.name, Err: fmt.Errorf("must be positive, got %d", f.value)}
		}
	}
	return nil
}

// Validate checks the whole configuration
func (c *Config) Validate() error {
	if err := c.Harvest.Validate(); err != nil {
		return err
	}
	if c.Browser.TimeoutSeconds < 0 {
		return &ConfigError{Field: "browser.timeout_seconds", Err: fmt.Errorf("must not be negative, got %d", c.Browser.TimeoutSeconds)}
	}
	if c.Store.Path == "" {
		return &ConfigError{Field: "store.path", Err: errors.New("must not be empty")}
	}
	return nil
}

// APIKey reads the summarizer key from the configured environment variable
func (s SummaryConfig) APIKey() string {
	return os.Getenv(s.APIKeyEnv)
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
