package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	// DataDir is the directory holding the collection files and impression
	// markdown files.
	DataDir string `yaml:"dataDir"`

	// Addr is the listen address of the web front end.
	Addr string `yaml:"addr"`

	// OpenBDBaseURL overrides the bibliographic lookup endpoint, mainly for
	// tests. Empty selects the public OpenBD API.
	OpenBDBaseURL string `yaml:"openbdBaseURL"`

	// SiteDir is where the static site generator writes its output.
	SiteDir string `yaml:"siteDir"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel"`
}

// Load builds the configuration from an optional YAML file overridden by
// environment variables. path may be empty; a missing file is not an error,
// defaults apply instead.
func Load(path string) (*Config, error) {
	cfg := &Config{
		DataDir:  "data",
		Addr:     ":8080",
		SiteDir:  "site",
		LogLevel: "info",
	}

	if path == "" {
		path = os.Getenv("BOOKLOG_CONFIG")
	}
	if path == "" {
		path = "booklog.yaml"
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// No config file, env and defaults only.
	case err != nil:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg.DataDir, "BOOKLOG_DATA_DIR")
	applyEnv(&cfg.Addr, "BOOKLOG_ADDR")
	applyEnv(&cfg.OpenBDBaseURL, "BOOKLOG_OPENBD_URL")
	applyEnv(&cfg.SiteDir, "BOOKLOG_SITE_DIR")
	applyEnv(&cfg.LogLevel, "BOOKLOG_LOG_LEVEL")

	if cfg.DataDir == "" {
		return nil, fmt.Errorf("data directory must not be empty")
	}
	return cfg, nil
}

func applyEnv(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}
