package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds the client configuration. Values come from an optional TOML
// file overridden by TICKBOARD_* environment variables.
type Config struct {
	APIURL    string        // TICKBOARD_API_URL (required): gateway base URL
	AuthToken string        // TICKBOARD_AUTH_TOKEN (default "test"): static credential, passed through
	Timeout   time.Duration // TICKBOARD_TIMEOUT (default 10s; 0 = no deadline)
	LogLevel  string        // TICKBOARD_LOG_LEVEL (default "info")
	LogFile   string        // TICKBOARD_LOG_FILE (default state dir; stdout is the TUI's)
}

// fileConfig mirrors Config for the TOML file, durations as strings.
type fileConfig struct {
	APIURL    string `toml:"api_url"`
	AuthToken string `toml:"auth_token"`
	Timeout   string `toml:"timeout"`
	LogLevel  string `toml:"log_level"`
	LogFile   string `toml:"log_file"`
}

// Load reads the default config file location, then the environment.
func Load() (*Config, error) {
	path, err := defaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads the given TOML file (a missing file is not an error) and
// applies environment overrides.
func LoadFile(path string) (*Config, error) {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	c := &Config{
		APIURL:    override("TICKBOARD_API_URL", fc.APIURL),
		AuthToken: override("TICKBOARD_AUTH_TOKEN", fc.AuthToken),
		LogLevel:  override("TICKBOARD_LOG_LEVEL", fc.LogLevel),
		LogFile:   override("TICKBOARD_LOG_FILE", fc.LogFile),
	}

	if c.APIURL == "" {
		return nil, fmt.Errorf("TICKBOARD_API_URL is required")
	}
	if c.AuthToken == "" {
		c.AuthToken = "test"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFile == "" {
		logFile, err := defaultLogPath()
		if err != nil {
			return nil, err
		}
		c.LogFile = logFile
	}

	timeoutStr := override("TICKBOARD_TIMEOUT", fc.Timeout)
	if timeoutStr == "" {
		timeoutStr = "10s"
	}
	d, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("TICKBOARD_TIMEOUT: %w", err)
	}
	c.Timeout = d

	return c, nil
}

func override(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// defaultConfigPath returns $XDG_CONFIG_HOME/tickboard/config.toml
func defaultConfigPath() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "tickboard", "config.toml"), nil
}

// defaultLogPath returns $XDG_STATE_HOME/tickboard/tickboard.log,
// creating the directory.
func defaultLogPath() (string, error) {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		stateDir = filepath.Join(home, ".local", "state")
	}

	appDir := filepath.Join(stateDir, "tickboard")
	if err := os.MkdirAll(appDir, 0755); err != nil {
		return "", err
	}
	return filepath.Join(appDir, "tickboard.log"), nil
}
