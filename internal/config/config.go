// Package config loads client settings from the environment, an optional
// .env file and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const dirName = ".marquee"

type Config struct {
	APIURL  string        `yaml:"api_url" env:"MARQUEE_API_URL" env-default:"http://localhost:8000/api" env-description:"movie API base URL"`
	WebURL  string        `yaml:"web_url" env:"MARQUEE_WEB_URL" env-default:"http://localhost:5173" env-description:"web app URL used for links"`
	Timeout time.Duration `yaml:"timeout" env:"MARQUEE_TIMEOUT" env-default:"10s" env-description:"per-request timeout"`
	Limiter Limiter       `yaml:"limiter"`
	// DataDir holds the token file and the log. Defaults to ~/.marquee.
	DataDir  string `yaml:"data_dir" env:"MARQUEE_HOME" env-description:"directory for tokens and logs"`
	PageSize int    `yaml:"page_size" env:"MARQUEE_PAGE_SIZE" env-default:"10" env-description:"movies per page"`
	Debug    bool   `yaml:"debug" env:"MARQUEE_DEBUG" env-default:"false" env-description:"debug logging"`
}

type Limiter struct {
	Rps   float64 `yaml:"rps" env:"MARQUEE_RATE_LIMIT" env-default:"0" env-description:"max requests per second, 0 disables"`
	Burst int     `yaml:"burst" env:"MARQUEE_RATE_BURST" env-default:"5" env-description:"request burst size"`
}

// TokenPath is where the token store lives.
func (c *Config) TokenPath() string { return filepath.Join(c.DataDir, "tokens.json") }

// LogPath is where the TUI writes its log.
func (c *Config) LogPath() string { return filepath.Join(c.DataDir, "marquee.log") }

// Load reads .env from the working directory (without overriding the real
// environment), then path if it exists, then the environment. An empty
// path means DefaultPath().
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: .env: %w", err)
	}
	if path == "" {
		path = DefaultPath()
	}

	var cfg Config
	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: env: %w", err)
	}

	if cfg.DataDir == "" {
		cfg.DataDir = defaultDir()
	}
	if cfg.PageSize < 1 {
		cfg.PageSize = 10
	}
	return &cfg, nil
}

// DefaultPath is the YAML file consulted when no path is given.
func DefaultPath() string {
	if p := os.Getenv("MARQUEE_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(defaultDir(), "config.yml")
}

// Describe lists the supported environment variables.
func Describe() string {
	header := "Environment:"
	text, err := cleanenv.GetDescription(&Config{}, &header)
	if err != nil {
		return header
	}
	return text
}

func defaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return dirName
	}
	return filepath.Join(home, dirName)
}
