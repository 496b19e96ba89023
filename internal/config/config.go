package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/julianstephens/guardian/internal/constants"
)

// EnvPrefix is prepended to every variable read by Load
const EnvPrefix = "GUARDIAN_"

// Config holds the client configuration
type Config struct {
	APIURL           string        `env:"API_URL" envDefault:"http://localhost:8080/api/v1"`
	Token            string        `env:"TOKEN"`
	Locale           string        `env:"LOCALE" envDefault:"en-US"`
	ConfigDir        string        `env:"CONFIG_DIR" envDefault:"~/.config/guardian"`
	Timeout          time.Duration `env:"TIMEOUT" envDefault:"15s"`
	Debug            bool          `env:"DEBUG"`
	LeaderboardLimit int           `env:"LEADERBOARD_LIMIT" envDefault:"100"`
}

// Load reads an optional dotenv file and then the process environment.
// Variables already present in the environment win over the dotenv file.
func Load(dotenvPath string) (Config, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", dotenvPath, err)
		}
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	dir, err := ExpandHome(cfg.ConfigDir)
	if err != nil {
		return Config{}, err
	}
	cfg.ConfigDir = dir

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that can't be expressed as struct tags
func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("invalid API URL %q: %w", c.APIURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid API URL %q: scheme must be http or https", c.APIURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.LeaderboardLimit < 1 || c.LeaderboardLimit > constants.MaxLeaderboardLimit {
		return fmt.Errorf("leaderboard limit must be between 1 and %d, got %d", constants.MaxLeaderboardLimit, c.LeaderboardLimit)
	}
	return nil
}

// CachePath returns the location of the local current-user cache
func (c Config) CachePath() string {
	return filepath.Join(c.ConfigDir, constants.CacheFileName)
}

// ExpandHome resolves a leading "~" to the user's home directory
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
