package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Load builds the configuration from defaults, an optional TOML file, and
// environment variables, in that order (later wins). An empty path skips
// the file step.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overlays environment variables onto the configuration.
func applyEnv(cfg *Config) {
	setString(&cfg.Server.Addr, "DRIVEGUARD_HTTP_ADDR")
	setDuration(&cfg.Server.ShutdownTimeout, "DRIVEGUARD_SHUTDOWN_TIMEOUT")

	setBool(&cfg.Metrics.Enabled, "DRIVEGUARD_METRICS_ENABLED")
	setString(&cfg.Metrics.Addr, "DRIVEGUARD_METRICS_ADDR")

	setString(&cfg.Drive.RootFolderID, "DRIVEGUARD_ROOT_FOLDER_ID")

	setString(&cfg.Google.ClientID, "GOOGLE_CLIENT_ID")
	setString(&cfg.Google.ClientSecret, "GOOGLE_CLIENT_SECRET")
	setString(&cfg.Google.RedirectURL, "DRIVEGUARD_REDIRECT_URL")
	setString(&cfg.Google.TokenFile, "DRIVEGUARD_TOKEN_FILE")

	setString(&cfg.Log.Level, "DRIVEGUARD_LOG_LEVEL")
	setString(&cfg.Log.Format, "DRIVEGUARD_LOG_FORMAT")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			*dst = parsed
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			*dst = parsed
		}
	}
}
