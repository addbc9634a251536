package config

import (
	"fmt"
	"time"
)

// Config is the explicit runtime configuration for driveguard. Everything
// the process needs is carried here; packages never read ambient globals.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Metrics MetricsConfig `toml:"metrics"`
	Drive   DriveConfig   `toml:"drive"`
	Google  GoogleConfig  `toml:"google"`
	Log     LogConfig     `toml:"log"`
}

// ServerConfig holds the API server settings.
type ServerConfig struct {
	// Addr is the listen address for the API server (e.g. ":8080").
	Addr string `toml:"addr"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// MetricsConfig holds the dedicated metrics server settings.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Addr    string `toml:"addr"`
}

// DriveConfig holds the Drive-side settings.
type DriveConfig struct {
	// RootFolderID is the folder confining every operation. Uploads with
	// no explicit target folder land here.
	RootFolderID string `toml:"root_folder_id"`
}

// GoogleConfig holds the OAuth client settings.
type GoogleConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURL  string `toml:"redirect_url"`
	TokenFile    string `toml:"token_file"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level"`

	// Format is "text" or "json".
	Format string `toml:"format"`
}

// Default returns the configuration defaults applied before file and
// environment overrides.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 30 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    ":9090",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate checks that the configuration is complete enough to serve.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server addr is required")
	}
	if c.Drive.RootFolderID == "" {
		return fmt.Errorf("drive root folder id is required (set drive.root_folder_id or DRIVEGUARD_ROOT_FOLDER_ID)")
	}
	if c.Google.ClientID == "" || c.Google.ClientSecret == "" {
		return fmt.Errorf("google OAuth client credentials are required (set google.client_id/client_secret or GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET)")
	}
	if c.Metrics.Enabled && c.Metrics.Addr == "" {
		return fmt.Errorf("metrics addr is required when metrics are enabled")
	}
	return nil
}
