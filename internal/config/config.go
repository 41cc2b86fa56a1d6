// Package config loads pickup's settings from .env, an optional config file
// in the state directory and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/smartwaste/pickup/pkg/domain"
)

// DefaultAPIURL is used when neither PICKUP_API_URL nor VITE_API_URL is set.
const DefaultAPIURL = "http://localhost:8000"

// Config holds all settings.
type Config struct {
	APIURL   string         `mapstructure:"api_url"`
	StateDir string         `mapstructure:"state_dir"`
	Env      string         `mapstructure:"env"`
	LogLevel string         `mapstructure:"log_level"`
	Timeout  time.Duration  `mapstructure:"timeout"`
	Location LocationConfig `mapstructure:"location"`
	Geo      GeoConfig      `mapstructure:"geo"`
}

// LocationConfig pins the user's coordinate instead of looking it up.
type LocationConfig struct {
	Lat float64 `mapstructure:"lat"`
	Lng float64 `mapstructure:"lng"`
}

// Fixed returns the configured coordinate, if any.
func (l LocationConfig) Fixed() (domain.Coordinate, bool) {
	c := domain.Coordinate{Lat: l.Lat, Lng: l.Lng}
	return c, !c.IsZero()
}

// GeoConfig controls the IP-based location lookup.
type GeoConfig struct {
	IPLookup  bool   `mapstructure:"ip_lookup"`
	LookupURL string `mapstructure:"lookup_url"`
}

// Load reads .env from the working directory and then the rest.
func Load() (*Config, error) {
	return load(".env")
}

func load(dotenv string) (*Config, error) {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config.Load: %s: %w", dotenv, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix("PICKUP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	v.BindEnv("api_url", "PICKUP_API_URL", "VITE_API_URL") //nolint:errcheck
	v.BindEnv("env", "PICKUP_ENV", "APP_ENV")              //nolint:errcheck

	stateDir, err := expandHome(v.GetString("state_dir"))
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	v.Set("state_dir", stateDir)

	v.SetConfigFile(filepath.Join(stateDir, "config.yaml"))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config.Load: read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_url", DefaultAPIURL)
	v.SetDefault("state_dir", "~/.pickup")
	v.SetDefault("env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("location.lat", 0.0)
	v.SetDefault("location.lng", 0.0)
	v.SetDefault("geo.ip_lookup", true)
	v.SetDefault("geo.lookup_url", "https://ipapi.co/json/")
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

// APIBaseURL strips trailing slashes from raw and appends "/api/".
func APIBaseURL(raw string) string {
	return strings.TrimRight(raw, "/") + "/api/"
}

// BaseURL is the API root every request path is resolved against.
func (c *Config) BaseURL() string { return APIBaseURL(c.APIURL) }

// IsProduction reports whether env is "production".
func (c *Config) IsProduction() bool { return c.Env == "production" }

// SessionPath is where the session record lives.
func (c *Config) SessionPath() string { return filepath.Join(c.StateDir, "session.json") }

// LogPath is where the log file lives.
func (c *Config) LogPath() string { return filepath.Join(c.StateDir, "pickup.log") }
