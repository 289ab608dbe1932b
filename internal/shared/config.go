package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

const redacted = "********"

// Config represents the application configuration.
//
// Values are layered: embedded defaults, then the TOML file, then environment variables.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials" json:"credentials"`
	Server      ServerConfig      `toml:"server" json:"server"`
	Frontend    FrontendConfig    `toml:"frontend" json:"frontend"`
	Log         LogConfig         `toml:"log" json:"log"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify" json:"spotify"`
}

// SpotifyConfig contains Spotify API credentials and endpoints.
//
// Empty endpoints fall back to the public Spotify accounts and Web API hosts.
type SpotifyConfig struct {
	ClientID     string   `toml:"client_id" json:"client_id" env:"SPOTIFY_CLIENT_ID"`
	ClientSecret string   `toml:"client_secret" json:"client_secret" env:"SPOTIFY_CLIENT_SECRET"`
	RedirectURI  string   `toml:"redirect_uri" json:"redirect_uri" env:"SPOTIFY_REDIRECT_URI"`
	Scopes       []string `toml:"scopes" json:"scopes" env:"SPOTIFY_SCOPES" envSeparator:","`
	AuthURL      string   `toml:"auth_url" json:"auth_url,omitempty" env:"SPOTIFY_AUTH_URL"`
	TokenURL     string   `toml:"token_url" json:"token_url,omitempty" env:"SPOTIFY_TOKEN_URL"`
	APIURL       string   `toml:"api_url" json:"api_url,omitempty" env:"SPOTIFY_API_URL"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host           string   `toml:"host" json:"host" env:"HOST"`
	Port           int      `toml:"port" json:"port" env:"PORT"`
	TimeoutSeconds int      `toml:"timeout_seconds" json:"timeout_seconds" env:"UPSTREAM_TIMEOUT_SECONDS"`
	AllowedOrigins []string `toml:"allowed_origins" json:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

// FrontendConfig describes the browser application the relay redirects to after login.
type FrontendConfig struct {
	Origin string `toml:"origin" json:"origin" env:"FRONTEND_ORIGIN"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level" json:"level" env:"LOG_LEVEL"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their embedded default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// ResolveConfig builds the effective configuration.
//
// The file at path is optional; when it does not exist the embedded defaults are used.
// Environment variables are applied last.
func ResolveConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if config, err = LoadConfig(path); err != nil {
				return nil, err
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}

	config.applyDefaults()
	return config, nil
}

// ApplyEnv overrides configuration values with any environment variables that are set.
func (c *Config) ApplyEnv() error {
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("%w: parse env: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if len(c.Server.AllowedOrigins) == 0 && c.Frontend.Origin != "" {
		c.Server.AllowedOrigins = []string{c.Frontend.Origin}
	}
}

// LoadDotEnv loads variables from a dotenv file into the process environment.
//
// A missing file is not an error. Variables already present in the environment win.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Validate reports every missing credential and malformed value at once.
//
// The server refuses to start when this returns an error.
func (c *Config) Validate() error {
	var errs []error

	sp := c.Credentials.Spotify
	for _, field := range []struct{ name, value string }{
		{"client_id", sp.ClientID},
		{"client_secret", sp.ClientSecret},
		{"redirect_uri", sp.RedirectURI},
	} {
		if strings.TrimSpace(field.value) == "" {
			errs = append(errs, fmt.Errorf("%w: spotify %s is not set", ErrMissingCredentials, field.name))
		}
	}

	for _, field := range []struct{ name, value string }{
		{"spotify redirect_uri", sp.RedirectURI},
		{"spotify auth_url", sp.AuthURL},
		{"spotify token_url", sp.TokenURL},
		{"spotify api_url", sp.APIURL},
	} {
		if strings.TrimSpace(field.value) == "" {
			continue
		}
		if err := validateHTTPURL(field.value); err != nil {
			errs = append(errs, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, field.name, err))
		}
	}

	if err := validateHTTPURL(c.Frontend.Origin); err != nil {
		errs = append(errs, fmt.Errorf("%w: frontend origin: %v", ErrInvalidConfig, err))
	}

	for _, origin := range c.Server.AllowedOrigins {
		if origin == "*" {
			continue
		}
		if err := validateHTTPURL(origin); err != nil {
			errs = append(errs, fmt.Errorf("%w: allowed origin %q: %v", ErrInvalidConfig, origin, err))
		}
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("%w: server port %d out of range", ErrInvalidConfig, c.Server.Port))
	}

	if c.Server.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("%w: timeout_seconds must not be negative", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// Addr returns the host:port the HTTP server listens on.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// UpstreamTimeout bounds each outbound call to the provider. Zero disables the bound.
func (s ServerConfig) UpstreamTimeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// Redacted returns a copy of the configuration that is safe to print.
func (c Config) Redacted() Config {
	if c.Credentials.Spotify.ClientSecret != "" {
		c.Credentials.Spotify.ClientSecret = redacted
	}
	return c
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
