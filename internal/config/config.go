// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads blockza-mcp settings from defaults, an optional YAML
// file, a .env file and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tombee/blockza-mcp/internal/tracing"
	pkgerrors "github.com/tombee/blockza-mcp/pkg/errors"
)

// ErrInvalidConfig is wrapped by Validate failures.
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	// DefaultServerName is reported to MCP clients during initialization.
	DefaultServerName = "blockza-mcp"

	// DefaultServerVersion is reported to MCP clients during initialization.
	DefaultServerVersion = "1.0.0"

	// DefaultCallsPerMinute bounds tool calls across all clients.
	DefaultCallsPerMinute = 600

	// DefaultAddr is the listen address for the HTTP transports.
	DefaultAddr = ":8000"

	// DefaultUpstreamTimeout bounds each upstream request.
	DefaultUpstreamTimeout = 10 * time.Second

	defaultBaseURL        = "https://blockza.io/api"
	defaultExpertsBaseURL = "https://experts.blockza.io/api"
)

// Config is the complete blockza-mcp configuration.
type Config struct {
	Server   ServerConfig           `yaml:"server"`
	Upstream UpstreamConfig         `yaml:"upstream"`
	Limits   map[string]LimitConfig `yaml:"limits,omitempty"`
	Tracing  TracingConfig          `yaml:"tracing"`
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	// Name is the server name advertised to clients.
	// Environment: SERVER_NAME
	Name string `yaml:"name"`

	// Version is the server version advertised to clients.
	// Environment: SERVER_VERSION
	Version string `yaml:"version"`

	// CallsPerMinute caps tool calls per minute. 0 disables the limit.
	// Environment: BLOCKZA_CALLS_PER_MINUTE
	// Default: 600
	CallsPerMinute int `yaml:"calls_per_minute"`

	// Transport is one of stdio, http or sse.
	// Environment: BLOCKZA_TRANSPORT
	// Default: stdio
	Transport string `yaml:"transport,omitempty"`

	// Addr is the listen address for http and sse.
	// Environment: BLOCKZA_ADDR
	// Default: :8000
	Addr string `yaml:"addr,omitempty"`

	// ShutdownTimeout bounds graceful shutdown of the HTTP transports.
	// Default: 5s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout,omitempty"`
}

// UpstreamConfig configures the Blockza API client.
type UpstreamConfig struct {
	// Environment: BLOCKZA_EVENTS_URL
	EventsURL string `yaml:"events_url"`
	// Environment: BLOCKZA_PODCASTS_URL
	PodcastsURL string `yaml:"podcasts_url"`
	// Environment: BLOCKZA_DIRECTORY_URL
	DirectoryURL string `yaml:"directory_url"`
	// Environment: BLOCKZA_EXPERTS_URL
	ExpertsURL string `yaml:"experts_url"`
	// Environment: BLOCKZA_BOOKINGS_URL
	BookingsURL string `yaml:"bookings_url"`

	// Timeout bounds each upstream request. The environment accepts a Go
	// duration ("15s") or a number of seconds.
	// Environment: BLOCKZA_TIMEOUT
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// RatePerSecond caps outbound requests. 0 disables the limit.
	// Environment: BLOCKZA_RATE_PER_SECOND
	RatePerSecond float64 `yaml:"rate_per_second"`

	// UserAgent is sent with every upstream request.
	// Environment: BLOCKZA_USER_AGENT
	UserAgent string `yaml:"user_agent,omitempty"`
}

// TracingConfig configures span export for upstream requests.
type TracingConfig struct {
	// Exporter is one of none, stdout, otlp or otlp-http.
	// Environment: BLOCKZA_TRACE_EXPORTER
	// Default: none
	Exporter string `yaml:"exporter"`

	// Endpoint is the OTLP collector host:port.
	// Environment: BLOCKZA_TRACE_ENDPOINT
	Endpoint string `yaml:"endpoint,omitempty"`

	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure,omitempty"`

	// SampleRate is the fraction of traces recorded.
	// Environment: BLOCKZA_TRACE_SAMPLE_RATE
	// Default: 1
	SampleRate *float64 `yaml:"sample_rate,omitempty"`
}

// Rate returns the sample rate, defaulting to 1.
func (t TracingConfig) Rate() float64 {
	if t.SampleRate == nil {
		return 1
	}
	return *t.SampleRate
}

// LimitConfig overrides the default and ceiling of one tool's limit argument.
type LimitConfig struct {
	Default int `yaml:"default"`
	Max     int `yaml:"max"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Name:            DefaultServerName,
			Version:         DefaultServerVersion,
			CallsPerMinute:  DefaultCallsPerMinute,
			Transport:       "stdio",
			Addr:            DefaultAddr,
			ShutdownTimeout: 5 * time.Second,
		},
		Upstream: UpstreamConfig{
			EventsURL:    defaultBaseURL,
			PodcastsURL:  defaultBaseURL,
			DirectoryURL: defaultBaseURL,
			ExpertsURL:   defaultExpertsBaseURL,
			BookingsURL:  defaultExpertsBaseURL,
			Timeout:      DefaultUpstreamTimeout,
		},
		Tracing: TracingConfig{
			Exporter: "none",
		},
	}
}

// Load builds the configuration. If configPath is empty the default config
// file is used when it exists. A .env file in the working directory is
// loaded into the environment without overriding variables already set.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath == "" {
		if p, err := ConfigPath(); err == nil {
			if _, statErr := os.Stat(p); statErr == nil {
				configPath = p
			}
		}
	}

	if configPath != "" {
		if err := cfg.loadFromFile(configPath); err != nil {
			return nil, &pkgerrors.ConfigError{
				Key:    "config_file",
				Reason: fmt.Sprintf("failed to load from %s", configPath),
				Cause:  err,
			}
		}
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, &pkgerrors.ConfigError{
			Key:    "dotenv",
			Reason: "failed to load .env",
			Cause:  err,
		}
	}

	cfg.applyDefaults()
	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, &pkgerrors.ConfigError{
			Key:    "validation",
			Reason: "configuration validation failed",
			Cause:  err,
		}
	}

	return cfg, nil
}

// applyDefaults fills in zero values left by a partial config file.
func (c *Config) applyDefaults() {
	defaults := Default()

	if c.Server.Name == "" {
		c.Server.Name = defaults.Server.Name
	}
	if c.Server.Version == "" {
		c.Server.Version = defaults.Server.Version
	}
	if c.Server.Transport == "" {
		c.Server.Transport = defaults.Server.Transport
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = defaults.Server.ShutdownTimeout
	}

	if c.Upstream.EventsURL == "" {
		c.Upstream.EventsURL = defaults.Upstream.EventsURL
	}
	if c.Upstream.PodcastsURL == "" {
		c.Upstream.PodcastsURL = defaults.Upstream.PodcastsURL
	}
	if c.Upstream.DirectoryURL == "" {
		c.Upstream.DirectoryURL = defaults.Upstream.DirectoryURL
	}
	if c.Upstream.ExpertsURL == "" {
		c.Upstream.ExpertsURL = defaults.Upstream.ExpertsURL
	}
	if c.Upstream.BookingsURL == "" {
		c.Upstream.BookingsURL = defaults.Upstream.BookingsURL
	}
	if c.Upstream.Timeout == 0 {
		c.Upstream.Timeout = defaults.Upstream.Timeout
	}

	if c.Tracing.Exporter == "" {
		c.Tracing.Exporter = defaults.Tracing.Exporter
	}
}

// loadFromFile loads configuration from a YAML file.
func (c *Config) loadFromFile(path string) error {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to read config file")
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return pkgerrors.Wrap(err, "failed to parse YAML")
	}

	return nil
}

// loadDotEnv loads path into the environment. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// loadFromEnv loads configuration from environment variables. Unparsable
// numeric values are ignored.
func (c *Config) loadFromEnv() {
	if val := os.Getenv("SERVER_NAME"); val != "" {
		c.Server.Name = val
	}
	if val := os.Getenv("SERVER_VERSION"); val != "" {
		c.Server.Version = val
	}
	if val := os.Getenv("BLOCKZA_CALLS_PER_MINUTE"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.Server.CallsPerMinute = n
		}
	}
	if val := os.Getenv("BLOCKZA_TRANSPORT"); val != "" {
		c.Server.Transport = strings.ToLower(val)
	}
	if val := os.Getenv("BLOCKZA_ADDR"); val != "" {
		c.Server.Addr = val
	}

	if val := os.Getenv("BLOCKZA_EVENTS_URL"); val != "" {
		c.Upstream.EventsURL = val
	}
	if val := os.Getenv("BLOCKZA_PODCASTS_URL"); val != "" {
		c.Upstream.PodcastsURL = val
	}
	if val := os.Getenv("BLOCKZA_DIRECTORY_URL"); val != "" {
		c.Upstream.DirectoryURL = val
	}
	if val := os.Getenv("BLOCKZA_EXPERTS_URL"); val != "" {
		c.Upstream.ExpertsURL = val
	}
	if val := os.Getenv("BLOCKZA_BOOKINGS_URL"); val != "" {
		c.Upstream.BookingsURL = val
	}
	if val := os.Getenv("BLOCKZA_TIMEOUT"); val != "" {
		if d, ok := parseTimeout(val); ok {
			c.Upstream.Timeout = d
		}
	}
	if val := os.Getenv("BLOCKZA_RATE_PER_SECOND"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			c.Upstream.RatePerSecond = f
		}
	}
	if val := os.Getenv("BLOCKZA_USER_AGENT"); val != "" {
		c.Upstream.UserAgent = val
	}

	if val := os.Getenv("BLOCKZA_TRACE_EXPORTER"); val != "" {
		c.Tracing.Exporter = strings.ToLower(val)
	}
	if val := os.Getenv("BLOCKZA_TRACE_ENDPOINT"); val != "" {
		c.Tracing.Endpoint = val
	}
	if val := os.Getenv("BLOCKZA_TRACE_SAMPLE_RATE"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			c.Tracing.SampleRate = &f
		}
	}
}

// parseTimeout accepts a Go duration or a plain number of seconds.
func parseTimeout(val string) (time.Duration, bool) {
	if d, err := time.ParseDuration(val); err == nil {
		return d, true
	}
	if secs, err := strconv.ParseFloat(val, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), true
	}
	return 0, false
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	var errs []string

	if strings.TrimSpace(c.Server.Name) == "" {
		errs = append(errs, "server.name must not be empty")
	}
	if c.Server.CallsPerMinute < 0 {
		errs = append(errs, fmt.Sprintf("server.calls_per_minute must not be negative, got %d", c.Server.CallsPerMinute))
	}
	switch c.Server.Transport {
	case "stdio", "http", "sse":
	default:
		errs = append(errs, fmt.Sprintf("server.transport must be one of [stdio, http, sse], got %q", c.Server.Transport))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Sprintf("server.shutdown_timeout must be positive, got %v", c.Server.ShutdownTimeout))
	}

	urls := []struct {
		key string
		val string
	}{
		{"upstream.events_url", c.Upstream.EventsURL},
		{"upstream.podcasts_url", c.Upstream.PodcastsURL},
		{"upstream.directory_url", c.Upstream.DirectoryURL},
		{"upstream.experts_url", c.Upstream.ExpertsURL},
		{"upstream.bookings_url", c.Upstream.BookingsURL},
	}
	for _, u := range urls {
		if err := validateBaseURL(u.val); err != nil {
			errs = append(errs, fmt.Sprintf("%s %v", u.key, err))
		}
	}
	if c.Upstream.Timeout <= 0 {
		errs = append(errs, fmt.Sprintf("upstream.timeout must be positive, got %v", c.Upstream.Timeout))
	}
	if c.Upstream.RatePerSecond < 0 {
		errs = append(errs, fmt.Sprintf("upstream.rate_per_second must not be negative, got %v", c.Upstream.RatePerSecond))
	}

	if !tracing.ValidExporter(c.Tracing.Exporter) {
		errs = append(errs, fmt.Sprintf("tracing.exporter must be one of [%s], got %q", strings.Join(tracing.Exporters, ", "), c.Tracing.Exporter))
	}
	if r := c.Tracing.Rate(); r < 0 || r > 1 {
		errs = append(errs, fmt.Sprintf("tracing.sample_rate must be between 0 and 1, got %v", r))
	}

	for tool, l := range c.Limits {
		if l.Default < 1 || l.Max < 1 {
			errs = append(errs, fmt.Sprintf("limits.%s default and max must be at least 1, got %d/%d", tool, l.Default, l.Max))
		} else if l.Default > l.Max {
			errs = append(errs, fmt.Sprintf("limits.%s default %d exceeds max %d", tool, l.Default, l.Max))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w:\n  - %s", ErrInvalidConfig, strings.Join(errs, "\n  - "))
	}

	return nil
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("is not a valid URL: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("must use http or https, got %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("is missing a host: %q", raw)
	}
	return nil
}
