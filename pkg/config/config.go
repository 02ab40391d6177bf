/*
 * Copyright (c) 2025, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	toml "github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	// EnvPrefix is the prefix for environment variables used to configure the connection agent
	EnvPrefix = "APIP_AGENT_"
)

// Config holds all configuration for the connection agent
type Config struct {
	Connection ConnectionConfig `koanf:"connection"`
	Logging    LoggingConfig    `koanf:"logging"`
	Metrics    MetricsConfig    `koanf:"metrics"`
	Status     StatusConfig     `koanf:"status"`
}

// ConnectionConfig holds endpoint and retry configuration
type ConnectionConfig struct {
	URL                string        `koanf:"url"`                  // Endpoint URL (http/https/ws/wss)
	Token              string        `koanf:"token"`                // Registration token (api-key)
	BackoffBase        time.Duration `koanf:"backoff_base"`         // First retry window
	BackoffMax         time.Duration `koanf:"backoff_max"`          // Cap for the jitter window
	MaxAttempts        uint          `koanf:"max_attempts"`         // Retry budget
	HandshakeTimeout   time.Duration `koanf:"handshake_timeout"`    // WebSocket handshake timeout
	InsecureSkipVerify bool          `koanf:"insecure_skip_verify"` // Skip TLS certificate verification
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `koanf:"level"`  // "debug", "info", "warn", "error"
	Format string `koanf:"format"` // "json" (default) or "text"
}

// MetricsConfig holds Prometheus metrics server configuration
type MetricsConfig struct {
	// Enabled indicates whether the metrics server should be started
	Enabled bool `koanf:"enabled"`

	// Port is the port for the metrics HTTP server
	Port int `koanf:"port"`
}

// StatusConfig holds the status HTTP server configuration
type StatusConfig struct {
	Enabled bool `koanf:"enabled"`
	Port    int  `koanf:"port"`
}

// LoadConfig loads configuration from file, environment variables, and defaults
// Priority: Environment variables > Config file > Defaults
func LoadConfig(configPath string) (*Config, error) {
	cfg := defaultConfig()

	k := koanf.New(".")

	// Load config file if path is provided
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// Load environment variables with prefix
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		s = strings.ToLower(s)

		// Custom mappings for connection variables
		switch s {
		case "endpoint_url":
			return "connection.url"
		case "registration_token":
			return "connection.token"
		case "insecure_skip_verify":
			return "connection.insecure_skip_verify"
		default:
			// For other prefixed vars, use standard mapping (underscore to dot)
			// Step 1: Convert double underscore "__" into a temporary placeholder
			s = strings.ReplaceAll(s, "__", "%UNDERSCORE%")
			// Step 2: Convert single "_" into "."
			s = strings.ReplaceAll(s, "_", ".")
			// Step 3: Convert placeholder back into literal "_"
			s = strings.ReplaceAll(s, "%UNDERSCORE%", "_")
			return s
		}
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Unmarshal into Config struct with DecodeHook for duration strings
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			TagName:          "koanf",
			WeaklyTypedInput: true,
			Result:           cfg,
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config struct with default configuration values
func defaultConfig() *Config {
	return &Config{
		Connection: ConnectionConfig{
			URL:                "wss://localhost:9243/gateways/connect",
			Token:              "",
			BackoffBase:        500 * time.Millisecond,
			BackoffMax:         5 * time.Second,
			MaxAttempts:        5,
			HandshakeTimeout:   10 * time.Second,
			InsecureSkipVerify: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9091,
		},
		Status: StatusConfig{
			Enabled: true,
			Port:    9092,
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// Validate the endpoint URL
	if strings.TrimSpace(c.Connection.URL) == "" {
		return fmt.Errorf("connection.url is required")
	}

	u, err := url.Parse(c.Connection.URL)
	if err != nil {
		return fmt.Errorf("connection.url must be a valid URL, got: %s", c.Connection.URL)
	}
	validSchemes := []string{"http", "https", "ws", "wss"}
	isValidScheme := false
	for _, scheme := range validSchemes {
		if u.Scheme == scheme {
			isValidScheme = true
			break
		}
	}
	if !isValidScheme {
		return fmt.Errorf("connection.url scheme must be one of: %s, got: %s",
			strings.Join(validSchemes, ", "), c.Connection.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("connection.url must include a valid host, got: %s", c.Connection.URL)
	}

	// Validate retry configuration
	if c.Connection.BackoffBase <= 0 {
		return fmt.Errorf("connection.backoff_base must be positive, got: %s", c.Connection.BackoffBase)
	}

	if c.Connection.BackoffMax <= 0 {
		return fmt.Errorf("connection.backoff_max must be positive, got: %s", c.Connection.BackoffMax)
	}

	if c.Connection.BackoffBase > c.Connection.BackoffMax {
		return fmt.Errorf("connection.backoff_base (%s) must be <= connection.backoff_max (%s)",
			c.Connection.BackoffBase, c.Connection.BackoffMax)
	}

	if c.Connection.MaxAttempts < 1 {
		return fmt.Errorf("connection.max_attempts must be at least 1, got: %d", c.Connection.MaxAttempts)
	}

	if c.Connection.HandshakeTimeout <= 0 {
		return fmt.Errorf("connection.handshake_timeout must be positive, got: %s", c.Connection.HandshakeTimeout)
	}

	// Validate log level
	validLevels := []string{"debug", "info", "warn", "warning", "error"}
	isValidLevel := false
	for _, level := range validLevels {
		if strings.ToLower(c.Logging.Level) == level {
			isValidLevel = true
			break
		}
	}
	if !isValidLevel {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error, got: %s", c.Logging.Level)
	}

	// Validate log format
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("logging.format must be either 'json' or 'text', got: %s", c.Logging.Format)
	}

	// Validate metrics config
	if c.Metrics.Enabled {
		if c.Metrics.Port < 1 || c.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port must be between 1 and 65535, got: %d", c.Metrics.Port)
		}
	}

	// Validate status config
	if c.Status.Enabled {
		if c.Status.Port < 1 || c.Status.Port > 65535 {
			return fmt.Errorf("status.port must be between 1 and 65535, got: %d", c.Status.Port)
		}
		if c.Metrics.Enabled && c.Status.Port == c.Metrics.Port {
			return fmt.Errorf("status.port cannot be same as metrics.port")
		}
	}

	return nil
}
