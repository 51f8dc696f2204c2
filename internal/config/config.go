package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite = "sqlite"
	DriverREST   = "rest"
	DriverNone   = "none"
)

// Config models goalboard.yml.
type Config struct {
	Server struct {
		Addr        string `yaml:"addr"`
		BasePath    string `yaml:"base_path"`
		MaxSessions int    `yaml:"max_sessions"`
	} `yaml:"server"`
	Gateway struct {
		Driver string `yaml:"driver"`
		REST   struct {
			URL            string `yaml:"url"`
			APIKey         string `yaml:"api_key"`
			TimeoutSeconds int    `yaml:"timeout_seconds"`
		} `yaml:"rest"`
	} `yaml:"gateway"`
	Report struct {
		ISCMGoal   string `yaml:"iscm_goal"`
		ExportFile string `yaml:"export_file"`
	} `yaml:"report"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// RESTTimeout is zero when the REST sink should not time out.
func (c *Config) RESTTimeout() time.Duration {
	if c.Gateway.REST.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Gateway.REST.TimeoutSeconds) * time.Second
}

// Load reads and validates config from workspace. A missing file yields the
// defaults.
func Load(workspace string) (*Config, error) {
	cfg, err := LoadOptional(workspace)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return Default(), nil
	}
	return cfg, nil
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("config.server.addr is required")
	}
	if c.Server.BasePath != "" && !strings.HasPrefix(c.Server.BasePath, "/") {
		return fmt.Errorf("config.server.base_path must start with /")
	}
	switch c.Gateway.Driver {
	case DriverSQLite, DriverNone:
	case DriverREST:
		if c.Gateway.REST.URL == "" {
			return fmt.Errorf("config.gateway.rest.url is required for driver rest")
		}
		u, err := url.Parse(c.Gateway.REST.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("config.gateway.rest.url %q is not an absolute url", c.Gateway.REST.URL)
		}
	default:
		return fmt.Errorf("config.gateway.driver must be one of sqlite, rest, none; got %q", c.Gateway.Driver)
	}
	if c.Server.MaxSessions < 0 {
		return fmt.Errorf("config.server.max_sessions must not be negative")
	}
	if c.Gateway.REST.TimeoutSeconds < 0 {
		return fmt.Errorf("config.gateway.rest.timeout_seconds must not be negative")
	}
	if c.Report.ExportFile != "" && filepath.Ext(c.Report.ExportFile) != ".xlsx" {
		return fmt.Errorf("config.report.export_file must end in .xlsx")
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config.log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("config.log.format %q is not one of text, json", c.Log.Format)
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "goalboard.yml")
}

// GenerateDefault returns default config YAML.
func GenerateDefault() string {
	return defaultTemplate
}

// LoadOptional returns nil,nil if the config file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	path := Path(workspace)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// Default returns the default Config.
func Default() *Config {
	var cfg Config
	_ = yaml.NewDecoder(bytes.NewBufferString(defaultTemplate)).Decode(&cfg)
	return &cfg
}

// FromYAML parses and validates config from raw YAML bytes. Keys missing from
// data keep their default values.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

const defaultTemplate = `server:
  addr: 127.0.0.1:8080
  base_path: /v0
  # wizard sessions kept in memory, least recently used dropped first
  max_sessions: 1024

gateway:
  # sqlite writes to .goalboard/goalboard.db, rest posts to {url}/rest/v1/{table}
  driver: sqlite
  rest:
    url: ""
    api_key: ""
    timeout_seconds: 0

report:
  iscm_goal: Customer Satisfaction
  export_file: Reports.xlsx

log:
  level: info
  format: text
`
