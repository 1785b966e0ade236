package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// Default values for the dashboard configuration.
const (
	DefaultHTTPPort    = 8050
	DefaultGRPCPort    = 50052
	DefaultDataPath    = "spacex_launch_dash.csv"
	DefaultTitle       = "SpaceX Launch Records Dashboard"
	DefaultSliderStep  = 1000
	DefaultChartWidth  = 640
	DefaultChartHeight = 420
)

// Config is the full dashboard configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Dataset DatasetConfig `yaml:"dataset"`
	UI      UIConfig      `yaml:"ui"`
}

// ServerConfig holds listener and transport settings.
type ServerConfig struct {
	// HTTPPort serves the page, REST API, chart images and WebSocket callbacks.
	HTTPPort int `yaml:"http_port"`

	// GRPCPort serves the gRPC health service. Zero disables it.
	GRPCPort int `yaml:"grpc_port"`

	// Auth configures how the API and chart endpoints authenticate clients.
	Auth AuthConfig `yaml:"auth"`

	// Compress enables brotli response compression when clients accept it.
	Compress bool `yaml:"compress"`
}

// AuthConfig controls client authentication.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// KeyEnv is the name of the environment variable that holds the expected API key.
	KeyEnv string `yaml:"key_env"`

	// Header is the HTTP header to read the key from.
	// Defaults to "X-API-Key" if empty.
	Header string `yaml:"header"`
}

// Key returns the expected API key resolved from the environment.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name, or the default "X-API-Key".
func (a AuthConfig) EffectiveHeader() string {
	if a.Header != "" {
		return a.Header
	}
	return "X-API-Key"
}

// DatasetConfig locates the launch records.
type DatasetConfig struct {
	Path string `yaml:"path"`
}

// UIConfig holds presentation settings. These may change on hot reload.
type UIConfig struct {
	Title       string  `yaml:"title"`
	SliderStep  float64 `yaml:"slider_step"`
	ChartWidth  int     `yaml:"chart_width"`
	ChartHeight int     `yaml:"chart_height"`

	// PrettyHTML indents the rendered page. Useful when debugging the layout.
	PrettyHTML bool `yaml:"pretty_html"`
}

// Load reads and parses the config file at path.
// Missing fields are filled with defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort: DefaultHTTPPort,
			GRPCPort: DefaultGRPCPort,
			Compress: true,
		},
		Dataset: DatasetConfig{
			Path: DefaultDataPath,
		},
		UI: UIConfig{
			Title:       DefaultTitle,
			SliderStep:  DefaultSliderStep,
			ChartWidth:  DefaultChartWidth,
			ChartHeight: DefaultChartHeight,
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", cfg.Server.HTTPPort)
	}
	if cfg.Server.GRPCPort < 0 || cfg.Server.GRPCPort > 65535 {
		return fmt.Errorf("server.grpc_port %d is out of range [0, 65535]", cfg.Server.GRPCPort)
	}
	if cfg.Server.GRPCPort != 0 && cfg.Server.GRPCPort == cfg.Server.HTTPPort {
		return fmt.Errorf("server.grpc_port and server.http_port must differ")
	}
	switch cfg.Server.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("server.auth.mode %q unknown: want apikey|none", cfg.Server.Auth.Mode)
	}
	if cfg.Dataset.Path == "" {
		return fmt.Errorf("dataset.path is required")
	}
	if cfg.UI.SliderStep <= 0 {
		return fmt.Errorf("ui.slider_step must be positive")
	}
	if cfg.UI.ChartWidth < 100 || cfg.UI.ChartWidth > 4000 {
		return fmt.Errorf("ui.chart_width %d is out of range [100, 4000]", cfg.UI.ChartWidth)
	}
	if cfg.UI.ChartHeight < 100 || cfg.UI.ChartHeight > 4000 {
		return fmt.Errorf("ui.chart_height %d is out of range [100, 4000]", cfg.UI.ChartHeight)
	}
	return nil
}
