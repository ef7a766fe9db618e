package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the field-server configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Survey  SurveyConfig  `yaml:"survey"`
	Logging LoggingConfig `yaml:"logging"`
	Tracing TracingConfig `yaml:"tracing"`
}

// ServerConfig contains the HTTP listener settings.
type ServerConfig struct {
	HTTPAddr             string `yaml:"http_addr"`
	MetricsAddr          string `yaml:"metrics_addr"`
	ShutdownGraceSeconds int    `yaml:"shutdown_grace_seconds"`
}

// SurveyConfig contains evaluation defaults.
type SurveyConfig struct {
	// Workers is the number of goroutines the engine partitions
	// observation points across. 0 means one per CPU.
	Workers int `yaml:"workers"`

	// Default regional field direction, degrees. Requests may override it.
	AmbientInclination float64 `yaml:"ambient_inclination"`
	AmbientDeclination float64 `yaml:"ambient_declination"`

	// ScenarioPath optionally preloads a JSON survey scenario at startup.
	ScenarioPath string `yaml:"scenario_path"`
}

// LoggingConfig contains logger settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// TracingConfig contains tracer settings.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	Exporter    string  `yaml:"exporter"` // stdout | otlp
	Endpoint    string  `yaml:"endpoint"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			HTTPAddr:             ":8080",
			MetricsAddr:          ":9090",
			ShutdownGraceSeconds: 5,
		},
		Survey: SurveyConfig{
			Workers: 0,
			// Mid-latitude northern-hemisphere field by default.
			AmbientInclination: 45,
			AmbientDeclination: 0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "field-server",
			Exporter:    "stdout",
			SampleRatio: 1.0,
		},
	}
}

// Load reads a YAML configuration file, layering it over the defaults. An
// empty path returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Validate checks structural invariants the rest of the service assumes.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr must not be empty")
	}
	if c.Server.ShutdownGraceSeconds < 0 {
		return fmt.Errorf("server.shutdown_grace_seconds must not be negative")
	}
	if c.Survey.Workers < 0 {
		return fmt.Errorf("survey.workers must not be negative")
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing.sample_ratio must be in [0, 1]")
	}
	switch c.Tracing.Exporter {
	case "", "stdout", "otlp", "otlpgrpc":
	default:
		return fmt.Errorf("tracing.exporter must be stdout or otlp, got %q", c.Tracing.Exporter)
	}
	return nil
}
