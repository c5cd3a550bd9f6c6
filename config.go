package oploader

import (
	"context"
	"errors"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/oploader/internal/expr"
	"github.com/viant/oploader/service/processor"
	"github.com/viant/oploader/service/scheduler"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the loader configuration. It
// can be populated from JSON or YAML; LoadConfig starts from DefaultConfig so
// omitted fields keep their defaults.
type Config struct {
	Scheduler scheduler.Config `json:"scheduler" yaml:"scheduler"`
	Processor processor.Config `json:"processor" yaml:"processor"`
	Log       LogConfig        `json:"log" yaml:"log"`
	Tracing   TracingConfig    `json:"tracing" yaml:"tracing"`
	Journal   JournalConfig    `json:"journal" yaml:"journal"`
}

// LogConfig selects the default logger.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `json:"level" yaml:"level"`
	// Format is json or text.
	Format string `json:"format" yaml:"format"`
}

// TracingConfig enables the stdout span exporter.
type TracingConfig struct {
	Enabled        bool   `json:"enabled" yaml:"enabled"`
	ServiceName    string `json:"serviceName" yaml:"serviceName"`
	ServiceVersion string `json:"serviceVersion" yaml:"serviceVersion"`
	// OutputFile receives spans; empty means stdout.
	OutputFile string `json:"outputFile" yaml:"outputFile"`
}

// JournalConfig selects where operation outcomes are recorded.
type JournalConfig struct {
	// URL is a base location of any afs scheme; empty keeps the journal in memory.
	URL string `json:"url" yaml:"url"`
}

// DefaultConfig returns a Config populated with the package defaults.
func DefaultConfig() *Config {
	return &Config{
		Scheduler: scheduler.DefaultConfig(),
		Processor: processor.DefaultConfig(),
		Log:       LogConfig{Level: "info", Format: "text"},
		Tracing:   TracingConfig{ServiceName: "oploader"},
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	errs = append(errs, c.Scheduler.Validate(), c.Processor.Validate())
	switch c.Log.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	if c.Tracing.Enabled && c.Tracing.ServiceName == "" {
		errs = append(errs, fmt.Errorf("tracing.serviceName is required when tracing is enabled"))
	}
	return errors.Join(errs...)
}

// LoadConfig reads a YAML (or JSON) document from URL, expands ${env.KEY}
// references and decodes it over DefaultConfig.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to download config %v: %w", URL, err)
	}
	cfg := DefaultConfig()
	if err = yaml.Unmarshal([]byte(expr.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %v: %w", URL, err)
	}
	if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %v: %w", URL, err)
	}
	return cfg, nil
}
