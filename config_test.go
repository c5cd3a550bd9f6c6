package oploader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	testCases := []struct {
		name      string
		document  string
		env       map[string]string
		expectErr bool
		check     func(t *testing.T, cfg *Config)
	}{
		{
			name:     "defaults kept",
			document: "log:\n  level: debug\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "debug", cfg.Log.Level)
				assert.Equal(t, "text", cfg.Log.Format)
				assert.Equal(t, 100*time.Millisecond, cfg.Scheduler.TickInterval)
				assert.Equal(t, 4, cfg.Processor.Workers)
			},
		},
		{
			name: "durations and env expansion",
			document: `scheduler:
  tickInterval: 20ms
  watchdogInterval: 2s
processor:
  workers: ${env.OPLOADER_TEST_WORKERS}
  maxRetries: 2
journal:
  url: ${env.OPLOADER_TEST_JOURNAL}
`,
			env: map[string]string{"OPLOADER_TEST_WORKERS": "8", "OPLOADER_TEST_JOURNAL": "mem://localhost/journal"},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 20*time.Millisecond, cfg.Scheduler.TickInterval)
				assert.Equal(t, 2*time.Second, cfg.Scheduler.WatchdogInterval)
				assert.Equal(t, 8, cfg.Processor.Workers)
				assert.Equal(t, 2, cfg.Processor.MaxRetries)
				assert.Equal(t, "mem://localhost/journal", cfg.Journal.URL)
			},
		},
		{
			name:      "invalid values",
			document:  "processor:\n  workers: 0\nlog:\n  format: xml\n",
			expectErr: true,
		},
		{
			name:      "malformed document",
			document:  "scheduler: [",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			location := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(location, []byte(tc.document), 0o644))

			cfg, err := LoadConfig(context.Background(), location)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tc.check(t, cfg)
		})
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := LoadConfig(context.Background(), filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	var cfg *Config
	assert.NoError(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.Tracing.Enabled = true
	cfg.Tracing.ServiceName = ""
	cfg.Scheduler.TickInterval = 0
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tracing.serviceName")
	assert.Contains(t, err.Error(), "scheduler.tickInterval")
}
