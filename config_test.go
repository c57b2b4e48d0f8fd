package conductor

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/conductor-ci/conductor/flags"
)

func validConfig() *Config {
	return &Config{
		Roots:     []string{"/tmp/tests"},
		SuiteName: "conductor",
		Timeout:   time.Minute,
		Reports:   []string{"junit"},
		ReportDir: "test_reports",
		Log:       zerolog.Nop(),
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{
			name:    "no roots",
			mutate:  func(c *Config) { c.Roots = nil },
			wantErr: "at least one discovery root",
		},
		{
			name:    "no suite name",
			mutate:  func(c *Config) { c.SuiteName = "" },
			wantErr: "suite name is required",
		},
		{
			name:    "negative timeout",
			mutate:  func(c *Config) { c.Timeout = -time.Second },
			wantErr: "timeout cannot be negative",
		},
		{
			name:    "negative concurrency",
			mutate:  func(c *Config) { c.Parallel = true; c.Concurrency = -1 },
			wantErr: "concurrency cannot be negative",
		},
		{
			name:    "concurrency without parallel",
			mutate:  func(c *Config) { c.Concurrency = 4 },
			wantErr: "concurrency requires parallel mode",
		},
		{
			name:    "bad pattern",
			mutate:  func(c *Config) { c.NamePattern = "[" },
			wantErr: "pattern",
		},
		{
			name:    "no reports",
			mutate:  func(c *Config) { c.Reports = nil },
			wantErr: "at least one report format",
		},
		{
			name:   "no reports is fine for dry run",
			mutate: func(c *Config) { c.Reports = nil; c.DryRun = true },
		},
		{
			name:    "unknown report format",
			mutate:  func(c *Config) { c.Reports = []string{"pdf"} },
			wantErr: "unknown report format",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func newConfigFromArgs(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	var cfg *Config
	var cfgErr error
	app := cli.NewApp()
	app.Flags = flags.Flags
	app.Action = func(ctx *cli.Context) error {
		cfg, cfgErr = NewConfig(ctx, zerolog.Nop())
		return nil
	}
	require.NoError(t, app.Run(append([]string{"conductor"}, args...)))
	return cfg, cfgErr
}

func TestNewConfigFromFlags(t *testing.T) {
	cfg, err := newConfigFromArgs(t,
		"--root", "./suites",
		"--suite-name", "engine",
		"--tag", "gpu",
		"--tag", "slow",
		"--timeout", "30s",
		"--fail-fast",
		"--parallel",
		"--concurrency", "8",
		"--report", "junit",
		"--report", "html",
		"--run-interval", "1h",
	)
	require.NoError(t, err)

	assert.Equal(t, "engine", cfg.SuiteName)
	require.Len(t, cfg.Roots, 1)
	assert.True(t, filepath.IsAbs(cfg.Roots[0]), "roots must be resolved to absolute paths")
	assert.Equal(t, []string{"gpu", "slow"}, cfg.Tags)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.True(t, cfg.FailFast)
	assert.True(t, cfg.Parallel)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, []string{"junit", "html"}, cfg.Reports)
	assert.Equal(t, time.Hour, cfg.RunInterval)
	assert.False(t, cfg.RunOnce)
}

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := newConfigFromArgs(t, "--root", "./suites")
	require.NoError(t, err)

	assert.Equal(t, "conductor", cfg.SuiteName)
	assert.Equal(t, 5*time.Minute, cfg.Timeout)
	assert.Equal(t, []string{"junit"}, cfg.Reports)
	assert.Equal(t, "test_reports", cfg.ReportDir)
	assert.True(t, cfg.RunOnce)
	assert.False(t, cfg.Parallel)
}

func TestNewConfigRejectsViolations(t *testing.T) {
	_, err := newConfigFromArgs(t, "--root", "./suites", "--concurrency", "4")
	require.Error(t, err)
	assert.True(t, IsRuntimeError(err))
	assert.Contains(t, err.Error(), "concurrency requires parallel mode")
}

func TestConfigFilters(t *testing.T) {
	cfg := validConfig()
	cfg.Category = "core"
	cfg.Tags = []string{"gpu", "slow"}
	cfg.NamePattern = "^Sprite"

	f := cfg.Filters()
	assert.Equal(t, "core", f.Category)
	assert.Equal(t, []string{"gpu", "slow"}, f.Tags)
	assert.Equal(t, "^Sprite", f.NamePattern)
}
