package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenrisk/pkg/contracts/domain"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultAPIBaseURL, cfg.API.BaseURL)
	assert.Equal(t, "1d", cfg.API.Interval)
	assert.Equal(t, 180, cfg.API.NumIntervals)
	assert.Equal(t, 20*time.Second, cfg.API.Timeout)
	assert.Empty(t, cfg.API.Key)
	assert.Equal(t, 1, cfg.Batch.Workers)
	assert.Len(t, cfg.Tokens, 5)

	require.Len(t, cfg.Items, 5)
	var symbols []string
	for _, item := range cfg.Items {
		symbols = append(symbols, item.Symbol)
	}
	assert.Equal(t, []string{"SNEK", "IAG", "HUNT", "LENFI", "BTN"}, symbols)
	assert.Equal(t, "data/SNEK.csv", cfg.Items[0].Input)
	assert.Equal(t, "data/SNEK_with_OLRS.csv", cfg.Items[0].Output)

	assert.NoError(t, cfg.Validate())
	assert.ErrorIs(t, cfg.ValidateForBatch(), ErrMissingAPIKey)
}

func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults without file or env",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, DefaultAPIBaseURL, cfg.API.BaseURL)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Len(t, cfg.Items, 5)
			},
		},
		{
			name: "environment overrides defaults",
			env: map[string]string{
				"OLRS_API_KEY":       " secret ",
				"OLRS_API_TIMEOUT":   "5s",
				"OLRS_BATCH_WORKERS": "3",
				"OLRS_LOGGING_LEVEL": "warning",
				"OLRS_API_BASE_URL":  "http://localhost:9999/api/v1/",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "secret", cfg.API.Key)
				assert.Equal(t, 5*time.Second, cfg.API.Timeout)
				assert.Equal(t, 3, cfg.Batch.Workers)
				assert.Equal(t, "warn", cfg.Logging.Level)
				assert.Equal(t, "http://localhost:9999/api/v1", cfg.API.BaseURL)
			},
		},
		{
			name: "file overlays defaults",
			file: `
api:
  interval: 1h
  num_intervals: 24
tokens:
  foo: abc123
items:
  - symbol: foo
    input: in/FOO.csv
    output: out/FOO_with_OLRS.csv
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "1h", cfg.API.Interval)
				assert.Equal(t, 24, cfg.API.NumIntervals)
				assert.Equal(t, 20*time.Second, cfg.API.Timeout)

				unit, err := cfg.Tokens.Lookup("FOO")
				require.NoError(t, err)
				assert.Equal(t, "abc123", unit)
				_, err = cfg.Tokens.Lookup("SNEK")
				assert.NoError(t, err, "file tokens merge into the default table")

				require.Len(t, cfg.Items, 1)
				assert.Equal(t, "FOO", cfg.Items[0].Symbol)
			},
		},
		{
			name: "environment takes precedence over file",
			env:  map[string]string{"OLRS_BATCH_WORKERS": "4"},
			file: "batch:\n  workers: 2\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 4, cfg.Batch.Workers)
			},
		},
		{
			name: "token table from environment",
			env:  map[string]string{"OLRS_TOKENS": "abc:111,DEF:222"},
			validateCfg: func(t *testing.T, cfg *Config) {
				unit, err := cfg.Tokens.Lookup("abc")
				require.NoError(t, err)
				assert.Equal(t, "111", unit)
				assert.Equal(t, []string{"ABC", "DEF"}, cfg.Tokens.Symbols())
			},
		},
		{
			name:    "zero workers rejected",
			env:     map[string]string{"OLRS_BATCH_WORKERS": "0"},
			wantErr: true,
		},
		{
			name:    "unsupported interval rejected",
			env:     map[string]string{"OLRS_API_INTERVAL": "2d"},
			wantErr: true,
		},
		{
			name:    "unparseable env value",
			env:     map[string]string{"OLRS_API_TIMEOUT": "soon"},
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			file:    "api: [unclosed",
			wantErr: true,
		},
		{
			name:    "item without output rejected",
			file:    "items:\n  - symbol: SNEK\n    input: a.csv\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := LoadFrom(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadUsesConfigFileEnv(t *testing.T) {
	path := writeConfigFile(t, "api:\n  num_intervals: 30\n")
	t.Setenv(EnvConfigKey, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.API.NumIntervals)
}

func TestValidateForBatch(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:   "key and known symbols",
			mutate: func(c *Config) { c.API.Key = "k" },
		},
		{
			name:    "missing key",
			mutate:  func(c *Config) {},
			wantErr: ErrMissingAPIKey,
		},
		{
			name: "unknown symbol",
			mutate: func(c *Config) {
				c.API.Key = "k"
				c.Items = append(c.Items, domain.NewBatchItem("data", "NOPE"))
			},
			wantErr: ErrUnknownToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.ValidateForBatch()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("no items", func(t *testing.T) {
		cfg := Default()
		cfg.API.Key = "k"
		cfg.Items = nil
		assert.Error(t, cfg.ValidateForBatch())
	})
}
