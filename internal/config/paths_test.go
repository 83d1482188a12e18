package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tokenrisk/pkg/contracts/domain"
)

func TestTokenTableLookup(t *testing.T) {
	table := TokenTable{"SNEK": "unit-snek", "Mixed": "unit-mixed", "EMPTY": ""}

	tests := []struct {
		name    string
		symbol  string
		want    string
		wantErr bool
	}{
		{name: "exact", symbol: "SNEK", want: "unit-snek"},
		{name: "lower case", symbol: "snek", want: "unit-snek"},
		{name: "padded", symbol: "  snek ", want: "unit-snek"},
		{name: "mixed case key", symbol: "MIXED", want: "unit-mixed"},
		{name: "empty unit", symbol: "EMPTY", wantErr: true},
		{name: "unknown", symbol: "HUNT", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := table.Lookup(tt.symbol)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownToken)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveItem(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "abs.csv")
	item := domain.BatchItem{Symbol: "SNEK", Input: "data/SNEK.csv", Output: abs}

	cfg := Default()
	assert.Equal(t, item, cfg.ResolveItem(item))

	cfg.Batch.BaseDir = "/srv/olrs"
	got := cfg.ResolveItem(item)
	assert.Equal(t, filepath.Join("/srv/olrs", "data/SNEK.csv"), got.Input)
	assert.Equal(t, abs, got.Output)

	resolved := cfg.ResolvedItems()
	require.Len(t, resolved, len(cfg.Items))
	assert.Equal(t, filepath.Join("/srv/olrs", "data/SNEK.csv"), resolved[0].Input)
}

func TestEnsureParentDir(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "nested", "deeper", "out.csv")

	require.NoError(t, EnsureParentDir(target))
	info, err := os.Stat(filepath.Dir(target))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	assert.NoError(t, EnsureParentDir("relative.csv"))
	assert.False(t, FileExists(target))
	require.NoError(t, os.WriteFile(target, []byte("x"), 0644))
	assert.True(t, FileExists(target))
	assert.False(t, FileExists(dir))
}
