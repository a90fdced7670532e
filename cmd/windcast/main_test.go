package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "windcast.yaml")
	cfg := `
horizon: 6
forecast_options:
  preset: fast
  time_steps: 12
  epochs: 2
  seed: 5
`
	require.Nil(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	plot := filepath.Join(dir, "forecast.html")

	err := run(context.Background(), config{
		configPath: writeConfig(t, dir),
		simulate:   48,
		plotPath:   plot,
	})
	require.Nil(t, err)

	info, err := os.Stat(plot)
	require.Nil(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	testData := map[string]struct {
		ctx context.Context
		cfg config
		err error
	}{
		"missing config": {
			ctx: context.Background(),
			cfg: config{configPath: filepath.Join(dir, "missing.yaml"), simulate: 48},
			err: os.ErrNotExist,
		},
		"missing observations": {
			ctx: context.Background(),
			cfg: config{configPath: writeConfig(t, dir), obsPath: filepath.Join(dir, "missing.csv")},
			err: os.ErrNotExist,
		},
		"interrupted": {
			ctx: cancelled,
			cfg: config{configPath: writeConfig(t, dir), simulate: 48},
			err: context.Canceled,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			err := run(td.ctx, td.cfg)
			assert.ErrorIs(t, err, td.err)
		})
	}
}
