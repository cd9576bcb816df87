package config_test

import (
	"errors"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gribsnap/internal/config"
	"gribsnap/internal/grid"
)

func envOf(m map[string]string) config.Env {
	return func(k string) string { return m[k] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load([]string{"--path", "gfs.json"}, nil, io.Discard)
	require.NoError(t, err)
	require.Equal(t, "gfs.json", cfg.Path)
	require.Equal(t, 20, cfg.Render.Steps)
	require.Nil(t, cfg.Render.Min)
	require.Nil(t, cfg.Render.Max)
	require.Equal(t, map[config.Output]bool{config.SVG: false, config.PNG: true, config.GeoJSON: false}, cfg.Outputs)
	require.Equal(t, ".", cfg.OutDir)
	require.Equal(t, 1.0, cfg.PNGScale)
	require.Equal(t, config.FormatJSON, cfg.InputFormat())
}

func TestLoadFlags(t *testing.T) {
	cfg, err := config.Load([]string{
		"--path", "waves.asc", "--var", "HTSGW",
		"--minThreshold", "0.5", "--maxThreshold", "9",
		"--steps", "8", "--svg", "--png=false", "--geojson",
		"--simplify", "0.01", "--workers", "3", "--scale", "4",
	}, nil, io.Discard)
	require.NoError(t, err)
	require.Equal(t, "HTSGW", cfg.Var)
	require.Equal(t, 0.5, *cfg.Render.Min)
	require.Equal(t, 9.0, *cfg.Render.Max)
	require.Equal(t, 8, cfg.Render.Steps)
	require.Equal(t, 3, cfg.Render.Workers)
	require.Equal(t, 0.01, cfg.Render.Simplify)
	require.Equal(t, 4.0, cfg.PNGScale)
	require.True(t, cfg.Outputs[config.SVG])
	require.False(t, cfg.Outputs[config.PNG])
	require.True(t, cfg.Outputs[config.GeoJSON])
	require.Equal(t, config.FormatEsri, cfg.InputFormat())
}

func TestEnvLayering(t *testing.T) {
	env := envOf(map[string]string{
		"GRIBSNAP_STEPS":    "12",
		"GRIBSNAP_MIN":      "-3",
		"GRIBSNAP_OUTPUTS":  "svg, geojson",
		"GRIBSNAP_CACHE":    "sqlite:cache.db",
		"GRIBSNAP_OUT_DIR":  "out",
		"GRIBSNAP_SIMPLIFY": "0.2",
	})
	cfg, err := config.Load([]string{"--path", "a.json"}, env, io.Discard)
	require.NoError(t, err)
	require.Equal(t, 12, cfg.Render.Steps)
	require.Equal(t, -3.0, *cfg.Render.Min)
	require.Equal(t, 0.2, cfg.Render.Simplify)
	require.True(t, cfg.Outputs[config.SVG])
	require.True(t, cfg.Outputs[config.GeoJSON])
	require.False(t, cfg.Outputs[config.PNG])
	require.Equal(t, "sqlite:cache.db", cfg.Cache)
	require.Equal(t, "out", cfg.OutDir)

	// flags win over the environment
	cfg, err = config.Load([]string{"--path", "a.json", "--steps", "4", "--outDir", "elsewhere"}, env, io.Discard)
	require.NoError(t, err)
	require.Equal(t, 4, cfg.Render.Steps)
	require.Equal(t, "elsewhere", cfg.OutDir)
}

func TestLoadErrors(t *testing.T) {
	_, err := config.Load(nil, nil, io.Discard)
	require.True(t, errors.Is(err, config.ErrNoInput))

	_, err = config.Load([]string{"-h"}, nil, io.Discard)
	require.True(t, errors.Is(err, flag.ErrHelp))

	bad := [][]string{
		{"--path", "a.json", "--steps", "0"},
		{"--path", "a.json", "--minThreshold", "low"},
		{"--path", "a.json", "--format", "grib"},
		{"--path", "a.json", "--scale", "0"},
		{"--path", "a.json", "--workers", "-2"},
	}
	for _, args := range bad {
		_, err := config.Load(args, nil, io.Discard)
		require.Error(t, err, strings.Join(args, " "))
	}

	_, err = config.Load([]string{"--path", "a.json"}, envOf(map[string]string{"GRIBSNAP_OUTPUTS": "pdf"}), io.Discard)
	require.Error(t, err)
	_, err = config.Load([]string{"--path", "a.json"}, envOf(map[string]string{"GRIBSNAP_STEPS": "many"}), io.Discard)
	require.Error(t, err)
}

func TestBandsAloneIsEnoughInput(t *testing.T) {
	cfg, err := config.Load([]string{"--bands", "out/HTSGW.json"}, nil, io.Discard)
	require.NoError(t, err)
	require.Equal(t, "out/HTSGW.json", cfg.Bands)
}

func TestOutputPath(t *testing.T) {
	cfg := config.Config{OutDir: "out", PNGOut: "custom.png"}
	require.Equal(t, "custom.png", cfg.OutputPath(config.PNG, "HTSGW@groundorwater_1"))
	require.Equal(t, filepath.Join("out", "HTSGW@groundorwater_1.svg"), cfg.OutputPath(config.SVG, "HTSGW@groundorwater_1"))
	require.Equal(t, filepath.Join("out", "a_b.json"), cfg.OutputPath(config.GeoJSON, "a/b"))
}

func TestSelect(t *testing.T) {
	set := grid.MessageSet{Records: []grid.Record{
		{Key: "HTSGW@groundorwater_1", Variable: "HTSGW"},
		{Key: "WIND@heightaboveground_10", Variable: "WIND"},
	}}

	rec, err := config.Config{Var: "wind"}.Select(set)
	require.NoError(t, err)
	require.Equal(t, "WIND@heightaboveground_10", rec.Key)

	_, err = config.Config{Var: "UGRD"}.Select(set)
	require.True(t, errors.Is(err, config.ErrUnknownVariable))

	_, err = config.Config{}.Select(set)
	require.True(t, errors.Is(err, config.ErrUnknownVariable), "two messages need --var")

	one := grid.MessageSet{Records: set.Records[:1]}
	rec, err = config.Config{}.Select(one)
	require.NoError(t, err)
	require.Equal(t, "HTSGW@groundorwater_1", rec.Key)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("GRIBSNAP_TEST_DOTENV=42\n"), 0o644))
	t.Setenv("GRIBSNAP_TEST_DOTENV", "")
	os.Unsetenv("GRIBSNAP_TEST_DOTENV")

	require.NoError(t, config.LoadDotEnv(path))
	require.Equal(t, "42", os.Getenv("GRIBSNAP_TEST_DOTENV"))

	require.Error(t, config.LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}
