package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gribsnap/internal/cache"
	"gribsnap/internal/config"
	"gribsnap/internal/export"
	"gribsnap/internal/grid"
	"gribsnap/internal/platform/obs"
	"gribsnap/internal/render"
	"gribsnap/internal/tui"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if err := config.LoadDotEnv(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load(args, os.Getenv, os.Stderr)
	switch {
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, config.ErrNoInput):
		fmt.Fprintln(os.Stderr, "You must specify the path to the message file to render with --path")
		return 1
	case err != nil:
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx := obs.WithRunID(context.Background(), strconv.FormatInt(time.Now().UnixNano(), 36))

	if cfg.Bands != "" {
		return preview(tui.NewWithBands(ctx, cfg.Bands))
	}

	set, err := cfg.LoadMessages()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if cfg.List {
		for _, k := range set.Keys() {
			fmt.Println(k)
		}
		return 0
	}

	rec, err := cfg.Select(set)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to find matching message. Exiting.")
		log.Println(err)
		return 1
	}

	if cfg.Preview {
		return preview(tui.New(ctx, set, rec.Key, cfg.Render))
	}

	log.Println("Found matching message, contouring...")
	if err := write(ctx, cfg, rec); err != nil {
		log.Println(err)
		return 1
	}
	return 0
}

func preview(m tui.Model) int {
	// the terminal belongs to the program; logs go to a file instead
	f, err := tea.LogToFile("gribsnap.log", "gribsnap")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer f.Close()
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run(); err != nil {
		log.Println(err)
		return 1
	}
	return 0
}

// write renders rec and writes every requested output. A GeoJSON-only run is
// served from the cache when one is configured and holds the key.
func write(ctx context.Context, cfg config.Config, rec grid.Record) (err error) {
	defer obs.Time(ctx, "gribsnap.write")(&err)

	f, err := rec.Field()
	if err != nil {
		return err
	}

	var store cache.Store
	var key string
	if cfg.Cache != "" && cfg.Outputs[config.GeoJSON] {
		store, err = cache.Open(ctx, cfg.Cache)
		if err != nil {
			log.Printf("cache disabled: %v", err)
		} else {
			defer store.Close()
			key = cache.Key(f, cfg.Render, rec.Variable, rec.Units)
		}
	}

	geojsonOnly := cfg.Outputs[config.GeoJSON] && !cfg.Outputs[config.SVG] && !cfg.Outputs[config.PNG]
	if store != nil && geojsonOnly {
		payload, err := store.Get(ctx, key)
		switch {
		case err == nil:
			path := cfg.OutputPath(config.GeoJSON, rec.Key)
			log.Printf("Writing cached GeoJSON to %s...", path)
			return os.WriteFile(path, payload, 0o644)
		case !errors.Is(err, cache.ErrMiss):
			log.Printf("cache read failed: %v", err)
		}
	}

	res, err := render.Run(ctx, f, cfg.Render)
	if err != nil {
		return err
	}

	if cfg.Outputs[config.GeoJSON] {
		var buf bytes.Buffer
		if err := export.WriteGeoJSON(&buf, res.Bands, rec.Variable, rec.Units); err != nil {
			return err
		}
		path := cfg.OutputPath(config.GeoJSON, rec.Key)
		log.Printf("Writing GeoJSON to %s...", path)
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			return err
		}
		if store != nil {
			if err := store.Put(ctx, key, buf.Bytes()); err != nil {
				log.Printf("cache write failed: %v", err)
			}
		}
	}

	if cfg.Outputs[config.SVG] {
		path := cfg.OutputPath(config.SVG, rec.Key)
		log.Printf("Writing to SVG file %s...", path)
		if err := writeFile(path, func(fh *os.File) error {
			return export.WriteSVG(fh, res.Width, res.Height, res.Bands)
		}); err != nil {
			return err
		}
	}

	if cfg.Outputs[config.PNG] {
		path := cfg.OutputPath(config.PNG, rec.Key)
		log.Printf("Rendering image to %s...", path)
		if err := writeFile(path, func(fh *os.File) error {
			return export.WritePNG(fh, res.Width, res.Height, cfg.PNGScale, res.Bands)
		}); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, fn func(*os.File) error) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(fh); err != nil {
		fh.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return fh.Close()
}
