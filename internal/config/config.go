// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package config loads ggctxdemo settings from a YAML file, the environment
// and command-line flags, in increasing order of precedence.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/kkyr/fig"
	"github.com/spf13/pflag"
)

const (
	// EnvPrefix prefixes environment overrides, e.g. GGCTX_WIDTH.
	EnvPrefix = "GGCTX"

	// FileName is the configuration file searched for.
	FileName = "ggctx.yaml"
)

// Config holds demo settings.
type Config struct {
	// Backend is vulkan, noop, gl or raster.
	Backend    string `default:"vulkan"`
	Width      int    `default:"640"`
	Height     int    `default:"480"`
	ColorSpace string `fig:"color_space" default:"srgb"`
	Output     string `default:"ggctx.png"`

	Context struct {
		NoAntialias bool `fig:"no_antialias"`
		NoStencil   bool `fig:"no_stencil"`
	}

	Cache struct {
		LimitMB      int           `fig:"limit_mb" default:"256"`
		CleanupAfter time.Duration `fig:"cleanup_after" default:"5s"`
	}

	Log struct {
		Level  string `default:"info"`
		Format string `default:"text"`
	}

	Metrics struct {
		Address string
	}
}

// Load reads the configuration. An empty path searches the working
// directory and ~/.config/ggctx; a missing file leaves defaults and
// environment values.
func Load(path string) (*Config, error) {
	var c Config
	opts := []fig.Option{fig.UseEnv(EnvPrefix)}
	switch file := findFile(path); file {
	case "":
		opts = append(opts, fig.IgnoreFile())
	default:
		opts = append(opts, fig.File(filepath.Base(file)), fig.Dirs(filepath.Dir(file)))
	}
	if err := fig.Load(&c, opts...); err != nil {
		return nil, err
	}
	return &c, nil
}

func findFile(path string) string {
	if path != "" {
		return path
	}
	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", "ggctx"))
	}
	for _, d := range dirs {
		p := filepath.Join(d, FileName)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// WithFlags registers flags on fs. Current values are the flag defaults,
// so flags override the file and environment only when given.
func (c *Config) WithFlags(fs *pflag.FlagSet) *Config {
	fs.StringVarP(&c.Backend, "backend", "b", c.Backend, "GPU backend: [vulkan, noop, gl, raster]")
	fs.IntVar(&c.Width, "width", c.Width, "Surface width")
	fs.IntVar(&c.Height, "height", c.Height, "Surface height")
	fs.StringVar(&c.ColorSpace, "color-space", c.ColorSpace, "Color space: [srgb, display-p3, rec2020, srgb-linear]")
	fs.StringVarP(&c.Output, "output", "o", c.Output, "PNG output path")
	fs.BoolVar(&c.Context.NoAntialias, "no-antialias", c.Context.NoAntialias, "Create the context without multisampling")
	fs.BoolVar(&c.Context.NoStencil, "no-stencil", c.Context.NoStencil, "Create the context without a stencil buffer")
	fs.IntVar(&c.Cache.LimitMB, "cache-limit", c.Cache.LimitMB, "Resource cache limit in MiB")
	fs.DurationVar(&c.Cache.CleanupAfter, "cleanup-after", c.Cache.CleanupAfter, "Purge cached resources unused for this long")
	fs.StringVar(&c.Log.Level, "log-level", c.Log.Level, "Log level: [debug, info, warn, error]")
	fs.StringVar(&c.Log.Format, "log-format", c.Log.Format, "Log format: [text, json]")
	fs.StringVar(&c.Metrics.Address, "metrics", c.Metrics.Address, "Serve Prometheus metrics on this address")
	return c
}

// Parse loads the configuration named by --conf (or found by Load) and
// applies the remaining flags in args.
func Parse(name string, args []string) (*Config, error) {
	pre := pflag.NewFlagSet(name, pflag.ContinueOnError)
	pre.ParseErrorsWhitelist.UnknownFlags = true
	pre.Usage = func() {}
	path := pre.StringP("conf", "c", "", "")
	_ = pre.Parse(args)

	c, err := Load(*path)
	if err != nil {
		return nil, err
	}
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.StringP("conf", "c", "", "Set custom configuration file path")
	c.WithFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return c, nil
}
