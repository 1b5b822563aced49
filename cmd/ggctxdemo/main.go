// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command ggctxdemo creates a GPU context, draws into the best surface it
// can get and writes the result as PNG.
//
//	ggctxdemo --backend noop -o out.png
//	ggctxdemo --backend raster --metrics :9090
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"github.com/gogpu/ggctx"
	"github.com/gogpu/ggctx/grcontext"
	"github.com/gogpu/ggctx/host"
	"github.com/gogpu/ggctx/internal/config"
	"github.com/gogpu/ggctx/internal/thread"
	"github.com/gogpu/ggctx/metrics"
	"github.com/gogpu/ggctx/surface"
)

func main() {
	code := 0
	thread.MainWrapMaybe(func() {
		if err := run(os.Args[1:]); err != nil {
			if errors.Is(err, pflag.ErrHelp) {
				return
			}
			fmt.Fprintln(os.Stderr, "ggctxdemo:", err)
			code = 1
		}
	})
	os.Exit(code)
}

func newLogger(level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "json":
		return slog.New(slog.NewJSONHandler(os.Stderr, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), nil
	}
	return nil, fmt.Errorf("unknown log format %q", format)
}

func serveMetrics(addr string, reg *prometheus.Registry, log *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server stopped", "address", addr, "error", err)
		}
	}()
	log.Info("serving metrics", "address", addr)
}

func run(args []string) error {
	cfg, err := config.Parse("ggctxdemo", args)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	ggctx.SetLogger(log)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if cfg.Metrics.Address != "" {
		serveMetrics(cfg.Metrics.Address, reg, log)
	}

	b, err := openBackend(cfg.Backend)
	if err != nil {
		return err
	}
	defer b.close()

	r := grcontext.NewResolver(b.host, b.factory,
		grcontext.WithCacheLimit(uint64(max(cfg.Cache.LimitMB, 0))<<20))

	if b.gpu {
		attrs := host.DefaultAttributes()
		attrs.Antialias = !cfg.Context.NoAntialias
		attrs.Stencil = !cfg.Context.NoStencil
		attrs.Width, attrs.Height = cfg.Width, cfg.Height
		h, err := r.CreateContext("#ggctxdemo", attrs)
		if err != nil {
			log.Warn("context creation failed, drawing on the CPU", "backend", cfg.Backend, "error", err)
		} else if err := r.MakeCurrent(h); err != nil {
			log.Warn("make current failed, drawing on the CPU", "handle", h, "error", err)
		}
		defer func() {
			if h != host.NoContext {
				_ = r.Destroy(h)
			}
		}()
	}

	f := surface.NewFactory(r)
	s, err := f.MakeBestAvailable(cfg.Width, cfg.Height,
		surface.WithColorSpace(surface.ParseColorSpace(cfg.ColorSpace)))
	m.ObserveResolve(r.LastError())
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()
	m.ObserveSurface(s.Kind(), true)
	log.Info("surface ready", "kind", s.Kind(), "width", s.Width(), "height", s.Height(),
		"last_error", r.LastError())

	draw(s.Canvas())
	if err := s.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if ctx, err := r.Resolve(); err == nil {
		if err := ctx.FlushAndSubmit(true); err != nil {
			return fmt.Errorf("submit: %w", err)
		}
		ctx.PerformDeferredCleanup(cfg.Cache.CleanupAfter)
		log.Info("resource cache", "stats", ctx.CacheStats().String())
	}
	m.ObserveRegistry(r.Registry())

	out, err := os.Create(cfg.Output)
	if err != nil {
		return err
	}
	if err := surface.EncodePNG(out, s); err != nil {
		_ = out.Close()
		return fmt.Errorf("encode %s: %w", cfg.Output, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	log.Info("wrote image", "path", cfg.Output)
	return nil
}
