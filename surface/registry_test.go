// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/gogpu/ggctx"
	"github.com/gogpu/ggctx/grcontext"
)

func rasterFactory(opts Options) (Surface, error) {
	return NewImageSurface(opts.Width, opts.Height)
}

// TestRegistryRegister tests backend registration.
func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	r.Register("test", 50, rasterFactory, nil)

	entry, ok := r.Get("test")
	if !ok {
		t.Fatal("registered backend not found")
	}
	if entry.Name != "test" {
		t.Errorf("Name = %s, want test", entry.Name)
	}
	if entry.Priority != 50 {
		t.Errorf("Priority = %d, want 50", entry.Priority)
	}
	if !entry.Available() {
		t.Error("backend should be available (nil Available func)")
	}

	r.Unregister("test")
	if _, ok := r.Get("test"); ok {
		t.Error("backend should not exist after unregister")
	}
}

// TestRegistryOrdering tests priority order and availability filtering.
func TestRegistryOrdering(t *testing.T) {
	r := NewRegistry()
	r.Register("low", 10, rasterFactory, nil)
	r.Register("high", 100, rasterFactory, nil)
	r.Register("off", 200, rasterFactory, func() bool { return false })
	r.Register("mid-b", 50, rasterFactory, nil)
	r.Register("mid-a", 50, rasterFactory, nil)

	if got, want := r.List(), []string{"off", "high", "mid-a", "mid-b", "low"}; !slices.Equal(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}
	if got, want := r.Available(), []string{"high", "mid-a", "mid-b", "low"}; !slices.Equal(got, want) {
		t.Errorf("Available() = %v, want %v", got, want)
	}
}

// TestRegistryFallback tests that a failing preferred backend falls
// through to the next one.
func TestRegistryFallback(t *testing.T) {
	r := NewRegistry()
	failing := errors.New("gpu unavailable")
	r.Register("gpu", PriorityGPU, func(Options) (Surface, error) { return nil, failing }, nil)
	r.Register("cpu", PrioritySoftware, rasterFactory, nil)

	s, err := r.NewSurface(Options{Width: 8, Height: 4})
	if err != nil {
		t.Fatalf("NewSurface() error = %v", err)
	}
	defer s.Close()
	if s.Kind() != KindRaster || s.Width() != 8 || s.Height() != 4 {
		t.Errorf("got %v %dx%d, want raster 8x4", s.Kind(), s.Width(), s.Height())
	}

	r.Unregister("cpu")
	if _, err := r.NewSurface(Options{Width: 8, Height: 4}); !errors.Is(err, failing) {
		t.Errorf("NewSurface() error = %v, want last backend error", err)
	}
}

// TestRegistryFallbackLogLevel tests that falling back for lack of a
// current context logs at debug and any other failure at warn.
func TestRegistryFallbackLogLevel(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"no context", fmt.Errorf("onscreen: %w", grcontext.ErrNoCurrentContext), "level=DEBUG"},
		{"backend failure", errors.New("device lost"), "level=WARN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			ggctx.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
			defer ggctx.SetLogger(nil)

			r := NewRegistry()
			r.Register("gpu", PriorityGPU, func(Options) (Surface, error) { return nil, tt.err }, nil)
			r.Register("cpu", PrioritySoftware, rasterFactory, nil)
			s, err := r.NewSurface(Options{Width: 4, Height: 4})
			if err != nil {
				t.Fatalf("NewSurface() error = %v", err)
			}
			defer s.Close()

			out := buf.String()
			if !strings.Contains(out, "falling back") || !strings.Contains(out, tt.want) {
				t.Errorf("log = %q, want a fallback record with %s", out, tt.want)
			}
		})
	}
}

func TestRegistryErrors(t *testing.T) {
	r := NewRegistry()
	if _, err := r.NewSurface(Options{Width: 1, Height: 1}); !errors.Is(err, ErrNoBackendAvailable) {
		t.Errorf("empty registry error = %v, want ErrNoBackendAvailable", err)
	}

	_, err := r.NewSurfaceByName("missing", Options{Width: 1, Height: 1})
	var nf *BackendNotFoundError
	if !errors.As(err, &nf) || nf.Name != "missing" {
		t.Errorf("NewSurfaceByName(missing) error = %v, want BackendNotFoundError", err)
	}
	if got := nf.Error(); got != "surface: backend not found: missing" {
		t.Errorf("Error() = %q", got)
	}

	r.Register("off", 1, rasterFactory, func() bool { return false })
	_, err = r.NewSurfaceByName("off", Options{Width: 1, Height: 1})
	var ua *BackendUnavailableError
	if !errors.As(err, &ua) || ua.Name != "off" {
		t.Errorf("NewSurfaceByName(off) error = %v, want BackendUnavailableError", err)
	}
}
