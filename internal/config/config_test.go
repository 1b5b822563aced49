// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Backend != "vulkan" || c.Width != 640 || c.Height != 480 {
		t.Errorf("defaults = %s %dx%d, want vulkan 640x480", c.Backend, c.Width, c.Height)
	}
	if c.Cache.LimitMB != 256 || c.Cache.CleanupAfter != 5*time.Second {
		t.Errorf("cache = %+v, want 256 MiB and 5s", c.Cache)
	}
	if c.Context.NoAntialias || c.Context.NoStencil {
		t.Errorf("context = %+v, want antialias and stencil", c.Context)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	data := "backend: noop\nwidth: 100\ncache:\n  limit_mb: 32\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GGCTX_HEIGHT", "50")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Backend != "noop" || c.Width != 100 || c.Height != 50 {
		t.Errorf("config = %s %dx%d, want noop 100x50", c.Backend, c.Width, c.Height)
	}
	if c.Cache.LimitMB != 32 {
		t.Errorf("Cache.LimitMB = %d, want 32", c.Cache.LimitMB)
	}
}

func TestParseFlagsOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ggctx.yaml")
	if err := os.WriteFile(path, []byte("width: 100\nheight: 60\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	c, err := Parse("test", []string{"-c", path, "--width", "320", "--no-stencil", "-b", "raster"})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if c.Width != 320 {
		t.Errorf("Width = %d, want 320 from flag", c.Width)
	}
	if c.Height != 60 {
		t.Errorf("Height = %d, want 60 from file", c.Height)
	}
	if !c.Context.NoStencil || c.Backend != "raster" {
		t.Errorf("flags not applied: %+v", c)
	}
}

func TestParseUnknownFlag(t *testing.T) {
	t.Chdir(t.TempDir())
	if _, err := Parse("test", []string{"--nope"}); err == nil {
		t.Error("Parse() accepted an unknown flag")
	}
}
