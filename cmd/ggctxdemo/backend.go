// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/gogpu/wgpu/hal/noop"
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/ggctx/driver"
	"github.com/gogpu/ggctx/driver/haldriver"
	"github.com/gogpu/ggctx/host"
)

// backend is the host and driver factory the demo resolves contexts on.
type backend struct {
	host    host.Host
	factory driver.Factory

	// gpu is false for the raster backend, which never creates a context.
	gpu   bool
	close func()
}

func openBackend(name string) (*backend, error) {
	switch name {
	case "vulkan", "":
		h := haldriver.NewHost()
		return &backend{host: h, factory: h, gpu: true, close: h.Close}, nil
	case "noop":
		h := haldriver.NewHost(haldriver.WithBackend(noop.API{}))
		return &backend{host: h, factory: h, gpu: true, close: h.Close}, nil
	case "raster":
		h := haldriver.NewHost(haldriver.WithBackend(noop.API{}))
		return &backend{host: h, factory: h, close: h.Close}, nil
	case "gl":
		return openGL()
	}
	return nil, fmt.Errorf("unknown backend %q", name)
}
