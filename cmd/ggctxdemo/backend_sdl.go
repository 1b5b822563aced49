// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build sdl

package main

import (
	"runtime"

	"github.com/gogpu/ggctx/driver/gldriver"
)

func openGL() (*backend, error) {
	// GL contexts are bound to the thread that made them current.
	runtime.LockOSThread()
	h, err := gldriver.NewHost()
	if err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}
	return &backend{host: h, factory: h, gpu: true, close: func() {
		h.Close()
		runtime.UnlockOSThread()
	}}, nil
}
