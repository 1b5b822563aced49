// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !sdl

package main

import "errors"

func openGL() (*backend, error) {
	return nil, errors.New("gl backend requires building with -tags sdl")
}
