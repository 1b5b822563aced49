// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gldriver implements host contexts and the driver interface on
// desktop OpenGL 2.1 through SDL2.
//
// Each context owns a hidden SDL window whose GL context provides the
// default framebuffer. Render targets are textures attached to framebuffer
// objects. The package is only built with the sdl tag:
//
//	go build -tags sdl ./...
//
// GL contexts are bound to an OS thread. Callers must lock theirs with
// runtime.LockOSThread, or run through internal/thread on macOS where
// windows may only be created on the main thread.
package gldriver
