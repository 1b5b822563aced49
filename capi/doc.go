// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package capi is the flat boundary an embedding host calls into.
//
// Every object crosses the boundary as a numeric [Handle]. Constructing
// calls return a non-zero handle or 0; each returned surface and image
// handle must be released exactly once with DeleteSurface or DeleteImage.
// Canvas handles and device object handles belong to the runtime.
//
// Invalid arguments (zero handles, non-positive sizes, short slices) turn
// a call into a no-op that returns 0, -1 or nil. Panics never cross the
// boundary. Why a GPU call returned 0 can be read from
// [Runtime.GetLastError].
//
// Matrices are 9 row-major floats, rectangles 4 floats in left, top,
// right, bottom order, colors either packed 0xAARRGGBB or 4 floats.
//
// # Example
//
//	rt := capi.New(h, h)
//	ctx := rt.CreateContext("#canvas", true)
//	rt.MakeContextCurrent(ctx)
//
//	s := rt.MakeCanvasSurface(640, 480, "")
//	defer rt.DeleteSurface(s)
//	c := rt.SurfaceGetCanvas(s)
//	rt.CanvasClear(c, 0xFFFFFFFF)
//	rt.CanvasDrawRect(c, 10, 10, 100, 100, 0xFF0000FF)
//	rt.SurfaceFlush(s)
package capi
