// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package thread pins work to the main OS thread where the platform
// requires it. Window systems and GL contexts on macOS may only be touched
// from the main thread; elsewhere the functions run f directly.
package thread

import (
	"runtime"

	"github.com/faiface/mainthread"
)

var needsMain = runtime.GOOS == "darwin"

// MainWrapMaybe runs f with the main thread serving Call. It must be
// called from main and returns when f returns.
func MainWrapMaybe(f func()) {
	if needsMain {
		mainthread.Run(f)
		return
	}
	f()
}

// MainMaybe runs f on the main thread and waits for it.
func MainMaybe(f func()) {
	if needsMain {
		mainthread.Call(f)
		return
	}
	f()
}

// MainErr is MainMaybe for functions returning an error.
func MainErr(f func() error) error {
	var err error
	MainMaybe(func() { err = f() })
	return err
}
