// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package grcontext

import (
	"errors"
	"fmt"

	"github.com/gogpu/ggctx/host"
)

// Resolution errors. A *ResolveError matches exactly one of the first three
// with errors.Is.
var (
	// ErrNoCurrentContext is returned when the host reports no active context.
	ErrNoCurrentContext = errors.New("grcontext: no current context")

	// ErrInterfaceCreation is returned when the driver factory cannot build
	// an interface for the active context.
	ErrInterfaceCreation = errors.New("grcontext: driver interface creation failed")

	// ErrContextCreation is returned when a device object cannot be built
	// from a driver interface.
	ErrContextCreation = errors.New("grcontext: context creation failed")

	// ErrAbandoned is returned by operations on an abandoned context.
	ErrAbandoned = errors.New("grcontext: context abandoned")

	// ErrNilInterface is returned when NewDirectContext gets a nil interface.
	ErrNilInterface = errors.New("grcontext: nil driver interface")
)

// ErrorCode is the last-error value kept for flat callers.
type ErrorCode int32

const (
	CodeOK                      ErrorCode = 0
	CodeNoCurrentContext        ErrorCode = 1
	CodeInterfaceCreationFailed ErrorCode = 2
	CodeContextCreationFailed   ErrorCode = 3
)

// String returns a short name for the code.
func (c ErrorCode) String() string {
	switch c {
	case CodeOK:
		return "ok"
	case CodeNoCurrentContext:
		return "no-current-context"
	case CodeInterfaceCreationFailed:
		return "interface-creation-failed"
	case CodeContextCreationFailed:
		return "context-creation-failed"
	}
	return fmt.Sprintf("ErrorCode(%d)", int32(c))
}

// sentinel returns the package error matching c, or nil for CodeOK.
func (c ErrorCode) sentinel() error {
	switch c {
	case CodeNoCurrentContext:
		return ErrNoCurrentContext
	case CodeInterfaceCreationFailed:
		return ErrInterfaceCreation
	case CodeContextCreationFailed:
		return ErrContextCreation
	}
	return nil
}

// ResolveError reports why the current context could not be resolved.
type ResolveError struct {
	Code   ErrorCode
	Handle host.Handle
	Err    error
}

func (e *ResolveError) Error() string {
	msg := e.Code.sentinel().Error()
	if e.Handle != host.NoContext {
		msg = fmt.Sprintf("%s (handle %d)", msg, e.Handle)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the sentinel for Code and the underlying cause.
func (e *ResolveError) Unwrap() []error {
	errs := []error{e.Code.sentinel()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// CodeOf returns the ErrorCode carried by err, CodeOK for nil.
// Errors not produced by resolution map to CodeContextCreationFailed.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var re *ResolveError
	if errors.As(err, &re) {
		return re.Code
	}
	switch {
	case errors.Is(err, ErrNoCurrentContext):
		return CodeNoCurrentContext
	case errors.Is(err, ErrInterfaceCreation):
		return CodeInterfaceCreationFailed
	}
	return CodeContextCreationFailed
}
