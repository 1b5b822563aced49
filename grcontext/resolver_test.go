// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package grcontext

import (
	"errors"
	"testing"

	"github.com/gogpu/ggctx/host"
	"github.com/gogpu/ggctx/internal/fakegpu"
)

func newTestResolver(t *testing.T) (*fakegpu.Host, *Resolver) {
	t.Helper()
	h := fakegpu.NewHost()
	return h, NewResolver(h, h)
}

func mustCreate(t *testing.T, h *fakegpu.Host) host.Handle {
	t.Helper()
	id, err := h.CreateContext("#canvas", host.DefaultAttributes())
	if err != nil {
		t.Fatalf("CreateContext() error = %v", err)
	}
	return id
}

func TestResolveNoCurrentContext(t *testing.T) {
	_, r := newTestResolver(t)

	ctx, err := r.Resolve()
	if ctx != nil {
		t.Error("Resolve() returned a context with nothing current")
	}
	if !errors.Is(err, ErrNoCurrentContext) {
		t.Errorf("Resolve() error = %v, want ErrNoCurrentContext", err)
	}
	if got := r.LastError(); got != CodeNoCurrentContext {
		t.Errorf("LastError() = %v, want %v", got, CodeNoCurrentContext)
	}
	if r.Registry().Len() != 0 {
		t.Errorf("registry len = %d, want 0", r.Registry().Len())
	}
}

// TestResolveCached tests that consecutive resolutions return the same state.
func TestResolveCached(t *testing.T) {
	h, r := newTestResolver(t)
	if err := h.MakeContextCurrent(mustCreate(t, h)); err != nil {
		t.Fatal(err)
	}

	first, err := r.Resolve()
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	second, err := r.Resolve()
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if first != second {
		t.Error("consecutive Resolve() calls returned different contexts")
	}
	if h.Interfaces != 1 {
		t.Errorf("interfaces built = %d, want 1", h.Interfaces)
	}
	if got := r.LastError(); got != CodeOK {
		t.Errorf("LastError() = %v, want ok", got)
	}
}

// TestResolveSwitching tests A -> B -> A activation.
func TestResolveSwitching(t *testing.T) {
	h, r := newTestResolver(t)
	a, b := mustCreate(t, h), mustCreate(t, h)

	resolveAt := func(id host.Handle) *DirectContext {
		t.Helper()
		if err := h.MakeContextCurrent(id); err != nil {
			t.Fatal(err)
		}
		ctx, err := r.Resolve()
		if err != nil {
			t.Fatalf("Resolve() at %d error = %v", id, err)
		}
		return ctx
	}

	s1 := resolveAt(a)
	s2 := resolveAt(b)
	s3 := resolveAt(a)

	if s1 == s2 {
		t.Error("distinct handles share a context")
	}
	if s1 != s3 {
		t.Error("re-activating A did not return the original context")
	}
	if r.Registry().Len() != 2 {
		t.Errorf("registry len = %d, want 2", r.Registry().Len())
	}
	if s1.Handle() != a || s2.Handle() != b {
		t.Errorf("handles = (%d, %d), want (%d, %d)", s1.Handle(), s2.Handle(), a, b)
	}
}

func TestResolveInterfaceFailureNotCached(t *testing.T) {
	h, r := newTestResolver(t)
	if err := h.MakeContextCurrent(mustCreate(t, h)); err != nil {
		t.Fatal(err)
	}
	h.FailInterface = true

	_, err := r.Resolve()
	if !errors.Is(err, ErrInterfaceCreation) {
		t.Fatalf("Resolve() error = %v, want ErrInterfaceCreation", err)
	}
	if !errors.Is(err, fakegpu.ErrInjected) {
		t.Errorf("Resolve() error = %v, want it to wrap the driver cause", err)
	}
	if got := r.LastError(); got != CodeInterfaceCreationFailed {
		t.Errorf("LastError() = %v, want %v", got, CodeInterfaceCreationFailed)
	}
	if r.Registry().Len() != 0 {
		t.Fatal("failed resolution was cached")
	}

	h.FailInterface = false
	if _, err := r.Resolve(); err != nil {
		t.Fatalf("Resolve() after recovery error = %v", err)
	}
	if got := r.LastError(); got != CodeOK {
		t.Errorf("LastError() = %v, want ok", got)
	}
}

func TestResolveContextCreationFailure(t *testing.T) {
	h, r := newTestResolver(t)
	if err := h.MakeContextCurrent(mustCreate(t, h)); err != nil {
		t.Fatal(err)
	}
	h.BadCaps = true

	_, err := r.Resolve()
	if !errors.Is(err, ErrContextCreation) {
		t.Fatalf("Resolve() error = %v, want ErrContextCreation", err)
	}
	if got := r.LastError(); got != CodeContextCreationFailed {
		t.Errorf("LastError() = %v, want %v", got, CodeContextCreationFailed)
	}
	if r.Registry().Len() != 0 {
		t.Error("failed resolution was cached")
	}
}

// TestDestroyThenReuseHandle tests that a recycled handle value gets a
// fresh context.
func TestDestroyThenReuseHandle(t *testing.T) {
	h, r := newTestResolver(t)
	const id host.Handle = 7
	if _, err := h.CreateContextAt(id, "#a", host.DefaultAttributes()); err != nil {
		t.Fatal(err)
	}
	if err := r.MakeCurrent(id); err != nil {
		t.Fatal(err)
	}
	old, err := r.Resolve()
	if err != nil {
		t.Fatal(err)
	}

	if err := r.Destroy(id); err != nil {
		t.Fatalf("Destroy() error = %v", err)
	}
	if _, ok := r.Registry().Get(id); ok {
		t.Fatal("Destroy() left the registry entry")
	}
	if !old.Abandoned() {
		t.Error("destroyed context was not released")
	}

	if _, err := h.CreateContextAt(id, "#b", host.DefaultAttributes()); err != nil {
		t.Fatal(err)
	}
	if err := r.MakeCurrent(id); err != nil {
		t.Fatal(err)
	}
	fresh, err := r.Resolve()
	if err != nil {
		t.Fatal(err)
	}
	if fresh == old {
		t.Error("recycled handle returned the destroyed context")
	}
}

func TestDestroyRemovesEntryWhenHostFails(t *testing.T) {
	h, r := newTestResolver(t)
	id := mustCreate(t, h)
	if err := r.MakeCurrent(id); err != nil {
		t.Fatal(err)
	}
	h.FailDestroy = fakegpu.ErrInjected

	if err := r.Destroy(id); !errors.Is(err, fakegpu.ErrInjected) {
		t.Errorf("Destroy() error = %v, want injected error", err)
	}
	if r.Registry().Len() != 0 {
		t.Error("registry entry survived a failed host teardown")
	}
}

func TestMakeCurrentPopulatesEagerly(t *testing.T) {
	h, r := newTestResolver(t)
	id := mustCreate(t, h)

	if err := r.MakeCurrent(id); err != nil {
		t.Fatalf("MakeCurrent() error = %v", err)
	}
	if _, ok := r.Registry().Get(id); !ok {
		t.Error("MakeCurrent() did not populate the registry")
	}

	if err := r.MakeCurrent(host.NoContext); !errors.Is(err, host.ErrInvalidHandle) {
		t.Errorf("MakeCurrent(NoContext) error = %v, want ErrInvalidHandle", err)
	}
}

func TestMakeCurrentKeepsActivationOnResolveFailure(t *testing.T) {
	h, r := newTestResolver(t)
	id := mustCreate(t, h)
	h.FailInterface = true

	if err := r.MakeCurrent(id); err != nil {
		t.Fatalf("MakeCurrent() error = %v", err)
	}
	if h.CurrentContext() != id {
		t.Error("context not current after MakeCurrent")
	}
	if got := r.LastError(); got != CodeInterfaceCreationFailed {
		t.Errorf("LastError() = %v, want %v", got, CodeInterfaceCreationFailed)
	}
}

func TestOutOfBandDestroy(t *testing.T) {
	h, r := newTestResolver(t)
	id := mustCreate(t, h)
	if err := r.MakeCurrent(id); err != nil {
		t.Fatal(err)
	}

	h.LoseContext(id)

	if r.Registry().Len() != 0 {
		t.Error("lost context still cached")
	}
	if _, err := r.Resolve(); !errors.Is(err, ErrNoCurrentContext) {
		t.Errorf("Resolve() error = %v, want ErrNoCurrentContext", err)
	}
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		code ErrorCode
		name string
		err  error
	}{
		{CodeOK, "ok", nil},
		{CodeNoCurrentContext, "no-current-context", ErrNoCurrentContext},
		{CodeInterfaceCreationFailed, "interface-creation-failed", ErrInterfaceCreation},
		{CodeContextCreationFailed, "context-creation-failed", ErrContextCreation},
	}
	for _, tt := range tests {
		if got := tt.code.String(); got != tt.name {
			t.Errorf("%d.String() = %q, want %q", int32(tt.code), got, tt.name)
		}
		if got := CodeOf(tt.err); got != tt.code {
			t.Errorf("CodeOf(%v) = %v, want %v", tt.err, got, tt.code)
		}
	}
	if got := ErrorCode(42).String(); got != "ErrorCode(42)" {
		t.Errorf("ErrorCode(42).String() = %q", got)
	}
}

func TestResolveErrorMessage(t *testing.T) {
	err := &ResolveError{Code: CodeInterfaceCreationFailed, Handle: 3, Err: fakegpu.ErrInjected}
	want := "grcontext: driver interface creation failed (handle 3): fakegpu: injected failure"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
