// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package grcontext

import (
	"slices"
	"testing"

	"github.com/gogpu/ggctx/host"
)

func TestRegistryInsertOrGet(t *testing.T) {
	r := NewRegistry()
	a, _ := newTestContext(t)
	b, _ := newTestContext(t)

	got, inserted := r.Insert(5, a)
	if !inserted || got != a {
		t.Fatalf("Insert(5, a) = (%p, %v), want (a, true)", got, inserted)
	}
	got, inserted = r.Insert(5, b)
	if inserted || got != a {
		t.Errorf("Insert(5, b) = (%p, %v), want (a, false)", got, inserted)
	}
	if a.Handle() != 5 {
		t.Errorf("Handle() = %d, want 5", a.Handle())
	}
}

func TestRegistryRemoveAndClear(t *testing.T) {
	r := NewRegistry()
	for _, h := range []host.Handle{3, 1, 2} {
		ctx, _ := newTestContext(t)
		r.Insert(h, ctx)
	}
	if got := r.Handles(); !slices.Equal(got, []host.Handle{1, 2, 3}) {
		t.Errorf("Handles() = %v, want [1 2 3]", got)
	}

	ctx, _ := r.Get(2)
	if !r.Remove(2) {
		t.Fatal("Remove(2) = false")
	}
	if r.Remove(2) {
		t.Error("second Remove(2) = true")
	}
	if !ctx.Abandoned() {
		t.Error("removed context not released")
	}

	var seen []host.Handle
	r.Each(func(h host.Handle, _ *DirectContext) { seen = append(seen, h) })
	if !slices.Equal(seen, []host.Handle{1, 3}) {
		t.Errorf("Each visited %v, want [1 3]", seen)
	}

	r.Clear()
	if r.Len() != 0 {
		t.Errorf("Len() after Clear = %d", r.Len())
	}
}
