// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package marshal_test

import (
	"testing"

	"golang.org/x/tools/txtar"

	"snow/internal/core"
	"snow/internal/marshal"
)

func newRuntime(t *testing.T) *core.Runtime {
	t.Helper()
	return core.NewRuntime(core.Config{
		AbortHook: func(msg string) { t.Fatalf("unexpected abort: %s", msg) },
	})
}

func TestMarshalRoundTripImmediates(t *testing.T) {
	rt := newRuntime(t)
	sym := rt.Symbols().Intern("hello")
	cases := []core.Value{
		core.Nil,
		core.True,
		core.False,
		core.Int(42),
		core.Int(-7),
		core.Float32(3.5),
		core.SymbolValue(sym),
	}
	for _, v := range cases {
		data, err := marshal.Marshal(rt, v)
		if err != nil {
			t.Fatalf("Marshal(%v): %v", v, err)
		}
		got, err := marshal.Load(rt, data)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if !got.Equal(v) {
			t.Errorf("round trip mismatch: got %v, want %v", got, v)
		}
	}
}

func TestMarshalArrayAndMap(t *testing.T) {
	rt := newRuntime(t)
	arr := rt.NewArray([]core.Value{core.Int(1), core.Int(2), core.Int(3)})
	data, err := marshal.Marshal(rt, arr)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := marshal.Load(rt, data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	elems, ok := rt.ArrayElements(got)
	if !ok || len(elems) != 3 {
		t.Fatalf("expected a 3-element array, got %v", got)
	}
	for i, want := range []int64{1, 2, 3} {
		if elems[i].Int64() != want {
			t.Errorf("elems[%d] = %d, want %d", i, elems[i].Int64(), want)
		}
	}

	key := core.Int(1)
	m := rt.NewMap(map[core.Value]core.Value{key: rt.NewString("one")})
	data, err = marshal.Marshal(rt, m)
	if err != nil {
		t.Fatalf("Marshal map: %v", err)
	}
	got, err = marshal.Load(rt, data)
	if err != nil {
		t.Fatalf("Load map: %v", err)
	}
	entries, ok := rt.MapEntries(got)
	if !ok || len(entries) != 1 {
		t.Fatalf("expected a 1-entry map, got %v", got)
	}
}

func TestMarshalSharedReference(t *testing.T) {
	rt := newRuntime(t)
	inner := rt.NewArray([]core.Value{core.Int(9)})
	outer := rt.NewArray([]core.Value{inner, inner})

	data, err := marshal.Marshal(rt, outer)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := marshal.Load(rt, data)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	elems, _ := rt.ArrayElements(got)
	if len(elems) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(elems))
	}
	if elems[0].Cell() != elems[1].Cell() {
		t.Errorf("shared array reference was not preserved across the marshal boundary")
	}
}

func TestMarshalRejectsTruncatedStream(t *testing.T) {
	rt := newRuntime(t)
	data, err := marshal.Marshal(rt, rt.NewString("payload"))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	truncated := data[:len(data)-5]
	if _, err := marshal.Load(rt, truncated); err == nil {
		t.Fatal("expected Load to reject a truncated/corrupt stream")
	}
}

// TestMarshalFixture exercises a small archive of named byte fixtures
// the way cmd/go's own test suite encodes scripted test data, per
// SPEC_FULL.md's test-tooling section.
func TestMarshalFixture(t *testing.T) {
	archive := txtar.Parse([]byte(`
-- note.txt --
round trip a couple of plain strings through the marshal codec
`))
	if len(archive.Files) != 1 {
		t.Fatalf("expected 1 file in fixture archive, got %d", len(archive.Files))
	}
	rt := newRuntime(t)
	for _, f := range archive.Files {
		v := rt.NewString(string(f.Data))
		data, err := marshal.Marshal(rt, v)
		if err != nil {
			t.Fatalf("Marshal %s: %v", f.Name, err)
		}
		got, err := marshal.Load(rt, data)
		if err != nil {
			t.Fatalf("Load %s: %v", f.Name, err)
		}
		s, ok := rt.StringValue(got)
		if !ok || s != string(f.Data) {
			t.Errorf("fixture %s: got %q, want %q", f.Name, s, string(f.Data))
		}
	}
}
