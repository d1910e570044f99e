// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import "testing"

func TestIvarCacheGoesMonomorphicOnRepeat(t *testing.T) {
	rt := testRuntime(t)
	class, _ := rt.DefineClass("Vec", nil)
	obj, _ := rt.CreateObject(class)
	sym := rt.Symbols().Intern("x")

	var line IvarCacheLine
	idx1, err := rt.LookupIvarIndex(&line, obj, sym, true)
	if err != nil {
		t.Fatal(err)
	}
	if line.state != CachePremorphic {
		t.Errorf("after first lookup, state = %v, want Premorphic", line.state)
	}
	idx2, err := rt.LookupIvarIndex(&line, obj, sym, true)
	if err != nil {
		t.Fatal(err)
	}
	if idx1 != idx2 {
		t.Errorf("the same ivar should resolve to the same index, got %d and %d", idx1, idx2)
	}
	if line.state != CacheMonomorphic {
		t.Errorf("after second lookup with the same class, state = %v, want Monomorphic", line.state)
	}
}

func TestIvarCacheMonomorphicMissDoesNotInvalidate(t *testing.T) {
	rt := testRuntime(t)
	classA, _ := rt.DefineClass("A", nil)
	classB, _ := rt.DefineClass("B", nil)
	objA, _ := rt.CreateObject(classA)
	objB, _ := rt.CreateObject(classB)
	sym := rt.Symbols().Intern("field")

	var line IvarCacheLine
	idxA, _ := rt.LookupIvarIndex(&line, objA, sym, true)
	rt.LookupIvarIndex(&line, objA, sym, true)
	if line.state != CacheMonomorphic {
		t.Fatal("expected Monomorphic after two lookups against the same class")
	}

	// ß4.5: a monomorphic miss takes the uncached path without
	// touching the line — this call site may see classB only once,
	// and classA may still be the stable case for every other call
	// through it.
	idxB, err := rt.LookupIvarIndex(&line, objB, sym, true)
	if err != nil {
		t.Fatal(err)
	}
	if idxB != idxA {
		t.Errorf("the uncached result for objB's own slot = %d, want %d", idxB, idxA)
	}
	if line.state != CacheMonomorphic {
		t.Errorf("a monomorphic miss must not invalidate the line, got state %v", line.state)
	}
	if line.class != classA || line.index != idxA {
		t.Errorf("a monomorphic miss must not overwrite the cached class/index, got class=%v index=%d", line.class, line.index)
	}
}

func TestMethodCacheUninitializedStartsAtZeroValue(t *testing.T) {
	var line MethodCacheLine
	if line.state != CacheUninitialized {
		t.Errorf("zero-value MethodCacheLine.state = %v, want CacheUninitialized", line.state)
	}
}
