// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

// CacheState is the three states an inline cache line moves through,
// per ß4.5 and inline-cache.hpp: a line starts Uninitialized, records
// a tentative class the first time it fires (Premorphic), and only
// starts skipping the full lookup once the same class shows up twice
// in a row (Monomorphic). A Premorphic miss still overwrites the line
// with the new class (demoting back to Premorphic, or re-promoting to
// Monomorphic if the new class matches what was already recorded), but
// a Monomorphic miss leaves the line untouched and takes the uncached
// path instead: ß4.5 — "no cache invalidation; other site may still be
// mono for its class."
type CacheState uint8

const (
	CacheUninitialized CacheState = iota
	CachePremorphic
	CacheMonomorphic
)

// MethodCacheLine is the call-site inline cache for method dispatch
// (ß3 "Inline Cache Lines"): it remembers the receiver class last seen
// at this call site and, once Monomorphic, the resolved function
// directly, skipping ResolveMethod entirely on a hit (the caller still
// computes the receiver's class with ClassOf).
type MethodCacheLine struct {
	state       CacheState
	class       *Cell
	fn          *Cell
	definedOn   *Cell
	missingHit  bool
}

// Lookup resolves name on an object of the given class through the
// cache, doing the full class-chain walk only on a miss or a class
// change. It returns the same (fn, definedOn, isMissing) triple
// ResolveMethod does.
func (rt *Runtime) Lookup(line *MethodCacheLine, class *Cell, name Symbol) (fn *Cell, definedOn *Cell, isMissing bool) {
	switch line.state {
	case CacheMonomorphic:
		if line.class == class {
			return line.fn, line.definedOn, line.missingHit
		}
		// A monomorphic miss takes the uncached path without touching
		// the line (ß4.5: "no cache invalidation; other site may still
		// be mono for its class"). This call site may see a foreign
		// class only once; the cached class can still be the stable
		// case for every other call through it.
		return rt.ResolveMethod(class, name)
	case CachePremorphic:
		fn, definedOn, isMissing = rt.ResolveMethod(class, name)
		if line.class == class {
			line.state = CacheMonomorphic
		}
		line.class, line.fn, line.definedOn, line.missingHit = class, fn, definedOn, isMissing
		return fn, definedOn, isMissing
	default: // CacheUninitialized
		fn, definedOn, isMissing = rt.ResolveMethod(class, name)
		line.state = CachePremorphic
		line.class, line.fn, line.definedOn, line.missingHit = class, fn, definedOn, isMissing
		return fn, definedOn, isMissing
	}
}

// IvarCacheLine is the call-site inline cache for instance-variable
// access by name: it remembers the class last seen and the slot index
// that name resolved to within it, so repeated access at a stable call
// site (the overwhelmingly common case, ß4.5) skips the map lookup in
// ivarIndex.
type IvarCacheLine struct {
	state CacheState
	class *Cell
	index int
}

// LookupIvarIndex resolves name to a slot index on class through the
// cache, creating the slot if needed and requested. Follows the same
// three-state transitions a method cache line does (ß4.5: "IV cache
// lines follow the same state transitions, storing the resolved
// index instead of a method"), including leaving a monomorphic line
// untouched on a miss.
func (rt *Runtime) LookupIvarIndex(line *IvarCacheLine, c *Cell, name Symbol, create bool) (int, error) {
	class := c.class
	switch line.state {
	case CacheMonomorphic:
		if line.class == class {
			return line.index, nil
		}
		return rt.ivarIndex(c, name, create)
	case CachePremorphic:
		idx, err := rt.ivarIndex(c, name, create)
		if err != nil {
			return -1, err
		}
		if idx < 0 {
			line.state = CacheUninitialized
			return idx, nil
		}
		if line.class == class {
			line.state = CacheMonomorphic
		}
		line.class, line.index = class, idx
		return idx, nil
	default: // CacheUninitialized
		idx, err := rt.ivarIndex(c, name, create)
		if err != nil {
			return -1, err
		}
		if idx < 0 {
			return idx, nil
		}
		line.state = CachePremorphic
		line.class, line.index = class, idx
		return idx, nil
	}
}
