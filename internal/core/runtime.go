// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"os"
	"sync"
)

// Config configures one Runtime instance. Unlike cmd/go/internal/cfg's
// package-level build configuration, this is scoped per instance:
// embedders (notably tests) routinely run more than one Runtime in a
// single process, and each needs its own allocator, GC state and
// symbol table.
type Config struct {
	// CollectionThreshold seeds the GC's first collection trigger
	// (ß4.3). Zero uses defaultGCThreshold.
	CollectionThreshold int
	// Logger receives GC-cycle and abort diagnostic output. Nil uses
	// NopLogger.
	Logger Logger
	// AbortHook is invoked for ß7 "Abort"-tier errors (lookup failure,
	// resource exhaustion). Nil installs a hook that logs and calls
	// os.Exit(1), the production default; tests typically supply one
	// that panics so the abort can be recovered and asserted on.
	AbortHook func(msg string)
	// DebugBacktrace asks captureBacktrace to render each frame with a
	// short internal/disasm disassembly of its function's native code
	// (SetNativeCode), instead of just its name. Off by default: most
	// functions here are hand-written Go natives with no machine-code
	// span to show, and the cost of decoding one is only worth paying
	// when a host is actively debugging a generated-code backtrace.
	DebugBacktrace bool
}

// Runtime is a single, independently bootstrapped instance of the
// object model: its own allocator, GC, symbol table, builtin class
// registry and fiber scheduler. Nothing here is a package-level
// global — ß9's "process-wide, lazily initialized once, never torn
// down" global-state intent is honored per Runtime value rather than
// per process, which is what lets tests create as many independent
// runtimes as they need.
type Runtime struct {
	alloc *Allocator
	ext   *extTable
	gc    *GC
	sym   *SymbolTable
	logger Logger
	config Config

	classesByName map[string]*Cell

	classClass       *Cell
	objectClass      *Cell
	integerClass     *Cell
	floatClass       *Cell
	nilClass         *Cell
	booleanClass     *Cell
	symbolClass      *Cell
	stringClass      *Cell
	arrayClass       *Cell
	mapClass         *Cell
	functionClass    *Cell
	environmentClass *Cell
	fiberClass       *Cell
	exceptionClass   *Cell

	current  *Fiber
	fibers   []*Fiber
	fibersMu sync.Mutex
}

// NewRuntime bootstraps a fresh Runtime: allocator, GC, symbol table,
// the full builtin class registry (ß9 design notes: "Class, Object,
// Integer, Nil, Boolean, Symbol, Float, String, Array, Map, Function,
// Environment, Fiber, Exception"), and their minimal native method
// sets (bootstrapBuiltins).
func NewRuntime(cfg Config) *Runtime {
	rt := &Runtime{config: cfg, classesByName: make(map[string]*Cell)}
	rt.alloc = NewAllocator()
	rt.ext = newExtTable()
	rt.sym = NewSymbolTable()
	if cfg.Logger != nil {
		rt.logger = cfg.Logger
	} else {
		rt.logger = NopLogger()
	}
	threshold := cfg.CollectionThreshold
	if threshold <= 0 {
		threshold = defaultGCThreshold
	}
	rt.gc = newGC(rt.alloc, rt.ext, rt.logger)
	rt.gc.fibersFn = rt.allFibers
	rt.gc.classesFn = rt.allClasses

	rt.bootstrapClasses()
	rt.bootstrapBuiltins()
	// The configured threshold takes effect once bootstrap's own
	// allocations are done.
	rt.gc.threshold, rt.gc.minThreshold = threshold, threshold
	return rt
}

// bootstrapClasses wires up the "Class of classes" cycle: classClass
// is its own class (ß4.4's meta-class triangle has to bottom out
// somewhere), and every other builtin class is an ordinary instance
// of classClass whose superclass chain reaches Object.
func (rt *Runtime) bootstrapClasses() {
	classCell := rt.alloc.Allocate()
	classCell.typeID = typeClass
	classCell.class = classCell
	e := rt.ext.create(classCell)
	e.priv = &classData{
		name:      "Class",
		getters:   make(map[Symbol]*Cell),
		setters:   make(map[Symbol]*Cell),
		ivarIndex: make(map[Symbol]int),
	}
	rt.classClass = classCell
	rt.classesByName["Class"] = classCell

	obj, err := rt.newClassCell("Object", nil, false)
	if err != nil {
		panic(err)
	}
	rt.objectClass = obj
	rt.classesByName["Object"] = obj

	cd, _ := rt.classDataOf(classCell)
	cd.super = obj

	named := func(name string) *Cell {
		c, err := rt.newClassCell(name, obj, false)
		if err != nil {
			panic(err)
		}
		rt.classesByName[name] = c
		return c
	}
	rt.integerClass = named("Integer")
	rt.floatClass = named("Float")
	rt.nilClass = named("Nil")
	rt.booleanClass = named("Boolean")
	rt.symbolClass = named("Symbol")
	rt.stringClass = named("String")
	rt.arrayClass = named("Array")
	rt.mapClass = named("Map")
	rt.functionClass = named("Function")
	rt.environmentClass = named("Environment")
	rt.fiberClass = named("Fiber")
	rt.exceptionClass = named("Exception")
}

// Abort implements ß7's Abort error tier: non-recoverable under the
// object model's own exception protocol, routed through a
// configurable hook so tests can observe it without killing the test
// binary.
func (rt *Runtime) Abort(msg string) {
	if rt.config.AbortHook != nil {
		rt.config.AbortHook(msg)
		return
	}
	rt.logger.Logf("abort: %s", msg)
	os.Exit(1)
}

// Symbols returns the runtime's symbol table, for host code that
// needs to intern identifiers before making calls into the object
// model.
func (rt *Runtime) Symbols() *SymbolTable { return rt.sym }

// LookupClass returns a builtin or user-defined class by name.
func (rt *Runtime) LookupClass(name string) (*Cell, bool) {
	c, ok := rt.classesByName[name]
	return c, ok
}

// ObjectClass, IntegerClass, etc. expose the bootstrap classes to
// other packages (internal/marshal, cmd/snow) without reaching into
// Runtime's unexported fields.
func (rt *Runtime) ObjectClass() *Cell      { return rt.objectClass }
func (rt *Runtime) ClassClass() *Cell       { return rt.classClass }
func (rt *Runtime) IntegerClass() *Cell     { return rt.integerClass }
func (rt *Runtime) FloatClass() *Cell       { return rt.floatClass }
func (rt *Runtime) StringClass() *Cell      { return rt.stringClass }
func (rt *Runtime) ArrayClass() *Cell       { return rt.arrayClass }
func (rt *Runtime) MapClass() *Cell         { return rt.mapClass }
func (rt *Runtime) FunctionClass() *Cell    { return rt.functionClass }
func (rt *Runtime) FiberClass() *Cell       { return rt.fiberClass }
func (rt *Runtime) ExceptionClass() *Cell   { return rt.exceptionClass }
func (rt *Runtime) EnvironmentClass() *Cell { return rt.environmentClass }

// GC exposes the collector to host code for explicit collection and
// root registration.
func (rt *Runtime) GC() *GC { return rt.gc }

// GCStats reports the collector's current census, consumed by
// internal/profile (SPEC_FULL.md supplemented feature, grounded in
// gc.cpp's GC.stats.memory_usage).
func (rt *Runtime) GCStats() GCStats { return rt.gc.Stats() }

// allClasses backs GC.classesFn: every class reachable by name stays
// alive regardless of whether any fiber frame or external root
// currently references it, the same way a running program keeps its
// own class definitions around for its whole lifetime. Per-instance
// meta-classes are not in classesByName; they are kept alive instead
// by the one object whose c.class field points at them.
func (rt *Runtime) allClasses() []*Cell {
	out := make([]*Cell, 0, len(rt.classesByName))
	for _, c := range rt.classesByName {
		out = append(out, c)
	}
	return out
}
