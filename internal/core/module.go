// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import "fmt"

// SourceLine maps an instruction offset (opaque here, since code
// generation is out of scope) to a source file/line pair, for
// backtrace formatting.
type SourceLine struct {
	Offset int
	File   string
	Line   int
}

// CompiledUnit is what a front end (lexer/parser/codegen — all out of
// scope per spec.md's Non-goals) hands the module loader: a single
// entry Function to run as the module body, the names of the globals
// it is expected to publish, and an optional source map for
// backtraces (ß4.10 "Module Loader Interface"). Since there is no
// bytecode compiler here, Entry is always a native Function whose
// NativeFunc body calls SetInstanceVariable on self to publish its
// globals directly, rather than this package reaching into a frame's
// locals to harvest them after the fact.
type CompiledUnit struct {
	Name      string
	Entry     *Cell
	Globals   []Symbol
	SourceMap []SourceLine
}

// LoadModule runs unit's entry function against a freshly created
// module object (itself given a dedicated meta-class, per ß4.10), and
// records the entry's return value as the `__module_value__` ivar.
// Host code that needs a module's globals reads them off the returned
// object by name, the same as any other object's instance variables.
func (rt *Runtime) LoadModule(unit CompiledUnit) (*Cell, error) {
	if unit.Entry == nil {
		return nil, fmt.Errorf("core: LoadModule %q: nil entry", unit.Name)
	}
	// modClass is a singleton meta-class (ß4.10): unit.Name never goes
	// into classesByName, so it is not rooted by GC.classesFn the way a
	// user-defined class is. It must stay explicitly rooted from here
	// until obj holds it in its own c.class field, since CreateObject
	// below allocates and may cross the collection threshold before
	// that happens.
	modClass, err := rt.newClassCell(unit.Name, rt.objectClass, true)
	if err != nil {
		return nil, err
	}
	modClassVal := objectValue(modClass)
	rootID := rt.gc.CreateRoot(&modClassVal)
	obj, err := rt.CreateObject(modClass)
	rt.gc.FreeRoot(rootID)
	if err != nil {
		return nil, err
	}
	self := objectValue(obj)

	// LoadModule may run before any fiber exists (ß4.10 modules load
	// ahead of main), in which case Invoke's frame is never pushed onto
	// a fiber's chain and self would otherwise be unrooted for the
	// whole call.
	selfRootID := rt.gc.CreateRoot(&self)
	result, err := rt.Invoke(unit.Entry, self, Arguments{})
	rt.gc.FreeRoot(selfRootID)
	if err != nil {
		return nil, err
	}

	for _, g := range unit.Globals {
		if rt.GetInstanceVariable(obj, g) == Undefined {
			return nil, fmt.Errorf("core: LoadModule %q: entry did not publish global %q", unit.Name, rt.sym.String(g))
		}
	}

	if err := rt.SetInstanceVariable(obj, rt.sym.Intern("__module_value__"), result); err != nil {
		return nil, err
	}
	return obj, nil
}

// RunMain starts a fresh main fiber running entry with args, the
// top-level entry point a host (cmd/snow) uses to execute a loaded
// program. Running under a fiber from the very first instruction
// keeps the "exactly one fiber is ever running" invariant (ß5) true
// even for the outermost call.
func (rt *Runtime) RunMain(entry *Cell, args []Value) (Value, error) {
	fiberCell := rt.CreateFiber(entry)
	f := rt.fiberOf(fiberCell)
	var arg Value = Nil
	if len(args) > 0 {
		arg = rt.NewArray(args)
	}
	return rt.FiberResume(f, arg)
}
