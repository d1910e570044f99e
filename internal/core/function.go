// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import "fmt"

// NativeFunc is a function implemented in Go rather than compiled
// user code — the shape every builtin method has (ß3 "Function"
// describes a function as either a native entry point or a reference
// to compiled bytecode; the bytecode/codegen side is out of scope per
// spec.md's Non-goals, so every Function this package creates is
// ultimately native).
type NativeFunc func(rt *Runtime, self Value, args Arguments) (Value, error)

// functionData is the private payload of a Function cell.
type functionData struct {
	name       string
	params     []Symbol
	variadic   bool
	native     NativeFunc
	closure    *Cell  // liberated Environment of the defining lexical scope, nil for top-level/native functions
	definedIn  *Cell  // the class this is a method of; no code in this package sets it, and only the GC's mark pass reads it
	nativeCode []byte // machine code span at this function's entry point, set via SetNativeCode; nil for ordinary Go natives
}

// CreateFunction wraps a native implementation as a Function object,
// the path every builtin method and every host-registered callback
// goes through.
func (rt *Runtime) CreateFunction(name string, params []Symbol, variadic bool, fn NativeFunc) *Cell {
	c := rt.gc.AllocateObject(rt.functionClass, typeFunction)
	e := rt.ext.get(c)
	e.priv = &functionData{name: name, params: params, variadic: variadic, native: fn}
	return c
}

// CreateClosure wraps fn together with the lexical environment it
// closes over, the path a function literal evaluated inside a running
// call takes (ß3: functions capture their defining lexical scope).
func (rt *Runtime) CreateClosure(name string, params []Symbol, variadic bool, fn NativeFunc, closure *Cell) *Cell {
	c := rt.CreateFunction(name, params, variadic, fn)
	rt.ext.get(c).priv.(*functionData).closure = closure
	return c
}

func (rt *Runtime) functionDataOf(c *Cell) (*functionData, error) {
	if c == nil || c.typeID != typeFunction {
		return nil, fmt.Errorf("core: value is not a Function")
	}
	return rt.ext.get(c).priv.(*functionData), nil
}

// SetNativeCode attaches a span of native machine code to fn, the
// hook a code-generating backend uses so fn's backtrace line can
// carry a short internal/disasm disassembly instead of just its name
// (Config.DebugBacktrace). Out of scope for the hand-written Go
// natives this package defines itself; nothing here calls it.
func (rt *Runtime) SetNativeCode(fn *Cell, code []byte) error {
	fd, err := rt.functionDataOf(fn)
	if err != nil {
		return err
	}
	fd.nativeCode = code
	return nil
}

// createMethodProxy implements function.cpp's create_method_proxy: it
// returns a bound Function that, when called, invokes fn with self
// fixed to the given receiver regardless of how the proxy itself is
// invoked. Nothing in this package calls it; Class's `__call__`
// (builtin.go) constructs an instance through CreateObjectWithArguments
// instead.
func (rt *Runtime) createMethodProxy(fn *Cell, bound Value) *Cell {
	fd, _ := rt.functionDataOf(fn)
	name := ""
	if fd != nil {
		name = fd.name
	}
	return rt.CreateFunction(name, nil, true, func(rt *Runtime, _ Value, args Arguments) (Value, error) {
		return rt.Invoke(fn, bound, args)
	})
}
