// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

// CallFrame is one activation record (ß3 "Call Frame"): the receiver,
// the arguments it was invoked with, its local slots, and a link to
// its lexical parent frame (the frame active where the running
// function was defined, not the frame that called it).
//
// A CallFrame starts out living entirely on the Go stack/heap as a
// plain struct, cheap to push and pop. The first time something
// captures it — a nested function literal closing over one of its
// locals, or host code holding onto it past the call's return — it is
// "liberated": its locals are copied into a heap Environment object
// (environmentData) so they outlive the call, and Env is set to that
// object. From then on reads and writes go through Env instead of the
// Locals slice directly, matching ß3's "liberate-on-capture" rule.
type CallFrame struct {
	Self       Value
	Args       Arguments
	Locals     []Value
	LocalNames []Symbol
	Function   *Cell
	Parent     *CallFrame // dynamic caller, for backtraces only
	ParentEnv  *Cell      // lexically enclosing Environment (already liberated), for closures
	Env        *Cell
	Fiber      *Fiber
}

// environmentData is the private payload of a liberated CallFrame,
// the Environment object function.cpp's call_frame_get_self/
// call_frame_get_arguments bindings expose self/arguments from.
type environmentData struct {
	self   Value
	args   Arguments
	locals []Value
	parent *Cell // the lexically enclosing Environment, nil at the outermost scope
}

// GetLocal reads slot idx, through the liberated Environment if this
// frame has been captured.
func (f *CallFrame) GetLocal(rt *Runtime, idx int) Value {
	if f.Env != nil {
		ed := rt.ext.get(f.Env).priv.(*environmentData)
		return ed.locals[idx]
	}
	return f.Locals[idx]
}

// SetLocal writes slot idx, through the liberated Environment if this
// frame has been captured.
func (f *CallFrame) SetLocal(rt *Runtime, idx int, v Value) {
	if f.Env != nil {
		ed := rt.ext.get(f.Env).priv.(*environmentData)
		ed.locals[idx] = v
		return
	}
	f.Locals[idx] = v
}

// Liberate copies f's locals onto the heap as an Environment object,
// if it hasn't been already, and returns that object. Capturing a
// function literal, or any host code that wants to outlive the call,
// goes through here.
func (f *CallFrame) Liberate(rt *Runtime) *Cell {
	if f.Env != nil {
		return f.Env
	}
	c := rt.gc.AllocateObject(rt.environmentClass, typeEnvironment)
	e := rt.ext.get(c)
	e.priv = &environmentData{
		self:   f.Self,
		args:   f.Args,
		locals: append([]Value(nil), f.Locals...),
		parent: f.ParentEnv,
	}
	f.Env = c
	return c
}

// GetLocalsFromHigherLexicalScope reads a local variable captured depth
// lexical scopes up from f (depth 0 is f itself). It liberates f, then
// follows each Environment's lexical parent link (the frame's ParentEnv
// at liberation time), not the dynamic Parent chain. It returns
// Undefined if the chain is shorter than depth or idx is out of range.
func (rt *Runtime) GetLocalsFromHigherLexicalScope(f *CallFrame, depth, idx int) Value {
	env := f.Liberate(rt)
	for i := 0; i < depth; i++ {
		ed := rt.ext.get(env).priv.(*environmentData)
		if ed.parent == nil {
			return Undefined
		}
		env = ed.parent
	}
	ed := rt.ext.get(env).priv.(*environmentData)
	if idx < 0 || idx >= len(ed.locals) {
		return Undefined
	}
	return ed.locals[idx]
}

// environmentSelf and environmentArguments back the Environment
// object's read-only self/arguments reflection properties
// (SPEC_FULL.md's supplemented feature, grounded in
// function.cpp's call_frame_get_self/call_frame_get_arguments).
func environmentSelf(rt *Runtime, env *Cell) Value {
	return rt.ext.get(env).priv.(*environmentData).self
}

func environmentArguments(rt *Runtime, env *Cell) Arguments {
	return rt.ext.get(env).priv.(*environmentData).args
}
