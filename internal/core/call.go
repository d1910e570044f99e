// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import "fmt"

// Arguments is the call protocol's argument vector (ß3, ß4.6): Data
// holds every argument in call order, and Names, when non-empty, gives
// the keyword name bound to the first len(Names) elements of Data —
// the remainder of Data is positional. A named argument always wins
// over a positional one that would otherwise land on the same
// parameter (ß4.6).
type Arguments struct {
	Data  []Value
	Names []Symbol
}

// Invoke calls fn directly as a Function, binding args to its
// parameters and pushing a CallFrame for the duration of the call —
// the innermost step of the call protocol, used once functor
// resolution (Call) has already settled on an actual Function.
func (rt *Runtime) Invoke(fn *Cell, self Value, args Arguments) (Value, error) {
	if fn == nil || fn.typeID != typeFunction {
		return Nil, rt.newException(Nil, "type mismatch: attempt to invoke a non-Function")
	}
	fd, _ := rt.functionDataOf(fn)

	locals, err := rt.bindArguments(fd, args)
	if err != nil {
		return Nil, err
	}

	f := rt.current
	frame := &CallFrame{
		Self:       self,
		Args:       args,
		Locals:     locals,
		LocalNames: append([]Symbol(nil), fd.params...),
		Function:   fn,
		Fiber:      f,
	}
	frame.ParentEnv = fd.closure
	if f != nil {
		frame.Parent = f.topFrame()
		f.pushFrame(frame)
		defer f.popFrame()
	}

	if fd.native == nil {
		return Nil, rt.newException(Nil, fmt.Sprintf("function %q has no native implementation", fd.name))
	}
	return fd.native(rt, self, args)
}

// bindArguments maps a call's Arguments onto a function's declared
// parameters: named arguments bind by name first, then remaining
// positional arguments fill remaining parameters left to right, and a
// variadic function's last parameter collects any positional
// arguments past the end of its fixed parameter list into an Array.
func (rt *Runtime) bindArguments(fd *functionData, args Arguments) ([]Value, error) {
	locals := make([]Value, len(fd.params))
	for i := range locals {
		locals[i] = Undefined
	}
	bound := make([]bool, len(fd.params))

	namedCount := len(args.Names)
	for i, name := range args.Names {
		idx := paramIndex(fd.params, name)
		if idx < 0 {
			if fd.variadic {
				continue
			}
			return nil, fmt.Errorf("core: arity/shape: unknown named argument %d", i)
		}
		locals[idx] = args.Data[i]
		bound[idx] = true
	}

	fixed := len(fd.params)
	if fd.variadic && fixed > 0 {
		fixed--
	}
	pi := 0
	var extra []Value
	for i := namedCount; i < len(args.Data); i++ {
		for pi < fixed && bound[pi] {
			pi++
		}
		if pi >= fixed {
			if fd.variadic {
				extra = append(extra, args.Data[i])
				continue
			}
			return nil, fmt.Errorf("core: arity/shape: too many positional arguments")
		}
		locals[pi] = args.Data[i]
		bound[pi] = true
		pi++
	}

	if fd.variadic && len(fd.params) > 0 {
		last := len(fd.params) - 1
		if !bound[last] {
			locals[last] = rt.NewArray(extra)
		}
	}
	return locals, nil
}

func paramIndex(params []Symbol, name Symbol) int {
	for i, p := range params {
		if p == name {
			return i
		}
	}
	return -1
}

// callSymName is the __call__ functor-protocol method name (ß4.6
// step 1); Call interns it on each use.
const callSymName = "__call__"

// Call implements the full functor-resolution protocol of ß4.6: if
// functor is itself a Function it is invoked directly; otherwise its
// class's __call__ method (or, failing that, a __call__ property
// getter) is resolved and invoked with functor as self.
func (rt *Runtime) Call(functor Value, args Arguments) (Value, error) {
	if functor.IsObject() && functor.Cell().typeID == typeFunction {
		return rt.Invoke(functor.Cell(), Nil, args)
	}
	class := rt.ClassOf(functor)
	callSym := rt.sym.Intern(callSymName)
	if fn, _, missing := rt.ResolveMethod(class, callSym); fn != nil && !missing {
		return rt.Invoke(fn, functor, args)
	}
	if getter, _ := rt.lookupGetter(class, callSym); getter != nil {
		v, err := rt.Invoke(getter, functor, Arguments{})
		if err != nil {
			return Nil, err
		}
		return rt.Call(v, args)
	}
	return Nil, rt.newException(Nil, fmt.Sprintf("type mismatch: %s is not callable", rt.ClassName(class)))
}

// CallMethod resolves name on self's class (through the full
// method_missing protocol) and invokes it, the ordinary `self.name(...)`
// dispatch path used when no inline cache is available at the call
// site (e.g. from native/host code).
func (rt *Runtime) CallMethod(self Value, name Symbol, args Arguments) (Value, error) {
	class := rt.ClassOf(self)
	fn, _, isMissing := rt.ResolveMethod(class, name)
	if fn == nil {
		return Nil, rt.newException(Nil, fmt.Sprintf("lookup failure: no method %q on %s", rt.sym.String(name), rt.ClassName(class)))
	}
	if isMissing {
		nameArg := symbolValue(name)
		return rt.Invoke(fn, self, Arguments{Data: append([]Value{nameArg}, args.Data...)})
	}
	return rt.Invoke(fn, self, args)
}

// CallMethodCached is CallMethod's inline-cached counterpart, used by
// generated call sites that own a persistent MethodCacheLine.
func (rt *Runtime) CallMethodCached(line *MethodCacheLine, self Value, name Symbol, args Arguments) (Value, error) {
	class := rt.ClassOf(self)
	fn, _, isMissing := rt.Lookup(line, class, name)
	if fn == nil {
		return Nil, rt.newException(Nil, fmt.Sprintf("lookup failure: no method %q on %s", rt.sym.String(name), rt.ClassName(class)))
	}
	if isMissing {
		nameArg := symbolValue(name)
		return rt.Invoke(fn, self, Arguments{Data: append([]Value{nameArg}, args.Data...)})
	}
	return rt.Invoke(fn, self, args)
}
