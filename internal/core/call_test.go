// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import "testing"

func TestBindArgumentsNamedWinsOverPositional(t *testing.T) {
	rt := testRuntime(t)
	aSym := rt.Symbols().Intern("a")
	bSym := rt.Symbols().Intern("b")
	fd := &functionData{params: []Symbol{aSym, bSym}}

	// Positional 1, 2 would normally bind a=1, b=2; naming b=99 should
	// win for b, leaving only a filled positionally.
	locals, err := rt.bindArguments(fd, Arguments{
		Data:  []Value{Int(99), Int(1)},
		Names: []Symbol{bSym},
	})
	if err != nil {
		t.Fatal(err)
	}
	if locals[0].Int64() != 1 {
		t.Errorf("a (positional) = %v, want 1", locals[0])
	}
	if locals[1].Int64() != 99 {
		t.Errorf("b (named) = %v, want 99", locals[1])
	}
}

func TestBindArgumentsVariadicCollectsRest(t *testing.T) {
	rt := testRuntime(t)
	firstSym := rt.Symbols().Intern("first")
	restSym := rt.Symbols().Intern("rest")
	fd := &functionData{params: []Symbol{firstSym, restSym}, variadic: true}

	locals, err := rt.bindArguments(fd, Arguments{Data: []Value{Int(1), Int(2), Int(3), Int(4)}})
	if err != nil {
		t.Fatal(err)
	}
	if locals[0].Int64() != 1 {
		t.Errorf("first = %v, want 1", locals[0])
	}
	elems, ok := rt.ArrayElements(locals[1])
	if !ok {
		t.Fatal("rest should be bound to an Array")
	}
	if len(elems) != 3 || elems[0].Int64() != 2 || elems[2].Int64() != 4 {
		t.Errorf("rest = %v, want [2 3 4]", elems)
	}
}

func TestBindArgumentsTooManyPositionalIsError(t *testing.T) {
	rt := testRuntime(t)
	aSym := rt.Symbols().Intern("a")
	fd := &functionData{params: []Symbol{aSym}}
	_, err := rt.bindArguments(fd, Arguments{Data: []Value{Int(1), Int(2)}})
	if err == nil {
		t.Error("too many positional arguments for a non-variadic function should error")
	}
}

func TestBindArgumentsUnknownNamedIsError(t *testing.T) {
	rt := testRuntime(t)
	aSym := rt.Symbols().Intern("a")
	unknownSym := rt.Symbols().Intern("nope")
	fd := &functionData{params: []Symbol{aSym}}
	_, err := rt.bindArguments(fd, Arguments{Data: []Value{Int(1)}, Names: []Symbol{unknownSym}})
	if err == nil {
		t.Error("an unknown named argument should error")
	}
}

func TestCallResolvesViaUnderscoreUnderscoreCallMethod(t *testing.T) {
	rt := testRuntime(t)
	class, _ := rt.DefineClass("Adder", nil)
	callSym := rt.Symbols().Intern(callSymName)
	callFn := rt.CreateFunction("__call__", nil, true, func(rt *Runtime, self Value, args Arguments) (Value, error) {
		sum := int64(0)
		for _, a := range args.Data {
			sum += a.Int64()
		}
		return Int(sum), nil
	})
	rt.DefineMethod(class, callSym, callFn)

	obj, _ := rt.CreateObject(class)
	result, err := rt.Call(objectValue(obj), Arguments{Data: []Value{Int(1), Int(2), Int(3)}})
	if err != nil {
		t.Fatal(err)
	}
	if result.Int64() != 6 {
		t.Errorf("Call via __call__ = %v, want 6", result)
	}
}

func TestCallOnNonCallableIsTypeMismatch(t *testing.T) {
	rt := testRuntime(t)
	_, err := rt.Call(Int(5), Arguments{})
	if err == nil {
		t.Error("calling a plain Integer with no __call__ should be a type mismatch error")
	}
}

func TestCallMethodDirectInvokesFunction(t *testing.T) {
	rt := testRuntime(t)
	class, _ := rt.DefineClass("Greeter", nil)
	sym := rt.Symbols().Intern("hello")
	fn := rt.CreateFunction("hello", nil, false, func(rt *Runtime, self Value, args Arguments) (Value, error) {
		return rt.NewString("hi"), nil
	})
	rt.DefineMethod(class, sym, fn)
	obj, _ := rt.CreateObject(class)

	v, err := rt.CallMethod(objectValue(obj), sym, Arguments{})
	if err != nil {
		t.Fatal(err)
	}
	if s, _ := rt.StringValue(v); s != "hi" {
		t.Errorf("CallMethod result = %v, want %q", v, "hi")
	}
}
