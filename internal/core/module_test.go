// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import "testing"

func TestLoadModulePublishesGlobals(t *testing.T) {
	rt := testRuntime(t)
	answerSym := rt.Symbols().Intern("answer")
	entry := rt.CreateFunction("entry", nil, false, func(rt *Runtime, self Value, args Arguments) (Value, error) {
		if err := rt.SetInstanceVariable(self.Cell(), answerSym, Int(42)); err != nil {
			return Nil, err
		}
		return rt.NewString("done"), nil
	})

	obj, err := rt.LoadModule(CompiledUnit{
		Name:    "demo",
		Entry:   entry,
		Globals: []Symbol{answerSym},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := rt.GetInstanceVariable(obj, answerSym); got.Int64() != 42 {
		t.Errorf("published global answer = %v, want 42", got)
	}
	moduleValue := rt.GetInstanceVariable(obj, rt.Symbols().Intern("__module_value__"))
	if s, ok := rt.StringValue(moduleValue); !ok || s != "done" {
		t.Errorf("__module_value__ = %v, want %q", moduleValue, "done")
	}
}

func TestLoadModuleErrorsWhenGlobalNotPublished(t *testing.T) {
	rt := testRuntime(t)
	missingSym := rt.Symbols().Intern("never_set")
	entry := rt.CreateFunction("entry", nil, false, func(rt *Runtime, self Value, args Arguments) (Value, error) {
		return Nil, nil
	})
	_, err := rt.LoadModule(CompiledUnit{
		Name:    "broken",
		Entry:   entry,
		Globals: []Symbol{missingSym},
	})
	if err == nil {
		t.Error("LoadModule should error when a declared global was never published")
	}
}

func TestRunMainResumesAFreshFiberWithArgs(t *testing.T) {
	rt := testRuntime(t)
	entry := rt.CreateFunction("main", nil, true, func(rt *Runtime, self Value, args Arguments) (Value, error) {
		elems, _ := rt.ArrayElements(args.Data[0])
		return Int(int64(len(elems))), nil
	})
	v, err := rt.RunMain(entry, []Value{Int(1), Int(2), Int(3)})
	if err != nil {
		t.Fatal(err)
	}
	if v.Int64() != 3 {
		t.Errorf("RunMain result = %v, want 3", v)
	}
}
