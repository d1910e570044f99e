// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"strings"
	"testing"
)

func TestTryCatchEnsureCatchesThrow(t *testing.T) {
	rt := testRuntime(t)
	caught := Nil
	_, err := rt.TryCatchEnsure(
		func() (Value, error) {
			rt.Throw(Int(7))
			return Nil, nil
		},
		func(exc *Exception) (Value, error) {
			caught = exc.Value
			return Nil, nil
		},
		nil,
	)
	if err != nil {
		t.Fatalf("a handled exception should not surface as an error: %v", err)
	}
	if caught.Int64() != 7 {
		t.Errorf("catch should see the thrown value 7, got %v", caught)
	}
}

func TestTryCatchEnsureRunsEnsureExactlyOnceOnCleanPath(t *testing.T) {
	rt := testRuntime(t)
	ensureCount := 0
	_, err := rt.TryCatchEnsure(
		func() (Value, error) { return Int(1), nil },
		nil,
		func() { ensureCount++ },
	)
	if err != nil {
		t.Fatal(err)
	}
	if ensureCount != 1 {
		t.Errorf("ensure ran %d times, want exactly 1", ensureCount)
	}
}

func TestTryCatchEnsureRunsEnsureExactlyOnceEvenIfCatchPanics(t *testing.T) {
	rt := testRuntime(t)
	ensureCount := 0
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected catch's panic to propagate")
		}
		if ensureCount != 1 {
			t.Errorf("ensure ran %d times, want exactly 1 even though catch panicked", ensureCount)
		}
	}()
	rt.TryCatchEnsure(
		func() (Value, error) {
			rt.Throw(Int(1))
			return Nil, nil
		},
		func(exc *Exception) (Value, error) {
			panic("catch itself blows up")
		},
		func() { ensureCount++ },
	)
}

func TestTryCatchEnsureWithNilCatchRepanics(t *testing.T) {
	rt := testRuntime(t)
	defer func() {
		if recover() == nil {
			t.Error("an unhandled (nil catch) exception should repanic past TryCatchEnsure")
		}
	}()
	rt.TryCatchEnsure(
		func() (Value, error) {
			rt.Throw(Int(1))
			return Nil, nil
		},
		nil,
		nil,
	)
}

func TestTryCatchEnsureDeliversAReturnedErrorToCatch(t *testing.T) {
	rt := testRuntime(t)
	fn := rt.CreateFunction("noop", nil, false, func(rt *Runtime, self Value, args Arguments) (Value, error) {
		return Nil, nil
	})
	var caught *Exception
	_, err := rt.TryCatchEnsure(
		func() (Value, error) {
			// Arity/shape (Throw tier, ß7): too many positional arguments
			// for a non-variadic function. Invoke reports this as a
			// returned error rather than a panic, but it must still reach
			// catch like any other try-block failure.
			return rt.Invoke(fn, Nil, Arguments{Data: []Value{Int(1)}})
		},
		func(exc *Exception) (Value, error) {
			caught = exc
			return Nil, nil
		},
		nil,
	)
	if err != nil {
		t.Fatalf("a caught error should not surface past TryCatchEnsure: %v", err)
	}
	if caught == nil {
		t.Fatal("a Throw-tier error returned (not panicked) from try should still reach catch")
	}
}

func TestCaptureBacktraceUsesDisasmWhenDebugBacktraceIsSet(t *testing.T) {
	rt := NewRuntime(Config{
		AbortHook:      func(msg string) { t.Fatalf("unexpected abort: %s", msg) },
		DebugBacktrace: true,
	})
	var bt []string
	entry := rt.CreateFunction("traced", nil, true, func(rt *Runtime, self Value, args Arguments) (Value, error) {
		bt = rt.captureBacktrace()
		return Nil, nil
	})
	if err := rt.SetNativeCode(entry, []byte{0x90, 0x90, 0xC3}); err != nil {
		t.Fatal(err)
	}
	fiberCell := rt.CreateFiber(entry)
	if _, err := rt.FiberResume(rt.fiberOf(fiberCell), Nil); err != nil {
		t.Fatal(err)
	}
	if len(bt) != 1 || !strings.HasPrefix(bt[0], "traced [") {
		t.Errorf("backtrace frame with DebugBacktrace set and native code attached = %v, want a disassembled \"traced [...]\" line", bt)
	}
}

func TestCaptureBacktraceIsNameOnlyByDefault(t *testing.T) {
	rt := testRuntime(t)
	var bt []string
	entry := rt.CreateFunction("plain", nil, true, func(rt *Runtime, self Value, args Arguments) (Value, error) {
		bt = rt.captureBacktrace()
		return Nil, nil
	})
	if err := rt.SetNativeCode(entry, []byte{0x90, 0x90, 0xC3}); err != nil {
		t.Fatal(err)
	}
	fiberCell := rt.CreateFiber(entry)
	if _, err := rt.FiberResume(rt.fiberOf(fiberCell), Nil); err != nil {
		t.Fatal(err)
	}
	if len(bt) != 1 || bt[0] != "plain" {
		t.Errorf("backtrace frame without DebugBacktrace = %v, want plain name only", bt)
	}
}

func TestAsExceptionWrapsPlainGoPanic(t *testing.T) {
	rt := testRuntime(t)
	exc := rt.asException("boom")
	if exc == nil {
		t.Fatal("asException should never return nil")
	}
}
