// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"fmt"
	"sort"
	"strings"
)

// NewString wraps a Go string as a String object.
func (rt *Runtime) NewString(s string) Value {
	c := rt.gc.AllocateObject(rt.stringClass, typeString)
	rt.ext.get(c).priv = s
	return objectValue(c)
}

func stringOf(rt *Runtime, v Value) (string, bool) {
	if !v.IsObject() || v.Cell().typeID != typeString {
		return "", false
	}
	return rt.ext.get(v.Cell()).priv.(string), true
}

// StringValue exposes stringOf to other packages (internal/marshal).
func (rt *Runtime) StringValue(v Value) (string, bool) { return stringOf(rt, v) }

// ArrayElements exposes arrayOf to other packages (internal/marshal).
func (rt *Runtime) ArrayElements(v Value) ([]Value, bool) { return arrayOf(rt, v) }

// MapEntries exposes mapOf to other packages (internal/marshal).
func (rt *Runtime) MapEntries(v Value) (map[Value]Value, bool) { return mapOf(rt, v) }

// NewArray wraps a copy of a Go slice as an Array object. The caller's
// slice is not retained; push appends to the Array's own copy in
// place.
func (rt *Runtime) NewArray(elems []Value) Value {
	c := rt.gc.AllocateObject(rt.arrayClass, typeArray)
	cp := append([]Value(nil), elems...)
	rt.ext.get(c).priv = cp
	return objectValue(c)
}

func arrayOf(rt *Runtime, v Value) ([]Value, bool) {
	if !v.IsObject() || v.Cell().typeID != typeArray {
		return nil, false
	}
	return rt.ext.get(v.Cell()).priv.([]Value), true
}

func (rt *Runtime) setArray(v Value, elems []Value) {
	rt.ext.get(v.Cell()).priv = elems
}

// NewMap wraps a Go map as a Map object, keyed by Value identity
// (Value is a comparable struct, so it works directly as a Go map
// key).
func (rt *Runtime) NewMap(entries map[Value]Value) Value {
	c := rt.gc.AllocateObject(rt.mapClass, typeMap)
	cp := make(map[Value]Value, len(entries))
	for k, v := range entries {
		cp[k] = v
	}
	rt.ext.get(c).priv = cp
	return objectValue(c)
}

func mapOf(rt *Runtime, v Value) (map[Value]Value, bool) {
	if !v.IsObject() || v.Cell().typeID != typeMap {
		return nil, false
	}
	return rt.ext.get(v.Cell()).priv.(map[Value]Value), true
}

// Inspect renders v the way Object#inspect does in the reference
// runtime: enough to identify it in a REPL or backtrace, not a full
// pretty-printer (out of scope per spec.md's stdlib Non-goal).
func (rt *Runtime) Inspect(v Value) string {
	switch v.Kind() {
	case KindNil:
		return "nil"
	case KindTrue:
		return "true"
	case KindFalse:
		return "false"
	case KindInteger:
		return fmt.Sprintf("%d", v.Int64())
	case KindFloat:
		return fmt.Sprintf("%g", v.Float32Value())
	case KindSymbol:
		return ":" + rt.sym.String(v.Symbol())
	case KindObject:
		c := v.Cell()
		switch c.typeID {
		case typeString:
			s, _ := stringOf(rt, v)
			return fmt.Sprintf("%q", s)
		case typeArray:
			elems, _ := arrayOf(rt, v)
			parts := make([]string, len(elems))
			for i, e := range elems {
				parts[i] = rt.Inspect(e)
			}
			return "[" + strings.Join(parts, ", ") + "]"
		case typeMap:
			m, _ := mapOf(rt, v)
			parts := make([]string, 0, len(m))
			for k, val := range m {
				parts = append(parts, rt.Inspect(k)+" => "+rt.Inspect(val))
			}
			sort.Strings(parts)
			return "{" + strings.Join(parts, ", ") + "}"
		case typeClass:
			return fmt.Sprintf("#<Class %s>", rt.ClassName(c))
		case typeFunction:
			fd, _ := rt.functionDataOf(c)
			return fmt.Sprintf("#<Function %s>", fd.name)
		case typeFiber:
			return "#<Fiber>"
		case typeException:
			ed := rt.ext.get(c).priv.(*exceptionData)
			return fmt.Sprintf("#<Exception %s>", rt.Inspect(ed.value))
		default:
			return fmt.Sprintf("#<%s>", rt.ClassName(c))
		}
	default:
		return "?"
	}
}

func nativeMethod(rt *Runtime, class *Cell, name string, params []Symbol, variadic bool, fn NativeFunc) {
	sym := rt.sym.Intern(name)
	f := rt.CreateFunction(name, params, variadic, fn)
	rt.DefineMethod(class, sym, f)
}

// bootstrapBuiltins wires up the minimal method set every builtin
// value class needs (SPEC_FULL.md's "minimal builtin value classes"),
// grounded in object.cpp's get_object_class() and symbol.cpp's
// get_symbol_class(): enough for dispatch and the testable properties
// of ß8, not a standard library.
func (rt *Runtime) bootstrapBuiltins() {
	selfSym := rt.sym.Intern("other")

	nativeMethod(rt, rt.objectClass, "inspect", nil, false, func(rt *Runtime, self Value, args Arguments) (Value, error) {
		return rt.NewString(rt.Inspect(self)), nil
	})
	nativeMethod(rt, rt.objectClass, "to_string", nil, false, func(rt *Runtime, self Value, args Arguments) (Value, error) {
		return rt.NewString(rt.Inspect(self)), nil
	})
	nativeMethod(rt, rt.objectClass, "=", []Symbol{selfSym}, false, func(rt *Runtime, self Value, args Arguments) (Value, error) {
		return boolValue(self.Equal(args.Data[0])), nil
	})
	nativeMethod(rt, rt.objectClass, "class", nil, false, func(rt *Runtime, self Value, args Arguments) (Value, error) {
		return objectValue(rt.ClassOf(self)), nil
	})
	// Default method_missing: terminates the ß4.4 lookup walk with a
	// lookup-failure abort rather than recursing forever (SPEC_FULL.md
	// supplemented feature, grounded in class.cpp's TRAP()).
	nameSym := rt.sym.Intern("name")
	nativeMethod(rt, rt.objectClass, methodMissingSym, []Symbol{nameSym}, true, func(rt *Runtime, self Value, args Arguments) (Value, error) {
		name := "?"
		if len(args.Data) > 0 && args.Data[0].IsSymbol() {
			name = rt.sym.String(args.Data[0].Symbol())
		}
		rt.Abort(fmt.Sprintf("lookup failure: undefined method %q for %s", name, rt.ClassName(rt.ClassOf(self))))
		return Nil, nil
	})

	nativeMethod(rt, rt.integerClass, "+", []Symbol{selfSym}, false, func(rt *Runtime, self Value, args Arguments) (Value, error) {
		return Int(self.Int64() + args.Data[0].Int64()), nil
	})
	nativeMethod(rt, rt.integerClass, "-", []Symbol{selfSym}, false, func(rt *Runtime, self Value, args Arguments) (Value, error) {
		return Int(self.Int64() - args.Data[0].Int64()), nil
	})
	nativeMethod(rt, rt.integerClass, "*", []Symbol{selfSym}, false, func(rt *Runtime, self Value, args Arguments) (Value, error) {
		return Int(self.Int64() * args.Data[0].Int64()), nil
	})
	nativeMethod(rt, rt.integerClass, "<", []Symbol{selfSym}, false, func(rt *Runtime, self Value, args Arguments) (Value, error) {
		return boolValue(self.Int64() < args.Data[0].Int64()), nil
	})

	nativeMethod(rt, rt.stringClass, "length", nil, false, func(rt *Runtime, self Value, args Arguments) (Value, error) {
		s, _ := stringOf(rt, self)
		return Int(int64(len(s))), nil
	})
	nativeMethod(rt, rt.stringClass, "+", []Symbol{selfSym}, false, func(rt *Runtime, self Value, args Arguments) (Value, error) {
		a, _ := stringOf(rt, self)
		b, ok := stringOf(rt, args.Data[0])
		if !ok {
			return Nil, rt.newException(Nil, "type mismatch: String#+ expects a String")
		}
		return rt.NewString(a + b), nil
	})

	idxSym := rt.sym.Intern("index")
	valSym := rt.sym.Intern("value")
	nativeMethod(rt, rt.arrayClass, "length", nil, false, func(rt *Runtime, self Value, args Arguments) (Value, error) {
		elems, _ := arrayOf(rt, self)
		return Int(int64(len(elems))), nil
	})
	nativeMethod(rt, rt.arrayClass, "[]", []Symbol{idxSym}, false, func(rt *Runtime, self Value, args Arguments) (Value, error) {
		elems, _ := arrayOf(rt, self)
		i := args.Data[0].Int64()
		if i < 0 || int(i) >= len(elems) {
			return Nil, rt.newException(Nil, "arity/shape: array index out of range")
		}
		return elems[i], nil
	})
	nativeMethod(rt, rt.arrayClass, "push", []Symbol{valSym}, false, func(rt *Runtime, self Value, args Arguments) (Value, error) {
		elems, _ := arrayOf(rt, self)
		rt.setArray(self, append(elems, args.Data[0]))
		return self, nil
	})

	keySym := rt.sym.Intern("key")
	nativeMethod(rt, rt.mapClass, "[]", []Symbol{keySym}, false, func(rt *Runtime, self Value, args Arguments) (Value, error) {
		m, _ := mapOf(rt, self)
		v, ok := m[args.Data[0]]
		if !ok {
			return Nil, nil
		}
		return v, nil
	})
	nativeMethod(rt, rt.mapClass, "[]=", []Symbol{keySym, valSym}, false, func(rt *Runtime, self Value, args Arguments) (Value, error) {
		m, _ := mapOf(rt, self)
		m[args.Data[0]] = args.Data[1]
		return args.Data[1], nil
	})
	nativeMethod(rt, rt.mapClass, "length", nil, false, func(rt *Runtime, self Value, args Arguments) (Value, error) {
		m, _ := mapOf(rt, self)
		return Int(int64(len(m))), nil
	})

	// class_call / __call__: calling a Class constructs an instance,
	// the common case ß4.6 step 1 needs a concrete target for
	// (SPEC_FULL.md supplemented feature, grounded in class.cpp's
	// bindings::class_call).
	argSym := rt.sym.Intern("args")
	nativeMethod(rt, rt.classClass, callSymName, []Symbol{argSym}, true, func(rt *Runtime, self Value, args Arguments) (Value, error) {
		return rt.CreateObjectWithArguments(self.Cell(), args)
	})

	nativeMethod(rt, rt.fiberClass, "resume", []Symbol{valSym}, true, func(rt *Runtime, self Value, args Arguments) (Value, error) {
		var arg Value = Nil
		if len(args.Data) > 0 {
			arg = args.Data[0]
		}
		return rt.FiberResume(rt.fiberOf(self.Cell()), arg)
	})

	nativeMethod(rt, rt.exceptionClass, "value", nil, false, func(rt *Runtime, self Value, args Arguments) (Value, error) {
		return rt.ext.get(self.Cell()).priv.(*exceptionData).value, nil
	})

	nativeMethod(rt, rt.environmentClass, "self", nil, false, func(rt *Runtime, self Value, args Arguments) (Value, error) {
		return environmentSelf(rt, self.Cell()), nil
	})
	nativeMethod(rt, rt.environmentClass, "arguments", nil, false, func(rt *Runtime, self Value, args Arguments) (Value, error) {
		a := environmentArguments(rt, self.Cell())
		return rt.NewArray(a.Data), nil
	})
}
