// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"fmt"
	"sort"
)

// methodEntry is one row of a class's method table, kept sorted by
// name so lookup can binary-search it (ß4.4: "a sorted array of
// (name, function) pairs, looked up by binary search").
type methodEntry struct {
	name Symbol
	fn   *Cell
}

// classData is the private payload of a Class cell: its superclass
// link, method table, property accessor tables, and the layout of its
// instances' ivars.
type classData struct {
	name      string
	super     *Cell
	methods   []methodEntry
	getters   map[Symbol]*Cell
	setters   map[Symbol]*Cell
	ivarNames []Symbol
	ivarIndex map[Symbol]int
	isMeta    bool
}

func (rt *Runtime) classDataOf(c *Cell) (*classData, error) {
	if c == nil {
		return nil, fmt.Errorf("core: nil class cell")
	}
	e := rt.ext.get(c)
	if e == nil {
		return nil, fmt.Errorf("core: class cell has no extension record")
	}
	cd, ok := e.priv.(*classData)
	if !ok {
		return nil, fmt.Errorf("core: cell is not a class")
	}
	return cd, nil
}

// newClassCell allocates a Class instance (of rt.classClass, the
// "Class of classes") with the given name and superclass. A subclass
// inherits its superclass's ivar layout as a prefix, per ß4.4:
// "instance-variable indices are assigned per class, with subclasses'
// own ivars appended after their superclass's."
func (rt *Runtime) newClassCell(name string, super *Cell, isMeta bool) (*Cell, error) {
	c := rt.gc.AllocateObject(rt.classClass, typeClass)
	e := rt.ext.get(c)
	cd := &classData{
		name:      name,
		super:     super,
		getters:   make(map[Symbol]*Cell),
		setters:   make(map[Symbol]*Cell),
		ivarIndex: make(map[Symbol]int),
		isMeta:    isMeta,
	}
	if super != nil {
		superData, err := rt.classDataOf(super)
		if err != nil {
			return nil, err
		}
		cd.ivarNames = append([]Symbol(nil), superData.ivarNames...)
		for k, v := range superData.ivarIndex {
			cd.ivarIndex[k] = v
		}
	}
	e.priv = cd
	return c, nil
}

// DefineClass creates a new named Class cell rooted under super (or
// rt.objectClass if super is nil), registering it so later lookups by
// name succeed.
func (rt *Runtime) DefineClass(name string, super *Cell) (*Cell, error) {
	if super == nil {
		super = rt.objectClass
	}
	c, err := rt.newClassCell(name, super, false)
	if err != nil {
		return nil, err
	}
	rt.classesByName[name] = c
	return c, nil
}

// DefineMethod installs fn under name in class's method table,
// keeping the table sorted by Symbol for binary search. Redefining an
// existing name replaces its entry in place. Inline cache lines are not
// invalidated: a MethodCacheLine that is already Monomorphic keeps
// returning the function it cached.
func (rt *Runtime) DefineMethod(class *Cell, name Symbol, fn *Cell) error {
	cd, err := rt.classDataOf(class)
	if err != nil {
		return err
	}
	i := sort.Search(len(cd.methods), func(i int) bool { return cd.methods[i].name >= name })
	if i < len(cd.methods) && cd.methods[i].name == name {
		cd.methods[i].fn = fn
		return nil
	}
	cd.methods = append(cd.methods, methodEntry{})
	copy(cd.methods[i+1:], cd.methods[i:])
	cd.methods[i] = methodEntry{name: name, fn: fn}
	return nil
}

func lookupOwn(cd *classData, name Symbol) *Cell {
	i := sort.Search(len(cd.methods), func(i int) bool { return cd.methods[i].name >= name })
	if i < len(cd.methods) && cd.methods[i].name == name {
		return cd.methods[i].fn
	}
	return nil
}

// lookupMethod walks class, then its chain of supers, returning the
// first match and the class it was found on (ß4.4 step 1-3). It never
// itself falls back to method_missing; callers that need the full
// protocol use ResolveMethod.
func (rt *Runtime) lookupMethod(class *Cell, name Symbol) (*Cell, *Cell) {
	for c := class; c != nil; {
		cd, err := rt.classDataOf(c)
		if err != nil {
			return nil, nil
		}
		if fn := lookupOwn(cd, name); fn != nil {
			return fn, c
		}
		c = cd.super
	}
	return nil, nil
}

var methodMissingSym = "method_missing"

// ResolveMethod implements the full ß4.4 lookup: class chain, then
// method_missing chain. It always returns a non-nil function, since
// Object defines a default method_missing (a supplemented feature;
// see SPEC_FULL.md) that aborts with a lookup failure rather than
// recursing forever.
func (rt *Runtime) ResolveMethod(class *Cell, name Symbol) (fn *Cell, definedOn *Cell, isMissing bool) {
	if fn, on := rt.lookupMethod(class, name); fn != nil {
		return fn, on, false
	}
	mm := rt.sym.Intern(methodMissingSym)
	fn, on := rt.lookupMethod(class, mm)
	return fn, on, true
}

func (rt *Runtime) lookupSetter(class *Cell, name Symbol) (*Cell, *Cell) {
	for c := class; c != nil; {
		cd, err := rt.classDataOf(c)
		if err != nil {
			return nil, nil
		}
		if fn, ok := cd.setters[name]; ok {
			return fn, c
		}
		c = cd.super
	}
	return nil, nil
}

func (rt *Runtime) lookupGetter(class *Cell, name Symbol) (*Cell, *Cell) {
	for c := class; c != nil; {
		cd, err := rt.classDataOf(c)
		if err != nil {
			return nil, nil
		}
		if fn, ok := cd.getters[name]; ok {
			return fn, c
		}
		c = cd.super
	}
	return nil, nil
}

// DefineProperty registers a getter and/or setter function for name
// on class (ß3's "property getter/setter pairs"). Either may be nil.
func (rt *Runtime) DefineProperty(class *Cell, name Symbol, getter, setter *Cell) error {
	cd, err := rt.classDataOf(class)
	if err != nil {
		return err
	}
	if getter != nil {
		cd.getters[name] = getter
	}
	if setter != nil {
		cd.setters[name] = setter
	}
	return nil
}

// ClassOf returns the class of an arbitrary value, the function every
// dispatch path begins with (ß4.4).
func (rt *Runtime) ClassOf(v Value) *Cell {
	switch v.Kind() {
	case KindObject:
		return v.Cell().class
	case KindInteger:
		return rt.integerClass
	case KindFloat:
		return rt.floatClass
	case KindNil:
		return rt.nilClass
	case KindTrue, KindFalse:
		return rt.booleanClass
	case KindSymbol:
		return rt.symbolClass
	default:
		return rt.objectClass
	}
}

// ClassName returns a class cell's name, for diagnostics.
func (rt *Runtime) ClassName(class *Cell) string {
	cd, err := rt.classDataOf(class)
	if err != nil {
		return "?"
	}
	return cd.name
}
