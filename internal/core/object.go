// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import "fmt"

// CreateObject allocates a plain instance of class with no
// constructor call (ß4.4 "CreateObjectWithoutInitialize"): ivars are
// zero-valued (Nil) and no method runs.
func (rt *Runtime) CreateObject(class *Cell) (*Cell, error) {
	if class == nil {
		return nil, fmt.Errorf("core: CreateObject: nil class")
	}
	cd, err := rt.classDataOf(class)
	if err != nil {
		return nil, err
	}
	c := rt.gc.AllocateObject(class, typeUserObject)
	e := rt.ext.get(c)
	e.ivars = make([]Value, len(cd.ivarNames))
	for i := range e.ivars {
		e.ivars[i] = Nil
	}
	return c, nil
}

// CreateObjectWithArguments allocates an instance and invokes its
// class's `initialize` method with args, the common constructor path
// (ß4.4 "CreateObjectWithArguments").
func (rt *Runtime) CreateObjectWithArguments(class *Cell, args Arguments) (Value, error) {
	c, err := rt.CreateObject(class)
	if err != nil {
		return Nil, err
	}
	self := objectValue(c)
	if fn, _ := rt.lookupMethod(class, rt.sym.Intern("initialize")); fn != nil {
		if _, err := rt.Invoke(fn, self, args); err != nil {
			return Nil, err
		}
	}
	return self, nil
}

// ivarIndex resolves an instance-variable name to its slot in c's
// ivars array, creating a new slot the first time a never-before-seen
// name is assigned, per ß4.4's "instance variables grow lazily, by
// name, the first time they're set."
func (rt *Runtime) ivarIndex(c *Cell, name Symbol, create bool) (int, error) {
	cd, err := rt.classDataOf(c.class)
	if err != nil {
		return -1, err
	}
	if idx, ok := cd.ivarIndex[name]; ok {
		return idx, nil
	}
	if !create {
		return -1, nil
	}
	idx := len(cd.ivarNames)
	cd.ivarNames = append(cd.ivarNames, name)
	cd.ivarIndex[name] = idx
	e := rt.ext.get(c)
	for len(e.ivars) <= idx {
		e.ivars = append(e.ivars, Nil)
	}
	return idx, nil
}

// GetInstanceVariable reads an ivar by name, returning Undefined if it
// was never set. Undefined is the same value as Nil, so an unset ivar
// and one explicitly set to nil read the same.
func (rt *Runtime) GetInstanceVariable(c *Cell, name Symbol) Value {
	e := rt.ext.get(c)
	idx, err := rt.ivarIndex(c, name, false)
	if err != nil || idx < 0 || idx >= len(e.ivars) {
		return Undefined
	}
	return e.ivars[idx]
}

// SetInstanceVariable writes an ivar by name, allocating a new slot on
// first use.
func (rt *Runtime) SetInstanceVariable(c *Cell, name Symbol, v Value) error {
	idx, err := rt.ivarIndex(c, name, true)
	if err != nil {
		return err
	}
	e := rt.ext.get(c)
	for len(e.ivars) <= idx {
		e.ivars = append(e.ivars, Nil)
	}
	e.ivars[idx] = v
	return nil
}

// MetaClassOf returns c's singleton (per-instance) class, synthesizing
// one the first time a per-instance method or property is defined on
// c, per ß4.4's meta-class section. Meta-classes are themselves Class
// cells whose super is c's previous class and whose only instance is
// c.
func (rt *Runtime) MetaClassOf(c *Cell) (*Cell, error) {
	cd, err := rt.classDataOf(c.class)
	if err != nil {
		return nil, err
	}
	if cd.isMeta {
		return c.class, nil
	}
	meta, err := rt.newClassCell(fmt.Sprintf("#<metaclass for %p>", c), c.class, true)
	if err != nil {
		return nil, err
	}
	c.class = meta
	return meta, nil
}

// SetPropertyOrDefineMethod implements ß4.4's overload: when v is a
// Function, name becomes a per-instance method (via the instance's
// meta-class); otherwise it is an ordinary ivar assignment that also
// invokes a setter property if one is defined on the class.
func (rt *Runtime) SetPropertyOrDefineMethod(c *Cell, name Symbol, v Value) error {
	if v.IsObject() && v.Cell().typeID == typeFunction {
		meta, err := rt.MetaClassOf(c)
		if err != nil {
			return err
		}
		return rt.DefineMethod(meta, name, v.Cell())
	}
	if setter, _ := rt.lookupSetter(c.class, name); setter != nil {
		_, err := rt.Invoke(setter, objectValue(c), Arguments{Data: []Value{v}})
		return err
	}
	return rt.SetInstanceVariable(c, name, v)
}
