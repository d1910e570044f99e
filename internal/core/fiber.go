// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import "fmt"

// FiberState mirrors ß3/ß5's fiber lifecycle: Created, Running,
// Suspended (yielded, resumable), Done (returned or raised past its
// top frame).
type FiberState uint8

const (
	FiberCreated FiberState = iota
	FiberRunning
	FiberSuspended
	FiberDone
)

func (s FiberState) String() string {
	switch s {
	case FiberCreated:
		return "created"
	case FiberRunning:
		return "running"
	case FiberSuspended:
		return "suspended"
	case FiberDone:
		return "done"
	default:
		return "unknown"
	}
}

// fiberMsg is what crosses a fiber's resume/yield channels: either a
// value being handed over, or an exception to re-raise in the
// receiving fiber.
type fiberMsg struct {
	value Value
	exc   *Exception
}

// Fiber is the ext.priv payload of a Fiber cell and also the Go-level
// scheduling handle for it. The reference implementation multiplexes
// fibers over OS threads parked on a semaphore pair; the idiomatic Go
// substitute is one goroutine per fiber blocked on a pair of unbuffered
// channels, which gives the same strict hand-off (ß5: "exactly one
// fiber is ever running at a time") without needing to manage a
// thread's native stack directly.
type Fiber struct {
	cell   *Cell
	rt     *Runtime
	name   string
	state  FiberState
	frames []*CallFrame
	result Value

	resumeCh chan fiberMsg
	yieldCh  chan fiberMsg
	started  bool
	entry    *Cell // the Function this fiber runs
	parent   *Fiber
}

func (rt *Runtime) fiberOf(c *Cell) *Fiber {
	return rt.ext.get(c).priv.(*Fiber)
}

// CreateFiber wraps entry as a new, not-yet-started Fiber (ß3 "Fiber",
// ß5 "CreateFiber").
func (rt *Runtime) CreateFiber(entry *Cell) *Cell {
	c := rt.gc.AllocateObject(rt.fiberClass, typeFiber)
	f := &Fiber{
		cell:     c,
		rt:       rt,
		state:    FiberCreated,
		entry:    entry,
		resumeCh: make(chan fiberMsg),
		yieldCh:  make(chan fiberMsg),
	}
	rt.ext.get(c).priv = f
	rt.fibersMu.Lock()
	rt.fibers = append(rt.fibers, f)
	rt.fibersMu.Unlock()
	return c
}

// FiberResume transfers control to f with arg as the value it
// receives (the argument to the entry function on first resume, or
// the value of the Yield call it's parked in otherwise), per ß5's
// "symmetric, cooperative" scheduler: the calling fiber blocks until f
// yields or finishes.
func (rt *Runtime) FiberResume(f *Fiber, arg Value) (Value, error) {
	if f.state == FiberDone {
		return Nil, fmt.Errorf("core: fiber-state violation: resuming a done fiber")
	}
	if f.state == FiberRunning {
		return Nil, fmt.Errorf("core: fiber-state violation: fiber already running")
	}
	prev := rt.current
	f.parent = prev
	if prev != nil {
		prev.state = FiberSuspended
	}
	rt.current = f
	f.state = FiberRunning

	if !f.started {
		f.started = true
		go rt.runFiber(f, arg)
	} else {
		f.resumeCh <- fiberMsg{value: arg}
	}

	msg := <-f.yieldCh
	if f.state == FiberRunning {
		f.state = FiberSuspended
	}
	rt.current = prev
	if prev != nil {
		prev.state = FiberRunning
	}
	if msg.exc != nil {
		return Nil, msg.exc
	}
	return msg.value, nil
}

func (rt *Runtime) runFiber(f *Fiber, arg Value) {
	defer func() {
		if r := recover(); r != nil {
			exc := rt.asException(r)
			f.state = FiberDone
			f.yieldCh <- fiberMsg{exc: exc}
			return
		}
	}()
	result, err := rt.Invoke(f.entry, objectValue(f.cell), Arguments{Data: []Value{arg}})
	f.state = FiberDone
	f.result = result
	if err != nil {
		f.yieldCh <- fiberMsg{exc: rt.asException(err)}
		return
	}
	f.yieldCh <- fiberMsg{value: result}
}

// FiberYield suspends the currently running fiber, handing val back
// to whatever fiber resumed it, and blocks until it is itself resumed
// again (ß5 "FiberYield").
func (rt *Runtime) FiberYield(val Value) Value {
	f := rt.current
	if f == nil {
		panic(rt.newException(Nil, "fiber-state violation: yield outside any fiber"))
	}
	f.yieldCh <- fiberMsg{value: val}
	msg := <-f.resumeCh
	if msg.exc != nil {
		panic(msg.exc)
	}
	return msg.value
}

// GetCurrentFiber returns the fiber presently running, or nil if none
// has been started yet (before the root fiber exists).
func (rt *Runtime) GetCurrentFiber() *Fiber { return rt.current }

// pushFrame/popFrame maintain the running fiber's call-frame chain,
// the precise root set the GC walks in place of a conservative stack
// scan (ß4.3, ß9).
func (f *Fiber) pushFrame(cf *CallFrame) { f.frames = append(f.frames, cf) }

func (f *Fiber) popFrame() {
	f.frames = f.frames[:len(f.frames)-1]
}

func (f *Fiber) topFrame() *CallFrame {
	if len(f.frames) == 0 {
		return nil
	}
	return f.frames[len(f.frames)-1]
}

// allFibers backs GC.fibersFn.
func (rt *Runtime) allFibers() []*Fiber {
	rt.fibersMu.Lock()
	defer rt.fibersMu.Unlock()
	out := make([]*Fiber, 0, len(rt.fibers))
	for _, f := range rt.fibers {
		out = append(out, f)
	}
	return out
}
