// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import "sync"

// Symbol is an interned identifier, represented as a small positive
// integer, stable for the lifetime of the process (ß4.1). Symbols are
// never collected.
type Symbol uint64

// SymbolTable interns strings to Symbols. It is safe for concurrent
// use, though in normal operation only the running fiber ever touches
// it (ß5: "globally mutable but only touched by the running fiber").
// A mutex is kept anyway because Intern is also reachable from host
// code outside any fiber (module loading, CLI startup).
type SymbolTable struct {
	mu      sync.Mutex
	ids     map[string]Symbol
	strings []string // index i holds the string for Symbol(i+1)
}

// NewSymbolTable returns an empty, ready-to-use table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{ids: make(map[string]Symbol, 256)}
}

// Intern returns the Symbol for s, assigning a new one the first time
// s is seen. Intern is idempotent: repeated calls with the same
// string return the same Symbol.
func (t *SymbolTable) Intern(s string) Symbol {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.ids[s]; ok {
		return id
	}
	t.strings = append(t.strings, s)
	id := Symbol(len(t.strings))
	t.ids[s] = id
	return id
}

// String returns the original string for a Symbol, or "" if the
// Symbol was never interned by this table.
func (t *SymbolTable) String(s Symbol) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if s == 0 || int(s) > len(t.strings) {
		return ""
	}
	return t.strings[s-1]
}

// Lookup reports whether s has already been interned, without
// creating it.
func (t *SymbolTable) Lookup(s string) (Symbol, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	id, ok := t.ids[s]
	return id, ok
}
