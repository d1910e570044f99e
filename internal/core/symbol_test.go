// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import "testing"

func TestSymbolInternIsIdempotent(t *testing.T) {
	st := NewSymbolTable()
	a := st.Intern("foo")
	b := st.Intern("foo")
	if a != b {
		t.Errorf("Intern(\"foo\") returned different symbols: %v vs %v", a, b)
	}
	c := st.Intern("bar")
	if a == c {
		t.Error("Intern(\"foo\") and Intern(\"bar\") should differ")
	}
}

func TestSymbolStringRoundTrip(t *testing.T) {
	st := NewSymbolTable()
	s := st.Intern("hello")
	if st.String(s) != "hello" {
		t.Errorf("String(Intern(\"hello\")) = %q, want %q", st.String(s), "hello")
	}
}

func TestSymbolLookupWithoutInterning(t *testing.T) {
	st := NewSymbolTable()
	if _, ok := st.Lookup("never-interned"); ok {
		t.Error("Lookup should report false for a never-interned string")
	}
	st.Intern("now-interned")
	if _, ok := st.Lookup("now-interned"); !ok {
		t.Error("Lookup should report true after Intern")
	}
}
