// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import "testing"

func TestValuePredicates(t *testing.T) {
	cases := []struct {
		v       Value
		truthy  bool
	}{
		{Nil, false},
		{False, false},
		{True, true},
		{Int(0), true},
		{Int(-1), true},
		{Float32(0), true},
	}
	for _, c := range cases {
		if got := c.v.IsTruthy(); got != c.truthy {
			t.Errorf("IsTruthy(%v) = %v, want %v", c.v, got, c.truthy)
		}
	}
}

func TestValueEqual(t *testing.T) {
	if !Int(5).Equal(Int(5)) {
		t.Error("Int(5) should equal Int(5)")
	}
	if Int(5).Equal(Int(6)) {
		t.Error("Int(5) should not equal Int(6)")
	}
	if !Nil.Equal(Nil) {
		t.Error("Nil should equal Nil")
	}
	if Nil.Equal(False) {
		t.Error("Nil should not equal False")
	}
}

func TestValueAccessorsPanicOnMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Int64() on a non-integer Value should panic")
		}
	}()
	Nil.Int64()
}

func TestIntegerRoundTrip(t *testing.T) {
	v := Int(123456789)
	if !v.IsInteger() {
		t.Fatal("expected IsInteger")
	}
	if v.Int64() != 123456789 {
		t.Errorf("Int64() = %d, want 123456789", v.Int64())
	}
}
