// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package disasm best-effort disassembles the native code span at a
// Function's entry pointer, consulted by the exception channel's
// backtrace formatter when a debug flag is set (SPEC_FULL.md DOMAIN
// STACK: golang.org/x/arch/x86/x86asm). It only ever reads the byte
// span a host attached to a Function with core's SetNativeCode — it
// does not generate code itself.
package disasm

import (
	"golang.org/x/arch/x86/x86asm"
)

// Instruction is one decoded native instruction, relative to the
// start of the listed span.
type Instruction struct {
	Offset int
	Length int
	Text   string
}

// Listing decodes up to maxCount instructions from code, starting at
// offset 0, in 64-bit mode (the only mode a modern native-codegen
// backend for this runtime would target). Decoding stops early, not
// with an error, at the first byte sequence it cannot decode — a
// best-effort listing is exactly what a debug backtrace needs, not a
// guarantee of decoding the entire function body.
func Listing(code []byte, maxCount int) []Instruction {
	var out []Instruction
	off := 0
	for len(out) < maxCount && off < len(code) {
		inst, err := x86asm.Decode(code[off:], 64)
		if err != nil || inst.Len == 0 {
			break
		}
		out = append(out, Instruction{
			Offset: off,
			Length: inst.Len,
			Text:   x86asm.GNUSyntax(inst, uint64(off), nil),
		})
		off += inst.Len
	}
	return out
}

// FormatBacktraceFrame renders a single backtrace line combining a
// frame's function name with a short disassembly snippet at its entry
// point, used only when a Runtime's debug-trace configuration asks
// for native-level detail rather than the default name-only frame
// line.
func FormatBacktraceFrame(name string, entry []byte) string {
	lines := Listing(entry, 3)
	if len(lines) == 0 {
		return name
	}
	s := name + " ["
	for i, l := range lines {
		if i > 0 {
			s += "; "
		}
		s += l.Text
	}
	return s + "]"
}
