// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package disasm_test

import (
	"strings"
	"testing"

	"snow/internal/disasm"
)

func TestListingDecodesSimpleInstructions(t *testing.T) {
	// NOP; NOP; RET
	code := []byte{0x90, 0x90, 0xC3}
	insts := disasm.Listing(code, 10)
	if len(insts) != 3 {
		t.Fatalf("expected 3 decoded instructions, got %d: %+v", len(insts), insts)
	}
	if insts[2].Offset != 2 {
		t.Errorf("third instruction offset = %d, want 2", insts[2].Offset)
	}
}

func TestListingStopsOnUndecodableBytes(t *testing.T) {
	code := []byte{0x90, 0x0F, 0xFF} // NOP then an invalid two-byte opcode
	insts := disasm.Listing(code, 10)
	if len(insts) != 1 {
		t.Fatalf("expected decoding to stop after 1 instruction, got %d", len(insts))
	}
}

func TestFormatBacktraceFrameFallsBackToNameOnly(t *testing.T) {
	got := disasm.FormatBacktraceFrame("myFunction", nil)
	if got != "myFunction" {
		t.Errorf("FormatBacktraceFrame with no code = %q, want bare name", got)
	}
	got = disasm.FormatBacktraceFrame("myFunction", []byte{0x90})
	if !strings.HasPrefix(got, "myFunction [") {
		t.Errorf("FormatBacktraceFrame with code = %q, want name+disassembly", got)
	}
}
