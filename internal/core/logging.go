// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"log"
	"os"
)

// Logger is the injection point for diagnostic output: the GC logs one
// line per collection cycle, and Abort logs its message before exiting
// when no AbortHook is configured.
// Embedders that run many short-lived Runtime instances in tests can
// supply a no-op Logger instead of writing to the process's shared
// stderr stream.
type Logger interface {
	Logf(format string, args ...interface{})
}

// stdLogger adapts the standard library's *log.Logger, configured the
// way cmd/compile's main.go configures its own: no timestamp, a
// tool-name prefix.
type stdLogger struct{ l *log.Logger }

// NewStdLogger returns a Logger that writes to os.Stderr with a
// "snow: " prefix and no timestamp, cmd/compile's convention for a
// command-line tool's diagnostic output.
func NewStdLogger() Logger {
	return stdLogger{l: log.New(os.Stderr, "snow: ", 0)}
}

func (s stdLogger) Logf(format string, args ...interface{}) { s.l.Printf(format, args...) }

// NopLogger discards everything; the default for embedders that don't
// pass a Config.Logger.
type nopLogger struct{}

func (nopLogger) Logf(string, ...interface{}) {}

// NopLogger returns a Logger that discards all output.
func NopLogger() Logger { return nopLogger{} }
