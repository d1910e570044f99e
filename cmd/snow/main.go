// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command snow is the CLI front end for the runtime: it bootstraps a
// core.Runtime, validates and loads a persisted-state file (ß6) named
// on the command line, and can export a GC census as a pprof profile.
// The lexer, parser and native code generator a full source-level
// front end would need are out of scope (spec.md Non-goals), so this
// tool's "programs" are persisted Values produced by internal/marshal
// rather than snow source text.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"

	"snow/internal/core"
	"snow/internal/marshal"
	"snow/internal/modpath"
	"snow/internal/profile"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("snow: ")

	var (
		showVersion = flag.Bool("version", false, "print the persisted-state format version and exit")
		require     = flag.String("r", "", "module identifier to validate before loading (also -require)")
		interactive = flag.Bool("i", false, "read one persisted-state file path per line from stdin")
		gcProfile   = flag.String("gc-profile", "", "write a pprof GC census profile to this file after loading")
	)
	flag.StringVar(require, "require", "", "module identifier to validate before loading")
	flag.Parse()

	if *showVersion {
		fmt.Printf("snow (persisted-state format %s)\n", marshal.FormatVersion)
		return
	}

	if *require != "" {
		if err := modpath.Validate(*require); err != nil {
			log.Fatalf("invalid -require module identifier: %v", err)
		}
	}

	rt := core.NewRuntime(core.Config{Logger: core.NewStdLogger()})

	if *interactive {
		runInteractive(rt, gcProfile)
		return
	}

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: snow [flags] <persisted-state-file> [argv...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	if err := loadAndReport(rt, args[0]); err != nil {
		log.Fatal(err)
	}
	if *gcProfile != "" {
		if err := writeGCProfile(rt, *gcProfile); err != nil {
			log.Fatalf("writing gc profile: %v", err)
		}
	}
}

func loadAndReport(rt *core.Runtime, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	v, err := marshal.Load(rt, data)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	fmt.Println(rt.Inspect(v))
	return nil
}

func runInteractive(rt *core.Runtime, gcProfile *string) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		path := scanner.Text()
		if path == "" {
			continue
		}
		if err := loadAndReport(rt, path); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	if *gcProfile != "" {
		if err := writeGCProfile(rt, *gcProfile); err != nil {
			log.Printf("writing gc profile: %v", err)
		}
	}
}

func writeGCProfile(rt *core.Runtime, path string) error {
	stats := rt.GCStats()
	c := profile.Census{
		ClassCounts: map[string]int64{"(all classes)": int64(stats.LiveObjects)},
		ClassBytes:  map[string]int64{"(all classes)": stats.LiveBytes},
		Stats:       stats,
	}
	return profile.WriteFile(profile.Build(c), path)
}
