// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package profile_test

import (
	"bytes"
	"testing"

	ppprofile "github.com/google/pprof/profile"

	"snow/internal/core"
	"snow/internal/profile"
)

func TestBuildAndWriteRoundTrip(t *testing.T) {
	c := profile.Census{
		ClassCounts: map[string]int64{"Object": 3, "String": 5},
		ClassBytes:  map[string]int64{"Object": 192, "String": 320},
		Stats:       core.GCStats{Collections: 2, LiveObjects: 8, Threshold: 4096},
	}
	p := profile.Build(c)
	if len(p.Sample) != 2 {
		t.Fatalf("expected 2 samples, got %d", len(p.Sample))
	}

	var buf bytes.Buffer
	if err := profile.Write(p, &buf); err != nil {
		t.Fatalf("Write: %v", err)
	}

	parsed, err := ppprofile.Parse(&buf)
	if err != nil {
		t.Fatalf("pprof failed to parse its own output: %v", err)
	}
	if len(parsed.Sample) != 2 {
		t.Errorf("round-tripped profile has %d samples, want 2", len(parsed.Sample))
	}
}
