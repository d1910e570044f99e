// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package modpath_test

import (
	"testing"

	"snow/internal/modpath"
)

func TestValidateBareIdentifier(t *testing.T) {
	if err := modpath.Validate("mymodule"); err != nil {
		t.Errorf("Validate(bare identifier) = %v, want nil", err)
	}
}

func TestValidateRejectsEmpty(t *testing.T) {
	if err := modpath.Validate(""); err == nil {
		t.Error("Validate(\"\") = nil, want an error")
	}
}

func TestValidateModulePath(t *testing.T) {
	if err := modpath.Validate("example.com/snow/demo"); err != nil {
		t.Errorf("Validate(valid module path) = %v, want nil", err)
	}
	if err := modpath.Validate("not a valid/path!!"); err == nil {
		t.Error("Validate(invalid module path) = nil, want an error")
	}
}

func TestCompareVersions(t *testing.T) {
	if modpath.CompareVersions("1.2.0", "1.10.0") >= 0 {
		t.Error("CompareVersions(1.2.0, 1.10.0) should be negative")
	}
	if !modpath.IsValidVersion("1.0.0") {
		t.Error("IsValidVersion(1.0.0) = false, want true")
	}
	if modpath.IsValidVersion("not-a-version") {
		t.Error("IsValidVersion(not-a-version) = true, want false")
	}
}
