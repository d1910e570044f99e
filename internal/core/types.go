// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

// The typeID constants name the builtin private-data layouts a Cell's
// ext.priv can hold. User classes created at runtime get
// typeUserObject and store their instance's state purely in ext.ivars;
// only the classes the runtime itself must understand structurally
// get a dedicated typeID and Go struct.
const (
	typeUserObject typeID = iota
	typeClass
	typeFunction
	typeEnvironment
	typeFiber
	typeException
	typeString
	typeArray
	typeMap
)

func (t typeID) String() string {
	switch t {
	case typeUserObject:
		return "Object"
	case typeClass:
		return "Class"
	case typeFunction:
		return "Function"
	case typeEnvironment:
		return "Environment"
	case typeFiber:
		return "Fiber"
	case typeException:
		return "Exception"
	case typeString:
		return "String"
	case typeArray:
		return "Array"
	case typeMap:
		return "Map"
	default:
		return "Unknown"
	}
}

// GCStats reports the census information gc.cpp's `GC.stats.memory_usage`
// tracked in the original, consumed by internal/profile's pprof export.
type GCStats struct {
	LiveObjects   int
	LiveBytes     int64
	Blocks        int
	Collections   int
	LastFreed     int
	Threshold     int
}
