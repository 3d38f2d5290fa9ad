package ecs

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Definition identifies a Chunk's shape: the exact set of component and
// array types present on every entity stored in that chunk (spec §3). Tags
// are per-slot state (Open Question 3) and are not part of a Definition.
type Definition struct {
	componentMask BitMask
	arrayMask     BitMask
}

// ComponentCount returns how many component types this definition requires.
func (d Definition) ComponentCount() int { return d.componentMask.Count() }

// ArrayCount returns how many array-element types this definition requires.
func (d Definition) ArrayCount() int { return d.arrayMask.Count() }

// HasComponent reports whether idx is part of this definition's component mask.
func (d Definition) HasComponent(idx ComponentTypeIndex) bool {
	return d.componentMask.Test(uint32(idx))
}

// HasArray reports whether idx is part of this definition's array mask.
func (d Definition) HasArray(idx ArrayTypeIndex) bool {
	return d.arrayMask.Test(uint32(idx))
}

// WithComponent returns a new Definition with idx added to the component mask.
func (d Definition) WithComponent(idx ComponentTypeIndex) Definition {
	d.componentMask.Mark(uint32(idx))
	return d
}

// WithoutComponent returns a new Definition with idx removed from the component mask.
func (d Definition) WithoutComponent(idx ComponentTypeIndex) Definition {
	d.componentMask.Unmark(uint32(idx))
	return d
}

// WithArray returns a new Definition with idx added to the array mask.
func (d Definition) WithArray(idx ArrayTypeIndex) Definition {
	d.arrayMask.Mark(uint32(idx))
	return d
}

// WithoutArray returns a new Definition with idx removed from the array mask.
func (d Definition) WithoutArray(idx ArrayTypeIndex) Definition {
	d.arrayMask.Unmark(uint32(idx))
	return d
}

// Equal reports whether d and o identify the same archetype (spec §3: "Two
// definitions are equal iff their three masks are equal" — the tag mask is
// per-slot in this core, see Open Question 3, so here it is the two masks).
func (d Definition) Equal(o Definition) bool {
	return d.componentMask.Equal(o.componentMask) && d.arrayMask.Equal(o.arrayMask)
}

// Hash derives a deterministic 64-bit hash from d's masks, used as the map
// key for World's Definition→Chunk directory (spec §3: "A Definition's hash
// is derived deterministically from its masks").
func (d Definition) Hash() uint64 {
	var buf [64]byte
	for i, w := range d.componentMask {
		binary.LittleEndian.PutUint64(buf[i*8:], w)
	}
	for i, w := range d.arrayMask {
		binary.LittleEndian.PutUint64(buf[32+i*8:], w)
	}
	return xxhash.Sum64(buf[:])
}
