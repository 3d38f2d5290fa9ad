package ecs

import "fmt"

// Cache is a bounded, string-keyed lookup table, adapted from the teacher's
// SimpleCache. It backs Schema's per-type index cache (spec §4.1) and is
// exported for reuse by collaborators needing the same shape.
type Cache[T any] interface {
	GetIndex(string) (int, bool)
	GetItem(int) *T
	GetItem32(uint32) *T
	Register(string, T) (int, error)
	Clear()
}

var _ Cache[any] = &SimpleCache[any]{}

// SimpleCache is a capacity-bounded cache keyed by string, assigning each
// registered key the next sequential slot index.
type SimpleCache[T any] struct {
	items       []T
	itemIndices map[string]int
	maxCapacity int
}

func newSimpleCache[T any](capacity int) *SimpleCache[T] {
	return &SimpleCache[T]{
		itemIndices: make(map[string]int),
		maxCapacity: capacity,
	}
}

// GetIndex returns the slot index registered for key, if any.
func (c *SimpleCache[T]) GetIndex(key string) (int, bool) {
	index, ok := c.itemIndices[key]
	return index, ok
}

// GetItem returns a pointer to the item stored at index.
func (c *SimpleCache[T]) GetItem(index int) *T {
	return &c.items[index]
}

// GetItem32 is GetItem with a uint32 index, for callers already holding a
// dense type index.
func (c *SimpleCache[T]) GetItem32(index uint32) *T {
	return &c.items[index]
}

// Register assigns key the next sequential slot and stores item there. If
// key is already registered, the stored item is overwritten in place.
func (c *SimpleCache[T]) Register(key string, item T) (int, error) {
	if existing, ok := c.itemIndices[key]; ok {
		c.items[existing] = item
		return existing, nil
	}
	if len(c.itemIndices) >= c.maxCapacity {
		return -1, fmt.Errorf("cache at maximum capacity (%d)", c.maxCapacity)
	}
	idx := len(c.items)
	c.itemIndices[key] = idx
	c.items = append(c.items, item)
	return idx, nil
}

// Clear empties the cache, keeping its capacity.
func (c *SimpleCache[T]) Clear() {
	c.items = nil
	c.itemIndices = make(map[string]int)
}

// FactoryNewCache creates a new Cache with the given maximum capacity,
// mirroring the teacher's factory.go FactoryNewCache.
func FactoryNewCache[T any](capacity int) Cache[T] {
	return newSimpleCache[T](capacity)
}
