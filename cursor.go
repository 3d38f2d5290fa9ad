package ecs

// Cursor is a pull-iterator over the chunks matching a Query. Chunk
// selection is by the Definition's component mask only; the query's tag mask
// and enabled-only flag are then applied per entity as the cursor walks rows.
// While a Cursor is initialized the owning World is frozen against
// structural mutation (spec §5): add/remove component, destroy entity,
// transfer, and create/destroy array are all rejected until the cursor is
// reset or exhausted. CreateEntity and CreateEntityWith are not guarded and
// still succeed while a cursor is live.
type Cursor struct {
	query Query
	world *World

	currentChunk *Chunk
	chunkIndex   int
	entityIndex  int
	remaining    int

	initialized   bool
	matchedChunks []*Chunk
}

// NewCursor creates a cursor over world scoped to query, matching the
// teacher's factory.go NewCursor entry point.
func NewCursor(query Query, world *World) *Cursor {
	return &Cursor{query: query, world: world}
}

// Next advances to the next matching entity and reports whether one exists.
func (c *Cursor) Next() bool {
	if c.entityIndex < c.remaining {
		if c.skipToNextEnabled() {
			return true
		}
	}
	return c.advance()
}

func (c *Cursor) skipToNextEnabled() bool {
	tagMask := c.query.TagMask()
	for c.entityIndex < c.remaining {
		c.entityIndex++
		if !c.query.EnabledOnly() && tagMask.IsEmpty() {
			return true
		}
		e := c.currentChunk.EntityAt(c.entityIndex - 1)
		slot := &c.world.slots[e-1]
		if c.query.EnabledOnly() && !slot.enabled {
			continue
		}
		if !tagMask.IsEmpty() && !slot.tags.ContainsAll(tagMask) {
			continue
		}
		return true
	}
	return false
}

func (c *Cursor) advance() bool {
	if !c.initialized {
		c.Initialize()
	}

	for c.chunkIndex < len(c.matchedChunks) {
		c.currentChunk = c.matchedChunks[c.chunkIndex]
		c.remaining = c.currentChunk.Len()
		if c.skipToNextEnabled() {
			return true
		}
		c.chunkIndex++
		c.entityIndex = 0
	}

	c.Reset()
	return false
}

// Initialize gathers every chunk matching the query and locks the world
// against structural mutation. Calling Initialize more than once is a no-op.
func (c *Cursor) Initialize() {
	if c.initialized {
		return
	}

	c.world.beginIteration()
	c.matchedChunks = c.matchedChunks[:0]
	for _, chunk := range c.world.chunks {
		if c.query.Evaluate(chunk.Definition()) {
			c.matchedChunks = append(c.matchedChunks, chunk)
		}
	}

	if len(c.matchedChunks) > 0 {
		c.chunkIndex = 0
		c.currentChunk = c.matchedChunks[0]
		c.remaining = c.currentChunk.Len()
	}
	c.initialized = true
}

// Reset clears cursor state and releases the world's iteration lock. Safe
// to call even if the cursor was never initialized or already reset.
func (c *Cursor) Reset() {
	if !c.initialized {
		return
	}
	c.chunkIndex = 0
	c.entityIndex = 0
	c.remaining = 0
	c.matchedChunks = nil
	c.initialized = false
	c.world.endIteration()
}

// CurrentEntity returns the entity at the cursor's current position.
func (c *Cursor) CurrentEntity() (Entity, error) {
	if c.currentChunk == nil || c.entityIndex == 0 {
		return 0, &OutOfRangeError{What: "cursor position", Index: c.entityIndex - 1, Len: c.remaining}
	}
	return c.currentChunk.EntityAt(c.entityIndex - 1), nil
}

// EntityAtOffset returns the entity offset rows from the cursor's current
// position within the current chunk.
func (c *Cursor) EntityAtOffset(offset int) (Entity, error) {
	row := c.entityIndex - 1 + offset
	if c.currentChunk == nil || row < 0 || row >= c.currentChunk.Len() {
		return 0, &OutOfRangeError{What: "cursor offset", Index: row, Len: c.remaining}
	}
	return c.currentChunk.EntityAt(row), nil
}

// Component returns a pointer into the current row's column for idx,
// aliasing the chunk's backing storage directly.
func Component[T any](c *Cursor, idx ComponentTypeIndex) *T {
	return chunkGet[T](c.currentChunk, idx, c.entityIndex-1)
}

// EntityIndex returns the current 1-based position within the current chunk.
func (c *Cursor) EntityIndex() int { return c.entityIndex }

// RemainingInChunk returns how many entities are left in the current chunk.
func (c *Cursor) RemainingInChunk() int { return c.remaining - c.entityIndex }

// TotalMatched returns how many entities across all matching chunks the
// query selects, then resets the cursor.
func (c *Cursor) TotalMatched() int {
	if !c.initialized {
		c.Initialize()
	}
	tagMask := c.query.TagMask()
	total := 0
	for _, chunk := range c.matchedChunks {
		if !c.query.EnabledOnly() && tagMask.IsEmpty() {
			total += chunk.Len()
			continue
		}
		for row := 0; row < chunk.Len(); row++ {
			slot := &c.world.slots[chunk.EntityAt(row)-1]
			if c.query.EnabledOnly() && !slot.enabled {
				continue
			}
			if !tagMask.IsEmpty() && !slot.tags.ContainsAll(tagMask) {
				continue
			}
			total++
		}
	}
	c.Reset()
	return total
}
