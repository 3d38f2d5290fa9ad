package ecs

import (
	"github.com/TheBitDrifter/bark"
	"go.uber.org/zap"
)

// Config holds package-level configuration, mirroring the teacher's
// config.go singleton.
var Config = config{
	SchemaCapacity:       256,
	DefaultChunkCapacity: 8,
}

type config struct {
	// SchemaCapacity caps how many types of one kind a Schema may register
	// (spec §4.1: "more than 256 types of one kind" is an error).
	SchemaCapacity uint32

	// DefaultChunkCapacity seeds the geometric growth of a freshly created
	// Chunk's columns.
	DefaultChunkCapacity int

	// ChunkEvents are optional observability hooks fired on chunk lifecycle
	// events, the equivalent of the teacher's table.TableEvents hook point.
	ChunkEvents ChunkEvents
}

// ChunkEvents are optional callbacks invoked by World/Chunk on structural
// changes. Any field left nil is skipped with a cheap check — the hot path
// of append/remove/move_to never logs by default.
type ChunkEvents struct {
	OnChunkCreated func(def Definition)
	OnChunkGrown   func(def Definition, newCapacity int)
	OnEntityMoved  func(entity Entity, from, to Definition)
}

// SetChunkEvents installs ce as the active hook set.
func (c *config) SetChunkEvents(ce ChunkEvents) {
	c.ChunkEvents = ce
}

// SetLogger installs a default ChunkEvents implementation that logs each
// lifecycle event at Debug level through the given zap.Logger.
func (c *config) SetLogger(log *zap.Logger) {
	if log == nil {
		c.ChunkEvents = ChunkEvents{}
		return
	}
	c.ChunkEvents = ChunkEvents{
		OnChunkCreated: func(def Definition) {
			log.Debug("chunk created",
				zap.Uint64("definition_hash", def.Hash()),
				zap.Int("components", def.componentMask.Count()),
				zap.Int("arrays", def.arrayMask.Count()),
			)
		},
		OnChunkGrown: func(def Definition, newCapacity int) {
			log.Debug("chunk grown",
				zap.Uint64("definition_hash", def.Hash()),
				zap.Int("new_capacity", newCapacity),
			)
		},
		OnEntityMoved: func(entity Entity, from, to Definition) {
			log.Debug("entity moved",
				zap.Uint32("entity", uint32(entity)),
				zap.Uint64("from", from.Hash()),
				zap.Uint64("to", to.Hash()),
			)
		},
	}
}

// traced wraps an internal invariant-violation error with a stack trace,
// exactly the teacher's bark.AddTrace(err) pattern in entity.go/query.go.
// Used before panicking on contract violations the public API should never
// allow a caller to trigger.
func traced(err error) error {
	return bark.AddTrace(err)
}
