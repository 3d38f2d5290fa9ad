package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type configPosition struct{ X, Y float64 }

func TestConfigChunkEventsFireOnCreateGrowMove(t *testing.T) {
	prev := Config.ChunkEvents
	defer func() { Config.ChunkEvents = prev }()

	var created, grown, moved int
	Config.SetChunkEvents(ChunkEvents{
		OnChunkCreated: func(def Definition) { created++ },
		OnChunkGrown:   func(def Definition, newCapacity int) { grown++ },
		OnEntityMoved:  func(entity Entity, from, to Definition) { moved++ },
	})

	w := newTestWorld()
	idx, err := RegisterComponent[configPosition](w.Schema)
	require.NoError(t, err)

	e := w.CreateEntity()
	require.NoError(t, AddComponent(w, e, configPosition{}))
	assert.Equal(t, 2, created, "the empty-definition chunk and the Position chunk")
	assert.Equal(t, 1, moved, "AddComponent moves the entity into the new chunk")

	for i := 0; i < Config.DefaultChunkCapacity+1; i++ {
		other := w.CreateEntity()
		require.NoError(t, AddComponent(w, other, configPosition{}))
	}
	assert.True(t, grown > 0, "appending past DefaultChunkCapacity grows the chunk")

	_ = idx
}

func TestConfigSetLoggerNilClearsHooks(t *testing.T) {
	prev := Config.ChunkEvents
	defer func() { Config.ChunkEvents = prev }()

	Config.SetChunkEvents(ChunkEvents{OnChunkCreated: func(def Definition) {}})
	Config.SetLogger(nil)

	assert.Nil(t, Config.ChunkEvents.OnChunkCreated)
	assert.Nil(t, Config.ChunkEvents.OnChunkGrown)
	assert.Nil(t, Config.ChunkEvents.OnEntityMoved)
}
