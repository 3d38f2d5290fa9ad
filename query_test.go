package ecs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type queryPosition struct{ X, Y float64 }
type queryVelocity struct{ X, Y float64 }
type queryDead struct{}

func TestQueryAndMatchesSuperset(t *testing.T) {
	w := newTestWorld()
	posIdx, err := ComponentIndexOf[queryPosition](w.Schema)
	require.NoError(t, err)
	velIdx, err := ComponentIndexOf[queryVelocity](w.Schema)
	require.NoError(t, err)

	both := w.CreateEntity()
	require.NoError(t, AddComponent(w, both, queryPosition{}))
	require.NoError(t, AddComponent(w, both, queryVelocity{}))

	onlyPos := w.CreateEntity()
	require.NoError(t, AddComponent(w, onlyPos, queryPosition{}))

	q := NewQuery()
	q.And(posIdx, velIdx)

	bothDef, _ := w.DefinitionOf(both)
	onlyPosDef, _ := w.DefinitionOf(onlyPos)
	assert.True(t, q.Evaluate(bothDef))
	assert.False(t, q.Evaluate(onlyPosDef))
}

func TestQueryNotExcludes(t *testing.T) {
	w := newTestWorld()
	posIdx, err := ComponentIndexOf[queryPosition](w.Schema)
	require.NoError(t, err)
	deadIdx, err := ComponentIndexOf[queryDead](w.Schema)
	require.NoError(t, err)

	alive := w.CreateEntity()
	require.NoError(t, AddComponent(w, alive, queryPosition{}))

	dead := w.CreateEntity()
	require.NoError(t, AddComponent(w, dead, queryPosition{}))
	require.NoError(t, AddComponent(w, dead, queryDead{}))

	q := NewQuery()
	and := q.And(posIdx)
	and.(*compositeNode).children = append(and.(*compositeNode).children, q.Not(deadIdx))

	aliveDef, _ := w.DefinitionOf(alive)
	deadDef, _ := w.DefinitionOf(dead)
	assert.True(t, q.Evaluate(aliveDef))
	assert.False(t, q.Evaluate(deadDef))
}

func TestCursorIteratesMatchingEntitiesOnly(t *testing.T) {
	w := newTestWorld()
	posIdx, err := ComponentIndexOf[queryPosition](w.Schema)
	require.NoError(t, err)

	e1 := w.CreateEntity()
	require.NoError(t, AddComponent(w, e1, queryPosition{X: 1}))
	e2 := w.CreateEntity()
	require.NoError(t, AddComponent(w, e2, queryPosition{X: 2}))
	e3 := w.CreateEntity() // no Position: should not match

	q := NewQuery()
	q.And(posIdx)
	cursor := NewCursor(q, w)

	seen := map[Entity]bool{}
	for cursor.Next() {
		e, err := cursor.CurrentEntity()
		require.NoError(t, err)
		seen[e] = true
	}

	assert.True(t, seen[e1])
	assert.True(t, seen[e2])
	assert.False(t, seen[e3])
	assert.Len(t, seen, 2)
}

func TestQueryRequireTagsFiltersAfterChunkSelection(t *testing.T) {
	w := newTestWorld()
	posIdx, err := ComponentIndexOf[queryPosition](w.Schema)
	require.NoError(t, err)
	deadIdx, err := TagIndexOf[queryDead](w.Schema)
	require.NoError(t, err)

	tagged := w.CreateEntity()
	require.NoError(t, AddComponent(w, tagged, queryPosition{}))
	require.NoError(t, AddTag[queryDead](w, tagged))

	untagged := w.CreateEntity()
	require.NoError(t, AddComponent(w, untagged, queryPosition{}))

	q := NewQuery()
	q.And(posIdx)
	q.RequireTags(deadIdx)
	cursor := NewCursor(q, w)

	seen := map[Entity]bool{}
	for cursor.Next() {
		e, err := cursor.CurrentEntity()
		require.NoError(t, err)
		seen[e] = true
	}

	assert.True(t, seen[tagged])
	assert.False(t, seen[untagged])
	assert.Len(t, seen, 1)
	assert.Equal(t, 1, q.TagMask().Count())
}

func TestCursorOnlyEnabledSkipsDisabled(t *testing.T) {
	w := newTestWorld()
	posIdx, err := ComponentIndexOf[queryPosition](w.Schema)
	require.NoError(t, err)

	e1 := w.CreateEntity()
	require.NoError(t, AddComponent(w, e1, queryPosition{}))
	e2 := w.CreateEntity()
	require.NoError(t, AddComponent(w, e2, queryPosition{}))
	require.NoError(t, w.SetEnabled(e2, false))

	q := NewQuery()
	q.And(posIdx)
	q.OnlyEnabled()
	cursor := NewCursor(q, w)

	count := 0
	for cursor.Next() {
		count++
	}
	assert.Equal(t, 1, count)
}

func TestCursorTotalMatched(t *testing.T) {
	w := newTestWorld()
	posIdx, err := ComponentIndexOf[queryPosition](w.Schema)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		e := w.CreateEntity()
		require.NoError(t, AddComponent(w, e, queryPosition{}))
	}

	q := NewQuery()
	q.And(posIdx)
	cursor := NewCursor(q, w)
	assert.Equal(t, 5, cursor.TotalMatched())
}

func TestCursorFreezesWorldAgainstStructuralMutation(t *testing.T) {
	w := newTestWorld()
	posIdx, err := ComponentIndexOf[queryPosition](w.Schema)
	require.NoError(t, err)
	e := w.CreateEntity()
	require.NoError(t, AddComponent(w, e, queryPosition{}))

	q := NewQuery()
	q.And(posIdx)
	cursor := NewCursor(q, w)
	cursor.Initialize()

	err = w.DestroyEntity(e, false)
	require.Error(t, err)
	assert.IsType(t, &StructuralMutationDuringQueryError{}, err)

	cursor.Reset()
	assert.NoError(t, w.DestroyEntity(e, false))
}

func TestCursorFreezesWorldAgainstArrayMutation(t *testing.T) {
	w := newTestWorld()
	posIdx, err := ComponentIndexOf[queryPosition](w.Schema)
	require.NoError(t, err)
	e := w.CreateEntity()
	require.NoError(t, AddComponent(w, e, queryPosition{}))

	q := NewQuery()
	q.And(posIdx)
	cursor := NewCursor(q, w)
	cursor.Initialize()

	err = CreateArray[int](w, e, 3)
	require.Error(t, err)
	assert.IsType(t, &StructuralMutationDuringQueryError{}, err)

	cursor.Reset()
	require.NoError(t, CreateArray[int](w, e, 3))

	cursor2 := NewCursor(q, w)
	cursor2.Initialize()

	err = DestroyArray[int](w, e)
	require.Error(t, err)
	assert.IsType(t, &StructuralMutationDuringQueryError{}, err)

	cursor2.Reset()
	assert.NoError(t, DestroyArray[int](w, e))
}

func TestComponentHelperAliasesChunkStorage(t *testing.T) {
	w := newTestWorld()
	posIdx, err := ComponentIndexOf[queryPosition](w.Schema)
	require.NoError(t, err)
	e := w.CreateEntity()
	require.NoError(t, AddComponent(w, e, queryPosition{X: 1, Y: 2}))

	q := NewQuery()
	q.And(posIdx)
	cursor := NewCursor(q, w)
	require.True(t, cursor.Next())

	pos := Component[queryPosition](cursor, posIdx)
	pos.X = 99

	updated, err := GetComponent[queryPosition](w, e)
	require.NoError(t, err)
	assert.Equal(t, float64(99), updated.X, "Component yields a live pointer into chunk storage")
	cursor.Reset()
}
