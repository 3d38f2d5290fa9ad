/*
Package ecs provides an archetype-based Entity-Component-System (ECS) core
for games and simulations.

It stores entities with the same component and array shape together in
columnar Chunks for cache-friendly iteration, and routes every structural
mutation through a single World.

Core Concepts:

  - Entity: an opaque handle into a World's slot table.
  - Schema: a per-world registry assigning dense indices to component,
    array-element, and tag types.
  - Definition: the pair of masks identifying which Chunk an entity belongs to.
  - Chunk: Structure-of-Arrays storage for every entity sharing one Definition.
  - Query / Cursor: selection of chunks by component mask, iterated without
    structural mutation; component values can be written in place.
  - Operation: a deferred, replayable buffer of structural commands.

Basic Usage:

	schema := ecs.Factory.NewSchema()
	world := ecs.Factory.NewWorld(schema)

	positionIdx, _ := ecs.RegisterComponent[Position](schema)
	velocityIdx, _ := ecs.RegisterComponent[Velocity](schema)

	e := world.CreateEntity()
	ecs.AddComponent(world, e, Position{})
	ecs.AddComponent(world, e, Velocity{X: 1})

	query := ecs.Factory.NewQuery()
	query.And(positionIdx, velocityIdx)
	cursor := ecs.Factory.NewCursor(query, world)

	for cursor.Next() {
		pos := ecs.Component[Position](cursor, positionIdx)
		vel := ecs.Component[Velocity](cursor, velocityIdx)
		pos.X += vel.X
		pos.Y += vel.Y
	}
*/
package ecs
