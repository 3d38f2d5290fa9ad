package ecs

// factory implements the factory pattern for top-level constructors,
// mirroring the teacher's factory.go.
type factory struct{}

// Factory is the global factory instance for creating worlds, queries,
// cursors, and operations.
var Factory factory

// NewWorld creates a new World instance bound to schema.
func (f factory) NewWorld(schema *Schema) *World {
	return NewWorld(schema)
}

// NewSchema creates a new, empty type registry.
func (f factory) NewSchema() *Schema {
	return NewSchema()
}

// NewQuery creates a new, empty Query.
func (f factory) NewQuery() Query {
	return NewQuery()
}

// NewCursor creates a new Cursor over world scoped to query.
func (f factory) NewCursor(query Query, world *World) *Cursor {
	return NewCursor(query, world)
}

// NewOperation creates a new, empty deferred command buffer.
func (f factory) NewOperation() *Operation {
	return NewOperation()
}
