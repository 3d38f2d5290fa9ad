package ecs

import "fmt"

// EntityNotFoundError is returned for lookups and mutations against a stale
// or freed entity id (spec §7).
type EntityNotFoundError struct {
	Entity Entity
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("entity %d does not exist", e.Entity)
}

// TypeNotRegisteredError is returned when a type index outside the schema's
// registered range is used.
type TypeNotRegisteredError struct {
	Kind  TypeKind
	Index uint32
}

func (e *TypeNotRegisteredError) Error() string {
	return fmt.Sprintf("%s type index %d is not registered", e.Kind, e.Index)
}

// AlreadyRegisteredError is returned by Schema.register when a type's
// fingerprint is already present.
type AlreadyRegisteredError struct {
	TypeName string
	Kind     TypeKind
}

func (e *AlreadyRegisteredError) Error() string {
	return fmt.Sprintf("%s type %s is already registered", e.Kind, e.TypeName)
}

// AlreadyPresentError is returned by AddComponent when the entity already
// carries the component (spec §9 Open Question 1).
type AlreadyPresentError struct {
	Entity Entity
	Index  ComponentTypeIndex
}

func (e *AlreadyPresentError) Error() string {
	return fmt.Sprintf("entity %d already has component %d", e.Entity, e.Index)
}

// NotPresentError is returned by SetComponent/RemoveComponent/GetComponent
// when the entity does not carry the component.
type NotPresentError struct {
	Entity Entity
	Index  ComponentTypeIndex
}

func (e *NotPresentError) Error() string {
	return fmt.Sprintf("entity %d does not have component %d", e.Entity, e.Index)
}

// SchemaCapacityExceededError is returned when more than Config.SchemaCapacity
// types of one kind are registered.
type SchemaCapacityExceededError struct {
	Kind     TypeKind
	Capacity uint32
}

func (e *SchemaCapacityExceededError) Error() string {
	return fmt.Sprintf("%s schema capacity exceeded (max %d)", e.Kind, e.Capacity)
}

// StructuralMutationDuringQueryError is returned when a structural mutation
// (add/remove component, destroy entity, transfer, create/destroy array) is
// attempted while a query iterator is live over the same World (spec §5).
// Entity creation is not checked and never returns it.
type StructuralMutationDuringQueryError struct {
	Operation string
}

func (e *StructuralMutationDuringQueryError) Error() string {
	return fmt.Sprintf("cannot %s: a query iteration is in progress", e.Operation)
}

// EmptySelectionError is returned by an Operation command that requires a
// non-empty selection when none exists.
type EmptySelectionError struct {
	Command string
}

func (e *EmptySelectionError) Error() string {
	return fmt.Sprintf("operation command %s requires a non-empty selection", e.Command)
}

// OutOfRangeError is returned when an array index or reference handle falls
// outside its valid bounds.
type OutOfRangeError struct {
	What  string
	Index int
	Len   int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s index %d out of range [0,%d)", e.What, e.Index, e.Len)
}
