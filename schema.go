package ecs

import (
	"fmt"
	"reflect"
)

// TypeKind distinguishes the three namespaces a Schema assigns dense
// indices within: components, array-element types, and tags.
type TypeKind int

const (
	KindComponent TypeKind = iota
	KindArrayElement
	KindTag
	kindCount
)

func (k TypeKind) String() string {
	switch k {
	case KindComponent:
		return "component"
	case KindArrayElement:
		return "array element"
	case KindTag:
		return "tag"
	default:
		return "unknown kind"
	}
}

// ComponentTypeIndex, ArrayTypeIndex and TagTypeIndex are dense, per-kind
// type indices assigned in registration order. They never overlap within a
// kind and are never reused (spec §3 Schema invariants).
type ComponentTypeIndex uint32
type ArrayTypeIndex uint32
type TagTypeIndex uint32

// FieldLayout describes one field of a registered struct type, used for the
// optional layout metadata recorded per type (spec §4.1).
type FieldLayout struct {
	Name   string
	Offset uintptr
	Size   uintptr
}

type typeEntry struct {
	fingerprint string
	size        uintptr
	layout      []FieldLayout
	goType      reflect.Type
}

// Schema is the per-world type registry: it assigns stable dense indices to
// component, array-element, and tag types, and records their size and
// layout. At most 256 types may be registered per kind (Config.SchemaCapacity).
type Schema struct {
	counts        [kindCount]uint32
	byFingerprint [kindCount]map[string]uint32
	entries       [kindCount][]typeEntry
	indexCache    [kindCount]*SimpleCache[uint32]
}

// NewSchema creates an empty type registry.
func NewSchema() *Schema {
	s := &Schema{}
	for k := TypeKind(0); k < kindCount; k++ {
		s.byFingerprint[k] = make(map[string]uint32)
		s.indexCache[k] = newSimpleCache[uint32](int(Config.SchemaCapacity))
	}
	return s
}

func fingerprintOf(t reflect.Type) string {
	return fmt.Sprintf("%s/%d", t.String(), t.Size())
}

func layoutOf(t reflect.Type) []FieldLayout {
	if t.Kind() != reflect.Struct {
		return nil
	}
	fields := make([]FieldLayout, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		fields = append(fields, FieldLayout{Name: f.Name, Offset: f.Offset, Size: f.Type.Size()})
	}
	return fields
}

// register is the shared implementation behind RegisterComponent,
// RegisterArray and RegisterTag.
func (s *Schema) register(kind TypeKind, t reflect.Type) (uint32, error) {
	fp := fingerprintOf(t)
	if _, ok := s.byFingerprint[kind][fp]; ok {
		return 0, &AlreadyRegisteredError{TypeName: t.String(), Kind: kind}
	}
	if s.counts[kind] >= Config.SchemaCapacity {
		return 0, &SchemaCapacityExceededError{Kind: kind, Capacity: Config.SchemaCapacity}
	}
	idx := s.counts[kind]
	s.counts[kind]++

	size := t.Size()
	var layout []FieldLayout
	if kind != KindTag {
		layout = layoutOf(t)
	} else {
		size = 0
	}

	s.byFingerprint[kind][fp] = idx
	s.entries[kind] = append(s.entries[kind], typeEntry{
		fingerprint: fp,
		size:        size,
		layout:      layout,
		goType:      t,
	})
	if _, err := s.indexCache[kind].Register(fp, idx); err != nil {
		// capacity already checked above via s.counts; this should be unreachable.
		panic(traced(err))
	}
	return idx, nil
}

// RegisterComponent assigns the next dense component index to T.
func RegisterComponent[T any](s *Schema) (ComponentTypeIndex, error) {
	idx, err := s.register(KindComponent, reflect.TypeFor[T]())
	return ComponentTypeIndex(idx), err
}

// RegisterArray assigns the next dense array-element index to T.
func RegisterArray[T any](s *Schema) (ArrayTypeIndex, error) {
	idx, err := s.register(KindArrayElement, reflect.TypeFor[T]())
	return ArrayTypeIndex(idx), err
}

// RegisterTag assigns the next dense tag index to T. Tags always have size 0.
func RegisterTag[T any](s *Schema) (TagTypeIndex, error) {
	idx, err := s.register(KindTag, reflect.TypeFor[T]())
	return TagTypeIndex(idx), err
}

// indexOf resolves T's dense index within kind, registering it on first use
// so callers never have to register components by hand before querying
// them. The fingerprint string is computed on every call and looked up in
// the per-kind cache (spec §4.1: "type_index_of<T>() → index (cached
// per-type)") before the registry itself.
func (s *Schema) indexOf(kind TypeKind, t reflect.Type) (uint32, error) {
	fp := fingerprintOf(t)
	if ci, ok := s.indexCache[kind].GetIndex(fp); ok {
		return *s.indexCache[kind].GetItem(ci), nil
	}
	if idx, ok := s.byFingerprint[kind][fp]; ok {
		if _, err := s.indexCache[kind].Register(fp, idx); err != nil {
			panic(traced(err))
		}
		return idx, nil
	}
	idx, err := s.register(kind, t)
	if err != nil {
		return 0, err
	}
	return idx, nil
}

// ComponentIndexOf returns T's component index, registering T if needed.
func ComponentIndexOf[T any](s *Schema) (ComponentTypeIndex, error) {
	idx, err := s.indexOf(KindComponent, reflect.TypeFor[T]())
	return ComponentTypeIndex(idx), err
}

// ArrayIndexOf returns T's array-element index, registering T if needed.
func ArrayIndexOf[T any](s *Schema) (ArrayTypeIndex, error) {
	idx, err := s.indexOf(KindArrayElement, reflect.TypeFor[T]())
	return ArrayTypeIndex(idx), err
}

// TagIndexOf returns T's tag index, registering T if needed.
func TagIndexOf[T any](s *Schema) (TagTypeIndex, error) {
	idx, err := s.indexOf(KindTag, reflect.TypeFor[T]())
	return TagTypeIndex(idx), err
}

// SizeOf returns the byte size recorded for the given index within kind.
func (s *Schema) SizeOf(kind TypeKind, idx uint32) (uintptr, error) {
	if idx >= s.counts[kind] {
		return 0, &TypeNotRegisteredError{Kind: kind, Index: idx}
	}
	return s.entries[kind][idx].size, nil
}

// LayoutOf returns the recorded field layout for the given index, or nil if
// none was recorded (tags, or non-struct types).
func (s *Schema) LayoutOf(kind TypeKind, idx uint32) ([]FieldLayout, error) {
	if idx >= s.counts[kind] {
		return nil, &TypeNotRegisteredError{Kind: kind, Index: idx}
	}
	return s.entries[kind][idx].layout, nil
}

// Contains reports whether idx is a registered index within kind.
func (s *Schema) Contains(kind TypeKind, idx uint32) bool {
	return idx < s.counts[kind]
}

// Count returns how many types of the given kind are registered.
func (s *Schema) Count(kind TypeKind) uint32 {
	return s.counts[kind]
}

// CloneInto deep-copies all registered indices and sizes into other,
// clearing other's previous state first (spec §4.1 clone_into).
func (s *Schema) CloneInto(other *Schema) {
	for k := TypeKind(0); k < kindCount; k++ {
		other.counts[k] = s.counts[k]
		other.byFingerprint[k] = make(map[string]uint32, len(s.byFingerprint[k]))
		for fp, idx := range s.byFingerprint[k] {
			other.byFingerprint[k][fp] = idx
		}
		other.entries[k] = append([]typeEntry(nil), s.entries[k]...)
		other.indexCache[k] = newSimpleCache[uint32](int(Config.SchemaCapacity))
		for fp, idx := range s.byFingerprint[k] {
			_, _ = other.indexCache[k].Register(fp, idx)
		}
	}
}

// SchemaRecord is one canonical (kind, index, size, layout) record produced
// by the schema serialization stream (spec §6).
type SchemaRecord struct {
	Kind   TypeKind
	Index  uint32
	Size   uint16
	Layout []FieldLayout
}

// Records returns the canonical ordered stream of schema records: for each
// kind, by ascending index, as required by spec §6's schema stream format.
func (s *Schema) Records() []SchemaRecord {
	var out []SchemaRecord
	for k := TypeKind(0); k < kindCount; k++ {
		for idx, e := range s.entries[k] {
			out = append(out, SchemaRecord{
				Kind:   k,
				Index:  uint32(idx),
				Size:   uint16(e.size),
				Layout: e.layout,
			})
		}
	}
	return out
}
