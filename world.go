package ecs

// World owns a Schema, a slot table indexed by entity id (with a free
// list), and the Definition → Chunk directory (spec §3 "World"). It is the
// single entry point for every structural mutation, tag, array, hierarchy,
// and reference operation.
type World struct {
	Schema *Schema

	slots    []slot
	freeList []Entity // LIFO: most recently freed entity reused first

	chunks map[uint64]*Chunk

	iterating int // >0 while a Cursor is live; guards structural mutation (spec §5)
}

// NewWorld creates an empty World bound to the given Schema.
func NewWorld(schema *Schema) *World {
	return &World{
		Schema: schema,
		chunks: make(map[uint64]*Chunk),
	}
}

func (w *World) beginIteration() { w.iterating++ }
func (w *World) endIteration()   { w.iterating-- }

func (w *World) checkNotIterating(op string) error {
	if w.iterating > 0 {
		return &StructuralMutationDuringQueryError{Operation: op}
	}
	return nil
}

func (w *World) resolve(e Entity) (*slot, error) {
	if e == 0 || int(e) > len(w.slots) {
		return nil, &EntityNotFoundError{Entity: e}
	}
	s := &w.slots[e-1]
	if !s.alive {
		return nil, &EntityNotFoundError{Entity: e}
	}
	return s, nil
}

// ContainsEntity reports whether e currently refers to a live entity. Unlike
// resolve, this never errors: it is how callers detect that a stale
// reference's target has died (spec §4.2 "References are NOT fixed up").
func (w *World) ContainsEntity(e Entity) bool {
	_, err := w.resolve(e)
	return err == nil
}

func (w *World) chunkFor(def Definition) *Chunk {
	h := def.Hash()
	if c, ok := w.chunks[h]; ok {
		if !c.definition.Equal(def) {
			panic(traced(&StructuralMutationDuringQueryError{Operation: "definition hash collision"}))
		}
		return c
	}
	c := newChunk(w.Schema, def)
	w.chunks[h] = c
	return c
}

func (w *World) patchRow(e Entity, row int) {
	w.slots[e-1].row = row
}

// CreateEntity allocates a new entity with the empty Definition (no
// components, no arrays), reusing a freed slot id when available. It is not
// checked against a live Cursor and succeeds during query iteration.
func (w *World) CreateEntity() Entity {
	return w.CreateEntityWith(Definition{})
}

// CreateEntityWith allocates a new entity directly into def's chunk.
func (w *World) CreateEntityWith(def Definition) Entity {
	chunk := w.chunkFor(def)
	var e Entity
	if n := len(w.freeList); n > 0 {
		e = w.freeList[n-1]
		w.freeList = w.freeList[:n-1]
		s := &w.slots[e-1]
		s.version++
		s.alive = true
		s.enabled = true
		s.definition = def
		s.parent = 0
		s.children = nil
		s.references = nil
		s.arrays = nil
		s.tags = BitMask{}
	} else {
		w.slots = append(w.slots, slot{version: 1, alive: true, enabled: true, definition: def})
		e = Entity(len(w.slots))
	}
	s := &w.slots[e-1]
	s.chunk = chunk
	s.row = chunk.append(e)
	return e
}

// DestroyEntity removes e from its chunk (swap-remove, patching the
// swapped-in entity's row), frees its per-entity arrays and references, and
// either recursively destroys its children (destroyChildren) or detaches
// them (parent reset to 0). The slot is pushed onto the free list.
func (w *World) DestroyEntity(e Entity, destroyChildren bool) error {
	if err := w.checkNotIterating("destroy entity"); err != nil {
		return err
	}
	return w.destroy(e, destroyChildren, make(map[Entity]struct{}))
}

func (w *World) destroy(e Entity, destroyChildren bool, visited map[Entity]struct{}) error {
	s, err := w.resolve(e)
	if err != nil {
		return err
	}
	if _, seen := visited[e]; seen {
		return nil
	}
	visited[e] = struct{}{}

	// Post-order: children first, so a child never observes a destroyed parent.
	for child := range s.children {
		if destroyChildren {
			if err := w.destroy(child, true, visited); err != nil {
				return err
			}
		} else {
			if cs, err := w.resolve(child); err == nil {
				cs.parent = 0
			}
		}
	}
	if parent, err := w.resolve(s.parent); err == nil {
		parent.removeChild(e)
	}

	swapped, hadSwap := s.chunk.remove(s.row)
	if hadSwap {
		w.patchRow(swapped, s.row)
	}

	s.alive = false
	s.chunk = nil
	s.row = 0
	s.children = nil
	s.references = nil
	s.arrays = nil
	s.tags = BitMask{}
	s.definition = Definition{}
	w.freeList = append(w.freeList, e)
	return nil
}

// Enabled reports whether e is marked enabled (affects only_enabled queries).
func (w *World) Enabled(e Entity) (bool, error) {
	s, err := w.resolve(e)
	if err != nil {
		return false, err
	}
	return s.enabled, nil
}

// SetEnabled sets e's enabled flag.
func (w *World) SetEnabled(e Entity, enabled bool) error {
	s, err := w.resolve(e)
	if err != nil {
		return err
	}
	s.enabled = enabled
	return nil
}

// DefinitionOf returns e's current Definition.
func (w *World) DefinitionOf(e Entity) (Definition, error) {
	s, err := w.resolve(e)
	if err != nil {
		return Definition{}, err
	}
	return s.definition, nil
}

func (w *World) migrate(s *slot, newDef Definition) error {
	dest := w.chunkFor(newDef)
	oldChunk, oldRow := s.chunk, s.row
	dstRow, swapped, hadSwap := oldChunk.moveRowTo(oldRow, dest)
	if hadSwap {
		w.patchRow(swapped, oldRow)
	}
	s.chunk = dest
	s.row = dstRow
	s.definition = newDef
	return nil
}

// AddComponent adds T to e with the given initial value. Fails AlreadyPresent
// if e already carries T (spec §9 Open Question 1).
func AddComponent[T any](w *World, e Entity, value T) error {
	if err := w.checkNotIterating("add component"); err != nil {
		return err
	}
	s, err := w.resolve(e)
	if err != nil {
		return err
	}
	idx, err := ComponentIndexOf[T](w.Schema)
	if err != nil {
		return err
	}
	if s.definition.HasComponent(idx) {
		return &AlreadyPresentError{Entity: e, Index: idx}
	}
	if err := w.migrate(s, s.definition.WithComponent(idx)); err != nil {
		return err
	}
	chunkSet[T](s.chunk, idx, s.row, value)
	return nil
}

// SetOrAddComponent writes value into e's T component, adding it first if
// absent. A convenience composing AddComponent/SetComponent so callers don't
// have to branch on AlreadyPresent themselves (spec §9 Open Question 1).
func SetOrAddComponent[T any](w *World, e Entity, value T) error {
	err := AddComponent[T](w, e, value)
	if _, already := err.(*AlreadyPresentError); already {
		return SetComponent[T](w, e, value)
	}
	return err
}

// RemoveComponent drops T from e, migrating it to a chunk without T's
// column. Fails NotPresent if e does not carry T.
func RemoveComponent[T any](w *World, e Entity) error {
	if err := w.checkNotIterating("remove component"); err != nil {
		return err
	}
	s, err := w.resolve(e)
	if err != nil {
		return err
	}
	idx, err := ComponentIndexOf[T](w.Schema)
	if err != nil {
		return err
	}
	if !s.definition.HasComponent(idx) {
		return &NotPresentError{Entity: e, Index: idx}
	}
	return w.migrate(s, s.definition.WithoutComponent(idx))
}

// SetComponent overwrites e's existing T value. Fails NotPresent if absent.
func SetComponent[T any](w *World, e Entity, value T) error {
	s, err := w.resolve(e)
	if err != nil {
		return err
	}
	idx, err := ComponentIndexOf[T](w.Schema)
	if err != nil {
		return err
	}
	if !s.definition.HasComponent(idx) {
		return &NotPresentError{Entity: e, Index: idx}
	}
	chunkSet[T](s.chunk, idx, s.row, value)
	return nil
}

// GetComponent returns a pointer aliasing e's live T value. The pointer is
// invalidated by any structural mutation of e or of any entity sharing its
// chunk (a move or swap-remove may relocate rows).
func GetComponent[T any](w *World, e Entity) (*T, error) {
	s, err := w.resolve(e)
	if err != nil {
		return nil, err
	}
	idx, err := ComponentIndexOf[T](w.Schema)
	if err != nil {
		return nil, err
	}
	if !s.definition.HasComponent(idx) {
		return nil, &NotPresentError{Entity: e, Index: idx}
	}
	return chunkGet[T](s.chunk, idx, s.row), nil
}

// HasComponent reports whether e currently carries T.
func HasComponent[T any](w *World, e Entity) (bool, error) {
	s, err := w.resolve(e)
	if err != nil {
		return false, err
	}
	idx, err := ComponentIndexOf[T](w.Schema)
	if err != nil {
		return false, err
	}
	return s.definition.HasComponent(idx), nil
}

// AddTag marks e with tag T. Unlike components, tags never trigger chunk
// migration (spec §9 Open Question 3): they live in the slot's tag mask.
func AddTag[T any](w *World, e Entity) error {
	s, err := w.resolve(e)
	if err != nil {
		return err
	}
	idx, err := TagIndexOf[T](w.Schema)
	if err != nil {
		return err
	}
	s.tags.Mark(uint32(idx))
	return nil
}

// RemoveTag clears tag T from e.
func RemoveTag[T any](w *World, e Entity) error {
	s, err := w.resolve(e)
	if err != nil {
		return err
	}
	idx, err := TagIndexOf[T](w.Schema)
	if err != nil {
		return err
	}
	s.tags.Unmark(uint32(idx))
	return nil
}

// HasTag reports whether e carries tag T.
func HasTag[T any](w *World, e Entity) (bool, error) {
	s, err := w.resolve(e)
	if err != nil {
		return false, err
	}
	idx, err := TagIndexOf[T](w.Schema)
	if err != nil {
		return false, err
	}
	return s.tags.Test(uint32(idx)), nil
}

// CreateArray gives e a fresh owned buffer of n zero-valued T elements,
// replacing any array of the same type e already held.
func CreateArray[T any](w *World, e Entity, n int) error {
	if err := w.checkNotIterating("create array"); err != nil {
		return err
	}
	s, err := w.resolve(e)
	if err != nil {
		return err
	}
	idx, err := ArrayIndexOf[T](w.Schema)
	if err != nil {
		return err
	}
	size, err := w.Schema.SizeOf(KindArrayElement, uint32(idx))
	if err != nil {
		return err
	}
	if s.arrays == nil {
		s.arrays = make(map[ArrayTypeIndex]*ownedArray)
	}
	a := &ownedArray{elementType: idx, stride: int(size)}
	a.resize(n)
	s.arrays[idx] = a
	if !s.definition.HasArray(idx) {
		return w.migrate(s, s.definition.WithArray(idx))
	}
	return nil
}

// DestroyArray removes e's array of type T entirely.
func DestroyArray[T any](w *World, e Entity) error {
	if err := w.checkNotIterating("destroy array"); err != nil {
		return err
	}
	s, err := w.resolve(e)
	if err != nil {
		return err
	}
	idx, err := ArrayIndexOf[T](w.Schema)
	if err != nil {
		return err
	}
	if _, ok := s.arrays[idx]; !ok {
		return &NotPresentError{Entity: e, Index: ComponentTypeIndex(idx)}
	}
	delete(s.arrays, idx)
	return w.migrate(s, s.definition.WithoutArray(idx))
}

// ResizeArray grows or shrinks e's array of type T to n elements, preserving
// existing contents and zero-filling new elements.
func ResizeArray[T any](w *World, e Entity, n int) error {
	s, err := w.resolve(e)
	if err != nil {
		return err
	}
	idx, err := ArrayIndexOf[T](w.Schema)
	if err != nil {
		return err
	}
	a, ok := s.arrays[idx]
	if !ok {
		return &NotPresentError{Entity: e, Index: ComponentTypeIndex(idx)}
	}
	a.resize(n)
	return nil
}

// GetArray returns a live []T view over e's array of type T.
func GetArray[T any](w *World, e Entity) ([]T, error) {
	s, err := w.resolve(e)
	if err != nil {
		return nil, err
	}
	idx, err := ArrayIndexOf[T](w.Schema)
	if err != nil {
		return nil, err
	}
	a, ok := s.arrays[idx]
	if !ok {
		return nil, &NotPresentError{Entity: e, Index: ComponentTypeIndex(idx)}
	}
	return ownedArrayAsSlice[T](a), nil
}

// SetArrayElement writes value at index i of e's array of type T.
func SetArrayElement[T any](w *World, e Entity, i int, value T) error {
	s, err := w.resolve(e)
	if err != nil {
		return err
	}
	idx, err := ArrayIndexOf[T](w.Schema)
	if err != nil {
		return err
	}
	a, ok := s.arrays[idx]
	if !ok {
		return &NotPresentError{Entity: e, Index: ComponentTypeIndex(idx)}
	}
	if i < 0 || i >= a.len() {
		return &OutOfRangeError{What: "array element", Index: i, Len: a.len()}
	}
	view := ownedArrayAsSlice[T](a)
	view[i] = value
	return nil
}

// SetParent makes parent the new parent of child, detaching child from any
// previous parent. Cycle prevention is the caller's responsibility (spec §4.4).
func (w *World) SetParent(child, parent Entity) error {
	cs, err := w.resolve(child)
	if err != nil {
		return err
	}
	if parent != 0 {
		if _, err := w.resolve(parent); err != nil {
			return err
		}
	}
	if old, err := w.resolve(cs.parent); err == nil {
		old.removeChild(child)
	}
	cs.parent = parent
	if parent != 0 {
		w.slots[parent-1].addChild(child)
	}
	return nil
}

// Parent returns e's current parent, or 0 if it has none.
func (w *World) Parent(e Entity) (Entity, error) {
	s, err := w.resolve(e)
	if err != nil {
		return 0, err
	}
	return s.parent, nil
}

// Children returns e's direct children in no particular order.
func (w *World) Children(e Entity) ([]Entity, error) {
	s, err := w.resolve(e)
	if err != nil {
		return nil, err
	}
	out := make([]Entity, 0, len(s.children))
	for c := range s.children {
		out = append(out, c)
	}
	return out, nil
}

// AddReference appends to as a new reference on from and returns its rint
// handle.
func (w *World) AddReference(from, to Entity) (rint, error) {
	s, err := w.resolve(from)
	if err != nil {
		return 0, err
	}
	return s.addReference(to), nil
}

// RemoveReference clears the reference at r on from. References are never
// fixed up on the target's destruction; callers detect death via
// ContainsEntity (spec §4.4).
func (w *World) RemoveReference(from Entity, r rint) error {
	s, err := w.resolve(from)
	if err != nil {
		return err
	}
	return s.clearReference(r)
}

// GetReference returns the entity stored at r on from, which may be stale
// (refer to a since-destroyed entity).
func (w *World) GetReference(from Entity, r rint) (Entity, error) {
	s, err := w.resolve(from)
	if err != nil {
		return 0, err
	}
	return s.referenceAt(r)
}

// Transfer moves entities out of w and into target, preserving component
// values, tags, and per-entity arrays but assigning each entity a fresh id
// in target (parent/child and reference links are not carried across,
// mirroring the teacher's cross-storage TransferEntities, which only moves
// the entry itself).
func (w *World) Transfer(target *World, entities ...Entity) ([]Entity, error) {
	if err := w.checkNotIterating("transfer entities"); err != nil {
		return nil, err
	}
	if err := target.checkNotIterating("transfer entities"); err != nil {
		return nil, err
	}
	out := make([]Entity, 0, len(entities))
	for _, e := range entities {
		s, err := w.resolve(e)
		if err != nil {
			return out, err
		}
		newDef := Definition{}
		for _, raw := range s.definition.componentMask.Indices() {
			newDef = newDef.WithComponent(ComponentTypeIndex(raw))
		}
		for _, raw := range s.definition.arrayMask.Indices() {
			newDef = newDef.WithArray(ArrayTypeIndex(raw))
		}
		ne := target.CreateEntityWith(newDef)
		ns := &target.slots[ne-1]
		ns.tags = s.tags
		for _, col := range s.chunk.columns {
			if col.stride == 0 {
				continue
			}
			srcStart := s.row * col.stride
			srcBytes := col.data[srcStart : srcStart+col.stride]
			dstBytes := ns.chunk.columnBytes(col.typeIndex)
			dstStart := ns.row * col.stride
			copy(dstBytes[dstStart:dstStart+col.stride], srcBytes)
		}
		if s.arrays != nil {
			ns.arrays = make(map[ArrayTypeIndex]*ownedArray, len(s.arrays))
			for idx, a := range s.arrays {
				cp := &ownedArray{elementType: a.elementType, stride: a.stride, data: append([]byte(nil), a.data...)}
				ns.arrays[idx] = cp
			}
		}
		if err := w.destroy(e, false, make(map[Entity]struct{})); err != nil {
			return out, err
		}
		out = append(out, ne)
	}
	return out, nil
}
