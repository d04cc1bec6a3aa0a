package resource

// Typed gives type-safe access to the values of one kind in a shared Table.
type Typed[T any] struct {
	table *Table
	kind  Kind
}

// NewTyped binds kind in table to the Go type T.
func NewTyped[T any](table *Table, kind Kind) *Typed[T] {
	return &Typed[T]{table: table, kind: kind}
}

// Insert adds a value and returns its handle.
func (t *Typed[T]) Insert(value T) Handle {
	return t.table.Insert(t.kind, value)
}

// Get retrieves a value; it fails for handles of another kind.
func (t *Typed[T]) Get(handle Handle) (T, bool) {
	var zero T
	v, ok := t.table.GetKind(handle, t.kind)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

// Release removes and returns a value of this kind.
func (t *Typed[T]) Release(handle Handle) (T, bool) {
	var zero T
	v, ok := t.table.ReleaseKind(handle, t.kind)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

// Len returns the number of live values of this kind.
func (t *Typed[T]) Len() int {
	return t.table.Count(t.kind)
}
