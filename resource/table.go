package resource

import (
	"sync"
)

// Table maps handles to values of several kinds and notifies observers of
// lifecycle changes. It is safe for concurrent use; no lock is held while
// a Dropper or Observer runs.
type Table struct {
	store     *Store
	observers []Observer
	obsMu     sync.RWMutex
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{store: NewStore()}
}

// Insert adds a value and returns its handle, or 0 once the table is closed.
func (t *Table) Insert(kind Kind, value any) Handle {
	handle, err := t.store.Create(kind, value)
	if err != nil {
		return 0
	}
	t.notify(Event{Type: EventCreated, Handle: handle, Kind: kind, Value: value})
	return handle
}

// Get retrieves a value by handle.
func (t *Table) Get(handle Handle) (any, bool) {
	v, _, ok := t.store.Get(handle)
	return v, ok
}

// GetKind retrieves a value only if it was inserted with kind.
func (t *Table) GetKind(handle Handle, kind Kind) (any, bool) {
	v, k, ok := t.store.Get(handle)
	if !ok || k != kind {
		return nil, false
	}
	return v, true
}

// Release removes a value, calls its Drop method if it has one, and returns it.
// The handle is not reused until Drop and the observers have returned.
func (t *Table) Release(handle Handle) (any, bool) {
	value, kind, ok := t.store.Take(handle)
	if !ok {
		return nil, false
	}
	defer t.store.Free(handle)
	if d, ok := value.(Dropper); ok {
		d.Drop()
	}
	t.notify(Event{Type: EventReleased, Handle: handle, Kind: kind, Value: value})
	return value, true
}

// ReleaseKind is Release restricted to values of kind.
func (t *Table) ReleaseKind(handle Handle, kind Kind) (any, bool) {
	if _, k, ok := t.store.Get(handle); !ok || k != kind {
		return nil, false
	}
	return t.Release(handle)
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Len returns the number of live handles.
func (t *Table) Len() int {
	return t.store.Len()
}

// Count returns the number of live handles of kind.
func (t *Table) Count(kind Kind) int {
	n := 0
	t.store.Each(func(_ Handle, k Kind, _ any) bool {
		if k == kind {
			n++
		}
		return true
	})
	return n
}

// Clear releases every live handle.
func (t *Table) Clear() {
	// Collect handles first so Release does not run under the store lock
	var handles []Handle
	t.store.Each(func(h Handle, _ Kind, _ any) bool {
		handles = append(handles, h)
		return true
	})
	for _, h := range handles {
		t.Release(h)
	}
}

// Close releases every value and stops accepting inserts.
func (t *Table) Close() error {
	return t.store.Close()
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnResourceEvent(e)
	}
}
