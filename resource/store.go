package resource

import (
	"errors"
	"sync"
)

var ErrClosed = errors.New("resource store closed")

// Store is the slot storage behind a Table. Released slots are kept on a
// free list and handed out again, so a released handle may later name an
// unrelated value.
type Store struct {
	entries  []entry
	freeList []Handle
	mu       sync.RWMutex
	pending  int
	closed   bool
}

type entry struct {
	value any
	kind  Kind
	valid bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		entries:  make([]entry, 0, 64),
		freeList: make([]Handle, 0, 16),
	}
}

// Create stores a value and returns its handle.
func (s *Store) Create(kind Kind, value any) (Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}

	e := entry{kind: kind, value: value, valid: true}

	if n := len(s.freeList); n > 0 {
		handle := s.freeList[n-1]
		s.freeList = s.freeList[:n-1]
		s.entries[handle-1] = e
		return handle, nil
	}

	s.entries = append(s.entries, e)
	return Handle(len(s.entries)), nil
}

func (s *Store) lookup(handle Handle) (entry, bool) {
	if handle == 0 || int(handle-1) >= len(s.entries) {
		return entry{}, false
	}
	e := s.entries[handle-1]
	return e, e.valid
}

// Get retrieves a value and its kind.
func (s *Store) Get(handle Handle) (any, Kind, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.lookup(handle)
	if !ok {
		return nil, 0, false
	}
	return e.value, e.kind, true
}

// Delete empties the slot and returns the value it held.
func (s *Store) Delete(handle Handle) (any, Kind, bool) {
	v, kind, ok := s.Take(handle)
	if ok {
		s.Free(handle)
	}
	return v, kind, ok
}

// Take empties the slot without making the handle reusable. Lookups fail
// from now on, but Create does not hand the handle out again until Free.
func (s *Store) Take(handle Handle) (any, Kind, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.lookup(handle)
	if !ok {
		return nil, 0, false
	}
	s.entries[handle-1] = entry{}
	s.pending++
	return e.value, e.kind, true
}

// Free returns a handle emptied by Take to the free list.
func (s *Store) Free(handle Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.pending == 0 || handle == 0 || int(handle-1) >= len(s.entries) || s.entries[handle-1].valid {
		return
	}
	s.pending--
	s.freeList = append(s.freeList, handle)
}

// Len returns the number of live handles.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries) - len(s.freeList) - s.pending
}

// Each calls fn for every live handle until fn returns false.
func (s *Store) Each(fn func(Handle, Kind, any) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i, e := range s.entries {
		if e.valid && !fn(Handle(i+1), e.kind, e.value) {
			return
		}
	}
}

// Close drops every live value and refuses further inserts.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	for i := range s.entries {
		if s.entries[i].valid {
			if d, ok := s.entries[i].value.(Dropper); ok {
				d.Drop()
			}
		}
	}
	s.entries = nil
	s.freeList = nil
	s.pending = 0
	return nil
}
