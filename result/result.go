package result

import (
	"sort"
	"sync"
	"time"
)

// Kind discriminates ExecutionResult.
type Kind uint8

const (
	KindError Kind = iota
	KindHandle
)

// ExecutionResult is the outcome of one dispatch: an error or a Handle.
type ExecutionResult struct {
	Err    error
	Handle *Handle
	hooks  []func()
	once   sync.Once
	mu     sync.Mutex
	Kind   Kind
}

// Message returns the error text of an Error result, "" otherwise.
func (r *ExecutionResult) Message() string {
	if r.Kind != KindError || r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// OnRelease registers fn to run when the result is released. It is used to
// free memory handed out across a foreign boundary.
func (r *ExecutionResult) OnRelease(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, fn)
}

// Drop runs the release hooks. Hooks run at most once, in reverse order of
// registration.
func (r *ExecutionResult) Drop() {
	r.once.Do(func() {
		r.mu.Lock()
		hooks := r.hooks
		r.hooks = nil
		r.mu.Unlock()
		for i := len(hooks) - 1; i >= 0; i-- {
			hooks[i]()
		}
	})
}

// Handle owns the decoded read-out of a successful dispatch.
type Handle struct {
	data     map[string]*ExecutionData
	failures map[string]error
	// Duration is the backend-reported execution time, zero when unknown.
	Duration time.Duration
}

// Data returns the read-out for name. It returns false for regions that were
// not requested, not declared, or could not be encoded.
func (h *Handle) Data(name string) (*ExecutionData, bool) {
	d, ok := h.data[name]
	return d, ok
}

// DataError explains why Data returned false for a requested region, or nil.
func (h *Handle) DataError(name string) error {
	return h.failures[name]
}

// Regions returns the names with data, sorted.
func (h *Handle) Regions() []string {
	names := make([]string, 0, len(h.data))
	for name := range h.data {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
