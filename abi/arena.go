package abi

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/qcs-runtime/configuration"
	"github.com/wippyai/qcs-runtime/errors"
	"github.com/wippyai/qcs-runtime/executable"
	"github.com/wippyai/qcs-runtime/resource"
	"github.com/wippyai/qcs-runtime/result"
)

const (
	KindExecutable resource.Kind = iota + 1
	KindResult
)

// Tag discriminates Result.
type Tag uint8

const (
	TagError Tag = iota
	TagHandle
)

func (t Tag) String() string {
	if t == TagHandle {
		return "handle"
	}
	return "error"
}

// Result is what a dispatch hands back across the boundary. Handle names the
// stored ExecutionResult for both tags and must be released with
// ReleaseExecutionResult; Error is set only for TagError.
type Result struct {
	Error  string
	Handle resource.Handle
	Tag    Tag
}

// slot is an Executable or the parse failure that prevented building one.
type slot struct {
	exe *executable.Executable
	err error
}

// Arena owns every Executable and ExecutionResult handed across the
// boundary. It is safe for concurrent use; tables are locked only while a
// handle is looked up, never during a dispatch.
type Arena struct {
	table       *resource.Table
	executables *resource.Typed[*slot]
	results     *resource.Typed[*result.ExecutionResult]
	config      *configuration.Configuration
}

// NewArena returns an empty arena. Executables load their configuration
// lazily unless cfg is non-nil.
func NewArena(cfg *configuration.Configuration) *Arena {
	t := resource.NewTable()
	a := &Arena{
		table:       t,
		executables: resource.NewTyped[*slot](t, KindExecutable),
		results:     resource.NewTyped[*result.ExecutionResult](t, KindResult),
		config:      cfg,
	}
	t.Subscribe(resource.ObserverFunc(func(e resource.Event) {
		Logger().Debug("handle "+e.Type.String(),
			zap.Uint32("handle", uint32(e.Handle)),
			zap.String("kind", kindName(e.Kind)))
	}))
	return a
}

func kindName(k resource.Kind) string {
	switch k {
	case KindExecutable:
		return "executable"
	case KindResult:
		return "execution_result"
	}
	return "unknown"
}

// NewExecutable parses text and stores the Executable. It always returns a
// handle: a parse failure is kept and reported by the next dispatch.
func (a *Arena) NewExecutable(text string) resource.Handle {
	exe, err := executable.FromQuil(text)
	if err != nil {
		Logger().Debug("program did not parse", zap.Error(err))
		return a.executables.Insert(&slot{err: err})
	}
	if a.config != nil {
		exe.SetConfiguration(a.config)
	}
	return a.executables.Insert(&slot{exe: exe})
}

// Executable returns the Executable behind h, or nil if h is unknown or its
// program did not parse.
func (a *Arena) Executable(h resource.Handle) *executable.Executable {
	s, ok := a.executables.Get(h)
	if !ok {
		return nil
	}
	return s.exe
}

// SetParameter sets name[index] on the Executable behind h.
func (a *Arena) SetParameter(h resource.Handle, name string, index int, value float64) {
	if exe := a.Executable(h); exe != nil {
		exe.SetParameter(name, index, value)
	}
}

// ReadFrom requests region name from the Executable behind h.
func (a *Arena) ReadFrom(h resource.Handle, name string) {
	if exe := a.Executable(h); exe != nil {
		exe.ReadFrom(name)
	}
}

// SetShots sets the shot count of the Executable behind h.
func (a *Arena) SetShots(h resource.Handle, shots uint16) {
	if exe := a.Executable(h); exe != nil {
		exe.SetShots(shots)
	}
}

// ExecuteOnQVM runs the Executable behind h on the QVM at endpoint, or the
// configured QVM when endpoint is empty.
func (a *Arena) ExecuteOnQVM(ctx context.Context, h resource.Handle, endpoint string) Result {
	return a.execute(ctx, h, executable.Simulator(endpoint))
}

// ExecuteOnQPU runs the Executable behind h on the quantum processor
// processorID.
func (a *Arena) ExecuteOnQPU(ctx context.Context, h resource.Handle, processorID string) Result {
	return a.execute(ctx, h, executable.Device(processorID))
}

func (a *Arena) execute(ctx context.Context, h resource.Handle, target executable.Target) Result {
	var res *result.ExecutionResult
	s, ok := a.executables.Get(h)
	switch {
	case !ok:
		res = result.Failure(errors.Configuration(errors.KindNotFound, "unknown executable handle", nil))
	case s.err != nil:
		res = result.Failure(s.err)
	default:
		res = s.exe.Execute(ctx, target)
	}

	rh := a.results.Insert(res)
	if res.Kind == result.KindError {
		return Result{Tag: TagError, Error: res.Message(), Handle: rh}
	}
	return Result{Tag: TagHandle, Handle: rh}
}

// ExecutionResult returns the stored result behind h.
func (a *Arena) ExecutionResult(h resource.Handle) (*result.ExecutionResult, bool) {
	return a.results.Get(h)
}

// GetData returns the read-out of region name from the result behind h. It
// returns nil for error results and for regions without data.
func (a *Arena) GetData(h resource.Handle, name string) *result.ExecutionData {
	res, ok := a.results.Get(h)
	if !ok || res.Kind != result.KindHandle {
		return nil
	}
	d, ok := res.Handle.Data(name)
	if !ok {
		if err := res.Handle.DataError(name); err != nil {
			Logger().Debug("no data for region", zap.String("region", name), zap.Error(err))
		}
		return nil
	}
	return d
}

// ReleaseExecutable frees the Executable behind h. Releasing an unknown
// handle is a no-op that reports false.
func (a *Arena) ReleaseExecutable(h resource.Handle) bool {
	_, ok := a.executables.Release(h)
	return ok
}

// ReleaseExecutionResult frees the result behind h and everything it owns,
// running its release hooks.
func (a *Arena) ReleaseExecutionResult(h resource.Handle) bool {
	_, ok := a.results.Release(h)
	return ok
}

// Len returns the number of live executables and results.
func (a *Arena) Len() (executables, results int) {
	return a.executables.Len(), a.results.Len()
}

// Close releases every live handle.
func (a *Arena) Close() error {
	a.table.Clear()
	return a.table.Close()
}
