// Command libqcs builds the C shared library:
//
//	go build -buildmode=c-shared -o libqcs.so ./cmd/libqcs
//
// Every pointer returned by the library is owned by it and must be released
// with the matching free function. ExecutionData returned by get_data lives
// until its ExecutionResult is freed.
package main

/*
#cgo CFLAGS: -std=c11
#include <stdlib.h>
#include "libqcs.h"
*/
import "C"

import (
	"context"
	"math"
	"os"
	"sync"
	"unsafe"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/qcs-runtime/abi"
	"github.com/wippyai/qcs-runtime/configuration"
	"github.com/wippyai/qcs-runtime/executable"
	"github.com/wippyai/qcs-runtime/qpu"
	"github.com/wippyai/qcs-runtime/qvm"
	"github.com/wippyai/qcs-runtime/resource"
	"github.com/wippyai/qcs-runtime/result"
	"github.com/wippyai/qcs-runtime/rpcq"
)

const logLevelVar = "QCS_LOG_LEVEL"

var arena = abi.NewArena(nil)

// exported tracks the C result structs handed out, so that freeing one can
// find its arena handle.
var exported = struct {
	results map[*C.ExecutionResult]resource.Handle
	data    map[resource.Handle]*regionData
	sync.Mutex
}{
	results: make(map[*C.ExecutionResult]resource.Handle),
	data:    make(map[resource.Handle]*regionData),
}

// regionData holds the C read-outs of one result. The release hook owns it
// directly, not through the handle, which may be recycled.
type regionData struct {
	regions map[string]*C.ExecutionData
}

func init() {
	l, err := newLogger(os.Getenv(logLevelVar))
	if err != nil {
		return
	}
	abi.SetLogger(l)
	executable.SetLogger(l)
	qvm.SetLogger(l)
	qpu.SetLogger(l)
	rpcq.SetLogger(l)
}

// newLogger returns a production logger at level, or a no-op logger when
// level is empty.
func newLogger(level string) (*zap.Logger, error) {
	if level == "" {
		return zap.NewNop(), nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

//export executable_from_quil
func executable_from_quil(quil *C.char) C.Executable {
	return C.Executable(arena.NewExecutable(C.GoString(quil)))
}

//export set_param
func set_param(exe C.Executable, name *C.char, index C.uint, value C.double) {
	arena.SetParameter(resource.Handle(exe), C.GoString(name), int(index), float64(value))
}

//export read_from
func read_from(exe C.Executable, name *C.char) {
	arena.ReadFrom(resource.Handle(exe), C.GoString(name))
}

//export wrap_in_shots
func wrap_in_shots(exe C.Executable, shots C.ushort) {
	arena.SetShots(resource.Handle(exe), uint16(shots))
}

//export execute_on_qvm
func execute_on_qvm(exe C.Executable) *C.ExecutionResult {
	return export(arena.ExecuteOnQVM(context.Background(), resource.Handle(exe), ""))
}

//export execute_on_qpu
func execute_on_qpu(exe C.Executable, processorID *C.char) *C.ExecutionResult {
	return export(arena.ExecuteOnQPU(context.Background(), resource.Handle(exe), C.GoString(processorID)))
}

func export(r abi.Result) *C.ExecutionResult {
	var msg *C.char
	var out *C.ExecutionResult
	if r.Tag == abi.TagError {
		msg = C.CString(r.Error)
		out = C.qcs_new_error_result(msg)
	} else {
		out = C.qcs_new_handle_result(C.ResultHandle(r.Handle))
	}

	if stored, ok := arena.ExecutionResult(r.Handle); ok {
		stored.OnRelease(func() {
			if msg != nil {
				C.free(unsafe.Pointer(msg))
			}
			C.free(unsafe.Pointer(out))
		})
	}

	exported.Lock()
	exported.results[out] = r.Handle
	exported.Unlock()
	return out
}

//export get_data
func get_data(handle C.ResultHandle, name *C.char) *C.ExecutionData {
	h := resource.Handle(handle)
	region := C.GoString(name)

	exported.Lock()
	if rd, ok := exported.data[h]; ok {
		if d, ok := rd.regions[region]; ok {
			exported.Unlock()
			return d
		}
	}
	exported.Unlock()

	data := arena.GetData(h, region)
	if data == nil {
		return nil
	}
	if data.NumberOfShots > math.MaxUint16 || data.ShotLength > math.MaxUint16 {
		abi.Logger().Warn("read-out does not fit the C layout",
			zap.String("region", region),
			zap.Uint32("shots", data.NumberOfShots),
			zap.Uint32("length", data.ShotLength))
		return nil
	}
	stored, ok := arena.ExecutionResult(h)
	if !ok {
		return nil
	}

	out := toC(data)

	exported.Lock()
	defer exported.Unlock()
	rd, ok := exported.data[h]
	if !ok {
		rd = &regionData{regions: make(map[string]*C.ExecutionData)}
		exported.data[h] = rd
		stored.OnRelease(func() { releaseData(h, rd) })
	}
	if d, ok := rd.regions[region]; ok {
		C.qcs_free_execution_data(out)
		return d
	}
	rd.regions[region] = out
	return out
}

func toC(data *result.ExecutionData) *C.ExecutionData {
	shots, length := C.ushort(data.NumberOfShots), C.ushort(data.ShotLength)
	if data.Type == result.DataTypeByte {
		out := C.qcs_new_execution_data(C.DataType_Byte, shots, length)
		for s, row := range data.Byte {
			for i, v := range row {
				C.qcs_set_byte(out, C.ushort(s), C.ushort(i), C.char(v))
			}
		}
		return out
	}
	out := C.qcs_new_execution_data(C.DataType_Real, shots, length)
	for s, row := range data.Real {
		for i, v := range row {
			C.qcs_set_real(out, C.ushort(s), C.ushort(i), C.double(v))
		}
	}
	return out
}

func releaseData(h resource.Handle, rd *regionData) {
	exported.Lock()
	if exported.data[h] == rd {
		delete(exported.data, h)
	}
	regions := rd.regions
	rd.regions = nil
	exported.Unlock()
	for _, d := range regions {
		C.qcs_free_execution_data(d)
	}
}

//export free_executable
func free_executable(exe C.Executable) {
	arena.ReleaseExecutable(resource.Handle(exe))
}

//export free_execution_result
func free_execution_result(r *C.ExecutionResult) {
	if r == nil {
		return
	}
	exported.Lock()
	h, ok := exported.results[r]
	delete(exported.results, r)
	exported.Unlock()
	if ok {
		arena.ReleaseExecutionResult(h)
	}
}

//export list_quantum_processors
func list_quantum_processors() *C.QuantumProcessors {
	ids, err := listProcessors()
	if err != nil {
		out := C.qcs_new_quantum_processors(0)
		out.error = C.CString(err.Error())
		return out
	}
	out := C.qcs_new_quantum_processors(C.uint(len(ids)))
	for i, id := range ids {
		C.qcs_set_quantum_processor(out, C.uint(i), C.CString(id))
	}
	return out
}

func listProcessors() ([]string, error) {
	cfg, err := configuration.Load()
	if err != nil {
		return nil, err
	}
	return qpu.ListQuantumProcessors(context.Background(), cfg)
}

//export free_quantum_processors
func free_quantum_processors(q *C.QuantumProcessors) {
	if q == nil {
		return
	}
	if q.ids != nil {
		for _, id := range unsafe.Slice(q.ids, int(q.len)) {
			C.free(unsafe.Pointer(id))
		}
		C.free(unsafe.Pointer(q.ids))
	}
	if q.error != nil {
		C.free(unsafe.Pointer(q.error))
	}
	C.free(unsafe.Pointer(q))
}

func main() {}
