package qpu

import (
	"encoding/binary"
	stderrors "errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/qcs-runtime/errors"
	"github.com/wippyai/qcs-runtime/result"
)

func int8Buffer(vals ...int8) Buffer {
	data := make([]byte, len(vals))
	for i, v := range vals {
		data[i] = byte(v)
	}
	return Buffer{DType: "int8", Shape: []int{len(vals)}, Data: data}
}

func TestBufferValues(t *testing.T) {
	i16 := make([]byte, 4)
	binary.LittleEndian.PutUint16(i16[0:], uint16(0xFFFF))
	binary.LittleEndian.PutUint16(i16[2:], 300)

	i32 := make([]byte, 8)
	binary.LittleEndian.PutUint32(i32[0:], 70000)
	binary.LittleEndian.PutUint32(i32[4:], uint32(0xFFFFFFFE))

	f64 := make([]byte, 16)
	binary.LittleEndian.PutUint64(f64[0:], math.Float64bits(0.25))
	binary.LittleEndian.PutUint64(f64[8:], math.Float64bits(-1.5))

	tests := []struct {
		name string
		buf  Buffer
		want []float64
	}{
		{"int8", int8Buffer(0, 1, -1), []float64{0, 1, -1}},
		{"int16", Buffer{DType: "int16", Shape: []int{2}, Data: i16}, []float64{-1, 300}},
		{"int32", Buffer{DType: "int32", Shape: []int{2}, Data: i32}, []float64{70000, -2}},
		{"float64", Buffer{DType: "float64", Shape: []int{2}, Data: f64}, []float64{0.25, -1.5}},
		{"empty", Buffer{DType: "int8", Shape: []int{0}}, []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.buf.Values()
			if err != nil {
				t.Fatalf("Values: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBufferValuesErrors(t *testing.T) {
	tests := []struct {
		name string
		buf  Buffer
	}{
		{"two dimensional", Buffer{DType: "int8", Shape: []int{1, 1}, Data: []byte{0}}},
		{"unknown dtype", Buffer{DType: "complex64", Shape: []int{1}, Data: make([]byte, 8)}},
		{"short data", Buffer{DType: "int16", Shape: []int{2}, Data: []byte{0, 0, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.buf.Values(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestColumns(t *testing.T) {
	buffers := map[string]Buffer{
		"q0": int8Buffer(0, 1, 1),
		"q1": int8Buffer(1, 0, 1),
	}
	got, err := Columns(buffers, map[string][]string{"ro": {"q0", "q1"}}, 3)
	if err != nil {
		t.Fatalf("Columns: %v", err)
	}
	want := map[string]result.Raw{"ro": {{0, 1}, {1, 0}, {1, 1}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestColumnsErrors(t *testing.T) {
	tests := []struct {
		name    string
		buffers map[string]Buffer
		kind    errors.Kind
	}{
		{"missing buffer", map[string]Buffer{}, errors.KindProtocol},
		{"bad buffer", map[string]Buffer{"q0": {DType: "bool", Shape: []int{2}}}, errors.KindProtocol},
		{"wrong shot count", map[string]Buffer{"q0": int8Buffer(1)}, errors.KindShape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Columns(tt.buffers, map[string][]string{"ro": {"q0"}}, 2)
			target := &errors.Error{Class: errors.ClassTransport, Kind: tt.kind}
			if !stderrors.Is(err, target) {
				t.Fatalf("err = %v, want transport %s", err, tt.kind)
			}
		})
	}
}
