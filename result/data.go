package result

import (
	"fmt"
)

// DataType discriminates the payload of ExecutionData.
type DataType uint8

const (
	DataTypeByte DataType = iota
	DataTypeReal
)

func (t DataType) String() string {
	switch t {
	case DataTypeByte:
		return "byte"
	case DataTypeReal:
		return "real"
	}
	return fmt.Sprintf("DataType(%d)", t)
}

// ExecutionData is the read-out of one memory region: NumberOfShots rows of
// ShotLength values. Exactly one of Byte and Real is set, selected by Type.
type ExecutionData struct {
	Byte          [][]int8
	Real          [][]float64
	NumberOfShots uint32
	ShotLength    uint32
	Type          DataType
}

// Value returns data[shot][index] as a float64 regardless of Type.
func (d *ExecutionData) Value(shot, index int) float64 {
	if d.Type == DataTypeByte {
		return float64(d.Byte[shot][index])
	}
	return d.Real[shot][index]
}

// Rows returns the data as float64 rows, converting bytes.
func (d *ExecutionData) Rows() [][]float64 {
	out := make([][]float64, d.NumberOfShots)
	for s := range out {
		out[s] = make([]float64, d.ShotLength)
		for i := range out[s] {
			out[s][i] = d.Value(s, i)
		}
	}
	return out
}
