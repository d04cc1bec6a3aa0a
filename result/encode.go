package result

import (
	"math"

	"github.com/wippyai/qcs-runtime/errors"
	"github.com/wippyai/qcs-runtime/quil/ast"
)

// Raw is the data a backend returned for one region: one row per shot, one
// column per region index.
type Raw [][]float64

// Failure wraps err as an Error result. A nil err yields a generic message so
// the error text is never empty.
func Failure(err error) *ExecutionResult {
	if err == nil {
		err = errors.Device("execution failed without an error message", nil)
	}
	return &ExecutionResult{Kind: KindError, Err: err}
}

// Encode shapes raw backend data into a Handle result. Every requested region
// that is declared in prog gets shots rows of its declared length, typed by
// its declaration. Short rows are padded with zeros. A region with an
// unsupported type, or no data at all, is recorded as a DataError. A row
// count other than shots, a row longer than the declaration, or a value that
// does not fit the declared type fails the whole result.
func Encode(prog *ast.Program, readouts []string, shots int, raw map[string]Raw) *ExecutionResult {
	h := &Handle{
		data:     make(map[string]*ExecutionData),
		failures: make(map[string]error),
	}

	for _, name := range readouts {
		region, ok := prog.Region(name)
		if !ok {
			continue
		}
		rows, ok := raw[name]
		if !ok {
			h.failures[name] = errors.Data(errors.KindMissing, name, "backend returned no data")
			continue
		}
		if len(rows) != shots {
			return Failure(errors.New(errors.ClassTransport, errors.PhaseDecode, errors.KindShape).
				Path(name).
				Detail("backend returned %d shots, expected %d", len(rows), shots).
				Build())
		}

		switch region.Type {
		case ast.Bit, ast.Octet:
			d, err := encodeBytes(name, region, rows)
			if err != nil {
				return Failure(err)
			}
			h.data[name] = d
		case ast.RealType:
			d, err := encodeReals(name, region, rows)
			if err != nil {
				return Failure(err)
			}
			h.data[name] = d
		default:
			h.failures[name] = errors.Data(errors.KindTypeMismatch, name,
				"regions declared "+region.Type.String()+" cannot be read out")
		}
	}

	return &ExecutionResult{Kind: KindHandle, Handle: h}
}

func checkWidth(name string, region ast.MemoryRegion, row []float64) error {
	if uint64(len(row)) > region.Length {
		return errors.New(errors.ClassTransport, errors.PhaseDecode, errors.KindShape).
			Path(name).
			Detail("backend returned %d values per shot, region is declared with %d", len(row), region.Length).
			Build()
	}
	return nil
}

func encodeBytes(name string, region ast.MemoryRegion, rows Raw) (*ExecutionData, error) {
	out := make([][]int8, len(rows))
	for s, row := range rows {
		if err := checkWidth(name, region, row); err != nil {
			return nil, err
		}
		out[s] = make([]int8, region.Length)
		for i, v := range row {
			b, ok := toByte(v, region.Type)
			if !ok {
				return nil, errors.New(errors.ClassTransport, errors.PhaseDecode, errors.KindTypeMismatch).
					Path(name).
					Value(v).
					Detail("value %v does not fit %s", v, region.Type).
					Build()
			}
			out[s][i] = b
		}
	}
	return &ExecutionData{
		Type:          DataTypeByte,
		NumberOfShots: uint32(len(rows)),
		ShotLength:    uint32(region.Length),
		Byte:          out,
	}, nil
}

// toByte narrows a measured value. BIT accepts 0 and 1; OCTET accepts
// -128..255 and stores values above 127 by their bit pattern.
func toByte(v float64, typ ast.ScalarType) (int8, bool) {
	if v != math.Trunc(v) {
		return 0, false
	}
	if typ == ast.Bit {
		if v != 0 && v != 1 {
			return 0, false
		}
		return int8(v), true
	}
	if v < math.MinInt8 || v > math.MaxUint8 {
		return 0, false
	}
	if v > math.MaxInt8 {
		return int8(uint8(v)), true
	}
	return int8(v), true
}

func encodeReals(name string, region ast.MemoryRegion, rows Raw) (*ExecutionData, error) {
	out := make([][]float64, len(rows))
	for s, row := range rows {
		if err := checkWidth(name, region, row); err != nil {
			return nil, err
		}
		out[s] = make([]float64, region.Length)
		copy(out[s], row)
	}
	return &ExecutionData{
		Type:          DataTypeReal,
		NumberOfShots: uint32(len(rows)),
		ShotLength:    uint32(region.Length),
		Real:          out,
	}, nil
}
