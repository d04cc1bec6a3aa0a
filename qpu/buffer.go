package qpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/wippyai/qcs-runtime/errors"
	"github.com/wippyai/qcs-runtime/result"
)

// Buffer is one raw read-out stream returned by the QPU.
type Buffer struct {
	DType string `msgpack:"dtype"`
	Shape []int  `msgpack:"shape"`
	Data  []byte `msgpack:"data"`
}

// Values decodes a one-dimensional little-endian buffer.
func (b Buffer) Values() ([]float64, error) {
	if len(b.Shape) != 1 {
		return nil, fmt.Errorf("only 1-dimensional buffer shapes are supported, got %v", b.Shape)
	}
	n := b.Shape[0]
	var width int
	switch b.DType {
	case "int8":
		width = 1
	case "int16":
		width = 2
	case "int32":
		width = 4
	case "float64":
		width = 8
	default:
		return nil, fmt.Errorf("unsupported buffer dtype %q", b.DType)
	}
	if len(b.Data) != n*width {
		return nil, fmt.Errorf("expected buffer length %d, got %d", n*width, len(b.Data))
	}

	out := make([]float64, n)
	for i := range out {
		chunk := b.Data[i*width : (i+1)*width]
		switch width {
		case 1:
			out[i] = float64(int8(chunk[0]))
		case 2:
			out[i] = float64(int16(binary.LittleEndian.Uint16(chunk)))
		case 4:
			out[i] = float64(int32(binary.LittleEndian.Uint32(chunk)))
		case 8:
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(chunk))
		}
	}
	return out, nil
}

// Columns assembles per-region rows from buffers. names maps each region to
// its buffers in index order; buffer j supplies column j of every shot.
func Columns(buffers map[string]Buffer, names map[string][]string, shots int) (map[string]result.Raw, error) {
	out := make(map[string]result.Raw, len(names))
	for region, bufs := range names {
		rows := make(result.Raw, shots)
		for s := range rows {
			rows[s] = make([]float64, len(bufs))
		}
		for j, name := range bufs {
			buf, ok := buffers[name]
			if !ok {
				return nil, errors.Protocol(errors.PhaseDecode,
					fmt.Sprintf("response from QPU did not include expected buffer %s for %s", name, region), nil)
			}
			vals, err := buf.Values()
			if err != nil {
				return nil, errors.Protocol(errors.PhaseDecode, "decode buffer "+name, err)
			}
			if len(vals) != shots {
				return nil, errors.New(errors.ClassTransport, errors.PhaseDecode, errors.KindShape).
					Path(region).
					Detail("buffer %s holds %d shots, expected %d", name, len(vals), shots).
					Build()
			}
			for s, v := range vals {
				rows[s][j] = v
			}
		}
		out[region] = rows
	}
	return out, nil
}
