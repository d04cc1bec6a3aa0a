package qvm

import (
	"fmt"
	"math"
	"sort"

	"github.com/hashicorp/go-multierror"

	"github.com/wippyai/qcs-runtime/errors"
	"github.com/wippyai/qcs-runtime/quil/ast"
)

// Prepare checks params against prog's declarations and returns a new
// program that starts by writing each parameter value into memory. Every
// problem is reported, joined into one CompileError.
func Prepare(prog *ast.Program, params map[string][]float64) (*ast.Program, error) {
	var result *multierror.Error

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var prologue []ast.Instruction
	for _, name := range names {
		values := params[name]
		region, ok := prog.Region(name)
		if !ok {
			result = multierror.Append(result, fmt.Errorf("parameter %s is not a declared memory region", name))
			continue
		}
		if uint64(len(values)) > region.Length {
			result = multierror.Append(result, fmt.Errorf("parameter %s[%d] is beyond declared length %d",
				name, len(values)-1, region.Length))
			continue
		}
		for i, v := range values {
			op, err := literal(region, v)
			if err != nil {
				result = multierror.Append(result, fmt.Errorf("parameter %s[%d]: %w", name, i, err))
				continue
			}
			prologue = append(prologue, ast.Classical{
				Op: "MOVE",
				Operands: []ast.Operand{
					{Ref: &ast.MemoryReference{Name: name, Index: uint64(i)}},
					op,
				},
			})
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return nil, errors.Compile(errors.KindInvalidInput, "invalid parameters for program", err)
	}
	if len(prologue) == 0 {
		return prog, nil
	}
	return prog.WithPrologue(prologue), nil
}

// Declared returns the readouts that prog declares, in order. The simulator
// rejects addresses it does not know; undeclared regions read back as no data.
func Declared(prog *ast.Program, readouts []string) []string {
	out := make([]string, 0, len(readouts))
	for _, name := range readouts {
		if _, ok := prog.Region(name); ok {
			out = append(out, name)
		}
	}
	return out
}

// literal renders v for a MOVE into region. Non-REAL regions take integers.
func literal(region ast.MemoryRegion, v float64) (ast.Operand, error) {
	if region.Type == ast.RealType {
		return ast.Operand{Value: v}, nil
	}
	if v != math.Trunc(v) || math.IsInf(v, 0) {
		return ast.Operand{}, fmt.Errorf("value %v is not an integer and region is declared %s", v, region.Type)
	}
	return ast.Operand{Value: v, Int: true}, nil
}
