package qpu

import (
	"fmt"
	"math"

	"github.com/wippyai/qcs-runtime/errors"
	"github.com/wippyai/qcs-runtime/quil/ast"
)

// SubstitutionName is the memory region that holds rewritten gate
// parameters.
const SubstitutionName = "__SUBST"

// Rewritten is a native program whose non-constant gate parameters read
// from SubstitutionName. Substitutions[k] computes the value of
// SubstitutionName[k] from the user's parameters.
type Rewritten struct {
	Program       *ast.Program
	Substitutions []ast.Expression
}

// RewriteArithmetic moves every non-constant gate parameter into
// SubstitutionName, expressed in units of full turns (the expression divided
// by 2π). Identical expressions share one slot. Constant parameters are
// folded and kept inline.
func RewriteArithmetic(prog *ast.Program) (*Rewritten, error) {
	if _, ok := prog.Region(SubstitutionName); ok {
		return nil, errors.Compile(errors.KindInvalidInput,
			fmt.Sprintf("program declares reserved region %s", SubstitutionName), nil)
	}

	out := prog.Clone()
	var subs []ast.Expression
	index := make(map[string]uint64)

	for i, inst := range out.Body {
		g, ok := inst.(ast.Gate)
		if !ok || len(g.Parameters) == 0 {
			continue
		}
		params := make([]ast.Expression, len(g.Parameters))
		for j, p := range g.Parameters {
			p = ast.Simplify(p)
			if _, ok := p.(ast.Number); ok {
				params[j] = p
				continue
			}
			expr := ast.Simplify(ast.Infix{
				Left:     p,
				Operator: '/',
				Right:    ast.Real(2 * math.Pi),
			})
			key := expr.String()
			k, seen := index[key]
			if !seen {
				k = uint64(len(subs))
				index[key] = k
				subs = append(subs, expr)
			}
			params[j] = ast.MemoryRef{Ref: ast.MemoryReference{Name: SubstitutionName, Index: k}}
		}
		g.Parameters = params
		out.Body[i] = g
	}

	if len(subs) > 0 {
		out.Memory[SubstitutionName] = ast.MemoryRegion{
			Name:   SubstitutionName,
			Type:   ast.RealType,
			Length: uint64(len(subs)),
		}
	}
	return &Rewritten{Program: out, Substitutions: subs}, nil
}

// PatchValues returns params extended with the computed SubstitutionName
// values. A substitution that cannot be evaluated, or evaluates to a complex
// number, is a CompileError.
func (r *Rewritten) PatchValues(params map[string][]float64) (map[string][]float64, error) {
	mem := func(name string, idx uint64) (float64, bool) {
		vs, ok := params[name]
		if !ok || idx >= uint64(len(vs)) {
			return 0, false
		}
		return vs[idx], true
	}

	out := make(map[string][]float64, len(params)+1)
	for k, v := range params {
		out[k] = v
	}
	if len(r.Substitutions) == 0 {
		return out, nil
	}

	values := make([]float64, len(r.Substitutions))
	for i, expr := range r.Substitutions {
		v, err := ast.Evaluate(expr, mem, nil)
		if err != nil {
			return nil, errors.Compile(errors.KindInvalidInput,
				fmt.Sprintf("could not evaluate expression %s", expr), err)
		}
		if imag(v) != 0 {
			return nil, errors.Compile(errors.KindInvalidInput,
				fmt.Sprintf("expression %s is complex; cannot substitute imaginary numbers for QPU execution", expr), nil)
		}
		values[i] = real(v)
	}
	out[SubstitutionName] = values
	return out, nil
}
