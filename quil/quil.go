package quil

import (
	stderrors "errors"

	"github.com/wippyai/qcs-runtime/errors"
	"github.com/wippyai/qcs-runtime/quil/ast"
	"github.com/wippyai/qcs-runtime/quil/internal/parser"
	"github.com/wippyai/qcs-runtime/quil/internal/token"
)

// Parse turns Quil text into a Program. Failures are ParseErrors carrying the
// offending line.
func Parse(source string) (*ast.Program, error) {
	tokens, err := token.Tokenize(source)
	if err != nil {
		return nil, errors.ParseFailed("program", err)
	}
	prog, err := parser.New(tokens).Parse()
	if err != nil {
		var pe *parser.Error
		if stderrors.As(err, &pe) {
			return nil, errors.Syntax(pe.Line, "%s", pe.Msg)
		}
		return nil, errors.ParseFailed("program", err)
	}
	return prog, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level program constants.
func MustParse(source string) *ast.Program {
	prog, err := Parse(source)
	if err != nil {
		panic(err)
	}
	return prog
}
