package parser

import (
	"fmt"

	"github.com/wippyai/qcs-runtime/quil/ast"
	"github.com/wippyai/qcs-runtime/quil/internal/token"
)

// parseDefGate reads a DEFGATE header followed by indented rows, one row per
// line, until the first line that is not indented. It stops on the newline
// that ends the last row.
func (p *Parser) parseDefGate() error {
	name, err := p.expect(token.Ident)
	if err != nil {
		return err
	}
	def := ast.GateDefinition{Name: name.Value}

	if p.accept(token.LParen) {
		for {
			v, err := p.expect(token.Variable)
			if err != nil {
				return err
			}
			def.Parameters = append(def.Parameters, v.Value)
			if p.accept(token.RParen) {
				break
			}
			if _, err := p.expect(token.Comma); err != nil {
				return err
			}
		}
	}

	permutation := false
	if t := p.peek(); t != nil && t.Type == token.Ident && t.Value == "AS" {
		p.next()
		kind, err := p.expect(token.Ident)
		if err != nil {
			return err
		}
		switch kind.Value {
		case "MATRIX":
		case "PERMUTATION":
			permutation = true
		default:
			return &Error{Line: kind.Line, Msg: "DEFGATE AS " + kind.Value + " is not supported"}
		}
	}
	if _, err := p.expect(token.Colon); err != nil {
		return err
	}
	if !p.atEnd() {
		return p.errorf("expected newline after DEFGATE %s header", def.Name)
	}

	for p.rowFollows() {
		p.next()
		p.next()
		if permutation {
			for {
				v, err := p.parseUint()
				if err != nil {
					return err
				}
				def.Permutation = append(def.Permutation, v)
				if !p.accept(token.Comma) {
					break
				}
			}
		} else {
			var row []ast.Expression
			for {
				e, err := p.parseExpression()
				if err != nil {
					return err
				}
				row = append(row, e)
				if !p.accept(token.Comma) {
					break
				}
			}
			def.Matrix = append(def.Matrix, row)
		}
		if !p.atEnd() {
			return p.errorf("unexpected %q in DEFGATE %s", p.peek().Value, def.Name)
		}
	}

	if err := validateDefinition(def); err != nil {
		return &Error{Line: name.Line, Msg: err.Error()}
	}
	p.prog.Definitions = append(p.prog.Definitions, def)
	return nil
}

// rowFollows reports whether the current newline is followed by an indented line.
func (p *Parser) rowFollows() bool {
	if p.pos+1 >= len(p.tokens) {
		return false
	}
	return p.tokens[p.pos].Type == token.Newline && p.tokens[p.pos+1].Type == token.Indent
}

func validateDefinition(def ast.GateDefinition) error {
	if def.Permutation != nil {
		if !isPowerOfTwo(len(def.Permutation)) {
			return fmt.Errorf("permutation for %s must have a power-of-two length", def.Name)
		}
		return nil
	}
	n := len(def.Matrix)
	if n == 0 || !isPowerOfTwo(n) {
		return fmt.Errorf("matrix for %s must have a power-of-two number of rows", def.Name)
	}
	for _, row := range def.Matrix {
		if len(row) != n {
			return fmt.Errorf("matrix for %s must be square", def.Name)
		}
	}
	return nil
}

func isPowerOfTwo(n int) bool {
	return n > 1 && n&(n-1) == 0
}
