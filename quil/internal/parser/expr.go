package parser

import (
	"strconv"

	"github.com/wippyai/qcs-runtime/quil/ast"
	"github.com/wippyai/qcs-runtime/quil/internal/token"
)

// parseExpression parses sums; precedence climbs through terms, unary
// prefixes and right-associative powers.
func (p *Parser) parseExpression() (ast.Expression, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t == nil || (t.Type != token.Plus && t.Type != token.Minus) {
			return left, nil
		}
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = ast.Infix{Left: left, Operator: t.Value[0], Right: right}
	}
}

func (p *Parser) parseTerm() (ast.Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t == nil || (t.Type != token.Star && t.Type != token.Slash) {
			return left, nil
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = ast.Infix{Left: left, Operator: t.Value[0], Right: right}
	}
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	if t := p.peek(); t != nil && (t.Type == token.Minus || t.Type == token.Plus) {
		p.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.Prefix{Operator: t.Value[0], Operand: operand}, nil
	}
	return p.parsePower()
}

func (p *Parser) parsePower() (ast.Expression, error) {
	base, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if p.accept(token.Caret) {
		exp, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.Infix{Left: base, Operator: '^', Right: exp}, nil
	}
	return base, nil
}

func (p *Parser) parseAtom() (ast.Expression, error) {
	t := p.next()
	if t == nil {
		return nil, p.errorf("expected expression, got end of input")
	}
	switch t.Type {
	case token.Integer, token.Float, token.Imaginary:
		v, err := strconv.ParseFloat(t.Value, 64)
		if err != nil {
			return nil, &Error{Line: t.Line, Msg: "invalid number " + strconv.Quote(t.Value)}
		}
		if t.Type == token.Imaginary {
			return ast.Number{Value: complex(0, v)}, nil
		}
		return ast.Real(v), nil
	case token.Variable:
		return ast.Param{Name: t.Value}, nil
	case token.LParen:
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RParen); err != nil {
			return nil, err
		}
		return e, nil
	case token.Ident:
		switch {
		case t.Value == "pi":
			return ast.Pi{}, nil
		case t.Value == "i":
			return ast.Number{Value: complex(0, 1)}, nil
		case ast.IsFunction(t.Value):
			if next := p.peek(); next != nil && next.Type == token.LParen {
				p.next()
				arg, err := p.parseExpression()
				if err != nil {
					return nil, err
				}
				if _, err := p.expect(token.RParen); err != nil {
					return nil, err
				}
				return ast.Call{Function: t.Value, Arg: arg}, nil
			}
		}
		p.pos--
		ref, err := p.parseMemoryReference()
		if err != nil {
			return nil, err
		}
		return ast.MemoryRef{Ref: ref}, nil
	}
	return nil, &Error{Line: t.Line, Msg: "unexpected " + strconv.Quote(t.Value) + " in expression"}
}
