package parser

import (
	"strconv"

	"github.com/wippyai/qcs-runtime/quil/ast"
	"github.com/wippyai/qcs-runtime/quil/internal/token"
)

var unsupported = map[string]bool{
	"DEFCIRCUIT":      true,
	"DEFCAL":          true,
	"DEFFRAME":        true,
	"DEFWAVEFORM":     true,
	"PULSE":           true,
	"CAPTURE":         true,
	"RAW-CAPTURE":     true,
	"DELAY":           true,
	"FENCE":           true,
	"SET-FREQUENCY":   true,
	"SHIFT-FREQUENCY": true,
	"SET-PHASE":       true,
	"SHIFT-PHASE":     true,
	"SWAP-PHASES":     true,
	"SET-SCALE":       true,
	"INCLUDE":         true,
	"LOAD":            true,
	"STORE":           true,
}

func (p *Parser) parseLine() error {
	t, err := p.expect(token.Ident)
	if err != nil {
		return err
	}
	kw := t.Value

	if unsupported[kw] {
		return &Error{Line: t.Line, Msg: kw + " is not supported"}
	}
	if arity, ok := ast.ClassicalArity[kw]; ok {
		return p.parseClassical(kw, arity)
	}

	switch kw {
	case "DECLARE":
		return p.parseDeclare(t.Line)
	case "DEFGATE":
		return p.parseDefGate()
	case "MEASURE":
		return p.parseMeasure()
	case "RESET":
		if p.atEnd() {
			p.emit(ast.Reset{})
			return nil
		}
		q, err := p.parseUint()
		if err != nil {
			return err
		}
		p.emit(ast.Reset{Qubit: &q})
		return nil
	case "HALT", "NOP", "WAIT":
		p.emit(ast.Simple{Name: kw})
		return nil
	case "PRAGMA":
		return p.parsePragma()
	case "LABEL":
		l, err := p.expect(token.Label)
		if err != nil {
			return err
		}
		p.emit(ast.Label{Name: l.Value})
		return nil
	case "JUMP", "JUMP-WHEN", "JUMP-UNLESS":
		return p.parseJump(kw)
	}

	p.pos--
	return p.parseGate()
}

func (p *Parser) emit(inst ast.Instruction) {
	p.prog.Body = append(p.prog.Body, inst)
}

func (p *Parser) parseDeclare(line int) error {
	name, err := p.expect(token.Ident)
	if err != nil {
		return err
	}
	typName, err := p.expect(token.Ident)
	if err != nil {
		return err
	}
	typ, ok := ast.ParseScalarType(typName.Value)
	if !ok {
		return &Error{Line: typName.Line, Msg: "unknown memory type " + typName.Value}
	}
	region := ast.MemoryRegion{Name: name.Value, Type: typ, Length: 1}
	if p.accept(token.LBracket) {
		if region.Length, err = p.parseUint(); err != nil {
			return err
		}
		if region.Length == 0 {
			return p.errorf("region %s must have positive length", region.Name)
		}
		if _, err := p.expect(token.RBracket); err != nil {
			return err
		}
	}
	if t := p.peek(); t != nil && t.Type == token.Ident && t.Value == "SHARING" {
		p.next()
		parent, err := p.expect(token.Ident)
		if err != nil {
			return err
		}
		sharing := &ast.Sharing{Name: parent.Value}
		if t := p.peek(); t != nil && t.Type == token.Ident && t.Value == "OFFSET" {
			p.next()
			for !p.atEnd() {
				count, err := p.parseUint()
				if err != nil {
					return err
				}
				tn, err := p.expect(token.Ident)
				if err != nil {
					return err
				}
				ot, ok := ast.ParseScalarType(tn.Value)
				if !ok {
					return &Error{Line: tn.Line, Msg: "unknown memory type " + tn.Value}
				}
				sharing.Offsets = append(sharing.Offsets, ast.Offset{Count: count, Type: ot})
			}
		}
		region.Sharing = sharing
	}
	if _, dup := p.prog.Memory[region.Name]; dup {
		return &Error{Line: line, Msg: "memory region " + region.Name + " declared twice"}
	}
	p.prog.Memory[region.Name] = region
	return nil
}

func (p *Parser) parseMeasure() error {
	q, err := p.parseUint()
	if err != nil {
		return err
	}
	m := ast.Measure{Qubit: q}
	if !p.atEnd() {
		ref, err := p.parseMemoryReference()
		if err != nil {
			return err
		}
		m.Target = &ref
	}
	p.emit(m)
	return nil
}

func (p *Parser) parsePragma() error {
	name, err := p.expect(token.Ident)
	if err != nil {
		return err
	}
	pr := ast.Pragma{Name: name.Value}
	for !p.atEnd() {
		t := p.next()
		switch t.Type {
		case token.Ident, token.Integer:
			pr.Args = append(pr.Args, t.Value)
		case token.String:
			data := t.Value
			pr.Data = &data
			if !p.atEnd() {
				return p.errorf("unexpected %q after pragma string", p.peek().Value)
			}
		default:
			return &Error{Line: t.Line, Msg: "unexpected " + strconv.Quote(t.Value) + " in PRAGMA"}
		}
	}
	p.emit(pr)
	return nil
}

func (p *Parser) parseJump(kw string) error {
	target, err := p.expect(token.Label)
	if err != nil {
		return err
	}
	j := ast.Jump{Target: target.Value}
	if kw != "JUMP" {
		ref, err := p.parseMemoryReference()
		if err != nil {
			return err
		}
		j.Condition = &ref
		j.When = kw == "JUMP-WHEN"
	}
	p.emit(j)
	return nil
}

func (p *Parser) parseClassical(op string, arity int) error {
	c := ast.Classical{Op: op}
	for i := 0; i < arity; i++ {
		o, err := p.parseOperand()
		if err != nil {
			return err
		}
		c.Operands = append(c.Operands, o)
	}
	p.emit(c)
	return nil
}

func (p *Parser) parseOperand() (ast.Operand, error) {
	t := p.peek()
	if t == nil {
		return ast.Operand{}, p.errorf("expected operand, got end of input")
	}
	if t.Type == token.Ident {
		ref, err := p.parseMemoryReference()
		if err != nil {
			return ast.Operand{}, err
		}
		return ast.Operand{Ref: &ref}, nil
	}
	negative := p.accept(token.Minus)
	t = p.next()
	if t == nil {
		return ast.Operand{}, p.errorf("expected operand, got end of input")
	}
	var o ast.Operand
	switch t.Type {
	case token.Integer:
		v, err := strconv.ParseInt(t.Value, 10, 64)
		if err != nil {
			return o, &Error{Line: t.Line, Msg: "invalid integer " + strconv.Quote(t.Value)}
		}
		o = ast.Operand{Value: float64(v), Int: true}
	case token.Float:
		v, err := strconv.ParseFloat(t.Value, 64)
		if err != nil {
			return o, &Error{Line: t.Line, Msg: "invalid number " + strconv.Quote(t.Value)}
		}
		o = ast.Operand{Value: v}
	default:
		return o, &Error{Line: t.Line, Msg: "expected operand, got " + strconv.Quote(t.Value)}
	}
	if negative {
		o.Value = -o.Value
	}
	return o, nil
}

var modifiers = map[string]bool{"DAGGER": true, "CONTROLLED": true, "FORKED": true}

func (p *Parser) parseGate() error {
	var g ast.Gate
	for {
		t, err := p.expect(token.Ident)
		if err != nil {
			return err
		}
		if modifiers[t.Value] {
			g.Modifiers = append(g.Modifiers, t.Value)
			continue
		}
		g.Name = t.Value
		break
	}
	if p.accept(token.LParen) {
		for {
			e, err := p.parseExpression()
			if err != nil {
				return err
			}
			g.Parameters = append(g.Parameters, e)
			if p.accept(token.RParen) {
				break
			}
			if _, err := p.expect(token.Comma); err != nil {
				return err
			}
		}
	}
	for !p.atEnd() {
		q, err := p.parseUint()
		if err != nil {
			return err
		}
		g.Qubits = append(g.Qubits, q)
	}
	if len(g.Qubits) == 0 {
		return p.errorf("gate %s requires at least one qubit", g.Name)
	}
	p.emit(g)
	return nil
}
