package parser

import (
	"fmt"
	"strconv"

	"github.com/wippyai/qcs-runtime/quil/ast"
	"github.com/wippyai/qcs-runtime/quil/internal/token"
)

// Error is a syntax or semantic error tied to a source line.
type Error struct {
	Msg  string
	Line int
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

type Parser struct {
	prog   *ast.Program
	refs   []lineRef
	tokens []token.Token
	pos    int
}

type lineRef struct {
	ref  ast.MemoryReference
	line int
}

func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

func (p *Parser) Parse() (*ast.Program, error) {
	p.prog = ast.NewProgram()
	for {
		t := p.peek()
		if t == nil {
			break
		}
		if t.Type == token.Newline || t.Type == token.Indent {
			p.next()
			continue
		}
		if err := p.parseLine(); err != nil {
			return nil, err
		}
		if err := p.endOfInstruction(); err != nil {
			return nil, err
		}
	}
	if err := p.checkReferences(); err != nil {
		return nil, err
	}
	return p.prog, nil
}

func (p *Parser) peek() *token.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	return &p.tokens[p.pos]
}

func (p *Parser) next() *token.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	t := &p.tokens[p.pos]
	p.pos++
	return t
}

func (p *Parser) line() int {
	if t := p.peek(); t != nil {
		return t.Line
	}
	if len(p.tokens) > 0 {
		return p.tokens[len(p.tokens)-1].Line
	}
	return 1
}

func (p *Parser) errorf(format string, args ...any) error {
	return &Error{Line: p.line(), Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) expect(typ token.Type) (*token.Token, error) {
	t := p.peek()
	if t == nil {
		return nil, p.errorf("expected %v, got end of input", typ)
	}
	if t.Type != typ {
		return nil, p.errorf("expected %v, got %q", typ, t.Value)
	}
	return p.next(), nil
}

func (p *Parser) accept(typ token.Type) bool {
	if t := p.peek(); t != nil && t.Type == typ {
		p.next()
		return true
	}
	return false
}

func (p *Parser) atEnd() bool {
	t := p.peek()
	return t == nil || t.Type == token.Newline
}

func (p *Parser) endOfInstruction() error {
	t := p.peek()
	if t == nil {
		return nil
	}
	if t.Type != token.Newline {
		return p.errorf("unexpected %q at end of instruction", t.Value)
	}
	p.next()
	return nil
}

func (p *Parser) parseUint() (uint64, error) {
	t, err := p.expect(token.Integer)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(t.Value, 10, 64)
	if err != nil {
		return 0, &Error{Line: t.Line, Msg: fmt.Sprintf("invalid integer %q", t.Value)}
	}
	return v, nil
}

// parseMemoryReference reads name or name[index]; a bare name means index 0.
func (p *Parser) parseMemoryReference() (ast.MemoryReference, error) {
	t, err := p.expect(token.Ident)
	if err != nil {
		return ast.MemoryReference{}, err
	}
	ref := ast.MemoryReference{Name: t.Value}
	if p.accept(token.LBracket) {
		if ref.Index, err = p.parseUint(); err != nil {
			return ref, err
		}
		if _, err := p.expect(token.RBracket); err != nil {
			return ref, err
		}
	}
	p.refs = append(p.refs, lineRef{ref: ref, line: t.Line})
	return ref, nil
}

func (p *Parser) checkReferences() error {
	for _, r := range p.refs {
		region, ok := p.prog.Memory[r.ref.Name]
		if !ok {
			return &Error{Line: r.line, Msg: fmt.Sprintf("memory region %q is not declared", r.ref.Name)}
		}
		if r.ref.Index >= region.Length {
			return &Error{Line: r.line, Msg: fmt.Sprintf("index %d out of range for %s[%d]", r.ref.Index, region.Name, region.Length)}
		}
	}
	return nil
}
