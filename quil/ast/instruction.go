package ast

import (
	"strconv"
	"strings"
)

// Instruction is one executable line of a program body.
type Instruction interface {
	String() string
	instruction()
}

// Gate applies a named gate to qubits.
type Gate struct {
	Name       string
	Modifiers  []string
	Parameters []Expression
	Qubits     []uint64
}

// Measure reads a qubit, optionally into memory.
type Measure struct {
	Target *MemoryReference
	Qubit  uint64
}

// Reset resets one qubit, or every qubit when Qubit is nil.
type Reset struct {
	Qubit *uint64
}

// Operand is a classical instruction argument: a memory reference or a literal.
type Operand struct {
	Ref   *MemoryReference
	Value float64
	Int   bool
}

func (o Operand) String() string {
	if o.Ref != nil {
		return o.Ref.String()
	}
	if o.Int {
		return strconv.FormatInt(int64(o.Value), 10)
	}
	s := FormatReal(o.Value)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// Classical is a classical memory instruction: MOVE, EXCHANGE, CONVERT,
// ADD, SUB, MUL, DIV, NEG, NOT, AND, IOR, XOR, EQ, GT, GE, LT or LE.
type Classical struct {
	Op       string
	Operands []Operand
}

// Pragma passes a directive through to downstream tooling.
type Pragma struct {
	Name string
	Args []string
	Data *string
}

// Label marks a jump target.
type Label struct {
	Name string
}

// Jump transfers control, unconditionally or on a memory condition.
type Jump struct {
	Condition *MemoryReference
	Target    string
	When      bool
}

// Simple is an instruction with no operands: HALT, NOP or WAIT.
type Simple struct {
	Name string
}

func (Gate) instruction()      {}
func (Measure) instruction()   {}
func (Reset) instruction()     {}
func (Classical) instruction() {}
func (Pragma) instruction()    {}
func (Label) instruction()     {}
func (Jump) instruction()      {}
func (Simple) instruction()    {}

func (g Gate) String() string {
	var b strings.Builder
	for _, m := range g.Modifiers {
		b.WriteString(m)
		b.WriteByte(' ')
	}
	b.WriteString(g.Name)
	if len(g.Parameters) > 0 {
		b.WriteByte('(')
		for i, p := range g.Parameters {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.String())
		}
		b.WriteByte(')')
	}
	for _, q := range g.Qubits {
		b.WriteByte(' ')
		b.WriteString(strconv.FormatUint(q, 10))
	}
	return b.String()
}

func (m Measure) String() string {
	s := "MEASURE " + strconv.FormatUint(m.Qubit, 10)
	if m.Target != nil {
		s += " " + m.Target.String()
	}
	return s
}

func (r Reset) String() string {
	if r.Qubit == nil {
		return "RESET"
	}
	return "RESET " + strconv.FormatUint(*r.Qubit, 10)
}

func (c Classical) String() string {
	parts := make([]string, 0, len(c.Operands)+1)
	parts = append(parts, c.Op)
	for _, o := range c.Operands {
		parts = append(parts, o.String())
	}
	return strings.Join(parts, " ")
}

func (p Pragma) String() string {
	var b strings.Builder
	b.WriteString("PRAGMA ")
	b.WriteString(p.Name)
	for _, a := range p.Args {
		b.WriteByte(' ')
		b.WriteString(a)
	}
	if p.Data != nil {
		b.WriteString(" ")
		b.WriteString(strconv.Quote(*p.Data))
	}
	return b.String()
}

func (l Label) String() string { return "LABEL @" + l.Name }

func (j Jump) String() string {
	switch {
	case j.Condition == nil:
		return "JUMP @" + j.Target
	case j.When:
		return "JUMP-WHEN @" + j.Target + " " + j.Condition.String()
	default:
		return "JUMP-UNLESS @" + j.Target + " " + j.Condition.String()
	}
}

func (s Simple) String() string { return s.Name }

// ClassicalArity is the operand count of each classical instruction.
var ClassicalArity = map[string]int{
	"MOVE": 2, "EXCHANGE": 2, "CONVERT": 2,
	"ADD": 2, "SUB": 2, "MUL": 2, "DIV": 2,
	"NEG": 1, "NOT": 1,
	"AND": 2, "IOR": 2, "XOR": 2,
	"EQ": 3, "GT": 3, "GE": 3, "LT": 3, "LE": 3,
}
