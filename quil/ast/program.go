package ast

import (
	"sort"
	"strings"
)

// Program is a parsed Quil program. Declarations are kept apart from the
// body so the program can be printed in canonical order: declarations sorted
// by name, then gate definitions, then body instructions.
type Program struct {
	Memory      map[string]MemoryRegion
	Definitions []GateDefinition
	Body        []Instruction
}

// NewProgram returns an empty program.
func NewProgram() *Program {
	return &Program{Memory: make(map[string]MemoryRegion)}
}

// Region returns the declaration for name.
func (p *Program) Region(name string) (MemoryRegion, bool) {
	r, ok := p.Memory[name]
	return r, ok
}

// RegionNames returns the declared region names in sorted order.
func (p *Program) RegionNames() []string {
	names := make([]string, 0, len(p.Memory))
	for name := range p.Memory {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a copy whose slices and map may be modified independently.
func (p *Program) Clone() *Program {
	c := &Program{
		Memory:      make(map[string]MemoryRegion, len(p.Memory)),
		Definitions: append([]GateDefinition(nil), p.Definitions...),
		Body:        append([]Instruction(nil), p.Body...),
	}
	for k, v := range p.Memory {
		c.Memory[k] = v
	}
	return c
}

// WithPrologue returns a new program whose body starts with instrs.
func (p *Program) WithPrologue(instrs []Instruction) *Program {
	c := p.Clone()
	c.Body = append(append(make([]Instruction, 0, len(instrs)+len(p.Body)), instrs...), p.Body...)
	return c
}

// Qubits returns the distinct qubit indices used by gates, measurements and resets.
func (p *Program) Qubits() []uint64 {
	seen := make(map[uint64]bool)
	var out []uint64
	add := func(q uint64) {
		if !seen[q] {
			seen[q] = true
			out = append(out, q)
		}
	}
	for _, inst := range p.Body {
		switch x := inst.(type) {
		case Gate:
			for _, q := range x.Qubits {
				add(q)
			}
		case Measure:
			add(x.Qubit)
		case Reset:
			if x.Qubit != nil {
				add(*x.Qubit)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (p *Program) String() string {
	var b strings.Builder
	for _, name := range p.RegionNames() {
		b.WriteString(Declaration{Region: p.Memory[name]}.String())
		b.WriteByte('\n')
	}
	for _, d := range p.Definitions {
		b.WriteString(d.String())
		b.WriteString("\n\n")
	}
	for _, inst := range p.Body {
		b.WriteString(inst.String())
		b.WriteByte('\n')
	}
	return b.String()
}
