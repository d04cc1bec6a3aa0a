package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// ScalarType is the element type of a declared memory region.
type ScalarType byte

const (
	Bit ScalarType = iota + 1
	Octet
	Integer
	RealType
)

func (t ScalarType) String() string {
	switch t {
	case Bit:
		return "BIT"
	case Octet:
		return "OCTET"
	case Integer:
		return "INTEGER"
	case RealType:
		return "REAL"
	}
	return fmt.Sprintf("ScalarType(%d)", t)
}

// ParseScalarType maps a declaration keyword to its ScalarType.
func ParseScalarType(s string) (ScalarType, bool) {
	switch s {
	case "BIT":
		return Bit, true
	case "OCTET":
		return Octet, true
	case "INTEGER":
		return Integer, true
	case "REAL":
		return RealType, true
	}
	return 0, false
}

// Offset is one entry of a SHARING ... OFFSET clause.
type Offset struct {
	Type  ScalarType
	Count uint64
}

// Sharing aliases a region onto another region's storage.
type Sharing struct {
	Name    string
	Offsets []Offset
}

// MemoryRegion is a declared classical memory region.
type MemoryRegion struct {
	Sharing *Sharing
	Name    string
	Length  uint64
	Type    ScalarType
}

// MemoryReference addresses a single element of a region.
type MemoryReference struct {
	Name  string
	Index uint64
}

func (m MemoryReference) String() string {
	return m.Name + "[" + strconv.FormatUint(m.Index, 10) + "]"
}

// Declaration is a DECLARE instruction.
type Declaration struct {
	Region MemoryRegion
}

func (d Declaration) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "DECLARE %s %s[%d]", d.Region.Name, d.Region.Type, d.Region.Length)
	if s := d.Region.Sharing; s != nil {
		b.WriteString(" SHARING ")
		b.WriteString(s.Name)
		if len(s.Offsets) > 0 {
			b.WriteString(" OFFSET")
			for _, o := range s.Offsets {
				fmt.Fprintf(&b, " %d %s", o.Count, o.Type)
			}
		}
	}
	return b.String()
}

// GateDefinition is a DEFGATE block.
type GateDefinition struct {
	Name        string
	Parameters  []string
	Matrix      [][]Expression
	Permutation []uint64
}

func (g GateDefinition) String() string {
	var b strings.Builder
	b.WriteString("DEFGATE ")
	b.WriteString(g.Name)
	if len(g.Parameters) > 0 {
		b.WriteByte('(')
		for i, p := range g.Parameters {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteByte('%')
			b.WriteString(p)
		}
		b.WriteByte(')')
	}
	if g.Permutation != nil {
		b.WriteString(" AS PERMUTATION:\n    ")
		for i, v := range g.Permutation {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(strconv.FormatUint(v, 10))
		}
		return b.String()
	}
	b.WriteByte(':')
	for _, row := range g.Matrix {
		b.WriteString("\n    ")
		for i, e := range row {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(e.String())
		}
	}
	return b.String()
}
