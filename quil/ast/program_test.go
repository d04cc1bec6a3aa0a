package ast

import (
	"testing"
)

func bell() *Program {
	p := NewProgram()
	p.Memory["ro"] = MemoryRegion{Name: "ro", Type: Bit, Length: 2}
	p.Body = []Instruction{
		Gate{Name: "H", Qubits: []uint64{0}},
		Gate{Name: "CNOT", Qubits: []uint64{0, 1}},
		Measure{Qubit: 0, Target: &MemoryReference{Name: "ro", Index: 0}},
		Measure{Qubit: 1, Target: &MemoryReference{Name: "ro", Index: 1}},
	}
	return p
}

func TestProgramString(t *testing.T) {
	p := bell()
	p.Memory["alpha"] = MemoryRegion{Name: "alpha", Type: RealType, Length: 1}

	want := "DECLARE alpha REAL[1]\nDECLARE ro BIT[2]\nH 0\nCNOT 0 1\nMEASURE 0 ro[0]\nMEASURE 1 ro[1]\n"
	if got := p.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestWithPrologueDoesNotMutate(t *testing.T) {
	p := bell()
	before := p.String()

	move := Classical{Op: "MOVE", Operands: []Operand{
		{Ref: &MemoryReference{Name: "ro"}},
		{Value: 1},
	}}
	q := p.WithPrologue([]Instruction{move})

	if p.String() != before {
		t.Error("WithPrologue mutated the original program")
	}
	if len(q.Body) != len(p.Body)+1 {
		t.Fatalf("prologue body length = %d", len(q.Body))
	}
	if got := q.Body[0].String(); got != "MOVE ro[0] 1.0" {
		t.Errorf("first instruction = %q", got)
	}
}

func TestQubits(t *testing.T) {
	p := bell()
	q := uint64(7)
	p.Body = append(p.Body, Reset{Qubit: &q})
	got := p.Qubits()
	want := []uint64{0, 1, 7}
	if len(got) != len(want) {
		t.Fatalf("Qubits() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Qubits()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestScalarType(t *testing.T) {
	for _, name := range []string{"BIT", "OCTET", "INTEGER", "REAL"} {
		typ, ok := ParseScalarType(name)
		if !ok {
			t.Fatalf("ParseScalarType(%q) failed", name)
		}
		if typ.String() != name {
			t.Errorf("round trip %q -> %q", name, typ.String())
		}
	}
	if _, ok := ParseScalarType("FLOAT"); ok {
		t.Error("FLOAT accepted")
	}
}
