package parser

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/wippyai/qcs-runtime/quil/ast"
	"github.com/wippyai/qcs-runtime/quil/internal/token"
)

func parse(t *testing.T, src string) *ast.Program {
	t.Helper()
	tokens, err := token.Tokenize(src)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	prog, err := New(tokens).Parse()
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return prog
}

func parseErr(t *testing.T, src string) *Error {
	t.Helper()
	tokens, err := token.Tokenize(src)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	_, err = New(tokens).Parse()
	if err == nil {
		t.Fatalf("parse %q: expected error", src)
	}
	var pe *Error
	if !stderrors.As(err, &pe) {
		t.Fatalf("parse %q: error %T is not *Error", src, err)
	}
	return pe
}

func TestParseBellProgram(t *testing.T) {
	prog := parse(t, "DECLARE ro BIT[2]\nH 0\nCNOT 0 1\nMEASURE 0 ro[0]\nMEASURE 1 ro[1]\n")

	ro, ok := prog.Region("ro")
	if !ok {
		t.Fatal("ro not declared")
	}
	if ro.Type != ast.Bit || ro.Length != 2 {
		t.Errorf("ro = %+v", ro)
	}
	if len(prog.Body) != 4 {
		t.Fatalf("body has %d instructions, want 4", len(prog.Body))
	}
	want := "DECLARE ro BIT[2]\nH 0\nCNOT 0 1\nMEASURE 0 ro[0]\nMEASURE 1 ro[1]\n"
	if got := prog.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestParseDeclare(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		region string
		want   ast.MemoryRegion
	}{
		{"scalar", "DECLARE theta REAL", "theta", ast.MemoryRegion{Name: "theta", Type: ast.RealType, Length: 1}},
		{"vector", "DECLARE ro OCTET[8]", "ro", ast.MemoryRegion{Name: "ro", Type: ast.Octet, Length: 8}},
		{"integer", "DECLARE n INTEGER[3]", "n", ast.MemoryRegion{Name: "n", Type: ast.Integer, Length: 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := parse(t, tt.src)
			got, ok := prog.Region(tt.region)
			if !ok {
				t.Fatalf("region %s missing", tt.region)
			}
			if got.Name != tt.want.Name || got.Type != tt.want.Type || got.Length != tt.want.Length {
				t.Errorf("region = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseSharing(t *testing.T) {
	prog := parse(t, "DECLARE mem OCTET[8]\nDECLARE view BIT[2] SHARING mem OFFSET 1 OCTET")
	view, _ := prog.Region("view")
	if view.Sharing == nil || view.Sharing.Name != "mem" {
		t.Fatalf("sharing = %+v", view.Sharing)
	}
	if len(view.Sharing.Offsets) != 1 || view.Sharing.Offsets[0].Count != 1 || view.Sharing.Offsets[0].Type != ast.Octet {
		t.Errorf("offsets = %+v", view.Sharing.Offsets)
	}
	if got := (ast.Declaration{Region: view}).String(); got != "DECLARE view BIT[2] SHARING mem OFFSET 1 OCTET" {
		t.Errorf("declaration = %q", got)
	}
}

func TestParseGateParameters(t *testing.T) {
	prog := parse(t, "DECLARE theta REAL\nRZ(theta*1.5) 0\nRX(-pi/2) 1\nDAGGER CONTROLLED PHASE(cos(theta)) 0 1")

	gates := make([]string, 0, len(prog.Body))
	for _, inst := range prog.Body {
		gates = append(gates, inst.String())
	}
	want := []string{
		"RZ((theta[0]*1.5)) 0",
		"RX((-pi/2)) 1",
		"DAGGER CONTROLLED PHASE(cos(theta[0])) 0 1",
	}
	for i := range want {
		if gates[i] != want[i] {
			t.Errorf("instruction %d = %q, want %q", i, gates[i], want[i])
		}
	}
}

func TestParseClassical(t *testing.T) {
	prog := parse(t, "DECLARE x REAL[2]\nDECLARE b BIT\nMOVE x[1] 1.5\nADD x 1\nNEG x[1]\nLT b x[0] -2.0")
	want := []string{"MOVE x[1] 1.5", "ADD x[0] 1", "NEG x[1]", "LT b[0] x[0] -2.0"}
	if len(prog.Body) != len(want) {
		t.Fatalf("body = %v", prog.Body)
	}
	for i, inst := range prog.Body {
		if inst.String() != want[i] {
			t.Errorf("instruction %d = %q, want %q", i, inst.String(), want[i])
		}
	}
}

func TestParseControlFlow(t *testing.T) {
	prog := parse(t, "DECLARE c BIT\nLABEL @start\nRESET\nRESET 3\nJUMP-WHEN @start c\nJUMP-UNLESS @end c[0]\nJUMP @end\nLABEL @end\nWAIT\nNOP\nHALT")
	want := []string{
		"LABEL @start",
		"RESET",
		"RESET 3",
		"JUMP-WHEN @start c[0]",
		"JUMP-UNLESS @end c[0]",
		"JUMP @end",
		"LABEL @end",
		"WAIT",
		"NOP",
		"HALT",
	}
	if len(prog.Body) != len(want) {
		t.Fatalf("body = %v", prog.Body)
	}
	for i, inst := range prog.Body {
		if inst.String() != want[i] {
			t.Errorf("instruction %d = %q, want %q", i, inst.String(), want[i])
		}
	}
}

func TestParsePragma(t *testing.T) {
	prog := parse(t, "PRAGMA INITIAL_REWIRING \"NAIVE\"\nPRAGMA READOUT-POVM 0 \"(0.9 0.1 0.1 0.9)\"\nPRAGMA PRESERVE_BLOCK")
	want := []string{
		`PRAGMA INITIAL_REWIRING "NAIVE"`,
		`PRAGMA READOUT-POVM 0 "(0.9 0.1 0.1 0.9)"`,
		`PRAGMA PRESERVE_BLOCK`,
	}
	for i, inst := range prog.Body {
		if inst.String() != want[i] {
			t.Errorf("instruction %d = %q, want %q", i, inst.String(), want[i])
		}
	}
}

func TestParseDefGate(t *testing.T) {
	src := "DEFGATE G:\n    1, 0\n    0, 1\nG 0\n"
	prog := parse(t, src)
	if len(prog.Definitions) != 1 {
		t.Fatalf("definitions = %d", len(prog.Definitions))
	}
	def := prog.Definitions[0]
	if def.Name != "G" || len(def.Matrix) != 2 || len(def.Matrix[1]) != 2 {
		t.Errorf("definition = %+v", def)
	}
	if len(prog.Body) != 1 {
		t.Errorf("body = %v", prog.Body)
	}
	if got, want := prog.String(), "DEFGATE G:\n    1, 0\n    0, 1\n\nG 0\n"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestParseDefGateParameterized(t *testing.T) {
	prog := parse(t, "DEFGATE RPHI(%phi):\n    1, 0\n    0, cis(%phi)\nRPHI(pi/2) 0")
	def := prog.Definitions[0]
	if len(def.Parameters) != 1 || def.Parameters[0] != "phi" {
		t.Errorf("parameters = %v", def.Parameters)
	}
	if got := def.Matrix[1][1].String(); got != "cis(%phi)" {
		t.Errorf("entry = %q", got)
	}
}

func TestParseDefGatePermutation(t *testing.T) {
	prog := parse(t, "DEFGATE SWAPLIKE AS PERMUTATION:\n    0, 2, 1, 3\nSWAPLIKE 0 1")
	def := prog.Definitions[0]
	if len(def.Permutation) != 4 || def.Permutation[1] != 2 {
		t.Errorf("permutation = %v", def.Permutation)
	}
}

func TestParseDefGateAtEndOfInput(t *testing.T) {
	prog := parse(t, "DEFGATE G:\n    0, 1\n    1, 0")
	if len(prog.Definitions) != 1 || len(prog.Definitions[0].Matrix) != 2 {
		t.Errorf("definitions = %+v", prog.Definitions)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		line     int
		contains string
	}{
		{"gate_without_qubits", "H", 1, "at least one qubit"},
		{"unknown_type", "DECLARE ro FLOAT", 1, "unknown memory type"},
		{"undeclared_region", "H 0\nMEASURE 0 ro[0]", 2, "not declared"},
		{"index_out_of_range", "DECLARE ro BIT[1]\nMEASURE 0 ro[3]", 2, "out of range"},
		{"duplicate_declaration", "DECLARE ro BIT\nDECLARE ro BIT", 2, "declared twice"},
		{"zero_length", "DECLARE ro BIT[0]", 1, "positive length"},
		{"unsupported_calibration", "DEFCAL X 0:\n    NOP", 1, "not supported"},
		{"qubit_not_integer", "H 0 q", 1, "expected integer"},
		{"trailing_token", "HALT 1", 1, "end of instruction"},
		{"non_square_matrix", "DEFGATE G:\n    1, 0\n    0\n", 1, "square"},
		{"unclosed_params", "RX(pi 0", 1, "expected ','"},
		{"pauli_sum", "DEFGATE G AS PAULI-SUM:\n    Z 0", 1, "not supported"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pe := parseErr(t, tt.src)
			if pe.Line != tt.line {
				t.Errorf("line = %d, want %d (%v)", pe.Line, tt.line, pe)
			}
			if !strings.Contains(pe.Error(), tt.contains) {
				t.Errorf("error %q does not contain %q", pe.Error(), tt.contains)
			}
		})
	}
}

func TestDeclarationAfterUse(t *testing.T) {
	prog := parse(t, "RX(theta) 0\nDECLARE theta REAL")
	if _, ok := prog.Region("theta"); !ok {
		t.Error("theta not declared")
	}
}
