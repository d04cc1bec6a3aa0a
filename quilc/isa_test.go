package quilc

import (
	"math"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/wippyai/qcs-runtime/api"
)

func intp(v int) *int { return &v }

func testISA() *api.InstructionSetArchitecture {
	return &api.InstructionSetArchitecture{
		Name: "test",
		Architecture: api.Architecture{
			Nodes: []api.Node{{NodeID: 0}, {NodeID: 1}, {NodeID: 2}},
			Edges: []api.Edge{{NodeIDs: []int{1, 0}}, {NodeIDs: []int{1, 2}}},
		},
		Instructions: []api.Operation{
			{
				Name:      "RX",
				NodeCount: intp(1),
				Sites:     []api.OperationSite{{NodeIDs: []int{0}}, {NodeIDs: []int{1}}},
			},
			{
				Name:  "RZ",
				Sites: []api.OperationSite{{NodeIDs: []int{0}}, {NodeIDs: []int{1}}},
			},
			{
				Name: "MEASURE",
				Sites: []api.OperationSite{
					{NodeIDs: []int{0}, Characteristics: []api.Characteristic{{Name: "fRO", Value: 0.95}}},
					{NodeIDs: []int{1}},
				},
			},
			{
				Name:  "CZ",
				Sites: []api.OperationSite{{NodeIDs: []int{0, 1}, Characteristics: []api.Characteristic{{Name: "fCZ", Value: 0.97}}}},
			},
			{
				Name:  "XY",
				Sites: []api.OperationSite{{NodeIDs: []int{0, 1}}},
			},
		},
		Benchmarks: []api.Operation{{
			Name: frbSim1Q,
			Sites: []api.OperationSite{{
				NodeIDs: []int{0, 1},
				Characteristics: []api.Characteristic{
					{Name: "fRB", Value: 0.99, NodeIDs: []int{0}},
					{Name: "fRB", Value: 0.98, NodeIDs: []int{1}},
				},
			}},
		}},
	}
}

func TestFromISA(t *testing.T) {
	isa, err := FromISA(testISA())
	if err != nil {
		t.Fatalf("FromISA: %v", err)
	}

	if len(isa.Qubits) != 3 || len(isa.Edges) != 2 {
		t.Fatalf("got %d qubits, %d edges", len(isa.Qubits), len(isa.Edges))
	}

	q0 := isa.Qubits["0"]
	if q0.Dead {
		t.Error("qubit 0 should be live")
	}
	ops := q0.Gates.Operators()
	// 5 RX, 1 RZ, 2 MEASURE
	if len(ops) != 8 {
		t.Fatalf("qubit 0 has %d operators, want 8", len(ops))
	}
	if ops[0].Fidelity != 1.0 || ops[0].Parameters[0] != 0.0 {
		t.Errorf("first RX = %+v", ops[0])
	}
	if ops[1].Fidelity != 0.99 || ops[1].Parameters[0] != math.Pi {
		t.Errorf("second RX = %+v", ops[1])
	}
	if m := ops[6]; !m.Measure || m.Fidelity != 0.95 || m.Target == nil || *m.Target != "_" {
		t.Errorf("measure = %+v", m)
	}
	if m := ops[7]; m.Target != nil {
		t.Errorf("second measure should have nil target: %+v", m)
	}
	if got := isa.Qubits["1"].Gates.Operators()[6].Fidelity; got != measureFidelity {
		t.Errorf("default measure fidelity = %v", got)
	}

	if !isa.Qubits["2"].Dead {
		t.Error("qubit 2 has no operations and should be dead")
	}

	e := isa.Edges["0-1"]
	if e == nil || e.Dead {
		t.Fatalf("edge 0-1 = %+v", e)
	}
	eops := e.Gates.Operators()
	if len(eops) != 2 || eops[0].Fidelity != 0.97 || eops[1].Fidelity != 0.86 {
		t.Errorf("edge ops = %+v", eops)
	}
	if eops[1].Parameters[0] != "theta" {
		t.Errorf("XY parameters = %v", eops[1].Parameters)
	}
	if !isa.Edges["1-2"].Dead {
		t.Error("edge 1-2 should be dead")
	}
}

func TestFromISAErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*api.InstructionSetArchitecture)
		want   string
	}{
		{
			name: "unknown qubit operator",
			mutate: func(isa *api.InstructionSetArchitecture) {
				isa.Instructions = append(isa.Instructions, api.Operation{Name: "H", Sites: []api.OperationSite{{NodeIDs: []int{0}}}})
			},
			want: "unknown operator H",
		},
		{
			name: "unknown edge operator",
			mutate: func(isa *api.InstructionSetArchitecture) {
				isa.Instructions = append(isa.Instructions, api.Operation{Name: "SWAP", Sites: []api.OperationSite{{NodeIDs: []int{0, 1}}}})
			},
			want: "unknown operator SWAP",
		},
		{
			name: "missing benchmark",
			mutate: func(isa *api.InstructionSetArchitecture) {
				isa.Benchmarks = nil
			},
			want: "is missing",
		},
		{
			name: "bad edge",
			mutate: func(isa *api.InstructionSetArchitecture) {
				isa.Architecture.Edges = append(isa.Architecture.Edges, api.Edge{NodeIDs: []int{0, 1, 2}})
			},
			want: "exactly 2 nodes",
		},
		{
			name: "nonexistent qubit",
			mutate: func(isa *api.InstructionSetArchitecture) {
				isa.Instructions = append(isa.Instructions, api.Operation{Name: "RZ", Sites: []api.OperationSite{{NodeIDs: []int{9}}}})
			},
			want: "does not exist",
		},
		{
			name: "node count mismatch",
			mutate: func(isa *api.InstructionSetArchitecture) {
				isa.Instructions = append(isa.Instructions, api.Operation{Name: "RZ", NodeCount: intp(2), Sites: []api.OperationSite{{NodeIDs: []int{0}}}})
			},
			want: "declares 2 nodes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isa := testISA()
			tt.mutate(isa)
			_, err := FromISA(isa)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestOperatorMapDeduplicates(t *testing.T) {
	var m OperatorMap
	rz := Operator{Name: "RZ", Parameters: []any{"_"}, Arguments: []any{1}}
	if !m.Add(rz) {
		t.Fatal("first add should succeed")
	}
	if m.Add(rz) {
		t.Error("second add with the same name should be rejected")
	}
	if m.Add(Operator{Name: "RX"}, Operator{Name: "RZ"}) {
		t.Error("mixed-name group should be rejected")
	}
	if len(m.Operators()) != 1 {
		t.Errorf("operators = %d, want 1", len(m.Operators()))
	}
}

func TestOperatorEncoding(t *testing.T) {
	target := "_"
	tests := []struct {
		name string
		op   Operator
		want map[string]any
	}{
		{
			name: "gate",
			op:   Operator{Name: "RZ", Parameters: []any{"_"}, Arguments: []any{1}, Duration: 0.5, Fidelity: 0.5},
			want: map[string]any{"operator_type": "gate", "operator": "RZ", "duration": 0.5, "fidelity": 0.5},
		},
		{
			name: "measure",
			op:   Operator{Measure: true, Name: "MEASURE", Qubit: 1, Target: &target, Duration: 0.5, Fidelity: 0.5},
			want: map[string]any{"operator_type": "measure", "operator": "MEASURE", "target": "_"},
		},
		{
			name: "measure without target",
			op:   Operator{Measure: true, Name: "MEASURE", Qubit: 1},
			want: map[string]any{"operator_type": "measure", "target": nil},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := msgpack.Marshal(tt.op)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			var got map[string]any
			if err := msgpack.Unmarshal(data, &got); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			for k, v := range tt.want {
				gv, ok := got[k]
				if !ok || gv != v {
					t.Errorf("%s = %v (present %v), want %v", k, gv, ok, v)
				}
			}
		})
	}
}
