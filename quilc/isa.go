package quilc

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/wippyai/qcs-runtime/api"
)

const (
	perfectFidelity = 1.0
	perfectDuration = 1.0 / 100.0

	rxDuration      = 50.0
	measureDuration = 2000.0
	measureFidelity = 0.90
	twoQDuration    = 200.0

	frbSim1Q = "randomized_benchmark_simultaneous_1q"
)

// Operator is a gate or measurement the compiler may emit on a site.
type Operator struct {
	Target     *string
	Name       string
	Parameters []any
	Arguments  []any
	Duration   float64
	Fidelity   float64
	Qubit      int
	Measure    bool
}

func (o Operator) fields() map[string]any {
	if o.Measure {
		var target any
		if o.Target != nil {
			target = *o.Target
		}
		return map[string]any{
			"operator_type": "measure",
			"operator":      o.Name,
			"duration":      o.Duration,
			"fidelity":      o.Fidelity,
			"qubit":         o.Qubit,
			"target":        target,
		}
	}
	params := o.Parameters
	if params == nil {
		params = []any{}
	}
	return map[string]any{
		"operator_type": "gate",
		"operator":      o.Name,
		"duration":      o.Duration,
		"fidelity":      o.Fidelity,
		"parameters":    params,
		"arguments":     o.Arguments,
	}
}

// EncodeMsgpack writes the operator in the shape quilc expects.
func (o Operator) EncodeMsgpack(enc *msgpack.Encoder) error {
	return enc.Encode(o.fields())
}

// OperatorMap holds operators in insertion order, at most one group per
// operator name.
type OperatorMap struct {
	names map[string]bool
	ops   []Operator
}

// Add appends a group of operators sharing one name. It reports false, and
// adds nothing, when the group is empty, mixes names, or the name is taken.
func (m *OperatorMap) Add(ops ...Operator) bool {
	if len(ops) == 0 {
		return false
	}
	name := ops[0].Name
	for _, op := range ops[1:] {
		if op.Name != name {
			return false
		}
	}
	if m.names[name] {
		return false
	}
	if m.names == nil {
		m.names = make(map[string]bool)
	}
	m.names[name] = true
	m.ops = append(m.ops, ops...)
	return true
}

// Operators returns the operators in insertion order.
func (m *OperatorMap) Operators() []Operator {
	return m.ops
}

// EncodeMsgpack writes the map as a list.
func (m OperatorMap) EncodeMsgpack(enc *msgpack.Encoder) error {
	ops := m.ops
	if ops == nil {
		ops = []Operator{}
	}
	return enc.Encode(ops)
}

// Qubit is the compiler's view of one node.
type Qubit struct {
	Gates OperatorMap `msgpack:"gates"`
	ID    int         `msgpack:"id"`
	Dead  bool        `msgpack:"dead,omitempty"`
}

// Edge is the compiler's view of a pair of coupled nodes.
type Edge struct {
	Gates OperatorMap `msgpack:"gates"`
	IDs   [2]int      `msgpack:"ids"`
	Dead  bool        `msgpack:"dead,omitempty"`
}

// Key returns the "a-b" key used in the 2Q map.
func (e *Edge) Key() string {
	return edgeKey(e.IDs)
}

func edgeKey(ids [2]int) string {
	return strconv.Itoa(ids[0]) + "-" + strconv.Itoa(ids[1])
}

// CompilerISA is the target-device description sent to quilc.
type CompilerISA struct {
	Qubits map[string]*Qubit `msgpack:"1Q"`
	Edges  map[string]*Edge  `msgpack:"2Q"`
}

// FromISA converts a QCS instruction set architecture into the compiler's
// representation. Nodes without supported operations are marked dead.
func FromISA(isa *api.InstructionSetArchitecture) (*CompilerISA, error) {
	qubits := make(map[int]*Qubit, len(isa.Architecture.Nodes))
	for _, n := range isa.Architecture.Nodes {
		qubits[n.NodeID] = &Qubit{ID: n.NodeID, Dead: true}
	}
	edges := make(map[[2]int]*Edge, len(isa.Architecture.Edges))
	for _, e := range isa.Architecture.Edges {
		ids, err := edgeIDs(e.NodeIDs)
		if err != nil {
			return nil, err
		}
		edges[ids] = &Edge{IDs: ids, Dead: true}
	}

	var bench *api.Operation
	for i := range isa.Benchmarks {
		if isa.Benchmarks[i].Name == frbSim1Q {
			bench = &isa.Benchmarks[i]
			break
		}
	}

	for _, op := range isa.Instructions {
		for _, site := range op.Sites {
			count := len(site.NodeIDs)
			if op.NodeCount != nil && *op.NodeCount != count {
				return nil, fmt.Errorf("operation %s declares %d nodes but site %v has %d", op.Name, *op.NodeCount, site.NodeIDs, count)
			}
			switch count {
			case 1:
				q, ok := qubits[site.NodeIDs[0]]
				if !ok {
					return nil, fmt.Errorf("operation %s is defined for qubit %d but that qubit does not exist", op.Name, site.NodeIDs[0])
				}
				if err := q.addOperation(op.Name, site.Characteristics, bench); err != nil {
					return nil, err
				}
			case 2:
				ids, _ := edgeIDs(site.NodeIDs)
				e, ok := edges[ids]
				if !ok {
					return nil, fmt.Errorf("operation %s is defined for edge %s but that edge does not exist", op.Name, edgeKey(ids))
				}
				if err := e.addOperation(op.Name, site.Characteristics); err != nil {
					return nil, err
				}
			default:
				return nil, fmt.Errorf("operation %s has a site with %d nodes; only 1 or 2 are supported", op.Name, count)
			}
		}
	}

	out := &CompilerISA{
		Qubits: make(map[string]*Qubit, len(qubits)),
		Edges:  make(map[string]*Edge, len(edges)),
	}
	for id, q := range qubits {
		out.Qubits[strconv.Itoa(id)] = q
	}
	for ids, e := range edges {
		out.Edges[edgeKey(ids)] = e
	}
	return out, nil
}

func edgeIDs(nodes []int) ([2]int, error) {
	if len(nodes) != 2 {
		return [2]int{}, fmt.Errorf("edges should have exactly 2 nodes, got %d", len(nodes))
	}
	ids := [2]int{nodes[0], nodes[1]}
	sort.Ints(ids[:])
	return ids, nil
}

func (q *Qubit) addOperation(name string, chars []api.Characteristic, bench *api.Operation) error {
	var ops []Operator
	switch name {
	case "RX":
		f, err := rxFidelity(bench, q.ID)
		if err != nil {
			return fmt.Errorf("add RX gate to qubit %d: %w", q.ID, err)
		}
		ops = append(ops, gate1Q("RX", q.ID, 0, perfectFidelity))
		for _, angle := range []float64{math.Pi, -math.Pi, math.Pi / 2, -math.Pi / 2} {
			ops = append(ops, gate1Q("RX", q.ID, angle, f))
		}
	case "RZ":
		ops = []Operator{{
			Name:       "RZ",
			Parameters: []any{"_"},
			Arguments:  []any{q.ID},
			Duration:   perfectDuration,
			Fidelity:   perfectFidelity,
		}}
	case "MEASURE":
		f := measureFidelity
		for _, c := range chars {
			if c.Name == "fRO" {
				f = c.Value
				break
			}
		}
		target := "_"
		ops = []Operator{
			{Measure: true, Name: "MEASURE", Qubit: q.ID, Target: &target, Duration: measureDuration, Fidelity: f},
			{Measure: true, Name: "MEASURE", Qubit: q.ID, Duration: measureDuration, Fidelity: f},
		}
	case "WILDCARD":
		ops = []Operator{{
			Name:       "_",
			Parameters: []any{"_"},
			Arguments:  []any{q.ID},
			Duration:   perfectDuration,
			Fidelity:   perfectFidelity,
		}}
	case "I", "RESET":
		return nil
	default:
		return fmt.Errorf("unknown operator %s on qubit %d", name, q.ID)
	}
	if q.Gates.Add(ops...) {
		q.Dead = false
	}
	return nil
}

func gate1Q(name string, id int, angle, fidelity float64) Operator {
	return Operator{
		Name:       name,
		Parameters: []any{angle},
		Arguments:  []any{id},
		Duration:   rxDuration,
		Fidelity:   fidelity,
	}
}

func rxFidelity(bench *api.Operation, id int) (float64, error) {
	if bench == nil {
		return 0, fmt.Errorf("benchmark %q is missing", frbSim1Q)
	}
	if len(bench.Sites) == 0 {
		return 0, fmt.Errorf("benchmark %q has no sites", frbSim1Q)
	}
	for _, c := range bench.Sites[0].Characteristics {
		if len(c.NodeIDs) == 1 && c.NodeIDs[0] == id {
			return c.Value, nil
		}
	}
	return 0, fmt.Errorf("no %s benchmark for qubit %d", frbSim1Q, id)
}

type twoQGate struct {
	characteristic string
	parameters     []any
	fidelity       float64
}

var twoQGates = map[string]twoQGate{
	"CZ":     {characteristic: "fCZ", fidelity: 0.89},
	"ISWAP":  {characteristic: "fISWAP", fidelity: 0.90},
	"CPHASE": {characteristic: "fCPHASE", fidelity: 0.85, parameters: []any{"theta"}},
	"XY":     {characteristic: "fXY", fidelity: 0.86, parameters: []any{"theta"}},
}

func (e *Edge) addOperation(name string, chars []api.Characteristic) error {
	var op Operator
	if g, ok := twoQGates[name]; ok {
		f := g.fidelity
		for _, c := range chars {
			if c.Name == g.characteristic {
				f = c.Value
				break
			}
		}
		op = Operator{
			Name:       name,
			Parameters: g.parameters,
			Arguments:  []any{"_", "_"},
			Duration:   twoQDuration,
			Fidelity:   f,
		}
	} else if name == "WILDCARD" {
		op = Operator{
			Name:       "_",
			Parameters: []any{"_"},
			Arguments:  []any{"_", "_"},
			Duration:   perfectDuration,
			Fidelity:   perfectFidelity,
		}
	} else {
		return fmt.Errorf("unknown operator %s on edge %s", name, e.Key())
	}
	if e.Gates.Add(op) {
		e.Dead = false
	}
	return nil
}
