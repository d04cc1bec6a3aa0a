package api

import "time"

// InstructionSetArchitecture describes the native operations, topology and
// calibration data of a quantum processor.
type InstructionSetArchitecture struct {
	Name         string       `json:"name"`
	Architecture Architecture `json:"architecture"`
	Instructions []Operation  `json:"instructions"`
	Benchmarks   []Operation  `json:"benchmarks"`
}

// Architecture is the processor topology.
type Architecture struct {
	Family string `json:"family,omitempty"`
	Nodes  []Node `json:"nodes"`
	Edges  []Edge `json:"edges"`
}

// Node is a single qubit.
type Node struct {
	NodeID int `json:"node_id"`
}

// Edge connects two qubits.
type Edge struct {
	NodeIDs []int `json:"node_ids"`
}

// Operation is a native instruction or a benchmark with its per-site data.
type Operation struct {
	NodeCount       *int             `json:"node_count,omitempty"`
	Name            string           `json:"name"`
	Characteristics []Characteristic `json:"characteristics"`
	Parameters      []Parameter      `json:"parameters"`
	Sites           []OperationSite  `json:"sites"`
}

// Parameter names a parameter of an Operation.
type Parameter struct {
	Name string `json:"name"`
}

// OperationSite is the set of nodes an Operation applies to.
type OperationSite struct {
	NodeIDs         []int            `json:"node_ids"`
	Characteristics []Characteristic `json:"characteristics"`
}

// Characteristic is one measured property such as a fidelity.
type Characteristic struct {
	Error           *float64  `json:"error,omitempty"`
	Name            string    `json:"name"`
	Timestamp       string    `json:"timestamp"`
	NodeIDs         []int     `json:"node_ids,omitempty"`
	ParameterValues []float64 `json:"parameter_values,omitempty"`
	Value           float64   `json:"value"`
}

// TranslationRequest asks QCS to translate native Quil into an executable.
type TranslationRequest struct {
	Quil              string `json:"quil"`
	SettingsTimestamp string `json:"settingsTimestamp,omitempty"`
	NumShots          int    `json:"numShots"`
}

// Translation is an encrypted executable plus its read-out layout.
type Translation struct {
	MemoryDescriptors map[string]ParameterSpec `json:"memoryDescriptors,omitempty"`
	Program           string                   `json:"program"`
	SettingsTimestamp string                   `json:"settingsTimestamp,omitempty"`
	// ROSources pairs a memory reference ("ro[0]") with the buffer that
	// carries its values.
	ROSources [][]string `json:"roSources,omitempty"`
}

// ParameterSpec describes a patchable memory region of a translated program.
type ParameterSpec struct {
	Type   string `json:"type,omitempty"`
	Length int    `json:"length,omitempty"`
}

// EngagementRequest asks for access to a processor.
type EngagementRequest struct {
	QuantumProcessorID string `json:"quantumProcessorId,omitempty"`
	EndpointID         string `json:"endpointId,omitempty"`
}

// Engagement grants access to a processor endpoint until ExpiresAt.
type Engagement struct {
	Address            string                `json:"address"`
	EndpointID         string                `json:"endpointId"`
	ExpiresAt          string                `json:"expiresAt"`
	QuantumProcessorID string                `json:"quantumProcessorId"`
	Credentials        EngagementCredentials `json:"credentials"`
}

// EngagementCredentials are the CURVE keys used to reach the endpoint.
type EngagementCredentials struct {
	ClientPublic string `json:"clientPublic"`
	ClientSecret string `json:"clientSecret"`
	ServerPublic string `json:"serverPublic"`
}

// Expiry parses ExpiresAt. An unparseable or empty value reports ok=false.
func (e *Engagement) Expiry() (t time.Time, ok bool) {
	t, err := time.Parse(time.RFC3339, e.ExpiresAt)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// QuantumProcessor is an entry of the processor listing.
type QuantumProcessor struct {
	ID string `json:"id"`
}

type listQuantumProcessorsResponse struct {
	NextPageToken     string             `json:"nextPageToken,omitempty"`
	QuantumProcessors []QuantumProcessor `json:"quantumProcessors"`
}
