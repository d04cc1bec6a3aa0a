package executable

import "fmt"

// Target selects the backend a dispatch runs on.
type Target struct {
	endpoint  string
	processor string
	device    bool
}

// Simulator targets the QVM at endpoint. An empty endpoint uses the
// configured QVM URL.
func Simulator(endpoint string) Target {
	return Target{endpoint: endpoint}
}

// Device targets the quantum processor with the given id.
func Device(processorID string) Target {
	return Target{processor: processorID, device: true}
}

// IsDevice reports whether t is a quantum processor.
func (t Target) IsDevice() bool {
	return t.device
}

func (t Target) String() string {
	if t.device {
		return "qpu:" + t.processor
	}
	if t.endpoint == "" {
		return "qvm"
	}
	return fmt.Sprintf("qvm:%s", t.endpoint)
}
