// Package quilc compiles Quil programs to native Quil for a specific
// processor using a quilc server.
//
// The processor's instruction set architecture, as returned by QCS, is
// converted to the compiler's target-device form: single-qubit gates per
// node ("1Q") and two-qubit gates per edge ("2Q"), each carrying fidelity
// and duration figures taken from the calibration data where present.
package quilc
