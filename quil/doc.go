// Package quil parses Quil program text.
//
// Parsing produces an *ast.Program whose memory declarations, gate
// definitions and body instructions are available for validation, parameter
// injection and arithmetic rewriting. A Program prints back to canonical Quil
// with String:
//
//	prog, err := quil.Parse("DECLARE ro BIT[2]\nH 0\nCNOT 0 1\nMEASURE 0 ro[0]\nMEASURE 1 ro[1]")
//	if err != nil {
//	    return err // *errors.Error of class ParseError
//	}
//	fmt.Print(prog)
//
// Supported: DECLARE (with SHARING), DEFGATE (matrix and permutation), gates
// with modifiers and parameter expressions, MEASURE, RESET, classical memory
// instructions, control flow, PRAGMA, HALT, NOP and WAIT. Pulse-level and
// calibration constructs are rejected.
package quil
