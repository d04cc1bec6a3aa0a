// Package qvm runs programs on a QVM simulator server.
//
// Parameters are not patched by the simulator. Prepare instead returns a
// copy of the program with a MOVE prologue that writes every parameter value
// into its memory region, after checking the values against the program's
// declarations. Client then posts the program as a multishot request and
// returns the per-region read-out.
package qvm
