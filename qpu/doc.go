// Package qpu runs programs on Rigetti quantum processors through QCS.
//
// An Execution is built once per processor: the program is compiled to
// native Quil by quilc against the processor's instruction set architecture,
// and every non-constant gate parameter is moved into the __SUBST memory
// region so that later runs only need new patch values. Each run then
// translates the program (cached per shot count), engages the processor,
// submits the encrypted program over RPCQ and decodes the returned buffers
// into per-region rows.
package qpu
