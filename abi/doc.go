// Package abi is the ownership boundary between foreign callers and the
// runtime.
//
// Executables and execution results never cross the boundary by address.
// An Arena stores them in a resource.Table and hands out opaque handles;
// every handle is released exactly once by the caller. Releasing a result
// runs the hooks registered on it, which is how memory allocated for a
// foreign caller is returned.
package abi
