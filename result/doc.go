// Package result holds the outcome of dispatching a program.
//
// An ExecutionResult is a tagged union: Kind selects between an error
// (Err) and a Handle that owns the decoded read-out of every requested
// region. Handle.Data returns a region's ExecutionData, a shots by
// declared-length matrix typed from the region's declaration: BIT and
// OCTET regions read out as bytes, REAL regions as float64.
//
// Results own their children. Memory registered with OnRelease is freed
// when the result is dropped; data obtained from a Handle must not be used
// after that.
package result
