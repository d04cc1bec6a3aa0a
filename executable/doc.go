// Package executable holds a Quil program with its run configuration and
// dispatches it to a simulator or a quantum processor.
//
// An Executable collects parameter values, the memory regions to read back
// and a shot count, then Execute runs it on a Target and encodes the
// backend's data into a result.ExecutionResult. Compiled artifacts are
// cached per target, so re-running with new parameter values skips
// compilation and translation.
//
// SubmitToQPU and RetrieveResults split a hardware run in two: the first
// returns once the processor has accepted the job, the second waits for it.
package executable
