// Package qcsruntime runs Quil programs on the Rigetti QVM simulator and on
// quantum processors reached through QCS, behind a boundary callable from C.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	qcsruntime/
//	├── quil/            Quil parsing, canonical printing and expression evaluation
//	├── executable/      Program plus parameters, readouts and shots; dispatch to a target
//	├── qvm/             Simulator client and parameter injection
//	├── qpu/             ISA, native compilation, arithmetic rewriting, translation, submission
//	├── quilc/           Compiler client and ISA conversion
//	├── rpcq/            MessagePack RPC over ZeroMQ
//	├── api/             QCS REST client
//	├── configuration/   settings.toml and secrets.toml, token refresh
//	├── result/          Typed read-out and the error/handle result union
//	├── resource/        Opaque handle tables
//	├── abi/             Handle arena for foreign callers
//	├── manifest/        HCL job files
//	├── errors/          Structured error types
//	└── cmd/             libqcs (C shared library) and qcs (CLI)
//
// # Quick Start
//
// Run a program on the QVM:
//
//	exe, err := executable.FromQuil(`
//	DECLARE ro BIT[2]
//	DECLARE theta REAL
//	RX(theta) 0
//	CNOT 0 1
//	MEASURE 0 ro[0]
//	MEASURE 1 ro[1]
//	`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	exe.SetParameter("theta", 0, math.Pi/2)
//	exe.SetShots(100)
//
//	res := exe.Execute(ctx, executable.Simulator(""))
//	defer res.Drop()
//	if res.Kind == result.KindError {
//	    log.Fatal(res.Err)
//	}
//	ro, _ := res.Handle.Data("ro")
//	fmt.Println(ro.Byte)
//
// Target a processor with executable.Device("Aspen-M-3"). The first run
// compiles and translates the program; later runs with new parameter values
// only submit new memory values.
//
// # Errors
//
// Every failure is an *errors.Error whose Class is one of ParseError,
// CompileError, ConfigurationError, AuthorizationError, TransportError,
// DeviceError or DataError. Dispatch failures are returned as the Error
// variant of an ExecutionResult; a DataError only makes one region's data
// unavailable.
//
// # Thread Safety
//
// An Executable is NOT thread-safe. Distinct Executables may be dispatched
// concurrently, and the abi.Arena is safe for concurrent use.
package qcsruntime
