// Package manifest reads HCL job files for the qcs command.
//
// A job names a program, either inline or by path, and how to run it:
//
//	program_file = "bell.quil"
//	shots        = 100
//	readouts     = ["ro"]
//
//	parameters = {
//	  theta = [pi / 2, 0]
//	}
//
//	target "qpu" {
//	  processor = "Aspen-M-3"
//	  compile   = true
//	}
//
// Without a target block the job runs on the configured QVM.
package manifest
