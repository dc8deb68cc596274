// Package harness runs verification scenarios against a CIC decimator
// device and compares what it observes with the golden model.
//
// # Scenarios
//
//   - impulse: a single 1 followed by zeros. The first non-zero output must
//     be 1 and the one after it must equal golden.ImpulseAt.
//   - step: a constant 1. The output after the first must equal
//     golden.StepNearOrigin and the last one golden.StepFinal.
//   - pdm: samples read from a stimulus file. Outputs are written to a file;
//     there is no closed-form expectation.
//
// Scenarios can be described in YAML:
//
//	name: impulse
//	params:
//	  order: 3
//	  tap_delay: 1
//	  ratio: 4
//	max_time: 100000
//
// # Execution
//
// Each Run uses a fresh scheduler: a 10-unit clock, reset held for 100
// units, then driver, monitor and ratio discovery running as cooperative
// tasks. Expected values are computed from the parameters discovered on the
// live device, not from the declared ones; a mismatch between the two is
// reported as an assertion failure.
//
// Runtime failures (time budget, deadlock, task errors) are returned as
// errors. Assertion failures are collected in the Result.
package harness
