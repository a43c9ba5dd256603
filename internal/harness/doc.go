// Package harness runs compile scenarios: YAML files that name a CUE
// module and the expectations on its compiled output.
//
// A scenario either compiles successfully - in which case the emitted
// C++ is checked against substring expectations and, in tests, a
// golden file - or it is expected to fail with a diagnostic matching
// a substring. Scenarios under testdata/scenarios are the module's
// end-to-end suite.
package harness
