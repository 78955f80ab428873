// Package executor is the subprocess boundary for mcargo.
//
// Every external program mcargo runs goes through the Commander interface.
// OSCommander is the os/exec implementation; tests use the scripted fake in
// pkg/testutil.
package executor
