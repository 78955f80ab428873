// Package testutil provides test doubles shared by mcargo's package tests.
//
// Key components:
//   - FakeCommander: scripted executor.Commander that records every call and
//     can simulate binaries appearing on PATH after an install step
//   - MockCommander: testify mock of executor.Commander for strict call
//     expectations
//   - FakeResolver, FakeChecker: installer collaborators
//   - RecordingSleeper: captures backoff delays instead of sleeping
package testutil
