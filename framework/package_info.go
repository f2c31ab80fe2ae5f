// Package framework contains the low-level implementation of the test harness infrastructure.
//
// The general model is:
//
// 1. The test harness talks to an echo service at a base URL, through one HTTP session that is
// created when the harness starts and released when the run ends.
//
// 2. There is a general notion of a test context which is similar to Go's *testing.T,
// allowing pieces of test logic to be associated with a test identifier and to accumulate
// success/failure results.
//
// The domain-specific code that knows what is being tested is responsible for building the
// requests to send and for checking what comes back.
package framework
