// Package framework contains the generic infrastructure for running named checks against a
// remote API and collecting their results.
//
// The general model is:
//
// 1. A run is a tree of named checks. Each check gets a Context which is similar to Go's
// *testing.T: it accumulates errors, can be used with the testify assert and require packages,
// and captures debug output that is only shown when wanted.
//
// 2. Checks are either gating or informational. The run as a whole is OK only if no gating
// check failed.
//
// 3. Checks can be selected or excluded by regex filters on their names.
//
// The domain-specific code that knows which API calls to make lives in the flows package.
package framework
