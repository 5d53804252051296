// Package testing provides test utilities for the Sovereign library.
//
// This package offers helpers for setting up test environments, particularly
// embedded NATS servers for integration testing. It follows Go's convention
// of providing testing utilities in a dedicated package (similar to net/http/httptest).
//
// Key utilities:
//   - StartEmbeddedNATS: Single NATS server with JetStream
//   - CreateJetStreamKV: Convenience wrapper for KV bucket creation
//   - NewTestLogger: Logger that writes through testing.T
//
// Example usage:
//
//	import (
//	    "testing"
//	    sovtest "github.com/Traqueur-dev/Sovereign/testing"
//	)
//
//	func TestMyComponent(t *testing.T) {
//	    _, nc := sovtest.StartEmbeddedNATS(t)
//	    // Use nc for your tests
//	}
package testing
