// Package testing provides test utilities for the crossfold library.
//
// It follows Go's convention of shipping test helpers in a dedicated
// package (similar to net/http/httptest):
//
//   - NewTestLogger: types.Logger that writes to testing.T
//   - StartEmbeddedNATS: in-process NATS server with JetStream, for
//     exercising the NATS-backed model store without Docker
//   - CentroidTrainer: a minimal reference ClassifierTrainer (linear
//     centroid discriminant) with a JSON model codec
//   - MeanTrainer: a trivial regression trainer
//
// The trainers exist so tests and examples have a real training loop to
// orchestrate; they are deliberately simple and are not a substitute for
// an external ML toolkit.
//
// Example usage:
//
//	import cftest "github.com/seiche/crossfold/testing"
//
//	func TestStore(t *testing.T) {
//	    _, nc := cftest.StartEmbeddedNATS(t)
//	    // ...
//	}
package testing
