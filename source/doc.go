// Package source provides built-in record source implementations.
//
// A RecordSource feeds one dataset (signal or background) to the
// DataLoader. The package includes:
//
//   - Static: fixed in-memory record list
//   - Gaussian: deterministic toy generator of two Gaussian-distributed
//     variables with a sequential eventID spectator
//
// Custom sources (file readers, database cursors, ...) implement
// types.RecordSource.
package source
