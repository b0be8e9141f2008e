// Package split provides built-in deterministic fold splitter
// implementations.
//
// A splitter maps each record to exactly one fold in [0, NumFolds). The
// package includes two built-in splitters:
//
//   - Expression: evaluates a split expression over record fields, e.g.
//     "int(fabs([eventID]))%int([NumFolds])" (recommended when records
//     carry a stable integral event identifier)
//   - Hash: hashes a single spectator field with xxh3 (for datasets
//     without a convenient integral identifier)
//
// # Splitter Selection Guide
//
// Expression:
//   - Use when a stable per-event identifier exists
//   - The fold of an event is transparent and reproducible by hand
//   - Expression is parsed once at construction, evaluated per record
//
// Hash:
//   - Use when the split key is non-integral or unevenly distributed
//   - xxh3 gives a near-uniform fold distribution for any key
//   - An optional seed decorrelates independent cross-validation runs
//
// Custom splitters can be implemented by satisfying the
// types.FoldSplitter interface; they must be pure functions of the record
// contents (see the interface contract).
package split
