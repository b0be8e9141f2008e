package types

// FoldSplitter deterministically maps each record to exactly one fold.
//
// Splitter implementations must be pure functions of the record contents
// and their own immutable configuration:
//   - Deterministic: same record, same configuration, same fold — across
//     repeated calls and across process runs. Re-running a pipeline must
//     assign historical events to the same fold, which is what keeps a
//     calibration reproducible.
//   - Stateless: no dependence on call order or prior calls.
//   - Thread-safe: AssignFold may be called concurrently once the splitter
//     is constructed.
//
// The orchestrator uses one splitter instance for both training-set
// construction and later model application. Built-in implementations live
// in the split package.
type FoldSplitter interface {
	// NumFolds returns the configured fold count (always > 0).
	NumFolds() int

	// AssignFold returns the fold index of the record, in [0, NumFolds()).
	//
	// Parameters:
	//   - record: The record to assign
	//
	// Returns:
	//   - int: Fold index in [0, NumFolds())
	//   - error: Evaluation error (e.g. missing field, non-finite result).
	//     A failed assignment must never silently default to fold 0.
	AssignFold(record Record) (int, error)

	// Fingerprint returns a stable hash of the splitter configuration.
	//
	// Two splitters with the same fingerprint assign every record to the
	// same fold. The orchestrator persists the fingerprint next to trained
	// models so that applying them with a different split configuration is
	// rejected instead of silently corrupting the holdout guarantee.
	Fingerprint() uint64
}
