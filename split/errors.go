package split

import "errors"

// Error kinds. Every error returned by this package wraps exactly one of
// ErrConfig (construction-time) or ErrEvaluation (per-record), plus a more
// specific sentinel where one applies.
var (
	// ErrConfig indicates an invalid splitter configuration (bad fold
	// count, malformed expression, unbound identifier).
	ErrConfig = errors.New("invalid split configuration")

	// ErrEvaluation indicates a failed fold assignment for a record. The
	// affected record must not be silently assigned to any fold.
	ErrEvaluation = errors.New("split evaluation failed")

	// ErrInvalidNumFolds is returned when the fold count is not positive.
	ErrInvalidNumFolds = errors.New("number of folds must be positive")

	// ErrUnboundIdentifier is returned when the split expression references
	// an identifier that is not in the declared field set.
	ErrUnboundIdentifier = errors.New("expression references unbound identifier")

	// ErrMissingField is returned when a record lacks a field the splitter
	// needs.
	ErrMissingField = errors.New("record is missing a required field")

	// ErrNonFinite is returned when the split expression evaluates to NaN
	// or ±Inf for a record.
	ErrNonFinite = errors.New("expression evaluated to a non-finite value")
)
