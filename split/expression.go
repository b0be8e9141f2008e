package split

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/zeebo/xxh3"

	"github.com/seiche/crossfold/internal/formula"
	"github.com/seiche/crossfold/types"
)

// Expression assigns folds by evaluating a split expression over record
// fields.
//
// The expression is parsed once at construction into a typed AST;
// AssignFold evaluates it directly with no per-record parsing and no
// shared mutable state, so a constructed Expression is safe for
// concurrent use.
type Expression struct {
	expr     string
	numFolds int
	ast      formula.Expr
}

var _ types.FoldSplitter = (*Expression)(nil)

// NewExpression creates an expression splitter.
//
// The expression may use arithmetic (+ - * / %), abs/fabs, int()
// truncation, numeric literals, field identifiers in bare or [bracketed]
// form, and the reserved identifiers NumFolds/numFolds, which evaluate to
// the configured fold count. The recommended form ends in
// "%int([NumFolds])" and wraps the split field in fabs, e.g.
//
//	int(fabs([eventID]))%int([NumFolds])
//
// Parameters:
//   - expr: Split expression text
//   - numFolds: Fold count, must be > 0
//   - fields: Declared record field set (variables + spectators); every
//     field identifier in the expression must appear here
//
// Returns:
//   - *Expression: Configured splitter
//   - error: Wrapping ErrConfig if numFolds <= 0, the expression is
//     malformed, or it references an identifier outside fields
//
// Example:
//
//	sp, err := split.NewExpression("int(fabs([eventID]))%int([NumFolds])", 4,
//	    []string{"x", "y", "eventID"})
func NewExpression(expr string, numFolds int, fields []string) (*Expression, error) {
	if numFolds <= 0 {
		return nil, fmt.Errorf("%w: %w: got %d", ErrConfig, ErrInvalidNumFolds, numFolds)
	}

	ast, err := formula.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrConfig, err)
	}

	for _, id := range formula.Identifiers(ast) {
		bound := false
		for _, f := range fields {
			if f == id {
				bound = true
				break
			}
		}
		if !bound {
			return nil, fmt.Errorf("%w: %w: %q", ErrConfig, ErrUnboundIdentifier, id)
		}
	}

	return &Expression{expr: expr, numFolds: numFolds, ast: ast}, nil
}

// NumFolds returns the configured fold count.
func (e *Expression) NumFolds() int {
	return e.numFolds
}

// Expr returns the original expression text.
func (e *Expression) Expr() string {
	return e.expr
}

// AssignFold evaluates the expression for the record and maps the result
// to [0, NumFolds()).
//
// The real-valued result is truncated toward zero and then wrapped with a
// non-negative modulo, so the returned index is always in range even for
// negative results. Callers are still advised to wrap potentially
// negative identifiers in fabs so the in-expression % (C-style fmod)
// behaves as expected.
//
// Parameters:
//   - record: Record to assign
//
// Returns:
//   - int: Fold index in [0, NumFolds())
//   - error: Wrapping ErrEvaluation if a referenced field is absent from
//     the record or the expression evaluates to NaN/±Inf
func (e *Expression) AssignFold(record types.Record) (int, error) {
	v, err := e.ast.Eval(record, float64(e.numFolds))
	if err != nil {
		var missing *formula.MissingFieldError
		if errors.As(err, &missing) {
			return 0, fmt.Errorf("%w: %w: %q", ErrEvaluation, ErrMissingField, missing.Field)
		}

		return 0, fmt.Errorf("%w: %s", ErrEvaluation, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %w: %v", ErrEvaluation, ErrNonFinite, v)
	}

	fold := int64(math.Trunc(v)) % int64(e.numFolds)
	if fold < 0 {
		fold += int64(e.numFolds)
	}

	return int(fold), nil
}

// Fingerprint returns a stable hash of the expression text and fold count.
func (e *Expression) Fingerprint() uint64 {
	return xxh3.HashString("expr\x00" + e.expr + "\x00" + strconv.Itoa(e.numFolds))
}
