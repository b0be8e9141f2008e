// Package formula implements the split-expression mini-language: a typed
// expression AST parsed once at configuration time and evaluated directly
// per record, with no re-parsing and no allocation on the evaluation path.
//
// The textual surface is kept compatible with the classic split-expression
// form, e.g.
//
//	int(fabs([eventID]))%int([NumFolds])
//
// supporting arithmetic (+ - * / %), unary minus, parentheses, the
// functions abs/fabs and int (truncation toward zero), numeric literals,
// field identifiers in bare or [bracketed] form, and the reserved
// identifiers NumFolds/numFolds.
package formula

import (
	"fmt"
	"math"
)

// Env resolves field identifiers during evaluation.
type Env interface {
	// Get returns the value of the named field and whether it exists.
	Get(name string) (float64, bool)
}

// Expr is a parsed expression node.
//
// Eval is a pure function of the environment and the numFolds value;
// nodes hold no mutable state, so a parsed Expr is safe for concurrent
// evaluation.
type Expr interface {
	// Eval evaluates the node. numFolds is substituted for the reserved
	// NumFolds/numFolds identifier.
	Eval(env Env, numFolds float64) (float64, error)

	// appendIdents appends the free field identifiers of the subtree
	// (excluding the reserved NumFolds identifier).
	appendIdents(dst []string) []string
}

// MissingFieldError reports a field referenced by the expression that is
// absent from the evaluated record.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("field %q not present in record", e.Field)
}

type literal struct {
	value float64
}

func (n literal) Eval(Env, float64) (float64, error) { return n.value, nil }

func (n literal) appendIdents(dst []string) []string { return dst }

type fieldRef struct {
	name string
}

func (n fieldRef) Eval(env Env, _ float64) (float64, error) {
	v, ok := env.Get(n.name)
	if !ok {
		return 0, &MissingFieldError{Field: n.name}
	}

	return v, nil
}

func (n fieldRef) appendIdents(dst []string) []string { return append(dst, n.name) }

type numFoldsRef struct{}

func (numFoldsRef) Eval(_ Env, numFolds float64) (float64, error) { return numFolds, nil }

func (numFoldsRef) appendIdents(dst []string) []string { return dst }

type unary struct {
	op   rune // '-'
	expr Expr
}

func (n unary) Eval(env Env, numFolds float64) (float64, error) {
	v, err := n.expr.Eval(env, numFolds)
	if err != nil {
		return 0, err
	}

	return -v, nil
}

func (n unary) appendIdents(dst []string) []string { return n.expr.appendIdents(dst) }

type binary struct {
	op          rune // '+', '-', '*', '/', '%'
	left, right Expr
}

func (n binary) Eval(env Env, numFolds float64) (float64, error) {
	l, err := n.left.Eval(env, numFolds)
	if err != nil {
		return 0, err
	}
	r, err := n.right.Eval(env, numFolds)
	if err != nil {
		return 0, err
	}

	switch n.op {
	case '+':
		return l + r, nil
	case '-':
		return l - r, nil
	case '*':
		return l * r, nil
	case '/':
		// Division by zero yields ±Inf/NaN; the caller's finiteness check
		// turns that into an evaluation error.
		return l / r, nil
	case '%':
		// C-style fmod: truncated toward zero, sign of the dividend.
		return math.Mod(l, r), nil
	default:
		return 0, fmt.Errorf("unknown binary operator %q", n.op)
	}
}

func (n binary) appendIdents(dst []string) []string {
	return n.right.appendIdents(n.left.appendIdents(dst))
}

type call struct {
	fn   string // canonical: "abs" or "int"
	expr Expr
}

func (n call) Eval(env Env, numFolds float64) (float64, error) {
	v, err := n.expr.Eval(env, numFolds)
	if err != nil {
		return 0, err
	}

	switch n.fn {
	case "abs":
		return math.Abs(v), nil
	case "int":
		return math.Trunc(v), nil
	default:
		return 0, fmt.Errorf("unknown function %q", n.fn)
	}
}

func (n call) appendIdents(dst []string) []string { return n.expr.appendIdents(dst) }

// Identifiers returns the distinct free field identifiers of the
// expression, in first-appearance order. The reserved NumFolds identifier
// is not included.
func Identifiers(e Expr) []string {
	all := e.appendIdents(nil)
	out := all[:0]
	for _, id := range all {
		dup := false
		for _, seen := range out {
			if seen == id {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, id)
		}
	}

	return out
}
