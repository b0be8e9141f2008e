package formula

import (
	"errors"
	"fmt"
)

// ErrSyntax indicates a malformed expression. Inspect the wrapped message
// for position details.
var ErrSyntax = errors.New("invalid split expression")

// reserved identifiers that evaluate to the configured fold count.
func isNumFoldsIdent(name string) bool {
	return name == "NumFolds" || name == "numFolds"
}

// Parse parses the expression into an AST.
//
// Grammar (standard precedence, left associative):
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/" | "%") unary }
//	unary   = "-" unary | primary
//	primary = number | ident | ident "(" expr ")" | "[" ident "]" | "(" expr ")"
//
// Returns:
//   - Expr: Parsed expression
//   - error: Wrapping ErrSyntax on any lexical or grammatical problem
func Parse(input string) (Expr, error) {
	toks, err := lex(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSyntax, err)
	}

	p := &parser{toks: toks}
	e, err := p.parseExpr()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSyntax, err)
	}
	if p.peek().kind != tokEOF {
		return nil, fmt.Errorf("%w: unexpected %q at position %d", ErrSyntax, p.peek().String(), p.peek().pos)
	}

	return e, nil
}

type parser struct {
	toks []token
	idx  int
}

func (p *parser) peek() token {
	return p.toks[p.idx]
}

func (p *parser) next() token {
	t := p.toks[p.idx]
	if t.kind != tokEOF {
		p.idx++
	}

	return t
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	t := p.next()
	if t.kind != kind {
		return token{}, fmt.Errorf("expected %s, got %q at position %d", what, t.String(), t.pos)
	}

	return t, nil
}

func (p *parser) parseExpr() (Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for {
		t := p.peek()
		if t.kind != tokOp || (t.op != '+' && t.op != '-') {
			return left, nil
		}
		p.next()

		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = binary{op: t.op, left: left, right: right}
	}
}

func (p *parser) parseTerm() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		t := p.peek()
		if t.kind != tokOp || (t.op != '*' && t.op != '/' && t.op != '%') {
			return left, nil
		}
		p.next()

		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = binary{op: t.op, left: left, right: right}
	}
}

func (p *parser) parseUnary() (Expr, error) {
	t := p.peek()
	if t.kind == tokOp && t.op == '-' {
		p.next()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return unary{op: '-', expr: inner}, nil
	}

	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	t := p.next()

	switch t.kind {
	case tokNumber:
		return literal{value: t.num}, nil

	case tokLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, `")"`); err != nil {
			return nil, err
		}

		return inner, nil

	case tokLBracket:
		id, err := p.expect(tokIdent, "identifier")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRBracket, `"]"`); err != nil {
			return nil, err
		}
		if isNumFoldsIdent(id.ident) {
			return numFoldsRef{}, nil
		}

		return fieldRef{name: id.ident}, nil

	case tokIdent:
		// Function call or bare identifier.
		if p.peek().kind == tokLParen {
			fn, ok := canonicalFunc(t.ident)
			if !ok {
				return nil, fmt.Errorf("unknown function %q at position %d", t.ident, t.pos)
			}
			p.next() // consume "("
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(tokRParen, `")"`); err != nil {
				return nil, err
			}

			return call{fn: fn, expr: arg}, nil
		}
		if isNumFoldsIdent(t.ident) {
			return numFoldsRef{}, nil
		}

		return fieldRef{name: t.ident}, nil

	default:
		return nil, fmt.Errorf("unexpected %q at position %d", t.String(), t.pos)
	}
}

// canonicalFunc maps a surface function name to its canonical AST name.
func canonicalFunc(name string) (string, bool) {
	switch name {
	case "abs", "fabs":
		return "abs", true
	case "int":
		return "int", true
	default:
		return "", false
	}
}
