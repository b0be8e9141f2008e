package formula

import (
	"fmt"
	"strconv"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokOp // one of + - * / %
)

type token struct {
	kind  tokenKind
	pos   int
	op    rune    // for tokOp
	num   float64 // for tokNumber
	ident string  // for tokIdent
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of expression"
	case tokNumber:
		return strconv.FormatFloat(t.num, 'g', -1, 64)
	case tokIdent:
		return t.ident
	case tokLParen:
		return "("
	case tokRParen:
		return ")"
	case tokLBracket:
		return "["
	case tokRBracket:
		return "]"
	case tokOp:
		return string(t.op)
	default:
		return "?"
	}
}

// lex tokenizes the expression. Whitespace is insignificant.
func lex(input string) ([]token, error) {
	var toks []token
	runes := []rune(input)

	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			toks = append(toks, token{kind: tokLParen, pos: i})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, pos: i})
			i++
		case r == '[':
			toks = append(toks, token{kind: tokLBracket, pos: i})
			i++
		case r == ']':
			toks = append(toks, token{kind: tokRBracket, pos: i})
			i++
		case r == '+' || r == '-' || r == '*' || r == '/' || r == '%':
			toks = append(toks, token{kind: tokOp, pos: i, op: r})
			i++
		case unicode.IsDigit(r) || r == '.':
			start := i
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				i++
			}
			// Scientific notation: 1e3, 2.5e-7
			if i < len(runes) && (runes[i] == 'e' || runes[i] == 'E') {
				j := i + 1
				if j < len(runes) && (runes[j] == '+' || runes[j] == '-') {
					j++
				}
				if j < len(runes) && unicode.IsDigit(runes[j]) {
					i = j
					for i < len(runes) && unicode.IsDigit(runes[i]) {
						i++
					}
				}
			}
			text := string(runes[start:i])
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid number %q at position %d", text, start)
			}
			toks = append(toks, token{kind: tokNumber, pos: start, num: v})
		case isIdentStart(r):
			start := i
			for i < len(runes) && isIdentPart(runes[i]) {
				i++
			}
			toks = append(toks, token{kind: tokIdent, pos: start, ident: string(runes[start:i])})
		default:
			return nil, fmt.Errorf("unexpected character %q at position %d", r, i)
		}
	}

	toks = append(toks, token{kind: tokEOF, pos: len(runes)})

	return toks, nil
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
