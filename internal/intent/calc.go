package intent

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrDivisionByZero is returned by Evaluate; the dispatcher turns it into an
// "undefined" reply rather than a failure.
var ErrDivisionByZero = errors.New("division by zero")

// ValidExpression reports whether s is a well-formed arithmetic expression
// over numeric literals and + - * /. Anything else means the calculate rule
// does not match.
func ValidExpression(s string) bool {
	toks, err := tokenize(s)
	if err != nil {
		return false
	}
	// Expect number (op number)*.
	if len(toks) == 0 || len(toks)%2 == 0 {
		return false
	}
	for i, tok := range toks {
		if i%2 == 0 {
			if tok.kind != tokNumber {
				return false
			}
		} else if tok.kind != tokOperator {
			return false
		}
	}
	return true
}

// Evaluate computes a validated expression with standard precedence:
// * and / bind tighter than + and -.
func Evaluate(s string) (float64, error) {
	toks, err := tokenize(s)
	if err != nil {
		return 0, err
	}
	p := &parser{toks: toks}

	result, err := p.expr()
	if err != nil {
		return 0, err
	}
	if p.pos != len(p.toks) {
		return 0, fmt.Errorf("unexpected token at end of %q", s)
	}
	return result, nil
}

type tokenKind int

const (
	tokNumber tokenKind = iota
	tokOperator
)

type token struct {
	kind tokenKind
	num  float64
	op   byte
}

func tokenize(s string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(s) {
		ch := s[i]
		switch {
		case ch == ' ' || ch == '\t':
			i++
		case ch == '+' || ch == '-' || ch == '*' || ch == '/':
			toks = append(toks, token{kind: tokOperator, op: ch})
			i++
		case unicode.IsDigit(rune(ch)):
			j := i
			for j < len(s) && (unicode.IsDigit(rune(s[j])) || s[j] == '.') {
				j++
			}
			n, err := strconv.ParseFloat(s[i:j], 64)
			if err != nil {
				return nil, fmt.Errorf("bad number %q", s[i:j])
			}
			toks = append(toks, token{kind: tokNumber, num: n})
			i = j
		default:
			return nil, fmt.Errorf("unexpected character %q", ch)
		}
	}
	return toks, nil
}

type parser struct {
	toks []token
	pos  int
}

// expr = term (('+' | '-') term)*
func (p *parser) expr() (float64, error) {
	left, err := p.term()
	if err != nil {
		return 0, err
	}
	for p.pos < len(p.toks) && p.toks[p.pos].kind == tokOperator &&
		(p.toks[p.pos].op == '+' || p.toks[p.pos].op == '-') {
		op := p.toks[p.pos].op
		p.pos++
		right, err := p.term()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			left += right
		} else {
			left -= right
		}
	}
	return left, nil
}

// term = number (('*' | '/') number)*
func (p *parser) term() (float64, error) {
	left, err := p.number()
	if err != nil {
		return 0, err
	}
	for p.pos < len(p.toks) && p.toks[p.pos].kind == tokOperator &&
		(p.toks[p.pos].op == '*' || p.toks[p.pos].op == '/') {
		op := p.toks[p.pos].op
		p.pos++
		right, err := p.number()
		if err != nil {
			return 0, err
		}
		if op == '*' {
			left *= right
		} else {
			if right == 0 {
				return 0, ErrDivisionByZero
			}
			left /= right
		}
	}
	return left, nil
}

func (p *parser) number() (float64, error) {
	if p.pos >= len(p.toks) || p.toks[p.pos].kind != tokNumber {
		return 0, errors.New("expected number")
	}
	n := p.toks[p.pos].num
	p.pos++
	return n, nil
}

// FormatResult renders a computed value without a trailing ".000000" for
// whole numbers.
func FormatResult(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strings.TrimRight(strconv.FormatFloat(v, 'f', 6, 64), "0")
}
