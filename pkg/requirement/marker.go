package requirement

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMarker is wrapped by marker syntax and evaluation errors.
var ErrMarker = errors.New("invalid marker")

// Env holds marker variable values, keyed by PEP 508 variable name
// (python_version, sys_platform, extra, ...).
type Env map[string]string

// versionVars are compared component-wise as dotted numbers.
var versionVars = map[string]bool{
	"python_version":         true,
	"python_full_version":    true,
	"implementation_version": true,
}

// Marker is a parsed environment marker expression.
type Marker struct {
	raw  string
	expr markerExpr
}

type markerExpr interface {
	eval(env Env) (bool, error)
}

type boolOp struct {
	and         bool
	left, right markerExpr
}

func (b boolOp) eval(env Env) (bool, error) {
	l, err := b.left.eval(env)
	if err != nil {
		return false, err
	}
	if b.and && !l {
		return false, nil
	}
	if !b.and && l {
		return true, nil
	}
	return b.right.eval(env)
}

type operand struct {
	variable string
	literal  string
}

type comparison struct {
	left, right operand
	op          string
}

func (c comparison) eval(env Env) (bool, error) {
	lv, err := c.left.value(env)
	if err != nil {
		return false, err
	}
	rv, err := c.right.value(env)
	if err != nil {
		return false, err
	}

	variable := c.left.variable
	if variable == "" {
		variable = c.right.variable
	}
	if variable == "extra" {
		lv, rv = NormalizeName(lv), NormalizeName(rv)
	}

	switch c.op {
	case "in":
		return strings.Contains(rv, lv), nil
	case "not in":
		return !strings.Contains(rv, lv), nil
	}

	cmp := strings.Compare(lv, rv)
	if versionVars[variable] {
		if n, ok := compareDotted(lv, rv); ok {
			cmp = n
		}
	}

	switch c.op {
	case "==", "===":
		return cmp == 0, nil
	case "!=":
		return cmp != 0, nil
	case "<":
		return cmp < 0, nil
	case "<=":
		return cmp <= 0, nil
	case ">":
		return cmp > 0, nil
	case ">=":
		return cmp >= 0, nil
	case "~=":
		return cmp >= 0 && samePrefix(lv, rv), nil
	}
	return false, fmt.Errorf("%w: unknown operator %q", ErrMarker, c.op)
}

func (o operand) value(env Env) (string, error) {
	if o.variable == "" {
		return o.literal, nil
	}
	v, ok := env[o.variable]
	if !ok {
		if o.variable == "extra" {
			return "", nil
		}
		return "", fmt.Errorf("%w: undefined variable %q", ErrMarker, o.variable)
	}
	return v, nil
}

// compareDotted compares two dotted numeric versions ("3.10" vs "3.9").
// Missing trailing components count as zero.
func compareDotted(a, b string) (int, bool) {
	pa, ok := splitDotted(a)
	if !ok {
		return 0, false
	}
	pb, ok := splitDotted(b)
	if !ok {
		return 0, false
	}
	for i := range max(len(pa), len(pb)) {
		var x, y int
		if i < len(pa) {
			x = pa[i]
		}
		if i < len(pb) {
			y = pb[i]
		}
		if x != y {
			if x < y {
				return -1, true
			}
			return 1, true
		}
	}
	return 0, true
}

func splitDotted(s string) ([]int, bool) {
	parts := strings.Split(s, ".")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}

// samePrefix implements the release-prefix half of "~=": "3.9.1" ~= "3.9"
// requires the same leading components except the last one of rv.
func samePrefix(lv, rv string) bool {
	r := strings.Split(rv, ".")
	if len(r) < 2 {
		return false
	}
	return strings.HasPrefix(lv+".", strings.Join(r[:len(r)-1], ".")+".")
}

// ParseMarker parses a PEP 508 marker expression such as
// `python_version >= "3.8" and sys_platform != "win32"`.
func ParseMarker(s string) (*Marker, error) {
	toks, err := tokenize(s)
	if err != nil {
		return nil, err
	}
	p := &markerParser{toks: toks}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.toks) {
		return nil, fmt.Errorf("%w: unexpected %q", ErrMarker, p.toks[p.pos].text)
	}
	return &Marker{raw: s, expr: expr}, nil
}

// Evaluate reports whether the marker holds in env. A variable missing from
// env is an error, except "extra", which defaults to the empty string.
func (m *Marker) Evaluate(env Env) (bool, error) {
	return m.expr.eval(env)
}

func (m *Marker) String() string { return m.raw }

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokString
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
}

func tokenize(s string) ([]token, error) {
	var toks []token
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "("})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")"})
			i++
		case c == '"' || c == '\'':
			end := strings.IndexByte(s[i+1:], c)
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated string in %q", ErrMarker, s)
			}
			toks = append(toks, token{tokString, s[i+1 : i+1+end]})
			i += end + 2
		case strings.ContainsRune("=!<>~", rune(c)):
			j := i + 1
			for j < len(s) && strings.ContainsRune("=!<>~", rune(s[j])) {
				j++
			}
			toks = append(toks, token{tokOp, s[i:j]})
			i = j
		case isIdentByte(c):
			j := i + 1
			for j < len(s) && isIdentByte(s[j]) {
				j++
			}
			toks = append(toks, token{tokIdent, s[i:j]})
			i = j
		default:
			return nil, fmt.Errorf("%w: unexpected character %q in %q", ErrMarker, c, s)
		}
	}
	return toks, nil
}

func isIdentByte(c byte) bool {
	return c == '_' || c == '.' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

type markerParser struct {
	toks []token
	pos  int
}

func (p *markerParser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *markerParser) keyword(word string) bool {
	t, ok := p.peek()
	if ok && t.kind == tokIdent && t.text == word {
		p.pos++
		return true
	}
	return false
}

func (p *markerParser) parseOr() (markerExpr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.keyword("or") {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = boolOp{and: false, left: left, right: right}
	}
	return left, nil
}

func (p *markerParser) parseAnd() (markerExpr, error) {
	left, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for p.keyword("and") {
		right, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		left = boolOp{and: true, left: left, right: right}
	}
	return left, nil
}

func (p *markerParser) parseAtom() (markerExpr, error) {
	t, ok := p.peek()
	if !ok {
		return nil, fmt.Errorf("%w: unexpected end of expression", ErrMarker)
	}
	if t.kind == tokLParen {
		p.pos++
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if t, ok := p.peek(); !ok || t.kind != tokRParen {
			return nil, fmt.Errorf("%w: missing closing parenthesis", ErrMarker)
		}
		p.pos++
		return expr, nil
	}

	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	op, err := p.parseOperator()
	if err != nil {
		return nil, err
	}
	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	if left.variable == "" && right.variable == "" {
		return nil, fmt.Errorf("%w: comparison of two literals", ErrMarker)
	}
	return comparison{left: left, right: right, op: op}, nil
}

func (p *markerParser) parseOperand() (operand, error) {
	t, ok := p.peek()
	if !ok {
		return operand{}, fmt.Errorf("%w: expected operand", ErrMarker)
	}
	switch t.kind {
	case tokString:
		p.pos++
		return operand{literal: t.text}, nil
	case tokIdent:
		if t.text == "and" || t.text == "or" || t.text == "in" || t.text == "not" {
			break
		}
		p.pos++
		return operand{variable: t.text}, nil
	}
	return operand{}, fmt.Errorf("%w: unexpected %q", ErrMarker, t.text)
}

func (p *markerParser) parseOperator() (string, error) {
	t, ok := p.peek()
	if !ok {
		return "", fmt.Errorf("%w: expected operator", ErrMarker)
	}
	switch {
	case t.kind == tokOp:
		switch t.text {
		case "==", "===", "!=", "<", "<=", ">", ">=", "~=":
			p.pos++
			return t.text, nil
		}
	case p.keyword("in"):
		return "in", nil
	case p.keyword("not"):
		if p.keyword("in") {
			return "not in", nil
		}
		return "", fmt.Errorf("%w: expected \"in\" after \"not\"", ErrMarker)
	}
	return "", fmt.Errorf("%w: unexpected %q", ErrMarker, t.text)
}
