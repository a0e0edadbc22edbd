package usecase

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/competitive-edge/backend/internal/domain"
)

// Formula is a metric expression parsed into a tree once, at schema-load time,
// and evaluated per data pair. Evaluation is total over well-formed trees:
// unresolved operands and division by zero yield nil instead of an error.
type Formula struct {
	source string
	root   exprNode
}

// ParseFormula parses an arithmetic expression over field names with
// + - * /, parentheses and numeric literals. Malformed syntax is a
// construction-time error; it never surfaces at evaluation time.
func ParseFormula(source string) (*Formula, error) {
	tokens, err := lexFormula(source)
	if err != nil {
		return nil, err
	}
	p := &formulaParser{tokens: tokens}
	root, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokenEOF {
		return nil, fmt.Errorf("formula %q: unexpected %q", source, tok.text)
	}
	return &Formula{source: source, root: root}, nil
}

// Source returns the original formula text.
func (f *Formula) Source() string { return f.source }

// Evaluate resolves field names from data and computes the formula. It returns
// nil when any operand is missing or non-numeric, or when a division by zero
// occurs anywhere in the tree.
func (f *Formula) Evaluate(data map[string]any) *float64 {
	v, ok := f.root.eval(data)
	if !ok {
		return nil
	}
	return &v
}

type exprNode interface {
	eval(data map[string]any) (float64, bool)
}

type literalNode struct{ value float64 }

func (n literalNode) eval(map[string]any) (float64, bool) { return n.value, true }

type fieldNode struct{ name string }

func (n fieldNode) eval(data map[string]any) (float64, bool) {
	v, ok := data[n.name]
	if !ok || v == nil {
		return 0, false
	}
	return domain.NumericValue(v)
}

type unaryNode struct{ operand exprNode }

func (n unaryNode) eval(data map[string]any) (float64, bool) {
	v, ok := n.operand.eval(data)
	return -v, ok
}

type binaryNode struct {
	op          rune
	left, right exprNode
}

func (n binaryNode) eval(data map[string]any) (float64, bool) {
	l, ok := n.left.eval(data)
	if !ok {
		return 0, false
	}
	r, ok := n.right.eval(data)
	if !ok {
		return 0, false
	}
	switch n.op {
	case '+':
		return l + r, true
	case '-':
		return l - r, true
	case '*':
		return l * r, true
	default:
		if r == 0 {
			return 0, false
		}
		return l / r, true
	}
}

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenNumber
	tokenIdent
	tokenOp
	tokenLParen
	tokenRParen
)

type token struct {
	kind tokenKind
	text string
}

func lexFormula(source string) ([]token, error) {
	var tokens []token
	runes := []rune(source)
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '+' || r == '-' || r == '*' || r == '/':
			tokens = append(tokens, token{tokenOp, string(r)})
			i++
		case r == '(':
			tokens = append(tokens, token{tokenLParen, "("})
			i++
		case r == ')':
			tokens = append(tokens, token{tokenRParen, ")"})
			i++
		case unicode.IsDigit(r) || r == '.':
			j := i
			for j < len(runes) && (unicode.IsDigit(runes[j]) || runes[j] == '.') {
				j++
			}
			text := string(runes[i:j])
			if strings.Count(text, ".") > 1 {
				return nil, fmt.Errorf("formula %q: malformed number %q", source, text)
			}
			tokens = append(tokens, token{tokenNumber, text})
			i = j
		case unicode.IsLetter(r) || r == '_':
			j := i
			for j < len(runes) && (unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j]) || runes[j] == '_') {
				j++
			}
			tokens = append(tokens, token{tokenIdent, string(runes[i:j])})
			i = j
		default:
			return nil, fmt.Errorf("formula %q: invalid character %q", source, string(r))
		}
	}
	return append(tokens, token{kind: tokenEOF}), nil
}

type formulaParser struct {
	tokens []token
	pos    int
}

func (p *formulaParser) peek() token { return p.tokens[p.pos] }

func (p *formulaParser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokenEOF {
		p.pos++
	}
	return tok
}

// parseExpr handles + and - with left associativity.
func (p *formulaParser) parseExpr() (exprNode, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.kind != tokenOp || (tok.text != "+" && tok.text != "-") {
			return left, nil
		}
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: rune(tok.text[0]), left: left, right: right}
	}
}

// parseTerm handles * and /, binding tighter than + and -.
func (p *formulaParser) parseTerm() (exprNode, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.kind != tokenOp || (tok.text != "*" && tok.text != "/") {
			return left, nil
		}
		p.next()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = binaryNode{op: rune(tok.text[0]), left: left, right: right}
	}
}

func (p *formulaParser) parseFactor() (exprNode, error) {
	tok := p.next()
	switch tok.kind {
	case tokenNumber:
		v, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed number %q", tok.text)
		}
		return literalNode{value: v}, nil
	case tokenIdent:
		return fieldNode{name: tok.text}, nil
	case tokenLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokenRParen {
			return nil, fmt.Errorf("unbalanced parentheses")
		}
		return inner, nil
	case tokenOp:
		if tok.text == "-" {
			operand, err := p.parseFactor()
			if err != nil {
				return nil, err
			}
			return unaryNode{operand: operand}, nil
		}
		return nil, fmt.Errorf("unexpected operator %q", tok.text)
	default:
		return nil, fmt.Errorf("unexpected end of formula")
	}
}

// FormatMetricValue renders a metric value for display according to the
// metric's declared format.
func FormatMetricValue(value float64, format string) string {
	switch format {
	case "currency":
		return fmt.Sprintf("$%.2f", value)
	case "percentage":
		return fmt.Sprintf("%.2f%%", value)
	default:
		return strconv.FormatFloat(value, 'f', -1, 64)
	}
}
