package rule

import (
	"strconv"
	"unicode"

	"github.com/rxtech-lab/plantrade/pkg/errors"
)

// The legacy rule language is a restricted infix expression grammar:
//
//	expr       := orExpr
//	orExpr     := andExpr { "or" andExpr }
//	andExpr    := notExpr { "and" notExpr }
//	notExpr    := "not" notExpr | comparison
//	comparison := operand [ ("<"|"<="|">"|">="|"=="|"!=") operand ]
//	operand    := NUMBER | "-" NUMBER | "true" | "false" | NAME | "(" expr ")"
//
// There are no calls, no attribute access, no subscripts and no assignment:
// any such syntax fails at tokenize or parse time, before evaluation.

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenNumber
	tokenName
	tokenOp     // < <= > >= == !=
	tokenAnd    // and
	tokenOr     // or
	tokenNot    // not
	tokenTrue   // true
	tokenFalse  // false
	tokenMinus  // unary minus on literals
	tokenLParen // (
	tokenRParen // )
)

type token struct {
	kind tokenKind
	text string
	num  float64
}

type nodeKind int

const (
	nodeLiteral nodeKind = iota
	nodeName
	nodeCompare
	nodeBoolOp
	nodeNot
)

// node is a tagged-variant AST node.
type node struct {
	kind nodeKind

	// nodeLiteral
	value float64

	// nodeName
	name string

	// nodeCompare: op is one of < <= > >= == !=
	// nodeBoolOp: op is "and" or "or"
	op    string
	left  *node
	right *node

	// nodeNot
	child *node
}

func tokenize(expr string) ([]token, error) {
	var tokens []token

	runes := []rune(expr)
	i := 0

	for i < len(runes) {
		c := runes[i]

		switch {
		case unicode.IsSpace(c):
			i++
		case c == '(':
			tokens = append(tokens, token{kind: tokenLParen, text: "("})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokenRParen, text: ")"})
			i++
		case c == '-':
			tokens = append(tokens, token{kind: tokenMinus, text: "-"})
			i++
		case c == '<' || c == '>' || c == '=' || c == '!':
			op := string(c)
			i++

			if i < len(runes) && runes[i] == '=' {
				op += "="
				i++
			}

			if op == "=" || op == "!" {
				return nil, errors.Newf(errors.ErrCodeRuleSyntax, "unexpected operator %q", op)
			}

			tokens = append(tokens, token{kind: tokenOp, text: op})
		case unicode.IsDigit(c) || c == '.':
			start := i
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '.') {
				i++
			}

			num, err := strconv.ParseFloat(string(runes[start:i]), 64)
			if err != nil {
				return nil, errors.Wrapf(errors.ErrCodeRuleSyntax, err,
					"invalid number %q", string(runes[start:i]))
			}

			tokens = append(tokens, token{kind: tokenNumber, text: string(runes[start:i]), num: num})
		case unicode.IsLetter(c) || c == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}

			word := string(runes[start:i])
			switch word {
			case "and":
				tokens = append(tokens, token{kind: tokenAnd, text: word})
			case "or":
				tokens = append(tokens, token{kind: tokenOr, text: word})
			case "not":
				tokens = append(tokens, token{kind: tokenNot, text: word})
			case "true", "True":
				tokens = append(tokens, token{kind: tokenTrue, text: word})
			case "false", "False":
				tokens = append(tokens, token{kind: tokenFalse, text: word})
			default:
				tokens = append(tokens, token{kind: tokenName, text: word})
			}
		default:
			return nil, errors.Newf(errors.ErrCodeRuleSyntax, "unexpected character %q", string(c))
		}
	}

	tokens = append(tokens, token{kind: tokenEOF, text: ""})

	return tokens, nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokenEOF {
		p.pos++
	}

	return t
}

func parse(tokens []token) (*node, error) {
	p := &parser{tokens: tokens, pos: 0}

	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if p.peek().kind != tokenEOF {
		return nil, errors.Newf(errors.ErrCodeRuleSyntax,
			"unexpected token %q after expression", p.peek().text)
	}

	return root, nil
}

func (p *parser) parseOr() (*node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.peek().kind == tokenOr {
		p.next()

		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}

		left = &node{kind: nodeBoolOp, op: "or", left: left, right: right}
	}

	return left, nil
}

func (p *parser) parseAnd() (*node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	for p.peek().kind == tokenAnd {
		p.next()

		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}

		left = &node{kind: nodeBoolOp, op: "and", left: left, right: right}
	}

	return left, nil
}

func (p *parser) parseNot() (*node, error) {
	if p.peek().kind == tokenNot {
		p.next()

		child, err := p.parseNot()
		if err != nil {
			return nil, err
		}

		return &node{kind: nodeNot, child: child}, nil
	}

	return p.parseComparison()
}

func (p *parser) parseComparison() (*node, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	if p.peek().kind == tokenOp {
		op := p.next().text

		right, err := p.parseOperand()
		if err != nil {
			return nil, err
		}

		return &node{kind: nodeCompare, op: op, left: left, right: right}, nil
	}

	return left, nil
}

func (p *parser) parseOperand() (*node, error) {
	t := p.next()

	switch t.kind {
	case tokenNumber:
		return &node{kind: nodeLiteral, value: t.num}, nil
	case tokenMinus:
		// Unary minus is only allowed on numeric literals.
		num := p.next()
		if num.kind != tokenNumber {
			return nil, errors.Newf(errors.ErrCodeRuleSyntax,
				"unary minus must precede a numeric literal, got %q", num.text)
		}

		return &node{kind: nodeLiteral, value: -num.num}, nil
	case tokenTrue:
		return &node{kind: nodeLiteral, value: 1}, nil
	case tokenFalse:
		return &node{kind: nodeLiteral, value: 0}, nil
	case tokenName:
		return &node{kind: nodeName, name: t.text}, nil
	case tokenLParen:
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}

		if p.next().kind != tokenRParen {
			return nil, errors.New(errors.ErrCodeRuleSyntax, "missing closing parenthesis")
		}

		return inner, nil
	default:
		return nil, errors.Newf(errors.ErrCodeRuleSyntax, "unexpected token %q", t.text)
	}
}

// collectNames gathers every identifier referenced in the AST.
func collectNames(n *node, out map[string]struct{}) {
	if n == nil {
		return
	}

	if n.kind == nodeName {
		out[n.name] = struct{}{}
	}

	collectNames(n.left, out)
	collectNames(n.right, out)
	collectNames(n.child, out)
}
