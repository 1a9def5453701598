// Package rule implements the restricted boolean-expression language used by
// legacy plans that specify an entry condition as a string. Expressions are
// parsed into a small tagged-variant AST and validated against an identifier
// whitelist before any evaluation happens; anything outside the grammar
// (calls, attribute access, subscripts, strings, assignment) is statically
// rejected and must resolve to a false signal, never to arbitrary execution.
package rule

import (
	"sort"

	"github.com/rxtech-lab/plantrade/pkg/errors"
)

// DefaultWhitelist holds the context variable names a legacy rule may
// reference. These are exactly the keys of the per-bar evaluation context
// built by the backtest engine.
var DefaultWhitelist = []string{
	"price", "entry", "open", "high", "low", "close", "volume",
	"rsi", "macd", "macd_signal", "macd_hist", "macd_hist_prev", "macd_hist_rising",
	"atr", "bb_top", "bb_mid", "bb_bot", "ema", "sma", "vwap",
}

// Rule is a compiled, whitelist-checked legacy entry expression.
type Rule struct {
	expr string
	root *node
}

// Compile parses and validates expr against the default whitelist.
func Compile(expr string) (*Rule, error) {
	return CompileWithWhitelist(expr, DefaultWhitelist)
}

// CompileWithWhitelist parses expr and rejects any identifier outside
// allowed. A rejected expression is a typed error; callers treat it as a
// permanently false signal.
func CompileWithWhitelist(expr string, allowed []string) (*Rule, error) {
	if expr == "" {
		return nil, errors.New(errors.ErrCodeRuleSyntax, "empty rule expression")
	}

	tokens, err := tokenize(expr)
	if err != nil {
		return nil, err
	}

	root, err := parse(tokens)
	if err != nil {
		return nil, err
	}

	allowedSet := make(map[string]struct{}, len(allowed))
	for _, name := range allowed {
		allowedSet[name] = struct{}{}
	}

	used := make(map[string]struct{})
	collectNames(root, used)

	var disallowed []string

	for name := range used {
		if _, ok := allowedSet[name]; !ok {
			disallowed = append(disallowed, name)
		}
	}

	if len(disallowed) > 0 {
		sort.Strings(disallowed)

		return nil, errors.Newf(errors.ErrCodeRuleDisallowed,
			"rule references disallowed identifiers %v", disallowed)
	}

	return &Rule{expr: expr, root: root}, nil
}

// String returns the original expression text.
func (r *Rule) String() string {
	return r.expr
}

// Eval evaluates the rule against a per-bar context. A missing context
// variable makes the whole rule false; evaluation never fails or panics,
// because upstream must not crash a simulation over one malformed rule.
func (r *Rule) Eval(ctx map[string]float64) bool {
	value, ok := evalNode(r.root, ctx)
	if !ok {
		return false
	}

	return value != 0
}

// evalNode returns the numeric value of a node (booleans are 1/0) and whether
// every referenced variable was present.
func evalNode(n *node, ctx map[string]float64) (float64, bool) {
	switch n.kind {
	case nodeLiteral:
		return n.value, true
	case nodeName:
		v, ok := ctx[n.name]

		return v, ok
	case nodeNot:
		v, ok := evalNode(n.child, ctx)
		if !ok {
			return 0, false
		}

		if v == 0 {
			return 1, true
		}

		return 0, true
	case nodeCompare:
		left, lok := evalNode(n.left, ctx)
		right, rok := evalNode(n.right, ctx)

		if !lok || !rok {
			return 0, false
		}

		return boolToFloat(compare(n.op, left, right)), true
	case nodeBoolOp:
		left, lok := evalNode(n.left, ctx)
		right, rok := evalNode(n.right, ctx)

		if !lok || !rok {
			return 0, false
		}

		if n.op == "and" {
			return boolToFloat(left != 0 && right != 0), true
		}

		return boolToFloat(left != 0 || right != 0), true
	default:
		return 0, false
	}
}

func compare(op string, left, right float64) bool {
	switch op {
	case "<":
		return left < right
	case "<=":
		return left <= right
	case ">":
		return left > right
	case ">=":
		return left >= right
	case "==":
		return left == right
	case "!=":
		return left != right
	default:
		return false
	}
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}

	return 0
}
