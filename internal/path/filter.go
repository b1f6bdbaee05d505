package path

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shapestone/jetstream/pkg/stream"
	"github.com/shapestone/jetstream/pkg/value"
)

// FilterExpr is a compiled filter predicate of the form
// "@.a.b.c OP literal". Without an operator the chain alone is an
// existence test.
type FilterExpr struct {
	Chain   []string // property chain after '@'
	Op      string   // one of the comparison operators, "" for existence
	Literal value.Value
}

// comparison operators, longest first so scanning is unambiguous.
var operators = []string{"===", "!==", "==", "!=", "<>", "<=", ">=", "<", ">", "="}

// parseFilterExpr compiles the body of a "?(...)" selector.
// pathText is the full path, used only for error reporting.
func parseFilterExpr(pathText, body string) (*FilterExpr, error) {
	body = strings.TrimSpace(body)

	if strings.Contains(body, "&&") || strings.Contains(body, "||") {
		return nil, stream.NewPathError(pathText,
			"compound boolean operators are not supported in filters")
	}

	if body == "" || body[0] != '@' {
		return nil, stream.NewPathError(pathText, "filter must start with '@'")
	}

	pos := 1
	var chain []string
	for pos < len(body) && body[pos] == '.' {
		name, next := scanIdentifier(body, pos+1)
		if name == "" {
			return nil, stream.NewPathError(pathText,
				fmt.Sprintf("expected property name in filter at position %d", pos+1))
		}
		chain = append(chain, name)
		pos = next
	}
	if len(chain) == 0 {
		return nil, stream.NewPathError(pathText, "filter needs a property chain after '@'")
	}

	rest := strings.TrimSpace(body[pos:])
	if rest == "" {
		return &FilterExpr{Chain: chain}, nil
	}

	var op string
	for _, candidate := range operators {
		if strings.HasPrefix(rest, candidate) {
			op = candidate
			break
		}
	}
	if op == "" {
		return nil, stream.NewPathError(pathText,
			fmt.Sprintf("invalid filter operator in %q", rest))
	}

	lit, err := parseFilterLiteral(pathText, strings.TrimSpace(rest[len(op):]))
	if err != nil {
		return nil, err
	}

	return &FilterExpr{Chain: chain, Op: op, Literal: lit}, nil
}

// parseFilterLiteral accepts a quoted string, a number, true, false or null.
func parseFilterLiteral(pathText, text string) (value.Value, error) {
	if text == "" {
		return value.Null(), stream.NewPathError(pathText, "missing filter literal")
	}

	if text[0] == '"' || text[0] == '\'' {
		quote := text[0]
		if len(text) < 2 || text[len(text)-1] != quote {
			return value.Null(), stream.NewPathError(pathText, "unterminated filter literal")
		}
		return value.String(text[1 : len(text)-1]), nil
	}

	switch text {
	case "true":
		return value.Bool(true), nil
	case "false":
		return value.Bool(false), nil
	case "null":
		return value.Null(), nil
	}

	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return value.Int(i), nil
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return value.Float(f), nil
	}

	return value.Null(), stream.NewPathError(pathText,
		fmt.Sprintf("invalid filter literal %q", text))
}

// Matches evaluates the predicate against a candidate value.
// A non-object at any point of the chain yields no match.
func (f *FilterExpr) Matches(candidate value.Value) bool {
	current := candidate
	for _, name := range f.Chain {
		next, ok := current.Get(name)
		if !ok {
			return false
		}
		current = next
	}

	if f.Op == "" {
		return true
	}
	return compare(current, f.Literal, f.Op)
}

// compare applies a filter operator. Equality is numeric-aware; the
// strict forms additionally require the same value kind. Ordering is
// defined for number pairs and string pairs only.
func compare(a, b value.Value, op string) bool {
	switch op {
	case "=", "==":
		return a.Equal(b)
	case "===":
		return a.Kind() == b.Kind() && a.Equal(b)
	case "!=", "<>":
		return !a.Equal(b)
	case "!==":
		return a.Kind() != b.Kind() || !a.Equal(b)
	}

	if a.IsNumber() && b.IsNumber() {
		x, _ := a.AsFloat()
		y, _ := b.AsFloat()
		switch op {
		case "<":
			return x < y
		case "<=":
			return x <= y
		case ">":
			return x > y
		case ">=":
			return x >= y
		}
	}
	if a.Kind() == value.KindString && b.Kind() == value.KindString {
		x, y := a.StringVal(), b.StringVal()
		switch op {
		case "<":
			return x < y
		case "<=":
			return x <= y
		case ">":
			return x > y
		case ">=":
			return x >= y
		}
	}
	return false
}

// String renders the predicate in filter syntax.
func (f *FilterExpr) String() string {
	var sb strings.Builder
	sb.WriteByte('@')
	for _, name := range f.Chain {
		sb.WriteByte('.')
		sb.WriteString(name)
	}
	if f.Op != "" {
		sb.WriteByte(' ')
		sb.WriteString(f.Op)
		sb.WriteByte(' ')
		sb.WriteString(f.Literal.String())
	}
	return sb.String()
}
