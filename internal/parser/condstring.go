package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/corintai/corint/internal/ast"
	"github.com/corintai/corint/internal/value"
	"github.com/corintai/corint/pkg/corinterr"
)

// conditionOperators lists the free-form condition-string operator tokens
// in the priority order the grammar requires: multi-character comparisons
// before single-character ones (so ">=" is never mis-split as ">" then
// "="), and word operators padded with spaces so they cannot match inside
// a longer field name.
var conditionOperators = []struct {
	token string
	op    ast.Operator
}{
	{"!=", ast.OpNe},
	{">=", ast.OpGe},
	{"<=", ast.OpLe},
	{"==", ast.OpEq},
	{">", ast.OpGt},
	{"<", ast.OpLt},
	{" not_in_list ", ast.OpNotInList},
	{" in_list ", ast.OpInList},
	{" not in ", ast.OpNotIn},
	{" in ", ast.OpIn},
	{" contains ", ast.OpContains},
	{" starts_with ", ast.OpStartsWith},
	{" ends_with ", ast.OpEndsWith},
	{" matches ", ast.OpRegex},
}

var numberPattern = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// ParseConditionString parses a single free-form condition of the form
// `<field-path> <op> <value>` into an Expression, per the grammar in
// spec §4.1. A string with no recognized operator is parsed as a bare
// operand (typically a field path used as a boolean guard).
func ParseConditionString(s string) (ast.Expression, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, corinterr.NewInvalidValue("empty condition string", nil)
	}
	for _, candidate := range conditionOperators {
		idx := strings.Index(s, candidate.token)
		if idx < 0 {
			continue
		}
		left := strings.TrimSpace(s[:idx])
		right := strings.TrimSpace(s[idx+len(candidate.token):])
		if left == "" || right == "" {
			continue
		}
		leftExpr, err := parseOperand(left)
		if err != nil {
			return nil, err
		}
		// in_list/not_in_list name a configured list by bare id (quoted
		// or not) rather than a field path, so the right side resolves
		// through the list backend, not the event namespace.
		if candidate.op == ast.OpInList || candidate.op == ast.OpNotInList {
			return ast.Binary{Left: leftExpr, Op: candidate.op, Right: ast.ListReference{ListID: unquote(right)}}, nil
		}
		rightExpr, err := parseOperand(right)
		if err != nil {
			return nil, err
		}
		return ast.Binary{Left: leftExpr, Op: candidate.op, Right: rightExpr}, nil
	}
	return parseOperand(s)
}

// parseOperand parses a single value or field-path token: quoted strings,
// JSON-like numbers, true/false, null/nil, bracketed array literals, and
// brace templates `{path}` (a FieldAccess resolved against the caller's
// context rather than the literal event namespace).
func parseOperand(s string) (ast.Expression, error) {
	s = strings.TrimSpace(s)
	switch {
	case len(s) >= 2 && (s[0] == '"' && s[len(s)-1] == '"' || s[0] == '\'' && s[len(s)-1] == '\''):
		return ast.Literal{Value: value.String(s[1 : len(s)-1])}, nil
	case s == "true":
		return ast.Literal{Value: value.Bool(true)}, nil
	case s == "false":
		return ast.Literal{Value: value.Bool(false)}, nil
	case s == "null" || s == "nil":
		return ast.Literal{Value: value.Null{}}, nil
	case len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']':
		elems, err := splitArrayLiteral(s[1 : len(s)-1])
		if err != nil {
			return nil, err
		}
		arr := make(value.Array, 0, len(elems))
		for _, elem := range elems {
			e, err := parseOperand(elem)
			if err != nil {
				return nil, err
			}
			lit, ok := e.(ast.Literal)
			if !ok {
				return nil, corinterr.NewInvalidValue("array literal elements must be constants", map[string]interface{}{"element": elem})
			}
			arr = append(arr, lit.Value)
		}
		return ast.Literal{Value: arr}, nil
	case len(s) >= 2 && s[0] == '{' && s[len(s)-1] == '}':
		return fieldPathExpr(strings.Split(s[1:len(s)-1], ".")), nil
	case numberPattern.MatchString(s):
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, corinterr.NewInvalidValue("malformed number literal", map[string]interface{}{"value": s})
		}
		return ast.Literal{Value: value.Number(n)}, nil
	default:
		return fieldPathExpr(strings.Split(s, ".")), nil
	}
}

// unquote strips a single layer of matching quotes from a list-id token,
// leaving bare identifiers (the common case) untouched.
func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' && s[len(s)-1] == '"' || s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}

// resultAccessFields are the bare, unqualified names that read back into
// the in-progress decision accumulator (§4.5) rather than the inbound
// event — R1 forbids an event from carrying any of these, so a bare
// reference can only mean the accumulator.
var resultAccessFields = map[string]bool{
	"total_score":     true,
	"score":           true,
	"triggered_count": true,
	"triggered_rules": true,
	"action":          true,
}

// fieldPathExpr lowers a dotted path into a FieldAccess, except a bare
// single-segment path naming a reserved accumulator field, which becomes
// a ResultAccess instead (the qualified "result.<field>" form already
// reaches the accumulator via loadField's "result" namespace).
func fieldPathExpr(path []string) ast.Expression {
	if len(path) == 1 && resultAccessFields[path[0]] {
		field := path[0]
		if field == "score" {
			field = "total_score"
		}
		return ast.ResultAccess{Field: field}
	}
	return ast.FieldAccess{Path: path}
}

// splitArrayLiteral splits a comma-separated array-literal body into its
// element substrings, respecting quote boundaries so commas inside quoted
// strings are not treated as separators.
func splitArrayLiteral(body string) ([]string, error) {
	var out []string
	var cur strings.Builder
	var quote byte
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case quote != 0:
			cur.WriteByte(c)
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
			cur.WriteByte(c)
		case c == ',':
			out = append(out, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	if quote != 0 {
		return nil, corinterr.NewParseError("", 0, nil).WithContext(map[string]interface{}{"reason": "unterminated quote in array literal"})
	}
	if strings.TrimSpace(cur.String()) != "" || len(out) > 0 {
		out = append(out, strings.TrimSpace(cur.String()))
	}
	return out, nil
}
