package models

// Conditional expression evaluation for condition nodes. Expressions are a
// closed field/operator/value form evaluated by a small interpreter; no
// user-supplied code is ever executed.

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ConditionOperator is the closed set of comparison operators.
type ConditionOperator string

const (
	OperatorEquals      ConditionOperator = "equals"
	OperatorNotEquals   ConditionOperator = "not_equals"
	OperatorGreaterThan ConditionOperator = "greater_than"
	OperatorLessThan    ConditionOperator = "less_than"
	OperatorContains    ConditionOperator = "contains"
	OperatorExists      ConditionOperator = "exists"
	OperatorRegex       ConditionOperator = "regex"
)

// ConditionExpression compares one context data field against a literal.
type ConditionExpression struct {
	Field    string            `json:"field"`
	Operator ConditionOperator `json:"operator"`
	Value    any               `json:"value,omitempty"`
}

// ParseConditionExpression builds an expression from a node config map.
func ParseConditionExpression(config map[string]any) (ConditionExpression, error) {
	field, _ := config["field"].(string)
	if field == "" {
		return ConditionExpression{}, fmt.Errorf("condition requires a 'field'")
	}

	operator, _ := config["operator"].(string)
	if operator == "" {
		return ConditionExpression{}, fmt.Errorf("condition requires an 'operator'")
	}

	expr := ConditionExpression{
		Field:    field,
		Operator: ConditionOperator(operator),
		Value:    config["value"],
	}

	switch expr.Operator {
	case OperatorEquals, OperatorNotEquals, OperatorGreaterThan, OperatorLessThan,
		OperatorContains, OperatorExists, OperatorRegex:
	default:
		return ConditionExpression{}, fmt.Errorf("unsupported condition operator: %s", operator)
	}

	return expr, nil
}

// Evaluate resolves the field against the data bag and applies the operator.
// Field supports dotted paths through nested map values ("gst.turnover").
func (e ConditionExpression) Evaluate(data map[string]any) (bool, error) {
	value, found := resolveField(data, e.Field)

	switch e.Operator {
	case OperatorExists:
		return found && value != nil, nil
	case OperatorEquals:
		return equal(value, e.Value), nil
	case OperatorNotEquals:
		return !equal(value, e.Value), nil
	case OperatorGreaterThan, OperatorLessThan:
		left, err := toNumber(value)
		if err != nil {
			return false, fmt.Errorf("field %q: %w", e.Field, err)
		}

		right, err := toNumber(e.Value)
		if err != nil {
			return false, fmt.Errorf("compare value: %w", err)
		}

		if e.Operator == OperatorGreaterThan {
			return left > right, nil
		}

		return left < right, nil
	case OperatorContains:
		return strings.Contains(fmt.Sprint(value), fmt.Sprint(e.Value)), nil
	case OperatorRegex:
		pattern, ok := e.Value.(string)
		if !ok {
			return false, fmt.Errorf("regex operator requires a string pattern")
		}

		re, err := regexp.Compile(pattern)
		if err != nil {
			return false, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}

		return re.MatchString(fmt.Sprint(value)), nil
	default:
		return false, fmt.Errorf("unsupported condition operator: %s", e.Operator)
	}
}

func resolveField(data map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")

	var current any = data

	for _, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

func equal(a, b any) bool {
	if a == b {
		return true
	}

	// Numeric values of different Go types still compare equal.
	an, aerr := toNumber(a)
	bn, berr := toNumber(b)
	if aerr == nil && berr == nil {
		return an == bn
	}

	return fmt.Sprint(a) == fmt.Sprint(b)
}

func toNumber(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert %q to number", n)
		}

		return parsed, nil
	default:
		return 0, fmt.Errorf("cannot convert %T to number", v)
	}
}
