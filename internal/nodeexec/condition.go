package nodeexec

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/flowforge/dagflow/internal/domain"
	"github.com/flowforge/dagflow/internal/resolver"
)

// ConditionExecutor implements the condition node of spec §4.2.2.
type ConditionExecutor struct{}

func NewConditionExecutor(nodeID string, nodeType domain.NodeType) (Executor, error) {
	return ConditionExecutor{}, nil
}

func (ConditionExecutor) Validate(config map[string]any) error {
	raw, ok := config["conditions"]
	if !ok {
		return fmt.Errorf("condition node: conditions is required")
	}
	list, ok := raw.([]any)
	if !ok || len(list) == 0 {
		return fmt.Errorf("condition node: conditions must be a non-empty list")
	}
	for i, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			return fmt.Errorf("condition node: conditions[%d] must be a map", i)
		}
		if _, ok := m["operator"].(string); !ok {
			return fmt.Errorf("condition node: conditions[%d].operator is required", i)
		}
		if _, ok := m["branch"].(string); !ok {
			return fmt.Errorf("condition node: conditions[%d].branch is required", i)
		}
	}
	return nil
}

func (c ConditionExecutor) Execute(_ context.Context, resolved map[string]any, runCtx *domain.Context) (any, error) {
	vars := runCtx.Variables()
	list, _ := resolved["conditions"].([]any)

	for i, item := range list {
		m, _ := item.(map[string]any)
		field, _ := m["field"].(string)
		operator, _ := m["operator"].(string)
		branch, _ := m["branch"].(string)
		expected := m["value"]

		var actual any
		if field != "" {
			actual, _ = resolver.GetPath(field, vars)
		}

		matched, err := evaluateOperator(operator, actual, expected)
		if err != nil {
			runCtx.AppendLog(domain.LogLevelWarning, "", fmt.Sprintf("condition %d skipped: %s", i, err), nil)
			continue
		}
		if matched {
			return map[string]any{
				"branch":            branch,
				"matched_condition": i,
				"field":             field,
				"actual_value":      actual,
				"expected_value":    expected,
				"operator":          operator,
			}, nil
		}
	}

	if def, ok := resolved["default_branch"].(string); ok && def != "" {
		return map[string]any{"branch": def, "matched_condition": nil}, nil
	}

	return nil, fmt.Errorf("condition node: no condition matched and no default_branch set")
}

// evaluateOperator implements the exact operator semantics of §4.2.2.
func evaluateOperator(operator string, actual, expected any) (bool, error) {
	switch operator {
	case "eq":
		return looseEquals(actual, expected), nil
	case "ne":
		return !looseEquals(actual, expected), nil
	case "gt", "gte", "lt", "lte":
		a, aok := toFloat(actual)
		b, bok := toFloat(expected)
		if !aok || !bok {
			return false, fmt.Errorf("operator %q requires numeric operands", operator)
		}
		switch operator {
		case "gt":
			return a > b, nil
		case "gte":
			return a >= b, nil
		case "lt":
			return a < b, nil
		default:
			return a <= b, nil
		}
	case "contains":
		return containsValue(actual, expected)
	case "in":
		return containsValue(expected, actual)
	default:
		return false, fmt.Errorf("unknown operator %q", operator)
	}
}

func looseEquals(a, b any) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// containsValue reports whether needle is "in" haystack: substring test
// for strings, membership test for lists.
func containsValue(haystack, needle any) (bool, error) {
	switch h := haystack.(type) {
	case string:
		s, ok := needle.(string)
		if !ok {
			return false, fmt.Errorf("contains: right side must be a string when left is a string")
		}
		return strings.Contains(h, s), nil
	case []any:
		for _, item := range h {
			if looseEquals(item, needle) {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("contains/in: left side must be a string or list")
	}
}
