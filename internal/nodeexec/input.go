package nodeexec

import (
	"context"
	"fmt"
	"strings"

	"github.com/flowforge/dagflow/internal/domain"
)

// InputExecutor implements the input node of spec §4.2.1.
type InputExecutor struct{}

func NewInputExecutor(nodeID string, nodeType domain.NodeType) (Executor, error) {
	return InputExecutor{}, nil
}

func (InputExecutor) Validate(config map[string]any) error {
	if raw, ok := config["schema"]; ok && raw != nil {
		if _, ok := raw.(map[string]any); !ok {
			return fmt.Errorf("input node: schema must be a map")
		}
	}
	if raw, ok := config["defaults"]; ok && raw != nil {
		if _, ok := raw.(map[string]any); !ok {
			return fmt.Errorf("input node: defaults must be a map")
		}
	}
	return nil
}

func (InputExecutor) Execute(_ context.Context, resolved map[string]any, runCtx *domain.Context) (any, error) {
	var value any = copyInput(runCtx.InputData)

	if field, ok := resolved["extract_field"].(string); ok && field != "" {
		if m, ok := value.(map[string]any); ok {
			if v, present := m[field]; present {
				value = v
			}
		}
	}

	if defaults, ok := resolved["defaults"].(map[string]any); ok {
		if m, ok := value.(map[string]any); ok {
			merged := make(map[string]any, len(defaults)+len(m))
			for k, v := range defaults {
				merged[k] = v
			}
			for k, v := range m {
				merged[k] = v
			}
			value = merged
		}
	}

	if doValidate, _ := resolved["validate"].(bool); doValidate {
		if schema, ok := resolved["schema"].(map[string]any); ok {
			if err := validateAgainstSchema(value, schema); err != nil {
				return nil, err
			}
		}
	}

	return value, nil
}

func copyInput(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// validateAgainstSchema checks each declared field's presence (if
// required) and JSON-type agreement, aggregating all failures into a
// single validation error (spec §4.2.1).
func validateAgainstSchema(value any, schema map[string]any) error {
	m, isMap := value.(map[string]any)
	var failures []string

	for field, rawRule := range schema {
		rule, _ := rawRule.(map[string]any)
		required, _ := rule["required"].(bool)
		wantType, _ := rule["type"].(string)

		var fieldValue any
		var present bool
		if isMap {
			fieldValue, present = m[field]
		}

		if !present {
			if required {
				failures = append(failures, fmt.Sprintf("field %q is required", field))
			}
			continue
		}
		if wantType != "" && !jsonTypeMatches(fieldValue, wantType) {
			failures = append(failures, fmt.Sprintf("field %q expected type %q", field, wantType))
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("input validation failed: %s", strings.Join(failures, "; "))
	}
	return nil
}

func jsonTypeMatches(v any, want string) bool {
	switch want {
	case "string":
		_, ok := v.(string)
		return ok
	case "number":
		switch v.(type) {
		case float64, float32, int, int64:
			return true
		}
		return false
	case "boolean":
		_, ok := v.(bool)
		return ok
	case "object":
		_, ok := v.(map[string]any)
		return ok
	case "array":
		_, ok := v.([]any)
		return ok
	case "null":
		return v == nil
	default:
		return true
	}
}
