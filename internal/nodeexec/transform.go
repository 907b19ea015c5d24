package nodeexec

import (
	"context"
	"fmt"

	"github.com/flowforge/dagflow/internal/domain"
	"github.com/flowforge/dagflow/internal/resolver"
)

// TransformExecutor implements the transform node of spec §4.2.3: one
// of mapping, filter, extract, merge or custom, selected by
// transform_type.
type TransformExecutor struct {
	sandbox *customSandbox
}

func NewTransformExecutor(nodeID string, nodeType domain.NodeType) (Executor, error) {
	return &TransformExecutor{sandbox: newCustomSandbox()}, nil
}

func (t *TransformExecutor) Validate(config map[string]any) error {
	kind, _ := config["transform_type"].(string)
	switch kind {
	case "mapping":
		if _, ok := config["mappings"].(map[string]any); !ok {
			return fmt.Errorf("transform mapping: mappings must be a map")
		}
	case "filter":
		if _, ok := toStringList(config["fields"]); !ok {
			return fmt.Errorf("transform filter: fields must be a list of strings")
		}
	case "extract":
		if _, ok := toStringList(config["fields"]); !ok {
			return fmt.Errorf("transform extract: fields must be a list of strings")
		}
	case "merge":
		if _, ok := toStringList(config["sources"]); !ok {
			return fmt.Errorf("transform merge: sources must be a list of strings")
		}
	case "custom":
		expr, _ := config["expression"].(string)
		if expr == "" {
			return fmt.Errorf("transform custom: expression is required")
		}
		if err := t.sandbox.validate(expr); err != nil {
			return fmt.Errorf("transform custom: %w", err)
		}
	default:
		return fmt.Errorf("transform: unknown transform_type %q", kind)
	}
	return nil
}

func (t *TransformExecutor) Execute(_ context.Context, resolved map[string]any, runCtx *domain.Context) (any, error) {
	kind, _ := resolved["transform_type"].(string)
	switch kind {
	case "mapping":
		return t.execMapping(resolved, runCtx)
	case "filter":
		return t.execFilter(resolved, runCtx)
	case "extract":
		return t.execExtract(resolved, runCtx)
	case "merge":
		return t.execMerge(resolved, runCtx)
	case "custom":
		return t.execCustom(resolved, runCtx)
	default:
		return nil, fmt.Errorf("transform: unknown transform_type %q", kind)
	}
}

func (t *TransformExecutor) execMapping(resolved map[string]any, runCtx *domain.Context) (any, error) {
	mappings, _ := resolved["mappings"].(map[string]any)
	vars := runCtx.Variables()
	out := make(map[string]any, len(mappings))
	for field, tmpl := range mappings {
		s, _ := tmpl.(string)
		out[field] = resolver.Resolve(s, vars)
	}
	return out, nil
}

func (t *TransformExecutor) execFilter(resolved map[string]any, runCtx *domain.Context) (any, error) {
	fields, _ := toStringList(resolved["fields"])
	source, err := sourceValue(resolved, runCtx)
	if err != nil {
		return nil, err
	}
	m, ok := source.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("transform filter: source value is not a map")
	}
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		if v, present := m[f]; present {
			out[f] = v
		}
	}
	return out, nil
}

func (t *TransformExecutor) execExtract(resolved map[string]any, runCtx *domain.Context) (any, error) {
	fields, _ := toStringList(resolved["fields"])
	source, err := sourceValue(resolved, runCtx)
	if err != nil {
		return nil, err
	}
	m, ok := source.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("transform extract: source value is not a map")
	}
	if len(fields) == 1 {
		return m[fields[0]], nil
	}
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		out[f] = m[f]
	}
	return out, nil
}

func (t *TransformExecutor) execMerge(resolved map[string]any, runCtx *domain.Context) (any, error) {
	sources, _ := toStringList(resolved["sources"])
	out := make(map[string]any)
	for _, nodeID := range sources {
		output, ok := runCtx.NodeOutput(nodeID)
		if !ok {
			runCtx.AppendLog(domain.LogLevelWarning, "", fmt.Sprintf("merge: source %q has not produced output, skipping", nodeID), nil)
			continue
		}
		if m, ok := output.(map[string]any); ok {
			for k, v := range m {
				out[k] = v
			}
		} else {
			out[nodeID] = output
		}
	}
	return out, nil
}

func (t *TransformExecutor) execCustom(resolved map[string]any, runCtx *domain.Context) (any, error) {
	expr, _ := resolved["expression"].(string)
	source, err := sourceValue(resolved, runCtx)
	if err != nil {
		return nil, err
	}
	return t.sandbox.eval(expr, source)
}

// sourceValue resolves the working value a filter/extract/custom
// transform operates on: the named source_node's output if one is
// configured, otherwise the run's raw input data.
func sourceValue(resolved map[string]any, runCtx *domain.Context) (any, error) {
	if nodeID, ok := resolved["source_node"].(string); ok && nodeID != "" {
		output, ok := runCtx.NodeOutput(nodeID)
		if !ok {
			return nil, fmt.Errorf("transform: source_node %q has not produced output", nodeID)
		}
		return output, nil
	}
	return runCtx.InputData, nil
}

func toStringList(v any) ([]string, bool) {
	list, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
