package nodeexec

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/flowforge/dagflow/internal/domain"
	"github.com/flowforge/dagflow/internal/resolver"
)

// OutputExecutor implements the output node of spec §4.2.4.
type OutputExecutor struct {
	nodeID string
}

func NewOutputExecutor(nodeID string, nodeType domain.NodeType) (Executor, error) {
	return &OutputExecutor{nodeID: nodeID}, nil
}

func (OutputExecutor) Validate(config map[string]any) error {
	format, _ := config["format"].(string)
	switch format {
	case "", "raw", "json", "text", "custom":
	default:
		return fmt.Errorf("output node: unknown format %q", format)
	}
	if format == "custom" {
		if t, _ := config["template"].(string); t == "" {
			return fmt.Errorf("output node: template is required for format custom")
		}
	}
	return nil
}

func (o *OutputExecutor) Execute(_ context.Context, resolved map[string]any, runCtx *domain.Context) (any, error) {
	value, err := o.selectSource(resolved, runCtx)
	if err != nil {
		return nil, err
	}

	value = applyFieldFilter(value, resolved)

	format, _ := resolved["format"].(string)
	if format == "" {
		format = "raw"
	}

	switch format {
	case "raw":
		return value, nil
	case "json":
		pretty, _ := resolved["pretty"].(bool)
		return renderJSON(value, pretty)
	case "text":
		return renderText(value), nil
	case "custom":
		tmpl, _ := resolved["template"].(string)
		vars := runCtx.Variables()
		vars["output"] = value
		return resolver.Resolve(tmpl, vars), nil
	default:
		return nil, fmt.Errorf("output node: unknown format %q", format)
	}
}

func (o *OutputExecutor) selectSource(resolved map[string]any, runCtx *domain.Context) (any, error) {
	if nodeID, ok := resolved["source_node"].(string); ok && nodeID != "" {
		output, ok := runCtx.NodeOutput(nodeID)
		if !ok {
			return nil, fmt.Errorf("output node: source_node %q has not produced output", nodeID)
		}
		return output, nil
	}
	if lastID, ok := runCtx.LastCompleted(o.nodeID); ok {
		output, _ := runCtx.NodeOutput(lastID)
		return output, nil
	}
	return nil, fmt.Errorf("output node: no prior node has completed")
}

func applyFieldFilter(value any, resolved map[string]any) any {
	m, ok := value.(map[string]any)
	if !ok {
		return value
	}
	if fields, ok := toStringList(resolved["fields"]); ok {
		out := make(map[string]any, len(fields))
		for _, f := range fields {
			if v, present := m[f]; present {
				out[f] = v
			}
		}
		return out
	}
	if excl, ok := toStringList(resolved["exclude_fields"]); ok {
		excludeSet := make(map[string]bool, len(excl))
		for _, f := range excl {
			excludeSet[f] = true
		}
		out := make(map[string]any, len(m))
		for k, v := range m {
			if !excludeSet[k] {
				out[k] = v
			}
		}
		return out
	}
	return value
}

func renderJSON(value any, pretty bool) (string, error) {
	var (
		b   []byte
		err error
	)
	if pretty {
		b, err = json.MarshalIndent(value, "", "  ")
	} else {
		b, err = json.Marshal(value)
	}
	if err != nil {
		return "", fmt.Errorf("output node: json rendering failed: %w", err)
	}
	return string(b), nil
}

func renderText(value any) string {
	switch v := value.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lines := make([]string, 0, len(keys))
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("%s: %v", k, v[k]))
		}
		return strings.Join(lines, "\n")
	default:
		return fmt.Sprintf("%v", v)
	}
}
