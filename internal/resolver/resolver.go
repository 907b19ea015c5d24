// Package resolver implements the variable substitution rules of
// spec §4.1: {{dotted.path}} references are resolved against a
// variables map, with absent paths left verbatim.
package resolver

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// tokenPattern matches {{ ... }}, grounded on the teacher's
// simpleVarPattern in internal/application/executor/template.go.
var tokenPattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// Resolve scans s for {{dotted.path}} tokens and substitutes each with
// its value from vars, stringified. A path that does not resolve to a
// value leaves its original token unchanged.
func Resolve(s string, vars map[string]any) string {
	return tokenPattern.ReplaceAllStringFunc(s, func(token string) string {
		path := strings.TrimSpace(token[2 : len(token)-2])
		value, ok := lookup(path, vars)
		if !ok {
			return token
		}
		return stringify(value)
	})
}

// GetPath descends vars following the dot-separated segments of path,
// the same traversal Resolve uses for {{...}} tokens, exposed for
// callers (e.g. the condition node) that address variables by path
// directly rather than through a template string.
func GetPath(path string, vars map[string]any) (any, bool) {
	return lookup(path, vars)
}

// lookup descends vars following the dot-separated segments of path.
func lookup(path string, vars map[string]any) (any, bool) {
	segments := strings.Split(path, ".")
	var current any = vars
	for _, seg := range segments {
		if seg == "" {
			return nil, false
		}
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// stringify renders a resolved value as the template's replacement
// text: scalars print directly, nested structures render as canonical
// JSON (spec §4.1: "nested structures produce their canonical textual
// form").
func stringify(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ResolveValue applies Resolve recursively: strings are substituted,
// maps are resolved key-by-key, string-valued list elements are
// resolved, every other kind passes through unchanged (spec §4.1).
func ResolveValue(value any, vars map[string]any) any {
	switch v := value.(type) {
	case string:
		return Resolve(v, vars)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = ResolveValue(val, vars)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			if s, ok := item.(string); ok {
				out[i] = Resolve(s, vars)
			} else {
				out[i] = item
			}
		}
		return out
	default:
		return value
	}
}

// ResolveConfig resolves every value of a node's config map.
func ResolveConfig(config map[string]any, vars map[string]any) map[string]any {
	resolved := ResolveValue(config, vars)
	m, _ := resolved.(map[string]any)
	if m == nil {
		return map[string]any{}
	}
	return m
}
