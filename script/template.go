package script

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{\{\s*([^{}]+?)\s*\}\}`)

// Interpolate recursively rewrites a JSON-like value, replacing every
// `{{dotted.path}}` placeholder inside string leaves with the value found by
// walking params through the dotted path. A missing path or nil value
// substitutes as an empty string; anything else substitutes as its string
// form. Arrays are rewritten element-wise and objects key-wise with keys
// preserved. The transform is pure: the input value is never mutated.
func Interpolate(value interface{}, params map[string]interface{}) interface{} {
	switch v := value.(type) {
	case string:
		return placeholderPattern.ReplaceAllStringFunc(v, func(match string) string {
			path := strings.TrimSpace(match[2 : len(match)-2])
			resolved, ok := lookupPath(params, path)
			if !ok || resolved == nil {
				return ""
			}
			return fmt.Sprintf("%v", resolved)
		})
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, item := range v {
			out[key] = Interpolate(item, params)
		}
		return out
	case Document:
		return Interpolate(map[string]interface{}(v), params)
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = Interpolate(item, params)
		}
		return out
	default:
		return value
	}
}

// lookupPath walks params through a dot-separated key path.
func lookupPath(params map[string]interface{}, path string) (interface{}, bool) {
	var current interface{} = params
	for _, part := range strings.Split(path, ".") {
		node, ok := current.(map[string]interface{})
		if !ok {
			if doc, isDoc := current.(Document); isDoc {
				node = map[string]interface{}(doc)
			} else {
				return nil, false
			}
		}
		current, ok = node[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Merge layers overlay's top-level keys over a deep clone of base. The merge
// is intentionally shallow: an overlay key replaces the base value wholesale,
// so overriding one nested object drops the base object's other keys. Callers
// rely on that replace-not-union behavior when layering defaults, template
// bodies and request overrides.
func Merge(base, overlay map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base)+len(overlay))
	for key, value := range base {
		out[key] = cloneValue(value)
	}
	for key, value := range overlay {
		out[key] = cloneValue(value)
	}
	return out
}

// cloneValue deep-copies maps and slices; scalars are returned as-is.
func cloneValue(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, item := range v {
			out[key] = cloneValue(item)
		}
		return out
	case Document:
		return cloneValue(map[string]interface{}(v))
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return value
	}
}
