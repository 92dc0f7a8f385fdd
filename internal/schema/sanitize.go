package schema

// Model providers tolerate different JSON-Schema dialects; Gemini in
// particular rejects anyOf/oneOf/allOf composition. Sanitize collapses each
// composite node to its first non-null variant and recurses through
// properties and items. Everything else is copied as-is, so a schema with no
// composition keywords comes back structurally deep-equal.

var compositionKeys = []string{"anyOf", "oneOf", "allOf"}

// Sanitize normalizes a JSON-Schema-like tree for provider consumption.
// The input is never mutated.
func Sanitize(node any) any {
	switch v := node.(type) {
	case map[string]any:
		if variant, ok := firstVariant(v); ok {
			return Sanitize(variant)
		}
		out := make(map[string]any, len(v))
		for k, val := range v {
			switch k {
			case "properties":
				out[k] = sanitizeProperties(val)
			case "items":
				out[k] = Sanitize(val)
			default:
				out[k] = val
			}
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = Sanitize(item)
		}
		return out
	default:
		return v
	}
}

// SanitizeParams sanitizes each parameter schema of a method's params map.
func SanitizeParams(params map[string]any) map[string]any {
	if params == nil {
		return nil
	}
	out := make(map[string]any, len(params))
	for name, p := range params {
		out[name] = Sanitize(p)
	}
	return out
}

func sanitizeProperties(val any) any {
	props, ok := val.(map[string]any)
	if !ok {
		return val
	}
	out := make(map[string]any, len(props))
	for name, p := range props {
		out[name] = Sanitize(p)
	}
	return out
}

// firstVariant returns the first non-null alternative of an anyOf/oneOf/allOf
// node, if the node is one.
func firstVariant(node map[string]any) (any, bool) {
	for _, key := range compositionKeys {
		alts, ok := node[key].([]any)
		if !ok || len(alts) == 0 {
			continue
		}
		for _, alt := range alts {
			if m, ok := alt.(map[string]any); ok {
				if t, _ := m["type"].(string); t == "null" {
					continue
				}
				return alt, true
			}
		}
		return alts[0], true
	}
	return nil, false
}
