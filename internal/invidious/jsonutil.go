package invidious

import "strconv"

// dig walks nested maps; nil when any step is missing.
func dig(doc any, path ...string) any {
	current := doc
	for _, step := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = m[step]
	}
	return current
}

func digString(doc any, path ...string) string {
	s, _ := dig(doc, path...).(string)
	return s
}

func digBool(doc any, path ...string) (bool, bool) {
	b, ok := dig(doc, path...).(bool)
	return b, ok
}

func digArray(doc any, path ...string) []any {
	a, _ := dig(doc, path...).([]any)
	return a
}

func digMap(doc any, path ...string) map[string]any {
	m, _ := dig(doc, path...).(map[string]any)
	return m
}

// digInt accepts numbers arriving either as JSON numbers or numeric strings,
// both of which Innertube emits.
func digInt(doc any, path ...string) (int64, bool) {
	switch v := dig(doc, path...).(type) {
	case float64:
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// text resolves the Innertube text shape: either {"simpleText": "..."} or
// {"runs": [{"text": "..."}, ...]}.
func text(doc any, path ...string) string {
	node := dig(doc, path...)
	if node == nil {
		return ""
	}
	if simple := digString(node, "simpleText"); simple != "" {
		return simple
	}
	var joined string
	for _, run := range digArray(node, "runs") {
		joined += digString(run, "text")
	}
	return joined
}

func stringSlice(values []any) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
