package buddy

// StripAbsent removes nil values from a body recursively, through maps and
// arrays, immediately before serialization. Absent keys are never sent over
// the wire; Go's nil is the only absent marker a map body can carry (extra
// fields supplied by the caller may contain explicit nulls at any depth).
func StripAbsent(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if val == nil {
				continue
			}
			out[k] = StripAbsent(val)
		}
		return out
	case []any:
		out := make([]any, 0, len(t))
		for _, val := range t {
			if val == nil {
				continue
			}
			out = append(out, StripAbsent(val))
		}
		return out
	default:
		return v
	}
}

// StripBody is StripAbsent specialized to a top-level body map.
func StripBody(body map[string]any) map[string]any {
	if body == nil {
		return nil
	}
	return StripAbsent(body).(map[string]any)
}
