package lint

// GetOption retrieves a typed option value from a rule's option map.
func GetOption[T any](opts map[string]any, key string) (T, bool) {
	var zero T
	if opts == nil {
		return zero, false
	}
	raw, ok := opts[key]
	if !ok {
		return zero, false
	}
	v, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// GetIntOption retrieves an int option, tolerating float64 from JSON
// decoding. Returns def when absent or mistyped.
func GetIntOption(opts map[string]any, key string, def int) int {
	if opts == nil {
		return def
	}
	switch v := opts[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

// GetStringOption retrieves a string option with a default.
func GetStringOption(opts map[string]any, key, def string) string {
	if v, ok := GetOption[string](opts, key); ok {
		return v
	}
	return def
}

// GetBoolOption retrieves a bool option with a default.
func GetBoolOption(opts map[string]any, key string, def bool) bool {
	if v, ok := GetOption[bool](opts, key); ok {
		return v
	}
	return def
}

// GetStringSliceOption retrieves a []string option, tolerating []any from
// YAML and JSON decoding. Returns nil when absent.
func GetStringSliceOption(opts map[string]any, key string) []string {
	if opts == nil {
		return nil
	}
	switch v := opts[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
