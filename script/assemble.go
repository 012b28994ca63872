package script

// Assemble materializes a script into its final capability payload. The
// layering order is fixed: the DSL body is shallow-merged over the defaults,
// the result is interpolated with the caller's params, and finally a
// `payload` object inside params (when present) is shallow-merged on top so a
// caller can override any top-level field post-interpolation.
func Assemble(s *Script, params map[string]interface{}) map[string]interface{} {
	base := Merge(s.Defaults, s.DSL)

	interpolated, _ := Interpolate(base, params).(map[string]interface{})
	if interpolated == nil {
		interpolated = map[string]interface{}{}
	}

	if params != nil {
		if override, ok := params["payload"].(map[string]interface{}); ok {
			return Merge(interpolated, override)
		}
	}

	return interpolated
}
