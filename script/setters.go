package script

// SetType returns an UpdateSetter that sets the script's capability type.
func SetType(scriptType string) UpdateSetter {
	return func(s *Script) error {
		if !ValidType(scriptType) {
			return ErrInvalidScriptType
		}
		s.Type = scriptType
		return nil
	}
}

// SetDSL returns an UpdateSetter that sets the script's DSL body.
func SetDSL(dsl Document) UpdateSetter {
	return func(s *Script) error {
		s.DSL = dsl
		return nil
	}
}

// SetDefaults returns an UpdateSetter that sets the script's defaults object.
func SetDefaults(defaults Document) UpdateSetter {
	return func(s *Script) error {
		s.Defaults = defaults
		return nil
	}
}

// SetEnabled returns an UpdateSetter that enables or disables the script.
func SetEnabled(enabled bool) UpdateSetter {
	return func(s *Script) error {
		s.Enabled = enabled
		return nil
	}
}
