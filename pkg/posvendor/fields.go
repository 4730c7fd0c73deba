package posvendor

// The vendor's receipt schema is effectively duck-typed: the same semantic
// value can appear under several field names depending on the vendor's API
// generation. Extraction therefore runs every lookup through an ordered
// candidate list (first non-empty value wins) instead of ad hoc key checks.

// Field returns the first non-nil, non-empty value found under the given
// candidate keys, in order.
func Field(m map[string]interface{}, keys ...string) (interface{}, bool) {
	if m == nil {
		return nil, false
	}
	for _, key := range keys {
		v, exists := m[key]
		if !exists || v == nil {
			continue
		}
		if s, isString := v.(string); isString && s == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

// StringField returns the first candidate value that is a non-empty string.
func StringField(m map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if v, exists := m[key]; exists {
			if s, isString := v.(string); isString && s != "" {
				return s
			}
		}
	}
	return ""
}

// BoolField returns true if any candidate key holds a true boolean.
func BoolField(m map[string]interface{}, keys ...string) bool {
	for _, key := range keys {
		if v, exists := m[key]; exists {
			if b, isBool := v.(bool); isBool && b {
				return true
			}
		}
	}
	return false
}

// ListField returns the first candidate value that is a non-empty list,
// filtered down to its object elements.
func ListField(m map[string]interface{}, keys ...string) []map[string]interface{} {
	for _, key := range keys {
		v, exists := m[key]
		if !exists {
			continue
		}
		raw, isList := v.([]interface{})
		if !isList || len(raw) == 0 {
			continue
		}
		items := make([]map[string]interface{}, 0, len(raw))
		for _, el := range raw {
			if obj, isMap := el.(map[string]interface{}); isMap {
				items = append(items, obj)
			}
		}
		if len(items) > 0 {
			return items
		}
	}
	return nil
}

// HasNonEmptyList reports whether any candidate key holds a non-empty list.
func HasNonEmptyList(m map[string]interface{}, keys ...string) bool {
	for _, key := range keys {
		if v, exists := m[key]; exists {
			if raw, isList := v.([]interface{}); isList && len(raw) > 0 {
				return true
			}
		}
	}
	return false
}
