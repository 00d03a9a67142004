package normalize

import "encoding/json"

// Raw is a decoded provider payload of unknown shape. All lookups are
// nil-safe: a missing or null intermediate key fails the lookup instead of
// panicking, which is what lets extractors try several nesting conventions
// in order without guarding each step.
type Raw map[string]interface{}

// ParseRaw decodes a JSON object into a Raw map. Non-object payloads
// (arrays, scalars, null) yield a nil Raw without error so callers can fall
// through to their defaults.
func ParseRaw(data []byte) Raw {
	var r Raw
	if err := json.Unmarshal(data, &r); err != nil {
		return nil
	}
	return r
}

// asRaw converts an arbitrary decoded value to a Raw map when possible.
func asRaw(v interface{}) (Raw, bool) {
	switch m := v.(type) {
	case Raw:
		return m, true
	case map[string]interface{}:
		return Raw(m), true
	default:
		return nil, false
	}
}

// Value walks nested object keys. A null leaf counts as absent.
func (r Raw) Value(path ...string) (interface{}, bool) {
	if r == nil || len(path) == 0 {
		return nil, false
	}

	current := r
	for i, key := range path {
		v, ok := current[key]
		if !ok || v == nil {
			return nil, false
		}
		if i == len(path)-1 {
			return v, true
		}
		current, ok = asRaw(v)
		if !ok {
			return nil, false
		}
	}
	return nil, false
}

// Object returns the nested object at path.
func (r Raw) Object(path ...string) (Raw, bool) {
	v, ok := r.Value(path...)
	if !ok {
		return nil, false
	}
	return asRaw(v)
}

// Number returns the numeric value at path. JSON numbers decode as float64;
// 0 is a present value, distinct from an absent or null field.
func (r Raw) Number(path ...string) (float64, bool) {
	v, ok := r.Value(path...)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// Str returns the non-empty string value at path.
func (r Raw) Str(path ...string) (string, bool) {
	v, ok := r.Value(path...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// List returns the array value at path.
func (r Raw) List(path ...string) ([]interface{}, bool) {
	v, ok := r.Value(path...)
	if !ok {
		return nil, false
	}
	arr, ok := v.([]interface{})
	return arr, ok
}

// First returns the first element of the array at path, as an object.
func (r Raw) First(path ...string) (Raw, bool) {
	arr, ok := r.List(path...)
	if !ok || len(arr) == 0 {
		return nil, false
	}
	return asRaw(arr[0])
}

// elem returns the i-th element of a decoded array as an object.
func elem(arr []interface{}, i int) (Raw, bool) {
	if i < 0 || i >= len(arr) {
		return nil, false
	}
	return asRaw(arr[i])
}
