package models

// Fields is the kind-specific payload of a record.
// Numbers are stored as float64 so values survive a JSON round trip unchanged.
type Fields map[string]any

// Field names shared by the built-in kinds.
const (
	FieldEpisodeID    = "episode_id"
	FieldPosition     = "position"
	FieldDuration     = "duration"
	FieldCompleted    = "completed"
	FieldText         = "text"
	FieldTimestampSec = "timestamp_sec"
	FieldReactions    = "reactions"
	FieldDisplayName  = "display_name"
	FieldAvatarURL    = "avatar_url"
	FieldOnboarded    = "onboarded"
	FieldInterests    = "interests"
)

// Set stores value under name, normalizing numeric types to float64.
func (f Fields) Set(name string, value any) {
	f[name] = normalize(value)
}

// Bool returns the boolean value of name or false.
func (f Fields) Bool(name string) bool {
	v, ok := f[name].(bool)
	return ok && v
}

// Float returns the numeric value of name or 0.
func (f Fields) Float(name string) float64 {
	switch v := f[name].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	default:
		return 0
	}
}

// String returns the string value of name or "".
func (f Fields) String(name string) string {
	v, _ := f[name].(string)
	return v
}

// Strings returns a list of strings stored under name.
func (f Fields) Strings(name string) []string {
	switch v := f[name].(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
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

// Has reports whether name is present.
func (f Fields) Has(name string) bool {
	_, ok := f[name]
	return ok
}

// Clone returns a deep copy of the fields.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = cloneValue(t[i])
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[k] = cloneValue(item)
		}
		return out
	case Fields:
		return t.Clone()
	default:
		return v
	}
}

func normalize(v any) any {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case float32:
		return float64(t)
	case uint:
		return float64(t)
	case uint32:
		return float64(t)
	case uint64:
		return float64(t)
	default:
		return v
	}
}
