package layout

import (
	"maps"
	"time"
)

// Params carries algorithm options. Values typically come from JSON or TOML,
// so numeric getters accept any numeric type.
type Params map[string]any

// Float returns the numeric value for key, or def.
func (p Params) Float(key string, def float64) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}

// Int returns the numeric value for key truncated to int, or def.
func (p Params) Int(key string, def int) int {
	if _, ok := p[key]; !ok {
		return def
	}
	return int(p.Float(key, float64(def)))
}

// String returns the string value for key, or def.
func (p Params) String(key, def string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return def
}

// Bool returns the boolean value for key, or def.
func (p Params) Bool(key string, def bool) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}
	return def
}

// Duration returns key as a duration. Strings are parsed with
// time.ParseDuration and numbers are read as milliseconds.
func (p Params) Duration(key string, def time.Duration) time.Duration {
	if s, ok := p[key].(string); ok {
		if d, err := time.ParseDuration(s); err == nil {
			return d
		}
		return def
	}
	if _, ok := p[key]; ok {
		return time.Duration(p.Float(key, 0)) * time.Millisecond
	}
	return def
}

// Merge returns a copy of p overlaid with o.
func (p Params) Merge(o Params) Params {
	out := make(Params, len(p)+len(o))
	maps.Copy(out, p)
	maps.Copy(out, o)
	return out
}

// Without returns a copy of p lacking keys.
func (p Params) Without(keys ...string) Params {
	out := maps.Clone(p)
	if out == nil {
		out = Params{}
	}
	for _, k := range keys {
		delete(out, k)
	}
	return out
}
