package domain

import (
	"maps"
	"time"
)

// Fields is the opaque attribute set of an entity as stored remotely.
type Fields map[string]any

// Clone returns a deep copy of f. Nested maps and slices are copied so the
// clone can be mutated without touching the original.
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

// Merge returns a copy of f with every key of patch applied on top.
func (f Fields) Merge(patch Fields) Fields {
	out := f.Clone()
	if out == nil {
		out = make(Fields, len(patch))
	}
	maps.Copy(out, patch.Clone())
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return map[string]any(Fields(t).Clone())
	case Fields:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}

// Entity is a remote record as observed by the client.
type Entity struct {
	Key       Key
	Fields    Fields
	Revision  int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a copy of e that shares no mutable state with it.
func (e Entity) Clone() Entity {
	e.Fields = e.Fields.Clone()
	return e
}
