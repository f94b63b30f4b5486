// Package fields holds named cty values exchanged between graph nodes: the
// static inputs of an action, the inputs a dispatched action actually saw and
// the outputs it produced.
package fields

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Fields maps a field name to its value.
type Fields map[string]cty.Value

// Clone returns a shallow copy. cty values are immutable, so this is enough
// to isolate the copy from later writes to the original map.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Merge copies every entry of other into f, overwriting existing keys, and
// returns the receiver. A nil receiver is allocated.
func (f Fields) Merge(other Fields) Fields {
	if f == nil {
		f = make(Fields, len(other))
	}
	for k, v := range other {
		f[k] = v
	}
	return f
}

// Keys returns the field names in sorted order.
func (f Fields) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Object returns the fields as a single cty object value.
func (f Fields) Object() cty.Value {
	if len(f) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(map[string]cty.Value(f))
}

// FromObject splits an object or map value into Fields. A null value yields
// empty Fields.
func FromObject(v cty.Value) (Fields, error) {
	if v.IsNull() {
		return Fields{}, nil
	}
	if !v.IsKnown() {
		return nil, fmt.Errorf("value is not known")
	}
	ty := v.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, fmt.Errorf("expected an object, got %s", ty.FriendlyName())
	}
	out := make(Fields, v.LengthInt())
	for it := v.ElementIterator(); it.Next(); {
		k, val := it.Element()
		out[k.AsString()] = val
	}
	return out, nil
}

// MarshalJSON encodes each value with its own implied JSON shape.
func (f Fields) MarshalJSON() ([]byte, error) {
	raw := make(map[string]ctyjson.SimpleJSONValue, len(f))
	for k, v := range f {
		raw[k] = ctyjson.SimpleJSONValue{Value: v}
	}
	return json.Marshal(raw)
}

// UnmarshalJSON decodes a JSON object, inferring a cty type for each member.
func (f *Fields) UnmarshalJSON(data []byte) error {
	var raw map[string]ctyjson.SimpleJSONValue
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("fields: %w", err)
	}
	if raw == nil {
		*f = nil
		return nil
	}
	out := make(Fields, len(raw))
	for k, v := range raw {
		out[k] = v.Value
	}
	*f = out
	return nil
}

// ToInterface converts the fields into plain Go values (maps, slices,
// strings, float64 and bools) suitable for generic encoders.
func (f Fields) ToInterface() (map[string]any, error) {
	data, err := f.MarshalJSON()
	if err != nil {
		return nil, err
	}
	out := make(map[string]any, len(f))
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("fields: %w", err)
	}
	return out, nil
}

// FromInterface is the inverse of ToInterface. The argument must encode as a
// JSON object or null.
func FromInterface(v any) (Fields, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("fields: %w", err)
	}
	var out Fields
	if err := out.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	if out == nil {
		out = Fields{}
	}
	return out, nil
}
