package report

import (
	"encoding/json"
	"slices"
	"strings"
)

// Bundle is an ordered list of diagnostics. Order of insertion is the order
// of reporting; merging concatenates. The zero value is an empty bundle.
//
// Bundles are passed by value. Add and Merge never write into storage a
// copy may share, so copies evolve independently.
type Bundle struct {
	errors []Error
}

// New returns a bundle holding the given entries.
func New(entries ...Error) Bundle {
	var b Bundle
	for _, e := range entries {
		b.Add(e)
	}
	return b
}

// Add appends an entry.
func (b *Bundle) Add(e Error) {
	b.errors = append(slices.Clip(b.errors), e)
}

// Merge appends every entry of other, preserving its order.
func (b *Bundle) Merge(other Bundle) {
	b.errors = append(slices.Clip(b.errors), other.errors...)
}

// Len returns the number of entries.
func (b Bundle) Len() int { return len(b.errors) }

// IsEmpty reports whether the bundle has no entries.
func (b Bundle) IsEmpty() bool { return len(b.errors) == 0 }

// HasErrors reports whether any entry is error-class.
func (b Bundle) HasErrors() bool {
	for _, e := range b.errors {
		if e.IsError() {
			return true
		}
	}
	return false
}

// IsOnlyWarnings reports a soft pass: the bundle is empty or holds only
// warnings.
func (b Bundle) IsOnlyWarnings() bool { return !b.HasErrors() }

// Entries returns a copy of all entries in order.
func (b Bundle) Entries() []Error {
	out := make([]Error, len(b.errors))
	copy(out, b.errors)
	return out
}

// Errors returns the error-class entries in order.
func (b Bundle) Errors() []Error {
	return b.filter(func(e Error) bool { return e.IsError() })
}

// Warnings returns the warning-class entries in order.
func (b Bundle) Warnings() []Error {
	return b.filter(func(e Error) bool { return !e.IsError() })
}

// ByCode returns the entries with the given code in order.
func (b Bundle) ByCode(code Code) []Error {
	return b.filter(func(e Error) bool { return e.Class.Code == code })
}

func (b Bundle) filter(keep func(Error) bool) []Error {
	var out []Error
	for _, e := range b.errors {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func (b Bundle) String() string {
	lines := make([]string, len(b.errors))
	for i, e := range b.errors {
		lines[i] = e.String()
	}
	return strings.Join(lines, "\n")
}

// MarshalJSON encodes the bundle as {"errors": [...]}.
func (b Bundle) MarshalJSON() ([]byte, error) {
	entries := b.errors
	if entries == nil {
		entries = []Error{}
	}
	return json.Marshal(struct {
		Errors []Error `json:"errors"`
	}{entries})
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (b *Bundle) UnmarshalJSON(data []byte) error {
	var raw struct {
		Errors []Error `json:"errors"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b.errors = raw.Errors
	return nil
}
