package rowz

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/zoobzio/rowz/value"
)

// IndexError is returned by Row.Delete when no entry carries the idx.
type IndexError struct {
	Idx uint
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("illegal index access: no entry at idx %d", e.Idx)
}

// Row is the default Container: an ordered slice of entries. Lookup by idx
// returns the first entry carrying it.
//
// A Row is not safe for concurrent use.
type Row struct {
	entries []Entry
}

// NewRow creates a row holding the given entries in order.
func NewRow(entries ...Entry) *Row {
	return &Row{entries: slices.Clone(entries)}
}

// Get returns the first entry with the idx.
func (r *Row) Get(idx uint) (*Entry, bool) {
	i := r.index(idx)
	if i < 0 {
		return nil, false
	}
	return &r.entries[i], true
}

// Delete removes and returns the first entry with the idx.
func (r *Row) Delete(idx uint) (Entry, error) {
	i := r.index(idx)
	if i < 0 {
		return Entry{}, &IndexError{Idx: idx}
	}
	e := r.entries[i]
	r.entries = slices.Delete(r.entries, i, i+1)
	return e, nil
}

// Add appends an entry without checking for idx collisions.
func (r *Row) Add(e Entry) {
	r.entries = append(r.entries, e)
}

// Len returns the number of entries.
func (r *Row) Len() int {
	return len(r.entries)
}

// Entries returns a copy of the entries in insertion order.
func (r *Row) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	for i, e := range r.entries {
		out[i] = e.Clone()
	}
	return out
}

// Sorted returns a copy of the entries ordered by idx. Entries sharing an
// idx keep their insertion order.
func (r *Row) Sorted() []Entry {
	out := r.Entries()
	slices.SortStableFunc(out, func(a, b Entry) int {
		switch {
		case a.idx < b.idx:
			return -1
		case a.idx > b.idx:
			return 1
		}
		return 0
	})
	return out
}

// Clone returns a deep copy of the row.
func (r *Row) Clone() *Row {
	return &Row{entries: r.Entries()}
}

func (r *Row) index(idx uint) int {
	for i := range r.entries {
		if r.entries[i].idx == idx {
			return i
		}
	}
	return -1
}

func (r *Row) String() string {
	parts := make([]string, len(r.entries))
	for i, e := range r.entries {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

type jsonEntry struct {
	Data *value.Value `json:"data"`
	Name string       `json:"name"`
	Type value.Kind   `json:"type"`
	Idx  uint         `json:"idx"`
}

type jsonEntryIn struct {
	Name string          `json:"name"`
	Type value.Kind      `json:"type"`
	Data json.RawMessage `json:"data"`
	Idx  uint            `json:"idx"`
}

// MarshalJSON renders the row as an array of {idx, name, type, data}
// objects in insertion order. Absent payloads render as null.
func (r *Row) MarshalJSON() ([]byte, error) {
	out := make([]jsonEntry, len(r.entries))
	for i, e := range r.entries {
		out[i] = jsonEntry{Idx: e.idx, Name: e.name, Type: e.typeInfo.Kind(), Data: e.data}
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the form produced by MarshalJSON. Payloads are parsed
// into the declared type with value.DefaultParser; JSON strings, numbers and
// booleans are all accepted as text.
func (r *Row) UnmarshalJSON(data []byte) error {
	var in []jsonEntryIn
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	entries := make([]Entry, 0, len(in))
	for i, e := range in {
		if !e.Type.Valid() {
			return fmt.Errorf("entry %d: missing or invalid type", i)
		}
		payload, err := decodePayload(e.Data, e.Type)
		if err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
		entries = append(entries, NewEntry(e.Idx, e.Name, value.Zero(e.Type), payload))
	}
	r.entries = entries
	return nil
}

func decodePayload(raw json.RawMessage, kind value.Kind) (*value.Value, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, err
		}
	}
	return value.Parse(text, kind)
}
