package rowz

import (
	"github.com/vmihailenco/msgpack/v5"
	"github.com/zoobzio/rowz/value"
)

type snapshotEntry struct {
	Data *value.Value `msgpack:"d"`
	Name string       `msgpack:"n"`
	Idx  uint         `msgpack:"i"`
	Kind uint8        `msgpack:"k"`
}

// Snapshot serializes the row with msgpack. Take one before applying a
// pipeline when a failed application must be rolled back.
//
//	snap, _ := row.Snapshot()
//	if err := pipeline.Apply(ctx, row); err != nil {
//	    row, _ = rowz.RestoreRow(snap)
//	}
func (r *Row) Snapshot() ([]byte, error) {
	entries := make([]snapshotEntry, len(r.entries))
	for i, e := range r.entries {
		entries[i] = snapshotEntry{Idx: e.idx, Name: e.name, Kind: uint8(e.typeInfo.Kind()), Data: e.data}
	}
	return msgpack.Marshal(entries)
}

// RestoreRow rebuilds a row from Snapshot output.
func RestoreRow(data []byte) (*Row, error) {
	var entries []snapshotEntry
	if err := msgpack.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	row := &Row{entries: make([]Entry, len(entries))}
	for i, e := range entries {
		row.entries[i] = NewEntry(e.Idx, e.Name, value.Zero(value.Kind(e.Kind)), e.Data)
	}
	return row, nil
}
