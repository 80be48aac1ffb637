// Package row implements the dynamic row codec: translating between a
// schema's textual INSERT values and the fixed-width byte layout a B+
// tree leaf stores.
//
// What: row width and field offsets are a runtime function of the owning
// table's schema (see design note in spec §9) — there is no compile-time
// struct for "a row", only []byte plus a catalog.Schema to interpret it.
// How: each column is encoded in schema order at a precomputed byte
// offset: 4-byte little-endian int32, 8-byte little-endian int64 epoch
// seconds, or a zero-padded fixed-width byte string.
package row

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/baiyangmu/db-tutorial-new/internal/catalog"
)

// Serialize encodes values (one textual value per column, in schema
// order) into dest, which must be at least schema.RowSize() bytes.
// Missing trailing values are treated as empty strings. Unparseable
// numeric literals are not statement errors here — a malformed INT
// writes 0 and a malformed/empty TIMESTAMP writes now(), matching
// original_source's serialize_row (the executor is the layer that
// rejects bad primary-key literals before this is ever called for
// column 0, see internal/executor).
func Serialize(schema catalog.Schema, values []string, dest []byte) {
	now := time.Now().Unix()
	for i, col := range schema.Columns {
		var text string
		if i < len(values) {
			text = values[i]
		}
		off := schema.ColOffset(i)
		field := dest[off : off+col.Size]
		switch col.Type {
		case catalog.Int:
			n, err := strconv.ParseInt(text, 10, 32)
			if err != nil {
				n = 0
			}
			binary.LittleEndian.PutUint32(field, uint32(int32(n)))
		case catalog.Timestamp:
			n, err := strconv.ParseInt(text, 10, 64)
			if err != nil {
				n = now
			}
			binary.LittleEndian.PutUint64(field, uint64(n))
		case catalog.String:
			for j := range field {
				field[j] = 0
			}
			copy(field, text)
		}
	}
}

// GetInt reads column col (which must be an INT column) of row.
func GetInt(schema catalog.Schema, row []byte, col int) int32 {
	off := schema.ColOffset(col)
	size := schema.Columns[col].Size
	return int32(binary.LittleEndian.Uint32(row[off : off+size]))
}

// GetTimestamp reads column col (which must be a TIMESTAMP column) of row.
func GetTimestamp(schema catalog.Schema, row []byte, col int) int64 {
	off := schema.ColOffset(col)
	size := schema.Columns[col].Size
	return int64(binary.LittleEndian.Uint64(row[off : off+size]))
}

// GetString reads column col (which must be a STRING column) of row,
// trimming trailing NUL padding.
func GetString(schema catalog.Schema, row []byte, col int) string {
	off := schema.ColOffset(col)
	size := schema.Columns[col].Size
	field := row[off : off+size]
	n := 0
	for n < len(field) && field[n] != 0 {
		n++
	}
	return string(field[:n])
}

// GetValue reads column col of row as whatever Go type fits its column
// type (int32, int64, or string), for use by code that is generic over
// column type (the predicate evaluator, ORDER BY, JSON projection).
func GetValue(schema catalog.Schema, row []byte, col int) any {
	switch schema.Columns[col].Type {
	case catalog.Int:
		return GetInt(schema, row, col)
	case catalog.Timestamp:
		return GetTimestamp(schema, row, col)
	default:
		return GetString(schema, row, col)
	}
}

// Key extracts the B+ tree key (column 0, which must be INT) from row.
func Key(schema catalog.Schema, row []byte) uint32 {
	return uint32(GetInt(schema, row, 0))
}
