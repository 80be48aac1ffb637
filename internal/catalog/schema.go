package catalog

import "strings"

// ColumnType is the set of column types the row codec understands. There
// are no nullable columns and no floats (see spec Non-goals).
type ColumnType int

const (
	Int ColumnType = iota
	String
	Timestamp
)

// typeTag is the ColumnType's encoding in the schema blob (§6.1).
func (t ColumnType) typeTag() byte {
	switch t {
	case String:
		return 1
	case Timestamp:
		return 2
	default:
		return 0
	}
}

func columnTypeFromTag(tag byte) ColumnType {
	switch tag {
	case 1:
		return String
	case 2:
		return Timestamp
	default:
		return Int
	}
}

// ParseColumnType maps a column-definition keyword to a ColumnType.
// Unknown names silently default to INT — this mirrors original_source's
// parse_column_type and is preserved deliberately (see DESIGN.md's Open
// Question resolution) rather than rejected, so that a typo in a demo
// script degrades to a usable (if surprising) column instead of aborting
// the whole CREATE TABLE.
func ParseColumnType(s string) ColumnType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "string":
		return String
	case "timestamp":
		return Timestamp
	default:
		return Int
	}
}

// DefaultSize returns the width CREATE TABLE assigns a column of type t
// when the definition omits an explicit size.
func DefaultSize(t ColumnType) uint32 {
	switch t {
	case String:
		return 255
	case Timestamp:
		return 8
	default:
		return 4
	}
}

// Column describes one field of a table's row layout.
type Column struct {
	Name string
	Type ColumnType
	Size uint32
}

// Schema is a table's column list. Column 0 must be an INT — it is the
// B+ tree's key (spec invariant 5).
type Schema struct {
	Name    string
	Columns []Column
}

// RowSize is the sum of every column's byte width: the fixed width of
// every row serialized under this schema.
func (s Schema) RowSize() uint32 {
	var total uint32
	for _, c := range s.Columns {
		total += c.Size
	}
	return total
}

// ColIndex returns the position of the column named name, or -1.
func (s Schema) ColIndex(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// ColOffset returns the byte offset of column i within a serialized row:
// the prefix sum of the widths of columns [0, i).
func (s Schema) ColOffset(i int) uint32 {
	var off uint32
	for j := 0; j < i; j++ {
		off += s.Columns[j].Size
	}
	return off
}
