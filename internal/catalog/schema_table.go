package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/baiyangmu/db-tutorial-new/internal/pager"
)

// MaxSchemas bounds how many schemas a schema table can hold.
const MaxSchemas = 128

// SchemaTable is the catalog entries' schema store. original_source keeps
// this as module-level global state (g_table_schemas) shared by every open
// database in the process; this port moves it onto the owning connection
// (see design note in spec §9) so multiple databases can be open in one
// process without clobbering each other.
type SchemaTable struct {
	schemas []Schema
}

// NewSchemaTable returns an empty schema table.
func NewSchemaTable() *SchemaTable { return &SchemaTable{} }

// Install appends schema and returns its slot index.
func (t *SchemaTable) Install(s Schema) (int, error) {
	if len(t.schemas) >= MaxSchemas {
		return -1, fmt.Errorf("catalog: too many schemas (max %d)", MaxSchemas)
	}
	t.schemas = append(t.schemas, s)
	return len(t.schemas) - 1, nil
}

// Get returns the schema at slot i.
func (t *SchemaTable) Get(i int) (Schema, bool) {
	if i < 0 || i >= len(t.schemas) {
		return Schema{}, false
	}
	return t.schemas[i], true
}

// Len reports how many schemas are installed.
func (t *SchemaTable) Len() int { return len(t.schemas) }

// ── Schema blob persistence (spec §4.4, §6.1) ───────────────────────────
//
// The blob is newline-separated text:
//
//	<num_tables>\n
//	<table_name>\n
//	<num_columns>\n
//	<col_name>\t<type_tag>\t<size>\n   (x num_columns)
//	...                                  (x num_tables)
//
// It is stored in a contiguous run of pages referenced by the catalog
// header's SchemasStartPage/SchemasAllocPages/SchemasByteLen fields.

// Serialize renders the schema table to its on-disk text form.
func (t *SchemaTable) Serialize() []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "%d\n", len(t.schemas))
	for _, s := range t.schemas {
		fmt.Fprintf(&b, "%s\n%d\n", s.Name, len(s.Columns))
		for _, c := range s.Columns {
			fmt.Fprintf(&b, "%s\t%d\t%d\n", c.Name, c.Type.typeTag(), c.Size)
		}
	}
	return []byte(b.String())
}

// ParseSchemaTable parses the on-disk text form produced by Serialize.
func ParseSchemaTable(data []byte) (*SchemaTable, error) {
	lines := strings.Split(string(data), "\n")
	pos := 0
	next := func() (string, error) {
		if pos >= len(lines) {
			return "", fmt.Errorf("catalog: truncated schema blob")
		}
		l := lines[pos]
		pos++
		return l, nil
	}

	numTablesLine, err := next()
	if err != nil {
		return nil, err
	}
	numTables, err := strconv.Atoi(numTablesLine)
	if err != nil {
		return nil, fmt.Errorf("catalog: bad schema table count %q: %w", numTablesLine, err)
	}

	t := &SchemaTable{}
	for i := 0; i < numTables; i++ {
		name, err := next()
		if err != nil {
			return nil, err
		}
		numColsLine, err := next()
		if err != nil {
			return nil, err
		}
		numCols, err := strconv.Atoi(numColsLine)
		if err != nil {
			return nil, fmt.Errorf("catalog: bad column count %q: %w", numColsLine, err)
		}
		schema := Schema{Name: name, Columns: make([]Column, 0, numCols)}
		for j := 0; j < numCols; j++ {
			line, err := next()
			if err != nil {
				return nil, err
			}
			fields := strings.Split(line, "\t")
			if len(fields) != 3 {
				return nil, fmt.Errorf("catalog: malformed column line %q", line)
			}
			tag, err := strconv.Atoi(fields[1])
			if err != nil {
				return nil, fmt.Errorf("catalog: bad type tag %q: %w", fields[1], err)
			}
			size, err := strconv.ParseUint(fields[2], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("catalog: bad column size %q: %w", fields[2], err)
			}
			schema.Columns = append(schema.Columns, Column{
				Name: fields[0],
				Type: columnTypeFromTag(byte(tag)),
				Size: uint32(size),
			})
		}
		t.schemas = append(t.schemas, schema)
	}
	return t, nil
}

// LoadSchemas reads the schema blob described by hdr from p and parses it.
// A header with no blob (SchemasStartPage == InvalidPageNum) yields an
// empty table.
func LoadSchemas(p *pager.Pager, hdr Header) (*SchemaTable, error) {
	if hdr.SchemasStartPage == pager.InvalidPageNum || hdr.SchemasByteLen == 0 {
		return NewSchemaTable(), nil
	}
	data := make([]byte, 0, hdr.SchemasByteLen)
	remaining := int(hdr.SchemasByteLen)
	for i := uint32(0); i < hdr.SchemasAllocPages && remaining > 0; i++ {
		page, err := p.GetPage(hdr.SchemasStartPage + i)
		if err != nil {
			return nil, err
		}
		take := remaining
		if take > pager.PageSize {
			take = pager.PageSize
		}
		data = append(data, page.Buf[:take]...)
		remaining -= take
	}
	return ParseSchemaTable(data)
}

// SaveSchemas serializes t and writes it into the page run described by
// cat's header, rewriting in place if the existing allocation is large
// enough or appending new pages otherwise. It updates cat.Header's schema
// pointer fields in memory but does NOT flush page 0 — per the durability
// ordering in spec §5, the caller must already have flushed page 0 with
// the *old* pointer before calling this, and must flush page 0 again
// afterwards so the new pointer is the last thing written.
func SaveSchemas(p *pager.Pager, cat *Catalog, t *SchemaTable) error {
	blob := t.Serialize()
	neededPages := uint32((len(blob) + pager.PageSize - 1) / pager.PageSize)
	if neededPages == 0 {
		neededPages = 1
	}

	startPage := cat.Header.SchemasStartPage
	if startPage == pager.InvalidPageNum || cat.Header.SchemasAllocPages < neededPages {
		startPage = p.UnusedPageNum()
		for i := uint32(0); i < neededPages; i++ {
			if _, err := p.GetPage(startPage + i); err != nil {
				return err
			}
		}
		cat.Header.SchemasAllocPages = neededPages
	}

	for i := uint32(0); i < cat.Header.SchemasAllocPages; i++ {
		page, err := p.GetPage(startPage + i)
		if err != nil {
			return err
		}
		for j := range page.Buf {
			page.Buf[j] = 0
		}
		lo := int(i) * pager.PageSize
		if lo < len(blob) {
			hi := lo + pager.PageSize
			if hi > len(blob) {
				hi = len(blob)
			}
			copy(page.Buf[:], blob[lo:hi])
		}
		if err := p.Flush(startPage + i); err != nil {
			return err
		}
	}

	cat.Header.SchemasStartPage = startPage
	cat.Header.SchemasByteLen = uint32(len(blob))
	return nil
}
