// Package catalog implements the page-0 table directory and the schema
// blob that backs it.
//
// What: a fixed header plus a packed array of {name, root page, schema
// index} entries living at byte 0 of the database file, and a textual
// schema dump stored in a separate run of pages referenced from that
// header.
// How: plain byte-offset reads/writes over a *pager.Page, the same way
// the node codec treats leaf/internal pages — page 0 is just another
// typed view over a fixed buffer.
// Why: keeping the catalog a fixed-size struct at a fixed offset means
// opening a database never needs more than one page read before any
// table lookup can happen.
package catalog

import (
	"encoding/binary"
	"fmt"

	"github.com/baiyangmu/db-tutorial-new/internal/pager"
)

const (
	// Magic identifies a valid catalog page. 0x44544231 is "DTB1" in ASCII
	// read as a big-endian number; stored little-endian, the bytes on disk
	// are "1BTD". Matches the on-disk format in spec §6.1.
	Magic uint32 = 0x44544231

	// Version is bumped when schemas moved from compiled-in structs to an
	// embedded blob referenced from the header.
	Version uint32 = 2

	// MaxTables bounds how many catalog entries page 0 can hold.
	MaxTables = 32

	// NameSize is the fixed width of a table or column name field.
	NameSize = 32
)

const (
	headerMagicOff       = 0
	headerVersionOff     = 4
	headerNumTablesOff   = 8
	headerSchemasPageOff = 12
	headerSchemasAllocOff = 16
	headerSchemasLenOff  = 20
	headerChecksumOff    = 24
	headerSize           = 28

	entrySize       = NameSize + 4 + 4
	entryRootOff    = NameSize
	entrySchemaOff  = NameSize + 4
	entriesStartOff = headerSize
)

func init() {
	if entriesStartOff+entrySize*MaxTables > pager.PageSize {
		panic("catalog: entries overflow page 0")
	}
}

// Entry is one catalog row: a table name mapped to its B+ tree root page
// and the slot of its schema in the schema table.
type Entry struct {
	Name         string
	RootPageNum  uint32
	SchemaIndex  uint32
}

// Header mirrors the catalog header persisted at the start of page 0.
type Header struct {
	Magic             uint32
	Version           uint32
	NumTables         uint32
	SchemasStartPage  uint32
	SchemasAllocPages uint32
	SchemasByteLen    uint32
	Checksum          uint32 // reserved, always 0
}

// Catalog is the in-memory view of page 0: the header plus its entries.
type Catalog struct {
	Header  Header
	Entries [MaxTables]Entry
}

// InitNew zeroes page 0 and writes a fresh header for a brand-new database
// file: no tables, no schema blob.
func InitNew(p *pager.Pager) (*Catalog, error) {
	page, err := p.GetPage(0)
	if err != nil {
		return nil, err
	}
	for i := range page.Buf {
		page.Buf[i] = 0
	}
	c := &Catalog{
		Header: Header{
			Magic:            Magic,
			Version:          Version,
			NumTables:        0,
			SchemasStartPage: pager.InvalidPageNum,
		},
	}
	c.writeInto(page)
	return c, nil
}

// Load reads and validates the catalog header from page 0 of an existing
// file. A magic or version mismatch is a fatal invariant violation — it
// means the file is not one of ours or was written by an incompatible
// version.
func Load(p *pager.Pager) (*Catalog, error) {
	page, err := p.GetPage(0)
	if err != nil {
		return nil, err
	}
	c := &Catalog{}
	c.Header.Magic = binary.LittleEndian.Uint32(page.Buf[headerMagicOff:])
	if c.Header.Magic != Magic {
		return nil, &pager.FatalError{Msg: fmt.Sprintf("catalog: bad magic 0x%08X", c.Header.Magic)}
	}
	c.Header.Version = binary.LittleEndian.Uint32(page.Buf[headerVersionOff:])
	if c.Header.Version < 2 {
		return nil, &pager.FatalError{Msg: fmt.Sprintf("catalog: unsupported version %d", c.Header.Version)}
	}
	c.Header.NumTables = binary.LittleEndian.Uint32(page.Buf[headerNumTablesOff:])
	c.Header.SchemasStartPage = binary.LittleEndian.Uint32(page.Buf[headerSchemasPageOff:])
	c.Header.SchemasAllocPages = binary.LittleEndian.Uint32(page.Buf[headerSchemasAllocOff:])
	c.Header.SchemasByteLen = binary.LittleEndian.Uint32(page.Buf[headerSchemasLenOff:])
	c.Header.Checksum = binary.LittleEndian.Uint32(page.Buf[headerChecksumOff:])

	for i := uint32(0); i < c.Header.NumTables && i < MaxTables; i++ {
		off := entriesStartOff + int(i)*entrySize
		c.Entries[i] = Entry{
			Name:        trimName(page.Buf[off : off+NameSize]),
			RootPageNum: binary.LittleEndian.Uint32(page.Buf[off+entryRootOff:]),
			SchemaIndex: binary.LittleEndian.Uint32(page.Buf[off+entrySchemaOff:]),
		}
	}
	return c, nil
}

// Find returns the index of the table named name, or -1 if absent.
func (c *Catalog) Find(name string) int {
	for i := uint32(0); i < c.Header.NumTables; i++ {
		if c.Entries[i].Name == name {
			return int(i)
		}
	}
	return -1
}

// AddTable appends a new catalog entry. The caller must have already
// installed the schema at schemaIndex in the schema table.
func (c *Catalog) AddTable(name string, rootPage, schemaIndex uint32) (int, error) {
	if c.Find(name) >= 0 {
		return -1, fmt.Errorf("catalog: table %q already exists", name)
	}
	if c.Header.NumTables >= MaxTables {
		return -1, fmt.Errorf("catalog: too many tables (max %d)", MaxTables)
	}
	idx := c.Header.NumTables
	c.Entries[idx] = Entry{Name: name, RootPageNum: rootPage, SchemaIndex: schemaIndex}
	c.Header.NumTables++
	return int(idx), nil
}

// Flush serializes the header and entries into page 0 and writes it to
// disk. Per the durability protocol (spec §5), this must happen before
// any schema-blob pages that a preceding AddTable depends on are trusted
// by a future reader — callers are responsible for the ordering, this
// method only performs the page-0 half of it.
func (c *Catalog) Flush(p *pager.Pager) error {
	page, err := p.GetPage(0)
	if err != nil {
		return err
	}
	c.writeInto(page)
	return p.Flush(0)
}

func (c *Catalog) writeInto(page *pager.Page) {
	binary.LittleEndian.PutUint32(page.Buf[headerMagicOff:], c.Header.Magic)
	binary.LittleEndian.PutUint32(page.Buf[headerVersionOff:], c.Header.Version)
	binary.LittleEndian.PutUint32(page.Buf[headerNumTablesOff:], c.Header.NumTables)
	binary.LittleEndian.PutUint32(page.Buf[headerSchemasPageOff:], c.Header.SchemasStartPage)
	binary.LittleEndian.PutUint32(page.Buf[headerSchemasAllocOff:], c.Header.SchemasAllocPages)
	binary.LittleEndian.PutUint32(page.Buf[headerSchemasLenOff:], c.Header.SchemasByteLen)
	binary.LittleEndian.PutUint32(page.Buf[headerChecksumOff:], c.Header.Checksum)

	for i := uint32(0); i < c.Header.NumTables; i++ {
		off := entriesStartOff + int(i)*entrySize
		e := c.Entries[i]
		clear(page.Buf[off : off+entrySize])
		copy(page.Buf[off:off+NameSize], e.Name)
		binary.LittleEndian.PutUint32(page.Buf[off+entryRootOff:], e.RootPageNum)
		binary.LittleEndian.PutUint32(page.Buf[off+entrySchemaOff:], e.SchemaIndex)
	}
}

func trimName(b []byte) string {
	n := 0
	for n < len(b) && b[n] != 0 {
		n++
	}
	return string(b[:n])
}

func clear(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
