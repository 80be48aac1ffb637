// Package filedb is the library API surface (spec §6.2): Open/Close/
// Execute against a single-file relational store, returning a status
// code and a JSON result string.
//
// What: a thin, mutex-serialized shell over internal/pager,
// internal/catalog, and internal/executor. Exactly one statement runs
// at a time per open handle (spec §5's "mutable borrow of the database
// handle for every operation"), enforced here with a sync.Mutex rather
// than relying on callers to serialize themselves.
// How: Open returns an opaque Handle backed by a uuid.UUID rather than a
// raw pointer, so a forged or stale handle is detected as "bad handle"
// instead of dereferencing freed memory — there being no free memory to
// dereference in Go, this buys callers a clean error instead of relying
// on accidental safety.
package filedb

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/baiyangmu/db-tutorial-new/internal/btree"
	"github.com/baiyangmu/db-tutorial-new/internal/catalog"
	"github.com/baiyangmu/db-tutorial-new/internal/executor"
	"github.com/baiyangmu/db-tutorial-new/internal/pager"
	"github.com/baiyangmu/db-tutorial-new/internal/parser"
	"github.com/baiyangmu/db-tutorial-new/internal/result"
)

// Handle is the opaque identifier Open returns. The zero Handle is never
// valid and is returned alongside an error.
type Handle uuid.UUID

// Status codes for Execute, per spec §6.2.
const (
	StatusOK                       = 0
	StatusOutputParamMissing       = -1
	StatusBadHandle                = -2
	StatusParseError               = -3
	StatusUnrecognizedStatement    = -4
	StatusInternal                 = -5
)

// DB is one open database: its pager, catalog, schema table, and the
// executor that runs statements against whichever table is active.
type DB struct {
	mu   sync.Mutex
	path string
	log  *log.Logger

	pager   *pager.Pager
	catalog *catalog.Catalog
	schemas *catalog.SchemaTable
	exec    *executor.Executor
}

var (
	registryMu sync.Mutex
	registry   = map[Handle]*DB{}
)

// Open opens path read/write, creating it if absent, loading the catalog
// and schema blob if it already exists. logger may be nil to discard
// logs.
func Open(path string, logger *log.Logger) (Handle, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	p, err := pager.Open(path, logger)
	if err != nil {
		return Handle{}, err
	}

	var cat *catalog.Catalog
	var schemas *catalog.SchemaTable
	if p.NumPages() == 0 {
		cat, err = catalog.InitNew(p)
		if err != nil {
			p.Close()
			return Handle{}, err
		}
		schemas = catalog.NewSchemaTable()
	} else {
		cat, err = catalog.Load(p)
		if err != nil {
			p.Close()
			return Handle{}, err
		}
		schemas, err = catalog.LoadSchemas(p, cat.Header)
		if err != nil {
			p.Close()
			return Handle{}, err
		}
	}

	db := &DB{
		path:    path,
		log:     logger,
		pager:   p,
		catalog: cat,
		schemas: schemas,
		exec:    executor.New(p, cat, schemas),
	}

	h := Handle(uuid.New())
	registryMu.Lock()
	registry[h] = db
	registryMu.Unlock()
	logger.Printf("filedb: opened %s as %s", path, uuid.UUID(h))
	return h, nil
}

// Close flushes and releases every resource Open allocated for h.
func Close(h Handle) error {
	registryMu.Lock()
	db, ok := registry[h]
	if ok {
		delete(registry, h)
	}
	registryMu.Unlock()
	if !ok {
		return fmt.Errorf("filedb: bad handle")
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.pager.Close()
}

// Execute parses and runs one SQL statement against h, returning a
// status code and the JSON result body described in spec §6.2.
//
// StatusOutputParamMissing has no Go equivalent (it models a null output
// pointer in the C ABI this was ported from) and is never returned here;
// it is kept as a named constant so callers porting status-code switches
// from the original API compile unchanged.
func Execute(h Handle, sql string) (status int, resultJSON string) {
	registryMu.Lock()
	db, ok := registry[h]
	registryMu.Unlock()
	if !ok {
		return StatusBadHandle, string(result.Error("bad_handle"))
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	stmt, err := parser.Parse(sql)
	if err != nil {
		if stmt != nil && stmt.Kind == parser.Unknown {
			return StatusUnrecognizedStatement, string(result.Error(err.Error()))
		}
		return StatusParseError, string(result.Error(err.Error()))
	}

	switch stmt.Kind {
	case parser.Use:
		if err := db.exec.Use(stmt.TableName); err != nil {
			return StatusInternal, string(result.Error(err.Error()))
		}
		return StatusOK, string(result.OK("Executed."))

	case parser.CreateTable:
		if err := db.exec.CreateTable(stmt.TableName, stmt.Columns); err != nil {
			return StatusInternal, string(result.Error(err.Error()))
		}
		return StatusOK, string(result.OK("Executed."))

	case parser.Insert:
		ok, err := db.exec.Insert(stmt)
		if err != nil {
			return StatusInternal, string(result.Error(err.Error()))
		}
		if !ok {
			return StatusOK, string(result.Mutation(false, "duplicate_key"))
		}
		return StatusOK, string(result.Mutation(true, ""))

	case parser.Delete:
		_, err := db.exec.Delete(stmt)
		if err != nil {
			return StatusInternal, string(result.Error(err.Error()))
		}
		return StatusOK, string(result.Mutation(true, ""))

	case parser.Select:
		rows, err := db.exec.Select(stmt)
		if err != nil {
			return StatusInternal, string(result.Error(err.Error()))
		}
		return StatusOK, string(result.Rows(rows))

	default:
		return StatusUnrecognizedStatement, string(result.Error("unrecognized statement"))
	}
}

// Sync forces h's pending writes to stable storage, for callers (such as
// cmd/filedb's --autosync flag) that want a periodic durability point
// without waiting for Close.
func Sync(h Handle) error {
	registryMu.Lock()
	db, ok := registry[h]
	registryMu.Unlock()
	if !ok {
		return fmt.Errorf("filedb: bad handle")
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.pager.Sync()
}

// PrintTree writes an indented dump of h's active table's B+ tree to w,
// for the REPL's `.btree` meta-command. Returns an error if h is bad or
// no table is currently selected.
func PrintTree(h Handle, w io.Writer) error {
	registryMu.Lock()
	db, ok := registry[h]
	registryMu.Unlock()
	if !ok {
		return fmt.Errorf("filedb: bad handle")
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	t := db.exec.ActiveBtree()
	if t == nil {
		return fmt.Errorf("no active table, use 'use <table>' first")
	}
	return t.PrintTree(w, t.RootPage, 0)
}

// Constants reports the active table's fixed layout widths, for the
// REPL's `.constants` meta-command.
func Constants(h Handle) (btree.Constants, error) {
	registryMu.Lock()
	db, ok := registry[h]
	registryMu.Unlock()
	if !ok {
		return btree.Constants{}, fmt.Errorf("filedb: bad handle")
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	t := db.exec.ActiveBtree()
	if t == nil {
		return btree.Constants{}, fmt.Errorf("no active table, use 'use <table>' first")
	}
	return t.Describe(), nil
}

// marshalForDebug pretty-prints arbitrary internal state as JSON (e.g. the
// active schema). Nothing in the module calls it.
func marshalForDebug(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%+v", v)
	}
	return string(b)
}
