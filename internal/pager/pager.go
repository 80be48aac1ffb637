package pager

import (
	"fmt"
	"io"
	"log"
	"os"
)

// Pager owns the file descriptor and the page cache. All callers share one
// cache; there is no locking here because the whole store is single-
// threaded by design (see spec §5) — callers that need concurrency-safety
// serialize at the DB handle above this package.
type Pager struct {
	file       *os.File
	fileLength int64
	numPages   uint32
	pages      [TableMaxPages]*Page
	log        *log.Logger
}

// Open opens path read/write, creating it if absent. The file length must
// already be a whole multiple of PageSize; anything else is a fatal
// invariant violation (a partially written or foreign file).
func Open(path string, logger *log.Logger) (*Pager, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("pager: open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("pager: stat %s: %w", path, err)
	}
	length := info.Size()
	if length%PageSize != 0 {
		f.Close()
		return nil, fatalf("file %s length %d is not a multiple of page size %d", path, length, PageSize)
	}
	p := &Pager{
		file:       f,
		fileLength: length,
		numPages:   uint32(length / PageSize),
		log:        logger,
	}
	logger.Printf("pager: opened %s (%d pages)", path, p.numPages)
	return p, nil
}

// NumPages returns the current logical page count.
func (p *Pager) NumPages() uint32 { return p.numPages }

// GetPage returns the buffer for page n, reading it from disk on first
// access (bytes past the current file length read as zero). Extends the
// logical page count if n is at or beyond it. Fails hard if n is
// TableMaxPages or more.
func (p *Pager) GetPage(n uint32) (*Page, error) {
	if n >= TableMaxPages {
		return nil, fatalf("page number %d out of bounds (max %d)", n, TableMaxPages-1)
	}
	if p.pages[n] == nil {
		page := &Page{}
		if n < p.numPages {
			off := int64(n) * PageSize
			if _, err := p.file.ReadAt(page.Buf[:], off); err != nil && err != io.EOF {
				return nil, fmt.Errorf("pager: read page %d: %w", n, err)
			}
		}
		p.pages[n] = page
	}
	if n >= p.numPages {
		p.numPages = n + 1
	}
	return p.pages[n], nil
}

// Flush writes the in-memory buffer for page n back to disk. Flushing a
// non-resident page is a programmer error: the caller must have obtained
// the page through GetPage first.
func (p *Pager) Flush(n uint32) error {
	if p.pages[n] == nil {
		return fatalf("flush of non-resident page %d", n)
	}
	off := int64(n) * PageSize
	if _, err := p.file.WriteAt(p.pages[n].Buf[:], off); err != nil {
		return fmt.Errorf("pager: flush page %d: %w", n, err)
	}
	return nil
}

// Sync flushes every resident page to the file and forces it to stable
// storage. Unlike Close, the pager remains open and usable afterwards.
func (p *Pager) Sync() error {
	for n := uint32(0); n < p.numPages; n++ {
		if p.pages[n] == nil {
			continue
		}
		if err := p.Flush(n); err != nil {
			return err
		}
	}
	return p.file.Sync()
}

// UnusedPageNum returns the page number that the next append-only
// allocation would use. There is no free list: pages are never recycled.
func (p *Pager) UnusedPageNum() uint32 { return p.numPages }

// Close flushes every resident page, fsyncs, and closes the descriptor.
func (p *Pager) Close() error {
	if err := p.Sync(); err != nil {
		return err
	}
	return p.file.Close()
}
