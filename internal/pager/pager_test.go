package pager

import (
	"os"
	"path/filepath"
	"testing"
)

func truncateToOddLength(path string) error {
	return os.Truncate(path, PageSize+1)
}

func TestOpenCreatesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.tsq")
	p, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()
	if p.NumPages() != 0 {
		t.Fatalf("NumPages() = %d, want 0", p.NumPages())
	}
}

func TestGetPageZeroFillsNewPages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.tsq")
	p, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	page, err := p.GetPage(0)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	for i, b := range page.Buf {
		if b != 0 {
			t.Fatalf("byte %d = %d, want 0", i, b)
		}
	}
	if p.NumPages() != 1 {
		t.Fatalf("NumPages() = %d, want 1", p.NumPages())
	}
}

func TestGetPageOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.tsq")
	p, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	if _, err := p.GetPage(TableMaxPages); err == nil {
		t.Fatal("expected fatal error for out-of-range page")
	}
}

func TestFlushNonResidentIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.tsq")
	p, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	if err := p.Flush(5); err == nil {
		t.Fatal("expected fatal error flushing non-resident page")
	}
}

func TestRoundTripThroughClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.tsq")
	p, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	page, err := p.GetPage(0)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	page.Buf[0] = 0xAB
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	p2, err := Open(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer p2.Close()
	if p2.NumPages() != 1 {
		t.Fatalf("NumPages() = %d, want 1", p2.NumPages())
	}
	page2, err := p2.GetPage(0)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if page2.Buf[0] != 0xAB {
		t.Fatalf("byte 0 = %d, want 0xAB", page2.Buf[0])
	}
}

func TestOpenRejectsPartialPageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.tsq")
	p, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := p.GetPage(0); err != nil {
		t.Fatal(err)
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if err := truncateToOddLength(path); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path, nil); err == nil {
		t.Fatal("expected fatal error opening a non-page-multiple file")
	}
}
