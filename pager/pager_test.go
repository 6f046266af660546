package pager

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpenEmptyFile(t *testing.T) {
	tmp, err := os.CreateTemp("", "pager_test_empty_*.db")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	path := tmp.Name()
	tmp.Close()
	defer os.Remove(path)

	p, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	if p.NumPages() != 0 {
		t.Errorf("expected 0 pages, got %d", p.NumPages())
	}
}

func TestOpenRejectsCorruptLength(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "corrupt.db")

	if err := os.WriteFile(path, make([]byte, 100), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Open(path); err == nil {
		t.Errorf("expected error opening a file whose length is not a multiple of %d", PageSize)
	}
}

func TestGetPageGrowsNumPages(t *testing.T) {
	tmp, err := os.CreateTemp("", "pager_test_grow_*.db")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	path := tmp.Name()
	tmp.Close()
	defer os.Remove(path)

	p, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	page, err := p.GetPage(0)
	if err != nil {
		t.Fatalf("GetPage(0): %v", err)
	}
	if page.PageNum != 0 {
		t.Errorf("PageNum = %d, want 0", page.PageNum)
	}
	if p.NumPages() != 1 {
		t.Errorf("NumPages = %d, want 1", p.NumPages())
	}

	if _, err := p.GetPage(3); err != nil {
		t.Fatalf("GetPage(3): %v", err)
	}
	if p.NumPages() != 4 {
		t.Errorf("NumPages = %d, want 4", p.NumPages())
	}
}

func TestGetPageOutOfBounds(t *testing.T) {
	tmp, err := os.CreateTemp("", "pager_test_oob_*.db")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	path := tmp.Name()
	tmp.Close()
	defer os.Remove(path)

	p, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	if _, err := p.GetPage(TableMaxPages); err == nil {
		t.Errorf("expected error fetching page %d (>= TableMaxPages)", TableMaxPages)
	}
}

func TestGetPageReturnsSameInstance(t *testing.T) {
	tmp, err := os.CreateTemp("", "pager_test_same_*.db")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	path := tmp.Name()
	tmp.Close()
	defer os.Remove(path)

	p, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	first, err := p.GetPage(0)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	second, err := p.GetPage(0)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if first != second {
		t.Errorf("GetPage returned a different instance on second call")
	}
}

func TestFlushAndReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flush.db")

	p, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	page, err := p.GetPage(0)
	if err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	page.Data[0] = 0xAB
	page.Data[PageSize-1] = 0xCD

	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size()%PageSize != 0 {
		t.Errorf("file size %d is not a multiple of %d", info.Size(), PageSize)
	}

	p2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer p2.Close()

	reloaded, err := p2.GetPage(0)
	if err != nil {
		t.Fatalf("GetPage after reopen: %v", err)
	}
	if reloaded.Data[0] != 0xAB || reloaded.Data[PageSize-1] != 0xCD {
		t.Errorf("flushed data not preserved across reopen")
	}
}

func TestGetUnusedPageNum(t *testing.T) {
	tmp, err := os.CreateTemp("", "pager_test_unused_*.db")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	path := tmp.Name()
	tmp.Close()
	defer os.Remove(path)

	p, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	if got := p.GetUnusedPageNum(); got != 0 {
		t.Errorf("GetUnusedPageNum = %d, want 0", got)
	}
	if _, err := p.GetPage(0); err != nil {
		t.Fatalf("GetPage: %v", err)
	}
	if got := p.GetUnusedPageNum(); got != 1 {
		t.Errorf("GetUnusedPageNum = %d, want 1", got)
	}
}
