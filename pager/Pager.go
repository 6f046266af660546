// Package pager implements the page cache ("pager") that mediates between
// an in-memory working set of 4096-byte pages and a single backing file.
//
// The pager performs no dirty-bit tracking: every resident page is written
// back unconditionally when the pager is closed. This matches the original
// design's durability model — persistence happens only at clean shutdown,
// and an abnormal termination loses whatever was resident but unflushed.
package pager

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"flatbase/logging"
)

const (
	// PageSize is the fixed size of every page and cache granularity.
	PageSize = 4096

	// TableMaxPages bounds the working set the pager will ever cache,
	// at TableMaxPages*PageSize bytes (~400 KiB for the default size).
	TableMaxPages = 100
)

// Page is one fixed-size node buffer, resident in memory.
type Page struct {
	Data    [PageSize]byte
	PageNum uint32
}

// Pager owns the backing file descriptor and the page cache. It is
// exclusive to the Table that created it.
type Pager struct {
	file     *os.File
	pages    [TableMaxPages]*Page
	numPages uint32
	fileLen  int64
}

// Open opens or creates path read-write and computes the current page
// count from the file length. A file whose length is not a whole
// multiple of PageSize is treated as corrupt and rejected — a fatal,
// unrecoverable condition per the error handling design.
func Open(path string) (*Pager, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return nil, fmt.Errorf("pager: open %s: %w", path, err)
	}

	fileLen, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("pager: seek end of %s: %w", path, err)
	}
	if fileLen%PageSize != 0 {
		f.Close()
		return nil, fmt.Errorf("pager: %s is not a whole number of %d-byte pages (corrupt file, len=%d)", path, PageSize, fileLen)
	}

	p := &Pager{
		file:     f,
		numPages: uint32(fileLen / PageSize),
		fileLen:  fileLen,
	}
	logging.Tree.WithFields(logrus.Fields{"path": path, "num_pages": p.numPages}).Debug("pager opened")
	return p, nil
}

// NumPages reports how many pages the pager currently tracks, resident
// or not.
func (p *Pager) NumPages() uint32 { return p.numPages }

// GetUnusedPageNum hands out the next free page number. Page allocation
// is strictly append-only: freed space is never reclaimed.
func (p *Pager) GetUnusedPageNum() uint32 { return p.numPages }

// GetPage returns the cached buffer for pageNum, loading it from disk on
// first access and growing the tracked page count as needed. The
// returned Page is borrowed, not owned: it remains valid until the
// pager is closed, since the pager never evicts.
func (p *Pager) GetPage(pageNum uint32) (*Page, error) {
	if pageNum >= TableMaxPages {
		return nil, fmt.Errorf("pager: page %d out of bounds (max %d)", pageNum, TableMaxPages)
	}

	if p.pages[pageNum] == nil {
		page := &Page{PageNum: pageNum}

		onDiskPages := uint32(p.fileLen / PageSize)
		if p.fileLen%PageSize != 0 {
			onDiskPages++
		}
		if pageNum < onDiskPages {
			off := int64(pageNum) * PageSize
			if _, err := p.file.Seek(off, io.SeekStart); err != nil {
				return nil, fmt.Errorf("pager: seek page %d: %w", pageNum, err)
			}
			if _, err := io.ReadFull(p.file, page.Data[:]); err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
				return nil, fmt.Errorf("pager: read page %d: %w", pageNum, err)
			}
		}

		p.pages[pageNum] = page
		if pageNum >= p.numPages {
			p.numPages = pageNum + 1
		}
	}

	return p.pages[pageNum], nil
}

// Flush writes exactly PageSize bytes of the cached page pageNum back to
// its slot in the file. It is a fatal error to flush a page that was
// never resident.
func (p *Pager) Flush(pageNum uint32) error {
	page := p.pages[pageNum]
	if page == nil {
		return fmt.Errorf("pager: tried to flush null page %d", pageNum)
	}
	off := int64(pageNum) * PageSize
	if _, err := p.file.Seek(off, io.SeekStart); err != nil {
		return fmt.Errorf("pager: seek for flush of page %d: %w", pageNum, err)
	}
	if _, err := p.file.Write(page.Data[:]); err != nil {
		return fmt.Errorf("pager: write page %d: %w", pageNum, err)
	}
	if off+PageSize > p.fileLen {
		p.fileLen = off + PageSize
	}
	return nil
}

// Close flushes every resident page in [0, NumPages) and closes the
// file; the cached pages are not cleared. Pages that were never loaded are assumed
// unmodified and are skipped — there is nothing to write back.
func (p *Pager) Close() error {
	for i := uint32(0); i < p.numPages; i++ {
		if p.pages[i] == nil {
			continue
		}
		if err := p.Flush(i); err != nil {
			return err
		}
	}
	if err := p.file.Close(); err != nil {
		return fmt.Errorf("pager: close file: %w", err)
	}
	logging.Tree.Debug("pager closed")
	return nil
}
