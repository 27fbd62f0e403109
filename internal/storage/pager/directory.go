package pager

import (
	"fmt"
)

const (
	// DirectoryMagic is the leading byte of every *.dr file.
	DirectoryMagic byte = 0xBB

	// MaxPagesPerDirectory bounds the number of page names one directory
	// may reference (spec.md §3: "count of referenced pages ≤ 255").
	MaxPagesPerDirectory = 255

	// DirectoryHeaderSize is magic(1) + name(8) + page_count(1).
	DirectoryHeaderSize = 1 + NameSize + 1
)

// Directory is an ordered list of page names forming a contiguous logical
// address range. Order is significant. Lock is transient, in-memory-only
// state.
type Directory struct {
	Name  Name
	Pages []Name // len() <= MaxPagesPerDirectory, no duplicates

	Lock Lock
}

// NewDirectory allocates an empty directory with the given name.
func NewDirectory(name Name) *Directory {
	return &Directory{Name: name}
}

// CacheName implements the cacheable interface for the generic descriptor table.
func (d *Directory) CacheName() Name { return d.Name }

// IndexOf returns the position of page in d.Pages, or -1 if absent.
func (d *Directory) IndexOf(page Name) int {
	for i, n := range d.Pages {
		if n == page {
			return i
		}
	}
	return -1
}

// AddPage appends a page name. It rejects duplicates and enforces the
// 255-page ceiling (spec.md §3 invariant).
func (d *Directory) AddPage(page Name) error {
	if len(d.Pages) >= MaxPagesPerDirectory {
		return newErr(KindOverflow, "add_page", d.Name.String(), fmt.Errorf("directory already holds %d pages", MaxPagesPerDirectory))
	}
	if d.IndexOf(page) != -1 {
		return newErr(KindCorruptFormat, "add_page", d.Name.String(), fmt.Errorf("duplicate page name %q", page.String()))
	}
	d.Pages = append(d.Pages, page)
	return nil
}

// RemovePage removes the first occurrence of page, if present.
func (d *Directory) RemovePage(page Name) {
	i := d.IndexOf(page)
	if i == -1 {
		return
	}
	d.Pages = append(d.Pages[:i], d.Pages[i+1:]...)
}

// EncodeDirectory serializes a directory to its on-disk byte layout:
// magic(1) | name(8) | page_count(1) | page_names(8 * page_count).
func EncodeDirectory(d *Directory) []byte {
	buf := make([]byte, DirectoryHeaderSize+NameSize*len(d.Pages))
	buf[0] = DirectoryMagic
	copy(buf[1:1+NameSize], d.Name[:])
	buf[1+NameSize] = byte(len(d.Pages))
	off := DirectoryHeaderSize
	for _, p := range d.Pages {
		copy(buf[off:off+NameSize], p[:])
		off += NameSize
	}
	return buf
}

// DecodeDirectory parses bytes produced by EncodeDirectory.
func DecodeDirectory(buf []byte) (*Directory, error) {
	if len(buf) < DirectoryHeaderSize {
		return nil, newErr(KindCorruptFormat, "decode_directory", "", fmt.Errorf("truncated header: %d bytes", len(buf)))
	}
	if buf[0] != DirectoryMagic {
		return nil, newErr(KindCorruptMagic, "decode_directory", "", fmt.Errorf("got magic 0x%02x, want 0x%02x", buf[0], DirectoryMagic))
	}
	count := int(buf[1+NameSize])
	want := DirectoryHeaderSize + NameSize*count
	if len(buf) < want {
		return nil, newErr(KindCorruptFormat, "decode_directory", "", fmt.Errorf("truncated body: have %d bytes, want %d", len(buf), want))
	}
	d := &Directory{Pages: make([]Name, count)}
	copy(d.Name[:], buf[1:1+NameSize])
	off := DirectoryHeaderSize
	seen := make(map[Name]struct{}, count)
	for i := 0; i < count; i++ {
		var n Name
		copy(n[:], buf[off:off+NameSize])
		if _, dup := seen[n]; dup {
			return nil, newErr(KindCorruptFormat, "decode_directory", d.Name.String(), fmt.Errorf("duplicate page name %q", n.String()))
		}
		seen[n] = struct{}{}
		d.Pages[i] = n
		off += NameSize
	}
	return d, nil
}
