// Package pager implements the paged storage engine: a content-addressed
// on-disk binary format for pages and directories, bounded in-memory
// descriptor-table caches (PDT for pages, DDT for directories) with
// first-unlocked-wins admission, and the per-object lock registry that
// arbitrates concurrent access. Table and database byte layouts are
// implemented as codecs only — those layers have no cache in this core
// (see spec.md §1, §2).
package pager

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Sentinel bytes reserved within page payloads (spec.md §6).
const (
	// RD marks the start of a row.
	RD byte = 0xFD
	// CD separates columns within a row.
	CD byte = 0xFC
	// PE tombstones deleted bytes.
	PE byte = 0xFE
)

const (
	// PageMagic is the leading byte of every *.pg file.
	PageMagic byte = 0xAA

	// NameSize is the fixed width, in bytes, of every object name.
	NameSize = 8

	// PageHeaderSize is magic(1) + name(8) + size_used(2).
	PageHeaderSize = 1 + NameSize + 2

	// PageContentSize is the default page payload capacity.
	PageContentSize = 4096
)

// Name is a fixed-width, zero-padded 8-byte object identifier. It doubles
// as the filename stem in the object store.
type Name [NameSize]byte

// NewName builds a Name from a string, zero-padding or truncating to
// NameSize bytes.
func NewName(s string) Name {
	var n Name
	copy(n[:], s)
	return n
}

func (n Name) String() string {
	i := len(n)
	for i > 0 && n[i-1] == 0 {
		i--
	}
	return string(n[:i])
}

// Page is the smallest persisted unit: a fixed-size byte payload plus a
// header. Lock is transient, in-memory-only state (spec.md §3) and is
// never written to disk.
type Page struct {
	Name     Name
	SizeUsed uint16
	Payload  []byte // len == PageContentSize

	Lock Lock
}

// NewPage allocates an empty page with the given name and payload capacity.
func NewPage(name Name, contentSize int) *Page {
	if contentSize <= 0 {
		contentSize = PageContentSize
	}
	return &Page{Name: name, Payload: make([]byte, contentSize)}
}

// CacheName implements the cacheable interface for the generic descriptor table.
func (p *Page) CacheName() Name { return p.Name }

// Capacity returns the page's total payload capacity.
func (p *Page) Capacity() int { return len(p.Payload) }

// FreeSpace returns the number of unused payload bytes.
func (p *Page) FreeSpace() int { return len(p.Payload) - int(p.SizeUsed) }

// EncodePage serializes a page to its on-disk byte layout:
// magic(1) | name(8) | size_used(2) | payload(contentSize).
func EncodePage(p *Page) []byte {
	buf := make([]byte, PageHeaderSize+len(p.Payload))
	buf[0] = PageMagic
	copy(buf[1:1+NameSize], p.Name[:])
	binary.LittleEndian.PutUint16(buf[1+NameSize:PageHeaderSize], p.SizeUsed)
	copy(buf[PageHeaderSize:], p.Payload)
	return buf
}

// DecodePage parses bytes produced by EncodePage. contentSize is the
// expected payload capacity (from Config); a mismatched or truncated
// buffer yields a CorruptFormat error.
func DecodePage(buf []byte, contentSize int) (*Page, error) {
	if len(buf) < PageHeaderSize {
		return nil, newErr(KindCorruptFormat, "decode_page", "", fmt.Errorf("truncated header: %d bytes", len(buf)))
	}
	if buf[0] != PageMagic {
		return nil, newErr(KindCorruptMagic, "decode_page", "", fmt.Errorf("got magic 0x%02x, want 0x%02x", buf[0], PageMagic))
	}
	sizeUsed := binary.LittleEndian.Uint16(buf[1+NameSize : PageHeaderSize])
	payload := buf[PageHeaderSize:]
	if contentSize > 0 && len(payload) != contentSize {
		return nil, newErr(KindCorruptFormat, "decode_page", "", fmt.Errorf("payload is %d bytes, want %d", len(payload), contentSize))
	}
	if int(sizeUsed) > len(payload) {
		return nil, newErr(KindCorruptFormat, "decode_page", "", fmt.Errorf("size_used %d exceeds payload %d", sizeUsed, len(payload)))
	}
	p := &Page{SizeUsed: sizeUsed, Payload: append([]byte(nil), payload...)}
	copy(p.Name[:], buf[1:1+NameSize])
	return p, nil
}

// containsSentinel reports whether b contains any reserved sentinel byte.
func containsSentinel(b []byte) bool {
	for _, c := range b {
		if c == RD || c == CD || c == PE {
			return true
		}
	}
	return false
}

// Append writes row at the page's current write offset, prefixed with an
// RD sentinel, and advances SizeUsed (spec.md §4.5, §8 S4). Rows
// containing a reserved sentinel byte are rejected outright rather than
// escaped (spec.md §9 Open Questions resolves this ambiguity as
// rejection).
func (p *Page) Append(row []byte) error {
	if containsSentinel(row) {
		return newErr(KindCorruptFormat, "append", p.Name.String(), fmt.Errorf("row contains a reserved sentinel byte"))
	}
	needed := 1 + len(row)
	if p.FreeSpace() < needed {
		return newErr(KindOverflow, "append", p.Name.String(), nil)
	}
	off := int(p.SizeUsed)
	p.Payload[off] = RD
	copy(p.Payload[off+1:], row)
	p.SizeUsed += uint16(needed)
	return nil
}

// Insert overwrites len(data) bytes starting at offset. Unlike Append, it
// writes no RD prefix — it is a raw overwrite, never creates a new page,
// and writes only as much as fits when offset+len(data) exceeds capacity,
// returning Truncated in that case (spec.md §4.5).
func (p *Page) Insert(offset int, data []byte) error {
	if offset < 0 || offset > len(p.Payload) {
		return newErr(KindTruncated, "insert", p.Name.String(), fmt.Errorf("offset %d out of range", offset))
	}
	end := offset + len(data)
	if end > len(p.Payload) {
		fit := len(p.Payload) - offset
		copy(p.Payload[offset:], data[:fit])
		return newErr(KindTruncated, "insert", p.Name.String(), nil)
	}
	copy(p.Payload[offset:end], data)
	return nil
}

// Delete overwrites size bytes at offset with the PE tombstone sentinel.
// It does not compact the page (spec.md §4.5).
func (p *Page) Delete(offset, size int) error {
	if offset < 0 || offset > len(p.Payload) {
		return newErr(KindTruncated, "delete", p.Name.String(), fmt.Errorf("offset %d out of range", offset))
	}
	end := offset + size
	if end > len(p.Payload) {
		end = len(p.Payload)
	}
	for i := offset; i < end; i++ {
		p.Payload[i] = PE
	}
	return nil
}

// FindData returns the byte offset of the first occurrence of needle at or
// after start, or NotFound. Tombstoned (PE) bytes never participate in a
// match since their content has been overwritten (spec.md §4.5).
func (p *Page) FindData(start int, needle []byte) (int, error) {
	if start < 0 {
		start = 0
	}
	if len(needle) == 0 || bytes.IndexByte(needle, PE) >= 0 || start+len(needle) > int(p.SizeUsed) {
		return 0, newErr(KindNotFound, "find_data", p.Name.String(), nil)
	}
	for i := start; i+len(needle) <= int(p.SizeUsed); i++ {
		if bytes.Equal(p.Payload[i:i+len(needle)], needle) {
			return i, nil
		}
	}
	return 0, newErr(KindNotFound, "find_data", p.Name.String(), nil)
}

// FindValue returns the offset of the first occurrence of b at or after
// start, skipping over PE tombstones (a search for PE itself can never
// match, since a tombstoned byte's stored value is indistinguishable from
// any other PE byte and is defined to carry no data).
func (p *Page) FindValue(start int, b byte) (int, error) {
	if start < 0 {
		start = 0
	}
	for i := start; i < int(p.SizeUsed); i++ {
		if p.Payload[i] == b && b != PE {
			return i, nil
		}
	}
	return 0, newErr(KindNotFound, "find_value", p.Name.String(), nil)
}

// FindDataRow is like FindData but returns the row index (the count of
// complete rows preceding the match) instead of a byte offset.
func (p *Page) FindDataRow(start int, needle []byte) (int, error) {
	off, err := p.FindData(start, needle)
	if err != nil {
		return 0, err
	}
	return rowIndexAt(p.Payload, off), nil
}

// FindValueRow is like FindValue but returns the row index instead of a
// byte offset.
func (p *Page) FindValueRow(start int, b byte) (int, error) {
	off, err := p.FindValue(start, b)
	if err != nil {
		return 0, err
	}
	return rowIndexAt(p.Payload, off), nil
}

// rowIndexAt counts RD sentinels strictly before matchOffset and
// subtracts one, since the match's own row contributes the RD that
// immediately precedes it — the remainder is the number of complete rows
// before the matching one (spec.md §8 S4: a match within the second row
// reports row index 1, even though two RD bytes precede it on the wire).
func rowIndexAt(payload []byte, matchOffset int) int {
	count := 0
	for i := 0; i < matchOffset; i++ {
		if payload[i] == RD {
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return count - 1
}
