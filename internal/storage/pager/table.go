package pager

import "fmt"

// Table, Database: byte codecs only. Per spec.md §1 these layers have no
// cache in the core ("the table-layer schema/signature checker" and "the
// database catalog file" are external collaborators); this file exists so
// the on-disk format spec.md §6 documents is actually producible and
// parseable, and so the table-layer contract (spec.md §4.6) has a concrete
// wire format to hand directory names through.

const (
	// TableMagic is the leading byte of every *.tb file.
	TableMagic byte = 0xEE

	// MaxDirectoriesPerTable bounds directory references, mirroring the
	// 255-entry ceiling used at every other layer.
	MaxDirectoriesPerTable = 255

	// columnRecordSize is name(8) + type(1) + size(1).
	columnRecordSize = NameSize + 1 + 1
)

// ColumnType is an opaque tag; the core never interprets column values
// (spec.md §1: "the cache is byte-opaque"), it only stores the schema
// byte-for-byte.
type ColumnType uint8

// Column describes one column in a table's immutable schema.
type Column struct {
	Name NameColumn
	Type ColumnType
	Size uint8
}

// NameColumn is a column name, sharing the same fixed width as object names.
type NameColumn = Name

// Table is the L2 persistent unit: a column schema plus an ordered list of
// directory names. The schema is immutable after creation (spec.md §3).
type Table struct {
	Name        Name
	Columns     []Column
	Access      uint8
	Directories []Name
}

// EncodeTable serializes a table to its on-disk byte layout:
// magic(1) | name(8) | column_count(1) | columns(10 * column_count) |
// access(1) | dir_count(1) | dir_names(8 * dir_count).
func EncodeTable(t *Table) []byte {
	n := len(t.Columns)
	d := len(t.Directories)
	size := 1 + NameSize + 1 + n*columnRecordSize + 1 + 1 + d*NameSize
	buf := make([]byte, size)
	buf[0] = TableMagic
	off := 1
	copy(buf[off:off+NameSize], t.Name[:])
	off += NameSize
	buf[off] = byte(n)
	off++
	for _, c := range t.Columns {
		copy(buf[off:off+NameSize], c.Name[:])
		off += NameSize
		buf[off] = byte(c.Type)
		off++
		buf[off] = c.Size
		off++
	}
	buf[off] = t.Access
	off++
	buf[off] = byte(d)
	off++
	for _, dn := range t.Directories {
		copy(buf[off:off+NameSize], dn[:])
		off += NameSize
	}
	return buf
}

// DecodeTable parses bytes produced by EncodeTable.
func DecodeTable(buf []byte) (*Table, error) {
	if len(buf) < 1+NameSize+1 {
		return nil, newErr(KindCorruptFormat, "decode_table", "", fmt.Errorf("truncated header: %d bytes", len(buf)))
	}
	if buf[0] != TableMagic {
		return nil, newErr(KindCorruptMagic, "decode_table", "", fmt.Errorf("got magic 0x%02x, want 0x%02x", buf[0], TableMagic))
	}
	t := &Table{}
	off := 1
	copy(t.Name[:], buf[off:off+NameSize])
	off += NameSize
	colCount := int(buf[off])
	off++
	if len(buf) < off+colCount*columnRecordSize+2 {
		return nil, newErr(KindCorruptFormat, "decode_table", t.Name.String(), fmt.Errorf("truncated column section"))
	}
	t.Columns = make([]Column, colCount)
	for i := 0; i < colCount; i++ {
		var c Column
		copy(c.Name[:], buf[off:off+NameSize])
		off += NameSize
		c.Type = ColumnType(buf[off])
		off++
		c.Size = buf[off]
		off++
		t.Columns[i] = c
	}
	t.Access = buf[off]
	off++
	dirCount := int(buf[off])
	off++
	if len(buf) < off+dirCount*NameSize {
		return nil, newErr(KindCorruptFormat, "decode_table", t.Name.String(), fmt.Errorf("truncated directory section"))
	}
	t.Directories = make([]Name, dirCount)
	for i := 0; i < dirCount; i++ {
		copy(t.Directories[i][:], buf[off:off+NameSize])
		off += NameSize
	}
	return t, nil
}
