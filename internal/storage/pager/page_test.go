package pager

import (
	"bytes"
	"errors"
	"testing"
)

func TestPage_EncodeDecodeRoundTrip(t *testing.T) {
	p := NewPage(NewName("p1"), 64)
	if err := p.Append([]byte("hello")); err != nil {
		t.Fatalf("append: %v", err)
	}

	buf := EncodePage(p)
	got, err := DecodePage(buf, 64)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Name != p.Name {
		t.Errorf("name: got %v, want %v", got.Name, p.Name)
	}
	if got.SizeUsed != p.SizeUsed {
		t.Errorf("size_used: got %d, want %d", got.SizeUsed, p.SizeUsed)
	}
	if !bytes.Equal(got.Payload, p.Payload) {
		t.Errorf("payload mismatch")
	}
}

func TestDecodePage_BadMagic(t *testing.T) {
	buf := EncodePage(NewPage(NewName("p1"), 16))
	buf[0] = 0x00
	_, err := DecodePage(buf, 16)
	if kind, ok := KindOf(err); !ok || kind != KindCorruptMagic {
		t.Fatalf("got %v, want CorruptMagic", err)
	}
}

func TestDecodePage_Truncated(t *testing.T) {
	_, err := DecodePage([]byte{PageMagic}, 16)
	if kind, ok := KindOf(err); !ok || kind != KindCorruptFormat {
		t.Fatalf("got %v, want CorruptFormat", err)
	}
}

func TestPage_AppendRejectsSentinel(t *testing.T) {
	p := NewPage(NewName("p1"), 64)
	for _, b := range []byte{RD, CD, PE} {
		if err := p.Append([]byte{b, 'x'}); err == nil {
			t.Fatalf("append with sentinel byte 0x%02x: want error, got nil", b)
		} else if kind, ok := KindOf(err); !ok || kind != KindCorruptFormat {
			t.Fatalf("append with sentinel byte 0x%02x: got %v, want CorruptFormat", b, err)
		}
	}
}

func TestPage_AppendOverflow(t *testing.T) {
	p := NewPage(NewName("p1"), 4)
	if err := p.Append([]byte("abcdefgh")); err == nil {
		t.Fatal("want Overflow, got nil")
	} else if kind, _ := KindOf(err); kind != KindOverflow {
		t.Fatalf("got %v, want Overflow", err)
	}
}

func TestPage_InsertTruncated(t *testing.T) {
	p := NewPage(NewName("p1"), 8)
	err := p.Insert(4, []byte("abcdef"))
	if kind, ok := KindOf(err); !ok || kind != KindTruncated {
		t.Fatalf("got %v, want Truncated", err)
	}
	if !bytes.Equal(p.Payload[4:8], []byte("abcd")) {
		t.Errorf("partial write mismatch: got %v", p.Payload[4:8])
	}
}

func TestPage_InsertOverwritesRaw(t *testing.T) {
	p := NewPage(NewName("p1"), 8)
	if err := p.Insert(0, []byte("ab")); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if p.SizeUsed != 0 {
		t.Errorf("insert must not touch SizeUsed, got %d", p.SizeUsed)
	}
}

func TestPage_DeleteTombstones(t *testing.T) {
	p := NewPage(NewName("p1"), 8)
	copy(p.Payload, []byte("abcdefgh"))
	if err := p.Delete(2, 3); err != nil {
		t.Fatalf("delete: %v", err)
	}
	want := []byte{'a', 'b', PE, PE, PE, 'f', 'g', 'h'}
	if !bytes.Equal(p.Payload, want) {
		t.Errorf("got %v, want %v", p.Payload, want)
	}
}

func TestPage_FindDataSkipsTombstones(t *testing.T) {
	p := NewPage(NewName("p1"), 32)
	p.Append([]byte("target"))
	p.Delete(1, 6) // tombstone the row's content, leaving the RD prefix
	if _, err := p.FindData(0, []byte("target")); err == nil {
		t.Fatal("expected NotFound once the row's content is tombstoned")
	}
}

func TestPage_FindValueNeverMatchesPE(t *testing.T) {
	p := NewPage(NewName("p1"), 32)
	p.Append([]byte{0x01, 0x02})
	p.Delete(1, 1)
	if _, err := p.FindValue(0, PE); err == nil {
		t.Fatal("want NotFound when searching for PE itself")
	} else if !errors.Is(err, NotFound) {
		t.Fatalf("got %v, want NotFound", err)
	}
}

func TestPage_FindDataRow_S4Scenario(t *testing.T) {
	// Two appends leave two RD sentinels on the wire. A value located in
	// the second row must report row index 1, not 2, even though two RD
	// bytes precede it.
	p := NewPage(NewName("p1"), 32)
	if err := p.Append([]byte{0x01, 0x02, 0x03}); err != nil {
		t.Fatalf("append 1: %v", err)
	}
	if err := p.Append([]byte{0x04, 0x05}); err != nil {
		t.Fatalf("append 2: %v", err)
	}
	row, err := p.FindValueRow(0, 0x04)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if row != 1 {
		t.Errorf("got row %d, want 1", row)
	}
}

func TestName_StringTrimsPadding(t *testing.T) {
	n := NewName("abc")
	if n.String() != "abc" {
		t.Errorf("got %q, want %q", n.String(), "abc")
	}
}
