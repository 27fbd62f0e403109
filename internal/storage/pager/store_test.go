package pager

import (
	"os"
	"path/filepath"
	"testing"
)

func TestObjectStore_WriteReadRoundTrip(t *testing.T) {
	store, err := NewObjectStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	name := NewName("p1")
	p := NewPage(name, 16)
	p.Append([]byte("hi"))

	if err := store.Write(name, ExtPage, EncodePage(p)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !store.Exists(name, ExtPage) {
		t.Fatal("expected file to exist after write")
	}

	raw, err := store.Read(name, ExtPage)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	got, err := DecodePage(raw, 16)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.SizeUsed != p.SizeUsed {
		t.Errorf("size_used mismatch after round trip")
	}
}

func TestObjectStore_ReadMissingIsNotFound(t *testing.T) {
	store, _ := NewObjectStore(t.TempDir())
	_, err := store.Read(NewName("nope"), ExtPage)
	if kind, ok := KindOf(err); !ok || kind != KindNotFound {
		t.Fatalf("got %v, want NotFound", err)
	}
}

func TestObjectStore_ReadBadMagic(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewObjectStore(dir)
	name := NewName("p1")
	if err := os.WriteFile(filepath.Join(dir, name.String()+".pg"), []byte{0x00, 1, 2, 3}, 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	_, err := store.Read(name, ExtPage)
	if kind, ok := KindOf(err); !ok || kind != KindCorruptMagic {
		t.Fatalf("got %v, want CorruptMagic", err)
	}
}

func TestObjectStore_WriteIsAtomic(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewObjectStore(dir)
	name := NewName("p1")
	if err := store.Write(name, ExtPage, []byte{PageMagic, 1, 2, 3}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, name.String()+".pg.tmp")); !os.IsNotExist(err) {
		t.Fatal("temp file should not survive a successful write")
	}
}

func TestObjectStore_Unlink(t *testing.T) {
	store, _ := NewObjectStore(t.TempDir())
	name := NewName("p1")
	store.Write(name, ExtPage, []byte{PageMagic})
	if err := store.Unlink(name, ExtPage); err != nil {
		t.Fatalf("unlink: %v", err)
	}
	if store.Exists(name, ExtPage) {
		t.Fatal("expected file gone after unlink")
	}
	if err := store.Unlink(name, ExtPage); err == nil {
		t.Fatal("want NotFound unlinking a second time")
	}
}
