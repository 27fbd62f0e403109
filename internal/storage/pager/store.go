package pager

import (
	"fmt"
	"os"
	"path/filepath"
)

// Extension identifies which on-disk file kind an object belongs to
// (spec.md §4.1).
type Extension string

const (
	ExtPage      Extension = "pg"
	ExtDirectory Extension = "dr"
	ExtTable     Extension = "tb"
	ExtDatabase  Extension = "db"
)

// magicFor returns the expected leading byte for ext, used to validate
// reads before they are handed to a codec.
func magicFor(ext Extension) byte {
	switch ext {
	case ExtPage:
		return PageMagic
	case ExtDirectory:
		return DirectoryMagic
	case ExtTable:
		return TableMagic
	case ExtDatabase:
		return DatabaseMagic
	default:
		return 0
	}
}

// ObjectStore resolves an 8-byte object name to a file under Base and
// performs whole-file reads/writes (spec.md §4.1). It does no locking of
// its own — concurrency is arbitrated entirely in memory via the lock
// registry (spec.md §5).
type ObjectStore struct {
	Base string
}

// NewObjectStore creates a store rooted at base. base is created if it
// does not already exist.
func NewObjectStore(base string) (*ObjectStore, error) {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return nil, newErr(KindIoError, "new_object_store", "", err)
	}
	return &ObjectStore{Base: base}, nil
}

func (s *ObjectStore) path(name Name, ext Extension) string {
	return filepath.Join(s.Base, fmt.Sprintf("%s.%s", name.String(), ext))
}

// Read loads the raw bytes for name.ext, validating the leading magic
// byte before returning.
func (s *ObjectStore) Read(name Name, ext Extension) ([]byte, error) {
	p := s.path(name, ext)
	buf, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, newErr(KindNotFound, "read", name.String(), err)
		}
		return nil, newErr(KindIoError, "read", name.String(), err)
	}
	if len(buf) == 0 || buf[0] != magicFor(ext) {
		return nil, newErr(KindCorruptMagic, "read", name.String(), fmt.Errorf("file %s has bad magic", p))
	}
	return buf, nil
}

// Write performs a whole-file rewrite of name.ext: data is written to a
// temp file in the same directory and atomically renamed over the target,
// so a reader never observes a partial write (spec.md §4.1: "either the
// file contains the new content or the prior content").
func (s *ObjectStore) Write(name Name, ext Extension, data []byte) error {
	target := s.path(name, ext)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return newErr(KindIoError, "write", name.String(), err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return newErr(KindIoError, "write", name.String(), err)
	}
	return nil
}

// Unlink removes name.ext from the store.
func (s *ObjectStore) Unlink(name Name, ext Extension) error {
	p := s.path(name, ext)
	if err := os.Remove(p); err != nil {
		if os.IsNotExist(err) {
			return newErr(KindNotFound, "unlink", name.String(), err)
		}
		return newErr(KindIoError, "unlink", name.String(), err)
	}
	return nil
}

// Exists reports whether name.ext has a backing file, without reading it.
func (s *ObjectStore) Exists(name Name, ext Extension) bool {
	_, err := os.Stat(s.path(name, ext))
	return err == nil
}
