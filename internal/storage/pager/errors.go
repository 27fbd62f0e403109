package pager

import "fmt"

// ErrorKind classifies the failure modes of the storage core. It replaces
// the original C source's overloaded integer return codes (see spec §6)
// with a closed, typed error taxonomy.
type ErrorKind uint8

const (
	// KindNotFound indicates the named object has no backing file.
	KindNotFound ErrorKind = iota
	// KindCorruptMagic indicates a file's leading magic byte did not match
	// the expected value for its object kind.
	KindCorruptMagic
	// KindCorruptFormat indicates a malformed or truncated encoding.
	KindCorruptFormat
	// KindBusy indicates lock contention that the caller may retry.
	KindBusy
	// KindOverflow indicates a page had insufficient free space for an
	// append, or a directory already references its maximum number of pages.
	KindOverflow
	// KindTruncated indicates an insert wrote fewer bytes than requested
	// because it ran past the end of the page.
	KindTruncated
	// KindRejected indicates every descriptor-table slot was locked by
	// another owner and admission could not proceed.
	KindRejected
	// KindIoError indicates an underlying filesystem failure.
	KindIoError
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindCorruptMagic:
		return "corrupt_magic"
	case KindCorruptFormat:
		return "corrupt_format"
	case KindBusy:
		return "busy"
	case KindOverflow:
		return "overflow"
	case KindTruncated:
		return "truncated"
	case KindRejected:
		return "rejected"
	case KindIoError:
		return "io_error"
	default:
		return fmt.Sprintf("ErrorKind(%d)", uint8(k))
	}
}

// StorageError is the error type returned by every fallible operation in
// this package. Op names the failing operation (e.g. "load", "flush_index")
// for diagnostics; Err, when non-nil, wraps the underlying cause.
type StorageError struct {
	Kind ErrorKind
	Op   string
	Name string // object name involved, if any
	Err  error
}

func (e *StorageError) Error() string {
	if e.Err != nil {
		if e.Name != "" {
			return fmt.Sprintf("%s %s(%s): %s: %v", e.Kind, e.Op, e.Name, e.Kind, e.Err)
		}
		return fmt.Sprintf("%s %s: %v", e.Op, e.Kind, e.Err)
	}
	if e.Name != "" {
		return fmt.Sprintf("%s %s(%s)", e.Op, e.Kind, e.Name)
	}
	return fmt.Sprintf("%s %s", e.Op, e.Kind)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is reports whether target is a *StorageError with the same Kind, which
// lets callers write errors.Is(err, pager.NotFound) style checks against
// the sentinel values below.
func (e *StorageError) Is(target error) bool {
	t, ok := target.(*StorageError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newErr(kind ErrorKind, op, name string, cause error) *StorageError {
	return &StorageError{Kind: kind, Op: op, Name: name, Err: cause}
}

// Sentinel values usable with errors.Is(err, pager.NotFound), etc. Only
// Kind is compared (see StorageError.Is), so these carry no Op/Name/Err.
var (
	NotFound      = &StorageError{Kind: KindNotFound}
	CorruptMagic  = &StorageError{Kind: KindCorruptMagic}
	CorruptFormat = &StorageError{Kind: KindCorruptFormat}
	Busy          = &StorageError{Kind: KindBusy}
	Overflow      = &StorageError{Kind: KindOverflow}
	Truncated     = &StorageError{Kind: KindTruncated}
	Rejected      = &StorageError{Kind: KindRejected}
	IoError       = &StorageError{Kind: KindIoError}
)

// KindOf extracts the ErrorKind from err, if it (or something it wraps) is
// a *StorageError. The second return is false otherwise.
func KindOf(err error) (ErrorKind, bool) {
	var se *StorageError
	for err != nil {
		if s, ok := err.(*StorageError); ok {
			se = s
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	if se == nil {
		return 0, false
	}
	return se.Kind, true
}
