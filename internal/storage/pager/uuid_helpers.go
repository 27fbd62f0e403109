package pager

import (
	"github.com/google/uuid"
)

// OwnerID identifies the caller of a lock operation. The original source
// used the OpenMP thread number (a dense int); spec.md §9 REDESIGN FLAGS
// requires an opaque identity instead, so OwnerID wraps a uuid.UUID the
// way the teacher identifies sessions/requests (see uuid_helpers.go in
// the teacher's internal/storage package).
type OwnerID uuid.UUID

// NoOwner is the sentinel "nobody" owner, equivalent to the original's
// owner == NONE.
var NoOwner OwnerID

// NewOwnerID mints a fresh, process-unique owner identity. Call this once
// per logical caller (goroutine, request, session) and reuse the result
// for every lock/unlock pair that caller issues.
func NewOwnerID() OwnerID {
	return OwnerID(uuid.New())
}

// ParseOwnerID parses a UUID string into an OwnerID.
func ParseOwnerID(s string) (OwnerID, error) {
	u, err := uuid.Parse(s)
	return OwnerID(u), err
}

func (o OwnerID) String() string { return uuid.UUID(o).String() }

// IsNone reports whether o is the sentinel "nobody" owner.
func (o OwnerID) IsNone() bool { return o == NoOwner }
