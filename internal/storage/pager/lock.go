package pager

import "sync"

// LockState is the transient state of a Lock (spec.md §3).
type LockState uint8

const (
	Unlocked LockState = iota
	Locked
)

// TryLockResult is the outcome of a TryLock call.
type TryLockResult uint8

const (
	Acquired TryLockResult = iota
	AlreadyHeldByOther
)

// Lock is transient, in-memory-only per-object state: it is never
// persisted (spec.md §3). It lives inside the object's own representation,
// matching the original C source where `lock` is a field of `page_t`/
// `directory_t`, not a registry keyed externally.
//
// noop switches l into the single-threaded runtime mode spec.md §5 and §9
// REDESIGN FLAGS call for: every TryLock trivially succeeds and no state
// is ever recorded, so two owners can never observe contention through
// this lock. It is set by the manager facades when Config.Enabled is
// false, never by direct callers.
type Lock struct {
	mu    sync.Mutex
	state LockState
	owner OwnerID
	noop  bool
}

// setNoop switches l's mode. Called once, at object creation/reload time,
// by the manager facades — never concurrently with real lock traffic on
// the same object.
func (l *Lock) setNoop(noop bool) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.noop = noop
}

// TryLock attempts to acquire l on behalf of owner. Re-entrant: a second
// TryLock by the current owner succeeds idempotently (spec.md §3 / §8
// property 4). A different owner fails with AlreadyHeldByOther while the
// lock is held (property 3). In noop mode, TryLock always succeeds and
// never records a holder.
func (l *Lock) TryLock(owner OwnerID) TryLockResult {
	if l == nil {
		// Locking a null object reference is a no-op that succeeds
		// (spec.md §4.3, see DESIGN.md). The descriptor table's admission
		// path does not call TryLock for an empty slot at all.
		return Acquired
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.noop {
		return Acquired
	}
	switch l.state {
	case Unlocked:
		l.state = Locked
		l.owner = owner
		return Acquired
	default: // Locked
		if l.owner == owner {
			return Acquired
		}
		return AlreadyHeldByOther
	}
}

// UnlockResult is the outcome of an Unlock call.
type UnlockResult uint8

const (
	UnlockOK UnlockResult = iota
	NotOwner
)

// Unlock releases l on behalf of owner. Unlocking by anyone but the
// current holder fails with NotOwner and has no effect. In noop mode,
// Unlock always succeeds since no holder is ever recorded.
func (l *Lock) Unlock(owner OwnerID) UnlockResult {
	if l == nil {
		return UnlockOK
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.noop {
		return UnlockOK
	}
	if l.state == Unlocked {
		return UnlockOK
	}
	if l.owner != owner {
		return NotOwner
	}
	l.state = Unlocked
	l.owner = NoOwner
	return UnlockOK
}

// IsLocked reports whether l is currently held by anyone. Always false in
// noop mode.
func (l *Lock) IsLocked() bool {
	if l == nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return !l.noop && l.state == Locked
}

// HeldBy reports whether l is currently held by owner. Always false in
// noop mode.
func (l *Lock) HeldBy(owner OwnerID) bool {
	if l == nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return !l.noop && l.state == Locked && l.owner == owner
}
