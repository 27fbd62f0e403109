package pager

import "testing"

func newTestPageManager(t *testing.T, capacity int) *PageManager {
	t.Helper()
	cfg := DefaultConfig(t.TempDir())
	cfg.PageCapacity = capacity
	cfg.PageContentSize = 16
	m, err := NewPageManager(cfg)
	if err != nil {
		t.Fatalf("new page manager: %v", err)
	}
	return m
}

func TestPageManager_CreateLoadSave(t *testing.T) {
	m := newTestPageManager(t, 4)
	owner := NewOwnerID()
	name := NewName("p1")

	p, err := m.Create(name, owner)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := p.Append([]byte("hi")); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := m.Save(p); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := m.Load(name, owner)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != p {
		t.Fatal("Load should return the cached pointer when still in the PDT")
	}
}

func TestPageManager_LoadFromDiskAfterEviction(t *testing.T) {
	m := newTestPageManager(t, 1)
	owner := NewOwnerID()
	nameA := NewName("a")
	nameB := NewName("b")

	pa, err := m.Create(nameA, owner)
	if err != nil {
		t.Fatalf("create a: %v", err)
	}
	pa.Append([]byte("x"))
	if err := m.Save(pa); err != nil {
		t.Fatalf("save a: %v", err)
	}

	// Creating b evicts a's slot (capacity 1), flushing a to disk first.
	if _, err := m.Create(nameB, owner); err != nil {
		t.Fatalf("create b: %v", err)
	}

	reloaded, err := m.Load(nameA, owner)
	if err != nil {
		t.Fatalf("load a after eviction: %v", err)
	}
	if reloaded.SizeUsed != pa.SizeUsed {
		t.Errorf("size_used mismatch after reload")
	}
}

func TestPageManager_LoadMissingIsNotFound(t *testing.T) {
	m := newTestPageManager(t, 4)
	_, err := m.Load(NewName("nope"), NewOwnerID())
	if kind, ok := KindOf(err); !ok || kind != KindNotFound {
		t.Fatalf("got %v, want NotFound", err)
	}
}

func TestPageManager_FreeAndUnlink(t *testing.T) {
	m := newTestPageManager(t, 4)
	owner := NewOwnerID()
	name := NewName("p1")
	p, _ := m.Create(name, owner)
	if err := m.Free(p); err != nil {
		t.Fatalf("free: %v", err)
	}
	if err := m.Unlink(name); err != nil {
		t.Fatalf("unlink: %v", err)
	}
	if _, err := m.Load(name, owner); err == nil {
		t.Fatal("want NotFound after unlink")
	}
}

func TestPageManager_SyncAndClear(t *testing.T) {
	m := newTestPageManager(t, 2)
	owner := NewOwnerID()
	p, _ := m.Create(NewName("p1"), owner)
	p.Append([]byte("data"))

	if err := m.Sync(owner); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if err := m.Clear(owner); err != nil {
		t.Fatalf("clear: %v", err)
	}
}

func TestPageManager_CacheCapacityAndFlushSlot(t *testing.T) {
	m := newTestPageManager(t, 3)
	if got := m.CacheCapacity(); got != 3 {
		t.Fatalf("got %d, want 3", got)
	}

	owner := NewOwnerID()
	p, _ := m.Create(NewName("p1"), owner)
	p.Append([]byte("x"))

	flushed, err := m.FlushSlot(0)
	if err != nil {
		t.Fatalf("flush slot 0: %v", err)
	}
	if !flushed {
		t.Fatal("expected slot 0 to hold p1 and be flushed")
	}
	if _, ok := m.pdt.Find(NewName("p1")); ok {
		t.Fatal("p1 should be evicted after FlushSlot")
	}

	// A second flush of the now-empty slot reports Empty, not an error.
	flushed, err = m.FlushSlot(0)
	if err != nil {
		t.Fatalf("flush empty slot: %v", err)
	}
	if flushed {
		t.Fatal("expected Empty (false) flushing an already-empty slot")
	}
}

func newDisabledPageManager(t *testing.T) *PageManager {
	t.Helper()
	cfg := DefaultConfig(t.TempDir())
	cfg.PageContentSize = 16
	cfg.Enabled = false
	m, err := NewPageManager(cfg)
	if err != nil {
		t.Fatalf("new page manager: %v", err)
	}
	return m
}

func TestPageManager_DisabledIsPassthrough(t *testing.T) {
	m := newDisabledPageManager(t)
	if got := m.CacheCapacity(); got != 0 {
		t.Fatalf("got %d, want 0 (no cache when disabled)", got)
	}

	owner := NewOwnerID()
	name := NewName("p1")
	p, err := m.Create(name, owner)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	p.Append([]byte("data"))
	if err := m.Free(p); err != nil {
		t.Fatalf("free: %v", err)
	}

	// Nothing was cached, so Load must read the just-persisted bytes back
	// from disk rather than finding a shared in-memory object.
	got, err := m.Load(name, owner)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got == p {
		t.Fatal("disabled mode must never hand back a cached pointer")
	}
	if got.SizeUsed != p.SizeUsed {
		t.Errorf("size_used mismatch: got %d, want %d", got.SizeUsed, p.SizeUsed)
	}
}

func TestPageManager_DisabledLockIsNoop(t *testing.T) {
	m := newDisabledPageManager(t)
	a, b := NewOwnerID(), NewOwnerID()

	p, err := m.Create(NewName("p1"), a)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res := p.Lock.TryLock(a); res != Acquired {
		t.Fatalf("got %v, want Acquired", res)
	}
	// A second, different owner must never see contention in disabled mode.
	if res := p.Lock.TryLock(b); res != Acquired {
		t.Fatalf("got %v, want Acquired (no-op lock never contends)", res)
	}
	if p.Lock.IsLocked() {
		t.Fatal("no-op lock must never report locked")
	}

	// Sync/Clear are no-ops with the cache disabled.
	if err := m.Sync(a); err != nil {
		t.Fatalf("sync: %v", err)
	}
	if err := m.Clear(a); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if flushed, err := m.FlushSlot(0); err != nil || flushed {
		t.Fatalf("flush slot on disabled cache: flushed=%v err=%v", flushed, err)
	}
}
