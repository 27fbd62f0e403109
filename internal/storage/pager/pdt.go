package pager

// PageManager is the facade combining the page codec, the object store,
// and the PDT (page descriptor table) — spec.md §4.5. It is the only way
// callers should touch pages; the cache and lock registry are otherwise
// internal wiring.
//
// When cfg.Enabled is false, pdt is nil: the manager runs in the
// single-threaded pass-through mode spec.md §5 and §9 REDESIGN FLAGS
// describe for NO_PDT — every Load reads straight from the object store
// and every Create returns an uncached page, with no admission scan and
// no eviction bookkeeping, and the
// pages it hands out carry a no-op Lock (see lock.go), so no caller can
// ever observe contention through them.
type PageManager struct {
	store *ObjectStore
	pdt   *descriptorTable[*Page]
	cfg   Config
}

// NewPageManager opens (or creates) the object store at cfg.BaseDir. The
// PDT is sized to cfg.PageCapacity, or omitted entirely when cfg.Enabled
// is false.
func NewPageManager(cfg Config) (*PageManager, error) {
	store, err := NewObjectStore(cfg.BaseDir)
	if err != nil {
		return nil, err
	}
	var pdt *descriptorTable[*Page]
	if cfg.Enabled {
		pdt = newDescriptorTable(cfg.PageCapacity, store, codec[*Page]{
			ext:    ExtPage,
			encode: EncodePage,
			decode: func(b []byte) (*Page, error) { return DecodePage(b, cfg.PageContentSize) },
		})
	}
	return &PageManager{store: store, pdt: pdt, cfg: cfg}, nil
}

// rejectedToBusy converts a Rejected error (the descriptor table is fully
// contended) into Busy, the sub-kind spec.md §4.5 documents for Load:
// "If add is Rejected (fully contended), return NotFound with a Busy
// sub-kind — callers retry." In practice that means callers should see a
// retryable Busy, not a permanent NotFound.
func rejectedToBusy(op, name string, err error) error {
	if kind, ok := KindOf(err); ok && kind == KindRejected {
		return newErr(KindBusy, op, name, err)
	}
	return err
}

// Load returns the page named name, from cache if present, else from
// disk. A disk hit is admitted into the PDT before being returned, unless
// the PDT is disabled, in which case every Load reads through.
func (m *PageManager) Load(name Name, owner OwnerID) (*Page, error) {
	if m.pdt != nil {
		if p, ok := m.pdt.Find(name); ok {
			return p, nil
		}
	}
	raw, err := m.store.Read(name, ExtPage)
	if err != nil {
		return nil, err
	}
	p, err := DecodePage(raw, m.cfg.PageContentSize)
	if err != nil {
		return nil, err
	}
	p.Lock.setNoop(!m.cfg.Enabled)
	if m.pdt == nil {
		return p, nil
	}
	existing, present, err := m.pdt.Add(p, owner)
	if err != nil {
		return nil, rejectedToBusy("load", name.String(), err)
	}
	if present {
		return existing, nil
	}
	return p, nil
}

// Create allocates a brand-new, empty page named name. It is admitted
// into the PDT, unless the PDT is disabled, in which case the page is
// simply returned uncached. Used both for explicit creation and for the
// lazy allocate-on-overflow path the database layer drives (spec.md §3
// Lifecycles).
func (m *PageManager) Create(name Name, owner OwnerID) (*Page, error) {
	p := NewPage(name, m.cfg.PageContentSize)
	p.Lock.setNoop(!m.cfg.Enabled)
	if m.pdt == nil {
		return p, nil
	}
	existing, present, err := m.pdt.Add(p, owner)
	if err != nil {
		return nil, rejectedToBusy("create", name.String(), err)
	}
	if present {
		return existing, nil
	}
	return p, nil
}

// Save encodes and writes p to the object store. It does not evict p from
// the cache (spec.md §4.5).
func (m *PageManager) Save(p *Page) error {
	return m.store.Write(p.Name, ExtPage, EncodePage(p))
}

// Free releases p: if the PDT is enabled and p is cached, it is flushed
// (write-back + evict). With the PDT disabled there is nothing cached to
// evict, so Free degrades to an explicit Save — the pass-through mode's
// stand-in for write-back (spec.md §4.5, §7).
func (m *PageManager) Free(p *Page) error {
	if m.pdt == nil {
		return m.Save(p)
	}
	return m.pdt.FlushObject(p)
}

// Flush is Free with explicit write-back semantics (spec.md §4.5: "flush
// = flush_object with explicit semantics" — the two are the same
// operation under different names for callers who want to be read
// unambiguously at the call site).
func (m *PageManager) Flush(p *Page) error {
	return m.Free(p)
}

// Sync flushes and reloads every cached page — the durability barrier.
// With the PDT disabled there is no cache to sweep, so Sync is a no-op.
func (m *PageManager) Sync(owner OwnerID) error {
	if m.pdt == nil {
		return nil
	}
	return m.pdt.Sync(owner)
}

// Clear flushes every cached page without reloading. With the PDT
// disabled, Clear is a no-op.
func (m *PageManager) Clear(owner OwnerID) error {
	if m.pdt == nil {
		return nil
	}
	return m.pdt.Clear(owner)
}

// Unlink removes the page's on-disk file entirely (a higher-level
// "unlink" call, spec.md §3 Lifecycles — the on-disk file outlives any
// in-memory object unless explicitly unlinked).
func (m *PageManager) Unlink(name Name) error {
	return m.store.Unlink(name, ExtPage)
}

// CacheCapacity returns the PDT's slot count, or 0 when the cache is
// disabled (spec.md §4.4 capacity()).
func (m *PageManager) CacheCapacity() int {
	if m.pdt == nil {
		return 0
	}
	return m.pdt.Capacity()
}

// FlushSlot writes back and evicts whatever occupies PDT slot i
// (spec.md §4.4 flush_index(i) → Ok | Empty). With the cache disabled
// there are no slots, so FlushSlot reports Empty (false, nil).
func (m *PageManager) FlushSlot(i int) (flushed bool, err error) {
	if m.pdt == nil {
		return false, nil
	}
	return m.pdt.FlushIndex(i)
}
