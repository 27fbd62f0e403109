package pager

// DirectoryManager is the facade combining the directory codec, the
// object store, and the DDT (directory descriptor table) — spec.md §4.5.
// It also exposes page-level edits scoped to a directory's page list, by
// delegating to a companion PageManager (spec.md §4.5: "directory manager
// exposes analogous page-level edits").
//
// As with PageManager, ddt is nil when cfg.Enabled is false: Load reads
// straight from the object store and Create returns an uncached
// directory, with no admission scan or eviction bookkeeping, and
// directories carry a no-op Lock.
type DirectoryManager struct {
	store *ObjectStore
	ddt   *descriptorTable[*Directory]
	pages *PageManager
	cfg   Config
}

// NewDirectoryManager opens (or creates) the object store at cfg.BaseDir
// and binds pages as the PageManager used to resolve pages referenced by
// a directory. The DDT is sized to cfg.DirectoryCapacity, or omitted
// entirely when cfg.Enabled is false.
func NewDirectoryManager(cfg Config, pages *PageManager) (*DirectoryManager, error) {
	store, err := NewObjectStore(cfg.BaseDir)
	if err != nil {
		return nil, err
	}
	var ddt *descriptorTable[*Directory]
	if cfg.Enabled {
		ddt = newDescriptorTable(cfg.DirectoryCapacity, store, codec[*Directory]{
			ext:    ExtDirectory,
			encode: EncodeDirectory,
			decode: DecodeDirectory,
		})
	}
	return &DirectoryManager{store: store, ddt: ddt, pages: pages, cfg: cfg}, nil
}

// Load returns the directory named name, from cache if present, else from
// disk, admitting a disk hit into the DDT before returning it, unless the
// DDT is disabled, in which case every Load reads through.
func (m *DirectoryManager) Load(name Name, owner OwnerID) (*Directory, error) {
	if m.ddt != nil {
		if d, ok := m.ddt.Find(name); ok {
			return d, nil
		}
	}
	raw, err := m.store.Read(name, ExtDirectory)
	if err != nil {
		return nil, err
	}
	d, err := DecodeDirectory(raw)
	if err != nil {
		return nil, err
	}
	d.Lock.setNoop(!m.cfg.Enabled)
	if m.ddt == nil {
		return d, nil
	}
	existing, present, err := m.ddt.Add(d, owner)
	if err != nil {
		return nil, rejectedToBusy("load", name.String(), err)
	}
	if present {
		return existing, nil
	}
	return d, nil
}

// Create allocates a brand-new, empty directory named name. It is
// admitted into the DDT, unless the DDT is disabled, in which case the
// directory is simply returned uncached.
func (m *DirectoryManager) Create(name Name, owner OwnerID) (*Directory, error) {
	d := NewDirectory(name)
	d.Lock.setNoop(!m.cfg.Enabled)
	if m.ddt == nil {
		return d, nil
	}
	existing, present, err := m.ddt.Add(d, owner)
	if err != nil {
		return nil, rejectedToBusy("create", name.String(), err)
	}
	if present {
		return existing, nil
	}
	return d, nil
}

// Save encodes and writes d to the object store without evicting it from
// the cache.
func (m *DirectoryManager) Save(d *Directory) error {
	return m.store.Write(d.Name, ExtDirectory, EncodeDirectory(d))
}

// Free releases d: if the DDT is enabled and d is cached, it is flushed.
// With the DDT disabled there is nothing cached to evict, so Free
// degrades to an explicit Save.
func (m *DirectoryManager) Free(d *Directory) error {
	if m.ddt == nil {
		return m.Save(d)
	}
	return m.ddt.FlushObject(d)
}

// Flush is Free with explicit write-back semantics.
func (m *DirectoryManager) Flush(d *Directory) error {
	return m.Free(d)
}

// Sync flushes and reloads every cached directory. With the DDT disabled
// there is no cache to sweep, so Sync is a no-op.
func (m *DirectoryManager) Sync(owner OwnerID) error {
	if m.ddt == nil {
		return nil
	}
	return m.ddt.Sync(owner)
}

// Clear flushes every cached directory without reloading. With the DDT
// disabled, Clear is a no-op.
func (m *DirectoryManager) Clear(owner OwnerID) error {
	if m.ddt == nil {
		return nil
	}
	return m.ddt.Clear(owner)
}

// Unlink removes the directory's on-disk file entirely.
func (m *DirectoryManager) Unlink(name Name) error {
	return m.store.Unlink(name, ExtDirectory)
}

// AddPage appends page to d's list, persists the directory immediately so
// the membership change survives eviction, and creates the backing page
// file if it does not already exist.
func (m *DirectoryManager) AddPage(d *Directory, page Name, owner OwnerID) error {
	if err := d.AddPage(page); err != nil {
		return err
	}
	if !m.pages.store.Exists(page, ExtPage) {
		p, err := m.pages.Create(page, owner)
		if err != nil {
			return err
		}
		if err := m.pages.Save(p); err != nil {
			return err
		}
	}
	return m.Save(d)
}

// RemovePage removes page from d's list and persists the directory. The
// backing page file itself is left untouched — callers wanting it gone
// must Unlink it explicitly through the PageManager (spec.md §3
// Lifecycles: on-disk files outlive in-memory membership).
func (m *DirectoryManager) RemovePage(d *Directory, page Name) error {
	d.RemovePage(page)
	return m.Save(d)
}

// LoadPageAt resolves the i'th page referenced by d through the companion
// PageManager.
func (m *DirectoryManager) LoadPageAt(d *Directory, i int, owner OwnerID) (*Page, error) {
	if i < 0 || i >= len(d.Pages) {
		return nil, newErr(KindNotFound, "load_page_at", d.Name.String(), nil)
	}
	return m.pages.Load(d.Pages[i], owner)
}

// CacheCapacity returns the DDT's slot count, or 0 when the cache is
// disabled (spec.md §4.4 capacity()).
func (m *DirectoryManager) CacheCapacity() int {
	if m.ddt == nil {
		return 0
	}
	return m.ddt.Capacity()
}

// FlushSlot writes back and evicts whatever occupies DDT slot i
// (spec.md §4.4 flush_index(i) → Ok | Empty). With the cache disabled
// there are no slots, so FlushSlot reports Empty (false, nil).
func (m *DirectoryManager) FlushSlot(i int) (flushed bool, err error) {
	if m.ddt == nil {
		return false, nil
	}
	return m.ddt.FlushIndex(i)
}
