package pager

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config configures the object store and both descriptor-table caches.
// Grounded on the teacher's StorageConfig/DefaultStorageConfig pattern
// (internal/storage/storage_backend.go): a typed config struct with a
// defaults constructor, loadable from YAML.
type Config struct {
	// BaseDir is the directory holding all *.pg/*.dr/*.tb/*.db files.
	BaseDir string `yaml:"base_dir"`

	// PageCapacity is P, the PDT slot count. Default 1024 (spec.md §6).
	PageCapacity int `yaml:"page_capacity"`

	// DirectoryCapacity is D, the DDT slot count. Default 10 (spec.md §6).
	DirectoryCapacity int `yaml:"directory_capacity"`

	// PageContentSize is the page payload capacity in bytes. Default 4096.
	PageContentSize int `yaml:"page_content_size"`

	// Enabled selects the real bounded cache and real locking when true.
	// When false, PageManager/DirectoryManager omit the descriptor table
	// entirely (every Load reads straight from the object store and every
	// Create returns an uncached object, with no admission scan and no
	// eviction bookkeeping) and hand out objects
	// whose Lock is a no-op — the runtime replacement for the original's
	// compile-time NO_PDT/NO_DDT toggle and the single-threaded mode
	// spec.md §5 and §9 REDESIGN FLAGS call for.
	Enabled bool `yaml:"enabled"`
}

// DefaultConfig returns a Config with the sizes spec.md §6 documents as
// conservative defaults.
func DefaultConfig(baseDir string) Config {
	return Config{
		BaseDir:           baseDir,
		PageCapacity:      1024,
		DirectoryCapacity: 10,
		PageContentSize:   PageContentSize,
		Enabled:           true,
	}
}

// LoadConfig reads a YAML config file at path and overlays it onto
// DefaultConfig(""). Any field the file omits keeps its default; BaseDir
// must be set by the file or by the caller afterwards.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig("")
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, newErr(KindIoError, "load_config", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, newErr(KindCorruptFormat, "load_config", path, err)
	}
	return cfg, nil
}
