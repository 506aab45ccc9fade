package backend

import (
	"sync"

	"github.com/halfmoon-dev/gitobj/config"
	"github.com/halfmoon-dev/gitobj/internal/cache"
	"github.com/halfmoon-dev/gitobj/internal/syncutil"
	"github.com/halfmoon-dev/gitobj/plumbing/packfile"
	"github.com/spf13/afero"
)

// we make sure the struct implements the interface
var _ Backend = (*FS)(nil)

// objectCacheSize is the number of decoded objects kept in the LRU
// cache shared by loose and packed reads.
const objectCacheSize = 256

// refMutexStripes bounds the number of independent locks used to
// serialize access to a given object/reference name.
const refMutexStripes = 256

// FS is a Backend implementation that stores objects and references on
// a filesystem (real or virtualized through afero.Fs).
type FS struct {
	fs     afero.Fs
	config *config.Config

	cache *cache.LRU

	objectMu *syncutil.NamedMutex
	refMu    *syncutil.NamedMutex

	packfiles map[string]*packfile.Pack
	// looseObjects tracks the set of oids that are known to be stored
	// as loose objects. Values are struct{}{}.
	looseObjects sync.Map
	// refs maps a reference name to its raw on-disk content.
	refs sync.Map
}

// NewFS returns a Backend that stores its data on the filesystem
// described by cfg. The repository is not required to exist yet; call
// Init to create it.
func NewFS(cfg *config.Config) (*FS, error) {
	fs := cfg.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}

	b := &FS{
		fs:        fs,
		config:    cfg,
		cache:     cache.NewLRU(objectCacheSize),
		objectMu:  syncutil.NewNamedMutex(refMutexStripes),
		refMu:     syncutil.NewNamedMutex(refMutexStripes),
		packfiles: map[string]*packfile.Pack{},
	}

	if err := b.loadPacks(); err != nil {
		return nil, err
	}
	if err := b.loadLooseObject(); err != nil {
		return nil, err
	}
	if err := b.loadRefs(); err != nil {
		return nil, err
	}

	return b, nil
}

// Close releases the resources held by the backend.
func (b *FS) Close() error {
	return nil
}

// Path returns the path to the .git directory.
func (b *FS) Path() string {
	return b.config.GitDirPath
}

// ObjectsPath returns the path to the object database.
func (b *FS) ObjectsPath() string {
	return b.config.ObjectDirPath
}
