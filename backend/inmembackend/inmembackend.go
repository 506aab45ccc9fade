// Package inmembackend is a backend.Backend implementation that keeps
// the entire object database and reference set in memory, backed by
// plain Go maps rather than a filesystem. It's meant for tests and
// other short-lived repositories where the cost of touching disk
// isn't worth paying.
package inmembackend

import (
	"fmt"
	"sort"
	"sync"

	"github.com/halfmoon-dev/gitobj/backend"
	"github.com/halfmoon-dev/gitobj/ginternals"
	"github.com/halfmoon-dev/gitobj/plumbing"
	"github.com/halfmoon-dev/gitobj/plumbing/object"
	"github.com/halfmoon-dev/gitobj/plumbing/packfile"
)

// we make sure the struct implements the interface
var _ backend.Backend = (*Backend)(nil)

// Backend is a Backend implementation that never touches disk. Objects
// are stored by oid, and references by name, both in plain maps guarded
// by a single mutex. It never has packed objects: everything lives in
// the loose side of the map, so WalkPackedObjectIDs is always a no-op.
type Backend struct {
	mu sync.RWMutex

	objects map[plumbing.Oid]*object.Object
	// refs stores the raw ref content, the same way the on-disk format
	// does ("ref: <target>\n" or "<oid>\n"), so plumbing.ResolveReference
	// can be reused as-is.
	refs map[string][]byte
}

// New returns an empty, ready to use in-memory backend. Init still
// needs to be called to create the default branch pointed at by HEAD.
func New() *Backend {
	return &Backend{
		objects: map[plumbing.Oid]*object.Object{},
		refs:    map[string][]byte{},
	}
}

// Close is a no-op: there's no file handle or connection to release.
func (b *Backend) Close() error {
	return nil
}

// Init creates the default branch pointed at by HEAD. Calling it again
// on an already-initialized backend is a no-op.
func (b *Backend) Init(branchName string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.refs[plumbing.Head]; ok {
		return nil
	}

	branchRef := ginternals.LocalBranchFullName(branchName)
	b.refs[plumbing.Head] = []byte(fmt.Sprintf("ref: %s\n", branchRef))
	return nil
}

// Reference returns a stored reference from its name, resolving any
// symbolic chain.
func (b *Backend) Reference(name string) (*plumbing.Reference, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	finder := func(name string) ([]byte, error) {
		data, ok := b.refs[name]
		if !ok {
			return nil, fmt.Errorf(`ref "%s": %w`, name, plumbing.ErrNotFound)
		}
		return data, nil
	}
	return plumbing.ResolveReference(name, finder)
}

// WriteReference stores the given reference, overwriting it if it
// already exists.
func (b *Backend) WriteReference(ref *plumbing.Reference) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.writeReferenceLocked(ref)
}

// WriteReferenceSafe stores the given reference. backend.ErrRefExists
// is returned if the reference already exists.
func (b *Backend) WriteReferenceSafe(ref *plumbing.Reference) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.refs[ref.Name()]; ok {
		return backend.ErrRefExists
	}
	return b.writeReferenceLocked(ref)
}

func (b *Backend) writeReferenceLocked(ref *plumbing.Reference) error {
	if !plumbing.IsRefNameValid(ref.Name()) {
		return plumbing.ErrInvalidArgument
	}

	var target string
	switch ref.Type() {
	case plumbing.SymbolicReference:
		target = fmt.Sprintf("ref: %s\n", ref.SymbolicTarget())
	case plumbing.OidReference:
		target = fmt.Sprintf("%s\n", ref.Target().String())
	default:
		return fmt.Errorf("reference type %d: %w", ref.Type(), plumbing.ErrInvalidArgument)
	}

	b.refs[ref.Name()] = []byte(target)
	return nil
}

// WalkReferences runs f against every stored reference, resolved. The
// order is the sorted order of the reference names, so two walks over
// the same backend always visit refs in the same order.
func (b *Backend) WalkReferences(f backend.RefWalkFunc) error {
	b.mu.RLock()
	names := make([]string, 0, len(b.refs))
	for name := range b.refs {
		names = append(names, name)
	}
	b.mu.RUnlock()
	sort.Strings(names)

	for _, name := range names {
		ref, err := b.Reference(name)
		if err != nil {
			return fmt.Errorf("could not resolve reference %s: %w", name, err)
		}
		if err := f(ref); err != nil {
			if err == backend.WalkStop { //nolint:errorlint,goerr113 // it's a fake error so no need to use Error.Is()
				return nil
			}
			return err
		}
	}
	return nil
}

// GetObject satisfies packfile.ObjectGetter.
func (b *Backend) GetObject(oid plumbing.Oid) (*object.Object, error) {
	return b.Object(oid)
}

// Object returns the object that has the given oid.
func (b *Backend) Object(oid plumbing.Oid) (*object.Object, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	o, ok := b.objects[oid]
	if !ok {
		return nil, fmt.Errorf("object %s: %w", oid.String(), plumbing.ErrNotFound)
	}
	return o, nil
}

// HasObject returns whether an object exists in the odb.
func (b *Backend) HasObject(oid plumbing.Oid) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, ok := b.objects[oid]
	return ok, nil
}

// WriteObject adds an object to the odb. Writing the same object twice
// is a no-op, mirroring the dedup-on-write behavior of the filesystem
// backend.
func (b *Backend) WriteObject(o *object.Object) (plumbing.Oid, error) {
	if _, err := o.Compress(); err != nil {
		return plumbing.NullOid, fmt.Errorf("could not compress object: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.objects[o.ID()]; ok {
		return o.ID(), nil
	}
	b.objects[o.ID()] = o
	return o.ID(), nil
}

// WalkPackedObjectIDs is a no-op: this backend never has packed
// objects, everything it stores is loose.
func (b *Backend) WalkPackedObjectIDs(_ packfile.OidWalkFunc) error {
	return nil
}

// WalkLooseObjectIDs runs f against every oid held by this backend.
func (b *Backend) WalkLooseObjectIDs(f packfile.OidWalkFunc) error {
	b.mu.RLock()
	oids := make([]plumbing.Oid, 0, len(b.objects))
	for oid := range b.objects {
		oids = append(oids, oid)
	}
	b.mu.RUnlock()

	sort.Slice(oids, func(i, j int) bool {
		return oids[i].String() < oids[j].String()
	})

	for _, oid := range oids {
		if err := f(oid); err != nil {
			if err == packfile.OidWalkStop { //nolint:errorlint,goerr113 // it's a fake error so no need to use Error.Is()
				return nil
			}
			return err
		}
	}
	return nil
}
