package git

import (
	"fmt"
	"os"

	"github.com/halfmoon-dev/gitobj/backend"
	"github.com/halfmoon-dev/gitobj/plumbing"
	"github.com/halfmoon-dev/gitobj/plumbing/object"
)

// TreeBuilder is used to build trees one entry at a time
type TreeBuilder struct {
	backend backend.Backend
	entries map[string]object.TreeEntry
}

// Insert adds or replaces an entry in the tree being built. The object
// pointed at by oid must already exist in the odb
func (tb *TreeBuilder) Insert(path string, oid plumbing.Oid, mode os.FileMode) error {
	e := object.TreeEntry{Mode: mode, ID: oid, Path: path}
	if !e.IsValid() {
		return fmt.Errorf("invalid mode %o", mode)
	}

	o, err := tb.backend.Object(oid)
	if err != nil {
		return fmt.Errorf("cannot verify object: %w", err)
	}
	if o.Type() != e.ObjectType() {
		return fmt.Errorf("object %s is a %s, not a %s", oid, o.Type(), e.ObjectType())
	}

	if tb.entries == nil {
		tb.entries = map[string]object.TreeEntry{}
	}
	tb.entries[path] = e
	return nil
}

// Remove removes an entry from the tree being built. It is a no-op if
// the entry doesn't exist
func (tb *TreeBuilder) Remove(path string) {
	if tb.entries == nil {
		return
	}
	delete(tb.entries, path)
}

// Write creates, persists, and returns a new Tree object containing the
// entries accumulated so far
func (tb *TreeBuilder) Write() (*object.Tree, error) {
	entries := make([]object.TreeEntry, 0, len(tb.entries))
	for _, e := range tb.entries {
		entries = append(entries, e)
	}
	object.SortEntries(entries)

	t := object.NewTree(entries)
	o := t.ToObject()
	if _, err := tb.backend.WriteObject(o); err != nil {
		return nil, fmt.Errorf("could not write the tree to the odb: %w", err)
	}
	return o.AsTree()
}
