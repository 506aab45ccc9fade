package object

import (
	"bytes"
	"os"
	"sort"
	"strconv"

	"github.com/halfmoon-dev/gitobj/plumbing"
)

// The 4 modes a tree entry may have. AsTree rejects any other value with
// ErrTreeInvalid, which does not match plumbing.ErrFormatError.
const (
	ModeDirectory  os.FileMode = 0o040000
	ModeFile       os.FileMode = 0o100644
	ModeExecutable os.FileMode = 0o100755
	ModeSymlink    os.FileMode = 0o120000
)

// TreeEntry represents an entry inside a git tree
type TreeEntry struct {
	Mode os.FileMode
	ID   plumbing.Oid
	Path string
}

// IsValid returns whether the entry's mode is one of the 4 modes
// supported by git
func (e TreeEntry) IsValid() bool {
	switch e.Mode {
	case ModeDirectory, ModeFile, ModeExecutable, ModeSymlink:
		return true
	default:
		return false
	}
}

// ObjectType returns the type of object the entry points at
func (e TreeEntry) ObjectType() Type {
	if e.Mode == ModeDirectory {
		return TypeTree
	}
	return TypeBlob
}

// sortName returns the name used to order the entry among its siblings.
// Directory entries sort as if their name had a trailing slash.
func (e TreeEntry) sortName() string {
	if e.Mode == ModeDirectory {
		return e.Path + "/"
	}
	return e.Path
}

// SortEntries orders tree entries using git's byte-lex order, where
// directory entries sort as if their name had a trailing "/"
func SortEntries(entries []TreeEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].sortName() < entries[j].sortName()
	})
}

// entriesSorted returns whether entries are sorted and duplicate-free
func entriesSorted(entries []TreeEntry) bool {
	for i := 1; i < len(entries); i++ {
		if entries[i-1].sortName() >= entries[i].sortName() {
			return false
		}
	}
	return true
}

// Tree represents a git tree object
type Tree struct {
	id      plumbing.Oid
	entries []TreeEntry
}

// NewTree returns a new tree with the given entries
func NewTree(entries []TreeEntry) *Tree {
	return &Tree{
		entries: entries,
	}
}

// NewTreeWithID returns a new tree
func NewTreeWithID(id plumbing.Oid, entries []TreeEntry) *Tree {
	return &Tree{
		id:      id,
		entries: entries,
	}
}

// ID returns the SHA of the tree object
func (t *Tree) ID() plumbing.Oid {
	return t.id
}

// Entries returns a copy of the tree's entries
func (t *Tree) Entries() []TreeEntry {
	out := make([]TreeEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// ToObject returns an Object representing the tree
func (t *Tree) ToObject() *Object {
	// Quick reminder that the Write* methods on bytes.Buffer never fails,
	// the error returned is always nil
	buf := new(bytes.Buffer)

	// The format of an tree entry is:
	// {octal_mode} {path_name}\0{encoded_sha}
	// A tree object is only composed of a bunch of entries back to back
	for _, e := range t.entries {
		// Write the mode
		buf.WriteString(strconv.FormatInt(int64(e.Mode), 8))
		// add space
		buf.WriteByte(' ')
		// add the path
		buf.WriteString(e.Path)
		// Write the NULL char
		buf.WriteByte(0)
		// Finish with the encoded oid
		buf.Write(e.ID.Bytes())
	}

	if t.id != plumbing.NullOid {
		return NewWithID(t.id, TypeTree, buf.Bytes())
	}
	return New(TypeTree, buf.Bytes())
}
