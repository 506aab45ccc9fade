package plumbing

import (
	"bytes"
	"strings"

	"golang.org/x/xerrors"
)

// Well-known reference names.
const (
	// Head is a reference to the current branch, or to a commit if
	// the repository is in a detached-HEAD state.
	Head = "HEAD"
	// Master is the conventional name of the default branch when none
	// is specified at init time.
	Master = "master"
	// OrigHead keeps track of the previous tip of the current branch
	// before a potentially destructive operation (reset, rebase, merge).
	OrigHead = "ORIG_HEAD"
	// MergeHead is where the tips being merged are stored while a merge
	// is in progress.
	MergeHead = "MERGE_HEAD"
	// CherryPickHead tracks the commit being applied during a
	// cherry-pick that stopped because of a conflict.
	CherryPickHead = "CHERRY_PICK_HEAD"
)

// ReferenceType represents the kind of value a reference points at.
type ReferenceType int8

const (
	// OidReference is a reference that targets an Oid directly.
	OidReference ReferenceType = 1
	// SymbolicReference is a reference that targets another reference
	// by name.
	SymbolicReference ReferenceType = 2
)

// Reference represents a named pointer, either to an object id directly
// or to another reference (symbolic).
// https://git-scm.com/book/en/v2/Git-Internals-Git-References
type Reference struct {
	name   string
	target string
	id     Oid
	typ    ReferenceType
}

// RefContent retrieves the raw content stored behind a reference name.
// It's a callback so this package doesn't need to depend on a specific
// storage backend to resolve symbolic chains.
type RefContent func(name string) ([]byte, error)

// ResolveReference follows a (possibly chained) symbolic reference down
// to the concrete Oid it ultimately points at.
func ResolveReference(name string, finder RefContent) (*Reference, error) {
	return resolveRefs(name, finder, map[string]struct{}{})
}

func resolveRefs(name string, finder RefContent, visited map[string]struct{}) (*Reference, error) {
	// protect against a symbolic cycle, e.g. refs/heads/a -> refs/heads/b
	// -> refs/heads/a
	if _, ok := visited[name]; ok {
		return nil, NewError(KindFormatError, "circular symbolic reference", nil)
	}
	visited[name] = struct{}{}

	if !IsRefNameValid(name) {
		return nil, NewError(KindInvalidArgument, xerrors.Errorf("ref %q", name).Error(), nil)
	}

	data, err := finder(name)
	if err != nil {
		return nil, err
	}
	data = bytes.Trim(data, " \n")

	// "ref: " followed by the target name, at minimum
	if len(data) < 6 {
		return nil, NewError(KindFormatError, "reference content too short", nil)
	}

	if string(data[0:5]) == "ref: " {
		symbolicTarget := string(data[5:])
		ref, err := resolveRefs(symbolicTarget, finder, visited)
		if err != nil {
			return nil, err
		}
		return &Reference{
			typ:    SymbolicReference,
			name:   name,
			id:     ref.id,
			target: symbolicTarget,
		}, nil
	}

	oid, err := NewOidFromChars(data)
	if err != nil {
		return nil, NewError(KindFormatError, "reference does not contain a valid oid", err)
	}
	return &Reference{
		typ:  OidReference,
		name: name,
		id:   oid,
	}, nil
}

// NewReference returns a Reference that targets an object directly.
func NewReference(name string, target Oid) *Reference {
	return &Reference{
		typ:  OidReference,
		name: name,
		id:   target,
	}
}

// NewSymbolicReference returns a Reference that targets another
// reference by name, e.g. HEAD targeting refs/heads/master.
func NewSymbolicReference(name, target string) *Reference {
	return &Reference{
		typ:    SymbolicReference,
		name:   name,
		target: target,
	}
}

// Name returns the full name of the reference, e.g. refs/heads/master.
func (ref *Reference) Name() string {
	return ref.name
}

// Target returns the Oid targeted by the reference. For a symbolic
// reference this is the Oid at the end of the chain.
func (ref *Reference) Target() Oid {
	return ref.id
}

// Type returns whether the reference is direct or symbolic.
func (ref *Reference) Type() ReferenceType {
	return ref.typ
}

// SymbolicTarget returns the name targeted by a symbolic reference.
func (ref *Reference) SymbolicTarget() string {
	return ref.target
}

// IsRefNameValid reports whether name is a well-formed reference name.
// https://stackoverflow.com/a/12093994/382879
func IsRefNameValid(name string) bool {
	if name == "" || name == "/" || name[len(name)-1] == '/' || name[len(name)-1] == '.' {
		return false
	}

	for i, c := range name {
		if c < 32 || c == 127 {
			return false
		}
		if c == '*' || c == '?' || c == '!' || c == '^' {
			return false
		}
		if c == ' ' || c == '[' || c == '\\' || c == ':' {
			return false
		}
		if i < len(name)-1 {
			substr := name[i : i+2]
			if substr == "@{" || substr == ".." {
				return false
			}
		}
	}

	segments := strings.Split(name, "/")
	for _, s := range segments {
		if s == "" || s[0] == '.' || s[len(s)-1] == '.' || strings.HasSuffix(s, ".lock") {
			return false
		}
	}

	return true
}
