package object

import "github.com/halfmoon-dev/gitobj/plumbing"

// Blob represents a blob object
type Blob struct {
	*Object
}

// NewBlob creates a new Blob wrapping the given content
func NewBlob(id plumbing.Oid, content []byte) *Blob {
	return &Blob{
		Object: NewWithID(id, TypeBlob, content),
	}
}

// Type returns the ObjectType for this object
func (o *Blob) Type() Type {
	return TypeBlob
}
