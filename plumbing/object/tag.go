package object

import (
	"bytes"
	"errors"

	"github.com/halfmoon-dev/gitobj/internal/readutil"
	"github.com/halfmoon-dev/gitobj/plumbing"
	"golang.org/x/xerrors"
)

// ErrTagInvalid represents an error thrown when parsing an invalid
// tag object
var ErrTagInvalid = errors.New("invalid tag")

// TagOptions represents all the optional data available to create a tag
type TagOptions struct {
	GPGSig string
}

// Tag represents an annotated tag object
type Tag struct {
	id     plumbing.Oid
	target plumbing.Oid
	typ    Type

	name    string
	tagger  Signature
	message string
	gpgSig  string
}

// NewTag creates a new annotated Tag pointing at the given target
func NewTag(target plumbing.Oid, targetType Type, name string, tagger Signature, message string, opts *TagOptions) *Tag {
	t := &Tag{
		target:  target,
		typ:     targetType,
		name:    name,
		tagger:  tagger,
		message: message,
	}
	if opts != nil {
		t.gpgSig = opts.GPGSig
	}
	return t
}

// ID returns the SHA of the tag object
func (t *Tag) ID() plumbing.Oid {
	return t.id
}

// Target returns the id of the object the tag points at
func (t *Tag) Target() plumbing.Oid {
	return t.target
}

// Type returns the type of the object the tag points at
func (t *Tag) Type() Type {
	return t.typ
}

// Name returns the tag's name
func (t *Tag) Name() string {
	return t.name
}

// Tagger returns the Signature of the person that created the tag
func (t *Tag) Tagger() Signature {
	return t.tagger
}

// Message returns the tag's message
func (t *Tag) Message() string {
	return t.message
}

// GPGSig returns the GPG signature of the tag, if any
func (t *Tag) GPGSig() string {
	return t.gpgSig
}

// ToObject returns an Object representing the tag
func (t *Tag) ToObject() *Object {
	buf := new(bytes.Buffer)
	buf.WriteString("object ")
	buf.WriteString(t.target.String())
	buf.WriteRune('\n')

	buf.WriteString("type ")
	buf.WriteString(t.typ.String())
	buf.WriteRune('\n')

	buf.WriteString("tag ")
	buf.WriteString(t.name)
	buf.WriteRune('\n')

	buf.WriteString("tagger ")
	buf.WriteString(t.tagger.String())
	buf.WriteRune('\n')

	if t.gpgSig != "" {
		buf.WriteString("gpgsig ")
		buf.WriteString(t.gpgSig)
		buf.WriteRune('\n')
	}

	buf.WriteRune('\n')
	buf.WriteString(t.message)

	if t.id != plumbing.NullOid {
		return NewWithID(t.id, TypeTag, buf.Bytes())
	}
	return New(TypeTag, buf.Bytes())
}

// AsTag parses the object as a Tag
//
// A tag has the following format:
//
// object {sha}
// type {commit|tree|blob|tag}
// tag {name}
// tagger {tagger_name} <{tagger_email}> {date_seconds} {date_timezone}
// gpgsig -----BEGIN PGP SIGNATURE-----
// {gpg key over multiple lines}
//  -----END PGP SIGNATURE-----
// {a blank line}
// {tag message}
func (o *Object) AsTag() (*Tag, error) {
	if o.typ != TypeTag {
		return nil, xerrors.Errorf("type %s is not a tag", o.typ)
	}
	t := &Tag{id: o.id}
	offset := 0
	objData := o.Bytes()
	for {
		line := readutil.ReadTo(objData[offset:], '\n')
		offset += len(line) + 1 // +1 to count the \n

		if len(line) == 0 && offset == 1 {
			return nil, xerrors.Errorf("could not find tag first line: %w", ErrTagInvalid)
		}

		if len(line) == 0 {
			t.message = string(objData[offset:])
			break
		}

		kv := bytes.SplitN(line, []byte{' '}, 2)
		switch string(kv[0]) {
		case "object":
			oid, err := plumbing.NewOidFromChars(kv[1])
			if err != nil {
				return nil, xerrors.Errorf("could not parse target id %#v: %w", kv[1], err)
			}
			t.target = oid
		case "type":
			typ, err := NewTypeFromString(string(kv[1]))
			if err != nil {
				return nil, xerrors.Errorf("could not parse target type %#v: %w", kv[1], err)
			}
			t.typ = typ
		case "tag":
			t.name = string(kv[1])
		case "tagger":
			sig, err := NewSignatureFromBytes(kv[1])
			if err != nil {
				return nil, xerrors.Errorf("could not parse signature [%s]: %w", string(kv[1]), err)
			}
			t.tagger = sig
		case "gpgsig":
			begin := string(kv[1]) + "\n"
			end := "-----END PGP SIGNATURE-----\n"
			i := bytes.Index(objData[offset:], []byte(end))
			t.gpgSig = begin + string(objData[offset:offset+i]) + end
			offset += len(end) + i
		}
	}

	return t, nil
}
