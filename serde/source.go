package serde

import (
	"jsonapi-serde/jsonpointer"
)

// Source records where a Repr came from: a JSON pointer into the document
// it was deserialized from, a free-form description, or nothing.
type Source struct {
	pointer    jsonpointer.Pointer
	hasPointer bool
	text       string
}

// PointerSource returns a Source referring to ptr.
func PointerSource(ptr jsonpointer.Pointer) Source {
	return Source{pointer: ptr, hasPointer: true}
}

// TextSource returns a Source described by text.
func TextSource(text string) Source {
	return Source{text: text}
}

// Pointer returns the pointer of a pointer source.
func (s Source) Pointer() (jsonpointer.Pointer, bool) {
	return s.pointer, s.hasPointer
}

// IsZero reports whether s carries no provenance.
func (s Source) IsZero() bool {
	return !s.hasPointer && s.text == ""
}

func (s Source) String() string {
	if s.hasPointer {
		return s.pointer.String()
	}

	return s.text
}

// sourced is embedded into every Repr.
type sourced struct {
	source Source
}

// Source returns the provenance of the value.
func (s sourced) Source() Source {
	return s.source
}

// Sourced is implemented by every Repr.
type Sourced interface {
	Source() Source
}
