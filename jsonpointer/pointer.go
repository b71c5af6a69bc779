// Package jsonpointer provides an immutable JSON Pointer (RFC 6901) value used
// to locate values inside JSON documents and to report where validation
// failures occurred.
//
// A Pointer is a list of components, each either a string key or an int
// index. Appending never mutates the receiver:
//
//	p := jsonpointer.Root().Key("data").Key("attributes").Key("title")
//	p.String() // "/data/attributes/title"
package jsonpointer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	openapi "github.com/go-openapi/jsonpointer"
)

// ErrMalformed is returned when a pointer string cannot be parsed.
var ErrMalformed = errors.New("malformed JSON pointer")

// Pointer is an immutable JSON Pointer.
// The zero value is the root pointer.
type Pointer struct {
	components []any
}

// Root returns the root pointer.
func Root() Pointer {
	return Pointer{}
}

// New builds a pointer from components. Each component must be a string or an int.
func New(components ...any) Pointer {
	p := Pointer{components: make([]any, 0, len(components))}

	for _, c := range components {
		switch c := c.(type) {
		case string, int:
			p.components = append(p.components, c)
		default:
			panic(fmt.Sprintf("jsonpointer: unsupported component type %T", c))
		}
	}

	return p
}

// Parse parses a pointer string. "" and "/" both denote the root.
// A missing leading slash is tolerated ("a/b" is "/a/b").
// Numeric segments are kept as string keys; use Index to build index components.
func Parse(s string) (Pointer, error) {
	if s == "" || s == "/" {
		return Root(), nil
	}

	if !strings.HasPrefix(s, "/") {
		s = "/" + s
	}

	if err := validateEscapes(s); err != nil {
		return Pointer{}, err
	}

	ptr, err := openapi.New(s)
	if err != nil {
		return Pointer{}, fmt.Errorf("%w: %q: %w", ErrMalformed, s, err)
	}

	tokens := ptr.DecodedTokens()
	p := Pointer{components: make([]any, 0, len(tokens))}

	for _, t := range tokens {
		p.components = append(p.components, t)
	}

	return p, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Pointer {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}

	return p
}

// validateEscapes rejects "~" not followed by "0" or "1".
func validateEscapes(s string) error {
	for i := 0; i < len(s); i++ {
		if s[i] != '~' {
			continue
		}

		if i+1 >= len(s) || (s[i+1] != '0' && s[i+1] != '1') {
			return fmt.Errorf("%w: %q: invalid escape at offset %d", ErrMalformed, s, i)
		}
	}

	return nil
}

// Key returns a new pointer with key appended.
func (p Pointer) Key(key string) Pointer {
	return p.with(key)
}

// Index returns a new pointer with index appended.
func (p Pointer) Index(index int) Pointer {
	return p.with(index)
}

func (p Pointer) with(c any) Pointer {
	components := make([]any, len(p.components), len(p.components)+1)
	copy(components, p.components)

	return Pointer{components: append(components, c)}
}

// Components returns a copy of the components.
func (p Pointer) Components() []any {
	out := make([]any, len(p.components))
	copy(out, p.components)

	return out
}

// Len returns the number of components.
func (p Pointer) Len() int {
	return len(p.components)
}

// IsRoot reports whether p has no components.
func (p Pointer) IsRoot() bool {
	return len(p.components) == 0
}

// Parent returns the pointer without its last component. The root is its own parent.
func (p Pointer) Parent() Pointer {
	if p.IsRoot() {
		return p
	}

	return Pointer{components: p.components[:len(p.components)-1:len(p.components)-1]}
}

// Equal reports whether both pointers render identically.
func (p Pointer) Equal(other Pointer) bool {
	return p.String() == other.String()
}

// String renders the pointer, e.g. "/data/attributes/title". The root renders as "/".
func (p Pointer) String() string {
	if p.IsRoot() {
		return "/"
	}

	var sb strings.Builder

	for _, c := range p.components {
		sb.WriteByte('/')

		switch c := c.(type) {
		case int:
			sb.WriteString(strconv.Itoa(c))
		case string:
			sb.WriteString(openapi.Escape(c))
		}
	}

	return sb.String()
}

// MarshalText implements encoding.TextMarshaler.
func (p Pointer) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}
