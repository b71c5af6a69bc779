package native

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"jsonapi-serde/mapper"
	"jsonapi-serde/serde"
)

//go:generate go tool stringer -type=IdentityKind -linecomment -output=identitykind_string.go

// IdentityKind is the Go type native identities are held in.
type IdentityKind int

const (
	_ IdentityKind = iota

	IdentityString // string
	IdentityInt    // int
	IdentityUUID   // uuid
)

// IdentityKindByName resolves the names used in mapping files.
func IdentityKindByName(name string) (IdentityKind, bool) {
	for k := IdentityString; k <= IdentityUUID; k++ {
		if k.String() == name {
			return k, true
		}
	}

	return 0, false
}

// Parse converts a wire id into an identity of kind k.
func (k IdentityKind) Parse(id string) (any, error) {
	switch k {
	case IdentityInt:
		return strconv.ParseInt(id, 10, 64)
	case IdentityUUID:
		return uuid.Parse(id)
	default:
		return id, nil
	}
}

// Generator returns a function producing fresh identities of kind k.
func (k IdentityKind) Generator() func() any {
	switch k {
	case IdentityInt:
		var seq atomic.Int64
		return func() any { return seq.Add(1) }
	case IdentityUUID:
		return func() any { return uuid.New() }
	default:
		return func() any { return uuid.NewString() }
	}
}

// Driver translates identities of kind Kind. Native identities are rendered
// with fmt.Sprint.
type Driver struct {
	Kind IdentityKind
}

func (d Driver) SerdeIdentityByNative(m *mapper.Mapper, native any) (string, error) {
	id, err := m.Native().Identity(native)
	if err != nil {
		return "", errors.Wrapf(err, "identity of %s", m.Native().Class())
	}

	if isZeroIdentity(id) {
		return "", &mapper.InvalidNativeObjectStateError{
			Message: fmt.Sprintf("%s object has no identity yet", m.Native().Class()),
		}
	}

	return fmt.Sprint(id), nil
}

func (d Driver) NativeIdentityBySerde(m *mapper.Mapper, id serde.ResourceIdRepr) (any, error) {
	if id.ID == "" {
		return nil, &mapper.InvalidIdentifierError{
			Message: fmt.Sprintf("resource identifier of type %s has no id", id.Type),
			Source:  id.Source(),
		}
	}

	kind := d.Kind
	if k, ok := m.Native().(interface{ IdentityKind() IdentityKind }); ok {
		kind = k.IdentityKind()
	}

	v, err := kind.Parse(id.ID)
	if err != nil {
		return nil, &mapper.InvalidIdentifierError{
			Message: fmt.Sprintf("%q is not a valid %s id for %s", id.ID, kind, m.Resource().Name()),
			Source:  id.Source(),
		}
	}

	return v, nil
}

func isZeroIdentity(id any) bool {
	switch v := id.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case int64:
		return v == 0
	case uuid.UUID:
		return v == uuid.Nil
	}

	return false
}

var _ mapper.Driver = Driver{}
