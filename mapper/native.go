package mapper

import (
	"reflect"

	"jsonapi-serde/converter"
	"jsonapi-serde/deferred"
)

// NativeDescriptor describes a class of native objects.
type NativeDescriptor interface {
	// Class names the native class. Native objects report their class
	// through Classed, or else by their Go type.
	Class() string

	NewBuilder() NativeBuilder
	NewUpdater(target any) (NativeUpdater, error)

	Attributes() []NativeAttributeDescriptor
	AttributeByName(name string) (NativeAttributeDescriptor, error)
	Relationships() []NativeRelationshipDescriptor
	RelationshipByName(name string) (NativeRelationshipDescriptor, error)

	// Identity returns the implementation dependent identity of target.
	Identity(target any) (any, error)
}

// Classed is implemented by native objects whose class is not their Go type.
type Classed interface {
	NativeClass() string
}

// ClassOf returns the native class of obj.
func ClassOf(obj any) string {
	if c, ok := obj.(Classed); ok {
		return c.NativeClass()
	}

	return ClassOfType(reflect.TypeOf(obj))
}

// ClassOfType returns the native class of values of type t.
func ClassOfType(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	return t.String()
}

// NativeAttributeDescriptor describes one attribute of a native class.
type NativeAttributeDescriptor interface {
	Name() string
	// Type is the shape of the attribute's values; nil when unknown.
	Type() *converter.Shape
	AllowNull() bool
	FetchValue(target any) (any, error)
}

// NativeRelationshipDescriptor is either a NativeToOneRelationshipDescriptor
// or a NativeToManyRelationshipDescriptor.
type NativeRelationshipDescriptor interface {
	Name() string
	Destination() NativeDescriptor
}

// NativeToOneRelationshipDescriptor describes a to-one native relationship.
type NativeToOneRelationshipDescriptor interface {
	NativeRelationshipDescriptor
	// FetchRelated returns the related object, nil if there is none.
	FetchRelated(target any) (any, error)
}

// NativeToManyRelationshipDescriptor describes a to-many native
// relationship.
type NativeToManyRelationshipDescriptor interface {
	NativeRelationshipDescriptor
	FetchRelated(target any) ([]any, error)
}

// MutationContext carries the site state a builder needs to materialize
// native objects, such as a database handle.
type MutationContext interface {
	QueryByIdentity(descr NativeDescriptor, id any) (any, error)
}

// MutatorDescriptor describes the resource attributes that assigned a native
// attribute. Builders call ImmutableError when an immutable attribute would
// change.
type MutatorDescriptor interface {
	ImmutableError() error
}

// NativeToOneRelationshipBuilder records the target of a to-one
// relationship.
type NativeToOneRelationshipBuilder interface {
	Nullify()
	Set(id any)
}

// NativeToManyRelationshipBuilder records the targets of a to-many
// relationship.
type NativeToManyRelationshipBuilder interface {
	Next(id any)
}

// NativeBuilder accumulates the state of a native object and materializes
// it.
type NativeBuilder interface {
	Set(descr NativeAttributeDescriptor, value any) error
	MarkImmutable(descr NativeAttributeDescriptor, mutator MutatorDescriptor)
	ToOneRelationship(descr NativeToOneRelationshipDescriptor) NativeToOneRelationshipBuilder
	ToManyRelationship(descr NativeToManyRelationshipDescriptor) NativeToManyRelationshipBuilder
	Build(mctx MutationContext) (any, error)
}

// NativeToOneRelationshipManipulator changes a to-one relationship of an
// existing object. Each operation reports, once the updater is built,
// whether it changed anything.
type NativeToOneRelationshipManipulator interface {
	Nullify() deferred.Deferred[bool]
	Set(id any) deferred.Deferred[bool]
	Unset(id any) deferred.Deferred[bool]
}

// NativeToManyRelationshipManipulator adds to or removes from a to-many
// relationship of an existing object.
type NativeToManyRelationshipManipulator interface {
	Add(id any) deferred.Deferred[bool]
	Remove(id any) deferred.Deferred[bool]
}

// NativeUpdater is a NativeBuilder bound to an existing object.
type NativeUpdater interface {
	NativeBuilder
	ToOneRelationshipManipulator(descr NativeToOneRelationshipDescriptor) NativeToOneRelationshipManipulator
	ToManyRelationshipManipulator(descr NativeToManyRelationshipDescriptor) NativeToManyRelationshipManipulator
}
