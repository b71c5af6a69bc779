package mapper

import (
	"errors"
	"fmt"

	"jsonapi-serde/converter"
	"jsonapi-serde/internal/common"
	"jsonapi-serde/serde"
)

// SourcedError is implemented by errors that can be attributed to locations
// in the input document.
type SourcedError interface {
	error
	Sources() []serde.Source
}

func sourcesOf(source serde.Source) []serde.Source {
	if source.IsZero() {
		return nil
	}

	return []serde.Source{source}
}

// InvalidDeclarationError reports an inconsistent descriptor or mapping
// declaration.
type InvalidDeclarationError struct {
	Message string
}

func (e *InvalidDeclarationError) Error() string { return e.Message }

func declarationErrorf(format string, args ...any) error {
	return &InvalidDeclarationError{Message: fmt.Sprintf(format, args...)}
}

// InvalidAttributeValueError reports an attribute carrying a value its
// descriptor does not accept.
type InvalidAttributeValueError struct {
	Resource *ResourceDescriptor
	Name     string
	Actual   any
	Detail   string
	Source   serde.Source
}

func (e *InvalidAttributeValueError) Error() string {
	detail := ""
	if e.Detail != "" {
		detail = " (" + e.Detail + ")"
	}

	return fmt.Sprintf("attribute (%s) in %q contains an invalid value%s: %v", e.Name, e.Resource.Name(), detail, e.Actual)
}

func (e *InvalidAttributeValueError) Sources() []serde.Source { return sourcesOf(e.Source) }

// ImmutableAttributeError reports an attempt to change an immutable
// attribute.
type ImmutableAttributeError struct {
	Resource *ResourceDescriptor
	Name     string
	Source   serde.Source
}

func (e *ImmutableAttributeError) Error() string {
	return fmt.Sprintf("attribute (%s) in %q is immutable", e.Name, e.Resource.Name())
}

func (e *ImmutableAttributeError) Sources() []serde.Source { return sourcesOf(e.Source) }

// AttributeNotFoundError reports an attribute absent from a resource.
type AttributeNotFoundError struct {
	Resource *ResourceDescriptor
	Name     string
	Source   serde.Source
}

func (e *AttributeNotFoundError) Error() string {
	return fmt.Sprintf("attribute (%s) not supplied as specified in %q", e.Name, e.Resource.Name())
}

func (e *AttributeNotFoundError) Sources() []serde.Source { return sourcesOf(e.Source) }

// RelationshipNotFoundError reports a relationship absent from a resource.
type RelationshipNotFoundError struct {
	Resource *ResourceDescriptor
	Name     string
	Source   serde.Source
}

func (e *RelationshipNotFoundError) Error() string {
	return fmt.Sprintf("relationship (%s) not supplied as specified in %q", e.Name, e.Resource.Name())
}

func (e *RelationshipNotFoundError) Sources() []serde.Source { return sourcesOf(e.Source) }

// UnknownResourceTypeError reports a wire type no mapper is registered for.
type UnknownResourceTypeError struct {
	Name   string
	Source serde.Source
}

func (e *UnknownResourceTypeError) Error() string {
	return fmt.Sprintf("no resource known as %q", e.Name)
}

func (e *UnknownResourceTypeError) Sources() []serde.Source { return sourcesOf(e.Source) }

// InvalidStructureError reports a linkage that does not fit the declared
// relationship.
type InvalidStructureError struct {
	Message string
}

func (e *InvalidStructureError) Error() string { return e.Message }

func (e *InvalidStructureError) Sources() []serde.Source { return nil }

// GenericConstraintError reports a violated declaration constraint, such as
// a null given to a non-nullable relationship.
type GenericConstraintError struct {
	Message string
}

func (e *GenericConstraintError) Error() string { return e.Message }

func (e *GenericConstraintError) Sources() []serde.Source { return nil }

// ConversionError reports an attribute value that could not be converted.
// Direction is DirectionToSerdeOnly for native to document conversions and
// DirectionToNativeOnly otherwise.
type ConversionError struct {
	Direction          Direction
	ResourceAttributes []*ResourceAttributeDescriptor
	NativeAttributes   []NativeAttributeDescriptor
	Cause              error

	sources []serde.Source
}

// NewConversionError returns a ConversionError located at sources.
func NewConversionError(
	direction Direction,
	resourceAttrs []*ResourceAttributeDescriptor,
	nativeAttrs []NativeAttributeDescriptor,
	cause error,
	sources ...serde.Source,
) *ConversionError {
	return &ConversionError{
		Direction:          direction,
		ResourceAttributes: resourceAttrs,
		NativeAttributes:   nativeAttrs,
		Cause:              cause,
		sources:            sources,
	}
}

func (e *ConversionError) Error() string {
	names := common.Map(e.ResourceAttributes, func(d *ResourceAttributeDescriptor) string { return d.Name })
	enum := common.EnglishEnumerate(names, common.DefaultConjunction)

	if e.Direction == DirectionToSerdeOnly {
		return fmt.Sprintf("conversion from attribute %s failed (%v)", enum, e.Cause)
	}

	return fmt.Sprintf("conversion to attributes %s failed (%v)", enum, e.Cause)
}

func (e *ConversionError) Unwrap() error { return e.Cause }

func (e *ConversionError) Sources() []serde.Source { return e.sources }

// NativeResourceNotFoundError reports an identity that resolves to no native
// object.
type NativeResourceNotFoundError struct {
	Descriptor NativeDescriptor
	ID         any
}

func (e *NativeResourceNotFoundError) Error() string {
	return fmt.Sprintf("no native resource %s found for %v", e.Descriptor.Class(), e.ID)
}

func (e *NativeResourceNotFoundError) Sources() []serde.Source { return nil }

// NativeAttributeNotFoundError reports an unknown native attribute name.
type NativeAttributeNotFoundError struct {
	Descriptor NativeDescriptor
	Name       string
}

func (e *NativeAttributeNotFoundError) Error() string {
	return fmt.Sprintf("no such native attribute found in %s: %s", e.Descriptor.Class(), e.Name)
}

func (e *NativeAttributeNotFoundError) Sources() []serde.Source { return nil }

// NativeRelationshipNotFoundError reports an unknown native relationship.
type NativeRelationshipNotFoundError struct {
	Descriptor NativeDescriptor
	Name       string
}

func (e *NativeRelationshipNotFoundError) Error() string {
	return fmt.Sprintf("no such native relationship found in %s: %s", e.Descriptor.Class(), e.Name)
}

func (e *NativeRelationshipNotFoundError) Sources() []serde.Source { return nil }

// InvalidNativeObjectStateError reports a native object that cannot be
// serialized in its current state, e.g. one without a persisted identity.
type InvalidNativeObjectStateError struct {
	Message string
}

func (e *InvalidNativeObjectStateError) Error() string { return e.Message }

func (e *InvalidNativeObjectStateError) Sources() []serde.Source { return nil }

// InvalidIdentifierError reports an identity string of the wrong shape.
type InvalidIdentifierError struct {
	Message string
	Source  serde.Source
}

func (e *InvalidIdentifierError) Error() string { return e.Message }

func (e *InvalidIdentifierError) Sources() []serde.Source { return sourcesOf(e.Source) }

var (
	_ SourcedError = (*InvalidAttributeValueError)(nil)
	_ SourcedError = (*ImmutableAttributeError)(nil)
	_ SourcedError = (*AttributeNotFoundError)(nil)
	_ SourcedError = (*RelationshipNotFoundError)(nil)
	_ SourcedError = (*UnknownResourceTypeError)(nil)
	_ SourcedError = (*InvalidStructureError)(nil)
	_ SourcedError = (*GenericConstraintError)(nil)
	_ SourcedError = (*ConversionError)(nil)
	_ SourcedError = (*NativeResourceNotFoundError)(nil)
	_ SourcedError = (*NativeAttributeNotFoundError)(nil)
	_ SourcedError = (*NativeRelationshipNotFoundError)(nil)
	_ SourcedError = (*InvalidNativeObjectStateError)(nil)
	_ SourcedError = (*InvalidIdentifierError)(nil)
)

// errorCode names the taxonomy entry of err for the code member of an error
// object, together with the HTTP status it maps to.
func errorCode(err error) (code, status string) {
	var (
		attrNotFound   *AttributeNotFoundError
		relNotFound    *RelationshipNotFoundError
		unknownType    *UnknownResourceTypeError
		structure      *InvalidStructureError
		constraint     *GenericConstraintError
		invalidValue   *InvalidAttributeValueError
		immutable      *ImmutableAttributeError
		conversion     *ConversionError
		identifier     *InvalidIdentifierError
		nativeNotFound *NativeResourceNotFoundError
		declaration    *InvalidDeclarationError
	)

	switch {
	case errors.As(err, &attrNotFound):
		return "attribute_not_found", "422"
	case errors.As(err, &relNotFound):
		return "relationship_not_found", "422"
	case errors.As(err, &unknownType):
		return "unknown_resource_type", "409"
	case errors.As(err, &structure):
		return "invalid_structure", "409"
	case errors.As(err, &constraint):
		return "constraint_violation", "422"
	case errors.As(err, &invalidValue):
		return "invalid_attribute_value", "422"
	case errors.As(err, &immutable):
		return "immutable_attribute", "422"
	case errors.As(err, &conversion):
		return "conversion_failed", "422"
	case errors.As(err, &identifier):
		return "invalid_identifier", "400"
	case errors.As(err, &nativeNotFound):
		return "resource_not_found", "404"
	case errors.As(err, &declaration):
		return "invalid_declaration", "500"
	default:
		return "internal_error", "500"
	}
}

func sourceRepr(sources []serde.Source) *serde.SourceRepr {
	for _, s := range sources {
		if ptr, ok := s.Pointer(); ok {
			return &serde.SourceRepr{Pointer: ptr.String()}
		}
	}

	return nil
}

// ToErrorReprs translates err into JSON:API error objects. A
// DeserializationError yields one object per validation item; any other
// error yields a single object whose source points at the first located
// source of err.
func ToErrorReprs(err error) []serde.ErrorRepr {
	if err == nil {
		return nil
	}

	var derr *serde.DeserializationError
	if errors.As(err, &derr) {
		reprs := make([]serde.ErrorRepr, 0, len(derr.Items))
		for _, item := range derr.Items {
			reprs = append(reprs, validationErrorRepr(item))
		}

		return reprs
	}

	var verr *converter.ValidationError
	if errors.As(err, &verr) {
		return []serde.ErrorRepr{validationErrorRepr(verr)}
	}

	code, status := errorCode(err)
	repr := serde.ErrorRepr{
		Status: status,
		Code:   code,
		Detail: err.Error(),
	}

	// wrapping context is dropped from the detail
	var sourced SourcedError
	if errors.As(err, &sourced) {
		repr.Detail = sourced.Error()
		repr.ErrorSource = sourceRepr(sourced.Sources())
	}

	return []serde.ErrorRepr{repr}
}

func validationErrorRepr(item *converter.ValidationError) serde.ErrorRepr {
	return serde.ErrorRepr{
		Status:      "422",
		Code:        "invalid_document",
		Detail:      item.Message,
		ErrorSource: &serde.SourceRepr{Pointer: item.Pointer.String()},
	}
}
