package converter

import (
	"errors"
	"fmt"
	"math"
	"reflect"

	"jsonapi-serde/jsonpointer"
)

// Confidence values. Lower is better; failed conversions score +Inf.
const (
	ConfidenceExact          = 0.5
	ConfidenceAny            = 1.0
	ConfidenceNull           = 1.0
	ConfidenceEmptyRecord    = 1.0
	ConfidenceNumeric        = 2.0
	ConfidenceDecoded        = 2.0 // decimal and base64 strings
	ConfidenceEmptyContainer = 2.0
	ConfidenceTemporal       = 3.0
	varTuplePenalty          = 0.5
)

var inf = math.Inf(1)

// Failed is the confidence of a conversion that did not succeed.
var Failed = inf

// ErrNoCustomConverter is returned when a custom shape has no matching converter.
var ErrNoCustomConverter = errors.New("no custom converter registered")

// ConvertFunc converts value against shape at ptr. It returns the converted
// value and its confidence. A non-nil error aborts the whole conversion.
type ConvertFunc func(c *Converter, ctx Context, ptr jsonpointer.Pointer, shape *Shape, value any) (any, float64, error)

// CustomConverter takes over conversion of matching shapes.
type CustomConverter struct {
	// Name matches shapes with the same Name.
	Name string

	// GoType matches shapes whose GoType is assignable to it.
	GoType reflect.Type

	// TypeName renders the matched shape in messages. Defaults to the shape name.
	TypeName func(shape *Shape) string

	Convert ConvertFunc
}

func (cc *CustomConverter) matchesExactly(s *Shape) bool {
	if cc.Name != "" && s.Name == cc.Name {
		return true
	}

	return cc.GoType != nil && s.GoType == cc.GoType
}

func (cc *CustomConverter) matchesAssignable(s *Shape) bool {
	return cc.GoType != nil && s.GoType != nil && s.GoType.AssignableTo(cc.GoType)
}

// NameMapper translates between wire keys and internal names.
// Returning false drops the key.
type NameMapper interface {
	// Resolve maps a wire key of a mapping to the key stored in the result.
	Resolve(ptr jsonpointer.Pointer, shape *Shape, name string) (string, bool)

	// ReverseResolve maps a record field name to the wire key it is read from.
	ReverseResolve(ptr jsonpointer.Pointer, shape *Shape, name string) (string, bool)
}

// NameMapperFuncs adapts a pair of functions to NameMapper. A nil function
// is the identity.
type NameMapperFuncs struct {
	ResolveFunc        func(ptr jsonpointer.Pointer, shape *Shape, name string) (string, bool)
	ReverseResolveFunc func(ptr jsonpointer.Pointer, shape *Shape, name string) (string, bool)
}

func (f NameMapperFuncs) Resolve(ptr jsonpointer.Pointer, shape *Shape, name string) (string, bool) {
	if f.ResolveFunc == nil {
		return name, true
	}

	return f.ResolveFunc(ptr, shape, name)
}

func (f NameMapperFuncs) ReverseResolve(ptr jsonpointer.Pointer, shape *Shape, name string) (string, bool) {
	if f.ReverseResolveFunc == nil {
		return name, true
	}

	return f.ReverseResolveFunc(ptr, shape, name)
}

// AnyShapeName registers a name mapper used when no shape specific one exists.
const AnyShapeName = "*"

// Visitor may replace every converted value; it runs after each node.
type Visitor func(c *Converter, ctx Context, ptr jsonpointer.Pointer, shape *Shape, value any) any

// Converter converts jsonic values into typed values described by shapes.
// A Converter is immutable after construction and safe for concurrent use.
type Converter struct {
	customs     []CustomConverter
	nameMappers map[string]NameMapper
	visitor     Visitor
}

// Option configures a Converter.
type Option func(*Converter)

// WithCustomConverter registers cc. Converters are consulted in
// registration order; the first match wins.
func WithCustomConverter(cc CustomConverter) Option {
	return func(c *Converter) {
		c.customs = append(c.customs, cc)
	}
}

// WithNameMapper registers nm for shapes named shapeName, or for every shape
// when shapeName is AnyShapeName.
func WithNameMapper(shapeName string, nm NameMapper) Option {
	return func(c *Converter) {
		c.nameMappers[shapeName] = nm
	}
}

// WithVisitor installs the post conversion visitor.
func WithVisitor(v Visitor) Option {
	return func(c *Converter) {
		c.visitor = v
	}
}

// New returns a Converter.
func New(opts ...Option) *Converter {
	c := &Converter{nameMappers: map[string]NameMapper{}}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Convert converts value against shape starting at the root pointer.
// Validation errors are routed through ctx; the returned error is whatever
// ctx decided to abort with.
func (c *Converter) Convert(ctx Context, shape *Shape, value any) (any, error) {
	v, _, err := c.ConvertAt(ctx, jsonpointer.Root(), shape, value)
	return v, err
}

// ConvertValue converts value failing on the first validation error.
func (c *Converter) ConvertValue(shape *Shape, value any) (any, error) {
	return c.Convert(FailFastContext{}, shape, value)
}

// ConvertAt converts a nested value; custom converters use it to recurse.
func (c *Converter) ConvertAt(ctx Context, ptr jsonpointer.Pointer, shape *Shape, value any) (any, float64, error) {
	v, conf, err := c.convertInner(ctx, ptr, shape, value)
	if err != nil {
		return nil, inf, err
	}

	if c.visitor != nil {
		v = c.visitor(c, ctx, ptr, shape, v)
	}

	return v, conf, nil
}

func (c *Converter) lookupCustom(shape *Shape) *CustomConverter {
	for i := range c.customs {
		if c.customs[i].matchesExactly(shape) {
			return &c.customs[i]
		}
	}

	for i := range c.customs {
		if c.customs[i].matchesAssignable(shape) {
			return &c.customs[i]
		}
	}

	return nil
}

func (c *Converter) lookupNameMapper(shape *Shape) NameMapper {
	if shape.Name != "" {
		if nm, ok := c.nameMappers[shape.Name]; ok {
			return nm
		}
	}

	return c.nameMappers[AnyShapeName]
}

func (c *Converter) convertInner(ctx Context, ptr jsonpointer.Pointer, shape *Shape, value any) (any, float64, error) {
	if cc := c.lookupCustom(shape); cc != nil {
		return cc.Convert(c, ctx, ptr, shape, value)
	}

	switch shape.Kind {
	case KindAny:
		return NormalizeJSON(value), ConfidenceAny, nil
	case KindPrimitive:
		return c.convertPrimitive(ctx, ptr, shape, value)
	case KindOptional:
		return c.convertOptional(ctx, ptr, shape.Elem, value)
	case KindUnion:
		if elem, ok := shape.optionalElem(); ok {
			return c.convertOptional(ctx, ptr, elem, value)
		}

		return c.convertUnion(ctx, ptr, shape, value)
	case KindSequence:
		return c.convertSequence(ctx, ptr, shape, value)
	case KindSet:
		return c.convertSet(ctx, ptr, shape, value)
	case KindTuple:
		return c.convertTuple(ctx, ptr, shape, value)
	case KindVarTuple:
		return c.convertVarTuple(ctx, ptr, shape, value)
	case KindMapping:
		return c.convertMapping(ctx, ptr, shape, value)
	case KindRecord:
		return c.convertRecord(ctx, ptr, shape, value)
	case KindCustom:
		return nil, inf, fmt.Errorf("%w: %s at %s", ErrNoCustomConverter, shape.Name, ptr)
	default:
		return nil, inf, fmt.Errorf("converter: invalid shape kind %s at %s", shape.Kind, ptr)
	}
}

func (c *Converter) convertOptional(ctx Context, ptr jsonpointer.Pointer, elem *Shape, value any) (any, float64, error) {
	if value == nil {
		return nil, ConfidenceNull, nil
	}

	return c.ConvertAt(ctx, ptr, elem, value)
}

func (c *Converter) convertUnion(ctx Context, ptr jsonpointer.Pointer, shape *Shape, value any) (any, float64, error) {
	var (
		best     any
		bestRank = inf
	)

	for i, alt := range shape.Items {
		v, conf, err := c.ConvertAt(FailFastContext{}, ptr, alt, value)
		if err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				continue
			}

			return nil, inf, err
		}

		if math.IsInf(conf, 1) {
			continue
		}

		rank := conf*float64(len(shape.Items)) + float64(i)
		if rank < bestRank {
			best, bestRank = v, rank
		}
	}

	if math.IsInf(bestRank, 1) {
		return c.Mismatch(ctx, ptr, shape, value)
	}

	return best, bestRank, nil
}

// Reject reports a validation error at ptr through ctx and returns the
// failed conversion triple.
func (c *Converter) Reject(ctx Context, ptr jsonpointer.Pointer, cause error, format string, args ...any) (any, float64, error) {
	err := ctx.ValidationErrorOccurred(&ValidationError{
		Pointer: ptr,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	})

	return nil, inf, err
}

// Mismatch reports that value does not fit shape.
func (c *Converter) Mismatch(ctx Context, ptr jsonpointer.Pointer, shape *Shape, value any) (any, float64, error) {
	return c.Reject(ctx, ptr, nil, "value has type %s (%s) where %s expected",
		JSONTypeOf(value), JSONRepr(value), c.TypeRepr(shape))
}

func (c *Converter) mismatchDescribed(ctx Context, ptr jsonpointer.Pointer, expected string, value any) (any, float64, error) {
	return c.Reject(ctx, ptr, nil, "value has type %s (%s) where %s expected",
		JSONTypeOf(value), JSONRepr(value), expected)
}
