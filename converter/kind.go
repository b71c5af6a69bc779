package converter

import (
	"encoding/json"
	"reflect"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/shopspring/decimal"
)

//go:generate go tool stringer -type=Kind -output=kind_string.go
//go:generate go tool stringer -type=Primitive -output=primitive_string.go

// Kind tags the structural variant of a Shape.
type Kind int

const (
	_ Kind = iota // skip zero value, use it as a default (invalid) value for Kind

	KindAny       // any jsonic value, passed through
	KindPrimitive // a scalar, see Primitive
	KindOptional  // Elem or null
	KindUnion     // one of Items
	KindSequence  // ordered list of Elem
	KindSet       // unordered unique Elem values
	KindTuple     // fixed arity, one shape per position in Items
	KindVarTuple  // variable length tuple of Elem
	KindMapping   // string keyed object of Elem
	KindRecord    // typed object with declared Fields
	KindCustom    // handled by a registered CustomConverter
)

// Primitive tags the scalar type of a KindPrimitive Shape.
type Primitive int

const (
	_ Primitive = iota // skip zero value, use it as a default (invalid) value for Primitive

	PrimitiveString
	PrimitiveInt
	PrimitiveFloat
	PrimitiveBool
	PrimitiveBytes
	PrimitiveDecimal
	PrimitiveDateTime      // time.Time, always zone aware
	PrimitiveLocalDateTime // LocalDateTime, wall clock without zone
	PrimitiveDate          // Date
	PrimitiveNull
)

// IsNumeric reports whether p accepts JSON numbers without a type mismatch.
func (p Primitive) IsNumeric() bool {
	switch p {
	default:
		return false
	case PrimitiveInt, PrimitiveFloat, PrimitiveDecimal:
		return true
	}
}

// IsTemporal reports whether p denotes a date or time.
func (p Primitive) IsTemporal() bool {
	switch p {
	default:
		return false
	case PrimitiveDateTime, PrimitiveLocalDateTime, PrimitiveDate:
		return true
	}
}

var (
	tyTime          = reflect.TypeFor[time.Time]()
	tyLocalDateTime = reflect.TypeFor[LocalDateTime]()
	tyDate          = reflect.TypeFor[Date]()
	tyDecimal       = reflect.TypeFor[decimal.Decimal]()
	tyBytes         = reflect.TypeFor[[]byte]()
	tyTuple         = reflect.TypeFor[Tuple]()
	tyAnySet        = reflect.TypeFor[mapset.Set[any]]()
	tyNumber        = reflect.TypeFor[json.Number]()
)

// PrimitiveFromReflectType returns the primitive a Go type converts to, or 0
// if the type is not a scalar.
func PrimitiveFromReflectType(rtype reflect.Type) Primitive {
	if rtype == nil {
		return 0
	}

	switch rtype {
	case tyTime:
		return PrimitiveDateTime
	case tyLocalDateTime:
		return PrimitiveLocalDateTime
	case tyDate:
		return PrimitiveDate
	case tyDecimal:
		return PrimitiveDecimal
	case tyBytes:
		return PrimitiveBytes
	case tyNumber:
		return PrimitiveFloat
	}

	switch rtype.Kind() {
	default:
		return 0
	case reflect.String:
		return PrimitiveString
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return PrimitiveInt
	case reflect.Float32, reflect.Float64:
		return PrimitiveFloat
	case reflect.Bool:
		return PrimitiveBool
	}
}
