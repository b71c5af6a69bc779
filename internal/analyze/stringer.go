package analyze

import (
	"go/types"
	"strings"
)

// TypePath builds a readable path string for a type.
// Examples:
//   - "Product" for a simple struct
//   - "Product.Dimensions" for a nested field
//   - "Product.Variants[]" for a slice field
//   - "Product.Variants[].SKU" for a field within slice elements
type TypePath struct {
	parts []string
}

// NewTypePath creates a new TypePath from a root type name.
func NewTypePath(root string) *TypePath {
	return &TypePath{
		parts: []string{root},
	}
}

// Field appends a field name to the path.
func (p *TypePath) Field(name string) *TypePath {
	return &TypePath{
		parts: append(append([]string{}, p.parts...), name),
	}
}

// Slice appends a slice indicator "[]" to the path.
func (p *TypePath) Slice() *TypePath {
	if len(p.parts) == 0 {
		return &TypePath{parts: []string{"[]"}}
	}

	newParts := make([]string, len(p.parts))
	copy(newParts, p.parts)
	newParts[len(newParts)-1] += "[]"

	return &TypePath{parts: newParts}
}

// String returns the full path string.
func (p *TypePath) String() string {
	return strings.Join(p.parts, ".")
}

// externalExprs maps external named types onto the primitive they are
// exchanged as.
var externalExprs = map[string]string{
	"time.Time":                            "datetime",
	"github.com/shopspring/decimal.Decimal": "decimal",
	"github.com/google/uuid.UUID":           "string",
	"encoding/json.Number":                  "float",
}

// TypeStringer renders TypeInfos as mapping file type expressions. Types
// without an expression render as the empty string, which accepts any value.
type TypeStringer struct {
	// AttributeName names the members of record expressions.
	AttributeName func(f *FieldInfo) string

	seen map[*TypeInfo]bool
}

// NewTypeStringer creates a new TypeStringer naming record members with
// name.
func NewTypeStringer(name func(f *FieldInfo) string) *TypeStringer {
	return &TypeStringer{AttributeName: name, seen: make(map[*TypeInfo]bool)}
}

// TypeString returns the type expression of t.
func (s *TypeStringer) TypeString(t *TypeInfo) string {
	if t == nil {
		return ""
	}

	switch t.Kind {
	case TypeKindBasic:
		return basicExpr(t)

	case TypeKindAlias:
		return s.TypeString(t.Underlying)

	case TypeKindExternal:
		return externalExprs[t.ID.String()]

	case TypeKindPointer:
		return optional(s.TypeString(t.ElemType))

	case TypeKindSlice:
		if b := basic(t.ElemType); b != nil && b.Kind() == types.Uint8 {
			return "bytes"
		}

		return "[]" + orAny(s.TypeString(t.ElemType))

	case TypeKindArray:
		elem := orAny(s.TypeString(t.ElemType))
		items := make([]string, t.Len)

		for i := range items {
			items[i] = elem
		}

		return "tuple[" + strings.Join(items, ", ") + "]"

	case TypeKindMap:
		if basicExpr(t.KeyType) != "string" {
			return ""
		}

		return "map[string]" + orAny(s.TypeString(t.ElemType))

	case TypeKindStruct:
		return s.recordExpr(t)

	default:
		return ""
	}
}

func (s *TypeStringer) recordExpr(t *TypeInfo) string {
	if s.seen[t] {
		return ""
	}

	s.seen[t] = true
	defer delete(s.seen, t)

	var members []string

	for i := range t.Fields {
		f := &t.Fields[i]
		if f.Embedded || f.Skipped() {
			continue
		}

		members = append(members, s.AttributeName(f)+": "+orAny(s.TypeString(f.Type)))
	}

	if len(members) == 0 {
		return ""
	}

	return "record{" + strings.Join(members, ", ") + "}"
}

// basic returns the basic type underlying t, if any.
func basic(t *TypeInfo) *types.Basic {
	if t == nil || t.GoType == nil {
		return nil
	}

	b, _ := t.GoType.Underlying().(*types.Basic)

	return b
}

func basicExpr(t *TypeInfo) string {
	b := basic(t)
	if b == nil {
		return ""
	}

	switch info := b.Info(); {
	case info&types.IsString != 0:
		return "string"
	case info&types.IsBoolean != 0:
		return "bool"
	case info&types.IsFloat != 0:
		return "float"
	case info&types.IsInteger != 0:
		return "int"
	default:
		return ""
	}
}

func optional(expr string) string {
	if expr == "" || strings.HasPrefix(expr, "?") {
		return expr
	}

	return "?" + expr
}

func orAny(expr string) string {
	if expr == "" {
		return "any"
	}

	return expr
}
