package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypePath(t *testing.T) {
	p1 := NewTypePath("Product")
	assert.Equal(t, "Product", p1.String())

	p2 := p1.Field("Variants")
	assert.Equal(t, "Product.Variants", p2.String())

	p3 := p2.Slice()
	assert.Equal(t, "Product.Variants[]", p3.String())

	p4 := p3.Field("SKU")
	assert.Equal(t, "Product.Variants[].SKU", p4.String())
	assert.Equal(t, "Product.Variants", p2.String())
}

func TestTypeStringer_TypeString(t *testing.T) {
	_, graph := loadShop(t)

	stringer := NewTypeStringer(AttributeName)

	tests := []struct {
		field string
		want  string
	}{
		{"ID", "int"},
		{"Name", "string"},
		{"Price", "decimal"},
		{"Dimensions", "tuple[float, float, float]"},
		{"Tags", "[]string"},
		{"Options", "map[string]string"},
		{"Note", "?string"},
		{"Status", "string"},
		{"Size", "record{width: float, height: float}"},
		{"CreatedAt", "datetime"},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.want, stringer.TypeString(shopField(t, graph, "Product", tt.field).Type))
		})
	}

	assert.Equal(t, "bytes", stringer.TypeString(shopField(t, graph, "Maker", "Logo").Type))
	assert.Equal(t, "string", stringer.TypeString(shopField(t, graph, "Maker", "ID").Type))
}

func TestTypeStringer_RecursiveRecord(t *testing.T) {
	_, graph := loadShop(t)

	category := graph.GetType(TypeID{PkgPath: shopPkg, Name: "Category"})
	assert.Equal(t, "record{id: string, label: string, parent: any}",
		NewTypeStringer(AttributeName).TypeString(category))
}

func TestTypeStringer_Unsupported(t *testing.T) {
	stringer := NewTypeStringer(AttributeName)

	assert.Equal(t, "", stringer.TypeString(nil))
	assert.Equal(t, "", stringer.TypeString(&TypeInfo{Kind: TypeKindUnknown}))
	assert.Equal(t, "", stringer.TypeString(&TypeInfo{Kind: TypeKindExternal, ID: TypeID{PkgPath: "net/url", Name: "URL"}}))
}
