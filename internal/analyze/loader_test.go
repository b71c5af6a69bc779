package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shopPkg = "jsonapi-serde/internal/analyze/testdata/shop"

func loadShop(t *testing.T) (*Analyzer, *TypeGraph) {
	t.Helper()

	analyzer := NewAnalyzer()
	graph, err := analyzer.LoadPackages("./testdata/shop")
	require.NoError(t, err)
	require.NotNil(t, graph)

	return analyzer, graph
}

func shopField(t *testing.T, graph *TypeGraph, typeName, fieldName string) *FieldInfo {
	t.Helper()

	info := graph.GetType(TypeID{PkgPath: shopPkg, Name: typeName})
	require.NotNil(t, info, typeName)

	f, ok := info.Field(fieldName)
	require.True(t, ok, "%s.%s", typeName, fieldName)

	return f
}

func TestAnalyzer_LoadPackages(t *testing.T) {
	_, graph := loadShop(t)

	require.Contains(t, graph.Packages, shopPkg)
	assert.Equal(t, "shop", graph.Packages[shopPkg].Name)
	assert.Equal(t, []TypeID{
		{PkgPath: shopPkg, Name: "Category"},
		{PkgPath: shopPkg, Name: "Maker"},
		{PkgPath: shopPkg, Name: "Product"},
		{PkgPath: shopPkg, Name: "Settings"},
		{PkgPath: shopPkg, Name: "Size"},
		{PkgPath: shopPkg, Name: "Status"},
	}, graph.Packages[shopPkg].Types)
}

func TestAnalyzer_LoadPackages_Error(t *testing.T) {
	_, err := NewAnalyzer().LoadPackages("./testdata/missing")
	assert.Error(t, err)
}

func TestAnalyzer_ExportedFieldsOnly(t *testing.T) {
	_, graph := loadShop(t)

	product := graph.GetType(TypeID{PkgPath: shopPkg, Name: "Product"})
	require.NotNil(t, product)
	assert.Equal(t, TypeKindStruct, product.Kind)

	_, ok := product.Field("secret")
	assert.False(t, ok)
	assert.Len(t, product.Fields, 13)
}

func TestAnalyzer_FieldKinds(t *testing.T) {
	_, graph := loadShop(t)

	tests := []struct {
		field string
		kind  TypeKind
	}{
		{"ID", TypeKindBasic},
		{"Price", TypeKindExternal},
		{"Dimensions", TypeKindArray},
		{"Tags", TypeKindSlice},
		{"Options", TypeKindMap},
		{"Note", TypeKindPointer},
		{"Status", TypeKindAlias},
		{"Maker", TypeKindPointer},
		{"Size", TypeKindStruct},
		{"CreatedAt", TypeKindExternal},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.kind, shopField(t, graph, "Product", tt.field).Type.Kind)
		})
	}

	dims := shopField(t, graph, "Product", "Dimensions").Type
	assert.Equal(t, int64(3), dims.Len)
	assert.Equal(t, TypeKindBasic, dims.ElemType.Kind)

	options := shopField(t, graph, "Product", "Options").Type
	assert.Equal(t, TypeKindBasic, options.KeyType.Kind)
}

func TestAnalyzer_TypeAliasIsResolved(t *testing.T) {
	_, graph := loadShop(t)

	assert.Equal(t, TypeKindBasic, shopField(t, graph, "Category", "Label").Type.Kind)
	assert.Nil(t, graph.GetType(TypeID{PkgPath: shopPkg, Name: "Label"}))
}

func TestAnalyzer_RecursiveType(t *testing.T) {
	_, graph := loadShop(t)

	category := graph.GetType(TypeID{PkgPath: shopPkg, Name: "Category"})
	parent := shopField(t, graph, "Category", "Parent")
	assert.Same(t, category, parent.Type.ElemType)
}

func TestAnalyzer_GetStruct(t *testing.T) {
	analyzer, _ := loadShop(t)

	info, err := analyzer.GetStruct(shopPkg, "Maker")
	require.NoError(t, err)
	assert.Equal(t, "Maker", info.ID.Name)

	_, err = analyzer.GetStruct(shopPkg, "Status")
	assert.ErrorContains(t, err, "is not a struct (kind: alias)")

	_, err = analyzer.GetStruct(shopPkg, "Nope")
	assert.ErrorContains(t, err, "not found")
}

func TestTypeID_String(t *testing.T) {
	id := TypeID{PkgPath: "example.com/shop", Name: "Product"}
	assert.Equal(t, "example.com/shop.Product", id.String())

	idNoPkg := TypeID{Name: "int"}
	assert.Equal(t, "int", idNoPkg.String())
}

func TestTypeKind_String(t *testing.T) {
	assert.Equal(t, "basic", TypeKindBasic.String())
	assert.Equal(t, "struct", TypeKindStruct.String())
	assert.Equal(t, "pointer", TypeKindPointer.String())
	assert.Equal(t, "slice", TypeKindSlice.String())
	assert.Equal(t, "map", TypeKindMap.String())
	assert.Equal(t, "alias", TypeKindAlias.String())
	assert.Equal(t, "external", TypeKindExternal.String())
	assert.Equal(t, "unknown", TypeKindUnknown.String())
}

func TestFieldInfo_JSONName(t *testing.T) {
	f1 := FieldInfo{Name: "MyField", Tag: `json:"my_field"`}
	assert.Equal(t, "my_field", f1.JSONName())

	f2 := FieldInfo{Name: "MyField", Tag: `json:"my_field,omitempty"`}
	assert.Equal(t, "my_field", f2.JSONName())

	f3 := FieldInfo{Name: "MyField", Tag: `json:",omitempty"`}
	assert.Equal(t, "", f3.JSONName())
	assert.False(t, f3.Skipped())

	f4 := FieldInfo{Name: "MyField", Tag: `json:"-"`}
	assert.Equal(t, "", f4.JSONName())
	assert.True(t, f4.Skipped())
}
