package analyze

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsonapi-serde/internal/mapping"
)

func TestScaffold(t *testing.T) {
	_, graph := loadShop(t)

	mf, err := NewScaffolder(graph).Scaffold()
	require.NoError(t, err)

	require.Len(t, mf.Resources, 3)
	assert.Equal(t, "categories", mf.Resources[0].Type)
	assert.Equal(t, "makers", mf.Resources[1].Type)
	assert.Equal(t, "products", mf.Resources[2].Type)

	product := mf.Resources[2]
	assert.Equal(t, "Product", product.Native)
	assert.Equal(t, "int", product.ID.Kind)

	assert.Equal(t, []mapping.AttributeDef{
		{Name: "name", Type: "string"},
		{Name: "price", Type: "decimal"},
		{Name: "dimensions", Type: "tuple[float, float, float]"},
		{Name: "tags", Type: "[]string"},
		{Name: "options", Type: "map[string]string"},
		{Name: "note", Type: "string", Nullable: true},
		{Name: "status", Type: "string"},
		{Name: "size", Type: "record{width: float, height: float}"},
		{Name: "created", Type: "datetime"},
	}, product.Attributes)

	assert.Equal(t, []mapping.RelationshipDef{
		{Name: "categories", To: "categories", Cardinality: mapping.CardinalityNameMany},
		{Name: "maker", To: "makers", Cardinality: mapping.CardinalityNameOne, Nullable: true},
	}, product.Relationships)

	assert.Equal(t, "CreatedAt", product.OneToOne["created"])
	assert.Equal(t, "Name", product.OneToOne["name"])
	assert.NotContains(t, product.OneToOne, "internal")

	maker := mf.Resources[1]
	assert.Equal(t, "uuid", maker.ID.Kind)
	assert.Equal(t, "bytes", maker.FindAttribute("logo").Type)
}

func TestScaffold_Named(t *testing.T) {
	_, graph := loadShop(t)

	mf, err := NewScaffolder(graph).Scaffold("Category")
	require.NoError(t, err)
	require.Len(t, mf.Resources, 1)

	category := mf.Resources[0]
	assert.Equal(t, "string", category.ID.Kind)
	assert.Equal(t, []mapping.RelationshipDef{
		{Name: "parent", To: "categories", Cardinality: mapping.CardinalityNameOne, Nullable: true},
	}, category.Relationships)

	_, err = NewScaffolder(graph).Scaffold("Settings")
	assert.EqualError(t, err, "struct Settings has no ID field")

	_, err = NewScaffolder(graph).Scaffold("Nope")
	assert.EqualError(t, err, "struct Nope not found")
}

func TestScaffold_BuildsAndValidates(t *testing.T) {
	_, graph := loadShop(t)

	mf, err := NewScaffolder(graph).Scaffold()
	require.NoError(t, err)

	data, err := mapping.Marshal(mf)
	require.NoError(t, err)

	parsed, err := mapping.Parse(data)
	require.NoError(t, err)

	diags := mapping.Validate(parsed, nil)
	require.False(t, diags.HasErrors(), "%v", diags.Errors)

	_, err = mapping.Build(parsed, nil, nil)
	require.NoError(t, err)
}

func TestResourceTypeName(t *testing.T) {
	tests := map[string]string{
		"Product":   "products",
		"Category":  "categories",
		"Day":       "days",
		"Box":       "boxes",
		"Address":   "addresses",
		"OrderItem": "order_items",
		"HTTPRoute": "http_routes",
		"Y":         "ys",
	}

	for in, want := range tests {
		assert.Equal(t, want, ResourceTypeName(in), in)
	}
}

func TestAttributeName(t *testing.T) {
	assert.Equal(t, "created_at", AttributeName(&FieldInfo{Name: "CreatedAt"}))
	assert.Equal(t, "owner_id", AttributeName(&FieldInfo{Name: "OwnerID"}))
	assert.Equal(t, "when", AttributeName(&FieldInfo{Name: "CreatedAt", Tag: `json:"when"`}))
}
