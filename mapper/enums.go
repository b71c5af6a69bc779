package mapper

//go:generate go tool stringer -type=Direction -output=direction_string.go
//go:generate go tool stringer -type=Operation -output=operation_string.go
//go:generate go tool stringer -type=RelationshipPart -output=relationshippart_string.go

// Direction restricts an attribute mapping to one conversion direction.
type Direction int

const (
	DirectionNone         Direction = iota // mapping is inert
	DirectionToSerdeOnly                   // native to document only
	DirectionToNativeOnly                  // document to native only
	DirectionBidi                          // both ways
)

// ToSerde reports whether d converts native values into attributes.
func (d Direction) ToSerde() bool { return d == DirectionToSerdeOnly || d == DirectionBidi }

// ToNative reports whether d converts attributes into native values.
func (d Direction) ToNative() bool { return d == DirectionToNativeOnly || d == DirectionBidi }

// Operation identifies the mapper operation a SiteContext belongs to.
type Operation int

const (
	_ Operation = iota

	OperationCreate
	OperationUpdate
	OperationUpdateRel
	OperationQueryBuilding
	OperationRetrieve
)

// RelationshipPart selects which members of a relationship object are
// built. Values combine as a bitmask.
type RelationshipPart int

const (
	PartNone  RelationshipPart = 0
	PartLinks RelationshipPart = 1 << (iota - 1)
	PartData
	PartAll = PartLinks | PartData
)

// Has reports whether p selects every bit of q.
func (p RelationshipPart) Has(q RelationshipPart) bool { return p&q == q }
