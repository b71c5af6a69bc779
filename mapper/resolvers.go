package mapper

import (
	"net/url"
	"sync"

	"jsonapi-serde/serde"
)

// Driver translates identities between both sides.
type Driver interface {
	// SerdeIdentityByNative returns the wire id of native.
	SerdeIdentityByNative(m *Mapper, native any) (string, error)
	// NativeIdentityBySerde returns the native identity an identifier
	// refers to.
	NativeIdentityBySerde(m *Mapper, id serde.ResourceIdRepr) (any, error)
}

// SerdeTypeResolver translates between resource descriptors and wire type
// names.
type SerdeTypeResolver interface {
	QueryTypeNameByDescriptor(descr *ResourceDescriptor) (string, error)
	QueryDescriptorByTypeName(name string) (*ResourceDescriptor, error)
	// MapperAdded is called whenever a MapperContext creates a mapper.
	MapperAdded(m *Mapper) error
}

// RegistryTypeResolver uses resource descriptor names as wire type names.
type RegistryTypeResolver struct {
	mu    sync.RWMutex
	types map[string]*ResourceDescriptor
}

// NewRegistryTypeResolver returns an empty RegistryTypeResolver.
func NewRegistryTypeResolver() *RegistryTypeResolver {
	return &RegistryTypeResolver{types: map[string]*ResourceDescriptor{}}
}

func (r *RegistryTypeResolver) QueryTypeNameByDescriptor(descr *ResourceDescriptor) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.types[descr.Name()] != descr {
		return "", &UnknownResourceTypeError{Name: descr.Name()}
	}

	return descr.Name(), nil
}

func (r *RegistryTypeResolver) QueryDescriptorByTypeName(name string) (*ResourceDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	descr, ok := r.types[name]
	if !ok {
		return nil, &UnknownResourceTypeError{Name: name}
	}

	return descr, nil
}

func (r *RegistryTypeResolver) MapperAdded(m *Mapper) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := m.Resource().Name()
	if existing, ok := r.types[name]; ok && existing != m.Resource() {
		return declarationErrorf("resource type %s is already registered", name)
	}

	r.types[name] = m.Resource()

	return nil
}

// PaginatedEndpoint carries the links of a collection endpoint. Nil URLs are
// absent.
type PaginatedEndpoint struct {
	Self  *url.URL
	Prev  *url.URL
	Next  *url.URL
	First *url.URL
	Last  *url.URL
}

// Links returns the links object of the endpoint, nil for a nil endpoint.
func (p *PaginatedEndpoint) Links() *serde.LinksRepr {
	if p == nil {
		return nil
	}

	return &serde.LinksRepr{Self: p.Self, Prev: p.Prev, Next: p.Next, First: p.First, Last: p.Last}
}

// EndpointResolver supplies the URLs links are built from. A nil result means
// no link.
type EndpointResolver interface {
	ResolveSingletonEndpoint(ctx ToSerdeContext, m *Mapper, native any) (*url.URL, error)
	ResolveCollectionEndpoint(ctx ToSerdeContext, m *Mapper, natives []any) (*PaginatedEndpoint, error)
	ResolveToOneRelationshipEndpoint(ctx ToSerdeContext, m *Mapper, rm *RelationshipMapping, native any) (*url.URL, error)
	ResolveToManyRelationshipEndpoint(ctx ToSerdeContext, m *Mapper, rm *RelationshipMapping, native any) (*PaginatedEndpoint, error)
}

// NullEndpointResolver resolves no endpoint at all.
type NullEndpointResolver struct{}

func (NullEndpointResolver) ResolveSingletonEndpoint(ToSerdeContext, *Mapper, any) (*url.URL, error) {
	return nil, nil
}

func (NullEndpointResolver) ResolveCollectionEndpoint(ToSerdeContext, *Mapper, []any) (*PaginatedEndpoint, error) {
	return nil, nil
}

func (NullEndpointResolver) ResolveToOneRelationshipEndpoint(ToSerdeContext, *Mapper, *RelationshipMapping, any) (*url.URL, error) {
	return nil, nil
}

func (NullEndpointResolver) ResolveToManyRelationshipEndpoint(ToSerdeContext, *Mapper, *RelationshipMapping, any) (*PaginatedEndpoint, error) {
	return nil, nil
}

// PathEndpointResolver lays endpoints out under Base the conventional way:
// /{type}, /{type}/{id} and /{type}/{id}/relationships/{name}.
type PathEndpointResolver struct {
	Base *url.URL
}

func (p PathEndpointResolver) join(elem ...string) *url.URL {
	base := p.Base
	if base == nil {
		base = &url.URL{Path: "/"}
	}

	return base.JoinPath(elem...)
}

func (p PathEndpointResolver) resourcePath(ctx ToSerdeContext, m *Mapper, native any) ([]string, error) {
	typ, err := ctx.QueryTypeNameByDescriptor(m.Resource())
	if err != nil {
		return nil, err
	}

	id, err := ctx.SerdeIdentityByNative(m, native)
	if err != nil {
		return nil, err
	}

	return []string{typ, id}, nil
}

func (p PathEndpointResolver) ResolveSingletonEndpoint(ctx ToSerdeContext, m *Mapper, native any) (*url.URL, error) {
	elems, err := p.resourcePath(ctx, m, native)
	if err != nil {
		return nil, err
	}

	return p.join(elems...), nil
}

func (p PathEndpointResolver) ResolveCollectionEndpoint(ctx ToSerdeContext, m *Mapper, _ []any) (*PaginatedEndpoint, error) {
	typ, err := ctx.QueryTypeNameByDescriptor(m.Resource())
	if err != nil {
		return nil, err
	}

	return &PaginatedEndpoint{Self: p.join(typ)}, nil
}

func (p PathEndpointResolver) ResolveToOneRelationshipEndpoint(ctx ToSerdeContext, m *Mapper, rm *RelationshipMapping, native any) (*url.URL, error) {
	elems, err := p.resourcePath(ctx, m, native)
	if err != nil {
		return nil, err
	}

	return p.join(append(elems, "relationships", rm.Name())...), nil
}

func (p PathEndpointResolver) ResolveToManyRelationshipEndpoint(ctx ToSerdeContext, m *Mapper, rm *RelationshipMapping, native any) (*PaginatedEndpoint, error) {
	self, err := p.ResolveToOneRelationshipEndpoint(ctx, m, rm, native)
	if err != nil {
		return nil, err
	}

	return &PaginatedEndpoint{Self: self}, nil
}

var (
	_ SerdeTypeResolver = (*RegistryTypeResolver)(nil)
	_ EndpointResolver  = NullEndpointResolver{}
	_ EndpointResolver  = PathEndpointResolver{}
)
