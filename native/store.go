package native

import (
	"sync"

	"github.com/pkg/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"jsonapi-serde/mapper"
)

// stubber is implemented by descriptors able to stand in an empty object for
// an unknown identity.
type stubber interface {
	Stub(id any) any
}

// Store is an in-memory MutationContext. Objects are kept per class in
// insertion order.
type Store struct {
	// Lenient stores answer lookups of unknown identities with stubs when
	// the descriptor can make them.
	Lenient bool

	mu      sync.RWMutex
	classes map[string]*orderedmap.OrderedMap[any, any]
}

// NewStore returns an empty strict store.
func NewStore() *Store {
	return &Store{classes: map[string]*orderedmap.OrderedMap[any, any]{}}
}

// Put adds or replaces obj, keyed by its identity under descr.
func (s *Store) Put(descr mapper.NativeDescriptor, obj any) error {
	id, err := descr.Identity(obj)
	if err != nil {
		return errors.Wrapf(err, "storing %s", descr.Class())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	objs, ok := s.classes[descr.Class()]
	if !ok {
		objs = orderedmap.New[any, any]()
		s.classes[descr.Class()] = objs
	}

	objs.Set(id, obj)

	return nil
}

// Delete removes the object of class descr identified by id and reports
// whether there was one.
func (s *Store) Delete(descr mapper.NativeDescriptor, id any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	objs, ok := s.classes[descr.Class()]
	if !ok {
		return false
	}

	_, present := objs.Delete(id)

	return present
}

func (s *Store) QueryByIdentity(descr mapper.NativeDescriptor, id any) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if objs, ok := s.classes[descr.Class()]; ok {
		if obj, ok := objs.Get(id); ok {
			return obj, nil
		}
	}

	if st, ok := descr.(stubber); ok && s.Lenient {
		if obj := st.Stub(id); obj != nil {
			return obj, nil
		}
	}

	return nil, &mapper.NativeResourceNotFoundError{Descriptor: descr, ID: id}
}

// All lists the stored objects of class descr in insertion order.
func (s *Store) All(descr mapper.NativeDescriptor) []any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	objs, ok := s.classes[descr.Class()]
	if !ok {
		return nil
	}

	out := make([]any, 0, objs.Len())
	for pair := objs.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}

	return out
}

var _ mapper.MutationContext = (*Store)(nil)
