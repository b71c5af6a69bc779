package native

import (
	"github.com/pkg/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"jsonapi-serde/deferred"
	"jsonapi-serde/mapper"
)

// Builder collects the state of a new or updated object. It implements
// mapper.NativeUpdater; for new objects the manipulators are not used.
type Builder struct {
	descr  *descriptor
	target any

	id    any
	hasID bool

	values    *orderedmap.OrderedMap[string, any]
	immutable map[string]mapper.MutatorDescriptor
	toOne     *orderedmap.OrderedMap[string, *toOneSlot]
	toMany    *orderedmap.OrderedMap[string, *toManySlot]
	ops       []func(mctx mapper.MutationContext, obj any) error
}

func newBuilder(d *descriptor, target any) *Builder {
	return &Builder{
		descr:     d,
		target:    target,
		values:    orderedmap.New[string, any](),
		immutable: map[string]mapper.MutatorDescriptor{},
		toOne:     orderedmap.New[string, *toOneSlot](),
		toMany:    orderedmap.New[string, *toManySlot](),
	}
}

// SetID fixes the identity of a new object instead of generating one.
func (b *Builder) SetID(id any) {
	b.id, b.hasID = id, true
}

func (b *Builder) attribute(descr mapper.NativeAttributeDescriptor) (*Attribute, error) {
	a, ok := descr.(*Attribute)
	if !ok || a.owner != b.descr {
		return nil, &mapper.NativeAttributeNotFoundError{Descriptor: b.descr.self, Name: descr.Name()}
	}

	return a, nil
}

func (b *Builder) Set(descr mapper.NativeAttributeDescriptor, value any) error {
	a, err := b.attribute(descr)
	if err != nil {
		return err
	}

	b.values.Set(a.name, value)

	return nil
}

func (b *Builder) MarkImmutable(descr mapper.NativeAttributeDescriptor, mutator mapper.MutatorDescriptor) {
	b.immutable[descr.Name()] = mutator
}

type toOneSlot struct {
	rel     *ToOne
	nullify bool
	id      any
}

func (s *toOneSlot) Nullify() { s.nullify, s.id = true, nil }

func (s *toOneSlot) Set(id any) { s.nullify, s.id = false, id }

type toManySlot struct {
	rel *ToMany
	ids []any
}

func (s *toManySlot) Next(id any) { s.ids = append(s.ids, id) }

func (b *Builder) ToOneRelationship(descr mapper.NativeToOneRelationshipDescriptor) mapper.NativeToOneRelationshipBuilder {
	slot := &toOneSlot{rel: descr.(*ToOne)}
	b.toOne.Set(descr.Name(), slot)

	return slot
}

func (b *Builder) ToManyRelationship(descr mapper.NativeToManyRelationshipDescriptor) mapper.NativeToManyRelationshipBuilder {
	slot := &toManySlot{rel: descr.(*ToMany), ids: []any{}}
	b.toMany.Set(descr.Name(), slot)

	return slot
}

func resolve(mctx mapper.MutationContext, dest mapper.NativeDescriptor, id any) (any, error) {
	if mctx == nil {
		return nil, errors.Errorf("cannot resolve %s %v without a mutation context", dest.Class(), id)
	}

	return mctx.QueryByIdentity(dest, id)
}

func (b *Builder) checkImmutable() error {
	for pair := b.values.Oldest(); pair != nil; pair = pair.Next() {
		mutator, ok := b.immutable[pair.Key]
		if !ok {
			continue
		}

		same, err := b.descr.acc.equal(b.target, pair.Key, pair.Value)
		if err != nil {
			return err
		}

		if !same {
			return mutator.ImmutableError()
		}
	}

	return nil
}

// Build creates the object, or applies the collected changes to the target
// of an updater.
func (b *Builder) Build(mctx mapper.MutationContext) (any, error) {
	acc := b.descr.acc
	obj := b.target

	if obj == nil {
		id := b.id
		if !b.hasID {
			id = b.descr.newID()
		}

		var err error
		if obj, err = acc.newObject(id); err != nil {
			return nil, err
		}
	} else if err := b.checkImmutable(); err != nil {
		return nil, err
	}

	for pair := b.values.Oldest(); pair != nil; pair = pair.Next() {
		if err := acc.set(obj, pair.Key, pair.Value); err != nil {
			return nil, errors.Wrapf(err, "setting %s", pair.Key)
		}
	}

	for pair := b.toOne.Oldest(); pair != nil; pair = pair.Next() {
		var related any

		if !pair.Value.nullify {
			var err error
			if related, err = resolve(mctx, pair.Value.rel.dest, pair.Value.id); err != nil {
				return nil, err
			}
		}

		if err := acc.setToOne(obj, pair.Key, related); err != nil {
			return nil, err
		}
	}

	for pair := b.toMany.Oldest(); pair != nil; pair = pair.Next() {
		related := make([]any, 0, len(pair.Value.ids))

		for _, id := range pair.Value.ids {
			r, err := resolve(mctx, pair.Value.rel.dest, id)
			if err != nil {
				return nil, err
			}

			related = append(related, r)
		}

		if err := acc.setToMany(obj, pair.Key, related); err != nil {
			return nil, err
		}
	}

	for _, op := range b.ops {
		if err := op(mctx, obj); err != nil {
			return nil, err
		}
	}

	return obj, nil
}

func sameIdentity(d mapper.NativeDescriptor, obj, id any) (bool, error) {
	if obj == nil {
		return false, nil
	}

	objID, err := d.Identity(obj)
	if err != nil {
		return false, err
	}

	return objID == id, nil
}

type toOneManipulator struct {
	b   *Builder
	rel *ToOne
}

func (b *Builder) ToOneRelationshipManipulator(descr mapper.NativeToOneRelationshipDescriptor) mapper.NativeToOneRelationshipManipulator {
	return &toOneManipulator{b: b, rel: descr.(*ToOne)}
}

// change queues op and returns the promise it settles.
func (b *Builder) change(op func(mctx mapper.MutationContext, obj any) (bool, error)) deferred.Deferred[bool] {
	p := deferred.NewPromise[bool]()

	b.ops = append(b.ops, func(mctx mapper.MutationContext, obj any) error {
		applied, err := op(mctx, obj)
		if err != nil {
			return err
		}

		p.Set(applied)

		return nil
	})

	return p
}

func (m *toOneManipulator) Nullify() deferred.Deferred[bool] {
	acc := m.b.descr.acc

	return m.b.change(func(_ mapper.MutationContext, obj any) (bool, error) {
		current, err := acc.getToOne(obj, m.rel.name)
		if err != nil || current == nil {
			return false, err
		}

		return true, acc.setToOne(obj, m.rel.name, nil)
	})
}

func (m *toOneManipulator) Set(id any) deferred.Deferred[bool] {
	acc := m.b.descr.acc

	return m.b.change(func(mctx mapper.MutationContext, obj any) (bool, error) {
		current, err := acc.getToOne(obj, m.rel.name)
		if err != nil {
			return false, err
		}

		if same, err := sameIdentity(m.rel.dest, current, id); err != nil || same {
			return false, err
		}

		related, err := resolve(mctx, m.rel.dest, id)
		if err != nil {
			return false, err
		}

		return true, acc.setToOne(obj, m.rel.name, related)
	})
}

func (m *toOneManipulator) Unset(id any) deferred.Deferred[bool] {
	acc := m.b.descr.acc

	return m.b.change(func(_ mapper.MutationContext, obj any) (bool, error) {
		current, err := acc.getToOne(obj, m.rel.name)
		if err != nil {
			return false, err
		}

		if same, err := sameIdentity(m.rel.dest, current, id); err != nil || !same {
			return false, err
		}

		return true, acc.setToOne(obj, m.rel.name, nil)
	})
}

type toManyManipulator struct {
	b   *Builder
	rel *ToMany
}

func (b *Builder) ToManyRelationshipManipulator(descr mapper.NativeToManyRelationshipDescriptor) mapper.NativeToManyRelationshipManipulator {
	return &toManyManipulator{b: b, rel: descr.(*ToMany)}
}

// indexOf returns the position of the member identified by id, or -1.
func (m *toManyManipulator) indexOf(members []any, id any) (int, error) {
	for i, member := range members {
		same, err := sameIdentity(m.rel.dest, member, id)
		if err != nil {
			return -1, err
		}

		if same {
			return i, nil
		}
	}

	return -1, nil
}

func (m *toManyManipulator) Add(id any) deferred.Deferred[bool] {
	acc := m.b.descr.acc

	return m.b.change(func(mctx mapper.MutationContext, obj any) (bool, error) {
		members, err := acc.getToMany(obj, m.rel.name)
		if err != nil {
			return false, err
		}

		if i, err := m.indexOf(members, id); err != nil || i >= 0 {
			return false, err
		}

		related, err := resolve(mctx, m.rel.dest, id)
		if err != nil {
			return false, err
		}

		return true, acc.setToMany(obj, m.rel.name, append(members, related))
	})
}

func (m *toManyManipulator) Remove(id any) deferred.Deferred[bool] {
	acc := m.b.descr.acc

	return m.b.change(func(_ mapper.MutationContext, obj any) (bool, error) {
		members, err := acc.getToMany(obj, m.rel.name)
		if err != nil {
			return false, err
		}

		i, err := m.indexOf(members, id)
		if err != nil || i < 0 {
			return false, err
		}

		rest := append(members[:i:i], members[i+1:]...)

		return true, acc.setToMany(obj, m.rel.name, rest)
	})
}

var _ mapper.NativeUpdater = (*Builder)(nil)
