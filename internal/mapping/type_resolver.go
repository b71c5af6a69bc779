package mapping

import (
	"fmt"
	"strings"
	"unicode"

	"jsonapi-serde/converter"
)

// ParseType resolves a type expression into a converter shape. The grammar
// is the one converter.Shape.String renders:
//
//	string, int, float, bool, bytes, decimal, datetime, localdatetime, date, null, any
//	?T              optional
//	T?              optional (postfix form)
//	[]T             sequence
//	set[T]          set
//	tuple[T, U]     fixed arity tuple
//	tuple[T...]     variable length tuple
//	map[K]V         string keyed mapping
//	record{a: T}    anonymous record
//	T | U           union
//
// An empty expression resolves to any.
func ParseType(expr string) (*converter.Shape, error) {
	if strings.TrimSpace(expr) == "" {
		return converter.Any(), nil
	}

	p := &typeParser{src: expr}

	shape, err := p.union()
	if err != nil {
		return nil, err
	}

	p.skipSpace()

	if !p.eof() {
		return nil, p.errorf("unexpected %q", p.src[p.pos:])
	}

	return shape, nil
}

// MustParseType is like ParseType but panics on error.
func MustParseType(expr string) *converter.Shape {
	shape, err := ParseType(expr)
	if err != nil {
		panic(err)
	}

	return shape
}

// TypeError reports a malformed type expression.
type TypeError struct {
	Expr    string
	Offset  int
	Message string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("invalid type %q at offset %d: %s", e.Expr, e.Offset, e.Message)
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) errorf(format string, args ...any) error {
	return &TypeError{Expr: p.src, Offset: p.pos, Message: fmt.Sprintf(format, args...)}
}

func (p *typeParser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *typeParser) skipSpace() {
	for !p.eof() && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

// accept consumes tok if it comes next.
func (p *typeParser) accept(tok string) bool {
	p.skipSpace()

	if strings.HasPrefix(p.src[p.pos:], tok) {
		p.pos += len(tok)
		return true
	}

	return false
}

func (p *typeParser) expect(tok string) error {
	if !p.accept(tok) {
		if p.eof() {
			return p.errorf("expected %q, got end of input", tok)
		}

		return p.errorf("expected %q", tok)
	}

	return nil
}

func (p *typeParser) ident() string {
	p.skipSpace()

	start := p.pos
	for !p.eof() {
		c := rune(p.src[p.pos])
		if c != '_' && !unicode.IsLetter(c) && !unicode.IsDigit(c) {
			break
		}

		p.pos++
	}

	return p.src[start:p.pos]
}

func (p *typeParser) union() (*converter.Shape, error) {
	first, err := p.term()
	if err != nil {
		return nil, err
	}

	alts := []*converter.Shape{first}

	for p.accept("|") {
		next, err := p.term()
		if err != nil {
			return nil, err
		}

		alts = append(alts, next)
	}

	if len(alts) == 1 {
		return first, nil
	}

	return converter.UnionOf(alts...), nil
}

func (p *typeParser) term() (*converter.Shape, error) {
	shape, err := p.prefixed()
	if err != nil {
		return nil, err
	}

	for p.accept("?") {
		shape = converter.OptionalOf(shape)
	}

	return shape, nil
}

func (p *typeParser) prefixed() (*converter.Shape, error) {
	switch {
	case p.accept("?"):
		elem, err := p.prefixed()
		if err != nil {
			return nil, err
		}

		return converter.OptionalOf(elem), nil

	case p.accept("[]"):
		elem, err := p.prefixed()
		if err != nil {
			return nil, err
		}

		return converter.SequenceOf(elem), nil
	}

	name := p.ident()

	switch name {
	case "":
		if p.eof() {
			return nil, p.errorf("expected a type, got end of input")
		}

		return nil, p.errorf("expected a type")
	case "any":
		return converter.Any(), nil
	case "set":
		return p.set()
	case "tuple":
		return p.tuple()
	case "map":
		return p.mapping()
	case "record":
		return p.record()
	}

	prim, ok := converter.PrimitiveByExpr(name)
	if !ok {
		return nil, p.errorf("unknown type %s", name)
	}

	return converter.PrimitiveOf(prim), nil
}

func (p *typeParser) set() (*converter.Shape, error) {
	if err := p.expect("["); err != nil {
		return nil, err
	}

	elem, err := p.union()
	if err != nil {
		return nil, err
	}

	if err := p.expect("]"); err != nil {
		return nil, err
	}

	return converter.SetOf(elem), nil
}

func (p *typeParser) tuple() (*converter.Shape, error) {
	if err := p.expect("["); err != nil {
		return nil, err
	}

	var items []*converter.Shape

	for {
		item, err := p.union()
		if err != nil {
			return nil, err
		}

		if p.accept("...") {
			if len(items) > 0 {
				return nil, p.errorf("variable length tuples take a single element type")
			}

			if err := p.expect("]"); err != nil {
				return nil, err
			}

			return converter.VarTupleOf(item), nil
		}

		items = append(items, item)

		if p.accept("]") {
			return converter.TupleOf(items...), nil
		}

		if err := p.expect(","); err != nil {
			return nil, err
		}
	}
}

func (p *typeParser) mapping() (*converter.Shape, error) {
	if err := p.expect("["); err != nil {
		return nil, err
	}

	key, err := p.union()
	if err != nil {
		return nil, err
	}

	if err := p.expect("]"); err != nil {
		return nil, err
	}

	value, err := p.term()
	if err != nil {
		return nil, err
	}

	return converter.MappingOf(key, value), nil
}

func (p *typeParser) record() (*converter.Shape, error) {
	if err := p.expect("{"); err != nil {
		return nil, err
	}

	var fields []converter.Field

	if p.accept("}") {
		return converter.RecordOf("", fields, nil), nil
	}

	for {
		name := p.ident()
		if name == "" {
			return nil, p.errorf("expected a field name")
		}

		for _, f := range fields {
			if f.Name == name {
				return nil, p.errorf("duplicate field %s", name)
			}
		}

		if err := p.expect(":"); err != nil {
			return nil, err
		}

		shape, err := p.union()
		if err != nil {
			return nil, err
		}

		fields = append(fields, converter.Field{Name: name, Shape: shape, Optional: shape.IsOptional()})

		if p.accept("}") {
			return converter.RecordOf("", fields, nil), nil
		}

		if err := p.expect(","); err != nil {
			return nil, err
		}
	}
}
