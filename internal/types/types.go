// Package types implements Simplex's interned type model: simple, vector,
// function and method types, plus the per-type method-signature table used
// by the static analyzer. It is grounded on the teacher's
// internal/interp/types.TypeSystem registry-of-registries idiom, collapsed
// from DWScript's class/record/interface/operator/conversion/RTTI
// registries down to the single `Type` interning table spec.md §3
// describes, with one mutable method table per interned Type.
package types

import "strings"

// Kind distinguishes the four shapes of Type described in spec.md §3.
type Kind int

const (
	KindSimple Kind = iota
	KindVector
	KindFunction
	KindMethod
)

// Built-in atom names.
const (
	Int          = "Int"
	Float        = "Float"
	String       = "String"
	Boolean      = "Boolean"
	None         = "None"
	Any          = "Any"
	Vec2         = "Vec2"
	Vec3         = "Vec3"
	Solid        = "Solid"
	Slice        = "Slice"
	Polygon      = "Polygon"
	BoundingBox  = "BoundingBox"
	BoundingRect = "BoundingRect"
)

// Method is a callable signature bound to a target type: a set of disjoint
// positional argument alternatives sharing one return type. Spec.md §3:
// "Method(target: Type, argAlternatives: [[Type]], ret: Type)".
type Method struct {
	Name         string
	Target       *Type // nil for free functions
	Alternatives [][]*Type
	Ret          *Type
}

// Matches reports whether args (in order) match one of m's alternatives,
// returning the index of the first matching alternative, or -1.
func (m *Method) Matches(args []*Type) int {
	for i, alt := range m.Alternatives {
		if len(alt) != len(args) {
			continue
		}
		ok := true
		for j, p := range alt {
			if !p.MatchedBy(args[j]) {
				ok = false
				break
			}
		}
		if ok {
			return i
		}
	}
	return -1
}

// Field is one named, typed slot of a `data` record type.
type Field struct {
	Name string
	Type *Type
}

// Type is an interned, identity-compared type descriptor.
type Type struct {
	kind    Kind
	name    string // KindSimple
	element *Type  // KindVector
	target  *Type  // KindMethod
	params  []*Type
	ret     *Type
	key     string

	methods map[string]*Method
	fields  []Field // non-nil only for KindSimple record types
}

// Kind returns the structural kind of t.
func (t *Type) Kind() Kind { return t.kind }

// Name returns the simple-type name; empty for non-simple kinds.
func (t *Type) Name() string { return t.name }

// Element returns the vector element type; nil for non-vector kinds.
func (t *Type) Element() *Type { return t.element }

// Target returns the method receiver type; nil for non-method kinds.
func (t *Type) Target() *Type { return t.target }

// Params returns the positional parameter types of a function/method type.
func (t *Type) Params() []*Type { return t.params }

// Ret returns the return type of a function/method type.
func (t *Type) Ret() *Type { return t.ret }

// String returns t's canonical structural name, e.g. "Int", "[Int]",
// "(Int,Int):Int", "Int->(Int):Int".
func (t *Type) String() string { return t.key }

// IsSimple reports whether t is a bare named type (including built-in
// atoms and user data types).
func (t *Type) IsSimple() bool { return t.kind == KindSimple }

// IsAny reports whether t is the universal supertype `Any`.
func (t *Type) IsAny() bool { return t.kind == KindSimple && t.name == Any }

// IsNone reports whether t is `None`.
func (t *Type) IsNone() bool { return t.kind == KindSimple && t.name == None }

// MatchedBy reports whether a value of type `candidate` may be used where
// `t` is expected: identity, or `t` is Any, or (for vectors) elementwise,
// or (for function/method types) return types match and every alternative
// of t is satisfied by some alternative of candidate.
func (t *Type) MatchedBy(candidate *Type) bool {
	if t == candidate {
		return true
	}
	if t.IsAny() {
		return true
	}
	if t.kind != candidate.kind {
		return false
	}
	switch t.kind {
	case KindSimple:
		return t.name == candidate.name
	case KindVector:
		return t.element.MatchedBy(candidate.element)
	case KindFunction, KindMethod:
		if t.kind == KindMethod && !t.target.MatchedBy(candidate.target) {
			return false
		}
		if !t.ret.MatchedBy(candidate.ret) {
			return false
		}
		// every alternative of t (supertype) must be satisfied by some
		// alternative of candidate (subtype), elementwise.
		tAlts := altSets(t)
		cAlts := altSets(candidate)
		for _, ta := range tAlts {
			satisfied := false
			for _, ca := range cAlts {
				if altMatchedBy(ta, ca) {
					satisfied = true
					break
				}
			}
			if !satisfied {
				return false
			}
		}
		return true
	}
	return false
}

func altSets(t *Type) [][]*Type {
	// Type itself only stores one positional-parameter list; multi-alternative
	// callables are represented at the value level (value.Function carries
	// alternatives). A bare Type with one params list is treated as a single
	// alternative.
	return [][]*Type{t.params}
}

func altMatchedBy(super, sub []*Type) bool {
	if len(super) != len(sub) {
		return false
	}
	for i := range super {
		if !super[i].MatchedBy(sub[i]) {
			return false
		}
	}
	return true
}

// Methods returns t's mutable method table (name -> Method), populated by
// built-in registration and user `meth` definitions during analysis.
func (t *Type) Methods() map[string]*Method {
	if t.methods == nil {
		t.methods = make(map[string]*Method)
	}
	return t.methods
}

// Method looks up a method by name on t's own table (no supertype search:
// Simplex has no subtyping beyond Any, so method tables are never
// inherited).
func (t *Type) Method(name string) (*Method, bool) {
	m, ok := t.methods[name]
	return m, ok
}

// RegisterMethod installs (or replaces) a method signature on t, keyed by
// name. During analysis a user `meth` whose name matches an existing entry
// (built-in or user) has its parameter list appended to that entry's
// Alternatives and the entry re-registered, so the existing alternatives
// and return type are kept.
func (t *Type) RegisterMethod(m *Method) {
	m.Target = t
	t.Methods()[m.Name] = m
}

// SetFields installs the field schema of a `data` record type, resolved by
// the analyzer once all sibling record types are known (spec.md §3: record
// types may reference each other regardless of declaration order).
func (t *Type) SetFields(fields []Field) { t.fields = fields }

// Fields returns t's record field schema, or nil if t is not a record type.
func (t *Type) Fields() []Field { return t.fields }

// FieldType returns the declared type of field name on a record type.
func (t *Type) FieldType(name string) (*Type, bool) {
	for _, f := range t.fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return nil, false
}

// Store interns Type values so that structurally identical descriptors
// share identity, satisfying spec.md §8's type-uniqueness invariant.
type Store struct {
	table map[string]*Type
}

// NewStore creates a Store pre-populated with the built-in atoms.
func NewStore() *Store {
	s := &Store{table: make(map[string]*Type)}
	for _, name := range []string{Int, Float, String, Boolean, None, Any, Vec2, Vec3, Solid, Slice, Polygon, BoundingBox, BoundingRect} {
		s.Simple(name)
	}
	return s
}

func (s *Store) intern(key string, build func() *Type) *Type {
	if t, ok := s.table[key]; ok {
		return t
	}
	t := build()
	t.key = key
	s.table[key] = t
	return t
}

// Simple interns (or returns) the Type for a bare name.
func (s *Store) Simple(name string) *Type {
	return s.intern(name, func() *Type { return &Type{kind: KindSimple, name: name} })
}

// Vector interns (or returns) `[elem]`, installing the built-in
// vector-shaped methods (plus for concatenation, eq for structural
// equality, len returning Int) the first time each element type's vector
// is interned. Registering these here, rather than in internal/builtins,
// avoids a dependency from the type system back onto the evaluator merely
// to learn a vector type's own shape.
func (s *Store) Vector(elem *Type) *Type {
	key := "[" + elem.key + "]"
	return s.intern(key, func() *Type {
		t := &Type{kind: KindVector, element: elem}
		boolean := s.Simple(Boolean)
		integer := s.Simple(Int)
		t.RegisterMethod(&Method{Name: "plus", Alternatives: [][]*Type{{t}}, Ret: t})
		t.RegisterMethod(&Method{Name: "eq", Alternatives: [][]*Type{{t}}, Ret: boolean})
		t.RegisterMethod(&Method{Name: "len", Alternatives: [][]*Type{{}}, Ret: integer})
		return t
	})
}

// Function interns (or returns) `(params):ret`. A single positional
// parameter list is stored on the Type; multiple disjoint alternatives of
// a callable are represented at the value level by multiple
// value.Alternative entries collected in a value.Function's Alternatives.
func (s *Store) Function(params []*Type, ret *Type) *Type {
	key := functionKey(params, ret)
	return s.intern(key, func() *Type {
		cp := append([]*Type(nil), params...)
		return &Type{kind: KindFunction, params: cp, ret: ret}
	})
}

// Method interns (or returns) `target->(params):ret`.
func (s *Store) Method(target *Type, params []*Type, ret *Type) *Type {
	key := target.key + "->" + functionKey(params, ret)
	return s.intern(key, func() *Type {
		cp := append([]*Type(nil), params...)
		return &Type{kind: KindMethod, target: target, params: cp, ret: ret}
	})
}

// Lookup returns an already-interned type by its canonical key, if any.
func (s *Store) Lookup(key string) (*Type, bool) {
	t, ok := s.table[key]
	return t, ok
}

func functionKey(params []*Type, ret *Type) string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, p := range params {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(p.key)
	}
	sb.WriteString("):")
	sb.WriteString(ret.key)
	return sb.String()
}
