// Package value implements Simplex's runtime value model: one struct per
// variant of the closed value union described in spec.md §3, each
// exposing the Value interface the teacher's internal/interp/value.go
// establishes (a narrow TypeOf()/String() pair rather than interface{}), so
// that the evaluator and product driver never need type-switch escapes
// into `any`.
package value

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/markchucarroll/simplex/internal/ast"
	"github.com/markchucarroll/simplex/internal/types"
)

// Value is implemented by every runtime value variant.
type Value interface {
	// TypeOf returns the interned Type this value belongs to.
	TypeOf() *types.Type
	// String renders the value for diagnostics and traces; the `.txt`
	// product file takes only Str values, through Str.Value.
	String() string
}

// store is the process-wide type table. Per spec.md §5, the interned type
// table is module-global and mutated only during the initial two-phase
// install; it is safe to share as a package-level singleton because
// evaluation is strictly single-threaded (spec.md §5).
var store *types.Store

// SetTypeStore installs the shared type store. Called once by the
// evaluator before any value is constructed.
func SetTypeStore(s *types.Store) { store = s }

// TypeStore returns the shared type store.
func TypeStore() *types.Store { return store }

// ---------------------------------------------------------------------
// Primitive variants
// ---------------------------------------------------------------------

type Int struct{ Value int64 }

func NewInt(v int64) *Int           { return &Int{Value: v} }
func (i *Int) TypeOf() *types.Type  { return store.Simple(types.Int) }
func (i *Int) String() string       { return strconv.FormatInt(i.Value, 10) }

type Float struct{ Value float64 }

func NewFloat(v float64) *Float       { return &Float{Value: v} }
func (f *Float) TypeOf() *types.Type  { return store.Simple(types.Float) }
func (f *Float) String() string       { return strconv.FormatFloat(f.Value, 'g', -1, 64) }

type Str struct{ Value string }

func NewStr(v string) *Str          { return &Str{Value: v} }
func (s *Str) TypeOf() *types.Type  { return store.Simple(types.String) }
func (s *Str) String() string       { return s.Value }

type Bool struct{ Value bool }

func NewBool(v bool) *Bool          { return &Bool{Value: v} }
func (b *Bool) TypeOf() *types.Type { return store.Simple(types.Boolean) }
func (b *Bool) String() string {
	if b.Value {
		return "true"
	}
	return "false"
}

type None struct{}

var NoneValue = &None{}

func (n *None) TypeOf() *types.Type { return store.Simple(types.None) }
func (n *None) String() string      { return "none" }

// ---------------------------------------------------------------------
// Vec2 / Vec3
// ---------------------------------------------------------------------

type Vec2 struct{ X, Y float64 }

func NewVec2(x, y float64) *Vec2    { return &Vec2{X: x, Y: y} }
func (v *Vec2) TypeOf() *types.Type { return store.Simple(types.Vec2) }
func (v *Vec2) String() string      { return fmt.Sprintf("(%s, %s)", trimFloat(v.X), trimFloat(v.Y)) }

type Vec3 struct{ X, Y, Z float64 }

func NewVec3(x, y, z float64) *Vec3 { return &Vec3{X: x, Y: y, Z: z} }
func (v *Vec3) TypeOf() *types.Type { return store.Simple(types.Vec3) }
func (v *Vec3) String() string {
	return fmt.Sprintf("(%s, %s, %s)", trimFloat(v.X), trimFloat(v.Y), trimFloat(v.Z))
}

func trimFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

// ---------------------------------------------------------------------
// Vector (homogeneous, copy-on-update)
// ---------------------------------------------------------------------

// Vector is an ordered, immutable (from the language's viewpoint) sequence
// of a single element type. Updates (IndexUpdate) build a new Vector;
// implementations may share the backing array structurally as long as the
// caller never observes mutation of the old value — here a full copy is
// made on update for simplicity and safety (spec.md §9 "Vectors are
// copy-on-write").
type Vector struct {
	Element  *types.Type
	Elements []Value
}

func NewVector(elem *types.Type, elems []Value) *Vector {
	return &Vector{Element: elem, Elements: elems}
}

func (v *Vector) TypeOf() *types.Type { return store.Vector(v.Element) }

func (v *Vector) String() string {
	parts := make([]string, len(v.Elements))
	for i, e := range v.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// WithAt returns a new Vector with index i replaced by val.
func (v *Vector) WithAt(i int, val Value) *Vector {
	out := make([]Value, len(v.Elements))
	copy(out, v.Elements)
	out[i] = val
	return &Vector{Element: v.Element, Elements: out}
}

// ---------------------------------------------------------------------
// Data records
// ---------------------------------------------------------------------

// Record is an instance of a user-declared `data` type: a nominal tuple of
// named, typed fields. Records are immutable except through field-update
// expressions, which build a new Record (spec.md §3).
type Record struct {
	TypeName   string
	FieldNames []string
	Fields     []Value
}

func NewRecord(typeName string, names []string, fields []Value) *Record {
	return &Record{TypeName: typeName, FieldNames: names, Fields: fields}
}

func (r *Record) TypeOf() *types.Type { return store.Simple(r.TypeName) }

func (r *Record) String() string {
	parts := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		parts[i] = fmt.Sprintf("%s=%s", r.FieldNames[i], f.String())
	}
	return "#" + r.TypeName + "(" + strings.Join(parts, ", ") + ")"
}

// FieldIndex returns the position of a field by name, or -1.
func (r *Record) FieldIndex(name string) int {
	for i, n := range r.FieldNames {
		if n == name {
			return i
		}
	}
	return -1
}

// With returns a new Record with the named field replaced.
func (r *Record) With(name string, val Value) *Record {
	idx := r.FieldIndex(name)
	fields := make([]Value, len(r.Fields))
	copy(fields, r.Fields)
	if idx >= 0 {
		fields[idx] = val
	}
	return &Record{TypeName: r.TypeName, FieldNames: r.FieldNames, Fields: fields}
}

// ---------------------------------------------------------------------
// Functions and methods
// ---------------------------------------------------------------------

// Env is the minimal environment surface the value package needs; the
// concrete type lives in internal/environment and is supplied by the
// evaluator to avoid an import cycle (value is imported by types'
// sibling environment package as well as by the evaluator).
type Env interface {
	Get(name string) (Value, bool)
}

// Alternative is one positional-arity/type shape a callable accepts,
// paired with the parameter names and body that implement it. Native,
// when non-nil, marks a built-in alternative implemented directly in Go
// (the geometry-kernel constructors and Solid/Slice/Polygon operations);
// the evaluator calls it instead of evaluating Body, which is nil for
// these alternatives.
type Alternative struct {
	Params []*ast.Param
	Ret    *types.Type
	Body   ast.Expr
	Native func(args []Value) (Value, error)
}

// Function is a user-defined function value. It closes over the defining
// environment (spec.md §9: "function/method values capture a scope
// handle, not a snapshot") and may carry multiple Alternatives when the
// source declares overloads of the same name.
type Function struct {
	Name         string
	Alternatives []*Alternative
	Closure      any // *environment.Environment; any to avoid an import cycle
}

func (f *Function) TypeOf() *types.Type {
	if len(f.Alternatives) == 0 {
		return store.Function(nil, store.Simple(types.None))
	}
	a := f.Alternatives[0]
	ps := make([]*types.Type, len(a.Params))
	for j, p := range a.Params {
		ps[j] = resolveParamType(p.Type, f.Closure)
	}
	return store.Function(ps, a.Ret)
}

func (f *Function) String() string { return "fun " + f.Name }

// Method is a user-defined or built-in method value bound to a target
// type name, used both for `meth` definitions and as the value produced
// by a bare method reference (not invoked). Its dispatch happens through
// internal/evaluator, not through this struct directly.
type Method struct {
	Name         string
	Target       string
	Alternatives []*Alternative
	Closure      any
}

func (m *Method) TypeOf() *types.Type {
	target := store.Simple(m.Target)
	if len(m.Alternatives) == 0 {
		return store.Method(target, nil, store.Simple(types.None))
	}
	a := m.Alternatives[0]
	ps := make([]*types.Type, len(a.Params))
	for j, p := range a.Params {
		ps[j] = resolveParamType(p.Type, m.Closure)
	}
	return store.Method(target, ps, a.Ret)
}

// recordTypeLookup is implemented by *environment.Environment. It is
// declared locally, rather than imported, so that value has no compile-time
// dependency on environment (which itself imports value).
type recordTypeLookup interface {
	RecordType(name string) (*types.Type, bool)
}

// resolveParamType mirrors internal/evaluator's resolveType so that
// Function and Method values can report accurate parameter types from
// TypeOf() without reaching back into the evaluator package.
func resolveParamType(te ast.TypeExpr, closure any) *types.Type {
	switch t := te.(type) {
	case *ast.SimpleType:
		if env, ok := closure.(recordTypeLookup); ok {
			if rt, ok := env.RecordType(t.Name); ok {
				return rt
			}
		}
		return store.Simple(t.Name)
	case *ast.VectorType:
		return store.Vector(resolveParamType(t.Element, closure))
	case *ast.FunctionType:
		params := make([]*types.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = resolveParamType(p, closure)
		}
		return store.Function(params, resolveParamType(t.Ret, closure))
	case *ast.MethodType:
		params := make([]*types.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = resolveParamType(p, closure)
		}
		return store.Method(resolveParamType(t.Target, closure), params, resolveParamType(t.Ret, closure))
	}
	return store.Simple(types.Any)
}

func (m *Method) String() string { return "meth " + m.Target + "." + m.Name }

// ---------------------------------------------------------------------
// Geometry-kernel-backed variants
// ---------------------------------------------------------------------

// Solid, Slice, Polygon, BoundingBox and BoundingRect wrap opaque handles
// produced by the external geometry kernel (internal/kernel). The value
// package only needs their Type()/String(); the kernel package defines
// their actual payload interfaces.
type Solid struct {
	Handle  any
	Summary string
}

func (s *Solid) TypeOf() *types.Type { return store.Simple(types.Solid) }
func (s *Solid) String() string      { return s.Summary }

type SliceValue struct {
	Handle  any
	Summary string
}

func (s *SliceValue) TypeOf() *types.Type { return store.Simple(types.Slice) }
func (s *SliceValue) String() string      { return s.Summary }

type PolygonValue struct {
	Points  []Vec2
	Summary string
}

func (p *PolygonValue) TypeOf() *types.Type { return store.Simple(types.Polygon) }
func (p *PolygonValue) String() string      { return p.Summary }

type BoundingBox struct {
	LowX, LowY, LowZ    float64
	HighX, HighY, HighZ float64
}

func (b *BoundingBox) TypeOf() *types.Type { return store.Simple(types.BoundingBox) }
func (b *BoundingBox) String() string {
	return fmt.Sprintf("bounds low=(%s,%s,%s) high=(%s,%s,%s)",
		trimFloat(b.LowX), trimFloat(b.LowY), trimFloat(b.LowZ),
		trimFloat(b.HighX), trimFloat(b.HighY), trimFloat(b.HighZ))
}

type BoundingRect struct {
	LowX, LowY   float64
	HighX, HighY float64
}

func (b *BoundingRect) TypeOf() *types.Type { return store.Simple(types.BoundingRect) }
func (b *BoundingRect) String() string {
	return fmt.Sprintf("bounds low=(%s,%s) high=(%s,%s)",
		trimFloat(b.LowX), trimFloat(b.LowY), trimFloat(b.HighX), trimFloat(b.HighY))
}

// IsTruthy implements spec.md §4.4's per-variant truthiness: Boolean uses
// its own value; None is always false; every other variant is truthy
// unless it is an empty Vector or an empty Str (spec.md §8: "Empty
// vector: ... is_truthy == false").
func IsTruthy(v Value) bool {
	switch vv := v.(type) {
	case *Bool:
		return vv.Value
	case *None:
		return false
	case *Vector:
		return len(vv.Elements) > 0
	case *Str:
		return vv.Value != ""
	default:
		return true
	}
}
