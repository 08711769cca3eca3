// Package ast defines the immutable abstract syntax tree produced by the
// Simplex parser. Every node carries a source Position so that the
// analyzer and evaluator can report located diagnostics.
package ast

import (
	"fmt"
	"strings"

	"github.com/markchucarroll/simplex/internal/token"
)

// Node is the common interface implemented by every AST node.
type Node interface {
	Pos() token.Position
	String() string
}

// Expr is any expression node.
type Expr interface {
	Node
	exprNode()
}

// Definition is any top-level or local definition (let/fun/data/meth).
type Definition interface {
	Node
	definitionNode()
}

// TypeExpr is a parsed type expression (simple name, vector, function or
// method arrow).
type TypeExpr interface {
	Node
	typeExprNode()
}

// ---------------------------------------------------------------------
// Module
// ---------------------------------------------------------------------

// Import is an `import "path" as scope` declaration.
type Import struct {
	Position token.Position
	Path     string
	Scope    string
}

func (i *Import) Pos() token.Position { return i.Position }
func (i *Import) String() string      { return fmt.Sprintf("import %q as %s", i.Path, i.Scope) }

// Product is a named `produce("name") { expr+ }` block.
type Product struct {
	Position token.Position
	Name     string
	Body     []Expr
}

func (p *Product) Pos() token.Position { return p.Position }
func (p *Product) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "produce(%q) {\n", p.Name)
	for _, e := range p.Body {
		fmt.Fprintf(&sb, "  %s\n", e.String())
	}
	sb.WriteString("}")
	return sb.String()
}

// Module is the root of a parsed source file: imports, definitions (in
// source order) and product blocks. A library file (loaded via Import)
// must have an empty Products slice; the analyzer enforces this.
type Module struct {
	Position    token.Position
	Imports     []*Import
	Definitions []Definition
	Products    []*Product
}

func (m *Module) Pos() token.Position { return m.Position }
func (m *Module) String() string {
	var sb strings.Builder
	for _, im := range m.Imports {
		sb.WriteString(im.String())
		sb.WriteString("\n")
	}
	for _, d := range m.Definitions {
		sb.WriteString(d.String())
		sb.WriteString("\n")
	}
	for _, p := range m.Products {
		sb.WriteString(p.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

// ---------------------------------------------------------------------
// Type expressions
// ---------------------------------------------------------------------

// SimpleType is a bare type name: Int, Float, String, Boolean, None, Any,
// Vec2, Vec3, Solid, Slice, Polygon, BoundingBox, BoundingRect, or a
// user-defined data type name.
type SimpleType struct {
	Position token.Position
	Name     string
}

func (t *SimpleType) Pos() token.Position { return t.Position }
func (t *SimpleType) String() string      { return t.Name }
func (*SimpleType) typeExprNode()         {}

// VectorType is `[T]`.
type VectorType struct {
	Position token.Position
	Element  TypeExpr
}

func (t *VectorType) Pos() token.Position { return t.Position }
func (t *VectorType) String() string      { return "[" + t.Element.String() + "]" }
func (*VectorType) typeExprNode()         {}

// FunctionType is `(T, ...): R`.
type FunctionType struct {
	Position token.Position
	Params   []TypeExpr
	Ret      TypeExpr
}

func (t *FunctionType) Pos() token.Position { return t.Position }
func (t *FunctionType) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	return "(" + strings.Join(parts, ",") + "):" + t.Ret.String()
}
func (*FunctionType) typeExprNode() {}

// MethodType is `T->(A,B):R`.
type MethodType struct {
	Position token.Position
	Target   TypeExpr
	Params   []TypeExpr
	Ret      TypeExpr
}

func (t *MethodType) Pos() token.Position { return t.Position }
func (t *MethodType) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	return t.Target.String() + "->(" + strings.Join(parts, ",") + "):" + t.Ret.String()
}
func (*MethodType) typeExprNode() {}

// ---------------------------------------------------------------------
// Parameters
// ---------------------------------------------------------------------

// Param is a single `name: Type` function/method/lambda parameter.
type Param struct {
	Position token.Position
	Name     string
	Type     TypeExpr
}

func (p *Param) Pos() token.Position { return p.Position }
func (p *Param) String() string      { return p.Name + ":" + p.Type.String() }

// Field is a single `name: Type` data-record field.
type Field struct {
	Position token.Position
	Name     string
	Type     TypeExpr
}

func (f *Field) Pos() token.Position { return f.Position }
func (f *Field) String() string      { return f.Name + ":" + f.Type.String() }

// ---------------------------------------------------------------------
// Definitions
// ---------------------------------------------------------------------

// LetDef is a top-level or local `let name[:Type] := expr` definition.
type LetDef struct {
	Position  token.Position
	Name      string
	Type      TypeExpr // nil when the type is to be inferred
	Init      Expr
}

func (d *LetDef) Pos() token.Position { return d.Position }
func (d *LetDef) String() string {
	if d.Type != nil {
		return fmt.Sprintf("let %s:%s = %s", d.Name, d.Type, d.Init)
	}
	return fmt.Sprintf("let %s = %s", d.Name, d.Init)
}
func (*LetDef) definitionNode() {}

// FunDef is a `fun name(params):Ret { body }` definition.
type FunDef struct {
	Position token.Position
	Name     string
	Params   []*Param
	Ret      TypeExpr
	Body     Expr
}

func (d *FunDef) Pos() token.Position { return d.Position }
func (d *FunDef) String() string {
	parts := make([]string, len(d.Params))
	for i, p := range d.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("fun %s(%s):%s %s", d.Name, strings.Join(parts, ","), d.Ret, d.Body)
}
func (*FunDef) definitionNode() {}

// DataDef is a `data Name { field: Type ... }` record declaration.
type DataDef struct {
	Position token.Position
	Name     string
	Fields   []*Field
}

func (d *DataDef) Pos() token.Position { return d.Position }
func (d *DataDef) String() string {
	parts := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("data %s{%s}", d.Name, strings.Join(parts, " "))
}
func (*DataDef) definitionNode() {}

// MethDef is a `meth Target.name(params):Ret { body }` method definition.
type MethDef struct {
	Position token.Position
	Target   string
	Name     string
	Params   []*Param
	Ret      TypeExpr
	Body     Expr
}

func (d *MethDef) Pos() token.Position { return d.Position }
func (d *MethDef) String() string {
	parts := make([]string, len(d.Params))
	for i, p := range d.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("meth %s.%s(%s):%s %s", d.Target, d.Name, strings.Join(parts, ","), d.Ret, d.Body)
}
func (*MethDef) definitionNode() {}
