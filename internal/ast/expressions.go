package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/markchucarroll/simplex/internal/token"
)

// IntLit is an integer literal.
type IntLit struct {
	Position token.Position
	Value    int64
}

func (e *IntLit) Pos() token.Position { return e.Position }
func (e *IntLit) String() string      { return strconv.FormatInt(e.Value, 10) }
func (*IntLit) exprNode()             {}

// FloatLit is a floating-point literal.
type FloatLit struct {
	Position token.Position
	Value    float64
}

func (e *FloatLit) Pos() token.Position { return e.Position }
func (e *FloatLit) String() string      { return strconv.FormatFloat(e.Value, 'g', -1, 64) }
func (*FloatLit) exprNode()             {}

// StringLit is a string literal (escapes already decoded by the lexer).
type StringLit struct {
	Position token.Position
	Value    string
}

func (e *StringLit) Pos() token.Position { return e.Position }
func (e *StringLit) String() string      { return strconv.Quote(e.Value) }
func (*StringLit) exprNode()             {}

// BoolLit is `true` or `false`.
type BoolLit struct {
	Position token.Position
	Value    bool
}

func (e *BoolLit) Pos() token.Position { return e.Position }
func (e *BoolLit) String() string {
	if e.Value {
		return "true"
	}
	return "false"
}
func (*BoolLit) exprNode() {}

// NoneLit is the `none` literal.
type NoneLit struct {
	Position token.Position
}

func (e *NoneLit) Pos() token.Position { return e.Position }
func (e *NoneLit) String() string      { return "none" }
func (*NoneLit) exprNode()             {}

// Ident is a bare variable reference.
type Ident struct {
	Position token.Position
	Name     string
}

func (e *Ident) Pos() token.Position { return e.Position }
func (e *Ident) String() string      { return e.Name }
func (*Ident) exprNode()             {}

// ScopedIdent is a `scope::name` reference into an imported library.
type ScopedIdent struct {
	Position token.Position
	Scope    string
	Name     string
}

func (e *ScopedIdent) Pos() token.Position { return e.Position }
func (e *ScopedIdent) String() string      { return e.Scope + "::" + e.Name }
func (*ScopedIdent) exprNode()             {}

// VectorLit is a `[e1, e2, ...]` vector literal.
type VectorLit struct {
	Position token.Position
	Elements []Expr
}

func (e *VectorLit) Pos() token.Position { return e.Position }
func (e *VectorLit) String() string {
	parts := make([]string, len(e.Elements))
	for i, el := range e.Elements {
		parts[i] = el.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
func (*VectorLit) exprNode() {}

// RecordLit is `#Name(args)` record construction.
type RecordLit struct {
	Position token.Position
	Type     string
	Args     []Expr
}

func (e *RecordLit) Pos() token.Position { return e.Position }
func (e *RecordLit) String() string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.String()
	}
	return "#" + e.Type + "(" + strings.Join(parts, ", ") + ")"
}
func (*RecordLit) exprNode() {}

// FieldAccess is `target.name`.
type FieldAccess struct {
	Position token.Position
	Target   Expr
	Name     string
}

func (e *FieldAccess) Pos() token.Position { return e.Position }
func (e *FieldAccess) String() string      { return e.Target.String() + "." + e.Name }
func (*FieldAccess) exprNode()             {}

// FieldUpdate is `target.name := value`, producing a new record (or, when
// target is a bare variable, also rebinding it — see the evaluator).
type FieldUpdate struct {
	Position token.Position
	Target   Expr
	Name     string
	Value    Expr
}

func (e *FieldUpdate) Pos() token.Position { return e.Position }
func (e *FieldUpdate) String() string {
	return fmt.Sprintf("%s.%s := %s", e.Target, e.Name, e.Value)
}
func (*FieldUpdate) exprNode() {}

// Index is `target[index]`.
type Index struct {
	Position token.Position
	Target   Expr
	Index    Expr
}

func (e *Index) Pos() token.Position { return e.Position }
func (e *Index) String() string      { return fmt.Sprintf("%s[%s]", e.Target, e.Index) }
func (*Index) exprNode()             {}

// IndexUpdate is `target[index] := value`, producing a new vector.
type IndexUpdate struct {
	Position token.Position
	Target   Expr
	Index    Expr
	Value    Expr
}

func (e *IndexUpdate) Pos() token.Position { return e.Position }
func (e *IndexUpdate) String() string {
	return fmt.Sprintf("%s[%s] := %s", e.Target, e.Index, e.Value)
}
func (*IndexUpdate) exprNode() {}

// Call is `callee(args)`.
type Call struct {
	Position token.Position
	Callee   Expr
	Args     []Expr
}

func (e *Call) Pos() token.Position { return e.Position }
func (e *Call) String() string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", e.Callee, strings.Join(parts, ", "))
}
func (*Call) exprNode() {}

// MethodCall is `receiver->name(args)`.
type MethodCall struct {
	Position token.Position
	Receiver Expr
	Name     string
	Args     []Expr
}

func (e *MethodCall) Pos() token.Position { return e.Position }
func (e *MethodCall) String() string {
	parts := make([]string, len(e.Args))
	for i, a := range e.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s->%s(%s)", e.Receiver, e.Name, strings.Join(parts, ", "))
}
func (*MethodCall) exprNode() {}

// BinaryOp is a binary operator expression; it desugars per spec.md §4.1
// to a method call on Left (see internal/evaluator).
type BinaryOp struct {
	Position token.Position
	Op       string // "+", "-", "*", "/", "%", "^", "==", "!=", "<", "<=", ">", ">=", "and", "or"
	Left     Expr
	Right    Expr
}

func (e *BinaryOp) Pos() token.Position { return e.Position }
func (e *BinaryOp) String() string      { return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right) }
func (*BinaryOp) exprNode()             {}

// UnaryOp is a unary operator expression (`-x` → neg, `not x`).
type UnaryOp struct {
	Position token.Position
	Op       string // "-", "not"
	Operand  Expr
}

func (e *UnaryOp) Pos() token.Position { return e.Position }
func (e *UnaryOp) String() string      { return fmt.Sprintf("(%s%s)", e.Op, e.Operand) }
func (*UnaryOp) exprNode()             {}

// Let is `let name[:Type] := init` used as an expression: it binds in the
// remainder of the enclosing block and evaluates to the initializer's
// value.
type Let struct {
	Position token.Position
	Name     string
	Type     TypeExpr
	Init     Expr
}

func (e *Let) Pos() token.Position { return e.Position }
func (e *Let) String() string      { return fmt.Sprintf("let %s = %s", e.Name, e.Init) }
func (*Let) exprNode()             {}

// Assign is `name := expr`, mutating the nearest enclosing binding.
type Assign struct {
	Position token.Position
	Name     string
	Value    Expr
}

func (e *Assign) Pos() token.Position { return e.Position }
func (e *Assign) String() string      { return fmt.Sprintf("%s := %s", e.Name, e.Value) }
func (*Assign) exprNode()             {}

// IfBranch is one `if`/`elif` condition+body pair.
type IfBranch struct {
	Condition Expr
	Body      Expr
}

// If is `if ... elif ... else ...`.
type If struct {
	Position token.Position
	Branches []IfBranch
	Else     Expr // nil if no else
}

func (e *If) Pos() token.Position { return e.Position }
func (e *If) String() string {
	var sb strings.Builder
	for i, b := range e.Branches {
		if i == 0 {
			fmt.Fprintf(&sb, "if %s %s", b.Condition, b.Body)
		} else {
			fmt.Fprintf(&sb, " elif %s %s", b.Condition, b.Body)
		}
	}
	if e.Else != nil {
		fmt.Fprintf(&sb, " else %s", e.Else)
	}
	return sb.String()
}
func (*If) exprNode() {}

// For is `for name in iter { body }`.
type For struct {
	Position token.Position
	Name     string
	Iter     Expr
	Body     Expr
}

func (e *For) Pos() token.Position { return e.Position }
func (e *For) String() string      { return fmt.Sprintf("for %s in %s %s", e.Name, e.Iter, e.Body) }
func (*For) exprNode()             {}

// While is `while cond { body }`.
type While struct {
	Position  token.Position
	Condition Expr
	Body      Expr
}

func (e *While) Pos() token.Position { return e.Position }
func (e *While) String() string      { return fmt.Sprintf("while %s %s", e.Condition, e.Body) }
func (*While) exprNode()             {}

// Block is `{ expr+ }`.
type Block struct {
	Position token.Position
	Exprs    []Expr
}

func (e *Block) Pos() token.Position { return e.Position }
func (e *Block) String() string {
	parts := make([]string, len(e.Exprs))
	for i, x := range e.Exprs {
		parts[i] = x.String()
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}
func (*Block) exprNode() {}

// Lambda is `lambda(params):T { body }`.
type Lambda struct {
	Position token.Position
	Params   []*Param
	Ret      TypeExpr
	Body     Expr
}

func (e *Lambda) Pos() token.Position { return e.Position }
func (e *Lambda) String() string {
	parts := make([]string, len(e.Params))
	for i, p := range e.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("lambda(%s):%s %s", strings.Join(parts, ","), e.Ret, e.Body)
}
func (*Lambda) exprNode() {}
