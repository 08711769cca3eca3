package ast

import (
	"strings"
	"testing"
)

func TestLiteralStrings(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want string
	}{
		{"int", &IntLit{Value: 42}, "42"},
		{"float", &FloatLit{Value: 3.5}, "3.5"},
		{"string", &StringLit{Value: "hi"}, `"hi"`},
		{"bool true", &BoolLit{Value: true}, "true"},
		{"bool false", &BoolLit{Value: false}, "false"},
		{"none", &NoneLit{}, "none"},
		{"ident", &Ident{Name: "x"}, "x"},
		{"scoped ident", &ScopedIdent{Scope: "geo", Name: "pi"}, "geo::pi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.node.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVectorLitString(t *testing.T) {
	v := &VectorLit{Elements: []Expr{&IntLit{Value: 1}, &IntLit{Value: 2}}}
	if got, want := v.String(), "[1, 2]"; got != want {
		t.Errorf("VectorLit.String() = %q, want %q", got, want)
	}
}

func TestRecordLitString(t *testing.T) {
	r := &RecordLit{Type: "Point", Args: []Expr{&IntLit{Value: 1}, &IntLit{Value: 2}}}
	if got, want := r.String(), "#Point(1, 2)"; got != want {
		t.Errorf("RecordLit.String() = %q, want %q", got, want)
	}
}

func TestFieldAccessAndUpdateString(t *testing.T) {
	target := &Ident{Name: "p"}
	access := &FieldAccess{Target: target, Name: "x"}
	if got, want := access.String(), "p.x"; got != want {
		t.Errorf("FieldAccess.String() = %q, want %q", got, want)
	}
	update := &FieldUpdate{Target: target, Name: "x", Value: &IntLit{Value: 9}}
	if got, want := update.String(), "p.x := 9"; got != want {
		t.Errorf("FieldUpdate.String() = %q, want %q", got, want)
	}
}

func TestIndexAndIndexUpdateString(t *testing.T) {
	target := &Ident{Name: "v"}
	idx := &Index{Target: target, Index: &IntLit{Value: 0}}
	if got, want := idx.String(), "v[0]"; got != want {
		t.Errorf("Index.String() = %q, want %q", got, want)
	}
	upd := &IndexUpdate{Target: target, Index: &IntLit{Value: 0}, Value: &IntLit{Value: 9}}
	if got, want := upd.String(), "v[0] := 9"; got != want {
		t.Errorf("IndexUpdate.String() = %q, want %q", got, want)
	}
}

func TestCallAndMethodCallString(t *testing.T) {
	call := &Call{Callee: &Ident{Name: "box"}, Args: []Expr{&IntLit{Value: 1}, &IntLit{Value: 2}}}
	if got, want := call.String(), "box(1, 2)"; got != want {
		t.Errorf("Call.String() = %q, want %q", got, want)
	}
	mc := &MethodCall{Receiver: &Ident{Name: "s"}, Name: "union", Args: []Expr{&Ident{Name: "t"}}}
	if got, want := mc.String(), "s->union(t)"; got != want {
		t.Errorf("MethodCall.String() = %q, want %q", got, want)
	}
}

func TestBinaryAndUnaryOpString(t *testing.T) {
	bo := &BinaryOp{Op: "+", Left: &IntLit{Value: 1}, Right: &IntLit{Value: 2}}
	if got, want := bo.String(), "(1 + 2)"; got != want {
		t.Errorf("BinaryOp.String() = %q, want %q", got, want)
	}
	neg := &UnaryOp{Op: "-", Operand: &IntLit{Value: 5}}
	if got, want := neg.String(), "(-5)"; got != want {
		t.Errorf("UnaryOp.String() = %q, want %q", got, want)
	}
}

func TestLetAndAssignString(t *testing.T) {
	let := &Let{Name: "x", Init: &IntLit{Value: 1}}
	if got, want := let.String(), "let x = 1"; got != want {
		t.Errorf("Let.String() = %q, want %q", got, want)
	}
	asg := &Assign{Name: "x", Value: &IntLit{Value: 2}}
	if got, want := asg.String(), "x := 2"; got != want {
		t.Errorf("Assign.String() = %q, want %q", got, want)
	}
}

func TestIfString(t *testing.T) {
	ifExpr := &If{
		Branches: []IfBranch{
			{Condition: &BoolLit{Value: true}, Body: &IntLit{Value: 1}},
			{Condition: &BoolLit{Value: false}, Body: &IntLit{Value: 2}},
		},
		Else: &IntLit{Value: 3},
	}
	got := ifExpr.String()
	if !strings.HasPrefix(got, "if true 1") {
		t.Errorf("If.String() should start with the if branch, got %q", got)
	}
	if !strings.Contains(got, "elif false 2") {
		t.Errorf("If.String() should contain the elif branch, got %q", got)
	}
	if !strings.Contains(got, "else 3") {
		t.Errorf("If.String() should contain the else branch, got %q", got)
	}
}

func TestForWhileBlockString(t *testing.T) {
	forExpr := &For{Name: "i", Iter: &Ident{Name: "xs"}, Body: &Ident{Name: "i"}}
	if got, want := forExpr.String(), "for i in xs i"; got != want {
		t.Errorf("For.String() = %q, want %q", got, want)
	}

	whileExpr := &While{Condition: &BoolLit{Value: true}, Body: &IntLit{Value: 1}}
	if got, want := whileExpr.String(), "while true 1"; got != want {
		t.Errorf("While.String() = %q, want %q", got, want)
	}

	block := &Block{Exprs: []Expr{&IntLit{Value: 1}, &IntLit{Value: 2}}}
	if got, want := block.String(), "{ 1; 2 }"; got != want {
		t.Errorf("Block.String() = %q, want %q", got, want)
	}
}

func TestLambdaString(t *testing.T) {
	lam := &Lambda{
		Params: []*Param{{Name: "x", Type: &SimpleType{Name: "Int"}}},
		Ret:    &SimpleType{Name: "Int"},
		Body:   &Ident{Name: "x"},
	}
	if got, want := lam.String(), "lambda(x:Int):Int x"; got != want {
		t.Errorf("Lambda.String() = %q, want %q", got, want)
	}
}

func TestTypeExprStrings(t *testing.T) {
	st := &SimpleType{Name: "Int"}
	if got, want := st.String(), "Int"; got != want {
		t.Errorf("SimpleType.String() = %q, want %q", got, want)
	}
	vt := &VectorType{Element: st}
	if got, want := vt.String(), "[Int]"; got != want {
		t.Errorf("VectorType.String() = %q, want %q", got, want)
	}
	ft := &FunctionType{Params: []TypeExpr{st, st}, Ret: st}
	if got, want := ft.String(), "(Int,Int):Int"; got != want {
		t.Errorf("FunctionType.String() = %q, want %q", got, want)
	}
	mt := &MethodType{Target: st, Params: []TypeExpr{st}, Ret: st}
	if got, want := mt.String(), "Int->(Int):Int"; got != want {
		t.Errorf("MethodType.String() = %q, want %q", got, want)
	}
}

func TestDefinitionStrings(t *testing.T) {
	letDef := &LetDef{Name: "x", Init: &IntLit{Value: 1}}
	if got, want := letDef.String(), "let x = 1"; got != want {
		t.Errorf("LetDef.String() = %q, want %q", got, want)
	}

	funDef := &FunDef{
		Name:   "sq",
		Params: []*Param{{Name: "x", Type: &SimpleType{Name: "Int"}}},
		Ret:    &SimpleType{Name: "Int"},
		Body:   &BinaryOp{Op: "*", Left: &Ident{Name: "x"}, Right: &Ident{Name: "x"}},
	}
	if got, want := funDef.String(), "fun sq(x:Int):Int (x * x)"; got != want {
		t.Errorf("FunDef.String() = %q, want %q", got, want)
	}

	dataDef := &DataDef{Name: "Point", Fields: []*Field{
		{Name: "x", Type: &SimpleType{Name: "Int"}},
		{Name: "y", Type: &SimpleType{Name: "Int"}},
	}}
	if got, want := dataDef.String(), "data Point{x:Int y:Int}"; got != want {
		t.Errorf("DataDef.String() = %q, want %q", got, want)
	}

	methDef := &MethDef{
		Target: "Point",
		Name:   "shift",
		Params: []*Param{{Name: "dx", Type: &SimpleType{Name: "Int"}}},
		Ret:    &SimpleType{Name: "Point"},
		Body:   &Ident{Name: "dx"},
	}
	if got, want := methDef.String(), "meth Point.shift(dx:Int):Point dx"; got != want {
		t.Errorf("MethDef.String() = %q, want %q", got, want)
	}
}

func TestImportAndProductString(t *testing.T) {
	imp := &Import{Path: "shapes.s3d", Scope: "shapes"}
	if got, want := imp.String(), `import "shapes.s3d" as shapes`; got != want {
		t.Errorf("Import.String() = %q, want %q", got, want)
	}

	prod := &Product{Name: "part", Body: []Expr{&IntLit{Value: 1}}}
	got := prod.String()
	if !strings.Contains(got, `produce("part")`) || !strings.Contains(got, "1") {
		t.Errorf("Product.String() = %q", got)
	}
}

func TestModuleString(t *testing.T) {
	mod := &Module{
		Imports:     []*Import{{Path: "a.s3d", Scope: "a"}},
		Definitions: []Definition{&LetDef{Name: "x", Init: &IntLit{Value: 1}}},
		Products:    []*Product{{Name: "p", Body: []Expr{&IntLit{Value: 2}}}},
	}
	got := mod.String()
	if !strings.Contains(got, "import") || !strings.Contains(got, "let x") || !strings.Contains(got, "produce") {
		t.Errorf("Module.String() missing expected sections: %q", got)
	}
}
