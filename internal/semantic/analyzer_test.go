package semantic

import (
	"strings"
	"testing"

	"github.com/markchucarroll/simplex/internal/lexer"
	"github.com/markchucarroll/simplex/internal/parser"
	"github.com/markchucarroll/simplex/internal/types"
)

func analyze(t *testing.T, src string) *Analyzer {
	t.Helper()
	l := lexer.New(src, "test.s3d")
	p := parser.New(l)
	mod := p.ParseModule()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	a := New(types.NewStore())
	a.Analyze(mod)
	return a
}

func hasErrorContaining(errs []string, substr string) bool {
	for _, e := range errs {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

func TestAnalyzeValidModuleHasNoErrors(t *testing.T) {
	a := analyze(t, `
		data Point { x: Int, y: Int }
		fun sq(x: Int): Int { x * x }
		let p := #Point(1, 2);
		produce("part") { sq(p.x) }
	`)
	if errs := a.Errors(); len(errs) > 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestUndefinedVariableError(t *testing.T) {
	a := analyze(t, `let x := y;`)
	if !hasErrorContaining(a.Errors(), "undefined variable: y") {
		t.Errorf("expected undefined variable error, got %v", a.Errors())
	}
}

func TestUndefinedTypeError(t *testing.T) {
	a := analyze(t, `fun f(x: Bogus): Int { 1 }`)
	if !hasErrorContaining(a.Errors(), "undefined type: Bogus") {
		t.Errorf("expected undefined type error, got %v", a.Errors())
	}
}

func TestUndefinedDataTypeInRecordLiteral(t *testing.T) {
	a := analyze(t, `let p := #Bogus(1, 2);`)
	if !hasErrorContaining(a.Errors(), "undefined data type: Bogus") {
		t.Errorf("expected undefined data type error, got %v", a.Errors())
	}
}

func TestRecordFieldCountMismatch(t *testing.T) {
	a := analyze(t, `
		data Point { x: Int, y: Int }
		let p := #Point(1);
	`)
	if !hasErrorContaining(a.Errors(), "expects 2 field") {
		t.Errorf("expected field-count mismatch error, got %v", a.Errors())
	}
}

func TestRecordFieldTypeMismatch(t *testing.T) {
	a := analyze(t, `
		data Point { x: Int, y: Int }
		let p := #Point(1, "two");
	`)
	if !hasErrorContaining(a.Errors(), "field Point.y expects Int") {
		t.Errorf("expected field type mismatch error, got %v", a.Errors())
	}
}

func TestFieldAccessOnUnknownField(t *testing.T) {
	a := analyze(t, `
		data Point { x: Int }
		let p := #Point(1);
		let z := p.y;
	`)
	if !hasErrorContaining(a.Errors(), "has no field y") {
		t.Errorf("expected no-field error, got %v", a.Errors())
	}
}

func TestCallArityMismatch(t *testing.T) {
	a := analyze(t, `
		fun sq(x: Int): Int { x * x }
		let y := sq(1, 2);
	`)
	if !hasErrorContaining(a.Errors(), "no overload of sq") {
		t.Errorf("expected arity mismatch error, got %v", a.Errors())
	}
}

func TestMethodNotFoundError(t *testing.T) {
	a := analyze(t, `let x := 3->no_such(1);`)
	if !hasErrorContaining(a.Errors(), "has no method no_such") {
		t.Errorf("expected method-not-found error, got %v", a.Errors())
	}
}

func TestMethodArgumentMismatch(t *testing.T) {
	a := analyze(t, `let x := 3->plus("hi");`)
	if !hasErrorContaining(a.Errors(), "no alternative of Int.plus") {
		t.Errorf("expected method-arg-mismatch error, got %v", a.Errors())
	}
}

func TestIfBranchTypeMismatch(t *testing.T) {
	a := analyze(t, `fun f(): Int { if true { 1 } else { "no" } }`)
	if !hasErrorContaining(a.Errors(), "does not match") {
		t.Errorf("expected branch-type-mismatch error, got %v", a.Errors())
	}
}

func TestIfConditionMustBeBoolean(t *testing.T) {
	a := analyze(t, `fun f(): Int { if 1 { 1 } else { 2 } }`)
	if !hasErrorContaining(a.Errors(), "if condition must be Boolean") {
		t.Errorf("expected Boolean-condition error, got %v", a.Errors())
	}
}

func TestForOverNonVectorError(t *testing.T) {
	a := analyze(t, `fun f(): None { for i in 5 { i } }`)
	if !hasErrorContaining(a.Errors(), "for loop source must be a vector") {
		t.Errorf("expected non-vector for-source error, got %v", a.Errors())
	}
}

func TestWhileConditionMustBeBoolean(t *testing.T) {
	a := analyze(t, `fun f(): None { while 5 { 1 } }`)
	if !hasErrorContaining(a.Errors(), "while condition must be Boolean") {
		t.Errorf("expected Boolean-condition error, got %v", a.Errors())
	}
}

func TestFunctionBodyReturnTypeMismatch(t *testing.T) {
	a := analyze(t, `fun f(): Int { "not an int" }`)
	if !hasErrorContaining(a.Errors(), "does not match declared return type") {
		t.Errorf("expected return-type mismatch error, got %v", a.Errors())
	}
}

func TestLambdaTyping(t *testing.T) {
	a := analyze(t, `let f := lambda(x: Int): Int { x * x };`)
	if errs := a.Errors(); len(errs) > 0 {
		t.Fatalf("expected valid lambda to have no errors, got %v", errs)
	}
}

func TestLambdaBodyMismatch(t *testing.T) {
	a := analyze(t, `let f := lambda(x: Int): Int { "nope" };`)
	if !hasErrorContaining(a.Errors(), "lambda body type") {
		t.Errorf("expected lambda body mismatch error, got %v", a.Errors())
	}
}

func TestProduceBlockRejectedInLibrary(t *testing.T) {
	l := lexer.New(`produce("part") { 1 }`, "lib.s3d")
	p := parser.New(l)
	mod := p.ParseModule()
	a := New(types.NewStore())
	a.SetLibrary(true)
	a.Analyze(mod)
	if !hasErrorContaining(a.Errors(), "may not declare produce blocks") {
		t.Errorf("expected library-produce-block error, got %v", a.Errors())
	}
}

func TestLetDeclaredTypeMismatch(t *testing.T) {
	a := analyze(t, `let x: Int := "no";`)
	if !hasErrorContaining(a.Errors(), "does not match initializer type") {
		t.Errorf("expected let declared-type mismatch error, got %v", a.Errors())
	}
}

func TestAssignToUndeclaredVariable(t *testing.T) {
	a := analyze(t, `fun f(): Int { y := 1 }`)
	if !hasErrorContaining(a.Errors(), "undefined variable: y") {
		t.Errorf("expected undefined-assign-target error, got %v", a.Errors())
	}
}

func TestVectorIndexMustBeInt(t *testing.T) {
	a := analyze(t, `let v := [1, 2, 3]; let x := v["a"];`)
	if !hasErrorContaining(a.Errors(), "vector index must be Int") {
		t.Errorf("expected non-Int index error, got %v", a.Errors())
	}
}

func TestVectorElementTypeMismatch(t *testing.T) {
	a := analyze(t, `let v := [1, "two"];`)
	if !hasErrorContaining(a.Errors(), "does not match preceding element type") {
		t.Errorf("expected vector element mismatch error, got %v", a.Errors())
	}
}
