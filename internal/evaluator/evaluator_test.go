package evaluator

import (
	"testing"

	"github.com/markchucarroll/simplex/internal/environment"
	"github.com/markchucarroll/simplex/internal/lexer"
	"github.com/markchucarroll/simplex/internal/parser"
	"github.com/markchucarroll/simplex/internal/semantic"
	"github.com/markchucarroll/simplex/internal/types"
	"github.com/markchucarroll/simplex/internal/value"
)

// evalModule lexes, parses, statically analyzes and evaluates src, failing
// the test on any parse or analysis error so evaluation-only bugs aren't
// masked by an unrelated static-checking gap.
func evalModule(t *testing.T, src string) *environment.Environment {
	t.Helper()
	l := lexer.New(src, "test.s3d")
	p := parser.New(l)
	mod := p.ParseModule()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	store := types.NewStore()
	a := semantic.New(store)
	a.Analyze(mod)
	if errs := a.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected analysis errors: %v", errs)
	}
	ev := New(store)
	global, err := ev.EvalModule(mod)
	if err != nil {
		t.Fatalf("unexpected eval error: %v", err)
	}
	return global
}

// evalModuleErr is for cases where evaluation itself is expected to fail.
func evalModuleErr(t *testing.T, src string) error {
	t.Helper()
	l := lexer.New(src, "test.s3d")
	p := parser.New(l)
	mod := p.ParseModule()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	store := types.NewStore()
	ev := New(store)
	_, err := ev.EvalModule(mod)
	if err == nil {
		t.Fatalf("expected an evaluation error, got none")
	}
	return err
}

func mustGet(t *testing.T, env *environment.Environment, name string) value.Value {
	t.Helper()
	v, ok := env.Get(name)
	if !ok {
		t.Fatalf("expected %s to be defined", name)
	}
	return v
}

func TestEvalArithmetic(t *testing.T) {
	env := evalModule(t, `let x := 2 + 3 * 4;`)
	x, ok := mustGet(t, env, "x").(*value.Int)
	if !ok || x.Value != 14 {
		t.Errorf("expected 14, got %v", mustGet(t, env, "x"))
	}
}

func TestEvalComparisonAndLogic(t *testing.T) {
	env := evalModule(t, `let x := (1 < 2) and (3 >= 3);`)
	x, ok := mustGet(t, env, "x").(*value.Bool)
	if !ok || !x.Value {
		t.Errorf("expected true, got %v", mustGet(t, env, "x"))
	}
}

func TestEvalShortCircuitOr(t *testing.T) {
	// If `or` evaluated its right side, the division by zero would surface
	// as a runtime error; short-circuiting must suppress it.
	env := evalModule(t, `let x := true or (1->div(0)->eq(1));`)
	x, ok := mustGet(t, env, "x").(*value.Bool)
	if !ok || !x.Value {
		t.Errorf("expected short-circuited true, got %v", mustGet(t, env, "x"))
	}
}

func TestEvalShortCircuitAnd(t *testing.T) {
	env := evalModule(t, `let x := false and (1->div(0)->eq(1));`)
	x, ok := mustGet(t, env, "x").(*value.Bool)
	if !ok || x.Value {
		t.Errorf("expected short-circuited false, got %v", mustGet(t, env, "x"))
	}
}

func TestEvalLetScopingAndShadowing(t *testing.T) {
	env := evalModule(t, `
		let x := 1;
		let y := { let x := 2; x + 1 };
	`)
	y, ok := mustGet(t, env, "y").(*value.Int)
	if !ok || y.Value != 3 {
		t.Errorf("expected inner shadow to yield 3, got %v", mustGet(t, env, "y"))
	}
	x, ok := mustGet(t, env, "x").(*value.Int)
	if !ok || x.Value != 1 {
		t.Errorf("expected outer x to remain 1, got %v", mustGet(t, env, "x"))
	}
}

func TestEvalIfExpression(t *testing.T) {
	env := evalModule(t, `
		fun pick(b: Boolean): Int { if b { 1 } else { 2 } }
		let a := pick(true);
		let b := pick(false);
	`)
	a, _ := mustGet(t, env, "a").(*value.Int)
	b, _ := mustGet(t, env, "b").(*value.Int)
	if a.Value != 1 || b.Value != 2 {
		t.Errorf("expected 1 and 2, got %v and %v", a.Value, b.Value)
	}
}

func TestEvalWhileEvaluatesToNone(t *testing.T) {
	env := evalModule(t, `
		fun countdown(): None {
			let i := 3;
			while i->gt(0) { i := i->minus(1) }
		}
		let r := countdown();
	`)
	if _, ok := mustGet(t, env, "r").(*value.None); !ok {
		t.Errorf("expected None result from while, got %v", mustGet(t, env, "r"))
	}
}

// TestForAsMapWithIntRange exercises spec.md scenario 4: a for loop over an
// Int.to range collects each iteration's body value into a result vector.
func TestForAsMapWithIntRange(t *testing.T) {
	env := evalModule(t, `let squares := for i in 1->to(3) { i * i };`)
	vec, ok := mustGet(t, env, "squares").(*value.Vector)
	if !ok {
		t.Fatalf("expected a Vector, got %T", mustGet(t, env, "squares"))
	}
	want := []int64{1, 4, 9}
	if len(vec.Elements) != len(want) {
		t.Fatalf("expected %d elements, got %d (%v)", len(want), len(vec.Elements), vec.Elements)
	}
	for i, w := range want {
		got, ok := vec.Elements[i].(*value.Int)
		if !ok || got.Value != w {
			t.Errorf("element %d: expected %d, got %v", i, w, vec.Elements[i])
		}
	}
}

func TestIntToDescendingRangeIsEmpty(t *testing.T) {
	env := evalModule(t, `let r := 5->to(2);`)
	vec, ok := mustGet(t, env, "r").(*value.Vector)
	if !ok {
		t.Fatalf("expected a Vector, got %T", mustGet(t, env, "r"))
	}
	if len(vec.Elements) != 0 {
		t.Errorf("expected an empty vector, got %v", vec.Elements)
	}
}

func TestIntToSingleElementRange(t *testing.T) {
	env := evalModule(t, `let r := 4->to(4);`)
	vec := mustGet(t, env, "r").(*value.Vector)
	if len(vec.Elements) != 1 || vec.Elements[0].(*value.Int).Value != 4 {
		t.Errorf("expected [4], got %v", vec.Elements)
	}
}

// TestRecordFieldUpdateImmutability exercises spec.md scenario 3: updating a
// field returns a new record, leaving the original record value unchanged
// (the variable p itself is rebound to the new record, so the original is
// read through the alias orig).
func TestRecordFieldUpdateImmutability(t *testing.T) {
	env := evalModule(t, `
		data Point { x: Int, y: Int }
		let p := #Point(1, 2);
		let orig := p;
		let q := p.y := 9;
	`)
	orig := mustGet(t, env, "orig").(*value.Record)
	q := mustGet(t, env, "q").(*value.Record)
	if orig.Fields[orig.FieldIndex("y")].(*value.Int).Value != 2 {
		t.Errorf("expected original p.y to remain 2, got %v", orig.Fields[orig.FieldIndex("y")])
	}
	if q.Fields[q.FieldIndex("y")].(*value.Int).Value != 9 {
		t.Errorf("expected updated q.y to be 9, got %v", q.Fields[q.FieldIndex("y")])
	}
	if q.Fields[q.FieldIndex("x")].(*value.Int).Value != 1 {
		t.Errorf("expected q.x to be unchanged at 1, got %v", q.Fields[q.FieldIndex("x")])
	}
}

// TestVectorIndexUpdateImmutability checks that an index update builds a new
// vector and leaves the original vector value unchanged; v itself is rebound,
// so the original is read through the alias orig.
func TestVectorIndexUpdateImmutability(t *testing.T) {
	env := evalModule(t, `
		let v := [1, 2, 3];
		let orig := v;
		let w := v[1] := 99;
	`)
	orig := mustGet(t, env, "orig").(*value.Vector)
	w := mustGet(t, env, "w").(*value.Vector)
	if orig.Elements[1].(*value.Int).Value != 2 {
		t.Errorf("expected original v[1] to remain 2, got %v", orig.Elements[1])
	}
	if w.Elements[1].(*value.Int).Value != 99 {
		t.Errorf("expected updated w[1] to be 99, got %v", w.Elements[1])
	}
}

func TestVectorIndexOutOfRangeIsRuntimeError(t *testing.T) {
	err := evalModuleErr(t, `let v := [1, 2]; let x := v[5];`)
	if err == nil {
		t.Fatal("expected an out-of-range runtime error")
	}
}

func TestDivisionByZeroIsRuntimeError(t *testing.T) {
	err := evalModuleErr(t, `let x := 1->div(0);`)
	if err == nil {
		t.Fatal("expected a division-by-zero runtime error")
	}
}

func TestModuloByZeroIsRuntimeError(t *testing.T) {
	err := evalModuleErr(t, `let x := 1->mod(0);`)
	if err == nil {
		t.Fatal("expected a modulo-by-zero runtime error")
	}
}

// TestMethodNotFoundNamesReceiverType exercises spec.md scenario 5: calling
// an undefined method reports both the method name and the receiver's type.
func TestMethodNotFoundNamesReceiverType(t *testing.T) {
	err := evalModuleErr(t, `let x := 3->no_such(1);`)
	if err == nil {
		t.Fatal("expected a method-not-found error")
	}
	msg := err.Error()
	if !contains(msg, "no_such") || !contains(msg, "Int") {
		t.Errorf("expected error to name method and receiver type, got %q", msg)
	}
}

func TestOperatorDesugaringEquivalence(t *testing.T) {
	env := evalModule(t, `
		let a := 3 + 4;
		let b := 3->plus(4);
	`)
	a := mustGet(t, env, "a").(*value.Int)
	b := mustGet(t, env, "b").(*value.Int)
	if a.Value != b.Value {
		t.Errorf("expected operator and explicit method call to agree, got %d vs %d", a.Value, b.Value)
	}
}

func TestUserMethodOverridesBuiltin(t *testing.T) {
	env := evalModule(t, `
		meth Int.plus(other: Int): Int { 0 }
		let x := 3->plus(4);
	`)
	x := mustGet(t, env, "x").(*value.Int)
	if x.Value != 0 {
		t.Errorf("expected user-defined override to win, got %d", x.Value)
	}
}

func TestFunctionOverloadSelectsFirstMatchingAlternative(t *testing.T) {
	env := evalModule(t, `
		fun describe(x: Int): String { "int" }
		fun describe(x: String): String { "string" }
		let a := describe(1);
		let b := describe("hi");
	`)
	a := mustGet(t, env, "a").(*value.Str)
	b := mustGet(t, env, "b").(*value.Str)
	if a.Value != "int" || b.Value != "string" {
		t.Errorf("expected int/string dispatch, got %q / %q", a.Value, b.Value)
	}
}

func TestLambdaClosesOverEnclosingScope(t *testing.T) {
	env := evalModule(t, `
		let base := 10;
		let addBase := lambda(x: Int): Int { x + base };
		let r := addBase(5);
	`)
	r := mustGet(t, env, "r").(*value.Int)
	if r.Value != 15 {
		t.Errorf("expected closure to see base=10, got %d", r.Value)
	}
}

func TestMutualRecursionBetweenFunctions(t *testing.T) {
	env := evalModule(t, `
		fun isEven(n: Int): Boolean { if n->eq(0) { true } else { isOdd(n->minus(1)) } }
		fun isOdd(n: Int): Boolean { if n->eq(0) { false } else { isEven(n->minus(1)) } }
		let r := isEven(10);
	`)
	r := mustGet(t, env, "r").(*value.Bool)
	if !r.Value {
		t.Errorf("expected isEven(10) to be true")
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
