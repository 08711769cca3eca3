package types

import "testing"

func TestSimpleInterning(t *testing.T) {
	s := NewStore()
	a := s.Simple("Widget")
	b := s.Simple("Widget")
	if a != b {
		t.Error("Simple should return the same *Type for the same name")
	}
	if a == s.Simple(Int) {
		t.Error("distinct names must intern to distinct types")
	}
}

func TestVectorInterning(t *testing.T) {
	s := NewStore()
	intT := s.Simple(Int)
	v1 := s.Vector(intT)
	v2 := s.Vector(intT)
	if v1 != v2 {
		t.Error("Vector should return the same *Type for the same element type")
	}
	if v1.Kind() != KindVector || v1.Element() != intT {
		t.Error("Vector type should carry KindVector and the element type")
	}
	if v1.String() != "[Int]" {
		t.Errorf("String() = %q, want %q", v1.String(), "[Int]")
	}
}

func TestVectorBuiltinMethods(t *testing.T) {
	s := NewStore()
	v := s.Vector(s.Simple(Int))
	for _, name := range []string{"plus", "eq", "len"} {
		if _, ok := v.Method(name); !ok {
			t.Errorf("vector type should have a built-in %q method", name)
		}
	}
}

func TestFunctionInterning(t *testing.T) {
	s := NewStore()
	intT := s.Simple(Int)
	boolT := s.Simple(Boolean)
	f1 := s.Function([]*Type{intT, intT}, boolT)
	f2 := s.Function([]*Type{intT, intT}, boolT)
	if f1 != f2 {
		t.Error("Function should intern identical signatures to the same type")
	}
	f3 := s.Function([]*Type{intT}, boolT)
	if f1 == f3 {
		t.Error("different arities must not collide")
	}
	if f1.String() != "(Int,Int):Boolean" {
		t.Errorf("String() = %q", f1.String())
	}
}

func TestMethodInterning(t *testing.T) {
	s := NewStore()
	intT := s.Simple(Int)
	widget := s.Simple("Widget")
	m1 := s.Method(widget, []*Type{intT}, intT)
	m2 := s.Method(widget, []*Type{intT}, intT)
	if m1 != m2 {
		t.Error("Method should intern identical target+signature to the same type")
	}
	if m1.Target() != widget {
		t.Error("Target() should return the receiver type")
	}
}

func TestMatchedByIdentityAndAny(t *testing.T) {
	s := NewStore()
	intT := s.Simple(Int)
	anyT := s.Simple(Any)
	if !intT.MatchedBy(intT) {
		t.Error("a type should match itself")
	}
	if !anyT.MatchedBy(intT) {
		t.Error("Any should be matched by any candidate")
	}
	floatT := s.Simple(Float)
	if intT.MatchedBy(floatT) {
		t.Error("Int should not be matched by Float")
	}
}

func TestMatchedByVectorElementwise(t *testing.T) {
	s := NewStore()
	intT := s.Simple(Int)
	anyT := s.Simple(Any)
	vInt := s.Vector(intT)
	vAny := s.Vector(anyT)
	if !vAny.MatchedBy(vInt) {
		t.Error("[Any] should be matched by [Int]")
	}
	if vInt.MatchedBy(vAny) {
		t.Error("[Int] should not be matched by [Any]")
	}
}

func TestMatchedByFunctionAlternatives(t *testing.T) {
	s := NewStore()
	intT := s.Simple(Int)
	anyT := s.Simple(Any)
	// super: (Any):Int -- must be satisfiable by sub's (Int):Int alternative
	super := s.Function([]*Type{anyT}, intT)
	sub := s.Function([]*Type{intT}, intT)
	if !super.MatchedBy(sub) {
		t.Error("(Any):Int should be matched by (Int):Int")
	}
	if sub.MatchedBy(super) {
		t.Error("(Int):Int should not be matched by (Any):Int")
	}
}

func TestMethodTableRegistrationAndLookup(t *testing.T) {
	s := NewStore()
	widget := s.Simple("Widget")
	intT := s.Simple(Int)
	m := &Method{Name: "area", Alternatives: [][]*Type{{}}, Ret: intT}
	widget.RegisterMethod(m)

	got, ok := widget.Method("area")
	if !ok {
		t.Fatal("expected area method to be registered")
	}
	if got.Target != widget {
		t.Error("RegisterMethod should set Target to the receiver type")
	}
	if _, ok := widget.Method("nope"); ok {
		t.Error("unregistered method should not be found")
	}
}

func TestMethodMatches(t *testing.T) {
	intT := &Type{kind: KindSimple, name: Int, key: "Int"}
	floatT := &Type{kind: KindSimple, name: Float, key: "Float"}
	m := &Method{
		Name: "plus",
		Alternatives: [][]*Type{
			{intT},
			{floatT},
		},
		Ret: intT,
	}
	if idx := m.Matches([]*Type{intT}); idx != 0 {
		t.Errorf("expected alternative 0 for (Int), got %d", idx)
	}
	if idx := m.Matches([]*Type{floatT}); idx != 1 {
		t.Errorf("expected alternative 1 for (Float), got %d", idx)
	}
	if idx := m.Matches([]*Type{intT, intT}); idx != -1 {
		t.Errorf("expected no match for wrong arity, got %d", idx)
	}
}

func TestRecordFields(t *testing.T) {
	s := NewStore()
	point := s.Simple("Point")
	intT := s.Simple(Int)
	point.SetFields([]Field{{Name: "x", Type: intT}, {Name: "y", Type: intT}})

	if len(point.Fields()) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(point.Fields()))
	}
	ft, ok := point.FieldType("y")
	if !ok || ft != intT {
		t.Error("FieldType(y) should resolve to Int")
	}
	if _, ok := point.FieldType("z"); ok {
		t.Error("FieldType(z) should not be found")
	}
}

func TestStoreLookup(t *testing.T) {
	s := NewStore()
	intT := s.Simple(Int)
	got, ok := s.Lookup("Int")
	if !ok || got != intT {
		t.Error("Lookup should find the interned Int type by key")
	}
	if _, ok := s.Lookup("NoSuchType"); ok {
		t.Error("Lookup should fail for an unknown key")
	}
}
