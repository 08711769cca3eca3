// Package builtins installs the built-in operator methods (plus, minus,
// times, div, mod, pow, neg, eq, ne, lt, le, gt, ge) that spec.md §4.1
// desugars binary/unary operators into, on Simplex's primitive types. It is
// grounded on the teacher's internal/interp "operators" registration step
// (each native type registers its own arithmetic/comparison table before
// any script runs), adapted from DWScript's class-based operator overload
// table to a flat per-Type method table.
package builtins

import "github.com/markchucarroll/simplex/internal/types"

// Install registers built-in methods on the primitive atoms of store. It is
// idempotent: calling it more than once simply re-registers the same
// signatures, which is harmless since types.Type.RegisterMethod replaces
// by name.
func Install(store *types.Store) {
	intT := store.Simple(types.Int)
	floatT := store.Simple(types.Float)
	stringT := store.Simple(types.String)
	boolT := store.Simple(types.Boolean)
	vec2T := store.Simple(types.Vec2)
	vec3T := store.Simple(types.Vec3)

	installArithmetic(intT, floatT)
	installArithmetic(floatT, intT)
	installComparison(intT, floatT, boolT)
	installComparison(floatT, intT, boolT)

	intT.RegisterMethod(&types.Method{Name: "to", Alternatives: [][]*types.Type{{intT}}, Ret: store.Vector(intT)})

	installStringMethods(stringT, boolT, intT)
	installBoolMethods(boolT)
	installVecMethods(vec2T, floatT, boolT)
	installVecMethods(vec3T, floatT, boolT)

	installGeometryMethods(store)
}

// installGeometryMethods registers the signatures of the geometry-kernel
// operations spec.md §1 lists (boolean ops, affine transforms, extrusion,
// revolution, slicing, bounds) onto Solid and Polygon. Their Go
// implementations live in internal/evaluator (internal/kernel's mesh code,
// wired in via native Alternatives), since registering a signature here
// only needs the type system, not the evaluator.
func installGeometryMethods(store *types.Store) {
	solidT := store.Simple(types.Solid)
	sliceT := store.Simple(types.Slice)
	polygonT := store.Simple(types.Polygon)
	vec3T := store.Simple(types.Vec3)
	floatT := store.Simple(types.Float)
	intT := store.Simple(types.Int)
	bboxT := store.Simple(types.BoundingBox)
	brectT := store.Simple(types.BoundingRect)

	solidBin := func(name string) *types.Method {
		return &types.Method{Name: name, Alternatives: [][]*types.Type{{solidT}}, Ret: solidT}
	}
	solidT.RegisterMethod(solidBin("union"))
	solidT.RegisterMethod(solidBin("difference"))
	solidT.RegisterMethod(solidBin("intersection"))
	solidT.RegisterMethod(&types.Method{Name: "translate", Alternatives: [][]*types.Type{{vec3T}}, Ret: solidT})
	solidT.RegisterMethod(&types.Method{Name: "scale", Alternatives: [][]*types.Type{{vec3T}}, Ret: solidT})
	solidT.RegisterMethod(&types.Method{Name: "rotateX", Alternatives: [][]*types.Type{{floatT}}, Ret: solidT})
	solidT.RegisterMethod(&types.Method{Name: "rotateY", Alternatives: [][]*types.Type{{floatT}}, Ret: solidT})
	solidT.RegisterMethod(&types.Method{Name: "rotateZ", Alternatives: [][]*types.Type{{floatT}}, Ret: solidT})
	solidT.RegisterMethod(&types.Method{Name: "slice", Alternatives: [][]*types.Type{{floatT}}, Ret: sliceT})
	solidT.RegisterMethod(&types.Method{Name: "boundingBox", Alternatives: [][]*types.Type{{}}, Ret: bboxT})

	polygonT.RegisterMethod(&types.Method{Name: "extrude", Alternatives: [][]*types.Type{{floatT}}, Ret: solidT})
	polygonT.RegisterMethod(&types.Method{Name: "revolve", Alternatives: [][]*types.Type{{intT}}, Ret: solidT})
	polygonT.RegisterMethod(&types.Method{Name: "boundingRect", Alternatives: [][]*types.Type{{}}, Ret: brectT})
	_ = sliceT
}

// FreeFunctionSignatures returns the Method signatures of the built-in
// free functions (the Solid constructors) so internal/semantic can type-
// check calls to them without the analyzer needing to know they are
// native rather than user-defined.
func FreeFunctionSignatures(store *types.Store) map[string]*types.Method {
	floatT := store.Simple(types.Float)
	solidT := store.Simple(types.Solid)
	return map[string]*types.Method{
		"box":      {Name: "box", Alternatives: [][]*types.Type{{floatT, floatT, floatT}}, Ret: solidT},
		"cylinder": {Name: "cylinder", Alternatives: [][]*types.Type{{floatT, floatT}}, Ret: solidT},
		"sphere":   {Name: "sphere", Alternatives: [][]*types.Type{{floatT}}, Ret: solidT},
	}
}

// installArithmetic registers plus/minus/times/div/pow/neg on t, accepting
// both t itself and other (the other numeric type, for Int/Float mixing)
// and returning t's own type for both alternatives. When t is Int it also
// registers mod, which is Int-only.
func installArithmetic(t, other *types.Type) {
	bin := func(name string) *types.Method {
		return &types.Method{
			Name:         name,
			Alternatives: [][]*types.Type{{t}, {other}},
			Ret:          t,
		}
	}
	t.RegisterMethod(bin("plus"))
	t.RegisterMethod(bin("minus"))
	t.RegisterMethod(bin("times"))
	t.RegisterMethod(bin("div"))
	t.RegisterMethod(bin("pow"))
	t.RegisterMethod(&types.Method{Name: "neg", Alternatives: [][]*types.Type{{}}, Ret: t})
	if t.Name() == types.Int {
		t.RegisterMethod(&types.Method{Name: "mod", Alternatives: [][]*types.Type{{t}}, Ret: t})
	}
}

func installComparison(t, other, boolT *types.Type) {
	cmp := func(name string) *types.Method {
		return &types.Method{
			Name:         name,
			Alternatives: [][]*types.Type{{t}, {other}},
			Ret:          boolT,
		}
	}
	t.RegisterMethod(cmp("eq"))
	t.RegisterMethod(cmp("ne"))
	t.RegisterMethod(cmp("lt"))
	t.RegisterMethod(cmp("le"))
	t.RegisterMethod(cmp("gt"))
	t.RegisterMethod(cmp("ge"))
}

func installStringMethods(stringT, boolT, intT *types.Type) {
	stringT.RegisterMethod(&types.Method{Name: "plus", Alternatives: [][]*types.Type{{stringT}}, Ret: stringT})
	stringT.RegisterMethod(&types.Method{Name: "eq", Alternatives: [][]*types.Type{{stringT}}, Ret: boolT})
	stringT.RegisterMethod(&types.Method{Name: "ne", Alternatives: [][]*types.Type{{stringT}}, Ret: boolT})
	stringT.RegisterMethod(&types.Method{Name: "lt", Alternatives: [][]*types.Type{{stringT}}, Ret: boolT})
	stringT.RegisterMethod(&types.Method{Name: "le", Alternatives: [][]*types.Type{{stringT}}, Ret: boolT})
	stringT.RegisterMethod(&types.Method{Name: "gt", Alternatives: [][]*types.Type{{stringT}}, Ret: boolT})
	stringT.RegisterMethod(&types.Method{Name: "ge", Alternatives: [][]*types.Type{{stringT}}, Ret: boolT})
	stringT.RegisterMethod(&types.Method{Name: "len", Alternatives: [][]*types.Type{{}}, Ret: intT})
}

func installBoolMethods(boolT *types.Type) {
	boolT.RegisterMethod(&types.Method{Name: "eq", Alternatives: [][]*types.Type{{boolT}}, Ret: boolT})
	boolT.RegisterMethod(&types.Method{Name: "ne", Alternatives: [][]*types.Type{{boolT}}, Ret: boolT})
}

func installVecMethods(t, scalarT, boolT *types.Type) {
	t.RegisterMethod(&types.Method{Name: "plus", Alternatives: [][]*types.Type{{t}}, Ret: t})
	t.RegisterMethod(&types.Method{Name: "minus", Alternatives: [][]*types.Type{{t}}, Ret: t})
	t.RegisterMethod(&types.Method{Name: "times", Alternatives: [][]*types.Type{{scalarT}}, Ret: t})
	t.RegisterMethod(&types.Method{Name: "neg", Alternatives: [][]*types.Type{{}}, Ret: t})
	t.RegisterMethod(&types.Method{Name: "eq", Alternatives: [][]*types.Type{{t}}, Ret: boolT})
	t.RegisterMethod(&types.Method{Name: "ne", Alternatives: [][]*types.Type{{t}}, Ret: boolT})
}
