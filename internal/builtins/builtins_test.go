package builtins

import (
	"testing"

	"github.com/markchucarroll/simplex/internal/types"
)

func TestInstallRegistersArithmeticOnInt(t *testing.T) {
	store := types.NewStore()
	Install(store)
	intT := store.Simple(types.Int)
	for _, name := range []string{"plus", "minus", "times", "div", "mod", "pow", "neg"} {
		if _, ok := intT.Method(name); !ok {
			t.Errorf("expected Int to have a %q method", name)
		}
	}
}

func TestInstallRegistersIntToRangeMethod(t *testing.T) {
	store := types.NewStore()
	Install(store)
	intT := store.Simple(types.Int)
	m, ok := intT.Method("to")
	if !ok {
		t.Fatal("expected Int to register a 'to' method")
	}
	if idx := m.Matches([]*types.Type{intT}); idx == -1 {
		t.Errorf("expected Int.to to accept a single Int argument")
	}
	vecT := store.Vector(intT)
	if m.Ret != vecT {
		t.Errorf("expected Int.to to return [Int], got %v", m.Ret)
	}
}

func TestFloatHasNoModMethod(t *testing.T) {
	store := types.NewStore()
	Install(store)
	floatT := store.Simple(types.Float)
	if _, ok := floatT.Method("mod"); ok {
		t.Errorf("expected Float to have no mod method (spec.md restricts mod to Int)")
	}
}

func TestInstallIsIdempotent(t *testing.T) {
	store := types.NewStore()
	Install(store)
	Install(store)
	intT := store.Simple(types.Int)
	m, ok := intT.Method("plus")
	if !ok {
		t.Fatal("expected Int.plus to be registered")
	}
	if len(m.Alternatives) != 2 {
		t.Errorf("expected re-installing to replace rather than duplicate alternatives, got %d", len(m.Alternatives))
	}
}

func TestInstallRegistersGeometryMethods(t *testing.T) {
	store := types.NewStore()
	Install(store)
	solidT := store.Simple(types.Solid)
	for _, name := range []string{"union", "difference", "intersection", "translate", "scale", "rotateX", "rotateY", "rotateZ", "slice", "boundingBox"} {
		if _, ok := solidT.Method(name); !ok {
			t.Errorf("expected Solid to have a %q method", name)
		}
	}
	polygonT := store.Simple(types.Polygon)
	for _, name := range []string{"extrude", "revolve", "boundingRect"} {
		if _, ok := polygonT.Method(name); !ok {
			t.Errorf("expected Polygon to have a %q method", name)
		}
	}
}

func TestFreeFunctionSignatures(t *testing.T) {
	store := types.NewStore()
	sigs := FreeFunctionSignatures(store)
	for _, name := range []string{"box", "cylinder", "sphere"} {
		if _, ok := sigs[name]; !ok {
			t.Errorf("expected a free function signature for %q", name)
		}
	}
	if len(sigs["box"].Alternatives[0]) != 3 {
		t.Errorf("expected box to take 3 arguments, got %d", len(sigs["box"].Alternatives[0]))
	}
}

func TestVec2AndVec3MethodsMirrorEachOther(t *testing.T) {
	store := types.NewStore()
	Install(store)
	vec2T := store.Simple(types.Vec2)
	vec3T := store.Simple(types.Vec3)
	for _, name := range []string{"plus", "minus", "times", "neg", "eq", "ne"} {
		if _, ok := vec2T.Method(name); !ok {
			t.Errorf("expected Vec2 to have a %q method", name)
		}
		if _, ok := vec3T.Method(name); !ok {
			t.Errorf("expected Vec3 to have a %q method", name)
		}
	}
}
