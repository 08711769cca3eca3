package evaluator

import (
	"strings"

	"github.com/markchucarroll/simplex/internal/ast"
	"github.com/markchucarroll/simplex/internal/environment"
	"github.com/markchucarroll/simplex/internal/types"
	"github.com/markchucarroll/simplex/internal/value"
)

var binaryMethodName = map[string]string{
	"+": "plus", "-": "minus", "*": "times", "/": "div", "%": "mod", "^": "pow",
	"==": "eq", "!=": "ne", "<": "lt", "<=": "le", ">": "gt", ">=": "ge",
}

// resolveType mirrors internal/semantic's type resolution, consulting env
// for locally declared record types; it is duplicated rather than shared
// so the evaluator has no compile-time dependency on the analyzer package.
func (ev *Evaluator) resolveType(te ast.TypeExpr, env *environment.Environment) *types.Type {
	switch t := te.(type) {
	case *ast.SimpleType:
		if rt, ok := env.RecordType(t.Name); ok {
			return rt
		}
		return ev.store.Simple(t.Name)
	case *ast.VectorType:
		return ev.store.Vector(ev.resolveType(t.Element, env))
	case *ast.FunctionType:
		params := make([]*types.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = ev.resolveType(p, env)
		}
		return ev.store.Function(params, ev.resolveType(t.Ret, env))
	case *ast.MethodType:
		params := make([]*types.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = ev.resolveType(p, env)
		}
		return ev.store.Method(ev.resolveType(t.Target, env), params, ev.resolveType(t.Ret, env))
	}
	return ev.store.Simple(types.Any)
}

// matchAlternative implements spec.md §4.4's alternative-matching step:
// the first Alternative whose arity and parameter types accept args wins.
// When none does and there is exactly one Alternative of matching arity,
// that Alternative is returned without the parameter type check.
func (ev *Evaluator) matchAlternative(alts []*value.Alternative, args []value.Value, env *environment.Environment) *value.Alternative {
	for _, alt := range alts {
		if len(alt.Params) != len(args) {
			continue
		}
		ok := true
		for i, p := range alt.Params {
			pt := ev.resolveType(p.Type, env)
			if !pt.MatchedBy(args[i].TypeOf()) {
				ok = false
				break
			}
		}
		if ok {
			return alt
		}
	}
	if len(alts) == 1 && len(alts[0].Params) == len(args) {
		return alts[0]
	}
	return nil
}

// invoke is the single routine every user-defined or native function and
// method call funnels through (built-in primitive methods are handled by
// evalBuiltinMethod instead): it selects an alternative, pushes a
// fresh scope over the callable's closure, binds self (if any) and
// parameters, and evaluates the body (spec.md §4.4).
func (ev *Evaluator) invoke(name string, alts []*value.Alternative, closure *environment.Environment, args []value.Value, self value.Value, selfName string, pos ast.Node) (value.Value, error) {
	alt := ev.matchAlternative(alts, args, closure)
	if alt == nil {
		return nil, rtErrf(pos, "no alternative of %s accepts %d argument(s)", name, len(args))
	}
	if alt.Native != nil {
		nativeArgs := args
		if self != nil {
			nativeArgs = append([]value.Value{self}, args...)
		}
		v, err := alt.Native(nativeArgs)
		if err != nil {
			return nil, rtErrf(pos, "%s: %s", name, err.Error())
		}
		return v, nil
	}
	callEnv := environment.NewEnclosed(closure)
	if self != nil {
		callEnv.Define(selfName, self, nil)
	}
	for i, p := range alt.Params {
		callEnv.Define(p.Name, args[i], nil)
	}
	return ev.Eval(alt.Body, callEnv)
}

func (ev *Evaluator) evalCall(n *ast.Call, env *environment.Environment) (value.Value, error) {
	calleeVal, err := ev.Eval(n.Callee, env)
	if err != nil {
		return nil, err
	}
	fn, ok := calleeVal.(*value.Function)
	if !ok {
		return nil, rtErrf(n, "value %s is not callable", calleeVal.String())
	}
	args, err := ev.evalArgs(n.Args, env)
	if err != nil {
		return nil, err
	}
	closureEnv, _ := fn.Closure.(*environment.Environment)
	if closureEnv == nil {
		closureEnv = env
	}
	return ev.invoke(fn.Name, fn.Alternatives, closureEnv, args, nil, "", n)
}

func (ev *Evaluator) evalArgs(exprs []ast.Expr, env *environment.Environment) ([]value.Value, error) {
	args := make([]value.Value, len(exprs))
	for i, a := range exprs {
		v, err := ev.Eval(a, env)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func (ev *Evaluator) evalMethodCall(n *ast.MethodCall, env *environment.Environment) (value.Value, error) {
	recv, err := ev.Eval(n.Receiver, env)
	if err != nil {
		return nil, err
	}
	args, err := ev.evalArgs(n.Args, env)
	if err != nil {
		return nil, err
	}
	if m := methodRegistry(recv.TypeOf(), n.Name); m != nil {
		closureEnv, _ := m.Closure.(*environment.Environment)
		if closureEnv == nil {
			closureEnv = env
		}
		return ev.invoke(n.Name, m.Alternatives, closureEnv, args, recv, "self", n)
	}
	return ev.evalBuiltinMethod(recv, n.Name, args, n)
}

func (ev *Evaluator) evalBinaryOp(n *ast.BinaryOp, env *environment.Environment) (value.Value, error) {
	switch n.Op {
	case "and":
		lv, err := ev.Eval(n.Left, env)
		if err != nil {
			return nil, err
		}
		if !value.IsTruthy(lv) {
			return value.NewBool(false), nil
		}
		rv, err := ev.Eval(n.Right, env)
		if err != nil {
			return nil, err
		}
		return value.NewBool(value.IsTruthy(rv)), nil
	case "or":
		lv, err := ev.Eval(n.Left, env)
		if err != nil {
			return nil, err
		}
		if value.IsTruthy(lv) {
			return value.NewBool(true), nil
		}
		rv, err := ev.Eval(n.Right, env)
		if err != nil {
			return nil, err
		}
		return value.NewBool(value.IsTruthy(rv)), nil
	}

	lv, err := ev.Eval(n.Left, env)
	if err != nil {
		return nil, err
	}
	rv, err := ev.Eval(n.Right, env)
	if err != nil {
		return nil, err
	}
	name, ok := binaryMethodName[n.Op]
	if !ok {
		return nil, rtErrf(n, "unknown operator %q", n.Op)
	}
	if m := methodRegistry(lv.TypeOf(), name); m != nil {
		closureEnv, _ := m.Closure.(*environment.Environment)
		if closureEnv == nil {
			closureEnv = env
		}
		return ev.invoke(name, m.Alternatives, closureEnv, []value.Value{rv}, lv, "self", n)
	}
	return ev.evalBuiltinMethod(lv, name, []value.Value{rv}, n)
}

func (ev *Evaluator) evalUnaryOp(n *ast.UnaryOp, env *environment.Environment) (value.Value, error) {
	v, err := ev.Eval(n.Operand, env)
	if err != nil {
		return nil, err
	}
	if n.Op == "not" {
		return value.NewBool(!value.IsTruthy(v)), nil
	}
	if m := methodRegistry(v.TypeOf(), "neg"); m != nil {
		closureEnv, _ := m.Closure.(*environment.Environment)
		if closureEnv == nil {
			closureEnv = env
		}
		return ev.invoke("neg", m.Alternatives, closureEnv, nil, v, "self", n)
	}
	return ev.evalBuiltinMethod(v, "neg", nil, n)
}

// ---------------------------------------------------------------------
// Built-in method execution
// ---------------------------------------------------------------------

func (ev *Evaluator) evalBuiltinMethod(recv value.Value, name string, args []value.Value, pos ast.Node) (value.Value, error) {
	switch r := recv.(type) {
	case *value.Int:
		return intMethod(r, name, args, pos)
	case *value.Float:
		return floatMethod(r, name, args, pos)
	case *value.Str:
		return strMethod(r, name, args, pos)
	case *value.Bool:
		return boolMethod(r, name, args, pos)
	case *value.Vec2:
		return vec2Method(r, name, args, pos)
	case *value.Vec3:
		return vec3Method(r, name, args, pos)
	case *value.Vector:
		return vectorMethod(r, name, args, pos)
	}
	return nil, rtErrf(pos, "type %s has no method %s", recv.TypeOf(), name)
}

func numAsFloat(v value.Value) (float64, bool) {
	switch n := v.(type) {
	case *value.Int:
		return float64(n.Value), true
	case *value.Float:
		return n.Value, true
	}
	return 0, false
}

func numAsInt(v value.Value) (int64, bool) {
	switch n := v.(type) {
	case *value.Int:
		return n.Value, true
	case *value.Float:
		return int64(n.Value), true
	}
	return 0, false
}

// intRange implements the Int.to(n) built-in: an inclusive ascending range
// vector from the receiver to n (spec.md §8 scenario 4: `1->to(3)` yields
// `[1, 2, 3]`). A backward range (from > n) yields an empty Int vector.
func intRange(from, to int64) *value.Vector {
	if to < from {
		return value.NewVector(value.TypeStore().Simple(types.Int), nil)
	}
	elems := make([]value.Value, 0, to-from+1)
	for i := from; i <= to; i++ {
		elems = append(elems, value.NewInt(i))
	}
	return value.NewVector(value.TypeStore().Simple(types.Int), elems)
}

func intPow(base, exp int64) int64 {
	if exp < 0 {
		return 0
	}
	result := int64(1)
	for i := int64(0); i < exp; i++ {
		result *= base
	}
	return result
}

// intMethod executes a built-in Int operator. Per spec.md §3/§9 (integers
// are native int64, overflow wraps rather than erroring), arithmetic uses
// plain Go int64 semantics. Mixing with Float coerces the Float operand
// down to Int, matching the fixed per-target Method.Ret the type system
// records (see internal/builtins): the result always takes the receiver's
// own type.
func intMethod(r *value.Int, name string, args []value.Value, pos ast.Node) (value.Value, error) {
	if name == "neg" {
		return value.NewInt(-r.Value), nil
	}
	if len(args) != 1 {
		return nil, rtErrf(pos, "Int.%s expects 1 argument", name)
	}
	other, ok := numAsInt(args[0])
	if !ok {
		return nil, rtErrf(pos, "Int.%s: incompatible argument type", name)
	}
	if name == "to" {
		return intRange(r.Value, other), nil
	}
	switch name {
	case "plus":
		return value.NewInt(r.Value + other), nil
	case "minus":
		return value.NewInt(r.Value - other), nil
	case "times":
		return value.NewInt(r.Value * other), nil
	case "div":
		if other == 0 {
			return nil, rtErrf(pos, "division by zero")
		}
		return value.NewInt(r.Value / other), nil
	case "mod":
		if other == 0 {
			return nil, rtErrf(pos, "modulo by zero")
		}
		return value.NewInt(r.Value % other), nil
	case "pow":
		return value.NewInt(intPow(r.Value, other)), nil
	case "eq":
		return value.NewBool(r.Value == other), nil
	case "ne":
		return value.NewBool(r.Value != other), nil
	case "lt":
		return value.NewBool(r.Value < other), nil
	case "le":
		return value.NewBool(r.Value <= other), nil
	case "gt":
		return value.NewBool(r.Value > other), nil
	case "ge":
		return value.NewBool(r.Value >= other), nil
	}
	return nil, rtErrf(pos, "Int has no method %s", name)
}

func floatMethod(r *value.Float, name string, args []value.Value, pos ast.Node) (value.Value, error) {
	if name == "neg" {
		return value.NewFloat(-r.Value), nil
	}
	if len(args) != 1 {
		return nil, rtErrf(pos, "Float.%s expects 1 argument", name)
	}
	other, ok := numAsFloat(args[0])
	if !ok {
		return nil, rtErrf(pos, "Float.%s: incompatible argument type", name)
	}
	switch name {
	case "plus":
		return value.NewFloat(r.Value + other), nil
	case "minus":
		return value.NewFloat(r.Value - other), nil
	case "times":
		return value.NewFloat(r.Value * other), nil
	case "div":
		if other == 0 {
			return nil, rtErrf(pos, "division by zero")
		}
		return value.NewFloat(r.Value / other), nil
	case "pow":
		return value.NewFloat(floatPow(r.Value, other)), nil
	case "eq":
		return value.NewBool(r.Value == other), nil
	case "ne":
		return value.NewBool(r.Value != other), nil
	case "lt":
		return value.NewBool(r.Value < other), nil
	case "le":
		return value.NewBool(r.Value <= other), nil
	case "gt":
		return value.NewBool(r.Value > other), nil
	case "ge":
		return value.NewBool(r.Value >= other), nil
	}
	return nil, rtErrf(pos, "Float has no method %s", name)
}

func floatPow(base, exp float64) float64 {
	result := 1.0
	neg := exp < 0
	if neg {
		exp = -exp
	}
	for i := 0.0; i < exp; i++ {
		result *= base
	}
	if neg {
		return 1 / result
	}
	return result
}

func strMethod(r *value.Str, name string, args []value.Value, pos ast.Node) (value.Value, error) {
	if name == "len" {
		return value.NewInt(int64(len([]rune(r.Value)))), nil
	}
	if len(args) != 1 {
		return nil, rtErrf(pos, "String.%s expects 1 argument", name)
	}
	other, ok := args[0].(*value.Str)
	if !ok {
		return nil, rtErrf(pos, "String.%s: incompatible argument type", name)
	}
	switch name {
	case "plus":
		return value.NewStr(r.Value + other.Value), nil
	case "eq":
		return value.NewBool(r.Value == other.Value), nil
	case "ne":
		return value.NewBool(r.Value != other.Value), nil
	case "lt":
		return value.NewBool(strings.Compare(r.Value, other.Value) < 0), nil
	case "le":
		return value.NewBool(strings.Compare(r.Value, other.Value) <= 0), nil
	case "gt":
		return value.NewBool(strings.Compare(r.Value, other.Value) > 0), nil
	case "ge":
		return value.NewBool(strings.Compare(r.Value, other.Value) >= 0), nil
	}
	return nil, rtErrf(pos, "String has no method %s", name)
}

func boolMethod(r *value.Bool, name string, args []value.Value, pos ast.Node) (value.Value, error) {
	if len(args) != 1 {
		return nil, rtErrf(pos, "Boolean.%s expects 1 argument", name)
	}
	other, ok := args[0].(*value.Bool)
	if !ok {
		return nil, rtErrf(pos, "Boolean.%s: incompatible argument type", name)
	}
	switch name {
	case "eq":
		return value.NewBool(r.Value == other.Value), nil
	case "ne":
		return value.NewBool(r.Value != other.Value), nil
	}
	return nil, rtErrf(pos, "Boolean has no method %s", name)
}

func vec2Method(r *value.Vec2, name string, args []value.Value, pos ast.Node) (value.Value, error) {
	if name == "neg" {
		return value.NewVec2(-r.X, -r.Y), nil
	}
	if len(args) != 1 {
		return nil, rtErrf(pos, "Vec2.%s expects 1 argument", name)
	}
	if name == "times" {
		scalar, ok := numAsFloat(args[0])
		if !ok {
			return nil, rtErrf(pos, "Vec2.times expects a numeric scalar")
		}
		return value.NewVec2(r.X*scalar, r.Y*scalar), nil
	}
	other, ok := args[0].(*value.Vec2)
	if !ok {
		return nil, rtErrf(pos, "Vec2.%s: incompatible argument type", name)
	}
	switch name {
	case "plus":
		return value.NewVec2(r.X+other.X, r.Y+other.Y), nil
	case "minus":
		return value.NewVec2(r.X-other.X, r.Y-other.Y), nil
	case "eq":
		return value.NewBool(r.X == other.X && r.Y == other.Y), nil
	case "ne":
		return value.NewBool(r.X != other.X || r.Y != other.Y), nil
	}
	return nil, rtErrf(pos, "Vec2 has no method %s", name)
}

func vec3Method(r *value.Vec3, name string, args []value.Value, pos ast.Node) (value.Value, error) {
	if name == "neg" {
		return value.NewVec3(-r.X, -r.Y, -r.Z), nil
	}
	if len(args) != 1 {
		return nil, rtErrf(pos, "Vec3.%s expects 1 argument", name)
	}
	if name == "times" {
		scalar, ok := numAsFloat(args[0])
		if !ok {
			return nil, rtErrf(pos, "Vec3.times expects a numeric scalar")
		}
		return value.NewVec3(r.X*scalar, r.Y*scalar, r.Z*scalar), nil
	}
	other, ok := args[0].(*value.Vec3)
	if !ok {
		return nil, rtErrf(pos, "Vec3.%s: incompatible argument type", name)
	}
	switch name {
	case "plus":
		return value.NewVec3(r.X+other.X, r.Y+other.Y, r.Z+other.Z), nil
	case "minus":
		return value.NewVec3(r.X-other.X, r.Y-other.Y, r.Z-other.Z), nil
	case "eq":
		return value.NewBool(r.X == other.X && r.Y == other.Y && r.Z == other.Z), nil
	case "ne":
		return value.NewBool(r.X != other.X || r.Y != other.Y || r.Z != other.Z), nil
	}
	return nil, rtErrf(pos, "Vec3 has no method %s", name)
}

func vectorMethod(r *value.Vector, name string, args []value.Value, pos ast.Node) (value.Value, error) {
	if name == "len" {
		return value.NewInt(int64(len(r.Elements))), nil
	}
	if len(args) != 1 {
		return nil, rtErrf(pos, "Vector.%s expects 1 argument", name)
	}
	other, ok := args[0].(*value.Vector)
	if !ok {
		return nil, rtErrf(pos, "Vector.%s: incompatible argument type", name)
	}
	switch name {
	case "plus":
		elems := make([]value.Value, 0, len(r.Elements)+len(other.Elements))
		elems = append(elems, r.Elements...)
		elems = append(elems, other.Elements...)
		return value.NewVector(r.Element, elems), nil
	case "eq":
		return value.NewBool(vectorsEqual(r, other)), nil
	case "ne":
		return value.NewBool(!vectorsEqual(r, other)), nil
	}
	return nil, rtErrf(pos, "Vector has no method %s", name)
}

func vectorsEqual(a, b *value.Vector) bool {
	if len(a.Elements) != len(b.Elements) {
		return false
	}
	for i := range a.Elements {
		if !valuesEqual(a.Elements[i], b.Elements[i]) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b value.Value) bool {
	switch av := a.(type) {
	case *value.Int:
		bv, ok := numAsInt(b)
		return ok && av.Value == bv
	case *value.Float:
		bv, ok := numAsFloat(b)
		return ok && av.Value == bv
	case *value.Str:
		bv, ok := b.(*value.Str)
		return ok && av.Value == bv.Value
	case *value.Bool:
		bv, ok := b.(*value.Bool)
		return ok && av.Value == bv.Value
	case *value.None:
		_, ok := b.(*value.None)
		return ok
	case *value.Vec2:
		bv, ok := b.(*value.Vec2)
		return ok && av.X == bv.X && av.Y == bv.Y
	case *value.Vec3:
		bv, ok := b.(*value.Vec3)
		return ok && av.X == bv.X && av.Y == bv.Y && av.Z == bv.Z
	case *value.Vector:
		bv, ok := b.(*value.Vector)
		return ok && vectorsEqual(av, bv)
	case *value.Record:
		bv, ok := b.(*value.Record)
		if !ok || av.TypeName != bv.TypeName || len(av.Fields) != len(bv.Fields) {
			return false
		}
		for i := range av.Fields {
			if !valuesEqual(av.Fields[i], bv.Fields[i]) {
				return false
			}
		}
		return true
	}
	return a == b
}
