// Package evaluator implements Simplex's tree-walking evaluator: the
// unified dispatch algorithm of spec.md §4.4 (user-defined and native
// callables resolve through one alternative-matching routine; built-in
// primitive methods run directly in evalBuiltinMethod) plus the per-expression evaluation rules of spec.md §4.5. It is grounded
// on the teacher's internal/interp tree-walking Eval function (a single
// big switch over ast node kinds returning a runtime value and an error),
// adapted from DWScript's class/exception-based OOP runtime to Simplex's
// record/vector/closure value model.
package evaluator

import (
	"fmt"

	"github.com/markchucarroll/simplex/internal/ast"
	"github.com/markchucarroll/simplex/internal/builtins"
	"github.com/markchucarroll/simplex/internal/environment"
	"github.com/markchucarroll/simplex/internal/types"
	"github.com/markchucarroll/simplex/internal/value"
)

// RuntimeError reports a failure during evaluation, carrying the source
// position of the offending expression (spec.md §7's "evaluation" kind).
type RuntimeError struct {
	Pos     fmt.Stringer
	Message string
}

func (e *RuntimeError) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Message) }

func rtErrf(pos ast.Node, format string, args ...any) *RuntimeError {
	return &RuntimeError{Pos: pos.Pos(), Message: fmt.Sprintf(format, args...)}
}

// Simplex has no break/continue constructs, so evaluation carries no
// control-flow signal besides errors.

// Evaluator walks an already-analyzed AST and produces runtime values.
// It shares the process-wide *types.Store with internal/semantic so that
// the same interned Type identities are used for both static checking and
// runtime dispatch (spec.md §5).
type Evaluator struct {
	store *types.Store
	// imports maps an `import ... as scope` prefix to the already-evaluated
	// global environment of that library module.
	imports map[string]*environment.Environment
}

// New creates an Evaluator. builtins.Install is idempotent, so calling it
// again here (after the analyzer already did) is safe and keeps the
// evaluator usable standalone (e.g. from tests that skip analysis).
func New(store *types.Store) *Evaluator {
	builtins.Install(store)
	value.SetTypeStore(store)
	return &Evaluator{store: store, imports: make(map[string]*environment.Environment)}
}

// AddImport registers an already-evaluated library's global environment
// under scopeName.
func (ev *Evaluator) AddImport(scopeName string, env *environment.Environment) {
	ev.imports[scopeName] = env
}

// EvalModule installs every top-level definition into a fresh global
// environment (functions and methods as closures over that same
// environment, so mutual recursion and later-declared siblings are
// visible) and evaluates top-level `let` initializers in source order. It
// returns the resulting global environment, used both as the parent scope
// for product bodies and as the exported scope of a library module.
func (ev *Evaluator) EvalModule(mod *ast.Module) (*environment.Environment, error) {
	global := environment.New()
	ev.installKernelPrelude(global)

	// Data type declarations only need their Type interned; field schemas
	// were already installed by the analyzer onto the same shared Store.
	for _, d := range mod.Definitions {
		if dd, ok := d.(*ast.DataDef); ok {
			global.DefineRecordType(dd.Name, ev.store.Simple(dd.Name))
		}
	}

	funcsByName := make(map[string]*value.Function)
	for _, d := range mod.Definitions {
		fd, ok := d.(*ast.FunDef)
		if !ok {
			continue
		}
		fn, exists := funcsByName[fd.Name]
		if !exists {
			fn = &value.Function{Name: fd.Name, Closure: global}
			funcsByName[fd.Name] = fn
			global.Define(fd.Name, fn, nil)
		}
		fn.Alternatives = append(fn.Alternatives, &value.Alternative{
			Params: fd.Params,
			Body:   fd.Body,
		})
	}

	for _, d := range mod.Definitions {
		md, ok := d.(*ast.MethDef)
		if !ok {
			continue
		}
		target := ev.store.Simple(md.Target)
		existing := methodRegistry(target, md.Name)
		if existing == nil {
			existing = &value.Method{Name: md.Name, Target: md.Target, Closure: global}
			setMethodRegistry(target, md.Name, existing)
		}
		existing.Alternatives = append(existing.Alternatives, &value.Alternative{
			Params: md.Params,
			Body:   md.Body,
		})
	}

	for _, d := range mod.Definitions {
		ld, ok := d.(*ast.LetDef)
		if !ok {
			continue
		}
		v, err := ev.Eval(ld.Init, global)
		if err != nil {
			return global, err
		}
		global.Define(ld.Name, v, nil)
	}

	return global, nil
}

// registry is the process-wide map from (target type, method name) to its
// value.Method: user-defined methods and the native Solid/Polygon methods
// registered by installKernelPrelude. The primitive built-in methods
// installed by internal/builtins carry no entry here and are executed
// directly by evalBuiltinMethod instead.
var registry = make(map[*types.Type]map[string]*value.Method)

func methodRegistry(t *types.Type, name string) *value.Method {
	if m, ok := registry[t]; ok {
		return m[name]
	}
	return nil
}

func setMethodRegistry(t *types.Type, name string, m *value.Method) {
	if registry[t] == nil {
		registry[t] = make(map[string]*value.Method)
	}
	registry[t][name] = m
}

// Eval evaluates e in environment env.
func (ev *Evaluator) Eval(e ast.Expr, env *environment.Environment) (value.Value, error) {
	switch n := e.(type) {
	case *ast.IntLit:
		return value.NewInt(n.Value), nil
	case *ast.FloatLit:
		return value.NewFloat(n.Value), nil
	case *ast.StringLit:
		return value.NewStr(n.Value), nil
	case *ast.BoolLit:
		return value.NewBool(n.Value), nil
	case *ast.NoneLit:
		return value.NoneValue, nil

	case *ast.Ident:
		if v, ok := env.Get(n.Name); ok {
			return v, nil
		}
		return nil, rtErrf(n, "undefined variable: %s", n.Name)

	case *ast.ScopedIdent:
		lib, ok := ev.imports[n.Scope]
		if !ok {
			return nil, rtErrf(n, "undefined import scope: %s", n.Scope)
		}
		if v, ok := lib.Get(n.Name); ok {
			return v, nil
		}
		return nil, rtErrf(n, "undefined reference: %s::%s", n.Scope, n.Name)

	case *ast.VectorLit:
		elems := make([]value.Value, len(n.Elements))
		var elemType *types.Type
		for i, el := range n.Elements {
			v, err := ev.Eval(el, env)
			if err != nil {
				return nil, err
			}
			elems[i] = v
			elemType = v.TypeOf()
		}
		if elemType == nil {
			elemType = ev.store.Simple(types.Any)
		}
		return value.NewVector(elemType, elems), nil

	case *ast.RecordLit:
		rt, ok := env.RecordType(n.Type)
		if !ok {
			rt = ev.store.Simple(n.Type)
		}
		names := make([]string, len(rt.Fields()))
		vals := make([]value.Value, len(n.Args))
		for i, f := range rt.Fields() {
			names[i] = f.Name
		}
		for i, arg := range n.Args {
			v, err := ev.Eval(arg, env)
			if err != nil {
				return nil, err
			}
			vals[i] = v
		}
		return value.NewRecord(n.Type, names, vals), nil

	case *ast.FieldAccess:
		tv, err := ev.Eval(n.Target, env)
		if err != nil {
			return nil, err
		}
		rec, ok := tv.(*value.Record)
		if !ok {
			return nil, rtErrf(n, "value %s has no fields", tv.String())
		}
		idx := rec.FieldIndex(n.Name)
		if idx < 0 {
			return nil, rtErrf(n, "%s has no field %s", rec.TypeName, n.Name)
		}
		return rec.Fields[idx], nil

	case *ast.FieldUpdate:
		tv, err := ev.Eval(n.Target, env)
		if err != nil {
			return nil, err
		}
		rec, ok := tv.(*value.Record)
		if !ok {
			return nil, rtErrf(n, "value %s has no fields", tv.String())
		}
		vv, err := ev.Eval(n.Value, env)
		if err != nil {
			return nil, err
		}
		updated := rec.With(n.Name, vv)
		if ident, ok := n.Target.(*ast.Ident); ok {
			_ = env.Set(ident.Name, updated)
		}
		return updated, nil

	case *ast.Index:
		tv, err := ev.Eval(n.Target, env)
		if err != nil {
			return nil, err
		}
		iv, err := ev.Eval(n.Index, env)
		if err != nil {
			return nil, err
		}
		vec, ok := tv.(*value.Vector)
		if !ok {
			return nil, rtErrf(n, "value %s is not indexable", tv.String())
		}
		idx, ok := iv.(*value.Int)
		if !ok {
			return nil, rtErrf(n, "index must be an Int")
		}
		if idx.Value < 0 || int(idx.Value) >= len(vec.Elements) {
			return nil, rtErrf(n, "index %d out of range (len %d)", idx.Value, len(vec.Elements))
		}
		return vec.Elements[idx.Value], nil

	case *ast.IndexUpdate:
		tv, err := ev.Eval(n.Target, env)
		if err != nil {
			return nil, err
		}
		iv, err := ev.Eval(n.Index, env)
		if err != nil {
			return nil, err
		}
		vv, err := ev.Eval(n.Value, env)
		if err != nil {
			return nil, err
		}
		vec, ok := tv.(*value.Vector)
		if !ok {
			return nil, rtErrf(n, "value %s is not indexable", tv.String())
		}
		idx, ok := iv.(*value.Int)
		if !ok {
			return nil, rtErrf(n, "index must be an Int")
		}
		if idx.Value < 0 || int(idx.Value) >= len(vec.Elements) {
			return nil, rtErrf(n, "index %d out of range (len %d)", idx.Value, len(vec.Elements))
		}
		updated := vec.WithAt(int(idx.Value), vv)
		if ident, ok := n.Target.(*ast.Ident); ok {
			_ = env.Set(ident.Name, updated)
		}
		return updated, nil

	case *ast.Call:
		return ev.evalCall(n, env)

	case *ast.MethodCall:
		return ev.evalMethodCall(n, env)

	case *ast.BinaryOp:
		return ev.evalBinaryOp(n, env)

	case *ast.UnaryOp:
		return ev.evalUnaryOp(n, env)

	case *ast.Let:
		v, err := ev.Eval(n.Init, env)
		if err != nil {
			return nil, err
		}
		env.Define(n.Name, v, nil)
		return v, nil

	case *ast.Assign:
		v, err := ev.Eval(n.Value, env)
		if err != nil {
			return nil, err
		}
		if err := env.Set(n.Name, v); err != nil {
			return nil, rtErrf(n, "%s", err.Error())
		}
		return v, nil

	case *ast.If:
		return ev.evalIf(n, env)

	case *ast.For:
		return ev.evalFor(n, env)

	case *ast.While:
		return ev.evalWhile(n, env)

	case *ast.Block:
		return ev.evalBlock(n, env)

	case *ast.Lambda:
		return &value.Function{
			Name:         "<lambda>",
			Alternatives: []*value.Alternative{{Params: n.Params, Body: n.Body}},
			Closure:      env,
		}, nil
	}
	return nil, rtErrf(e, "cannot evaluate %T", e)
}

func (ev *Evaluator) evalBlock(n *ast.Block, env *environment.Environment) (value.Value, error) {
	inner := environment.NewEnclosed(env)
	var last value.Value = value.NoneValue
	for _, ex := range n.Exprs {
		v, err := ev.Eval(ex, inner)
		if err != nil {
			return nil, err
		}
		last = v
	}
	return last, nil
}

func (ev *Evaluator) evalIf(n *ast.If, env *environment.Environment) (value.Value, error) {
	for _, b := range n.Branches {
		cv, err := ev.Eval(b.Condition, env)
		if err != nil {
			return nil, err
		}
		if value.IsTruthy(cv) {
			return ev.Eval(b.Body, environment.NewEnclosed(env))
		}
	}
	if n.Else != nil {
		return ev.Eval(n.Else, environment.NewEnclosed(env))
	}
	return value.NoneValue, nil
}

// evalFor implements spec.md §4.5's for-as-map rule: each iteration's final
// expression value is collected into a vector returned in the order of the
// source vector (spec.md §8 "For-as-map" invariant).
func (ev *Evaluator) evalFor(n *ast.For, env *environment.Environment) (value.Value, error) {
	iv, err := ev.Eval(n.Iter, env)
	if err != nil {
		return nil, err
	}
	vec, ok := iv.(*value.Vector)
	if !ok {
		return nil, rtErrf(n, "for loop source must be a vector, got %s", iv.String())
	}
	results := make([]value.Value, len(vec.Elements))
	var elemType *types.Type
	for i, elem := range vec.Elements {
		inner := environment.NewEnclosed(env)
		inner.Define(n.Name, elem, nil)
		v, err := ev.Eval(n.Body, inner)
		if err != nil {
			return nil, err
		}
		results[i] = v
		elemType = v.TypeOf()
	}
	if elemType == nil {
		elemType = ev.store.Simple(types.Any)
	}
	return value.NewVector(elemType, results), nil
}

func (ev *Evaluator) evalWhile(n *ast.While, env *environment.Environment) (value.Value, error) {
	for {
		cv, err := ev.Eval(n.Condition, env)
		if err != nil {
			return nil, err
		}
		if !value.IsTruthy(cv) {
			break
		}
		inner := environment.NewEnclosed(env)
		if _, err := ev.Eval(n.Body, inner); err != nil {
			return nil, err
		}
	}
	return value.NoneValue, nil
}
