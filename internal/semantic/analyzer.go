// Package semantic implements Simplex's static analyzer: the two-phase
// "install statics, then install values" pass described in spec.md §4.2,
// which resolves every reference, checks call/method arity and argument
// types against the interned type and method tables, and validates
// if/for/while typing rules and record field access before the evaluator
// ever runs. It is grounded on the teacher's internal/semantic analyzer
// package (a pre-execution walk that resolves symbols and reports
// diagnostics as plain strings later wrapped by internal/errors), adapted
// from DWScript's class/interface resolution to Simplex's flat record/
// method-table model.
package semantic

import (
	"fmt"

	"github.com/markchucarroll/simplex/internal/ast"
	"github.com/markchucarroll/simplex/internal/builtins"
	"github.com/markchucarroll/simplex/internal/types"
)

// scope is a lexical chain of name -> declared-type bindings used purely
// for static checking; it is distinct from the runtime internal/environment
// chain the evaluator walks.
type scope struct {
	vars  map[string]*types.Type
	outer *scope
}

func newScope(outer *scope) *scope {
	return &scope{vars: make(map[string]*types.Type), outer: outer}
}

func (s *scope) define(name string, t *types.Type) { s.vars[name] = t }

func (s *scope) lookup(name string) (*types.Type, bool) {
	if t, ok := s.vars[name]; ok {
		return t, true
	}
	if s.outer != nil {
		return s.outer.lookup(name)
	}
	return nil, false
}

var builtinAtoms = map[string]bool{
	types.Int: true, types.Float: true, types.String: true, types.Boolean: true,
	types.None: true, types.Any: true, types.Vec2: true, types.Vec3: true,
	types.Solid: true, types.Slice: true, types.Polygon: true,
	types.BoundingBox: true, types.BoundingRect: true,
}

// Analyzer performs the two-phase static analysis of a single Module.
type Analyzer struct {
	store *types.Store

	dataTypes map[string]*types.Type
	functions map[string]*types.Method // free functions, Target == nil
	funDefs   map[string][]*ast.FunDef
	methDefs  []*ast.MethDef

	global *scope
	// imports maps an `import ... as scope` prefix to the exported global
	// scope of that already-analyzed library module.
	imports map[string]*scope

	isLibraryFlag bool
	errors        []string
}

// New creates an Analyzer sharing store with the rest of the program (the
// type table is a single process-wide instance, per spec.md §5).
func New(store *types.Store) *Analyzer {
	builtins.Install(store)
	a := &Analyzer{
		store:     store,
		dataTypes: make(map[string]*types.Type),
		functions: make(map[string]*types.Method),
		funDefs:   make(map[string][]*ast.FunDef),
		global:    newScope(nil),
		imports:   make(map[string]*scope),
	}
	// The Solid constructors (box/cylinder/sphere) are native free functions
	// with no FunDef of their own; seed them into a.functions directly so
	// checkCall resolves calls to them the same way it resolves user funs.
	for name, m := range builtins.FreeFunctionSignatures(store) {
		a.functions[name] = m
	}
	return a
}

// Errors returns accumulated "pos: message" diagnostics.
func (a *Analyzer) Errors() []string { return a.errors }

func (a *Analyzer) errorf(pos fmt.Stringer, format string, args ...any) {
	a.errors = append(a.errors, fmt.Sprintf("%s: %s", pos, fmt.Sprintf(format, args...)))
}

func (a *Analyzer) any() *types.Type { return a.store.Simple(types.Any) }

// AddImport registers an already-analyzed library's exported scope under
// scopeName, so ScopedIdent references (`scope::name`) inside the module
// being analyzed can resolve. The loader (internal/library) calls this
// before Analyze on the importing module.
func (a *Analyzer) AddImport(scopeName string, lib *Analyzer) {
	a.imports[scopeName] = lib.global
	for name, t := range lib.dataTypes {
		a.dataTypes[scopeName+"::"+name] = t
	}
	for name, m := range lib.functions {
		a.functions[scopeName+"::"+name] = m
	}
}

// Analyze runs both phases over mod. When the analyzer has been marked as
// a library's (SetLibrary(true)), a non-empty Products list is an error
// (spec.md §4.7: library files may not declare products).
func (a *Analyzer) Analyze(mod *ast.Module) {
	if len(mod.Products) > 0 && a.isLibraryFlag {
		a.errorf(mod.Position, "imported library files may not declare produce blocks")
	}

	a.installStatics(mod.Definitions)
	a.installLetValues(mod.Definitions)
	a.checkBodies()

	for _, prod := range mod.Products {
		s := newScope(a.global)
		for _, e := range prod.Body {
			a.checkExpr(e, s)
		}
	}
}

// SetLibrary marks this analyzer as processing an imported file rather than
// the program's main module.
func (a *Analyzer) SetLibrary(v bool) { a.isLibraryFlag = v }

// ---------------------------------------------------------------------
// Phase 1: install statics
// ---------------------------------------------------------------------

func (a *Analyzer) installStatics(defs []ast.Definition) {
	// 1a: intern every record type name first so field types (and mutually
	// referencing data definitions) can resolve regardless of order.
	for _, d := range defs {
		if dd, ok := d.(*ast.DataDef); ok {
			if _, exists := a.dataTypes[dd.Name]; exists {
				a.errorf(dd.Position, "data type %q redeclared", dd.Name)
				continue
			}
			a.dataTypes[dd.Name] = a.store.Simple(dd.Name)
		}
	}
	// 1b: resolve field schemas now that every record type name exists.
	for _, d := range defs {
		if dd, ok := d.(*ast.DataDef); ok {
			t := a.dataTypes[dd.Name]
			fields := make([]types.Field, len(dd.Fields))
			for i, f := range dd.Fields {
				fields[i] = types.Field{Name: f.Name, Type: a.resolveType(f.Type)}
			}
			t.SetFields(fields)
		}
	}
	// 1c: install function and method signatures (bodies checked in phase 2).
	for _, d := range defs {
		switch def := d.(type) {
		case *ast.FunDef:
			params := make([]*types.Type, len(def.Params))
			for i, p := range def.Params {
				params[i] = a.resolveType(p.Type)
			}
			ret := a.resolveType(def.Ret)
			m, ok := a.functions[def.Name]
			if !ok {
				m = &types.Method{Name: def.Name, Ret: ret}
				a.functions[def.Name] = m
			}
			m.Alternatives = append(m.Alternatives, params)
			a.funDefs[def.Name] = append(a.funDefs[def.Name], def)
		case *ast.MethDef:
			target := a.resolveSimpleName(def.Target, def.Position)
			params := make([]*types.Type, len(def.Params))
			for i, p := range def.Params {
				params[i] = a.resolveType(p.Type)
			}
			ret := a.resolveType(def.Ret)
			if target != nil {
				m, ok := target.Method(def.Name)
				if !ok || m.Target != target {
					m = &types.Method{Name: def.Name, Ret: ret}
				}
				m.Alternatives = append(m.Alternatives, params)
				target.RegisterMethod(m)
			}
			a.methDefs = append(a.methDefs, def)
		}
	}
}

// resolveSimpleName resolves a bare type name to its interned Type,
// reporting an "undefined type" error if it names neither a built-in atom
// nor a declared data type.
func (a *Analyzer) resolveSimpleName(name string, pos fmt.Stringer) *types.Type {
	if builtinAtoms[name] {
		return a.store.Simple(name)
	}
	if t, ok := a.dataTypes[name]; ok {
		return t
	}
	a.errorf(pos, "undefined type: %s", name)
	return nil
}

func (a *Analyzer) resolveType(te ast.TypeExpr) *types.Type {
	switch t := te.(type) {
	case *ast.SimpleType:
		if r := a.resolveSimpleName(t.Name, t.Position); r != nil {
			return r
		}
		return a.any()
	case *ast.VectorType:
		return a.store.Vector(a.resolveType(t.Element))
	case *ast.FunctionType:
		params := make([]*types.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = a.resolveType(p)
		}
		return a.store.Function(params, a.resolveType(t.Ret))
	case *ast.MethodType:
		params := make([]*types.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = a.resolveType(p)
		}
		return a.store.Method(a.resolveType(t.Target), params, a.resolveType(t.Ret))
	}
	return a.any()
}

// ---------------------------------------------------------------------
// Phase 2: install values (top-level lets), then check bodies
// ---------------------------------------------------------------------

func (a *Analyzer) installLetValues(defs []ast.Definition) {
	for _, d := range defs {
		ld, ok := d.(*ast.LetDef)
		if !ok {
			continue
		}
		initType := a.checkExpr(ld.Init, a.global)
		declared := initType
		if ld.Type != nil {
			declared = a.resolveType(ld.Type)
			if !declared.MatchedBy(initType) {
				a.errorf(ld.Position, "let %s: declared type %s does not match initializer type %s", ld.Name, declared, initType)
			}
		}
		a.global.define(ld.Name, declared)
	}
}

func (a *Analyzer) checkBodies() {
	for name, defs := range a.funDefs {
		for _, def := range defs {
			s := newScope(a.global)
			for _, p := range def.Params {
				s.define(p.Name, a.resolveType(p.Type))
			}
			bodyType := a.checkExpr(def.Body, s)
			ret := a.resolveType(def.Ret)
			if !ret.MatchedBy(bodyType) {
				a.errorf(def.Position, "function %s: body type %s does not match declared return type %s", name, bodyType, ret)
			}
		}
	}
	for _, def := range a.methDefs {
		target := a.resolveSimpleName(def.Target, def.Position)
		s := newScope(a.global)
		if target != nil {
			s.define("self", target)
		}
		for _, p := range def.Params {
			s.define(p.Name, a.resolveType(p.Type))
		}
		bodyType := a.checkExpr(def.Body, s)
		ret := a.resolveType(def.Ret)
		if !ret.MatchedBy(bodyType) {
			a.errorf(def.Position, "method %s.%s: body type %s does not match declared return type %s", def.Target, def.Name, bodyType, ret)
		}
	}
}

