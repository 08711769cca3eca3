// Package environment implements Simplex's lexical scope chain: a linked
// stack of scopes holding name->value and name->declared-type bindings
// plus locally registered record types, per spec.md §4.3. It is grounded
// on the teacher's internal/interp/runtime.Environment (Get/Set/Define/
// GetLocal/Range/Outer), adapted in two ways: Simplex is case-sensitive
// (spec.md's identifier grammar does not fold case, unlike DWScript), so
// the teacher's case-insensitive ident.Map is replaced by a plain Go map;
// and a parallel declared-type store is added because Simplex folds
// static-type bookkeeping and value storage into the same scope object.
package environment

import (
	"fmt"

	"github.com/markchucarroll/simplex/internal/types"
	"github.com/markchucarroll/simplex/internal/value"
)

// Environment is one activation frame in the scope chain.
type Environment struct {
	values  map[string]value.Value
	statics map[string]*types.Type
	records map[string]*types.Type // locally declared `data` types, by name
	outer   *Environment
}

// New creates a root-level environment with no outer scope.
func New() *Environment {
	return &Environment{
		values:  make(map[string]value.Value),
		statics: make(map[string]*types.Type),
		records: make(map[string]*types.Type),
	}
}

// NewEnclosed creates a scope nested inside outer. Pushed on entry to
// function/method calls, lambda invocations, block expressions, `let`
// tails, and for/while bodies (spec.md §4.3).
func NewEnclosed(outer *Environment) *Environment {
	e := New()
	e.outer = outer
	return e
}

// Outer returns the enclosing scope, or nil at the root.
func (e *Environment) Outer() *Environment { return e.outer }

// Get resolves name by walking outward through the scope chain.
func (e *Environment) Get(name string) (value.Value, bool) {
	if v, ok := e.values[name]; ok {
		return v, true
	}
	if e.outer != nil {
		return e.outer.Get(name)
	}
	return nil, false
}

// GetLocal resolves name only in this scope, without searching outward.
func (e *Environment) GetLocal(name string) (value.Value, bool) {
	v, ok := e.values[name]
	return v, ok
}

// Define creates (or overwrites) a binding in the current scope.
func (e *Environment) Define(name string, v value.Value, t *types.Type) {
	e.values[name] = v
	if t != nil {
		e.statics[name] = t
	}
}

// Set mutates the nearest enclosing binding named name (spec.md §4.3:
// "Assignment ... mutates the nearest enclosing binding"). Returns an
// error if name is not bound anywhere in the chain.
func (e *Environment) Set(name string, v value.Value) error {
	if _, ok := e.values[name]; ok {
		e.values[name] = v
		return nil
	}
	if e.outer != nil {
		return e.outer.Set(name, v)
	}
	return fmt.Errorf("undefined variable: %s", name)
}

// Has reports whether name is bound anywhere in the scope chain.
func (e *Environment) Has(name string) bool {
	_, ok := e.Get(name)
	return ok
}

// StaticType returns the declared type recorded for name, walking outward.
func (e *Environment) StaticType(name string) (*types.Type, bool) {
	if t, ok := e.statics[name]; ok {
		return t, true
	}
	if e.outer != nil {
		return e.outer.StaticType(name)
	}
	return nil, false
}

// DefineRecordType registers a locally declared `data` type name to its
// interned Type, walking outward on lookup.
func (e *Environment) DefineRecordType(name string, t *types.Type) {
	e.records[name] = t
}

// RecordType resolves a `data` type name to its interned Type.
func (e *Environment) RecordType(name string) (*types.Type, bool) {
	if t, ok := e.records[name]; ok {
		return t, true
	}
	if e.outer != nil {
		return e.outer.RecordType(name)
	}
	return nil, false
}

// Range iterates over bindings defined directly in this scope (not outer
// scopes). Neither the product driver nor the evaluator calls it; it is
// kept for parity with the teacher's Environment and for debugging tools.
func (e *Environment) Range(f func(name string, v value.Value) bool) {
	for k, v := range e.values {
		if !f(k, v) {
			return
		}
	}
}
