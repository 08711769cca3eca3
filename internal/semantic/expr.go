package semantic

import (
	"github.com/markchucarroll/simplex/internal/ast"
	"github.com/markchucarroll/simplex/internal/types"
)

var binaryMethodName = map[string]string{
	"+": "plus", "-": "minus", "*": "times", "/": "div", "%": "mod", "^": "pow",
	"==": "eq", "!=": "ne", "<": "lt", "<=": "le", ">": "gt", ">=": "ge",
}

// checkExpr type-checks e in scope s, returning its static type. Every
// error path returns Any so that a single mistake does not cascade into a
// wall of unrelated follow-on diagnostics (spec.md §7: diagnostics should
// be actionable, not exhaustive noise).
func (a *Analyzer) checkExpr(e ast.Expr, s *scope) *types.Type {
	switch n := e.(type) {
	case *ast.IntLit:
		return a.store.Simple(types.Int)
	case *ast.FloatLit:
		return a.store.Simple(types.Float)
	case *ast.StringLit:
		return a.store.Simple(types.String)
	case *ast.BoolLit:
		return a.store.Simple(types.Boolean)
	case *ast.NoneLit:
		return a.store.Simple(types.None)

	case *ast.Ident:
		if t, ok := s.lookup(n.Name); ok {
			return t
		}
		if m, ok := a.functions[n.Name]; ok && len(m.Alternatives) > 0 {
			return a.store.Function(m.Alternatives[0], m.Ret)
		}
		a.errorf(n.Position, "undefined variable: %s", n.Name)
		return a.any()

	case *ast.ScopedIdent:
		lib, ok := a.imports[n.Scope]
		if !ok {
			a.errorf(n.Position, "undefined import scope: %s", n.Scope)
			return a.any()
		}
		if t, ok := lib.lookup(n.Name); ok {
			return t
		}
		if m, ok := a.functions[n.Scope+"::"+n.Name]; ok && len(m.Alternatives) > 0 {
			return a.store.Function(m.Alternatives[0], m.Ret)
		}
		a.errorf(n.Position, "undefined reference: %s::%s", n.Scope, n.Name)
		return a.any()

	case *ast.VectorLit:
		if len(n.Elements) == 0 {
			return a.store.Vector(a.any())
		}
		elem := a.checkExpr(n.Elements[0], s)
		for _, el := range n.Elements[1:] {
			t := a.checkExpr(el, s)
			if !elem.MatchedBy(t) {
				a.errorf(el.Pos(), "vector element type %s does not match preceding element type %s", t, elem)
			}
		}
		return a.store.Vector(elem)

	case *ast.RecordLit:
		rt, ok := a.dataTypes[n.Type]
		if !ok {
			a.errorf(n.Position, "undefined data type: %s", n.Type)
			for _, arg := range n.Args {
				a.checkExpr(arg, s)
			}
			return a.any()
		}
		fields := rt.Fields()
		if len(n.Args) != len(fields) {
			a.errorf(n.Position, "%s expects %d field(s), got %d", n.Type, len(fields), len(n.Args))
		}
		for i, arg := range n.Args {
			t := a.checkExpr(arg, s)
			if i < len(fields) && !fields[i].Type.MatchedBy(t) {
				a.errorf(arg.Pos(), "field %s.%s expects %s, got %s", n.Type, fields[i].Name, fields[i].Type, t)
			}
		}
		return rt

	case *ast.FieldAccess:
		tt := a.checkExpr(n.Target, s)
		ft, ok := tt.FieldType(n.Name)
		if !ok {
			a.errorf(n.Position, "type %s has no field %s", tt, n.Name)
			return a.any()
		}
		return ft

	case *ast.FieldUpdate:
		tt := a.checkExpr(n.Target, s)
		vt := a.checkExpr(n.Value, s)
		ft, ok := tt.FieldType(n.Name)
		if !ok {
			a.errorf(n.Position, "type %s has no field %s", tt, n.Name)
			return tt
		}
		if !ft.MatchedBy(vt) {
			a.errorf(n.Value.Pos(), "field %s.%s expects %s, got %s", tt, n.Name, ft, vt)
		}
		return tt

	case *ast.Index:
		tt := a.checkExpr(n.Target, s)
		it := a.checkExpr(n.Index, s)
		if tt.Kind() != types.KindVector {
			a.errorf(n.Position, "cannot index non-vector type %s", tt)
			return a.any()
		}
		if it.Name() != types.Int {
			a.errorf(n.Index.Pos(), "vector index must be Int, got %s", it)
		}
		return tt.Element()

	case *ast.IndexUpdate:
		tt := a.checkExpr(n.Target, s)
		it := a.checkExpr(n.Index, s)
		vt := a.checkExpr(n.Value, s)
		if tt.Kind() != types.KindVector {
			a.errorf(n.Position, "cannot index non-vector type %s", tt)
			return a.any()
		}
		if it.Name() != types.Int {
			a.errorf(n.Index.Pos(), "vector index must be Int, got %s", it)
		}
		if !tt.Element().MatchedBy(vt) {
			a.errorf(n.Value.Pos(), "cannot assign %s into vector of %s", vt, tt.Element())
		}
		return tt

	case *ast.Call:
		return a.checkCall(n, s)

	case *ast.MethodCall:
		return a.checkMethodCall(n, s)

	case *ast.BinaryOp:
		return a.checkBinaryOp(n, s)

	case *ast.UnaryOp:
		return a.checkUnaryOp(n, s)

	case *ast.Let:
		initType := a.checkExpr(n.Init, s)
		declared := initType
		if n.Type != nil {
			declared = a.resolveType(n.Type)
			if !declared.MatchedBy(initType) {
				a.errorf(n.Position, "let %s: declared type %s does not match initializer type %s", n.Name, declared, initType)
			}
		}
		s.define(n.Name, declared)
		return declared

	case *ast.Assign:
		declared, ok := s.lookup(n.Name)
		if !ok {
			a.errorf(n.Position, "undefined variable: %s", n.Name)
			a.checkExpr(n.Value, s)
			return a.any()
		}
		vt := a.checkExpr(n.Value, s)
		if !declared.MatchedBy(vt) {
			a.errorf(n.Value.Pos(), "cannot assign %s to %s (declared %s)", vt, n.Name, declared)
		}
		return vt

	case *ast.If:
		return a.checkIf(n, s)

	case *ast.For:
		return a.checkFor(n, s)

	case *ast.While:
		cond := a.checkExpr(n.Condition, s)
		if cond.Name() != types.Boolean {
			a.errorf(n.Condition.Pos(), "while condition must be Boolean, got %s", cond)
		}
		body := newScope(s)
		a.checkExpr(n.Body, body)
		return a.store.Simple(types.None)

	case *ast.Block:
		return a.checkBlock(n, s)

	case *ast.Lambda:
		return a.checkLambda(n, s)
	}
	return a.any()
}

func (a *Analyzer) checkBlock(n *ast.Block, outer *scope) *types.Type {
	inner := newScope(outer)
	var last *types.Type = a.store.Simple(types.None)
	for _, ex := range n.Exprs {
		last = a.checkExpr(ex, inner)
	}
	return last
}

func (a *Analyzer) checkIf(n *ast.If, s *scope) *types.Type {
	var result *types.Type
	for _, b := range n.Branches {
		cond := a.checkExpr(b.Condition, s)
		if cond.Name() != types.Boolean {
			a.errorf(b.Condition.Pos(), "if condition must be Boolean, got %s", cond)
		}
		bt := a.checkExpr(b.Body, newScope(s))
		if result == nil || result.IsNone() {
			result = bt
		} else if n.Else != nil && !bt.IsNone() && result != bt && !result.MatchedBy(bt) && !bt.MatchedBy(result) {
			a.errorf(b.Body.Pos(), "branch type %s does not match preceding branch type %s", bt, result)
		}
	}
	if n.Else != nil {
		et := a.checkExpr(n.Else, newScope(s))
		if result == nil || result.IsNone() {
			return et
		}
		if !et.IsNone() && result != et && !result.MatchedBy(et) && !et.MatchedBy(result) {
			a.errorf(n.Else.Pos(), "else branch type %s does not match if branch type %s", et, result)
		}
		return result
	}
	return a.any()
}

func (a *Analyzer) checkFor(n *ast.For, s *scope) *types.Type {
	iterType := a.checkExpr(n.Iter, s)
	inner := newScope(s)
	if iterType.Kind() == types.KindVector {
		inner.define(n.Name, iterType.Element())
	} else {
		a.errorf(n.Iter.Pos(), "for loop source must be a vector, got %s", iterType)
		inner.define(n.Name, a.any())
	}
	bt := a.checkExpr(n.Body, inner)
	return a.store.Vector(bt)
}

func (a *Analyzer) checkLambda(n *ast.Lambda, s *scope) *types.Type {
	inner := newScope(s)
	params := make([]*types.Type, len(n.Params))
	for i, p := range n.Params {
		pt := a.resolveType(p.Type)
		params[i] = pt
		inner.define(p.Name, pt)
	}
	ret := a.resolveType(n.Ret)
	bodyType := a.checkExpr(n.Body, inner)
	if !ret.MatchedBy(bodyType) {
		a.errorf(n.Position, "lambda body type %s does not match declared return type %s", bodyType, ret)
	}
	return a.store.Function(params, ret)
}

func (a *Analyzer) checkUnaryOp(n *ast.UnaryOp, s *scope) *types.Type {
	operand := a.checkExpr(n.Operand, s)
	if n.Op == "not" {
		if operand.Name() != types.Boolean {
			a.errorf(n.Position, "'not' requires a Boolean operand, got %s", operand)
		}
		return a.store.Simple(types.Boolean)
	}
	m, ok := operand.Method("neg")
	if !ok {
		a.errorf(n.Position, "type %s has no unary '-' operator", operand)
		return a.any()
	}
	if idx := m.Matches(nil); idx == -1 {
		a.errorf(n.Position, "type %s has no unary '-' operator", operand)
		return a.any()
	}
	return m.Ret
}

func (a *Analyzer) checkBinaryOp(n *ast.BinaryOp, s *scope) *types.Type {
	left := a.checkExpr(n.Left, s)
	right := a.checkExpr(n.Right, s)
	if n.Op == "and" || n.Op == "or" {
		if left.Name() != types.Boolean {
			a.errorf(n.Left.Pos(), "'%s' requires Boolean operands, got %s", n.Op, left)
		}
		if right.Name() != types.Boolean {
			a.errorf(n.Right.Pos(), "'%s' requires Boolean operands, got %s", n.Op, right)
		}
		return a.store.Simple(types.Boolean)
	}
	name, ok := binaryMethodName[n.Op]
	if !ok {
		a.errorf(n.Position, "unknown operator %q", n.Op)
		return a.any()
	}
	m, ok := left.Method(name)
	if !ok {
		a.errorf(n.Position, "type %s has no operator %q (method %s)", left, n.Op, name)
		return a.any()
	}
	idx := m.Matches([]*types.Type{right})
	if idx == -1 {
		a.errorf(n.Position, "no %s.%s alternative accepts %s", left, name, right)
		return a.any()
	}
	return m.Ret
}

func (a *Analyzer) checkCall(n *ast.Call, s *scope) *types.Type {
	argTypes := make([]*types.Type, len(n.Args))
	for i, arg := range n.Args {
		argTypes[i] = a.checkExpr(arg, s)
	}

	if ident, ok := n.Callee.(*ast.Ident); ok {
		if _, shadowed := s.lookup(ident.Name); !shadowed {
			if m, ok := a.functions[ident.Name]; ok {
				return a.dispatchFunction(m, ident.Name, argTypes, n.Position)
			}
		}
	}
	if scoped, ok := n.Callee.(*ast.ScopedIdent); ok {
		if m, ok := a.functions[scoped.Scope+"::"+scoped.Name]; ok {
			return a.dispatchFunction(m, scoped.Scope+"::"+scoped.Name, argTypes, n.Position)
		}
	}

	calleeType := a.checkExpr(n.Callee, s)
	if calleeType.Kind() != types.KindFunction {
		a.errorf(n.Position, "cannot call non-function type %s", calleeType)
		return a.any()
	}
	if !paramsMatch(calleeType.Params(), argTypes) {
		a.errorf(n.Position, "call arguments do not match %s", calleeType)
		return a.any()
	}
	return calleeType.Ret()
}

func (a *Analyzer) dispatchFunction(m *types.Method, name string, argTypes []*types.Type, pos interface{ String() string }) *types.Type {
	idx := m.Matches(argTypes)
	if idx == -1 {
		a.errorf(pos, "no overload of %s accepts the given argument types", name)
		return a.any()
	}
	return m.Ret
}

func paramsMatch(params, args []*types.Type) bool {
	if len(params) != len(args) {
		return false
	}
	for i := range params {
		if !params[i].MatchedBy(args[i]) {
			return false
		}
	}
	return true
}

func (a *Analyzer) checkMethodCall(n *ast.MethodCall, s *scope) *types.Type {
	recv := a.checkExpr(n.Receiver, s)
	argTypes := make([]*types.Type, len(n.Args))
	for i, arg := range n.Args {
		argTypes[i] = a.checkExpr(arg, s)
	}
	m, ok := recv.Method(n.Name)
	if !ok {
		a.errorf(n.Position, "type %s has no method %s", recv, n.Name)
		return a.any()
	}
	idx := m.Matches(argTypes)
	if idx == -1 {
		a.errorf(n.Position, "no alternative of %s.%s accepts the given argument types", recv, n.Name)
		return a.any()
	}
	return m.Ret
}
