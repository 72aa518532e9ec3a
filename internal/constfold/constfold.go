// Package constfold evaluates expressions whose operands are all
// compile-time literals, replacing them with an equivalent literal
// node. The expression parser invokes it right after each unary,
// binary, cast, constructor and intrinsic-call node is constructed,
// and it folds the operands of those nodes (including references to
// const variables) recursively; other node kinds are not folded at
// construction. Nodes with a non-literal operand are returned
// unchanged, so folding is always safe to call speculatively.
//
// Folding is scalar-only: a vector or matrix result is built from a
// constructor call over already-folded scalar arguments, so there is
// no multi-component literal representation to fold further. This
// mirrors the literal set the lexer itself can produce (spec §3's
// Token.literal_value union has no vector member).
package constfold

import (
	"math"

	"github.com/hugodaniel/fx/internal/ast"
	"github.com/hugodaniel/fx/internal/builtins"
	"github.com/hugodaniel/fx/internal/types"
)

// Fold attempts to reduce the expression at ref to a literal. It
// returns ref unchanged when folding does not apply.
func Fold(a *ast.Arena, ref ast.ExprRef) ast.ExprRef {
	if !ref.IsValid() {
		return ref
	}
	e := a.Expr(ref)
	switch e.Kind {
	case ast.ExprUnary:
		return foldUnary(a, ref, e)
	case ast.ExprBinary:
		return foldBinary(a, ref, e)
	case ast.ExprIntrinsic:
		return foldIntrinsic(a, ref, e)
	case ast.ExprConstructor:
		return foldConstructor(a, ref, e)
	case ast.ExprLValue:
		return foldReference(a, ref, e)
	default:
		return ref
	}
}

// isFoldedLiteral reports whether ref already denotes a literal with a
// numeric (non-string) value.
func isFoldedLiteral(a *ast.Arena, ref ast.ExprRef) bool {
	if !ref.IsValid() {
		return false
	}
	e := a.Expr(ref)
	return e.Kind == ast.ExprLiteral && e.LitKind != ast.LitString
}

// numericValue extracts e's literal value as a float64, alongside the
// literal kind it was stored as so callers can re-tag the folded
// result with the right kind.
func numericValue(e *ast.Expr) (float64, ast.LiteralKind, bool) {
	switch e.LitKind {
	case ast.LitBool:
		if e.BoolVal {
			return 1, ast.LitBool, true
		}
		return 0, ast.LitBool, true
	case ast.LitInt:
		return float64(e.IntVal), ast.LitInt, true
	case ast.LitUint:
		return float64(e.UintVal), ast.LitUint, true
	case ast.LitFloat:
		return e.FloatVal, ast.LitFloat, true
	case ast.LitDouble:
		return e.DoubleVal, ast.LitDouble, true
	default:
		return 0, 0, false
	}
}

// newLiteral builds a literal Expr of kind carrying value v, typed t.
func newLiteral(loc ast.Loc, kind ast.LiteralKind, v float64, t types.Type) ast.Expr {
	e := ast.Expr{Kind: ast.ExprLiteral, Loc: loc, Type: t, IsConst: true, LitKind: kind}
	switch kind {
	case ast.LitBool:
		e.BoolVal = v != 0
	case ast.LitInt:
		e.IntVal = int64(v)
	case ast.LitUint:
		e.UintVal = uint64(v)
	case ast.LitFloat:
		e.FloatVal = float32Round(v)
	case ast.LitDouble:
		e.DoubleVal = v
	}
	return e
}

// float32Round mimics IEEE-754 single-precision rounding for float
// literals (spec §4.J: floating ops use single precision).
func float32Round(v float64) float64 { return float64(float32(v)) }

// wideKind returns whichever of a and b sorts later in
// bool < int < uint < float < double, matching the comparison/
// arithmetic promotion rule of spec §4.F/§4.J.
func wideKind(a, b ast.LiteralKind) ast.LiteralKind {
	rank := func(k ast.LiteralKind) int {
		switch k {
		case ast.LitBool:
			return 0
		case ast.LitInt:
			return 1
		case ast.LitUint:
			return 2
		case ast.LitFloat:
			return 3
		case ast.LitDouble:
			return 4
		default:
			return -1
		}
	}
	if rank(a) >= rank(b) {
		return a
	}
	return b
}

func kindToBase(k ast.LiteralKind) types.BaseType {
	switch k {
	case ast.LitBool:
		return types.Bool
	case ast.LitInt:
		return types.Int
	case ast.LitUint:
		return types.Uint
	default:
		return types.Float
	}
}

func foldUnary(a *ast.Arena, ref ast.ExprRef, e *ast.Expr) ast.ExprRef {
	e.Operand = Fold(a, e.Operand)
	if !isFoldedLiteral(a, e.Operand) {
		return ref
	}
	operand := a.Expr(e.Operand)
	v, kind, ok := numericValue(operand)
	if !ok {
		return ref
	}
	var result float64
	switch e.UnOp {
	case ast.UnaryNeg:
		result = -v
	case ast.UnaryNot:
		result = boolToFloat(v == 0)
		kind = ast.LitBool
	case ast.UnaryBitNot:
		if kind != ast.LitInt && kind != ast.LitUint {
			return ref
		}
		result = float64(^int64(v))
	default:
		// Increment/decrement have observable side effects and are
		// never constant-foldable.
		return ref
	}
	lit := newLiteral(e.Loc, kind, result, types.Scalar(kindToBase(kind)))
	return a.NewExpr(lit)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func foldBinary(a *ast.Arena, ref ast.ExprRef, e *ast.Expr) ast.ExprRef {
	e.Left = Fold(a, e.Left)
	e.Right = Fold(a, e.Right)
	if !isFoldedLiteral(a, e.Left) || !isFoldedLiteral(a, e.Right) {
		return ref
	}
	lExpr, rExpr := a.Expr(e.Left), a.Expr(e.Right)
	lv, lk, ok1 := numericValue(lExpr)
	rv, rk, ok2 := numericValue(rExpr)
	if !ok1 || !ok2 {
		return ref
	}
	kind := wideKind(lk, rk)

	var result float64
	isBoolResult := false
	switch e.BinOp {
	case ast.BinAdd:
		result = lv + rv
	case ast.BinSub:
		result = lv - rv
	case ast.BinMul:
		result = lv * rv
	case ast.BinDiv:
		if kind == ast.LitFloat || kind == ast.LitDouble {
			if rv == 0 {
				return ref
			}
			result = lv / rv
		} else {
			iv := int64(rv)
			if iv == 0 {
				return ref
			}
			result = float64(int64(lv) / iv)
		}
	case ast.BinMod:
		if kind == ast.LitFloat || kind == ast.LitDouble {
			result = math.Mod(lv, rv)
		} else {
			iv := int64(rv)
			if iv == 0 {
				return ref
			}
			result = float64(int64(lv) % iv)
		}
	case ast.BinBitAnd:
		if !bothIntegral(lk, rk) {
			return ref
		}
		result = float64(int64(lv) & int64(rv))
	case ast.BinBitOr:
		if !bothIntegral(lk, rk) {
			return ref
		}
		result = float64(int64(lv) | int64(rv))
	case ast.BinBitXor:
		if !bothIntegral(lk, rk) {
			return ref
		}
		result = float64(int64(lv) ^ int64(rv))
	case ast.BinShl:
		if !bothIntegral(lk, rk) {
			return ref
		}
		result = float64(int64(lv) << uint(int64(rv)))
	case ast.BinShr:
		if !bothIntegral(lk, rk) {
			return ref
		}
		result = float64(int64(lv) >> uint(int64(rv)))
	case ast.BinLt:
		result, isBoolResult = boolToFloat(lv < rv), true
	case ast.BinGt:
		result, isBoolResult = boolToFloat(lv > rv), true
	case ast.BinLe:
		result, isBoolResult = boolToFloat(lv <= rv), true
	case ast.BinGe:
		result, isBoolResult = boolToFloat(lv >= rv), true
	case ast.BinEq:
		result, isBoolResult = boolToFloat(lv == rv), true
	case ast.BinNe:
		result, isBoolResult = boolToFloat(lv != rv), true
	case ast.BinLogAnd:
		result, isBoolResult = boolToFloat(lv != 0 && rv != 0), true
	case ast.BinLogOr:
		result, isBoolResult = boolToFloat(lv != 0 || rv != 0), true
	default:
		return ref
	}
	if isBoolResult {
		kind = ast.LitBool
	}
	lit := newLiteral(e.Loc, kind, result, types.Scalar(kindToBase(kind)))
	return a.NewExpr(lit)
}

func bothIntegral(a, b ast.LiteralKind) bool {
	integral := func(k ast.LiteralKind) bool { return k == ast.LitInt || k == ast.LitUint || k == ast.LitBool }
	return integral(a) && integral(b)
}

// foldIntrinsic folds a call to the subset of the catalog with a
// closed-form evaluator, per spec §4.J.
func foldIntrinsic(a *ast.Arena, ref ast.ExprRef, e *ast.Expr) ast.ExprRef {
	args := make([]float64, len(e.Args))
	for i, argRef := range e.Args {
		e.Args[i] = Fold(a, argRef)
		if !isFoldedLiteral(a, e.Args[i]) {
			return ref
		}
		v, _, ok := numericValue(a.Expr(e.Args[i]))
		if !ok {
			return ref
		}
		args[i] = v
	}
	for _, b := range builtins.Table {
		if b.Op != e.IntrinsicOp {
			continue
		}
		for _, ov := range b.Overloads {
			if ov.ConstEval == nil || len(ov.Params) != len(args) {
				continue
			}
			if result, ok := ov.ConstEval(args); ok {
				lit := newLiteral(e.Loc, ast.LitFloat, result, types.Scalar(types.Float))
				return a.NewExpr(lit)
			}
		}
	}
	return ref
}

// foldConstructor handles the single-argument case, which doubles as a
// cast expression (spec §4.F: "(T)e" parses into the same node a
// one-argument constructor call would). Multi-argument constructors
// build an aggregate value with no scalar literal representation, so
// they are left unfolded even when every argument already is.
func foldConstructor(a *ast.Arena, ref ast.ExprRef, e *ast.Expr) ast.ExprRef {
	if len(e.Args) != 1 {
		for i, argRef := range e.Args {
			e.Args[i] = Fold(a, argRef)
		}
		return ref
	}
	e.Args[0] = Fold(a, e.Args[0])
	if !isFoldedLiteral(a, e.Args[0]) {
		return ref
	}
	if !e.ConstructType.IsScalar() {
		return ref
	}
	src := a.Expr(e.Args[0])
	v, _, ok := numericValue(src)
	if !ok {
		return ref
	}
	kind := baseToLitKind(e.ConstructType.Base)
	lit := newLiteral(e.Loc, kind, truncateForCast(v, kind), e.ConstructType)
	return a.NewExpr(lit)
}

func baseToLitKind(b types.BaseType) ast.LiteralKind {
	switch b {
	case types.Bool:
		return ast.LitBool
	case types.Int:
		return ast.LitInt
	case types.Uint:
		return ast.LitUint
	default:
		return ast.LitFloat
	}
}

// truncateForCast applies the per-basetype conversion rule spec §4.J
// describes for literal-to-literal casts: truncate toward zero into
// an integer column, or pass a float value through unchanged.
func truncateForCast(v float64, kind ast.LiteralKind) float64 {
	switch kind {
	case ast.LitBool:
		return boolToFloat(v != 0)
	case ast.LitInt:
		return float64(int64(v))
	case ast.LitUint:
		return float64(uint64(v))
	default:
		return v
	}
}

// foldReference implements the reference-folding rule: an l-value
// naming a const-qualified, literal-initialized variable resolves to a
// copy of that literal (spec §4.J). The referenced declaration is
// never re-evaluated or mutated.
func foldReference(a *ast.Arena, ref ast.ExprRef, e *ast.Expr) ast.ExprRef {
	if !e.Ref.IsValid() {
		return ref
	}
	decl := a.Decl(e.Ref)
	if decl.Kind != ast.DeclVariable || !decl.Type.Qualifiers.Has(types.QualConst) {
		return ref
	}
	if !isFoldedLiteral(a, decl.Initializer) {
		return ref
	}
	src := a.Expr(decl.Initializer)
	copyLit := *src
	copyLit.Loc = e.Loc
	return a.NewExpr(copyLit)
}
