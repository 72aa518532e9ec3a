package constfold

import (
	"testing"

	"github.com/hugodaniel/fx/internal/ast"
	"github.com/hugodaniel/fx/internal/builtins"
	"github.com/hugodaniel/fx/internal/types"
	"github.com/stretchr/testify/require"
)

func intLit(a *ast.Arena, v int64) ast.ExprRef {
	return a.NewExpr(ast.Expr{Kind: ast.ExprLiteral, LitKind: ast.LitInt, IntVal: v, IsConst: true, Type: types.Scalar(types.Int)})
}

func floatLit(a *ast.Arena, v float64) ast.ExprRef {
	return a.NewExpr(ast.Expr{Kind: ast.ExprLiteral, LitKind: ast.LitFloat, FloatVal: v, IsConst: true, Type: types.Scalar(types.Float)})
}

func TestFoldBinaryAddition(t *testing.T) {
	a := ast.NewArena()
	lhs, rhs := intLit(a, 2), intLit(a, 3)
	sum := a.NewExpr(ast.Expr{Kind: ast.ExprBinary, BinOp: ast.BinAdd, Left: lhs, Right: rhs})

	folded := Fold(a, sum)
	got := a.Expr(folded)
	require.Equal(t, ast.ExprLiteral, got.Kind)
	require.Equal(t, int64(5), got.IntVal)
}

func TestFoldUnaryNegation(t *testing.T) {
	a := ast.NewArena()
	neg := a.NewExpr(ast.Expr{Kind: ast.ExprUnary, UnOp: ast.UnaryNeg, Operand: floatLit(a, 4.5)})
	folded := Fold(a, neg)
	require.Equal(t, 4.5*-1, a.Expr(folded).FloatVal)
}

func TestFoldStopsAtNonLiteralOperand(t *testing.T) {
	a := ast.NewArena()
	lvalue := a.NewExpr(ast.Expr{Kind: ast.ExprLValue, Name: "x", Ref: ast.InvalidDecl})
	add := a.NewExpr(ast.Expr{Kind: ast.ExprBinary, BinOp: ast.BinAdd, Left: lvalue, Right: intLit(a, 1)})

	folded := Fold(a, add)
	require.Equal(t, add, folded, "unfoldable expression must be returned unchanged")
}

func TestFoldDivisionByZeroIsNotFolded(t *testing.T) {
	a := ast.NewArena()
	div := a.NewExpr(ast.Expr{Kind: ast.ExprBinary, BinOp: ast.BinDiv, Left: intLit(a, 1), Right: intLit(a, 0)})
	folded := Fold(a, div)
	require.Equal(t, div, folded)
}

func TestFoldComparisonProducesBool(t *testing.T) {
	a := ast.NewArena()
	lt := a.NewExpr(ast.Expr{Kind: ast.ExprBinary, BinOp: ast.BinLt, Left: intLit(a, 1), Right: intLit(a, 2)})
	folded := Fold(a, lt)
	got := a.Expr(folded)
	require.Equal(t, ast.LitBool, got.LitKind)
	require.True(t, got.BoolVal)
}

func TestFoldIntrinsicAbs(t *testing.T) {
	a := ast.NewArena()
	call := a.NewExpr(ast.Expr{Kind: ast.ExprIntrinsic, IntrinsicOp: builtins.OpAbs, Args: []ast.ExprRef{floatLit(a, -2)}})
	folded := Fold(a, call)
	require.Equal(t, 2.0, a.Expr(folded).FloatVal)
}

func TestFoldIntrinsicWithoutConstEvalPassesThrough(t *testing.T) {
	a := ast.NewArena()
	sampler := types.Type{Base: types.Sampler}
	_ = sampler
	call := a.NewExpr(ast.Expr{Kind: ast.ExprIntrinsic, IntrinsicOp: builtins.OpDdx, Args: []ast.ExprRef{floatLit(a, 1)}})
	folded := Fold(a, call)
	require.Equal(t, call, folded)
}

func TestFoldIntrinsicOutsideFoldableSetPassesThrough(t *testing.T) {
	a := ast.NewArena()
	call := a.NewExpr(ast.Expr{Kind: ast.ExprIntrinsic, IntrinsicOp: builtins.OpFrac, Args: []ast.ExprRef{floatLit(a, 1.5)}})
	folded := Fold(a, call)
	require.Equal(t, call, folded, "frac has no closed-form fold per spec; only abs/sign/rcp/trig/exp/log/sqrt/ceil/floor/min/max/pow fold")
}

func TestFoldScalarCastTruncatesTowardZero(t *testing.T) {
	a := ast.NewArena()
	cast := a.NewExpr(ast.Expr{
		Kind:          ast.ExprConstructor,
		ConstructType: types.Scalar(types.Int),
		Args:          []ast.ExprRef{floatLit(a, 3.9)},
	})
	folded := Fold(a, cast)
	got := a.Expr(folded)
	require.Equal(t, ast.LitInt, got.LitKind)
	require.Equal(t, int64(3), got.IntVal)
}

func TestFoldReferenceToConstLiteralVariable(t *testing.T) {
	a := ast.NewArena()
	initializer := intLit(a, 42)
	decl := a.NewDecl(ast.Decl{
		Kind:        ast.DeclVariable,
		Name:        "K",
		Type:        types.Scalar(types.Int).WithQualifiers(types.QualConst),
		Initializer: initializer,
	})
	ref := a.NewExpr(ast.Expr{Kind: ast.ExprLValue, Name: "K", Ref: decl})
	folded := Fold(a, ref)
	got := a.Expr(folded)
	require.Equal(t, ast.ExprLiteral, got.Kind)
	require.Equal(t, int64(42), got.IntVal)
}

func TestFoldReferenceToNonConstVariableIsUnchanged(t *testing.T) {
	a := ast.NewArena()
	decl := a.NewDecl(ast.Decl{Kind: ast.DeclVariable, Name: "v", Type: types.Scalar(types.Int)})
	ref := a.NewExpr(ast.Expr{Kind: ast.ExprLValue, Name: "v", Ref: decl})
	folded := Fold(a, ref)
	require.Equal(t, ref, folded)
}
