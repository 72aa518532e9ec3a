package ast

import (
	"testing"

	"github.com/hugodaniel/fx/internal/types"
)

func TestArenaExprRoundTrip(t *testing.T) {
	a := NewArena()
	ref := a.NewExpr(Expr{Kind: ExprLiteral, LitKind: LitInt, IntVal: 7, Type: types.Scalar(types.Int)})
	if !ref.IsValid() {
		t.Fatalf("expected valid ref")
	}
	got := a.Expr(ref)
	if got.IntVal != 7 {
		t.Errorf("got IntVal=%d, want 7", got.IntVal)
	}
}

func TestInvalidHandlesAreNotValid(t *testing.T) {
	if InvalidExpr.IsValid() {
		t.Error("InvalidExpr must not be valid")
	}
	if InvalidStmt.IsValid() {
		t.Error("InvalidStmt must not be valid")
	}
	if InvalidDecl.IsValid() {
		t.Error("InvalidDecl must not be valid")
	}
}

func TestArenaStmtAndDeclAreIndependentSequences(t *testing.T) {
	a := NewArena()
	e := a.NewExpr(Expr{Kind: ExprLiteral, LitKind: LitBool, BoolVal: true})
	s := a.NewStmt(Stmt{Kind: StmtExpr, Expr: e})
	d := a.NewDecl(Decl{Kind: DeclVariable, Name: "x", Type: types.Scalar(types.Bool)})
	if int(s) != 0 || int(d) != 0 {
		t.Errorf("expected independent zero-based sequences, got stmt=%d decl=%d", s, d)
	}
	if a.Stmt(s).Expr != e {
		t.Errorf("stmt did not retain its expr ref")
	}
	if a.Decl(d).Name != "x" {
		t.Errorf("decl did not retain its name")
	}
}

func TestBuildSmallIfStatement(t *testing.T) {
	a := NewArena()
	cond := a.NewExpr(Expr{Kind: ExprLiteral, LitKind: LitBool, BoolVal: true})
	thenBlock := a.NewStmt(Stmt{Kind: StmtBlock})
	ifStmt := a.NewStmt(Stmt{
		Kind: StmtIf,
		Cond: cond,
		Then: thenBlock,
		Else: InvalidStmt,
	})
	got := a.Stmt(ifStmt)
	if got.Cond != cond || got.Then != thenBlock {
		t.Errorf("if statement did not retain its branches")
	}
	if got.Else.IsValid() {
		t.Errorf("expected no else branch")
	}
}

func TestStructDefRoundTrip(t *testing.T) {
	a := NewArena()
	field := a.NewDecl(Decl{Kind: DeclVariable, Name: "position", Type: types.Vector(types.Float, 4)})
	sd := a.NewStruct(StructDef{Name: "VS_OUTPUT", Fields: []DeclRef{field}})
	st := a.Struct(sd)
	if st.Name != "VS_OUTPUT" || len(st.Fields) != 1 {
		t.Errorf("struct def not retained correctly: %+v", st)
	}
}

func TestModuleHoldsTopLevelDeclLists(t *testing.T) {
	a := NewArena()
	fn := a.NewDecl(Decl{Kind: DeclFunction, Name: "main", Body: InvalidStmt})
	m := Module{Arena: a, Functions: []DeclRef{fn}}
	if len(m.Functions) != 1 || m.Arena.Decl(m.Functions[0]).Name != "main" {
		t.Errorf("module did not retain function declaration")
	}
}
