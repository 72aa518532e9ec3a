package symtab

import (
	"testing"

	"github.com/hugodaniel/fx/internal/ast"
	"github.com/stretchr/testify/require"
)

func TestInsertAndFindInSameScope(t *testing.T) {
	tab := New()
	d := ast.DeclRef(1)
	ok := tab.Insert("x", d, false, false)
	require.True(t, ok)

	found, ok := tab.Find("x", tab.Current(), false)
	require.True(t, ok)
	require.Equal(t, d, found)
}

func TestRedefinitionOfVariableRejected(t *testing.T) {
	tab := New()
	require.True(t, tab.Insert("x", ast.DeclRef(1), false, false))
	require.False(t, tab.Insert("x", ast.DeclRef(2), false, false))
}

func TestFunctionsAllowDuplicateNamesAsOverloadSet(t *testing.T) {
	tab := New()
	require.True(t, tab.Insert("f", ast.DeclRef(1), true, false))
	require.True(t, tab.Insert("f", ast.DeclRef(2), true, false))

	candidates := tab.FindAll("f", tab.Current())
	require.ElementsMatch(t, []ast.DeclRef{1, 2}, candidates)
}

func TestLeaveScopePrunesBlockLocals(t *testing.T) {
	tab := New()
	tab.EnterScope(ast.InvalidDecl)
	require.True(t, tab.Insert("y", ast.DeclRef(3), false, false))
	_, ok := tab.Find("y", tab.Current(), false)
	require.True(t, ok)

	tab.LeaveScope()
	_, ok = tab.Find("y", tab.Current(), false)
	require.False(t, ok)
}

func TestVariableShadowsFunctionOfSameName(t *testing.T) {
	tab := New()
	require.True(t, tab.Insert("thing", ast.DeclRef(1), true, false))
	require.True(t, tab.Insert("thing", ast.DeclRef(2), false, false))

	found, ok := tab.Find("thing", tab.Current(), false)
	require.True(t, ok)
	require.Equal(t, ast.DeclRef(2), found)
}

func TestGlobalInsertRegistersEverySuffixCut(t *testing.T) {
	tab := New()
	tab.EnterNamespace("a")
	tab.EnterNamespace("b")
	require.True(t, tab.Insert("f", ast.DeclRef(7), true, true))
	tab.LeaveNamespace("b")
	tab.LeaveNamespace("a")

	// From inside a::b, "f" is reachable unqualified.
	tab.EnterNamespace("a")
	tab.EnterNamespace("b")
	found, ok := tab.Find("f", tab.Current(), false)
	require.True(t, ok)
	require.Equal(t, ast.DeclRef(7), found)
	tab.LeaveNamespace("b")

	// From inside just "a", the shorter qualification "b::f" is
	// reachable; the bare "f" cut lives at namespace level 2 and is
	// not visible from level 1.
	_, ok = tab.Find("f", tab.Current(), false)
	require.False(t, ok)
	found, ok = tab.Find("b::f", tab.Current(), false)
	require.True(t, ok)
	require.Equal(t, ast.DeclRef(7), found)
	tab.LeaveNamespace("a")

	// From global scope, the fully-qualified "a::b::f" is reachable.
	found, ok = tab.Find("a::b::f", tab.Current(), false)
	require.True(t, ok)
	require.Equal(t, ast.DeclRef(7), found)
}

func TestEnclosingFunctionTracksNearestNonInvalidParent(t *testing.T) {
	tab := New()
	require.Equal(t, ast.InvalidDecl, tab.EnclosingFunction())

	fn := ast.DeclRef(9)
	tab.EnterScope(fn)
	require.Equal(t, fn, tab.EnclosingFunction())

	tab.EnterScope(ast.InvalidDecl)
	require.Equal(t, fn, tab.EnclosingFunction(), "nested block scope keeps the enclosing function")

	tab.LeaveScope()
	tab.LeaveScope()
	require.Equal(t, ast.InvalidDecl, tab.EnclosingFunction())
}

func TestExclusiveFindSkipsOuterScopeForRedefinitionCheck(t *testing.T) {
	tab := New()
	require.True(t, tab.Insert("z", ast.DeclRef(1), false, false))

	tab.EnterScope(ast.InvalidDecl)
	// Exclusive lookup at the new, deeper scope should not see the
	// outer-scope "z" — only entries inserted at this block or deeper
	// count toward a redefinition at this level.
	_, ok := tab.Find("z", tab.Current(), true)
	require.False(t, ok)
	tab.LeaveScope()
}
