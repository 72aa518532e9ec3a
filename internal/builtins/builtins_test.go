package builtins

import (
	"testing"

	"github.com/hugodaniel/fx/internal/types"
)

func TestLookupKnownIntrinsics(t *testing.T) {
	for _, name := range []string{"abs", "mul", "tex2D", "dot", "normalize", "sincos", "rcp"} {
		if Lookup(name) == nil {
			t.Errorf("expected %q to be a registered intrinsic", name)
		}
	}
}

func TestLookupUnknownReturnsNil(t *testing.T) {
	if Lookup("not_a_builtin") != nil {
		t.Errorf("expected nil for unregistered name")
	}
}

func TestRcpIsNotAliasedToSign(t *testing.T) {
	rcp := Lookup("rcp")
	sign := Lookup("sign")
	if rcp.Op == sign.Op {
		t.Fatalf("rcp and sign must carry distinct opcodes")
	}
}

func TestAbsConstEvalFoldsNegative(t *testing.T) {
	abs := Lookup("abs")
	v, ok := abs.Overloads[0].ConstEval([]float64{-3.5})
	if !ok || v != 3.5 {
		t.Errorf("abs(-3.5) = %v, %v; want 3.5, true", v, ok)
	}
}

func TestRcpConstEvalRejectsZero(t *testing.T) {
	rcp := Lookup("rcp")
	_, ok := rcp.Overloads[0].ConstEval([]float64{0})
	if ok {
		t.Errorf("rcp(0) should not fold")
	}
}

func TestMulCoversMatrixVectorShapes(t *testing.T) {
	mul := Lookup("mul")
	m := types.Matrix(types.Float, 4, 4)
	v := types.Vector(types.Float, 4)
	found := false
	for _, ov := range mul.Overloads {
		if len(ov.Params) == 2 && ov.Params[0].Equal(m) && ov.Params[1].Equal(v) && ov.Return.Equal(v) {
			found = true
		}
	}
	if !found {
		t.Errorf("expected mul(float4x4, float4) -> float4 overload")
	}
}

func TestDerivativesArePixelStageOnly(t *testing.T) {
	for _, name := range []string{"ddx", "ddy", "fwidth"} {
		b := Lookup(name)
		if b.Stage != EvalStagePixelOnly {
			t.Errorf("%s: expected EvalStagePixelOnly, got %v", name, b.Stage)
		}
	}
}

func TestOpcodeStringRendersSourceName(t *testing.T) {
	if OpDot.String() != "dot" {
		t.Errorf("OpDot.String() = %q, want %q", OpDot.String(), "dot")
	}
}
