package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRankPerfectMatch(t *testing.T) {
	f3 := Vector(Float, 3)
	require.Equal(t, uint32(1), Rank(f3, f3))
}

func TestRankPerfectMatchIffEqual(t *testing.T) {
	// spec §8 property 5: Rank(T,U)==1 <=> T==U
	cases := []struct{ a, b Type }{
		{Scalar(Int), Scalar(Int)},
		{Scalar(Int), Scalar(Uint)},
		{Vector(Float, 3), Vector(Float, 4)},
		{Vector(Float, 2), Vector(Float, 2)},
		{Matrix(Float, 4, 4), Matrix(Float, 4, 4)},
		{StructType(1), StructType(1)},
		{StructType(1), StructType(2)},
	}
	for _, c := range cases {
		rank := Rank(c.a, c.b)
		require.Equal(t, c.a.Equal(c.b), rank == 1, "Rank(%v,%v)=%d", c.a, c.b, rank)
	}
}

func TestRankScalarToVectorIsSplat(t *testing.T) {
	r := Rank(Scalar(Float), Vector(Float, 4))
	require.NotZero(t, r)
	require.NotEqual(t, uint32(1), r)
}

func TestRankVectorToScalarIsNarrowing(t *testing.T) {
	r := Rank(Vector(Float, 4), Scalar(Float))
	require.NotZero(t, r)
	require.True(t, IsTruncating(Vector(Float, 4), Scalar(Float)))
}

func TestRankIncompatibleVectorLengthsFails(t *testing.T) {
	// float3 -> float4 (same base, more components) with no scalar on
	// either side is incompatible (neither widening-from-scalar nor narrowing).
	r := Rank(Vector(Float, 3), Vector(Float, 4))
	require.Zero(t, r)
}

func TestRankArraysOnlyConvertToThemselves(t *testing.T) {
	arr3 := Type{Base: Float, Rows: 1, Cols: 1, ArrayLen: 3}
	arr4 := Type{Base: Float, Rows: 1, Cols: 1, ArrayLen: 4}
	unsized := Type{Base: Float, Rows: 1, Cols: 1, ArrayLen: -1}

	require.Equal(t, uint32(1), Rank(arr3, arr3))
	require.Zero(t, Rank(arr3, arr4))
	require.Equal(t, uint32(1), Rank(arr3, unsized))
	require.Equal(t, uint32(1), Rank(unsized, arr4))
}

func TestRankStructsOnlyConvertToSameDefinition(t *testing.T) {
	require.Equal(t, uint32(1), Rank(StructType(5), StructType(5)))
	require.Zero(t, Rank(StructType(5), StructType(6)))
	require.Zero(t, Rank(StructType(5), Scalar(Int)))
}

func TestQualifierInoutIsOrOfInAndOut(t *testing.T) {
	require.Equal(t, QualIn|QualOut, QualInout)
	q := QualInout
	require.True(t, q.Has(QualIn))
	require.True(t, q.Has(QualOut))
}

func TestTypeStringRendersShape(t *testing.T) {
	require.Equal(t, "float", Scalar(Float).String())
	require.Equal(t, "int3", Vector(Int, 3).String())
	require.Equal(t, "float4x4", Matrix(Float, 4, 4).String())
	arr := Type{Base: Uint, Rows: 1, Cols: 1, ArrayLen: 5}
	require.Equal(t, "uint[5]", arr.String())
	unsized := Type{Base: Uint, Rows: 1, Cols: 1, ArrayLen: -1}
	require.Equal(t, "uint[]", unsized.String())
}

func TestVoidInvariant(t *testing.T) {
	require.True(t, VoidType.IsVoid())
	require.Equal(t, int8(0), VoidType.Rows)
	require.Equal(t, int8(0), VoidType.Cols)
}
