package resolve

import (
	"testing"

	"github.com/hugodaniel/fx/internal/builtins"
	"github.com/hugodaniel/fx/internal/types"
	"github.com/stretchr/testify/require"
)

func TestResolvePerfectMatchWins(t *testing.T) {
	exact := Candidate{Params: []types.Type{types.Scalar(types.Float)}, Decl: 1}
	widening := Candidate{Params: []types.Type{types.Vector(types.Float, 4)}, Decl: 2}

	r := Resolve([]types.Type{types.Scalar(types.Float)}, []Candidate{widening, exact})
	require.True(t, r.Found)
	require.False(t, r.Ambiguous)
	require.Equal(t, int32(1), r.Winner.Decl)
}

func TestResolveNoViableCandidateFails(t *testing.T) {
	c := Candidate{Params: []types.Type{types.Scalar(types.Bool)}, Decl: 1}
	r := Resolve([]types.Type{types.StructType(types.InvalidStruct)}, []Candidate{c})
	require.False(t, r.Found)
	require.False(t, r.Ambiguous)
}

func TestResolveAmbiguousTieReported(t *testing.T) {
	a := Candidate{Params: []types.Type{types.Vector(types.Float, 3)}, Decl: 1}
	b := Candidate{Params: []types.Type{types.Vector(types.Float, 3)}, Decl: 2}
	r := Resolve([]types.Type{types.Vector(types.Int, 3)}, []Candidate{a, b})
	require.False(t, r.Found)
	require.True(t, r.Ambiguous)
}

func TestResolveParamCountMismatchIsNonViable(t *testing.T) {
	c := Candidate{Params: []types.Type{types.Scalar(types.Float), types.Scalar(types.Float)}, Decl: 1}
	r := Resolve([]types.Type{types.Scalar(types.Float)}, []Candidate{c})
	require.False(t, r.Found)
}

func TestResolvePrefersIntrinsicOverloadByRank(t *testing.T) {
	dot := builtins.Lookup("dot")
	var candidates []Candidate
	for _, ov := range dot.Overloads {
		candidates = append(candidates, Candidate{Params: ov.Params, Return: ov.Return, Op: dot.Op})
	}
	r := Resolve([]types.Type{types.Vector(types.Float, 3), types.Vector(types.Float, 3)}, candidates)
	require.True(t, r.Found)
	require.True(t, r.Winner.Return.Equal(types.Scalar(types.Float)))
}
