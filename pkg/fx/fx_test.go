package fx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseValidSourceSucceeds(t *testing.T) {
	result := Parse(`
uniform float4x4 WorldViewProj;

float4 main(float4 pos : POSITION) : SV_POSITION {
    return mul(WorldViewProj, pos);
}`)

	require.True(t, result.Success)
	require.Empty(t, result.Diagnostics)
	require.Len(t, result.Module.Functions, 1)
	require.Len(t, result.Module.Uniforms, 1)
}

func TestParseInvalidSourceReportsFailure(t *testing.T) {
	result := Parse(`
float f() {
    return undeclaredThing;
}`)

	require.False(t, result.Success)
	require.NotEmpty(t, result.Diagnostics)
}

func TestParseWarningsDoNotFailTheResult(t *testing.T) {
	result := Parse(`float4x4 WorldViewProj;`)

	require.True(t, result.Success)
	require.Contains(t, result.Diagnostics, "X5000")
}
