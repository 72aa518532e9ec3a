// Package builtins catalogs the FX intrinsic functions: every
// standard-library-like function callable without a user declaration
// (abs, mul, tex2D, ...), its overloads, and the opcode the constant
// folder and call resolver key off of.
//
// The catalog is plain data, not behavior: Table is built once at
// package init from a list of registerX() calls grouped by family, the
// way a lexer keyword table is built — a lookup structure, not a
// dispatcher.
package builtins

import (
	"math"

	"github.com/hugodaniel/fx/internal/types"
)

// unary1 adapts a single-float math function into the []float64-based
// ConstEval signature unaryFloat expects.
func unary1(f func(float64) float64) ConstEval {
	return func(args []float64) (float64, bool) {
		if len(args) != 1 {
			return 0, false
		}
		return f(args[0]), true
	}
}

// Opcode identifies an intrinsic function independent of any one of
// its overloads. ast.Expr.IntrinsicOp holds one of these once the
// resolver has picked a callee.
type Opcode int32

const (
	OpNone Opcode = iota

	OpAbs
	OpAcos
	OpAll
	OpAny
	OpAsFloat
	OpAsin
	OpAsInt
	OpAsUint
	OpAtan
	OpAtan2
	OpCeil
	OpClamp
	OpCos
	OpCosh
	OpCross
	OpDdx
	OpDdy
	OpDegrees
	OpDeterminant
	OpDistance
	OpDot
	OpExp
	OpExp2
	OpFaceforward
	OpFloor
	OpFmod
	OpFrac
	OpFrexp
	OpFwidth
	OpLdexp
	OpLength
	OpLerp
	OpLog
	OpLog10
	OpLog2
	OpMad
	OpMax
	OpMin
	OpModf
	OpMul
	OpNormalize
	OpPow
	OpRadians
	OpRcp
	OpReflect
	OpRefract
	OpRound
	OpRsqrt
	OpSaturate
	OpSign
	OpSin
	OpSincos
	OpSinh
	OpSmoothstep
	OpSqrt
	OpStep
	OpTan
	OpTanh
	OpTex2D
	OpTex2DFetch
	OpTex2DGather
	OpTex2DGatherOffset
	OpTex2DGrad
	OpTex2DLod
	OpTex2DLodOffset
	OpTex2DOffset
	OpTex2DProj
	OpTex2DSize
	OpTranspose
	OpTrunc

	opcodeCount
)

var opcodeNames = [opcodeCount]string{
	OpNone:        "<none>",
	OpAbs:         "abs",
	OpAcos:        "acos",
	OpAll:         "all",
	OpAny:         "any",
	OpAsFloat:     "asfloat",
	OpAsin:        "asin",
	OpAsInt:       "asint",
	OpAsUint:      "asuint",
	OpAtan:        "atan",
	OpAtan2:       "atan2",
	OpCeil:        "ceil",
	OpClamp:       "clamp",
	OpCos:         "cos",
	OpCosh:        "cosh",
	OpCross:       "cross",
	OpDdx:         "ddx",
	OpDdy:         "ddy",
	OpDegrees:     "degrees",
	OpDeterminant: "determinant",
	OpDistance:    "distance",
	OpDot:         "dot",
	OpExp:         "exp",
	OpExp2:        "exp2",
	OpFaceforward: "faceforward",
	OpFloor:       "floor",
	OpFmod:        "fmod",
	OpFrac:        "frac",
	OpFrexp:       "frexp",
	OpFwidth:      "fwidth",
	OpLdexp:       "ldexp",
	OpLength:      "length",
	OpLerp:        "lerp",
	OpLog:         "log",
	OpLog10:       "log10",
	OpLog2:        "log2",
	OpMad:         "mad",
	OpMax:         "max",
	OpMin:         "min",
	OpModf:        "modf",
	OpMul:         "mul",
	OpNormalize:   "normalize",
	OpPow:         "pow",
	OpRadians:     "radians",
	OpRcp:         "rcp",
	OpReflect:     "reflect",
	OpRefract:     "refract",
	OpRound:       "round",
	OpRsqrt:       "rsqrt",
	OpSaturate:    "saturate",
	OpSign:        "sign",
	OpSin:         "sin",
	OpSincos:      "sincos",
	OpSinh:        "sinh",
	OpSmoothstep:  "smoothstep",
	OpSqrt:        "sqrt",
	OpStep:        "step",
	OpTan:               "tan",
	OpTanh:              "tanh",
	OpTex2D:             "tex2D",
	OpTex2DFetch:        "tex2Dfetch",
	OpTex2DGather:       "tex2Dgather",
	OpTex2DGatherOffset: "tex2Dgatheroffset",
	OpTex2DGrad:         "tex2Dgrad",
	OpTex2DLod:          "tex2Dlod",
	OpTex2DLodOffset:    "tex2Dlodoffset",
	OpTex2DOffset:       "tex2Doffset",
	OpTex2DProj:         "tex2Dproj",
	OpTex2DSize:         "tex2Dsize",
	OpTranspose:         "transpose",
	OpTrunc:             "trunc",
}

// String renders the opcode's FX source name.
func (op Opcode) String() string {
	if op < 0 || int(op) >= len(opcodeNames) || opcodeNames[op] == "" {
		return "<invalid opcode>"
	}
	return opcodeNames[op]
}

// ConstEval folds a call to a pure, compile-time-evaluable intrinsic
// given already-folded scalar float arguments, returning the folded
// scalar result. Intrinsics without an algebraic closed form (texture
// sampling, ddx/ddy, discard-adjacent ops) leave ConstEval nil and are
// never folded (spec §4.J).
type ConstEval func(args []float64) (float64, bool)

// Overload is one parameter/return signature of a Builtin.
type Overload struct {
	Params []types.Type
	Return types.Type

	// Variadic marks an overload whose last parameter position accepts
	// any number of matching trailing arguments. No catalog entry sets
	// it, and overload resolution does not read it.
	Variadic bool

	ConstEval ConstEval
}

// EvalStage restricts an intrinsic to pixel or vertex shader bodies.
// Most intrinsics are stage-agnostic (EvalStageAny).
type EvalStage uint8

const (
	EvalStageAny EvalStage = iota
	EvalStagePixelOnly
	EvalStageVertexOnly
)

// Builtin is one intrinsic function name and its overload set.
type Builtin struct {
	Name     string
	Op       Opcode
	Overloads []Overload
	Stage    EvalStage
}

// Table maps an intrinsic's source name to its catalog entry.
var Table = map[string]*Builtin{}

func register(b *Builtin) {
	Table[b.Name] = b
	if opcodeNames[b.Op] != b.Name && b.Op != OpNone {
		// Name aliasing (e.g. case-insensitive front ends) is not
		// supported: catalog entries must use their canonical spelling.
		panic("builtins: name/opcode mismatch for " + b.Name)
	}
}

func init() {
	registerTrig()
	registerExpLog()
	registerCommon()
	registerGeometric()
	registerVectorReduction()
	registerMatrix()
	registerDerivatives()
	registerBitcast()
	registerTexture()
}

func sc(b types.BaseType) types.Type { return types.Scalar(b) }

var floatScalar = sc(types.Float)

// unaryFloat builds a Builtin with one overload: (float)->float, plus
// the same shape lifted to float2/float3/float4 (spec §4.I: elementwise
// intrinsics apply componentwise across vector arities).
func unaryFloat(name string, op Opcode, eval ConstEval) *Builtin {
	b := &Builtin{Name: name, Op: op}
	b.Overloads = append(b.Overloads, Overload{Params: []types.Type{floatScalar}, Return: floatScalar, ConstEval: eval})
	for n := int8(2); n <= 4; n++ {
		v := types.Vector(types.Float, n)
		b.Overloads = append(b.Overloads, Overload{Params: []types.Type{v}, Return: v})
	}
	return b
}

// binaryFloat builds a Builtin with scalar and same-arity-vector
// overloads of (float,float)->float.
func binaryFloat(name string, op Opcode, eval func(a, b float64) (float64, bool)) *Builtin {
	var ce ConstEval
	if eval != nil {
		ce = func(args []float64) (float64, bool) {
			if len(args) != 2 {
				return 0, false
			}
			return eval(args[0], args[1])
		}
	}
	bi := &Builtin{Name: name, Op: op}
	bi.Overloads = append(bi.Overloads, Overload{Params: []types.Type{floatScalar, floatScalar}, Return: floatScalar, ConstEval: ce})
	for n := int8(2); n <= 4; n++ {
		v := types.Vector(types.Float, n)
		bi.Overloads = append(bi.Overloads, Overload{Params: []types.Type{v, v}, Return: v})
	}
	return bi
}

func registerTrig() {
	register(unaryFloat("acos", OpAcos, unary1(math.Acos)))
	register(unaryFloat("asin", OpAsin, unary1(math.Asin)))
	register(unaryFloat("cos", OpCos, unary1(math.Cos)))
	register(unaryFloat("cosh", OpCosh, unary1(math.Cosh)))
	register(unaryFloat("degrees", OpDegrees, nil))
	register(unaryFloat("radians", OpRadians, nil))
	register(unaryFloat("sin", OpSin, unary1(math.Sin)))
	register(unaryFloat("sinh", OpSinh, unary1(math.Sinh)))
	register(unaryFloat("tan", OpTan, unary1(math.Tan)))
	register(unaryFloat("tanh", OpTanh, unary1(math.Tanh)))
	register(binaryFloat("atan2", OpAtan2, func(y, x float64) (float64, bool) { return math.Atan2(y, x), true }))
	register(unaryFloat("atan", OpAtan, unary1(math.Atan)))

	sincos := &Builtin{Name: "sincos", Op: OpSincos}
	outFloat := floatScalar.WithQualifiers(types.QualOut)
	sincos.Overloads = append(sincos.Overloads, Overload{
		Params: []types.Type{floatScalar, outFloat, outFloat},
		Return: types.VoidType,
	})
	register(sincos)
}

func registerExpLog() {
	register(unaryFloat("exp", OpExp, unary1(math.Exp)))
	register(unaryFloat("exp2", OpExp2, unary1(math.Exp2)))
	register(unaryFloat("log", OpLog, unary1(math.Log)))
	register(unaryFloat("log10", OpLog10, unary1(math.Log10)))
	register(unaryFloat("log2", OpLog2, unary1(math.Log2)))
	register(binaryFloat("pow", OpPow, func(a, b float64) (float64, bool) { return math.Pow(a, b), true }))
	register(binaryFloat("ldexp", OpLdexp, nil))

	frexp := &Builtin{Name: "frexp", Op: OpFrexp}
	frexp.Overloads = append(frexp.Overloads, Overload{
		Params: []types.Type{floatScalar, floatScalar.WithQualifiers(types.QualOut)},
		Return: floatScalar,
	})
	register(frexp)

	modf := &Builtin{Name: "modf", Op: OpModf}
	modf.Overloads = append(modf.Overloads, Overload{
		Params: []types.Type{floatScalar, floatScalar.WithQualifiers(types.QualOut)},
		Return: floatScalar,
	})
	register(modf)
}

func registerCommon() {
	register(unaryFloat("abs", OpAbs, func(a []float64) (float64, bool) {
		v := a[0]
		if v < 0 {
			v = -v
		}
		return v, true
	}))
	register(unaryFloat("ceil", OpCeil, unary1(math.Ceil)))
	register(unaryFloat("floor", OpFloor, unary1(math.Floor)))
	register(unaryFloat("frac", OpFrac, nil))
	register(unaryFloat("round", OpRound, nil))
	register(unaryFloat("rsqrt", OpRsqrt, nil))
	register(unaryFloat("saturate", OpSaturate, nil))
	register(unaryFloat("sign", OpSign, unary1(func(v float64) float64 {
		switch {
		case v > 0:
			return 1
		case v < 0:
			return -1
		default:
			return 0
		}
	})))
	register(unaryFloat("sqrt", OpSqrt, unary1(math.Sqrt)))
	register(unaryFloat("trunc", OpTrunc, nil))
	register(unaryFloat("rcp", OpRcp, func(a []float64) (float64, bool) {
		if a[0] == 0 {
			return 0, false
		}
		return 1 / a[0], true
	}))
	register(binaryFloat("fmod", OpFmod, nil))
	register(binaryFloat("max", OpMax, func(a, b float64) (float64, bool) {
		if a > b {
			return a, true
		}
		return b, true
	}))
	register(binaryFloat("min", OpMin, func(a, b float64) (float64, bool) {
		if a < b {
			return a, true
		}
		return b, true
	}))
	register(binaryFloat("step", OpStep, nil))

	clamp := &Builtin{Name: "clamp", Op: OpClamp}
	clamp.Overloads = append(clamp.Overloads, Overload{
		Params: []types.Type{floatScalar, floatScalar, floatScalar},
		Return: floatScalar,
	})
	for n := int8(2); n <= 4; n++ {
		v := types.Vector(types.Float, n)
		clamp.Overloads = append(clamp.Overloads, Overload{Params: []types.Type{v, v, v}, Return: v})
	}
	register(clamp)

	lerp := &Builtin{Name: "lerp", Op: OpLerp}
	lerp.Overloads = append(lerp.Overloads, Overload{
		Params: []types.Type{floatScalar, floatScalar, floatScalar},
		Return: floatScalar,
	})
	for n := int8(2); n <= 4; n++ {
		v := types.Vector(types.Float, n)
		lerp.Overloads = append(lerp.Overloads, Overload{Params: []types.Type{v, v, v}, Return: v})
	}
	register(lerp)

	mad := &Builtin{Name: "mad", Op: OpMad}
	mad.Overloads = append(mad.Overloads, Overload{
		Params: []types.Type{floatScalar, floatScalar, floatScalar},
		Return: floatScalar,
	})
	for n := int8(2); n <= 4; n++ {
		v := types.Vector(types.Float, n)
		mad.Overloads = append(mad.Overloads, Overload{Params: []types.Type{v, v, v}, Return: v})
	}
	register(mad)

	smoothstep := &Builtin{Name: "smoothstep", Op: OpSmoothstep}
	smoothstep.Overloads = append(smoothstep.Overloads, Overload{
		Params: []types.Type{floatScalar, floatScalar, floatScalar},
		Return: floatScalar,
	})
	for n := int8(2); n <= 4; n++ {
		v := types.Vector(types.Float, n)
		smoothstep.Overloads = append(smoothstep.Overloads, Overload{Params: []types.Type{v, v, v}, Return: v})
	}
	register(smoothstep)
}

func registerGeometric() {
	cross := &Builtin{Name: "cross", Op: OpCross}
	v3 := types.Vector(types.Float, 3)
	cross.Overloads = append(cross.Overloads, Overload{Params: []types.Type{v3, v3}, Return: v3})
	register(cross)

	distance := &Builtin{Name: "distance", Op: OpDistance}
	faceforward := &Builtin{Name: "faceforward", Op: OpFaceforward}
	reflect := &Builtin{Name: "reflect", Op: OpReflect}
	refract := &Builtin{Name: "refract", Op: OpRefract}
	normalize := &Builtin{Name: "normalize", Op: OpNormalize}

	distance.Overloads = append(distance.Overloads, Overload{Params: []types.Type{floatScalar, floatScalar}, Return: floatScalar})
	normalize.Overloads = append(normalize.Overloads, Overload{Params: []types.Type{floatScalar}, Return: floatScalar})
	for n := int8(2); n <= 4; n++ {
		v := types.Vector(types.Float, n)
		distance.Overloads = append(distance.Overloads, Overload{Params: []types.Type{v, v}, Return: floatScalar})
		faceforward.Overloads = append(faceforward.Overloads, Overload{Params: []types.Type{v, v, v}, Return: v})
		reflect.Overloads = append(reflect.Overloads, Overload{Params: []types.Type{v, v}, Return: v})
		refract.Overloads = append(refract.Overloads, Overload{Params: []types.Type{v, v, floatScalar}, Return: v})
		normalize.Overloads = append(normalize.Overloads, Overload{Params: []types.Type{v}, Return: v})
	}
	register(distance)
	register(faceforward)
	register(reflect)
	register(refract)
	register(normalize)
}

func registerVectorReduction() {
	dot := &Builtin{Name: "dot", Op: OpDot}
	dot.Overloads = append(dot.Overloads, Overload{Params: []types.Type{floatScalar, floatScalar}, Return: floatScalar})
	for n := int8(2); n <= 4; n++ {
		v := types.Vector(types.Float, n)
		dot.Overloads = append(dot.Overloads, Overload{Params: []types.Type{v, v}, Return: floatScalar})
	}
	register(dot)

	length := &Builtin{Name: "length", Op: OpLength}
	length.Overloads = append(length.Overloads, Overload{Params: []types.Type{floatScalar}, Return: floatScalar})
	for n := int8(2); n <= 4; n++ {
		length.Overloads = append(length.Overloads, Overload{Params: []types.Type{types.Vector(types.Float, n)}, Return: floatScalar})
	}
	register(length)

	all := &Builtin{Name: "all", Op: OpAll}
	any := &Builtin{Name: "any", Op: OpAny}
	boolScalar := sc(types.Bool)
	all.Overloads = append(all.Overloads, Overload{Params: []types.Type{boolScalar}, Return: boolScalar})
	any.Overloads = append(any.Overloads, Overload{Params: []types.Type{boolScalar}, Return: boolScalar})
	for n := int8(2); n <= 4; n++ {
		v := types.Vector(types.Bool, n)
		all.Overloads = append(all.Overloads, Overload{Params: []types.Type{v}, Return: boolScalar})
		any.Overloads = append(any.Overloads, Overload{Params: []types.Type{v}, Return: boolScalar})
	}
	register(all)
	register(any)
}

func registerMatrix() {
	transpose := &Builtin{Name: "transpose", Op: OpTranspose}
	determinant := &Builtin{Name: "determinant", Op: OpDeterminant}
	for n := int8(2); n <= 4; n++ {
		for m := int8(2); m <= 4; m++ {
			src := types.Matrix(types.Float, n, m)
			dst := types.Matrix(types.Float, m, n)
			transpose.Overloads = append(transpose.Overloads, Overload{Params: []types.Type{src}, Return: dst})
		}
		sq := types.Matrix(types.Float, n, n)
		determinant.Overloads = append(determinant.Overloads, Overload{Params: []types.Type{sq}, Return: floatScalar})
	}
	register(transpose)
	register(determinant)

	mul := &Builtin{Name: "mul", Op: OpMul}
	// scalar*scalar, scalar*vector, vector*scalar
	mul.Overloads = append(mul.Overloads, Overload{Params: []types.Type{floatScalar, floatScalar}, Return: floatScalar})
	for n := int8(2); n <= 4; n++ {
		v := types.Vector(types.Float, n)
		mul.Overloads = append(mul.Overloads,
			Overload{Params: []types.Type{floatScalar, v}, Return: v},
			Overload{Params: []types.Type{v, floatScalar}, Return: v},
		)
	}
	// matrix*vector, vector*matrix, matrix*matrix for every compatible shape
	for rows := int8(2); rows <= 4; rows++ {
		for cols := int8(2); cols <= 4; cols++ {
			m := types.Matrix(types.Float, rows, cols)
			vCols := types.Vector(types.Float, cols)
			vRows := types.Vector(types.Float, rows)
			mul.Overloads = append(mul.Overloads,
				Overload{Params: []types.Type{m, vCols}, Return: vRows},
				Overload{Params: []types.Type{vRows, m}, Return: vCols},
			)
			for inner := int8(2); inner <= 4; inner++ {
				rhs := types.Matrix(types.Float, cols, inner)
				res := types.Matrix(types.Float, rows, inner)
				mul.Overloads = append(mul.Overloads, Overload{Params: []types.Type{m, rhs}, Return: res})
			}
		}
	}
	register(mul)
}

func registerDerivatives() {
	ddx := unaryFloat("ddx", OpDdx, nil)
	ddx.Stage = EvalStagePixelOnly
	register(ddx)
	ddy := unaryFloat("ddy", OpDdy, nil)
	ddy.Stage = EvalStagePixelOnly
	register(ddy)
	fwidth := unaryFloat("fwidth", OpFwidth, nil)
	fwidth.Stage = EvalStagePixelOnly
	register(fwidth)
}

func registerBitcast() {
	asint := &Builtin{Name: "asint", Op: OpAsInt}
	asuint := &Builtin{Name: "asuint", Op: OpAsUint}
	asfloat := &Builtin{Name: "asfloat", Op: OpAsFloat}
	asint.Overloads = append(asint.Overloads, Overload{Params: []types.Type{sc(types.Float)}, Return: sc(types.Int)})
	asint.Overloads = append(asint.Overloads, Overload{Params: []types.Type{sc(types.Uint)}, Return: sc(types.Int)})
	asuint.Overloads = append(asuint.Overloads, Overload{Params: []types.Type{sc(types.Float)}, Return: sc(types.Uint)})
	asuint.Overloads = append(asuint.Overloads, Overload{Params: []types.Type{sc(types.Int)}, Return: sc(types.Uint)})
	asfloat.Overloads = append(asfloat.Overloads, Overload{Params: []types.Type{sc(types.Int)}, Return: floatScalar})
	asfloat.Overloads = append(asfloat.Overloads, Overload{Params: []types.Type{sc(types.Uint)}, Return: floatScalar})
	register(asint)
	register(asuint)
	register(asfloat)
}

// registerTexture wires the tex2D intrinsic family (spec §4.I texture
// sampling group): tex2D, tex2Dfetch, tex2Dgather, tex2Dgatheroffset,
// tex2Dgrad, tex2Dlod, tex2Dlodoffset, tex2Doffset, tex2Dproj,
// tex2Dsize. Every sampling member takes a sampler object first. None
// carry a ConstEval: sampling is never a compile-time-constant
// operation.
func registerTexture() {
	sampler := types.Type{Base: types.Sampler}
	coord2 := types.Vector(types.Float, 2)
	coord4 := types.Vector(types.Float, 4)
	offset2 := types.Vector(types.Int, 2)
	vec4 := types.Vector(types.Float, 4)

	tex2D := &Builtin{Name: "tex2D", Op: OpTex2D}
	tex2D.Overloads = append(tex2D.Overloads, Overload{Params: []types.Type{sampler, coord2}, Return: vec4})
	register(tex2D)

	fetch := &Builtin{Name: "tex2Dfetch", Op: OpTex2DFetch}
	fetch.Overloads = append(fetch.Overloads, Overload{Params: []types.Type{sampler, types.Vector(types.Int, 3)}, Return: vec4})
	register(fetch)

	gather := &Builtin{Name: "tex2Dgather", Op: OpTex2DGather}
	gather.Overloads = append(gather.Overloads, Overload{Params: []types.Type{sampler, coord2}, Return: vec4})
	register(gather)

	gatherOffset := &Builtin{Name: "tex2Dgatheroffset", Op: OpTex2DGatherOffset}
	gatherOffset.Overloads = append(gatherOffset.Overloads, Overload{Params: []types.Type{sampler, coord2, offset2}, Return: vec4})
	register(gatherOffset)

	grad := &Builtin{Name: "tex2Dgrad", Op: OpTex2DGrad}
	grad.Overloads = append(grad.Overloads, Overload{Params: []types.Type{sampler, coord2, coord2, coord2}, Return: vec4})
	register(grad)

	lod := &Builtin{Name: "tex2Dlod", Op: OpTex2DLod}
	lod.Overloads = append(lod.Overloads, Overload{Params: []types.Type{sampler, coord4}, Return: vec4})
	register(lod)

	lodOffset := &Builtin{Name: "tex2Dlodoffset", Op: OpTex2DLodOffset}
	lodOffset.Overloads = append(lodOffset.Overloads, Overload{Params: []types.Type{sampler, coord4, offset2}, Return: vec4})
	register(lodOffset)

	offset := &Builtin{Name: "tex2Doffset", Op: OpTex2DOffset}
	offset.Overloads = append(offset.Overloads, Overload{Params: []types.Type{sampler, coord2, offset2}, Return: vec4})
	register(offset)

	proj := &Builtin{Name: "tex2Dproj", Op: OpTex2DProj}
	proj.Overloads = append(proj.Overloads, Overload{Params: []types.Type{sampler, coord4}, Return: vec4})
	register(proj)

	size := &Builtin{Name: "tex2Dsize", Op: OpTex2DSize}
	size.Overloads = append(size.Overloads, Overload{Params: []types.Type{sampler}, Return: types.Vector(types.Int, 2)})
	register(size)
}

// Lookup returns the catalog entry for name, or nil if name is not an
// intrinsic.
func Lookup(name string) *Builtin { return Table[name] }
