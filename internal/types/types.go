// Package types implements the FX type system: scalar/vector/matrix/
// struct/sampler/texture/string classification, the qualifier bitset,
// the implicit-conversion rank table, and the handful of predicates the
// parser and overload resolver need (is-scalar, is-numeric, ...).
package types

import (
	"fmt"
	"strconv"
	"strings"
)

// BaseType is the scalar/aggregate kind a Type is built from.
type BaseType uint8

const (
	Void BaseType = iota
	Bool
	Int
	Uint
	Float
	StringType
	Sampler
	Texture
	Struct
)

func (b BaseType) String() string {
	switch b {
	case Void:
		return "void"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Uint:
		return "uint"
	case Float:
		return "float"
	case StringType:
		return "string"
	case Sampler:
		return "sampler"
	case Texture:
		return "texture"
	case Struct:
		return "struct"
	default:
		return "?"
	}
}

// Qualifier is a bitset over the FX storage/interpolation qualifiers.
type Qualifier uint16

const (
	QualExtern Qualifier = 1 << iota
	QualStatic
	QualUniform
	QualVolatile
	QualPrecise
	QualIn
	QualOut
	QualConst
	QualLinear
	QualNoperspective
	QualCentroid
	QualNointerpolation
)

// QualInout is exactly QualIn|QualOut, per spec §3's invariant.
const QualInout = QualIn | QualOut

// Has reports whether all bits of mask are set.
func (q Qualifier) Has(mask Qualifier) bool { return q&mask == mask }

// Any reports whether any bit of mask is set.
func (q Qualifier) Any(mask Qualifier) bool { return q&mask != 0 }

var qualifierNames = []struct {
	bit  Qualifier
	name string
}{
	{QualExtern, "extern"},
	{QualStatic, "static"},
	{QualUniform, "uniform"},
	{QualVolatile, "volatile"},
	{QualPrecise, "precise"},
	{QualConst, "const"},
	{QualLinear, "linear"},
	{QualNoperspective, "noperspective"},
	{QualCentroid, "centroid"},
	{QualNointerpolation, "nointerpolation"},
}

func (q Qualifier) String() string {
	if q.Has(QualInout) {
		var names []string
		names = append(names, "inout")
		for _, qn := range qualifierNames {
			if q.Has(qn.bit) {
				names = append(names, qn.name)
			}
		}
		return strings.Join(names, " ")
	}
	var names []string
	if q.Has(QualIn) {
		names = append(names, "in")
	}
	if q.Has(QualOut) {
		names = append(names, "out")
	}
	for _, qn := range qualifierNames {
		if q.Has(qn.bit) {
			names = append(names, qn.name)
		}
	}
	return strings.Join(names, " ")
}

// StructHandle identifies a struct definition in the AST arena by its
// index, starting at 0; InvalidStruct marks the absence of one.
type StructHandle int32

// InvalidStruct is the sentinel for "no struct definition".
const InvalidStruct StructHandle = -1

// Type is the product type of spec §3: (basetype, rows, cols,
// array_length, qualifiers, struct_definition?).
type Type struct {
	Base       BaseType
	Rows       int8
	Cols       int8
	ArrayLen   int32 // 0 = not array, -1 = unsized T[], >0 = fixed length
	Qualifiers Qualifier
	StructDef  StructHandle // valid only when Base == Struct
}

// Scalar builds a scalar type of the given base.
func Scalar(base BaseType) Type { return Type{Base: base, Rows: 1, Cols: 1} }

// Vector builds a vector type of the given base and row count (2..4).
func Vector(base BaseType, n int8) Type { return Type{Base: base, Rows: n, Cols: 1} }

// Matrix builds a matrix type of the given base and row/col counts.
func Matrix(base BaseType, rows, cols int8) Type { return Type{Base: base, Rows: rows, Cols: cols} }

// VoidType is the canonical void type (rows=cols=0 per spec §3 invariant).
var VoidType = Type{Base: Void}

// StructType builds a struct type referencing def.
func StructType(def StructHandle) Type { return Type{Base: Struct, StructDef: def} }

// IsVoid reports whether t is void.
func (t Type) IsVoid() bool { return t.Base == Void }

// IsArray reports whether t is an array (fixed or unsized) of its
// element shape.
func (t Type) IsArray() bool { return t.ArrayLen != 0 }

// IsUnsizedArray reports whether t is an unsized array (T[]).
func (t Type) IsUnsizedArray() bool { return t.ArrayLen == -1 }

// IsNumericBase reports whether b is one of bool/int/uint/float.
func IsNumericBase(b BaseType) bool {
	return b == Bool || b == Int || b == Uint || b == Float
}

// IsNumeric reports whether t is a (possibly vector/matrix) bool/int/
// uint/float value, not an array.
func (t Type) IsNumeric() bool { return !t.IsArray() && IsNumericBase(t.Base) }

// IsIntegral reports whether t's base is int or uint (spec §4.F:
// bitwise ops require integral operands).
func (t Type) IsIntegral() bool { return !t.IsArray() && (t.Base == Int || t.Base == Uint) }

// IsScalar reports rows==cols==1 on a numeric/bool type.
func (t Type) IsScalar() bool { return t.IsNumeric() && t.Rows == 1 && t.Cols == 1 }

// IsVector reports rows>1, cols==1 on a numeric type.
func (t Type) IsVector() bool { return t.IsNumeric() && t.Rows > 1 && t.Cols == 1 }

// IsMatrix reports rows>=1, cols>1 on a numeric type.
func (t Type) IsMatrix() bool { return t.IsNumeric() && t.Cols > 1 }

// IsStruct reports whether t is a struct type.
func (t Type) IsStruct() bool { return t.Base == Struct }

// IsSampler reports whether t is one of the sampler object types.
func (t Type) IsSampler() bool { return t.Base == Sampler }

// IsTexture reports whether t is one of the texture object types.
func (t Type) IsTexture() bool { return t.Base == Texture }

// IsObject reports whether t is a sampler or texture (opaque object
// types that cannot be locals, per spec §4.G).
func (t Type) IsObject() bool { return t.IsSampler() || t.IsTexture() }

// ElementCount returns rows*cols, the number of scalar components.
func (t Type) ElementCount() int { return int(t.Rows) * int(t.Cols) }

// WithQualifiers returns a copy of t with q merged in.
func (t Type) WithQualifiers(q Qualifier) Type {
	t.Qualifiers |= q
	return t
}

// Unqualified returns a copy of t with all qualifiers cleared. Used
// when comparing shapes (conversion rank never depends on qualifiers).
func (t Type) Unqualified() Type {
	t.Qualifiers = 0
	return t
}

// Equal reports whether two types denote the same shape: same base,
// rows, cols, array length (including unsized-vs-unsized), and, for
// structs, the same definition handle. Qualifiers are ignored, as are
// they for Rank's perfect-match case (spec §8 property 5).
func (t Type) Equal(other Type) bool {
	if t.Base != other.Base || t.Rows != other.Rows || t.Cols != other.Cols {
		return false
	}
	if t.ArrayLen != other.ArrayLen {
		return false
	}
	if t.Base == Struct {
		return t.StructDef == other.StructDef
	}
	return true
}

// String renders t in FX source syntax, e.g. "float4x4", "int[4]",
// "uint[]". Struct names are not known at this layer; callers needing
// a struct's name should format it themselves using StructDef.
func (t Type) String() string {
	var base string
	switch {
	case t.Base == Void:
		base = "void"
	case t.Base == StringType:
		base = "string"
	case t.Base == Sampler, t.Base == Texture:
		base = t.Base.String()
	case t.Base == Struct:
		base = "struct"
	case t.Rows == 1 && t.Cols == 1:
		base = t.Base.String()
	case t.Cols == 1:
		base = t.Base.String() + strconv.Itoa(int(t.Rows))
	default:
		base = fmt.Sprintf("%s%dx%d", t.Base.String(), t.Rows, t.Cols)
	}
	switch {
	case t.ArrayLen == -1:
		return base + "[]"
	case t.ArrayLen > 0:
		return fmt.Sprintf("%s[%d]", base, t.ArrayLen)
	default:
		return base
	}
}

// ----------------------------------------------------------------------------
// Conversion rank (spec §4.D)
// ----------------------------------------------------------------------------

// numericIndex maps bool/int/uint/float onto the 0..3 row/column index
// of baseRankTable, in the order spec §4.D lists them.
func numericIndex(b BaseType) int {
	switch b {
	case Bool:
		return 0
	case Int:
		return 1
	case Uint:
		return 2
	case Float:
		return 3
	default:
		return -1
	}
}

// baseRankTable[src][dst] is the "badness" shift for converting between
// numeric base types, per spec §4.D. It is shifted left 2 bits to form
// the base rank, and OR'd with a shape penalty.
var baseRankTable = [4][4]uint32{
	/*      bool int uint float */
	/*bool*/ {0, 5, 5, 5},
	/*int*/ {4, 0, 3, 5},
	/*uint*/ {4, 2, 0, 5},
	/*float*/ {4, 4, 4, 0},
}

const (
	shapeScalarToVector uint32 = 2
	shapeNarrowing      uint32 = 32
)

// Rank computes the implicit-conversion rank from src to dst. Zero
// means "not implicitly convertible". A lower non-zero rank is a
// better match; 1 means a perfect match and beats every non-perfect
// rank (spec §8 property 5: Rank(T,U)==1 iff T==U). The one exception
// is arrays: an unsized array also ranks 1 against a sized array of the
// same element type, although the two are not Equal.
func Rank(src, dst Type) uint32 {
	if src.IsArray() || dst.IsArray() {
		if src.Base != dst.Base || src.Rows != dst.Rows || src.Cols != dst.Cols {
			return 0
		}
		if src.Base == Struct && src.StructDef != dst.StructDef {
			return 0
		}
		if src.ArrayLen == dst.ArrayLen {
			return 1
		}
		if src.ArrayLen == -1 || dst.ArrayLen == -1 {
			return 1
		}
		return 0
	}

	if src.Base == Struct || dst.Base == Struct {
		if src.Base == Struct && dst.Base == Struct && src.StructDef == dst.StructDef {
			return 1
		}
		return 0
	}

	if src.Equal(dst) {
		return 1
	}

	if !IsNumericBase(src.Base) || !IsNumericBase(dst.Base) {
		return 0
	}

	sameShape := src.Rows == dst.Rows && src.Cols == dst.Cols
	srcScalar := src.Rows == 1 && src.Cols == 1
	dstScalar := dst.Rows == 1 && dst.Cols == 1

	var shape uint32
	switch {
	case sameShape:
		shape = 0
	case srcScalar && !dstScalar:
		shape = shapeScalarToVector
	case !srcScalar && dstScalar:
		shape = shapeNarrowing
	case !srcScalar && !dstScalar && src.Cols == dst.Cols && dst.Rows <= src.Rows:
		shape = shapeNarrowing
	default:
		return 0
	}

	si, di := numericIndex(src.Base), numericIndex(dst.Base)
	base := baseRankTable[si][di] << 2
	return base | shape
}

// IsTruncating reports whether converting src to dst per Rank drops
// components (used to decide whether to emit warning X3206).
func IsTruncating(src, dst Type) bool {
	if src.IsArray() || dst.IsArray() || src.Base == Struct || dst.Base == Struct {
		return false
	}
	return dst.Rows < src.Rows || dst.Cols < src.Cols
}
