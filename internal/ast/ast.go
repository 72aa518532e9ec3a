// Package ast defines the FX abstract syntax tree.
//
// Every node lives in an append-only Arena and is referenced by a
// stable handle (an index into the arena's per-category slice) rather
// than a pointer, so parents can reference children without tracking
// individual lifetimes (spec §3 "Ownership"). Node kinds are tagged
// variants: a Kind discriminator selects which of a node's fields are
// meaningful, replacing virtual dispatch with an exhaustive switch at
// every consumer.
package ast

import (
	"github.com/hugodaniel/fx/internal/builtins"
	"github.com/hugodaniel/fx/internal/types"
)

// ----------------------------------------------------------------------------
// Source location
// ----------------------------------------------------------------------------

// Loc is a byte offset into the source buffer. Line/column are derived
// on demand via the diagnostic package's sourcemap, not stored here.
type Loc struct {
	Offset int32
}

// ----------------------------------------------------------------------------
// Handles
// ----------------------------------------------------------------------------

// ExprRef is a stable handle to an expression node in an Arena.
type ExprRef int32

// InvalidExpr is the "no expression" handle.
const InvalidExpr ExprRef = -1

// IsValid reports whether r refers to a real node.
func (r ExprRef) IsValid() bool { return r >= 0 }

// StmtRef is a stable handle to a statement node in an Arena.
type StmtRef int32

// InvalidStmt is the "no statement" handle.
const InvalidStmt StmtRef = -1

// IsValid reports whether r refers to a real node.
func (r StmtRef) IsValid() bool { return r >= 0 }

// DeclRef is a stable handle to a declaration node in an Arena.
type DeclRef int32

// InvalidDecl is the "no declaration" handle.
const InvalidDecl DeclRef = -1

// IsValid reports whether r refers to a real node.
func (r DeclRef) IsValid() bool { return r >= 0 }

// StructRef identifies a struct definition; it is the same handle
// space types.StructHandle uses so a Type's StructDef can be resolved
// back to the declaring ast.StructDef through an Arena.
type StructRef = types.StructHandle

// ----------------------------------------------------------------------------
// Arena
// ----------------------------------------------------------------------------

// Arena owns every node of a single compilation unit.
type Arena struct {
	Exprs   []Expr
	Stmts   []Stmt
	Decls   []Decl
	Structs []StructDef
}

// NewArena creates an empty arena.
func NewArena() *Arena {
	return &Arena{}
}

// NewExpr appends e and returns its handle.
func (a *Arena) NewExpr(e Expr) ExprRef {
	a.Exprs = append(a.Exprs, e)
	return ExprRef(len(a.Exprs) - 1)
}

// Expr dereferences an ExprRef. Panics on an invalid handle, mirroring
// the arena's "parents only ever hold handles into nodes that exist"
// invariant: an InvalidExpr should never reach Expr().
func (a *Arena) Expr(r ExprRef) *Expr { return &a.Exprs[r] }

// NewStmt appends s and returns its handle.
func (a *Arena) NewStmt(s Stmt) StmtRef {
	a.Stmts = append(a.Stmts, s)
	return StmtRef(len(a.Stmts) - 1)
}

// Stmt dereferences a StmtRef.
func (a *Arena) Stmt(r StmtRef) *Stmt { return &a.Stmts[r] }

// NewDecl appends d and returns its handle.
func (a *Arena) NewDecl(d Decl) DeclRef {
	a.Decls = append(a.Decls, d)
	return DeclRef(len(a.Decls) - 1)
}

// Decl dereferences a DeclRef.
func (a *Arena) Decl(r DeclRef) *Decl { return &a.Decls[r] }

// NewStruct appends a struct definition and returns its handle.
func (a *Arena) NewStruct(s StructDef) StructRef {
	a.Structs = append(a.Structs, s)
	return StructRef(len(a.Structs) - 1)
}

// Struct dereferences a StructRef.
func (a *Arena) Struct(r StructRef) *StructDef { return &a.Structs[r] }

// ----------------------------------------------------------------------------
// Expressions
// ----------------------------------------------------------------------------

// ExprKind discriminates the variant of an Expr record.
type ExprKind uint8

const (
	ExprLiteral ExprKind = iota
	ExprLValue
	ExprUnary
	ExprBinary
	ExprAssign
	ExprSequence
	ExprConditional
	ExprCall        // user-function call: CalleeName/Args, plus Callee/Type once resolved
	ExprIntrinsic   // post-resolution: IntrinsicOp/Args
	ExprConstructor // T(args...)
	ExprSwizzle
	ExprField
	ExprIndex
	ExprInitList
)

// LiteralKind discriminates which union member of a literal Expr is
// populated, mirroring the Token.literal_value union of spec §3.
type LiteralKind uint8

const (
	LitBool LiteralKind = iota
	LitInt
	LitUint
	LitFloat
	LitDouble
	LitString
)

// UnaryOp enumerates the unary/increment operators of spec §4.F.
type UnaryOp uint8

const (
	UnaryNot UnaryOp = iota // !
	UnaryNeg                // -
	UnaryBitNot             // ~
	UnaryPreInc
	UnaryPreDec
	UnaryPostInc
	UnaryPostDec
)

// BinaryOp enumerates every binary operator in spec §4.F's precedence
// table (excluding assignment and the comma sequence, which are their
// own Expr kinds).
type BinaryOp uint8

const (
	BinMul BinaryOp = iota
	BinDiv
	BinMod
	BinAdd
	BinSub
	BinShl
	BinShr
	BinLt
	BinGt
	BinLe
	BinGe
	BinEq
	BinNe
	BinBitAnd
	BinBitXor
	BinBitOr
	BinLogAnd
	BinLogOr
)

// AssignOp enumerates simple and compound assignment operators.
type AssignOp uint8

const (
	AssignSimple AssignOp = iota
	AssignAdd
	AssignSub
	AssignMul
	AssignDiv
	AssignMod
	AssignAnd
	AssignOr
	AssignXor
	AssignShl
	AssignShr
)

// SwizzleSet identifies which of the three swizzle-letter alphabets a
// swizzle expression was written with (spec §4.F: mixing sets errors).
type SwizzleSet uint8

const (
	SwizzleXYZW SwizzleSet = iota
	SwizzleRGBA
	SwizzleSTPQ
)

// Expr is a single FX expression node. Kind selects which fields below
// are meaningful; see the grouped comments.
type Expr struct {
	Kind ExprKind
	Loc  Loc
	Type types.Type

	// IsConst marks a node the constant folder has reduced to (or
	// recognized as) a compile-time literal value. Only ExprLiteral
	// nodes may have IsConst set to true by construction; other kinds
	// carry it only transiently before folding replaces them.
	IsConst bool

	// --- ExprLiteral ---
	LitKind   LiteralKind
	IntVal    int64
	UintVal   uint64
	FloatVal  float64
	DoubleVal float64
	BoolVal   bool
	StringVal string

	// --- ExprLValue ---
	Ref  DeclRef // resolved declaration (InvalidDecl before binding)
	Name string  // identifier as written

	// --- ExprUnary ---
	UnOp    UnaryOp
	Operand ExprRef

	// --- ExprBinary ---
	BinOp BinaryOp
	Left  ExprRef
	Right ExprRef

	// --- ExprAssign ---
	AssignOp AssignOp
	Target   ExprRef
	Value    ExprRef

	// --- ExprSequence ---
	Items []ExprRef

	// --- ExprConditional ---
	Cond ExprRef
	Then ExprRef
	Else ExprRef

	// --- ExprCall / ExprIntrinsic ---
	CalleeName      string
	CalleeNamespace string // namespace path active at the call site
	Callee          DeclRef
	IntrinsicOp     builtins.Opcode
	Args            []ExprRef

	// --- ExprConstructor ---
	ConstructType types.Type

	// --- ExprSwizzle ---
	Base           ExprRef
	SwizzleChars   string
	SwizzleSetKind SwizzleSet
	SwizzleIndices []int8

	// --- ExprField ---
	FieldBase  ExprRef
	FieldName  string
	FieldIndex int

	// --- ExprIndex ---
	IndexBase ExprRef
	IndexExpr ExprRef

	// --- ExprInitList ---
	InitItems []ExprRef
}

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

// StmtKind discriminates the variant of a Stmt record.
type StmtKind uint8

const (
	StmtBlock StmtKind = iota
	StmtExpr
	StmtDeclList
	StmtIf
	StmtSwitch
	StmtFor
	StmtWhile
	StmtReturn
	StmtJump
	StmtEmpty
)

// JumpKind distinguishes break from continue.
type JumpKind uint8

const (
	JumpBreak JumpKind = iota
	JumpContinue
)

// CaseLabel is one label attached to a switch case; a case may carry
// several (fallthrough-by-grouping is expressed as multiple labels on
// one body in the original FX grammar, not as C fallthrough).
type CaseLabel struct {
	IsDefault bool
	Value     ExprRef // literal numeric expression; invalid if IsDefault
}

// SwitchCase is one `case L1: case L2: ... body` group.
type SwitchCase struct {
	Labels []CaseLabel
	Body   []StmtRef
}

// Stmt is a single FX statement node.
type Stmt struct {
	Kind       StmtKind
	Loc        Loc
	Attributes []string // `[name]` attributes attached to this statement

	// --- StmtBlock ---
	Stmts []StmtRef

	// --- StmtExpr ---
	Expr ExprRef

	// --- StmtDeclList ---
	Decls []DeclRef

	// --- StmtIf ---
	Cond StmtCond
	Then StmtRef
	Else StmtRef // InvalidStmt if no else branch

	// --- StmtSwitch ---
	SwitchExpr ExprRef
	Cases      []SwitchCase

	// --- StmtFor ---
	Init    StmtRef // InvalidStmt if omitted
	ForCond ExprRef // InvalidExpr if omitted
	Post    ExprRef // InvalidExpr if omitted
	Body    StmtRef

	// --- StmtWhile ---
	WhileCond ExprRef
	WhileBody StmtRef
	DoWhile   bool

	// --- StmtReturn ---
	Value   ExprRef // InvalidExpr for a bare `return;`
	Discard bool    // `discard;` instead of `return;`

	// --- StmtJump ---
	Jump JumpKind
}

// StmtCond is kept as a thin alias of ExprRef; If's condition is always
// a scalar expression (spec §4.G), so no extra fields are needed beyond
// the expression handle itself. Named for readability at call sites.
type StmtCond = ExprRef

// ----------------------------------------------------------------------------
// Declarations
// ----------------------------------------------------------------------------

// DeclKind discriminates the variant of a Decl record.
type DeclKind uint8

const (
	DeclVariable DeclKind = iota
	DeclStruct
	DeclFunction
	DeclTechnique
	DeclPass
)

// Annotation is one `name = literal` entry inside a `< ... >` block.
type Annotation struct {
	Name  string
	Value ExprRef // always a literal expression
}

// Param is one function parameter.
type Param struct {
	Loc      Loc
	Name     string
	Type     types.Type
	Semantic string
}

// PassState is one `Key = Value;` entry inside a `pass { ... }` block.
type PassState struct {
	Name  string
	Value ExprRef
}

// StructDef is a struct's field list, referenced from types.Type via
// StructDef when Base==Struct.
type StructDef struct {
	Loc       Loc
	Name      string
	Namespace string
	Fields    []DeclRef // each a DeclVariable
}

// Decl is a single FX declaration node (variable, struct, function,
// technique, or pass).
type Decl struct {
	Kind      DeclKind
	Loc       Loc
	Name      string
	Namespace string // namespace path active when this was declared
	Type      types.Type
	Semantic  string // upper-cased per spec §4.G
	Annotations []Annotation

	// --- DeclVariable ---
	Initializer ExprRef             // InvalidExpr if none
	Properties  map[string]ExprRef  // texture/sampler property block
	SawTwice    types.Qualifier     // qualifier bits seen more than once (X3048)

	// --- DeclFunction ---
	Params         []Param
	ReturnType     types.Type
	ReturnSemantic string
	Body           StmtRef // InvalidStmt for a prototype with no body
	IsPrototype    bool

	// --- DeclStruct ---
	StructDef StructRef

	// --- DeclTechnique ---
	Passes []DeclRef

	// --- DeclPass ---
	States []PassState
}

// ----------------------------------------------------------------------------
// Module — the root of a compilation unit (spec §6)
// ----------------------------------------------------------------------------

// Module is the parser's output: four declaration lists in source
// order and the arena that owns every node they reference. The
// namespace path of a declaration is kept on the Decl itself.
type Module struct {
	Arena *Arena

	Structs    []DeclRef
	Uniforms   []DeclRef
	Functions  []DeclRef
	Techniques []DeclRef
}
