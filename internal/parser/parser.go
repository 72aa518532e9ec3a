// Package parser turns FX source text into a typed, name-resolved,
// constant-folded AST (spec components F, G, K). It drives the lexer
// synchronously through peek/consume/accept/expect, builds nodes in an
// ast.Arena, resolves identifiers against a symtab.Table, picks
// callees via the resolve package, and passes each unary, binary, cast,
// constructor and intrinsic-call node through constfold as soon as it
// is built. Other nodes (variable references, swizzles, field and index
// accesses, conditionals, assignments) are not folded on their own; a
// const variable reference is folded only as an operand of a folded node.
package parser

import (
	"strings"

	"github.com/hugodaniel/fx/internal/ast"
	"github.com/hugodaniel/fx/internal/builtins"
	"github.com/hugodaniel/fx/internal/constfold"
	"github.com/hugodaniel/fx/internal/diagnostic"
	"github.com/hugodaniel/fx/internal/lexer"
	"github.com/hugodaniel/fx/internal/resolve"
	"github.com/hugodaniel/fx/internal/symtab"
	"github.com/hugodaniel/fx/internal/types"
)

// Parser holds all state for one compilation unit. It is used once:
// the package-level Parse constructs one with New, runs it over the
// whole source, and discards it.
type Parser struct {
	lex   *lexer.Lexer
	arena *ast.Arena
	syms  *symtab.Table
	diags *diagnostic.Sink

	module ast.Module
}

// New creates a parser over source.
func New(source string) *Parser {
	arena := ast.NewArena()
	return &Parser{
		lex:   lexer.New(source),
		arena: arena,
		syms:  symtab.New(),
		diags: diagnostic.New("", source),
		module: ast.Module{
			Arena: arena,
		},
	}
}

// Parse runs the parser to completion and returns the resulting module
// and diagnostic sink (spec §6's external interface).
func Parse(source string) (*ast.Module, *diagnostic.Sink) {
	p := New(source)
	for p.lex.Peek() != lexer.TokEOF {
		p.parseTopLevel()
	}
	return &p.module, p.diags
}

// ----------------------------------------------------------------------------
// Error helpers
// ----------------------------------------------------------------------------

func (p *Parser) errorf(code diagnostic.Code, format string, args ...any) {
	p.diags.Errorf(p.lex.Pos(), code, format, args...)
}

func (p *Parser) warnf(code diagnostic.Code, format string, args ...any) {
	p.diags.Warnf(p.lex.Pos(), code, format, args...)
}

func (p *Parser) loc() ast.Loc { return ast.Loc{Offset: int32(p.lex.Pos())} }

// expect consumes id or emits a syntax error and returns false without
// consuming, mirroring the driver contract of spec §4.K.
func (p *Parser) expect(id lexer.TokenKind) bool {
	return p.lex.Expect(id, func(got lexer.Token, want lexer.TokenKind) {
		p.errorf(diagnostic.X3000, "unexpected token %s, expected %s", got.Kind, want)
	})
}

// recover skips to the next statement/declaration terminator so one
// malformed construct does not cascade into every token after it.
func (p *Parser) recover() {
	p.lex.ConsumeUntil(lexer.TokSemicolon)
}

// ----------------------------------------------------------------------------
// Top level
// ----------------------------------------------------------------------------

func (p *Parser) parseTopLevel() {
	switch p.lex.Peek() {
	case lexer.TokKwNamespace:
		p.parseNamespace()
	case lexer.TokKwStruct:
		p.parseStructDecl(true)
	case lexer.TokKwTechnique:
		p.parseTechnique()
	case lexer.TokSemicolon:
		p.lex.Consume()
	default:
		p.parseTypeLeadDecl(true)
	}
}

func (p *Parser) parseNamespace() {
	p.lex.Consume() // 'namespace'
	nameTok := p.lex.Consume()
	if nameTok.Kind != lexer.TokIdent {
		p.errorf(diagnostic.X3000, "expected identifier after 'namespace'")
		p.recover()
		return
	}
	if !p.expect(lexer.TokLBrace) {
		return
	}
	p.syms.EnterNamespace(nameTok.Value)
	for p.lex.Peek() != lexer.TokRBrace && p.lex.Peek() != lexer.TokEOF {
		p.parseTopLevel()
	}
	p.syms.LeaveNamespace(nameTok.Value)
	p.expect(lexer.TokRBrace)
}

// ----------------------------------------------------------------------------
// Qualifiers
// ----------------------------------------------------------------------------

var qualifierKeywords = map[lexer.TokenKind]types.Qualifier{
	lexer.TokKwExtern:          types.QualExtern,
	lexer.TokKwStatic:          types.QualStatic,
	lexer.TokKwUniform:         types.QualUniform,
	lexer.TokKwVolatile:        types.QualVolatile,
	lexer.TokKwPrecise:         types.QualPrecise,
	lexer.TokKwIn:              types.QualIn,
	lexer.TokKwOut:             types.QualOut,
	lexer.TokKwInout:           types.QualInout,
	lexer.TokKwConst:           types.QualConst,
	lexer.TokKwLinear:          types.QualLinear,
	lexer.TokKwNoperspective:   types.QualNoperspective,
	lexer.TokKwCentroid:        types.QualCentroid,
	lexer.TokKwNointerpolation: types.QualNointerpolation,
}

// parseQualifiers consumes every leading qualifier keyword, returning
// the merged bitset and the subset seen more than once (the X3048
// duplicate-qualifier warning).
func (p *Parser) parseQualifiers() (types.Qualifier, types.Qualifier) {
	var q, seenTwice types.Qualifier
	for {
		bit, ok := qualifierKeywords[p.lex.Peek()]
		if !ok {
			return q, seenTwice
		}
		p.lex.Consume()
		if q.Has(bit) {
			seenTwice |= bit
		}
		q |= bit
	}
}

// ----------------------------------------------------------------------------
// Types
// ----------------------------------------------------------------------------

// tryParseType attempts to parse a type specifier at the current
// position, returning ok=false (and consuming nothing) if the next
// token cannot start one.
func (p *Parser) tryParseType() (types.Type, bool) {
	switch p.lex.Peek() {
	case lexer.TokType:
		tok := p.lex.Consume()
		return types.Type{Base: baseFromName(tok.TypeBase), Rows: int8(tok.TypeRows), Cols: int8(tok.TypeCols)}, true
	case lexer.TokKwVoid:
		p.lex.Consume()
		return types.VoidType, true
	case lexer.TokKwString:
		p.lex.Consume()
		return types.Type{Base: types.StringType, Rows: 1, Cols: 1}, true
	case lexer.TokKwTexture1D, lexer.TokKwTexture2D, lexer.TokKwTexture3D:
		p.lex.Consume()
		return types.Type{Base: types.Texture}, true
	case lexer.TokKwSampler1D, lexer.TokKwSampler2D, lexer.TokKwSampler3D:
		p.lex.Consume()
		return types.Type{Base: types.Sampler}, true
	case lexer.TokKwVector:
		return p.parseGenericVector(), true
	case lexer.TokKwMatrix:
		return p.parseGenericMatrix(), true
	case lexer.TokIdent:
		return p.tryParseStructTypeName()
	}
	return types.Type{}, false
}

func baseFromName(name string) types.BaseType {
	switch name {
	case "bool":
		return types.Bool
	case "int":
		return types.Int
	case "uint":
		return types.Uint
	default:
		return types.Float
	}
}

// tryParseStructTypeName speculatively consumes an identifier only if
// it names a previously declared struct; otherwise it backs out so the
// identifier can be reinterpreted as an expression (e.g. a function
// call statement).
func (p *Parser) tryParseStructTypeName() (types.Type, bool) {
	p.lex.Backup()
	tok := p.lex.Consume()
	decl, found := p.syms.Find(tok.Value, p.syms.Current(), false)
	if !found || p.arena.Decl(decl).Kind != ast.DeclStruct {
		p.lex.Restore()
		return types.Type{}, false
	}
	return types.StructType(p.arena.Decl(decl).StructDef), true
}

// parseGenericVector handles the HLSL template form vector<T,N>,
// falling back to a bare float4 when the template arguments are
// omitted (the untemplated "vector" spelling some effect files use).
func (p *Parser) parseGenericVector() types.Type {
	p.lex.Consume() // 'vector'
	base, n := types.Float, int8(4)
	if p.lex.Accept(lexer.TokLt) {
		if t, ok := p.tryParseType(); ok {
			base = t.Base
		}
		if p.lex.Accept(lexer.TokComma) {
			if tok := p.lex.Consume(); tok.Kind == lexer.TokIntLiteral {
				n = int8(tok.IntValue)
			}
		}
		p.expect(lexer.TokGt)
	}
	return types.Vector(base, n)
}

func (p *Parser) parseGenericMatrix() types.Type {
	p.lex.Consume() // 'matrix'
	base, rows, cols := types.Float, int8(4), int8(4)
	if p.lex.Accept(lexer.TokLt) {
		if t, ok := p.tryParseType(); ok {
			base = t.Base
		}
		if p.lex.Accept(lexer.TokComma) {
			if tok := p.lex.Consume(); tok.Kind == lexer.TokIntLiteral {
				rows = int8(tok.IntValue)
			}
		}
		if p.lex.Accept(lexer.TokComma) {
			if tok := p.lex.Consume(); tok.Kind == lexer.TokIntLiteral {
				cols = int8(tok.IntValue)
			}
		}
		p.expect(lexer.TokGt)
	}
	return types.Matrix(base, rows, cols)
}

// ----------------------------------------------------------------------------
// Struct declarations
// ----------------------------------------------------------------------------

func (p *Parser) parseStructDecl(topLevel bool) ast.DeclRef {
	loc := p.loc()
	p.lex.Consume() // 'struct'
	name := ""
	if p.lex.Peek() == lexer.TokIdent {
		name = p.lex.Consume().Value
	}
	if !p.expect(lexer.TokLBrace) {
		return ast.InvalidDecl
	}

	var fields []ast.DeclRef
	for p.lex.Peek() != lexer.TokRBrace && p.lex.Peek() != lexer.TokEOF {
		fields = append(fields, p.parseStructMember()...)
	}
	p.expect(lexer.TokRBrace)
	if topLevel {
		p.expect(lexer.TokSemicolon)
	}
	if len(fields) == 0 {
		p.warnf(diagnostic.X5001, "struct %q has no members", name)
	}

	sd := p.arena.NewStruct(ast.StructDef{Loc: loc, Name: name, Namespace: p.syms.Current().Namespace, Fields: fields})
	decl := p.arena.NewDecl(ast.Decl{Kind: ast.DeclStruct, Loc: loc, Name: name, Type: types.StructType(sd), StructDef: sd})
	if name != "" && !p.syms.Insert(name, decl, false, true) {
		p.errorf(diagnostic.X3003, "redefinition of %q", name)
	}
	if topLevel {
		p.module.Structs = append(p.module.Structs, decl)
	}
	return decl
}

func (p *Parser) parseStructMember() []ast.DeclRef {
	q, _ := p.parseQualifiers()
	if q.Has(types.QualIn) || q.Has(types.QualOut) {
		p.errorf(diagnostic.X3055, "in/out not allowed on a struct member")
	}
	t, ok := p.tryParseType()
	if !ok {
		p.errorf(diagnostic.X3000, "expected a type in struct member declaration")
		p.recover()
		return nil
	}
	if t.IsVoid() {
		p.errorf(diagnostic.X3038, "struct member cannot be void")
	}
	var out []ast.DeclRef
	for {
		nameTok := p.lex.Consume()
		if nameTok.Kind != lexer.TokIdent {
			p.errorf(diagnostic.X3000, "expected member name")
			break
		}
		memberType := t.WithQualifiers(q)
		memberType = p.parseArraySuffix(memberType)
		semantic := p.parseOptionalSemantic()
		decl := p.arena.NewDecl(ast.Decl{
			Kind: ast.DeclVariable, Loc: p.loc(), Name: nameTok.Value,
			Type: memberType, Semantic: semantic,
		})
		out = append(out, decl)
		if !p.lex.Accept(lexer.TokComma) {
			break
		}
	}
	p.expect(lexer.TokSemicolon)
	return out
}

// parseArraySuffix consumes one "[N]" or "[]" suffix, merging it into
// t's array dimension (FX has no genuine multi-dimensional arrays).
func (p *Parser) parseArraySuffix(t types.Type) types.Type {
	if p.lex.Peek() != lexer.TokLBracket {
		return t
	}
	p.lex.Consume()
	if p.lex.Accept(lexer.TokRBracket) {
		t.ArrayLen = -1
		return t
	}
	tok := p.lex.Consume()
	if tok.Kind != lexer.TokIntLiteral {
		p.errorf(diagnostic.X3058, "array dimension must be an integer literal")
		p.expect(lexer.TokRBracket)
		return t
	}
	n := tok.IntValue
	if n < 1 || n > 65536 {
		p.errorf(diagnostic.X3059, "array dimension %d out of range [1, 65536]", n)
	}
	t.ArrayLen = int32(n)
	p.expect(lexer.TokRBracket)
	return t
}

func (p *Parser) parseOptionalSemantic() string {
	if !p.lex.Accept(lexer.TokColon) {
		return ""
	}
	tok := p.lex.Consume()
	return strings.ToUpper(tok.Value)
}

// ----------------------------------------------------------------------------
// Variable / function declarations
// ----------------------------------------------------------------------------

// parseTypeLeadDecl handles the "type ident ..." top-level production:
// either a function definition (name followed by '(') or one or more
// variable declarators.
func (p *Parser) parseTypeLeadDecl(topLevel bool) {
	loc := p.loc()
	q, dup := p.parseQualifiers()
	t, ok := p.tryParseType()
	if !ok {
		p.errorf(diagnostic.X3000, "expected a type")
		p.recover()
		return
	}
	nameTok := p.lex.Consume()
	if nameTok.Kind != lexer.TokIdent {
		p.errorf(diagnostic.X3000, "expected a declarator name")
		p.recover()
		return
	}
	if p.lex.Peek() == lexer.TokLParen {
		p.parseFunctionDecl(loc, t, nameTok.Value)
		return
	}
	p.parseVariableDeclList(loc, q, dup, t, nameTok.Value, topLevel)
}

func (p *Parser) parseFunctionDecl(loc ast.Loc, ret types.Type, name string) {
	p.lex.Consume() // '('
	var params []ast.Param
	if p.lex.Peek() != lexer.TokRParen {
		for {
			params = append(params, p.parseParam())
			if !p.lex.Accept(lexer.TokComma) {
				break
			}
		}
	}
	p.expect(lexer.TokRParen)
	semantic := p.parseOptionalSemantic()
	if ret.IsVoid() && semantic != "" {
		p.errorf(diagnostic.X3076, "void function cannot have a semantic")
	}

	decl := p.arena.NewDecl(ast.Decl{
		Kind: ast.DeclFunction, Loc: loc, Name: name, Namespace: p.syms.Current().Namespace,
		Type: ret, ReturnType: ret, ReturnSemantic: semantic, Params: params, Body: ast.InvalidStmt,
	})
	p.syms.Insert(name, decl, true, true)

	if p.lex.Peek() == lexer.TokSemicolon {
		p.lex.Consume()
		p.arena.Decl(decl).IsPrototype = true
		p.module.Functions = append(p.module.Functions, decl)
		return
	}

	p.syms.EnterScope(decl)
	for _, param := range params {
		pd := p.arena.NewDecl(ast.Decl{Kind: ast.DeclVariable, Loc: param.Loc, Name: param.Name, Type: param.Type, Semantic: param.Semantic})
		p.syms.Insert(param.Name, pd, false, false)
	}
	body := p.parseBlock(false)
	p.syms.LeaveScope()

	p.arena.Decl(decl).Body = body
	p.module.Functions = append(p.module.Functions, decl)
}

func (p *Parser) parseParam() ast.Param {
	loc := p.loc()
	q, _ := p.parseQualifiers()
	t, ok := p.tryParseType()
	if !ok {
		p.errorf(diagnostic.X3000, "expected a parameter type")
		return ast.Param{Loc: loc}
	}
	if q.Has(types.QualConst) && q.Has(types.QualOut) {
		p.errorf(diagnostic.X3046, "output parameter cannot be declared const")
	}
	name := ""
	if p.lex.Peek() == lexer.TokIdent {
		name = p.lex.Consume().Value
	}
	t = t.WithQualifiers(q)
	t = p.parseArraySuffix(t)
	semantic := p.parseOptionalSemantic()
	return ast.Param{Loc: loc, Name: name, Type: t, Semantic: semantic}
}

func (p *Parser) parseVariableDeclList(loc ast.Loc, q, dup types.Qualifier, t types.Type, firstName string, topLevel bool) {
	name := firstName
	for {
		decl := p.parseVariableDeclarator(loc, q, dup, t, name, topLevel)
		if topLevel {
			p.module.Uniforms = append(p.module.Uniforms, decl)
		}
		if !p.lex.Accept(lexer.TokComma) {
			break
		}
		nameTok := p.lex.Consume()
		name = nameTok.Value
		loc = p.loc()
	}
	p.expect(lexer.TokSemicolon)
}

func (p *Parser) parseVariableDeclarator(loc ast.Loc, q, dup types.Qualifier, baseType types.Type, name string, topLevel bool) ast.DeclRef {
	if dup != 0 {
		p.warnf(diagnostic.X3048, "duplicate qualifier %s on %q", dup, name)
	}
	if topLevel && q&(types.QualExtern|types.QualUniform|types.QualStatic) == 0 && !baseType.IsObject() {
		q |= types.QualExtern | types.QualUniform
		p.warnf(diagnostic.X5000, "%q implicitly extern uniform", name)
	}
	if !topLevel {
		if q.Has(types.QualExtern) {
			p.errorf(diagnostic.X3006, "%q: extern not allowed on a local", name)
		}
		if q.Has(types.QualUniform) {
			p.errorf(diagnostic.X3047, "%q: uniform not allowed on a local", name)
		}
		if baseType.IsObject() {
			p.errorf(diagnostic.X3038, "%q: textures/samplers cannot be local variables", name)
		}
	}

	t := baseType.WithQualifiers(q)
	t = p.parseArraySuffix(t)
	semantic := p.parseOptionalSemantic()
	annotations := p.parseOptionalAnnotations()

	decl := p.arena.NewDecl(ast.Decl{
		Kind: ast.DeclVariable, Loc: loc, Name: name, Namespace: p.syms.Current().Namespace,
		Type: t, Semantic: semantic, Annotations: annotations, Initializer: ast.InvalidExpr,
		SawTwice: dup,
	})

	if p.lex.Peek() == lexer.TokLBrace && t.IsObject() {
		p.arena.Decl(decl).Properties = p.parsePropertyBlock()
	} else if p.lex.Accept(lexer.TokEq) {
		init := p.parseAssignExpr()
		p.arena.Decl(decl).Initializer = init
	} else if q.Has(types.QualConst) {
		p.errorf(diagnostic.X3012, "%q: const requires an initializer", name)
	}

	if !p.syms.Insert(name, decl, false, topLevel) {
		p.errorf(diagnostic.X3003, "redefinition of %q", name)
	}
	return decl
}

// parseOptionalAnnotations parses a "< Type name = literal; ... >"
// block. Each value must itself be a literal; a non-literal value is
// reported (X3011) but still recorded so parsing can continue.
func (p *Parser) parseOptionalAnnotations() []ast.Annotation {
	if !p.lex.Accept(lexer.TokLt) {
		return nil
	}
	var out []ast.Annotation
	for p.lex.Peek() != lexer.TokGt && p.lex.Peek() != lexer.TokEOF {
		if _, ok := p.tryParseType(); !ok {
			p.lex.Consume()
		}
		nameTok := p.lex.Consume()
		if !p.lex.Accept(lexer.TokEq) {
			p.recover()
			continue
		}
		value := p.parseAssignExpr()
		if !p.arena.Expr(value).IsConst {
			p.errorf(diagnostic.X3011, "annotation value must be a literal")
		}
		out = append(out, ast.Annotation{Name: nameTok.Value, Value: value})
		p.lex.Accept(lexer.TokSemicolon)
	}
	p.expect(lexer.TokGt)
	return out
}

// propertyEnums is the fixed identifier vocabulary accepted inside a
// texture/sampler property block; any other bare identifier value is
// X3004.
var propertyEnums = map[string]bool{
	"NONE": true, "POINT": true, "LINEAR": true, "ANISOTROPIC": true,
	"CLAMP": true, "WRAP": true, "REPEAT": true, "MIRROR": true, "BORDER": true,
	"R8": true, "RG8": true, "RGBA8": true, "RGBA16": true, "RGBA16F": true, "RGBA32F": true,
	"R32F": true, "DXT1": true, "DXT3": true, "DXT5": true, "LATC1": true, "LATC2": true,
	"R16F": true, "R16G16": true,
}

func (p *Parser) parsePropertyBlock() map[string]ast.ExprRef {
	p.lex.Consume() // '{'
	props := map[string]ast.ExprRef{}
	for p.lex.Peek() != lexer.TokRBrace && p.lex.Peek() != lexer.TokEOF {
		nameTok := p.lex.Consume()
		if !p.expect(lexer.TokEq) {
			p.recover()
			continue
		}
		value := p.parsePropertyValue()
		props[nameTok.Value] = value
		p.lex.Accept(lexer.TokSemicolon)
	}
	p.expect(lexer.TokRBrace)
	p.expect(lexer.TokSemicolon)
	return props
}

func (p *Parser) parsePropertyValue() ast.ExprRef {
	if p.lex.Peek() == lexer.TokIdent {
		tok := p.lex.PeekToken()
		if !propertyEnums[tok.Value] {
			p.errorf(diagnostic.X3004, "unrecognized property value %q", tok.Value)
		}
		p.lex.Consume()
		lit := ast.Expr{Kind: ast.ExprLiteral, Loc: p.loc(), LitKind: ast.LitString, StringVal: tok.Value, IsConst: true, Type: types.Type{Base: types.StringType, Rows: 1, Cols: 1}}
		return p.arena.NewExpr(lit)
	}
	return p.parseAssignExpr()
}

// ----------------------------------------------------------------------------
// Technique / pass
// ----------------------------------------------------------------------------

var passStateEnums = map[string]bool{
	"ZERO": true, "ONE": true, "SRCCOLOR": true, "INVSRCCOLOR": true, "SRCALPHA": true,
	"INVSRCALPHA": true, "DESTALPHA": true, "INVDESTALPHA": true, "DESTCOLOR": true, "INVDESTCOLOR": true,
	"ADD": true, "SUBTRACT": true, "REVSUBTRACT": true, "MIN": true, "MAX": true,
	"KEEP": true, "REPLACE": true, "INCR": true, "DECR": true, "INCRSAT": true, "DECRSAT": true, "INVERT": true,
	"NEVER": true, "LESS": true, "EQUAL": true, "LESSEQUAL": true, "GREATER": true,
	"NOTEQUAL": true, "GREATEREQUAL": true, "ALWAYS": true,
}

func (p *Parser) parseTechnique() {
	loc := p.loc()
	p.lex.Consume() // 'technique'
	name := ""
	if p.lex.Peek() == lexer.TokIdent {
		name = p.lex.Consume().Value
	}
	annotations := p.parseOptionalAnnotations()
	if !p.expect(lexer.TokLBrace) {
		return
	}
	var passes []ast.DeclRef
	for p.lex.Peek() == lexer.TokKwPass {
		passes = append(passes, p.parsePass())
	}
	p.expect(lexer.TokRBrace)
	decl := p.arena.NewDecl(ast.Decl{Kind: ast.DeclTechnique, Loc: loc, Name: name, Annotations: annotations, Passes: passes})
	p.module.Techniques = append(p.module.Techniques, decl)
}

func (p *Parser) parsePass() ast.DeclRef {
	loc := p.loc()
	p.lex.Consume() // 'pass'
	name := ""
	if p.lex.Peek() == lexer.TokIdent {
		name = p.lex.Consume().Value
	}
	if !p.expect(lexer.TokLBrace) {
		return ast.InvalidDecl
	}
	var states []ast.PassState
	for p.lex.Peek() != lexer.TokRBrace && p.lex.Peek() != lexer.TokEOF {
		stateName := p.lex.Consume().Value
		if !p.expect(lexer.TokEq) {
			p.recover()
			continue
		}
		value := p.parsePassStateValue(stateName)
		states = append(states, ast.PassState{Name: stateName, Value: value})
		p.lex.Accept(lexer.TokSemicolon)
	}
	p.expect(lexer.TokRBrace)
	return p.arena.NewDecl(ast.Decl{Kind: ast.DeclPass, Loc: loc, Name: name, States: states})
}

var renderTargetStates = map[string]bool{
	"RenderTarget": true, "RenderTarget0": true, "RenderTarget1": true, "RenderTarget2": true,
	"RenderTarget3": true, "RenderTarget4": true, "RenderTarget5": true, "RenderTarget6": true, "RenderTarget7": true,
}

var boolPassStateValues = map[string]bool{"TRUE": true, "FALSE": true}

func (p *Parser) parsePassStateValue(stateName string) ast.ExprRef {
	switch {
	case stateName == "VertexShader" || stateName == "PixelShader" || renderTargetStates[stateName]:
		tok := p.lex.PeekToken()
		if tok.Kind != lexer.TokIdent {
			p.errorf(diagnostic.X3004, "%s expects a function identifier", stateName)
			return p.parseAssignExpr()
		}
		p.lex.Consume()
		decl, found := p.syms.Find(tok.Value, p.syms.Current(), false)
		if !found {
			p.errorf(diagnostic.X3004, "undeclared identifier %q", tok.Value)
		}
		e := ast.Expr{Kind: ast.ExprLValue, Loc: p.loc(), Name: tok.Value, Ref: decl}
		return p.arena.NewExpr(e)
	default:
		if p.lex.Peek() == lexer.TokIdent {
			tok := p.lex.PeekToken()
			if !passStateEnums[tok.Value] && !(stateName == "SRGBWriteEnable" && boolPassStateValues[tok.Value]) {
				p.errorf(diagnostic.X3004, "unrecognized pass state value %q", tok.Value)
			}
			p.lex.Consume()
			e := ast.Expr{Kind: ast.ExprLiteral, Loc: p.loc(), LitKind: ast.LitString, StringVal: tok.Value, IsConst: true, Type: types.Type{Base: types.StringType, Rows: 1, Cols: 1}}
			return p.arena.NewExpr(e)
		}
		return p.parseAssignExpr()
	}
}

// ----------------------------------------------------------------------------
// Statements
// ----------------------------------------------------------------------------

func (p *Parser) parseAttributes() []string {
	var attrs []string
	for p.lex.Peek() == lexer.TokLBracket {
		p.lex.Consume()
		if p.lex.Peek() == lexer.TokIdent {
			attrs = append(attrs, p.lex.Consume().Value)
		}
		p.expect(lexer.TokRBracket)
	}
	return attrs
}

// parseBlock parses a "{ ... }" statement list. scoped controls
// whether a fresh block scope is entered; a function body's caller
// already entered one for the parameter list, so it passes false.
func (p *Parser) parseBlock(scoped bool) ast.StmtRef {
	loc := p.loc()
	p.expect(lexer.TokLBrace)
	if scoped {
		p.syms.EnterScope(p.syms.EnclosingFunction())
	}
	var stmts []ast.StmtRef
	for p.lex.Peek() != lexer.TokRBrace && p.lex.Peek() != lexer.TokEOF {
		stmts = append(stmts, p.parseStatement())
	}
	if scoped {
		p.syms.LeaveScope()
	}
	p.expect(lexer.TokRBrace)
	return p.arena.NewStmt(ast.Stmt{Kind: ast.StmtBlock, Loc: loc, Stmts: stmts})
}

func (p *Parser) parseStatement() ast.StmtRef {
	attrs := p.parseAttributes()
	loc := p.loc()

	switch p.lex.Peek() {
	case lexer.TokSemicolon:
		p.lex.Consume()
		return p.arena.NewStmt(ast.Stmt{Kind: ast.StmtEmpty, Loc: loc, Attributes: attrs})
	case lexer.TokLBrace:
		s := p.parseBlock(true)
		p.arena.Stmt(s).Attributes = attrs
		return s
	case lexer.TokKwIf:
		return p.parseIf(attrs)
	case lexer.TokKwSwitch:
		return p.parseSwitch(attrs)
	case lexer.TokKwFor:
		return p.parseFor(attrs)
	case lexer.TokKwWhile:
		return p.parseWhile(attrs)
	case lexer.TokKwDo:
		return p.parseDoWhile(attrs)
	case lexer.TokKwReturn:
		return p.parseReturn(attrs)
	case lexer.TokKwDiscard:
		p.lex.Consume()
		p.expect(lexer.TokSemicolon)
		return p.arena.NewStmt(ast.Stmt{Kind: ast.StmtReturn, Loc: loc, Discard: true, Value: ast.InvalidExpr, Attributes: attrs})
	case lexer.TokKwBreak:
		p.lex.Consume()
		p.expect(lexer.TokSemicolon)
		return p.arena.NewStmt(ast.Stmt{Kind: ast.StmtJump, Loc: loc, Jump: ast.JumpBreak, Attributes: attrs})
	case lexer.TokKwContinue:
		p.lex.Consume()
		p.expect(lexer.TokSemicolon)
		return p.arena.NewStmt(ast.Stmt{Kind: ast.StmtJump, Loc: loc, Jump: ast.JumpContinue, Attributes: attrs})
	default:
		return p.parseSimpleStatement(attrs)
	}
}

// parseSimpleStatement handles the statement-level ambiguity between a
// declaration and an expression statement: tryParseType speculatively
// backtracks when an identifier does not name a struct type.
func (p *Parser) parseSimpleStatement(attrs []string) ast.StmtRef {
	loc := p.loc()
	if p.startsDeclaration() {
		q, dup := p.parseQualifiers()
		t, ok := p.tryParseType()
		if ok {
			nameTok := p.lex.Consume()
			var decls []ast.DeclRef
			if nameTok.Kind == lexer.TokIdent {
				decls = append(decls, p.parseVariableDeclarator(loc, q, dup, t, nameTok.Value, false))
				for p.lex.Accept(lexer.TokComma) {
					n2 := p.lex.Consume().Value
					decls = append(decls, p.parseVariableDeclarator(p.loc(), q, dup, t, n2, false))
				}
				p.expect(lexer.TokSemicolon)
			}
			return p.arena.NewStmt(ast.Stmt{Kind: ast.StmtDeclList, Loc: loc, Decls: decls, Attributes: attrs})
		}
	}
	expr := p.parseExpressionList()
	p.expect(lexer.TokSemicolon)
	return p.arena.NewStmt(ast.Stmt{Kind: ast.StmtExpr, Loc: loc, Expr: expr, Attributes: attrs})
}

// startsDeclaration reports whether the current token can begin a type
// specifier. A bare identifier is ambiguous and is resolved by
// tryParseStructTypeName's speculative backtracking inside tryParseType.
func (p *Parser) startsDeclaration() bool {
	switch p.lex.Peek() {
	case lexer.TokType, lexer.TokKwVoid, lexer.TokKwString,
		lexer.TokKwTexture1D, lexer.TokKwTexture2D, lexer.TokKwTexture3D,
		lexer.TokKwSampler1D, lexer.TokKwSampler2D, lexer.TokKwSampler3D,
		lexer.TokKwVector, lexer.TokKwMatrix, lexer.TokIdent:
		return true
	}
	_, ok := qualifierKeywords[p.lex.Peek()]
	return ok
}

func (p *Parser) parseIf(attrs []string) ast.StmtRef {
	loc := p.loc()
	p.lex.Consume() // 'if'
	if !p.expect(lexer.TokLParen) {
		return ast.InvalidStmt
	}
	cond := p.parseExpressionList()
	p.checkScalarCondition(cond)
	p.expect(lexer.TokRParen)
	then := p.parseStatement()
	elseStmt := ast.InvalidStmt
	if p.lex.Accept(lexer.TokKwElse) {
		elseStmt = p.parseStatement()
	}
	return p.arena.NewStmt(ast.Stmt{Kind: ast.StmtIf, Loc: loc, Cond: cond, Then: then, Else: elseStmt, Attributes: attrs})
}

func (p *Parser) checkScalarCondition(cond ast.ExprRef) {
	if !cond.IsValid() {
		return
	}
	t := p.arena.Expr(cond).Type
	if !t.IsScalar() {
		p.errorf(diagnostic.X3019, "scalar expression expected")
	}
}

func (p *Parser) parseSwitch(attrs []string) ast.StmtRef {
	loc := p.loc()
	p.lex.Consume() // 'switch'
	p.expect(lexer.TokLParen)
	test := p.parseExpressionList()
	p.checkScalarCondition(test)
	p.expect(lexer.TokRParen)
	p.expect(lexer.TokLBrace)

	var cases []ast.SwitchCase
	for p.lex.Peek() != lexer.TokRBrace && p.lex.Peek() != lexer.TokEOF {
		cases = append(cases, p.parseSwitchCaseGroup())
	}
	p.expect(lexer.TokRBrace)
	if len(cases) == 0 {
		p.warnf(diagnostic.X5002, "empty switch statement")
	}
	return p.arena.NewStmt(ast.Stmt{Kind: ast.StmtSwitch, Loc: loc, SwitchExpr: test, Cases: cases, Attributes: attrs})
}

func (p *Parser) parseSwitchCaseGroup() ast.SwitchCase {
	var labels []ast.CaseLabel
	for {
		if p.lex.Accept(lexer.TokKwCase) {
			value := p.parseAssignExpr()
			if !p.arena.Expr(value).IsConst {
				p.errorf(diagnostic.X3020, "case label must be a literal numeric expression")
			}
			p.expect(lexer.TokColon)
			labels = append(labels, ast.CaseLabel{Value: value})
			continue
		}
		if p.lex.Accept(lexer.TokKwDefault) {
			p.expect(lexer.TokColon)
			labels = append(labels, ast.CaseLabel{IsDefault: true, Value: ast.InvalidExpr})
			continue
		}
		break
	}
	var body []ast.StmtRef
	for p.lex.Peek() != lexer.TokKwCase && p.lex.Peek() != lexer.TokKwDefault &&
		p.lex.Peek() != lexer.TokRBrace && p.lex.Peek() != lexer.TokEOF {
		body = append(body, p.parseStatement())
	}
	return ast.SwitchCase{Labels: labels, Body: body}
}

func (p *Parser) parseFor(attrs []string) ast.StmtRef {
	loc := p.loc()
	p.lex.Consume() // 'for'
	p.expect(lexer.TokLParen)
	p.syms.EnterScope(p.syms.EnclosingFunction())

	init := ast.InvalidStmt
	if p.lex.Peek() != lexer.TokSemicolon {
		init = p.parseSimpleStatement(nil)
	} else {
		p.lex.Consume()
	}

	cond := ast.InvalidExpr
	if p.lex.Peek() != lexer.TokSemicolon {
		cond = p.parseExpressionList()
		p.checkScalarCondition(cond)
	}
	p.expect(lexer.TokSemicolon)

	post := ast.InvalidExpr
	if p.lex.Peek() != lexer.TokRParen {
		post = p.parseExpressionList()
	}
	p.expect(lexer.TokRParen)

	body := p.parseStatement()
	p.syms.LeaveScope()

	return p.arena.NewStmt(ast.Stmt{Kind: ast.StmtFor, Loc: loc, Init: init, ForCond: cond, Post: post, Body: body, Attributes: attrs})
}

func (p *Parser) parseWhile(attrs []string) ast.StmtRef {
	loc := p.loc()
	p.lex.Consume() // 'while'
	p.expect(lexer.TokLParen)
	cond := p.parseExpressionList()
	p.checkScalarCondition(cond)
	p.expect(lexer.TokRParen)
	body := p.parseStatement()
	return p.arena.NewStmt(ast.Stmt{Kind: ast.StmtWhile, Loc: loc, WhileCond: cond, WhileBody: body, Attributes: attrs})
}

func (p *Parser) parseDoWhile(attrs []string) ast.StmtRef {
	loc := p.loc()
	p.lex.Consume() // 'do'
	body := p.parseStatement()
	p.expect(lexer.TokKwWhile)
	p.expect(lexer.TokLParen)
	cond := p.parseExpressionList()
	p.checkScalarCondition(cond)
	p.expect(lexer.TokRParen)
	p.expect(lexer.TokSemicolon)
	return p.arena.NewStmt(ast.Stmt{Kind: ast.StmtWhile, Loc: loc, WhileCond: cond, WhileBody: body, DoWhile: true, Attributes: attrs})
}

func (p *Parser) parseReturn(attrs []string) ast.StmtRef {
	loc := p.loc()
	p.lex.Consume() // 'return'
	fn := p.syms.EnclosingFunction()
	var retType types.Type
	if fn.IsValid() {
		retType = p.arena.Decl(fn).ReturnType
	}

	value := ast.InvalidExpr
	if p.lex.Peek() != lexer.TokSemicolon {
		value = p.parseExpressionList()
		if retType.IsVoid() {
			p.errorf(diagnostic.X3079, "cannot return a value from a void function")
		} else {
			p.checkAssignable(retType, value)
		}
	} else if fn.IsValid() && !retType.IsVoid() {
		p.errorf(diagnostic.X3080, "missing return value")
	}
	p.expect(lexer.TokSemicolon)
	return p.arena.NewStmt(ast.Stmt{Kind: ast.StmtReturn, Loc: loc, Value: value, Attributes: attrs})
}

// checkAssignable reports a conversion failure, or a truncation
// warning, for an expression used where target is expected (the
// return-value and assignment conversion check of spec §4.F/§4.G).
func (p *Parser) checkAssignable(target types.Type, valueRef ast.ExprRef) {
	if !valueRef.IsValid() {
		return
	}
	v := p.arena.Expr(valueRef)
	if types.Rank(v.Type, target) == 0 {
		p.errorf(diagnostic.X3017, "cannot convert from %s to %s", v.Type, target)
		return
	}
	if types.IsTruncating(v.Type, target) {
		p.warnf(diagnostic.X3206, "implicit truncation from %s to %s", v.Type, target)
	}
}

// ----------------------------------------------------------------------------
// Expressions: precedence-climbing table (spec §4.F)
// ----------------------------------------------------------------------------

type binOpInfo struct {
	op   ast.BinaryOp
	prec int
}

var binaryOps = map[lexer.TokenKind]binOpInfo{
	lexer.TokStar:     {ast.BinMul, 11},
	lexer.TokSlash:    {ast.BinDiv, 11},
	lexer.TokPercent:  {ast.BinMod, 11},
	lexer.TokPlus:     {ast.BinAdd, 10},
	lexer.TokMinus:    {ast.BinSub, 10},
	lexer.TokLtLt:     {ast.BinShl, 9},
	lexer.TokGtGt:     {ast.BinShr, 9},
	lexer.TokLt:       {ast.BinLt, 8},
	lexer.TokGt:       {ast.BinGt, 8},
	lexer.TokLtEq:     {ast.BinLe, 8},
	lexer.TokGtEq:     {ast.BinGe, 8},
	lexer.TokEqEq:     {ast.BinEq, 7},
	lexer.TokBangEq:   {ast.BinNe, 7},
	lexer.TokAmp:      {ast.BinBitAnd, 6},
	lexer.TokCaret:    {ast.BinBitXor, 5},
	lexer.TokPipe:     {ast.BinBitOr, 4},
	lexer.TokAmpAmp:   {ast.BinLogAnd, 3},
	lexer.TokPipePipe: {ast.BinLogOr, 2},
}

// parseExpressionList parses the comma-sequence top level production.
func (p *Parser) parseExpressionList() ast.ExprRef {
	first := p.parseAssignExpr()
	if p.lex.Peek() != lexer.TokComma {
		return first
	}
	items := []ast.ExprRef{first}
	for p.lex.Accept(lexer.TokComma) {
		items = append(items, p.parseAssignExpr())
	}
	last := items[len(items)-1]
	loc := p.arena.Expr(first).Loc
	e := ast.Expr{Kind: ast.ExprSequence, Loc: loc, Items: items, Type: p.arena.Expr(last).Type}
	return p.arena.NewExpr(e)
}

var assignOps = map[lexer.TokenKind]ast.AssignOp{
	lexer.TokEq:        ast.AssignSimple,
	lexer.TokPlusEq:    ast.AssignAdd,
	lexer.TokMinusEq:   ast.AssignSub,
	lexer.TokStarEq:    ast.AssignMul,
	lexer.TokSlashEq:   ast.AssignDiv,
	lexer.TokPercentEq: ast.AssignMod,
	lexer.TokAmpEq:     ast.AssignAnd,
	lexer.TokPipeEq:    ast.AssignOr,
	lexer.TokCaretEq:   ast.AssignXor,
	lexer.TokLtLtEq:    ast.AssignShl,
	lexer.TokGtGtEq:    ast.AssignShr,
}

// parseAssignExpr parses a ternary-or-lower expression, then folds in
// a trailing assignment operator (right-associative, lowest level
// besides the comma sequence).
func (p *Parser) parseAssignExpr() ast.ExprRef {
	lhs := p.parseTernary()
	op, ok := assignOps[p.lex.Peek()]
	if !ok {
		return lhs
	}
	p.lex.Consume()
	p.checkLValue(lhs)
	rhs := p.parseAssignExpr()
	loc := p.arena.Expr(lhs).Loc
	resultType := p.arena.Expr(lhs).Type
	e := ast.Expr{Kind: ast.ExprAssign, Loc: loc, AssignOp: op, Target: lhs, Value: rhs, Type: resultType}
	return p.arena.NewExpr(e)
}

func (p *Parser) checkLValue(ref ast.ExprRef) {
	if !ref.IsValid() {
		return
	}
	e := p.arena.Expr(ref)
	switch e.Kind {
	case ast.ExprLValue, ast.ExprField, ast.ExprIndex, ast.ExprSwizzle:
	default:
		return
	}
	if e.Type.Qualifiers.Has(types.QualConst) || e.Type.Qualifiers.Has(types.QualUniform) {
		p.errorf(diagnostic.X3025, "l-value is const or uniform")
	}
}

func (p *Parser) parseTernary() ast.ExprRef {
	cond := p.parseBinary(1)
	if !p.lex.Accept(lexer.TokQuestion) {
		return cond
	}
	then := p.parseAssignExpr()
	p.expect(lexer.TokColon)
	elseExpr := p.parseAssignExpr()
	thenType := p.arena.Expr(then).Type
	loc := p.arena.Expr(cond).Loc
	e := ast.Expr{Kind: ast.ExprConditional, Loc: loc, Cond: cond, Then: then, Else: elseExpr, Type: thenType}
	return p.arena.NewExpr(e)
}

// parseBinary implements precedence climbing over the operator table;
// minPrec is the lowest precedence level this call is willing to bind.
func (p *Parser) parseBinary(minPrec int) ast.ExprRef {
	left := p.parseUnary()
	for {
		info, ok := binaryOps[p.lex.Peek()]
		if !ok || info.prec < minPrec {
			return left
		}
		p.lex.Consume()
		right := p.parseBinary(info.prec + 1)
		left = p.makeBinary(info.op, left, right)
	}
}

func (p *Parser) makeBinary(op ast.BinaryOp, left, right ast.ExprRef) ast.ExprRef {
	lt := p.arena.Expr(left).Type
	rt := p.arena.Expr(right).Type
	resultType := p.binaryResultType(op, lt, rt)
	loc := p.arena.Expr(left).Loc
	e := ast.Expr{Kind: ast.ExprBinary, Loc: loc, BinOp: op, Left: left, Right: right, Type: resultType}
	ref := p.arena.NewExpr(e)
	return constfold.Fold(p.arena, ref)
}

// binaryResultType implements the type-propagation rule of spec §4.F:
// comparisons/logical ops yield bool; arithmetic yields the wider
// basetype; shape comes from the non-scalar side, or the
// component-wise minimum when both are non-scalar.
func (p *Parser) binaryResultType(op ast.BinaryOp, lt, rt types.Type) types.Type {
	switch op {
	case ast.BinEq, ast.BinNe:
		if lt.IsArray() || rt.IsArray() || (lt.Base == types.Struct && lt.StructDef != rt.StructDef) {
			p.errorf(diagnostic.X3020, "type mismatch in comparison")
		}
		return types.Scalar(types.Bool)
	case ast.BinLt, ast.BinGt, ast.BinLe, ast.BinGe, ast.BinLogAnd, ast.BinLogOr:
		return types.Scalar(types.Bool)
	case ast.BinBitAnd, ast.BinBitOr, ast.BinBitXor, ast.BinShl, ast.BinShr:
		if !lt.IsIntegral() || !rt.IsIntegral() {
			p.errorf(diagnostic.X3082, "bitwise operator requires integral operands")
		}
	}
	base := lt.Base
	if rt.Base > base {
		base = rt.Base
	}
	rows, cols := shapeUnion(lt, rt)
	return types.Type{Base: base, Rows: rows, Cols: cols}
}

func shapeUnion(a, b types.Type) (int8, int8) {
	aScalar := a.Rows == 1 && a.Cols == 1
	bScalar := b.Rows == 1 && b.Cols == 1
	switch {
	case aScalar && !bScalar:
		return b.Rows, b.Cols
	case bScalar && !aScalar:
		return a.Rows, a.Cols
	default:
		rows := a.Rows
		if b.Rows < rows {
			rows = b.Rows
		}
		cols := a.Cols
		if b.Cols < cols {
			cols = b.Cols
		}
		return rows, cols
	}
}

// ----------------------------------------------------------------------------
// Unary / postfix / primary
// ----------------------------------------------------------------------------

func (p *Parser) parseUnary() ast.ExprRef {
	loc := p.loc()
	switch p.lex.Peek() {
	case lexer.TokPlus:
		p.lex.Consume()
		return p.parseUnary()
	case lexer.TokMinus:
		p.lex.Consume()
		operand := p.parseUnary()
		e := ast.Expr{Kind: ast.ExprUnary, Loc: loc, UnOp: ast.UnaryNeg, Operand: operand, Type: p.arena.Expr(operand).Type}
		return constfold.Fold(p.arena, p.arena.NewExpr(e))
	case lexer.TokBang:
		p.lex.Consume()
		operand := p.parseUnary()
		e := ast.Expr{Kind: ast.ExprUnary, Loc: loc, UnOp: ast.UnaryNot, Operand: operand, Type: types.Scalar(types.Bool)}
		return constfold.Fold(p.arena, p.arena.NewExpr(e))
	case lexer.TokTilde:
		p.lex.Consume()
		operand := p.parseUnary()
		if !p.arena.Expr(operand).Type.IsIntegral() {
			p.errorf(diagnostic.X3082, "bitwise complement requires an integral operand")
		}
		e := ast.Expr{Kind: ast.ExprUnary, Loc: loc, UnOp: ast.UnaryBitNot, Operand: operand, Type: p.arena.Expr(operand).Type}
		return constfold.Fold(p.arena, p.arena.NewExpr(e))
	case lexer.TokPlusPlus:
		p.lex.Consume()
		operand := p.parseUnary()
		p.checkLValue(operand)
		e := ast.Expr{Kind: ast.ExprUnary, Loc: loc, UnOp: ast.UnaryPreInc, Operand: operand, Type: p.arena.Expr(operand).Type}
		return p.arena.NewExpr(e)
	case lexer.TokMinusMinus:
		p.lex.Consume()
		operand := p.parseUnary()
		p.checkLValue(operand)
		e := ast.Expr{Kind: ast.ExprUnary, Loc: loc, UnOp: ast.UnaryPreDec, Operand: operand, Type: p.arena.Expr(operand).Type}
		return p.arena.NewExpr(e)
	case lexer.TokLParen:
		if ref, ok := p.tryParseCast(); ok {
			return ref
		}
	}
	return p.parsePostfix()
}

// tryParseCast speculatively tries "(" type ")" unary, backing out if
// what follows the type is "(" (a constructor call instead) or if no
// type follows at all (an ordinary parenthesized expression).
func (p *Parser) tryParseCast() (ast.ExprRef, bool) {
	p.lex.Backup()
	loc := p.loc()
	p.lex.Consume() // '('
	var t types.Type
	ok := false
	if p.lex.Peek() == lexer.TokIdent {
		// Struct names are looked up here rather than through
		// tryParseStructTypeName, whose own Backup would replace this
		// function's snapshot and make the Restore below a no-op.
		tok := p.lex.Consume()
		if decl, found := p.syms.Find(tok.Value, p.syms.Current(), false); found && p.arena.Decl(decl).Kind == ast.DeclStruct {
			t, ok = types.StructType(p.arena.Decl(decl).StructDef), true
		}
	} else {
		t, ok = p.tryParseType()
	}
	if !ok || p.lex.Peek() != lexer.TokRParen {
		p.lex.Restore()
		return ast.InvalidExpr, false
	}
	p.lex.Consume() // ')'
	if p.lex.Peek() == lexer.TokLParen {
		p.lex.Restore()
		return ast.InvalidExpr, false
	}
	operand := p.parseUnary()
	e := ast.Expr{Kind: ast.ExprConstructor, Loc: loc, ConstructType: t, Type: t, Args: []ast.ExprRef{operand}}
	return constfold.Fold(p.arena, p.arena.NewExpr(e)), true
}

func (p *Parser) parsePostfix() ast.ExprRef {
	expr := p.parsePrimary()
	for {
		switch p.lex.Peek() {
		case lexer.TokDot:
			expr = p.parseFieldOrSwizzle(expr)
		case lexer.TokLBracket:
			expr = p.parseIndex(expr)
		case lexer.TokPlusPlus:
			p.lex.Consume()
			p.checkLValue(expr)
			e := ast.Expr{Kind: ast.ExprUnary, Loc: p.arena.Expr(expr).Loc, UnOp: ast.UnaryPostInc, Operand: expr, Type: p.arena.Expr(expr).Type}
			expr = p.arena.NewExpr(e)
		case lexer.TokMinusMinus:
			p.lex.Consume()
			p.checkLValue(expr)
			e := ast.Expr{Kind: ast.ExprUnary, Loc: p.arena.Expr(expr).Loc, UnOp: ast.UnaryPostDec, Operand: expr, Type: p.arena.Expr(expr).Type}
			expr = p.arena.NewExpr(e)
		default:
			return expr
		}
	}
}

var swizzleSets = map[byte]ast.SwizzleSet{
	'x': ast.SwizzleXYZW, 'y': ast.SwizzleXYZW, 'z': ast.SwizzleXYZW, 'w': ast.SwizzleXYZW,
	'r': ast.SwizzleRGBA, 'g': ast.SwizzleRGBA, 'b': ast.SwizzleRGBA, 'a': ast.SwizzleRGBA,
	's': ast.SwizzleSTPQ, 't': ast.SwizzleSTPQ, 'p': ast.SwizzleSTPQ, 'q': ast.SwizzleSTPQ,
}

func swizzleIndex(set ast.SwizzleSet, c byte) int8 {
	switch set {
	case ast.SwizzleXYZW:
		return int8(strings.IndexByte("xyzw", c))
	case ast.SwizzleRGBA:
		return int8(strings.IndexByte("rgba", c))
	default:
		return int8(strings.IndexByte("stpq", c))
	}
}

func (p *Parser) parseFieldOrSwizzle(base ast.ExprRef) ast.ExprRef {
	loc := p.loc()
	p.lex.Consume() // '.'
	baseType := p.arena.Expr(base).Type

	if baseType.IsMatrix() {
		tok := p.lex.Consume()
		return p.parseMatrixSwizzle(loc, base, tok.Value)
	}

	tok := p.lex.Consume()
	name := tok.Value

	if baseType.IsStruct() {
		sd := p.arena.Struct(baseType.StructDef)
		for i, f := range sd.Fields {
			field := p.arena.Decl(f)
			if field.Name == name {
				e := ast.Expr{Kind: ast.ExprField, Loc: loc, FieldBase: base, FieldName: name, FieldIndex: i, Type: field.Type}
				return p.arena.NewExpr(e)
			}
		}
		p.errorf(diagnostic.X3018, "struct has no member %q", name)
		return base
	}

	if baseType.IsNumeric() && (baseType.IsScalar() || baseType.IsVector()) {
		return p.parseVectorSwizzle(loc, base, name)
	}

	p.errorf(diagnostic.X3018, "invalid subscript %q", name)
	return base
}

func (p *Parser) parseVectorSwizzle(loc ast.Loc, base ast.ExprRef, chars string) ast.ExprRef {
	if len(chars) == 0 || len(chars) > 4 {
		p.errorf(diagnostic.X3018, "invalid swizzle %q", chars)
		return base
	}
	set, setOK := swizzleSets[chars[0]]
	indices := make([]int8, 0, len(chars))
	seen := map[int8]bool{}
	duplicate := false
	baseRows := p.arena.Expr(base).Type.Rows
	if baseRows == 0 {
		baseRows = 1
	}
	for i := 0; i < len(chars); i++ {
		s, ok := swizzleSets[chars[i]]
		if !ok || s != set {
			setOK = false
			break
		}
		idx := swizzleIndex(set, chars[i])
		if idx < 0 || idx >= baseRows {
			p.errorf(diagnostic.X3018, "swizzle component %q out of range", string(chars[i]))
		}
		if seen[idx] {
			duplicate = true
		}
		seen[idx] = true
		indices = append(indices, idx)
	}
	if !setOK {
		p.errorf(diagnostic.X3018, "swizzle mixes component sets in %q", chars)
		return base
	}
	resultType := types.Vector(p.arena.Expr(base).Type.Base, int8(len(indices)))
	if len(indices) == 1 {
		resultType = types.Scalar(p.arena.Expr(base).Type.Base)
	}
	if duplicate {
		resultType.Qualifiers |= types.QualConst
	}
	e := ast.Expr{
		Kind: ast.ExprSwizzle, Loc: loc, Base: base, SwizzleChars: chars,
		SwizzleSetKind: set, SwizzleIndices: indices, Type: resultType,
	}
	return p.arena.NewExpr(e)
}

// parseMatrixSwizzle parses the "._mRC"/"._RC" repeated-component
// matrix element accessor (spec §4.F). "_m" forms are 0-based; bare
// "_RC" forms are 1-based.
func (p *Parser) parseMatrixSwizzle(loc ast.Loc, base ast.ExprRef, text string) ast.ExprRef {
	zeroBased := strings.HasPrefix(text, "_m")
	step := 3
	if zeroBased {
		step = 4
	}
	if len(text) == 0 || len(text)%step != 0 {
		p.errorf(diagnostic.X3018, "invalid matrix swizzle %q", text)
		return base
	}
	var indices []int8
	for i := 0; i+step <= len(text); i += step {
		chunk := text[i : i+step]
		if chunk[0] != '_' {
			p.errorf(diagnostic.X3018, "invalid matrix swizzle %q", text)
			return base
		}
		var row, col byte
		if zeroBased {
			row, col = chunk[2], chunk[3]
		} else {
			row, col = chunk[1], chunk[2]
		}
		r := int8(row - '0')
		c := int8(col - '0')
		if !zeroBased {
			r--
			c--
		}
		if r < 0 || r > 3 || c < 0 || c > 3 {
			p.errorf(diagnostic.X3018, "matrix swizzle component out of range in %q", text)
		}
		indices = append(indices, r, c)
	}
	n := int8(len(indices) / 2)
	resultType := types.Vector(p.arena.Expr(base).Type.Base, n)
	if n == 1 {
		resultType = types.Scalar(p.arena.Expr(base).Type.Base)
	}
	e := ast.Expr{Kind: ast.ExprSwizzle, Loc: loc, Base: base, SwizzleChars: text, SwizzleIndices: indices, Type: resultType}
	return p.arena.NewExpr(e)
}

func (p *Parser) parseIndex(base ast.ExprRef) ast.ExprRef {
	loc := p.loc()
	p.lex.Consume() // '['
	idx := p.parseExpressionList()
	p.expect(lexer.TokRBracket)

	idxType := p.arena.Expr(idx).Type
	if !idxType.IsScalar() {
		p.errorf(diagnostic.X3120, "subscript index must be scalar")
	}
	baseType := p.arena.Expr(base).Type
	var resultType types.Type
	switch {
	case baseType.IsArray():
		resultType = baseType
		resultType.ArrayLen = 0
	case baseType.IsMatrix():
		resultType = types.Vector(baseType.Base, baseType.Cols)
	case baseType.IsVector():
		resultType = types.Scalar(baseType.Base)
	default:
		p.errorf(diagnostic.X3121, "expression cannot be subscripted")
		resultType = baseType
	}
	e := ast.Expr{Kind: ast.ExprIndex, Loc: loc, IndexBase: base, IndexExpr: idx, Type: resultType}
	return p.arena.NewExpr(e)
}

func (p *Parser) parsePrimary() ast.ExprRef {
	loc := p.loc()
	tok := p.lex.PeekToken()
	switch tok.Kind {
	case lexer.TokIntLiteral:
		p.lex.Consume()
		e := ast.Expr{Kind: ast.ExprLiteral, Loc: loc, LitKind: ast.LitInt, IntVal: tok.IntValue, IsConst: true, Type: types.Scalar(types.Int)}
		return p.arena.NewExpr(e)
	case lexer.TokUintLiteral:
		p.lex.Consume()
		e := ast.Expr{Kind: ast.ExprLiteral, Loc: loc, LitKind: ast.LitUint, UintVal: tok.UintValue, IsConst: true, Type: types.Scalar(types.Uint)}
		return p.arena.NewExpr(e)
	case lexer.TokFloatLiteral:
		p.lex.Consume()
		e := ast.Expr{Kind: ast.ExprLiteral, Loc: loc, LitKind: ast.LitFloat, FloatVal: tok.FloatValue, IsConst: true, Type: types.Scalar(types.Float)}
		return p.arena.NewExpr(e)
	case lexer.TokDoubleLiteral:
		p.lex.Consume()
		e := ast.Expr{Kind: ast.ExprLiteral, Loc: loc, LitKind: ast.LitDouble, DoubleVal: tok.DoubleValue, IsConst: true, Type: types.Scalar(types.Float)}
		return p.arena.NewExpr(e)
	case lexer.TokTrue:
		p.lex.Consume()
		e := ast.Expr{Kind: ast.ExprLiteral, Loc: loc, LitKind: ast.LitBool, BoolVal: true, IsConst: true, Type: types.Scalar(types.Bool)}
		return p.arena.NewExpr(e)
	case lexer.TokFalse:
		p.lex.Consume()
		e := ast.Expr{Kind: ast.ExprLiteral, Loc: loc, LitKind: ast.LitBool, BoolVal: false, IsConst: true, Type: types.Scalar(types.Bool)}
		return p.arena.NewExpr(e)
	case lexer.TokStringLiteral:
		return p.parseStringConcat()
	case lexer.TokLParen:
		p.lex.Consume()
		inner := p.parseExpressionList()
		p.expect(lexer.TokRParen)
		return inner
	case lexer.TokType, lexer.TokKwVector, lexer.TokKwMatrix:
		return p.parseConstructorCall()
	case lexer.TokIdent:
		return p.parseIdentOrCall()
	}
	p.errorf(diagnostic.X3000, "unexpected token %s", tok.Kind)
	p.lex.Consume()
	return p.arena.NewExpr(ast.Expr{Kind: ast.ExprLiteral, Loc: loc, LitKind: ast.LitInt, Type: types.Scalar(types.Int)})
}

func (p *Parser) parseStringConcat() ast.ExprRef {
	loc := p.loc()
	var sb strings.Builder
	for p.lex.Peek() == lexer.TokStringLiteral {
		tok := p.lex.Consume()
		sb.WriteString(tok.StringValue)
	}
	e := ast.Expr{Kind: ast.ExprLiteral, Loc: loc, LitKind: ast.LitString, StringVal: sb.String(), IsConst: true, Type: types.Type{Base: types.StringType, Rows: 1, Cols: 1}}
	return p.arena.NewExpr(e)
}

func (p *Parser) parseConstructorCall() ast.ExprRef {
	loc := p.loc()
	t, _ := p.tryParseType()
	p.expect(lexer.TokLParen)
	var args []ast.ExprRef
	if p.lex.Peek() != lexer.TokRParen {
		for {
			args = append(args, p.parseAssignExpr())
			if !p.lex.Accept(lexer.TokComma) {
				break
			}
		}
	}
	p.expect(lexer.TokRParen)
	if !t.IsNumeric() {
		p.errorf(diagnostic.X3037, "constructor target must be a numeric type")
	} else if total := totalComponents(args, p.arena); total != int(t.Rows)*int(t.Cols) && len(args) != 1 {
		p.errorf(diagnostic.X3014, "wrong number of arguments to %s constructor", t)
	}
	e := ast.Expr{Kind: ast.ExprConstructor, Loc: loc, ConstructType: t, Type: t, Args: args}
	return constfold.Fold(p.arena, p.arena.NewExpr(e))
}

func totalComponents(args []ast.ExprRef, a *ast.Arena) int {
	total := 0
	for _, ref := range args {
		t := a.Expr(ref).Type
		if t.Rows == 0 {
			total++
			continue
		}
		total += int(t.Rows) * int(t.Cols)
	}
	return total
}

// parseIdentOrCall resolves a bare identifier: a variable reference, or,
// when followed by '(', a call matched against user functions first and
// the intrinsic catalog second (spec §4.F).
func (p *Parser) parseIdentOrCall() ast.ExprRef {
	loc := p.loc()
	tok := p.lex.Consume()
	name := tok.Value
	for p.lex.Peek() == lexer.TokColonColon {
		p.lex.Consume()
		part := p.lex.Consume()
		if part.Kind != lexer.TokIdent {
			p.errorf(diagnostic.X3000, "expected an identifier after '::'")
			break
		}
		name += "::" + part.Value
	}

	if p.lex.Peek() != lexer.TokLParen {
		decl, found := p.syms.Find(name, p.syms.Current(), false)
		if !found {
			p.errorf(diagnostic.X3004, "undeclared identifier %q", name)
			return p.arena.NewExpr(ast.Expr{Kind: ast.ExprLValue, Loc: loc, Name: name, Ref: ast.InvalidDecl})
		}
		if p.arena.Decl(decl).Kind == ast.DeclFunction {
			p.errorf(diagnostic.X3005, "%q represents a function, not a variable", name)
		}
		e := ast.Expr{Kind: ast.ExprLValue, Loc: loc, Name: name, Ref: decl, Type: p.arena.Decl(decl).Type}
		return p.arena.NewExpr(e)
	}

	p.lex.Consume() // '('
	var args []ast.ExprRef
	if p.lex.Peek() != lexer.TokRParen {
		for {
			args = append(args, p.parseAssignExpr())
			if !p.lex.Accept(lexer.TokComma) {
				break
			}
		}
	}
	p.expect(lexer.TokRParen)
	return p.resolveCall(loc, name, args)
}

func (p *Parser) resolveCall(loc ast.Loc, name string, args []ast.ExprRef) ast.ExprRef {
	if decl, found := p.syms.Find(name, p.syms.Current(), false); found && p.arena.Decl(decl).Kind == ast.DeclVariable {
		p.errorf(diagnostic.X3005, "%q represents a variable, not a function", name)
	}

	argTypes := make([]types.Type, len(args))
	for i, a := range args {
		argTypes[i] = p.arena.Expr(a).Type
	}

	enclosing := p.syms.EnclosingFunction()
	var candidates []resolve.Candidate
	for _, d := range p.syms.FindAll(name, p.syms.Current()) {
		if d == enclosing {
			p.errorf(diagnostic.X3500, "recursive call to %q", name)
			continue
		}
		fn := p.arena.Decl(d)
		params := make([]types.Type, len(fn.Params))
		for i, pr := range fn.Params {
			params[i] = pr.Type
		}
		candidates = append(candidates, resolve.Candidate{Params: params, Return: fn.ReturnType, Decl: int32(d)})
	}
	isUserCandidate := len(candidates) > 0
	result := resolve.Resolve(argTypes, candidates)
	intrinsic := builtins.Lookup(name)
	if intrinsic != nil && !result.Found && !result.Ambiguous {
		var intrinsicCandidates []resolve.Candidate
		for _, ov := range intrinsic.Overloads {
			intrinsicCandidates = append(intrinsicCandidates, resolve.Candidate{Params: ov.Params, Return: ov.Return, Op: intrinsic.Op})
		}
		result = resolve.Resolve(argTypes, intrinsicCandidates)
	}

	switch {
	case result.Ambiguous:
		p.errorf(diagnostic.X3067, "ambiguous call to %q", name)
		return p.arena.NewExpr(ast.Expr{Kind: ast.ExprCall, Loc: loc, CalleeName: name, Args: args})
	case !result.Found:
		if isUserCandidate || intrinsic != nil {
			p.errorf(diagnostic.X3013, "no overload of %q matches the given arguments", name)
		} else {
			p.errorf(diagnostic.X3004, "undeclared identifier %q", name)
		}
		return p.arena.NewExpr(ast.Expr{Kind: ast.ExprCall, Loc: loc, CalleeName: name, Args: args})
	}

	if result.Winner.Op != builtins.OpNone {
		e := ast.Expr{Kind: ast.ExprIntrinsic, Loc: loc, CalleeName: name, IntrinsicOp: result.Winner.Op, Args: args, Type: result.Winner.Return}
		return constfold.Fold(p.arena, p.arena.NewExpr(e))
	}
	e := ast.Expr{Kind: ast.ExprCall, Loc: loc, CalleeName: name, Callee: ast.DeclRef(result.Winner.Decl), Args: args, Type: result.Winner.Return}
	return p.arena.NewExpr(e)
}
