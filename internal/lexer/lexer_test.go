package lexer

import "testing"

func expectToken(t *testing.T, input string, expected TokenKind) {
	t.Helper()
	l := New(input)
	tok := l.Consume()
	if tok.Kind != expected {
		t.Errorf("input %q: expected %v, got %v", input, expected, tok.Kind)
	}
}

func expectTokens(t *testing.T, input string, expected []TokenKind) {
	t.Helper()
	l := New(input)
	for i, exp := range expected {
		tok := l.Consume()
		if tok.Kind != exp {
			t.Errorf("input %q token %d: expected %v, got %v", input, i, exp, tok.Kind)
		}
	}
}

func TestIdentifiersAndKeywords(t *testing.T) {
	expectToken(t, "myVar", TokIdent)
	expectToken(t, "namespace", TokKwNamespace)
	expectToken(t, "technique", TokKwTechnique)
	expectToken(t, "pass", TokKwPass)
	expectToken(t, "inout", TokKwInout)
	expectToken(t, "discard", TokKwDiscard)
}

func TestTypeKeywordsCarryShape(t *testing.T) {
	l := New("float4x4")
	tok := l.Consume()
	if tok.Kind != TokType {
		t.Fatalf("expected TokType, got %v", tok.Kind)
	}
	if tok.TypeBase != "float" || tok.TypeRows != 4 || tok.TypeCols != 4 {
		t.Errorf("got base=%s rows=%d cols=%d", tok.TypeBase, tok.TypeRows, tok.TypeCols)
	}

	l2 := New("int3")
	tok2 := l2.Consume()
	if tok2.TypeBase != "int" || tok2.TypeRows != 3 || tok2.TypeCols != 1 {
		t.Errorf("int3 got base=%s rows=%d cols=%d", tok2.TypeBase, tok2.TypeRows, tok2.TypeCols)
	}
}

func TestNumericLiterals(t *testing.T) {
	l := New("42")
	tok := l.Consume()
	if tok.Kind != TokIntLiteral || tok.IntValue != 42 {
		t.Errorf("got kind=%v int=%d", tok.Kind, tok.IntValue)
	}

	l2 := New("3.5")
	tok2 := l2.Consume()
	if tok2.Kind != TokFloatLiteral || tok2.FloatValue != 3.5 {
		t.Errorf("got kind=%v float=%v", tok2.Kind, tok2.FloatValue)
	}

	l3 := New("10u")
	tok3 := l3.Consume()
	if tok3.Kind != TokUintLiteral || tok3.UintValue != 10 {
		t.Errorf("got kind=%v uint=%v", tok3.Kind, tok3.UintValue)
	}
}

func TestStringLiteralConcatenationIsParserJob(t *testing.T) {
	l := New(`"a" "b"`)
	expectTokens(t, `"a" "b"`, []TokenKind{TokStringLiteral, TokStringLiteral})
	_ = l
}

func TestMultiCharOperators(t *testing.T) {
	expectTokens(t, "a::b", []TokenKind{TokIdent, TokColonColon, TokIdent})
	expectToken(t, "...", TokEllipsis)
	expectToken(t, "<<=", TokLtLtEq)
	expectToken(t, ">>=", TokGtGtEq)
	expectToken(t, "->", TokArrow)
	expectToken(t, "++", TokPlusPlus)
}

func TestCommentsAreSkipped(t *testing.T) {
	expectTokens(t, "a // comment\nb", []TokenKind{TokIdent, TokIdent})
	expectTokens(t, "a /* nested /* block */ comment */ b", []TokenKind{TokIdent, TokIdent})
}

func TestPeekDoesNotConsume(t *testing.T) {
	l := New("a b")
	if l.Peek() != TokIdent {
		t.Fatalf("expected peek TokIdent")
	}
	if l.Peek() != TokIdent {
		t.Fatalf("peek should be idempotent")
	}
	first := l.Consume()
	if first.Value != "a" {
		t.Errorf("expected 'a', got %q", first.Value)
	}
	second := l.Consume()
	if second.Value != "b" {
		t.Errorf("expected 'b', got %q", second.Value)
	}
}

func TestAcceptAndExpect(t *testing.T) {
	l := New("( )")
	if !l.Accept(TokLParen) {
		t.Fatalf("expected accept LParen")
	}
	if l.Accept(TokLParen) {
		t.Fatalf("should not accept a second LParen")
	}
	var gotMismatch bool
	ok := l.Expect(TokLBrace, func(got Token, want TokenKind) { gotMismatch = true })
	if ok || !gotMismatch {
		t.Errorf("expected mismatch on Expect(LBrace)")
	}
	if !l.Expect(TokRParen, nil) {
		t.Errorf("expected RParen to match")
	}
}

func TestBackupRestore(t *testing.T) {
	l := New("a b c")
	l.Consume() // a
	l.Backup()
	l.Consume() // b
	if l.Current().Value != "b" {
		t.Fatalf("expected current 'b'")
	}
	l.Restore()
	if l.Current().Value != "a" {
		t.Errorf("expected restored current 'a', got %q", l.Current().Value)
	}
	next := l.Consume()
	if next.Value != "b" {
		t.Errorf("expected to re-consume 'b', got %q", next.Value)
	}
}

func TestConsumeUntilSkipsToTarget(t *testing.T) {
	l := New("garbage garbage ; next")
	l.ConsumeUntil(TokSemicolon)
	tok := l.Consume()
	if tok.Value != "next" {
		t.Errorf("expected 'next' after recovery, got %q", tok.Value)
	}
}

func TestConsumeUntilStopsAtEOF(t *testing.T) {
	l := New("a b c")
	l.ConsumeUntil(TokSemicolon)
	if l.Peek() != TokEOF {
		t.Errorf("expected EOF after unmatched ConsumeUntil, got %v", l.Peek())
	}
}
