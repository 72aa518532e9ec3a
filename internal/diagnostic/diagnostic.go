// Package diagnostic provides error reporting for the FX front end.
//
// A Sink owns the source string and the append-only list of emitted
// messages. Each diagnostic is formatted as
// "source(line, column): {error|warning} Xcode: text", mirroring the
// message convention of the HLSL-family effect compilers this front end
// is compatible with.
package diagnostic

import (
	"fmt"
	"strings"

	"github.com/hugodaniel/fx/internal/sourcemap"
)

// Severity is the level of a diagnostic.
type Severity uint8

const (
	// Error prevents the overall parse from being reported successful.
	Error Severity = iota
	// Warning never aborts parsing.
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "warning"
	}
	return "error"
}

// Code is a numeric diagnostic code, 3000-series for syntax/semantic
// errors and 5000-series for style warnings, per the source-compiler
// convention this front end mirrors.
type Code uint16

// Diagnostic codes. See spec §7 for the canonical meaning of each.
const (
	X3000 Code = 3000 // syntax: unexpected token
	X3003 Code = 3003 // redefinition
	X3004 Code = 3004 // undeclared identifier / unrecognized property
	X3005 Code = 3005 // kind mismatch (function vs. variable)
	X3006 Code = 3006 // extern on a local or parameter
	X3007 Code = 3007 // static on a parameter
	X3011 Code = 3011 // value must be a literal
	X3012 Code = 3012 // const with no initializer
	X3013 Code = 3013 // no viable overload
	X3014 Code = 3014 // wrong argument count to constructor
	X3017 Code = 3017 // type conversion failure
	X3018 Code = 3018 // invalid subscript/swizzle
	X3019 Code = 3019 // scalar expected (control-flow condition)
	X3020 Code = 3020 // type mismatch
	X3022 Code = 3022 // scalar/vector/matrix expected
	X3025 Code = 3025 // l-value is const/uniform
	X3037 Code = 3037 // non-numeric constructor
	X3038 Code = 3038 // void/locally-disallowed variable
	X3046 Code = 3046 // output parameter declared const
	X3047 Code = 3047 // bad qualifier placement
	X3052 Code = 3052 // dimension out of range
	X3053 Code = 3053 // dimension out of range
	X3055 Code = 3055 // bad qualifier on member/variable
	X3058 Code = 3058 // array dimension literal
	X3059 Code = 3059 // array dimension range
	X3067 Code = 3067 // ambiguous call
	X3076 Code = 3076 // void function with semantic
	X3079 Code = 3079 // return value in void function
	X3080 Code = 3080 // missing return value
	X3082 Code = 3082 // integral type required
	X3087 Code = 3087 // methods not supported on object
	X3088 Code = 3088 // methods not supported on struct
	X3120 Code = 3120 // non-scalar subscript index
	X3121 Code = 3121 // non-indexable subscript base
	X3122 Code = 3122 // bad vector element type
	X3123 Code = 3123 // bad matrix element type
	X3500 Code = 3500 // recursive call
	X4576 Code = 4576 // bad interpolation on integer
	X5000 Code = 5000 // implicit uniform warning
	X5001 Code = 5001 // empty struct warning
	X5002 Code = 5002 // empty switch warning
	X3206 Code = 3206 // implicit vector truncation warning
	X3048 Code = 3048 // duplicate qualifier warning
)

// Message is a single reported diagnostic.
type Message struct {
	Severity Severity
	Code     Code
	Line     int // 1-based
	Column   int // 1-based
	Text     string
}

func (m Message) String() string {
	return fmt.Sprintf("(%d, %d): %s X%d: %s", m.Line, m.Column, m.Severity, m.Code, m.Text)
}

// Sink collects diagnostics for one compilation unit. Messages are
// strictly append-only; see Len for the one place the parser is allowed
// to check whether a speculative branch stayed silent.
type Sink struct {
	sourceName string
	lineIndex  *sourcemap.LineIndex
	messages   []Message
	hasErrors  bool
}

// New creates a diagnostic sink for source named sourceName (often "",
// the single effect file has no path of its own at this layer).
func New(sourceName, source string) *Sink {
	return &Sink{
		sourceName: sourceName,
		lineIndex:  sourcemap.NewLineIndex(source),
	}
}

// Errorf appends an error diagnostic at the given byte offset.
func (s *Sink) Errorf(offset int, code Code, format string, args ...any) {
	s.add(Error, offset, code, fmt.Sprintf(format, args...))
}

// Warnf appends a warning diagnostic at the given byte offset.
func (s *Sink) Warnf(offset int, code Code, format string, args ...any) {
	s.add(Warning, offset, code, fmt.Sprintf(format, args...))
}

func (s *Sink) add(sev Severity, offset int, code Code, text string) {
	line, col := s.lineIndex.ByteOffsetToLineColumn(offset)
	s.messages = append(s.messages, Message{
		Severity: sev,
		Code:     code,
		Line:     line + 1,
		Column:   col + 1,
		Text:     text,
	})
	if sev == Error {
		s.hasErrors = true
	}
}

// HasErrors reports whether any error-level diagnostic was recorded.
func (s *Sink) HasErrors() bool {
	return s.hasErrors
}

// Messages returns every diagnostic in emission order.
func (s *Sink) Messages() []Message {
	return s.messages
}

// Len reports the number of recorded diagnostics.
func (s *Sink) Len() int {
	return len(s.messages)
}

// String formats every diagnostic as
// "source(line, column): severity Xcode: text", one per line.
func (s *Sink) String() string {
	if len(s.messages) == 0 {
		return ""
	}
	var b strings.Builder
	for _, m := range s.messages {
		b.WriteString(s.sourceName)
		fmt.Fprintf(&b, "(%d, %d): %s X%d: %s\n", m.Line, m.Column, m.Severity, m.Code, m.Text)
	}
	return b.String()
}
