// Package fx is the public entry point for the FX front-end compiler.
//
// Parse is a pure function of its input string: lex, parse, resolve,
// and constant-fold a complete FX source file in one call, with no
// filesystem or environment access (spec §6). Callers needing a CLI or
// batch-file workflow should use cmd/fxc instead.
package fx

import (
	"github.com/hugodaniel/fx/internal/ast"
	"github.com/hugodaniel/fx/internal/parser"
)

// Result is the outcome of parsing one FX source file.
type Result struct {
	// Module is the root AST: struct, uniform, function, and technique
	// declaration lists in source order, plus the arena that owns every
	// node they reference.
	Module *ast.Module

	// Diagnostics is every error and warning emitted, formatted one per
	// line as "(line, column): severity Xcode: text".
	Diagnostics string

	// Success reports whether parsing completed with zero errors. It
	// can be true alongside a non-empty Diagnostics string when only
	// warnings were recorded.
	Success bool
}

// Parse lexes, parses, name-resolves, and constant-folds source,
// returning the resulting AST alongside every diagnostic recorded.
func Parse(source string) Result {
	module, diags := parser.Parse(source)
	return Result{
		Module:      module,
		Diagnostics: diags.String(),
		Success:     !diags.HasErrors(),
	}
}
