package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hugodaniel/fx/pkg/fx"
)

func newParseCmd() *cobra.Command {
	var warnAsError bool

	cmd := &cobra.Command{
		Use:   "parse <file.fx>",
		Short: "Parse a single FX source file and print its diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			result := fx.Parse(string(source))
			if result.Diagnostics != "" {
				fmt.Fprint(cmd.ErrOrStderr(), result.Diagnostics)
			}

			if !result.Success || (warnAsError && result.Diagnostics != "") {
				return fmt.Errorf("%s failed to parse cleanly", args[0])
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d struct(s), %d uniform(s), %d function(s), %d technique(s)\n",
				args[0], len(result.Module.Structs), len(result.Module.Uniforms),
				len(result.Module.Functions), len(result.Module.Techniques))
			return nil
		},
	}

	cmd.Flags().BoolVar(&warnAsError, "warn-as-error", false, "treat warnings as failures")
	return cmd
}
