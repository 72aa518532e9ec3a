package main

import (
	"fmt"
	"os"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/hugodaniel/fx/internal/config"
	"github.com/hugodaniel/fx/pkg/fx"
)

func newCheckCmd() *cobra.Command {
	var (
		warnAsError bool
		maxErrors   int
		keepGoing   bool
		noConfig    bool
	)

	cmd := &cobra.Command{
		Use:   "check <pattern...>",
		Short: "Batch-parse FX source files matching one or more glob patterns",
		Long: "check expands each argument as a doublestar glob (e.g. \"./shaders/**/*.fx\") " +
			"and parses every matching file, reporting diagnostics for each.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := resolveCheckOptions(noConfig, config.CLIOverrides{
				WarnAsError: flagOverride(cmd, "warn-as-error", warnAsError),
				MaxErrors:   intFlagOverride(cmd, "max-errors", maxErrors),
				KeepGoing:   flagOverride(cmd, "keep-going", keepGoing),
			})

			files, err := expandPatterns(args)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				return fmt.Errorf("no files matched the given pattern(s)")
			}

			failed := 0
			for _, path := range files {
				ok := checkOne(cmd, path, opts)
				if !ok {
					failed++
					if !opts.KeepGoing {
						break
					}
					if opts.MaxErrors > 0 && failed >= opts.MaxErrors {
						break
					}
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d file(s) failed to check", failed, len(files))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&warnAsError, "warn-as-error", false, "treat warnings as failures")
	cmd.Flags().IntVar(&maxErrors, "max-errors", 0, "stop after this many files fail (0 = no limit)")
	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "keep checking remaining files after a failure")
	cmd.Flags().BoolVar(&noConfig, "no-config", false, "ignore fx.json/.fxrc discovery")
	return cmd
}

// flagOverride returns a pointer to value only when the named flag was
// explicitly set on the command line, matching config.CLIOverrides'
// "nil means not specified" contract.
func flagOverride(cmd *cobra.Command, name string, value bool) *bool {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &value
}

func intFlagOverride(cmd *cobra.Command, name string, value int) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &value
}

func resolveCheckOptions(noConfig bool, cli config.CLIOverrides) config.Options {
	var cfg *config.Config
	if !noConfig {
		startDir, _ := os.Getwd()
		cfg, _, _ = config.Load(startDir)
	}
	return cfg.Merge(cli)
}

// expandPatterns resolves every doublestar glob in patterns against the
// current working directory, returning the de-duplicated union.
func expandPatterns(patterns []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out, nil
}

func checkOne(cmd *cobra.Command, path string, opts config.Options) bool {
	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
		return false
	}

	result := fx.Parse(string(source))
	if result.Diagnostics != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s:\n%s", path, result.Diagnostics)
	}

	if !result.Success {
		return false
	}
	if opts.WarnAsError && result.Diagnostics != "" {
		return false
	}
	return true
}
