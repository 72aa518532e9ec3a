// Command fxc is the command-line front end for the FX shading
// language compiler: parse a single file and print its diagnostics, or
// check a batch of files for errors.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "fxc",
		Short:   "fxc parses and checks FX shading language source files",
		Version: fmt.Sprintf("%s (%s)", version, commit),
	}
	root.AddCommand(newParseCmd())
	root.AddCommand(newCheckCmd())
	return root
}
