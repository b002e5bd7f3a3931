// Command pct compiles pct modules: it checks them, generates Go code and
// web-service scaffolds from them, and lowers YAML specification documents to
// pct source.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"goa.design/clue/log"
)

var rootCmd = &cobra.Command{
	Use:           "pct",
	Short:         "Compiler for the pct service specification language",
	Long:          "pct compiles Lisp-syntaxed service specification modules to annotated Go code and web-service scaffolds, and lowers YAML spec documents to pct source.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	ctx := log.Context(context.Background(), log.WithFormat(log.FormatTerminal))
	rootCmd.SetContext(ctx)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
