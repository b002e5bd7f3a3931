package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"goa.design/clue/log"

	"goa.design/pct/codegen"
	"goa.design/pct/scaffold"
)

var scaffoldOutDir string

var scaffoldCmd = &cobra.Command{
	Use:   "scaffold <input.pct>",
	Short: "Synthesize a web-service project from a pct module",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		source, err := readSource(args[0])
		if err != nil {
			return err
		}
		m, lowering, err := frontEnd(source)
		if err != nil {
			return err
		}
		errs, _ := analyze(source, m, lowering)
		if errs > 0 {
			return fmt.Errorf("%d error(s) found, aborting scaffold", errs)
		}

		out := scaffold.Scaffold(m)
		if err := out.Write(ctx, scaffoldOutDir); err != nil {
			return err
		}

		// The domain code the scaffold mounts is the runtime-aware rendition.
		code := codegen.NewRuntimeGenerator().Generate(m)
		domainFile := filepath.Join(scaffoldOutDir, out.DomainDir, codegen.PackageName(m)+".go")
		if err := os.WriteFile(domainFile, []byte(code), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", domainFile, err)
		}
		log.Printf(ctx, "created %s", domainFile)
		return nil
	},
}

func init() {
	scaffoldCmd.Flags().StringVarP(&scaffoldOutDir, "output", "o", "scaffold-out", "output directory")
	rootCmd.AddCommand(scaffoldCmd)
}
