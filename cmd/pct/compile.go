package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"goa.design/clue/log"

	"goa.design/pct/codegen"
	"goa.design/pct/codegen/naming"
)

var (
	compileOutDir  string
	compileRuntime bool
)

var compileCmd = &cobra.Command{
	Use:   "compile <input.pct>",
	Short: "Parse, analyze and generate Go code from a pct module",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
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
			return fmt.Errorf("%d error(s) found, aborting code generation", errs)
		}

		var code string
		if compileRuntime {
			code = codegen.NewRuntimeGenerator().Generate(m)
		} else {
			code = codegen.NewGenerator().Generate(m)
		}

		if err := os.MkdirAll(compileOutDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		outFile := filepath.Join(compileOutDir, naming.SanitizeToken(m.Name, "module")+".go")
		if err := os.WriteFile(outFile, []byte(code), 0o644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		log.Printf(cmd.Context(), "generated %s (%d bytes)", outFile, len(code))
		return nil
	},
}

func init() {
	compileCmd.Flags().StringVarP(&compileOutDir, "output", "o", "output", "output directory")
	compileCmd.Flags().BoolVar(&compileRuntime, "runtime", false, "generate code targeting the goa.design/pct/runtime package")
	rootCmd.AddCommand(compileCmd)
}
