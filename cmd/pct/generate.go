package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"goa.design/clue/log"

	"goa.design/pct/spec"
)

var generateOut string

var generateCmd = &cobra.Command{
	Use:   "generate <input.spec.yaml>",
	Short: "Generate a pct module from a YAML specification document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		source, err := readSource(args[0])
		if err != nil {
			return err
		}

		yaml, err := spec.ParseYAML(source)
		if err != nil {
			return fmt.Errorf("YAML parse error: %w", err)
		}

		// Structural validation is advisory; lowering proceeds regardless.
		if msgs, err := spec.ValidateDoc(yaml); err != nil {
			log.Errorf(ctx, err, "document schema validation unavailable")
		} else {
			for _, msg := range msgs {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: spec document: %s\n", msg)
			}
		}

		doc, err := spec.ParseDoc(yaml)
		if err != nil {
			return fmt.Errorf("spec parse error: %w", err)
		}

		out := spec.NewEmitter().Emit(doc)

		// The emitted source must close the loop through the front end.
		if _, _, err := frontEnd(out); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "--- generated source ---")
			fmt.Fprintln(cmd.ErrOrStderr(), out)
			return fmt.Errorf("generated pct is invalid: %w", err)
		}

		outFile := generateOut
		if outFile == "" {
			stem := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			stem = strings.TrimSuffix(stem, ".spec")
			outFile = stem + ".pct"
		}
		if err := os.WriteFile(outFile, []byte(out), 0o644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		log.Printf(ctx, "generated %s (%d bytes) from spec %q", outFile, len(out), doc.Title)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVarP(&generateOut, "output", "o", "", "output file (default <input stem>.pct, .spec suffix stripped)")
	rootCmd.AddCommand(generateCmd)
}
