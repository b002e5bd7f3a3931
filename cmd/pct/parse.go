package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"goa.design/pct/lexer"
	"goa.design/pct/sexpr"
)

var parseCmd = &cobra.Command{
	Use:   "parse <input.pct>",
	Short: "Parse a pct module and print its concrete syntax tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, err := readSource(args[0])
		if err != nil {
			return err
		}
		toks, err := lexer.Tokenize(source)
		if err != nil {
			return fmt.Errorf("lexer error: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Tokens: %d\n", len(toks))

		exprs, err := sexpr.Read(toks)
		if err != nil {
			return fmt.Errorf("parse error: %w", err)
		}
		for i, e := range exprs {
			fmt.Fprintf(cmd.OutOrStdout(), "Expression %d: %s\n", i, sexpr.Format(e))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}
