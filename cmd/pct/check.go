package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <input.pct>",
	Short: "Parse and analyze a pct module without generating code",
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
		errs, warns := analyze(source, m, lowering)

		version := int64(0)
		if m.Version != nil {
			version = *m.Version
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Module '%s' v%d: %d error(s), %d warning(s)\n",
			m.Name, version, errs, warns)
		if errs > 0 {
			return fmt.Errorf("check failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
