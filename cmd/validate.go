package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

var validateCmd = &cobra.Command{
	Use:   "validate [recap.json | URL]",
	Short: "Checks a recap document against the invariants of the data model",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		defer syncLogger(logger)

		source, name, err := recapSource(firstArg(args), logger)
		if err != nil {
			return err
		}
		recap, err := source.FetchRecap(cmd.Context(), name)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		verr := recap.Validate()
		if verr == nil {
			fmt.Fprintf(out, "%s %s\n", color.GreenString("ok"), name)
			return nil
		}
		violations := multierr.Errors(verr)
		for _, v := range violations {
			fmt.Fprintf(out, "%s %v\n", color.RedString("✗"), v)
		}
		return fmt.Errorf("%s has %d violation(s)", name, len(violations))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
