package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/zoobzio/rowz"
)

var validateCmd = &cobra.Command{
	Use:   "validate <config>",
	Short: "Check a pipeline configuration",
	Long: `Load a pipeline configuration and report every problem found in it.

The exit status is non-zero when the configuration is invalid.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd.OutOrStdout(), args[0])
	},
}

func runValidate(out io.Writer, path string) error {
	cfg, err := rowz.LoadFile(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		var verrs rowz.ValidationErrors
		if errors.As(err, &verrs) {
			for _, v := range verrs {
				fmt.Fprintf(out, "%s✗%s %s\n", colorRed, colorReset, v.Error())
			}
			return fmt.Errorf("%s: %d problem(s) found", path, len(verrs))
		}
		return err
	}

	operators := 0
	for _, pass := range cfg.Passes {
		operators += len(pass.Transformers) + len(pass.OrderItems)
	}
	fmt.Fprintf(out, "%s✓%s %s: %d pass(es), %d operator(s)\n", colorGreen, colorReset, path, len(cfg.Passes), operators)
	return nil
}
