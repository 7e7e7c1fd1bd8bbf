package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/zoobzio/rowz"
)

var describeCmd = &cobra.Command{
	Use:   "describe <config>",
	Short: "Print the operators a configuration builds",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := rowz.LoadFile(args[0])
		if err != nil {
			return err
		}
		pipeline, err := rowz.Build(*cfg)
		if err != nil {
			return err
		}
		defer pipeline.Close()
		describe(cmd.OutOrStdout(), pipeline)
		return nil
	},
}

func describe(out io.Writer, pipeline *rowz.Pipeline) {
	fmt.Fprintf(out, "%s%s%s", colorCyan, pipeline.Name(), colorReset)
	if v := pipeline.Version(); v != "" {
		fmt.Fprintf(out, " (version %s)", v)
	}
	fmt.Fprintln(out)

	for _, pass := range pipeline.Passes() {
		fmt.Fprintf(out, "  %s", pass.Name())
		if c := pass.Comment(); c != "" {
			fmt.Fprintf(out, " %s# %s%s", colorGray, c, colorReset)
		}
		fmt.Fprintln(out)
		for _, op := range pass.Transformers() {
			fmt.Fprintf(out, "    %s\n", op.Name())
		}
		if order, ok := pass.Order(); ok {
			fmt.Fprintf(out, "    %sorder%s\n", colorYellow, colorReset)
			for _, op := range order {
				fmt.Fprintf(out, "      %s\n", op.Name())
			}
		}
	}
}
