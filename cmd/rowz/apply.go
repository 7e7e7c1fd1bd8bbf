package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/zoobzio/rowz"
)

type applyOptions struct {
	meta     map[string]string
	input    string
	name     string
	failFast bool
	sorted   bool
}

var (
	applyOpts applyOptions

	applyCmd = &cobra.Command{
		Use:   "apply <config>",
		Short: "Apply a pipeline to rows read as JSON lines",
		Long: `Apply a pipeline configuration to every row of the input.

Each input line is a JSON array of {"idx", "name", "type", "data"} objects.
Transformed rows are written to stdout in the same form. A row that fails
is reported on stderr and skipped unless --fail-fast is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if applyOpts.input != "" && applyOpts.input != "-" {
				f, err := os.Open(applyOpts.input)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			cfg, err := rowz.LoadFile(args[0])
			if err != nil {
				return err
			}
			opts := []rowz.BuildOption{}
			if applyOpts.name != "" {
				opts = append(opts, rowz.WithName(applyOpts.name))
			}
			pipeline, err := rowz.Build(*cfg, opts...)
			if err != nil {
				return err
			}
			defer pipeline.Close()

			return runApply(cmd.Context(), pipeline, applyOpts, in, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
)

func init() {
	applyCmd.Flags().StringVarP(&applyOpts.input, "input", "i", "", "Read rows from a file instead of stdin")
	applyCmd.Flags().StringVar(&applyOpts.name, "name", "", "Pipeline name used in error paths")
	applyCmd.Flags().BoolVar(&applyOpts.failFast, "fail-fast", false, "Stop at the first failing row")
	applyCmd.Flags().BoolVar(&applyOpts.sorted, "sorted", false, "Write entries ordered by idx")
	applyCmd.Flags().StringToStringVar(&applyOpts.meta, "meta", nil, "Row metadata for meta values, as key=value")
}

// applyStats counts the rows seen by runApply.
type applyStats struct {
	Read    int
	Written int
	Failed  int
}

func runApply(ctx context.Context, pipeline *rowz.Pipeline, opts applyOptions, in io.Reader, out, errOut io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(opts.meta) > 0 {
		ctx = rowz.WithMeta(ctx, opts.meta)
	}

	var stats applyStats
	enc := json.NewEncoder(out)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Bytes()
		if len(text) == 0 {
			continue
		}
		stats.Read++

		row := rowz.NewRow()
		err := json.Unmarshal(text, row)
		if err == nil {
			err = pipeline.Apply(ctx, row)
		}
		if err != nil {
			stats.Failed++
			fmt.Fprintf(errOut, "%sline %d:%s %v\n", colorRed, line, colorReset, err)
			if opts.failFast {
				return fmt.Errorf("line %d: %w", line, err)
			}
			continue
		}

		if opts.sorted {
			row = rowz.NewRow(row.Sorted()...)
		}
		if err := enc.Encode(row); err != nil {
			return err
		}
		stats.Written++
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	fmt.Fprintf(errOut, "%d row(s) read, %d written, %d failed\n", stats.Read, stats.Written, stats.Failed)
	if stats.Failed > 0 {
		return fmt.Errorf("%d row(s) failed", stats.Failed)
	}
	return nil
}
