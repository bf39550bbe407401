package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/sarchlab/ipif/datarecording"
	"github.com/sarchlab/ipif/tracing"
	"github.com/spf13/cobra"
)

var reportArgs struct {
	failed bool
	limit  int
}

var reportCmd = &cobra.Command{
	Use:   "report <file.sqlite3>",
	Short: "Summarize the self-test results stored in a recording.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printReport(cmd.Context(), cmd.OutOrStdout(), args[0],
			reportArgs.failed, reportArgs.limit)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().BoolVar(&reportArgs.failed, "failed", false,
		"Only list failing runs")
	reportCmd.Flags().IntVar(&reportArgs.limit, "limit", 0,
		"Maximum number of runs to list, 0 for all")
}

func printReport(
	ctx context.Context,
	out io.Writer,
	file string,
	failedOnly bool,
	limit int,
) error {
	_, err := os.Stat(file)
	if err != nil {
		return err
	}

	reader, err := datarecording.NewReader(file)
	if err != nil {
		return err
	}
	defer reader.Close()

	reader.MapTable(tracing.ResultTable, tracing.ResultRecord{})

	params := datarecording.QueryParams{Limit: limit}
	if failedOnly {
		params.Where = "StatusCode != ?"
		params.Args = []any{0}
	}

	results, total, err := reader.Query(ctx, tracing.ResultTable, params)
	if err != nil {
		return fmt.Errorf("reading %s: %w", file, err)
	}

	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tTESTER\tWIDTH\tMASK\tSTATUS\tFAILED STAGE")

	for _, r := range results {
		rec := r.(*tracing.ResultRecord)
		fmt.Fprintf(w, "%s\t%s\t%d\t0x%08x\t%s\t%s\n",
			rec.RunID, rec.Tester, rec.Width, rec.Mask, rec.Status,
			rec.FailedStage)
	}

	err = w.Flush()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%d of %d runs listed\n", len(results), total)

	return nil
}
