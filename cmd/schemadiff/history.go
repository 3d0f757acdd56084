package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/koustreak/schemadiff/internal/compare"
	"github.com/koustreak/schemadiff/internal/errs"
	"github.com/koustreak/schemadiff/internal/history"
	"github.com/spf13/cobra"
)

type historyOptions struct {
	database string
	limit    int
	offset   int
	showDDL  string
}

func newHistoryCmd(a *app) *cobra.Command {
	var opts historyOptions
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded comparisons",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runHistory(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.database, "database", "", "only runs whose side A is this database")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", history.DefaultLimit, "number of runs")
	cmd.Flags().IntVar(&opts.offset, "offset", 0, "skip this many of the newest runs")
	cmd.Flags().StringVar(&opts.showDDL, "ddl", "", "print the DDL of the run with this id")
	return cmd
}

func (a *app) runHistory(ctx context.Context, out io.Writer, opts historyOptions) error {
	if !a.cfg.HistoryEnabled() {
		return errs.New(errs.ErrKindInvalidInput, "history is not configured (history.dsn or SCHEMADIFF_HISTORY_DSN)")
	}
	store, err := history.Open(ctx, &a.cfg.History, a.log)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, offset := opts.limit, opts.offset
	if opts.showDDL != "" {
		limit, offset = history.MaxLimit, 0
	}
	runs, err := store.Recent(ctx, opts.database, limit, offset)
	if err != nil {
		return err
	}

	if opts.showDDL != "" {
		for _, r := range runs {
			if r.ID == opts.showDDL {
				_, err := io.WriteString(out, r.DDL)
				return err
			}
		}
		return errs.Newf(errs.ErrKindNotFound, "run %s not found among the latest %d", opts.showDDL, history.MaxLimit)
	}

	return printRuns(out, runs)
}

func printRuns(out io.Writer, runs []history.Run) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tA\tB\tLEFT_ONLY\tRIGHT_ONLY\tDIFFERENT")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
			r.ID, r.CreatedAt.Format("2006-01-02 15:04:05"), r.DatabaseA, r.DatabaseB,
			r.Counts[compare.ModeLeftOnly], r.Counts[compare.ModeRightOnly], r.Counts[compare.ModeDifferent])
	}
	return tw.Flush()
}
