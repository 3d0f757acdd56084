package main

import (
	"context"
	"fmt"
	"io"

	"github.com/koustreak/schemadiff/internal/compare"
	"github.com/koustreak/schemadiff/internal/config"
	"github.com/koustreak/schemadiff/internal/ddl"
	"github.com/koustreak/schemadiff/internal/errs"
	"github.com/koustreak/schemadiff/internal/history"
	"github.com/koustreak/schemadiff/internal/source"
	"github.com/spf13/cobra"
)

type compareOptions struct {
	a, b      config.Source
	direction string
	all       bool
	ddlOnly   bool
	exitCode  bool
}

func newCompareCmd(a *app) *cobra.Command {
	var opts compareOptions
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare side A against side B",
		Long: "Compare two schemas. Each side is a live MySQL DSN, a snapshot file or a\n" +
			"snapshot object. Flags override the a: and b: sections of the config file.\n" +
			"Forward DDL turns B into A; --direction reverse turns A into B.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runCompare(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.a.DSN, "a-dsn", "", "MySQL DSN of side A")
	f.StringVar(&opts.a.Database, "a-database", "", "schema of side A, if not in the DSN")
	f.StringVar(&opts.a.File, "a-file", "", "snapshot file of side A")
	f.StringVar(&opts.a.Object, "a-object", "", "snapshot object key of side A")
	f.StringVar(&opts.b.DSN, "b-dsn", "", "MySQL DSN of side B")
	f.StringVar(&opts.b.Database, "b-database", "", "schema of side B, if not in the DSN")
	f.StringVar(&opts.b.File, "b-file", "", "snapshot file of side B")
	f.StringVar(&opts.b.Object, "b-object", "", "snapshot object key of side B")
	f.StringVarP(&opts.direction, "direction", "d", "forward", "forward or reverse")
	f.BoolVar(&opts.all, "all", false, "list equal objects too")
	f.BoolVar(&opts.ddlOnly, "ddl-only", false, "print only the DDL")
	f.BoolVar(&opts.exitCode, "exit-code", false, "exit with status 2 when the schemas differ")
	return cmd
}

func (a *app) runCompare(ctx context.Context, out io.Writer, opts compareOptions) error {
	dir, err := parseDirection(opts.direction)
	if err != nil {
		return err
	}

	srcA, srcB := pickSource(opts.a, a.cfg.A), pickSource(opts.b, a.cfg.B)
	if err := srcA.Validate("a"); err != nil {
		return err
	}
	if err := srcB.Validate("b"); err != nil {
		return err
	}

	store, err := source.OpenStorage(ctx, &a.cfg.Storage)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}
	loader := source.NewLoader(store, &a.cfg.Storage, a.log)

	snapA, err := loader.Load(ctx, srcA)
	if err != nil {
		return fmt.Errorf("side a: %w", err)
	}
	snapB, err := loader.Load(ctx, srcB)
	if err != nil {
		return fmt.Errorf("side b: %w", err)
	}

	res, err := compare.New(a.log).Compare(snapA, snapB)
	if err != nil {
		return err
	}

	var buf ddl.Buffer
	ddl.Render(&buf, res.Diffs, dir)

	if !opts.ddlOnly {
		printSummary(out, res, opts.all)
	}
	fmt.Fprint(out, buf.String())

	if a.cfg.HistoryEnabled() {
		if err := a.record(ctx, res, dir, buf.String()); err != nil {
			a.log.ErrorWith("record comparison", err, nil)
		}
	}

	if opts.exitCode && res.HasChanges() {
		return errChanges
	}
	return nil
}

func (a *app) record(ctx context.Context, res *compare.Result, dir ddl.Direction, rendered string) error {
	store, err := history.Open(ctx, &a.cfg.History, a.log)
	if err != nil {
		return err
	}
	defer store.Close()

	// History keeps forward DDL regardless of the printed direction.
	if dir != ddl.Forward {
		var fwd ddl.Buffer
		ddl.Render(&fwd, res.Diffs, ddl.Forward)
		rendered = fwd.String()
	}
	_, err = store.Record(ctx, res, rendered)
	return err
}

func printSummary(out io.Writer, res *compare.Result, all bool) {
	fmt.Fprintf(out, "-- A: %s  B: %s\n", res.DatabaseA, res.DatabaseB)
	for _, d := range res.Diffs {
		label := compare.Label(d)
		if label == "" {
			if !all || d.Mode() != compare.ModeEqual {
				continue
			}
			label = d.Kind().String() + " `" + d.Name() + "` is equal"
		}
		fmt.Fprintf(out, "-- %s\n", label)
	}
	if !res.HasChanges() {
		fmt.Fprintln(out, "-- no differences")
	}
}

// pickSource prefers a source given on the command line over the config file.
// A database flag on its own overrides the database of the file source.
func pickSource(flag, file config.Source) config.Source {
	if flag.Kind() != config.SourceNone {
		return flag
	}
	if flag.Database != "" {
		file.Database = flag.Database
	}
	return file
}

func parseDirection(s string) (ddl.Direction, error) {
	switch s {
	case "forward", "":
		return ddl.Forward, nil
	case "reverse":
		return ddl.Reverse, nil
	default:
		return 0, errs.Newf(errs.ErrKindInvalidInput, "unknown direction %q (want forward or reverse)", s)
	}
}
