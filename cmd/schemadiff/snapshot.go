package main

import (
	"context"
	"fmt"
	"io"

	"github.com/koustreak/schemadiff/internal/config"
	"github.com/koustreak/schemadiff/internal/errs"
	"github.com/koustreak/schemadiff/internal/snapshot"
	"github.com/koustreak/schemadiff/internal/source"
	"github.com/spf13/cobra"
)

type snapshotOptions struct {
	from   config.Source
	out    string
	object string
	list   bool
}

func newSnapshotCmd(a *app) *cobra.Command {
	var opts snapshotOptions
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Capture a schema into a snapshot document",
		Long: "Read a schema (usually from a live server) and write it as a YAML snapshot\n" +
			"to a file, to standard output, or to object storage. With --list, print the\n" +
			"snapshot objects stored under the configured prefix.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.list {
				return a.runSnapshotList(cmd.Context(), cmd.OutOrStdout())
			}
			return a.runSnapshot(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.from.DSN, "dsn", "", "MySQL DSN to read (default: side a of the config)")
	f.StringVar(&opts.from.Database, "database", "", "schema to read, if not in the DSN")
	f.StringVar(&opts.from.File, "file", "", "re-encode an existing snapshot file")
	f.StringVarP(&opts.out, "out", "o", "", "write to this file instead of standard output")
	f.StringVar(&opts.object, "object", "", "upload to this object key; \"-\" uses <prefix><database>.yaml")
	f.BoolVar(&opts.list, "list", false, "list stored snapshot objects")
	return cmd
}

func (a *app) runSnapshot(ctx context.Context, out io.Writer, opts snapshotOptions) error {
	src := pickSource(opts.from, a.cfg.A)
	if err := src.Validate("snapshot"); err != nil {
		return err
	}
	if opts.out != "" && opts.object != "" {
		return errs.New(errs.ErrKindInvalidInput, "--out and --object are mutually exclusive")
	}

	store, err := source.OpenStorage(ctx, &a.cfg.Storage)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}
	snap, err := source.NewLoader(store, &a.cfg.Storage, a.log).Load(ctx, src)
	if err != nil {
		return err
	}

	switch {
	case opts.out != "":
		if err := snapshot.SaveFile(opts.out, snap); err != nil {
			return err
		}
		a.log.Infof("snapshot of %s written to %s", snap.Database, opts.out)
	case opts.object != "":
		if store == nil {
			return errs.New(errs.ErrKindInvalidInput, "--object needs storage.endpoint in the config")
		}
		key := opts.object
		if key == "-" {
			key = a.cfg.Storage.Key(snap.Database + ".yaml")
		}
		info, err := snapshot.Save(ctx, store, a.cfg.Storage.Bucket, key, snap)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s/%s (%d bytes)\n", a.cfg.Storage.Bucket, info.Key, info.Size)
	default:
		return snapshot.Encode(out, snap)
	}
	return nil
}

func (a *app) runSnapshotList(ctx context.Context, out io.Writer) error {
	store, err := source.OpenStorage(ctx, &a.cfg.Storage)
	if err != nil {
		return err
	}
	if store == nil {
		return errs.New(errs.ErrKindInvalidInput, "--list needs storage.endpoint in the config")
	}
	defer store.Close()

	objs, err := snapshot.List(ctx, store, a.cfg.Storage.Bucket, a.cfg.Storage.Prefix)
	if err != nil {
		return err
	}
	for _, o := range objs {
		fmt.Fprintf(out, "%s\t%d\t%s\n", o.LastModified.UTC().Format("2006-01-02T15:04:05Z"), o.Size, o.Key)
	}
	return nil
}
