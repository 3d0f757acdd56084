package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/koustreak/schemadiff/internal/history"
	"github.com/koustreak/schemadiff/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the comparison HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.runServe(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr)")
	return cmd
}

func (a *app) runServe(ctx context.Context) error {
	var opts []server.Option
	if a.cfg.HistoryEnabled() {
		store, err := history.Open(ctx, &a.cfg.History, a.log)
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, server.WithHistory(store), server.WithHealthCheck("history", store))
	}
	return server.New(a.cfg.Server, a.log, opts...).ListenAndServe(ctx)
}
