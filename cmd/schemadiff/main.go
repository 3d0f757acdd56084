// Command schemadiff compares two MySQL schemas and prints the DDL that
// reconciles them.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/koustreak/schemadiff/internal/config"
	"github.com/koustreak/schemadiff/internal/errs"
	"github.com/koustreak/schemadiff/internal/logger"
	"github.com/spf13/cobra"
)

var version = "dev"

// errChanges makes compare --exit-code exit with status 2.
var errChanges = errors.New("schemas differ")

// app is the state shared by all subcommands.
type app struct {
	configFile string
	logLevel   string

	cfg *config.Config
	log *logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "schemadiff",
		Short:         "Compare MySQL schemas and generate reconciling DDL",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&a.configFile, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override logger.level (debug, info, warn, error)")

	root.AddCommand(
		newCompareCmd(a),
		newSnapshotCmd(a),
		newTextDiffCmd(a),
		newServeCmd(a),
		newHistoryCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logger.Level = a.logLevel
	}
	cfg.Logger.Output = cmd.ErrOrStderr()
	a.cfg = cfg
	a.log = logger.New(&cfg.Logger)
	logger.SetGlobal(a.log)
	return nil
}

func main() {
	err := newRootCmd().Execute()
	switch {
	case err == nil:
	case errors.Is(err, errChanges):
		os.Exit(2)
	default:
		fmt.Fprintf(os.Stderr, "schemadiff: %v\n", err)
		if errs.IsInvalidInput(err) {
			os.Exit(64)
		}
		os.Exit(1)
	}
}
