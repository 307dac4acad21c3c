package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/rickgorman/dockers/internal/config"
	"github.com/rickgorman/dockers/internal/engine"
	"github.com/rickgorman/dockers/internal/fleet"
	"github.com/rickgorman/dockers/internal/logging"
	"github.com/rickgorman/dockers/internal/stream"
	"github.com/rickgorman/dockers/internal/ui"
)

var version = "dev"

// app holds what every subcommand needs once flags are parsed.
type app struct {
	cfg     *config.Config
	logger  *log.Logger
	logs    io.Closer
	docker  *engine.Docker
	fleet   *fleet.Fleet
	cfgFile string
}

func (a *app) close() {
	if a.docker != nil {
		_ = a.docker.Close()
	}
	if a.logs != nil {
		_ = a.logs.Close()
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	a := &app{}
	root := newRootCmd(a)
	err := root.ExecuteContext(ctx)
	stop()
	a.close()

	if err != nil {
		if !errors.Is(err, context.Canceled) {
			ui.Fail("%v", err)
		}
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "dockers",
		Short:         "Run lifecycle operations against many containers at once",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}
	root.PersistentFlags().Bool("debug", false, "Enable debug logging")
	root.PersistentFlags().String("host", "", "Engine endpoint (defaults to DOCKER_HOST)")
	root.PersistentFlags().String("log-file", "", "Write logs to this file instead of stderr")
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "Config file (default $XDG_CONFIG_HOME/dockers/config.yaml)")

	root.AddCommand(
		runCmd(a),
		startCmd(a),
		stopCmd(a),
		rmCmd(a),
		rmiCmd(a),
		psCmd(a),
		logsCmd(a),
		eventsCmd(a),
		statsCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, used, err := config.Load(config.LoadOptions{File: a.cfgFile, Flags: cmd.Flags()})
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, closer, err := logging.Open(cfg.LogFile, cfg.LogLevel())
	if err != nil {
		return err
	}
	a.logger, a.logs = logger, closer
	if used != "" {
		logger.Debug("loaded config", "file", used)
	}

	docker, err := engine.NewDocker(cfg.Host)
	if err != nil {
		return err
	}
	a.docker = docker
	term := stream.StdTerminal()
	a.fleet = fleet.New(docker, term, logger)
	if cfg.LogFile != "" {
		a.fleet.EchoFailures(term.Err)
	}
	return nil
}
