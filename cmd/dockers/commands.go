package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/rickgorman/dockers/internal/engine"
	"github.com/rickgorman/dockers/internal/fleet"
	"github.com/rickgorman/dockers/internal/stats"
)

func runCmd(a *app) *cobra.Command {
	var opts fleet.RunOptions
	cmd := &cobra.Command{
		Use:   "run IMAGE [COMMAND] [ARG...]",
		Short: "Create and run a new container from an image",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Image, opts.Cmd = args[0], args[1:]
			return a.fleet.Run(cmd.Context(), opts)
		},
	}
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().StringVar(&opts.Name, "name", "", "Assign a name to the container")
	cmd.Flags().StringVar(&opts.Network, "network", "", "Connect the container to a network")
	cmd.Flags().StringArrayVarP(&opts.Volumes, "volume", "v", nil, "Bind mount a volume")
	cmd.Flags().StringArrayVarP(&opts.Publish, "publish", "p", nil, "Publish a container's port to the host")
	cmd.Flags().StringArrayVar(&opts.Expose, "expose", nil, "Expose a port without publishing it")
	cmd.Flags().BoolVar(&opts.Remove, "rm", false, "Automatically remove the container when it exits")
	cmd.Flags().BoolVarP(&opts.Interactive, "interactive", "i", false, "Keep STDIN open and forward it to the container")
	return cmd
}

func startCmd(a *app) *cobra.Command {
	var opts fleet.StartOptions
	cmd := &cobra.Command{
		Use:   "start CONTAINER...",
		Short: "Start one or more stopped containers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.fleet.Start(cmd.Context(), args, opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.Attach, "attach", "a", false, "Attach STDOUT/STDERR")
	cmd.Flags().BoolVarP(&opts.Interactive, "interactive", "i", false, "Attach container's STDIN")
	return cmd
}

func stopCmd(a *app) *cobra.Command {
	var (
		opts    fleet.StopOptions
		timeout int
	)
	cmd := &cobra.Command{
		Use:   "stop CONTAINER...",
		Short: "Stop one or more running containers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("time") {
				opts.Timeout = &timeout
			}
			return a.fleet.Stop(cmd.Context(), args, opts)
		},
	}
	cmd.Flags().IntVarP(&timeout, "time", "t", 0, "Seconds to wait before killing the container")
	cmd.Flags().StringVarP(&opts.Signal, "signal", "s", "", "Signal to send to the container")
	return cmd
}

func rmCmd(a *app) *cobra.Command {
	var opts fleet.RemoveOptions
	cmd := &cobra.Command{
		Use:   "rm CONTAINER...",
		Short: "Remove one or more containers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.fleet.Remove(cmd.Context(), args, opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Force the removal of a running container")
	cmd.Flags().BoolVarP(&opts.RemoveVolumes, "volumes", "v", false, "Remove anonymous volumes associated with the container")
	cmd.Flags().BoolVarP(&opts.RemoveLinks, "link", "l", false, "Remove the specified link")
	return cmd
}

func rmiCmd(a *app) *cobra.Command {
	var opts fleet.RemoveImageOptions
	cmd := &cobra.Command{
		Use:   "rmi IMAGE...",
		Short: "Remove one or more images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.fleet.RemoveImages(cmd.Context(), args, opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Force removal of the image")
	cmd.Flags().BoolVar(&opts.NoPrune, "no-prune", false, "Do not delete untagged parents")
	return cmd
}

func psCmd(a *app) *cobra.Command {
	var opts fleet.ListOptions
	cmd := &cobra.Command{
		Use:   "ps",
		Short: "List containers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.fleet.List(cmd.Context(), opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.All, "all", "a", false, "Show all containers (default shows just running)")
	cmd.Flags().BoolVarP(&opts.Size, "size", "s", false, "Display total file sizes")
	cmd.Flags().StringArrayVarP(&opts.Filters, "filter", "f", nil, "Filter output based on conditions provided (key=value)")
	return cmd
}

func logsCmd(a *app) *cobra.Command {
	var opts engine.LogOptions
	cmd := &cobra.Command{
		Use:   "logs CONTAINER",
		Short: "Fetch the logs of a container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.fleet.Logs(cmd.Context(), args[0], opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.Follow, "follow", "f", false, "Follow log output")
	cmd.Flags().StringVarP(&opts.Tail, "tail", "n", "all", "Number of lines to show from the end of the logs")
	cmd.Flags().BoolVarP(&opts.Timestamps, "timestamps", "t", false, "Show timestamps")
	return cmd
}

func eventsCmd(a *app) *cobra.Command {
	var filters []string
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Get real time events from the engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.fleet.Events(cmd.Context(), filters)
		},
	}
	cmd.Flags().StringArrayVarP(&filters, "filter", "f", nil, "Filter output based on conditions provided (key=value)")
	return cmd
}

func statsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Display a live stream of resource usage for every container",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			agg := stats.New(a.docker, stats.Config{
				DiscoveryInterval: a.cfg.Stats.DiscoveryInterval,
				RenderInterval:    a.cfg.Stats.RenderInterval,
			}, a.logger)
			screen := stats.OpenScreen(os.Stdout, a.cfg.Stats.KeepScreen)
			return agg.Run(cmd.Context(), screen)
		},
	}
	cmd.Flags().Bool("keep-screen", false, "Print frames one after another instead of redrawing the screen")
	return cmd
}
