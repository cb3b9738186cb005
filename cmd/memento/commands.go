package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
)

// options holds the persistent flags shared by every subcommand.
type options struct {
	configPath string
	logLevel   string
	logFormat  string
	format     string
	seed       uint64
	metrics    bool

	stdout io.Writer
	stderr io.Writer
}

// newRootCmd builds the command tree writing to stdout and stderr.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "memento",
		Short: "Snapshot and undo demo driver",
		Long: `memento drives a state owner and its bounded snapshot history.
Without a subcommand it runs the demo scenario.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return validateFormat(opts.format)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd, opts)
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to a TOML or YAML configuration file")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&opts.logFormat, "log-format", "", "log format (text, json)")
	flags.StringVar(&opts.format, "format", formatText, "checkpoint list format (text, json, yaml)")
	flags.Uint64Var(&opts.seed, "seed", 0, "seed for the random state generator")
	flags.BoolVar(&opts.metrics, "metrics", false, "print Prometheus metrics to stderr on exit")

	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the checkpoint, mutate and rollback scenario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd, opts)
		},
	}

	var (
		watch    bool
		interval time.Duration
	)
	runCmd := &cobra.Command{
		Use:   "run STEP...",
		Short: "Dispatch engine commands in order",
		Long: `run dispatches each named step against one engine.
Steps: mutate, checkpoint, revert, list, state.`,
		Example: "  memento run checkpoint mutate checkpoint mutate list revert state",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSteps(cmd, opts, args, watch, interval)
		},
	}
	runCmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload the Lua generator script when it changes")
	runCmd.Flags().DurationVar(&interval, "interval", 0, "pause between steps")

	invokeCmd := &cobra.Command{
		Use:   "invoke",
		Short: "Run the invoker with its start and finish commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInvoke(cmd, opts)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "memento %s\n", version)
			fmt.Fprintf(out, "Commit: %s\n", commit)
			fmt.Fprintf(out, "Built: %s\n", date)
		},
	}

	rootCmd.AddCommand(demoCmd, runCmd, invokeCmd, versionCmd)
	return rootCmd
}
