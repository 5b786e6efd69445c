package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-codex-trace/internal/config"
	coreerrors "github.com/penwyp/go-codex-trace/internal/core/errors"
	"github.com/penwyp/go-codex-trace/internal/util"
)

// rootOptions holds persistent flags and the configuration they resolve to.
type rootOptions struct {
	debug      bool
	configPath string
	timezone   string

	cfg *config.Config
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "go-codex-trace",
		Short: "Render and locate Codex session logs",
		Long: `go-codex-trace turns Codex CLI session logs (JSON Lines rollout files) into
readable markdown traces, and finds the sessions recorded for a workspace.

Examples:
  go-codex-trace render ~/.codex/sessions/2026/02/05/rollout-*.jsonl
  go-codex-trace render --mode full --output-dir traces sessions/
  go-codex-trace find --workspace-dir . --year 2026 --month 2 --day 5
  go-codex-trace find --workspace-dir ~/src/app --start-date 2026-02-01 --end-date 2026-02-05 --format table`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().BoolVar(&opts.debug, "debug", false,
		"Enable debug mode (debug logs on stderr)")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultConfigFile,
		"Configuration file path")
	cmd.PersistentFlags().StringVar(&opts.timezone, "timezone", "",
		"Timezone for generated timestamps (e.g., Asia/Shanghai, UTC)")

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return coreerrors.Wrap(err, coreerrors.CategoryUsage, "invalid_flag", c.UsageString())
	})

	cmd.AddCommand(newRenderCmd(opts), newFindCmd(opts), newVersionCmd())
	return cmd
}

// setup loads configuration and initializes logging and the time provider.
func (o *rootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("timezone") {
		cfg.Timezone = o.timezone
	}
	o.cfg = cfg

	level := cfg.Log.Level
	if o.debug {
		level = "debug"
	}
	logOpts := util.LoggerOptions{
		Level:  level,
		File:   util.ExpandPath(cfg.Log.File),
		Format: util.LogFormat(cfg.Log.Format),
	}
	if o.debug {
		logOpts.Console = cmd.ErrOrStderr()
	}
	if err := util.InitLogger(logOpts); err != nil {
		// Logging must not block the command; fall back to console only.
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
		logOpts.File = ""
		if err := util.InitLogger(logOpts); err != nil {
			return coreerrors.Wrap(err, coreerrors.CategoryInternal, "logger_init_failed", "")
		}
	}

	if err := util.InitializeTimeProvider(cfg.Timezone); err != nil {
		return coreerrors.Wrap(err, coreerrors.CategoryUsage, "invalid_timezone", "")
	}

	util.LogDebugf("Running %s with config %s", cmd.CommandPath(), o.configPath)
	return nil
}

// usageArgs wraps a cobra argument validator so its failures are usage errors.
func usageArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return coreerrors.Wrap(err, coreerrors.CategoryUsage, "invalid_args", cmd.UsageString())
		}
		return nil
	}
}

// Execute runs the CLI until completion or SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer util.CloseLogger()

	return NewRootCmd().ExecuteContext(ctx)
}
