package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/penwyp/go-codex-trace/internal/application/convert"
	"github.com/penwyp/go-codex-trace/internal/core/render"
	"github.com/penwyp/go-codex-trace/internal/data/scanner"
	"github.com/penwyp/go-codex-trace/internal/presentation/formatter"
	"github.com/penwyp/go-codex-trace/internal/util"
)

type renderOptions struct {
	mode        string
	threshold   int
	keep        int
	outputDir   string
	outputFile  string
	concurrency int
	watch       bool
}

func newRenderCmd(root *rootOptions) *cobra.Command {
	opts := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render [flags] <input>...",
		Short: "Convert session logs to markdown traces",
		Long: `Convert Codex session JSONL logs into markdown documents, one per log.

Inputs may be .jsonl files or directories (their *.jsonl files, not recursive).
Each document is written to <output-dir>/<stem>.<mode>.md; existing files are
never overwritten, a numeric suffix is added instead. The written paths are
printed as a JSON array.

In concise mode long texts are cut to --truncate-keep characters once they
exceed --truncate-threshold. Full mode shows everything plus the raw record.`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, root, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.mode, "mode", string(render.ModeConcise),
		"Rendering mode (concise, full)")
	cmd.Flags().IntVar(&opts.threshold, "truncate-threshold", render.DefaultThreshold,
		"Truncate texts longer than this many characters (concise mode)")
	cmd.Flags().IntVar(&opts.keep, "truncate-keep", render.DefaultKeep,
		"Characters kept from a truncated text (concise mode)")
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "",
		"Directory for generated documents (default session_markdown_traces)")
	cmd.Flags().StringVar(&opts.outputFile, "output-file", "",
		"Exact output path; only valid with a single input")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 0,
		"Files converted in parallel (0 = number of CPUs)")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false,
		"Keep running and re-render inputs when they change")

	return cmd
}

// applyFlags layers explicitly set flags over the loaded configuration.
func (o *renderOptions) applyFlags(cmd *cobra.Command, root *rootOptions) {
	r := &root.cfg.Render
	flags := cmd.Flags()
	if flags.Changed("mode") {
		r.Mode = o.mode
	}
	if flags.Changed("truncate-threshold") {
		r.TruncateThreshold = o.threshold
	}
	if flags.Changed("truncate-keep") {
		r.TruncateKeep = o.keep
	}
	if flags.Changed("output-dir") {
		r.OutputDir = o.outputDir
	}
	if flags.Changed("concurrency") {
		r.Concurrency = o.concurrency
	}
}

func runRender(cmd *cobra.Command, root *rootOptions, opts *renderOptions, args []string) error {
	opts.applyFlags(cmd, root)
	cfg := root.cfg

	policy := cfg.Policy()
	if err := policy.Validate(); err != nil {
		return err
	}

	inputs, err := scanner.NewFileScanner().Inputs(args)
	if err != nil {
		return err
	}

	conv, err := convert.New(convert.Config{
		Policy:      policy,
		OutputDir:   util.ExpandPath(cfg.Render.OutputDir),
		OutputFile:  util.ExpandPath(opts.outputFile),
		Concurrency: cfg.Render.Concurrency,
		Now:         util.GetTimeProvider().Now,
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	results, runErr := conv.Run(ctx, inputs)
	if err := formatter.WriteJSONList(cmd.OutOrStdout(), convert.Outputs(results)); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	util.LogInfof("Rendered %d session logs", len(results))

	if !opts.watch {
		return nil
	}

	watcher, err := conv.NewWatcher(results, convert.DefaultDebounce)
	if err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	watcher.OnRender = func(r convert.Result) {
		if r.Err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "re-render %s: %v\n", r.Input, r.Err)
			return
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "re-rendered %s\n", r.Output)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %d file(s), press Ctrl+C to stop\n", len(results))
	return watcher.Run(ctx)
}
