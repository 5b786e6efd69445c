package commands

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	coreerrors "github.com/penwyp/go-codex-trace/internal/core/errors"
	"github.com/penwyp/go-codex-trace/internal/data/cache"
	"github.com/penwyp/go-codex-trace/internal/data/locator"
	"github.com/penwyp/go-codex-trace/internal/presentation/formatter"
	"github.com/penwyp/go-codex-trace/internal/util"
)

type findOptions struct {
	workspaceDir string
	sessionsRoot string

	year  int
	month int
	day   int

	startDate string
	endDate   string

	format     string
	noCache    bool
	resetCache bool
}

func newFindCmd(root *rootOptions) *cobra.Command {
	opts := &findOptions{}

	cmd := &cobra.Command{
		Use:   "find --workspace-dir <dir> (--year Y --month M --day D | --start-date YYYY-MM-DD [--end-date YYYY-MM-DD])",
		Short: "Locate session logs by workspace and date",
		Long: `Locate Codex session logs recorded for a workspace directory on a date or
within an inclusive date range.

Sessions are read from <sessions-root>/YYYY/MM/DD. A session matches when the
cwd in its first record resolves to the workspace directory and its start
timestamp falls within the range.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(cmd, root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.workspaceDir, "workspace-dir", "",
		"Workspace directory to match against the session cwd (required)")
	cmd.Flags().StringVar(&opts.sessionsRoot, "sessions-root", "",
		"Codex sessions root directory (default ~/.codex/sessions)")
	cmd.Flags().IntVar(&opts.year, "year", 0, "Year, e.g. 2026")
	cmd.Flags().IntVar(&opts.month, "month", 0, "Month, 1-12")
	cmd.Flags().IntVar(&opts.day, "day", 0, "Day, 1-31")
	cmd.Flags().StringVar(&opts.startDate, "start-date", "",
		"Start date in YYYY-MM-DD format (alternative to --year/--month/--day)")
	cmd.Flags().StringVar(&opts.endDate, "end-date", "",
		"End date in YYYY-MM-DD format (defaults to the start date)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", formatter.FormatJSON,
		"Output format (json, paths, table, csv)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false,
		"Read session headers without the header cache")
	cmd.Flags().BoolVar(&opts.resetCache, "reset-cache", false,
		"Clear the header cache before searching")

	return cmd
}

// dateRange resolves the date flags. Exactly one of the single-day form and
// the range form must be given.
func (o *findOptions) dateRange(cmd *cobra.Command) (time.Time, time.Time, error) {
	flags := cmd.Flags()
	hasYMD := flags.Changed("year") && flags.Changed("month") && flags.Changed("day")
	hasRange := flags.Changed("start-date")

	switch {
	case hasYMD && hasRange:
		return time.Time{}, time.Time{}, coreerrors.Usagef("conflicting_dates",
			"Use either --year/--month/--day or --start-date/--end-date, not both.")
	case !hasYMD && !hasRange:
		return time.Time{}, time.Time{}, coreerrors.Usagef("missing_dates",
			"Provide date using --year/--month/--day or --start-date.")
	case hasYMD:
		d, err := locator.NewDate(o.year, o.month, o.day)
		if err != nil {
			return time.Time{}, time.Time{}, coreerrors.Wrap(err, coreerrors.CategoryUsage, "invalid_date", "")
		}
		return d, d, nil
	}

	start, err := locator.ParseDate(o.startDate)
	if err != nil {
		return time.Time{}, time.Time{}, coreerrors.Wrap(err, coreerrors.CategoryUsage, "invalid_date", "")
	}
	end := start
	if flags.Changed("end-date") && o.endDate != "" {
		end, err = locator.ParseDate(o.endDate)
		if err != nil {
			return time.Time{}, time.Time{}, coreerrors.Wrap(err, coreerrors.CategoryUsage, "invalid_date", "")
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, coreerrors.Usagef("invalid_date_range",
			"--end-date must be greater than or equal to --start-date.")
	}
	return start, end, nil
}

// headerCache opens the header cache, clearing it first on --reset-cache.
// Cache problems only cost speed, so they are logged and the search continues
// uncached.
func (o *findOptions) headerCache(root *rootOptions) *cache.FileCache {
	enabled := root.cfg.Cache.Enabled && !o.noCache
	if !enabled && !o.resetCache {
		return nil
	}

	c, err := cache.NewFileCache(util.ExpandPath(root.cfg.Cache.Dir))
	if err != nil {
		util.LogWarnf("Header cache unavailable: %v", err)
		return nil
	}
	if o.resetCache {
		if err := c.Clear(); err != nil {
			util.LogWarnf("Failed to clear header cache: %v", err)
		} else {
			util.LogInfo("Header cache cleared")
		}
	}
	if !enabled {
		return nil
	}
	if err := c.Preload(); err != nil {
		util.LogWarnf("Failed to preload header cache: %v", err)
	}
	return c
}

func runFind(cmd *cobra.Command, root *rootOptions, opts *findOptions) error {
	if opts.workspaceDir == "" {
		return coreerrors.Usagef("missing_workspace", "--workspace-dir is required")
	}
	start, end, err := opts.dateRange(cmd)
	if err != nil {
		return err
	}

	sessionsRoot := root.cfg.SessionsRoot
	if cmd.Flags().Changed("sessions-root") {
		sessionsRoot = opts.sessionsRoot
	}
	format := root.cfg.Find.Format
	if cmd.Flags().Changed("format") {
		format = opts.format
	}

	out := cmd.OutOrStdout()
	var fmtOpts formatter.Options
	if f, ok := out.(*os.File); ok {
		fmtOpts = formatter.DetectOptions(f)
	}
	output, err := formatter.New(format, fmtOpts)
	if err != nil {
		return err
	}

	var headers cache.Cache
	if c := opts.headerCache(root); c != nil {
		headers = c
		defer func() {
			if err := c.Flush(); err != nil {
				util.LogWarnf("Failed to save header cache: %v", err)
			}
		}()
	}

	entries, err := locator.New(headers).Find(cmd.Context(), locator.Query{
		Root:      sessionsRoot,
		Workspace: opts.workspaceDir,
		Start:     start,
		End:       end,
	})
	if err != nil {
		return err
	}

	return output.Format(out, formatter.RowsFromEntries(entries))
}
