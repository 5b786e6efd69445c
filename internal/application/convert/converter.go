package convert

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	coreerrors "github.com/penwyp/go-codex-trace/internal/core/errors"
	"github.com/penwyp/go-codex-trace/internal/core/render"
	"github.com/penwyp/go-codex-trace/internal/data/parser"
	"github.com/penwyp/go-codex-trace/internal/util"
)

// Config controls a batch conversion.
type Config struct {
	Policy    render.Policy
	OutputDir string
	// OutputFile overrides the generated name; only valid with one input.
	OutputFile  string
	Concurrency int
	// Now stamps generated_at. Defaults to the global TimeProvider.
	Now func() time.Time
}

// Result reports the conversion of one input.
type Result struct {
	Input   string
	Output  string
	Records int
	Err     error
}

// Converter renders session logs to markdown documents.
type Converter struct {
	cfg   Config
	namer *Namer
}

// New validates cfg and creates a Converter.
func New(cfg Config) (*Converter, error) {
	if err := cfg.Policy.Validate(); err != nil {
		return nil, err
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = runtime.NumCPU()
	}
	if cfg.Now == nil {
		cfg.Now = util.GetTimeProvider().Now
	}
	return &Converter{cfg: cfg, namer: NewNamer(nil)}, nil
}

// Plan assigns an output path to every input, in input order.
func (c *Converter) Plan(inputs []string) ([]Result, error) {
	if c.cfg.OutputFile != "" {
		if len(inputs) != 1 {
			return nil, coreerrors.Usagef("output_file_needs_one_input",
				"--output-file can only be used when exactly one input jsonl is resolved")
		}
		return []Result{{Input: inputs[0], Output: util.NormalizePath(c.cfg.OutputFile)}}, nil
	}

	dir := util.NormalizePath(c.cfg.OutputDir)
	plan := make([]Result, len(inputs))
	for i, input := range inputs {
		plan[i] = Result{Input: input, Output: c.namer.Reserve(dir, input, c.cfg.Policy.Mode)}
	}
	return plan, nil
}

// Run converts inputs concurrently. Results keep input order; inputs not
// started before ctx is done carry ctx's error. The returned error joins
// every per-input failure.
func (c *Converter) Run(ctx context.Context, inputs []string) ([]Result, error) {
	plan, err := c.Plan(inputs)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	util.LogDebugf("Start converting %d files, concurrency: %d", len(plan), c.cfg.Concurrency)

	semaphore := make(chan struct{}, c.cfg.Concurrency)
	var wg sync.WaitGroup
	for i := range plan {
		if !acquire(ctx, semaphore) {
			for j := i; j < len(plan); j++ {
				plan[j].Err = ctx.Err()
			}
			break
		}

		wg.Add(1)
		go func(r *Result) {
			defer wg.Done()
			defer func() { <-semaphore }()
			r.Records, r.Err = c.ConvertFile(r.Input, r.Output)
		}(&plan[i])
	}
	wg.Wait()

	util.LogDebugf("Conversion finished, total duration: %v", time.Since(start))
	return plan, joinErrors(plan)
}

// ConvertFile renders input and atomically writes the document to output,
// returning the number of records rendered.
func (c *Converter) ConvertFile(input, output string) (int, error) {
	fileStart := time.Now()
	lines, err := parser.ReadFile(input)
	if err != nil {
		return 0, err
	}

	doc := render.Assemble(
		render.Source{Name: filepath.Base(input), Path: input},
		lines, c.cfg.Policy, c.cfg.Now(),
	)
	if err := util.WriteFileAtomic(output, []byte(doc), 0644); err != nil {
		return 0, coreerrors.IO(fmt.Errorf("write %s: %w", output, err), "write_failed")
	}

	util.LogDebugf("Converted %s -> %s: %d records, duration %v", input, output, len(lines), time.Since(fileStart))
	return len(lines), nil
}

// Outputs lists the written documents of successful results.
func Outputs(results []Result) []string {
	paths := make([]string, 0, len(results))
	for _, r := range results {
		if r.Err == nil {
			paths = append(paths, r.Output)
		}
	}
	return paths
}

// acquire takes a semaphore slot unless ctx is done first.
func acquire(ctx context.Context, semaphore chan struct{}) bool {
	if ctx.Err() != nil {
		return false
	}
	select {
	case semaphore <- struct{}{}:
		return true
	case <-ctx.Done():
		return false
	}
}

func joinErrors(results []Result) error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Input, r.Err))
		}
	}
	return errors.Join(errs...)
}
