package conformance

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/eelloooii/json-response-standard/pkg/logger"
)

type Result struct {
	Binding string
	Case    string
	Err     error
}

func (r Result) Passed() bool {
	return r.Err == nil
}

type Report struct {
	RunID   string
	Results []Result
}

func (r Report) Total() int {
	return len(r.Results)
}

func (r Report) Passed() int {
	n := 0
	for _, res := range r.Results {
		if res.Passed() {
			n++
		}
	}
	return n
}

func (r Report) Failed() int {
	return r.Total() - r.Passed()
}

type RunnerParams struct {
	Cases       []Case
	Logger      *logger.Logger
	Output      io.Writer
	Parallelism int
}

// Runner executes the case suite against one or more bindings.
type Runner struct {
	cases       []Case
	logg        *logger.Logger
	out         io.Writer
	parallelism int
}

func NewRunner(params RunnerParams) (*Runner, error) {
	if len(params.Cases) == 0 {
		return nil, fmt.Errorf("runner requires at least one case")
	}
	if params.Output == nil {
		return nil, fmt.Errorf("runner requires an output writer")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	parallelism := params.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}
	return &Runner{
		cases:       params.Cases,
		logg:        logg,
		out:         params.Output,
		parallelism: parallelism,
	}, nil
}

// Run checks every applicable case against every binding. Bindings run
// concurrently; result lines are written in binding then case order. The
// returned error aggregates every failed case.
func (r *Runner) Run(ctx context.Context, bindings ...Binding) (Report, error) {
	report := Report{RunID: uuid.NewString()}
	ctx = r.logg.WithRunID(ctx, report.RunID)
	r.logg.Info(r.logg.WithField(ctx, "bindings", len(bindings)), "conformance run started")

	perBinding := make([][]Result, len(bindings))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)
	for i, b := range bindings {
		i, b := i, b
		g.Go(func() error {
			results, err := r.runBinding(gctx, b)
			perBinding[i] = results
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	var failures error
	for _, results := range perBinding {
		for _, res := range results {
			report.Results = append(report.Results, res)
			if res.Passed() {
				fmt.Fprintf(r.out, "[PASS] %s: %s\n", res.Binding, res.Case)
				continue
			}
			fmt.Fprintf(r.out, "[FAIL] %s: %s: %v\n", res.Binding, res.Case, res.Err)
			failures = multierr.Append(failures, fmt.Errorf("%s: %s: %w", res.Binding, res.Case, res.Err))
		}
	}

	fmt.Fprintf(r.out, "\nTests completed! %d/%d tests passed.\n", report.Passed(), report.Total())
	if failures == nil {
		fmt.Fprintln(r.out, "[SUCCESS] All Go tests passed!")
	} else {
		fmt.Fprintf(r.out, "[WARNING] %d tests failed.\n", report.Failed())
	}

	r.logg.Info(r.logg.WithFields(ctx, map[string]any{
		"passed": report.Passed(),
		"total":  report.Total(),
	}), "conformance run finished")
	return report, failures
}

func (r *Runner) runBinding(ctx context.Context, b Binding) ([]Result, error) {
	ctx = r.logg.WithBinding(ctx, b.Name())
	var results []Result
	for _, c := range r.cases {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if !c.AppliesTo(b.Policy()) {
			continue
		}
		err := Check(b, c)
		if err != nil {
			r.logg.Warn(r.logg.WithCase(ctx, c.Name), err.Error())
		}
		results = append(results, Result{Binding: b.Name(), Case: c.Name, Err: err})
	}
	return results, nil
}
