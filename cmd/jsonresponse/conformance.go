package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/eelloooii/json-response-standard/internal/conformance"
	"github.com/eelloooii/json-response-standard/pkg/metrics"
	"github.com/eelloooii/json-response-standard/pkg/response"
)

type conformanceOptions struct {
	cases       string
	policy      string
	metricsFile string
	parallelism int
}

func newConformanceCmd(a *app) *cobra.Command {
	opts := &conformanceOptions{}

	cmd := &cobra.Command{
		Use:   "conformance",
		Short: "Run the shared envelope contract suite against the Go builder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runConformance(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.cases, "cases", "", "YAML case file (default: embedded suite)")
	flags.StringVar(&opts.policy, "policy", "all", "bindings to test: all, permissive or strict")
	flags.StringVar(&opts.metricsFile, "metrics-file", "", "write build metrics in Prometheus text format")
	flags.IntVar(&opts.parallelism, "parallelism", 0, "bindings checked concurrently")
	return cmd
}

func (a *app) runConformance(cmd *cobra.Command, opts *conformanceOptions) error {
	ctx := cmd.Context()

	casesFile := a.cfg.Conformance.CasesFile
	if opts.cases != "" {
		casesFile = opts.cases
	}
	cases, err := loadCases(casesFile)
	if err != nil {
		a.logg.Error(ctx, "failed to load cases", err)
		return err
	}

	policies, err := selectPolicies(opts.policy)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	buildMetrics := metrics.NewBuildMetrics(reg)
	bindings := make([]conformance.Binding, 0, len(policies))
	for _, p := range policies {
		builder := response.New(response.WithPolicy(p), response.WithMetrics(buildMetrics))
		bindings = append(bindings, conformance.NewBuilderBinding(builder))
	}

	parallelism := a.cfg.Conformance.Parallelism
	if opts.parallelism > 0 {
		parallelism = opts.parallelism
	}
	runner, err := conformance.NewRunner(conformance.RunnerParams{
		Cases:       cases,
		Logger:      a.logg,
		Output:      cmd.OutOrStdout(),
		Parallelism: parallelism,
	})
	if err != nil {
		return err
	}

	report, runErr := runner.Run(ctx, bindings...)

	metricsFile := a.cfg.Conformance.MetricsTextfile
	if opts.metricsFile != "" {
		metricsFile = opts.metricsFile
	}
	if metricsFile != "" {
		if err := prometheus.WriteToTextfile(metricsFile, reg); err != nil {
			a.logg.Error(ctx, "failed to write metrics textfile", err)
			return err
		}
	}

	if runErr != nil {
		ctx = a.logg.WithFields(ctx, map[string]any{"run_id": report.RunID, "failed": report.Failed()})
		a.logg.Warn(ctx, "conformance failures")
		if report.Failed() > 0 {
			return fmt.Errorf("%w: %d of %d cases", errConformanceFailed, report.Failed(), report.Total())
		}
		return runErr
	}
	return nil
}

func loadCases(path string) ([]conformance.Case, error) {
	if path == "" {
		return conformance.DefaultCases()
	}
	return conformance.LoadCasesFile(path)
}

func selectPolicies(value string) ([]response.Policy, error) {
	if value == "" || value == "all" {
		return []response.Policy{response.PolicyPermissive, response.PolicyStrict}, nil
	}
	p, err := response.ParsePolicy(value)
	if err != nil {
		return nil, err
	}
	return []response.Policy{p}, nil
}
