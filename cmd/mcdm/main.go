// Command mcdm ranks the alternatives of a YAML decision problem with one or
// more MCDM methods and prints a side-by-side comparison.
//
// Usage:
//
//	mcdm -problem testdata/supplier_selection.yaml [-methods TOPSIS,AHP]
//	     [-continue-on-error] [-log-level info] [-metrics]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ahrav/go-mcdm/infrastructure/middleware"
	"github.com/ahrav/go-mcdm/internal/application"
	"github.com/ahrav/go-mcdm/internal/domain"
	"github.com/ahrav/go-mcdm/internal/ports"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(exitCode(err, os.Stderr))
	}
}

// exitCode reports err and maps it to a process status: 2 for usage and
// problem file errors, 1 for everything else.
func exitCode(err error, stderr io.Writer) int {
	if errors.Is(err, flag.ErrHelp) {
		return 2
	}
	fmt.Fprintf(stderr, "mcdm: %v\n", err)
	if ports.IsConfigError(err) {
		return 2
	}
	return 1
}

type options struct {
	problem         string
	methods         []string
	continueOnError bool
	logLevel        slog.Level
	metrics         bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	fs := flag.NewFlagSet("mcdm", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		problem         = fs.String("problem", "", "Path to the YAML problem file (required)")
		methodList      = fs.String("methods", "", "Comma-separated method names to run (default: all configured)")
		continueOnError = fs.Bool("continue-on-error", false, "Report failing methods instead of aborting the comparison")
		logLevel        = fs.String("log-level", "info", "Log level: debug, info, warn or error")
		metrics         = fs.Bool("metrics", false, "Print Prometheus metrics after the run")
	)
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	opts := options{
		problem:         *problem,
		continueOnError: *continueOnError,
		metrics:         *metrics,
	}
	if opts.problem == "" {
		fs.Usage()
		return options{}, errors.New("-problem is required")
	}
	if err := opts.logLevel.UnmarshalText([]byte(*logLevel)); err != nil {
		return options{}, fmt.Errorf("invalid -log-level %q: %w", *logLevel, err)
	}
	for _, name := range strings.Split(*methodList, ",") {
		if name = strings.TrimSpace(name); name != "" {
			opts.methods = append(opts.methods, name)
		}
	}
	return opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: opts.logLevel}))

	mws := []middleware.Middleware{middleware.TracingMiddleware(nil)}
	var reg *prometheus.Registry
	if opts.metrics {
		reg = prometheus.NewRegistry()
		mws = append(mws, middleware.MetricsMiddleware(middleware.NewPrometheusMetrics(reg)))
	}

	registry := application.NewMethodRegistry(
		application.WithLogger(logger),
		application.WithMiddleware(mws...),
	)

	loader, err := application.NewProblemLoader(registry)
	if err != nil {
		return err
	}
	problem, err := loader.LoadFromFile(ctx, opts.problem)
	if err != nil {
		return fmt.Errorf("load problem: %w", err)
	}
	logger.Info("problem loaded",
		slog.String("problem", problem.Name),
		slog.Int("alternatives", problem.Matrix.NumAlternatives()),
		slog.Int("criteria", problem.Matrix.NumCriteria()),
	)

	if len(problem.Methods) == 0 {
		if err := registry.RegisterBuiltins(); err != nil {
			return err
		}
	}
	for _, method := range problem.Methods {
		if err := registry.Register(method); err != nil {
			return err
		}
	}

	names := opts.methods
	if len(names) == 0 && len(problem.Methods) > 0 {
		names = problem.MethodNames()
	}

	comparison, err := registry.Compare(ctx, problem.Matrix, names, application.CompareOptions{
		ContinueOnError: opts.continueOnError,
	})
	if err != nil {
		return err
	}

	printer := message.NewPrinter(language.English)
	if err := printComparison(stdout, printer, problem, comparison); err != nil {
		return err
	}

	if reg != nil {
		if err := printMetrics(stdout, reg); err != nil {
			return err
		}
	}

	if len(comparison.Methods) == 0 {
		return errors.New("every method failed")
	}
	return nil
}

func printComparison(w io.Writer, p *message.Printer, problem *application.Problem, c *application.Comparison) error {
	p.Fprintf(w, "Problem: %s (%d alternatives, %d criteria)\n",
		problem.Name, problem.Matrix.NumAlternatives(), problem.Matrix.NumCriteria())
	p.Fprintf(w, "Comparison: %s\n", c.ID)

	for _, name := range c.Methods {
		p.Fprintf(w, "\n== %s ==\n", name)
		if err := printRanking(w, p, c.Results[name]); err != nil {
			return err
		}
	}

	p.Fprintf(w, "\n== Summary ==\n")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tBEST\tWORST")
	for _, name := range c.Methods {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, c.BestAlternatives[name], c.WorstAlternatives[name])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if best, ok := c.Consensus(); ok {
		p.Fprintf(w, "Consensus: %s (agreement %.0f%%)\n", best, c.Agreement()*100)
	}
	for _, name := range slices.Sorted(maps.Keys(c.Failures)) {
		p.Fprintf(w, "FAILED %s: %v\n", name, c.Failures[name])
	}
	return nil
}

func printRanking(w io.Writer, p *message.Printer, result *domain.Result) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "RANK\tALTERNATIVE\tSCORE\t")
	for _, ra := range result.Ranked() {
		fmt.Fprintf(tw, "%d\t%s\t%s\t\n", ra.Rank, ra.Alternative.Name, p.Sprintf("%.4f", ra.Score))
	}
	if ratio, ok := domain.Get(result.Diagnostics(), domain.KeyConsistencyRatio); ok {
		fmt.Fprintf(tw, "\tconsistency ratio\t%s\t\n", p.Sprintf("%.4f", ratio))
	}
	return tw.Flush()
}

func printMetrics(w io.Writer, reg prometheus.Gatherer) error {
	families, err := reg.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	fmt.Fprintln(w, "\n== Metrics ==")
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
