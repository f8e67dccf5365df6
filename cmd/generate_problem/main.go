// Command generate_problem writes a random decision problem as YAML. The
// output loads with the mcdm command and carries perfectly consistent AHP
// judgments, so every built-in method can rank it.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-mcdm/infrastructure/preference"
	"github.com/ahrav/go-mcdm/internal/application"
	"github.com/ahrav/go-mcdm/internal/testutils"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatalf("Failed to generate problem: %v", err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("generate_problem", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		alternatives = fs.Int("alternatives", 5, "Number of alternatives to generate")
		criteria     = fs.Int("criteria", 4, "Number of criteria to generate")
		seed         = fs.Int64("seed", 0, "Random seed (0 uses the current time)")
		outputPath   = fs.String("output", "", "Output file path (default: stdout)")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *alternatives < 1 || *criteria < 1 {
		return fmt.Errorf("need at least one alternative and one criterion, got %d and %d", *alternatives, *criteria)
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	cfg := problemConfig(testutils.GenerateProblem(*alternatives, *criteria, *seed), *seed)
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode problem: %w", err)
	}

	if *outputPath == "" {
		_, err = stdout.Write(out)
		return err
	}
	if err := os.WriteFile(*outputPath, out, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", *outputPath, err)
	}
	fmt.Fprintf(stdout, "Generated problem:\n")
	fmt.Fprintf(stdout, "- Path: %s\n", *outputPath)
	fmt.Fprintf(stdout, "- Alternatives: %d\n", *alternatives)
	fmt.Fprintf(stdout, "- Criteria: %d\n", *criteria)
	fmt.Fprintf(stdout, "- Seed: %d\n", *seed)
	return nil
}

// problemConfig converts a generated problem into its YAML form. Every
// criterion uses a linear preference function whose preference threshold
// is half the column spread.
func problemConfig(p *testutils.GeneratedProblem, seed int64) application.ProblemConfig {
	cfg := application.ProblemConfig{
		Version: "1.0.0",
		Metadata: application.Metadata{
			Name:        fmt.Sprintf("generated-%dx%d", len(p.Alternatives), len(p.Criteria)),
			Description: "Synthetic decision problem generated for testing purposes.",
			Tags:        []string{"generated"},
			Labels:      map[string]string{"seed": fmt.Sprint(seed)},
		},
		Weights: p.Weights,
		Pairwise: &application.PairwiseConfig{
			Criteria:     roundMatrix(p.PairwiseCriteria),
			Alternatives: make([][][]float64, len(p.PairwiseAlternatives)),
		},
		Methods: []application.MethodConfig{
			{Type: "topsis"},
			{Type: "ahp"},
			{Type: "promethee"},
			{Type: "marcos"},
		},
	}

	for j, c := range p.Criteria {
		cfg.Criteria = append(cfg.Criteria, application.CriterionConfig{
			Name:      c.Name,
			Direction: string(c.Direction),
		})

		column := make([]float64, len(p.Values))
		for i, row := range p.Values {
			column[i] = row[j]
		}
		spread := slices.Max(column) - slices.Min(column)
		cfg.Preferences = append(cfg.Preferences, application.PreferenceConfig{
			Function: string(preference.Linear),
			P:        round(spread / 2),
		})

		cfg.Pairwise.Alternatives[j] = roundMatrix(p.PairwiseAlternatives[j])
	}

	for i, alt := range p.Alternatives {
		cfg.Alternatives = append(cfg.Alternatives, application.AlternativeConfig{
			Name:   alt.Name,
			Values: p.Values[i],
		})
	}
	return cfg
}

// roundMatrix keeps the YAML readable. Six decimals leave the consistency
// ratio far below any usable threshold.
func roundMatrix(a [][]float64) [][]float64 {
	out := make([][]float64, len(a))
	for i, row := range a {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = round(v)
		}
	}
	return out
}

func round(v float64) float64 { return math.Round(v*1e6) / 1e6 }
