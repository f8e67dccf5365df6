package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-mcdm/internal/domain"
)

// CompareOptions controls how Compare reacts to method failures.
type CompareOptions struct {
	// ContinueOnError records failing methods in Comparison.Failures and
	// keeps the others. When false the first failure cancels the remaining
	// methods and is returned.
	ContinueOnError bool
}

// Comparison correlates the results of several methods run on the same
// decision matrix. Maps are keyed by method name.
type Comparison struct {
	// ID identifies this comparison run in logs and reports.
	ID uuid.UUID
	// Methods lists the methods that produced a result, in request order.
	Methods           []string
	Rankings          map[string][]int
	Scores            map[string][]float64
	BestAlternatives  map[string]string
	WorstAlternatives map[string]string
	// Results reference the matrix passed to Compare.
	Results map[string]*domain.Result
	// Failures holds the error of every method that failed. It is only
	// populated with CompareOptions.ContinueOnError.
	Failures map[string]error
}

// Agreement returns the share of methods whose best alternative matches
// the most frequently chosen one. It is 1 when every method agrees and 0
// when no method produced a result.
func (c *Comparison) Agreement() float64 {
	if len(c.Methods) == 0 {
		return 0
	}
	votes := make(map[string]int, len(c.Methods))
	top := 0
	for _, name := range c.Methods {
		votes[c.BestAlternatives[name]]++
		top = max(top, votes[c.BestAlternatives[name]])
	}
	return float64(top) / float64(len(c.Methods))
}

// Consensus returns the alternative chosen as best by most methods. Ties
// go to the alternative chosen by the earliest method in Methods.
func (c *Comparison) Consensus() (string, bool) {
	if len(c.Methods) == 0 {
		return "", false
	}
	votes := make(map[string]int, len(c.Methods))
	for _, name := range c.Methods {
		votes[c.BestAlternatives[name]]++
	}
	best := c.BestAlternatives[c.Methods[0]]
	for _, name := range c.Methods[1:] {
		if alt := c.BestAlternatives[name]; votes[alt] > votes[best] {
			best = alt
		}
	}
	return best, true
}

// Compare runs the named methods concurrently on m and correlates their
// results. An empty names list means every registered method. Unknown
// names fail before any method runs. Every method runs on its own copy of
// m, so the caller's matrix is never shared across goroutines.
func (r *DefaultMethodRegistry) Compare(
	ctx context.Context,
	m *domain.DecisionMatrix,
	names []string,
	opts CompareOptions,
) (*Comparison, error) {
	if m == nil {
		return nil, fmt.Errorf("compare: %w", domain.ErrInvalidMatrix)
	}
	if len(names) == 0 {
		names = r.Methods()
	}

	resolved := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		method, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[method.Name()]; dup {
			continue
		}
		seen[method.Name()] = struct{}{}
		resolved = append(resolved, method.Name())
	}

	id := uuid.New()
	r.logger.InfoContext(ctx, "comparing methods",
		slog.String("comparison_id", id.String()),
		slog.Any("methods", resolved),
		slog.Bool("continue_on_error", opts.ContinueOnError),
	)

	results := make([]*domain.Result, len(resolved))
	errs := make([]error, len(resolved))

	g, gctx := errgroup.WithContext(ctx)
	if opts.ContinueOnError {
		g = &errgroup.Group{}
		gctx = ctx
	}
	for i, name := range resolved {
		g.Go(func() error {
			result, err := r.Execute(gctx, name, m.Copy())
			if err == nil {
				// Point the result back at the caller's matrix.
				result, err = domain.NewResult(result.MethodName(), m,
					result.Scores(), result.Rankings(), result.Diagnostics())
			}
			if err != nil {
				errs[i] = err
				if opts.ContinueOnError {
					return nil
				}
				return fmt.Errorf("compare %s: %w", name, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	c := &Comparison{
		ID:                id,
		Methods:           make([]string, 0, len(resolved)),
		Rankings:          make(map[string][]int, len(resolved)),
		Scores:            make(map[string][]float64, len(resolved)),
		BestAlternatives:  make(map[string]string, len(resolved)),
		WorstAlternatives: make(map[string]string, len(resolved)),
		Results:           make(map[string]*domain.Result, len(resolved)),
		Failures:          make(map[string]error),
	}
	for i, name := range resolved {
		if errs[i] != nil {
			c.Failures[name] = errs[i]
			continue
		}
		result := results[i]
		c.Methods = append(c.Methods, name)
		c.Rankings[name] = result.Rankings()
		c.Scores[name] = result.Scores()
		c.BestAlternatives[name] = result.Best().Alternative.Name
		c.WorstAlternatives[name] = result.Worst().Alternative.Name
		c.Results[name] = result
	}

	r.logger.InfoContext(ctx, "comparison completed",
		slog.String("comparison_id", id.String()),
		slog.Int("succeeded", len(c.Methods)),
		slog.Int("failed", len(c.Failures)),
		slog.Float64("agreement", c.Agreement()),
	)
	return c, nil
}
