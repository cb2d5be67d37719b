// Package sweep runs the model over a grid of parameter values and
// keeps the point that minimizes a chosen metric, e.g. the efavirenz
// action time that minimizes the peak infected fraction.
package sweep

import (
	"context"
	"fmt"
	"math"
)

// Eval runs one grid point and reports its metric values by name.
type Eval func(ctx context.Context, params map[string]float64) (map[string]float64, error)

type Grid struct {
	paramNames []string
	ranges     [][]float64
}

// New builds a grid over the cartesian product of the given ranges.
func New(params []string, ranges [][]float64) (*Grid, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("sweep: %d parameters but %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("sweep: empty range for %s", params[i])
		}
	}
	return &Grid{paramNames: params, ranges: ranges}, nil
}

// Linspace returns n evenly spaced values covering [min, max].
func Linspace(min, max float64, n int) []float64 {
	if n < 2 {
		return []float64{min}
	}
	vals := make([]float64, n)
	step := (max - min) / float64(n-1)
	for i := range vals {
		vals[i] = min + float64(i)*step
	}
	vals[n-1] = max
	return vals
}

// Result is the best grid point found.
type Result struct {
	Params    map[string]float64
	Value     float64
	Evaluated int
}

// Minimize evaluates every grid point and returns the one with the
// smallest value of the named metric. A failing point aborts the sweep.
func (g *Grid) Minimize(ctx context.Context, eval Eval, metricName string) (Result, error) {
	res := Result{Value: math.Inf(1)}
	err := g.walk(ctx, 0, make(map[string]float64), eval, metricName, &res)
	if err != nil {
		return Result{}, err
	}
	if res.Params == nil {
		return Result{}, fmt.Errorf("sweep: metric %q not reported by any grid point", metricName)
	}
	return res, nil
}

func (g *Grid) walk(
	ctx context.Context,
	depth int,
	current map[string]float64,
	eval Eval,
	metricName string,
	res *Result,
) error {
	if depth == len(g.paramNames) {
		if err := ctx.Err(); err != nil {
			return err
		}
		observed, err := eval(ctx, current)
		if err != nil {
			return fmt.Errorf("sweep: point %v: %w", current, err)
		}
		res.Evaluated++

		val, ok := observed[metricName]
		if !ok {
			return nil
		}
		if val < res.Value {
			res.Value = val
			res.Params = make(map[string]float64, len(current))
			for k, v := range current {
				res.Params[k] = v
			}
		}
		return nil
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[name] = val
		if err := g.walk(ctx, depth+1, current, eval, metricName, res); err != nil {
			return err
		}
	}
	delete(current, name)
	return nil
}
