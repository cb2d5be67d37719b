// Package export renders stored run summaries to PNG charts.
package export

import (
	"os"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/san-kum/virosim/internal/summary"
)

// PopulationPNG charts total and dead cells over time.
func PopulationPNG(path string, times []float64, rows []summary.Row) error {
	totals := make([]float64, len(rows))
	deads := make([]float64, len(rows))
	for i, row := range rows {
		totals[i] = row.Total
		deads[i] = row.Dead
	}

	graph := chart.Chart{
		XAxis: chart.XAxis{Name: "t (h)"},
		YAxis: chart.YAxis{Name: "cells"},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "total",
				XValues: times,
				YValues: totals,
				Style:   chart.Style{StrokeColor: chart.ColorBlue, StrokeWidth: 2.0},
			},
			chart.ContinuousSeries{
				Name:    "dead",
				XValues: times,
				YValues: deads,
				Style:   chart.Style{StrokeColor: chart.ColorRed, StrokeWidth: 2.0},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return render(path, graph)
}

// FractionPNG charts the infected fraction and the dead fraction of
// infected cells over time.
func FractionPNG(path string, times []float64, rows []summary.Row) error {
	fracInf := make([]float64, len(rows))
	deadFrac := make([]float64, len(rows))
	for i, row := range rows {
		fracInf[i] = row.FracInfected
		deadFrac[i] = row.DeadFracOfInfected
	}

	graph := chart.Chart{
		XAxis: chart.XAxis{Name: "t (h)"},
		YAxis: chart.YAxis{Name: "fraction"},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "frac-inf",
				XValues: times,
				YValues: fracInf,
				Style:   chart.Style{StrokeColor: chart.ColorGreen, StrokeWidth: 2.0},
			},
			chart.ContinuousSeries{
				Name:    "dead-frac-of-inf",
				XValues: times,
				YValues: deadFrac,
				Style:   chart.Style{StrokeColor: chart.ColorOrange, StrokeWidth: 2.0},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return render(path, graph)
}

func render(path string, graph chart.Chart) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return graph.Render(chart.PNG, f)
}
