// Package summary projects raw trajectories onto the reportable
// aggregate quantities.
package summary

import (
	"github.com/san-kum/virosim/internal/model"
	"github.com/san-kum/virosim/internal/sim"
)

// Row is the aggregate view of one time point. Fractions are defined as
// zero whenever their denominator is zero.
type Row struct {
	Total              float64
	Dead               float64
	FracInfected       float64
	DeadFracOfInfected float64
}

func clip(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// Reduce computes one Row per trajectory point.
func Reduce(lay model.Layout, traj *sim.Trajectory) ([]Row, error) {
	rows := make([]Row, len(traj.States))
	for i, x := range traj.States {
		if err := lay.Check(x); err != nil {
			return nil, err
		}

		total := clip(x.Sum())
		dead := clip(x[lay.DeadUninfected()] + x[lay.DeadInfected()])
		deadInf := clip(x[lay.DeadInfected()])

		liveInf := 0.0
		cols := lay.Cols()
		firstP := cols - lay.NP
		for seg := 0; seg < lay.NT; seg++ {
			base := seg * cols
			for col := firstP; col < cols; col++ {
				liveInf += x[base+col]
			}
		}

		row := Row{Total: total, Dead: dead}
		if total > 0 {
			row.FracInfected = (deadInf + liveInf) / total
		}
		if deadInf+liveInf > 0 {
			row.DeadFracOfInfected = deadInf / (deadInf + liveInf)
		}
		rows[i] = row
	}
	return rows, nil
}
