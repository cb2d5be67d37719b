package model

import (
	"fmt"

	"github.com/san-kum/virosim/internal/sim"
)

// Layout is the fixed linear encoding of the population grid. Rows are
// the NT death-hazard segments; the columns of each row are
//
//	uninfected | EE_1..EE_NEE | ER_1..ER_NER | EI_1..EI_NEI | P_1..P_NP
//
// laid out row-major, followed by two trailing scalars: cumulative
// dead-uninfected and cumulative dead-infected.
type Layout struct {
	NT, NEE, NER, NEI, NP int
}

// Column index of the first stage of each phase.
func (l Layout) colEE() int { return 1 }
func (l Layout) colER() int { return 1 + l.NEE }
func (l Layout) colEI() int { return 1 + l.NEE + l.NER }
func (l Layout) colP() int  { return 1 + l.NEE + l.NER + l.NEI }

// Cols is the width of one death-hazard segment row.
func (l Layout) Cols() int { return 1 + l.NEE + l.NER + l.NEI + l.NP }

// Len is the full state vector length.
func (l Layout) Len() int { return l.NT*l.Cols() + 2 }

// Index maps (segment row, column) to the flat position.
func (l Layout) Index(seg, col int) int { return seg*l.Cols() + col }

// Positions of the two trailing dead scalars.
func (l Layout) DeadUninfected() int { return l.NT * l.Cols() }
func (l Layout) DeadInfected() int   { return l.NT*l.Cols() + 1 }

// Check verifies that a state vector matches this layout exactly. A
// mismatch means variants were mixed or counts changed mid-run, which
// is a programmer error and must not be reshaped around.
func (l Layout) Check(x sim.State) error {
	if len(x) != l.Len() {
		return fmt.Errorf("%w: len=%d want %d (nT=%d cols=%d)",
			ErrLayout, len(x), l.Len(), l.NT, l.Cols())
	}
	return nil
}

// grid is a padded read view of the live portion of a state vector:
// segment row -1 reads as zero, so difference terms referencing the
// previous segment need no boundary conditional.
type grid struct {
	lay Layout
	x   sim.State
}

func (g grid) at(seg, col int) float64 {
	if seg < 0 {
		return 0
	}
	return g.x[g.lay.Index(seg, col)]
}

// rowSum sums columns [lo, hi) of one segment row.
func (g grid) rowSum(seg, lo, hi int) float64 {
	total := 0.0
	base := seg * g.lay.Cols()
	for col := lo; col < hi; col++ {
		total += g.x[base+col]
	}
	return total
}
