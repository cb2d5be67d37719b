// Package report renders the textual run report: a commented parameter
// header, the derived equation counts, and the summary table.
package report

import (
	"fmt"
	"io"

	"github.com/san-kum/virosim/internal/model"
	"github.com/san-kum/virosim/internal/summary"
)

func Write(w io.Writer, p model.Params, times []float64, rows []summary.Row) error {
	if len(times) != len(rows) {
		return fmt.Errorf("report: %d times but %d summary rows", len(times), len(rows))
	}

	fmt.Fprintf(w, "# Single-cycle HIV infection culture model\n#\n# Parameters:\n#\n")
	for _, info := range p.Describe() {
		fmt.Fprintf(w, "# %s = %s [%s]\n", info.Name, info.Value, info.Desc)
	}
	fmt.Fprintf(w, "# Equation numbers: nT=%d nEE=%d nER=%d nEI=%d nP=%d\n",
		p.NT, p.NEE, p.NER, p.NEI, p.NP)
	fmt.Fprintf(w, "#\n# t total dead frac-inf dead-frac-of-inf\n")

	for i, row := range rows {
		_, err := fmt.Fprintf(w, "%g %g %g %g %g\n",
			times[i], row.Total, row.Dead, row.FracInfected, row.DeadFracOfInfected)
		if err != nil {
			return err
		}
	}
	return nil
}
