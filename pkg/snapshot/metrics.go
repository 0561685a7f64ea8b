package snapshot

import (
	"gonum.org/v1/gonum/floats"

	"github.com/matzehuels/layoutview/pkg/odb"
)

// computeMetrics fills the areas (square meters) and the utilization.
//
// Design area sums the master footprint of every instance whose master is
// core-autoplaceable; instance bboxes and halos are not consulted. There is
// no guard against a zero core area, which yields +Inf or NaN.
func (f *flattener) computeMetrics(block odb.Block) {
	d := f.design
	core, die := block.CoreArea(), block.DieArea()
	d.CoreArea = f.area(core.Dx(), core.Dy())
	d.DieArea = f.area(die.Dx(), die.Dy())

	insts := block.Insts()
	areas := make([]float64, 0, len(insts))
	for _, in := range insts {
		if m := in.Master(); m.IsCoreAutoPlaceable() {
			areas = append(areas, f.area(m.Width(), m.Height()))
		}
	}
	d.DesignArea = floats.Sum(areas)
	d.Utilization = d.DesignArea / d.CoreArea
}

func (f *flattener) area(dx, dy int) float64 {
	return f.db.DbuToMeters(dx) * f.db.DbuToMeters(dy)
}
