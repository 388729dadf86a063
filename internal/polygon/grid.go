package polygon

import (
	"context"
	"polydict/internal/dictionary"
	"polydict/internal/geo"
	"polydict/internal/grid"
)

// GridPolygonDictionary：网格定位单元，候选按存放顺序逐个判定
type GridPolygonDictionary struct {
	*base
	grid *grid.Grid
}

func newGrid(b *base) *GridPolygonDictionary {
	g := grid.NewWithOptions(b.polygons, b.opts.Grid)
	b.stats.Cells, b.stats.Depth = g.Cells(), g.Depth()
	return &GridPolygonDictionary{base: b, grid: g}
}

func (d *GridPolygonDictionary) Find(p geo.Point) (uint64, bool) {
	if !p.Valid() {
		return 0, false
	}
	for _, c := range d.grid.Cell(p) {
		if c.FullyCovers || geo.CoveredBy(p, d.polygons[c.ID]) {
			return d.ids[c.ID], true
		}
	}
	return 0, false
}

func (d *GridPolygonDictionary) Clone(ctx context.Context) (dictionary.Dictionary, error) {
	return d.clone(ctx)
}
