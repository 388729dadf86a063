package polygon

import (
	"context"
	"polydict/internal/bucket"
	"polydict/internal/dictionary"
	"polydict/internal/geo"
	"polydict/internal/grid"
)

// SmartPolygonDictionary：网格缩小候选，精确判定交给每个多边形各自的分带索引
// 约束：每个多边形一个 Bucket，构建代价与总边数成线性关系。
type SmartPolygonDictionary struct {
	*base
	grid    *grid.Grid
	buckets []*bucket.Bucket
}

func newSmart(b *base) *SmartPolygonDictionary {
	g := grid.NewWithOptions(b.polygons, b.opts.Grid)
	b.stats.Cells, b.stats.Depth = g.Cells(), g.Depth()
	buckets := make([]*bucket.Bucket, len(b.polygons))
	for i := range b.polygons {
		buckets[i] = bucket.New(b.polygons[i : i+1])
	}
	return &SmartPolygonDictionary{base: b, grid: g, buckets: buckets}
}

func (d *SmartPolygonDictionary) Find(p geo.Point) (uint64, bool) {
	if !p.Valid() {
		return 0, false
	}
	for _, c := range d.grid.Cell(p) {
		if c.FullyCovers || d.buckets[c.ID].Covers(p) {
			return d.ids[c.ID], true
		}
	}
	return 0, false
}

func (d *SmartPolygonDictionary) Clone(ctx context.Context) (dictionary.Dictionary, error) {
	return d.clone(ctx)
}
