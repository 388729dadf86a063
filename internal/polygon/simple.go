package polygon

import (
	"context"
	"polydict/internal/dictionary"
	"polydict/internal/geo"
)

// SimplePolygonDictionary：按编号升序线性扫描，作为其它布局的正确性基线
type SimplePolygonDictionary struct {
	*base
}

func newSimple(b *base) *SimplePolygonDictionary { return &SimplePolygonDictionary{base: b} }

func (d *SimplePolygonDictionary) Find(p geo.Point) (uint64, bool) {
	if !p.Valid() {
		return 0, false
	}
	for i := range d.polygons {
		if geo.CoveredBy(p, d.polygons[i]) {
			return d.ids[i], true
		}
	}
	return 0, false
}

func (d *SimplePolygonDictionary) Clone(ctx context.Context) (dictionary.Dictionary, error) {
	return d.clone(ctx)
}
