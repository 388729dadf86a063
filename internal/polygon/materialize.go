package polygon

import (
	"fmt"
	"polydict/internal/dictionary"
	"polydict/internal/geo"
	"polydict/internal/source"
	"polydict/internal/structure"
)

// materialize：源数据行转为多边形数组、多边形到行号的映射与属性列
// 背景：简单多边形键一行对应一个多边形；多多边形键一行对应若干多边形，共享同一行号。
// 约束：任一行键或属性不合法即整体失败，不产出部分结果。
func materialize(name string, shape Shape, st *structure.Structure, rows []source.Row) ([]geo.Polygon, []uint64, *Attributes, error) {
	keyType := st.Key[0].Type
	attrs := newAttributes(st, len(rows))
	polys := make([]geo.Polygon, 0, len(rows))
	ids := make([]uint64, 0, len(rows))
	for r, row := range rows {
		key, err := structure.DecodeLiteral(keyType, row.Key)
		if err != nil {
			return nil, nil, nil, dictionary.Wrap(dictionary.ErrBadArguments, err, "%s: row %d: invalid key", name, r)
		}
		var rings []any
		if shape.Input == MultiPolygon {
			rings = key.([]any)
		} else {
			rings = []any{key}
		}
		for k, ring := range rings {
			p, err := decodeRing(ring.([]any), shape.Point)
			if err != nil {
				return nil, nil, nil, dictionary.Wrap(dictionary.ErrBadArguments, err, "%s: row %d: polygon %d", name, r, k)
			}
			polys = append(polys, p)
			ids = append(ids, uint64(r))
		}
		for i, a := range st.Attributes {
			raw, ok := row.Values[a.Name]
			if !ok || raw == nil {
				attrs.cols[i] = append(attrs.cols[i], a.NullValue)
				continue
			}
			v, err := structure.DecodeLiteral(a.Type, raw)
			if err != nil {
				return nil, nil, nil, dictionary.Wrap(dictionary.ErrBadArguments, err, "%s: row %d: attribute %s", name, r, a.Name)
			}
			attrs.cols[i] = append(attrs.cols[i], v)
		}
	}
	return polys, ids, attrs, nil
}

func decodeRing(pts []any, pt PointType) (geo.Polygon, error) {
	ring := make([]geo.Point, len(pts))
	for i, raw := range pts {
		var xy []any
		if pt == TuplePoint {
			xy = raw.(structure.Tuple)
		} else {
			xy = raw.([]any)
		}
		if len(xy) != 2 {
			return geo.Polygon{}, fmt.Errorf("point %d has %d coordinates, expected 2", i, len(xy))
		}
		ring[i] = geo.Point{X: xy[0].(float64), Y: xy[1].(float64)}
	}
	return geo.NewPolygon(ring)
}
