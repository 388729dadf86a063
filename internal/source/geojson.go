package source

import (
	"fmt"
	"polydict/internal/geo"
	"polydict/internal/logger"
	"polydict/internal/structure"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// featureRows：GeoJSON FeatureCollection 转为行
// 背景：每个 Feature 的 Polygon/MultiPolygon 外环作为键，properties 中与属性同名的字段作为属性值；
// 未出现在 properties 中的 id 属性取 Feature.ID。
// 约束：内环（洞）不参与点定位，丢弃并记录告警；其它几何类型直接报错。
func featureRows(data []byte, st *structure.Structure, origin string) ([]Row, error) {
	if _, err := keyName(st); err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", origin, err)
	}
	keyType := st.Key[0].Type
	rows := make([]Row, 0, len(fc.Features))
	holes, empty := 0, 0
	for i, f := range fc.Features {
		var polys []orb.Polygon
		switch g := f.Geometry.(type) {
		case orb.Polygon:
			polys = []orb.Polygon{g}
		case orb.MultiPolygon:
			polys = g
		default:
			typ := "null"
			if g != nil {
				typ = g.GeoJSONType()
			}
			return nil, fmt.Errorf("%s: feature %d: unsupported geometry %s", origin, i, typ)
		}
		rings := make([][]geo.Point, 0, len(polys))
		for _, p := range polys {
			if len(p) == 0 {
				continue
			}
			holes += len(p) - 1
			rings = append(rings, geo.FromOrbRing(p[0]))
		}
		if len(rings) == 0 {
			empty++
			continue
		}
		keys, err := structure.EncodePolygons(keyType, rings)
		if err != nil {
			return nil, fmt.Errorf("%s: feature %d: %w", origin, i, err)
		}
		vals := make(map[string]any, len(st.Attributes))
		for _, a := range st.Attributes {
			if v, ok := f.Properties[a.Name]; ok && v != nil {
				vals[a.Name] = v
			} else if a.Name == "id" && f.ID != nil {
				vals[a.Name] = f.ID
			}
		}
		for _, k := range keys {
			rows = append(rows, Row{Key: k, Values: vals})
		}
	}
	if holes > 0 {
		logger.L().Warn("source_holes_dropped", "source", origin, "holes", holes)
	}
	if empty > 0 {
		logger.L().Warn("source_empty_features_dropped", "source", origin, "features", empty)
	}
	return rows, nil
}
