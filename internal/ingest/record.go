package ingest

import (
	"fmt"
	"polydict/internal/structure"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
)

// Record：待写入的一行，Values 与属性声明顺序一致，缺失属性为 nil（写入 NULL）
type Record struct {
	WKT    string
	Values []any
}

// records：FeatureCollection 转为写入行
// 约束：仅接受 Polygon/MultiPolygon；属性值先按声明类型规范化，非法值报错而不是静默截断；
// UInt64 以十进制文本写入，避免超出驱动支持的有符号整数范围。
func records(fc *geojson.FeatureCollection, st *structure.Structure) ([]Record, error) {
	out := make([]Record, 0, len(fc.Features))
	for i, f := range fc.Features {
		switch f.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
		default:
			return nil, fmt.Errorf("feature %d: unsupported geometry %T", i, f.Geometry)
		}
		rec := Record{WKT: wkt.MarshalString(f.Geometry), Values: make([]any, len(st.Attributes))}
		for j, a := range st.Attributes {
			v, ok := f.Properties[a.Name]
			if (!ok || v == nil) && a.Name == "id" && f.ID != nil {
				v, ok = f.ID, true
			}
			if !ok || v == nil {
				continue
			}
			c, err := structure.DecodeLiteral(a.Type, v)
			if err != nil {
				return nil, fmt.Errorf("feature %d: attribute %s: %w", i, a.Name, err)
			}
			if u, isUint := c.(uint64); isUint {
				c = strconv.FormatUint(u, 10)
			}
			rec.Values[j] = c
		}
		out = append(out, rec)
	}
	return out, nil
}
