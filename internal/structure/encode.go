package structure

import (
	"fmt"

	"polydict/internal/geo"
)

var (
	typeMultiArray  = MustParseType("Array(Array(Array(Float64)))")
	typeMultiTuple  = MustParseType("Array(Array(Tuple(Float64, Float64)))")
	typeSimpleArray = MustParseType("Array(Array(Float64))")
	typeSimpleTuple = MustParseType("Array(Tuple(Float64, Float64))")
)

// EncodePolygons：把几何数据源读到的外环编码为键列取值
// 约束：多多边形键返回一个键值；简单多边形键每个环一个键值，调用方为每个键值各出一行。
func EncodePolygons(keyType Type, rings [][]geo.Point) ([]any, error) {
	var multi, tuple bool
	switch {
	case keyType.Equal(typeMultiArray):
		multi = true
	case keyType.Equal(typeMultiTuple):
		multi, tuple = true, true
	case keyType.Equal(typeSimpleArray):
	case keyType.Equal(typeSimpleTuple):
		tuple = true
	default:
		return nil, fmt.Errorf("key type %s is not a polygon type", keyType)
	}
	encoded := make([]any, len(rings))
	for i, ring := range rings {
		pts := make([]any, len(ring))
		for j, p := range ring {
			if tuple {
				pts[j] = Tuple{p.X, p.Y}
			} else {
				pts[j] = []any{p.X, p.Y}
			}
		}
		encoded[i] = pts
	}
	if multi {
		return []any{encoded}, nil
	}
	return encoded, nil
}
