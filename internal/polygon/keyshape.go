package polygon

import (
	"polydict/internal/dictionary"
	"polydict/internal/structure"
)

// InputType：键列是一个简单多边形还是多个简单多边形
type InputType int

const (
	SimplePolygon InputType = iota
	MultiPolygon
)

func (t InputType) String() string {
	if t == MultiPolygon {
		return "MultiPolygon"
	}
	return "SimplePolygon"
}

// PointType：点的编码方式，[x, y] 数组或 (x, y) 元组
type PointType int

const (
	ArrayPoint PointType = iota
	TuplePoint
)

func (t PointType) String() string {
	if t == TuplePoint {
		return "Tuple"
	}
	return "Array"
}

// Shape：键列形状
type Shape struct {
	Input InputType
	Point PointType
}

var allowedKeyTypes = []struct {
	typ   structure.Type
	shape Shape
}{
	{structure.MustParseType("Array(Array(Array(Float64)))"), Shape{MultiPolygon, ArrayPoint}},
	{structure.MustParseType("Array(Array(Tuple(Float64, Float64)))"), Shape{MultiPolygon, TuplePoint}},
	{structure.MustParseType("Array(Array(Float64))"), Shape{SimplePolygon, ArrayPoint}},
	{structure.MustParseType("Array(Tuple(Float64, Float64))"), Shape{SimplePolygon, TuplePoint}},
}

func allowedList() string {
	s := ""
	for i, a := range allowedKeyTypes {
		if i > 0 {
			s += ", "
		}
		s += a.typ.String()
	}
	return s
}

// ResolveKeyShape：校验结构并确定键列形状
// 约束：恰好一个键列；类型必须是四种多边形编码之一；不允许 range_min/range_max。
func ResolveKeyShape(name string, st *structure.Structure) (Shape, error) {
	if st == nil || len(st.Key) == 0 {
		return Shape{}, dictionary.Errorf(dictionary.ErrBadArguments, "%s: 'key' is required for a polygon dictionary", name)
	}
	if len(st.Key) != 1 {
		return Shape{}, dictionary.Errorf(dictionary.ErrBadArguments, "%s: the 'key' should consist of a single attribute for a polygon dictionary", name)
	}
	keyType := st.Key[0].Type
	var shape Shape
	found := false
	for _, a := range allowedKeyTypes {
		if a.typ.Equal(keyType) {
			shape, found = a.shape, true
			break
		}
	}
	if !found {
		return Shape{}, dictionary.Errorf(dictionary.ErrBadArguments,
			"%s: the key type %s is not one of the following allowed types for a polygon dictionary: %s", name, keyType, allowedList())
	}
	if st.RangeMin != nil || st.RangeMax != nil {
		return Shape{}, dictionary.Errorf(dictionary.ErrBadArguments,
			"%s: elements range_min and range_max should be defined only for a dictionary of layout 'range_hashed'", name)
	}
	return shape, nil
}
