// 包 geo：平面点、简单多边形与包围盒的最小表示，独立于数据源行的编码方式
package geo

import (
	"errors"
	"fmt"
	"math"
)

// Point：平面坐标点，X 对应经度方向，Y 对应纬度方向
type Point struct {
	X float64
	Y float64
}

// Valid：坐标均为有限数时有效；NaN/Inf 参与比较会破坏索引下标计算
func (p Point) Valid() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

// Box：轴对齐闭矩形
type Box struct {
	MinX, MinY float64
	MaxX, MaxY float64
}

// EmptyBox：空矩形，任何 Extend 都会覆盖其边界
func EmptyBox() Box {
	return Box{MinX: math.Inf(1), MinY: math.Inf(1), MaxX: math.Inf(-1), MaxY: math.Inf(-1)}
}

func (b Box) Empty() bool { return b.MinX > b.MaxX || b.MinY > b.MaxY }

func (b Box) Extend(p Point) Box {
	if p.X < b.MinX {
		b.MinX = p.X
	}
	if p.Y < b.MinY {
		b.MinY = p.Y
	}
	if p.X > b.MaxX {
		b.MaxX = p.X
	}
	if p.Y > b.MaxY {
		b.MaxY = p.Y
	}
	return b
}

func (b Box) Union(o Box) Box {
	if o.Empty() {
		return b
	}
	b = b.Extend(Point{X: o.MinX, Y: o.MinY})
	return b.Extend(Point{X: o.MaxX, Y: o.MaxY})
}

// Contains：闭区间判定，边界上的点视为包含
func (b Box) Contains(p Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// Intersects：两个闭矩形有公共点（含仅边界接触）
func (b Box) Intersects(o Box) bool {
	return b.MinX <= o.MaxX && o.MinX <= b.MaxX && b.MinY <= o.MaxY && o.MinY <= b.MaxY
}

func (b Box) Center() Point {
	return Point{X: b.MinX + (b.MaxX-b.MinX)/2, Y: b.MinY + (b.MaxY-b.MinY)/2}
}

// Corners：按逆时针顺序返回四个角点
func (b Box) Corners() [4]Point {
	return [4]Point{{b.MinX, b.MinY}, {b.MaxX, b.MinY}, {b.MaxX, b.MaxY}, {b.MinX, b.MaxY}}
}

// Segment：多边形的一条边
type Segment struct {
	A Point
	B Point
}

func (s Segment) Box() Box { return EmptyBox().Extend(s.A).Extend(s.B) }

func (s Segment) Vertical() bool { return s.A.X == s.B.X }

// Ordered：返回左端点在前的同一条边（x 相同时按 y 升序）
func (s Segment) Ordered() Segment {
	if s.B.X < s.A.X || (s.B.X == s.A.X && s.B.Y < s.A.Y) {
		return Segment{A: s.B, B: s.A}
	}
	return s
}

// Polygon：无洞简单多边形，Ring 为闭合环（不重复存储首点）
type Polygon struct {
	Ring []Point
	BBox Box
}

var ErrDegeneratePolygon = errors.New("polygon ring must have at least 3 vertices")

// NewPolygon：校验并构造多边形
// 约束：末点与首点相同时去掉末点；坐标必须为有限数；去重后少于 3 个顶点视为退化。
func NewPolygon(pts []Point) (Polygon, error) {
	ring := make([]Point, 0, len(pts))
	for i, p := range pts {
		if !p.Valid() {
			return Polygon{}, fmt.Errorf("vertex %d has non-finite coordinates (%v, %v)", i, p.X, p.Y)
		}
		if len(ring) > 0 && ring[len(ring)-1] == p {
			continue
		}
		ring = append(ring, p)
	}
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}
	if len(ring) < 3 {
		return Polygon{}, ErrDegeneratePolygon
	}
	b := EmptyBox()
	for _, p := range ring {
		b = b.Extend(p)
	}
	return Polygon{Ring: ring, BBox: b}, nil
}

// MustPolygon：测试与常量数据使用，非法输入直接 panic
func MustPolygon(pts ...Point) Polygon {
	p, err := NewPolygon(pts)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Polygon) NumEdges() int { return len(p.Ring) }

// Edge：第 i 条边，连接 Ring[i] 与 Ring[i+1]（末边回到首点）
func (p Polygon) Edge(i int) Segment {
	j := i + 1
	if j == len(p.Ring) {
		j = 0
	}
	return Segment{A: p.Ring[i], B: p.Ring[j]}
}

// BoundingBox：多组多边形的整体包围盒；空集合返回 EmptyBox
func BoundingBox(polys []Polygon) Box {
	b := EmptyBox()
	for i := range polys {
		b = b.Union(polys[i].BBox)
	}
	return b
}
