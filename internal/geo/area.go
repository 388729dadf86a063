package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Orb：转换为 orb 多边形（闭合外环），用于面积与外部编码
func (p Polygon) Orb() orb.Polygon {
	ring := make(orb.Ring, 0, len(p.Ring)+1)
	for _, pt := range p.Ring {
		ring = append(ring, orb.Point{pt.X, pt.Y})
	}
	ring = append(ring, ring[0])
	return orb.Polygon{ring}
}

// Area：平面面积（绝对值）
func (p Polygon) Area() float64 {
	if len(p.Ring) < 3 {
		return 0
	}
	return math.Abs(planar.Area(p.Orb()))
}

// FromOrbRing：orb 环转换为顶点序列（保留闭合点，由 NewPolygon 统一去除）
func FromOrbRing(r orb.Ring) []Point {
	out := make([]Point, 0, len(r))
	for _, p := range r {
		out = append(out, Point{X: p[0], Y: p[1]})
	}
	return out
}
