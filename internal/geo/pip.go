package geo

// orient：有向面积（叉积），>0 表示 p 在 a→b 左侧，<0 在右侧，=0 共线
func orient(a, b, p Point) float64 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}

// OnSegment：p 位于闭线段上
// 约束：按 Ordered 方向计算叉积，同一条边无论存储方向如何，结果逐位一致。
func OnSegment(s Segment, p Point) bool {
	if !s.Box().Contains(p) {
		return false
	}
	o := s.Ordered()
	return orient(o.A, o.B, p) == 0
}

// Straddles：半开规则下边跨越竖线 x（左闭右开），保证顶点只被计数一次
func Straddles(s Segment, x float64) bool {
	return (s.A.X <= x) != (s.B.X <= x)
}

// Below：p 严格位于非竖直边的下方；调用方保证 p.X 在边的 x 范围内
func Below(s Segment, p Point) bool {
	o := s.Ordered()
	return orient(o.A, o.B, p) < 0
}

// CoveredBy：点在多边形内或边界上（covered-by 语义）
// 约束：向上射线奇偶计数，先做精确的在边判定；所有索引结构共用本文件的谓词，结果逐位一致。
func CoveredBy(p Point, poly Polygon) bool {
	if !poly.BBox.Contains(p) {
		return false
	}
	inside := false
	n := poly.NumEdges()
	for i := 0; i < n; i++ {
		e := poly.Edge(i)
		if OnSegment(e, p) {
			return true
		}
		if Straddles(e, p.X) && Below(e, p) {
			inside = !inside
		}
	}
	return inside
}

// SegmentTouchesBox：线段与闭矩形有公共点
// 约束：四个角严格同侧时才判为不相交，共线角点视为相交；结果可能偏保守，但不会漏判。
func SegmentTouchesBox(s Segment, b Box) bool {
	if !s.Box().Intersects(b) {
		return false
	}
	if b.Contains(s.A) || b.Contains(s.B) {
		return true
	}
	var pos, neg int
	for _, c := range b.Corners() {
		switch o := orient(s.A, s.B, c); {
		case o > 0:
			pos++
		case o < 0:
			neg++
		default:
			return true
		}
	}
	return pos > 0 && neg > 0
}
