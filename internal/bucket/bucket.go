// 包 bucket：基于竖直分带（slab）的边索引，回答一个或多个多边形的精确覆盖查询
package bucket

import (
	"polydict/internal/geo"
	"sort"
)

// 文档注释：分带边索引
// 背景：以全部顶点的 x 坐标切分竖直带，每条非竖直边登记到它跨越的每个带；查询时二分定位带，
// 只需对该带内的边做向上射线奇偶计数，竖直边只在点恰好落在顶点 x 上时参与在边判定。
// 约束：带内的边按多边形编号升序分组；Find 返回覆盖该点的最小局部编号，与 geo.CoveredBy 逐位一致；
// 构建后只读，查询不分配内存。
type Bucket struct {
	xs       []float64
	slabOff  []int32
	edges    []edge
	vertOff  []int32
	vertical []edge
	bbox     geo.Box
	polygons int
}

type edge struct {
	seg  geo.Segment
	poly int32
}

// New：由一组多边形构建，局部编号即切片下标
func New(polys []geo.Polygon) *Bucket {
	b := &Bucket{bbox: geo.BoundingBox(polys), polygons: len(polys)}
	for i := range polys {
		for _, p := range polys[i].Ring {
			b.xs = append(b.xs, p.X)
		}
	}
	sort.Float64s(b.xs)
	b.xs = unique(b.xs)
	if len(b.xs) == 0 {
		return b
	}

	slabs := len(b.xs) - 1
	slabCount := make([]int32, slabs+1)
	vertCount := make([]int32, len(b.xs)+1)
	eachEdge(polys, func(_ int32, s geo.Segment) {
		lo, hi := b.index(s.A.X), b.index(s.B.X)
		if lo == hi {
			vertCount[lo+1]++
			return
		}
		for k := lo; k < hi; k++ {
			slabCount[k+1]++
		}
	})
	for i := 1; i < len(slabCount); i++ {
		slabCount[i] += slabCount[i-1]
	}
	for i := 1; i < len(vertCount); i++ {
		vertCount[i] += vertCount[i-1]
	}
	b.slabOff = slabCount
	b.vertOff = vertCount
	b.edges = make([]edge, slabCount[slabs])
	b.vertical = make([]edge, vertCount[len(b.xs)])

	slabFill := append([]int32(nil), slabCount[:slabs]...)
	vertFill := append([]int32(nil), vertCount[:len(b.xs)]...)
	eachEdge(polys, func(poly int32, s geo.Segment) {
		lo, hi := b.index(s.A.X), b.index(s.B.X)
		if lo == hi {
			b.vertical[vertFill[lo]] = edge{seg: s, poly: poly}
			vertFill[lo]++
			return
		}
		for k := lo; k < hi; k++ {
			b.edges[slabFill[k]] = edge{seg: s, poly: poly}
			slabFill[k]++
		}
	})
	return b
}

// eachEdge：按多边形编号升序遍历全部边（左端点在前）
func eachEdge(polys []geo.Polygon, fn func(poly int32, s geo.Segment)) {
	for i := range polys {
		n := polys[i].NumEdges()
		for j := 0; j < n; j++ {
			fn(int32(i), polys[i].Edge(j).Ordered())
		}
	}
}

func unique(xs []float64) []float64 {
	if len(xs) == 0 {
		return xs
	}
	out := xs[:1]
	for _, x := range xs[1:] {
		if x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}

// index：x 在 xs 中的下标，调用方保证 x 是某个顶点的横坐标
func (b *Bucket) index(x float64) int {
	return sort.SearchFloat64s(b.xs, x)
}

func (b *Bucket) Len() int { return b.polygons }

func (b *Bucket) Box() geo.Box { return b.bbox }

// Find：覆盖 p 的最小局部编号
func (b *Bucket) Find(p geo.Point) (int, bool) {
	if len(b.xs) == 0 || !b.bbox.Contains(p) {
		return 0, false
	}
	// s：满足 xs[s] <= p.X 的最大下标
	s := sort.SearchFloat64s(b.xs, p.X)
	onVertex := s < len(b.xs) && b.xs[s] == p.X
	if !onVertex {
		s--
	}
	best := int32(-1)

	// 在边判定：当前带的边；点落在顶点 x 上时另查左侧带与该 x 处的竖直边
	if s < len(b.xs)-1 {
		for _, e := range b.edges[b.slabOff[s]:b.slabOff[s+1]] {
			if (best < 0 || e.poly < best) && geo.OnSegment(e.seg, p) {
				best = e.poly
			}
		}
	}
	if onVertex {
		if s > 0 {
			for _, e := range b.edges[b.slabOff[s-1]:b.slabOff[s]] {
				if (best < 0 || e.poly < best) && geo.OnSegment(e.seg, p) {
					best = e.poly
				}
			}
		}
		for _, e := range b.vertical[b.vertOff[s]:b.vertOff[s+1]] {
			if (best < 0 || e.poly < best) && geo.OnSegment(e.seg, p) {
				best = e.poly
			}
		}
	}

	// 奇偶计数：最右侧顶点 x 之外不存在跨越的边
	if s < len(b.xs)-1 {
		edges := b.edges[b.slabOff[s]:b.slabOff[s+1]]
		for i := 0; i < len(edges); {
			poly := edges[i].poly
			if best >= 0 && poly >= best {
				break
			}
			inside := false
			for ; i < len(edges) && edges[i].poly == poly; i++ {
				if geo.Below(edges[i].seg, p) {
					inside = !inside
				}
			}
			if inside {
				best = poly
				break
			}
		}
	}
	if best < 0 {
		return 0, false
	}
	return int(best), true
}

// Covers：任一多边形覆盖 p
func (b *Bucket) Covers(p geo.Point) bool {
	_, ok := b.Find(p)
	return ok
}
