// 包 grid：覆盖全部多边形包围盒的自适应网格，把点定位缩小到少量候选多边形
package grid

import (
	"polydict/internal/geo"
	"slices"
)

// 细分参数
const (
	Split            = 4
	MinIntersections = 1
	MaxDepth         = 5
)

// Options：细分规则；零值字段取默认常量
type Options struct {
	MinIntersections int
	MaxDepth         int
}

// Candidate：单元内的候选多边形
// FullyCovers 为 true 时该多边形覆盖整个闭单元，可直接作为命中结果。
type Candidate struct {
	ID          int32
	FullyCovers bool
}

// 文档注释：自适应网格
// 背景：根单元为全部多边形的包围盒；边界穿过单元的候选数超过 MinIntersections 且深度小于 MaxDepth 时，
// 单元按 Split×Split 细分，子单元只继承与父单元相交的边。
// 约束：叶子单元的候选按多边形编号升序存放；构建与查询共用同一组边界函数，浮点舍入不会让点落入
// 不含它的子单元。
type Grid struct {
	root  node
	opts  Options
	cells int
	depth int
}

type node struct {
	box      geo.Box
	children []node
	cands    []Candidate
}

type partial struct {
	id    int32
	edges []geo.Segment
}

func New(polys []geo.Polygon) *Grid { return NewWithOptions(polys, Options{}) }

func NewWithOptions(polys []geo.Polygon, opts Options) *Grid {
	if opts.MinIntersections <= 0 {
		opts.MinIntersections = MinIntersections
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = MaxDepth
	}
	g := &Grid{opts: opts}
	g.root.box = geo.BoundingBox(polys)
	if g.root.box.Empty() {
		return g
	}
	parts := make([]partial, len(polys))
	for i := range polys {
		edges := make([]geo.Segment, polys[i].NumEdges())
		for j := range edges {
			edges[j] = polys[i].Edge(j)
		}
		parts[i] = partial{id: int32(i), edges: edges}
	}
	g.build(&g.root, polys, nil, parts, 0)
	return g
}

// build：full 为父单元已确认整体覆盖的候选，parts 为边界穿过父单元的候选，二者均按编号升序
func (g *Grid) build(n *node, polys []geo.Polygon, full []int32, parts []partial, depth int) {
	if depth > g.depth {
		g.depth = depth
	}
	var inner []partial
	covered := append([]int32(nil), full...)
	for _, pt := range parts {
		var touching []geo.Segment
		for _, e := range pt.edges {
			if geo.SegmentTouchesBox(e, n.box) {
				touching = append(touching, e)
			}
		}
		if len(touching) > 0 {
			inner = append(inner, partial{id: pt.id, edges: touching})
			continue
		}
		// 边界不触及闭单元：单元整体在多边形内或外，中心点即可判定
		if geo.CoveredBy(n.box.Center(), polys[pt.id]) {
			covered = append(covered, pt.id)
		}
	}

	slices.Sort(covered)

	if len(inner) > g.opts.MinIntersections && depth < g.opts.MaxDepth {
		n.children = make([]node, Split*Split)
		for iy := 0; iy < Split; iy++ {
			for ix := 0; ix < Split; ix++ {
				c := &n.children[iy*Split+ix]
				c.box = geo.Box{
					MinX: bound(n.box.MinX, n.box.MaxX, ix),
					MaxX: bound(n.box.MinX, n.box.MaxX, ix+1),
					MinY: bound(n.box.MinY, n.box.MaxY, iy),
					MaxY: bound(n.box.MinY, n.box.MaxY, iy+1),
				}
				g.build(c, polys, covered, inner, depth+1)
			}
		}
		return
	}

	g.cells++
	n.cands = make([]Candidate, 0, len(covered)+len(inner))
	i, j := 0, 0
	for i < len(covered) || j < len(inner) {
		if j == len(inner) || (i < len(covered) && covered[i] < inner[j].id) {
			n.cands = append(n.cands, Candidate{ID: covered[i], FullyCovers: true})
			i++
		} else {
			n.cands = append(n.cands, Candidate{ID: inner[j].id})
			j++
		}
	}
}

// bound：第 i 条分割线，i == Split 时精确等于上界
func bound(lo, hi float64, i int) float64 {
	if i >= Split {
		return hi
	}
	return lo + (hi-lo)*float64(i)/Split
}

// index：v 所在子区间下标，按 bound 校正舍入误差
func index(lo, hi, v float64) int {
	if hi <= lo {
		return 0
	}
	i := int((v - lo) / (hi - lo) * Split)
	if i < 0 {
		i = 0
	}
	if i > Split-1 {
		i = Split - 1
	}
	for i > 0 && v < bound(lo, hi, i) {
		i--
	}
	for i < Split-1 && v >= bound(lo, hi, i+1) {
		i++
	}
	return i
}

// Cell：包含 p 的叶子单元的候选列表；包围盒之外返回 nil
func (g *Grid) Cell(p geo.Point) []Candidate {
	if !g.root.box.Contains(p) {
		return nil
	}
	n := &g.root
	for n.children != nil {
		ix := index(n.box.MinX, n.box.MaxX, p.X)
		iy := index(n.box.MinY, n.box.MaxY, p.Y)
		n = &n.children[iy*Split+ix]
	}
	return n.cands
}

func (g *Grid) Box() geo.Box { return g.root.box }

// Cells：叶子单元数量
func (g *Grid) Cells() int { return g.cells }

// Depth：实际达到的最大深度
func (g *Grid) Depth() int { return g.depth }
