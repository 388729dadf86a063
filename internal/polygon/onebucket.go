package polygon

import (
	"context"
	"polydict/internal/bucket"
	"polydict/internal/dictionary"
	"polydict/internal/geo"
)

// LinesCount：水平分带数
const LinesCount = 100

// 文档注释：水平分带 + 共享分带索引
// 背景：[minY, maxY] 等分为 LinesCount 条水平带，每条带只对 y 区间与之相交的多边形建一个 Bucket。
// 约束：多边形归属的带与查询定位的带使用同一个 stripIndex，浮点舍入不会漏掉候选；
// 带内局部编号按全局编号升序排列，因此带内最小局部编号即全局最小编号。
type OneBucketPolygonDictionary struct {
	*base
	minY, maxY float64
	step       float64
	strips     []*bucket.Bucket
	globals    [][]int32
}

func newOneBucket(b *base) (*OneBucketPolygonDictionary, error) {
	if len(b.polygons) == 0 {
		return nil, dictionary.Errorf(dictionary.ErrBadArguments, "%s: layout %s requires at least one polygon", b.name, LayoutOneBucket)
	}
	box := geo.BoundingBox(b.polygons)
	d := &OneBucketPolygonDictionary{
		base:    b,
		minY:    box.MinY,
		maxY:    box.MaxY,
		step:    (box.MaxY - box.MinY) / LinesCount,
		strips:  make([]*bucket.Bucket, LinesCount),
		globals: make([][]int32, LinesCount),
	}
	members := make([][]geo.Polygon, LinesCount)
	for i := range b.polygons {
		lo, hi := d.stripIndex(b.polygons[i].BBox.MinY), d.stripIndex(b.polygons[i].BBox.MaxY)
		for k := lo; k <= hi; k++ {
			members[k] = append(members[k], b.polygons[i])
			d.globals[k] = append(d.globals[k], int32(i))
		}
	}
	for k := range d.strips {
		d.strips[k] = bucket.New(members[k])
	}
	b.stats.Cells = LinesCount
	return d, nil
}

// stripIndex：y 所在水平带下标，截断到最后一条带
func (d *OneBucketPolygonDictionary) stripIndex(y float64) int {
	if d.step == 0 {
		return 0
	}
	k := int((y - d.minY) / d.step)
	if k < 0 {
		return 0
	}
	if k > LinesCount-1 {
		return LinesCount - 1
	}
	return k
}

func (d *OneBucketPolygonDictionary) Find(p geo.Point) (uint64, bool) {
	if !p.Valid() || p.Y < d.minY || p.Y > d.maxY {
		return 0, false
	}
	k := d.stripIndex(p.Y)
	local, ok := d.strips[k].Find(p)
	if !ok {
		return 0, false
	}
	return d.ids[d.globals[k][local]], true
}

func (d *OneBucketPolygonDictionary) Clone(ctx context.Context) (dictionary.Dictionary, error) {
	return d.clone(ctx)
}
