// 包 polygon：多边形点定位字典的四种布局
package polygon

import (
	"context"
	"fmt"
	"polydict/internal/dictionary"
	"polydict/internal/geo"
	"polydict/internal/grid"
	"polydict/internal/logger"
	"polydict/internal/metrics"
	"polydict/internal/source"
	"polydict/internal/structure"
	"time"
)

// 布局名
const (
	LayoutSimple    = "polygon"
	LayoutGrid      = "grid_polygon"
	LayoutSmart     = "bucket_polygon"
	LayoutOneBucket = "one_bucket_polygon"
)

// Dictionary：多边形字典的查询契约
// 约束：Find 边界包含（点在边上视为命中），在各布局的遍历顺序下返回最先命中的多边形所在行；
// 不加锁、不分配、不修改共享状态，可被任意多个协程并发调用。
type Dictionary interface {
	dictionary.Dictionary
	Find(p geo.Point) (uint64, bool)
	Attribute(name string, row uint64) (any, error)
	Attributes() []string
	Row(row uint64) (map[string]any, error)
	Stats() Stats
}

// Stats：构建统计
type Stats struct {
	Polygons      int
	Rows          int
	Area          float64
	Cells         int
	Depth         int
	BuildDuration time.Duration
	LoadedAt      time.Time
}

// Options：构建参数，跨代复用
type Options struct {
	Lifetime dictionary.Lifetime
	Grid     grid.Options
}

// params：一次构建所需的全部不可变参数，Clone 时原样传给新实例
type params struct {
	name   string
	layout string
	st     *structure.Structure
	shape  Shape
	opts   Options
}

// base：四种布局共用的快照（多边形、行映射、属性、数据源）
type base struct {
	params
	src      source.Source
	polygons []geo.Polygon
	ids      []uint64
	attrs    *Attributes
	stats    Stats
}

func (b *base) Name() string                           { return b.name }
func (b *base) Layout() string                         { return b.layout }
func (b *base) Structure() *structure.Structure        { return b.st }
func (b *base) Lifetime() dictionary.Lifetime          { return b.opts.Lifetime }
func (b *base) Source() source.Source                  { return b.src }
func (b *base) Stats() Stats                           { return b.stats }
func (b *base) Attributes() []string                   { return b.attrs.Names() }
func (b *base) Row(row uint64) (map[string]any, error) { return b.attrs.Row(row) }

// Attribute：未知属性与越界行号返回 ErrBadArguments
func (b *base) Attribute(name string, row uint64) (any, error) {
	v, err := b.attrs.Get(name, row)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.name, err)
	}
	return v, nil
}

// load：读取数据源并物化，index 在其后构建索引
func load(ctx context.Context, p params, src source.Source) (*base, error) {
	rows, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: load %s: %w", p.name, src, err)
	}
	polys, ids, attrs, err := materialize(p.name, p.shape, p.st, rows)
	if err != nil {
		return nil, err
	}
	b := &base{params: p, src: src, polygons: polys, ids: ids, attrs: attrs}
	b.stats.Polygons = len(polys)
	b.stats.Rows = attrs.Len()
	for i := range polys {
		b.stats.Area += polys[i].Area()
	}
	return b, nil
}

// Build：按布局名构建字典实例
func Build(ctx context.Context, layout, name string, st *structure.Structure, src source.Source, opts Options) (Dictionary, error) {
	shape, err := ResolveKeyShape(name, st)
	if err != nil {
		return nil, err
	}
	return build(ctx, params{name: name, layout: layout, st: st, shape: shape, opts: opts}, src)
}

func build(ctx context.Context, p params, src source.Source) (Dictionary, error) {
	t0 := time.Now()
	d, err := buildLayout(ctx, p, src)
	if err != nil {
		metrics.BuildsTotal.WithLabelValues(p.layout, "error").Inc()
		logger.L().Warn("dictionary_build_error", "dictionary", p.name, "layout", p.layout, "err", err)
		return nil, err
	}
	dur := time.Since(t0)
	metrics.BuildsTotal.WithLabelValues(p.layout, "ok").Inc()
	metrics.BuildDurationSeconds.WithLabelValues(p.layout).Observe(dur.Seconds())
	s := d.Stats()
	metrics.Polygons.WithLabelValues(p.name).Set(float64(s.Polygons))
	logger.L().Info("dictionary_build_done",
		"dictionary", p.name,
		"layout", p.layout,
		"polygons", s.Polygons,
		"rows", s.Rows,
		"cells", s.Cells,
		"duration_ms", dur.Milliseconds(),
	)
	return d, nil
}

func buildLayout(ctx context.Context, p params, src source.Source) (Dictionary, error) {
	t0 := time.Now()
	b, err := load(ctx, p, src)
	if err != nil {
		return nil, err
	}
	var d Dictionary
	switch p.layout {
	case LayoutSimple:
		d = newSimple(b)
	case LayoutGrid:
		d = newGrid(b)
	case LayoutSmart:
		d = newSmart(b)
	case LayoutOneBucket:
		if d, err = newOneBucket(b); err != nil {
			return nil, err
		}
	default:
		return nil, dictionary.Errorf(dictionary.ErrUnknownElement, "%s: unknown dictionary layout type: %s", p.name, p.layout)
	}
	b.stats.BuildDuration = time.Since(t0)
	b.stats.LoadedAt = time.Now()
	return d, nil
}

// clone：新数据源快照上完整重建
func (b *base) clone(ctx context.Context) (dictionary.Dictionary, error) {
	return build(ctx, b.params, b.src.Clone())
}
