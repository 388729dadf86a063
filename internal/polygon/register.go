package polygon

import (
	"context"
	"polydict/internal/config"
	"polydict/internal/dictionary"
	"polydict/internal/grid"
	"polydict/internal/source"
	"polydict/internal/structure"
)

// Register：把四种多边形布局注册到 f；均为复合键布局
func Register(f *dictionary.Factory) {
	for _, layout := range []string{LayoutSimple, LayoutGrid, LayoutSmart, LayoutOneBucket} {
		f.RegisterLayoutWithoutContext(layout, creator(layout), true)
	}
}

// creator：读取 database/name 标签、lifetime 与网格参数（layout.<name>.max_depth / min_intersections）
func creator(layout string) dictionary.CreatorWithoutContext {
	return func(ctx context.Context, name string, st *structure.Structure, cfg *config.Config, prefix string, src source.Source) (dictionary.Dictionary, error) {
		full := dictionary.FullName(name, cfg, prefix)
		shape, err := ResolveKeyShape(full, st)
		if err != nil {
			return nil, err
		}
		lifetime, err := dictionary.ParseLifetime(cfg, prefix)
		if err != nil {
			return nil, dictionary.Wrap(dictionary.ErrBadArguments, err, "%s", full)
		}
		opts := Options{Lifetime: lifetime}
		layoutPrefix := config.Join(prefix, "layout", layout)
		depth, err := cfg.GetInt(config.Join(layoutPrefix, "max_depth"), grid.MaxDepth)
		if err != nil {
			return nil, dictionary.Wrap(dictionary.ErrBadArguments, err, "%s", full)
		}
		minInter, err := cfg.GetInt(config.Join(layoutPrefix, "min_intersections"), grid.MinIntersections)
		if err != nil {
			return nil, dictionary.Wrap(dictionary.ErrBadArguments, err, "%s", full)
		}
		opts.Grid = grid.Options{MaxDepth: int(depth), MinIntersections: int(minInter)}
		return build(ctx, params{name: full, layout: layout, st: st, shape: shape, opts: opts}, src)
	}
}
