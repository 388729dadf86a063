package dictionary

import (
	"context"
	"polydict/internal/config"
	"polydict/internal/logger"
	"polydict/internal/source"
	"polydict/internal/structure"
	"sort"
	"sync"
)

type registered struct {
	create    Creator
	isComplex bool
}

// 文档注释：布局注册表
// 背景：布局名到构造函数的映射，进程启动时通过显式注册填充，此后只读。
// 约束：重复注册属于程序错误，直接 panic；读写均加锁，测试可并行使用私有实例。
type Factory struct {
	mu      sync.RWMutex
	layouts map[string]registered
}

func NewFactory() *Factory {
	return &Factory{layouts: make(map[string]registered)}
}

var (
	instanceOnce sync.Once
	instance     *Factory
)

// Instance：进程级注册表，由 main 显式填充
func Instance() *Factory {
	instanceOnce.Do(func() { instance = NewFactory() })
	return instance
}

// RegisterLayout：注册布局
func (f *Factory) RegisterLayout(name string, create Creator, isComplex bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.layouts[name]; ok {
		panic(Errorf(ErrLogical, "dictionary factory: the layout name '%s' is not unique", name))
	}
	f.layouts[name] = registered{create: create, isComplex: isComplex}
	logger.L().Debug("dictionary_layout_registered", "layout", name, "complex", isComplex)
}

// RegisterLayoutWithoutContext：适配不需要 Context 的构造函数
func (f *Factory) RegisterLayoutWithoutContext(name string, create CreatorWithoutContext, isComplex bool) {
	f.RegisterLayout(name, func(ctx context.Context, n string, st *structure.Structure, cfg *config.Config, prefix string, _ *Context, src source.Source) (Dictionary, error) {
		return create(ctx, n, st, cfg, prefix, src)
	}, isComplex)
}

// 文档注释：按配置创建字典
// 背景：prefix.layout 恰有一个子元素，其键名即布局名；结构与数据源在查找布局前解析，
// 配置形状错误在加载任何数据行之前暴露。
// 约束：返回的实例要么完整可查询，要么返回错误，不存在半构建状态。
func (f *Factory) Create(ctx context.Context, name string, cfg *config.Config, prefix string, dctx *Context, checkSourceConfig bool) (Dictionary, error) {
	keys := cfg.Keys(config.Join(prefix, "layout"))
	if len(keys) != 1 {
		return nil, Errorf(ErrExcessiveElement, "%s: element dictionary.layout should have exactly one child element", name)
	}
	layout := keys[0]

	st, err := structure.Parse(cfg, config.Join(prefix, "structure"))
	if err != nil {
		return nil, Wrap(ErrBadArguments, err, "%s: invalid structure", name)
	}

	if dctx == nil || dctx.Sources == nil {
		return nil, Errorf(ErrLogical, "%s: dictionary context has no source factory", name)
	}
	src, err := dctx.Sources.Create(ctx, name, cfg, config.Join(prefix, "source"), st, checkSourceConfig)
	if err != nil {
		return nil, err
	}

	f.mu.RLock()
	reg, ok := f.layouts[layout]
	f.mu.RUnlock()
	if !ok {
		return nil, Errorf(ErrUnknownElement, "%s: unknown dictionary layout type: %s", name, layout)
	}
	return reg.create(ctx, name, st, cfg, prefix, dctx, src)
}

// IsComplex：布局是否使用复合键
func (f *Factory) IsComplex(layout string) (bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	reg, ok := f.layouts[layout]
	if !ok {
		return false, Errorf(ErrUnknownElement, "unknown dictionary layout type: %s", layout)
	}
	return reg.isComplex, nil
}

// Layouts：已注册布局名（排序后）
func (f *Factory) Layouts() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, 0, len(f.layouts))
	for k := range f.layouts {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
