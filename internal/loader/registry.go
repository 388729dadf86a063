package loader

import (
	"context"
	"polydict/internal/config"
	"polydict/internal/dictionary"
	"polydict/internal/logger"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Registry：按名称索引的字典持有者集合，加载完成后只读
type Registry struct {
	holders map[string]*Holder
	wg      sync.WaitGroup
}

// DictionariesPrefix：配置文件中字典定义所在的前缀
const DictionariesPrefix = "dictionaries"

// 文档注释：启动期并行加载全部字典
// 背景：每个字典一个协程；任一失败即取消其余构建并返回该错误，服务不带着残缺字典启动。
func LoadAll(ctx context.Context, f *dictionary.Factory, cfg *config.Config, dctx *dictionary.Context) (*Registry, error) {
	names := cfg.Keys(DictionariesPrefix)
	dicts := make([]dictionary.Dictionary, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			t0 := time.Now()
			d, err := f.Create(gctx, name, cfg, config.Join(DictionariesPrefix, name), dctx, true)
			if err != nil {
				return err
			}
			dicts[i] = d
			logger.L().Info("dictionary_loaded", "dictionary", name, "layout", d.Layout(), "duration_ms", time.Since(t0).Milliseconds())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	r := &Registry{holders: make(map[string]*Holder, len(names))}
	for i, name := range names {
		r.holders[name] = NewHolder(name, dicts[i])
	}
	return r, nil
}

// NewRegistry：由已构建的实例组成，嵌入式使用与测试
func NewRegistry(dicts map[string]dictionary.Dictionary) *Registry {
	r := &Registry{holders: make(map[string]*Holder, len(dicts))}
	for name, d := range dicts {
		r.holders[name] = NewHolder(name, d)
	}
	return r
}

func (r *Registry) Get(name string) (*Holder, bool) {
	h, ok := r.holders[name]
	return h, ok
}

// Names：字典名（排序后）
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.holders))
	for k := range r.holders {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Start：为配置了 lifetime 的字典启动后台重载，ctx 取消后退出
// 约束：每次间隔在 [min, max] 内随机取值；重载失败只记录日志，按下一个间隔继续。
func (r *Registry) Start(ctx context.Context) {
	for _, name := range r.Names() {
		h := r.holders[name]
		lt := h.Get().Dict.Lifetime()
		if !lt.Enabled() {
			continue
		}
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			for {
				t := time.NewTimer(lt.Next())
				select {
				case <-ctx.Done():
					t.Stop()
					return
				case <-t.C:
					_, _ = h.Reload(ctx)
				}
			}
		}()
		logger.L().Info("dictionary_reloader_started", "dictionary", name, "min", lt.Min, "max", lt.Max)
	}
}

// Wait：等待全部重载协程退出
func (r *Registry) Wait() { r.wg.Wait() }

// Reload：立即重载指定字典
func (r *Registry) Reload(ctx context.Context, name string) (uint64, error) {
	h, ok := r.holders[name]
	if !ok {
		return 0, dictionary.Errorf(dictionary.ErrUnknownElement, "unknown dictionary: %s", name)
	}
	return h.Reload(ctx)
}
