// 包 loader：字典实例的原子发布、按 lifetime 的后台重载与启动期并行加载
package loader

import (
	"context"
	"polydict/internal/dictionary"
	"polydict/internal/logger"
	"polydict/internal/metrics"
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot：已发布的一代实例
type Snapshot struct {
	Dict       dictionary.Dictionary
	Generation uint64
	LoadedAt   time.Time
}

// 文档注释：当前实例持有者
// 背景：通过原子指针无锁切换实例，读路径拿到的快照在整个请求内保持不变，旧实例由 GC 回收。
// 约束：Publish 只由加载与重载路径调用；代数单调递增。
type Holder struct {
	name string
	cur  atomic.Pointer[Snapshot]
	mu   sync.Mutex
}

func NewHolder(name string, d dictionary.Dictionary) *Holder {
	h := &Holder{name: name}
	h.Publish(d)
	return h
}

func (h *Holder) Name() string { return h.name }

// Get：当前快照（读路径）
func (h *Holder) Get() *Snapshot { return h.cur.Load() }

// Publish：发布新实例，返回其代数
func (h *Holder) Publish(d dictionary.Dictionary) uint64 {
	var gen uint64 = 1
	if prev := h.cur.Load(); prev != nil {
		gen = prev.Generation + 1
	}
	h.cur.Store(&Snapshot{Dict: d, Generation: gen, LoadedAt: time.Now()})
	metrics.Generation.WithLabelValues(h.name).Set(float64(gen))
	return gen
}

// Reload：在当前实例上 Clone 并发布；失败时保留旧实例
// 约束：同一字典的重载串行执行。
func (h *Holder) Reload(ctx context.Context) (uint64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	snap := h.cur.Load()
	next, err := snap.Dict.Clone(ctx)
	if err != nil {
		metrics.ReloadErrorsTotal.WithLabelValues(h.name).Inc()
		logger.L().Error("dictionary_reload_error", "dictionary", h.name, "generation", snap.Generation, "err", err)
		return snap.Generation, err
	}
	gen := h.Publish(next)
	logger.L().Info("dictionary_reload_done", "dictionary", h.name, "generation", gen)
	return gen, nil
}
